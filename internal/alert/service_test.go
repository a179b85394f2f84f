package alert

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartplanhq/api/internal/config"
)

type stubLister struct {
	summaries []OverdueSummary
	cutoff    time.Time
}

func (s *stubLister) ListOverdue(_ context.Context, cutoff time.Time) ([]OverdueSummary, error) {
	s.cutoff = cutoff
	return s.summaries, nil
}

type recordingNotifier struct {
	messages []Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func TestRunOnceNotifiesOverdueCompanies(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	lister := &stubLister{summaries: []OverdueSummary{
		{CompanyID: uuid.New(), CompanyName: "Acme", OverdueActions: 3, OverdueBreakdns: 1},
	}}
	notifier := &recordingNotifier{}

	svc := &Service{
		repo:     lister,
		cfg:      config.AlertConfig{Enabled: true},
		notifier: notifier,
		logger:   zerolog.Nop(),
		now:      func() time.Time { return now },
	}

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	wantCutoff := now.Add(-7 * 24 * time.Hour)
	if !lister.cutoff.Equal(wantCutoff) {
		t.Errorf("corte esperado %v, veio %v", wantCutoff, lister.cutoff)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("esperava 1 alerta, veio %d", len(notifier.messages))
	}
	if notifier.messages[0].Severity != "critical" {
		t.Errorf("severidade: %q", notifier.messages[0].Severity)
	}
}

func TestRunOnceSkipsWhenNothingOverdue(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := &Service{
		repo:     &stubLister{},
		notifier: notifier,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Error("não deveria notificar sem pendências")
	}
}

package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartplanhq/api/internal/config"
)

const overdueWindow = 7 * 24 * time.Hour

type overdueLister interface {
	ListOverdue(ctx context.Context, cutoff time.Time) ([]OverdueSummary, error)
}

// Service varre periodicamente itens vencidos há mais de uma semana e
// publica um resumo por empresa no canal configurado.
type Service struct {
	repo     overdueLister
	cfg      config.AlertConfig
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time

	once   sync.Once
	cancel context.CancelFunc
}

// NewService cria o serviço de alertas.
func NewService(repo *Repository, cfg config.AlertConfig, logger zerolog.Logger, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		cfg:      cfg,
		notifier: notifier,
		logger:   logger.With().Str("component", "alert").Logger(),
		now:      time.Now,
	}
}

// Start inicia o loop periódico. Safe para chamar múltiplas vezes.
func (s *Service) Start(parent context.Context) {
	if !s.cfg.Enabled {
		return
	}
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.cancel = cancel
		go s.runLoop(ctx)
	})
}

// Stop encerra o loop periódico.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) runLoop(ctx context.Context) {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("alertas: loop iniciado")

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("alertas: primeira execução falhou")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("alertas: loop encerrado")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("alertas: execução periódica falhou")
			}
		}
	}
}

// RunOnce executa uma varredura e notifica empresas com pendências críticas.
func (s *Service) RunOnce(ctx context.Context) error {
	cutoff := s.now().Add(-overdueWindow)

	summaries, err := s.repo.ListOverdue(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("listar itens vencidos: %w", err)
	}
	if len(summaries) == 0 {
		return nil
	}

	for _, summary := range summaries {
		s.logger.Warn().
			Str("empresa", summary.CompanyName).
			Int("acoes", summary.OverdueActions).
			Int("desdobramentos", summary.OverdueBreakdns).
			Msg("alertas: pendências críticas")
	}

	if s.notifier == nil {
		return nil
	}

	msg := Message{
		Title:    "Pendências críticas de planejamento",
		Text:     formatSummaries(summaries),
		Severity: "critical",
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Error().Err(err).Msg("alertas: falha ao notificar")
	}
	return nil
}

func formatSummaries(summaries []OverdueSummary) string {
	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "%s: %d ações e %d desdobramentos vencidos há mais de 7 dias\n",
			s.CompanyName, s.OverdueActions, s.OverdueBreakdns)
	}
	return strings.TrimRight(b.String(), "\n")
}

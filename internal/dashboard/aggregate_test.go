package dashboard

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartplanhq/api/internal/plan"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestUpcomingDeadlinesMergesAndOrders(t *testing.T) {
	today := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	actions := []ActionItem{
		{ID: uuid.New(), Title: "vencida", DueDate: datePtr(today.AddDate(0, 0, -5)), Status: plan.StatusEmAndamento},
		{ID: uuid.New(), Title: "em dois dias", DueDate: datePtr(today.AddDate(0, 0, 2)), Status: plan.StatusEmAndamento},
		{ID: uuid.New(), Title: "em dez dias", DueDate: datePtr(today.AddDate(0, 0, 10)), Status: plan.StatusNaoIniciado},
	}
	breakdowns := []BreakdownItem{
		{ID: uuid.New(), Title: "amanhã", DueDate: datePtr(today.AddDate(0, 0, 1)), Status: plan.StatusEmAndamento},
	}

	got := UpcomingDeadlines(actions, breakdowns, today)
	if len(got) != 3 {
		t.Fatalf("esperava 3 prazos, veio %d", len(got))
	}
	wantTitles := []string{"amanhã", "em dois dias", "em dez dias"}
	for i, want := range wantTitles {
		if got[i].Title != want {
			t.Errorf("posição %d: esperava %q, veio %q", i, want, got[i].Title)
		}
	}
	if got[0].Kind != KindBreakdown {
		t.Errorf("primeiro prazo deveria ser desdobramento, veio %q", got[0].Kind)
	}

	if overdue := OverdueCount(actions, breakdowns, today); overdue != 1 {
		t.Errorf("esperava 1 item atrasado, veio %d", overdue)
	}
}

func TestUpcomingDeadlinesIncludesTodayAndCaps(t *testing.T) {
	today := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	actions := make([]ActionItem, 0, 15)
	for i := 0; i < 15; i++ {
		actions = append(actions, ActionItem{
			ID:      uuid.New(),
			Title:   "ação",
			DueDate: datePtr(today.AddDate(0, 0, i)),
			Status:  plan.StatusEmAndamento,
		})
	}

	got := UpcomingDeadlines(actions, nil, today)
	if len(got) != upcomingLimit {
		t.Fatalf("esperava corte em %d prazos, veio %d", upcomingLimit, len(got))
	}
	// prazo de hoje conta como futuro, mesmo com hora já passada
	if !got[0].DueDate.Equal(*actions[0].DueDate) {
		t.Errorf("prazo de hoje deveria abrir a lista")
	}
}

func TestOverdueCountIgnoresFinishedItems(t *testing.T) {
	today := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	past := datePtr(today.AddDate(0, 0, -3))

	actions := []ActionItem{
		{ID: uuid.New(), DueDate: past, Status: plan.StatusConcluido},
		{ID: uuid.New(), DueDate: past, Status: plan.StatusCancelado},
		{ID: uuid.New(), DueDate: past, Status: plan.StatusEmAndamento},
	}
	breakdowns := []BreakdownItem{
		{ID: uuid.New(), DueDate: past, Completed: true},
		{ID: uuid.New(), DueDate: past, Completed: false},
	}

	if got := OverdueCount(actions, breakdowns, today); got != 2 {
		t.Errorf("esperava 2 atrasados, veio %d", got)
	}
}

func TestGlobalProgressRoundsMean(t *testing.T) {
	actions := []ActionItem{
		{Progress: 20},
		{Progress: 40},
		{Progress: 60},
		{Progress: 80},
	}
	if got := GlobalProgress(actions); got != 50 {
		t.Errorf("esperava progresso global 50, veio %d", got)
	}

	if got := GlobalProgress(nil); got != 0 {
		t.Errorf("sem ações o progresso deveria ser 0, veio %d", got)
	}

	// 33.333... arredonda para baixo; 66.666... para cima
	if got := GlobalProgress([]ActionItem{{Progress: 0}, {Progress: 50}, {Progress: 50}}); got != 33 {
		t.Errorf("esperava 33, veio %d", got)
	}
	if got := GlobalProgress([]ActionItem{{Progress: 100}, {Progress: 50}, {Progress: 50}}); got != 67 {
		t.Errorf("esperava 67, veio %d", got)
	}
}

func TestDepartmentRankingOrdersByMeanProgress(t *testing.T) {
	vendas := uuid.New()
	ti := uuid.New()
	rh := uuid.New()
	names := map[uuid.UUID]string{vendas: "Vendas", ti: "TI", rh: "RH"}

	actions := []ActionItem{
		{DepartmentID: &vendas, Progress: 80},
		{DepartmentID: &vendas, Progress: 40},
		{DepartmentID: &ti, Progress: 90},
		{DepartmentID: &rh, Progress: 60},
		{DepartmentID: nil, Progress: 100},
	}

	got := DepartmentRanking(actions, names)
	if len(got) != 3 {
		t.Fatalf("esperava 3 departamentos, veio %d", len(got))
	}
	if got[0].Name != "TI" || got[0].Progress != 90 {
		t.Errorf("primeiro lugar errado: %+v", got[0])
	}
	if got[1].Name != "Vendas" || got[1].Progress != 60 || got[1].ActionCount != 2 {
		t.Errorf("segundo lugar errado: %+v", got[1])
	}
	if got[2].Name != "RH" {
		t.Errorf("terceiro lugar errado: %+v", got[2])
	}
}

func TestStatusHistogramCountsBothKinds(t *testing.T) {
	actions := []ActionItem{
		{Status: plan.StatusEmAndamento},
		{Status: plan.StatusEmAndamento},
		{Status: plan.StatusConcluido},
	}
	breakdowns := []BreakdownItem{
		{Status: plan.StatusNaoIniciado},
		{Status: plan.StatusEmAndamento},
	}

	got := StatusHistogram(actions, breakdowns)
	if got[plan.StatusEmAndamento] != 3 {
		t.Errorf("em_andamento: esperava 3, veio %d", got[plan.StatusEmAndamento])
	}
	if got[plan.StatusConcluido] != 1 || got[plan.StatusNaoIniciado] != 1 {
		t.Errorf("histograma inesperado: %+v", got)
	}
}

func TestCriticalCountUsesSevenDayWindow(t *testing.T) {
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	actions := []ActionItem{
		{DueDate: datePtr(today.AddDate(0, 0, -8)), Status: plan.StatusEmAndamento},
		{DueDate: datePtr(today.AddDate(0, 0, -7)), Status: plan.StatusEmAndamento},
		{DueDate: datePtr(today.AddDate(0, 0, -3)), Status: plan.StatusEmAndamento},
		{DueDate: datePtr(today.AddDate(0, 0, -10)), Status: plan.StatusConcluido},
	}
	breakdowns := []BreakdownItem{
		{DueDate: datePtr(today.AddDate(0, 0, -9)), Completed: false},
		{DueDate: datePtr(today.AddDate(0, 0, -9)), Completed: true},
	}

	if got := CriticalCount(actions, breakdowns, today); got != 2 {
		t.Errorf("esperava 2 alertas críticos, veio %d", got)
	}
}

func TestEffortDistribution(t *testing.T) {
	breakdowns := []BreakdownItem{
		{Effort: 1}, {Effort: 1}, {Effort: 2}, {Effort: 3}, {Effort: 3}, {Effort: 3},
	}

	got := EffortDistribution(breakdowns)
	if got["baixo"] != 2 || got["medio"] != 1 || got["alto"] != 3 {
		t.Errorf("distribuição inesperada: %+v", got)
	}
}

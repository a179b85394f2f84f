// Package dashboard calcula as visões agregadas exibidas nos painéis. Os
// redutores são funções puras sobre coleções já carregadas: nada é memorizado
// entre requisições e nenhum agregado é persistido.
package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/smartplanhq/api/internal/plan"
)

// Tipos de item na lista de prazos.
const (
	KindAction    = "acao"
	KindBreakdown = "desdobramento"
)

// upcomingLimit limita a lista de próximos prazos.
const upcomingLimit = 10

// criticalOverdue define a janela de alerta crítico.
const criticalOverdue = 7 * 24 * time.Hour

// ActionItem é a projeção achatada de um plano de ação.
type ActionItem struct {
	ID           uuid.UUID
	Title        string
	DepartmentID *uuid.UUID
	DueDate      *time.Time
	Status       string
	Progress     int
}

// BreakdownItem é a projeção achatada de um desdobramento.
type BreakdownItem struct {
	ID        uuid.UUID
	Title     string
	DueDate   *time.Time
	Status    string
	Effort    int
	Completed bool
}

// Deadline é um prazo futuro na visão individual, marcado pela origem.
type Deadline struct {
	ID      uuid.UUID `json:"id"`
	Kind    string    `json:"tipo"`
	Title   string    `json:"titulo"`
	DueDate time.Time `json:"data_fim"`
	Status  string    `json:"status"`
}

// DepartmentProgress é a posição de um departamento no ranking gerencial.
type DepartmentProgress struct {
	DepartmentID uuid.UUID `json:"department_id"`
	Name         string    `json:"nome"`
	Progress     int       `json:"progresso"`
	ActionCount  int       `json:"total_acoes"`
}

// UpcomingDeadlines mescla ações e desdobramentos com prazo a partir de hoje,
// ordena por data crescente e corta nos dez primeiros.
func UpcomingDeadlines(actions []ActionItem, breakdowns []BreakdownItem, today time.Time) []Deadline {
	day := truncateDay(today)
	deadlines := make([]Deadline, 0, len(actions)+len(breakdowns))

	for _, a := range actions {
		if a.DueDate == nil || truncateDay(*a.DueDate).Before(day) {
			continue
		}
		deadlines = append(deadlines, Deadline{ID: a.ID, Kind: KindAction, Title: a.Title, DueDate: *a.DueDate, Status: a.Status})
	}
	for _, b := range breakdowns {
		if b.DueDate == nil || truncateDay(*b.DueDate).Before(day) {
			continue
		}
		deadlines = append(deadlines, Deadline{ID: b.ID, Kind: KindBreakdown, Title: b.Title, DueDate: *b.DueDate, Status: b.Status})
	}

	sort.SliceStable(deadlines, func(i, j int) bool {
		return deadlines[i].DueDate.Before(deadlines[j].DueDate)
	})

	if len(deadlines) > upcomingLimit {
		deadlines = deadlines[:upcomingLimit]
	}
	return deadlines
}

// OverdueCount conta itens com prazo vencido e não finalizados.
func OverdueCount(actions []ActionItem, breakdowns []BreakdownItem, today time.Time) int {
	day := truncateDay(today)
	count := 0

	for _, a := range actions {
		if a.DueDate != nil && truncateDay(*a.DueDate).Before(day) && !plan.IsTerminalStatus(a.Status) {
			count++
		}
	}
	for _, b := range breakdowns {
		if b.DueDate != nil && truncateDay(*b.DueDate).Before(day) && !b.Completed {
			count++
		}
	}
	return count
}

// GlobalProgress calcula a média de progresso arredondada ao inteiro mais
// próximo. Lista vazia resulta em zero.
func GlobalProgress(actions []ActionItem) int {
	if len(actions) == 0 {
		return 0
	}
	sum := 0
	for _, a := range actions {
		sum += a.Progress
	}
	return int(math.Round(float64(sum) / float64(len(actions))))
}

// DepartmentRanking agrupa ações por departamento e ordena pela média de
// progresso decrescente. Ações sem departamento ficam de fora.
func DepartmentRanking(actions []ActionItem, names map[uuid.UUID]string) []DepartmentProgress {
	type bucket struct {
		sum   int
		count int
	}
	buckets := make(map[uuid.UUID]*bucket)

	for _, a := range actions {
		if a.DepartmentID == nil {
			continue
		}
		b, ok := buckets[*a.DepartmentID]
		if !ok {
			b = &bucket{}
			buckets[*a.DepartmentID] = b
		}
		b.sum += a.Progress
		b.count++
	}

	ranking := make([]DepartmentProgress, 0, len(buckets))
	for id, b := range buckets {
		ranking = append(ranking, DepartmentProgress{
			DepartmentID: id,
			Name:         names[id],
			Progress:     int(math.Round(float64(b.sum) / float64(b.count))),
			ActionCount:  b.count,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Progress != ranking[j].Progress {
			return ranking[i].Progress > ranking[j].Progress
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}

// StatusHistogram conta status de ações e desdobramentos combinados.
func StatusHistogram(actions []ActionItem, breakdowns []BreakdownItem) map[string]int {
	histogram := make(map[string]int)
	for _, a := range actions {
		histogram[a.Status]++
	}
	for _, b := range breakdowns {
		histogram[b.Status]++
	}
	return histogram
}

// CriticalCount conta itens vencidos há mais de sete dias e não finalizados.
func CriticalCount(actions []ActionItem, breakdowns []BreakdownItem, today time.Time) int {
	cutoff := truncateDay(today).Add(-criticalOverdue)
	count := 0

	for _, a := range actions {
		if a.DueDate != nil && truncateDay(*a.DueDate).Before(cutoff) && !plan.IsTerminalStatus(a.Status) {
			count++
		}
	}
	for _, b := range breakdowns {
		if b.DueDate != nil && truncateDay(*b.DueDate).Before(cutoff) && !b.Completed {
			count++
		}
	}
	return count
}

// EffortDistribution conta desdobramentos por nível de esforço.
func EffortDistribution(breakdowns []BreakdownItem) map[string]int {
	dist := map[string]int{"baixo": 0, "medio": 0, "alto": 0}
	for _, b := range breakdowns {
		switch b.Effort {
		case 1:
			dist["baixo"]++
		case 2:
			dist["medio"]++
		case 3:
			dist["alto"]++
		}
	}
	return dist
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

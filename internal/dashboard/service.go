package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IndividualView é o painel do usuário autenticado.
type IndividualView struct {
	TotalPlans      int            `json:"total_planos"`
	TotalActions    int            `json:"total_acoes"`
	TotalBreakdowns int            `json:"total_desdobramentos"`
	Upcoming        []Deadline     `json:"proximos_prazos"`
	OverdueCount    int            `json:"atrasados"`
	StatusHistogram map[string]int `json:"status"`
}

// ManagerView é o painel gerencial da empresa.
type ManagerView struct {
	TotalUsers      int                  `json:"total_usuarios"`
	TotalPlans      int                  `json:"total_planos"`
	TotalActions    int                  `json:"total_acoes"`
	TotalBreakdowns int                  `json:"total_desdobramentos"`
	GlobalProgress  int                  `json:"progresso_global"`
	Ranking         []DepartmentProgress `json:"ranking_departamentos"`
	StatusHistogram map[string]int       `json:"status"`
	CriticalCount   int                  `json:"alertas_criticos"`
}

// PlanOverview resume um plano estratégico.
type PlanOverview struct {
	Objectives     int            `json:"total_objetivos"`
	Actions        int            `json:"total_acoes"`
	Breakdowns     int            `json:"total_desdobramentos"`
	MeanProgress   int            `json:"progresso_medio"`
	LateBreakdowns int            `json:"desdobramentos_atrasados"`
	Effort         map[string]int `json:"esforco"`
}

// Service compõe as visões a partir do repositório e dos redutores puros.
type Service struct {
	repo   *Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewService cria o serviço do painel.
func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "dashboard").Logger(), now: time.Now}
}

// Individual monta o painel pessoal: tudo recalculado a cada chamada.
func (s *Service) Individual(ctx context.Context, companyID, userID uuid.UUID) (*IndividualView, error) {
	actions, err := s.repo.ActionsByOwner(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	breakdowns, err := s.repo.BreakdownsByExecutor(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	totalPlans, err := s.repo.CountPlansByCreator(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	return &IndividualView{
		TotalPlans:      totalPlans,
		TotalActions:    len(actions),
		TotalBreakdowns: len(breakdowns),
		Upcoming:        UpcomingDeadlines(actions, breakdowns, today),
		OverdueCount:    OverdueCount(actions, breakdowns, today),
		StatusHistogram: StatusHistogram(actions, breakdowns),
	}, nil
}

// Manager monta o painel gerencial da empresa inteira.
func (s *Service) Manager(ctx context.Context, companyID uuid.UUID) (*ManagerView, error) {
	actions, err := s.repo.ActionsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	breakdowns, err := s.repo.BreakdownsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.repo.CountUsersByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	totalPlans, err := s.repo.CountPlansByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.DepartmentNames(ctx, companyID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	return &ManagerView{
		TotalUsers:      totalUsers,
		TotalPlans:      totalPlans,
		TotalActions:    len(actions),
		TotalBreakdowns: len(breakdowns),
		GlobalProgress:  GlobalProgress(actions),
		Ranking:         DepartmentRanking(actions, names),
		StatusHistogram: StatusHistogram(actions, breakdowns),
		CriticalCount:   CriticalCount(actions, breakdowns, today),
	}, nil
}

// Overview resume um plano estratégico específico.
func (s *Service) Overview(ctx context.Context, companyID, planID uuid.UUID) (*PlanOverview, error) {
	actions, err := s.repo.ActionsByPlan(ctx, companyID, planID)
	if err != nil {
		return nil, err
	}
	breakdowns, err := s.repo.BreakdownsByPlan(ctx, companyID, planID)
	if err != nil {
		return nil, err
	}
	objectives, err := s.repo.CountObjectivesByPlan(ctx, companyID, planID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	late := 0
	for _, b := range breakdowns {
		if b.DueDate != nil && truncateDay(*b.DueDate).Before(truncateDay(today)) && !b.Completed {
			late++
		}
	}

	return &PlanOverview{
		Objectives:     objectives,
		Actions:        len(actions),
		Breakdowns:     len(breakdowns),
		MeanProgress:   GlobalProgress(actions),
		LateBreakdowns: late,
		Effort:         EffortDistribution(breakdowns),
	}, nil
}

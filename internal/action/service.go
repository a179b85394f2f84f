package action

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartplanhq/api/internal/plan"
)

// Service concentra as regras de planos de ação.
type Service struct {
	repo   *Repository
	logger zerolog.Logger
}

// NewService cria o serviço de planos de ação.
func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "action").Logger()}
}

// Get busca um plano de ação no escopo da empresa.
func (s *Service) Get(ctx context.Context, id, companyID uuid.UUID) (*ActionPlan, error) {
	return s.repo.GetByID(ctx, id, companyID)
}

// ListByPlan lista as ações de um plano estratégico.
func (s *Service) ListByPlan(ctx context.Context, planID, companyID uuid.UUID) ([]ActionPlan, error) {
	return s.repo.ListByPlan(ctx, planID, companyID)
}

// Create cadastra um plano de ação.
func (s *Service) Create(ctx context.Context, companyID, planID uuid.UUID, input Input) (*ActionPlan, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	ap, err := s.repo.Create(ctx, companyID, planID, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("action_plan_id", ap.ID.String()).Str("plan_id", planID.String()).Msg("plano de ação criado")
	return ap, nil
}

// Update atualiza um plano de ação.
func (s *Service) Update(ctx context.Context, id, companyID uuid.UUID, input Input) (*ActionPlan, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, companyID, input)
}

// Delete remove um plano de ação e seus desdobramentos.
func (s *Service) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	return s.repo.Delete(ctx, id, companyID)
}

// SetParticipants substitui os participantes da ação.
func (s *Service) SetParticipants(ctx context.Context, actionPlanID uuid.UUID, profileIDs []uuid.UUID) error {
	return s.repo.SetParticipants(ctx, actionPlanID, profileIDs)
}

// ListParticipants lista os participantes da ação.
func (s *Service) ListParticipants(ctx context.Context, actionPlanID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ListParticipants(ctx, actionPlanID)
}

func validateInput(input *Input) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return ErrInvalidInput
	}
	if input.OwnerID == uuid.Nil {
		return ErrInvalidInput
	}
	if input.Status == "" {
		input.Status = plan.StatusNaoIniciado
	}
	if !plan.IsValidStatus(input.Status) {
		return plan.ErrInvalidStatus
	}
	if input.Progress < 0 || input.Progress > 100 {
		return ErrInvalidInput
	}
	if input.StartDate != nil && input.DueDate != nil && input.DueDate.Before(*input.StartDate) {
		return ErrInvalidInput
	}
	return nil
}

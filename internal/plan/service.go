package plan

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service concentra as regras de planos estratégicos.
type Service struct {
	repo   *Repository
	logger zerolog.Logger
}

// NewService cria o serviço de planos.
func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "plan").Logger()}
}

// Get busca um plano no escopo da empresa.
func (s *Service) Get(ctx context.Context, id, companyID uuid.UUID) (*Plan, error) {
	return s.repo.GetByID(ctx, id, companyID)
}

// List lista planos paginados. Limites fora da faixa são normalizados.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, limit, offset int) (*Page, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, companyID, limit, offset)
}

// Create cadastra um plano com seus vínculos de departamento.
func (s *Service) Create(ctx context.Context, companyID, createdBy uuid.UUID, input PlanInput) (*Plan, error) {
	if err := validatePlanInput(&input); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, companyID, createdBy, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("plan_id", p.ID.String()).Str("company_id", companyID.String()).Msg("plano criado")
	return p, nil
}

// Update atualiza o plano e substitui os vínculos de departamento.
func (s *Service) Update(ctx context.Context, id, companyID uuid.UUID, input PlanInput) (*Plan, error) {
	if err := validatePlanInput(&input); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, companyID, input)
}

// Delete remove o plano e toda a sua hierarquia.
func (s *Service) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, companyID); err != nil {
		return err
	}
	s.logger.Info().Str("plan_id", id.String()).Msg("plano removido")
	return nil
}

// ListObjectives lista os objetivos do plano ordenados por posição.
func (s *Service) ListObjectives(ctx context.Context, planID uuid.UUID) ([]Objective, error) {
	return s.repo.ListObjectives(ctx, planID)
}

// CreateObjective insere um objetivo ao final da lista do plano.
func (s *Service) CreateObjective(ctx context.Context, planID uuid.UUID, input ObjectiveInput) (*Objective, error) {
	if err := validateObjectiveInput(&input); err != nil {
		return nil, err
	}
	return s.repo.CreateObjective(ctx, planID, input)
}

// UpdateObjective atualiza um objetivo do plano.
func (s *Service) UpdateObjective(ctx context.Context, id, planID uuid.UUID, input ObjectiveInput) (*Objective, error) {
	if err := validateObjectiveInput(&input); err != nil {
		return nil, err
	}
	return s.repo.UpdateObjective(ctx, id, planID, input)
}

// ReorderObjectives aplica a nova ordem dos objetivos.
func (s *Service) ReorderObjectives(ctx context.Context, planID uuid.UUID, orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return ErrInvalidInput
	}
	return s.repo.ReorderObjectives(ctx, planID, orderedIDs)
}

// DeleteObjective remove um objetivo do plano.
func (s *Service) DeleteObjective(ctx context.Context, id, planID uuid.UUID) error {
	return s.repo.DeleteObjective(ctx, id, planID)
}

// GetMVV busca o quadro missão/visão/valores do plano.
func (s *Service) GetMVV(ctx context.Context, planID uuid.UUID) (*MVV, error) {
	return s.repo.GetMVV(ctx, planID)
}

// SaveMVV grava o quadro missão/visão/valores.
func (s *Service) SaveMVV(ctx context.Context, planID uuid.UUID, input MVVInput) (*MVV, error) {
	return s.repo.UpsertMVV(ctx, planID, input)
}

func validatePlanInput(input *PlanInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrInvalidInput
	}
	if input.ExecutionFrom != nil && input.ExecutionTo != nil && input.ExecutionTo.Before(*input.ExecutionFrom) {
		return ErrInvalidInput
	}
	return nil
}

func validateObjectiveInput(input *ObjectiveInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return ErrInvalidInput
	}
	if input.Status == "" {
		input.Status = StatusNaoIniciado
	}
	if !IsValidStatus(input.Status) {
		return ErrInvalidStatus
	}
	return nil
}

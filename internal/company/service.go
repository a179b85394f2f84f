package company

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidInput indica payload inválido na criação/atualização de empresa.
var ErrInvalidInput = errors.New("dados da empresa inválidos")

// Service concentra as regras de cadastro de empresas.
type Service struct {
	repo   *Repository
	logger zerolog.Logger
}

// NewService cria o serviço de empresas.
func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "company").Logger()}
}

// Get busca uma empresa pelo ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Company, error) {
	return s.repo.GetByID(ctx, id)
}

// List lista todas as empresas ordenadas por nome.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

// Create cadastra uma nova empresa.
func (s *Service) Create(ctx context.Context, input CreateCompanyInput) (*Company, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidInput
	}

	c, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("company_id", c.ID.String()).Str("nome", c.Name).Msg("empresa criada")
	return c, nil
}

// Update atualiza campos informados da empresa.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateCompanyInput) (*Company, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, ErrInvalidInput
		}
		input.Name = &trimmed
	}
	return s.repo.Update(ctx, id, input)
}

// Stats devolve os contadores agregados da empresa.
func (s *Service) Stats(ctx context.Context, id uuid.UUID) (*Stats, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, id)
}

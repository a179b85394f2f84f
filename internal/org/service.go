package org

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service concentra as regras dos cadastros organizacionais.
type Service struct {
	repo   *Repository
	logger zerolog.Logger
}

// NewService cria o serviço organizacional.
func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "org").Logger()}
}

// ListDepartments lista departamentos da empresa ativa.
func (s *Service) ListDepartments(ctx context.Context, companyID uuid.UUID) ([]Department, error) {
	return s.repo.ListDepartments(ctx, companyID)
}

// GetDepartment busca um departamento.
func (s *Service) GetDepartment(ctx context.Context, id, companyID uuid.UUID) (*Department, error) {
	return s.repo.GetDepartment(ctx, id, companyID)
}

// CreateDepartment cadastra um departamento.
func (s *Service) CreateDepartment(ctx context.Context, companyID uuid.UUID, input DepartmentInput) (*Department, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidInput
	}

	d, err := s.repo.CreateDepartment(ctx, companyID, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("department_id", d.ID.String()).Str("company_id", companyID.String()).Msg("departamento criado")
	return d, nil
}

// UpdateDepartment atualiza um departamento.
func (s *Service) UpdateDepartment(ctx context.Context, id, companyID uuid.UUID, input DepartmentInput) (*Department, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.UpdateDepartment(ctx, id, companyID, input)
}

// DeleteDepartment remove um departamento.
func (s *Service) DeleteDepartment(ctx context.Context, id, companyID uuid.UUID) error {
	return s.repo.DeleteDepartment(ctx, id, companyID)
}

// ListClients lista clientes da empresa ativa.
func (s *Service) ListClients(ctx context.Context, companyID uuid.UUID) ([]Client, error) {
	return s.repo.ListClients(ctx, companyID)
}

// GetClient busca um cliente.
func (s *Service) GetClient(ctx context.Context, id, companyID uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, id, companyID)
}

// CreateClient cadastra um cliente.
func (s *Service) CreateClient(ctx context.Context, companyID uuid.UUID, input ClientInput) (*Client, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidInput
	}

	c, err := s.repo.CreateClient(ctx, companyID, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("client_id", c.ID.String()).Str("company_id", companyID.String()).Msg("cliente criado")
	return c, nil
}

// UpdateClient atualiza um cliente.
func (s *Service) UpdateClient(ctx context.Context, id, companyID uuid.UUID, input ClientInput) (*Client, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.UpdateClient(ctx, id, companyID, input)
}

// DeleteClient remove um cliente.
func (s *Service) DeleteClient(ctx context.Context, id, companyID uuid.UUID) error {
	return s.repo.DeleteClient(ctx, id, companyID)
}

package provision

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartplanhq/api/internal/auth"
	"github.com/smartplanhq/api/internal/profile"
	"github.com/smartplanhq/api/internal/util"
)

var (
	// ErrInvalidInput indica dados de provisionamento inválidos.
	ErrInvalidInput = errors.New("dados de provisionamento inválidos")
	// ErrEmailInUse indica e-mail já cadastrado.
	ErrEmailInUse = errors.New("e-mail já cadastrado")
	// ErrProfileTimeout indica que o perfil não foi materializado a tempo.
	ErrProfileTimeout = errors.New("perfil não materializado a tempo")
)

const (
	profileWaitTimeout  = 2 * time.Second
	profileWaitInterval = 100 * time.Millisecond
)

type accountStore interface {
	CreateAccount(ctx context.Context, email, nome, senhaHash string) (*profile.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	GetAccountByEmail(ctx context.Context, email string) (*profile.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	Provision(ctx context.Context, id uuid.UUID, companyID uuid.UUID, departmentID *uuid.UUID, role string) error
}

// Service provisiona contas completas: conta, perfil materializado e vínculo.
type Service struct {
	repo   accountStore
	logger zerolog.Logger
}

// NewService cria o serviço de provisionamento.
func NewService(repo *profile.Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "provision").Logger()}
}

// Input reúne os dados do novo usuário.
type Input struct {
	Email        string     `json:"email"`
	Nome         string     `json:"nome"`
	Senha        string     `json:"senha"`
	Role         string     `json:"role"`
	CompanyID    uuid.UUID  `json:"company_id"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

// CreateUser cria a conta, espera o trigger materializar o perfil e completa
// o vínculo com empresa, departamento e papel. Em caso de falha após a conta
// criada, a conta é removida para não deixar cadastro órfão.
func (s *Service) CreateUser(ctx context.Context, input Input) (*profile.Profile, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.repo.GetAccountByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, profile.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := auth.Hash(input.Senha)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.CreateAccount(ctx, email, strings.TrimSpace(input.Nome), hash)
	if err != nil {
		return nil, err
	}

	if err := s.waitProfile(ctx, account.ID); err != nil {
		s.rollback(ctx, account.ID)
		return nil, err
	}

	role := profile.NormalizeRole(input.Role)
	if err := s.repo.Provision(ctx, account.ID, input.CompanyID, input.DepartmentID, role); err != nil {
		s.rollback(ctx, account.ID)
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, account.ID)
	if err != nil {
		s.rollback(ctx, account.ID)
		return nil, err
	}

	s.logger.Info().
		Str("profile_id", p.ID.String()).
		Str("role", p.Role).
		Msg("usuário provisionado")

	return p, nil
}

// waitProfile aguarda o trigger materializar a linha em profiles.
func (s *Service) waitProfile(ctx context.Context, id uuid.UUID) error {
	deadline := time.Now().Add(profileWaitTimeout)
	for {
		if _, err := s.repo.GetByID(ctx, id); err == nil {
			return nil
		} else if !errors.Is(err, profile.ErrNotFound) {
			return err
		}

		if time.Now().After(deadline) {
			return ErrProfileTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(profileWaitInterval):
		}
	}
}

func (s *Service) rollback(ctx context.Context, id uuid.UUID) {
	if err := s.repo.DeleteAccount(ctx, id); err != nil && !errors.Is(err, profile.ErrAccountNotFound) {
		s.logger.Error().Err(err).Str("account_id", id.String()).Msg("rollback de conta falhou")
	}
}

func validate(input Input) error {
	if err := util.ValidateEmail(input.Email); err != nil {
		return ErrInvalidInput
	}
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return ErrInvalidInput
	}
	if err := util.ValidatePassword(input.Senha); err != nil {
		return ErrInvalidInput
	}
	if input.CompanyID == uuid.Nil {
		return ErrInvalidInput
	}
	if input.Role != "" && !profile.IsValidRole(input.Role) {
		return ErrInvalidInput
	}
	return nil
}

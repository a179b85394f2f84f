package company

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("empresa não encontrada")
)

// Company representa uma empresa (tenant) na plataforma. Toda entidade de
// negócio carrega a chave da empresa como raiz de isolamento.
type Company struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Document  *string    `json:"document,omitempty"`
	LogoURL   *string    `json:"logo_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CreateCompanyInput contém os campos necessários para registrar uma empresa.
type CreateCompanyInput struct {
	Name     string
	Document *string
	LogoURL  *string
}

// UpdateCompanyInput contém campos mutáveis da empresa.
type UpdateCompanyInput struct {
	ID       uuid.UUID
	Name     *string
	Document *string
	LogoURL  *string
}

// Stats resume volumes por empresa para o painel administrativo.
type Stats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalPlans       int64 `json:"total_plans"`
	TotalDepartments int64 `json:"total_departments"`
	TotalActionPlans int64 `json:"total_action_plans"`
}

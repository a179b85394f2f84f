// Package action implementa os planos de ação: itens executáveis de um plano
// estratégico, com responsável, departamento, prazo e progresso.
package action

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica ação inexistente no escopo da empresa.
	ErrNotFound = errors.New("plano de ação não encontrado")
	// ErrInvalidInput indica payload inválido.
	ErrInvalidInput = errors.New("dados do plano de ação inválidos")
)

// ActionPlan representa um plano de ação dentro de um plano estratégico.
type ActionPlan struct {
	ID           uuid.UUID   `json:"id"`
	CompanyID    uuid.UUID   `json:"company_id"`
	PlanID       uuid.UUID   `json:"plan_id"`
	ObjectiveID  *uuid.UUID  `json:"objective_id,omitempty"`
	Title        string      `json:"titulo"`
	Description  *string     `json:"descricao,omitempty"`
	DepartmentID *uuid.UUID  `json:"department_id,omitempty"`
	OwnerID      uuid.UUID   `json:"responsavel_id"`
	StartDate    *time.Time  `json:"data_inicio,omitempty"`
	DueDate      *time.Time  `json:"data_fim,omitempty"`
	Status       string      `json:"status"`
	Progress     int         `json:"progresso"`
	Participants []uuid.UUID `json:"participantes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    *time.Time  `json:"updated_at,omitempty"`
}

// Input carrega os campos editáveis de um plano de ação.
type Input struct {
	ObjectiveID  *uuid.UUID `json:"objective_id"`
	Title        string     `json:"titulo"`
	Description  *string    `json:"descricao"`
	DepartmentID *uuid.UUID `json:"department_id"`
	OwnerID      uuid.UUID  `json:"responsavel_id"`
	StartDate    *time.Time `json:"data_inicio"`
	DueDate      *time.Time `json:"data_fim"`
	Status       string     `json:"status"`
	Progress     int        `json:"progresso"`
}

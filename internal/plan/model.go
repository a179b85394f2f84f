// Package plan implementa os planos estratégicos: cadastro, vínculo com
// departamentos, objetivos ordenados e o quadro de missão/visão/valores.
package plan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica plano ou objetivo inexistente no escopo da empresa.
	ErrNotFound = errors.New("plano não encontrado")
	// ErrInvalidInput indica payload inválido.
	ErrInvalidInput = errors.New("dados do plano inválidos")
	// ErrInvalidStatus indica status fora do conjunto aceito.
	ErrInvalidStatus = errors.New("status inválido")
)

// Status de planos de ação, desdobramentos e objetivos.
const (
	StatusNaoIniciado = "nao_iniciado"
	StatusEmAndamento = "em_andamento"
	StatusConcluido   = "concluido"
	StatusCancelado   = "cancelado"
	StatusAtrasado    = "atrasado"
)

var validStatuses = map[string]struct{}{
	StatusNaoIniciado: {},
	StatusEmAndamento: {},
	StatusConcluido:   {},
	StatusCancelado:   {},
	StatusAtrasado:    {},
}

// IsValidStatus informa se o status pertence ao enum aceito.
func IsValidStatus(s string) bool {
	_, ok := validStatuses[s]
	return ok
}

// IsTerminalStatus informa se o status encerra o item (concluído ou cancelado).
func IsTerminalStatus(s string) bool {
	return s == StatusConcluido || s == StatusCancelado
}

// Plan representa um plano estratégico da empresa.
type Plan struct {
	ID            uuid.UUID   `json:"id"`
	CompanyID     uuid.UUID   `json:"company_id"`
	Name          string      `json:"nome"`
	Description   *string     `json:"descricao,omitempty"`
	PlanningDate  *time.Time  `json:"data_planejamento,omitempty"`
	ExecutionFrom *time.Time  `json:"inicio_execucao,omitempty"`
	ExecutionTo   *time.Time  `json:"fim_execucao,omitempty"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	DepartmentIDs []uuid.UUID `json:"departamentos,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     *time.Time  `json:"updated_at,omitempty"`
}

// Objective representa um objetivo ordenado dentro do plano.
type Objective struct {
	ID        uuid.UUID  `json:"id"`
	PlanID    uuid.UUID  `json:"plan_id"`
	Title     string     `json:"titulo"`
	Summary   *string    `json:"resumo,omitempty"`
	Status    string     `json:"status"`
	Position  int        `json:"posicao"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// MVV guarda missão, visão e valores do plano. Uma linha por plano.
type MVV struct {
	PlanID    uuid.UUID  `json:"plan_id"`
	Mission   *string    `json:"missao,omitempty"`
	Vision    *string    `json:"visao,omitempty"`
	Values    *string    `json:"valores,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// PlanInput carrega os campos editáveis de um plano.
type PlanInput struct {
	Name          string      `json:"nome"`
	Description   *string     `json:"descricao"`
	PlanningDate  *time.Time  `json:"data_planejamento"`
	ExecutionFrom *time.Time  `json:"inicio_execucao"`
	ExecutionTo   *time.Time  `json:"fim_execucao"`
	DepartmentIDs []uuid.UUID `json:"departamentos"`
}

// ObjectiveInput carrega os campos editáveis de um objetivo.
type ObjectiveInput struct {
	Title   string  `json:"titulo"`
	Summary *string `json:"resumo"`
	Status  string  `json:"status"`
}

// MVVInput carrega os campos do quadro missão/visão/valores.
type MVVInput struct {
	Mission *string `json:"missao"`
	Vision  *string `json:"visao"`
	Values  *string `json:"valores"`
}

// Page agrupa uma lista paginada de planos.
type Page struct {
	Items  []Plan `json:"items"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

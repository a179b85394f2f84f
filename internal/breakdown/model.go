// Package breakdown implementa os desdobramentos: as tarefas executáveis de um
// plano de ação, com histórico auditável e anexos em storage externo.
package breakdown

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica desdobramento inexistente no escopo da empresa.
	ErrNotFound = errors.New("desdobramento não encontrado")
	// ErrInvalidInput indica payload inválido.
	ErrInvalidInput = errors.New("dados do desdobramento inválidos")
	// ErrHistoryNotFound indica entrada de histórico inexistente.
	ErrHistoryNotFound = errors.New("entrada de histórico não encontrada")
	// ErrNotAuthor indica tentativa de alterar comentário de outro autor.
	ErrNotAuthor = errors.New("somente o autor pode alterar o comentário")
	// ErrNotComment indica tentativa de alterar entrada que não é comentário.
	ErrNotComment = errors.New("entradas de auditoria não podem ser alteradas")
)

// Tipos de entrada no histórico. Comentários são editáveis pelo autor; os
// demais tipos são trilha de auditoria e nunca mudam depois de gravados.
const (
	HistoryComment      = "comment"
	HistoryStatusChange = "status_change"
	HistoryUpdate       = "update"
)

// Breakdown representa um desdobramento de plano de ação.
type Breakdown struct {
	ID                 uuid.UUID  `json:"id"`
	CompanyID          uuid.UUID  `json:"company_id"`
	ActionPlanID       uuid.UUID  `json:"action_plan_id"`
	Title              string     `json:"titulo"`
	ExecutorID         uuid.UUID  `json:"executor_id"`
	RequiredResources  string     `json:"recursos_necessarios"`
	FinancialResources float64    `json:"recursos_financeiros"`
	StartDate          *time.Time `json:"data_inicio,omitempty"`
	DueDate            *time.Time `json:"data_fim,omitempty"`
	Effort             int        `json:"esforco"`
	Status             string     `json:"status"`
	Completed          bool       `json:"concluido"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`

	// Departamento da ação pai, usado nas decisões de autorização.
	ActionDepartmentID *uuid.UUID `json:"-"`
}

// HistoryEntry representa uma entrada do histórico do desdobramento.
type HistoryEntry struct {
	ID          uuid.UUID      `json:"id"`
	BreakdownID uuid.UUID      `json:"breakdown_id"`
	AuthorID    uuid.UUID      `json:"autor_id"`
	Kind        string         `json:"tipo"`
	Text        string         `json:"texto"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

// Attachment representa um anexo do desdobramento.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	BreakdownID uuid.UUID `json:"breakdown_id"`
	UploaderID  uuid.UUID `json:"uploader_id"`
	FilePath    string    `json:"file_path"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	MimeType    string    `json:"mime_type"`
	Description *string   `json:"descricao,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input carrega os campos editáveis de um desdobramento.
type Input struct {
	Title              string     `json:"titulo"`
	ExecutorID         uuid.UUID  `json:"executor_id"`
	RequiredResources  string     `json:"recursos_necessarios"`
	FinancialResources float64    `json:"recursos_financeiros"`
	StartDate          *time.Time `json:"data_inicio"`
	DueDate            *time.Time `json:"data_fim"`
	Effort             int        `json:"esforco"`
	Status             string     `json:"status"`
}

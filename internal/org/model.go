// Package org cobre os cadastros organizacionais da empresa: departamentos e
// clientes. Ambos são escopados por empresa em todas as consultas.
package org

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica registro inexistente no escopo da empresa.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrInvalidInput indica payload inválido.
	ErrInvalidInput = errors.New("dados inválidos")
)

// Department representa um departamento da empresa.
type Department struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	Name        string     `json:"nome"`
	Description *string    `json:"descricao,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Client representa um cliente atendido pela empresa.
type Client struct {
	ID        uuid.UUID  `json:"id"`
	CompanyID uuid.UUID  `json:"company_id"`
	Name      string     `json:"nome"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"telefone,omitempty"`
	Document  *string    `json:"documento,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DepartmentInput carrega os campos editáveis de um departamento.
type DepartmentInput struct {
	Name        string  `json:"nome"`
	Description *string `json:"descricao"`
}

// ClientInput carrega os campos editáveis de um cliente.
type ClientInput struct {
	Name     string  `json:"nome"`
	Email    *string `json:"email"`
	Phone    *string `json:"telefone"`
	Document *string `json:"documento"`
}

package profile

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("perfil não encontrado")
	ErrAccountNotFound = errors.New("conta não encontrada")
)

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleGestor     = "gestor"
	RoleUsuario    = "usuario"
)

var validRoles = map[string]struct{}{
	RoleSuperAdmin: {},
	RoleAdmin:      {},
	RoleGestor:     {},
	RoleUsuario:    {},
}

// Profile representa o principal da aplicação: papel, empresa e departamento.
// A linha é materializada por trigger quando a conta é criada.
type Profile struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Nome         string     `json:"nome"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	Role         string     `json:"role"`
	CompanyID    *uuid.UUID `json:"company_id,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// IsSuperAdmin indica papel global sem vínculo fixo de empresa.
func (p Profile) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// Account guarda as credenciais geridas pelo provedor de identidade.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	SenhaHash string    `json:"-"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileInput contém campos mutáveis por administradores.
type UpdateProfileInput struct {
	ID           uuid.UUID
	Nome         string
	Role         string
	DepartmentID *uuid.UUID
}

// NormalizeRole padroniza o papel informado, caindo em usuario caso vazio.
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return RoleUsuario
	}
	return role
}

// IsValidRole informa se o papel é suportado.
func IsValidRole(role string) bool {
	_, ok := validRoles[strings.ToLower(strings.TrimSpace(role))]
	return ok
}

// Package perm concentra as regras de autorização por papel, vínculo de
// departamento e titularidade. As decisões são recalculadas a cada chamada:
// papel e titularidade podem mudar entre requisições, então nada é memorizado.
package perm

import (
	"context"

	"github.com/google/uuid"

	"github.com/smartplanhq/api/internal/profile"
)

// Store resolve os vínculos necessários às decisões que dependem do banco.
type Store interface {
	// PlanHasDepartment informa se o plano está vinculado ao departamento.
	PlanHasDepartment(ctx context.Context, planID, departmentID uuid.UUID) (bool, error)
	// UserOwnsActionPlanInPlan informa se o usuário é responsável por alguma
	// ação do plano.
	UserOwnsActionPlanInPlan(ctx context.Context, planID, userID uuid.UUID) (bool, error)
}

// TenantResource descreve um recurso escopado por empresa.
type TenantResource struct {
	CompanyID uuid.UUID
}

// PlanRef identifica um plano estratégico para fins de autorização.
type PlanRef struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
}

// ActionPlanRef carrega os campos da ação relevantes para autorização.
type ActionPlanRef struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	DepartmentID *uuid.UUID
	OwnerID      uuid.UUID
}

// BreakdownRef carrega os campos do desdobramento relevantes para autorização.
// O departamento vem da ação pai, já resolvido pelo chamador.
type BreakdownRef struct {
	ID                  uuid.UUID
	CompanyID           uuid.UUID
	ExecutorID          uuid.UUID
	ActionDepartmentID  *uuid.UUID
	ActionPlanCompanyID uuid.UUID
}

// Evaluator avalia permissões para o perfil autenticado.
type Evaluator struct {
	store Store
}

// NewEvaluator cria o avaliador de permissões.
func NewEvaluator(store Store) *Evaluator {
	return &Evaluator{store: store}
}

// sameTenant nega acesso cruzado entre empresas antes de qualquer regra de
// papel. Superadmin é isento do escopo.
func sameTenant(p *profile.Profile, companyID uuid.UUID) bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.CompanyID != nil && *p.CompanyID == companyID
}

// CanCreatePlan permite superadmin, admin e gestor.
func (e *Evaluator) CanCreatePlan(p *profile.Profile) bool {
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin, profile.RoleGestor:
		return true
	}
	return false
}

// CanEditPlan segue a matriz: superadmin sempre; admin na própria empresa;
// gestor quando seu departamento está vinculado ao plano; usuário quando é
// responsável por alguma ação do plano.
func (e *Evaluator) CanEditPlan(ctx context.Context, p *profile.Profile, plan PlanRef) (bool, error) {
	if !sameTenant(p, plan.CompanyID) {
		return false, nil
	}

	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin:
		return true, nil
	case profile.RoleGestor:
		if p.DepartmentID == nil {
			return false, nil
		}
		return e.store.PlanHasDepartment(ctx, plan.ID, *p.DepartmentID)
	case profile.RoleUsuario:
		return e.store.UserOwnsActionPlanInPlan(ctx, plan.ID, p.ID)
	}
	return false, nil
}

// CanDeletePlan permite apenas superadmin e admin.
func (e *Evaluator) CanDeletePlan(p *profile.Profile, plan PlanRef) bool {
	if !sameTenant(p, plan.CompanyID) {
		return false
	}
	return p.Role == profile.RoleSuperAdmin || p.Role == profile.RoleAdmin
}

// CanCreateActionPlan permite superadmin/admin sempre e gestor no próprio
// departamento.
func (e *Evaluator) CanCreateActionPlan(p *profile.Profile, companyID uuid.UUID, departmentID *uuid.UUID) bool {
	if !sameTenant(p, companyID) {
		return false
	}
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin:
		return true
	case profile.RoleGestor:
		return p.DepartmentID != nil && departmentID != nil && *p.DepartmentID == *departmentID
	}
	return false
}

// CanEditActionPlan estende a regra de criação com a exceção do responsável:
// o dono da ação sempre pode editá-la, independente do papel.
func (e *Evaluator) CanEditActionPlan(p *profile.Profile, ap ActionPlanRef) bool {
	if !sameTenant(p, ap.CompanyID) {
		return false
	}
	if ap.OwnerID == p.ID {
		return true
	}
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin:
		return true
	case profile.RoleGestor:
		return p.DepartmentID != nil && ap.DepartmentID != nil && *p.DepartmentID == *ap.DepartmentID
	}
	return false
}

// CanDeleteActionPlan segue a regra de criação, sem exceção de titularidade.
func (e *Evaluator) CanDeleteActionPlan(p *profile.Profile, ap ActionPlanRef) bool {
	return e.CanCreateActionPlan(p, ap.CompanyID, ap.DepartmentID)
}

// CanCreateBreakdown permite superadmin/admin sempre e gestor quando a ação
// pai pertence ao seu departamento.
func (e *Evaluator) CanCreateBreakdown(p *profile.Profile, ap ActionPlanRef) bool {
	if !sameTenant(p, ap.CompanyID) {
		return false
	}
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin:
		return true
	case profile.RoleGestor:
		return p.DepartmentID != nil && ap.DepartmentID != nil && *p.DepartmentID == *ap.DepartmentID
	}
	return false
}

// CanEditBreakdown estende a criação com a exceção do executor: quem executa
// o desdobramento sempre pode editá-lo.
func (e *Evaluator) CanEditBreakdown(p *profile.Profile, b BreakdownRef) bool {
	if !sameTenant(p, b.CompanyID) {
		return false
	}
	if b.ExecutorID == p.ID {
		return true
	}
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin:
		return true
	case profile.RoleGestor:
		return p.DepartmentID != nil && b.ActionDepartmentID != nil && *p.DepartmentID == *b.ActionDepartmentID
	}
	return false
}

// CanDeleteBreakdown segue a regra de criação, sem exceção do executor.
func (e *Evaluator) CanDeleteBreakdown(p *profile.Profile, b BreakdownRef) bool {
	if !sameTenant(p, b.CompanyID) {
		return false
	}
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin:
		return true
	case profile.RoleGestor:
		return p.DepartmentID != nil && b.ActionDepartmentID != nil && *p.DepartmentID == *b.ActionDepartmentID
	}
	return false
}

// CanAnnotateBreakdown cobre anexos e entradas de histórico: mesma regra de
// edição, que já inclui o executor.
func (e *Evaluator) CanAnnotateBreakdown(p *profile.Profile, b BreakdownRef) bool {
	return e.CanEditBreakdown(p, b)
}

// CanManageUsers permite superadmin e admin.
func (e *Evaluator) CanManageUsers(p *profile.Profile) bool {
	return p.Role == profile.RoleSuperAdmin || p.Role == profile.RoleAdmin
}

// CanManageDepartments permite superadmin e admin.
func (e *Evaluator) CanManageDepartments(p *profile.Profile) bool {
	return p.Role == profile.RoleSuperAdmin || p.Role == profile.RoleAdmin
}

// CanManageClients permite superadmin e admin.
func (e *Evaluator) CanManageClients(p *profile.Profile) bool {
	return p.Role == profile.RoleSuperAdmin || p.Role == profile.RoleAdmin
}

// CanManageParticipants permite admin e gestor além do superadmin.
func (e *Evaluator) CanManageParticipants(p *profile.Profile, ap ActionPlanRef) bool {
	if !sameTenant(p, ap.CompanyID) {
		return false
	}
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin, profile.RoleGestor:
		return true
	}
	return false
}

// CanViewManagerDashboard restringe o painel gerencial a perfis de gestão.
func (e *Evaluator) CanViewManagerDashboard(p *profile.Profile) bool {
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin, profile.RoleGestor:
		return true
	}
	return false
}

// CanEditObjectives segue a regra de edição de plano para objetivos e MVV.
func (e *Evaluator) CanEditObjectives(ctx context.Context, p *profile.Profile, plan PlanRef) (bool, error) {
	if !sameTenant(p, plan.CompanyID) {
		return false, nil
	}
	switch p.Role {
	case profile.RoleSuperAdmin, profile.RoleAdmin:
		return true, nil
	case profile.RoleGestor:
		if p.DepartmentID == nil {
			return false, nil
		}
		return e.store.PlanHasDepartment(ctx, plan.ID, *p.DepartmentID)
	}
	return false, nil
}

// CanEditMVV usa a mesma matriz de objetivos.
func (e *Evaluator) CanEditMVV(ctx context.Context, p *profile.Profile, plan PlanRef) (bool, error) {
	return e.CanEditObjectives(ctx, p, plan)
}

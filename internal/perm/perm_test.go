package perm

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/smartplanhq/api/internal/profile"
)

type stubStore struct {
	planDepartments map[uuid.UUID]uuid.UUID // plano -> departamento vinculado
	ownedPlans      map[uuid.UUID]uuid.UUID // plano -> dono de ação
}

func (s *stubStore) PlanHasDepartment(ctx context.Context, planID, departmentID uuid.UUID) (bool, error) {
	return s.planDepartments[planID] == departmentID, nil
}

func (s *stubStore) UserOwnsActionPlanInPlan(ctx context.Context, planID, userID uuid.UUID) (bool, error) {
	return s.ownedPlans[planID] == userID, nil
}

func newProfile(role string, companyID, departmentID *uuid.UUID) *profile.Profile {
	return &profile.Profile{ID: uuid.New(), Role: role, CompanyID: companyID, DepartmentID: departmentID}
}

func TestCrossTenantDeniesBeforeRole(t *testing.T) {
	mine, other := uuid.New(), uuid.New()
	e := NewEvaluator(&stubStore{})

	admin := newProfile(profile.RoleAdmin, &mine, nil)
	plan := PlanRef{ID: uuid.New(), CompanyID: other}

	ok, err := e.CanEditPlan(context.Background(), admin, plan)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if ok {
		t.Fatal("admin de outra empresa não pode editar plano")
	}
	if e.CanDeletePlan(admin, plan) {
		t.Fatal("admin de outra empresa não pode excluir plano")
	}

	ap := ActionPlanRef{ID: uuid.New(), CompanyID: other, OwnerID: admin.ID}
	if e.CanEditActionPlan(admin, ap) {
		t.Fatal("titularidade não vale entre empresas distintas")
	}
}

func TestSuperadminExemptFromTenantScope(t *testing.T) {
	other := uuid.New()
	e := NewEvaluator(&stubStore{})
	super := newProfile(profile.RoleSuperAdmin, nil, nil)

	ok, err := e.CanEditPlan(context.Background(), super, PlanRef{ID: uuid.New(), CompanyID: other})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !ok {
		t.Fatal("superadmin edita planos de qualquer empresa")
	}
}

func TestCanCreatePlanByRole(t *testing.T) {
	companyID := uuid.New()
	e := NewEvaluator(&stubStore{})

	cases := []struct {
		role string
		want bool
	}{
		{profile.RoleSuperAdmin, true},
		{profile.RoleAdmin, true},
		{profile.RoleGestor, true},
		{profile.RoleUsuario, false},
	}
	for _, tc := range cases {
		p := newProfile(tc.role, &companyID, nil)
		if got := e.CanCreatePlan(p); got != tc.want {
			t.Errorf("CanCreatePlan(%s) = %v, esperava %v", tc.role, got, tc.want)
		}
	}
}

func TestCanEditPlanGestorDepartmentLink(t *testing.T) {
	companyID, deptID := uuid.New(), uuid.New()
	linked := PlanRef{ID: uuid.New(), CompanyID: companyID}
	unlinked := PlanRef{ID: uuid.New(), CompanyID: companyID}

	e := NewEvaluator(&stubStore{planDepartments: map[uuid.UUID]uuid.UUID{linked.ID: deptID}})
	gestor := newProfile(profile.RoleGestor, &companyID, &deptID)

	ok, err := e.CanEditPlan(context.Background(), gestor, linked)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !ok {
		t.Fatal("gestor com departamento vinculado deve editar o plano")
	}

	ok, err = e.CanEditPlan(context.Background(), gestor, unlinked)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if ok {
		t.Fatal("gestor sem vínculo não pode editar o plano")
	}
}

func TestCanEditPlanUsuarioOwnsActionPlan(t *testing.T) {
	companyID := uuid.New()
	plan := PlanRef{ID: uuid.New(), CompanyID: companyID}
	usuario := newProfile(profile.RoleUsuario, &companyID, nil)

	e := NewEvaluator(&stubStore{ownedPlans: map[uuid.UUID]uuid.UUID{plan.ID: usuario.ID}})
	ok, err := e.CanEditPlan(context.Background(), usuario, plan)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !ok {
		t.Fatal("usuário responsável por ação do plano deve poder editá-lo")
	}

	outro := newProfile(profile.RoleUsuario, &companyID, nil)
	ok, err = e.CanEditPlan(context.Background(), outro, plan)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if ok {
		t.Fatal("usuário sem ação no plano não pode editá-lo")
	}
}

func TestGestorActionPlanDepartmentMatrix(t *testing.T) {
	companyID, d1, d2 := uuid.New(), uuid.New(), uuid.New()
	gestor := newProfile(profile.RoleGestor, &companyID, &d1)
	e := NewEvaluator(&stubStore{})

	same := ActionPlanRef{ID: uuid.New(), CompanyID: companyID, DepartmentID: &d1, OwnerID: uuid.New()}
	othr := ActionPlanRef{ID: uuid.New(), CompanyID: companyID, DepartmentID: &d2, OwnerID: uuid.New()}

	if !e.CanEditActionPlan(gestor, same) {
		t.Fatal("gestor edita ação do próprio departamento")
	}
	if e.CanEditActionPlan(gestor, othr) {
		t.Fatal("gestor não edita ação de outro departamento, mesmo na mesma empresa")
	}
}

func TestOwnerAlwaysEditsActionPlan(t *testing.T) {
	companyID, deptID := uuid.New(), uuid.New()
	owner := newProfile(profile.RoleUsuario, &companyID, nil)
	e := NewEvaluator(&stubStore{})

	ap := ActionPlanRef{ID: uuid.New(), CompanyID: companyID, DepartmentID: &deptID, OwnerID: owner.ID}
	if !e.CanEditActionPlan(owner, ap) {
		t.Fatal("responsável sempre edita a própria ação")
	}
	if e.CanDeleteActionPlan(owner, ap) {
		t.Fatal("titularidade não concede exclusão")
	}
}

func TestExecutorAlwaysEditsBreakdown(t *testing.T) {
	companyID := uuid.New()
	executor := newProfile(profile.RoleUsuario, &companyID, nil)
	e := NewEvaluator(&stubStore{})

	b := BreakdownRef{ID: uuid.New(), CompanyID: companyID, ExecutorID: executor.ID}
	if !e.CanEditBreakdown(executor, b) {
		t.Fatal("executor sempre edita o próprio desdobramento")
	}
	if !e.CanAnnotateBreakdown(executor, b) {
		t.Fatal("executor pode anexar e comentar no próprio desdobramento")
	}
	if e.CanDeleteBreakdown(executor, b) {
		t.Fatal("executor comum não exclui desdobramento")
	}
}

func TestGestorBreakdownViaActionDepartment(t *testing.T) {
	companyID, d1, d2 := uuid.New(), uuid.New(), uuid.New()
	gestor := newProfile(profile.RoleGestor, &companyID, &d1)
	e := NewEvaluator(&stubStore{})

	same := BreakdownRef{ID: uuid.New(), CompanyID: companyID, ExecutorID: uuid.New(), ActionDepartmentID: &d1}
	othr := BreakdownRef{ID: uuid.New(), CompanyID: companyID, ExecutorID: uuid.New(), ActionDepartmentID: &d2}

	if !e.CanEditBreakdown(gestor, same) {
		t.Fatal("gestor edita desdobramento de ação do seu departamento")
	}
	if e.CanEditBreakdown(gestor, othr) {
		t.Fatal("gestor não edita desdobramento de outro departamento")
	}
	if !e.CanDeleteBreakdown(gestor, same) {
		t.Fatal("gestor exclui desdobramento do próprio departamento")
	}
}

func TestManagementPredicates(t *testing.T) {
	companyID := uuid.New()
	e := NewEvaluator(&stubStore{})

	admin := newProfile(profile.RoleAdmin, &companyID, nil)
	gestor := newProfile(profile.RoleGestor, &companyID, nil)
	usuario := newProfile(profile.RoleUsuario, &companyID, nil)

	if !e.CanManageUsers(admin) || !e.CanManageDepartments(admin) || !e.CanManageClients(admin) {
		t.Fatal("admin gerencia usuários, departamentos e clientes")
	}
	if e.CanManageUsers(gestor) || e.CanManageDepartments(gestor) || e.CanManageClients(gestor) {
		t.Fatal("gestor não gerencia cadastros administrativos")
	}
	if !e.CanViewManagerDashboard(gestor) {
		t.Fatal("gestor acessa painel gerencial")
	}
	if e.CanViewManagerDashboard(usuario) {
		t.Fatal("usuário comum não acessa painel gerencial")
	}

	ap := ActionPlanRef{ID: uuid.New(), CompanyID: companyID, OwnerID: uuid.New()}
	if !e.CanManageParticipants(gestor, ap) {
		t.Fatal("gestor gerencia participantes de ações")
	}
	if e.CanManageParticipants(usuario, ap) {
		t.Fatal("usuário comum não gerencia participantes")
	}
}

package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sqlActionsByOwner = `
		SELECT id, title, department_id, due_date, status, progress
		FROM action_plans
		WHERE company_id = $1 AND owner_id = $2`

	sqlBreakdownsByExecutor = `
		SELECT id, title, due_date, status, effort, completed
		FROM action_breakdowns
		WHERE company_id = $1 AND executor_id = $2`

	sqlActionsByCompany = `
		SELECT id, title, department_id, due_date, status, progress
		FROM action_plans
		WHERE company_id = $1`

	sqlBreakdownsByCompany = `
		SELECT id, title, due_date, status, effort, completed
		FROM action_breakdowns
		WHERE company_id = $1`

	sqlActionsByPlan = `
		SELECT id, title, department_id, due_date, status, progress
		FROM action_plans
		WHERE company_id = $1 AND plan_id = $2`

	sqlBreakdownsByPlan = `
		SELECT b.id, b.title, b.due_date, b.status, b.effort, b.completed
		FROM action_breakdowns b
		JOIN action_plans ap ON ap.id = b.action_plan_id
		WHERE b.company_id = $1 AND ap.plan_id = $2`

	sqlCountPlansByCreator = `
		SELECT COUNT(*) FROM strategic_plans WHERE company_id = $1 AND created_by = $2`

	sqlCountPlansByCompany = `
		SELECT COUNT(*) FROM strategic_plans WHERE company_id = $1`

	sqlCountUsersByCompany = `
		SELECT COUNT(*) FROM profiles WHERE company_id = $1`

	sqlCountObjectivesByPlan = `
		SELECT COUNT(*) FROM objectives o
		JOIN strategic_plans sp ON sp.id = o.plan_id
		WHERE sp.company_id = $1 AND o.plan_id = $2`

	sqlDepartmentNames = `
		SELECT id, name FROM departments WHERE company_id = $1`
)

// Repository carrega as coleções achatadas que alimentam os redutores.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o repositório do painel.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActionsByOwner lista as ações de um responsável.
func (r *Repository) ActionsByOwner(ctx context.Context, companyID, ownerID uuid.UUID) ([]ActionItem, error) {
	return r.queryActions(ctx, sqlActionsByOwner, companyID, ownerID)
}

// BreakdownsByExecutor lista os desdobramentos de um executor.
func (r *Repository) BreakdownsByExecutor(ctx context.Context, companyID, executorID uuid.UUID) ([]BreakdownItem, error) {
	return r.queryBreakdowns(ctx, sqlBreakdownsByExecutor, companyID, executorID)
}

// ActionsByCompany lista todas as ações da empresa.
func (r *Repository) ActionsByCompany(ctx context.Context, companyID uuid.UUID) ([]ActionItem, error) {
	return r.queryActions(ctx, sqlActionsByCompany, companyID)
}

// BreakdownsByCompany lista todos os desdobramentos da empresa.
func (r *Repository) BreakdownsByCompany(ctx context.Context, companyID uuid.UUID) ([]BreakdownItem, error) {
	return r.queryBreakdowns(ctx, sqlBreakdownsByCompany, companyID)
}

// ActionsByPlan lista as ações de um plano estratégico.
func (r *Repository) ActionsByPlan(ctx context.Context, companyID, planID uuid.UUID) ([]ActionItem, error) {
	return r.queryActions(ctx, sqlActionsByPlan, companyID, planID)
}

// BreakdownsByPlan lista os desdobramentos de um plano estratégico.
func (r *Repository) BreakdownsByPlan(ctx context.Context, companyID, planID uuid.UUID) ([]BreakdownItem, error) {
	return r.queryBreakdowns(ctx, sqlBreakdownsByPlan, companyID, planID)
}

// CountPlansByCreator conta planos criados pelo usuário.
func (r *Repository) CountPlansByCreator(ctx context.Context, companyID, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, sqlCountPlansByCreator, companyID, userID).Scan(&n)
	return n, err
}

// CountPlansByCompany conta os planos da empresa.
func (r *Repository) CountPlansByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, sqlCountPlansByCompany, companyID).Scan(&n)
	return n, err
}

// CountUsersByCompany conta os perfis da empresa.
func (r *Repository) CountUsersByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, sqlCountUsersByCompany, companyID).Scan(&n)
	return n, err
}

// CountObjectivesByPlan conta os objetivos de um plano.
func (r *Repository) CountObjectivesByPlan(ctx context.Context, companyID, planID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, sqlCountObjectivesByPlan, companyID, planID).Scan(&n)
	return n, err
}

// DepartmentNames mapeia id -> nome dos departamentos da empresa.
func (r *Repository) DepartmentNames(ctx context.Context, companyID uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.pool.Query(ctx, sqlDepartmentNames, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (r *Repository) queryActions(ctx context.Context, sql string, args ...any) ([]ActionItem, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]ActionItem, 0)
	for rows.Next() {
		var a ActionItem
		if err := rows.Scan(&a.ID, &a.Title, &a.DepartmentID, &a.DueDate, &a.Status, &a.Progress); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (r *Repository) queryBreakdowns(ctx context.Context, sql string, args ...any) ([]BreakdownItem, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdowns := make([]BreakdownItem, 0)
	for rows.Next() {
		var b BreakdownItem
		if err := rows.Scan(&b.ID, &b.Title, &b.DueDate, &b.Status, &b.Effort, &b.Completed); err != nil {
			return nil, err
		}
		breakdowns = append(breakdowns, b)
	}
	return breakdowns, rows.Err()
}

package plan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartplanhq/api/internal/db"
)

const (
	planColumns = `id, company_id, name, description, planning_date, execution_from, execution_to, created_by, created_at, updated_at`

	sqlGetPlan = `
		SELECT ` + planColumns + `
		FROM strategic_plans
		WHERE id = $1 AND company_id = $2`

	sqlListPlans = `
		SELECT ` + planColumns + `
		FROM strategic_plans
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	sqlCountPlans = `
		SELECT COUNT(*) FROM strategic_plans WHERE company_id = $1`

	sqlCreatePlan = `
		INSERT INTO strategic_plans (company_id, name, description, planning_date, execution_from, execution_to, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + planColumns

	sqlUpdatePlan = `
		UPDATE strategic_plans
		SET name = $3, description = $4, planning_date = $5, execution_from = $6, execution_to = $7, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + planColumns

	sqlDeletePlan = `
		DELETE FROM strategic_plans WHERE id = $1 AND company_id = $2`

	sqlListPlanDepartments = `
		SELECT department_id FROM plan_departments WHERE plan_id = $1`

	sqlClearPlanDepartments = `
		DELETE FROM plan_departments WHERE plan_id = $1`

	sqlLinkPlanDepartment = `
		INSERT INTO plan_departments (plan_id, department_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	objectiveColumns = `id, plan_id, title, summary, status, position, created_at, updated_at`

	sqlGetObjective = `
		SELECT ` + objectiveColumns + `
		FROM objectives
		WHERE id = $1 AND plan_id = $2`

	sqlListObjectives = `
		SELECT ` + objectiveColumns + `
		FROM objectives
		WHERE plan_id = $1
		ORDER BY position ASC`

	sqlNextObjectivePosition = `
		SELECT COALESCE(MAX(position), 0) + 1 FROM objectives WHERE plan_id = $1`

	sqlCreateObjective = `
		INSERT INTO objectives (plan_id, title, summary, status, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + objectiveColumns

	sqlUpdateObjective = `
		UPDATE objectives
		SET title = $3, summary = $4, status = $5, updated_at = NOW()
		WHERE id = $1 AND plan_id = $2
		RETURNING ` + objectiveColumns

	sqlSetObjectivePosition = `
		UPDATE objectives SET position = $3, updated_at = NOW()
		WHERE id = $1 AND plan_id = $2`

	sqlDeleteObjective = `
		DELETE FROM objectives WHERE id = $1 AND plan_id = $2`

	sqlGetMVV = `
		SELECT plan_id, mission, vision, "values", updated_at
		FROM plan_mvv
		WHERE plan_id = $1`

	sqlUpsertMVV = `
		INSERT INTO plan_mvv (plan_id, mission, vision, "values", updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (plan_id)
		DO UPDATE SET mission = EXCLUDED.mission, vision = EXCLUDED.vision, "values" = EXCLUDED."values", updated_at = NOW()
		RETURNING plan_id, mission, vision, "values", updated_at`
)

// Repository acessa planos, objetivos e MVV no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o repositório de planos.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID busca um plano no escopo da empresa, com departamentos vinculados.
func (r *Repository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*Plan, error) {
	p, err := scanPlan(r.pool.QueryRow(ctx, sqlGetPlan, id, companyID))
	if err != nil {
		return nil, err
	}
	if p.DepartmentIDs, err = r.listDepartmentIDs(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// List lista planos paginados, mais recentes primeiro.
func (r *Repository) List(ctx context.Context, companyID uuid.UUID, limit, offset int) (*Page, error) {
	var total int
	if err := r.pool.QueryRow(ctx, sqlCountPlans, companyID).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, sqlListPlans, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Plan, 0)
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.PlanningDate, &p.ExecutionFrom, &p.ExecutionTo, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].DepartmentIDs, err = r.listDepartmentIDs(ctx, items[i].ID); err != nil {
			return nil, err
		}
	}

	return &Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// Create insere o plano e vincula os departamentos na mesma transação.
func (r *Repository) Create(ctx context.Context, companyID, createdBy uuid.UUID, input PlanInput) (*Plan, error) {
	var p *Plan
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		p, err = scanPlan(tx.QueryRow(ctx, sqlCreatePlan,
			companyID, input.Name, input.Description, input.PlanningDate, input.ExecutionFrom, input.ExecutionTo, createdBy))
		if err != nil {
			return err
		}
		for _, deptID := range input.DepartmentIDs {
			if _, err := tx.Exec(ctx, sqlLinkPlanDepartment, p.ID, deptID); err != nil {
				return err
			}
		}
		p.DepartmentIDs = input.DepartmentIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update atualiza o plano e substitui os vínculos de departamento.
func (r *Repository) Update(ctx context.Context, id, companyID uuid.UUID, input PlanInput) (*Plan, error) {
	var p *Plan
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		p, err = scanPlan(tx.QueryRow(ctx, sqlUpdatePlan,
			id, companyID, input.Name, input.Description, input.PlanningDate, input.ExecutionFrom, input.ExecutionTo))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sqlClearPlanDepartments, id); err != nil {
			return err
		}
		for _, deptID := range input.DepartmentIDs {
			if _, err := tx.Exec(ctx, sqlLinkPlanDepartment, id, deptID); err != nil {
				return err
			}
		}
		p.DepartmentIDs = input.DepartmentIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete remove o plano; filhos caem por ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, sqlDeletePlan, id, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) listDepartmentIDs(ctx context.Context, planID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, sqlListPlanDepartments, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetObjective busca um objetivo do plano.
func (r *Repository) GetObjective(ctx context.Context, id, planID uuid.UUID) (*Objective, error) {
	return scanObjective(r.pool.QueryRow(ctx, sqlGetObjective, id, planID))
}

// ListObjectives lista os objetivos do plano por posição.
func (r *Repository) ListObjectives(ctx context.Context, planID uuid.UUID) ([]Objective, error) {
	rows, err := r.pool.Query(ctx, sqlListObjectives, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	objectives := make([]Objective, 0)
	for rows.Next() {
		var o Objective
		if err := rows.Scan(&o.ID, &o.PlanID, &o.Title, &o.Summary, &o.Status, &o.Position, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		objectives = append(objectives, o)
	}
	return objectives, rows.Err()
}

// CreateObjective insere o objetivo na próxima posição livre.
func (r *Repository) CreateObjective(ctx context.Context, planID uuid.UUID, input ObjectiveInput) (*Objective, error) {
	var o *Objective
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var position int
		if err := tx.QueryRow(ctx, sqlNextObjectivePosition, planID).Scan(&position); err != nil {
			return err
		}
		var err error
		o, err = scanObjective(tx.QueryRow(ctx, sqlCreateObjective, planID, input.Title, input.Summary, input.Status, position))
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateObjective atualiza título, resumo e status.
func (r *Repository) UpdateObjective(ctx context.Context, id, planID uuid.UUID, input ObjectiveInput) (*Objective, error) {
	return scanObjective(r.pool.QueryRow(ctx, sqlUpdateObjective, id, planID, input.Title, input.Summary, input.Status))
}

// ReorderObjectives aplica a ordem informada numa única transação.
func (r *Repository) ReorderObjectives(ctx context.Context, planID uuid.UUID, orderedIDs []uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		for i, id := range orderedIDs {
			tag, err := tx.Exec(ctx, sqlSetObjectivePosition, id, planID, i+1)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}

// DeleteObjective remove o objetivo do plano.
func (r *Repository) DeleteObjective(ctx context.Context, id, planID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, sqlDeleteObjective, id, planID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMVV busca o quadro missão/visão/valores; ausência não é erro.
func (r *Repository) GetMVV(ctx context.Context, planID uuid.UUID) (*MVV, error) {
	var m MVV
	err := r.pool.QueryRow(ctx, sqlGetMVV, planID).Scan(&m.PlanID, &m.Mission, &m.Vision, &m.Values, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &MVV{PlanID: planID}, nil
		}
		return nil, err
	}
	return &m, nil
}

// UpsertMVV grava o quadro, criando a linha na primeira edição.
func (r *Repository) UpsertMVV(ctx context.Context, planID uuid.UUID, input MVVInput) (*MVV, error) {
	var m MVV
	err := r.pool.QueryRow(ctx, sqlUpsertMVV, planID, input.Mission, input.Vision, input.Values).
		Scan(&m.PlanID, &m.Mission, &m.Vision, &m.Values, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.PlanningDate, &p.ExecutionFrom, &p.ExecutionTo, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanObjective(row pgx.Row) (*Objective, error) {
	var o Objective
	err := row.Scan(&o.ID, &o.PlanID, &o.Title, &o.Summary, &o.Status, &o.Position, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

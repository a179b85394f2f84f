package action

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartplanhq/api/internal/db"
)

const (
	actionColumns = `id, company_id, plan_id, objective_id, title, description, department_id, owner_id, start_date, due_date, status, progress, created_at, updated_at`

	sqlGetAction = `
		SELECT ` + actionColumns + `
		FROM action_plans
		WHERE id = $1 AND company_id = $2`

	sqlListActionsByPlan = `
		SELECT ` + actionColumns + `
		FROM action_plans
		WHERE plan_id = $1 AND company_id = $2
		ORDER BY created_at ASC`

	sqlCreateAction = `
		INSERT INTO action_plans (company_id, plan_id, objective_id, title, description, department_id, owner_id, start_date, due_date, status, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + actionColumns

	sqlUpdateAction = `
		UPDATE action_plans
		SET objective_id = $3, title = $4, description = $5, department_id = $6, owner_id = $7,
		    start_date = $8, due_date = $9, status = $10, progress = $11, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + actionColumns

	sqlDeleteAction = `
		DELETE FROM action_plans WHERE id = $1 AND company_id = $2`

	sqlListParticipants = `
		SELECT profile_id FROM action_plan_participants WHERE action_plan_id = $1`

	sqlClearParticipants = `
		DELETE FROM action_plan_participants WHERE action_plan_id = $1`

	sqlAddParticipant = `
		INSERT INTO action_plan_participants (action_plan_id, profile_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
)

// Repository acessa planos de ação e participantes no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o repositório de planos de ação.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID busca um plano de ação no escopo da empresa, com participantes.
func (r *Repository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*ActionPlan, error) {
	ap, err := scanAction(r.pool.QueryRow(ctx, sqlGetAction, id, companyID))
	if err != nil {
		return nil, err
	}
	if ap.Participants, err = r.listParticipants(ctx, ap.ID); err != nil {
		return nil, err
	}
	return ap, nil
}

// ListByPlan lista as ações de um plano estratégico.
func (r *Repository) ListByPlan(ctx context.Context, planID, companyID uuid.UUID) ([]ActionPlan, error) {
	rows, err := r.pool.Query(ctx, sqlListActionsByPlan, planID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]ActionPlan, 0)
	for rows.Next() {
		ap, err := scanActionFromRows(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, *ap)
	}
	return actions, rows.Err()
}

// Create insere um plano de ação.
func (r *Repository) Create(ctx context.Context, companyID, planID uuid.UUID, input Input) (*ActionPlan, error) {
	return scanAction(r.pool.QueryRow(ctx, sqlCreateAction,
		companyID, planID, input.ObjectiveID, input.Title, input.Description, input.DepartmentID,
		input.OwnerID, input.StartDate, input.DueDate, input.Status, input.Progress))
}

// Update atualiza um plano de ação.
func (r *Repository) Update(ctx context.Context, id, companyID uuid.UUID, input Input) (*ActionPlan, error) {
	return scanAction(r.pool.QueryRow(ctx, sqlUpdateAction,
		id, companyID, input.ObjectiveID, input.Title, input.Description, input.DepartmentID,
		input.OwnerID, input.StartDate, input.DueDate, input.Status, input.Progress))
}

// Delete remove um plano de ação.
func (r *Repository) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, sqlDeleteAction, id, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetParticipants substitui a lista de participantes numa transação.
func (r *Repository) SetParticipants(ctx context.Context, actionPlanID uuid.UUID, profileIDs []uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, sqlClearParticipants, actionPlanID); err != nil {
			return err
		}
		for _, profileID := range profileIDs {
			if _, err := tx.Exec(ctx, sqlAddParticipant, actionPlanID, profileID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListParticipants lista os participantes de um plano de ação.
func (r *Repository) ListParticipants(ctx context.Context, actionPlanID uuid.UUID) ([]uuid.UUID, error) {
	return r.listParticipants(ctx, actionPlanID)
}

func (r *Repository) listParticipants(ctx context.Context, actionPlanID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, sqlListParticipants, actionPlanID)
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

func scanAction(row pgx.Row) (*ActionPlan, error) {
	var ap ActionPlan
	err := row.Scan(&ap.ID, &ap.CompanyID, &ap.PlanID, &ap.ObjectiveID, &ap.Title, &ap.Description,
		&ap.DepartmentID, &ap.OwnerID, &ap.StartDate, &ap.DueDate, &ap.Status, &ap.Progress, &ap.CreatedAt, &ap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func scanActionFromRows(rows pgx.Rows) (*ActionPlan, error) {
	var ap ActionPlan
	err := rows.Scan(&ap.ID, &ap.CompanyID, &ap.PlanID, &ap.ObjectiveID, &ap.Title, &ap.Description,
		&ap.DepartmentID, &ap.OwnerID, &ap.StartDate, &ap.DueDate, &ap.Status, &ap.Progress, &ap.CreatedAt, &ap.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ap, nil
}

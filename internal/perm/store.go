package perm

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sqlPlanHasDepartment = `
		SELECT EXISTS (
			SELECT 1 FROM plan_departments
			WHERE plan_id = $1 AND department_id = $2
		)`

	sqlUserOwnsActionPlanInPlan = `
		SELECT EXISTS (
			SELECT 1 FROM action_plans
			WHERE plan_id = $1 AND owner_id = $2
		)`
)

// PGStore resolve vínculos de autorização direto no Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore cria o store de autorização.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) PlanHasDepartment(ctx context.Context, planID, departmentID uuid.UUID) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, sqlPlanHasDepartment, planID, departmentID).Scan(&ok)
	return ok, err
}

func (s *PGStore) UserOwnsActionPlanInPlan(ctx context.Context, planID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, sqlUserOwnsActionPlanInPlan, planID, userID).Scan(&ok)
	return ok, err
}

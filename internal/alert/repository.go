package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OverdueSummary agrega itens vencidos há mais de uma semana por empresa.
type OverdueSummary struct {
	CompanyID       uuid.UUID
	CompanyName     string
	OverdueActions  int
	OverdueBreakdns int
}

// Repository consulta itens críticos direto nas tabelas de planejamento.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o repositório de alertas.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const overdueQuery = `
    SELECT c.id,
           c.name,
           COALESCE(a.total, 0) AS overdue_actions,
           COALESCE(b.total, 0) AS overdue_breakdowns
    FROM companies c
    LEFT JOIN (
        SELECT company_id, COUNT(*) AS total
        FROM action_plans
        WHERE due_date < $1
          AND status NOT IN ('concluido', 'cancelado')
        GROUP BY company_id
    ) a ON a.company_id = c.id
    LEFT JOIN (
        SELECT ap.company_id, COUNT(*) AS total
        FROM action_breakdowns bd
        JOIN action_plans ap ON ap.id = bd.action_plan_id
        WHERE bd.due_date < $1
          AND NOT bd.completed
        GROUP BY ap.company_id
    ) b ON b.company_id = c.id
    WHERE COALESCE(a.total, 0) + COALESCE(b.total, 0) > 0
    ORDER BY c.name ASC
`

// ListOverdue devolve empresas com itens vencidos antes do corte informado.
func (r *Repository) ListOverdue(ctx context.Context, cutoff time.Time) ([]OverdueSummary, error) {
	rows, err := r.pool.Query(ctx, overdueQuery, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []OverdueSummary
	for rows.Next() {
		var s OverdueSummary
		if err := rows.Scan(&s.CompanyID, &s.CompanyName, &s.OverdueActions, &s.OverdueBreakdns); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return summaries, nil
}

package breakdown

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	breakdownColumns = `b.id, b.company_id, b.action_plan_id, b.title, b.executor_id, b.required_resources,
		b.financial_resources, b.start_date, b.due_date, b.effort, b.status, b.completed, b.created_at, b.updated_at,
		ap.department_id`

	sqlGetBreakdown = `
		SELECT ` + breakdownColumns + `
		FROM action_breakdowns b
		JOIN action_plans ap ON ap.id = b.action_plan_id
		WHERE b.id = $1 AND b.company_id = $2`

	sqlListBreakdownsByAction = `
		SELECT ` + breakdownColumns + `
		FROM action_breakdowns b
		JOIN action_plans ap ON ap.id = b.action_plan_id
		WHERE b.action_plan_id = $1 AND b.company_id = $2
		ORDER BY b.created_at ASC`

	sqlCreateBreakdown = `
		INSERT INTO action_breakdowns (company_id, action_plan_id, title, executor_id, required_resources,
			financial_resources, start_date, due_date, effort, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	sqlUpdateBreakdown = `
		UPDATE action_breakdowns
		SET title = $3, executor_id = $4, required_resources = $5, financial_resources = $6,
		    start_date = $7, due_date = $8, effort = $9, status = $10, updated_at = NOW()
		WHERE id = $1 AND company_id = $2`

	sqlSetBreakdownCompletion = `
		UPDATE action_breakdowns
		SET completed = $3, status = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2`

	sqlDeleteBreakdown = `
		DELETE FROM action_breakdowns WHERE id = $1 AND company_id = $2`

	historyColumns = `id, breakdown_id, author_id, kind, text, metadata, created_at, updated_at`

	sqlGetHistoryEntry = `
		SELECT ` + historyColumns + `
		FROM breakdown_history
		WHERE id = $1 AND breakdown_id = $2`

	sqlListHistory = `
		SELECT ` + historyColumns + `
		FROM breakdown_history
		WHERE breakdown_id = $1
		ORDER BY created_at DESC`

	sqlInsertHistory = `
		INSERT INTO breakdown_history (breakdown_id, author_id, kind, text, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + historyColumns

	sqlUpdateHistoryText = `
		UPDATE breakdown_history
		SET text = $3, updated_at = NOW()
		WHERE id = $1 AND breakdown_id = $2
		RETURNING ` + historyColumns

	sqlDeleteHistory = `
		DELETE FROM breakdown_history WHERE id = $1 AND breakdown_id = $2`

	attachmentColumns = `id, breakdown_id, uploader_id, file_path, file_name, file_size, mime_type, description, created_at`

	sqlGetAttachment = `
		SELECT ` + attachmentColumns + `
		FROM breakdown_attachments
		WHERE id = $1 AND breakdown_id = $2`

	sqlListAttachments = `
		SELECT ` + attachmentColumns + `
		FROM breakdown_attachments
		WHERE breakdown_id = $1
		ORDER BY created_at DESC`

	sqlInsertAttachment = `
		INSERT INTO breakdown_attachments (breakdown_id, uploader_id, file_path, file_name, file_size, mime_type, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + attachmentColumns

	sqlDeleteAttachment = `
		DELETE FROM breakdown_attachments WHERE id = $1 AND breakdown_id = $2`
)

// Repository acessa desdobramentos, histórico e anexos no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o repositório de desdobramentos.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID busca um desdobramento com o departamento da ação pai.
func (r *Repository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*Breakdown, error) {
	return scanBreakdown(r.pool.QueryRow(ctx, sqlGetBreakdown, id, companyID))
}

// ListByAction lista os desdobramentos de um plano de ação.
func (r *Repository) ListByAction(ctx context.Context, actionPlanID, companyID uuid.UUID) ([]Breakdown, error) {
	rows, err := r.pool.Query(ctx, sqlListBreakdownsByAction, actionPlanID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdowns := make([]Breakdown, 0)
	for rows.Next() {
		var b Breakdown
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.ActionPlanID, &b.Title, &b.ExecutorID, &b.RequiredResources,
			&b.FinancialResources, &b.StartDate, &b.DueDate, &b.Effort, &b.Status, &b.Completed,
			&b.CreatedAt, &b.UpdatedAt, &b.ActionDepartmentID); err != nil {
			return nil, err
		}
		breakdowns = append(breakdowns, b)
	}
	return breakdowns, rows.Err()
}

// Create insere um desdobramento e devolve a linha completa.
func (r *Repository) Create(ctx context.Context, companyID, actionPlanID uuid.UUID, input Input) (*Breakdown, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, sqlCreateBreakdown,
		companyID, actionPlanID, input.Title, input.ExecutorID, input.RequiredResources,
		input.FinancialResources, input.StartDate, input.DueDate, input.Effort, input.Status).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, companyID)
}

// Update atualiza um desdobramento.
func (r *Repository) Update(ctx context.Context, id, companyID uuid.UUID, input Input) (*Breakdown, error) {
	tag, err := r.pool.Exec(ctx, sqlUpdateBreakdown,
		id, companyID, input.Title, input.ExecutorID, input.RequiredResources,
		input.FinancialResources, input.StartDate, input.DueDate, input.Effort, input.Status)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id, companyID)
}

// SetCompletion grava conclusão e o status correspondente.
func (r *Repository) SetCompletion(ctx context.Context, id, companyID uuid.UUID, completed bool, status string) (*Breakdown, error) {
	tag, err := r.pool.Exec(ctx, sqlSetBreakdownCompletion, id, companyID, completed, status)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id, companyID)
}

// Delete remove o desdobramento.
func (r *Repository) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, sqlDeleteBreakdown, id, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetHistoryEntry busca uma entrada do histórico.
func (r *Repository) GetHistoryEntry(ctx context.Context, id, breakdownID uuid.UUID) (*HistoryEntry, error) {
	return scanHistory(r.pool.QueryRow(ctx, sqlGetHistoryEntry, id, breakdownID))
}

// ListHistory lista o histórico do desdobramento, mais recente primeiro.
func (r *Repository) ListHistory(ctx context.Context, breakdownID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, sqlListHistory, breakdownID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.BreakdownID, &e.AuthorID, &e.Kind, &e.Text, &e.Metadata, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertHistory grava uma entrada no histórico.
func (r *Repository) InsertHistory(ctx context.Context, breakdownID, authorID uuid.UUID, kind, text string, metadata map[string]any) (*HistoryEntry, error) {
	return scanHistory(r.pool.QueryRow(ctx, sqlInsertHistory, breakdownID, authorID, kind, text, metadata))
}

// UpdateHistoryText altera o texto de uma entrada.
func (r *Repository) UpdateHistoryText(ctx context.Context, id, breakdownID uuid.UUID, text string) (*HistoryEntry, error) {
	return scanHistory(r.pool.QueryRow(ctx, sqlUpdateHistoryText, id, breakdownID, text))
}

// DeleteHistory remove uma entrada do histórico.
func (r *Repository) DeleteHistory(ctx context.Context, id, breakdownID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, sqlDeleteHistory, id, breakdownID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

// GetAttachment busca os metadados de um anexo.
func (r *Repository) GetAttachment(ctx context.Context, id, breakdownID uuid.UUID) (*Attachment, error) {
	return scanAttachment(r.pool.QueryRow(ctx, sqlGetAttachment, id, breakdownID))
}

// ListAttachments lista os anexos do desdobramento.
func (r *Repository) ListAttachments(ctx context.Context, breakdownID uuid.UUID) ([]Attachment, error) {
	rows, err := r.pool.Query(ctx, sqlListAttachments, breakdownID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]Attachment, 0)
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.BreakdownID, &a.UploaderID, &a.FilePath, &a.FileName, &a.FileSize, &a.MimeType, &a.Description, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// InsertAttachment grava os metadados de um anexo.
func (r *Repository) InsertAttachment(ctx context.Context, a *Attachment) (*Attachment, error) {
	return scanAttachment(r.pool.QueryRow(ctx, sqlInsertAttachment,
		a.BreakdownID, a.UploaderID, a.FilePath, a.FileName, a.FileSize, a.MimeType, a.Description))
}

// DeleteAttachment remove os metadados de um anexo.
func (r *Repository) DeleteAttachment(ctx context.Context, id, breakdownID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, sqlDeleteAttachment, id, breakdownID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBreakdown(row pgx.Row) (*Breakdown, error) {
	var b Breakdown
	err := row.Scan(&b.ID, &b.CompanyID, &b.ActionPlanID, &b.Title, &b.ExecutorID, &b.RequiredResources,
		&b.FinancialResources, &b.StartDate, &b.DueDate, &b.Effort, &b.Status, &b.Completed,
		&b.CreatedAt, &b.UpdatedAt, &b.ActionDepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func scanHistory(row pgx.Row) (*HistoryEntry, error) {
	var e HistoryEntry
	err := row.Scan(&e.ID, &e.BreakdownID, &e.AuthorID, &e.Kind, &e.Text, &e.Metadata, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	return &e, nil
}

func scanAttachment(row pgx.Row) (*Attachment, error) {
	var a Attachment
	err := row.Scan(&a.ID, &a.BreakdownID, &a.UploaderID, &a.FilePath, &a.FileName, &a.FileSize, &a.MimeType, &a.Description, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

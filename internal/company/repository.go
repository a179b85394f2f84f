package company

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de empresas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de empresas.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID busca empresa pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	const query = `
        SELECT id, name, document, logo_url, created_at, updated_at
        FROM companies
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanCompany(row)
}

// List devolve todas as empresas ordenadas por nome.
func (r *Repository) List(ctx context.Context) ([]Company, error) {
	const query = `
        SELECT id, name, document, logo_url, created_at, updated_at
        FROM companies
        ORDER BY name ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return companies, nil
}

// Create insere uma nova empresa e devolve os dados persistidos.
func (r *Repository) Create(ctx context.Context, input CreateCompanyInput) (*Company, error) {
	const query = `
        INSERT INTO companies (id, name, document, logo_url)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, document, logo_url, created_at, updated_at
    `

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		strings.TrimSpace(input.Name),
		input.Document,
		input.LogoURL,
	)
	return scanCompany(row)
}

// Update altera apenas os campos informados.
func (r *Repository) Update(ctx context.Context, input UpdateCompanyInput) (*Company, error) {
	const query = `
        UPDATE companies
        SET name = COALESCE($2, name),
            document = COALESCE($3, document),
            logo_url = COALESCE($4, logo_url),
            updated_at = now()
        WHERE id = $1
        RETURNING id, name, document, logo_url, created_at, updated_at
    `

	row := r.pool.QueryRow(ctx, query, input.ID, input.Name, input.Document, input.LogoURL)
	return scanCompany(row)
}

// Stats agrega volumes da empresa para o painel administrativo.
func (r *Repository) Stats(ctx context.Context, companyID uuid.UUID) (*Stats, error) {
	const query = `
        SELECT
            (SELECT count(*) FROM profiles WHERE company_id = $1),
            (SELECT count(*) FROM strategic_plans WHERE company_id = $1),
            (SELECT count(*) FROM departments WHERE company_id = $1),
            (SELECT count(*) FROM action_plans WHERE company_id = $1)
    `

	var s Stats
	if err := r.pool.QueryRow(ctx, query, companyID).Scan(&s.TotalUsers, &s.TotalPlans, &s.TotalDepartments, &s.TotalActionPlans); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanCompany(row pgx.Row) (*Company, error) {
	var (
		c         Company
		document  *string
		logoURL   *string
		updatedAt *time.Time
	)

	if err := row.Scan(&c.ID, &c.Name, &document, &logoURL, &c.CreatedAt, &updatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c.Document = document
	c.LogoURL = logoURL
	c.UpdatedAt = updatedAt

	return &c, nil
}

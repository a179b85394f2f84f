package org

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	departmentColumns = `id, company_id, name, description, created_at, updated_at`

	sqlGetDepartment = `
		SELECT ` + departmentColumns + `
		FROM departments
		WHERE id = $1 AND company_id = $2`

	sqlListDepartments = `
		SELECT ` + departmentColumns + `
		FROM departments
		WHERE company_id = $1
		ORDER BY name ASC`

	sqlCreateDepartment = `
		INSERT INTO departments (company_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING ` + departmentColumns

	sqlUpdateDepartment = `
		UPDATE departments
		SET name = $3, description = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + departmentColumns

	sqlDeleteDepartment = `
		DELETE FROM departments WHERE id = $1 AND company_id = $2`

	clientColumns = `id, company_id, name, email, phone, document, created_at, updated_at`

	sqlGetClient = `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE id = $1 AND company_id = $2`

	sqlListClients = `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE company_id = $1
		ORDER BY name ASC`

	sqlCreateClient = `
		INSERT INTO clients (company_id, name, email, phone, document)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + clientColumns

	sqlUpdateClient = `
		UPDATE clients
		SET name = $3, email = $4, phone = $5, document = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + clientColumns

	sqlDeleteClient = `
		DELETE FROM clients WHERE id = $1 AND company_id = $2`
)

// Repository acessa departamentos e clientes no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o repositório organizacional.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetDepartment busca um departamento no escopo da empresa.
func (r *Repository) GetDepartment(ctx context.Context, id, companyID uuid.UUID) (*Department, error) {
	return scanDepartment(r.pool.QueryRow(ctx, sqlGetDepartment, id, companyID))
}

// ListDepartments lista os departamentos da empresa ordenados por nome.
func (r *Repository) ListDepartments(ctx context.Context, companyID uuid.UUID) ([]Department, error) {
	rows, err := r.pool.Query(ctx, sqlListDepartments, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]Department, 0)
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// CreateDepartment insere um novo departamento.
func (r *Repository) CreateDepartment(ctx context.Context, companyID uuid.UUID, input DepartmentInput) (*Department, error) {
	return scanDepartment(r.pool.QueryRow(ctx, sqlCreateDepartment, companyID, input.Name, input.Description))
}

// UpdateDepartment atualiza nome e descrição.
func (r *Repository) UpdateDepartment(ctx context.Context, id, companyID uuid.UUID, input DepartmentInput) (*Department, error) {
	return scanDepartment(r.pool.QueryRow(ctx, sqlUpdateDepartment, id, companyID, input.Name, input.Description))
}

// DeleteDepartment remove o departamento no escopo da empresa.
func (r *Repository) DeleteDepartment(ctx context.Context, id, companyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, sqlDeleteDepartment, id, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetClient busca um cliente no escopo da empresa.
func (r *Repository) GetClient(ctx context.Context, id, companyID uuid.UUID) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, sqlGetClient, id, companyID))
}

// ListClients lista os clientes da empresa ordenados por nome.
func (r *Repository) ListClients(ctx context.Context, companyID uuid.UUID) ([]Client, error) {
	rows, err := r.pool.Query(ctx, sqlListClients, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CreateClient insere um novo cliente.
func (r *Repository) CreateClient(ctx context.Context, companyID uuid.UUID, input ClientInput) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, sqlCreateClient, companyID, input.Name, input.Email, input.Phone, input.Document))
}

// UpdateClient atualiza os dados do cliente.
func (r *Repository) UpdateClient(ctx context.Context, id, companyID uuid.UUID, input ClientInput) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, sqlUpdateClient, id, companyID, input.Name, input.Email, input.Phone, input.Document))
}

// DeleteClient remove o cliente no escopo da empresa.
func (r *Repository) DeleteClient(ctx context.Context, id, companyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, sqlDeleteClient, id, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.CompanyID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

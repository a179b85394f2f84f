package profile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso a contas e perfis.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de perfis.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, email, nome, avatar_url, role, company_id, department_id, created_at, updated_at`

// GetByID busca o perfil pelo identificador compartilhado com a conta.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	const query = `
        SELECT ` + profileColumns + `
        FROM profiles
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanProfile(row)
}

// GetByEmail busca o perfil pelo e-mail normalizado.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	const query = `
        SELECT ` + profileColumns + `
        FROM profiles
        WHERE email = $1
    `

	row := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	return scanProfile(row)
}

// ListByCompany devolve perfis da empresa ordenados por nome.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]Profile, error) {
	const query = `
        SELECT ` + profileColumns + `
        FROM profiles
        WHERE company_id = $1
        ORDER BY nome ASC
    `

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return profiles, nil
}

// Update altera nome, papel e departamento do perfil.
func (r *Repository) Update(ctx context.Context, input UpdateProfileInput) (*Profile, error) {
	const query = `
        UPDATE profiles
        SET nome = $2,
            role = $3,
            department_id = $4,
            updated_at = now()
        WHERE id = $1
        RETURNING ` + profileColumns + `
    `

	row := r.pool.QueryRow(ctx, query,
		input.ID,
		strings.TrimSpace(input.Nome),
		strings.TrimSpace(strings.ToLower(input.Role)),
		input.DepartmentID,
	)
	return scanProfile(row)
}

// Provision completa o perfil recém-materializado com empresa, departamento e papel.
func (r *Repository) Provision(ctx context.Context, id uuid.UUID, companyID uuid.UUID, departmentID *uuid.UUID, role string) error {
	const query = `
        UPDATE profiles
        SET company_id = $2,
            department_id = $3,
            role = $4,
            updated_at = now()
        WHERE id = $1
    `

	tag, err := r.pool.Exec(ctx, query, id, companyID, departmentID, strings.ToLower(strings.TrimSpace(role)))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete remove o perfil (a conta associada cai por cascata).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM profiles WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAccountByEmail recupera a conta de credenciais pelo e-mail.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `
        SELECT id, email, senha_hash, ativo, created_at
        FROM accounts
        WHERE email = $1
    `

	row := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	return scanAccount(row)
}

// GetAccountByID recupera a conta pelo identificador.
func (r *Repository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	const query = `
        SELECT id, email, senha_hash, ativo, created_at
        FROM accounts
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanAccount(row)
}

// CreateAccount insere a conta de credenciais; o trigger materializa o perfil.
func (r *Repository) CreateAccount(ctx context.Context, email, nome, senhaHash string) (*Account, error) {
	const query = `
        INSERT INTO accounts (id, email, nome, senha_hash, ativo)
        VALUES ($1, $2, $3, $4, true)
        RETURNING id, email, senha_hash, ativo, created_at
    `

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		strings.ToLower(strings.TrimSpace(email)),
		strings.TrimSpace(nome),
		senhaHash,
	)
	return scanAccount(row)
}

// DeleteAccount remove a conta (rollback de provisionamento).
func (r *Repository) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM accounts WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdatePassword atualiza o hash da senha.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	const query = `UPDATE accounts SET senha_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var (
		p         Profile
		avatar    *string
		company   *uuid.UUID
		dept      *uuid.UUID
		updatedAt *time.Time
	)

	if err := row.Scan(&p.ID, &p.Email, &p.Nome, &avatar, &p.Role, &company, &dept, &p.CreatedAt, &updatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.AvatarURL = avatar
	p.CompanyID = company
	p.DepartmentID = dept
	p.UpdatedAt = updatedAt

	return &p, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Email, &a.SenhaHash, &a.Ativo, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

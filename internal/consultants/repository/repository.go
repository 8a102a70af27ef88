// Package repository persists consultants in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const consultantColumns = `id, name, email, role, is_active, last_lead_assigned_at, created_at`

func scanConsultant(row pgx.Row) (domain.Consultant, error) {
	var c domain.Consultant
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Role, &c.IsActive, &c.LastLeadAssignedAt, &c.CreatedAt)
	return c, err
}

// ListActive returns active consultants ordered by assignment clock,
// never-assigned first. This ordering IS the round-robin policy; the
// distribution engine just takes the head.
func (r *Repository) ListActive(ctx context.Context) ([]domain.Consultant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+consultantColumns+` FROM consultants
		 WHERE is_active = true
		 ORDER BY last_lead_assigned_at ASC NULLS FIRST, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active consultants: %w", err)
	}
	defer rows.Close()

	var consultants []domain.Consultant
	for rows.Next() {
		c, err := scanConsultant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consultant: %w", err)
		}
		consultants = append(consultants, c)
	}
	return consultants, rows.Err()
}

// List returns all consultants, active or not.
func (r *Repository) List(ctx context.Context) ([]domain.Consultant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+consultantColumns+` FROM consultants ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list consultants: %w", err)
	}
	defer rows.Close()

	var consultants []domain.Consultant
	for rows.Next() {
		c, err := scanConsultant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consultant: %w", err)
		}
		consultants = append(consultants, c)
	}
	return consultants, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (domain.Consultant, error) {
	c, err := scanConsultant(r.pool.QueryRow(ctx,
		`SELECT `+consultantColumns+` FROM consultants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Consultant{}, apperr.NotFound("consultant not found")
		}
		return domain.Consultant{}, fmt.Errorf("get consultant: %w", err)
	}
	return c, nil
}

// FindByName resolves a consultant by case-insensitive substring.
// Legacy intake rows carry free-text names, so exact matching would
// strand them.
func (r *Repository) FindByName(ctx context.Context, name string) (domain.Consultant, bool, error) {
	if name == "" {
		return domain.Consultant{}, false, nil
	}
	c, err := scanConsultant(r.pool.QueryRow(ctx,
		`SELECT `+consultantColumns+` FROM consultants
		 WHERE name ILIKE '%' || $1 || '%'
		 ORDER BY is_active DESC, created_at ASC
		 LIMIT 1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Consultant{}, false, nil
		}
		return domain.Consultant{}, false, fmt.Errorf("find consultant by name: %w", err)
	}
	return c, true, nil
}

// TouchAssignment advances the consultant's round-robin clock.
func (r *Repository) TouchAssignment(ctx context.Context, consultantID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE consultants SET last_lead_assigned_at = $1 WHERE id = $2`, at, consultantID)
	if err != nil {
		return fmt.Errorf("touch assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("consultant not found")
	}
	return nil
}

// GetCredentials returns the consultant plus password hash for login.
func (r *Repository) GetCredentials(ctx context.Context, email string) (domain.Consultant, string, error) {
	var c domain.Consultant
	var passwordHash string
	err := r.pool.QueryRow(ctx,
		`SELECT `+consultantColumns+`, password_hash FROM consultants WHERE lower(email) = lower($1)`,
		email).Scan(&c.ID, &c.Name, &c.Email, &c.Role, &c.IsActive, &c.LastLeadAssignedAt, &c.CreatedAt, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Consultant{}, "", apperr.Unauthorized("invalid credentials")
		}
		return domain.Consultant{}, "", fmt.Errorf("get credentials: %w", err)
	}
	return c, passwordHash, nil
}

// Create inserts a consultant with login credentials.
func (r *Repository) Create(ctx context.Context, name, email, role, passwordHash string) (domain.Consultant, error) {
	c, err := scanConsultant(r.pool.QueryRow(ctx,
		`INSERT INTO consultants (name, email, role, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+consultantColumns, name, email, role, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Consultant{}, apperr.Conflict("email already registered")
		}
		return domain.Consultant{}, fmt.Errorf("create consultant: %w", err)
	}
	return c, nil
}

// SetActive flips the active flag. Consultants are never deleted;
// deactivation just removes them from the rotation.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE consultants SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set consultant active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("consultant not found")
	}
	return nil
}

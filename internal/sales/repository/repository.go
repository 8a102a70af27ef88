// Package repository persists closed sales.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sale is a closed deal. Immutable once written; there is no update
// path anywhere in the system.
type Sale struct {
	ID           string
	LeadID       string
	ConsultantID string
	AmountCents  int64
	ProfitMargin float64
	SaleDate     time.Time
	CreatedAt    time.Time
}

// Summary aggregates a consultant's closed sales.
type Summary struct {
	ConsultantID string
	SalesCount   int
	TotalCents   int64
	AvgMargin    float64
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, sale Sale) (Sale, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sales (lead_id, consultant_id, amount_cents, profit_margin, sale_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		sale.LeadID, sale.ConsultantID, sale.AmountCents, sale.ProfitMargin, sale.SaleDate).
		Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return Sale{}, fmt.Errorf("insert sale: %w", err)
	}
	return sale, nil
}

// ListByConsultant returns a consultant's sales newest first. An empty
// consultantID returns everything.
func (r *Repository) ListByConsultant(ctx context.Context, consultantID string) ([]Sale, error) {
	query := `SELECT id, lead_id, consultant_id, amount_cents, profit_margin, sale_date, created_at
	          FROM sales`
	args := []any{}
	if consultantID != "" {
		query += ` WHERE consultant_id = $1`
		args = append(args, consultantID)
	}
	query += ` ORDER BY sale_date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.LeadID, &s.ConsultantID, &s.AmountCents, &s.ProfitMargin, &s.SaleDate, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// Summarize aggregates sales per consultant within the period.
func (r *Repository) Summarize(ctx context.Context, from, to time.Time) ([]Summary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT consultant_id, COUNT(*), COALESCE(SUM(amount_cents), 0), COALESCE(AVG(profit_margin), 0)
		 FROM sales
		 WHERE sale_date >= $1 AND sale_date < $2
		 GROUP BY consultant_id
		 ORDER BY SUM(amount_cents) DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize sales: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ConsultantID, &s.SalesCount, &s.TotalCents, &s.AvgMargin); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository writes captured leads into the distribution intake table
// and resolves webhook API keys.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertIntake writes the submission as an unsent intake row and
// returns its id.
func (r *Repository) InsertIntake(ctx context.Context, sub FormSubmission) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO distribution_leads (nome, telefone, veiculo, regiao, resumo)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		sub.Name, sub.Phone, sub.Vehicle, sub.Region, sub.Message).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert intake row: %w", err)
	}
	return id, nil
}

// LookupAPIKey returns the channel label for a key, or false when the
// key is unknown or revoked.
func (r *Repository) LookupAPIKey(ctx context.Context, key string) (string, bool, error) {
	var source string
	err := r.pool.QueryRow(ctx,
		`SELECT source FROM webhook_api_keys WHERE api_key = $1 AND revoked_at IS NULL`,
		key).Scan(&source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup api key: %w", err)
	}
	return source, true, nil
}

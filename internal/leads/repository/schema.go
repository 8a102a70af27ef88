// Package repository implements lead persistence over PostgreSQL for
// both the canonical leads table and the legacy distribution intake
// table.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUndefinedColumn is the PostgreSQL error code for "column does not
// exist". Deployments migrated at different times may lack the typed
// status and AI columns, so writes check for this and fall back to the
// notes codec.
const pgUndefinedColumn = "42703"

// IsMissingColumn reports whether err signals a reference to a column
// absent from the deployed schema.
func IsMissingColumn(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedColumn
	}
	return false
}

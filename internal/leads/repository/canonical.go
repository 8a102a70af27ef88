package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealership_crm_backend/internal/leads/codec"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
)

// querier is the slice of pgxpool.Pool the repository uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Canonical persists leads in the unified table the dashboard reads.
// Reads use SELECT * and map by column name so deployments missing the
// typed status/AI columns still work; writes attempt the typed columns
// first and fall back to encoding into notes on a missing-column error.
type Canonical struct {
	db querier
}

func NewCanonical(pool *pgxpool.Pool) *Canonical {
	return &Canonical{db: pool}
}

// List returns leads newest first. consultantID filters to a single
// consultant's leads when non-empty.
func (r *Canonical) List(ctx context.Context, consultantID string, limit int) ([]domain.Lead, error) {
	query := `SELECT * FROM leads`
	args := []any{}
	if consultantID != "" {
		query += ` WHERE assigned_consultant_id = $1`
		args = append(args, consultantID)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	rowMaps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect leads: %w", err)
	}

	leads := make([]domain.Lead, 0, len(rowMaps))
	for _, row := range rowMaps {
		leads = append(leads, leadFromRow(row))
	}
	return leads, nil
}

// GetByID fetches a single lead.
func (r *Canonical) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	rows, err := r.db.Query(ctx, `SELECT * FROM leads WHERE id = $1`, id)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return leadFromRow(row), nil
}

// FindRecentByPhone returns the oldest lead whose phone digits match
// within the lookback window. Used for duplicate linking on create.
func (r *Canonical) FindRecentByPhone(ctx context.Context, phoneDigits string, since time.Time) (domain.Lead, bool, error) {
	if phoneDigits == "" {
		return domain.Lead{}, false, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT * FROM leads
		 WHERE regexp_replace(phone, '\D', '', 'g') = $1 AND created_at >= $2
		 ORDER BY created_at ASC
		 LIMIT 1`,
		phoneDigits, since)
	if err != nil {
		return domain.Lead{}, false, fmt.Errorf("find lead by phone: %w", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, false, nil
		}
		return domain.Lead{}, false, fmt.Errorf("find lead by phone: %w", err)
	}
	return leadFromRow(row), true, nil
}

// ExistsByPhone reports whether any canonical lead matches the phone
// digits. The promotion engine uses this for duplicate suppression.
func (r *Canonical) ExistsByPhone(ctx context.Context, phoneDigits string) (bool, error) {
	if phoneDigits == "" {
		return false, nil
	}
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE regexp_replace(phone, '\D', '', 'g') = $1)`,
		phoneDigits).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check phone exists: %w", err)
	}
	return exists, nil
}

// Create inserts a lead. It attempts the full typed-column insert
// first; on a missing-column error the status and AI fields are packed
// into notes and a narrow insert is retried.
func (r *Canonical) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	id, err := r.createTyped(ctx, lead)
	if err == nil {
		lead.Ref = domain.CanonicalRef(id)
		return lead, nil
	}
	if !IsMissingColumn(err) {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}

	id, err = r.createEncoded(ctx, lead)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead (encoded fallback): %w", err)
	}
	lead.Ref = domain.CanonicalRef(id)
	return lead, nil
}

func (r *Canonical) createTyped(ctx context.Context, lead domain.Lead) (string, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO leads
		   (name, phone, vehicle_interest, trade_in_vehicle, region, status,
		    ai_score, ai_classification, ai_reason, assigned_consultant_id,
		    duplicate_of, source, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),NULLIF($11,''),$12,$13)
		 RETURNING id`,
		lead.Name, lead.Phone, lead.VehicleInterest, lead.TradeInVehicle,
		lead.Region, string(lead.Status), lead.AIScore,
		string(lead.AIClassification), lead.AIReason,
		lead.AssignedConsultantID, lead.DuplicateOf, lead.Source, lead.Notes).Scan(&id)
	return id, err
}

func (r *Canonical) createEncoded(ctx context.Context, lead domain.Lead) (string, error) {
	notes := codec.Encode(lead.Notes, codec.Payload{
		Status:         string(lead.Status),
		Classification: string(lead.AIClassification),
		Score:          lead.AIScore,
		Reason:         lead.AIReason,
	})
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO leads
		   (name, phone, vehicle_interest, trade_in_vehicle, region,
		    assigned_consultant_id, duplicate_of, source, notes)
		 VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,''),$8,$9)
		 RETURNING id`,
		lead.Name, lead.Phone, lead.VehicleInterest, lead.TradeInVehicle,
		lead.Region, lead.AssignedConsultantID, lead.DuplicateOf,
		lead.Source, notes).Scan(&id)
	return id, err
}

// UpdateStatus writes the pipeline status, falling back to the notes
// codec when the status column is absent.
func (r *Canonical) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err == nil {
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("lead not found")
		}
		return nil
	}
	if !IsMissingColumn(err) {
		return fmt.Errorf("update lead status: %w", err)
	}
	return r.encodeIntoNotes(ctx, id, func(p *codec.Payload) {
		p.Status = string(status)
	})
}

// StoreAnalysis writes AI analysis results, falling back to the notes
// codec when the typed columns are absent.
func (r *Canonical) StoreAnalysis(ctx context.Context, id string, analysis domain.Analysis) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads
		 SET ai_classification = $1, ai_score = $2, ai_summary = $3,
		     ai_next_action = $4, updated_at = now()
		 WHERE id = $5`,
		string(analysis.Classification), analysis.Score,
		analysis.Summary, analysis.NextAction, id)
	if err == nil {
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("lead not found")
		}
		return nil
	}
	if !IsMissingColumn(err) {
		return fmt.Errorf("store analysis: %w", err)
	}
	return r.encodeIntoNotes(ctx, id, func(p *codec.Payload) {
		p.Classification = string(analysis.Classification)
		p.Score = analysis.Score
		p.Reason = analysis.Summary
	})
}

// encodeIntoNotes rewrites the lead's notes with the patched payload.
// Read-modify-write on a single row; last writer wins, same as a
// column update would.
func (r *Canonical) encodeIntoNotes(ctx context.Context, id string, patch func(*codec.Payload)) error {
	var notes string
	err := r.db.QueryRow(ctx, `SELECT COALESCE(notes, '') FROM leads WHERE id = $1`, id).Scan(&notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("lead not found")
		}
		return fmt.Errorf("read notes for encode: %w", err)
	}

	payload, plain := codec.Decode(notes)
	patch(&payload)
	encoded := codec.Encode(plain, payload)

	_, err = r.db.Exec(ctx,
		`UPDATE leads SET notes = $1, updated_at = now() WHERE id = $2`,
		encoded, id)
	if err != nil {
		return fmt.Errorf("write encoded notes: %w", err)
	}
	return nil
}

// UpdateDetails applies a partial update over the plain detail columns.
func (r *Canonical) UpdateDetails(ctx context.Context, id string, patch DetailPatch) error {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if patch.Name != nil {
		addSet("name", *patch.Name)
	}
	if patch.Phone != nil {
		addSet("phone", *patch.Phone)
	}
	if patch.VehicleInterest != nil {
		addSet("vehicle_interest", *patch.VehicleInterest)
	}
	if patch.TradeInVehicle != nil {
		addSet("trade_in_vehicle", *patch.TradeInVehicle)
	}
	if patch.Region != nil {
		addSet("region", *patch.Region)
	}
	if patch.Notes != nil {
		addSet("notes", *patch.Notes)
	}
	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), argIdx)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lead details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// AssignIfUnassigned sets the consultant only when no consultant holds
// the lead yet. Returns false when the lead was already taken, which
// keeps concurrent distribution passes from double-assigning.
func (r *Canonical) AssignIfUnassigned(ctx context.Context, id, consultantID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads
		 SET assigned_consultant_id = $1, updated_at = now()
		 WHERE id = $2 AND assigned_consultant_id IS NULL`,
		consultantID, id)
	if err != nil {
		return false, fmt.Errorf("assign lead: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Assign sets the consultant unconditionally (manual reassignment).
func (r *Canonical) Assign(ctx context.Context, id, consultantID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads SET assigned_consultant_id = NULLIF($1, ''), updated_at = now() WHERE id = $2`,
		consultantID, id)
	if err != nil {
		return fmt.Errorf("reassign lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// ListUnassigned returns leads with no consultant, oldest first, for
// the distribution sweep.
func (r *Canonical) ListUnassigned(ctx context.Context, limit int) ([]domain.Lead, error) {
	rows, err := r.db.Query(ctx,
		`SELECT * FROM leads
		 WHERE assigned_consultant_id IS NULL
		 ORDER BY created_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unassigned leads: %w", err)
	}
	rowMaps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect unassigned leads: %w", err)
	}

	leads := make([]domain.Lead, 0, len(rowMaps))
	for _, row := range rowMaps {
		leads = append(leads, leadFromRow(row))
	}
	return leads, nil
}

// DetailPatch is a partial update over lead detail fields. Nil means
// "leave unchanged".
type DetailPatch struct {
	Name            *string
	Phone           *string
	VehicleInterest *string
	TradeInVehicle  *string
	Region          *string
	Notes           *string
}

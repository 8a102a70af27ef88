package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealership_crm_backend/internal/leads/codec"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
)

// IntakeRow is a row in the legacy distribution table. The table keeps
// the Portuguese field names the inbound channels write; everything
// typed about the lead lives encoded inside resumo.
type IntakeRow struct {
	ID             int64
	Name           string
	Phone          string
	Vehicle        string
	Region         string
	Summary        string
	ConsultantName string
	Sent           bool
	CreatedAt      time.Time
}

// Legacy persists leads in the distribution intake table still fed by
// some ad channels. It has no typed status or AI columns at all, so
// status and AI writes always go through the notes codec.
type Legacy struct {
	pool *pgxpool.Pool
}

func NewLegacy(pool *pgxpool.Pool) *Legacy {
	return &Legacy{pool: pool}
}

const legacyColumns = `id, nome, telefone, veiculo, regiao, resumo, consultor, enviado, created_at`

func scanIntakeRow(row pgx.Row) (IntakeRow, error) {
	var r IntakeRow
	var nome, telefone, veiculo, regiao, resumo, consultor *string
	err := row.Scan(&r.ID, &nome, &telefone, &veiculo, &regiao, &resumo, &consultor, &r.Sent, &r.CreatedAt)
	if err != nil {
		return IntakeRow{}, err
	}
	r.Name = deref(nome)
	r.Phone = deref(telefone)
	r.Vehicle = deref(veiculo)
	r.Region = deref(regiao)
	r.Summary = deref(resumo)
	r.ConsultantName = deref(consultor)
	return r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List returns intake rows newest first, mapped to the canonical lead
// shape with legacy provenance.
func (r *Legacy) List(ctx context.Context, limit int) ([]domain.Lead, error) {
	query := `SELECT ` + legacyColumns + ` FROM distribution_leads ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list intake rows: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		intake, err := scanIntakeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake row: %w", err)
		}
		leads = append(leads, intake.ToLead())
	}
	return leads, rows.Err()
}

// GetByID fetches a single intake row.
func (r *Legacy) GetByID(ctx context.Context, id int64) (IntakeRow, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+legacyColumns+` FROM distribution_leads WHERE id = $1`, id)
	intake, err := scanIntakeRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return IntakeRow{}, apperr.NotFound("lead not found")
		}
		return IntakeRow{}, fmt.Errorf("get intake row: %w", err)
	}
	return intake, nil
}

// ListPendingPromotion returns unsent rows that already have a
// consultant name, oldest first. These are the promotion candidates.
func (r *Legacy) ListPendingPromotion(ctx context.Context, limit int) ([]IntakeRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+legacyColumns+` FROM distribution_leads
		 WHERE enviado = false AND consultor IS NOT NULL AND consultor <> ''
		 ORDER BY created_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list promotion candidates: %w", err)
	}
	defer rows.Close()

	var pending []IntakeRow
	for rows.Next() {
		intake, err := scanIntakeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion candidate: %w", err)
		}
		pending = append(pending, intake)
	}
	return pending, rows.Err()
}

// MarkSent flags a row as promoted so later sweeps skip it.
func (r *Legacy) MarkSent(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE distribution_leads SET enviado = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark intake row sent: %w", err)
	}
	return nil
}

// UpdateStatus encodes the status into resumo; the legacy table never
// had a status column.
func (r *Legacy) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	return r.patchSummary(ctx, id, func(p *codec.Payload) {
		p.Status = string(status)
	})
}

// StoreAnalysis encodes AI fields into resumo.
func (r *Legacy) StoreAnalysis(ctx context.Context, id int64, analysis domain.Analysis) error {
	return r.patchSummary(ctx, id, func(p *codec.Payload) {
		p.Classification = string(analysis.Classification)
		p.Score = analysis.Score
		p.Reason = analysis.Summary
	})
}

func (r *Legacy) patchSummary(ctx context.Context, id int64, patch func(*codec.Payload)) error {
	var resumo *string
	err := r.pool.QueryRow(ctx,
		`SELECT resumo FROM distribution_leads WHERE id = $1`, id).Scan(&resumo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("lead not found")
		}
		return fmt.Errorf("read resumo: %w", err)
	}

	payload, plain := codec.Decode(deref(resumo))
	patch(&payload)
	encoded := codec.Encode(plain, payload)

	_, err = r.pool.Exec(ctx,
		`UPDATE distribution_leads SET resumo = $1 WHERE id = $2`, encoded, id)
	if err != nil {
		return fmt.Errorf("write resumo: %w", err)
	}
	return nil
}

// UpdateDetails applies a partial update over the intake fields.
func (r *Legacy) UpdateDetails(ctx context.Context, id int64, patch DetailPatch) error {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if patch.Name != nil {
		addSet("nome", *patch.Name)
	}
	if patch.Phone != nil {
		addSet("telefone", *patch.Phone)
	}
	if patch.VehicleInterest != nil {
		addSet("veiculo", *patch.VehicleInterest)
	}
	if patch.Region != nil {
		addSet("regiao", *patch.Region)
	}
	if patch.Notes != nil {
		// Preserve any encoded payload already in resumo.
		var resumo *string
		err := r.pool.QueryRow(ctx,
			`SELECT resumo FROM distribution_leads WHERE id = $1`, id).Scan(&resumo)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("read resumo for details update: %w", err)
		}
		payload, _ := codec.Decode(deref(resumo))
		addSet("resumo", codec.Encode(*patch.Notes, payload))
	}
	if len(setClauses) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE distribution_leads SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), argIdx)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update intake details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// ListUnassigned returns unsent rows with no consultant yet, oldest
// first. These are the distribution candidates.
func (r *Legacy) ListUnassigned(ctx context.Context, limit int) ([]IntakeRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+legacyColumns+` FROM distribution_leads
		 WHERE enviado = false AND (consultor IS NULL OR consultor = '')
		 ORDER BY created_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unassigned intake rows: %w", err)
	}
	defer rows.Close()

	var pending []IntakeRow
	for rows.Next() {
		intake, err := scanIntakeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unassigned intake row: %w", err)
		}
		pending = append(pending, intake)
	}
	return pending, rows.Err()
}

// SetConsultantIfEmpty records the consultant name only when the row
// has none yet. Returns false when another pass got there first.
func (r *Legacy) SetConsultantIfEmpty(ctx context.Context, id int64, consultantName string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE distribution_leads SET consultor = $1
		 WHERE id = $2 AND (consultor IS NULL OR consultor = '')`,
		consultantName, id)
	if err != nil {
		return false, fmt.Errorf("set intake consultant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetConsultant records the resolved consultant name on the intake row.
func (r *Legacy) SetConsultant(ctx context.Context, id int64, consultantName string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE distribution_leads SET consultor = $1 WHERE id = $2`, consultantName, id)
	if err != nil {
		return fmt.Errorf("set intake consultant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// Delete hard-deletes an intake row. The only hard-delete path in the
// system; role enforcement is the handler's job.
func (r *Legacy) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM distribution_leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete intake row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// ToLead maps the intake row to the canonical lead shape, decoding any
// payload packed into resumo.
func (r IntakeRow) ToLead() domain.Lead {
	payload, plain := codec.Decode(r.Summary)

	lead := domain.Lead{
		Ref:             domain.LegacyRef(strconv.FormatInt(r.ID, 10)),
		Name:            r.Name,
		Phone:           r.Phone,
		VehicleInterest: r.Vehicle,
		Region:          r.Region,
		Notes:           plain,
		Status:          domain.StatusReceived,
		Source:          "distribution",
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.CreatedAt,
	}
	if payload.Status != "" {
		lead.Status = domain.Status(payload.Status)
	}
	if payload.Classification != "" {
		lead.AIClassification = domain.Classification(payload.Classification)
	}
	lead.AIScore = payload.Score
	lead.AIReason = payload.Reason
	return lead
}

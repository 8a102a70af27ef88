// Package promotion migrates legacy intake rows into the canonical
// leads table once their consultant can be resolved.
package promotion

import (
	"context"
	"strconv"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/codec"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/internal/leads/repository"
	"dealership_crm_backend/platform/logger"
	"dealership_crm_backend/platform/phone"
)

// Source is the intake-table surface the engine reads and flags.
type Source interface {
	ListPendingPromotion(ctx context.Context, limit int) ([]repository.IntakeRow, error)
	MarkSent(ctx context.Context, id int64) error
}

// Destination is the canonical-table surface the engine writes.
type Destination interface {
	ExistsByPhone(ctx context.Context, phoneDigits string) (bool, error)
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
}

// ConsultantResolver maps free-text consultant names to records.
type ConsultantResolver interface {
	FindByName(ctx context.Context, name string) (domain.Consultant, bool, error)
}

// Engine performs the background promotion sweep.
type Engine struct {
	source      Source
	destination Destination
	resolver    ConsultantResolver
	eventBus    events.Bus
	log         *logger.Logger
}

func NewEngine(
	source Source,
	destination Destination,
	resolver ConsultantResolver,
	eventBus events.Bus,
	log *logger.Logger,
) *Engine {
	return &Engine{
		source:      source,
		destination: destination,
		resolver:    resolver,
		eventBus:    eventBus,
		log:         log,
	}
}

const sweepBatchSize = 100

// SyncPending promotes every qualifying intake row and returns how
// many canonical leads were created. Rows it cannot handle yet (empty
// phone, unresolved consultant) are skipped for a later pass; rows
// whose phone already exists canonically are just marked sent. The
// sweep converges: a second run over the same data performs no writes.
func (e *Engine) SyncPending(ctx context.Context) (int, error) {
	pending, err := e.source.ListPendingPromotion(ctx, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, row := range pending {
		created, err := e.promote(ctx, row)
		if err != nil {
			e.log.Error("promotion sweep: row failed",
				"intake_id", row.ID,
				"error", err,
			)
			continue
		}
		if created {
			migrated++
		}
	}
	return migrated, nil
}

func (e *Engine) promote(ctx context.Context, row repository.IntakeRow) (bool, error) {
	// Canonical rows store E.164, so the intake phone must be
	// normalized before stripping digits or a locally-formatted repeat
	// contact would slip past the duplicate check.
	digits := phone.DigitsOnly(phone.NormalizeE164(row.Phone))
	if digits == "" {
		// Without a phone there is no safe dedupe key. Leave the row
		// for manual handling.
		return false, nil
	}

	consultant, found, err := e.resolver.FindByName(ctx, row.ConsultantName)
	if err != nil {
		return false, err
	}
	if !found {
		// Name not resolvable yet; a later pass retries.
		return false, nil
	}

	exists, err := e.destination.ExistsByPhone(ctx, digits)
	if err != nil {
		return false, err
	}
	if exists {
		// Already canonical. Converge by flagging the source row, no
		// second insert.
		if err := e.source.MarkSent(ctx, row.ID); err != nil {
			return false, err
		}
		e.publishPromoted(ctx, row, "", true)
		return false, nil
	}

	lead, err := e.destination.Create(ctx, mapIntakeRow(row, consultant.ID))
	if err != nil {
		return false, err
	}
	if err := e.source.MarkSent(ctx, row.ID); err != nil {
		return false, err
	}
	e.publishPromoted(ctx, row, lead.Ref.ID, false)
	return true, nil
}

func (e *Engine) publishPromoted(ctx context.Context, row repository.IntakeRow, leadID string, duplicate bool) {
	e.eventBus.Publish(ctx, events.LeadPromoted{
		BaseEvent: events.NewBaseEvent(),
		SourceID:  domain.LegacyRef(strconv.FormatInt(row.ID, 10)).String(),
		LeadID:    leadID,
		Duplicate: duplicate,
	})
}

// mapIntakeRow maps the intake fields onto the canonical schema. AI
// fields packed into resumo carry over; absent ones default to a
// neutral warm classification and score zero.
func mapIntakeRow(row repository.IntakeRow, consultantID string) domain.Lead {
	payload, plain := codec.Decode(row.Summary)

	lead := domain.Lead{
		Name:                 row.Name,
		Phone:                phone.NormalizeE164(row.Phone),
		VehicleInterest:      row.Vehicle,
		Region:               row.Region,
		Notes:                plain,
		Status:               domain.StatusReceived,
		AIClassification:     domain.ClassificationWarm,
		AIScore:              0,
		AssignedConsultantID: consultantID,
		Source:               "distribution",
	}
	if payload.Status != "" {
		lead.Status = domain.Status(payload.Status)
	}
	if payload.Classification != "" {
		lead.AIClassification = domain.Classification(payload.Classification)
	}
	if payload.Score != 0 {
		lead.AIScore = payload.Score
	}
	lead.AIReason = payload.Reason
	return lead
}

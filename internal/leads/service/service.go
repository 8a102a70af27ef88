// Package service is the lead facade: the single entry point handlers
// use to read and write leads, routing by provenance and hiding the
// dual-table split.
package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/agent"
	"dealership_crm_backend/internal/leads/distribution"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/internal/leads/repository"
	"dealership_crm_backend/platform/apperr"
	"dealership_crm_backend/platform/logger"
	"dealership_crm_backend/platform/phone"
)

// dedupeWindow is how far back a matching phone marks a new lead as a
// duplicate of an earlier one.
const dedupeWindow = 30 * 24 * time.Hour

// CanonicalRepository is the unified-table surface the facade needs.
type CanonicalRepository interface {
	List(ctx context.Context, consultantID string, limit int) ([]domain.Lead, error)
	GetByID(ctx context.Context, id string) (domain.Lead, error)
	FindRecentByPhone(ctx context.Context, phoneDigits string, since time.Time) (domain.Lead, bool, error)
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	StoreAnalysis(ctx context.Context, id string, analysis domain.Analysis) error
	UpdateDetails(ctx context.Context, id string, patch repository.DetailPatch) error
	AssignIfUnassigned(ctx context.Context, id, consultantID string) (bool, error)
	Assign(ctx context.Context, id, consultantID string) error
	ListUnassigned(ctx context.Context, limit int) ([]domain.Lead, error)
}

// LegacyRepository is the intake-table surface the facade needs.
type LegacyRepository interface {
	List(ctx context.Context, limit int) ([]domain.Lead, error)
	GetByID(ctx context.Context, id int64) (repository.IntakeRow, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	StoreAnalysis(ctx context.Context, id int64, analysis domain.Analysis) error
	UpdateDetails(ctx context.Context, id int64, patch repository.DetailPatch) error
	SetConsultantIfEmpty(ctx context.Context, id int64, consultantName string) (bool, error)
	SetConsultant(ctx context.Context, id int64, consultantName string) error
	ListUnassigned(ctx context.Context, limit int) ([]repository.IntakeRow, error)
	Delete(ctx context.Context, id int64) error
}

// ConsultantReader resolves consultant records for manual assignment.
type ConsultantReader interface {
	GetByID(ctx context.Context, id string) (domain.Consultant, error)
}

// SweepTrigger kicks the background distribution and promotion passes.
// Injected as a setter after construction because the engines consume
// this service as their persistence surface.
type SweepTrigger interface {
	TriggerSweeps(ctx context.Context)
}

// Service implements the lead facade.
type Service struct {
	canonical   CanonicalRepository
	legacy      LegacyRepository
	consultants ConsultantReader
	analyzer    agent.Analyzer
	eventBus    events.Bus
	log         *logger.Logger
	sweeps      SweepTrigger
	distributor *distribution.Engine
	now         func() time.Time
}

func New(
	canonical CanonicalRepository,
	legacy LegacyRepository,
	consultants ConsultantReader,
	analyzer agent.Analyzer,
	eventBus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		canonical:   canonical,
		legacy:      legacy,
		consultants: consultants,
		analyzer:    analyzer,
		eventBus:    eventBus,
		log:         log,
		now:         time.Now,
	}
}

// SetSweepTrigger wires the background sweep orchestrator.
func (s *Service) SetSweepTrigger(trigger SweepTrigger) { s.sweeps = trigger }

// SetDistributor wires the distribution engine used on lead creation.
func (s *Service) SetDistributor(engine *distribution.Engine) { s.distributor = engine }

// listLimit bounds dashboard reads.
const listLimit = 500

// GetLeads merges canonical and intake rows into one newest-first
// list. consultantID filters to one consultant's leads when non-empty;
// intake rows have no consultant link yet, so a filtered read returns
// canonical rows only. As a side effect the background sweeps are
// kicked; their failures never reach the reader.
func (s *Service) GetLeads(ctx context.Context, consultantID string) ([]domain.Lead, error) {
	if s.sweeps != nil {
		s.sweeps.TriggerSweeps(ctx)
	}

	var canonical, legacy []domain.Lead
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		canonical, err = s.canonical.List(gctx, consultantID, listLimit)
		return err
	})
	if consultantID == "" {
		g.Go(func() error {
			var err error
			legacy, err = s.legacy.List(gctx, listLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap("leads.GetLeads", err)
	}

	merged := append(canonical, legacy...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}

// GetLead fetches one lead by its provenance-tagged reference.
func (s *Service) GetLead(ctx context.Context, ref domain.Ref) (domain.Lead, error) {
	switch ref.Source {
	case domain.SourceLegacy:
		id, err := legacyID(ref)
		if err != nil {
			return domain.Lead{}, err
		}
		row, err := s.legacy.GetByID(ctx, id)
		if err != nil {
			return domain.Lead{}, err
		}
		return row.ToLead(), nil
	default:
		return s.canonical.GetByID(ctx, ref.ID)
	}
}

// CreateLeadInput is the payload for CreateLead.
type CreateLeadInput struct {
	Name            string
	Phone           string
	VehicleInterest string
	TradeInVehicle  string
	Region          string
	Source          string
	Notes           string
}

// CreateLead inserts a canonical lead. A phone match inside the dedupe
// window links the new lead to the earlier one via DuplicateOf but
// still inserts; duplicates are flagged, never dropped. The new lead
// is handed to the distribution engine immediately.
func (s *Service) CreateLead(ctx context.Context, input CreateLeadInput) (domain.Lead, error) {
	lead := domain.Lead{
		Name:            input.Name,
		Phone:           phone.NormalizeE164(input.Phone),
		VehicleInterest: input.VehicleInterest,
		TradeInVehicle:  input.TradeInVehicle,
		Region:          input.Region,
		Source:          input.Source,
		Notes:           input.Notes,
		Status:          domain.StatusReceived,
	}

	digits := phone.DigitsOnly(lead.Phone)
	if digits != "" {
		existing, found, err := s.canonical.FindRecentByPhone(ctx, digits, s.now().Add(-dedupeWindow))
		if err != nil {
			return domain.Lead{}, apperr.Wrap("leads.CreateLead", err)
		}
		if found {
			lead.DuplicateOf = existing.Ref.ID
		}
	}

	created, err := s.canonical.Create(ctx, lead)
	if err != nil {
		return domain.Lead{}, apperr.Wrap("leads.CreateLead", err)
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      created.Ref.String(),
		Name:        created.Name,
		Phone:       created.Phone,
		DuplicateOf: created.DuplicateOf,
	})

	if s.distributor != nil {
		result, err := s.distributor.Assign(ctx, created)
		if err != nil {
			// Assignment failures leave the lead pending for the next
			// sweep; creation itself succeeded.
			s.log.Error("assign on create failed",
				"lead_id", created.Ref.String(),
				"error", err,
			)
		} else if result.Assigned {
			created.AssignedConsultantID = result.Consultant.ID
		}
	}

	return created, nil
}

// UpdateStatus moves a lead along the pipeline. Any known stage may be
// set from any other; the board is worked free-form.
func (s *Service) UpdateStatus(ctx context.Context, ref domain.Ref, status domain.Status, changedBy string) error {
	if !status.IsKnown() {
		return apperr.Validation("unknown lead status")
	}

	current, err := s.GetLead(ctx, ref)
	if err != nil {
		return err
	}

	switch ref.Source {
	case domain.SourceLegacy:
		var id int64
		id, err = legacyID(ref)
		if err != nil {
			return err
		}
		err = s.legacy.UpdateStatus(ctx, id, status)
	default:
		err = s.canonical.UpdateStatus(ctx, ref.ID, status)
	}
	if err != nil {
		return apperr.Wrap("leads.UpdateStatus", err)
	}

	s.eventBus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    ref.String(),
		OldStatus: string(current.Status),
		NewStatus: string(status),
		ChangedBy: changedBy,
	})
	return nil
}

// UpdateDetails applies a partial edit, routed by provenance.
func (s *Service) UpdateDetails(ctx context.Context, ref domain.Ref, patch repository.DetailPatch) error {
	if patch.Phone != nil {
		normalized := phone.NormalizeE164(*patch.Phone)
		patch.Phone = &normalized
	}

	switch ref.Source {
	case domain.SourceLegacy:
		id, err := legacyID(ref)
		if err != nil {
			return err
		}
		return s.legacy.UpdateDetails(ctx, id, patch)
	default:
		return s.canonical.UpdateDetails(ctx, ref.ID, patch)
	}
}

// AssignConsultant manually (re)assigns a lead to a consultant.
func (s *Service) AssignConsultant(ctx context.Context, ref domain.Ref, consultantID string) error {
	consultant, err := s.consultants.GetByID(ctx, consultantID)
	if err != nil {
		return err
	}

	switch ref.Source {
	case domain.SourceLegacy:
		id, err := legacyID(ref)
		if err != nil {
			return err
		}
		return s.legacy.SetConsultant(ctx, id, consultant.Name)
	default:
		return s.canonical.Assign(ctx, ref.ID, consultant.ID)
	}
}

// DeleteLead hard-deletes an intake row. Only legacy provenance may be
// deleted; canonical leads are retained forever. The admin role check
// is the handler's obligation.
func (s *Service) DeleteLead(ctx context.Context, ref domain.Ref) error {
	if ref.Source != domain.SourceLegacy {
		return apperr.Forbidden("only distribution leads can be deleted")
	}
	id, err := legacyID(ref)
	if err != nil {
		return err
	}
	return s.legacy.Delete(ctx, id)
}

// AnalyzeLead runs the AI review and stores the result on the lead. AI
// failures surface to the caller untouched; nothing is defaulted.
func (s *Service) AnalyzeLead(ctx context.Context, ref domain.Ref, conversation string) (domain.Analysis, error) {
	if s.analyzer == nil {
		return domain.Analysis{}, apperr.Unavailable("AI analysis is not configured")
	}

	lead, err := s.GetLead(ctx, ref)
	if err != nil {
		return domain.Analysis{}, err
	}

	analysis, err := s.analyzer.Analyze(ctx, lead, conversation)
	if err != nil {
		return domain.Analysis{}, err
	}

	switch ref.Source {
	case domain.SourceLegacy:
		id, idErr := legacyID(ref)
		if idErr != nil {
			return domain.Analysis{}, idErr
		}
		err = s.legacy.StoreAnalysis(ctx, id, analysis)
	default:
		err = s.canonical.StoreAnalysis(ctx, ref.ID, analysis)
	}
	if err != nil {
		return domain.Analysis{}, apperr.Wrap("leads.AnalyzeLead", err)
	}

	s.eventBus.Publish(ctx, events.LeadAnalyzed{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         ref.String(),
		Classification: string(analysis.Classification),
		Score:          analysis.Score,
	})
	return analysis, nil
}

func legacyID(ref domain.Ref) (int64, error) {
	id, err := strconv.ParseInt(ref.ID, 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid distribution lead id")
	}
	return id, nil
}

// Package service implements the close-as-won flow.
package service

import (
	"context"
	"time"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/internal/sales/repository"
	"dealership_crm_backend/platform/apperr"
)

// Repository is the sale persistence surface.
type Repository interface {
	Insert(ctx context.Context, sale repository.Sale) (repository.Sale, error)
	ListByConsultant(ctx context.Context, consultantID string) ([]repository.Sale, error)
	Summarize(ctx context.Context, from, to time.Time) ([]repository.Summary, error)
}

// LeadBoard is the slice of the lead facade the close flow needs.
type LeadBoard interface {
	GetLead(ctx context.Context, ref domain.Ref) (domain.Lead, error)
	UpdateStatus(ctx context.Context, ref domain.Ref, status domain.Status, changedBy string) error
}

type Service struct {
	repo     Repository
	leads    LeadBoard
	eventBus events.Bus
	now      func() time.Time
}

func New(repo Repository, leads LeadBoard, eventBus events.Bus) *Service {
	return &Service{repo: repo, leads: leads, eventBus: eventBus, now: time.Now}
}

// CloseInput is the payload for CloseAsWon.
type CloseInput struct {
	LeadRef      domain.Ref
	AmountCents  int64
	ProfitMargin float64
	SaleDate     time.Time
	ClosedBy     string
}

// CloseAsWon records the sale and moves the lead to closed. Only
// assigned leads can be closed; the sale is attributed to the
// assigned consultant, not the caller.
func (s *Service) CloseAsWon(ctx context.Context, input CloseInput) (repository.Sale, error) {
	if input.AmountCents <= 0 {
		return repository.Sale{}, apperr.Validation("sale amount must be positive")
	}
	if input.ProfitMargin < 0 || input.ProfitMargin > 100 {
		return repository.Sale{}, apperr.Validation("profit margin must be between 0 and 100")
	}

	lead, err := s.leads.GetLead(ctx, input.LeadRef)
	if err != nil {
		return repository.Sale{}, err
	}
	if lead.AssignedConsultantID == "" {
		return repository.Sale{}, apperr.Validation("lead has no assigned consultant")
	}
	if lead.Status == domain.StatusClosed {
		return repository.Sale{}, apperr.Conflict("lead is already closed")
	}

	saleDate := input.SaleDate
	if saleDate.IsZero() {
		saleDate = s.now()
	}

	sale, err := s.repo.Insert(ctx, repository.Sale{
		LeadID:       input.LeadRef.String(),
		ConsultantID: lead.AssignedConsultantID,
		AmountCents:  input.AmountCents,
		ProfitMargin: input.ProfitMargin,
		SaleDate:     saleDate,
	})
	if err != nil {
		return repository.Sale{}, apperr.Wrap("sales.CloseAsWon", err)
	}

	if err := s.leads.UpdateStatus(ctx, input.LeadRef, domain.StatusClosed, input.ClosedBy); err != nil {
		return repository.Sale{}, apperr.Wrap("sales.CloseAsWon", err)
	}

	s.eventBus.Publish(ctx, events.SaleClosed{
		BaseEvent:    events.NewBaseEvent(),
		SaleID:       sale.ID,
		LeadID:       sale.LeadID,
		ConsultantID: sale.ConsultantID,
		AmountCents:  sale.AmountCents,
	})
	return sale, nil
}

// List returns sales, scoped to one consultant when non-empty.
func (s *Service) List(ctx context.Context, consultantID string) ([]repository.Sale, error) {
	return s.repo.ListByConsultant(ctx, consultantID)
}

// Summarize aggregates per-consultant totals for the period.
func (s *Service) Summarize(ctx context.Context, from, to time.Time) ([]repository.Summary, error) {
	if !to.After(from) {
		return nil, apperr.Validation("period end must be after start")
	}
	return s.repo.Summarize(ctx, from, to)
}

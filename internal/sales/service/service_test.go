package service

import (
	"context"
	"testing"
	"time"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/internal/sales/repository"
	"dealership_crm_backend/platform/apperr"
	"dealership_crm_backend/platform/logger"
)

type fakeRepo struct {
	sales []repository.Sale
}

func (f *fakeRepo) Insert(_ context.Context, sale repository.Sale) (repository.Sale, error) {
	sale.ID = "s1"
	sale.CreatedAt = time.Now()
	f.sales = append(f.sales, sale)
	return sale, nil
}

func (f *fakeRepo) ListByConsultant(_ context.Context, _ string) ([]repository.Sale, error) {
	return f.sales, nil
}

func (f *fakeRepo) Summarize(_ context.Context, _, _ time.Time) ([]repository.Summary, error) {
	return nil, nil
}

type fakeBoard struct {
	lead       domain.Lead
	statusSets []domain.Status
}

func (f *fakeBoard) GetLead(_ context.Context, _ domain.Ref) (domain.Lead, error) {
	return f.lead, nil
}

func (f *fakeBoard) UpdateStatus(_ context.Context, _ domain.Ref, status domain.Status, _ string) error {
	f.statusSets = append(f.statusSets, status)
	return nil
}

func newTestService(board *fakeBoard) (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	log := logger.New("development")
	return New(repo, board, events.NewInMemoryBus(log)), repo
}

func TestCloseAsWon(t *testing.T) {
	board := &fakeBoard{lead: domain.Lead{
		Ref:                  domain.CanonicalRef("l1"),
		AssignedConsultantID: "c1",
		Status:               domain.StatusNegotiation,
	}}
	svc, repo := newTestService(board)

	sale, err := svc.CloseAsWon(context.Background(), CloseInput{
		LeadRef:      domain.CanonicalRef("l1"),
		AmountCents:  8_500_000,
		ProfitMargin: 12.5,
		ClosedBy:     "u1",
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if sale.ConsultantID != "c1" {
		t.Fatalf("sale attributed to %q, want the assigned consultant", sale.ConsultantID)
	}
	if len(repo.sales) != 1 {
		t.Fatalf("sales recorded = %d", len(repo.sales))
	}
	if len(board.statusSets) != 1 || board.statusSets[0] != domain.StatusClosed {
		t.Fatalf("lead status writes = %v, want [closed]", board.statusSets)
	}
}

func TestCloseAsWonRejectsUnassignedLead(t *testing.T) {
	board := &fakeBoard{lead: domain.Lead{Ref: domain.CanonicalRef("l1")}}
	svc, _ := newTestService(board)

	_, err := svc.CloseAsWon(context.Background(), CloseInput{
		LeadRef: domain.CanonicalRef("l1"), AmountCents: 100,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCloseAsWonRejectsAlreadyClosed(t *testing.T) {
	board := &fakeBoard{lead: domain.Lead{
		Ref: domain.CanonicalRef("l1"), AssignedConsultantID: "c1", Status: domain.StatusClosed,
	}}
	svc, _ := newTestService(board)

	_, err := svc.CloseAsWon(context.Background(), CloseInput{
		LeadRef: domain.CanonicalRef("l1"), AmountCents: 100,
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCloseAsWonValidatesAmounts(t *testing.T) {
	board := &fakeBoard{lead: domain.Lead{Ref: domain.CanonicalRef("l1"), AssignedConsultantID: "c1"}}
	svc, _ := newTestService(board)
	ctx := context.Background()

	if _, err := svc.CloseAsWon(ctx, CloseInput{LeadRef: domain.CanonicalRef("l1"), AmountCents: 0}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("zero amount: got %v", err)
	}
	if _, err := svc.CloseAsWon(ctx, CloseInput{LeadRef: domain.CanonicalRef("l1"), AmountCents: 100, ProfitMargin: 150}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("margin out of range: got %v", err)
	}
}

// Package service implements consultant management.
package service

import (
	"context"
	"time"

	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	List(ctx context.Context) ([]domain.Consultant, error)
	ListActive(ctx context.Context) ([]domain.Consultant, error)
	GetByID(ctx context.Context, id string) (domain.Consultant, error)
	FindByName(ctx context.Context, name string) (domain.Consultant, bool, error)
	TouchAssignment(ctx context.Context, consultantID string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Consultant, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Consultant, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Consultant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) FindByName(ctx context.Context, name string) (domain.Consultant, bool, error) {
	return s.repo.FindByName(ctx, name)
}

func (s *Service) TouchAssignment(ctx context.Context, consultantID string, at time.Time) error {
	return s.repo.TouchAssignment(ctx, consultantID, at)
}

// SetActive flips a consultant in or out of the assignment rotation.
func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return apperr.Validation("consultant id is required")
	}
	return s.repo.SetActive(ctx, id, active)
}

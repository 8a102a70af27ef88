package service

import (
	"context"

	"dealership_crm_backend/internal/leads/domain"
)

// The facade doubles as the distribution engine's persistence surface,
// routing assignment writes by provenance.

// ApplyAssignment conditionally records an assignment. Canonical leads
// take the consultant ID; intake rows only carry the consultant name.
// Returns false when the lead was already taken.
func (s *Service) ApplyAssignment(ctx context.Context, ref domain.Ref, consultant domain.Consultant) (bool, error) {
	switch ref.Source {
	case domain.SourceLegacy:
		id, err := legacyID(ref)
		if err != nil {
			return false, err
		}
		return s.legacy.SetConsultantIfEmpty(ctx, id, consultant.Name)
	default:
		return s.canonical.AssignIfUnassigned(ctx, ref.ID, consultant.ID)
	}
}

// ListUnassignedLeads feeds the distribution sweep with waiting leads
// from both tables, oldest first within each table.
func (s *Service) ListUnassignedLeads(ctx context.Context, limit int) ([]domain.Lead, error) {
	canonical, err := s.canonical.ListUnassigned(ctx, limit)
	if err != nil {
		return nil, err
	}

	remaining := limit - len(canonical)
	if remaining <= 0 {
		return canonical, nil
	}

	rows, err := s.legacy.ListUnassigned(ctx, remaining)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		canonical = append(canonical, row.ToLead())
	}
	return canonical, nil
}

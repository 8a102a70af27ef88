// Package notification emails consultants when work lands on them.
package notification

import (
	"context"
	"fmt"

	"dealership_crm_backend/internal/email"
	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/logger"
)

// ConsultantLookup resolves consultant contact details.
type ConsultantLookup interface {
	GetByID(ctx context.Context, id string) (domain.Consultant, error)
}

// Module subscribes to assignment events and notifies the consultant.
// Delivery is best-effort: a failed email is logged, never retried
// here, and never blocks the assignment.
type Module struct {
	sender      email.Sender
	consultants ConsultantLookup
	log         *logger.Logger
}

func NewModule(sender email.Sender, consultants ConsultantLookup, eventBus events.Bus, log *logger.Logger) *Module {
	m := &Module{sender: sender, consultants: consultants, log: log}
	eventBus.Subscribe(events.EventLeadAssigned, events.HandlerFunc(m.onLeadAssigned))
	return m
}

func (m *Module) onLeadAssigned(ctx context.Context, event events.Event) error {
	assigned, ok := event.(events.LeadAssigned)
	if !ok {
		return nil
	}

	consultant, err := m.consultants.GetByID(ctx, assigned.ConsultantID)
	if err != nil {
		return fmt.Errorf("resolve consultant for notification: %w", err)
	}
	if consultant.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("Novo lead: %s", assigned.LeadName)
	body := fmt.Sprintf(
		"Olá %s,\n\nUm novo lead foi atribuído a você.\n\nNome: %s\nTelefone: %s\n\nAcesse o painel para entrar em contato.",
		consultant.Name, assigned.LeadName, assigned.LeadPhone)

	if err := m.sender.Send(ctx, consultant.Email, subject, body); err != nil {
		return fmt.Errorf("send assignment email: %w", err)
	}

	m.log.Info("assignment notification sent",
		"consultant_id", consultant.ID,
		"lead_id", assigned.LeadID,
	)
	return nil
}

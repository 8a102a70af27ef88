package notification

import (
	"context"
	"testing"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
	"dealership_crm_backend/platform/logger"
)

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) error {
	f.sent = append(f.sent, to)
	return nil
}

type fakeLookup struct {
	consultant domain.Consultant
}

func (f *fakeLookup) GetByID(_ context.Context, id string) (domain.Consultant, error) {
	if id != f.consultant.ID {
		return domain.Consultant{}, apperr.NotFound("consultant not found")
	}
	return f.consultant, nil
}

func TestNotifiesOnLeadAssigned(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &fakeSender{}
	lookup := &fakeLookup{consultant: domain.Consultant{ID: "c1", Name: "Sergio", Email: "sergio@loja.com"}}
	NewModule(sender, lookup, bus, log)

	bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       "crm_l1",
		LeadName:     "Wilson Silva",
		ConsultantID: "c1",
	})

	if len(sender.sent) != 1 || sender.sent[0] != "sergio@loja.com" {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestSkipsConsultantWithoutEmail(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &fakeSender{}
	lookup := &fakeLookup{consultant: domain.Consultant{ID: "c1", Name: "Sergio"}}
	NewModule(sender, lookup, bus, log)

	bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent: events.NewBaseEvent(), ConsultantID: "c1",
	})

	if len(sender.sent) != 0 {
		t.Fatalf("no email expected, sent = %v", sender.sent)
	}
}

package webhook

import (
	"context"
	"strconv"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
	"dealership_crm_backend/platform/logger"
	"dealership_crm_backend/platform/phone"
)

// Intake is the persistence surface for captured submissions.
type Intake interface {
	InsertIntake(ctx context.Context, sub FormSubmission) (int64, error)
}

type Service struct {
	intake   Intake
	eventBus events.Bus
	log      *logger.Logger
}

func NewService(intake Intake, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{intake: intake, eventBus: eventBus, log: log}
}

// Capture stores an inbound submission. No duplicate check here:
// better to capture a duplicate than lose a lead, and the promotion
// sweep dedupes by phone downstream.
func (s *Service) Capture(ctx context.Context, sub FormSubmission) (string, error) {
	if !sub.Valid() {
		return "", apperr.Validation("submission carries neither name nor phone")
	}

	sub.Phone = phone.NormalizeE164(sub.Phone)

	id, err := s.intake.InsertIntake(ctx, sub)
	if err != nil {
		return "", apperr.Wrap("webhook.Capture", err)
	}

	ref := domain.LegacyRef(strconv.FormatInt(id, 10))
	s.eventBus.Publish(ctx, events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    ref.String(),
		Name:      sub.Name,
		Phone:     sub.Phone,
		Source:    sub.Source,
	})

	s.log.Info("lead captured",
		"lead_id", ref.String(),
		"source", sub.Source,
	)
	return ref.String(), nil
}

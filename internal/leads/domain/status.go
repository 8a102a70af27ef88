// Package domain holds the lead pipeline model shared across the leads
// module.
package domain

// Status is a pipeline stage. Stages are ordered for display but any
// stage may be set directly; the business works the board free-form and
// nothing in the service constrains transitions.
type Status string

const (
	StatusReceived    Status = "received"
	StatusAttempt     Status = "attempt"
	StatusContacted   Status = "contacted"
	StatusConfirmed   Status = "confirmed"
	StatusScheduled   Status = "scheduled"
	StatusVisited     Status = "visited"
	StatusTestDrive   Status = "test_drive"
	StatusProposed    Status = "proposed"
	StatusNegotiation Status = "negotiation"
	StatusClosed      Status = "closed"
	StatusLost        Status = "lost"
	StatusPostSale    Status = "post_sale"
)

var knownStatuses = map[Status]bool{
	StatusReceived:    true,
	StatusAttempt:     true,
	StatusContacted:   true,
	StatusConfirmed:   true,
	StatusScheduled:   true,
	StatusVisited:     true,
	StatusTestDrive:   true,
	StatusProposed:    true,
	StatusNegotiation: true,
	StatusClosed:      true,
	StatusLost:        true,
	StatusPostSale:    true,
}

// IsKnown reports whether s is one of the defined pipeline stages.
func (s Status) IsKnown() bool { return knownStatuses[s] }

// IsTerminal reports whether s ends the pipeline. Terminal leads are
// retained, never deleted.
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusLost
}

// AllStatuses returns the stages in display order.
func AllStatuses() []Status {
	return []Status{
		StatusReceived,
		StatusAttempt,
		StatusContacted,
		StatusConfirmed,
		StatusScheduled,
		StatusVisited,
		StatusTestDrive,
		StatusProposed,
		StatusNegotiation,
		StatusClosed,
		StatusLost,
		StatusPostSale,
	}
}

// Classification is the AI temperature label for a lead.
type Classification string

const (
	ClassificationHot  Classification = "hot"
	ClassificationWarm Classification = "warm"
	ClassificationCold Classification = "cold"
)

// IsKnown reports whether c is a recognized classification.
func (c Classification) IsKnown() bool {
	return c == ClassificationHot || c == ClassificationWarm || c == ClassificationCold
}

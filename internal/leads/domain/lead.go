package domain

import "time"

// Lead is the canonical view of a prospect, regardless of which
// physical table backs it.
type Lead struct {
	Ref                  Ref
	Name                 string
	Phone                string
	VehicleInterest      string
	TradeInVehicle       string
	Region               string
	Status               Status
	AIScore              int
	AIClassification     Classification
	AIReason             string
	AISummary            string
	AINextAction         string
	AssignedConsultantID string
	DuplicateOf          string
	Source               string
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Consultant is a sales consultant eligible for lead assignment.
type Consultant struct {
	ID                 string
	Name               string
	Email              string
	Role               string
	IsActive           bool
	LastLeadAssignedAt *time.Time
	CreatedAt          time.Time
}

// Analysis is the structured output of an AI lead review.
type Analysis struct {
	Classification Classification
	Score          int
	Summary        string
	NextAction     string
	Bottleneck     string
	Steps          []string
}

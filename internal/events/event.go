package events

// Event names, shared between publishers and subscribers.
const (
	EventLeadCaptured      = "leads.captured"
	EventLeadCreated       = "leads.created"
	EventLeadAssigned      = "leads.assigned"
	EventLeadStatusChanged = "leads.status_changed"
	EventLeadPromoted      = "leads.promoted"
	EventLeadAnalyzed      = "leads.analyzed"
	EventSaleClosed        = "sales.closed"
)

// LeadCaptured fires when a webhook submission lands in the intake table.
type LeadCaptured struct {
	BaseEvent
	LeadID string
	Name   string
	Phone  string
	Source string
}

func (e LeadCaptured) EventName() string { return EventLeadCaptured }

// LeadCreated fires when a canonical lead is created through the API.
type LeadCreated struct {
	BaseEvent
	LeadID      string
	Name        string
	Phone       string
	DuplicateOf string
}

func (e LeadCreated) EventName() string { return EventLeadCreated }

// LeadAssigned fires when the distribution engine hands a lead to a
// consultant.
type LeadAssigned struct {
	BaseEvent
	LeadID         string
	LeadName       string
	LeadPhone      string
	ConsultantID   string
	ConsultantName string
	ViaOverride    bool
}

func (e LeadAssigned) EventName() string { return EventLeadAssigned }

// LeadStatusChanged fires when a lead moves along the pipeline.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    string
	OldStatus string
	NewStatus string
	ChangedBy string
}

func (e LeadStatusChanged) EventName() string { return EventLeadStatusChanged }

// LeadPromoted fires when a legacy intake row is promoted into the
// canonical pipeline.
type LeadPromoted struct {
	BaseEvent
	SourceID    string
	LeadID      string
	Duplicate   bool
	DuplicateOf string
}

func (e LeadPromoted) EventName() string { return EventLeadPromoted }

// LeadAnalyzed fires when the AI gateway finishes scoring a lead.
type LeadAnalyzed struct {
	BaseEvent
	LeadID         string
	Classification string
	Score          int
}

func (e LeadAnalyzed) EventName() string { return EventLeadAnalyzed }

// SaleClosed fires when a consultant records a completed sale.
type SaleClosed struct {
	BaseEvent
	SaleID       string
	LeadID       string
	ConsultantID string
	AmountCents  int64
}

func (e SaleClosed) EventName() string { return EventSaleClosed }

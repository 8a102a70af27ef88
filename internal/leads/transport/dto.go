// Package transport holds the lead module's request and response DTOs.
package transport

import (
	"time"

	"dealership_crm_backend/internal/leads/domain"
)

type CreateLeadRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=200"`
	Phone           string `json:"phone" validate:"required,min=8,max=30"`
	VehicleInterest string `json:"vehicleInterest" validate:"max=200"`
	TradeInVehicle  string `json:"tradeInVehicle" validate:"max=200"`
	Region          string `json:"region" validate:"max=100"`
	Source          string `json:"source" validate:"max=50"`
	Notes           string `json:"notes" validate:"max=5000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdateDetailsRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,min=8,max=30"`
	VehicleInterest *string `json:"vehicleInterest,omitempty" validate:"omitempty,max=200"`
	TradeInVehicle  *string `json:"tradeInVehicle,omitempty" validate:"omitempty,max=200"`
	Region          *string `json:"region,omitempty" validate:"omitempty,max=100"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type AssignConsultantRequest struct {
	ConsultantID string `json:"consultantId" validate:"required,uuid"`
}

type AnalyzeLeadRequest struct {
	Conversation string `json:"conversation" validate:"max=20000"`
}

type LeadResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Phone                string     `json:"phone"`
	VehicleInterest      string     `json:"vehicleInterest,omitempty"`
	TradeInVehicle       string     `json:"tradeInVehicle,omitempty"`
	Region               string     `json:"region,omitempty"`
	Status               string     `json:"status"`
	AIScore              int        `json:"aiScore"`
	AIClassification     string     `json:"aiClassification,omitempty"`
	AIReason             string     `json:"aiReason,omitempty"`
	AISummary            string     `json:"aiSummary,omitempty"`
	AINextAction         string     `json:"aiNextAction,omitempty"`
	AssignedConsultantID string     `json:"assignedConsultantId,omitempty"`
	DuplicateOf          string     `json:"duplicateOf,omitempty"`
	Source               string     `json:"source,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

type AnalysisResponse struct {
	Classification string   `json:"classification"`
	Score          int      `json:"score"`
	Summary        string   `json:"summary"`
	NextAction     string   `json:"nextAction"`
	Bottleneck     string   `json:"bottleneck,omitempty"`
	Steps          []string `json:"steps,omitempty"`
}

// FromLead maps a domain lead onto the wire shape.
func FromLead(lead domain.Lead) LeadResponse {
	resp := LeadResponse{
		ID:                   lead.Ref.String(),
		Name:                 lead.Name,
		Phone:                lead.Phone,
		VehicleInterest:      lead.VehicleInterest,
		TradeInVehicle:       lead.TradeInVehicle,
		Region:               lead.Region,
		Status:               string(lead.Status),
		AIScore:              lead.AIScore,
		AIClassification:     string(lead.AIClassification),
		AIReason:             lead.AIReason,
		AISummary:            lead.AISummary,
		AINextAction:         lead.AINextAction,
		AssignedConsultantID: lead.AssignedConsultantID,
		DuplicateOf:          lead.DuplicateOf,
		Source:               lead.Source,
		Notes:                lead.Notes,
		CreatedAt:            lead.CreatedAt,
	}
	if !lead.UpdatedAt.IsZero() {
		updatedAt := lead.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// FromLeads maps a slice, never returning nil so the JSON is [].
func FromLeads(leads []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, FromLead(lead))
	}
	return out
}

// FromAnalysis maps an AI review onto the wire shape.
func FromAnalysis(analysis domain.Analysis) AnalysisResponse {
	return AnalysisResponse{
		Classification: string(analysis.Classification),
		Score:          analysis.Score,
		Summary:        analysis.Summary,
		NextAction:     analysis.NextAction,
		Bottleneck:     analysis.Bottleneck,
		Steps:          analysis.Steps,
	}
}

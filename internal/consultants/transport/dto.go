// Package transport holds the consultant module's DTOs.
package transport

import (
	"time"

	"dealership_crm_backend/internal/leads/domain"
)

type ConsultantResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"isActive"`
	LastLeadAssignedAt *time.Time `json:"lastLeadAssignedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func FromConsultant(c domain.Consultant) ConsultantResponse {
	return ConsultantResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Email:              c.Email,
		Role:               c.Role,
		IsActive:           c.IsActive,
		LastLeadAssignedAt: c.LastLeadAssignedAt,
		CreatedAt:          c.CreatedAt,
	}
}

func FromConsultants(consultants []domain.Consultant) []ConsultantResponse {
	out := make([]ConsultantResponse, 0, len(consultants))
	for _, c := range consultants {
		out = append(out, FromConsultant(c))
	}
	return out
}

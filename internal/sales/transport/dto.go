// Package transport holds the sales module's DTOs.
package transport

import (
	"time"

	"dealership_crm_backend/internal/sales/repository"
)

type CloseLeadRequest struct {
	AmountCents  int64      `json:"amountCents" validate:"required,gt=0"`
	ProfitMargin float64    `json:"profitMargin" validate:"gte=0,lte=100"`
	SaleDate     *time.Time `json:"saleDate,omitempty"`
}

type SaleResponse struct {
	ID           string    `json:"id"`
	LeadID       string    `json:"leadId"`
	ConsultantID string    `json:"consultantId"`
	AmountCents  int64     `json:"amountCents"`
	ProfitMargin float64   `json:"profitMargin"`
	SaleDate     time.Time `json:"saleDate"`
}

type SummaryResponse struct {
	ConsultantID string  `json:"consultantId"`
	SalesCount   int     `json:"salesCount"`
	TotalCents   int64   `json:"totalCents"`
	AvgMargin    float64 `json:"avgMargin"`
}

func FromSale(s repository.Sale) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		LeadID:       s.LeadID,
		ConsultantID: s.ConsultantID,
		AmountCents:  s.AmountCents,
		ProfitMargin: s.ProfitMargin,
		SaleDate:     s.SaleDate,
	}
}

func FromSales(sales []repository.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, FromSale(s))
	}
	return out
}

func FromSummaries(summaries []repository.Summary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, SummaryResponse{
			ConsultantID: s.ConsultantID,
			SalesCount:   s.SalesCount,
			TotalCents:   s.TotalCents,
			AvgMargin:    s.AvgMargin,
		})
	}
	return out
}

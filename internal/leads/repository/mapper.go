package repository

import (
	"time"

	"github.com/google/uuid"

	"dealership_crm_backend/internal/leads/codec"
	"dealership_crm_backend/internal/leads/domain"
)

// leadFromRow maps a SELECT * row onto the domain lead. Typed columns
// win when present; fields missing from the schema are recovered from
// the encoded notes payload.
func leadFromRow(row map[string]any) domain.Lead {
	lead := domain.Lead{
		Ref:                  domain.CanonicalRef(rowString(row, "id")),
		Name:                 rowString(row, "name"),
		Phone:                rowString(row, "phone"),
		VehicleInterest:      rowString(row, "vehicle_interest"),
		TradeInVehicle:       rowString(row, "trade_in_vehicle"),
		Region:               rowString(row, "region"),
		AssignedConsultantID: rowString(row, "assigned_consultant_id"),
		DuplicateOf:          rowString(row, "duplicate_of"),
		Source:               rowString(row, "source"),
		CreatedAt:            rowTime(row, "created_at"),
		UpdatedAt:            rowTime(row, "updated_at"),
	}

	rawNotes := rowString(row, "notes")
	payload, plain := codec.Decode(rawNotes)
	lead.Notes = plain

	if status, ok := rowStringOK(row, "status"); ok && status != "" {
		lead.Status = domain.Status(status)
	} else if payload.Status != "" {
		lead.Status = domain.Status(payload.Status)
	} else {
		lead.Status = domain.StatusReceived
	}

	if classification, ok := rowStringOK(row, "ai_classification"); ok && classification != "" {
		lead.AIClassification = domain.Classification(classification)
	} else if payload.Classification != "" {
		lead.AIClassification = domain.Classification(payload.Classification)
	}

	if score, ok := rowIntOK(row, "ai_score"); ok {
		lead.AIScore = score
	} else {
		lead.AIScore = payload.Score
	}

	if reason, ok := rowStringOK(row, "ai_reason"); ok && reason != "" {
		lead.AIReason = reason
	} else {
		lead.AIReason = payload.Reason
	}

	lead.AISummary = rowString(row, "ai_summary")
	lead.AINextAction = rowString(row, "ai_next_action")

	return lead
}

func rowString(row map[string]any, column string) string {
	s, _ := rowStringOK(row, column)
	return s
}

func rowStringOK(row map[string]any, column string) (string, bool) {
	value, ok := row[column]
	if !ok || value == nil {
		return "", ok
	}
	switch v := value.(type) {
	case string:
		return v, true
	case [16]byte:
		return uuid.UUID(v).String(), true
	default:
		return "", true
	}
}

func rowIntOK(row map[string]any, column string) (int, bool) {
	value, ok := row[column]
	if !ok || value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func rowTime(row map[string]any, column string) time.Time {
	if value, ok := row[column]; ok {
		if t, ok := value.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// Package phone normalizes phone numbers for storage and duplicate
// matching.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion is assumed when a number carries no country code.
const defaultRegion = "BR"

// NormalizeE164 converts a raw phone string to E.164 format. Numbers
// that fail to parse are returned trimmed as-is; a lead with an odd
// phone is still a lead.
func NormalizeE164(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// DigitsOnly strips every non-digit rune. Used for duplicate matching,
// where formatting differences must not hide a repeat contact.
func DigitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Package codec packs pipeline status and AI metadata into a free-text
// notes field for table schemas that lack the dedicated columns.
//
// Wire format inside a notes value:
//
//	[STATUS:negotiation] human written note ||IA_DATA|| {"classification":"hot","score":85}
//
// The bracketed status tag and the delimited JSON blob are both
// optional and independent. Every encode replaces prior tags of the
// same kind instead of stacking them.
package codec

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Delimiter separates human notes from the encoded AI payload.
const Delimiter = "||IA_DATA||"

var statusTagPattern = regexp.MustCompile(`\[STATUS:([^\]\s]+)\]\s*`)

// Payload is the metadata the codec can embed alongside human notes.
// Zero values mean "absent"; an absent field is not written.
type Payload struct {
	Status         string `json:"-"`
	Classification string `json:"classification,omitempty"`
	Score          int    `json:"score,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// IsZero reports whether the payload carries nothing to encode.
func (p Payload) IsZero() bool {
	return p.Status == "" && p.Classification == "" && p.Score == 0 && p.Reason == ""
}

func (p Payload) hasAIFields() bool {
	return p.Classification != "" || p.Score != 0 || p.Reason != ""
}

// Encode embeds payload into notes, stripping any previously encoded
// status tag and AI blob first so repeated writes never accumulate.
// The human-authored portion of notes survives unchanged.
func Encode(notes string, payload Payload) string {
	plain := stripEncoded(notes)

	var b strings.Builder
	if payload.Status != "" {
		b.WriteString("[STATUS:")
		b.WriteString(payload.Status)
		b.WriteString("]")
		if plain != "" || payload.hasAIFields() {
			b.WriteString(" ")
		}
	}
	b.WriteString(plain)

	if payload.hasAIFields() {
		blob, err := json.Marshal(payload)
		if err == nil {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
				b.WriteString(" ")
			}
			b.WriteString(Delimiter)
			b.WriteString(" ")
			b.Write(blob)
		}
	}

	return strings.TrimSpace(b.String())
}

// Decode extracts the embedded payload and the plain human note from a
// notes value. It never fails: a missing tag yields a zero payload, and
// malformed JSON after the delimiter is dropped while any bracketed
// status is still honored.
func Decode(notes string) (Payload, string) {
	var payload Payload

	working := notes
	if match := statusTagPattern.FindStringSubmatch(working); match != nil {
		payload.Status = match[1]
		working = statusTagPattern.ReplaceAllString(working, "")
	}

	if idx := strings.Index(working, Delimiter); idx >= 0 {
		blob := strings.TrimSpace(working[idx+len(Delimiter):])
		working = working[:idx]

		var aiFields Payload
		if err := json.Unmarshal([]byte(blob), &aiFields); err == nil {
			payload.Classification = aiFields.Classification
			payload.Score = aiFields.Score
			payload.Reason = aiFields.Reason
		}
	}

	return payload, strings.TrimSpace(working)
}

// stripEncoded removes every status tag and encoded AI blob, returning
// only the human-authored note text.
func stripEncoded(notes string) string {
	working := statusTagPattern.ReplaceAllString(notes, "")
	if idx := strings.Index(working, Delimiter); idx >= 0 {
		working = working[:idx]
	}
	return strings.TrimSpace(working)
}

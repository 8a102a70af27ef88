package domain

import (
	"fmt"
	"strings"
)

// TableSource identifies which physical table a lead row lives in.
type TableSource string

const (
	// SourceCanonical is the unified leads table the dashboard reads.
	SourceCanonical TableSource = "canonical"
	// SourceLegacy is the older distribution intake table still fed by
	// some channels.
	SourceLegacy TableSource = "legacy"
)

const (
	canonicalPrefix = "crm_"
	legacyPrefix    = "dist_"
)

// Ref is a lead reference carrying row provenance. The prefix form is
// what the API exchanges with clients; provenance is part of the lead's
// identity and round-trips through every read and write.
type Ref struct {
	Source TableSource
	ID     string
}

// CanonicalRef builds a Ref into the canonical table.
func CanonicalRef(id string) Ref { return Ref{Source: SourceCanonical, ID: id} }

// LegacyRef builds a Ref into the legacy distribution table.
func LegacyRef(id string) Ref { return Ref{Source: SourceLegacy, ID: id} }

// ParseRef decodes a prefixed lead identifier. Unprefixed identifiers
// are rejected; every lead the system hands out is tagged.
func ParseRef(raw string) (Ref, error) {
	switch {
	case strings.HasPrefix(raw, canonicalPrefix):
		id := strings.TrimPrefix(raw, canonicalPrefix)
		if id == "" {
			return Ref{}, fmt.Errorf("empty canonical lead id")
		}
		return CanonicalRef(id), nil
	case strings.HasPrefix(raw, legacyPrefix):
		id := strings.TrimPrefix(raw, legacyPrefix)
		if id == "" {
			return Ref{}, fmt.Errorf("empty legacy lead id")
		}
		return LegacyRef(id), nil
	default:
		return Ref{}, fmt.Errorf("lead id %q has no recognized provenance prefix", raw)
	}
}

// String renders the prefixed wire form.
func (r Ref) String() string {
	switch r.Source {
	case SourceLegacy:
		return legacyPrefix + r.ID
	default:
		return canonicalPrefix + r.ID
	}
}

// IsZero reports whether the ref is unset.
func (r Ref) IsZero() bool { return r.ID == "" }

package codec

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		notes   string
		payload Payload
	}{
		{"status only", "cliente quer financiamento", Payload{Status: "negotiation"}},
		{"ai only", "ligou duas vezes", Payload{Classification: "hot", Score: 85, Reason: "pediu proposta"}},
		{"full payload", "", Payload{Status: "scheduled", Classification: "warm", Score: 40}},
		{"empty notes empty payload", "", Payload{}},
		{"payload over empty notes", "", Payload{Classification: "cold", Score: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.notes, tt.payload)
			decoded, plain := Decode(encoded)
			if decoded != tt.payload {
				t.Fatalf("round trip payload = %+v, want %+v (encoded %q)", decoded, tt.payload, encoded)
			}
			if plain != tt.notes {
				t.Fatalf("round trip notes = %q, want %q", plain, tt.notes)
			}
		})
	}
}

func TestEncodeReplacesExistingTags(t *testing.T) {
	first := Encode("anotação do vendedor", Payload{Status: "contacted", Classification: "warm", Score: 30})
	second := Encode(first, Payload{Status: "scheduled", Classification: "hot", Score: 70})

	decoded, plain := Decode(second)
	if decoded.Status != "scheduled" {
		t.Fatalf("status = %q, want scheduled", decoded.Status)
	}
	if decoded.Classification != "hot" || decoded.Score != 70 {
		t.Fatalf("ai fields = %+v, want hot/70", decoded)
	}
	if plain != "anotação do vendedor" {
		t.Fatalf("plain note = %q", plain)
	}

	// Exactly one tag instance after repeated writes.
	if n := countOccurrences(second, "[STATUS:"); n != 1 {
		t.Fatalf("found %d status tags in %q, want 1", n, second)
	}
	if n := countOccurrences(second, Delimiter); n != 1 {
		t.Fatalf("found %d delimiters in %q, want 1", n, second)
	}
}

func TestDecodeWithoutTags(t *testing.T) {
	payload, plain := Decode("só uma anotação normal")
	if !payload.IsZero() {
		t.Fatalf("expected zero payload, got %+v", payload)
	}
	if plain != "só uma anotação normal" {
		t.Fatalf("plain = %q", plain)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	payload, plain := Decode("[STATUS:visited] cliente visitou ||IA_DATA|| {not valid json")
	if payload.Status != "visited" {
		t.Fatalf("status = %q, want visited despite broken blob", payload.Status)
	}
	if payload.Classification != "" || payload.Score != 0 {
		t.Fatalf("ai fields should be dropped on malformed blob, got %+v", payload)
	}
	if plain != "cliente visitou" {
		t.Fatalf("plain = %q", plain)
	}
}

func TestDecodeLegacyIntakeNote(t *testing.T) {
	payload, plain := Decode(`Cliente gostou do carro ||IA_DATA|| {"classification":"hot"}`)
	if payload.Classification != "hot" {
		t.Fatalf("classification = %q, want hot", payload.Classification)
	}
	if plain != "Cliente gostou do carro" {
		t.Fatalf("plain = %q", plain)
	}
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}

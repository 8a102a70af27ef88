package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"local mobile", "(11) 98765-4321", "+5511987654321"},
		{"already e164", "+5511987654321", "+5511987654321"},
		{"with country prefix", "55 11 98765 4321", "+5511987654321"},
		{"garbage preserved", "not-a-phone", "not-a-phone"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeE164(tt.input)
			if got != tt.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	got := DigitsOnly("+55 (11) 98765-4321")
	if got != "5511987654321" {
		t.Fatalf("DigitsOnly = %q, want 5511987654321", got)
	}
}

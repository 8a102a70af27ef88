// Package webhook captures inbound leads from ad and messaging
// channels into the distribution intake table.
package webhook

import (
	"strings"
)

// FormSubmission is the normalized shape of an inbound lead payload.
type FormSubmission struct {
	Name    string
	Phone   string
	Vehicle string
	Region  string
	Message string
	Source  string
}

// Field aliases seen across the channels that post to us. Portals and
// ad platforms disagree on key names; we accept all of them.
var (
	nameKeys    = []string{"nome", "name", "full_name", "fullname", "lead_name"}
	phoneKeys   = []string{"telefone", "phone", "whatsapp", "celular", "phone_number"}
	vehicleKeys = []string{"veiculo", "vehicle", "carro", "modelo", "model", "interest"}
	regionKeys  = []string{"regiao", "region", "cidade", "city", "bairro"}
	messageKeys = []string{"resumo", "message", "mensagem", "observacao", "comments", "description"}
)

// ExtractSubmission pulls a lead out of an arbitrary key/value payload
// using the known field aliases. Keys are matched case-insensitively.
func ExtractSubmission(payload map[string]any, source string) FormSubmission {
	lowered := make(map[string]string, len(payload))
	for key, value := range payload {
		if s, ok := value.(string); ok {
			lowered[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(s)
		}
	}

	pick := func(keys []string) string {
		for _, key := range keys {
			if v := lowered[key]; v != "" {
				return v
			}
		}
		return ""
	}

	return FormSubmission{
		Name:    pick(nameKeys),
		Phone:   pick(phoneKeys),
		Vehicle: pick(vehicleKeys),
		Region:  pick(regionKeys),
		Message: pick(messageKeys),
		Source:  source,
	}
}

// Valid reports whether the submission carries enough to be a lead. A
// name or a phone is enough; everything else is optional.
func (f FormSubmission) Valid() bool {
	return f.Name != "" || f.Phone != ""
}

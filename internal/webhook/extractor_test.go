package webhook

import "testing"

func TestExtractSubmissionPortugueseKeys(t *testing.T) {
	payload := map[string]any{
		"Nome":     "Maria Souza",
		"Telefone": "(47) 99999-1234",
		"Veiculo":  "Onix 2023",
		"Regiao":   "Blumenau",
		"Resumo":   "Quer financiamento",
	}
	sub := ExtractSubmission(payload, "meta_ads")
	if sub.Name != "Maria Souza" || sub.Phone != "(47) 99999-1234" {
		t.Fatalf("identity fields wrong: %+v", sub)
	}
	if sub.Vehicle != "Onix 2023" || sub.Region != "Blumenau" || sub.Message != "Quer financiamento" {
		t.Fatalf("detail fields wrong: %+v", sub)
	}
	if sub.Source != "meta_ads" {
		t.Fatalf("source = %q", sub.Source)
	}
}

func TestExtractSubmissionEnglishAliases(t *testing.T) {
	payload := map[string]any{
		"full_name":    "John Doe",
		"phone_number": "47988887777",
		"model":        "HB20",
	}
	sub := ExtractSubmission(payload, "site")
	if sub.Name != "John Doe" || sub.Phone != "47988887777" || sub.Vehicle != "HB20" {
		t.Fatalf("aliases not honored: %+v", sub)
	}
}

func TestExtractSubmissionIgnoresNonStrings(t *testing.T) {
	payload := map[string]any{
		"nome":     "Cliente",
		"telefone": 47999991111,
		"extra":    map[string]any{"nested": true},
	}
	sub := ExtractSubmission(payload, "site")
	if sub.Phone != "" {
		t.Fatalf("numeric phone must be ignored, got %q", sub.Phone)
	}
	if !sub.Valid() {
		t.Fatal("name alone is enough to be a lead")
	}
}

func TestSubmissionValid(t *testing.T) {
	if (FormSubmission{}).Valid() {
		t.Fatal("empty submission must be invalid")
	}
	if !(FormSubmission{Phone: "479999"}).Valid() {
		t.Fatal("phone alone must be valid")
	}
}

// Package agent calls the LLM provider to classify and summarize leads.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
)

// Analyzer produces a structured review of a lead. Failures are real
// failures: the gateway never fabricates a classification.
type Analyzer interface {
	Analyze(ctx context.Context, lead domain.Lead, conversation string) (domain.Analysis, error)
}

// GeminiAnalyzer implements Analyzer on the Gemini API with JSON
// output mode.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

var _ Analyzer = (*GeminiAnalyzer)(nil)

type analysisResponse struct {
	Classification string   `json:"classification"`
	Score          int      `json:"score"`
	Summary        string   `json:"summary"`
	NextAction     string   `json:"next_action"`
	Bottleneck     string   `json:"bottleneck"`
	Steps          []string `json:"steps"`
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, lead domain.Lead, conversation string) (domain.Analysis, error) {
	prompt := buildPrompt(lead, conversation)

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return domain.Analysis{}, apperr.Wrap("agent.Analyze", fmt.Errorf("generate content: %w", err))
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return domain.Analysis{}, apperr.Unavailable("AI returned an empty response")
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		return domain.Analysis{}, apperr.Wrap("agent.Analyze", err)
	}
	return analysis, nil
}

// parseAnalysis decodes and validates the model output. Malformed or
// out-of-range output is an error the caller sees, never a default.
func parseAnalysis(raw string) (domain.Analysis, error) {
	var resp analysisResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return domain.Analysis{}, fmt.Errorf("malformed AI response: %w", err)
	}

	classification := domain.Classification(strings.ToLower(strings.TrimSpace(resp.Classification)))
	if !classification.IsKnown() {
		return domain.Analysis{}, fmt.Errorf("AI returned unknown classification %q", resp.Classification)
	}
	if resp.Score < 0 || resp.Score > 100 {
		return domain.Analysis{}, fmt.Errorf("AI score %d out of range", resp.Score)
	}

	steps := resp.Steps
	if len(steps) > 3 {
		steps = steps[:3]
	}

	return domain.Analysis{
		Classification: classification,
		Score:          resp.Score,
		Summary:        strings.TrimSpace(resp.Summary),
		NextAction:     strings.TrimSpace(resp.NextAction),
		Bottleneck:     strings.TrimSpace(resp.Bottleneck),
		Steps:          steps,
	}, nil
}

func buildPrompt(lead domain.Lead, conversation string) string {
	var b strings.Builder
	b.WriteString(analysisSystemPrompt)
	b.WriteString("\n\n--- LEAD ---\n")
	fmt.Fprintf(&b, "Nome: %s\n", lead.Name)
	fmt.Fprintf(&b, "Veículo de interesse: %s\n", lead.VehicleInterest)
	if lead.TradeInVehicle != "" {
		fmt.Fprintf(&b, "Veículo na troca: %s\n", lead.TradeInVehicle)
	}
	fmt.Fprintf(&b, "Região: %s\n", lead.Region)
	fmt.Fprintf(&b, "Status atual: %s\n", lead.Status)
	if lead.Notes != "" {
		fmt.Fprintf(&b, "Anotações do consultor: %s\n", lead.Notes)
	}
	if conversation != "" {
		b.WriteString("\n--- CONVERSA ---\n")
		b.WriteString(conversation)
	}
	return b.String()
}

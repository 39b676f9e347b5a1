// Package agent implements the decision-support agents: cost optimization,
// regulatory compliance, and operational feasibility. Agents advise; the
// caller decides. Like the context resolver, agents never fail: the cost
// agent degrades from a model-backed recommendation to a deterministic rule
// when the model is unavailable or returns garbage.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/couchcryptid/disruption-context-service/internal/observability"
)

const CostAgentName = "Gemini-Cost-Agent"

// Cost recommendation values.
const (
	RecommendLimitHotel  = "LIMIT_HOTEL"
	RecommendHotelForAll = "HOTEL_FOR_ALL"
)

// CostRequest describes a delay scenario for the cost agent.
type CostRequest struct {
	DelayHours      int `json:"delay_hours"`
	TotalPassengers int `json:"total_passengers"`
	VIPPassengers   int `json:"vip_passengers"`
}

// CostRecommendation is the cost agent's advice.
type CostRecommendation struct {
	Agent          string  `json:"agent"`
	Recommendation string  `json:"recommendation"`
	Reason         string  `json:"reason"`
	Confidence     float64 `json:"confidence"`
}

// contentGenerator abstracts the generative model call so tests can fake it.
type contentGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// geminiGenerator calls the Gemini API via the genai SDK.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// CostService recommends hotel accommodation policy for delay scenarios.
type CostService struct {
	generator contentGenerator // nil when no API key is configured
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewCostService creates the cost agent. An empty apiKey disables the model
// path; every recommendation then comes from the rule fallback.
func NewCostService(ctx context.Context, apiKey, model string, metrics *observability.Metrics, logger *slog.Logger) (*CostService, error) {
	s := &CostService{metrics: metrics, logger: logger}
	if apiKey == "" {
		logger.Info("gemini cost agent disabled, rule fallback only")
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	s.generator = &geminiGenerator{client: client, model: model}
	logger.Info("gemini cost agent enabled", "model", model)
	return s, nil
}

// Recommend returns a hotel accommodation recommendation. Never fails: any
// model error or unusable model output routes to the deterministic fallback.
func (s *CostService) Recommend(ctx context.Context, req CostRequest) CostRecommendation {
	if s.generator == nil {
		s.metrics.AgentRequests.WithLabelValues("cost", "fallback").Inc()
		return fallbackRecommendation(req)
	}

	text, err := s.generator.Generate(ctx, costPrompt(req))
	if err != nil {
		s.logger.Warn("gemini request failed, using rule fallback", "error", err)
		s.metrics.AgentRequests.WithLabelValues("cost", "fallback").Inc()
		return fallbackRecommendation(req)
	}

	rec, err := parseModelRecommendation(text)
	if err != nil {
		s.logger.Warn("gemini response unusable, using rule fallback", "error", err)
		s.metrics.AgentRequests.WithLabelValues("cost", "fallback").Inc()
		return fallbackRecommendation(req)
	}

	s.metrics.AgentRequests.WithLabelValues("cost", "live").Inc()
	return rec
}

func costPrompt(req CostRequest) string {
	return fmt.Sprintf(`You are an airline cost optimization agent.
Given flight delay details, suggest whether hotel accommodation should be provided to all passengers or limited.

Delay: %d hours
Total Passengers: %d
VIP Passengers: %d

Return ONLY valid JSON with:
- recommendation (LIMIT_HOTEL or HOTEL_FOR_ALL)
- reason (short explanation)
- confidence (number between 0 and 1)

Format your response as JSON only, no additional text.`, req.DelayHours, req.TotalPassengers, req.VIPPassengers)
}

// parseModelRecommendation extracts a recommendation from model output,
// tolerating markdown code fences around the JSON.
func parseModelRecommendation(text string) (CostRecommendation, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var parsed struct {
		Recommendation string  `json:"recommendation"`
		Reason         string  `json:"reason"`
		Confidence     float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return CostRecommendation{}, fmt.Errorf("parse model output: %w", err)
	}

	if parsed.Recommendation != RecommendLimitHotel && parsed.Recommendation != RecommendHotelForAll {
		return CostRecommendation{}, fmt.Errorf("unexpected recommendation %q", parsed.Recommendation)
	}
	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		return CostRecommendation{}, fmt.Errorf("confidence %v out of range", parsed.Confidence)
	}

	reason := parsed.Reason
	if reason == "" {
		reason = "Cost optimization analysis"
	}

	return CostRecommendation{
		Agent:          CostAgentName,
		Recommendation: parsed.Recommendation,
		Reason:         reason,
		Confidence:     parsed.Confidence,
	}, nil
}

// fallbackRecommendation is the deterministic rule used when the model path
// is unavailable: long delays and small cabins justify full accommodation.
func fallbackRecommendation(req CostRequest) CostRecommendation {
	if req.DelayHours >= 4 || req.TotalPassengers < 50 {
		return CostRecommendation{
			Agent:          CostAgentName,
			Recommendation: RecommendHotelForAll,
			Reason:         "Small passenger count or long delay justifies full accommodation",
			Confidence:     0.65,
		}
	}
	return CostRecommendation{
		Agent:          CostAgentName,
		Recommendation: RecommendLimitHotel,
		Reason:         "Hotel for all passengers is expensive for this delay duration",
		Confidence:     0.70,
	}
}

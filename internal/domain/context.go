package domain

import (
	"strings"
	"time"
)

// Severity is the three-level disruption intensity classification.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Risk is the likelihood that a disruption cascades to dependent operations.
// It shares the Severity scale but is a distinct axis: a hub airport with LOW
// severity still carries MEDIUM cascading risk.
type Risk string

const (
	RiskLow    Risk = "LOW"
	RiskMedium Risk = "MEDIUM"
	RiskHigh   Risk = "HIGH"
)

// Provenance marks which stage produced a ContextResult.
type Provenance string

const (
	// ProvenanceLive means the result was normalized from a real provider reading.
	ProvenanceLive Provenance = "LIVE"
	// ProvenanceFallback means the result came from the static rule table.
	// This is a normal outcome, not a degraded one.
	ProvenanceFallback Provenance = "FALLBACK"
)

// ProviderReading is the raw weather payload from an external provider.
// It exists only for the duration of one resolution call and is never persisted.
type ProviderReading struct {
	Condition       string  // condition group, upper-cased (e.g. "THUNDERSTORM", "RAIN")
	Description     string  // free-form detail, lower-cased (e.g. "heavy intensity rain")
	WindSpeedMS     float64 // m/s
	VisibilityM     float64 // meters
	PrecipMMPerHour float64 // combined rain + snow rate, mm/h
}

// ProviderDetail echoes the live reading back to the caller. Present on a
// ContextResult only when provenance is LIVE.
type ProviderDetail struct {
	Condition       string  `json:"condition"`
	Description     string  `json:"description"`
	WindSpeedMS     float64 `json:"wind_speed_ms"`
	VisibilityM     float64 `json:"visibility_m"`
	PrecipMMPerHour float64 `json:"precip_mm_per_hour"`
}

// ContextResult is the stable output of a context resolution. Every field is
// always populated; Detail is non-nil exactly when Provenance is LIVE.
type ContextResult struct {
	Severity              Severity        `json:"severity"`
	ExpectedDurationHours float64         `json:"expected_duration_hours"`
	CascadingRisk         Risk            `json:"cascading_risk"`
	Provenance            Provenance      `json:"provenance"`
	Detail                *ProviderDetail `json:"detail"`
	ResolvedAt            time.Time       `json:"resolved_at"`
}

// Ruleset holds the static subject classification tables. Built once at
// startup from configuration and never mutated afterwards.
type Ruleset struct {
	elevated map[string]struct{}
	hubs     map[string]struct{}
}

// NewRuleset builds a Ruleset from the elevated-severity and hub subject
// lists. Subject codes are normalized to upper case.
func NewRuleset(elevated, hubs []string) Ruleset {
	r := Ruleset{
		elevated: make(map[string]struct{}, len(elevated)),
		hubs:     make(map[string]struct{}, len(hubs)),
	}
	for _, s := range elevated {
		r.elevated[normalizeSubject(s)] = struct{}{}
	}
	for _, s := range hubs {
		r.hubs[normalizeSubject(s)] = struct{}{}
	}
	return r
}

// Elevated reports whether the subject is in the elevated-severity fallback set.
func (r Ruleset) Elevated(subject string) bool {
	_, ok := r.elevated[normalizeSubject(subject)]
	return ok
}

// Hub reports whether the subject is a high-traffic hub.
func (r Ruleset) Hub(subject string) bool {
	_, ok := r.hubs[normalizeSubject(subject)]
	return ok
}

// normalizeSubject canonicalizes a subject identifier for table lookups.
func normalizeSubject(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

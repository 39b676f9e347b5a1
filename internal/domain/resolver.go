package domain

import (
	"context"
	"log/slog"
	"time"
)

// Resolver turns a subject identifier into a ContextResult. It performs at
// most one outbound lookup per call and never returns an error: every failure
// mode collapses into the static fallback table.
type Resolver struct {
	provider WeatherProvider // nil when live lookups are disabled
	rules    Ruleset
	timeout  time.Duration
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A nil provider disables live lookups; every
// resolution then takes the fallback path.
func NewResolver(provider WeatherProvider, rules Ruleset, timeout time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		rules:    rules,
		timeout:  timeout,
		logger:   logger,
	}
}

// Resolve returns the disruption context for a subject. Always returns a
// fully-populated result; callers observe Provenance to learn whether it came
// from a live reading or the fallback table.
func (r *Resolver) Resolve(ctx context.Context, subjectID string) ContextResult {
	subject := normalizeSubject(subjectID)
	if subject == "" {
		r.logger.Warn("empty subject, using fallback", "kind", LookupInvalidSubject)
		return r.fallback(subject)
	}
	if r.provider == nil {
		r.logger.Debug("live lookups disabled, using fallback", "subject", subject)
		return r.fallback(subject)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reading, err := r.provider.FetchReading(lookupCtx, subject)
	if err != nil {
		r.logger.Warn("weather lookup failed, using fallback",
			"subject", subject,
			"kind", LookupKind(err),
			"error", err,
		)
		return r.fallback(subject)
	}

	severity := classifySeverity(reading)
	return ContextResult{
		Severity:              severity,
		ExpectedDurationHours: durationForSeverity(severity),
		CascadingRisk:         cascadingRisk(severity, r.rules.Hub(subject)),
		Provenance:            ProvenanceLive,
		Detail: &ProviderDetail{
			Condition:       reading.Condition,
			Description:     reading.Description,
			WindSpeedMS:     reading.WindSpeedMS,
			VisibilityM:     reading.VisibilityM,
			PrecipMMPerHour: reading.PrecipMMPerHour,
		},
		ResolvedAt: clock.Now().UTC(),
	}
}

// fallback derives the result from subject identity alone. Elevated subjects
// classify HIGH across the board; everything else, the empty subject included,
// classifies MEDIUM.
func (r *Resolver) fallback(subject string) ContextResult {
	severity := SeverityMedium
	if r.rules.Elevated(subject) {
		severity = SeverityHigh
	}
	return ContextResult{
		Severity:              severity,
		ExpectedDurationHours: durationForSeverity(severity),
		CascadingRisk:         Risk(severity),
		Provenance:            ProvenanceFallback,
		ResolvedAt:            clock.Now().UTC(),
	}
}

package domain

import "strings"

// heavyPrecipMMPerHour is the standard meteorological heavy-rain rate boundary.
const heavyPrecipMMPerHour = 7.6

// severityRule is one predicate in the classification cascade.
type severityRule struct {
	name     string
	match    func(ProviderReading) bool
	severity Severity
}

// severityRules is evaluated in order, first match wins. HIGH rules precede
// MEDIUM rules; reordering changes classification for overlapping readings.
var severityRules = []severityRule{
	{"storm condition", func(r ProviderReading) bool {
		return strings.Contains(r.Condition, "THUNDERSTORM") || strings.Contains(r.Condition, "EXTREME")
	}, SeverityHigh},
	{"severe description", func(r ProviderReading) bool {
		return strings.Contains(r.Description, "heavy") || strings.Contains(r.Description, "severe")
	}, SeverityHigh},
	{"heavy precipitation", func(r ProviderReading) bool {
		return r.PrecipMMPerHour >= heavyPrecipMMPerHour
	}, SeverityHigh},
	{"strong wind", func(r ProviderReading) bool {
		return r.WindSpeedMS > 15
	}, SeverityHigh},
	{"low visibility", func(r ProviderReading) bool {
		return r.VisibilityM < 1000
	}, SeverityHigh},

	{"precipitation condition", func(r ProviderReading) bool {
		return strings.Contains(r.Condition, "RAIN") ||
			strings.Contains(r.Condition, "SNOW") ||
			strings.Contains(r.Condition, "DRIZZLE")
	}, SeverityMedium},
	{"measurable precipitation", func(r ProviderReading) bool {
		return r.PrecipMMPerHour > 0
	}, SeverityMedium},
	{"moderate wind", func(r ProviderReading) bool {
		return r.WindSpeedMS > 8
	}, SeverityMedium},
	{"reduced visibility", func(r ProviderReading) bool {
		return r.VisibilityM < 5000
	}, SeverityMedium},
}

// classifySeverity maps a live reading onto the severity scale using the
// ordered rule cascade. Defaults to LOW when no rule matches.
func classifySeverity(reading ProviderReading) Severity {
	for _, rule := range severityRules {
		if rule.match(reading) {
			return rule.severity
		}
	}
	return SeverityLow
}

// durationForSeverity estimates disruption duration in hours. Monotone in
// severity: higher severity never maps to a shorter duration.
func durationForSeverity(severity Severity) float64 {
	switch severity {
	case SeverityHigh:
		return 4.0
	case SeverityMedium:
		return 2.0
	default:
		return 1.0
	}
}

// cascadingRisk combines severity with hub membership. Hub status escalates
// risk one level, capped at HIGH.
func cascadingRisk(severity Severity, hub bool) Risk {
	switch severity {
	case SeverityHigh:
		return RiskHigh
	case SeverityMedium:
		if hub {
			return RiskHigh
		}
		return RiskMedium
	default:
		if hub {
			return RiskMedium
		}
		return RiskLow
	}
}

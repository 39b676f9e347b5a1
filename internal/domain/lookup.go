package domain

import (
	"context"
	"errors"
	"fmt"
)

// LookupErrorKind classifies why a provider lookup failed. Every kind routes
// to the same fallback branch; the kind exists for logging and metrics.
type LookupErrorKind string

const (
	LookupTimeout        LookupErrorKind = "timeout"
	LookupTransport      LookupErrorKind = "transport"
	LookupBadResponse    LookupErrorKind = "bad_response"
	LookupUnknownSubject LookupErrorKind = "unknown_subject"
	LookupInvalidSubject LookupErrorKind = "invalid_subject"
)

// LookupError wraps a provider failure with its classification.
type LookupError struct {
	Kind LookupErrorKind
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("weather lookup (%s): %v", e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// LookupKind extracts the classification from a lookup failure. Unclassified
// errors report as transport failures; a context deadline reports as timeout.
func LookupKind(err error) LookupErrorKind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return LookupTimeout
	}
	return LookupTransport
}

// WeatherProvider fetches a live reading for a subject. Implementations
// classify failures by returning a *LookupError.
type WeatherProvider interface {
	FetchReading(ctx context.Context, subject string) (ProviderReading, error)
}

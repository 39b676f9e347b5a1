// Package openweather implements domain.WeatherProvider using the
// OpenWeatherMap current-weather API.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/disruption-context-service/internal/domain"
	"github.com/couchcryptid/disruption-context-service/internal/observability"
)

// defaultVisibilityM is what OpenWeatherMap reports when visibility is
// unrestricted; the field is omitted from some responses.
const defaultVisibilityM = 10000

// Client fetches current weather readings from OpenWeatherMap.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	cities     map[string]string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. The cities map translates
// subject codes into the city names the API understands.
func NewClient(apiKey, baseURL string, timeout time.Duration, cities map[string]string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		cities:  cities,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchReading fetches and maps the current weather for a subject. Failures
// are classified into domain lookup kinds; the caller decides what to do with
// them (in practice: fall back).
func (c *Client) FetchReading(ctx context.Context, subject string) (domain.ProviderReading, error) {
	city, ok := c.cities[subject]
	if !ok {
		c.metrics.WeatherLookups.WithLabelValues(string(domain.LookupUnknownSubject)).Inc()
		return domain.ProviderReading{}, &domain.LookupError{
			Kind: domain.LookupUnknownSubject,
			Err:  fmt.Errorf("no city mapping for subject %q", subject),
		}
	}

	params := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.metrics.WeatherLookups.WithLabelValues(string(domain.LookupTransport)).Inc()
		return domain.ProviderReading{}, &domain.LookupError{
			Kind: domain.LookupTransport,
			Err:  fmt.Errorf("create request: %w", err),
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := classifyTransportError(err)
		c.metrics.WeatherLookups.WithLabelValues(string(kind)).Inc()
		return domain.ProviderReading{}, &domain.LookupError{
			Kind: kind,
			Err:  fmt.Errorf("weather request for %s: %w", city, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.WeatherLookups.WithLabelValues(string(domain.LookupBadResponse)).Inc()
		return domain.ProviderReading{}, &domain.LookupError{
			Kind: domain.LookupBadResponse,
			Err:  fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body),
		}
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		c.metrics.WeatherLookups.WithLabelValues(string(domain.LookupBadResponse)).Inc()
		return domain.ProviderReading{}, &domain.LookupError{
			Kind: domain.LookupBadResponse,
			Err:  fmt.Errorf("decode response: %w", err),
		}
	}

	c.metrics.WeatherLookups.WithLabelValues("success").Inc()
	return mapResponse(owm), nil
}

// classifyTransportError separates timeouts from other transport failures.
func classifyTransportError(err error) domain.LookupErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.LookupTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.LookupTimeout
	}
	return domain.LookupTransport
}

// mapResponse normalizes the OpenWeatherMap payload into a ProviderReading.
func mapResponse(owm response) domain.ProviderReading {
	var condition, description string
	if len(owm.Weather) > 0 {
		condition = strings.ToUpper(owm.Weather[0].Main)
		description = strings.ToLower(owm.Weather[0].Description)
	}

	visibility := float64(defaultVisibilityM)
	if owm.Visibility != nil {
		visibility = *owm.Visibility
	}

	return domain.ProviderReading{
		Condition:       condition,
		Description:     description,
		WindSpeedMS:     owm.Wind.Speed,
		VisibilityM:     visibility,
		PrecipMMPerHour: owm.Rain.OneHour + owm.Snow.OneHour,
	}
}

// OpenWeatherMap API response types.

type response struct {
	Weather    []weather `json:"weather"`
	Wind       wind      `json:"wind"`
	Visibility *float64  `json:"visibility"`
	Rain       precip    `json:"rain"`
	Snow       precip    `json:"snow"`
}

type weather struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type wind struct {
	Speed float64 `json:"speed"` // m/s with units=metric
}

type precip struct {
	OneHour float64 `json:"1h"` // mm over the last hour
}

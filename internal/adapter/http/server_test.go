package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/disruption-context-service/internal/adapter/http"
	"github.com/couchcryptid/disruption-context-service/internal/agent"
	"github.com/couchcryptid/disruption-context-service/internal/domain"
	"github.com/couchcryptid/disruption-context-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider implements domain.WeatherProvider with a canned outcome.
type fakeProvider struct {
	reading domain.ProviderReading
	err     error
}

func (f *fakeProvider) FetchReading(_ context.Context, _ string) (domain.ProviderReading, error) {
	if f.err != nil {
		return domain.ProviderReading{}, f.err
	}
	return f.reading, nil
}

// fakeAudit records published audit calls on a channel.
type fakeAudit struct {
	published chan string
}

func (f *fakeAudit) Publish(_ context.Context, agentName string, _, _ any) {
	f.published <- agentName
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRules() domain.Ruleset {
	return domain.NewRuleset(
		[]string{"DEL", "BOM", "CCU", "BLR"},
		[]string{"DEL", "BOM", "BLR", "MAA"},
	)
}

func newTestServer(t *testing.T, provider domain.WeatherProvider, audit httpadapter.AuditPublisher) *httpadapter.Server {
	t.Helper()
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	cost, err := agent.NewCostService(context.Background(), "", "gemini-2.5-flash", metrics, logger)
	require.NoError(t, err)

	deps := httpadapter.Deps{
		Resolver: domain.NewResolver(provider, testRules(), time.Second, logger),
		Cost:     cost,
		Ops:      agent.OpsConfig{AvailableSeats: 42, HotelCapacity: "LIMITED"},
		Audit:    audit,
		Metrics:  metrics,
	}
	return httpadapter.NewServer(":0", deps, logger)
}

func doRequest(srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := doRequest(srv, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "disruption-context-service", body["service"])
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := doRequest(srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := doRequest(srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := doRequest(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestWeatherContext_LiveReading(t *testing.T) {
	provider := &fakeProvider{reading: domain.ProviderReading{
		Condition:   "CLEAR",
		Description: "clear sky",
		WindSpeedMS: 2,
		VisibilityM: 10000,
	}}
	srv := newTestServer(t, provider, nil)

	rec := doRequest(srv, http.MethodPost, "/api/context/weather", `{"subject_id":"MAA"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "LOW", body["severity"])
	assert.Equal(t, 1.0, body["expected_duration_hours"])
	assert.Equal(t, "MEDIUM", body["cascading_risk"]) // MAA is a hub
	assert.Equal(t, "LIVE", body["provenance"])
	assert.NotNil(t, body["detail"])
}

func TestWeatherContext_ProviderDown_ElevatedSubject(t *testing.T) {
	provider := &fakeProvider{err: &domain.LookupError{Kind: domain.LookupTransport, Err: errors.New("unreachable")}}
	srv := newTestServer(t, provider, nil)

	rec := doRequest(srv, http.MethodPost, "/api/context/weather", `{"subject_id":"DEL"}`)

	require.Equal(t, http.StatusOK, rec.Code, "resolver failures must not surface as HTTP errors")
	body := decodeBody(t, rec)
	assert.Equal(t, "HIGH", body["severity"])
	assert.Equal(t, 4.0, body["expected_duration_hours"])
	assert.Equal(t, "HIGH", body["cascading_risk"])
	assert.Equal(t, "FALLBACK", body["provenance"])
	assert.Nil(t, body["detail"])
}

func TestWeatherContext_ProviderDown_StandardSubject(t *testing.T) {
	provider := &fakeProvider{err: &domain.LookupError{Kind: domain.LookupTimeout, Err: errors.New("deadline")}}
	srv := newTestServer(t, provider, nil)

	rec := doRequest(srv, http.MethodPost, "/api/context/weather", `{"subject_id":"GOI"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "MEDIUM", body["severity"])
	assert.Equal(t, 2.0, body["expected_duration_hours"])
	assert.Equal(t, "MEDIUM", body["cascading_risk"])
	assert.Equal(t, "FALLBACK", body["provenance"])
}

func TestWeatherContext_EmptySubjectIsValid(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{}, nil)

	rec := doRequest(srv, http.MethodPost, "/api/context/weather", `{"subject_id":""}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FALLBACK", decodeBody(t, rec)["provenance"])
}

func TestWeatherContext_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "not-json{{{"},
		{"missing subject_id", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/api/context/weather", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCostAgent(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := doRequest(srv, http.MethodPost, "/api/agent/cost",
		`{"delay_hours":6,"total_passengers":180,"vip_passengers":4}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, agent.CostAgentName, body["agent"])
	assert.Equal(t, "HOTEL_FOR_ALL", body["recommendation"]) // 6h delay, rule fallback
	assert.NotEmpty(t, body["reason"])
}

func TestCostAgent_Validation(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{"delay_hours":2}`},
		{"negative delay", `{"delay_hours":-1,"total_passengers":100,"vip_passengers":0}`},
		{"vip exceeds total", `{"delay_hours":2,"total_passengers":10,"vip_passengers":11}`},
		{"invalid json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/api/agent/cost", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestComplianceAgent(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := doRequest(srv, http.MethodPost, "/api/agent/compliance", `{"delay_hours":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "HOTEL_MANDATORY", body["rule"])
	assert.Equal(t, 1.0, body["confidence"])

	rec = doRequest(srv, http.MethodPost, "/api/agent/compliance", `{"delay_hours":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HOTEL_NOT_REQUIRED", decodeBody(t, rec)["rule"])
}

func TestComplianceAgent_Validation(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := doRequest(srv, http.MethodPost, "/api/agent/compliance", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/agent/compliance", `{"delay_hours":-2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpsAgent(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := doRequest(srv, http.MethodPost, "/api/agent/ops", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, agent.OpsAgentName, body["agent"])
	assert.Equal(t, 42.0, body["available_seats"])
	assert.Equal(t, "LIMITED", body["hotel_capacity"])
}

func TestCapabilities(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := doRequest(srv, http.MethodGet, "/mcp/capabilities", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "1.0", body["mcp_version"])
	assert.Equal(t, "airline_disruption_context", body["server_name"])

	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "weather_disruption_context", tool["name"])
}

func TestToolInvoke(t *testing.T) {
	provider := &fakeProvider{err: &domain.LookupError{Kind: domain.LookupTransport, Err: errors.New("down")}}
	srv := newTestServer(t, provider, nil)

	rec := doRequest(srv, http.MethodPost, "/mcp/tools/invoke",
		`{"tool":"weather_disruption_context","arguments":{"subject_id":"DEL"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "weather_disruption_context", body["tool"])

	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "HIGH", result["severity"])
	assert.Equal(t, "FALLBACK", result["provenance"])
}

func TestToolInvoke_Errors(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedCode   string
	}{
		{"invalid json", "{", http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing tool", `{"arguments":{"subject_id":"DEL"}}`, http.StatusBadRequest, "MISSING_TOOL"},
		{"unknown tool", `{"tool":"nonexistent"}`, http.StatusNotFound, "UNKNOWN_TOOL"},
		{"missing subject", `{"tool":"weather_disruption_context","arguments":{}}`, http.StatusBadRequest, "INVALID_ARGUMENTS"},
		{"subject wrong length", `{"tool":"weather_disruption_context","arguments":{"subject_id":"DELHI"}}`, http.StatusBadRequest, "INVALID_ARGUMENTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/mcp/tools/invoke", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			var body map[string]mcpErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedCode, body["error"].Code)
		})
	}
}

type mcpErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestAuditRecordsPublished(t *testing.T) {
	audit := &fakeAudit{published: make(chan string, 1)}
	srv := newTestServer(t, nil, audit)

	rec := doRequest(srv, http.MethodPost, "/api/agent/compliance", `{"delay_hours":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case name := <-audit.published:
		assert.Equal(t, agent.ComplianceAgentName, name)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an audit record to be published")
	}
}

// Package http exposes the service's inbound boundary: the context resolution
// endpoint, the agent endpoints, the MCP discovery surface, and the standard
// health/readiness/metrics routes.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/disruption-context-service/internal/agent"
	"github.com/couchcryptid/disruption-context-service/internal/domain"
	"github.com/couchcryptid/disruption-context-service/internal/observability"
)

// auditTimeout bounds background audit publishing so a Kafka outage cannot
// pile up goroutines indefinitely.
const auditTimeout = 5 * time.Second

// AuditPublisher records agent calls. Implementations must be best-effort.
type AuditPublisher interface {
	Publish(ctx context.Context, agentName string, request, response any)
}

// Deps collects the collaborators the server routes requests to.
type Deps struct {
	Resolver *domain.Resolver
	Cost     *agent.CostService
	Ops      agent.OpsConfig
	Audit    AuditPublisher // nil disables audit publishing
	Metrics  *observability.Metrics
}

// Server exposes the service HTTP API.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all service routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/context/weather", s.handleWeatherContext)
	mux.HandleFunc("POST /api/agent/cost", s.handleCostAgent)
	mux.HandleFunc("POST /api/agent/compliance", s.handleComplianceAgent)
	mux.HandleFunc("POST /api/agent/ops", s.handleOpsAgent)
	mux.HandleFunc("GET /mcp/capabilities", s.handleCapabilities)
	mux.HandleFunc("POST /mcp/tools/invoke", s.handleToolInvoke)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "disruption-context-service",
		"version": "1.0",
		"endpoints": map[string]any{
			"rest_apis": map[string]string{
				"weather_context": "/api/context/weather",
				"cost":            "/api/agent/cost",
				"compliance":      "/api/agent/compliance",
				"ops":             "/api/agent/ops",
			},
			"mcp_server": map[string]string{
				"capabilities": "/mcp/capabilities",
				"tool_invoke":  "/mcp/tools/invoke",
			},
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady always reports ready: the service is stateless and serves
// fallback results even when every upstream is down.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// audit publishes a call record in the background, decoupled from the request
// lifecycle so a slow broker never delays a response.
func (s *Server) audit(agentName string, request, response any) {
	if s.deps.Audit == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		s.deps.Audit.Publish(ctx, agentName, request, response)
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/couchcryptid/disruption-context-service/internal/agent"
)

// resolverAuditName labels resolver calls in the audit topic.
const resolverAuditName = "Weather-Context"

type weatherContextRequest struct {
	SubjectID *string `json:"subject_id"`
}

// handleWeatherContext resolves disruption context for a subject. The
// resolver never fails, so every well-formed request gets a 200; only a
// malformed body (or a missing subject_id field) is a client error. An empty
// subject_id is well-formed and resolves via the fallback path.
func (s *Server) handleWeatherContext(w http.ResponseWriter, r *http.Request) {
	var req weatherContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if req.SubjectID == nil {
		writeError(w, http.StatusBadRequest, "subject_id is required")
		return
	}

	result := s.deps.Resolver.Resolve(r.Context(), *req.SubjectID)
	s.deps.Metrics.ContextResolutions.WithLabelValues(string(result.Provenance)).Inc()
	s.audit(resolverAuditName, req, result)
	writeJSON(w, http.StatusOK, result)
}

type costAgentRequest struct {
	DelayHours      *int `json:"delay_hours"`
	TotalPassengers *int `json:"total_passengers"`
	VIPPassengers   *int `json:"vip_passengers"`
}

func (s *Server) handleCostAgent(w http.ResponseWriter, r *http.Request) {
	var req costAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if req.DelayHours == nil || req.TotalPassengers == nil || req.VIPPassengers == nil {
		writeError(w, http.StatusBadRequest, "delay_hours, total_passengers, and vip_passengers are required")
		return
	}
	if *req.DelayHours < 0 || *req.TotalPassengers < 0 || *req.VIPPassengers < 0 {
		writeError(w, http.StatusBadRequest, "fields must be non-negative")
		return
	}
	if *req.VIPPassengers > *req.TotalPassengers {
		writeError(w, http.StatusBadRequest, "vip_passengers cannot exceed total_passengers")
		return
	}

	rec := s.deps.Cost.Recommend(r.Context(), agent.CostRequest{
		DelayHours:      *req.DelayHours,
		TotalPassengers: *req.TotalPassengers,
		VIPPassengers:   *req.VIPPassengers,
	})
	s.audit(agent.CostAgentName, req, rec)
	writeJSON(w, http.StatusOK, rec)
}

type complianceAgentRequest struct {
	DelayHours *int `json:"delay_hours"`
}

func (s *Server) handleComplianceAgent(w http.ResponseWriter, r *http.Request) {
	var req complianceAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if req.DelayHours == nil {
		writeError(w, http.StatusBadRequest, "delay_hours is required")
		return
	}
	if *req.DelayHours < 0 {
		writeError(w, http.StatusBadRequest, "delay_hours must be non-negative")
		return
	}

	ruling := agent.ComplianceRule(*req.DelayHours)
	s.deps.Metrics.AgentRequests.WithLabelValues("compliance", "ok").Inc()
	s.audit(agent.ComplianceAgentName, req, ruling)
	writeJSON(w, http.StatusOK, ruling)
}

// handleOpsAgent takes no request fields; the body is accepted but ignored.
func (s *Server) handleOpsAgent(w http.ResponseWriter, _ *http.Request) {
	snap := agent.OpsSnapshot(s.deps.Ops)
	s.deps.Metrics.AgentRequests.WithLabelValues("ops", "ok").Inc()
	s.audit(agent.OpsAgentName, struct{}{}, snap)
	writeJSON(w, http.StatusOK, snap)
}

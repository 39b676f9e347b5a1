package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// weatherToolName is the single tool this MCP server exposes.
const weatherToolName = "weather_disruption_context"

// mcpError is the MCP-style error envelope.
type mcpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeMCPError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]mcpError{"error": {Code: code, Message: message}})
}

// handleCapabilities serves the MCP capability discovery document: the tools
// this server exposes and their schemas.
func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mcp_version":    "1.0",
		"server_name":    "airline_disruption_context",
		"server_version": "1.0.0",
		"tools": []map[string]any{
			{
				"name":        weatherToolName,
				"description": "Provides weather severity and cascading delay risk for an airport. Returns external weather context to inform disruption decision-making.",
				"input_schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"subject_id": map[string]any{
							"type":        "string",
							"description": "IATA airport code (e.g. 'DEL', 'BOM', 'BLR')",
							"pattern":     "^[A-Z]{3}$",
							"examples":    []string{"DEL", "BOM", "BLR", "MAA"},
						},
					},
					"required": []string{"subject_id"},
				},
				"output_schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"severity": map[string]any{
							"type":        "string",
							"enum":        []string{"LOW", "MEDIUM", "HIGH"},
							"description": "Weather severity level",
						},
						"expected_duration_hours": map[string]any{
							"type":        "number",
							"description": "Expected disruption duration in hours",
						},
						"cascading_risk": map[string]any{
							"type":        "string",
							"enum":        []string{"LOW", "MEDIUM", "HIGH"},
							"description": "Risk of delays cascading to other flights",
						},
						"provenance": map[string]any{
							"type":        "string",
							"enum":        []string{"LIVE", "FALLBACK"},
							"description": "Whether the result came from a live reading or the static fallback table",
						},
						"detail": map[string]any{
							"type":        []string{"object", "null"},
							"description": "Raw provider reading, present when provenance is LIVE",
						},
					},
					"required": []string{"severity", "expected_duration_hours", "cascading_risk", "provenance"},
				},
			},
		},
	})
}

type toolInvokeRequest struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolInvoke routes an MCP tool invocation. Argument validation is a
// boundary concern and fails with 4xx; tool execution itself never fails.
func (s *Server) handleToolInvoke(w http.ResponseWriter, r *http.Request) {
	var req toolInvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMCPError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be valid JSON")
		return
	}
	if req.Tool == "" {
		writeMCPError(w, http.StatusBadRequest, "MISSING_TOOL", "Tool name is required")
		return
	}
	if req.Tool != weatherToolName {
		writeMCPError(w, http.StatusNotFound, "UNKNOWN_TOOL",
			fmt.Sprintf("Tool %q is not available. Use /mcp/capabilities to discover available tools.", req.Tool))
		return
	}

	var args struct {
		SubjectID string `json:"subject_id"`
	}
	if len(req.Arguments) > 0 {
		if err := json.Unmarshal(req.Arguments, &args); err != nil {
			writeMCPError(w, http.StatusBadRequest, "INVALID_ARGUMENTS", "arguments must be an object")
			return
		}
	}
	if args.SubjectID == "" {
		writeMCPError(w, http.StatusBadRequest, "INVALID_ARGUMENTS", "subject_id is required")
		return
	}
	if len(args.SubjectID) != 3 {
		writeMCPError(w, http.StatusBadRequest, "INVALID_ARGUMENTS", "subject_id must be a 3-letter IATA code")
		return
	}

	result := s.deps.Resolver.Resolve(r.Context(), args.SubjectID)
	s.deps.Metrics.ContextResolutions.WithLabelValues(string(result.Provenance)).Inc()
	s.audit(resolverAuditName, req, result)

	writeJSON(w, http.StatusOK, map[string]any{
		"tool":   req.Tool,
		"result": result,
	})
}

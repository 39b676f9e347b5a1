// Package kafka publishes agent call audit records. The service is stateless
// with respect to business data; the audit topic exists for observability
// only, and publishing is strictly best-effort.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/disruption-context-service/internal/config"
	"github.com/couchcryptid/disruption-context-service/internal/observability"
)

// AuditRecord is one logged agent or resolver call.
type AuditRecord struct {
	Agent     string          `json:"agent"`
	Request   json.RawMessage `json:"request"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditWriter produces audit records to the configured Kafka topic.
type AuditWriter struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAuditWriter creates a Kafka producer for the audit topic.
func NewAuditWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *AuditWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &AuditWriter{writer: w, metrics: metrics, logger: logger}
}

// Publish records one agent call. Failures are logged and counted, never
// returned: audit publishing must not affect request handling.
func (w *AuditWriter) Publish(ctx context.Context, agent string, request, response any) {
	msg, err := serializeRecord(agent, request, response, time.Now().UTC())
	if err != nil {
		w.logger.Warn("audit record serialization failed", "agent", agent, "error", err)
		w.metrics.AuditErrors.Inc()
		return
	}

	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.logger.Warn("audit record publish failed", "agent", agent, "error", err)
		w.metrics.AuditErrors.Inc()
		return
	}
	w.metrics.AuditPublished.Inc()
}

func (w *AuditWriter) Close() error {
	return w.writer.Close()
}

// serializeRecord marshals an audit record into a Kafka message keyed by agent
// name, so each agent's records land on a stable partition.
func serializeRecord(agent string, request, response any, at time.Time) (kafkago.Message, error) {
	reqJSON, err := json.Marshal(request)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit request: %w", err)
	}
	respJSON, err := json.Marshal(response)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit response: %w", err)
	}

	record := AuditRecord{
		Agent:     agent,
		Request:   reqJSON,
		Response:  respJSON,
		CreatedAt: at,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit record: %w", err)
	}

	return kafkago.Message{
		Key:   []byte(agent),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "agent", Value: []byte(agent)},
			{Key: "created_at", Value: []byte(at.Format(time.RFC3339))},
		},
	}, nil
}

//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkacontainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/couchcryptid/disruption-context-service/internal/adapter/kafka"
	"github.com/couchcryptid/disruption-context-service/internal/config"
	"github.com/couchcryptid/disruption-context-service/internal/observability"
)

const testAuditTopic = "test-agent-call-audit"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := kafkacontainer.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafkacontainer.WithClusterID("test-cluster"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a topic via the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestAuditPublish verifies that an audit record published through the
// adapter arrives on the audit topic intact.
func TestAuditPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAuditTopic)

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaAuditTopic: testAuditTopic,
	}

	writer := kafkaadapter.NewAuditWriter(cfg, observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	request := map[string]int{"delay_hours": 3}
	response := map[string]any{"rule": "HOTEL_MANDATORY", "confidence": 1.0}
	writer.Publish(ctx, "Compliance-Agent", request, response)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAuditTopic,
		GroupID:     fmt.Sprintf("test-audit-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from audit topic")

	assert.Equal(t, []byte("Compliance-Agent"), msg.Key)

	var record kafkaadapter.AuditRecord
	require.NoError(t, json.Unmarshal(msg.Value, &record))
	assert.Equal(t, "Compliance-Agent", record.Agent)
	assert.JSONEq(t, `{"delay_hours":3}`, string(record.Request))
	assert.JSONEq(t, `{"rule":"HOTEL_MANDATORY","confidence":1}`, string(record.Response))
	assert.WithinDuration(t, time.Now().UTC(), record.CreatedAt, time.Minute)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Compliance-Agent", headers["agent"])
	assert.NotEmpty(t, headers["created_at"])
}

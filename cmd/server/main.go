package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/disruption-context-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/disruption-context-service/internal/adapter/kafka"
	"github.com/couchcryptid/disruption-context-service/internal/adapter/openweather"
	"github.com/couchcryptid/disruption-context-service/internal/agent"
	"github.com/couchcryptid/disruption-context-service/internal/config"
	"github.com/couchcryptid/disruption-context-service/internal/domain"
	"github.com/couchcryptid/disruption-context-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the weather provider (feature-flagged via WEATHER_ENABLED /
	// WEATHER_API_KEY). A nil provider routes every resolution to fallback.
	var provider domain.WeatherProvider
	if cfg.WeatherEnabled {
		provider = openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherTimeout, cfg.Rules.SubjectCities, metrics, logger)
		metrics.WeatherEnabled.Set(1)
		logger.Info("live weather lookups enabled", "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("live weather lookups disabled, fallback rules only")
	}

	rules := domain.NewRuleset(cfg.Rules.ElevatedSubjects, cfg.Rules.HubSubjects)
	resolver := domain.NewResolver(provider, rules, cfg.WeatherTimeout, logger)

	cost, err := agent.NewCostService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, metrics, logger)
	if err != nil {
		logger.Error("failed to initialize cost agent", "error", err)
		os.Exit(1)
	}

	var audit httpadapter.AuditPublisher
	var auditWriter *kafkaadapter.AuditWriter
	if cfg.AuditEnabled {
		auditWriter = kafkaadapter.NewAuditWriter(cfg, metrics, logger)
		audit = auditWriter
		logger.Info("audit publishing enabled", "topic", cfg.KafkaAuditTopic)
	} else {
		logger.Info("audit publishing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Resolver: resolver,
		Cost:     cost,
		Ops:      agent.OpsConfig{AvailableSeats: cfg.OpsAvailableSeats, HotelCapacity: cfg.OpsHotelCapacity},
		Audit:    audit,
		Metrics:  metrics,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if auditWriter != nil {
		if err := auditWriter.Close(); err != nil {
			logger.Error("audit writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

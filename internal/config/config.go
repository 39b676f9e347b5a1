package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather provider configuration.
	WeatherAPIKey  string
	WeatherEnabled bool
	WeatherTimeout time.Duration
	WeatherBaseURL string

	// Static rule tables (elevated/hub subjects, subject→city mapping).
	RulesFile string
	Rules     Rules

	// Gemini cost agent configuration.
	GeminiAPIKey string
	GeminiModel  string

	// Ops feasibility snapshot.
	OpsAvailableSeats int
	OpsHotelCapacity  string

	// Audit trail publishing.
	AuditEnabled    bool
	KafkaBrokers    []string
	KafkaAuditTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	opsSeats, err := parseNonNegativeInt("OPS_AVAILABLE_SEATS", 42)
	if err != nil {
		return nil, err
	}

	weatherKey := os.Getenv("WEATHER_API_KEY")
	weatherEnabled := weatherKey != ""
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	auditEnabled := os.Getenv("AUDIT_ENABLED") == "true"

	rulesFile := os.Getenv("RULES_FILE")
	rules, err := LoadRules(rulesFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherAPIKey:  weatherKey,
		WeatherEnabled: weatherEnabled,
		WeatherTimeout: weatherTimeout,
		WeatherBaseURL: envOrDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),

		RulesFile: rulesFile,
		Rules:     rules,

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),

		OpsAvailableSeats: opsSeats,
		OpsHotelCapacity:  envOrDefault("OPS_HOTEL_CAPACITY", "LIMITED"),

		AuditEnabled:    auditEnabled,
		KafkaBrokers:    parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAuditTopic: envOrDefault("KAFKA_AUDIT_TOPIC", "agent-call-audit"),
	}

	if cfg.WeatherEnabled && cfg.WeatherAPIKey == "" {
		return nil, errors.New("WEATHER_ENABLED is true but WEATHER_API_KEY is not set")
	}
	if cfg.AuditEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("AUDIT_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.AuditEnabled && cfg.KafkaAuditTopic == "" {
		return nil, errors.New("AUDIT_ENABLED is true but KAFKA_AUDIT_TOPIC is empty")
	}

	return cfg, nil
}

// envOrDefault returns the environment variable value, or fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

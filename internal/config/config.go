package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
)

// DefaultFMIURL is the FMI WFS stored query for the latest STUK dose rates.
const DefaultFMIURL = "https://opendata.fmi.fi/wfs/eng?request=GetFeature&storedquery_id=stuk::observations::external-radiation::multipointcoverage"

// Export modes.
const (
	ExportPoll = "poll"
	ExportPull = "pull"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// FMI open data source.
	FMIURL          string
	FMIQueryParams  url.Values
	FMITimeout      time.Duration
	FMIMaxBodyBytes int64

	PollInterval time.Duration
	RetryBackoff time.Duration
	ExportMode   string
	PullCacheTTL time.Duration // pull mode only; 0 fetches on every scrape
	GatingPolicy domain.GatingPolicy

	// Optional Kafka sink.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fmiTimeout, err := parsePositiveDuration("FMI_TIMEOUT", "50s")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	retryBackoff, err := parsePositiveDuration("RETRY_BACKOFF", "5s")
	if err != nil {
		return nil, err
	}

	pullCacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("PULL_CACHE_TTL", "30s"))
	if err != nil || pullCacheTTL < 0 {
		return nil, errors.New("invalid PULL_CACHE_TTL")
	}

	maxBody, err := strconv.ParseInt(sharedcfg.EnvOrDefault("FMI_MAX_BODY_BYTES", "33554432"), 10, 64)
	if err != nil || maxBody <= 0 {
		return nil, errors.New("invalid FMI_MAX_BODY_BYTES")
	}

	queryParams, err := url.ParseQuery(os.Getenv("FMI_QUERY_PARAMS"))
	if err != nil {
		return nil, fmt.Errorf("invalid FMI_QUERY_PARAMS: %w", err)
	}

	policy, err := domain.ParseGatingPolicy(strings.ToLower(os.Getenv("GATING_POLICY")))
	if err != nil {
		return nil, fmt.Errorf("invalid GATING_POLICY: %w", err)
	}

	exportMode := strings.ToLower(sharedcfg.EnvOrDefault("EXPORT_MODE", ExportPoll))
	if exportMode != ExportPoll && exportMode != ExportPull {
		return nil, fmt.Errorf("invalid EXPORT_MODE %q: want %q or %q", exportMode, ExportPoll, ExportPull)
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FMIURL:          sharedcfg.EnvOrDefault("FMI_URL", DefaultFMIURL),
		FMIQueryParams:  queryParams,
		FMITimeout:      fmiTimeout,
		FMIMaxBodyBytes: maxBody,

		PollInterval: pollInterval,
		RetryBackoff: retryBackoff,
		ExportMode:   exportMode,
		PullCacheTTL: pullCacheTTL,
		GatingPolicy: policy,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "dose-rates"),
	}

	if _, err := url.ParseRequestURI(cfg.FMIURL); err != nil {
		return nil, fmt.Errorf("invalid FMI_URL: %w", err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

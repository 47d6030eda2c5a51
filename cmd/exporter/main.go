package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/dose-rate-exporter/internal/adapter/fmi"
	"github.com/couchcryptid/dose-rate-exporter/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/dose-rate-exporter/internal/adapter/kafka"
	"github.com/couchcryptid/dose-rate-exporter/internal/adapter/prom"
	"github.com/couchcryptid/dose-rate-exporter/internal/config"
	"github.com/couchcryptid/dose-rate-exporter/internal/observability"
	"github.com/couchcryptid/dose-rate-exporter/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)

	client, err := fmi.NewClient(cfg.FMIURL, cfg.FMIQueryParams, cfg.FMITimeout, cfg.FMIMaxBodyBytes, metrics, logger)
	if err != nil {
		logger.Error("failed to create FMI client", "error", err)
		os.Exit(1)
	}

	var sinks []pipeline.Sink
	if cfg.ExportMode == config.ExportPoll {
		sinks = append(sinks, prom.NewGaugeSink(registry))
	}

	// Optional Kafka sink (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Scrapes in pull mode share one FMI request per PULL_CACHE_TTL.
	var fetcher pipeline.Fetcher = client
	if cfg.ExportMode == config.ExportPull {
		fetcher = fmi.NewCachedFetcher(client, cfg.PullCacheTTL, nil)
	}

	p := pipeline.New(fetcher, sinks, pipeline.Settings{
		Interval:     cfg.PollInterval,
		RetryBackoff: cfg.RetryBackoff,
		Policy:       cfg.GatingPolicy,
	}, logger, metrics)

	// A pull-mode scrape may wait on an FMI fetch.
	writeTimeout := cfg.FMITimeout + cfg.ShutdownTimeout
	if cfg.ExportMode == config.ExportPull {
		registry.MustRegister(prom.NewCollector(p.RunOnce, cfg.FMITimeout, logger))
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, registry, p, writeTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("dose rate exporter starting", "mode", cfg.ExportMode, "policy", cfg.GatingPolicy, "url", client.URL())

	// Start HTTP server. Failing to bind is fatal.
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	// Start poller.
	if cfg.ExportMode == config.ExportPoll {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("poller error", "error", err)
			}
		}()
	}

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-srvErr:
		logger.Error("http server error", "error", err)
		exitCode = 1
		stop()
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// Command snapshot fetches the latest STUK dose rate dataset once (or reads a
// saved WFS response) and prints it in the text exposition format.
//
// Usage:
//
//	go run ./cmd/snapshot
//	go run ./cmd/snapshot -file internal/domain/testdata/dose_rates.xml -policy permissive
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/dose-rate-exporter/internal/adapter/fmi"
	"github.com/couchcryptid/dose-rate-exporter/internal/adapter/prom"
	"github.com/couchcryptid/dose-rate-exporter/internal/config"
	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
	"github.com/couchcryptid/dose-rate-exporter/internal/observability"
)

func main() {
	if err := run(os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(out io.Writer) error {
	file := flag.String("file", "", "read a saved WFS response instead of fetching")
	url := flag.String("url", config.DefaultFMIURL, "FMI WFS stored query URL")
	policy := flag.String("policy", string(domain.GatingStrict), "timestamp gating policy: strict or permissive")
	timeout := flag.Duration("timeout", 50*time.Second, "request timeout")
	flag.Parse()

	gating, err := domain.ParseGatingPolicy(*policy)
	if err != nil {
		return err
	}

	raw, err := load(*file, *url, *timeout)
	if err != nil {
		return err
	}

	snap, err := domain.Ingest(raw, domain.IngestOptions{Policy: gating})
	if err != nil {
		return fmt.Errorf("ingest dataset (%s): %w", domain.Outcome(err), err)
	}

	if err := prom.WriteText(out, snap.Measurements); err != nil {
		return fmt.Errorf("write measurements: %w", err)
	}
	log.Printf("%d measurements at %s (dropped: %d NaN, %d off-time)",
		len(snap.Measurements), snap.DatasetTime.Format(time.RFC3339), snap.Filtered.NaN, snap.Filtered.Timestamp)
	return nil
}

func load(file, url string, timeout time.Duration) ([]byte, error) {
	if file != "" {
		return os.ReadFile(file)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client, err := fmi.NewClient(url, nil, timeout, 32<<20, observability.NewMetrics(prometheus.NewRegistry()), logger)
	if err != nil {
		return nil, err
	}
	return client.Fetch(context.Background())
}

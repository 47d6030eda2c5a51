package prom

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
)

// SnapshotFunc produces a fresh snapshot, typically pipeline.RunOnce.
type SnapshotFunc func(ctx context.Context) (domain.Snapshot, error)

// Collector fetches and ingests a dataset on every scrape. A failed cycle
// exposes the measurements of the last successful one, if any.
type Collector struct {
	snapshot SnapshotFunc
	timeout  time.Duration
	logger   *slog.Logger
	desc     *prometheus.Desc

	mu   sync.Mutex
	last []domain.Measurement
}

// NewCollector creates a scrape-time collector. timeout bounds one scrape.
func NewCollector(fn SnapshotFunc, timeout time.Duration, logger *slog.Logger) *Collector {
	return &Collector{
		snapshot: fn,
		timeout:  timeout,
		logger:   logger,
		desc: prometheus.NewDesc(
			MetricName,
			"External dose rate in microsieverts per hour.",
			labelNames, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	for _, m := range c.measurements(ctx) {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, m.Value, m.Site, m.Latitude, m.Longitude)
	}
}

// measurements runs one cycle and returns the series to expose, falling back
// to the last successful cycle when this one fails.
func (c *Collector) measurements(ctx context.Context) []domain.Measurement {
	snap, err := c.snapshot(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// The pipeline already counted and logged the failure.
		c.logger.Debug("scrape failed, exposing previous dose rates",
			"outcome", domain.Outcome(err), "series", len(c.last))
		return c.last
	}
	c.last = dedupe(snap.Measurements)
	return c.last
}

// dedupe drops repeated label sets, keeping the first. The registry rejects
// a scrape that contains duplicate series, which the permissive gating
// policy can produce.
func dedupe(ms []domain.Measurement) []domain.Measurement {
	seen := make(map[[3]string]struct{}, len(ms))
	out := ms[:0:0]
	for _, m := range ms {
		key := [3]string{m.Site, m.Latitude, m.Longitude}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

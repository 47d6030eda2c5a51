package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
	"github.com/couchcryptid/dose-rate-exporter/internal/observability"
)

// Fetcher downloads one raw WFS dataset.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Sink receives every successfully ingested snapshot.
type Sink interface {
	Name() string
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Settings tunes the polling loop.
type Settings struct {
	Interval     time.Duration
	RetryBackoff time.Duration
	Policy       domain.GatingPolicy
	Clock        clockwork.Clock // nil means the real clock
}

// Pipeline orchestrates the fetch-ingest-publish cycle.
type Pipeline struct {
	fetcher  Fetcher
	sinks    []Sink
	settings Settings
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool

	// Last successfully ingested payload, keyed by its xxhash digest.
	lastMu     sync.Mutex
	lastDigest uint64
	lastSnap   *domain.Snapshot
}

// New creates a Pipeline with the given source, sinks and observability.
func New(f Fetcher, sinks []Sink, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	clock := settings.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		fetcher:  f,
		sinks:    sinks,
		settings: settings,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a cycle has succeeded, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no dataset has been ingested yet")
	}
	return nil
}

// Run executes one cycle immediately and then one per interval until the
// context is cancelled. Failed cycles never stop the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.settings.Interval, "policy", p.settings.Policy)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	// Download failures are retried sooner than the poll interval: start at
	// RetryBackoff, double each retry, cap at the interval.
	backoff := p.settings.RetryBackoff

	for {
		_, err := p.RunOnce(ctx)
		if ctx.Err() != nil {
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		}

		wait := p.settings.Interval
		if errors.Is(err, domain.ErrDownload) && backoff < wait {
			wait = backoff
			backoff = nextBackoff(backoff, p.settings.Interval)
		} else {
			backoff = p.settings.RetryBackoff
		}

		if !sleepWithContext(ctx, p.clock, wait) {
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce fetches and ingests one dataset and publishes it to every sink.
// Errors are classified, counted and logged before being returned; sink
// failures are logged and counted but do not fail the cycle.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.Snapshot, error) {
	start := p.clock.Now()

	snap, err := p.fetchAndIngest(ctx)
	outcome := domain.Outcome(err)
	if err != nil {
		// A cycle interrupted by shutdown is neither counted nor logged.
		if errors.Is(ctx.Err(), context.Canceled) {
			return domain.Snapshot{}, err
		}
		p.metrics.Cycles.WithLabelValues(outcome).Inc()
		p.logger.Warn("cycle failed, keeping previous snapshot", "outcome", outcome, "error", err)
		return domain.Snapshot{}, err
	}
	p.metrics.Cycles.WithLabelValues(outcome).Inc()

	snap.ID = uuid.NewString()
	snap.FetchedAt = start.UTC()
	p.metrics.MeasurementsEmitted.Add(float64(len(snap.Measurements)))
	p.metrics.MeasurementsFiltered.WithLabelValues("nan").Add(float64(snap.Filtered.NaN))
	p.metrics.MeasurementsFiltered.WithLabelValues("timestamp").Add(float64(snap.Filtered.Timestamp))

	p.publish(ctx, snap)

	p.ready.Store(true)
	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	p.metrics.CycleDuration.Observe(p.clock.Since(start).Seconds())

	p.logger.Info("cycle complete",
		"snapshot_id", snap.ID,
		"measurements", len(snap.Measurements),
		"dataset_time", snap.DatasetTime,
		"filtered_nan", snap.Filtered.NaN,
		"filtered_timestamp", snap.Filtered.Timestamp,
	)
	return snap, nil
}

func (p *Pipeline) fetchAndIngest(ctx context.Context) (domain.Snapshot, error) {
	raw, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	digest := xxhash.Sum64(raw)
	if snap, ok := p.previous(digest); ok {
		p.metrics.DatasetsUnchanged.Inc()
		p.logger.Debug("dataset unchanged, reusing previous ingestion", "digest", digest)
		return snap, nil
	}

	snap, err := domain.Ingest(raw, domain.IngestOptions{Policy: p.settings.Policy})
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.remember(digest, snap)
	return snap, nil
}

// previous returns the snapshot ingested from an identical payload, if any.
// Ingest is deterministic, so reusing it yields the same measurements.
func (p *Pipeline) previous(digest uint64) (domain.Snapshot, bool) {
	p.lastMu.Lock()
	defer p.lastMu.Unlock()
	if p.lastSnap == nil || p.lastDigest != digest {
		return domain.Snapshot{}, false
	}
	return *p.lastSnap, true
}

func (p *Pipeline) remember(digest uint64, snap domain.Snapshot) {
	p.lastMu.Lock()
	defer p.lastMu.Unlock()
	p.lastDigest = digest
	p.lastSnap = &snap
}

func (p *Pipeline) publish(ctx context.Context, snap domain.Snapshot) {
	for _, s := range p.sinks {
		if err := s.Publish(ctx, snap); err != nil {
			p.logger.Error("publish snapshot failed", "sink", s.Name(), "error", err)
			p.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
		}
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

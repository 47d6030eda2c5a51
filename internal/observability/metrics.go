package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "dose_exporter"

// Metrics holds the Prometheus counters, histograms, and gauges describing the
// exporter itself. Dose rate values are exposed by the prom adapter.
type Metrics struct {
	Cycles               *prometheus.CounterVec // labels: outcome
	MeasurementsEmitted  prometheus.Counter
	MeasurementsFiltered *prometheus.CounterVec // labels: reason={nan,timestamp}
	SinkErrors           *prometheus.CounterVec // labels: sink
	DatasetsUnchanged    prometheus.Counter
	PollerRunning        prometheus.Gauge
	LastSuccess          prometheus.Gauge

	FetchDuration prometheus.Histogram
	CycleDuration prometheus.Histogram
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics creates the exporter metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Fetch and ingest cycles by outcome.",
		}, []string{"outcome"}),
		MeasurementsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_emitted_total",
			Help:      "Total dose rate measurements produced by successful cycles.",
		}),
		MeasurementsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_filtered_total",
			Help:      "Readings dropped during correlation by reason.",
		}, []string{"reason"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Snapshot publish failures by sink.",
		}, []string{"sink"}),
		DatasetsUnchanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_unchanged_total",
			Help:      "Downloads identical to the previously ingested dataset.",
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poller_running",
			Help:      "1 when the polling loop is active, 0 when shut down.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the FMI WFS request.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch, ingest and publish cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		}),
	}

	reg.MustRegister(
		m.Cycles,
		m.MeasurementsEmitted,
		m.MeasurementsFiltered,
		m.SinkErrors,
		m.DatasetsUnchanged,
		m.PollerRunning,
		m.LastSuccess,
		m.FetchDuration,
		m.CycleDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics on a throwaway registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

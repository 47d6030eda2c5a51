package prom

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
)

// MetricName is the exposed dose rate metric.
const MetricName = "dose_rate"

var labelNames = []string{"site", "lat", "lon"}

// GaugeSink keeps the latest dose rate per station in a labeled gauge.
// Values stay exposed until a later snapshot overwrites them, so a failed
// cycle leaves the previous readings visible. It implements pipeline.Sink.
type GaugeSink struct {
	rates       *prometheus.GaugeVec
	datasetTime prometheus.Gauge
}

// NewGaugeSink creates the dose rate gauges and registers them with reg.
func NewGaugeSink(reg prometheus.Registerer) *GaugeSink {
	s := &GaugeSink{
		rates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricName,
			Help: "External dose rate in microsieverts per hour.",
		}, labelNames),
		datasetTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dose_rate_dataset_timestamp_seconds",
			Help: "Observation time of the exposed dose rate snapshot.",
		}),
	}
	reg.MustRegister(s.rates, s.datasetTime)
	return s
}

func (s *GaugeSink) Name() string { return "gauge" }

// Publish sets one gauge per measurement.
func (s *GaugeSink) Publish(_ context.Context, snap domain.Snapshot) error {
	for _, m := range snap.Measurements {
		s.rates.WithLabelValues(m.Site, m.Latitude, m.Longitude).Set(m.Value)
	}
	if !snap.DatasetTime.IsZero() {
		s.datasetTime.Set(float64(snap.DatasetTime.Unix()))
	}
	return nil
}

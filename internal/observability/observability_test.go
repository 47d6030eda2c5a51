package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("cycle complete", "measurements", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "cycle complete", entry["msg"])
	assert.InDelta(t, 3, entry["measurements"], 0)
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "TEXT")

	logger.Debug("fetching dataset")
	assert.Contains(t, buf.String(), "msg=\"fetching dataset\"")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics(reg)

	m.Cycles.WithLabelValues("ok").Inc()
	m.MeasurementsEmitted.Add(3)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Cycles.WithLabelValues("ok")), 0)

	n, err := testutil.GatherAndCount(reg, "dose_exporter_cycles_total", "dose_exporter_measurements_emitted_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := testutil.GatherAndCount(reg, "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

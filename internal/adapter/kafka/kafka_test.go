package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dose-rate-exporter/internal/config"
	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	ts := time.Date(2023, time.November, 14, 22, 20, 0, 0, time.UTC)
	m := domain.Measurement{
		Site:      "Helsinki Kumpula",
		Latitude:  "60.20307",
		Longitude: "24.96131",
		Value:     0.098,
		StationID: "101004",
		Time:      ts,
	}

	msg, err := serializeToMessage(m, domain.Snapshot{ID: "9f1c2d3e-0000-4000-8000-000000000001", DatasetTime: ts})
	require.NoError(t, err)

	assert.Equal(t, []byte("101004"), msg.Key)
	assert.JSONEq(t, `{"site":"Helsinki Kumpula","lat":"60.20307","lon":"24.96131","value":0.098,"station_id":"101004","time":"2023-11-14T22:20:00Z"}`, string(msg.Value))
	assert.Equal(t, ts, msg.Time)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "site", msg.Headers[0].Key)
	assert.Equal(t, []byte("Helsinki Kumpula"), msg.Headers[0].Value)
	assert.Equal(t, "snapshot_id", msg.Headers[1].Key)
	assert.Equal(t, []byte("9f1c2d3e-0000-4000-8000-000000000001"), msg.Headers[1].Value)
	assert.Equal(t, "dataset_time", msg.Headers[2].Key)
	assert.Equal(t, []byte("2023-11-14T22:20:00Z"), msg.Headers[2].Value)
}

func TestSerializeToMessage_KeyFallsBackToCoordinates(t *testing.T) {
	msg, err := serializeToMessage(domain.Measurement{Latitude: "60.17", Longitude: "24.94"}, domain.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, []byte("60.17 24.94"), msg.Key)
}

func TestWriter_PublishEmptySnapshotIsNoop(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaTopic: "dose-rates"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "kafka", w.Name())
	require.NoError(t, w.Publish(context.Background(), domain.Snapshot{}))
}

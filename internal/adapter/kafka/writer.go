package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dose-rate-exporter/internal/config"
	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
)

// Writer produces dose rate measurements to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Publish writes one message per measurement of the snapshot in a single
// WriteMessages call. Messages are keyed by station so a station's readings
// stay on one partition.
func (w *Writer) Publish(ctx context.Context, snap domain.Snapshot) error {
	if len(snap.Measurements) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snap.Measurements))
	for i := range snap.Measurements {
		msg, err := serializeToMessage(snap.Measurements[i], snap)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d measurements: %w", len(msgs), err)
	}
	w.logger.Debug("measurements published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Measurement into a Kafka message. Headers
// identify the snapshot it belongs to.
func serializeToMessage(m domain.Measurement, snap domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize measurement: %w", err)
	}
	key := m.StationID
	if key == "" {
		key = m.Latitude + " " + m.Longitude
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Time:  m.Time,
		Headers: []kafkago.Header{
			{Key: "site", Value: []byte(m.Site)},
			{Key: "snapshot_id", Value: []byte(snap.ID)},
			{Key: "dataset_time", Value: []byte(snap.DatasetTime.UTC().Format(time.RFC3339))},
		},
	}, nil
}

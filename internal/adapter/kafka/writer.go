package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climatology-service/internal/config"
	"github.com/couchcryptid/climatology-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces report envelopes to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes envelopes in a single WriteMessages
// call. Envelopes are keyed by request id so replies for one request land on
// one partition.
func (w *Writer) LoadBatch(ctx context.Context, envelopes []domain.ReportEnvelope) error {
	if len(envelopes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(envelopes))
	for i := range envelopes {
		msg, err := serializeToMessage(envelopes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d envelopes: %w", len(msgs), err)
	}
	w.logger.Debug("envelopes written", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ReportEnvelope into a Kafka message.
func serializeToMessage(env domain.ReportEnvelope) (kafkago.Message, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report envelope: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "status", Value: []byte(env.Status)},
		{Key: "generated_at", Value: []byte(env.GeneratedAt.Format(time.RFC3339))},
	}
	if env.Error != nil {
		headers = append(headers, kafkago.Header{Key: "error_kind", Value: []byte(env.Error.Kind)})
	}
	return kafkago.Message{
		Key:     []byte(env.RequestID),
		Value:   data,
		Headers: headers,
	}, nil
}

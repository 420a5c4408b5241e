//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/climatology-service/internal/adapter/kafka"
	"github.com/couchcryptid/climatology-service/internal/config"
	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/couchcryptid/climatology-service/internal/observability"
	"github.com/couchcryptid/climatology-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-requests"
	testSinkTopic   = "test-reports"
)

// publishedEnvelope holds a deserialized message read from the report topic.
type publishedEnvelope struct {
	Envelope domain.ReportEnvelope
	Key      string
	Headers  map[string]string
}

func readEnvelope(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEnvelope {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var env domain.ReportEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env), "unmarshal report message")

	return publishedEnvelope{Envelope: env, Key: string(msg.Key), Headers: headers}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaEnabled:       true,
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: time.Second,
	}
}

// TestPipelineEndToEnd publishes requests to the request topic, runs the
// pipeline against a real broker and checks the envelopes on the report topic.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-pipeline")
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("req-ok"), Value: []byte(`{"lat":40.7,"lon":-74,"month":7,"day":15}`)},
		kafkago.Message{Key: []byte("req-bad-date"), Value: []byte(`{"lat":40.7,"lon":-74,"month":2,"day":30}`)},
		kafkago.Message{Key: []byte("poison"), Value: []byte(`not json`)},
	))

	metrics := observability.NewMetricsForTesting()
	provider := &syntheticProvider{}
	analyzer := pipeline.NewAnalyzer(nil, provider, domain.DefaultPolicy(), 30, discardLogger(), metrics)

	reader := kafka.NewReader(cfg, discardLogger())
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() {
		_ = reader.Close()
		_ = writer.Close()
	})

	p := pipeline.New(reader, pipeline.NewTransformer(analyzer), writer, discardLogger(), metrics, 10)
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- p.Run(runCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := map[string]publishedEnvelope{}
	for len(got) < 2 {
		pe := readEnvelope(ctx, t, consumer)
		got[pe.Key] = pe
	}
	stop()
	require.NoError(t, <-done)

	ok := got["req-ok"]
	assert.Equal(t, domain.StatusOK, ok.Headers["status"])
	_, err := time.Parse(time.RFC3339, ok.Headers["generated_at"])
	require.NoError(t, err, "generated_at should be valid RFC3339")
	require.NotNil(t, ok.Envelope.Report)
	assert.Equal(t, 30, ok.Envelope.Report.YearsAnalyzed)
	assert.NotEmpty(t, ok.Envelope.Report.Summaries)

	bad := got["req-bad-date"]
	assert.Equal(t, domain.StatusError, bad.Headers["status"])
	assert.Equal(t, domain.KindInvalidInput, bad.Headers["error_kind"])
	require.NotNil(t, bad.Envelope.Error)
	assert.Nil(t, bad.Envelope.Report)

	assert.NotContains(t, got, "poison", "undecodable messages are skipped")
	assert.Equal(t, int32(1), provider.calls.Load(), "invalid requests never reach the provider")
	require.NoError(t, p.CheckReadiness(ctx))
}

// TestKafkaReaderWriter round-trips one envelope through the adapters.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-reader")
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	payload := []byte(`{"id":"req-7","query":"Paris","month":3,"day":1}`)
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Key: []byte("test-key"), Value: payload}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for len(batch) == 0 {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from request topic")
		}
	}
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	require.NotNil(t, raw.Commit)
	require.NoError(t, raw.Commit(ctx))

	req, err := domain.ParseRawEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "req-7", req.ID)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	env := domain.NewErrorEnvelope(req, fmt.Errorf("resolve %q: %w", req.Query, domain.ErrLocationNotFound))
	require.NoError(t, writer.LoadBatch(ctx, []domain.ReportEnvelope{env}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	pe := readEnvelope(ctx, t, consumer)
	assert.Equal(t, "req-7", pe.Key)
	assert.Equal(t, domain.KindNotFound, pe.Headers["error_kind"])
	assert.Equal(t, "req-7", pe.Envelope.RequestID)
}

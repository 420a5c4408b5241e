//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/climatology-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// syntheticProvider serves a deterministic mid-latitude climate for any
// location and year range.
type syntheticProvider struct {
	calls atomic.Int32
}

func (p *syntheticProvider) FetchSeries(_ context.Context, loc domain.Location, startYear, endYear int) (domain.RawSeries, error) {
	p.calls.Add(1)
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	var recs []domain.RawRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		phase := 2 * math.Pi * float64(d.YearDay()-196) / 365
		t := 12 + 14*math.Cos(phase)
		recs = append(recs, domain.RawRecord{Date: d, Values: map[domain.Variable]float64{
			domain.Temperature:    t,
			domain.TemperatureMax: t + 6,
			domain.TemperatureMin: t - 6,
			domain.Precipitation:  float64(d.YearDay() % 5),
			domain.WindSpeed:      3 + float64(d.Day()%5),
		}})
	}
	return domain.RawSeries{Location: loc, Records: recs, MissingSentinel: domain.DefaultMissingSentinel}, nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climatology-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/climatology-service/internal/adapter/kafka"
	"github.com/couchcryptid/climatology-service/internal/adapter/nominatim"
	"github.com/couchcryptid/climatology-service/internal/adapter/power"
	"github.com/couchcryptid/climatology-service/internal/config"
	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/couchcryptid/climatology-service/internal/observability"
	"github.com/couchcryptid/climatology-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// alwaysReady is the readiness checker when no Kafka consumer runs.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	// Place search is feature-flagged via GEOCODER_ENABLED.
	var resolver domain.LocationResolver
	if cfg.GeocoderEnabled {
		client := nominatim.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, cfg.GeocoderRPS, metrics, logger)
		cached, err := nominatim.NewCachedResolver(client, cfg.GeocoderCacheSize, metrics)
		if err != nil {
			return err
		}
		resolver = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("place search enabled", "cache_size", cfg.GeocoderCacheSize, "rps", cfg.GeocoderRPS)
	} else {
		logger.Info("place search disabled, requests must carry coordinates")
	}

	client := power.NewClient(cfg.PowerBaseURL, cfg.PowerTimeout, cfg.PowerMaxElapsed, metrics, logger)
	provider, err := power.NewCachedProvider(client, cfg.SeriesCacheSize, metrics)
	if err != nil {
		return err
	}

	analyzer := pipeline.NewAnalyzer(resolver, provider, cfg.Policy, cfg.HistoryYears, logger, metrics)
	logger.Info("engine policy loaded",
		"policy_file", cfg.PolicyFile,
		"tolerance_days", cfg.Policy.ToleranceDays,
		"history_years", cfg.HistoryYears,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	var ready sharedobs.ReadinessChecker = alwaysReady{}
	if cfg.KafkaEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(analyzer), writer, logger, metrics, cfg.BatchSize)
		ready = p

		g.Go(func() error {
			err := p.Run(ctx)
			if cerr := reader.Close(); cerr != nil {
				logger.Error("kafka reader close error", "error", cerr)
			}
			if cerr := writer.Close(); cerr != nil {
				logger.Error("kafka writer close error", "error", cerr)
			}
			return err
		})
	} else {
		logger.Info("kafka consumer disabled, serving HTTP only")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, analyzer, metrics, logger, cfg.PowerTimeout+cfg.PowerMaxElapsed)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/climatology-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// NASA POWER historical data provider.
	PowerBaseURL    string
	PowerTimeout    time.Duration
	PowerMaxElapsed time.Duration
	HistoryYears    int
	SeriesCacheSize int

	// Nominatim free-text location search.
	GeocoderEnabled   bool
	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	GeocoderRPS       float64
	GeocoderCacheSize int

	PolicyFile string
	Policy     domain.Policy
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	powerTimeout, err := parsePositiveDuration("POWER_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	powerMaxElapsed, err := parsePositiveDuration("POWER_MAX_ELAPSED", "2m")
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := parsePositiveDuration("GEOCODER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	historyYears, err := parsePositiveInt("HISTORY_YEARS", 30)
	if err != nil {
		return nil, err
	}
	seriesCacheSize, err := parsePositiveInt("SERIES_CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}
	geocoderCacheSize, err := parsePositiveInt("GEOCODER_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("GEOCODER_RPS", "1"), 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("invalid GEOCODER_RPS")
	}

	policyFile := os.Getenv("POLICY_FILE")
	policy, err := LoadPolicy(policyFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaEnabled:       sharedcfg.EnvOrDefault("KAFKA_ENABLED", "true") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "climatology-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "climatology-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climatology-service"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		PowerBaseURL:    sharedcfg.EnvOrDefault("POWER_BASE_URL", "https://power.larc.nasa.gov/api/temporal/daily/point"),
		PowerTimeout:    powerTimeout,
		PowerMaxElapsed: powerMaxElapsed,
		HistoryYears:    historyYears,
		SeriesCacheSize: seriesCacheSize,

		GeocoderEnabled:   sharedcfg.EnvOrDefault("GEOCODER_ENABLED", "true") == "true",
		GeocoderBaseURL:   sharedcfg.EnvOrDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderUserAgent: sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", "climatology-service/1.0"),
		GeocoderTimeout:   geocoderTimeout,
		GeocoderRPS:       rps,
		GeocoderCacheSize: geocoderCacheSize,

		PolicyFile: policyFile,
		Policy:     policy,
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.HistoryYears < cfg.Policy.MinSpanYears {
		return nil, fmt.Errorf("HISTORY_YEARS %d is below the policy minimum span of %d years", cfg.HistoryYears, cfg.Policy.MinSpanYears)
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

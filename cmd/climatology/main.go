// Command climatology analyzes the historical weather of one place and
// calendar day from the terminal.
//
// Usage:
//
//	climatology analyze --lat 48.8566 --lon 2.3522 --month 7 --day 14
//	climatology analyze --query "Kyoto, Japan" --month 4 --day 1 --format xlsx --output kyoto.xlsx
//	climatology analyze --lat 40.7 --lon -74 --month 1 --day 15 --power-file history.json
//	climatology policy --policy-file policy.yaml
package main

import (
	"github.com/alecthomas/kong"
	"github.com/couchcryptid/climatology-service/internal/adapter/nominatim"
	"github.com/couchcryptid/climatology-service/internal/adapter/power"
	"github.com/couchcryptid/climatology-service/internal/observability"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

type cli struct {
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"warn" env:"LOG_LEVEL"`
	LogFormat string `help:"Log format (text or json)." default:"text" env:"LOG_FORMAT"`

	Analyze analyzeCmd `cmd:"" help:"Analyze the climatology of a place on a calendar day."`
	Policy  policyCmd  `cmd:"" help:"Print the effective engine policy as YAML."`
}

func main() {
	_ = godotenv.Load()

	var c cli
	ctx := kong.Parse(&c,
		kong.Name("climatology"),
		kong.Description("Historical weather outlook for any place and calendar day."),
		kong.UsageOnError(),
		kong.Vars{
			"power_url":    power.DefaultBaseURL,
			"geocoder_url": nominatim.DefaultBaseURL,
		},
	)
	logger := observability.NewLoggerTo(ctx.Stderr, observability.LogConfig{Level: c.LogLevel, Format: c.LogFormat})
	ctx.FatalIfErrorf(ctx.Run(&runContext{
		logger:  logger,
		metrics: observability.NewMetricsWith(prometheus.NewRegistry()),
		stdout:  ctx.Stdout,
	}))
}

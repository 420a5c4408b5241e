package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/climatology-service/internal/adapter/nominatim"
	"github.com/couchcryptid/climatology-service/internal/adapter/power"
	"github.com/couchcryptid/climatology-service/internal/config"
	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/couchcryptid/climatology-service/internal/export"
	"github.com/couchcryptid/climatology-service/internal/observability"
	"github.com/couchcryptid/climatology-service/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// runContext carries the dependencies shared by all commands.
type runContext struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	stdout  io.Writer
}

type analyzeCmd struct {
	Query     string   `help:"Place name to search for." short:"q"`
	Lat       *float64 `help:"Latitude in decimal degrees."`
	Lon       *float64 `help:"Longitude in decimal degrees."`
	Month     int      `help:"Target month (1-12)." required:""`
	Day       int      `help:"Target day of month." required:""`
	Tolerance *int     `help:"Window half-width in days (default from policy)."`

	Format     string `help:"Output format: json, csv, xlsx or history." default:"json" enum:"json,csv,xlsx,history"`
	Output     string `help:"Write to this file instead of stdout." short:"o" type:"path"`
	PolicyFile string `help:"YAML engine policy overlay." type:"existingfile" env:"POLICY_FILE"`
	PowerFile  string `help:"Read history from a saved NASA POWER JSON response instead of the API." type:"existingfile"`

	Years       int           `help:"Years of history to request." default:"30" env:"HISTORY_YEARS"`
	PowerURL    string        `help:"NASA POWER daily point endpoint." default:"${power_url}" env:"POWER_BASE_URL"`
	Timeout     time.Duration `help:"Overall deadline for the analysis." default:"3m"`
	GeocoderURL string        `help:"Nominatim search endpoint." default:"${geocoder_url}" env:"GEOCODER_BASE_URL"`
	UserAgent   string        `help:"User-Agent sent to Nominatim." default:"climatology-cli/1.0" env:"GEOCODER_USER_AGENT"`
}

func (c *analyzeCmd) Run(rc *runContext) error {
	policy, err := config.LoadPolicy(c.PolicyFile)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	var provider domain.SeriesProvider
	if c.PowerFile != "" {
		provider = fileProvider{path: c.PowerFile}
	} else {
		provider = power.NewClient(c.PowerURL, c.Timeout, c.Timeout, rc.metrics, rc.logger)
	}
	var resolver domain.LocationResolver
	if c.Query != "" && c.Lat == nil {
		resolver = nominatim.NewClient(c.GeocoderURL, c.UserAgent, 30*time.Second, 1, rc.metrics, rc.logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	analyzer := pipeline.NewAnalyzer(resolver, provider, policy, c.Years, rc.logger, rc.metrics)
	env := analyzer.Envelope(ctx, domain.AnalysisRequest{
		Query:         c.Query,
		Lat:           c.Lat,
		Lon:           c.Lon,
		Month:         c.Month,
		Day:           c.Day,
		ToleranceDays: c.Tolerance,
	})
	if env.Error != nil && format != export.FormatJSON {
		return fmt.Errorf("%s: %s", env.Error.Kind, env.Error.Message)
	}

	w := rc.stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, format, env); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if env.Error != nil {
		return fmt.Errorf("%s: %s", env.Error.Kind, env.Error.Message)
	}
	return nil
}

// fileProvider serves a series decoded from a saved POWER response. The
// requested year range is ignored; the file's full history is used.
type fileProvider struct {
	path string
}

func (p fileProvider) FetchSeries(_ context.Context, loc domain.Location, _, _ int) (domain.RawSeries, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return domain.RawSeries{}, err
	}
	defer f.Close()
	return power.DecodeSeries(f, loc)
}

type policyCmd struct {
	PolicyFile string `help:"YAML engine policy overlay." type:"existingfile" env:"POLICY_FILE"`
}

func (c *policyCmd) Run(rc *runContext) error {
	p, err := config.LoadPolicy(c.PolicyFile)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(rc.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

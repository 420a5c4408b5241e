package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// policyEnvPrefix namespaces engine overrides, e.g. CLIMATOLOGY_TOLERANCE_DAYS.
const policyEnvPrefix = "CLIMATOLOGY"

// policyOverrides are the scalar and list policy fields settable from the
// environment. Unset variables leave the field nil.
type policyOverrides struct {
	ToleranceDays          *int      `envconfig:"TOLERANCE_DAYS"`
	MaxToleranceDays       *int      `envconfig:"MAX_TOLERANCE_DAYS"`
	MinSpanYears           *int      `envconfig:"MIN_SPAN_YEARS"`
	MinWindowSample        *int      `envconfig:"MIN_WINDOW_SAMPLE"`
	MinTrendYears          *int      `envconfig:"MIN_TREND_YEARS"`
	TrendStabilityFraction *float64  `envconfig:"TREND_STABILITY_FRACTION"`
	Percentiles            []float64 `envconfig:"PERCENTILES"`
	SeverityCuts           []float64 `envconfig:"SEVERITY_CUTS"`
}

// LoadPolicy builds the engine policy: defaults, then the YAML file at path
// (skipped when path is empty), then CLIMATOLOGY_* environment overrides. The
// result is validated.
func LoadPolicy(path string) (domain.Policy, error) {
	p := domain.DefaultPolicy()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return domain.Policy{}, fmt.Errorf("open policy file: %w", err)
		}
		defer f.Close()
		if p, err = decodePolicy(f, p); err != nil {
			return domain.Policy{}, fmt.Errorf("policy file %s: %w", path, err)
		}
	}

	var o policyOverrides
	if err := envconfig.Process(policyEnvPrefix, &o); err != nil {
		return domain.Policy{}, fmt.Errorf("policy environment: %w", err)
	}
	p = o.apply(p)

	if err := p.Validate(); err != nil {
		return domain.Policy{}, fmt.Errorf("policy: %w", err)
	}
	return p, nil
}

// decodePolicy overlays YAML onto base. Keys absent from the document keep
// their base values; list keys replace the whole list.
func decodePolicy(r io.Reader, base domain.Policy) (domain.Policy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Policy{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return base, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&base); err != nil && !errors.Is(err, io.EOF) {
		return domain.Policy{}, err
	}
	return base, nil
}

func (o policyOverrides) apply(p domain.Policy) domain.Policy {
	if o.ToleranceDays != nil {
		p.ToleranceDays = *o.ToleranceDays
	}
	if o.MaxToleranceDays != nil {
		p.MaxToleranceDays = *o.MaxToleranceDays
	}
	if o.MinSpanYears != nil {
		p.MinSpanYears = *o.MinSpanYears
	}
	if o.MinWindowSample != nil {
		p.MinWindowSample = *o.MinWindowSample
	}
	if o.MinTrendYears != nil {
		p.MinTrendYears = *o.MinTrendYears
	}
	if o.TrendStabilityFraction != nil {
		p.TrendStabilityFraction = *o.TrendStabilityFraction
	}
	if len(o.Percentiles) > 0 {
		p.Percentiles = o.Percentiles
	}
	if len(o.SeverityCuts) > 0 {
		p.SeverityCuts = o.SeverityCuts
	}
	return p
}

package domain

import (
	"fmt"
)

// Direction tells which side of a threshold counts as an exceedance.
type Direction string

const (
	Above Direction = "above"
	Below Direction = "below"
)

// Threshold is a named exceedance definition for one variable.
type Threshold struct {
	Name      string    `json:"name" yaml:"name"`
	Variable  Variable  `json:"variable" yaml:"variable"`
	Value     float64   `json:"value" yaml:"value"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// RiskRule binds an extreme-event type to the exceedance statistic that
// measures it.
type RiskRule struct {
	Event     string   `json:"event" yaml:"event"`
	Variable  Variable `json:"variable" yaml:"variable"`
	Threshold string   `json:"threshold" yaml:"threshold"`
}

// Policy is the complete engine configuration. It is passed explicitly to
// every stage; the engine holds no global settings.
type Policy struct {
	ToleranceDays          int         `json:"tolerance_days" yaml:"tolerance_days"`
	MaxToleranceDays       int         `json:"max_tolerance_days" yaml:"max_tolerance_days"`
	MinSpanYears           int         `json:"min_span_years" yaml:"min_span_years"`
	MinWindowSample        int         `json:"min_window_sample" yaml:"min_window_sample"`
	MinTrendYears          int         `json:"min_trend_years" yaml:"min_trend_years"`
	TrendStabilityFraction float64     `json:"trend_stability_fraction" yaml:"trend_stability_fraction"`
	Percentiles            []float64   `json:"percentiles" yaml:"percentiles"`
	Thresholds             []Threshold `json:"thresholds" yaml:"thresholds"`
	RiskRules              []RiskRule  `json:"risk_rules" yaml:"risk_rules"`
	SeverityCuts           []float64   `json:"severity_cuts" yaml:"severity_cuts"`
}

// Threshold names referenced by the default risk rules and the outlook.
const (
	ThresholdWetDay         = "wet_day"
	ThresholdHeavyRain      = "heavy_rain"
	ThresholdHotDay         = "hot_day"
	ThresholdFreezing       = "freezing"
	ThresholdStrongWind     = "strong_wind"
	ThresholdVeryStrongWind = "very_strong_wind"
)

// Extreme event types.
const (
	EventHeatWave  = "heat_wave"
	EventHeavyRain = "heavy_rain"
	EventColdSnap  = "cold_snap"
	EventHighWind  = "high_wind"
)

// DefaultPolicy returns the documented defaults. Temperature limits follow
// the common 32 °C (90 °F) heat and 0 °C frost definitions; 25 mm/day is one
// inch of rain; 12 m/s is the "very strong" wind category.
func DefaultPolicy() Policy {
	return Policy{
		ToleranceDays:          3,
		MaxToleranceDays:       45,
		MinSpanYears:           20,
		MinWindowSample:        30,
		MinTrendYears:          10,
		TrendStabilityFraction: 0.05,
		Percentiles:            []float64{10, 25, 50, 75, 90},
		Thresholds: []Threshold{
			{Name: ThresholdHotDay, Variable: Temperature, Value: 32, Direction: Above},
			{Name: ThresholdFreezing, Variable: Temperature, Value: 0, Direction: Below},
			{Name: ThresholdHotDay, Variable: TemperatureMax, Value: 32, Direction: Above},
			{Name: ThresholdFreezing, Variable: TemperatureMin, Value: 0, Direction: Below},
			{Name: ThresholdWetDay, Variable: Precipitation, Value: 0.1, Direction: Above},
			{Name: "moderate_rain", Variable: Precipitation, Value: 10, Direction: Above},
			{Name: ThresholdHeavyRain, Variable: Precipitation, Value: 25, Direction: Above},
			{Name: ThresholdStrongWind, Variable: WindSpeed, Value: 7, Direction: Above},
			{Name: ThresholdVeryStrongWind, Variable: WindSpeed, Value: 12, Direction: Above},
		},
		RiskRules: []RiskRule{
			{Event: EventHeatWave, Variable: TemperatureMax, Threshold: ThresholdHotDay},
			{Event: EventHeavyRain, Variable: Precipitation, Threshold: ThresholdHeavyRain},
			{Event: EventColdSnap, Variable: TemperatureMin, Threshold: ThresholdFreezing},
			{Event: EventHighWind, Variable: WindSpeed, Threshold: ThresholdVeryStrongWind},
		},
		SeverityCuts: []float64{0.1, 0.3, 0.6},
	}
}

// Validate checks internal consistency of the policy.
func (p Policy) Validate() error {
	if p.ToleranceDays < 0 || p.ToleranceDays > p.MaxToleranceDays {
		return invalidInputf("tolerance_days", "%d is outside [0, %d]", p.ToleranceDays, p.MaxToleranceDays)
	}
	// Windows of consecutive years must not overlap.
	if p.MaxToleranceDays > 182 {
		return invalidInputf("max_tolerance_days", "%d exceeds half a year", p.MaxToleranceDays)
	}
	if p.MinSpanYears < 1 {
		return invalidInputf("min_span_years", "must be positive, got %d", p.MinSpanYears)
	}
	if p.MinWindowSample < 1 {
		return invalidInputf("min_window_sample", "must be positive, got %d", p.MinWindowSample)
	}
	if p.MinTrendYears < 3 {
		return invalidInputf("min_trend_years", "must be at least 3, got %d", p.MinTrendYears)
	}
	if p.TrendStabilityFraction < 0 {
		return invalidInputf("trend_stability_fraction", "must not be negative, got %v", p.TrendStabilityFraction)
	}
	for _, pct := range p.Percentiles {
		if pct < 0 || pct > 100 {
			return invalidInputf("percentiles", "%v is outside [0, 100]", pct)
		}
	}
	if len(p.SeverityCuts) != len(Severities)-1 {
		return invalidInputf("severity_cuts", "need %d cut points, got %d", len(Severities)-1, len(p.SeverityCuts))
	}
	for i, c := range p.SeverityCuts {
		if c <= 0 || c >= 1 {
			return invalidInputf("severity_cuts", "%v is outside (0, 1)", c)
		}
		if i > 0 && c <= p.SeverityCuts[i-1] {
			return invalidInputf("severity_cuts", "must be strictly increasing: %v", p.SeverityCuts)
		}
	}
	seen := make(map[string]bool, len(p.Thresholds))
	for _, t := range p.Thresholds {
		if t.Direction != Above && t.Direction != Below {
			return invalidInputf("thresholds", "%s has unknown direction %q", t.Name, t.Direction)
		}
		key := thresholdKey(t.Variable, t.Name)
		if seen[key] {
			return invalidInputf("thresholds", "duplicate threshold %s", key)
		}
		seen[key] = true
	}
	for _, r := range p.RiskRules {
		if !seen[thresholdKey(r.Variable, r.Threshold)] {
			return invalidInputf("risk_rules", "%s references unknown threshold %s", r.Event, thresholdKey(r.Variable, r.Threshold))
		}
	}
	return nil
}

// thresholdsFor returns the thresholds defined for v in policy order.
func (p Policy) thresholdsFor(v Variable) []Threshold {
	var out []Threshold
	for _, t := range p.Thresholds {
		if t.Variable == v {
			out = append(out, t)
		}
	}
	return out
}

func thresholdKey(v Variable, name string) string {
	return fmt.Sprintf("%s/%s", v, name)
}

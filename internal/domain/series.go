package domain

import (
	"time"
)

// Variable names a daily observed quantity, using NASA POWER parameter codes.
type Variable string

const (
	Temperature    Variable = "T2M"
	TemperatureMax Variable = "T2M_MAX"
	TemperatureMin Variable = "T2M_MIN"
	Precipitation  Variable = "PRECTOTCORR"
	WindSpeed      Variable = "WS2M"
)

// Variables lists every supported variable in canonical order. Reports and
// samples are always ordered this way.
var Variables = []Variable{Temperature, TemperatureMax, TemperatureMin, Precipitation, WindSpeed}

// Unit returns the measurement unit of the variable.
func (v Variable) Unit() string {
	switch v {
	case Temperature, TemperatureMax, TemperatureMin:
		return "°C"
	case Precipitation:
		return "mm/day"
	case WindSpeed:
		return "m/s"
	default:
		return ""
	}
}

func variableRank(v Variable) int {
	for i, known := range Variables {
		if known == v {
			return i
		}
	}
	return len(Variables)
}

// DefaultMissingSentinel is the NASA POWER fill value for missing data.
const DefaultMissingSentinel = -999.0

// Reading is a single daily value that is either present or missing.
type Reading struct {
	Value   float64
	Present bool
}

// Present wraps a measured value.
func Present(v float64) Reading { return Reading{Value: v, Present: true} }

// Missing is the reading for a gap in the record.
func Missing() Reading { return Reading{} }

// RawRecord is one provider row before normalization. Values may contain the
// provider's missing sentinel.
type RawRecord struct {
	Date   time.Time
	Values map[Variable]float64
}

// RawSeries is the provider's daily series for one location.
type RawSeries struct {
	Location        Location
	Records         []RawRecord
	MissingSentinel float64
}

// Observation is one calendar day of normalized readings.
type Observation struct {
	Date   time.Time
	Values map[Variable]Reading
}

// ObservationSeries is a normalized daily series: dates are UTC midnight,
// strictly increasing and unique.
type ObservationSeries struct {
	Location     Location
	Variables    []Variable
	Observations []Observation
}

// FirstDate returns the first observation date, or the zero time when empty.
func (s ObservationSeries) FirstDate() time.Time {
	if len(s.Observations) == 0 {
		return time.Time{}
	}
	return s.Observations[0].Date
}

// LastDate returns the last observation date, or the zero time when empty.
func (s ObservationSeries) LastDate() time.Time {
	if len(s.Observations) == 0 {
		return time.Time{}
	}
	return s.Observations[len(s.Observations)-1].Date
}

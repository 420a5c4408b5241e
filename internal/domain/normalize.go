package domain

import (
	"math"
	"sort"
	"time"
)

// Normalize validates a provider series and converts it to an
// ObservationSeries. Sentinel, NaN and infinite values become missing
// readings. Out-of-range coordinates fail with an InvalidInputError; series
// with duplicate dates or shorter than p.MinSpanYears fail with a
// DataQualityError.
func Normalize(raw RawSeries, p Policy) (ObservationSeries, error) {
	loc, err := NewLocation(raw.Location.Latitude, raw.Location.Longitude, raw.Location.Name)
	if err != nil {
		return ObservationSeries{}, err
	}
	if len(raw.Records) == 0 {
		return ObservationSeries{}, dataQualityf("series is empty")
	}

	records := make([]RawRecord, len(raw.Records))
	copy(records, raw.Records)
	for i := range records {
		if records[i].Date.IsZero() {
			return ObservationSeries{}, dataQualityf("record %d has no date", i)
		}
		records[i].Date = civilDate(records[i].Date)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	seen := make(map[Variable]bool)
	obs := make([]Observation, 0, len(records))
	for i, rec := range records {
		if i > 0 && rec.Date.Equal(records[i-1].Date) {
			return ObservationSeries{}, dataQualityf("duplicate date %s", rec.Date.Format(time.DateOnly))
		}
		values := make(map[Variable]Reading, len(rec.Values))
		for v, x := range rec.Values {
			seen[v] = true
			values[v] = normalizeReading(x, raw.MissingSentinel)
		}
		obs = append(obs, Observation{Date: rec.Date, Values: values})
	}

	first := obs[0].Date
	last := obs[len(obs)-1].Date
	required := first.AddDate(p.MinSpanYears, 0, -1)
	if last.Before(required) {
		return ObservationSeries{}, dataQualityf(
			"series covers %s to %s, need at least %d years (through %s)",
			first.Format(time.DateOnly), last.Format(time.DateOnly),
			p.MinSpanYears, required.Format(time.DateOnly),
		)
	}

	return ObservationSeries{
		Location:     loc,
		Variables:    sortedVariables(seen),
		Observations: obs,
	}, nil
}

// normalizeReading maps the provider sentinel and non-finite values to a
// missing reading. A sentinel of 0 is treated as "no sentinel" so that a
// measured zero is never discarded.
func normalizeReading(x, sentinel float64) Reading {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Missing()
	}
	if sentinel != 0 && x == sentinel {
		return Missing()
	}
	return Present(x)
}

// civilDate truncates t to midnight UTC of its calendar day.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortedVariables(set map[Variable]bool) []Variable {
	out := make([]Variable, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := variableRank(out[i]), variableRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

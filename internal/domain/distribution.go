package domain

import (
	"math"
	"sort"
)

// PercentileValue is one point of the empirical distribution.
type PercentileValue struct {
	Percentile float64 `json:"percentile"`
	Value      float64 `json:"value"`
}

// Exceedance is the empirical probability of a value past a threshold.
type Exceedance struct {
	Name        string    `json:"name"`
	Threshold   float64   `json:"threshold"`
	Direction   Direction `json:"direction"`
	Probability float64   `json:"probability"`
	// MeanBeyond is the mean of the values past the threshold, nil when there
	// are none.
	MeanBeyond *float64 `json:"mean_beyond,omitempty"`
}

// DistributionSummary describes the windowed sample of one variable.
type DistributionSummary struct {
	Variable    Variable          `json:"variable"`
	Unit        string            `json:"unit"`
	Count       int               `json:"count"`
	Mean        float64           `json:"mean"`
	StdDev      float64           `json:"std_dev"`
	Min         float64           `json:"min"`
	Max         float64           `json:"max"`
	Percentiles []PercentileValue `json:"percentiles"`
	Exceedances []Exceedance      `json:"exceedances"`
}

// Percentile returns the value at percentile p if it was computed.
func (d DistributionSummary) Percentile(p float64) (float64, bool) {
	for _, pv := range d.Percentiles {
		if pv.Percentile == p {
			return pv.Value, true
		}
	}
	return 0, false
}

// Exceedance returns the named exceedance if it was computed.
func (d DistributionSummary) Exceedance(name string) (Exceedance, bool) {
	for _, e := range d.Exceedances {
		if e.Name == name {
			return e, true
		}
	}
	return Exceedance{}, false
}

// Summarize computes moments, percentiles and threshold exceedances of a
// sample. Thresholds for other variables are ignored. The input slices are
// not modified.
func Summarize(v VariableSample, thresholds []Threshold, percentiles []float64) DistributionSummary {
	out := DistributionSummary{
		Variable:    v.Variable,
		Unit:        v.Variable.Unit(),
		Count:       len(v.Values),
		Percentiles: []PercentileValue{},
		Exceedances: []Exceedance{},
	}
	if len(v.Values) == 0 {
		return out
	}

	out.Mean, out.StdDev = welford(v.Values)

	sorted := make([]float64, len(v.Values))
	copy(sorted, v.Values)
	sort.Float64s(sorted)
	out.Min = sorted[0]
	out.Max = sorted[len(sorted)-1]

	for _, p := range percentiles {
		out.Percentiles = append(out.Percentiles, PercentileValue{Percentile: p, Value: percentile(sorted, p)})
	}
	for _, t := range thresholds {
		if t.Variable != v.Variable {
			continue
		}
		out.Exceedances = append(out.Exceedances, exceedance(sorted, t))
	}
	return out
}

// welford returns the mean and sample standard deviation in one pass. The
// standard deviation of a single value is 0.
func welford(values []float64) (mean, stdDev float64) {
	var m2 float64
	for i, x := range values {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	if len(values) < 2 {
		return mean, 0
	}
	return mean, math.Sqrt(m2 / float64(len(values)-1))
}

// percentile interpolates linearly between order statistics of a sorted
// sample (Hyndman and Fan type 7).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	idx := p / 100 * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func exceedance(sorted []float64, t Threshold) Exceedance {
	var beyond []float64
	for _, x := range sorted {
		if (t.Direction == Above && x > t.Value) || (t.Direction == Below && x < t.Value) {
			beyond = append(beyond, x)
		}
	}
	e := Exceedance{
		Name:        t.Name,
		Threshold:   t.Value,
		Direction:   t.Direction,
		Probability: float64(len(beyond)) / float64(len(sorted)),
	}
	if len(beyond) > 0 {
		m, _ := welford(beyond)
		e.MeanBeyond = &m
	}
	return e
}

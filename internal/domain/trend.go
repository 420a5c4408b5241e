package domain

import (
	"math"
	"sort"
)

// TrendDirection is the sign of a detected long-term change.
type TrendDirection string

const (
	TrendWarming TrendDirection = "warming"
	TrendCooling TrendDirection = "cooling"
	TrendStable  TrendDirection = "stable"
)

// Confidence levels for a trend estimate.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// TrendEstimate is a least-squares fit of yearly window means against the
// season year.
type TrendEstimate struct {
	Variable  Variable       `json:"variable"`
	Slope     float64        `json:"slope_per_year"`
	Intercept float64        `json:"intercept"`
	Direction TrendDirection `json:"direction"`
	// Signal is Direction in the variable's own vocabulary, e.g. "wetting"
	// for precipitation.
	Signal          string  `json:"signal"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level"`
	RSquared        float64 `json:"r_squared"`
	Years           int     `json:"years"`
	FirstYear       int     `json:"first_year"`
	LastYear        int     `json:"last_year"`
	PeriodChange    float64 `json:"period_change"`
	// Yearly holds the per-season-year window means the fit was made on.
	Yearly []YearValue `json:"yearly"`
}

// YearValue is the mean of one season year's in-window readings.
type YearValue struct {
	Year  int     `json:"year"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// EstimateTrend fits a linear trend to the yearly means of the sample.
// stdDev is the sample standard deviation used to decide whether the slope
// is meaningful.
func EstimateTrend(v VariableSample, stdDev float64, p Policy) (TrendEstimate, error) {
	pts := yearlyMeans(v)
	if len(pts) < p.MinTrendYears {
		return TrendEstimate{}, &InsufficientDataError{
			Variable: v.Variable,
			Got:      len(pts),
			Required: p.MinTrendYears,
			Reason:   "too few years with data for a trend",
		}
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i] = float64(pt.Year)
		ys[i] = pt.Mean
	}
	fit := olsFit(xs, ys)

	dir := TrendStable
	if fit.slope != 0 && math.Abs(fit.slope) >= p.TrendStabilityFraction*stdDev {
		if fit.slope > 0 {
			dir = TrendWarming
		} else {
			dir = TrendCooling
		}
	}

	conf := trendConfidence(fit)
	first, last := pts[0].Year, pts[len(pts)-1].Year
	return TrendEstimate{
		Variable:        v.Variable,
		Slope:           fit.slope,
		Intercept:       fit.intercept,
		Direction:       dir,
		Signal:          trendSignal(v.Variable, dir),
		Confidence:      conf,
		ConfidenceLevel: confidenceLevel(conf),
		RSquared:        fit.rSquared,
		Years:           len(pts),
		FirstYear:       first,
		LastYear:        last,
		PeriodChange:    fit.slope * float64(last-first),
		Yearly:          pts,
	}, nil
}

func yearlyMeans(v VariableSample) []YearValue {
	byYear := make(map[int][]float64)
	for i, x := range v.Values {
		byYear[v.Years[i]] = append(byYear[v.Years[i]], x)
	}
	pts := make([]YearValue, 0, len(byYear))
	for y, vals := range byYear {
		m, _ := welford(vals)
		pts = append(pts, YearValue{Year: y, Mean: m, Count: len(vals)})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Year < pts[j].Year })
	return pts
}

type linearFit struct {
	slope     float64
	intercept float64
	rSquared  float64
	sxx       float64
	residSE   float64
	n         int
}

// olsFit is ordinary least squares on centred data.
func olsFit(xs, ys []float64) linearFit {
	n := len(xs)
	xMean, _ := welford(xs)
	yMean, _ := welford(ys)

	var sxx, sxy, syy float64
	for i := range xs {
		dx := xs[i] - xMean
		dy := ys[i] - yMean
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	fit := linearFit{n: n, sxx: sxx}
	if sxx == 0 {
		fit.intercept = yMean
		return fit
	}
	fit.slope = sxy / sxx
	fit.intercept = yMean - fit.slope*xMean

	var ssRes float64
	for i := range xs {
		r := ys[i] - (fit.intercept + fit.slope*xs[i])
		ssRes += r * r
	}
	if syy == 0 {
		fit.rSquared = 1
	} else {
		fit.rSquared = math.Max(0, 1-ssRes/syy)
	}
	if n > 2 {
		fit.residSE = math.Sqrt(ssRes / float64(n-2))
	}
	return fit
}

// trendConfidence maps the slope t-statistic into [0, 1).
func trendConfidence(f linearFit) float64 {
	if f.slope == 0 {
		return 0
	}
	if f.residSE == 0 {
		return 1
	}
	t := math.Abs(f.slope) * math.Sqrt(f.sxx) / f.residSE
	return t / (1 + t)
}

func confidenceLevel(c float64) string {
	switch {
	case c < 0.5:
		return ConfidenceLow
	case c < 0.75:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

func trendSignal(v Variable, dir TrendDirection) string {
	if dir == TrendStable {
		return string(TrendStable)
	}
	up := dir == TrendWarming
	switch v {
	case Precipitation:
		if up {
			return "wetting"
		}
		return "drying"
	case WindSpeed:
		if up {
			return "windier"
		}
		return "calmer"
	default:
		return string(dir)
	}
}

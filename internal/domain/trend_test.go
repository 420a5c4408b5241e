package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// yearlySample repeats f(year) three times per year for the given years.
func yearlySample(v Variable, first, last int, f func(year int) float64) VariableSample {
	s := VariableSample{Variable: v}
	for y := first; y <= last; y++ {
		for i := 0; i < 3; i++ {
			s.Values = append(s.Values, f(y))
			s.Years = append(s.Years, y)
		}
	}
	return s
}

func TestEstimateTrend_Flat(t *testing.T) {
	smp := yearlySample(Temperature, 1991, 2020, func(int) float64 { return 17.25 })

	tr, err := EstimateTrend(smp, 0, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, TrendStable, tr.Direction)
	assert.Equal(t, "stable", tr.Signal)
	assert.Equal(t, 0.0, tr.Slope)
	assert.Equal(t, 0.0, tr.Confidence)
	assert.Equal(t, ConfidenceLow, tr.ConfidenceLevel)
	assert.Equal(t, 30, tr.Years)
	assert.Equal(t, 1991, tr.FirstYear)
	assert.Equal(t, 2020, tr.LastYear)
}

func TestEstimateTrend_Increasing(t *testing.T) {
	smp := yearlySample(Temperature, 1991, 2020, func(y int) float64 { return 10 + 0.1*float64(y-1991) })

	tr, err := EstimateTrend(smp, 1, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, TrendWarming, tr.Direction)
	assert.InDelta(t, 0.1, tr.Slope, 1e-9)
	assert.InDelta(t, 2.9, tr.PeriodChange, 1e-9)
	assert.InDelta(t, 1.0, tr.RSquared, 1e-9)
	assert.Greater(t, tr.Confidence, 0.99)
	assert.Equal(t, ConfidenceHigh, tr.ConfidenceLevel)
}

func TestEstimateTrend_KeepsYearlyMeans(t *testing.T) {
	smp := yearlySample(Temperature, 2001, 2012, func(y int) float64 { return float64(y - 2000) })
	smp.Values = append(smp.Values, 100)
	smp.Years = append(smp.Years, 2012)

	tr, err := EstimateTrend(smp, 1, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, tr.Yearly, 12)
	assert.Equal(t, YearValue{Year: 2001, Mean: 1, Count: 3}, tr.Yearly[0])
	assert.Equal(t, 2012, tr.Yearly[11].Year)
	assert.Equal(t, 4, tr.Yearly[11].Count)
	assert.InDelta(t, (3*12+100)/4.0, tr.Yearly[11].Mean, 1e-9)
	for i := 1; i < len(tr.Yearly); i++ {
		assert.Less(t, tr.Yearly[i-1].Year, tr.Yearly[i].Year)
	}
}

func TestEstimateTrend_DecreasingPrecipitationIsDrying(t *testing.T) {
	smp := yearlySample(Precipitation, 1991, 2020, func(y int) float64 { return 8 - 0.2*float64(y-1991) })

	tr, err := EstimateTrend(smp, 1, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, TrendCooling, tr.Direction)
	assert.Equal(t, "drying", tr.Signal)
}

func TestEstimateTrend_SmallSlopeIsStable(t *testing.T) {
	smp := yearlySample(WindSpeed, 1991, 2020, func(y int) float64 { return 5 + 0.001*float64(y-1991) })

	tr, err := EstimateTrend(smp, 2, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, TrendStable, tr.Direction, "slope below 5 percent of the standard deviation")
	assert.Greater(t, tr.Slope, 0.0)
}

func TestEstimateTrend_ConfidenceTracksFit(t *testing.T) {
	noise := []float64{0.3, -0.2, 0.1, -0.4, 0.25, -0.1, 0.35, -0.3, 0.05, -0.15, 0.2, -0.25}
	tight := VariableSample{Variable: Temperature}
	loose := VariableSample{Variable: Temperature}
	for i, n := range noise {
		y := 2000 + i
		base := 10 + 0.05*float64(i)
		tight.Values = append(tight.Values, base+n*0.1)
		tight.Years = append(tight.Years, y)
		loose.Values = append(loose.Values, base+n*3)
		loose.Years = append(loose.Years, y)
	}

	tt, err := EstimateTrend(tight, 0, DefaultPolicy())
	require.NoError(t, err)
	lt, err := EstimateTrend(loose, 0, DefaultPolicy())
	require.NoError(t, err)

	assert.Greater(t, tt.Confidence, lt.Confidence)
	assert.GreaterOrEqual(t, lt.Confidence, 0.0)
	assert.LessOrEqual(t, tt.Confidence, 1.0)
}

func TestEstimateTrend_TooFewYears(t *testing.T) {
	smp := yearlySample(Temperature, 2011, 2019, func(int) float64 { return 1 })

	_, err := EstimateTrend(smp, 0, DefaultPolicy())
	var ins *InsufficientDataError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, 9, ins.Got)
	assert.Equal(t, 10, ins.Required)
	assert.Equal(t, KindInsufficientData, ErrorKind(err))
}

func TestEstimateTrend_YearOrderDoesNotMatter(t *testing.T) {
	smp := yearlySample(Temperature, 1991, 2010, func(y int) float64 { return float64(y % 7) })
	rev := VariableSample{Variable: Temperature}
	for i := len(smp.Values) - 1; i >= 0; i-- {
		rev.Values = append(rev.Values, smp.Values[i])
		rev.Years = append(rev.Years, smp.Years[i])
	}

	a, err := EstimateTrend(smp, 2, DefaultPolicy())
	require.NoError(t, err)
	b, err := EstimateTrend(rev, 2, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

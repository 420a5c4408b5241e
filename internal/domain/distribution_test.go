package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(v Variable, values ...float64) VariableSample {
	years := make([]int, len(values))
	for i := range years {
		years[i] = 2000 + i
	}
	return VariableSample{Variable: v, Values: values, Years: years}
}

func TestSummarize_Moments(t *testing.T) {
	s := Summarize(sample(Temperature, 4, 2, 5, 1, 3), nil, []float64{0, 25, 50, 75, 100})

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, "°C", s.Unit)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.5811388300841898, s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, []PercentileValue{
		{Percentile: 0, Value: 1},
		{Percentile: 25, Value: 2},
		{Percentile: 50, Value: 3},
		{Percentile: 75, Value: 4},
		{Percentile: 100, Value: 5},
	}, s.Percentiles)
}

func TestSummarize_SingleValue(t *testing.T) {
	s := Summarize(sample(WindSpeed, 7), nil, []float64{10, 90})
	assert.Equal(t, 7.0, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 7.0, s.Percentiles[0].Value)
	assert.Equal(t, 7.0, s.Percentiles[1].Value)
}

func TestSummarize_InterpolatesPercentiles(t *testing.T) {
	s := Summarize(sample(Temperature, 10, 20, 30, 40), nil, []float64{10, 90})
	// rank = p/100*(n-1): 0.3 and 2.7
	assert.InDelta(t, 13.0, s.Percentiles[0].Value, 1e-9)
	assert.InDelta(t, 37.0, s.Percentiles[1].Value, 1e-9)
}

func TestSummarize_PercentilesNonDecreasing(t *testing.T) {
	values := []float64{9.1, -3, 14.2, 0, 0, 7.5, 22, -8.4, 3.3, 14.2, 5}
	pcts := []float64{0, 5, 10, 25, 33, 50, 66, 75, 90, 95, 100}
	s := Summarize(sample(Temperature, values...), nil, pcts)

	for i := 1; i < len(s.Percentiles); i++ {
		assert.LessOrEqual(t, s.Percentiles[i-1].Value, s.Percentiles[i].Value)
	}
}

func TestSummarize_OrderIndependentAndNonMutating(t *testing.T) {
	a := []float64{5, 1, 4, 2, 3}
	b := []float64{1, 2, 3, 4, 5}
	th := DefaultPolicy().Thresholds
	pcts := DefaultPolicy().Percentiles

	sa := Summarize(sample(Temperature, a...), th, pcts)
	sb := Summarize(sample(Temperature, b...), th, pcts)

	assert.Equal(t, sb.Percentiles, sa.Percentiles)
	assert.Equal(t, sb.Exceedances, sa.Exceedances)
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, a)
}

func TestSummarize_Exceedance(t *testing.T) {
	thresholds := []Threshold{
		{Name: "hot", Variable: Temperature, Value: 30, Direction: Above},
		{Name: "cold", Variable: Temperature, Value: 0, Direction: Below},
		{Name: "windy", Variable: WindSpeed, Value: 5, Direction: Above},
	}
	s := Summarize(sample(Temperature, -2, 0, 10, 30, 31, 35), thresholds, nil)

	require.Len(t, s.Exceedances, 2, "thresholds for other variables are ignored")

	hot, ok := s.Exceedance("hot")
	require.True(t, ok)
	assert.InDelta(t, 2.0/6, hot.Probability, 1e-12, "the threshold value itself is not an exceedance")
	require.NotNil(t, hot.MeanBeyond)
	assert.InDelta(t, 33.0, *hot.MeanBeyond, 1e-12)

	cold, ok := s.Exceedance("cold")
	require.True(t, ok)
	assert.InDelta(t, 1.0/6, cold.Probability, 1e-12)
	assert.Equal(t, Below, cold.Direction)
}

func TestSummarize_MeanBeyondNilWhenNoExceedance(t *testing.T) {
	th := []Threshold{{Name: "hot", Variable: Temperature, Value: 50, Direction: Above}}
	s := Summarize(sample(Temperature, 1, 2, 3), th, nil)
	e, _ := s.Exceedance("hot")
	assert.Equal(t, 0.0, e.Probability)
	assert.Nil(t, e.MeanBeyond)
}

func TestSummarize_ExceedanceNonIncreasingInThreshold(t *testing.T) {
	values := []float64{18, 21.5, 22, 25, 25, 26.1, 28, 29.9, 31, 33}
	var th []Threshold
	for x := 15.0; x <= 35; x += 0.5 {
		th = append(th, Threshold{Name: "t", Variable: Temperature, Value: x, Direction: Above})
	}
	s := Summarize(sample(Temperature, values...), th, nil)

	for i := 1; i < len(s.Exceedances); i++ {
		assert.LessOrEqual(t, s.Exceedances[i].Probability, s.Exceedances[i-1].Probability)
		assert.GreaterOrEqual(t, s.Exceedances[i].Probability, 0.0)
		assert.LessOrEqual(t, s.Exceedances[i].Probability, 1.0)
	}
}

func TestSummarize_UniformSample(t *testing.T) {
	// Thirty years of ten in-window days spread evenly over 20-30 °C.
	n := 300
	values := make([]float64, n)
	for i := range values {
		values[i] = 20 + 10*(float64(i)+0.5)/float64(n)
	}
	th := []Threshold{{Name: "warm", Variable: Temperature, Value: 28, Direction: Above}}
	s := Summarize(sample(Temperature, values...), th, []float64{50})

	e, _ := s.Exceedance("warm")
	assert.InDelta(t, 0.2, e.Probability, 0.01)
	assert.InDelta(t, 25.0, s.Mean, 1e-9)
	assert.InDelta(t, 25.0, s.Percentiles[0].Value, 1e-9)
}

func TestSummarize_EmptySample(t *testing.T) {
	s := Summarize(VariableSample{Variable: Precipitation}, DefaultPolicy().Thresholds, []float64{50})
	assert.Equal(t, 0, s.Count)
	assert.Empty(t, s.Percentiles)
	assert.Empty(t, s.Exceedances)
}

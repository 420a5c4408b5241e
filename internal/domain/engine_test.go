package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_SeasonalClimate(t *testing.T) {
	raw := dailySeries(1995, 2024, seasonalClimate)

	r, err := Analyze(raw, mustTarget(7, 15), DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, testLocation, r.Location)
	assert.Equal(t, 3, r.ToleranceDays)
	assert.Equal(t, 30, r.YearsAnalyzed)
	assert.Equal(t, 1995, r.FirstYear)
	assert.Equal(t, 2024, r.LastYear)

	require.Len(t, r.Summaries, len(Variables))
	require.Len(t, r.Trends, len(Variables))
	for i, v := range Variables {
		assert.Equal(t, v, r.Summaries[i].Variable)
		assert.Equal(t, v, r.Trends[i].Variable)
		assert.Equal(t, 30*7, r.Summaries[i].Count)
	}

	temp, ok := r.Summary(Temperature)
	require.True(t, ok)
	assert.InDelta(t, 26, temp.Mean, 0.1)

	for _, s := range r.Summaries {
		for i := 1; i < len(s.Percentiles); i++ {
			assert.LessOrEqual(t, s.Percentiles[i-1].Value, s.Percentiles[i].Value)
		}
		for _, e := range s.Exceedances {
			assert.GreaterOrEqual(t, e.Probability, 0.0)
			assert.LessOrEqual(t, e.Probability, 1.0)
		}
	}

	require.Len(t, r.Risks, 4)
	heat := r.Risks[0]
	assert.Equal(t, EventHeatWave, heat.Event)
	assert.InDelta(t, 0, heat.Probability, 1e-12, "T2M_MAX peaks at 31 °C")
	assert.Equal(t, SeverityLow, heat.Severity)
	for _, risk := range r.Risks {
		assert.GreaterOrEqual(t, risk.Probability, 0.0)
		assert.LessOrEqual(t, risk.Probability, 1.0)
	}

	require.NotNil(t, r.Outlook.Temperature)
	assert.LessOrEqual(t, r.Outlook.Temperature.LikelyLow, r.Outlook.Temperature.Expected+0.5)
	assert.GreaterOrEqual(t, r.Outlook.Temperature.LikelyHigh, r.Outlook.Temperature.LikelyLow)
	require.NotNil(t, r.Outlook.Precipitation)
	// Days 193-199 (194-200 in leap years) hold two multiples of three.
	assert.InDelta(t, 2.0/7, r.Outlook.Precipitation.Probability, 1e-9)
	assert.Equal(t, 6.0, r.Outlook.Precipitation.ExpectedAmount)
	assert.Equal(t, "High", r.Outlook.Precipitation.Confidence)
	require.NotNil(t, r.Outlook.Wind)
	assert.Equal(t, WindModerate, r.Outlook.Wind.Category)
	assert.GreaterOrEqual(t, r.Outlook.Wind.LikelyLow, 0.0)

	assert.Equal(t, DataQuality{
		YearsAnalyzed: 30,
		DepthScore:    100,
		Completeness:  100,
		Overall:       100,
		Grade:         "A+",
	}, r.DataQuality)

	assert.Contains(t, r.Recommendations.Advice, "Low rain probability: weather looks favorable")
	assert.NotContains(t, r.Recommendations.Advice, "Moderate rain chance: prepare a rain contingency plan")
	assert.NotContains(t, r.Recommendations.Packing, "Compact umbrella")
}

func TestAnalyze_UniformWindowExceedance(t *testing.T) {
	// Jul 19 is day 200 of a common year. The 7-day window of each of the 30
	// years holds an evenly spaced ladder of values across 20-30 °C.
	const n = 30 * 7
	raw := dailySeries(1995, 2024, func(d time.Time) map[Variable]float64 {
		offset := int(d.Sub(time.Date(d.Year(), time.July, 19, 0, 0, 0, 0, time.UTC)).Hours() / 24)
		if offset < -3 || offset > 3 {
			return map[Variable]float64{Temperature: 15}
		}
		idx := (d.Year()-1995)*7 + offset + 3
		return map[Variable]float64{Temperature: 20 + 10*(float64(idx)+0.5)/n}
	})
	p := DefaultPolicy()
	p.Thresholds = append(p.Thresholds, Threshold{Name: "warm", Variable: Temperature, Value: 28, Direction: Above})

	r, err := Analyze(raw, mustTarget(7, 19), p)
	require.NoError(t, err)

	temp, ok := r.Summary(Temperature)
	require.True(t, ok)
	assert.Equal(t, n, temp.Count)
	assert.InDelta(t, 25, temp.Mean, 1e-9)
	assert.GreaterOrEqual(t, temp.Min, 20.0)
	assert.LessOrEqual(t, temp.Max, 30.0)

	warm, ok := temp.Exceedance("warm")
	require.True(t, ok)
	assert.InDelta(t, 0.2, warm.Probability, 0.01)
	assert.Equal(t, 30, r.YearsAnalyzed)
}

func TestAnalyze_Deterministic(t *testing.T) {
	raw := dailySeries(1995, 2024, seasonalClimate)

	first, err := Analyze(raw, mustTarget(12, 30), DefaultPolicy())
	require.NoError(t, err)
	second, err := Analyze(raw, mustTarget(12, 30), DefaultPolicy())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated analysis differs (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAnalyze_DoesNotReadClock(t *testing.T) {
	raw := dailySeries(1995, 2024, seasonalClimate)
	defer SetClock(nil)

	SetClock(fakeClockAt(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	a, err := Analyze(raw, mustTarget(3, 1), DefaultPolicy())
	require.NoError(t, err)
	SetClock(fakeClockAt(time.Date(2040, 6, 1, 0, 0, 0, 0, time.UTC)))
	b, err := Analyze(raw, mustTarget(3, 1), DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestAnalyze_PartialCompleteness(t *testing.T) {
	raw := dailySeries(1995, 2024, seasonalClimate)
	for i, rec := range raw.Records {
		if rec.Date.Month() == time.July && rec.Date.Day() == 15 && rec.Date.Year()%2 == 0 {
			raw.Records[i].Values[WindSpeed] = DefaultMissingSentinel
		}
	}

	r, err := Analyze(raw, mustTarget(7, 15), DefaultPolicy())
	require.NoError(t, err)

	total := 5 * 30 * 7
	assert.InDelta(t, float64(total-15)/float64(total)*100, r.DataQuality.Completeness, 1e-9)
	assert.Less(t, r.DataQuality.Overall, 100.0)
}

func TestAnalyze_Errors(t *testing.T) {
	t.Run("invalid policy", func(t *testing.T) {
		p := DefaultPolicy()
		p.SeverityCuts = []float64{0.5, 0.2, 0.9}
		_, err := Analyze(dailySeries(1995, 2024, seasonalClimate), mustTarget(1, 1), p)
		assert.Equal(t, KindInvalidInput, ErrorKind(err))
	})

	t.Run("coordinates out of range", func(t *testing.T) {
		raw := dailySeries(1995, 2024, seasonalClimate)
		raw.Location = Location{Latitude: 200, Longitude: 500}
		r, err := Analyze(raw, mustTarget(1, 1), DefaultPolicy())
		assert.Equal(t, KindInvalidInput, ErrorKind(err))
		assert.Zero(t, r.YearsAnalyzed)
	})

	t.Run("series too short", func(t *testing.T) {
		_, err := Analyze(dailySeries(2015, 2024, seasonalClimate), mustTarget(1, 1), DefaultPolicy())
		assert.Equal(t, KindDataQuality, ErrorKind(err))
	})

	t.Run("too few trend years", func(t *testing.T) {
		raw := dailySeries(1995, 2024, func(d time.Time) map[Variable]float64 {
			v := map[Variable]float64{Temperature: 10}
			if d.Year() < 2000 {
				v[Precipitation] = 2
			}
			return v
		})
		p := DefaultPolicy()
		p.MinWindowSample = 5
		_, err := Analyze(raw, mustTarget(5, 10), p)
		var ins *InsufficientDataError
		require.ErrorAs(t, err, &ins)
		assert.Equal(t, Precipitation, ins.Variable)
		assert.Equal(t, 5, ins.Got)
	})
}

func TestWindCategory(t *testing.T) {
	assert.Equal(t, WindCalm, windCategory(3))
	assert.Equal(t, WindModerate, windCategory(3.1))
	assert.Equal(t, WindModerate, windCategory(7))
	assert.Equal(t, WindStrong, windCategory(12))
	assert.Equal(t, WindVeryStrong, windCategory(12.5))
}

func TestGrade(t *testing.T) {
	assert.Equal(t, "A+", grade(96))
	assert.Equal(t, "A", grade(95))
	assert.Equal(t, "B+", grade(85))
	assert.Equal(t, "B", grade(75))
	assert.Equal(t, "C", grade(70))
}

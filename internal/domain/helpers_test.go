package domain

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

var testLocation = Location{Latitude: 40.7128, Longitude: -74.006, Name: "New York"}

// dailySeries builds one record per day from Jan 1 of firstYear through
// Dec 31 of lastYear using gen for the values.
func dailySeries(firstYear, lastYear int, gen func(d time.Time) map[Variable]float64) RawSeries {
	start := time.Date(firstYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(lastYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	var recs []RawRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		recs = append(recs, RawRecord{Date: d, Values: gen(d)})
	}
	return RawSeries{Location: testLocation, Records: recs, MissingSentinel: DefaultMissingSentinel}
}

// seasonalClimate is a mid-latitude climate: temperature follows a cosine
// peaking in mid July, it rains every third day and wind is steady.
func seasonalClimate(d time.Time) map[Variable]float64 {
	phase := 2 * math.Pi * float64(d.YearDay()-196) / 365
	t := 12 + 14*math.Cos(phase)
	precip := 0.0
	if d.YearDay()%3 == 0 {
		precip = 6
	}
	return map[Variable]float64{
		Temperature:    t,
		TemperatureMax: t + 5,
		TemperatureMin: t - 5,
		Precipitation:  precip,
		WindSpeed:      4 + float64(d.Day()%3),
	}
}

func constantTemperature(v float64) func(d time.Time) map[Variable]float64 {
	return func(time.Time) map[Variable]float64 {
		return map[Variable]float64{Temperature: v}
	}
}

func mustTarget(month, day int) TargetDate {
	t, err := NewTargetDate(month, day)
	if err != nil {
		panic(err)
	}
	return t
}

func mustNormalize(raw RawSeries) ObservationSeries {
	s, err := Normalize(raw, DefaultPolicy())
	if err != nil {
		panic(err)
	}
	return s
}

func fakeClockAt(t time.Time) clockwork.Clock {
	return clockwork.NewFakeClockAt(t)
}

package domain

import (
	"time"
)

// VariableSample holds the in-window values of one variable. Years[i] is the
// season year Values[i] was drawn for, which differs from the calendar year
// when a window wraps across New Year.
type VariableSample struct {
	Variable Variable  `json:"variable"`
	Values   []float64 `json:"values"`
	Years    []int     `json:"years"`
	Missing  int       `json:"missing"`
}

// WindowedSample is the per-variable sample of days near the target date in
// every year of the series.
type WindowedSample struct {
	Target        TargetDate       `json:"target"`
	ToleranceDays int              `json:"tolerance_days"`
	Samples       []VariableSample `json:"samples"`
}

// Sample returns the sample for v and whether it exists.
func (w WindowedSample) Sample(v Variable) (VariableSample, bool) {
	for _, s := range w.Samples {
		if s.Variable == v {
			return s, true
		}
	}
	return VariableSample{}, false
}

// SelectWindow collects, for every variable of the series, the readings that
// fall within toleranceDays of the target date in each year. Missing readings
// are excluded and counted.
func SelectWindow(s ObservationSeries, t TargetDate, toleranceDays int, p Policy) (WindowedSample, error) {
	if toleranceDays < 0 || toleranceDays > p.MaxToleranceDays {
		return WindowedSample{}, invalidInputf("tolerance_days", "%d is outside [0, %d]", toleranceDays, p.MaxToleranceDays)
	}

	index := make(map[Variable]int, len(s.Variables))
	samples := make([]VariableSample, len(s.Variables))
	for i, v := range s.Variables {
		index[v] = i
		samples[i] = VariableSample{Variable: v}
	}

	firstYear, lastYear := s.FirstDate().Year(), s.LastDate().Year()
	for _, o := range s.Observations {
		year, ok := seasonYear(o.Date, t, toleranceDays, firstYear, lastYear)
		if !ok {
			continue
		}
		for _, v := range s.Variables {
			smp := &samples[index[v]]
			r, ok := o.Values[v]
			if !ok || !r.Present {
				smp.Missing++
				continue
			}
			smp.Values = append(smp.Values, r.Value)
			smp.Years = append(smp.Years, year)
		}
	}

	for _, smp := range samples {
		if len(smp.Values) < p.MinWindowSample {
			return WindowedSample{}, &InsufficientDataError{
				Variable: smp.Variable,
				Got:      len(smp.Values),
				Required: p.MinWindowSample,
				Reason:   "too few readings in the date window",
			}
		}
	}

	return WindowedSample{Target: t, ToleranceDays: toleranceDays, Samples: samples}, nil
}

// seasonYear reports the year whose window centre lies within tolerance of d.
// Centres in the neighbouring years are checked so windows wrap across year
// boundaries, but only years within [firstYear, lastYear] qualify: a day
// whose centre falls in a year outside the series is dropped.
func seasonYear(d time.Time, t TargetDate, tolerance, firstYear, lastYear int) (int, bool) {
	day := dayNumber(d)
	for _, y := range []int{d.Year() - 1, d.Year(), d.Year() + 1} {
		if y < firstYear || y > lastYear {
			continue
		}
		diff := day - dayNumber(t.In(y))
		if diff < 0 {
			diff = -diff
		}
		if diff <= int64(tolerance) {
			return y, true
		}
	}
	return 0, false
}

func dayNumber(t time.Time) int64 {
	return civilDate(t).Unix() / 86400
}

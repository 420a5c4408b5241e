package domain

import (
	"fmt"
	"math"
	"time"
)

// Location is a WGS-84 point. Name is an optional display label supplied by
// the location resolver.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

// NewLocation validates coordinate ranges.
func NewLocation(lat, lon float64, name string) (Location, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Location{}, invalidInputf("latitude", "%v is outside [-90, 90]", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Location{}, invalidInputf("longitude", "%v is outside [-180, 180]", lon)
	}
	return Location{Latitude: lat, Longitude: lon, Name: name}, nil
}

// String formats the location as "(lat, lon)" with four decimals, or the name
// when one is set.
func (l Location) String() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("(%.4f, %.4f)", l.Latitude, l.Longitude)
}

// TargetDate is a year-independent calendar day.
type TargetDate struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// NewTargetDate validates the day against the month's length. February
// accepts 29; see [TargetDate.In] for how leap days are resolved.
func NewTargetDate(month, day int) (TargetDate, error) {
	if month < 1 || month > 12 {
		return TargetDate{}, invalidInputf("month", "%d is outside [1, 12]", month)
	}
	m := time.Month(month)
	if day < 1 || day > maxDay(m) {
		return TargetDate{}, invalidInputf("day", "%d is not a day of %s", day, m)
	}
	return TargetDate{Month: m, Day: day}, nil
}

// In returns the window centre for the given year at UTC midnight. Feb 29 in
// a non-leap year resolves to Feb 28.
func (t TargetDate) In(year int) time.Time {
	day := t.Day
	if t.Month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, t.Month, day, 0, 0, 0, 0, time.UTC)
}

func (t TargetDate) String() string {
	return fmt.Sprintf("%s %d", t.Month, t.Day)
}

func maxDay(m time.Month) int {
	if m == time.February {
		return 29
	}
	// Day 0 of the next month is the last day of m.
	return time.Date(2001, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

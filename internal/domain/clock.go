package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// Analyze never reads it; only envelope stamping and the history range do.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// HistoricalRange returns the inclusive span of the last `years` complete
// calendar years, ending with last year.
func HistoricalRange(years int) (startYear, endYear int) {
	endYear = clock.Now().UTC().Year() - 1
	return endYear - years + 1, endYear
}

package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze processed_date
// stamps via SetClock. Production code uses the real clock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for transforms. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the package time source. The enrichment pipeline uses it for
// analysis_date stamps so the same SetClock override covers both pipelines.
func Clock() clockwork.Clock { return clock }

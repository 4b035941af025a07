package effects

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

// TimeSpan is the wall-clock window in which an effect was observed.
type TimeSpan = timespan.TimeSpan

func NewTimeSpan(from, to time.Time) TimeSpan {
	return timespan.BetweenTimes(from, to)
}

const epsilon = time.Millisecond

// Now returns a span of two epsilons centred on the current time.
func Now() TimeSpan {
	now := time.Now()
	return timespan.BetweenTimes(now.Add(-1*epsilon), now.Add(epsilon))
}

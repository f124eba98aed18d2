package entity

import "time"

// Clock returns the current instant. Sessions read it only at well-defined
// transitions (start, each answer, end).
type Clock func() time.Time

// SystemClock reads the wall clock, keeping the monotonic reading so that
// durations between two readings are immune to wall-clock jumps.
var SystemClock Clock = time.Now

// ElapsedSeconds returns whole seconds between from and to, never negative.
func ElapsedSeconds(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// Package timer measures elapsed time around a single round trip.
package timer

import "time"

// Timer records a start point and reports nanoseconds elapsed since it.
//
// time.Now carries a monotonic clock reading, and time.Since subtracts
// monotonic readings, so wall clock adjustments never affect the result.
type Timer struct {
	start time.Time
}

// Start records the current monotonic timestamp.
func (t *Timer) Start() {
	t.start = time.Now()
}

// Stop returns nanoseconds elapsed since the last Start.
// Calling Stop without a preceding Start is not meaningful.
func (t *Timer) Stop() uint64 {
	elapsed := time.Since(t.start)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed)
}

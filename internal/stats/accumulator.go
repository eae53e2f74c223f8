// Package stats provides online aggregation of round-trip samples.
//
// Accumulator keeps the running mean, variance and extrema of a sample
// stream in constant memory using Welford's method. Percentiles adds
// bounded-memory quantile estimates on top of an HDR histogram. Neither
// retains individual samples.
package stats

import "math"

// Accumulator maintains running aggregates over a stream of samples.
// It is not safe for concurrent use; a single probe loop owns it.
type Accumulator struct {
	count uint64
	mean  float64
	sum   float64 // sum of squared deltas from the running mean
	min   float64
	max   float64
}

// NewAccumulator returns an empty accumulator with min at +Inf and max at -Inf.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		min: math.Inf(1),
		max: math.Inf(-1),
	}
}

// Update ingests one sample.
func (a *Accumulator) Update(value float64) {
	a.count++
	delta := value - a.mean
	a.mean += delta / float64(a.count)
	// second factor uses the updated mean
	a.sum += delta * (value - a.mean)

	a.min = math.Min(a.min, value)
	a.max = math.Max(a.max, value)
}

// Count returns the number of samples since creation or the last Reset.
func (a *Accumulator) Count() uint64 {
	return a.count
}

// Mean returns the running mean, or 0 when no samples were seen.
func (a *Accumulator) Mean() float64 {
	return a.mean
}

// Variance returns the population variance (divided by count, not count-1).
// It returns NaN when no samples were seen.
func (a *Accumulator) Variance() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.sum / float64(a.count)
}

// StdDev returns the square root of Variance.
func (a *Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}

// Min returns the smallest sample seen, or +Inf before the first Update.
func (a *Accumulator) Min() float64 {
	return a.min
}

// Max returns the largest sample seen, or -Inf before the first Update.
func (a *Accumulator) Max() float64 {
	return a.max
}

// Reset clears count, mean and the squared-delta sum.
//
// Min and Max are intentionally left untouched: after Reset they still
// reflect every sample seen since creation. Use NewAccumulator for a fully
// clean state.
func (a *Accumulator) Reset() {
	a.count = 0
	a.mean = 0
	a.sum = 0
}

// Snapshot returns a point-in-time copy of the aggregates.
func (a *Accumulator) Snapshot() Snapshot {
	return Snapshot{
		Count:    a.count,
		Mean:     a.mean,
		Variance: a.Variance(),
		Min:      a.min,
		Max:      a.max,
	}
}

package stats

import "math"

// Snapshot is an immutable copy of Accumulator state, safe to hand to
// other goroutines.
type Snapshot struct {
	Count    uint64  `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Empty reports whether no samples contributed to the snapshot.
func (s Snapshot) Empty() bool {
	return s.Count == 0
}

// Scaled converts a snapshot of nanosecond samples to another unit by
// dividing by div. Variance is divided by div squared since it is in
// squared units.
func (s Snapshot) Scaled(div float64) Snapshot {
	return Snapshot{
		Count:    s.Count,
		Mean:     s.Mean / div,
		Variance: s.Variance / div / div,
		Min:      s.Min / div,
		Max:      s.Max / div,
	}
}

// finite replaces NaN and infinities with zero for JSON encoding.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// JSONSafe returns a copy with non-finite fields zeroed, since
// encoding/json rejects NaN and Inf.
func (s Snapshot) JSONSafe() Snapshot {
	return Snapshot{
		Count:    s.Count,
		Mean:     finite(s.Mean),
		Variance: finite(s.Variance),
		Min:      finite(s.Min),
		Max:      finite(s.Max),
	}
}

package stats

import (
	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// lowestTrackable and highestTrackable bound recorded values in
	// nanoseconds: 1ns up to 60s.
	lowestTrackable  = 1
	highestTrackable = 60_000_000_000
	sigFigs          = 3
)

// Quantiles holds percentile estimates in the unit values were recorded in.
type Quantiles struct {
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
	P99  float64 `json:"p99"`
	P999 float64 `json:"p99_9"`
}

// Scaled divides every quantile by div.
func (q Quantiles) Scaled(div float64) Quantiles {
	return Quantiles{
		P50:  q.P50 / div,
		P90:  q.P90 / div,
		P99:  q.P99 / div,
		P999: q.P999 / div,
	}
}

// Percentiles estimates latency quantiles in fixed memory. Values outside
// the trackable range are clamped to it.
type Percentiles struct {
	hist *hdrhistogram.Histogram
}

// NewPercentiles returns a tracker for nanosecond values up to 60s.
func NewPercentiles() *Percentiles {
	return &Percentiles{
		hist: hdrhistogram.New(lowestTrackable, highestTrackable, sigFigs),
	}
}

// Record adds one nanosecond sample.
func (p *Percentiles) Record(ns uint64) {
	v := int64(highestTrackable)
	if ns < highestTrackable {
		v = int64(ns)
	}
	if v < p.hist.LowestTrackableValue() {
		v = p.hist.LowestTrackableValue()
	}
	// v is clamped to the trackable range, where RecordValue cannot fail
	_ = p.hist.RecordValue(v)
}

// Count returns the number of recorded samples.
func (p *Percentiles) Count() int64 {
	return p.hist.TotalCount()
}

// Quantiles returns the current estimates.
func (p *Percentiles) Quantiles() Quantiles {
	return Quantiles{
		P50:  float64(p.hist.ValueAtQuantile(50)),
		P90:  float64(p.hist.ValueAtQuantile(90)),
		P99:  float64(p.hist.ValueAtQuantile(99)),
		P999: float64(p.hist.ValueAtQuantile(99.9)),
	}
}

// Reset discards all recorded samples.
func (p *Percentiles) Reset() {
	p.hist.Reset()
}

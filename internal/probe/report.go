package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wellsgz/udprtt/internal/stats"
)

const nsPerMicro = 1000

// Report summarises a finished run in microseconds.
type Report struct {
	Count       uint64           `json:"count"`
	MeanUs      float64          `json:"mean_us"`
	VarianceUs2 float64          `json:"variance_us2"`
	MinUs       float64          `json:"min_us"`
	MaxUs       float64          `json:"max_us"`
	Percentiles *stats.Quantiles `json:"percentiles_us,omitempty"`
}

// NewReport converts nanosecond aggregates to a microsecond Report.
// Variance is in squared units and is therefore divided by 1000 twice.
func NewReport(snap stats.Snapshot, quantiles *stats.Quantiles) Report {
	us := snap.Scaled(nsPerMicro)
	r := Report{
		Count:       us.Count,
		MeanUs:      us.Mean,
		VarianceUs2: us.Variance,
		MinUs:       us.Min,
		MaxUs:       us.Max,
	}
	if quantiles != nil {
		q := quantiles.Scaled(nsPerMicro)
		r.Percentiles = &q
	}
	return r
}

// String renders the single summary line.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mean: %.3f us Variance: %.3f us^2 Min: %.3f us Max: %.3f us",
		r.MeanUs, r.VarianceUs2, r.MinUs, r.MaxUs)
	if r.Percentiles != nil {
		fmt.Fprintf(&b, " P50: %.3f us P90: %.3f us P99: %.3f us P99.9: %.3f us",
			r.Percentiles.P50, r.Percentiles.P90, r.Percentiles.P99, r.Percentiles.P999)
	}
	return b.String()
}

// WriteText writes the summary line followed by a newline.
func (r Report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.String())
	return err
}

// WriteJSON writes the report as a JSON object. Non-finite values, which
// only occur for an empty run, are written as zero.
func (r Report) WriteJSON(w io.Writer) error {
	safe := stats.Snapshot{
		Count:    r.Count,
		Mean:     r.MeanUs,
		Variance: r.VarianceUs2,
		Min:      r.MinUs,
		Max:      r.MaxUs,
	}.JSONSafe()
	out := r
	out.MeanUs, out.VarianceUs2, out.MinUs, out.MaxUs = safe.Mean, safe.Variance, safe.Min, safe.Max

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

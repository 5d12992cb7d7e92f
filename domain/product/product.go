package product

import (
	"fmt"
	"time"

	"landtrend/domain/core"
	"landtrend/domain/raster"
)

// Kind distinguishes the two exportable raster products.
type Kind string

const (
	// KindTrendStats is the multi-band raster of per-pixel trend statistics.
	KindTrendStats Kind = "trend_stats"
	// KindTimeSeries is the raster with one band per time window.
	KindTimeSeries Kind = "time_series"
)

// Band is one band of a product raster, carrying enough metadata (label and
// timestamp) for a consumer to reconstruct the time axis without external
// lookup.
type Band struct {
	Index     int
	Label     string
	Timestamp core.Timestamp
	Grid      *raster.Grid
}

// Raster is a finalized multi-band raster product. Owned by the assembler
// until published to a store; immutable afterwards.
type Raster struct {
	Name      core.ProductName
	Metric    string
	Kind      Kind
	RunID     core.RunID
	CreatedAt core.Timestamp
	Bands     []Band
}

// Sample is one band's value at a sampled point.
type Sample struct {
	Band      int       `json:"band"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Valid     bool      `json:"valid"`
}

// Validate checks product invariants: at least one band, uniform band shapes,
// unique labels, and for time-series products strictly increasing band
// timestamps.
func (r *Raster) Validate() error {
	if r.Name.String() == "" {
		return fmt.Errorf("product has no name")
	}
	if len(r.Bands) == 0 {
		return fmt.Errorf("product %s: no bands", r.Name)
	}
	ref := r.Bands[0].Grid
	seen := make(map[string]bool, len(r.Bands))
	for i, b := range r.Bands {
		if b.Grid == nil {
			return fmt.Errorf("product %s: band %d has no grid", r.Name, i)
		}
		if !ref.SameShape(b.Grid) {
			return fmt.Errorf("product %s: band %d shape differs from band 0", r.Name, i)
		}
		if seen[b.Label] {
			return fmt.Errorf("product %s: duplicate band label %q", r.Name, b.Label)
		}
		seen[b.Label] = true
		if r.Kind == KindTimeSeries && i > 0 {
			if !r.Bands[i-1].Timestamp.Before(b.Timestamp) {
				return fmt.Errorf("product %s: band timestamps not strictly increasing at band %d", r.Name, i)
			}
		}
	}
	return nil
}

// Grid returns the shared pixel grid shape of the product (band 0's grid).
func (r *Raster) Grid() *raster.Grid {
	if len(r.Bands) == 0 {
		return nil
	}
	return r.Bands[0].Grid
}

// BandByLabel returns the band with the given label.
func (r *Raster) BandByLabel(label string) (Band, error) {
	for _, b := range r.Bands {
		if b.Label == label {
			return b, nil
		}
	}
	return Band{}, fmt.Errorf("product %s: no band labeled %q", r.Name, label)
}

// SampleAt reads every band's value at the pixel containing the planar point
// (x, y), at the product's native resolution.
func (r *Raster) SampleAt(x, y float64) ([]Sample, error) {
	g := r.Grid()
	if g == nil {
		return nil, fmt.Errorf("product %s: no bands", r.Name)
	}
	col, row, ok := g.LocateCell(x, y)
	if !ok {
		return nil, fmt.Errorf("product %s: point (%g, %g) outside raster extent", r.Name, x, y)
	}
	out := make([]Sample, 0, len(r.Bands))
	for _, b := range r.Bands {
		v, valid := b.Grid.At(col, row)
		out = append(out, Sample{
			Band:      b.Index,
			Label:     b.Label,
			Timestamp: b.Timestamp.Time(),
			Value:     v,
			Valid:     valid,
		})
	}
	return out, nil
}

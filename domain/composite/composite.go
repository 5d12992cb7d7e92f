package composite

import (
	"fmt"

	"landtrend/domain/core"
	"landtrend/domain/raster"
)

// Composite is a per-pixel robust summary of scenes (or of year composites,
// for multi-year windows) over one time window.
type Composite struct {
	// Label identifies the window: "1992" for a year composite,
	// "1990-1992" for a multi-year window.
	Label string

	// StartYear and EndYear bound the window inclusively. A year composite
	// has StartYear == EndYear.
	StartYear int
	EndYear   int

	// Timestamp is the representative time of the window: the acquisition
	// time of the chronologically last contributing scene.
	Timestamp core.Timestamp

	// Contributors counts the inputs reduced into this composite.
	Contributors int

	// Bands holds the reduced per-pixel values.
	Bands *raster.BandStack
}

// YearLabel formats a year-composite label.
func YearLabel(year int) string {
	return fmt.Sprintf("%d", year)
}

// WindowLabel formats a multi-year window label.
func WindowLabel(startYear, endYear int) string {
	if startYear == endYear {
		return YearLabel(startYear)
	}
	return fmt.Sprintf("%d-%d", startYear, endYear)
}

// Sequence is a time-ordered list of composites for one metric. Windows with
// zero contributing scenes are simply absent; the sequence never holds empty
// placeholders.
type Sequence struct {
	Metric     string
	composites []Composite
}

// NewSequence creates an empty sequence for a metric.
func NewSequence(metric string) *Sequence {
	return &Sequence{Metric: metric}
}

// Append adds a composite to the sequence, enforcing strictly increasing
// timestamps and unique labels.
func (s *Sequence) Append(c Composite) error {
	if c.Bands == nil || c.Bands.Len() == 0 {
		return fmt.Errorf("sequence %s: composite %q has no bands", s.Metric, c.Label)
	}
	if n := len(s.composites); n > 0 {
		last := s.composites[n-1]
		if !last.Timestamp.Before(c.Timestamp) {
			return fmt.Errorf("sequence %s: composite %q timestamp does not increase past %q",
				s.Metric, c.Label, last.Label)
		}
		if last.Label == c.Label {
			return fmt.Errorf("sequence %s: duplicate window label %q", s.Metric, c.Label)
		}
	}
	s.composites = append(s.composites, c)
	return nil
}

// Len returns the number of windows in the sequence.
func (s *Sequence) Len() int {
	return len(s.composites)
}

// At returns the i-th composite in time order.
func (s *Sequence) At(i int) Composite {
	return s.composites[i]
}

// Composites returns the ordered composites.
func (s *Sequence) Composites() []Composite {
	return s.composites
}

// BandSeries extracts the named band from every window, in time order.
// Returns an error when any window lacks the band.
func (s *Sequence) BandSeries(band string) ([]*raster.Grid, error) {
	out := make([]*raster.Grid, 0, len(s.composites))
	for _, c := range s.composites {
		g := c.Bands.Band(band)
		if g == nil {
			return nil, fmt.Errorf("sequence %s: window %q lacks band %q", s.Metric, c.Label, band)
		}
		out = append(out, g)
	}
	return out, nil
}

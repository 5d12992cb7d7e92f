package raster

import (
	"fmt"
	"sort"
)

// BandStack is a named mapping from band name to a Grid. All bands in a stack
// share identical shape, resolution and extent; Add enforces the invariant.
type BandStack struct {
	grids map[string]*Grid
}

// NewBandStack creates an empty band stack.
func NewBandStack() *BandStack {
	return &BandStack{grids: make(map[string]*Grid)}
}

// Add inserts or replaces a band. The first band fixes the stack's shape;
// later bands must match it.
func (s *BandStack) Add(name string, g *Grid) error {
	if g == nil {
		return fmt.Errorf("band %q: nil grid", name)
	}
	if ref := s.anyGrid(); ref != nil && !ref.SameShape(g) {
		return fmt.Errorf("band %q: shape %dx%d/%g does not match stack shape %dx%d/%g",
			name, g.Width, g.Height, g.CellSize, ref.Width, ref.Height, ref.CellSize)
	}
	s.grids[name] = g
	return nil
}

// Band returns the named band, or nil when absent.
func (s *BandStack) Band(name string) *Grid {
	return s.grids[name]
}

// Has reports whether the stack carries the named band.
func (s *BandStack) Has(name string) bool {
	_, ok := s.grids[name]
	return ok
}

// Names returns the band names in sorted order.
func (s *BandStack) Names() []string {
	names := make([]string, 0, len(s.grids))
	for name := range s.grids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bands.
func (s *BandStack) Len() int {
	return len(s.grids)
}

// Copy returns a deep copy of the stack.
func (s *BandStack) Copy() *BandStack {
	out := NewBandStack()
	for name, g := range s.grids {
		out.grids[name] = g.Copy()
	}
	return out
}

func (s *BandStack) anyGrid() *Grid {
	for _, g := range s.grids {
		return g
	}
	return nil
}

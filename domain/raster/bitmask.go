package raster

// Bitmask is a per-pixel quality bitfield aligned with a Grid of the same
// shape. Landsat-style QA bands fit here: each pixel carries independent
// condition bits (cloud, shadow, dilation) rather than a numeric value.
type Bitmask struct {
	Width  int
	Height int

	bits []uint16
}

// NewBitmask creates a zeroed bitmask of the given shape.
func NewBitmask(width, height int) *Bitmask {
	return &Bitmask{
		Width:  width,
		Height: height,
		bits:   make([]uint16, width*height),
	}
}

// At returns the bitfield at (col, row).
func (m *Bitmask) At(col, row int) uint16 {
	return m.bits[row*m.Width+col]
}

// Set assigns the bitfield at (col, row).
func (m *Bitmask) Set(col, row int, bits uint16) {
	m.bits[row*m.Width+col] = bits
}

// AnySet reports whether any of the given bits is set at (col, row).
func (m *Bitmask) AnySet(col, row int, bits uint16) bool {
	return m.bits[row*m.Width+col]&bits != 0
}

// MatchesGrid reports whether the bitmask shape matches a grid's shape.
func (m *Bitmask) MatchesGrid(g *Grid) bool {
	return g != nil && m.Width == g.Width && m.Height == g.Height
}

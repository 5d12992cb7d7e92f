package raster

import "fmt"

// Grid is a single-band 2-D numeric raster with a per-pixel validity mask.
// Invalid (no-data) pixels stay invalid through every reduction; they are
// never defaulted to zero.
//
// The grid lives on a planar coordinate frame: OriginX/OriginY is the outer
// corner of pixel (0,0) and CellSize is the pixel edge length in map units.
// Rows grow downward (south), columns grow rightward (east), matching the
// usual north-up raster layout.
type Grid struct {
	Width    int
	Height   int
	CellSize float64
	OriginX  float64
	OriginY  float64

	values []float64
	valid  []bool
}

// NewGrid creates a fully masked grid of the given shape and georeference.
func NewGrid(width, height int, cellSize, originX, originY float64) *Grid {
	return &Grid{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		OriginX:  originX,
		OriginY:  originY,
		values:   make([]float64, width*height),
		valid:    make([]bool, width*height),
	}
}

// CloneShape returns a new fully masked grid with the same shape and
// georeference as g.
func (g *Grid) CloneShape() *Grid {
	return NewGrid(g.Width, g.Height, g.CellSize, g.OriginX, g.OriginY)
}

// Copy returns a deep copy of g, values and mask included.
func (g *Grid) Copy() *Grid {
	out := g.CloneShape()
	copy(out.values, g.values)
	copy(out.valid, g.valid)
	return out
}

// SameShape reports whether two grids share shape, resolution and extent.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil &&
		g.Width == o.Width && g.Height == o.Height &&
		g.CellSize == o.CellSize &&
		g.OriginX == o.OriginX && g.OriginY == o.OriginY
}

// At returns the value at (col, row) and whether it is valid.
func (g *Grid) At(col, row int) (float64, bool) {
	i := row*g.Width + col
	return g.values[i], g.valid[i]
}

// Set assigns a valid value at (col, row).
func (g *Grid) Set(col, row int, v float64) {
	i := row*g.Width + col
	g.values[i] = v
	g.valid[i] = true
}

// Mask marks (col, row) as no-data.
func (g *Grid) Mask(col, row int) {
	i := row*g.Width + col
	g.values[i] = 0
	g.valid[i] = false
}

// Valid reports whether (col, row) holds a valid value.
func (g *Grid) Valid(col, row int) bool {
	return g.valid[row*g.Width+col]
}

// ValidCount returns the number of valid pixels.
func (g *Grid) ValidCount() int {
	n := 0
	for _, ok := range g.valid {
		if ok {
			n++
		}
	}
	return n
}

// CellCenter returns the map coordinates of the center of pixel (col, row).
func (g *Grid) CellCenter(col, row int) (x, y float64) {
	x = g.OriginX + (float64(col)+0.5)*g.CellSize
	y = g.OriginY - (float64(row)+0.5)*g.CellSize
	return x, y
}

// LocateCell maps planar coordinates to the pixel containing them.
// The second return value is false when the point falls outside the grid.
func (g *Grid) LocateCell(x, y float64) (col, row int, ok bool) {
	if g.CellSize <= 0 {
		return 0, 0, false
	}
	col = int((x - g.OriginX) / g.CellSize)
	row = int((g.OriginY - y) / g.CellSize)
	if col < 0 || col >= g.Width || row < 0 || row >= g.Height {
		return 0, 0, false
	}
	return col, row, true
}

// CellArea returns the area of one pixel in squared map units.
func (g *Grid) CellArea() float64 {
	return g.CellSize * g.CellSize
}

// Values returns a copy of the raw value buffer in row-major order.
// Invalid pixels carry zero; consult ValidityBytes for the mask.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.values))
	copy(out, g.values)
	return out
}

// ValidityBytes returns the validity mask as one byte per pixel (1 = valid),
// row-major. Used by repositories that persist grids as binary payloads.
func (g *Grid) ValidityBytes() []byte {
	out := make([]byte, len(g.valid))
	for i, ok := range g.valid {
		if ok {
			out[i] = 1
		}
	}
	return out
}

// RestoreValues rebuilds the grid content from a row-major value buffer and a
// matching validity byte mask. Lengths must match the grid shape.
func (g *Grid) RestoreValues(values []float64, validity []byte) error {
	if len(values) != g.Width*g.Height || len(validity) != g.Width*g.Height {
		return fmt.Errorf("payload length mismatch: grid is %dx%d, got %d values and %d mask bytes",
			g.Width, g.Height, len(values), len(validity))
	}
	copy(g.values, values)
	for i, b := range validity {
		g.valid[i] = b != 0
	}
	return nil
}

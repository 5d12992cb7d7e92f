// Package normalize converts raw digital numbers to physical units and
// derives the vegetation index band. Every transform is pixelwise and
// idempotent given the same input scene.
package normalize

import (
	"landtrend/domain/raster"
	"landtrend/domain/scene"
)

// Collection-2 level-2 calibration constants. These are fixed instrument
// calibrations, not derived quantities.
const (
	OpticalScale  = 2.75e-5
	OpticalOffset = -0.2
	ThermalScale  = 3.41802e-3
	ThermalOffset = 149.0
)

// Derived band names.
const (
	BandNDVI = "ndvi"
	BandLST  = "lst"
)

// Apply returns a copy of the scene with optical bands scaled to surface
// reflectance, the thermal band scaled to kelvin (as the LST band), and the
// NDVI band derived from NIR and red. The input scene must already carry
// harmonized band names.
func Apply(s scene.Scene) scene.Scene {
	bands := raster.NewBandStack()

	for _, name := range s.Bands.Names() {
		g := s.Bands.Band(name)
		switch name {
		case scene.BandRed, scene.BandNIR:
			_ = bands.Add(name, affine(g, OpticalScale, OpticalOffset))
		case scene.BandThermal:
			_ = bands.Add(BandLST, affine(g, ThermalScale, ThermalOffset))
		default:
			_ = bands.Add(name, g.Copy())
		}
	}

	nir := bands.Band(scene.BandNIR)
	red := bands.Band(scene.BandRed)
	if nir != nil && red != nil {
		_ = bands.Add(BandNDVI, NDVI(nir, red))
	}

	out := s
	out.Bands = bands
	return out
}

// affine applies v*scale + offset to every valid pixel.
func affine(g *raster.Grid, scale, offset float64) *raster.Grid {
	out := g.CloneShape()
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			if v, ok := g.At(col, row); ok {
				out.Set(col, row, v*scale+offset)
			}
		}
	}
	return out
}

// NDVI computes (NIR-RED)/(NIR+RED) per pixel. Pixels invalid in either input
// or with NIR+RED == 0 are masked.
func NDVI(nir, red *raster.Grid) *raster.Grid {
	out := nir.CloneShape()
	for row := 0; row < nir.Height; row++ {
		for col := 0; col < nir.Width; col++ {
			n, okN := nir.At(col, row)
			r, okR := red.At(col, row)
			if !okN || !okR || n+r == 0 {
				continue
			}
			out.Set(col, row, (n-r)/(n+r))
		}
	}
	return out
}

// Package testkit builds synthetic scenes and fixtures for tests and for the
// in-memory archive adapter. All generation is deterministic under a caller
// seed.
package testkit

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"landtrend/domain/core"
	"landtrend/domain/geom"
	"landtrend/domain/raster"
	"landtrend/domain/scene"
	"landtrend/internal/normalize"
)

// Kit builds fixtures on a fixed pixel grid. The grid spans
// [0, width*cellSize] x [0, height*cellSize] with the origin at the
// north-west corner.
type Kit struct {
	Width    int
	Height   int
	CellSize float64
}

// NewKit creates a fixture kit for the given grid shape.
func NewKit(width, height int, cellSize float64) *Kit {
	return &Kit{Width: width, Height: height, CellSize: cellSize}
}

// OriginY returns the north edge of the grid.
func (k *Kit) OriginY() float64 {
	return float64(k.Height) * k.CellSize
}

// Grid returns a fully masked grid on the kit's frame.
func (k *Kit) Grid() *raster.Grid {
	return raster.NewGrid(k.Width, k.Height, k.CellSize, 0, k.OriginY())
}

// UniformGrid returns a grid with every pixel set to v.
func (k *Kit) UniformGrid(v float64) *raster.Grid {
	g := k.Grid()
	for row := 0; row < k.Height; row++ {
		for col := 0; col < k.Width; col++ {
			g.Set(col, row, v)
		}
	}
	return g
}

// Region returns a rectangular study area covering the whole grid.
func (k *Kit) Region(name string) geom.Region {
	w := float64(k.Width) * k.CellSize
	h := float64(k.Height) * k.CellSize
	return geom.NewRegion(name, rectangle(0, 0, w, h))
}

// TractSquare returns a rectangular tract between the given planar bounds.
func (k *Kit) TractSquare(geoid string, minX, minY, maxX, maxY float64) geom.Tract {
	return geom.Tract{
		GEOID:    geoid,
		Boundary: orb.MultiPolygon{rectangle(minX, minY, maxX, maxY)},
	}
}

// SceneSpec describes one synthetic acquisition. BandValues holds raw band
// values (digital numbers) applied uniformly; QABits sets quality bits at
// individual pixels.
type SceneSpec struct {
	Family      scene.SensorFamily
	AcquiredAt  time.Time
	CloudCover  float64
	QualityFlag int
	RadSatClear bool
	BandValues  map[string]float64
	QABits      map[[2]int]uint16
}

// Scene builds a synthetic scene from the spec on the kit's grid.
func (k *Kit) Scene(spec SceneSpec) scene.Scene {
	bands := raster.NewBandStack()
	for name, v := range spec.BandValues {
		if err := bands.Add(name, k.UniformGrid(v)); err != nil {
			panic(fmt.Sprintf("testkit: %v", err))
		}
	}
	qa := raster.NewBitmask(k.Width, k.Height)
	for px, bits := range spec.QABits {
		qa.Set(px[0], px[1], bits)
	}
	return scene.Scene{
		ID:          core.SceneID(core.NewID()),
		Sensor:      spec.Family,
		AcquiredAt:  core.NewTimestamp(spec.AcquiredAt),
		Bands:       bands,
		QA:          qa,
		CloudCover:  spec.CloudCover,
		QualityFlag: spec.QualityFlag,
		RadSatClear: spec.RadSatClear,
	}
}

// CleanScene builds a best-quality, cloud-free TM scene with the given raw
// band values, acquired mid-year.
func (k *Kit) CleanScene(year int, bandValues map[string]float64) scene.Scene {
	return k.Scene(SceneSpec{
		Family:      scene.FamilyTM,
		AcquiredAt:  time.Date(year, time.July, 15, 18, 30, 0, 0, time.UTC),
		CloudCover:  5,
		QualityFlag: scene.QualityBest,
		RadSatClear: true,
		BandValues:  bandValues,
	})
}

// ReflectanceDN inverts the optical calibration so that normalization yields
// the target surface reflectance.
func ReflectanceDN(target float64) float64 {
	return (target - normalize.OpticalOffset) / normalize.OpticalScale
}

// ThermalDN inverts the thermal calibration so that normalization yields the
// target kelvin value.
func ThermalDN(targetKelvin float64) float64 {
	return (targetKelvin - normalize.ThermalOffset) / normalize.ThermalScale
}

// NDVIBandValues returns raw TM band values whose normalized NDVI equals the
// target. Red reflectance is held at 0.1 and NIR solved from the target.
func NDVIBandValues(targetNDVI float64) map[string]float64 {
	const red = 0.1
	// ndvi = (nir-red)/(nir+red)  =>  nir = red*(1+ndvi)/(1-ndvi)
	nir := red * (1 + targetNDVI) / (1 - targetNDVI)
	return map[string]float64{
		scene.TMRed: ReflectanceDN(red),
		scene.TMNIR: ReflectanceDN(nir),
	}
}

func rectangle(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY},
		{maxX, minY},
		{maxX, maxY},
		{minX, maxY},
		{minX, minY},
	}}
}

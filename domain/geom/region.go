package geom

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Region is the study-area boundary the whole analysis is clipped to.
type Region struct {
	Name     string
	Boundary orb.MultiPolygon
}

// NewRegion builds a region from a single polygon boundary.
func NewRegion(name string, boundary orb.Polygon) Region {
	return Region{Name: name, Boundary: orb.MultiPolygon{boundary}}
}

// Contains reports whether a planar point lies inside the region boundary.
func (r Region) Contains(x, y float64) bool {
	return planar.MultiPolygonContains(r.Boundary, orb.Point{x, y})
}

// Bound returns the bounding box of the region.
func (r Region) Bound() orb.Bound {
	return r.Boundary.Bound()
}

// IsEmpty reports whether the region has no boundary geometry.
func (r Region) IsEmpty() bool {
	return len(r.Boundary) == 0
}

// Tract is one census-tract polygon keyed by its GEOID, used for zonal
// statistics over the finished raster products.
type Tract struct {
	GEOID    string
	Boundary orb.MultiPolygon
}

// Contains reports whether a planar point lies inside the tract.
func (t Tract) Contains(x, y float64) bool {
	return planar.MultiPolygonContains(t.Boundary, orb.Point{x, y})
}

// LoadRegion reads a region boundary from a GeoJSON file. The first feature
// with polygonal geometry wins; its "name" property, when present, names the
// region.
func LoadRegion(path string) (Region, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Region{}, fmt.Errorf("failed to read region file: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return Region{}, fmt.Errorf("failed to parse region GeoJSON: %w", err)
	}
	for _, f := range fc.Features {
		mp, ok := asMultiPolygon(f.Geometry)
		if !ok {
			continue
		}
		name := f.Properties.MustString("name", "study-area")
		return Region{Name: name, Boundary: mp}, nil
	}
	return Region{}, fmt.Errorf("no polygon feature in %s", path)
}

// LoadTracts reads tract polygons from a GeoJSON feature collection. Features
// without a GEOID property or without polygonal geometry are skipped.
func LoadTracts(path string) ([]Tract, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracts file: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tracts GeoJSON: %w", err)
	}
	var tracts []Tract
	for _, f := range fc.Features {
		geoid := f.Properties.MustString("GEOID", "")
		if geoid == "" {
			continue
		}
		mp, ok := asMultiPolygon(f.Geometry)
		if !ok {
			continue
		}
		tracts = append(tracts, Tract{GEOID: geoid, Boundary: mp})
	}
	if len(tracts) == 0 {
		return nil, fmt.Errorf("no tract polygons in %s", path)
	}
	return tracts, nil
}

func asMultiPolygon(g orb.Geometry) (orb.MultiPolygon, bool) {
	switch geom := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{geom}, true
	case orb.MultiPolygon:
		return geom, true
	default:
		return nil, false
	}
}

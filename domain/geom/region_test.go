package geom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func TestRegionContains(t *testing.T) {
	r := NewRegion("box", square(0, 0, 100, 100))

	if !r.Contains(50, 50) {
		t.Error("interior point should be contained")
	}
	if r.Contains(150, 50) {
		t.Error("exterior point should not be contained")
	}
	if r.IsEmpty() {
		t.Error("region with geometry is not empty")
	}
	if (Region{}).Contains(50, 50) {
		t.Error("empty region contains nothing")
	}
}

func TestLoadRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.geojson")
	payload := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "chicago"},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}}
		]
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRegion(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "chicago" {
		t.Errorf("name = %q", r.Name)
	}
	if !r.Contains(5, 5) {
		t.Error("loaded boundary should contain its interior")
	}
}

func TestLoadRegionNoPolygon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.geojson")
	payload := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {},
			 "geometry": {"type": "Point", "coordinates": [1, 1]}}
		]
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRegion(path); err == nil {
		t.Error("expected an error for a collection without polygons")
	}
}

func TestLoadTracts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracts.geojson")
	payload := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"GEOID": "17031010100"},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[5,0],[5,5],[0,5],[0,0]]]}},
			{"type": "Feature", "properties": {"GEOID": "17031010200"},
			 "geometry": {"type": "MultiPolygon", "coordinates": [[[[5,0],[10,0],[10,5],[5,5],[5,0]]]]}},
			{"type": "Feature", "properties": {},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}
		]
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	tracts, err := LoadTracts(path)
	if err != nil {
		t.Fatal(err)
	}
	// The feature without a GEOID is skipped.
	if len(tracts) != 2 {
		t.Fatalf("got %d tracts, want 2", len(tracts))
	}
	if tracts[0].GEOID != "17031010100" {
		t.Errorf("GEOID = %q", tracts[0].GEOID)
	}
	if !tracts[1].Contains(7, 2) {
		t.Error("multipolygon tract should contain its interior")
	}
}

func TestLoadTractsMissingFile(t *testing.T) {
	if _, err := LoadTracts(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

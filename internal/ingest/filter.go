// Package ingest selects and cleans raw archive scenes: scene-level QC
// filters, per-pixel cloud masking from the QA band, and band-name
// harmonization across sensor families.
package ingest

import (
	"context"
	"log"
	"sort"

	"landtrend/domain/raster"
	"landtrend/domain/scene"
	"landtrend/ports"
)

// QCConfig holds the quality constraints a scene must meet to enter the
// pipeline.
type QCConfig struct {
	// MaxCloudCover rejects scenes at or above this percentage.
	MaxCloudCover float64
	// RequireBestQuality rejects scenes whose quality flag is not the
	// sensor's best value.
	RequireBestQuality bool
	// RequireRadSatClear rejects scenes with any saturation flag set.
	RequireRadSatClear bool
}

// DefaultQCConfig returns the reference configuration: cloud cover below 50%,
// best-quality scenes only, saturation flags clear.
func DefaultQCConfig() QCConfig {
	return QCConfig{
		MaxCloudCover:      50,
		RequireBestQuality: true,
		RequireRadSatClear: true,
	}
}

// Filter applies QC constraints and harmonization to archive scenes.
type Filter struct {
	cfg QCConfig
}

// NewFilter creates a filter with the given QC configuration.
func NewFilter(cfg QCConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Select queries the archive for both requested sensor families, applies the
// QC filter to each result, and returns the union sorted by acquisition time.
// An empty result is not an error; downstream stages tolerate empty input.
func (f *Filter) Select(ctx context.Context, archive ports.SceneArchive, q ports.SceneQuery, families []scene.SensorFamily) ([]scene.Scene, error) {
	var all []scene.Scene
	for _, fam := range families {
		fq := q
		fq.Family = fam
		fq.MaxCloudCover = f.cfg.MaxCloudCover
		scenes, err := archive.Query(ctx, fq)
		if err != nil {
			return nil, err
		}
		all = append(all, f.Apply(scenes)...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].AcquiredAt.Before(all[j].AcquiredAt)
	})
	return all, nil
}

// Apply runs the scene-level QC filter, masks occluded pixels via the QA
// band, and harmonizes band names. Input scenes are never mutated; surviving
// scenes are returned as cleaned copies.
func (f *Filter) Apply(scenes []scene.Scene) []scene.Scene {
	out := make([]scene.Scene, 0, len(scenes))
	for _, s := range scenes {
		if !f.accept(s) {
			continue
		}
		out = append(out, f.clean(s))
	}
	if dropped := len(scenes) - len(out); dropped > 0 {
		log.Printf("[ingest] dropped %d of %d scenes on QC filters", dropped, len(scenes))
	}
	return out
}

func (f *Filter) accept(s scene.Scene) bool {
	if s.Validate() != nil {
		return false
	}
	if f.cfg.MaxCloudCover > 0 && s.CloudCover >= f.cfg.MaxCloudCover {
		return false
	}
	if f.cfg.RequireBestQuality && s.QualityFlag != scene.QualityBest {
		return false
	}
	if f.cfg.RequireRadSatClear && !s.RadSatClear {
		return false
	}
	return true
}

// clean copies the scene, masks pixels under cloud / shadow / dilated-cloud
// QA bits, and renames bands to the common scheme. Occluded pixels are masked
// invalid rather than dropping the scene.
func (f *Filter) clean(s scene.Scene) scene.Scene {
	harmonized := raster.NewBandStack()
	for _, raw := range s.Bands.Names() {
		g := s.Bands.Band(raw).Copy()
		if s.QA != nil {
			maskOccluded(g, s.QA)
		}
		// Add cannot fail here: copies preserve the source stack's shape.
		_ = harmonized.Add(scene.HarmonizedBandName(s.Sensor, raw), g)
	}
	cleaned := s
	cleaned.Bands = harmonized
	return cleaned
}

func maskOccluded(g *raster.Grid, qa *raster.Bitmask) {
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			if qa.AnySet(col, row, scene.QAOcclusionBits) {
				g.Mask(col, row)
			}
		}
	}
}

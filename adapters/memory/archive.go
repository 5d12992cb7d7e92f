// Package memory provides an in-memory scene archive for tests, demos and
// single-process runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"landtrend/domain/scene"
	"landtrend/ports"
)

// Archive is an in-memory ports.SceneArchive. Safe for concurrent queries.
type Archive struct {
	mu     sync.RWMutex
	scenes []scene.Scene
}

// NewArchive creates an archive preloaded with the given scenes.
func NewArchive(scenes []scene.Scene) *Archive {
	a := &Archive{}
	a.Add(scenes...)
	return a
}

// Add appends scenes to the archive.
func (a *Archive) Add(scenes ...scene.Scene) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scenes = append(a.scenes, scenes...)
}

// Query applies the scene-level metadata filters and geometry intersection.
// No intersecting scenes yields an empty slice, not an error.
func (a *Archive) Query(ctx context.Context, q ports.SceneQuery) ([]scene.Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []scene.Scene
	for _, s := range a.scenes {
		if s.Sensor != q.Family {
			continue
		}
		t := s.AcquiredAt.Time()
		if t.Before(q.Start) || !t.Before(q.End) {
			continue
		}
		if q.MaxCloudCover > 0 && s.CloudCover >= q.MaxCloudCover {
			continue
		}
		if !intersectsRegion(s, q) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AcquiredAt.Before(out[j].AcquiredAt)
	})
	return out, nil
}

// intersectsRegion checks bounding-box overlap between the scene footprint
// and the query region.
func intersectsRegion(s scene.Scene, q ports.SceneQuery) bool {
	if q.Region.IsEmpty() {
		return true
	}
	names := s.Bands.Names()
	if len(names) == 0 {
		return false
	}
	g := s.Bands.Band(names[0])
	b := q.Region.Bound()

	minX := g.OriginX
	maxX := g.OriginX + float64(g.Width)*g.CellSize
	maxY := g.OriginY
	minY := g.OriginY - float64(g.Height)*g.CellSize

	return minX < b.Max[0] && maxX > b.Min[0] && minY < b.Max[1] && maxY > b.Min[1]
}

package ports

import (
	"context"
	"time"

	"landtrend/domain/geom"
	"landtrend/domain/scene"
)

// SceneQuery selects raw scenes from a sensor archive. The archive applies
// the scene-level metadata filters; per-pixel QA masking happens downstream
// in the ingestion stage.
type SceneQuery struct {
	Region geom.Region
	Start  time.Time
	End    time.Time
	Family scene.SensorFamily

	// Bands restricts which raw bands the archive must deliver. Empty means
	// every band the family provides.
	Bands []string

	// MaxCloudCover drops scenes at or above this cloud percentage.
	// Zero means no cloud filter at the archive.
	MaxCloudCover float64
}

// SceneArchive is the external sensor-scene archive, queryable by geometry,
// date range and metadata filters. A query with no intersecting scenes
// returns an empty slice, never an error.
type SceneArchive interface {
	Query(ctx context.Context, q SceneQuery) ([]scene.Scene, error)
}

package ports

import (
	"context"
	"time"

	"landtrend/domain/core"
	"landtrend/domain/product"
)

// ProductSummary is the catalog view of a stored product raster.
type ProductSummary struct {
	Name      core.ProductName `json:"name"`
	Metric    string           `json:"metric"`
	Kind      product.Kind     `json:"kind"`
	RunID     core.RunID       `json:"run_id"`
	CreatedAt time.Time        `json:"created_at"`
	BandCount int              `json:"band_count"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	CellSize  float64          `json:"cell_size"`
}

// ProductStore persists finalized raster products and serves them back by
// their stable names. Publish must be all-or-nothing: a product is either
// fully stored or absent, never partial.
type ProductStore interface {
	Publish(ctx context.Context, r *product.Raster) error
	Get(ctx context.Context, name core.ProductName) (*product.Raster, error)
	List(ctx context.Context) ([]ProductSummary, error)
}

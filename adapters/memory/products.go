package memory

import (
	"context"
	"sort"
	"sync"

	"landtrend/domain/core"
	"landtrend/domain/product"
	"landtrend/internal/errors"
	"landtrend/ports"
)

// ProductStore is an in-memory ports.ProductStore. Publish replaces any
// previous product under the same name atomically.
type ProductStore struct {
	mu       sync.RWMutex
	products map[core.ProductName]*product.Raster
}

// NewProductStore creates an empty in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[core.ProductName]*product.Raster)}
}

// Publish validates and stores a finalized product.
func (s *ProductStore) Publish(ctx context.Context, r *product.Raster) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return errors.Wrapf(err, "refusing to publish product %s", r.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[r.Name] = r
	return nil
}

// Get returns the product stored under name.
func (s *ProductStore) Get(ctx context.Context, name core.ProductName) (*product.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.products[name]
	if !ok {
		return nil, errors.NotFound("product " + name.String())
	}
	return r, nil
}

// List returns catalog summaries sorted by product name.
func (s *ProductStore) List(ctx context.Context) ([]ports.ProductSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ports.ProductSummary, 0, len(s.products))
	for _, r := range s.products {
		g := r.Grid()
		out = append(out, ports.ProductSummary{
			Name:      r.Name,
			Metric:    r.Metric,
			Kind:      r.Kind,
			RunID:     r.RunID,
			CreatedAt: r.CreatedAt.Time(),
			BandCount: len(r.Bands),
			Width:     g.Width,
			Height:    g.Height,
			CellSize:  g.CellSize,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Package postgres persists finalized raster products: a catalog row per
// product and one row per band with label, timestamp and the binary pixel
// payload.
package postgres

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"landtrend/domain/core"
	"landtrend/domain/product"
	"landtrend/domain/raster"
	"landtrend/internal/errors"
	"landtrend/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	name       TEXT PRIMARY KEY,
	metric     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	run_id     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	cell_size  DOUBLE PRECISION NOT NULL,
	origin_x   DOUBLE PRECISION NOT NULL,
	origin_y   DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS product_bands (
	product_name   TEXT NOT NULL REFERENCES products(name) ON DELETE CASCADE,
	band_index     INTEGER NOT NULL,
	label          TEXT NOT NULL,
	band_timestamp TIMESTAMPTZ NOT NULL,
	pixel_values   BYTEA NOT NULL,
	validity       BYTEA NOT NULL,
	PRIMARY KEY (product_name, band_index)
);`

// productRepository implements ports.ProductStore on Postgres
type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository connects to Postgres and ensures the product schema.
func NewProductRepository(databaseURL string) (ports.ProductStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to product database")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "failed to ensure product schema")
	}
	return &productRepository{db: db}, nil
}

// NewProductRepositoryWithDB wraps an existing connection (used by tests).
func NewProductRepositoryWithDB(db *sqlx.DB) ports.ProductStore {
	return &productRepository{db: db}
}

// Publish stores a finalized product in one transaction, replacing any
// previous product under the same name. A failed transaction leaves the
// catalog untouched: no partial product is ever visible.
func (r *productRepository) Publish(ctx context.Context, p *product.Raster) error {
	if err := p.Validate(); err != nil {
		return errors.Wrapf(err, "refusing to publish product %s", p.Name)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin publish transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE name = $1`, p.Name.String()); err != nil {
		return errors.Wrapf(err, "failed to clear previous product %s", p.Name)
	}

	g := p.Grid()
	_, err = tx.ExecContext(ctx, `INSERT INTO products (
		name, metric, kind, run_id, created_at, width, height, cell_size, origin_x, origin_y
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.Name.String(), p.Metric, string(p.Kind), p.RunID.String(), p.CreatedAt.Time(),
		g.Width, g.Height, g.CellSize, g.OriginX, g.OriginY,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to insert product %s", p.Name)
	}

	for _, b := range p.Bands {
		_, err = tx.ExecContext(ctx, `INSERT INTO product_bands (
			product_name, band_index, label, band_timestamp, pixel_values, validity
		) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.Name.String(), b.Index, b.Label, b.Timestamp.Time(),
			encodeValues(b.Grid.Values()), b.Grid.ValidityBytes(),
		)
		if err != nil {
			return errors.Wrapf(err, "failed to insert band %d of product %s", b.Index, p.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "failed to commit product %s", p.Name)
	}
	return nil
}

// Get loads a product and all of its bands.
func (r *productRepository) Get(ctx context.Context, name core.ProductName) (*product.Raster, error) {
	var row struct {
		Name      string    `db:"name"`
		Metric    string    `db:"metric"`
		Kind      string    `db:"kind"`
		RunID     string    `db:"run_id"`
		CreatedAt time.Time `db:"created_at"`
		Width     int       `db:"width"`
		Height    int       `db:"height"`
		CellSize  float64   `db:"cell_size"`
		OriginX   float64   `db:"origin_x"`
		OriginY   float64   `db:"origin_y"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT name, metric, kind, run_id, created_at,
		width, height, cell_size, origin_x, origin_y FROM products WHERE name = $1`, name.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product " + name.String())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load product %s", name)
	}

	p := &product.Raster{
		Name:      core.ProductName(row.Name),
		Metric:    row.Metric,
		Kind:      product.Kind(row.Kind),
		RunID:     core.RunID(row.RunID),
		CreatedAt: core.NewTimestamp(row.CreatedAt),
	}

	bands, err := r.db.QueryContext(ctx, `SELECT band_index, label, band_timestamp, pixel_values, validity
		FROM product_bands WHERE product_name = $1 ORDER BY band_index`, name.String())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load bands of product %s", name)
	}
	defer bands.Close()

	for bands.Next() {
		var (
			index    int
			label    string
			ts       time.Time
			payload  []byte
			validity []byte
		)
		if err := bands.Scan(&index, &label, &ts, &payload, &validity); err != nil {
			return nil, errors.Wrapf(err, "failed to scan band of product %s", name)
		}
		g := raster.NewGrid(row.Width, row.Height, row.CellSize, row.OriginX, row.OriginY)
		values, err := decodeValues(payload, row.Width*row.Height)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt pixel payload in product %s band %d", name, index)
		}
		if err := g.RestoreValues(values, validity); err != nil {
			return nil, errors.Wrapf(err, "corrupt band %d of product %s", index, name)
		}
		p.Bands = append(p.Bands, product.Band{
			Index:     index,
			Label:     label,
			Timestamp: core.NewTimestamp(ts),
			Grid:      g,
		})
	}
	if err := bands.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read bands of product %s", name)
	}
	if len(p.Bands) == 0 {
		return nil, errors.StoreError(fmt.Sprintf("product %s has no bands", name))
	}
	return p, nil
}

// List returns catalog summaries ordered by name.
func (r *productRepository) List(ctx context.Context) ([]ports.ProductSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT p.name, p.metric, p.kind, p.run_id, p.created_at,
		p.width, p.height, p.cell_size, COUNT(b.band_index)
		FROM products p LEFT JOIN product_bands b ON b.product_name = p.name
		GROUP BY p.name ORDER BY p.name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	defer rows.Close()

	var out []ports.ProductSummary
	for rows.Next() {
		var s ports.ProductSummary
		var name, kind, runID string
		if err := rows.Scan(&name, &s.Metric, &kind, &runID, &s.CreatedAt,
			&s.Width, &s.Height, &s.CellSize, &s.BandCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan product summary")
		}
		s.Name = core.ProductName(name)
		s.Kind = product.Kind(kind)
		s.RunID = core.RunID(runID)
		out = append(out, s)
	}
	return out, rows.Err()
}

func encodeValues(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeValues(buf []byte, n int) ([]float64, error) {
	if len(buf) != 8*n {
		return nil, fmt.Errorf("expected %d bytes, got %d", 8*n, len(buf))
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return values, nil
}

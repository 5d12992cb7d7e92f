package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landtrend/adapters/memory"
	"landtrend/domain/geom"
	"landtrend/internal/ingest"
	"landtrend/internal/testkit"
	"landtrend/ports"
)

type captureSink struct {
	records []ports.TractRecord
}

func (c *captureSink) WriteTable(ctx context.Context, records []ports.TractRecord) error {
	c.records = records
	return nil
}

func TestZonalServiceOverPublishedProducts(t *testing.T) {
	kit := testkit.NewKit(8, 8, 30)
	store := memory.NewProductStore()
	pipeline := NewPipeline(endToEndArchive(kit), store, ingest.DefaultQCConfig())

	_, err := pipeline.Run(context.Background(), RunParams{
		StartYear:   1990,
		EndYear:     1995,
		WindowYears: 3,
	})
	require.NoError(t, err)

	sink := &captureSink{}
	service := NewZonalService(store, sink)
	records, err := service.Run(context.Background(), ZonalParams{
		Tracts: []geom.Tract{
			kit.TractSquare("west", 0, 0, 120, 240),
			kit.TractSquare("east", 120, 0, 240, 240),
		},
		SeriesBand: -1,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, records, sink.records)

	for _, rec := range records {
		assert.InDelta(t, 0.06, rec.BandMedians["ndvi_sen_slope"], 1e-9, rec.GEOID)
		// SeriesBand -1 selects the last window.
		assert.InDelta(t, 0.18, rec.MedianNDVI, 1e-9, rec.GEOID)
		assert.InDelta(t, 295.2, rec.MedianLST, 1e-6, rec.GEOID)
	}
}

func TestZonalServiceRequiresTracts(t *testing.T) {
	service := NewZonalService(memory.NewProductStore(), &captureSink{})
	_, err := service.Run(context.Background(), ZonalParams{})
	require.Error(t, err)
}

func TestZonalServiceMissingProducts(t *testing.T) {
	kit := testkit.NewKit(4, 4, 30)
	service := NewZonalService(memory.NewProductStore(), &captureSink{})
	_, err := service.Run(context.Background(), ZonalParams{
		Tracts: []geom.Tract{kit.TractSquare("t", 0, 0, 120, 120)},
	})
	require.Error(t, err)
}

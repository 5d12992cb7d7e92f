package app

import (
	"context"

	"landtrend/domain/geom"
	"landtrend/domain/raster"
	"landtrend/internal"
	"landtrend/internal/assemble"
	"landtrend/internal/errors"
	"landtrend/internal/zonal"
	"landtrend/ports"
)

// ZonalParams selects the inputs of a zonal aggregation over published
// products.
type ZonalParams struct {
	Tracts []geom.Tract

	// SeriesBand picks the time-series window the NDVI/LST medians are read
	// from. Negative means the last window.
	SeriesBand int

	// Classes is the optional land-cover classification raster.
	Classes *raster.Grid
	Codes   zonal.ClassCodes
}

// ZonalService aggregates published trend products over tract polygons and
// writes the resulting table to a sink.
type ZonalService struct {
	store  ports.ProductStore
	sink   ports.ZonalSink
	logger *internal.Logger
}

// NewZonalService creates the service over a product store and a table sink.
func NewZonalService(store ports.ProductStore, sink ports.ZonalSink) *ZonalService {
	return &ZonalService{
		store:  store,
		sink:   sink,
		logger: internal.DefaultLogger.Component("zonal"),
	}
}

// Run fetches the four published products, collects per-tract statistics, and
// writes the table. The time-series products are optional; their medians are
// simply absent when unpublished.
func (s *ZonalService) Run(ctx context.Context, params ZonalParams) ([]ports.TractRecord, error) {
	if len(params.Tracts) == 0 {
		return nil, errors.InvalidInput("zonal aggregation requires tract polygons")
	}

	ndviTrend, err := s.store.Get(ctx, assemble.TrendStatsName("ndvi"))
	if err != nil {
		return nil, errors.Wrap(err, "ndvi trend-stats product unavailable")
	}
	lstTrend, err := s.store.Get(ctx, assemble.TrendStatsName("lst"))
	if err != nil {
		return nil, errors.Wrap(err, "lst trend-stats product unavailable")
	}

	in := zonal.Inputs{
		NDVITrend: ndviTrend,
		LSTTrend:  lstTrend,
		Classes:   params.Classes,
		Codes:     params.Codes,
		Tracts:    params.Tracts,
	}
	if ndviSeries, err := s.store.Get(ctx, assemble.TimeSeriesName("ndvi")); err == nil {
		in.NDVISeries = ndviSeries
	}
	if lstSeries, err := s.store.Get(ctx, assemble.TimeSeriesName("lst")); err == nil {
		in.LSTSeries = lstSeries
	}

	in.SeriesBand = params.SeriesBand
	if in.SeriesBand < 0 {
		in.SeriesBand = 0
		if in.NDVISeries != nil {
			in.SeriesBand = len(in.NDVISeries.Bands) - 1
		} else if in.LSTSeries != nil {
			in.SeriesBand = len(in.LSTSeries.Bands) - 1
		}
	}

	records, err := zonal.Collect(in)
	if err != nil {
		return nil, err
	}
	if err := s.sink.WriteTable(ctx, records); err != nil {
		return nil, errors.Wrap(err, "failed to write zonal table")
	}
	s.logger.Info("wrote zonal table for %d tracts", len(records))
	return records, nil
}

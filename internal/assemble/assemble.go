// Package assemble reshapes trend statistics and windowed composites into the
// two exportable raster products, clipped to the study-area geometry.
package assemble

import (
	"fmt"
	"time"

	"landtrend/domain/composite"
	"landtrend/domain/core"
	"landtrend/domain/geom"
	"landtrend/domain/product"
	"landtrend/domain/raster"
	"landtrend/domain/trend"
)

// TrendStatsName returns the stable product name for a metric's
// trend-statistics raster.
func TrendStatsName(metric string) core.ProductName {
	return core.ProductName(fmt.Sprintf("%s_trend_stats", metric))
}

// TimeSeriesName returns the stable product name for a metric's time-series
// raster.
func TimeSeriesName(metric string) core.ProductName {
	return core.ProductName(fmt.Sprintf("%s_time_series", metric))
}

// TrendStats builds the trend-statistics product for one metric: one band per
// statistic, labelled, clipped to the region. The band timestamp is the last
// window's representative time, giving consumers the end of the fitted range.
func TrendStats(runID core.RunID, region geom.Region, stats *trend.Stats, seq *composite.Sequence) (*product.Raster, error) {
	if seq.Len() == 0 {
		return nil, fmt.Errorf("metric %s: empty window sequence", stats.Metric)
	}
	lastTS := seq.At(seq.Len() - 1).Timestamp

	r := &product.Raster{
		Name:      TrendStatsName(stats.Metric),
		Metric:    stats.Metric,
		Kind:      product.KindTrendStats,
		RunID:     runID,
		CreatedAt: core.NewTimestamp(time.Now()),
	}
	for i, b := range stats.Bands() {
		r.Bands = append(r.Bands, product.Band{
			Index:     i,
			Label:     b.Label,
			Timestamp: lastTS,
			Grid:      ClipToRegion(b.Grid, region),
		})
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// TimeSeries builds the time-series product for one metric: one band per
// window in chronological order, labelled by window and timestamped by the
// window's representative time, clipped to the region.
func TimeSeries(runID core.RunID, region geom.Region, seq *composite.Sequence, band string) (*product.Raster, error) {
	grids, err := seq.BandSeries(band)
	if err != nil {
		return nil, err
	}
	if len(grids) == 0 {
		return nil, fmt.Errorf("metric %s: empty window sequence", seq.Metric)
	}

	r := &product.Raster{
		Name:      TimeSeriesName(seq.Metric),
		Metric:    seq.Metric,
		Kind:      product.KindTimeSeries,
		RunID:     runID,
		CreatedAt: core.NewTimestamp(time.Now()),
	}
	for i, g := range grids {
		w := seq.At(i)
		r.Bands = append(r.Bands, product.Band{
			Index:     i,
			Label:     w.Label,
			Timestamp: w.Timestamp,
			Grid:      ClipToRegion(g, region),
		})
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// ClipToRegion masks every pixel whose center falls outside the region
// boundary. An empty region leaves the grid unclipped.
func ClipToRegion(g *raster.Grid, region geom.Region) *raster.Grid {
	out := g.Copy()
	if region.IsEmpty() {
		return out
	}
	for row := 0; row < out.Height; row++ {
		for col := 0; col < out.Width; col++ {
			x, y := out.CellCenter(col, row)
			if !region.Contains(x, y) {
				out.Mask(col, row)
			}
		}
	}
	return out
}

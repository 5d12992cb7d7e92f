// Package zonal aggregates finished raster products over tract polygons:
// per-tract medians of the trend-statistics bands, median NDVI/LST for a
// chosen time-series window, and land-cover class areas.
package zonal

import (
	"fmt"
	"log"

	"github.com/montanaflynn/stats"

	"landtrend/domain/geom"
	"landtrend/domain/product"
	"landtrend/domain/raster"
	"landtrend/ports"
)

// ClassCodes maps land-cover classes to the small integer codes used by the
// classification raster.
type ClassCodes struct {
	Green int
	Water int
	Urban int
}

// DefaultClassCodes matches the reference classification raster.
func DefaultClassCodes() ClassCodes {
	return ClassCodes{Green: 1, Water: 2, Urban: 3}
}

// Inputs gathers everything one zonal collection run needs.
type Inputs struct {
	NDVITrend *product.Raster
	LSTTrend  *product.Raster

	NDVISeries *product.Raster
	LSTSeries  *product.Raster
	// SeriesBand selects which time-series band (window) the NDVI/LST
	// medians are read from.
	SeriesBand int

	// Classes is the land-cover classification raster; nil skips area
	// tallies.
	Classes *raster.Grid
	Codes   ClassCodes

	Tracts []geom.Tract
}

// Collect builds the zonal-statistics table, one record per tract. Tracts
// that intersect no valid pixels still appear, with empty medians.
func Collect(in Inputs) ([]ports.TractRecord, error) {
	if in.NDVITrend == nil || in.LSTTrend == nil {
		return nil, fmt.Errorf("zonal collection needs both trend-statistics products")
	}
	if len(in.Tracts) == 0 {
		return nil, fmt.Errorf("no tracts to aggregate over")
	}

	records := make([]ports.TractRecord, 0, len(in.Tracts))
	for _, tract := range in.Tracts {
		rec := ports.TractRecord{
			GEOID:       tract.GEOID,
			BandMedians: make(map[string]float64),
		}

		collectBandMedians(&rec, in.NDVITrend, tract)
		collectBandMedians(&rec, in.LSTTrend, tract)

		if in.NDVISeries != nil {
			if v, ok := seriesMedian(in.NDVISeries, in.SeriesBand, tract); ok {
				rec.MedianNDVI = v
			}
		}
		if in.LSTSeries != nil {
			if v, ok := seriesMedian(in.LSTSeries, in.SeriesBand, tract); ok {
				rec.MedianLST = v
			}
		}

		if in.Classes != nil {
			green, water, urban := classAreas(in.Classes, in.Codes, tract)
			rec.GreenArea = green
			rec.WaterArea = water
			rec.UrbanArea = urban
		}

		records = append(records, rec)
	}
	log.Printf("[zonal] collected statistics for %d tracts", len(records))
	return records, nil
}

func collectBandMedians(rec *ports.TractRecord, r *product.Raster, tract geom.Tract) {
	for _, b := range r.Bands {
		if v, ok := tractMedian(b.Grid, tract); ok {
			rec.BandMedians[fmt.Sprintf("%s_%s", r.Metric, b.Label)] = v
		}
	}
}

func seriesMedian(r *product.Raster, band int, tract geom.Tract) (float64, bool) {
	if band < 0 || band >= len(r.Bands) {
		return 0, false
	}
	return tractMedian(r.Bands[band].Grid, tract)
}

// tractMedian computes the median of valid pixels whose centers fall inside
// the tract. The tract's bounding box limits the scan.
func tractMedian(g *raster.Grid, tract geom.Tract) (float64, bool) {
	values := collectValues(g, tract)
	if len(values) == 0 {
		return 0, false
	}
	med, err := stats.Median(values)
	if err != nil {
		return 0, false
	}
	return med, true
}

func collectValues(g *raster.Grid, tract geom.Tract) []float64 {
	colMin, colMax, rowMin, rowMax, ok := cellRange(g, tract)
	if !ok {
		return nil
	}
	var values []float64
	for row := rowMin; row <= rowMax; row++ {
		for col := colMin; col <= colMax; col++ {
			v, valid := g.At(col, row)
			if !valid {
				continue
			}
			x, y := g.CellCenter(col, row)
			if tract.Contains(x, y) {
				values = append(values, v)
			}
		}
	}
	return values
}

func classAreas(classes *raster.Grid, codes ClassCodes, tract geom.Tract) (green, water, urban float64) {
	colMin, colMax, rowMin, rowMax, ok := cellRange(classes, tract)
	if !ok {
		return 0, 0, 0
	}
	area := classes.CellArea()
	for row := rowMin; row <= rowMax; row++ {
		for col := colMin; col <= colMax; col++ {
			v, valid := classes.At(col, row)
			if !valid {
				continue
			}
			x, y := classes.CellCenter(col, row)
			if !tract.Contains(x, y) {
				continue
			}
			switch int(v) {
			case codes.Green:
				green += area
			case codes.Water:
				water += area
			case codes.Urban:
				urban += area
			}
		}
	}
	return green, water, urban
}

// cellRange clamps the tract's bounding box to grid pixel indices.
func cellRange(g *raster.Grid, tract geom.Tract) (colMin, colMax, rowMin, rowMax int, ok bool) {
	bound := tract.Boundary.Bound()

	// Bounding box corners to pixel space; the scan clamps to grid edges.
	colMin = int((bound.Min[0] - g.OriginX) / g.CellSize)
	colMax = int((bound.Max[0] - g.OriginX) / g.CellSize)
	rowMin = int((g.OriginY - bound.Max[1]) / g.CellSize)
	rowMax = int((g.OriginY - bound.Min[1]) / g.CellSize)

	if colMin < 0 {
		colMin = 0
	}
	if rowMin < 0 {
		rowMin = 0
	}
	if colMax >= g.Width {
		colMax = g.Width - 1
	}
	if rowMax >= g.Height {
		rowMax = g.Height - 1
	}
	if colMin > colMax || rowMin > rowMax {
		return 0, 0, 0, 0, false
	}
	return colMin, colMax, rowMin, rowMax, true
}

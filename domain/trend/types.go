package trend

import (
	"fmt"

	"landtrend/domain/raster"
)

// Band labels for the trend-statistics product, in product band order.
// The labels double as band descriptions so a downstream consumer can
// identify each statistic without external lookup.
const (
	LabelCovariance  = "covariance"
	LabelCorrelation = "correlation"
	LabelSlope       = "slope"
	LabelIntercept   = "intercept"
	LabelTStat       = "t_stat"
	LabelStdErr      = "std_err"
	LabelSenSlope    = "sen_slope"
	LabelPValue      = "p_value"
)

// PixelTrend holds every per-pixel statistic the estimator produces for one
// band of one pixel. Valid is false when fewer than two valid observations
// were available, in which case no field is meaningful.
type PixelTrend struct {
	N int

	// Ordinary least squares of value on window ordinal.
	Slope       float64
	Intercept   float64
	Covariance  float64
	Correlation float64
	TStat       float64
	StdErr      float64

	// Mann-Kendall / Theil-Sen.
	S        int
	VarS     float64
	Z        float64
	PValue   float64
	SenSlope float64

	Valid bool
}

// Stats is the raster-wide trend result for one metric: one grid per
// statistic, all sharing the metric's pixel grid. Pixels with insufficient
// samples stay masked in every grid.
type Stats struct {
	Metric string

	Covariance  *raster.Grid
	Correlation *raster.Grid
	Slope       *raster.Grid
	Intercept   *raster.Grid
	TStat       *raster.Grid
	StdErr      *raster.Grid
	SenSlope    *raster.Grid
	PValue      *raster.Grid
}

// NewStats allocates masked statistic grids shaped like the reference grid.
func NewStats(metric string, ref *raster.Grid) *Stats {
	return &Stats{
		Metric:      metric,
		Covariance:  ref.CloneShape(),
		Correlation: ref.CloneShape(),
		Slope:       ref.CloneShape(),
		Intercept:   ref.CloneShape(),
		TStat:       ref.CloneShape(),
		StdErr:      ref.CloneShape(),
		SenSlope:    ref.CloneShape(),
		PValue:      ref.CloneShape(),
	}
}

// SetPixel writes one pixel's trend into every statistic grid, or masks the
// pixel everywhere when the trend is invalid.
func (s *Stats) SetPixel(col, row int, t PixelTrend) {
	if !t.Valid {
		s.maskPixel(col, row)
		return
	}
	s.Covariance.Set(col, row, t.Covariance)
	s.Correlation.Set(col, row, t.Correlation)
	s.Slope.Set(col, row, t.Slope)
	s.Intercept.Set(col, row, t.Intercept)
	s.TStat.Set(col, row, t.TStat)
	s.StdErr.Set(col, row, t.StdErr)
	s.SenSlope.Set(col, row, t.SenSlope)
	s.PValue.Set(col, row, t.PValue)
}

func (s *Stats) maskPixel(col, row int) {
	s.Covariance.Mask(col, row)
	s.Correlation.Mask(col, row)
	s.Slope.Mask(col, row)
	s.Intercept.Mask(col, row)
	s.TStat.Mask(col, row)
	s.StdErr.Mask(col, row)
	s.SenSlope.Mask(col, row)
	s.PValue.Mask(col, row)
}

// LabeledGrid pairs a statistic grid with its band label.
type LabeledGrid struct {
	Label string
	Grid  *raster.Grid
}

// Bands returns the statistic grids in the fixed product band order.
func (s *Stats) Bands() []LabeledGrid {
	return []LabeledGrid{
		{LabelCovariance, s.Covariance},
		{LabelCorrelation, s.Correlation},
		{LabelSlope, s.Slope},
		{LabelIntercept, s.Intercept},
		{LabelTStat, s.TStat},
		{LabelStdErr, s.StdErr},
		{LabelSenSlope, s.SenSlope},
		{LabelPValue, s.PValue},
	}
}

// BandByLabel returns the named statistic grid.
func (s *Stats) BandByLabel(label string) (*raster.Grid, error) {
	for _, b := range s.Bands() {
		if b.Label == label {
			return b.Grid, nil
		}
	}
	return nil, fmt.Errorf("unknown trend statistic %q", label)
}

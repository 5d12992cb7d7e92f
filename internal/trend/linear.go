// Package trend fits per-pixel trends over an ordered composite sequence:
// an ordinary least-squares line and a Mann-Kendall/Theil-Sen robust trend,
// both with the window ordinal as the independent variable.
package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// OLSResult holds the least-squares fit of y on x plus the companion
// statistics the trend-statistics product carries.
type OLSResult struct {
	Slope       float64
	Intercept   float64
	Covariance  float64
	Correlation float64
	TStat       float64
	StdErr      float64
	N           int
}

// FitOLS computes the ordinary least-squares regression of y on x. Callers
// pass only valid observations. Fewer than 2 points yields ok == false.
// With exactly 2 points the fit reproduces the two-point line.
func FitOLS(xs, ys []float64) (OLSResult, bool) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return OLSResult{}, false
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	res := OLSResult{
		Slope:      slope,
		Intercept:  intercept,
		Covariance: stat.Covariance(xs, ys, nil),
		N:          n,
	}

	// Correlation is undefined for a degenerate spread; gonum returns NaN
	// there, which we normalize to 0.
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		r = 0
	}
	res.Correlation = r

	// t statistic and standard error of the slope, as in the classic
	// stats-raster layout. Undefined for n < 3 or a perfect fit.
	if n > 2 && r*r < 1 {
		res.TStat = r * math.Sqrt(float64(n-2)) / math.Sqrt(1-r*r)
		if res.TStat != 0 {
			res.StdErr = slope / res.TStat
		}
	}

	return res, true
}

package trend

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"landtrend/domain/raster"
	"landtrend/domain/trend"
)

// Estimator fits per-pixel trends over a window sequence. Pixels are
// independent, so estimation runs across horizontal row strips in parallel;
// each strip writes a disjoint part of the output, keeping results
// byte-identical across runs regardless of scheduling.
type Estimator struct {
	// Workers caps the number of concurrent strips. Zero means GOMAXPROCS.
	Workers int
}

// NewEstimator creates an estimator with the default worker count.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// EstimatePixel fits one pixel's series. xs are the window ordinals where the
// pixel is valid, ys the matching values. Fewer than 2 observations yields an
// invalid (masked) result.
func EstimatePixel(xs, ys []float64) trend.PixelTrend {
	ols, ok := FitOLS(xs, ys)
	if !ok {
		return trend.PixelTrend{}
	}
	mk, ok := MannKendall(xs, ys)
	if !ok {
		return trend.PixelTrend{}
	}
	return trend.PixelTrend{
		N:           ols.N,
		Slope:       ols.Slope,
		Intercept:   ols.Intercept,
		Covariance:  ols.Covariance,
		Correlation: ols.Correlation,
		TStat:       ols.TStat,
		StdErr:      ols.StdErr,
		S:           mk.S,
		VarS:        mk.VarS,
		Z:           mk.Z,
		PValue:      mk.PValue,
		SenSlope:    mk.SenSlope,
		Valid:       true,
	}
}

// Estimate fits every pixel of the windowed band series. The grids arrive in
// window order; the window ordinal is the independent variable.
func (e *Estimator) Estimate(ctx context.Context, metric string, windows []*raster.Grid) (*trend.Stats, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("metric %s: no windows to fit", metric)
	}
	ref := windows[0]
	for i, g := range windows[1:] {
		if !ref.SameShape(g) {
			return nil, fmt.Errorf("metric %s: window %d shape differs from window 0", metric, i+1)
		}
	}

	stats := trend.NewStats(metric, ref)

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > ref.Height {
		workers = ref.Height
	}
	if workers < 1 {
		workers = 1
	}

	strip := (ref.Height + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < ref.Height; start += strip {
		start := start
		end := start + strip
		if end > ref.Height {
			end = ref.Height
		}
		g.Go(func() error {
			return estimateRows(ctx, windows, stats, start, end)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func estimateRows(ctx context.Context, windows []*raster.Grid, stats *trend.Stats, rowStart, rowEnd int) error {
	width := windows[0].Width
	xs := make([]float64, 0, len(windows))
	ys := make([]float64, 0, len(windows))

	for row := rowStart; row < rowEnd; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for col := 0; col < width; col++ {
			xs = xs[:0]
			ys = ys[:0]
			for i, g := range windows {
				if v, ok := g.At(col, row); ok {
					xs = append(xs, float64(i))
					ys = append(ys, v)
				}
			}
			stats.SetPixel(col, row, EstimatePixel(xs, ys))
		}
	}
	return nil
}

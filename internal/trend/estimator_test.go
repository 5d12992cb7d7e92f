package trend

import (
	"context"
	"math"
	"testing"

	"landtrend/domain/raster"
	domaintrend "landtrend/domain/trend"
)

// linearWindows builds a window series where every pixel follows
// y = base + slope*ordinal, except the pixels listed in masked, which stay
// masked in every window.
func linearWindows(width, height, n int, base, slope float64, masked ...[2]int) []*raster.Grid {
	out := make([]*raster.Grid, n)
	for i := range out {
		g := raster.NewGrid(width, height, 30, 0, float64(height)*30)
		v := base + slope*float64(i)
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				g.Set(col, row, v)
			}
		}
		for _, px := range masked {
			g.Mask(px[0], px[1])
		}
		out[i] = g
	}
	return out
}

func TestEstimatePixelInsufficientSamples(t *testing.T) {
	if got := EstimatePixel([]float64{0}, []float64{1}); got.Valid {
		t.Error("expected an invalid result for a single observation")
	}
}

func TestEstimateRecoversLinearSlope(t *testing.T) {
	windows := linearWindows(4, 3, 5, 0.12, 0.06)

	e := NewEstimator()
	stats, err := e.Estimate(context.Background(), "ndvi", windows)
	if err != nil {
		t.Fatal(err)
	}

	slope, ok := stats.Slope.At(2, 1)
	if !ok {
		t.Fatal("expected a valid slope")
	}
	if math.Abs(slope-0.06) > 1e-9 {
		t.Errorf("slope = %g, want 0.06", slope)
	}
	sen, _ := stats.SenSlope.At(2, 1)
	if math.Abs(sen-0.06) > 1e-9 {
		t.Errorf("sen slope = %g, want 0.06", sen)
	}
	p, _ := stats.PValue.At(2, 1)
	if p >= 0.05 {
		t.Errorf("p-value = %g, want < 0.05 for a strictly increasing series", p)
	}
}

func TestEstimateMasksStarvedPixels(t *testing.T) {
	windows := linearWindows(3, 3, 4, 1, 0.5, [2]int{0, 0})

	stats, err := NewEstimator().Estimate(context.Background(), "lst", windows)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range stats.Bands() {
		if b.Grid.Valid(0, 0) {
			t.Errorf("band %s: pixel masked in every window should stay masked", b.Label)
		}
	}
	if !stats.Slope.Valid(1, 1) {
		t.Error("unmasked pixel should be valid")
	}
}

func TestEstimateDeterministicAcrossWorkerCounts(t *testing.T) {
	windows := linearWindows(5, 7, 6, 280, 0.15)

	serial := &Estimator{Workers: 1}
	parallel := &Estimator{Workers: 4}

	a, err := serial.Estimate(context.Background(), "lst", windows)
	if err != nil {
		t.Fatal(err)
	}
	b, err := parallel.Estimate(context.Background(), "lst", windows)
	if err != nil {
		t.Fatal(err)
	}

	compareStats(t, a, b)
}

func TestEstimateRejectsShapeMismatch(t *testing.T) {
	windows := linearWindows(4, 4, 2, 0, 1)
	windows = append(windows, raster.NewGrid(5, 4, 30, 0, 120))

	if _, err := NewEstimator().Estimate(context.Background(), "ndvi", windows); err == nil {
		t.Error("expected an error for mismatched window shapes")
	}
}

func TestEstimateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	windows := linearWindows(64, 64, 4, 0, 1)
	if _, err := NewEstimator().Estimate(ctx, "ndvi", windows); err == nil {
		t.Error("expected an error from a canceled context")
	}
}

func compareStats(t *testing.T, a, b *domaintrend.Stats) {
	t.Helper()
	ab := a.Bands()
	bb := b.Bands()
	for i := range ab {
		ga, gb := ab[i].Grid, bb[i].Grid
		for row := 0; row < ga.Height; row++ {
			for col := 0; col < ga.Width; col++ {
				va, oka := ga.At(col, row)
				vb, okb := gb.At(col, row)
				if oka != okb || va != vb {
					t.Fatalf("band %s differs at (%d,%d): %g/%v vs %g/%v",
						ab[i].Label, col, row, va, oka, vb, okb)
				}
			}
		}
	}
}

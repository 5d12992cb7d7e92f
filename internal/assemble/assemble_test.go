package assemble

import (
	"testing"
	"time"

	"github.com/paulmach/orb"

	"landtrend/domain/composite"
	"landtrend/domain/core"
	"landtrend/domain/geom"
	"landtrend/domain/product"
	"landtrend/domain/raster"
	"landtrend/domain/trend"
	"landtrend/internal/testkit"
)

var kit = testkit.NewKit(4, 4, 30)

func windowComposite(label string, startYear, endYear int, value float64) composite.Composite {
	bands := raster.NewBandStack()
	if err := bands.Add("ndvi", kit.UniformGrid(value)); err != nil {
		panic(err)
	}
	return composite.Composite{
		Label:        label,
		StartYear:    startYear,
		EndYear:      endYear,
		Timestamp:    core.NewTimestamp(time.Date(endYear, time.September, 1, 0, 0, 0, 0, time.UTC)),
		Contributors: endYear - startYear + 1,
		Bands:        bands,
	}
}

func twoWindowSequence(t *testing.T) *composite.Sequence {
	t.Helper()
	seq := composite.NewSequence("ndvi")
	for _, c := range []composite.Composite{
		windowComposite("1990-1992", 1990, 1992, 0.12),
		windowComposite("1993-1995", 1993, 1995, 0.18),
	} {
		if err := seq.Append(c); err != nil {
			t.Fatal(err)
		}
	}
	return seq
}

func filledStats(t *testing.T) *trend.Stats {
	t.Helper()
	stats := trend.NewStats("ndvi", kit.Grid())
	for row := 0; row < kit.Height; row++ {
		for col := 0; col < kit.Width; col++ {
			stats.SetPixel(col, row, trend.PixelTrend{
				N: 2, Slope: 0.06, SenSlope: 0.06, PValue: 0.5, Valid: true,
			})
		}
	}
	return stats
}

func TestTrendStatsBandLayout(t *testing.T) {
	runID := core.RunID(core.NewID())
	seq := twoWindowSequence(t)

	r, err := TrendStats(runID, geom.Region{}, filledStats(t), seq)
	if err != nil {
		t.Fatal(err)
	}

	if r.Name != TrendStatsName("ndvi") {
		t.Errorf("name = %s, want %s", r.Name, TrendStatsName("ndvi"))
	}
	if r.Kind != product.KindTrendStats {
		t.Errorf("kind = %s", r.Kind)
	}
	wantLabels := []string{
		trend.LabelCovariance, trend.LabelCorrelation, trend.LabelSlope,
		trend.LabelIntercept, trend.LabelTStat, trend.LabelStdErr,
		trend.LabelSenSlope, trend.LabelPValue,
	}
	if len(r.Bands) != len(wantLabels) {
		t.Fatalf("got %d bands, want %d", len(r.Bands), len(wantLabels))
	}
	for i, want := range wantLabels {
		if r.Bands[i].Label != want {
			t.Errorf("band %d label = %q, want %q", i, r.Bands[i].Label, want)
		}
		// Every statistic band carries the end of the fitted range.
		if !r.Bands[i].Timestamp.Time().Equal(seq.At(1).Timestamp.Time()) {
			t.Errorf("band %d timestamp is not the last window's", i)
		}
	}
}

func TestTimeSeriesOneBandPerWindow(t *testing.T) {
	runID := core.RunID(core.NewID())
	seq := twoWindowSequence(t)

	r, err := TimeSeries(runID, geom.Region{}, seq, "ndvi")
	if err != nil {
		t.Fatal(err)
	}

	if r.Kind != product.KindTimeSeries {
		t.Errorf("kind = %s", r.Kind)
	}
	if len(r.Bands) != seq.Len() {
		t.Fatalf("got %d bands, want one per window (%d)", len(r.Bands), seq.Len())
	}
	for i, b := range r.Bands {
		if b.Label != seq.At(i).Label {
			t.Errorf("band %d label = %q, want %q", i, b.Label, seq.At(i).Label)
		}
		if i > 0 && !r.Bands[i-1].Timestamp.Before(b.Timestamp) {
			t.Error("band timestamps must be strictly increasing")
		}
	}
	v, ok := r.Bands[1].Grid.At(2, 2)
	if !ok || v != 0.18 {
		t.Errorf("band 1 value = %g (valid %v), want 0.18", v, ok)
	}
}

func TestTimeSeriesUnknownBand(t *testing.T) {
	seq := twoWindowSequence(t)
	if _, err := TimeSeries(core.RunID(core.NewID()), geom.Region{}, seq, "lst"); err == nil {
		t.Error("expected an error for a band the windows do not carry")
	}
}

func TestClipToRegionMasksOutsidePixels(t *testing.T) {
	g := kit.UniformGrid(1)

	// Region covering only the west half of the grid (x in [0, 60]).
	half := geom.NewRegion("west", orb.Polygon{orb.Ring{
		{0, 0}, {60, 0}, {60, 120}, {0, 120}, {0, 0},
	}})
	out := ClipToRegion(g, half)

	if !out.Valid(0, 0) || !out.Valid(1, 3) {
		t.Error("pixels inside the region must stay valid")
	}
	if out.Valid(2, 0) || out.Valid(3, 3) {
		t.Error("pixels outside the region must be masked")
	}
	// Input is untouched.
	if g.ValidCount() != kit.Width*kit.Height {
		t.Error("clipping must not mutate the input grid")
	}
}

func TestClipToRegionEmptyRegionIsNoop(t *testing.T) {
	g := kit.UniformGrid(1)
	out := ClipToRegion(g, geom.Region{})
	if out.ValidCount() != g.ValidCount() {
		t.Error("an empty region must leave the grid unclipped")
	}
}

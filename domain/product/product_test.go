package product

import (
	"testing"
	"time"

	"landtrend/domain/core"
	"landtrend/domain/raster"
)

func grid(v float64) *raster.Grid {
	g := raster.NewGrid(2, 2, 30, 0, 60)
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			g.Set(col, row, v)
		}
	}
	return g
}

func ts(year int) core.Timestamp {
	return core.NewTimestamp(time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC))
}

func validSeries() *Raster {
	return &Raster{
		Name:      "ndvi_time_series",
		Metric:    "ndvi",
		Kind:      KindTimeSeries,
		RunID:     core.RunID(core.NewID()),
		CreatedAt: core.NewTimestamp(time.Now()),
		Bands: []Band{
			{Index: 0, Label: "1990-1992", Timestamp: ts(1992), Grid: grid(0.12)},
			{Index: 1, Label: "1993-1995", Timestamp: ts(1995), Grid: grid(0.18)},
		},
	}
}

func TestValidateAcceptsWellFormedProduct(t *testing.T) {
	if err := validSeries().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsEmptyProduct(t *testing.T) {
	r := &Raster{Name: "x"}
	if err := r.Validate(); err == nil {
		t.Error("expected an error for a product without bands")
	}
}

func TestValidateRejectsDuplicateLabels(t *testing.T) {
	r := validSeries()
	r.Bands[1].Label = r.Bands[0].Label
	if err := r.Validate(); err == nil {
		t.Error("expected an error for duplicate band labels")
	}
}

func TestValidateRejectsNonIncreasingTimestamps(t *testing.T) {
	r := validSeries()
	r.Bands[1].Timestamp = r.Bands[0].Timestamp
	if err := r.Validate(); err == nil {
		t.Error("expected an error for non-increasing time-series timestamps")
	}
}

func TestValidateAllowsEqualTimestampsForTrendStats(t *testing.T) {
	r := validSeries()
	r.Kind = KindTrendStats
	r.Bands[1].Timestamp = r.Bands[0].Timestamp
	if err := r.Validate(); err != nil {
		t.Errorf("trend-stats bands may share a timestamp: %v", err)
	}
}

func TestValidateRejectsShapeMismatch(t *testing.T) {
	r := validSeries()
	r.Bands[1].Grid = raster.NewGrid(3, 2, 30, 0, 60)
	if err := r.Validate(); err == nil {
		t.Error("expected an error for mismatched band shapes")
	}
}

func TestSampleAt(t *testing.T) {
	r := validSeries()

	samples, err := r.SampleAt(45, 15)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].Value != 0.12 || !samples[0].Valid {
		t.Errorf("sample 0 = %+v", samples[0])
	}
	if samples[1].Label != "1993-1995" {
		t.Errorf("sample 1 label = %q", samples[1].Label)
	}
}

func TestSampleAtOutsideExtent(t *testing.T) {
	if _, err := validSeries().SampleAt(500, 500); err == nil {
		t.Error("expected an error for a point outside the raster")
	}
}

func TestBandByLabel(t *testing.T) {
	r := validSeries()
	b, err := r.BandByLabel("1990-1992")
	if err != nil {
		t.Fatal(err)
	}
	if b.Index != 0 {
		t.Errorf("index = %d", b.Index)
	}
	if _, err := r.BandByLabel("2000-2002"); err == nil {
		t.Error("expected an error for an unknown label")
	}
}

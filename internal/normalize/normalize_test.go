package normalize_test

import (
	"math"
	"testing"
	"time"

	"landtrend/domain/scene"
	"landtrend/internal/normalize"
	"landtrend/internal/testkit"
)

var kit = testkit.NewKit(3, 3, 30)

func harmonizedScene(values map[string]float64) scene.Scene {
	return kit.Scene(testkit.SceneSpec{
		Family:      scene.FamilyTM,
		AcquiredAt:  time.Date(2000, time.July, 1, 0, 0, 0, 0, time.UTC),
		QualityFlag: scene.QualityBest,
		RadSatClear: true,
		BandValues:  values,
	})
}

func TestApplyOpticalCalibration(t *testing.T) {
	s := harmonizedScene(map[string]float64{
		scene.BandRed: testkit.ReflectanceDN(0.1),
		scene.BandNIR: testkit.ReflectanceDN(0.3),
	})

	out := normalize.Apply(s)

	red, ok := out.Bands.Band(scene.BandRed).At(1, 1)
	if !ok || math.Abs(red-0.1) > 1e-9 {
		t.Errorf("red = %g (valid %v), want 0.1", red, ok)
	}
	ndvi, ok := out.Bands.Band(normalize.BandNDVI).At(1, 1)
	if !ok || math.Abs(ndvi-0.5) > 1e-9 {
		t.Errorf("ndvi = %g (valid %v), want 0.5", ndvi, ok)
	}
}

func TestApplyThermalCalibration(t *testing.T) {
	s := harmonizedScene(map[string]float64{
		scene.BandThermal: testkit.ThermalDN(300),
	})

	out := normalize.Apply(s)

	lst, ok := out.Bands.Band(normalize.BandLST).At(0, 0)
	if !ok || math.Abs(lst-300) > 1e-9 {
		t.Errorf("lst = %g (valid %v), want 300 K", lst, ok)
	}
	if out.Bands.Has(scene.BandThermal) {
		t.Error("raw thermal band should be renamed to lst")
	}
	if out.Bands.Has(normalize.BandNDVI) {
		t.Error("ndvi requires both nir and red")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	dn := testkit.ReflectanceDN(0.2)
	s := harmonizedScene(map[string]float64{scene.BandRed: dn})

	_ = normalize.Apply(s)

	raw, _ := s.Bands.Band(scene.BandRed).At(0, 0)
	if raw != dn {
		t.Errorf("input band mutated: %g, want %g", raw, dn)
	}
}

func TestNDVIMasksZeroDenominator(t *testing.T) {
	nir := kit.UniformGrid(0.1)
	red := kit.UniformGrid(-0.1)

	out := normalize.NDVI(nir, red)
	if out.Valid(1, 1) {
		t.Error("NIR+RED == 0 must mask the pixel, not divide")
	}
}

func TestNDVIPropagatesMasks(t *testing.T) {
	nir := kit.UniformGrid(0.4)
	red := kit.UniformGrid(0.1)
	red.Mask(2, 2)

	out := normalize.NDVI(nir, red)
	if out.Valid(2, 2) {
		t.Error("pixel masked in an input must be masked in the index")
	}
	v, ok := out.At(0, 0)
	if !ok || math.Abs(v-0.6) > 1e-12 {
		t.Errorf("ndvi = %g (valid %v), want 0.6", v, ok)
	}
}

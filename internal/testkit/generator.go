package testkit

import (
	"math/rand"
	"time"

	"landtrend/domain/scene"
)

// TrendArchiveSpec configures a synthetic multi-year archive whose NDVI and
// LST carry known linear trends, for demos and end-to-end tests.
type TrendArchiveSpec struct {
	StartYear int
	EndYear   int
	// ScenesPerYear is the number of acquisitions generated per year.
	ScenesPerYear int
	// NDVIStart and NDVIStep define the yearly NDVI trajectory.
	NDVIStart float64
	NDVIStep  float64
	// LSTStart and LSTStep define the yearly LST trajectory in kelvin.
	LSTStart float64
	LSTStep  float64
	// Noise is the uniform jitter applied to raw reflectance targets.
	Noise float64
	Seed  int64
}

// GenerateTrendArchive builds the synthetic scene list. Both sensor families
// contribute: TM before 2013, OLI after, mirroring the real constellation
// handover. Output is deterministic for a given spec.
func GenerateTrendArchive(k *Kit, spec TrendArchiveSpec) []scene.Scene {
	rng := rand.New(rand.NewSource(spec.Seed))
	var scenes []scene.Scene

	for year := spec.StartYear; year <= spec.EndYear; year++ {
		step := float64(year - spec.StartYear)
		ndvi := spec.NDVIStart + spec.NDVIStep*step
		lst := spec.LSTStart + spec.LSTStep*step

		family := scene.FamilyTM
		if year >= 2013 {
			family = scene.FamilyOLI
		}

		for i := 0; i < spec.ScenesPerYear; i++ {
			jitter := 0.0
			if spec.Noise > 0 {
				jitter = (rng.Float64()*2 - 1) * spec.Noise
			}
			values := bandValuesFor(family, ndvi+jitter, lst)
			acquired := time.Date(year, time.Month(4+i*2), 10, 18, 0, 0, 0, time.UTC)
			scenes = append(scenes, k.Scene(SceneSpec{
				Family:      family,
				AcquiredAt:  acquired,
				CloudCover:  float64(5 + rng.Intn(30)),
				QualityFlag: scene.QualityBest,
				RadSatClear: true,
				BandValues:  values,
			}))
		}
	}
	return scenes
}

func bandValuesFor(family scene.SensorFamily, ndvi, lstKelvin float64) map[string]float64 {
	const red = 0.1
	nir := red * (1 + ndvi) / (1 - ndvi)

	switch family {
	case scene.FamilyOLI:
		return map[string]float64{
			scene.OLIRed:     ReflectanceDN(red),
			scene.OLINIR:     ReflectanceDN(nir),
			scene.OLIThermal: ThermalDN(lstKelvin),
		}
	default:
		return map[string]float64{
			scene.TMRed:     ReflectanceDN(red),
			scene.TMNIR:     ReflectanceDN(nir),
			scene.TMThermal: ThermalDN(lstKelvin),
		}
	}
}

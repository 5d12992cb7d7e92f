package scene

import (
	"fmt"

	"landtrend/domain/core"
	"landtrend/domain/raster"
)

// SensorFamily identifies a satellite sensor generation. The two supported
// families carry the same physical measurements under different band layouts.
type SensorFamily string

const (
	// FamilyTM covers the Thematic Mapper era (Landsat 4/5/7 layouts).
	FamilyTM SensorFamily = "tm"
	// FamilyOLI covers the Operational Land Imager era (Landsat 8/9 layouts).
	FamilyOLI SensorFamily = "oli"
)

// Harmonized band names. Every scene leaving the ingestion stage uses these,
// regardless of which sensor family produced it.
const (
	BandRed     = "red"
	BandNIR     = "nir"
	BandThermal = "thermal"
)

// Raw band names per sensor family, before harmonization.
const (
	TMRed      = "SR_B3"
	TMNIR      = "SR_B4"
	TMThermal  = "ST_B6"
	OLIRed     = "SR_B4"
	OLINIR     = "SR_B5"
	OLIThermal = "ST_B10"
)

// Pixel-quality bits, matching the Collection-2 QA_PIXEL layout for the bits
// this pipeline inspects.
const (
	QADilatedCloud uint16 = 1 << 1
	QACloud        uint16 = 1 << 3
	QACloudShadow  uint16 = 1 << 4

	// QAOcclusionBits is the union of conditions that invalidate a pixel.
	QAOcclusionBits = QADilatedCloud | QACloud | QACloudShadow
)

// QualityBest is the scene-level quality flag value required by the QC filter.
const QualityBest = 9

// Scene is one satellite acquisition over the study area. Immutable once
// ingested: stages that adjust pixel content operate on copies.
type Scene struct {
	ID         core.SceneID
	Sensor     SensorFamily
	AcquiredAt core.Timestamp

	// Bands holds the raw (or, after ingestion, harmonized) spectral and
	// thermal measurements on a single shared pixel grid.
	Bands *raster.BandStack

	// QA is the per-pixel quality bitmask aligned with Bands.
	QA *raster.Bitmask

	// CloudCover is the scene-level cloud percentage from acquisition metadata.
	CloudCover float64
	// QualityFlag is the sensor's scene-level quality assessment.
	QualityFlag int
	// RadSatClear reports that no radiometric saturation flags are set.
	RadSatClear bool
}

// HarmonizedBandName maps a family's raw band name to the common naming
// scheme. Unknown bands map to themselves.
func HarmonizedBandName(family SensorFamily, raw string) string {
	switch family {
	case FamilyTM:
		switch raw {
		case TMRed:
			return BandRed
		case TMNIR:
			return BandNIR
		case TMThermal:
			return BandThermal
		}
	case FamilyOLI:
		switch raw {
		case OLIRed:
			return BandRed
		case OLINIR:
			return BandNIR
		case OLIThermal:
			return BandThermal
		}
	}
	return raw
}

// Validate checks the scene's internal consistency: a non-empty band stack
// and, when a QA mask is present, shape agreement with the bands.
func (s Scene) Validate() error {
	if s.Bands == nil || s.Bands.Len() == 0 {
		return fmt.Errorf("scene %s: no bands", s.ID)
	}
	if s.QA != nil {
		for _, name := range s.Bands.Names() {
			if !s.QA.MatchesGrid(s.Bands.Band(name)) {
				return fmt.Errorf("scene %s: QA mask shape does not match band %q", s.ID, name)
			}
		}
	}
	return nil
}

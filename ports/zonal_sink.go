package ports

import "context"

// TractRecord is one tract's row in the zonal-statistics table.
type TractRecord struct {
	GEOID string `json:"geoid"`

	// BandMedians maps "<metric>_<stat>" to the median of that trend-stats
	// band over the tract.
	BandMedians map[string]float64 `json:"band_medians"`

	// MedianNDVI and MedianLST are the tract medians of the selected
	// time-series band.
	MedianNDVI float64 `json:"median_ndvi"`
	MedianLST  float64 `json:"median_lst"`

	// Class areas in squared map units, from the land-cover classification.
	GreenArea float64 `json:"green_area"`
	WaterArea float64 `json:"water_area"`
	UrbanArea float64 `json:"urban_area"`
}

// ZonalSink receives the finished zonal-statistics table, e.g. a workbook
// writer or a database exporter.
type ZonalSink interface {
	WriteTable(ctx context.Context, records []TractRecord) error
}

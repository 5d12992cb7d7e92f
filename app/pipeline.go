// Package app wires the pipeline stages into runnable services.
package app

import (
	"context"
	"sort"
	"time"

	"landtrend/domain/core"
	"landtrend/domain/geom"
	"landtrend/domain/scene"
	"landtrend/internal"
	"landtrend/internal/assemble"
	"landtrend/internal/compositor"
	"landtrend/internal/errors"
	"landtrend/internal/ingest"
	"landtrend/internal/normalize"
	"landtrend/internal/report"
	"landtrend/internal/trend"
	"landtrend/ports"
)

// MetricSpec binds a tracked metric to the bands it needs from the archive
// and the derived band the trend is fitted on.
type MetricSpec struct {
	Metric    string
	ValueBand string
	// RawBands lists the raw archive bands per sensor family.
	RawBands map[scene.SensorFamily][]string
}

// DefaultMetrics returns the two tracked metrics: vegetation greenness and
// land-surface temperature.
func DefaultMetrics() []MetricSpec {
	return []MetricSpec{
		{
			Metric:    "ndvi",
			ValueBand: normalize.BandNDVI,
			RawBands: map[scene.SensorFamily][]string{
				scene.FamilyTM:  {scene.TMRed, scene.TMNIR},
				scene.FamilyOLI: {scene.OLIRed, scene.OLINIR},
			},
		},
		{
			Metric:    "lst",
			ValueBand: normalize.BandLST,
			RawBands: map[scene.SensorFamily][]string{
				scene.FamilyTM:  {scene.TMThermal},
				scene.FamilyOLI: {scene.OLIThermal},
			},
		},
	}
}

// RunParams are the inputs of one full-region trend analysis.
type RunParams struct {
	Region      geom.Region
	StartYear   int
	EndYear     int
	WindowYears int
	Workers     int
	Metrics     []MetricSpec
}

// RunResult reports a completed run.
type RunResult struct {
	Summary  report.RunSummary
	Products []core.ProductName
}

// Pipeline executes the full analysis: ingest, normalize, composite by year,
// composite by window, fit trends, assemble and publish products.
type Pipeline struct {
	archive ports.SceneArchive
	store   ports.ProductStore
	filter  *ingest.Filter
	logger  *internal.Logger
}

// NewPipeline creates the pipeline over an archive and a product store.
func NewPipeline(archive ports.SceneArchive, store ports.ProductStore, qc ingest.QCConfig) *Pipeline {
	return &Pipeline{
		archive: archive,
		store:   store,
		filter:  ingest.NewFilter(qc),
		logger:  internal.DefaultLogger.Component("pipeline"),
	}
}

// Run executes the pipeline for every metric. A metric with no qualifying
// scenes produces no products and no error; a substrate failure aborts the
// run with stage context and publishes nothing further.
func (p *Pipeline) Run(ctx context.Context, params RunParams) (*RunResult, error) {
	if params.StartYear > params.EndYear {
		return nil, errors.InvalidInput("start year is after end year")
	}
	if params.WindowYears < 1 {
		params.WindowYears = compositor.DefaultWindowYears
	}
	metrics := params.Metrics
	if len(metrics) == 0 {
		metrics = DefaultMetrics()
	}

	runID := core.RunID(core.NewID())
	result := &RunResult{
		Summary: report.RunSummary{
			RunID:       runID,
			Region:      params.Region.Name,
			StartYear:   params.StartYear,
			EndYear:     params.EndYear,
			WindowYears: params.WindowYears,
			StartedAt:   time.Now().UTC(),
		},
	}
	p.logger.Info("run %s: years %d-%d, window %d", runID, params.StartYear, params.EndYear, params.WindowYears)

	for _, spec := range metrics {
		summary, products, err := p.runMetric(ctx, runID, params, spec)
		if err != nil {
			return nil, err
		}
		result.Summary.Metrics = append(result.Summary.Metrics, summary)
		result.Products = append(result.Products, products...)
	}

	result.Summary.FinishedAt = time.Now().UTC()
	return result, nil
}

func (p *Pipeline) runMetric(ctx context.Context, runID core.RunID, params RunParams, spec MetricSpec) (report.MetricSummary, []core.ProductName, error) {
	summary := report.MetricSummary{Metric: spec.Metric}

	// Ingest: both sensor families, QC-filtered, harmonized, time-sorted.
	query := ports.SceneQuery{
		Region: params.Region,
		Start:  time.Date(params.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(params.EndYear+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	families := []scene.SensorFamily{scene.FamilyTM, scene.FamilyOLI}
	scenes, err := p.selectScenes(ctx, query, families, spec)
	if err != nil {
		return summary, nil, errors.SubstrateFailure("ingest", -1, err)
	}
	summary.SceneCount = len(scenes)
	if len(scenes) == 0 {
		p.logger.Warn("metric %s: no scenes matched the filters, skipping", spec.Metric)
		return summary, nil, nil
	}

	// Normalize: physical units plus the derived vegetation index.
	normalized := make([]scene.Scene, len(scenes))
	for i, s := range scenes {
		normalized[i] = normalize.Apply(s)
	}

	// Composite: per-year medians, then fixed-width windows.
	years, err := compositor.ByYear(normalized)
	if err != nil {
		return summary, nil, errors.SubstrateFailure("composite-by-year", -1, err)
	}
	summary.YearCount = len(years)

	windows, err := compositor.ByWindow(years, params.WindowYears)
	if err != nil {
		return summary, nil, errors.SubstrateFailure("composite-by-window", -1, err)
	}
	seq, err := compositor.Sequence(spec.Metric, windows)
	if err != nil {
		return summary, nil, errors.SubstrateFailure("composite-by-window", -1, err)
	}
	for _, w := range seq.Composites() {
		summary.Windows = append(summary.Windows, report.WindowInfo{
			Label:     w.Label,
			Timestamp: w.Timestamp.Time(),
		})
	}
	if seq.Len() == 0 {
		p.logger.Warn("metric %s: no windows with data, skipping", spec.Metric)
		return summary, nil, nil
	}

	// Trend: per-pixel OLS and Mann-Kendall/Theil-Sen over window ordinals.
	series, err := seq.BandSeries(spec.ValueBand)
	if err != nil {
		return summary, nil, errors.SubstrateFailure("trend", -1, err)
	}
	estimator := &trend.Estimator{Workers: params.Workers}
	stats, err := estimator.Estimate(ctx, spec.Metric, series)
	if err != nil {
		return summary, nil, errors.SubstrateFailure("trend", -1, err)
	}

	// Assemble and publish. Publishing is per-product atomic; a failure
	// here leaves no partial product behind.
	trendProduct, err := assemble.TrendStats(runID, params.Region, stats, seq)
	if err != nil {
		return summary, nil, errors.SubstrateFailure("assemble", -1, err)
	}
	seriesProduct, err := assemble.TimeSeries(runID, params.Region, seq, spec.ValueBand)
	if err != nil {
		return summary, nil, errors.SubstrateFailure("assemble", -1, err)
	}
	if err := p.store.Publish(ctx, trendProduct); err != nil {
		return summary, nil, errors.SubstrateFailure("publish", -1, err)
	}
	if err := p.store.Publish(ctx, seriesProduct); err != nil {
		return summary, nil, errors.SubstrateFailure("publish", -1, err)
	}

	summary.TrendStatsProduct = trendProduct.Name
	summary.TimeSeriesProduct = seriesProduct.Name
	p.logger.Info("metric %s: published %s (%d bands) and %s (%d bands)",
		spec.Metric, trendProduct.Name, len(trendProduct.Bands), seriesProduct.Name, len(seriesProduct.Bands))

	return summary, []core.ProductName{trendProduct.Name, seriesProduct.Name}, nil
}

func (p *Pipeline) selectScenes(ctx context.Context, query ports.SceneQuery, families []scene.SensorFamily, spec MetricSpec) ([]scene.Scene, error) {
	// Families may need different raw band requests, so query one at a time.
	var all []scene.Scene
	for _, fam := range families {
		q := query
		q.Bands = spec.RawBands[fam]
		scenes, err := p.filter.Select(ctx, p.archive, q, []scene.SensorFamily{fam})
		if err != nil {
			return nil, err
		}
		all = append(all, scenes...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].AcquiredAt.Before(all[j].AcquiredAt)
	})
	return all, nil
}

// Package report renders a human-readable summary of a completed analysis
// run: window coverage, product names, and scene counts per metric.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"

	"landtrend/domain/core"
)

// WindowInfo is one window's entry in the run summary.
type WindowInfo struct {
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// MetricSummary describes one metric's pipeline outcome.
type MetricSummary struct {
	Metric            string           `json:"metric"`
	SceneCount        int              `json:"scene_count"`
	YearCount         int              `json:"year_count"`
	Windows           []WindowInfo     `json:"windows"`
	TrendStatsProduct core.ProductName `json:"trend_stats_product"`
	TimeSeriesProduct core.ProductName `json:"time_series_product"`
}

// RunSummary is the complete record of one analysis run.
type RunSummary struct {
	RunID       core.RunID      `json:"run_id"`
	Region      string          `json:"region"`
	StartYear   int             `json:"start_year"`
	EndYear     int             `json:"end_year"`
	WindowYears int             `json:"window_years"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Metrics     []MetricSummary `json:"metrics"`
}

// Markdown renders the summary as a markdown document.
func (s RunSummary) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Trend analysis run %s\n\n", s.RunID)
	fmt.Fprintf(&b, "Region: **%s**  \n", s.Region)
	fmt.Fprintf(&b, "Years: **%d-%d**, window width: **%d**  \n", s.StartYear, s.EndYear, s.WindowYears)
	fmt.Fprintf(&b, "Duration: %s\n\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))

	for _, m := range s.Metrics {
		fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(m.Metric))
		fmt.Fprintf(&b, "- scenes after QC: %d\n", m.SceneCount)
		fmt.Fprintf(&b, "- years with data: %d\n", m.YearCount)
		fmt.Fprintf(&b, "- windows: %d\n", len(m.Windows))
		fmt.Fprintf(&b, "- products: `%s`, `%s`\n\n", m.TrendStatsProduct, m.TimeSeriesProduct)

		if len(m.Windows) > 0 {
			b.WriteString("| window | timestamp |\n|---|---|\n")
			for _, w := range m.Windows {
				fmt.Fprintf(&b, "| %s | %s |\n", w.Label, w.Timestamp.Format("2006-01-02"))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// HTML renders the summary markdown to HTML.
func (s RunSummary) HTML() []byte {
	return markdown.ToHTML([]byte(s.Markdown()), nil, nil)
}

// Package compositor collapses scene stacks into cloud-free composites: one
// per-pixel median composite per calendar year, then one per fixed-width
// window of consecutive year composites.
package compositor

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"landtrend/domain/composite"
	"landtrend/domain/raster"
	"landtrend/domain/scene"
)

// DefaultWindowYears is the reference window width.
const DefaultWindowYears = 3

// ByYear partitions scenes by calendar year of acquisition and reduces each
// year with a per-pixel median across all bands. Masked pixels are excluded
// from the median and stay masked when every contributor is masked. Each year
// composite is tagged with the acquisition time of its chronologically last
// contributing scene. Years without scenes are simply absent.
//
// The reduction is order-independent: permuting the input scene list yields
// identical output.
func ByYear(scenes []scene.Scene) ([]composite.Composite, error) {
	byYear := make(map[int][]scene.Scene)
	for _, s := range scenes {
		year := s.AcquiredAt.Year()
		byYear[year] = append(byYear[year], s)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	out := make([]composite.Composite, 0, len(years))
	for _, year := range years {
		group := byYear[year]
		bands, err := reduceScenes(group)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		last := group[0].AcquiredAt
		for _, s := range group[1:] {
			if s.AcquiredAt.After(last) {
				last = s.AcquiredAt
			}
		}
		out = append(out, composite.Composite{
			Label:        composite.YearLabel(year),
			StartYear:    year,
			EndYear:      year,
			Timestamp:    last,
			Contributors: len(group),
			Bands:        bands,
		})
	}
	return out, nil
}

// ByWindow groups the sorted year composites into non-overlapping runs of
// windowYears consecutive entries and re-reduces each run with a per-pixel
// median. A short trailing run is still emitted with however many years
// remain. Window boundaries depend only on the sorted distinct year list and
// the window width.
func ByWindow(years []composite.Composite, windowYears int) ([]composite.Composite, error) {
	if windowYears < 1 {
		return nil, fmt.Errorf("window width must be >= 1, got %d", windowYears)
	}
	sorted := make([]composite.Composite, len(years))
	copy(sorted, years)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartYear < sorted[j].StartYear
	})

	var out []composite.Composite
	for start := 0; start < len(sorted); start += windowYears {
		end := start + windowYears
		if end > len(sorted) {
			end = len(sorted)
		}
		run := sorted[start:end]
		bands, err := reduceComposites(run)
		if err != nil {
			return nil, fmt.Errorf("window starting %d: %w", run[0].StartYear, err)
		}
		out = append(out, composite.Composite{
			Label:        composite.WindowLabel(run[0].StartYear, run[len(run)-1].EndYear),
			StartYear:    run[0].StartYear,
			EndYear:      run[len(run)-1].EndYear,
			Timestamp:    run[len(run)-1].Timestamp,
			Contributors: len(run),
			Bands:        bands,
		})
	}
	return out, nil
}

// Sequence builds the ordered composite sequence for one metric from its
// windowed composites, enforcing the sequence invariants.
func Sequence(metric string, windows []composite.Composite) (*composite.Sequence, error) {
	seq := composite.NewSequence(metric)
	for _, w := range windows {
		if err := seq.Append(w); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

func reduceScenes(group []scene.Scene) (*raster.BandStack, error) {
	stacks := make([]*raster.BandStack, len(group))
	for i, s := range group {
		stacks[i] = s.Bands
	}
	return medianStacks(stacks)
}

func reduceComposites(group []composite.Composite) (*raster.BandStack, error) {
	stacks := make([]*raster.BandStack, len(group))
	for i, c := range group {
		stacks[i] = c.Bands
	}
	return medianStacks(stacks)
}

// medianStacks reduces the union of band names across contributors with a
// per-pixel median over the contributors carrying each band.
func medianStacks(stacks []*raster.BandStack) (*raster.BandStack, error) {
	if len(stacks) == 0 {
		return nil, fmt.Errorf("no contributors")
	}
	names := unionNames(stacks)
	out := raster.NewBandStack()
	for _, name := range names {
		var grids []*raster.Grid
		for _, st := range stacks {
			if g := st.Band(name); g != nil {
				grids = append(grids, g)
			}
		}
		reduced, err := medianGrids(grids)
		if err != nil {
			return nil, fmt.Errorf("band %q: %w", name, err)
		}
		if err := out.Add(name, reduced); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// medianGrids computes the per-pixel median over the contributing grids,
// skipping masked pixels. A pixel masked in every contributor stays masked.
func medianGrids(grids []*raster.Grid) (*raster.Grid, error) {
	ref := grids[0]
	for _, g := range grids[1:] {
		if !ref.SameShape(g) {
			return nil, fmt.Errorf("contributor shapes differ")
		}
	}
	out := ref.CloneShape()
	sample := make([]float64, 0, len(grids))
	for row := 0; row < ref.Height; row++ {
		for col := 0; col < ref.Width; col++ {
			sample = sample[:0]
			for _, g := range grids {
				if v, ok := g.At(col, row); ok {
					sample = append(sample, v)
				}
			}
			if len(sample) == 0 {
				continue
			}
			med, err := stats.Median(sample)
			if err != nil {
				return nil, fmt.Errorf("median at (%d,%d): %w", col, row, err)
			}
			out.Set(col, row, med)
		}
	}
	return out, nil
}

func unionNames(stacks []*raster.BandStack) []string {
	seen := make(map[string]bool)
	for _, st := range stacks {
		for _, name := range st.Names() {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

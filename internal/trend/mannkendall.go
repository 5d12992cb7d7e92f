package trend

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// MKResult holds the Mann-Kendall test statistics and the Theil-Sen slope
// estimate for one observation series.
type MKResult struct {
	S        int
	VarS     float64
	Z        float64
	PValue   float64
	SenSlope float64
	N        int
}

// MannKendall runs the Mann-Kendall trend test with tie correction and the
// Theil-Sen slope estimate over paired observations. Callers pass only valid
// observations, in x order. Fewer than 2 points yields ok == false.
//
// A constant series has S = 0, p-value 1 and slope 0.
func MannKendall(xs, ys []float64) (MKResult, bool) {
	n := len(ys)
	if n < 2 || len(xs) != n {
		return MKResult{}, false
	}

	res := MKResult{N: n}

	// S = sum of sign(y_j - y_i) over ordered pairs. Ties contribute 0 and
	// are handled separately in the variance.
	var slopes []float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case ys[j] > ys[i]:
				res.S++
			case ys[j] < ys[i]:
				res.S--
			}
			if xs[j] != xs[i] {
				slopes = append(slopes, (ys[j]-ys[i])/(xs[j]-xs[i]))
			}
		}
	}

	res.VarS = mkVariance(n, tieGroups(ys))

	// Standardized statistic with continuity correction:
	// Z = (S - sign(S)) / sqrt(Var(S)) for S != 0, else 0.
	if res.S != 0 && res.VarS > 0 {
		shift := 1.0
		if res.S < 0 {
			shift = -1.0
		}
		res.Z = (float64(res.S) - shift) / math.Sqrt(res.VarS)
	}

	// Two-sided p-value from the standard normal CDF.
	absZ := res.Z
	if absZ < 0 {
		absZ = -absZ
	}
	res.PValue = 2 * distuv.UnitNormal.Survival(absZ)
	if res.PValue > 1 {
		res.PValue = 1
	}

	if len(slopes) > 0 {
		med, err := stats.Median(slopes)
		if err != nil {
			return MKResult{}, false
		}
		res.SenSlope = med
	}

	return res, true
}

// mkVariance is the null variance of S adjusted for ties:
// [n(n-1)(2n+5) - sum t(t-1)(2t+5)] / 18.
func mkVariance(n int, ties []int) float64 {
	v := float64(n) * float64(n-1) * float64(2*n+5)
	for _, t := range ties {
		v -= float64(t) * float64(t-1) * float64(2*t+5)
	}
	return v / 18
}

// tieGroups returns the sizes of maximal runs of equal values in the sorted
// series, excluding runs of length 1.
func tieGroups(ys []float64) []int {
	if len(ys) < 2 {
		return nil
	}
	sorted := make([]float64, len(ys))
	copy(sorted, ys)
	sort.Float64s(sorted)

	var groups []int
	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			run++
			continue
		}
		if run > 1 {
			groups = append(groups, run)
		}
		run = 1
	}
	if run > 1 {
		groups = append(groups, run)
	}
	return groups
}


package stats

import (
	"math"

	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/mathutil"
)

// Bin is one histogram bucket. Percent is the share of finite values that
// fall into [Low, High).
type Bin struct {
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Percent float64 `json:"percent"`
}

// Center returns the bin midpoint.
func (b Bin) Center() float64 {
	return (b.Low + b.High) / 2
}

// Density bins the finite values of every series onto one shared axis so
// runs can be drawn on the same chart. The last bin is closed on the right.
// Each series' percentages sum to 100 unless it has no finite values.
func Density(series [][]float64, bins int) [][]Bin {
	if bins < 1 {
		bins = constants.DefaultDensityBins
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, values := range series {
		for _, v := range values {
			if !mathutil.IsFinite(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	out := make([][]Bin, len(series))
	if math.IsInf(lo, 1) {
		return out
	}
	if hi == lo {
		// Widen a single-point axis to one percentage point around the value.
		lo, hi = lo-0.005, hi+0.005
	}

	width := (hi - lo) / float64(bins)
	for s, values := range series {
		counts := make([]int, bins)
		total := 0
		for _, v := range values {
			if !mathutil.IsFinite(v) {
				continue
			}
			idx := int((v - lo) / width)
			if idx >= bins {
				idx = bins - 1
			}
			if idx < 0 {
				idx = 0
			}
			counts[idx]++
			total++
		}

		row := make([]Bin, bins)
		for i := range row {
			row[i] = Bin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
			if total > 0 {
				row[i].Percent = float64(counts[i]) / float64(total) * constants.PercentageMultiplier
			}
		}
		out[s] = row
	}
	return out
}

// Package stats summarises the distribution of a run's trial values.
package stats

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/mathutil"
)

// Summary describes one distribution. Mean is computed over every value, so a
// single NaN makes it NaN; the order statistics ignore non-finite values.
type Summary struct {
	Count             int     `json:"count"`
	NonFinite         int     `json:"nonFinite"`
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	StandardDeviation float64 `json:"standardDeviation"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Percentile5       float64 `json:"percentile5"`
	Percentile25      float64 `json:"percentile25"`
	Percentile75      float64 `json:"percentile75"`
	Percentile95      float64 `json:"percentile95"`
	ProbabilityOfLoss float64 `json:"probabilityOfLoss"`
}

// Contaminated reports whether any value was NaN or infinite.
func (s Summary) Contaminated() bool {
	return s.NonFinite > 0
}

// Mean returns the arithmetic mean of values, or NaN when values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Summarize computes a Summary for values.
func Summarize(values []float64) Summary {
	s := Summary{Count: len(values), Mean: Mean(values)}

	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if mathutil.IsFinite(v) {
			finite = append(finite, v)
		}
	}
	s.NonFinite = len(values) - len(finite)
	if len(finite) == 0 {
		nan := math.NaN()
		s.Median, s.StandardDeviation, s.Min, s.Max = nan, nan, nan, nan
		s.Percentile5, s.Percentile25, s.Percentile75, s.Percentile95 = nan, nan, nan, nan
		return s
	}
	sort.Float64s(finite)

	m := Mean(finite)
	variance := 0.0
	losses := 0
	for _, v := range finite {
		d := v - m
		variance += d * d
		if v < 0 {
			losses++
		}
	}
	if len(finite) > 1 {
		variance /= float64(len(finite) - 1)
	} else {
		variance = 0
	}

	s.StandardDeviation = math.Sqrt(variance)
	s.Min = finite[0]
	s.Max = finite[len(finite)-1]
	s.Median = Percentile(finite, 50)
	s.Percentile5 = Percentile(finite, 5)
	s.Percentile25 = Percentile(finite, 25)
	s.Percentile75 = Percentile(finite, 75)
	s.Percentile95 = Percentile(finite, 95)
	s.ProbabilityOfLoss = float64(losses) / float64(len(finite))
	return s
}

// Percentile returns the p-th percentile (0-100) of sorted using linear
// interpolation between closest ranks. sorted must be ascending.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= constants.PercentageMultiplier {
		return sorted[len(sorted)-1]
	}
	rank := p / constants.PercentageMultiplier * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// MarshalJSON encodes non-finite statistics as null, which encoding/json
// cannot represent otherwise.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count             int      `json:"count"`
		NonFinite         int      `json:"nonFinite"`
		Mean              *float64 `json:"mean"`
		Median            *float64 `json:"median"`
		StandardDeviation *float64 `json:"standardDeviation"`
		Min               *float64 `json:"min"`
		Max               *float64 `json:"max"`
		Percentile5       *float64 `json:"percentile5"`
		Percentile25      *float64 `json:"percentile25"`
		Percentile75      *float64 `json:"percentile75"`
		Percentile95      *float64 `json:"percentile95"`
		ProbabilityOfLoss float64  `json:"probabilityOfLoss"`
	}{
		Count:             s.Count,
		NonFinite:         s.NonFinite,
		Mean:              finiteOrNil(s.Mean),
		Median:            finiteOrNil(s.Median),
		StandardDeviation: finiteOrNil(s.StandardDeviation),
		Min:               finiteOrNil(s.Min),
		Max:               finiteOrNil(s.Max),
		Percentile5:       finiteOrNil(s.Percentile5),
		Percentile25:      finiteOrNil(s.Percentile25),
		Percentile75:      finiteOrNil(s.Percentile75),
		Percentile95:      finiteOrNil(s.Percentile95),
		ProbabilityOfLoss: s.ProbabilityOfLoss,
	})
}

func finiteOrNil(v float64) *float64 {
	if !mathutil.IsFinite(v) {
		return nil
	}
	return &v
}

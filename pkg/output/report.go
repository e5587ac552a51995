package output

import (
	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/pkg/stats"
)

// RunReport is everything a renderer needs to draw one run: its identity,
// summary statistics, and density on the axis shared with the other runs.
type RunReport struct {
	Name    string        `json:"name"`
	Color   string        `json:"color"`
	Summary stats.Summary `json:"summary"`
	Density []stats.Bin   `json:"density,omitempty"`
}

// BuildReport summarises runs in order and bins them onto a common axis.
func BuildReport(runs []montecarlo.Run, bins int) []RunReport {
	series := make([][]float64, len(runs))
	for i, run := range runs {
		series[i] = run.Values
	}
	density := stats.Density(series, bins)

	reports := make([]RunReport, len(runs))
	for i, run := range runs {
		reports[i] = RunReport{
			Name:    run.Name,
			Color:   run.Color,
			Summary: stats.Summarize(run.Values),
			Density: density[i],
		}
	}
	return reports
}

// Package output provides utilities for formatting and displaying run results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var csvHeader = []string{
	"run", "color", "trials", "non-finite", "mean", "median", "std dev",
	"min", "p5", "p25", "p75", "p95", "max", "probability of loss",
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(reports []RunReport) {
	_, _ = io.WriteString(os.Stdout, PrettyString(reports))
}

// PrettyString renders the human-readable table as a string.
func PrettyString(reports []RunReport) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	for i, r := range reports {
		s := r.Summary
		_, _ = p.Fprintf(&b, "--- Results for run %s (%s) ---\n", displayName(r.Name), r.Color)
		_, _ = p.Fprintf(&b, "Trials        | %d\n", s.Count)
		_, _ = p.Fprintf(&b, "Mean          | %s\n", format.Percent(s.Mean))
		_, _ = p.Fprintf(&b, "Mean Savings  | %s\n", format.Currency(mathutil.Round(s.Mean*constants.TotalBaseline)))
		_, _ = p.Fprintf(&b, "Median        | %s\n", format.Percent(s.Median))
		_, _ = p.Fprintf(&b, "Std Dev       | %s\n", format.PercentWithPrecision(s.StandardDeviation, 1))
		_, _ = p.Fprintf(&b, "Range         | %s to %s\n", format.Percent(s.Min), format.Percent(s.Max))
		_, _ = p.Fprintf(&b, "5th-95th      | %s to %s\n", format.Percent(s.Percentile5), format.Percent(s.Percentile95))
		_, _ = p.Fprintf(&b, "P(loss)       | %s\n", format.PercentWithPrecision(s.ProbabilityOfLoss, 1))
		if s.Contaminated() {
			_, _ = p.Fprintf(&b, "WARNING       | %d of %d trials are NaN or infinite\n", s.NonFinite, s.Count)
		}
		if i < len(reports)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(reports []RunReport) {
	_, _ = io.WriteString(os.Stdout, CsvString(reports))
}

// CsvString renders one summary row per run. Fractions are written unscaled.
func CsvString(reports []RunReport) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(csvHeader)
	for _, r := range reports {
		s := r.Summary
		_ = w.Write([]string{
			r.Name,
			r.Color,
			strconv.Itoa(s.Count),
			strconv.Itoa(s.NonFinite),
			csvFloat(s.Mean),
			csvFloat(s.Median),
			csvFloat(s.StandardDeviation),
			csvFloat(s.Min),
			csvFloat(s.Percentile5),
			csvFloat(s.Percentile25),
			csvFloat(s.Percentile75),
			csvFloat(s.Percentile95),
			csvFloat(s.Max),
			csvFloat(s.ProbabilityOfLoss),
		})
	}
	w.Flush()
	return b.String()
}

// JSONFormat writes the reports as indented JSON.
func JSONFormat(w io.Writer, reports []RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	return nil
}

func csvFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}

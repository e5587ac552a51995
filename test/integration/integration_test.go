package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/business-case/internal/config"
	"github.com/iwvelando/business-case/internal/forecast"
	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/internal/session"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/output"
	"github.com/iwvelando/business-case/pkg/stats"
	"github.com/iwvelando/business-case/pkg/testutil"
	"go.uber.org/zap"
)

const integrationTrials = 2000

func loadExample(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return conf
}

func runExample(t *testing.T) []montecarlo.Run {
	t.Helper()
	conf := loadExample(t)
	results, err := forecast.GetForecast(context.Background(), zap.NewNop(), *conf,
		testutil.SeededRunner(t, integrationTrials, 42), session.New())
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	return results
}

func TestExampleConfiguration(t *testing.T) {
	conf := loadExample(t)

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings for the example configuration, got %v", warnings)
	}
	if conf.Simulation.Trials != constants.DefaultTrials {
		t.Errorf("expected %d trials, got %d", constants.DefaultTrials, conf.Simulation.Trials)
	}
	if conf.Output.Format != constants.OutputFormatPretty {
		t.Errorf("expected pretty output, got %q", conf.Output.Format)
	}
	if len(conf.ActiveRuns()) != 3 {
		t.Errorf("expected 3 active runs, got %d", len(conf.ActiveRuns()))
	}
}

func TestEndToEndRuns(t *testing.T) {
	results := runExample(t)

	expected := []string{"Baseline", "Aggressive Offshore", "Conservative"}
	if len(results) != len(expected) {
		t.Fatalf("expected %d runs, got %d", len(expected), len(results))
	}
	for i, name := range expected {
		run := testutil.FindRun(results, name)
		if run == nil {
			t.Fatalf("run %q not found", name)
		}
		if run.Color != constants.Palette[i] {
			t.Errorf("%s: expected colour %s, got %s", name, constants.Palette[i], run.Color)
		}
		if run.Trials() != integrationTrials || run.NonFinite() != 0 {
			t.Errorf("%s: expected %d finite trials, got %d with %d non-finite", name, integrationTrials, run.Trials(), run.NonFinite())
		}
	}

	baseline := stats.Mean(testutil.FindRun(results, "Baseline").Values)
	aggressive := stats.Mean(testutil.FindRun(results, "Aggressive Offshore").Values)
	conservative := stats.Mean(testutil.FindRun(results, "Conservative").Values)

	// Savings around 40% at the default midpoints.
	if baseline < 0.35 || baseline > 0.45 {
		t.Errorf("expected baseline mean near 0.40, got %.4f", baseline)
	}
	if !(aggressive > baseline && baseline > conservative) {
		t.Errorf("expected aggressive > baseline > conservative, got %.4f, %.4f, %.4f", aggressive, baseline, conservative)
	}
}

func TestEndToEndOutputs(t *testing.T) {
	reports := output.BuildReport(runExample(t), constants.DefaultDensityBins)

	t.Run("pretty", func(t *testing.T) {
		text := output.PrettyString(reports)
		for _, want := range []string{
			"--- Results for run Baseline (#A100FF) ---",
			"--- Results for run Aggressive Offshore (#FF5C00) ---",
			"--- Results for run Conservative (#009EFF) ---",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("expected pretty output to contain %q", want)
			}
		}
		if strings.Contains(text, "WARNING") {
			t.Error("expected no contamination warning")
		}
	})

	t.Run("csv", func(t *testing.T) {
		records, err := csv.NewReader(strings.NewReader(output.CsvString(reports))).ReadAll()
		if err != nil {
			t.Fatalf("csv output does not parse: %v", err)
		}
		if len(records) != len(reports)+1 {
			t.Fatalf("expected header plus %d rows, got %d", len(reports), len(records))
		}
		if records[1][0] != "Baseline" {
			t.Errorf("expected first row for Baseline, got %q", records[1][0])
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := output.JSONFormat(&buf, reports); err != nil {
			t.Fatalf("JSONFormat() error = %v", err)
		}
		var decoded []map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("json output does not parse: %v", err)
		}
		if len(decoded) != len(reports) {
			t.Errorf("expected %d entries, got %d", len(reports), len(decoded))
		}
	})

	t.Run("pdf", func(t *testing.T) {
		var buf bytes.Buffer
		if err := output.PDFChart(&buf, reports); err != nil {
			t.Fatalf("PDFChart() error = %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
			t.Error("expected a PDF document")
		}
	})
}

func TestEndToEndReproducible(t *testing.T) {
	first := runExample(t)
	second := runExample(t)

	for i := range first {
		for j := range first[i].Values {
			if first[i].Values[j] != second[i].Values[j] {
				t.Fatalf("run %s trial %d differs between seeded executions", first[i].Name, j)
			}
		}
	}
}

func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	runner, err := montecarlo.NewRunner(zap.NewNop())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	start := time.Now()
	run, err := runner.Run(context.Background(), "perf", montecarlo.DefaultRanges())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	elapsed := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Trials: %d", run.Trials())
	t.Logf("  Workers: %d", runner.Workers())
	t.Logf("  Total time: %v", elapsed)

	if run.Trials() != constants.DefaultTrials {
		t.Errorf("expected %d trials, got %d", constants.DefaultTrials, run.Trials())
	}
	if elapsed > 5*time.Second {
		t.Errorf("run took %v, exceeds 5 second threshold", elapsed)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/pkg/constants"
)

const sampleConfig = `simulation:
  trials: 500
  workers: 2
  seed: 42
runs:
  - name: Baseline
    active: true
  - name: Aggressive margin
    active: true
    ranges:
      margin: [0.35, 0.40]
      retainPayrollPct: [0.1, 0.2]
  - name: Disabled
    active: false
logging:
  level: debug
  format: console
output:
  format: csv
`

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Simulation.Trials != 500 {
		t.Errorf("expected 500 trials, got %d", conf.Simulation.Trials)
	}
	if conf.Simulation.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", conf.Simulation.Workers)
	}
	if conf.Simulation.Seed != 42 {
		t.Errorf("expected seed 42, got %d", conf.Simulation.Seed)
	}
	if len(conf.Runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(conf.Runs))
	}
	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("unexpected logging config %+v", conf.Logging)
	}
	if conf.Output.Format != constants.OutputFormatCSV {
		t.Errorf("expected csv output, got %q", conf.Output.Format)
	}
}

func TestLoadConfigurationFromReaderDefaultsTrials(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("runs:\n  - name: A\n    active: true\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if conf.Simulation.Trials != constants.DefaultTrials {
		t.Errorf("expected default trials %d, got %d", constants.DefaultTrials, conf.Simulation.Trials)
	}
}

func TestLoadConfigurationFromReaderInvalidYAML(t *testing.T) {
	if _, err := LoadConfigurationFromReader(strings.NewReader("runs: [unterminated")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestActiveRuns(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	active := conf.ActiveRuns()
	if len(active) != 2 {
		t.Fatalf("expected 2 active runs, got %d", len(active))
	}
	if active[0].Name != "Baseline" || active[1].Name != "Aggressive margin" {
		t.Errorf("active runs out of order: %q, %q", active[0].Name, active[1].Name)
	}
}

func TestToRangesOverlaysDefaults(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	ranges, err := conf.Runs[1].ToRanges()
	if err != nil {
		t.Fatalf("ToRanges() error = %v", err)
	}

	if ranges.Margin != (montecarlo.Range{Low: 0.35, High: 0.40}) {
		t.Errorf("margin override not applied: %+v", ranges.Margin)
	}
	if ranges.RetainPayrollPct != (montecarlo.Range{Low: 0.1, High: 0.2}) {
		t.Errorf("retainPayrollPct override not applied: %+v", ranges.RetainPayrollPct)
	}
	defaults := montecarlo.DefaultRanges()
	if ranges.Load != defaults.Load {
		t.Errorf("expected default load range %+v, got %+v", defaults.Load, ranges.Load)
	}
}

func TestToRangesErrors(t *testing.T) {
	tests := []struct {
		name   string
		ranges map[string][]float64
		errMsg string
	}{
		{
			name:   "Unknown parameter",
			ranges: map[string][]float64{"overhead": {0.1, 0.2}},
			errMsg: "unknown parameter",
		},
		{
			name:   "Single bound",
			ranges: map[string][]float64{"margin": {0.1}},
			errMsg: "expects [low, high]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunConfig{Name: "bad", Ranges: tt.ranges}.ToRanges()
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		conf     Configuration
		contains []string
	}{
		{
			name: "Clean configuration",
			conf: Configuration{
				Simulation: SimulationConfig{Trials: 10},
				Runs:       []RunConfig{{Name: "A", Active: true}},
			},
		},
		{
			name: "No active runs",
			conf: Configuration{
				Runs: []RunConfig{{Name: "A"}},
			},
			contains: []string{"no active runs"},
		},
		{
			name: "Duplicate names",
			conf: Configuration{
				Runs: []RunConfig{{Name: "A", Active: true}, {Name: "A", Active: true}},
			},
			contains: []string{"used more than once"},
		},
		{
			name: "Reversed and out of bounds",
			conf: Configuration{
				Runs: []RunConfig{{
					Name:   "A",
					Active: true,
					Ranges: map[string][]float64{
						"stopR":  {0.5, 0.1},
						"margin": {0.9, 1.0},
						"load":   {-0.1, 0.2},
					},
				}},
			},
			contains: []string{"stopR range [0.5, 0.1] is reversed", "margin can reach 1", "load range [-0.1, 0.2] falls outside"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.conf.ValidateConfiguration()
			if len(tt.contains) == 0 && len(warnings) != 0 {
				t.Fatalf("expected no warnings, got %v", warnings)
			}
			joined := strings.Join(warnings, "\n")
			for _, want := range tt.contains {
				if !strings.Contains(joined, want) {
					t.Errorf("expected warning containing %q, got %v", want, warnings)
				}
			}
		})
	}
}

func TestRunnerOptions(t *testing.T) {
	sim := SimulationConfig{Trials: 25, Workers: 3, Seed: 9}
	runner, err := montecarlo.NewRunner(nil, sim.RunnerOptions()...)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if runner.Trials() != 25 {
		t.Errorf("expected 25 trials, got %d", runner.Trials())
	}
	if runner.Workers() != 3 {
		t.Errorf("expected 3 workers, got %d", runner.Workers())
	}
}

// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for business-case.
type Configuration struct {
	Simulation SimulationConfig `yaml:"simulation,omitempty"`
	Runs       []RunConfig      `yaml:"runs"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, pdf
	File   string `yaml:"file,omitempty"`   // destination for pdf output
}

// SimulationConfig controls how each run is sampled.
type SimulationConfig struct {
	Trials  int    `yaml:"trials,omitempty"`
	Workers int    `yaml:"workers,omitempty"` // 0 selects GOMAXPROCS
	Seed    uint64 `yaml:"seed,omitempty"`    // 0 seeds from the runtime
}

// RunConfig describes one named run. Ranges maps a parameter key to its
// [low, high] pair; parameters left out keep their default range.
type RunConfig struct {
	Name   string               `yaml:"name"`
	Active bool                 `yaml:"active"`
	Ranges map[string][]float64 `yaml:"ranges,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.applyDefaults()
	return &configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Simulation.Trials == 0 {
		c.Simulation.Trials = constants.DefaultTrials
	}
}

// RunnerOptions translates the simulation settings into runner options.
func (s SimulationConfig) RunnerOptions() []montecarlo.Option {
	opts := []montecarlo.Option{
		montecarlo.WithTrials(s.Trials),
		montecarlo.WithWorkers(s.Workers),
	}
	if s.Seed != 0 {
		opts = append(opts, montecarlo.WithSources(montecarlo.SeededSources(s.Seed)))
	}
	return opts
}

// ActiveRuns returns the runs flagged active, in configuration order.
func (c *Configuration) ActiveRuns() []RunConfig {
	var active []RunConfig
	for _, run := range c.Runs {
		if run.Active {
			active = append(active, run)
		}
	}
	return active
}

// ToRanges overlays the configured ranges on the defaults. Keys are matched
// case-insensitively since viper lowercases them.
func (run RunConfig) ToRanges() (montecarlo.Ranges, error) {
	ranges := montecarlo.DefaultRanges()
	fields := ranges.Fields()

	keys := make([]string, 0, len(run.Ranges))
	for key := range run.Ranges {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		bounds := run.Ranges[key]
		target := lookupField(fields, key)
		if target == nil {
			return montecarlo.Ranges{}, fmt.Errorf("run %q: unknown parameter %q", run.Name, key)
		}
		if len(bounds) != 2 {
			return montecarlo.Ranges{}, fmt.Errorf("run %q: parameter %q expects [low, high], got %d values", run.Name, key, len(bounds))
		}
		*target = montecarlo.Range{Low: bounds[0], High: bounds[1]}
	}
	return ranges, nil
}

func lookupField(fields []montecarlo.NamedRange, key string) *montecarlo.Range {
	for _, f := range fields {
		if strings.EqualFold(f.Name, key) {
			return f.Range
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Simulation.Trials < 0 {
		warnings = append(warnings, fmt.Sprintf("simulation trials is negative (%d)", c.Simulation.Trials))
	}
	if len(c.ActiveRuns()) == 0 {
		warnings = append(warnings, "no active runs configured")
	}

	seen := make(map[string]bool)
	for _, run := range c.Runs {
		if seen[run.Name] {
			warnings = append(warnings, fmt.Sprintf("run name %q is used more than once", run.Name))
		}
		seen[run.Name] = true

		ranges, err := run.ToRanges()
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		warnings = append(warnings, RangeWarnings(run.Name, ranges)...)
	}
	return warnings
}

// RangeWarnings flags ranges that are reversed, reach outside [0,1], or let
// the margin reach 1.
func RangeWarnings(name string, ranges montecarlo.Ranges) []string {
	var warnings []string
	for _, f := range ranges.Fields() {
		r := *f.Range
		if r.Low > r.High {
			warnings = append(warnings, fmt.Sprintf("run %q: %s range [%g, %g] is reversed", name, f.Name, r.Low, r.High))
		}
		if r.Low < 0 || r.High > 1 || r.Low > 1 || r.High < 0 {
			warnings = append(warnings, fmt.Sprintf("run %q: %s range [%g, %g] falls outside [0, 1]", name, f.Name, r.Low, r.High))
		}
	}
	if ranges.Margin.High >= 1 || ranges.Margin.Low >= 1 {
		warnings = append(warnings, fmt.Sprintf("run %q: margin can reach 1, trials may be infinite or NaN", name))
	}
	return warnings
}

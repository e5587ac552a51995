// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/business-case/internal/montecarlo"
	"go.uber.org/zap"
)

// FindRun finds a run by name in the results slice.
// Returns a pointer to the run if found, nil otherwise.
func FindRun(results []montecarlo.Run, name string) *montecarlo.Run {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// SeededRunner returns a reproducible runner with the given trial count.
func SeededRunner(tb testing.TB, trials int, seed uint64) *montecarlo.Runner {
	tb.Helper()
	runner, err := montecarlo.NewRunner(zap.NewNop(),
		montecarlo.WithTrials(trials),
		montecarlo.WithWorkers(2),
		montecarlo.WithSources(montecarlo.SeededSources(seed)),
	)
	if err != nil {
		tb.Fatalf("failed to create runner: %v", err)
	}
	return runner
}

// Package session accumulates completed runs for side-by-side comparison.
package session

import (
	"context"
	"sync"

	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/pkg/constants"
)

// Session is an append-only list of runs that can be cleared as a whole.
// It is safe for concurrent use.
type Session struct {
	mu   sync.RWMutex
	runs []montecarlo.Run
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// ColorFor returns the palette colour for the run at index.
func ColorFor(index int) string {
	return constants.Palette[index%len(constants.Palette)]
}

// Append stores run, assigning the colour for its position, and returns the
// stored copy.
func (s *Session) Append(run montecarlo.Run) montecarlo.Run {
	run, _ = s.add(run)
	return run
}

// Submit executes one run with runner and appends it. It returns the stored
// run and its position in the list.
func (s *Session) Submit(ctx context.Context, runner *montecarlo.Runner, name string, ranges montecarlo.Ranges) (montecarlo.Run, int, error) {
	run, err := runner.Run(ctx, name, ranges)
	if err != nil {
		return montecarlo.Run{}, -1, err
	}
	run, index := s.add(run)
	return run, index, nil
}

func (s *Session) add(run montecarlo.Run) (montecarlo.Run, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := len(s.runs)
	run.Color = ColorFor(index)
	s.runs = append(s.runs, run)
	return run, index
}

// Runs returns a snapshot of the stored runs in submission order.
func (s *Session) Runs() []montecarlo.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]montecarlo.Run, len(s.runs))
	copy(out, s.runs)
	return out
}

// Len returns the number of stored runs.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Reset removes every stored run.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = nil
}

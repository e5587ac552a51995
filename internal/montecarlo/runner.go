// Package montecarlo draws independent scenarios from parameter ranges and
// evaluates the cost model for each of them.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/iwvelando/business-case/internal/costmodel"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/mathutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is how many trials a worker evaluates between context checks.
const cancelCheckInterval = 1024

// Source yields uniform values in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// SourceFactory builds the private source owned by one worker.
type SourceFactory func(worker int) Source

// SeededSources returns a factory whose per-worker streams are fully
// determined by seed and the worker index.
func SeededSources(seed uint64) SourceFactory {
	return func(worker int) Source {
		return rand.New(rand.NewPCG(seed, uint64(worker)))
	}
}

// RandomSources returns a factory seeding each worker from the runtime's
// random state.
func RandomSources() SourceFactory {
	return func(int) Source {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// Run is the outcome of one Monte Carlo invocation. Values are i.i.d. savings
// fractions; their order carries no meaning. A Run is not modified after it
// is returned.
type Run struct {
	Name     string        `json:"name"`
	Color    string        `json:"color,omitempty"`
	Values   []float64     `json:"values"`
	Ranges   Ranges        `json:"ranges"`
	Duration time.Duration `json:"duration"`
}

// Trials returns the number of trial values in the run.
func (r Run) Trials() int {
	return len(r.Values)
}

// NonFinite counts trial values that are NaN or infinite.
func (r Run) NonFinite() int {
	n := 0
	for _, v := range r.Values {
		if !mathutil.IsFinite(v) {
			n++
		}
	}
	return n
}

// Runner evaluates runs of a fixed trial count.
type Runner struct {
	logger  *zap.Logger
	trials  int
	workers int
	sources SourceFactory
}

// Option configures a Runner.
type Option func(*Runner)

// WithTrials sets the number of trials per run.
func WithTrials(n int) Option {
	return func(r *Runner) { r.trials = n }
}

// WithWorkers sets the number of goroutines sharing a run. Values below one
// select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithSources sets how each worker's random source is built.
func WithSources(f SourceFactory) Option {
	return func(r *Runner) { r.sources = f }
}

// NewRunner constructs a Runner with DefaultTrials trials and one worker per
// available CPU unless overridden.
func NewRunner(logger *zap.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{
		logger:  logger,
		trials:  constants.DefaultTrials,
		sources: RandomSources(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.trials < 0 {
		return nil, fmt.Errorf("trial count cannot be negative, got %d", r.trials)
	}
	if r.sources == nil {
		return nil, fmt.Errorf("source factory cannot be nil")
	}
	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r, nil
}

// Trials returns the configured trial count.
func (r *Runner) Trials() int {
	return r.trials
}

// Workers returns the configured worker count.
func (r *Runner) Workers() int {
	return r.workers
}

// Run draws the configured number of trials from ranges and returns them as
// a named run. Ranges with Low > High are rejected with *InvalidRangeError.
// Non-finite trial values are kept in place.
func (r *Runner) Run(ctx context.Context, name string, ranges Ranges) (Run, error) {
	if err := ranges.Validate(); err != nil {
		return Run{}, err
	}

	start := time.Now()
	values := make([]float64, r.trials)

	workers := r.workers
	if workers > r.trials {
		workers = r.trials
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := 0
	if workers > 0 {
		chunk = (r.trials + workers - 1) / workers
	}
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, r.trials)
		if lo >= hi {
			break
		}
		src := r.sources(w)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				values[i] = costmodel.TotalSavings(ranges.Draw(src))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Run{}, fmt.Errorf("run %q aborted: %w", name, err)
	}

	run := Run{
		Name:     name,
		Values:   values,
		Ranges:   ranges,
		Duration: time.Since(start),
	}

	if bad := run.NonFinite(); bad > 0 {
		r.logger.Warn("run contains non-finite trial values",
			zap.String("op", "montecarlo.Run"),
			zap.String("run", name),
			zap.Int("nonFinite", bad),
			zap.Int("trials", r.trials),
		)
	}
	r.logger.Debug("run completed",
		zap.String("op", "montecarlo.Run"),
		zap.String("run", name),
		zap.Int("trials", r.trials),
		zap.Int("workers", workers),
		zap.Duration("duration", run.Duration),
	)

	return run, nil
}

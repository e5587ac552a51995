// Package forecast evaluates every active run of a configuration and collects
// the results for side-by-side comparison.
package forecast

import (
	"context"
	"fmt"

	"github.com/iwvelando/business-case/internal/config"
	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/internal/session"
	"go.uber.org/zap"
)

// GetForecast runs every active configured run with runner, in configuration
// order, and appends each to sess. Inactive runs are skipped. The first run
// that fails aborts the rest; runs completed before it remain in sess.
func GetForecast(ctx context.Context, logger *zap.Logger, conf config.Configuration, runner *montecarlo.Runner, sess *session.Session) ([]montecarlo.Run, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if sess == nil {
		sess = session.New()
	}

	var results []montecarlo.Run
	for _, runConf := range conf.Runs {
		if !runConf.Active {
			logger.Debug(fmt.Sprintf("skipping run %s because it is inactive", runConf.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		ranges, err := runConf.ToRanges()
		if err != nil {
			return results, err
		}

		run, _, err := sess.Submit(ctx, runner, runConf.Name, ranges)
		if err != nil {
			return results, fmt.Errorf("run %q: %w", runConf.Name, err)
		}

		logger.Debug("run computed",
			zap.String("op", "forecast.GetForecast"),
			zap.String("run", run.Name),
			zap.String("color", run.Color),
			zap.Int("trials", run.Trials()),
			zap.Duration("duration", run.Duration),
		)
		results = append(results, run)
	}

	return results, nil
}

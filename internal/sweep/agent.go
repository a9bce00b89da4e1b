package sweep

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

// TrialFunc runs one training invocation with the sampled parameters and
// returns the value of the objective metric.
type TrialFunc func(ctx context.Context, sweepID string, trial int, params map[string]float64) (float64, error)

// Best records the winning trial of a sweep.
type Best struct {
	Trial  int
	Params map[string]float64
	Metric float64
}

// Agent drives one sweep: sample, invoke, compare, repeat. Trials run
// strictly sequentially; a failing trial aborts the sweep, mirroring the
// pipeline's no-retry contract.
type Agent struct {
	cfg *Config
}

// NewAgent creates an agent for the loaded sweep configuration.
func NewAgent(cfg *Config) *Agent {
	return &Agent{cfg: cfg}
}

// Run executes up to maxRuns trials (or cfg.RunCap when maxRuns is zero)
// and returns the best trial by the objective metric. A grid sweep may
// finish earlier when the grid is exhausted.
func (a *Agent) Run(ctx context.Context, maxRuns int, seed uint64, trial TrialFunc) (*Best, error) {
	logger := ctxlog.FromContext(ctx)

	if maxRuns <= 0 {
		maxRuns = a.cfg.RunCap
	}
	if maxRuns <= 0 {
		return nil, fmt.Errorf("sweep has no run budget: set run_cap in the sweep file or pass a run count")
	}

	sweepID := uuid.NewString()
	sampler := NewSampler(a.cfg, seed)
	logger.Info("🧹 Sweep started.", "sweep_id", sweepID, "method", a.cfg.Method, "metric", a.cfg.Metric.Name, "goal", a.cfg.Metric.Goal, "max_runs", maxRuns)

	var best *Best
	for i := 0; i < maxRuns; i++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		params, ok := sampler.Next()
		if !ok {
			logger.Info("Search space exhausted.", "trials", i)
			break
		}

		value, err := trial(ctx, sweepID, i, params)
		if err != nil {
			return best, fmt.Errorf("sweep trial %d failed: %w", i, err)
		}
		logger.Info("Sweep trial finished.", "trial", i, "params", params, a.cfg.Metric.Name, value)

		if best == nil || a.improves(value, best.Metric) {
			best = &Best{Trial: i, Params: params, Metric: value}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("sweep produced no trials")
	}
	logger.Info("🏁 Sweep finished.", "best_trial", best.Trial, "best_params", best.Params, a.cfg.Metric.Name, best.Metric)
	return best, nil
}

func (a *Agent) improves(candidate, incumbent float64) bool {
	if a.cfg.Metric.Goal == GoalMaximize {
		return candidate > incumbent
	}
	return candidate < incumbent
}

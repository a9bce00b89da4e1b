package app

import (
	"context"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/specialistvlad/mlgridgo/internal/pipeline"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if appConfig.HealthcheckPort > 0 {
		a.startHealthcheckServer(appConfig.HealthcheckPort)
	}

	a.setPhase(phaseRunning)
	if err := a.dispatch(ctx, appConfig); err != nil {
		a.setPhase(phaseFailed)
		return err
	}
	a.setPhase(phaseFinished)
	return nil
}

// dispatch picks the invocation mode: sweep, single-step resume, or a full
// pipeline run.
func (a *App) dispatch(ctx context.Context, appConfig *Config) error {
	if appConfig.SweepPath != "" {
		return a.runSweep(ctx, appConfig)
	}

	driver := pipeline.New(a.config, a.registry, a.converter, a.store, a.tracker, a.workDir)
	if appConfig.StepName != "" {
		a.logger.Info("🚀 Running single step.", "step", appConfig.StepName)
		return driver.RunSingle(ctx, appConfig.StepName)
	}

	a.logger.Info("🚀 Starting pipeline run.", "steps", len(a.config.Steps))
	if err := driver.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("🏁 Pipeline finished.")
	return nil
}

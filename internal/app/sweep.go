package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/mlgridgo/internal/config"
	"github.com/specialistvlad/mlgridgo/internal/pipeline"
	"github.com/specialistvlad/mlgridgo/internal/sweep"
	"github.com/specialistvlad/mlgridgo/internal/tracking"
)

// runSweep drives a hyperparameter sweep: each trial re-runs the target
// step with sampled argument values, as its own tracking run tagged with
// the sweep id. The upstream steps are not re-run; their artifacts must
// already exist in the store from a previous pipeline run.
func (a *App) runSweep(ctx context.Context, appConfig *Config) error {
	cfg, err := sweep.Load(appConfig.SweepPath)
	if err != nil {
		return err
	}

	target, err := a.sweepTarget(appConfig.StepName)
	if err != nil {
		return err
	}
	a.logger.Info("Sweep target resolved.", "step", target.ID())

	trial := func(ctx context.Context, sweepID string, trialNum int, params map[string]float64) (float64, error) {
		model := a.modelWithOverrides(target, params)
		tracker := &trialTracker{
			inner: a.tracker,
			name:  fmt.Sprintf("trial-%d", trialNum),
			tags: map[string]string{
				"sweep_id":    sweepID,
				"sweep_trial": strconv.Itoa(trialNum),
			},
		}

		driver := pipeline.New(model, a.registry, a.converter, a.store, tracker, a.workDir)
		if err := driver.RunSingle(ctx, target.Name); err != nil {
			return 0, err
		}
		return trialMetric(driver.StepRuns(), target.Name, cfg.Metric.Name)
	}

	agent := sweep.NewAgent(cfg)
	best, err := agent.Run(ctx, appConfig.SweepRuns, uint64(time.Now().UnixNano()), trial)
	if err != nil {
		return err
	}

	a.logger.Info("Best trial.", "trial", best.Trial, "params", best.Params, cfg.Metric.Name, best.Metric)
	return nil
}

// sweepTarget picks the step whose arguments the sweep overrides: the step
// named by --step when given, otherwise the pipeline's single training step.
func (a *App) sweepTarget(stepName string) (*config.Step, error) {
	if stepName != "" {
		for _, s := range a.config.Steps {
			if s.Name == stepName {
				return s, nil
			}
		}
		return nil, fmt.Errorf("no step named %q in the pipeline", stepName)
	}

	var target *config.Step
	for _, s := range a.config.Steps {
		if s.RunnerType != "train" {
			continue
		}
		if target != nil {
			return nil, fmt.Errorf("pipeline has multiple train steps; pick one with --step")
		}
		target = s
	}
	if target == nil {
		return nil, fmt.Errorf("pipeline has no train step to sweep; pick a target with --step")
	}
	return target, nil
}

// modelWithOverrides returns a copy of the loaded model in which the target
// step's arguments carry the sampled values as literal expressions. The
// loaded model itself stays untouched so trials cannot leak into each other.
func (a *App) modelWithOverrides(target *config.Step, params map[string]float64) *config.Model {
	override := &config.Step{
		RunnerType: target.RunnerType,
		Name:       target.Name,
		Arguments:  make(map[string]hcl.Expression, len(target.Arguments)+len(params)),
	}
	for k, v := range target.Arguments {
		override.Arguments[k] = v
	}
	for k, v := range params {
		override.Arguments[k] = &hclsyntax.LiteralValueExpr{Val: cty.NumberFloatVal(v)}
	}

	model := &config.Model{
		Pipeline: a.config.Pipeline,
		Steps:    make([]*config.Step, len(a.config.Steps)),
		Runners:  a.config.Runners,
	}
	for i, s := range a.config.Steps {
		if s == target {
			model.Steps[i] = override
		} else {
			model.Steps[i] = s
		}
	}
	return model
}

// trialMetric pulls the objective metric out of the target step's output.
func trialMetric(runs []*pipeline.StepRun, stepName, metric string) (float64, error) {
	for _, sr := range runs {
		if sr.Step.Name != stepName {
			continue
		}
		out := sr.Output
		if out == cty.NilVal || !out.Type().IsObjectType() || !out.Type().HasAttribute(metric) {
			return 0, fmt.Errorf("step %s did not report metric %q", sr.Step.ID(), metric)
		}
		v, _ := out.GetAttr(metric).AsBigFloat().Float64()
		return v, nil
	}
	return 0, fmt.Errorf("no step named %q in the trial", stepName)
}

// trialTracker decorates a tracking client so every run a trial opens gets
// the trial's name and sweep tags.
type trialTracker struct {
	inner tracking.Client
	name  string
	tags  map[string]string
}

func (t *trialTracker) StartRun(ctx context.Context, cfg tracking.RunConfig) (tracking.Run, error) {
	cfg.Name = t.name
	if cfg.Tags == nil {
		cfg.Tags = make(map[string]string, len(t.tags))
	}
	for k, v := range t.tags {
		cfg.Tags[k] = v
	}
	return t.inner.StartRun(ctx, cfg)
}

package pipeline

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/mlgridgo/internal/artifact"
	"github.com/specialistvlad/mlgridgo/internal/config"
	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/specialistvlad/mlgridgo/internal/registry"
	"github.com/specialistvlad/mlgridgo/internal/tracking"
	"github.com/zclconf/go-cty/cty"
)

// Driver sequences the configured steps. One Driver serves one invocation.
type Driver struct {
	model     *config.Model
	registry  *registry.Registry
	converter config.Converter
	store     artifact.Store
	tracker   tracking.Client
	workDir   string

	runs []*StepRun
}

// New creates a driver for the loaded configuration.
func New(model *config.Model, reg *registry.Registry, conv config.Converter, store artifact.Store, tracker tracking.Client, workDir string) *Driver {
	runs := make([]*StepRun, 0, len(model.Steps))
	for _, s := range model.Steps {
		runs = append(runs, &StepRun{Step: s, State: Pending})
	}
	return &Driver{
		model:     model,
		registry:  reg,
		converter: conv,
		store:     store,
		tracker:   tracker,
		workDir:   workDir,
		runs:      runs,
	}
}

// StepRuns exposes the per-step records, primarily for tests and reporting.
func (d *Driver) StepRuns() []*StepRun { return d.runs }

// Run executes every configured step in declaration order. The first
// failure aborts the sequence: the failing step's error is returned and all
// later steps are marked Skipped, never invoked.
func (d *Driver) Run(ctx context.Context) error {
	return d.run(ctx, "")
}

// RunSingle executes exactly one step by instance name, for manually
// resuming a pipeline from a failed step. Earlier steps are not re-run;
// their artifacts are expected to exist in the store already.
func (d *Driver) RunSingle(ctx context.Context, stepName string) error {
	for _, sr := range d.runs {
		if sr.Step.Name == stepName {
			return d.run(ctx, stepName)
		}
	}
	return fmt.Errorf("no step named %q in the pipeline", stepName)
}

func (d *Driver) run(ctx context.Context, only string) error {
	logger := ctxlog.FromContext(ctx)

	if d.model.Pipeline == nil {
		return fmt.Errorf("configuration has no 'pipeline' block")
	}
	if err := d.checkDuplicateSteps(); err != nil {
		return err
	}

	run, err := d.tracker.StartRun(ctx, tracking.RunConfig{
		Project: d.model.Pipeline.ProjectName,
		Group:   d.model.Pipeline.ExperimentName,
		Name:    "pipeline",
	})
	if err != nil {
		return fmt.Errorf("failed to start tracking run: %w", err)
	}

	deps := &Deps{
		Store:   d.store,
		Run:     run,
		Project: d.model.Pipeline.ProjectName,
		Group:   d.model.Pipeline.ExperimentName,
		WorkDir: d.workDir,
	}

	var failed *StepRun
	for i, sr := range d.runs {
		if only != "" && sr.Step.Name != only {
			continue
		}
		if failed != nil {
			sr.State = Skipped
			logger.Warn("Skipping step due to upstream failure.", "step", sr.Step.ID(), "failed", failed.Step.ID())
			continue
		}

		if err := d.executeStep(ctx, sr, deps, d.runs[:i]); err != nil {
			sr.State = Failed
			sr.Err = err
			failed = sr
			continue
		}
		sr.State = Done
	}

	if failed != nil {
		if err := run.Finish(ctx, tracking.StatusFailed); err != nil {
			logger.Warn("Failed to close tracking run.", "error", err)
		}
		return fmt.Errorf("step %s failed: %w", failed.Step.ID(), failed.Err)
	}

	if err := run.Finish(ctx, tracking.StatusFinished); err != nil {
		logger.Warn("Failed to close tracking run.", "error", err)
	}
	return nil
}

// executeStep decodes the step's arguments against its manifest, calls the
// registered Go handler, and records the converted output.
func (d *Driver) executeStep(ctx context.Context, sr *StepRun, deps *Deps, completed []*StepRun) error {
	logger := ctxlog.FromContext(ctx).With("step", sr.Step.ID())
	logger.Info("▶️ Starting step")
	sr.State = Running

	if err := deps.Run.SetTag(ctx, "current_step", sr.Step.ID()); err != nil {
		logger.Warn("Failed to tag tracking run with step boundary.", "error", err)
	}

	runnerDef, ok := d.registry.DefinitionRegistry[sr.Step.RunnerType]
	if !ok {
		return fmt.Errorf("unknown runner type '%s'", sr.Step.RunnerType)
	}
	handlerName := runnerDef.Lifecycle.OnRun
	registeredHandler, ok := d.registry.HandlerRegistry[handlerName]
	if !ok {
		return fmt.Errorf("handler '%s' not registered", handlerName)
	}

	evalCtx := buildEvalContext(ctx, completed)

	inputStruct := registeredHandler.NewInput()
	if inputStruct != nil {
		err := d.converter.DecodeArguments(ctx, inputStruct, sr.Step.Arguments, runnerDef.Inputs, evalCtx)
		if err != nil {
			return fmt.Errorf("failed to decode arguments: %w", err)
		}
	}

	logger.Debug("Calling step run handler.", "handler", handlerName)
	handlerFunc := reflect.ValueOf(registeredHandler.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(deps)}

	if inputStruct == nil {
		inputType := handlerFunc.Type().In(2)
		callArgs = append(callArgs, reflect.Zero(inputType))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(inputStruct))
	}

	results := handlerFunc.Call(callArgs)
	nativeOutput, errResult := results[0].Interface(), results[1].Interface()
	if errResult != nil {
		return errResult.(error)
	}

	ctyOutput := cty.NilVal
	if nativeOutput != nil {
		var err error
		ctyOutput, err = d.converter.ToCtyValue(nativeOutput)
		if err != nil {
			return fmt.Errorf("failed to convert handler output to cty.Value: %w", err)
		}
	}
	sr.Output = ctyOutput

	logger.Info("✅ Finished step")
	return nil
}

// checkDuplicateSteps rejects pipelines where two steps share an instance
// name. Artifact chains and --step address steps by bare name, so a repeated
// name would make both ambiguous even across different runner types.
func (d *Driver) checkDuplicateSteps() error {
	seen := make(map[string]string, len(d.runs))
	for _, sr := range d.runs {
		name := sr.Step.Name
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("duplicate step name '%s' (%s and %s)", name, prev, sr.Step.ID())
		}
		seen[name] = sr.Step.ID()
	}
	return nil
}

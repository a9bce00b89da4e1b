package pipeline

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// buildEvalContext creates the HCL evaluation context for the next step.
// Completed steps' outputs are exposed as step.<runner_type>.<name>.output,
// so a step may reference anything produced before it in the sequence.
func buildEvalContext(ctx context.Context, completed []*StepRun) *hcl.EvalContext {
	logger := ctxlog.FromContext(ctx)
	vars := make(map[string]cty.Value)

	stepOutputsByRunner := make(map[string]map[string]cty.Value)

	for _, sr := range completed {
		if !sr.outputKnown() {
			continue
		}
		runnerType := sr.Step.RunnerType
		if _, ok := stepOutputsByRunner[runnerType]; !ok {
			stepOutputsByRunner[runnerType] = make(map[string]cty.Value)
		}
		stepOutputsByRunner[runnerType][sr.Step.Name] = cty.ObjectVal(map[string]cty.Value{
			"output": sr.Output,
		})
	}

	finalStepOutputs := make(map[string]cty.Value)
	for runnerType, instancesMap := range stepOutputsByRunner {
		finalStepOutputs[runnerType] = cty.ObjectVal(instancesMap)
	}

	vars["step"] = cty.ObjectVal(finalStepOutputs)
	logger.Debug("Finished building HCL evaluation context.", "completed_steps", len(completed))
	return &hcl.EvalContext{Variables: vars}
}

package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Primary Pipeline Structures ---

// StepArgs represents the content of the 'arguments' block within a step.
type StepArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Pipeline represents the `pipeline` block from a user's pipeline file. It
// names the tracking project and the experiment group all runs belong to.
type Pipeline struct {
	ProjectName    string `hcl:"project_name"`
	ExperimentName string `hcl:"experiment_name"`
}

// Step represents a `step` block from a user's pipeline file. It is a
// runnable instance of a defined runner.
type Step struct {
	RunnerType string    `hcl:"runner_type,label"`
	Name       string    `hcl:"instance_name,label"`
	Arguments  *StepArgs `hcl:"arguments,block"`
}

// --- Module Manifest Schemas ---

// Lifecycle defines the mapping from a runner's run event to a registered
// Go handler function.
type Lifecycle struct {
	OnRun string `hcl:"on_run"`
}

// InputDefinition defines a single input variable for a runner.
type InputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
}

// OutputDefinition defines a single output value produced by a runner.
type OutputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

// RunnerDefinition represents the HCL manifest for a runnable `runner` type.
type RunnerDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *Lifecycle          `hcl:"lifecycle,block"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
}

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Pipeline files and module manifests share one grammar, so any block
// may appear in any discovered file.
type fileRoot struct {
	Pipelines []*Pipeline         `hcl:"pipeline,block"`
	Runners   []*RunnerDefinition `hcl:"runner,block"`
	Steps     []*Step             `hcl:"step,block"`
	Remain    hcl.Body            `hcl:",remain"`
}

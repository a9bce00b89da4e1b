package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of the entire
// application configuration: the pipeline header, the ordered step list,
// and all step type definitions loaded from module manifests.
type Model struct {
	Pipeline *Pipeline
	Steps    []*Step
	Runners  map[string]*RunnerDefinition
}

// Pipeline is the format-agnostic representation of the `pipeline` block.
// It is immutable for the duration of one invocation.
type Pipeline struct {
	ProjectName    string
	ExperimentName string
}

// Step is the format-agnostic representation of a `step` block. Steps run
// in the order they are declared.
type Step struct {
	RunnerType string
	Name       string
	Arguments  map[string]hcl.Expression
}

// ID returns the canonical identifier for a step instance, used in logs,
// error messages, and eval-context references.
func (s *Step) ID() string {
	return "step." + s.RunnerType + "." + s.Name
}

// --- Module Manifest Models ---

// RunnerDefinition is the format-agnostic representation of a step type's
// manifest: its parameter schema and the Go handler bound to it.
type RunnerDefinition struct {
	Type        string
	Description string
	Lifecycle   *Lifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
}

// Lifecycle maps a step type's run event to a Go handler name.
type Lifecycle struct {
	OnRun string
}

// InputDefinition defines a single input argument for a step type.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// OutputDefinition defines a single output value produced by a step type.
type OutputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
}

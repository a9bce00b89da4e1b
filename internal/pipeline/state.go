package pipeline

import (
	"github.com/specialistvlad/mlgridgo/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// State is the lifecycle state of one step within a pipeline invocation.
type State int

const (
	Pending State = iota
	Running
	Done
	Failed
	Skipped
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// StepRun is the per-invocation record of one step: its configuration, its
// state, and (once done) its output exposed to later steps' expressions.
type StepRun struct {
	Step   *config.Step
	State  State
	Output cty.Value
	Err    error
}

// outputKnown reports whether the step produced a value usable in an eval
// context.
func (sr *StepRun) outputKnown() bool {
	return sr.State == Done && sr.Output != cty.NilVal
}

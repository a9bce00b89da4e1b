// Package tracking is the client side of the experiment tracking service.
// The driver opens one run per pipeline invocation, the training step logs
// params and metrics into it, and the sweep agent opens one run per sampled
// candidate. The service itself (run storage, UI, search) is an external
// collaborator; this package only speaks its API or, offline, records the
// same events locally.
package tracking

import "context"

// Status is the lifecycle state of a tracking run.
type Status string

const (
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
	StatusFailed   Status = "FAILED"
)

// RunConfig describes a run to be opened. Project and Group travel
// explicitly with every run instead of through process environment.
type RunConfig struct {
	Project string
	Group   string
	Name    string
	Tags    map[string]string
}

// Client opens tracking runs.
type Client interface {
	StartRun(ctx context.Context, cfg RunConfig) (Run, error)
}

// Run is an open tracking run. All operations are best-effort remote calls;
// a failed call returns the transport error and the run stays usable.
type Run interface {
	// ID returns the service-assigned run identifier.
	ID() string

	// LogParam records a single hyperparameter value.
	LogParam(ctx context.Context, key, value string) error

	// LogMetric records a single named metric value.
	LogMetric(ctx context.Context, key string, value float64) error

	// SetTag attaches a key/value tag to the run.
	SetTag(ctx context.Context, key, value string) error

	// Finish closes the run with the given terminal status.
	Finish(ctx context.Context, status Status) error
}

// Package testutil provides small helpers shared by the test suites: a
// context with a discard logger and an in-memory tracking client.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/specialistvlad/mlgridgo/internal/tracking"
)

// Context returns a context carrying a logger that discards all output.
func Context() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

// RecordingClient is a tracking.Client that keeps every opened run in memory.
type RecordingClient struct {
	mu   sync.Mutex
	Runs []*RecordingRun
}

// StartRun implements tracking.Client.
func (c *RecordingClient) StartRun(ctx context.Context, cfg tracking.RunConfig) (tracking.Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run := &RecordingRun{
		Config:  cfg,
		Params:  make(map[string]string),
		Metrics: make(map[string]float64),
		Tags:    make(map[string]string),
	}
	run.id = fmt.Sprintf("rec-%d", len(c.Runs))
	c.Runs = append(c.Runs, run)
	return run, nil
}

// RecordingRun is a tracking.Run that records everything logged into it.
type RecordingRun struct {
	mu sync.Mutex
	id string

	Config   tracking.RunConfig
	Params   map[string]string
	Metrics  map[string]float64
	Tags     map[string]string
	Statuses []tracking.Status
}

func (r *RecordingRun) ID() string { return r.id }

func (r *RecordingRun) LogParam(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Params[key] = value
	return nil
}

func (r *RecordingRun) LogMetric(ctx context.Context, key string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Metrics[key] = value
	return nil
}

func (r *RecordingRun) SetTag(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tags[key] = value
	return nil
}

func (r *RecordingRun) Finish(ctx context.Context, status tracking.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Statuses = append(r.Statuses, status)
	return nil
}

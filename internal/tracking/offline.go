package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

// OfflineClient records tracking events as JSON lines in a local file. It
// is the default when no tracking URL is configured, so a pipeline run
// never requires network access to the tracking service.
type OfflineClient struct {
	path string

	mu sync.Mutex
}

// NewOfflineClient creates a recorder writing to <dir>/runs.jsonl.
func NewOfflineClient(dir string) (*OfflineClient, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tracking directory %s: %w", dir, err)
	}
	return &OfflineClient{path: filepath.Join(dir, "runs.jsonl")}, nil
}

// Path returns the file the recorder appends to.
func (c *OfflineClient) Path() string { return c.path }

// event is one recorded tracking action. The file is append-only and
// human-readable; nothing in the pipeline parses it back.
type event struct {
	Time    time.Time         `json:"time"`
	RunID   string            `json:"run_id"`
	Event   string            `json:"event"`
	Project string            `json:"project,omitempty"`
	Group   string            `json:"group,omitempty"`
	Name    string            `json:"name,omitempty"`
	Key     string            `json:"key,omitempty"`
	Value   string            `json:"value,omitempty"`
	Metric  *float64          `json:"metric,omitempty"`
	Status  string            `json:"status,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

func (c *OfflineClient) append(ev event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open tracking log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}

// StartRun opens a locally-recorded run with a fresh id.
func (c *OfflineClient) StartRun(ctx context.Context, cfg RunConfig) (Run, error) {
	id := uuid.NewString()
	err := c.append(event{
		Time: time.Now().UTC(), RunID: id, Event: "start",
		Project: cfg.Project, Group: cfg.Group, Name: cfg.Name, Tags: cfg.Tags,
	})
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("🧪 Tracking run started (offline).", "run_id", id, "project", cfg.Project, "group", cfg.Group)
	return &offlineRun{client: c, id: id}, nil
}

type offlineRun struct {
	client *OfflineClient
	id     string
}

func (r *offlineRun) ID() string { return r.id }

func (r *offlineRun) LogParam(ctx context.Context, key, value string) error {
	return r.client.append(event{Time: time.Now().UTC(), RunID: r.id, Event: "param", Key: key, Value: value})
}

func (r *offlineRun) LogMetric(ctx context.Context, key string, value float64) error {
	return r.client.append(event{Time: time.Now().UTC(), RunID: r.id, Event: "metric", Key: key, Metric: &value})
}

func (r *offlineRun) SetTag(ctx context.Context, key, value string) error {
	return r.client.append(event{Time: time.Now().UTC(), RunID: r.id, Event: "tag", Key: key, Value: value})
}

func (r *offlineRun) Finish(ctx context.Context, status Status) error {
	return r.client.append(event{Time: time.Now().UTC(), RunID: r.id, Event: "finish", Status: string(status)})
}

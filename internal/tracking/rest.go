package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

// RESTClient talks to an MLflow-compatible tracking server over JSON HTTP.
type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTClient creates a client for the tracking server at baseURL
// (scheme and host, no trailing slash required).
func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StartRun resolves (or creates) the experiment named by cfg.Project and
// opens a run in it, tagged with the run group.
func (c *RESTClient) StartRun(ctx context.Context, cfg RunConfig) (Run, error) {
	logger := ctxlog.FromContext(ctx)

	experimentID, err := c.experimentID(ctx, cfg.Project)
	if err != nil {
		return nil, err
	}

	tags := []keyValue{{Key: "run_group", Value: cfg.Group}}
	for k, v := range cfg.Tags {
		tags = append(tags, keyValue{Key: k, Value: v})
	}

	var created struct {
		Run struct {
			Info struct {
				RunID string `json:"run_id"`
			} `json:"info"`
		} `json:"run"`
	}
	err = c.post(ctx, "runs/create", map[string]any{
		"experiment_id": experimentID,
		"run_name":      cfg.Name,
		"start_time":    time.Now().UnixMilli(),
		"tags":          tags,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracking run: %w", err)
	}

	logger.Info("🧪 Tracking run started.", "run_id", created.Run.Info.RunID, "project", cfg.Project, "group", cfg.Group)
	return &restRun{client: c, id: created.Run.Info.RunID}, nil
}

// experimentID returns the id of the named experiment, creating it when the
// server does not know it yet. Only a not-found reply triggers the create;
// a transport failure or any other server error is reported as what it is.
func (c *RESTClient) experimentID(ctx context.Context, name string) (string, error) {
	var got struct {
		Experiment struct {
			ExperimentID string `json:"experiment_id"`
		} `json:"experiment"`
	}
	err := c.get(ctx, "experiments/get-by-name", url.Values{"experiment_name": {name}}, &got)
	switch {
	case err == nil:
		return got.Experiment.ExperimentID, nil
	case !isNotFound(err):
		return "", fmt.Errorf("failed to look up experiment %q: %w", name, err)
	}

	var created struct {
		ExperimentID string `json:"experiment_id"`
	}
	if err := c.post(ctx, "experiments/create", map[string]any{"name": name}, &created); err != nil {
		return "", fmt.Errorf("failed to create experiment %q: %w", name, err)
	}
	return created.ExperimentID, nil
}

// restRun implements Run against the REST API.
type restRun struct {
	client *RESTClient
	id     string
}

func (r *restRun) ID() string { return r.id }

func (r *restRun) LogParam(ctx context.Context, key, value string) error {
	return r.client.post(ctx, "runs/log-parameter", map[string]any{
		"run_id": r.id, "key": key, "value": value,
	}, nil)
}

func (r *restRun) LogMetric(ctx context.Context, key string, value float64) error {
	return r.client.post(ctx, "runs/log-metric", map[string]any{
		"run_id": r.id, "key": key, "value": value,
		"timestamp": time.Now().UnixMilli(), "step": 0,
	}, nil)
}

func (r *restRun) SetTag(ctx context.Context, key, value string) error {
	return r.client.post(ctx, "runs/set-tag", map[string]any{
		"run_id": r.id, "key": key, "value": value,
	}, nil)
}

func (r *restRun) Finish(ctx context.Context, status Status) error {
	return r.client.post(ctx, "runs/update", map[string]any{
		"run_id": r.id, "status": string(status), "end_time": time.Now().UnixMilli(),
	}, nil)
}

type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (c *RESTClient) endpoint(path string) string {
	return c.baseURL + "/api/2.0/mlflow/" + path
}

func (c *RESTClient) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path)+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *RESTClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *RESTClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &apiError{status: resp.StatusCode, path: req.URL.Path, body: string(body)}
		var parsed struct {
			Code string `json:"error_code"`
		}
		if json.Unmarshal(body, &parsed) == nil {
			apiErr.code = parsed.Code
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError is a non-2xx reply from the tracking server, as opposed to a
// transport-level failure.
type apiError struct {
	status int
	code   string
	path   string
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("tracking server returned %d for %s: %s", e.status, e.path, e.body)
}

func isNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) &&
		(apiErr.status == http.StatusNotFound || apiErr.code == "RESOURCE_DOES_NOT_EXIST")
}

package tracking

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

// fakeTrackingServer imitates the slice of the MLflow REST API the client
// talks to, recording every call.
type fakeTrackingServer struct {
	t *testing.T

	failLookup       bool
	knownExperiments map[string]string
	created          []string
	params           []map[string]any
	metrics          []map[string]any
	tags             []map[string]any
	updates          []map[string]any
}

func (f *fakeTrackingServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/2.0/mlflow/experiments/get-by-name", func(w http.ResponseWriter, r *http.Request) {
		if f.failLookup {
			http.Error(w, `{"error_code": "INTERNAL_ERROR"}`, http.StatusInternalServerError)
			return
		}
		name := r.URL.Query().Get("experiment_name")
		id, ok := f.knownExperiments[name]
		if !ok {
			http.Error(w, `{"error_code": "RESOURCE_DOES_NOT_EXIST"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"experiment": map[string]any{"experiment_id": id}})
	})

	mux.HandleFunc("/api/2.0/mlflow/experiments/create", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(f.t, r)
		name := body["name"].(string)
		f.knownExperiments[name] = "exp-" + name
		f.created = append(f.created, name)
		json.NewEncoder(w).Encode(map[string]any{"experiment_id": "exp-" + name})
	})

	mux.HandleFunc("/api/2.0/mlflow/runs/create", func(w http.ResponseWriter, r *http.Request) {
		decodeBody(f.t, r)
		json.NewEncoder(w).Encode(map[string]any{
			"run": map[string]any{"info": map[string]any{"run_id": "run-123"}},
		})
	})

	record := func(into *[]map[string]any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			*into = append(*into, decodeBody(f.t, r))
			w.Write([]byte("{}"))
		}
	}
	mux.HandleFunc("/api/2.0/mlflow/runs/log-parameter", record(&f.params))
	mux.HandleFunc("/api/2.0/mlflow/runs/log-metric", record(&f.metrics))
	mux.HandleFunc("/api/2.0/mlflow/runs/set-tag", record(&f.tags))
	mux.HandleFunc("/api/2.0/mlflow/runs/update", record(&f.updates))

	return mux
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestRESTClient_RunLifecycle(t *testing.T) {
	t.Parallel()
	ctx := testContext()

	fake := &fakeTrackingServer{t: t, knownExperiments: map[string]string{}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := NewRESTClient(server.URL)
	run, err := client.StartRun(ctx, RunConfig{
		Project: "Pokemon_exercise",
		Group:   "dev",
		Name:    "pipeline",
		Tags:    map[string]string{"sweep_id": "s-1"},
	})
	require.NoError(t, err)
	require.Equal(t, "run-123", run.ID())

	// The unknown experiment was created on first use.
	require.Equal(t, []string{"Pokemon_exercise"}, fake.created)

	require.NoError(t, run.LogParam(ctx, "n_estimators", "100"))
	require.NoError(t, run.LogMetric(ctx, "mae", 12.5))
	require.NoError(t, run.SetTag(ctx, "current_step", "step.train.train"))
	require.NoError(t, run.Finish(ctx, StatusFinished))

	require.Len(t, fake.params, 1)
	require.Equal(t, "run-123", fake.params[0]["run_id"])
	require.Equal(t, "n_estimators", fake.params[0]["key"])
	require.Equal(t, "100", fake.params[0]["value"])

	require.Len(t, fake.metrics, 1)
	require.Equal(t, "mae", fake.metrics[0]["key"])
	require.Equal(t, 12.5, fake.metrics[0]["value"])

	require.Len(t, fake.tags, 1)
	require.Equal(t, "current_step", fake.tags[0]["key"])

	require.Len(t, fake.updates, 1)
	require.Equal(t, string(StatusFinished), fake.updates[0]["status"])
}

func TestRESTClient_KnownExperimentIsNotRecreated(t *testing.T) {
	t.Parallel()
	ctx := testContext()

	fake := &fakeTrackingServer{t: t, knownExperiments: map[string]string{"existing": "exp-7"}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	_, err := NewRESTClient(server.URL).StartRun(ctx, RunConfig{Project: "existing", Group: "dev"})
	require.NoError(t, err)
	require.Empty(t, fake.created)
}

func TestRESTClient_LookupFailureIsNotMaskedAsCreate(t *testing.T) {
	t.Parallel()
	ctx := testContext()

	fake := &fakeTrackingServer{t: t, failLookup: true, knownExperiments: map[string]string{}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	_, err := NewRESTClient(server.URL).StartRun(ctx, RunConfig{Project: "p", Group: "g"})
	require.ErrorContains(t, err, `failed to look up experiment "p"`)
	require.Empty(t, fake.created, "a server error must not trigger experiment creation")
}

func TestRESTClient_TransportErrorSurfacesAsLookupFailure(t *testing.T) {
	t.Parallel()
	ctx := testContext()

	// Nothing listens here; the request fails before any HTTP reply.
	_, err := NewRESTClient("http://127.0.0.1:1").StartRun(ctx, RunConfig{Project: "p", Group: "g"})
	require.ErrorContains(t, err, `failed to look up experiment "p"`)
	require.NotContains(t, err.Error(), "create")
}

func TestRESTClient_ServerErrorSurfaces(t *testing.T) {
	t.Parallel()
	ctx := testContext()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewRESTClient(server.URL).StartRun(ctx, RunConfig{Project: "p", Group: "g"})
	require.ErrorContains(t, err, "500")
}

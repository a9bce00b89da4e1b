package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeSweepFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	t.Parallel()

	path := writeSweepFile(t, `
method: random
metric:
  name: mae
  goal: minimize
run_cap: 10
parameters:
  n_estimators:
    min: 20
    max: 300
  min_samples_split:
    values: [2, 4, 8]
  max_depth:
    value: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, MethodRandom, cfg.Method)
	require.Equal(t, "mae", cfg.Metric.Name)
	require.Equal(t, GoalMinimize, cfg.Metric.Goal)
	require.Equal(t, 10, cfg.RunCap)
	require.Len(t, cfg.Parameters, 3)
}

func TestLoad_RejectsInvalidFiles(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown method",
			yaml: "method: bayes\nmetric: {name: mae, goal: minimize}\nparameters: {x: {value: 1}}",
			want: "unknown method",
		},
		{
			name: "bad goal",
			yaml: "method: random\nmetric: {name: mae, goal: improve}\nparameters: {x: {value: 1}}",
			want: "metric goal",
		},
		{
			name: "missing metric name",
			yaml: "method: random\nmetric: {goal: minimize}\nparameters: {x: {value: 1}}",
			want: "metric name",
		},
		{
			name: "no parameters",
			yaml: "method: random\nmetric: {name: mae, goal: minimize}\nparameters: {}",
			want: "at least one parameter",
		},
		{
			name: "min without max",
			yaml: "method: random\nmetric: {name: mae, goal: minimize}\nparameters: {x: {min: 1}}",
			want: "min and max must be declared together",
		},
		{
			name: "min not below max",
			yaml: "method: random\nmetric: {name: mae, goal: minimize}\nparameters: {x: {min: 5, max: 5}}",
			want: "min must be less than max",
		},
		{
			name: "grid with interval",
			yaml: "method: grid\nmetric: {name: mae, goal: minimize}\nparameters: {x: {min: 1, max: 5}}",
			want: "grid search requires",
		},
		{
			name: "value and values together",
			yaml: "method: random\nmetric: {name: mae, goal: minimize}\nparameters: {x: {value: 1, values: [1, 2]}}",
			want: "exactly one of",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeSweepFile(t, tc.yaml))
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestRandomSampler_DrawsWithinRanges(t *testing.T) {
	t.Parallel()

	min, max, fixed := 20.0, 300.0, 7.0
	cfg := &Config{
		Method: MethodRandom,
		Parameters: map[string]Range{
			"n_estimators": {Min: &min, Max: &max},
			"max_depth":    {Value: &fixed},
			"leaf":         {Values: []float64{1, 2, 4}},
		},
	}

	s := NewSampler(cfg, 11)
	for i := 0; i < 50; i++ {
		params, ok := s.Next()
		require.True(t, ok, "random sampler never exhausts")

		require.GreaterOrEqual(t, params["n_estimators"], min)
		require.LessOrEqual(t, params["n_estimators"], max)
		// Integral bounds produce whole numbers.
		require.Equal(t, params["n_estimators"], float64(int(params["n_estimators"])))
		require.Equal(t, fixed, params["max_depth"])
		require.Contains(t, []float64{1, 2, 4}, params["leaf"])
	}
}

func TestRandomSampler_DeterministicForSeed(t *testing.T) {
	t.Parallel()

	min, max := 0.0, 1.5
	cfg := &Config{
		Method:     MethodRandom,
		Parameters: map[string]Range{"x": {Min: &min, Max: &max}},
	}

	draw := func() []map[string]float64 {
		s := NewSampler(cfg, 99)
		var out []map[string]float64
		for i := 0; i < 5; i++ {
			params, _ := s.Next()
			out = append(out, params)
		}
		return out
	}

	require.Equal(t, draw(), draw())
}

func TestGridSampler_WalksCartesianProduct(t *testing.T) {
	t.Parallel()

	fixed := 9.0
	cfg := &Config{
		Method: MethodGrid,
		Parameters: map[string]Range{
			"a": {Values: []float64{1, 2}},
			"b": {Values: []float64{10, 20, 30}},
			"c": {Value: &fixed},
		},
	}

	s := NewSampler(cfg, 0)
	var got []map[string]float64
	for {
		params, ok := s.Next()
		if !ok {
			break
		}
		got = append(got, params)
	}

	require.Len(t, got, 6)
	seen := make(map[string]bool)
	for _, params := range got {
		require.Equal(t, fixed, params["c"])
		key := fmt.Sprintf("%g/%g", params["a"], params["b"])
		require.False(t, seen[key], "candidate %s repeated", key)
		seen[key] = true
	}
}

func TestAgent_PicksBestByGoal(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Method: MethodGrid,
		Metric: Metric{Name: "mae", Goal: GoalMinimize},
		Parameters: map[string]Range{
			"x": {Values: []float64{1, 2, 3}},
		},
	}

	// The objective is minimized at x=2.
	trial := func(_ context.Context, sweepID string, trialNum int, params map[string]float64) (float64, error) {
		require.NotEmpty(t, sweepID)
		return (params["x"] - 2) * (params["x"] - 2), nil
	}

	best, err := NewAgent(cfg).Run(testContext(), 10, 1, trial)
	require.NoError(t, err)
	require.Equal(t, 2.0, best.Params["x"])
	require.Equal(t, 0.0, best.Metric)
	require.Equal(t, 1, best.Trial)
}

func TestAgent_RunCapAndBudget(t *testing.T) {
	t.Parallel()

	min, max := 0.0, 10.0
	cfg := &Config{
		Method:     MethodRandom,
		Metric:     Metric{Name: "r2", Goal: GoalMaximize},
		RunCap:     4,
		Parameters: map[string]Range{"x": {Min: &min, Max: &max}},
	}

	calls := 0
	trial := func(_ context.Context, _ string, _ int, params map[string]float64) (float64, error) {
		calls++
		return params["x"], nil
	}

	// maxRuns 0 defers to run_cap.
	_, err := NewAgent(cfg).Run(testContext(), 0, 5, trial)
	require.NoError(t, err)
	require.Equal(t, 4, calls)

	// No budget anywhere is an error.
	cfg.RunCap = 0
	_, err = NewAgent(cfg).Run(testContext(), 0, 5, trial)
	require.ErrorContains(t, err, "no run budget")
}

func TestAgent_AbortsOnTrialFailure(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Method: MethodGrid,
		Metric: Metric{Name: "mae", Goal: GoalMinimize},
		Parameters: map[string]Range{
			"x": {Values: []float64{1, 2, 3}},
		},
	}

	calls := 0
	trial := func(_ context.Context, _ string, trialNum int, _ map[string]float64) (float64, error) {
		calls++
		if trialNum == 1 {
			return 0, fmt.Errorf("boom")
		}
		return 1, nil
	}

	_, err := NewAgent(cfg).Run(testContext(), 10, 1, trial)
	require.ErrorContains(t, err, "sweep trial 1 failed")
	require.Equal(t, 2, calls, "no trials after the failing one")
}

package train

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/mlgridgo/internal/artifact"
	"github.com/specialistvlad/mlgridgo/internal/pipeline"
	"github.com/specialistvlad/mlgridgo/internal/testutil"
	"github.com/specialistvlad/mlgridgo/internal/tracking"
)

// saveDataset registers a synthetic numeric dataset of n rows where
// Weight = 3*Height + noise.
func saveDataset(t *testing.T, store artifact.Store, name string, n int, seed uint64) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))

	var sb strings.Builder
	sb.WriteString("Type1,Height,Weight\n")
	types := []string{"grass", "fire", "water"}
	for i := 0; i < n; i++ {
		h := rng.Float64() * 10
		fmt.Fprintf(&sb, "%s,%.3f,%.3f\n", types[rng.IntN(len(types))], h, 3*h+rng.NormFloat64()*0.1)
	}

	src := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(src, []byte(sb.String()), 0o644))
	_, err := store.Save(testutil.Context(), artifact.SaveRequest{
		Name: name, Type: "train_data", SourcePath: src,
	})
	require.NoError(t, err)
}

func trainDeps(t *testing.T) (*pipeline.Deps, *testutil.RecordingRun) {
	t.Helper()
	store, err := artifact.NewFSStore(t.TempDir())
	require.NoError(t, err)

	client := &testutil.RecordingClient{}
	run, err := client.StartRun(testutil.Context(), tracking.RunConfig{Project: "proj", Group: "dev"})
	require.NoError(t, err)

	return &pipeline.Deps{
		Store:   store,
		Run:     run,
		Project: "proj",
		Group:   "dev",
		WorkDir: t.TempDir(),
	}, run.(*testutil.RecordingRun)
}

func TestOnRunTrain_ReportsMetrics(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	deps, run := trainDeps(t)
	saveDataset(t, deps.Store, "train_data.csv", 300, 1)
	saveDataset(t, deps.Store, "test_data.csv", 80, 2)

	resultsPath := filepath.Join(t.TempDir(), "results.log")
	out, err := OnRunTrain(ctx, deps, &Input{
		TrainArtifact:   "train_data.csv:latest",
		TestArtifact:    "test_data.csv:latest",
		Target:          "Weight",
		NEstimators:     20,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		RandomSeed:      42,
		ResultsPath:     resultsPath,
	})
	require.NoError(t, err)

	require.LessOrEqual(t, out.R2, 1.0)
	require.Greater(t, out.R2, 0.5, "the forest should learn the linear signal")
	require.GreaterOrEqual(t, out.Within10, 0.0)
	require.LessOrEqual(t, out.Within10, 100.0)
	require.Greater(t, out.MAE, 0.0)

	// Hyperparameters and metrics land on the tracking run.
	require.Equal(t, "20", run.Params["n_estimators"])
	require.Equal(t, "Weight", run.Params["target"])
	require.Equal(t, out.R2, run.Metrics["r2"])
	require.Equal(t, out.MAE, run.Metrics["mae"])
	require.Equal(t, out.Within10, run.Metrics["within_10"])

	// The results log got one human-readable line.
	data, err := os.ReadFile(resultsPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "n_estimators=20")
	require.Contains(t, string(data), "project=proj")
}

func TestOnRunTrain_DeterministicForSeed(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	deps, _ := trainDeps(t)
	saveDataset(t, deps.Store, "train_data.csv", 100, 3)
	saveDataset(t, deps.Store, "test_data.csv", 30, 4)

	input := func() *Input {
		return &Input{
			TrainArtifact:   "train_data.csv:latest",
			TestArtifact:    "test_data.csv:latest",
			Target:          "Weight",
			NEstimators:     10,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			RandomSeed:      7,
			ResultsPath:     filepath.Join(t.TempDir(), "results.log"),
		}
	}

	first, err := OnRunTrain(ctx, deps, input())
	require.NoError(t, err)
	second, err := OnRunTrain(ctx, deps, input())
	require.NoError(t, err)

	require.Equal(t, first.R2, second.R2)
	require.Equal(t, first.MAE, second.MAE)
	require.Equal(t, first.Within10, second.Within10)
}

func TestOnRunTrain_MissingArtifactFails(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	deps, _ := trainDeps(t)
	_, err := OnRunTrain(ctx, deps, &Input{
		TrainArtifact: "train_data.csv:latest",
		TestArtifact:  "test_data.csv:latest",
		Target:        "Weight",
		ResultsPath:   filepath.Join(t.TempDir(), "results.log"),
	})
	require.ErrorContains(t, err, "no registered versions")
}

package hcl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

// writeFiles materializes a map of relative path -> content under a temp dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestLoader_LoadsPipelineRunnersAndSteps(t *testing.T) {
	t.Parallel()

	root := writeFiles(t, map[string]string{
		"pipeline.hcl": `
			pipeline {
			  project_name    = "Pokemon_exercise"
			  experiment_name = "dev"
			}

			step "download" "raw" {
			  arguments {
			    file_url      = "http://example.com/pokemon.csv"
			    artifact_name = "pokemon.csv"
			  }
			}

			step "clean" "clean" {
			  arguments {
			    input_artifact  = "pokemon.csv:latest"
			    required_fields = ["Weight"]
			  }
			}
		`,
		"modules/download/manifest.hcl": `
			runner "download" {
			  description = "Fetches a file."
			  lifecycle {
			    on_run = "OnRunDownload"
			  }
			  input "file_url" {
			    type = string
			  }
			  input "artifact_name" {
			    type = string
			  }
			  input "artifact_type" {
			    type    = string
			    default = "raw_data"
			  }
			  output "artifact" {
			    type = string
			  }
			}
		`,
	})

	model, converter, err := NewLoader().Load(testContext(), root)
	require.NoError(t, err)
	require.NotNil(t, converter)

	require.NotNil(t, model.Pipeline)
	require.Equal(t, "Pokemon_exercise", model.Pipeline.ProjectName)
	require.Equal(t, "dev", model.Pipeline.ExperimentName)

	require.Len(t, model.Steps, 2)
	require.Equal(t, "step.download.raw", model.Steps[0].ID())
	require.Equal(t, "step.clean.clean", model.Steps[1].ID())
	require.Contains(t, model.Steps[0].Arguments, "file_url")

	def, ok := model.Runners["download"]
	require.True(t, ok)
	require.Equal(t, "OnRunDownload", def.Lifecycle.OnRun)
	require.Len(t, def.Inputs, 3)
	require.True(t, def.Inputs["file_url"].Type.Equals(cty.String))
	require.False(t, def.Inputs["file_url"].Optional, "no default means required")
	require.True(t, def.Inputs["artifact_type"].Optional, "a default makes the input optional")
	require.NotNil(t, def.Inputs["artifact_type"].Default)
	require.Len(t, def.Outputs, 1)
}

func TestLoader_DuplicatePipelineBlockFails(t *testing.T) {
	t.Parallel()

	root := writeFiles(t, map[string]string{
		"a.hcl": `
			pipeline {
			  project_name    = "one"
			  experiment_name = "dev"
			}
		`,
		"b.hcl": `
			pipeline {
			  project_name    = "two"
			  experiment_name = "dev"
			}
		`,
	})

	_, _, err := NewLoader().Load(testContext(), root)
	require.ErrorContains(t, err, "duplicate 'pipeline' block")
}

func TestLoader_RunnerWithoutLifecycleFails(t *testing.T) {
	t.Parallel()

	root := writeFiles(t, map[string]string{
		"manifest.hcl": `
			runner "broken" {
			  description = "No lifecycle block."
			}
		`,
	})

	_, _, err := NewLoader().Load(testContext(), root)
	require.ErrorContains(t, err, "lifecycle")
}

func TestLoader_WalksNestedDirsAndIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	root := writeFiles(t, map[string]string{
		"notes.txt": `not a config file`,
		"modules/train/manifest.hcl": `
			runner "train" {
			  lifecycle {
			    on_run = "OnRunTrain"
			  }
			}
		`,
		"modules/train/README": `prose, not config`,
	})

	model, _, err := NewLoader().Load(testContext(), root)
	require.NoError(t, err)
	require.Len(t, model.Runners, 1)
	require.Contains(t, model.Runners, "train")
}

func TestLoader_InvalidInputTypeFails(t *testing.T) {
	t.Parallel()

	root := writeFiles(t, map[string]string{
		"manifest.hcl": `
			runner "broken" {
			  lifecycle {
			    on_run = "OnRunBroken"
			  }
			  input "xs" {
			    type = list(number, string)
			  }
			}
		`,
	})

	_, _, err := NewLoader().Load(testContext(), root)
	require.ErrorContains(t, err, "exactly one element type")
}

func TestLoader_MissingPathIsIgnored(t *testing.T) {
	t.Parallel()

	model, _, err := NewLoader().Load(testContext(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	require.Nil(t, model.Pipeline)
	require.Empty(t, model.Steps)
}

func TestLoader_InvalidHCLFails(t *testing.T) {
	t.Parallel()

	root := writeFiles(t, map[string]string{
		"bad.hcl": `step "x" {`,
	})

	_, _, err := NewLoader().Load(testContext(), root)
	require.Error(t, err)
}

// Package download implements the data acquisition step: it fetches a
// remote file over HTTP and registers it as a named, versioned artifact.
package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"

	"github.com/specialistvlad/mlgridgo/internal/artifact"
	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/specialistvlad/mlgridgo/internal/pipeline"
	"github.com/specialistvlad/mlgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// httpClient is shared across invocations to reuse TCP connections.
var httpClient = &http.Client{}

// Input defines the arguments for the 'arguments' block.
type Input struct {
	FileURL             string `mlgo:"file_url"`
	ArtifactName        string `mlgo:"artifact_name"`
	ArtifactType        string `mlgo:"artifact_type"`
	ArtifactDescription string `mlgo:"artifact_description"`
}

// Output defines the data structure returned by the step.
type Output struct {
	Artifact string `cty:"artifact"`
	Version  int    `cty:"version"`
}

// OnRunDownload is the handler for the 'download' runner.
func OnRunDownload(ctx context.Context, deps *pipeline.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.FileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request for '%s': %w", input.FileURL, err)
	}

	logger.Info("Downloading source file.", "url", input.FileURL)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download '%s': %w", input.FileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download of '%s' failed with status: %s", input.FileURL, resp.Status)
	}

	localPath := filepath.Join(deps.WorkDir, filepath.Base(input.ArtifactName))
	out, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file '%s': %w", localPath, err)
	}
	if _, err := out.ReadFrom(resp.Body); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to write downloaded data: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, err
	}

	loc, err := deps.Store.Save(ctx, artifact.SaveRequest{
		Name:        input.ArtifactName,
		Type:        input.ArtifactType,
		Description: input.ArtifactDescription,
		SourcePath:  localPath,
	})
	if err != nil {
		return nil, err
	}

	return &Output{Artifact: loc.Ref().String(), Version: loc.Version}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("OnRunDownload", &registry.RegisteredStep{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunDownload,
	})
}

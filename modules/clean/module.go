// Package clean implements the cleaning step: it consumes a raw tabular
// artifact, removes the rows with null values in required fields,
// normalizes text fields, and registers the result as a new artifact.
package clean

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/specialistvlad/mlgridgo/internal/artifact"
	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/specialistvlad/mlgridgo/internal/pipeline"
	"github.com/specialistvlad/mlgridgo/internal/registry"
	"github.com/specialistvlad/mlgridgo/internal/table"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'arguments' block.
type Input struct {
	InputArtifact       string   `mlgo:"input_artifact"`
	ArtifactName        string   `mlgo:"artifact_name"`
	ArtifactType        string   `mlgo:"artifact_type"`
	ArtifactDescription string   `mlgo:"artifact_description"`
	RequiredFields      []string `mlgo:"required_fields"`
	NormalizeFields     []string `mlgo:"normalize_fields"`
}

// Output defines the data structure returned by the step.
type Output struct {
	Artifact    string `cty:"artifact"`
	Version     int    `cty:"version"`
	RowsKept    int    `cty:"rows_kept"`
	RowsDropped int    `cty:"rows_dropped"`
}

// OnRunClean is the handler for the 'clean' runner.
func OnRunClean(ctx context.Context, deps *pipeline.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	loc, err := deps.Store.Resolve(ctx, input.InputArtifact)
	if err != nil {
		return nil, err
	}

	t, err := table.ReadCSV(loc.Path)
	if err != nil {
		return nil, err
	}

	cleaned, dropped, err := t.DropNullRows(input.RequiredFields)
	if err != nil {
		return nil, err
	}
	if err := cleaned.NormalizeText(input.NormalizeFields); err != nil {
		return nil, err
	}
	logger.Info("Cleaned dataset.", "rows_in", t.NumRows(), "rows_kept", cleaned.NumRows(), "rows_dropped", dropped)

	localPath := filepath.Join(deps.WorkDir, filepath.Base(input.ArtifactName))
	if err := cleaned.WriteCSV(localPath); err != nil {
		return nil, err
	}

	outLoc, err := deps.Store.Save(ctx, artifact.SaveRequest{
		Name:        input.ArtifactName,
		Type:        input.ArtifactType,
		Description: fmt.Sprintf("%s (from %s)", input.ArtifactDescription, loc.Ref()),
		SourcePath:  localPath,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		Artifact:    outLoc.Ref().String(),
		Version:     outLoc.Version,
		RowsKept:    cleaned.NumRows(),
		RowsDropped: dropped,
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("OnRunClean", &registry.RegisteredStep{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunClean,
	})
}

// Package split implements the splitting step: it partitions a cleaned
// tabular artifact into train and test artifacts by a configurable
// fraction, using a seeded shuffle.
package split

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
	InputArtifact     string  `mlgo:"input_artifact"`
	TestSize          float64 `mlgo:"test_size"`
	RandomSeed        int     `mlgo:"random_seed"`
	TrainArtifactName string  `mlgo:"train_artifact_name"`
	TestArtifactName  string  `mlgo:"test_artifact_name"`
}

// Output defines the data structure returned by the step.
type Output struct {
	TrainArtifact string `cty:"train_artifact"`
	TestArtifact  string `cty:"test_artifact"`
	TrainRows     int    `cty:"train_rows"`
	TestRows      int    `cty:"test_rows"`
}

// OnRunSplit is the handler for the 'split' runner.
func OnRunSplit(ctx context.Context, deps *pipeline.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	loc, err := deps.Store.Resolve(ctx, input.InputArtifact)
	if err != nil {
		return nil, err
	}

	t, err := table.ReadCSV(loc.Path)
	if err != nil {
		return nil, err
	}

	train, test, err := t.Split(input.TestSize, uint64(input.RandomSeed))
	if err != nil {
		return nil, err
	}
	logger.Info("Split dataset.", "rows", t.NumRows(), "train_rows", train.NumRows(), "test_rows", test.NumRows(), "test_size", input.TestSize)

	save := func(name string, part *table.Table, kind string) (*artifact.Location, error) {
		localPath := filepath.Join(deps.WorkDir, filepath.Base(name))
		if err := part.WriteCSV(localPath); err != nil {
			return nil, err
		}
		return deps.Store.Save(ctx, artifact.SaveRequest{
			Name:        name,
			Type:        kind,
			Description: fmt.Sprintf("%s split of %s (test_size=%g, seed=%d)", kind, loc.Ref(), input.TestSize, input.RandomSeed),
			SourcePath:  localPath,
		})
	}

	trainLoc, err := save(input.TrainArtifactName, train, "train_data")
	if err != nil {
		return nil, err
	}
	testLoc, err := save(input.TestArtifactName, test, "test_data")
	if err != nil {
		return nil, err
	}

	return &Output{
		TrainArtifact: trainLoc.Ref().String(),
		TestArtifact:  testLoc.Ref().String(),
		TrainRows:     train.NumRows(),
		TestRows:      test.NumRows(),
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("OnRunSplit", &registry.RegisteredStep{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunSplit,
	})
}

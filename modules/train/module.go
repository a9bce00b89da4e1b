// Package train implements the training step: it consumes the train and
// test artifacts, maps categorical fields to numeric codes, fits a
// random-forest regressor, computes the evaluation metrics, reports them
// to the tracking service, and appends them to a local results log.
package train

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/specialistvlad/mlgridgo/internal/forest"
	"github.com/specialistvlad/mlgridgo/internal/pipeline"
	"github.com/specialistvlad/mlgridgo/internal/registry"
	"github.com/specialistvlad/mlgridgo/internal/table"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'arguments' block. The numeric
// fields are the hyperparameters the sweep agent samples over.
type Input struct {
	TrainArtifact   string `mlgo:"train_artifact"`
	TestArtifact    string `mlgo:"test_artifact"`
	Target          string `mlgo:"target"`
	NEstimators     int    `mlgo:"n_estimators"`
	MaxDepth        int    `mlgo:"max_depth"`
	MinSamplesSplit int    `mlgo:"min_samples_split"`
	MinSamplesLeaf  int    `mlgo:"min_samples_leaf"`
	RandomSeed      int    `mlgo:"random_seed"`
	ResultsPath     string `mlgo:"results_path"`
}

// Output defines the data structure returned by the step.
type Output struct {
	R2       float64 `cty:"r2"`
	MAE      float64 `cty:"mae"`
	Within10 float64 `cty:"within_10"`
}

// OnRunTrain is the handler for the 'train' runner.
func OnRunTrain(ctx context.Context, deps *pipeline.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	trainX, trainY, testX, testY, err := loadDatasets(ctx, deps, input)
	if err != nil {
		return nil, err
	}

	params := forest.Params{
		NumTrees:        input.NEstimators,
		MaxDepth:        input.MaxDepth,
		MinSamplesSplit: input.MinSamplesSplit,
		MinSamplesLeaf:  input.MinSamplesLeaf,
		Seed:            uint64(input.RandomSeed),
	}
	logger.Info("Fitting regression forest.", "train_rows", len(trainX), "test_rows", len(testX), "n_estimators", params.NumTrees, "max_depth", params.MaxDepth)

	model := forest.NewRegressor(params)
	if err := model.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	metrics, err := forest.Evaluate(model.PredictAll(testX), testY)
	if err != nil {
		return nil, err
	}
	logger.Info("Evaluation complete.", "r2", metrics.R2, "mae", metrics.MAE, "within_10", metrics.Within10)

	if err := report(ctx, deps, input, metrics); err != nil {
		return nil, err
	}

	return &Output{R2: metrics.R2, MAE: metrics.MAE, Within10: metrics.Within10}, nil
}

// loadDatasets resolves both artifacts and encodes them with a shared code
// table fitted on the training partition.
func loadDatasets(ctx context.Context, deps *pipeline.Deps, input *Input) (trainX [][]float64, trainY []float64, testX2 [][]float64, testY []float64, err error) {
	trainLoc, err := deps.Store.Resolve(ctx, input.TrainArtifact)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	testLoc, err := deps.Store.Resolve(ctx, input.TestArtifact)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	trainTable, err := table.ReadCSV(trainLoc.Path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	testTable, err := table.ReadCSV(testLoc.Path)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	enc, err := table.NewEncoding(trainTable, input.Target)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	trainX, trainYv, err := enc.Transform(trainTable)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	testX, testYv, err := enc.Transform(testTable)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return trainX, trainYv, testX, testYv, nil
}

// report sends the metrics to the tracking run and appends a line to the
// local results log. The log is human-readable and never parsed back.
func report(ctx context.Context, deps *pipeline.Deps, input *Input, m forest.Metrics) error {
	hyperparams := map[string]string{
		"n_estimators":      strconv.Itoa(input.NEstimators),
		"max_depth":         strconv.Itoa(input.MaxDepth),
		"min_samples_split": strconv.Itoa(input.MinSamplesSplit),
		"min_samples_leaf":  strconv.Itoa(input.MinSamplesLeaf),
		"random_seed":       strconv.Itoa(input.RandomSeed),
		"target":            input.Target,
	}
	for k, v := range hyperparams {
		if err := deps.Run.LogParam(ctx, k, v); err != nil {
			return fmt.Errorf("failed to log param %s: %w", k, err)
		}
	}

	for k, v := range map[string]float64{"r2": m.R2, "mae": m.MAE, "within_10": m.Within10} {
		if err := deps.Run.LogMetric(ctx, k, v); err != nil {
			return fmt.Errorf("failed to log metric %s: %w", k, err)
		}
	}

	f, err := os.OpenFile(input.ResultsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results log %s: %w", input.ResultsPath, err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s project=%s run=%s n_estimators=%d max_depth=%d min_samples_split=%d min_samples_leaf=%d r2=%.4f mae=%.4f within_10=%.2f\n",
		time.Now().UTC().Format(time.RFC3339), deps.Project, deps.Run.ID(),
		input.NEstimators, input.MaxDepth, input.MinSamplesSplit, input.MinSamplesLeaf,
		m.R2, m.MAE, m.Within10)
	return err
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("OnRunTrain", &registry.RegisteredStep{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunTrain,
	})
}

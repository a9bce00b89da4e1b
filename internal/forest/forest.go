package forest

import (
	"fmt"
	"math/rand/v2"
)

// Params are the hyperparameters of the regressor. They mirror the training
// step's command-line surface.
type Params struct {
	NumTrees        int
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	Seed            uint64
}

// applyDefaults fills zero values with the conventional defaults.
func (p Params) applyDefaults() Params {
	if p.NumTrees == 0 {
		p.NumTrees = 100
	}
	if p.MinSamplesSplit == 0 {
		p.MinSamplesSplit = 2
	}
	if p.MinSamplesLeaf == 0 {
		p.MinSamplesLeaf = 1
	}
	return p
}

func (p Params) validate() error {
	if p.NumTrees < 1 {
		return fmt.Errorf("number of trees must be positive, got %d", p.NumTrees)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", p.MaxDepth)
	}
	if p.MinSamplesSplit < 2 {
		return fmt.Errorf("min samples split must be at least 2, got %d", p.MinSamplesSplit)
	}
	if p.MinSamplesLeaf < 1 {
		return fmt.Errorf("min samples leaf must be at least 1, got %d", p.MinSamplesLeaf)
	}
	return nil
}

// Regressor is a fitted (or fittable) random-forest regression model.
type Regressor struct {
	params Params
	trees  []*tree
}

// NewRegressor creates an unfitted regressor with the given hyperparameters.
func NewRegressor(p Params) *Regressor {
	return &Regressor{params: p.applyDefaults()}
}

// Fit grows the ensemble. Each tree sees a bootstrap sample of the rows and
// a random subset of features at every split.
func (r *Regressor) Fit(x [][]float64, y []float64) error {
	if err := r.params.validate(); err != nil {
		return err
	}
	if len(x) == 0 {
		return fmt.Errorf("cannot fit on an empty dataset")
	}
	if len(x) != len(y) {
		return fmt.Errorf("feature matrix has %d rows but target vector has %d", len(x), len(y))
	}

	numFeatures := len(x[0])
	maxFeatures := numFeatures / 3
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rng := rand.New(rand.NewPCG(r.params.Seed, r.params.Seed))
	n := len(x)

	r.trees = make([]*tree, 0, r.params.NumTrees)
	for i := 0; i < r.params.NumTrees; i++ {
		sample := make([]int, n)
		for j := range sample {
			sample[j] = rng.IntN(n)
		}

		g := &grower{
			x:           x,
			y:           y,
			params:      r.params,
			maxFeatures: maxFeatures,
			rng:         rng,
		}
		r.trees = append(r.trees, &tree{root: g.grow(sample, 0)})
	}
	return nil
}

// Predict returns the ensemble prediction for a single row: the mean of the
// per-tree predictions.
func (r *Regressor) Predict(row []float64) float64 {
	sum := 0.0
	for _, t := range r.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(r.trees))
}

// PredictAll predicts every row of the matrix.
func (r *Regressor) PredictAll(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = r.Predict(row)
	}
	return out
}

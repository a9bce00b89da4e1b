package sweep

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Sampler yields parameter candidates. Next returns false when the search
// space is exhausted; the random sampler never exhausts.
type Sampler interface {
	Next() (map[string]float64, bool)
}

// NewSampler builds the sampler for the configured method. Parameter order
// is made deterministic by sorting names, so grid walks and seeded random
// draws are reproducible.
func NewSampler(cfg *Config, seed uint64) Sampler {
	names := make([]string, 0, len(cfg.Parameters))
	for name := range cfg.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	if cfg.Method == MethodGrid {
		return newGridSampler(cfg, names)
	}
	return &randomSampler{
		cfg:   cfg,
		names: names,
		rng:   rand.New(rand.NewPCG(seed, seed)),
	}
}

type randomSampler struct {
	cfg   *Config
	names []string
	rng   *rand.Rand
}

// Next draws each parameter independently: uniform over [min, max],
// uniform over the values list, or the fixed value. Interval draws with
// integral bounds are rounded to whole numbers, matching the integer
// hyperparameters of the training step.
func (s *randomSampler) Next() (map[string]float64, bool) {
	candidate := make(map[string]float64, len(s.names))
	for _, name := range s.names {
		r := s.cfg.Parameters[name]
		switch {
		case r.Value != nil:
			candidate[name] = *r.Value
		case len(r.Values) > 0:
			candidate[name] = r.Values[s.rng.IntN(len(r.Values))]
		default:
			v := *r.Min + s.rng.Float64()*(*r.Max-*r.Min)
			if isIntegral(*r.Min) && isIntegral(*r.Max) {
				v = math.Round(v)
			}
			candidate[name] = v
		}
	}
	return candidate, true
}

type gridSampler struct {
	names  []string
	axes   [][]float64
	cursor []int
	done   bool
}

func newGridSampler(cfg *Config, names []string) *gridSampler {
	axes := make([][]float64, len(names))
	for i, name := range names {
		r := cfg.Parameters[name]
		if r.Value != nil {
			axes[i] = []float64{*r.Value}
		} else {
			axes[i] = r.Values
		}
	}
	return &gridSampler{
		names:  names,
		axes:   axes,
		cursor: make([]int, len(names)),
	}
}

// Next walks the cartesian product of the parameter axes.
func (s *gridSampler) Next() (map[string]float64, bool) {
	if s.done {
		return nil, false
	}

	candidate := make(map[string]float64, len(s.names))
	for i, name := range s.names {
		candidate[name] = s.axes[i][s.cursor[i]]
	}

	// Advance the cursor, rightmost axis fastest.
	for i := len(s.cursor) - 1; i >= 0; i-- {
		s.cursor[i]++
		if s.cursor[i] < len(s.axes[i]) {
			return candidate, true
		}
		s.cursor[i] = 0
	}
	s.done = true
	return candidate, true
}

func isIntegral(v float64) bool {
	return v == math.Trunc(v)
}

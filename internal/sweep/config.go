// Package sweep implements the hyperparameter sweep agent: a declarative
// YAML file names an objective metric, a search method, and per-parameter
// ranges; the agent repeatedly invokes the training step with sampled
// values, one run at a time, and reports the best run.
package sweep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Methods supported by the agent. Bayesian search is the tracking
// service's own business and is deliberately not reimplemented here.
const (
	MethodRandom = "random"
	MethodGrid   = "grid"
)

// Goal directions for the objective metric.
const (
	GoalMinimize = "minimize"
	GoalMaximize = "maximize"
)

// Config is the parsed sweep file.
type Config struct {
	Method     string           `yaml:"method"`
	Metric     Metric           `yaml:"metric"`
	RunCap     int              `yaml:"run_cap"`
	Parameters map[string]Range `yaml:"parameters"`
}

// Metric names the objective and the direction to optimize it in.
type Metric struct {
	Name string `yaml:"name"`
	Goal string `yaml:"goal"`
}

// Range declares the values a single parameter may take: a continuous
// [Min, Max] interval, a fixed Value, or an explicit Values list.
type Range struct {
	Min    *float64  `yaml:"min"`
	Max    *float64  `yaml:"max"`
	Value  *float64  `yaml:"value"`
	Values []float64 `yaml:"values"`
}

// Load reads and validates a sweep configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sweep file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep file %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Method {
	case MethodRandom, MethodGrid:
	default:
		return fmt.Errorf("unknown method %q (want %q or %q)", c.Method, MethodRandom, MethodGrid)
	}

	switch c.Metric.Goal {
	case GoalMinimize, GoalMaximize:
	default:
		return fmt.Errorf("metric goal must be %q or %q, got %q", GoalMinimize, GoalMaximize, c.Metric.Goal)
	}
	if c.Metric.Name == "" {
		return fmt.Errorf("metric name must not be empty")
	}
	if len(c.Parameters) == 0 {
		return fmt.Errorf("at least one parameter range is required")
	}
	if c.RunCap < 0 {
		return fmt.Errorf("run_cap must not be negative")
	}

	for name, r := range c.Parameters {
		declared := 0
		if r.Min != nil || r.Max != nil {
			declared++
			if r.Min == nil || r.Max == nil {
				return fmt.Errorf("parameter %q: min and max must be declared together", name)
			}
			if *r.Min >= *r.Max {
				return fmt.Errorf("parameter %q: min must be less than max", name)
			}
			if c.Method == MethodGrid {
				return fmt.Errorf("parameter %q: grid search requires 'value' or 'values', not a min/max interval", name)
			}
		}
		if r.Value != nil {
			declared++
		}
		if len(r.Values) > 0 {
			declared++
		}
		if declared != 1 {
			return fmt.Errorf("parameter %q: declare exactly one of min/max, value, or values", name)
		}
	}
	return nil
}

package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // hcl pipeline file or directory
	ModulesPath  string // hcl manifests + handlers

	StepName  string // run only this step (manual resume, or sweep target)
	SweepPath string // yaml sweep file; empty means a plain pipeline run
	SweepRuns int    // trial budget override; 0 defers to the sweep file

	ArtifactsDir string
	TrackingURL  string // empty selects the offline tracker
	WorkDir      string // scratch dir for step-local files; empty means a temp dir

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.ArtifactsDir == "" {
		return nil, errors.New("ArtifactsDir is a required configuration field and cannot be empty")
	}
	if cfg.SweepRuns < 0 {
		return nil, errors.New("SweepRuns must not be negative")
	}
	if cfg.SweepRuns > 0 && cfg.SweepPath == "" {
		return nil, errors.New("SweepRuns requires a sweep file")
	}

	return &cfg, nil
}

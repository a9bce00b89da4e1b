package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/specialistvlad/mlgridgo/internal/artifact"
	"github.com/specialistvlad/mlgridgo/internal/config"
	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/specialistvlad/mlgridgo/internal/registry"
	"github.com/specialistvlad/mlgridgo/internal/tracking"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	config    *config.Model
	converter config.Converter
	store     artifact.Store
	tracker   tracking.Client
	workDir   string

	phaseMu sync.Mutex
	phase   runPhase
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Startup failures (unreadable config, manifest/handler mismatch, unusable
// artifact root) are fatal and panic; the entrypoint recovers them.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Merge all configuration paths into a single collection for the loader.
	var configPaths []string
	if appConfig.PipelinePath != "" {
		configPaths = append(configPaths, appConfig.PipelinePath)
	}
	if appConfig.ModulesPath != "" {
		configPaths = append(configPaths, appConfig.ModulesPath)
	}

	// Load all configuration into the format-agnostic model first.
	cfgModel, converter, err := loader.Load(ctx, configPaths...)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	// Create and populate the registry with Go handlers.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// Populate the registry's definitions from the loaded config model.
	reg.PopulateDefinitionsFromModel(cfgModel)
	logger.Debug("Registry definitions populated from config model.")

	// Validate the integrity of the registry.
	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error (mismatch between code and config), so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	store, err := artifact.NewFSStore(appConfig.ArtifactsDir)
	if err != nil {
		panic(fmt.Errorf("failed to open artifact store: %w", err))
	}
	logger.Debug("Artifact store opened.", "dir", appConfig.ArtifactsDir)

	var tracker tracking.Client
	if appConfig.TrackingURL != "" {
		tracker = tracking.NewRESTClient(appConfig.TrackingURL)
		logger.Debug("Using remote tracking server.", "url", appConfig.TrackingURL)
	} else {
		offline, err := tracking.NewOfflineClient(appConfig.ArtifactsDir)
		if err != nil {
			panic(fmt.Errorf("failed to open offline tracking log: %w", err))
		}
		tracker = offline
		logger.Debug("No tracking URL configured, recording runs locally.")
	}

	workDir := appConfig.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "mlgrid-*")
		if err != nil {
			panic(fmt.Errorf("failed to create scratch directory: %w", err))
		}
	}

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		config:    cfgModel,
		converter: converter,
		store:     store,
		tracker:   tracker,
		workDir:   workDir,
		phase:     phaseIdle,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Store returns the application's artifact store. This is primarily for testing.
func (a *App) Store() artifact.Store {
	return a.store
}

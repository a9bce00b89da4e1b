package hcl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/mlgridgo/internal/config"
	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and parses any valid block from any
// file. Steps keep the order in which they were declared; the driver runs
// them in exactly that order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		Runners: make(map[string]*config.RunnerDefinition),
	}

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		// Translate and merge all discovered blocks into the model.
		for _, p := range root.Pipelines {
			if model.Pipeline != nil {
				return nil, nil, fmt.Errorf("duplicate 'pipeline' block in %s: a run has exactly one pipeline header", file)
			}
			model.Pipeline = &config.Pipeline{
				ProjectName:    p.ProjectName,
				ExperimentName: p.ExperimentName,
			}
		}
		for _, runner := range root.Runners {
			def, err := l.translateRunnerDefinition(ctx, runner)
			if err != nil {
				return nil, nil, err
			}
			if _, exists := model.Runners[def.Type]; exists {
				logger.Warn("Duplicate runner manifest found, it will be overwritten.", "type", def.Type, "file", file)
			}
			model.Runners[def.Type] = def
		}
		for _, step := range root.Steps {
			model.Steps = append(model.Steps, l.translateStep(step))
		}
	}

	logger.Debug("HCL loading complete.", "runners", len(model.Runners), "steps", len(model.Steps))
	return model, NewConverter(), nil
}

// findAllHCLFiles flattens the configured paths into a deduplicated list of
// .hcl files. Directories are walked recursively; files with any other
// extension are left alone so a pipeline can live next to its data.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, dup := seen[p]; !dup {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("error walking path %s: %w", path, walkErr)
		}
	}
	return allFiles, nil
}

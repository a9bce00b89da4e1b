package registry

import (
	"github.com/specialistvlad/mlgridgo/internal/config"
)

// Module is the interface that all step modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all the registered handlers and definitions for a single
// application instance.
type Registry struct {
	HandlerRegistry    map[string]*RegisteredStep
	DefinitionRegistry map[string]*config.RunnerDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		HandlerRegistry:    make(map[string]*RegisteredStep),
		DefinitionRegistry: make(map[string]*config.RunnerDefinition),
	}
}

// PopulateDefinitionsFromModel copies the loaded module definitions from the
// config model into the registry for easy access during execution.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for key, val := range model.Runners {
		r.DefinitionRegistry[key] = val
	}
}

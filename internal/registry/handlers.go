package registry

import (
	"fmt"
	"log/slog"
	"reflect"
)

// RegisteredStep holds the compiled Go parts of a step's run function.
//
// Fn must have the signature
// func(ctx context.Context, deps *pipeline.Deps, input *T) (O, error),
// where *T matches the value produced by NewInput and O is any value
// convertible to cty (or nil). The driver invokes it through reflection.
type RegisteredStep struct {
	NewInput  func() any
	InputType reflect.Type
	Fn        any
}

// RegisterStep registers a Go function for a step type's run event.
func (r *Registry) RegisterStep(name string, handler *RegisteredStep) {
	if _, exists := r.HandlerRegistry[name]; exists {
		panic(fmt.Sprintf("step handler with name '%s' already registered", name))
	}
	slog.Debug("Registering step handler.", "name", name)
	r.HandlerRegistry[name] = handler
}

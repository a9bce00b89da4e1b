package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/mlgridgo/internal/config"
	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry cross-checks every runner manifest against its registered
// Go handler: the lifecycle handler must exist, manifest inputs and tagged
// struct fields must match one-to-one, and their types must agree. Run once
// at startup; a mismatch is a packaging error, not a runtime condition.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var problems []string
	for runnerType, def := range r.DefinitionRegistry {
		problems = append(problems, r.validateRunner(ctx, runnerType, def)...)
	}
	if len(problems) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func (r *Registry) validateRunner(ctx context.Context, runnerType string, def *config.RunnerDefinition) []string {
	logger := ctxlog.FromContext(ctx)

	handler, ok := r.HandlerRegistry[def.Lifecycle.OnRun]
	if !ok {
		return []string{fmt.Sprintf("runner %q: lifecycle handler %q has no Go registration", runnerType, def.Lifecycle.OnRun)}
	}

	if handler.InputType == nil {
		if len(def.Inputs) > 0 {
			return []string{fmt.Sprintf("runner %q: manifest declares inputs but the Go handler takes none", runnerType)}
		}
		return nil
	}

	fields := taggedFields(handler.InputType)

	var problems []string
	for name := range fields {
		if _, declared := def.Inputs[name]; !declared {
			problems = append(problems, fmt.Sprintf("runner %q: Go input %q is missing from the manifest", runnerType, name))
		}
	}

	for name, in := range def.Inputs {
		field, ok := fields[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("runner %q: manifest input %q has no matching Go struct field", runnerType, name))
			continue
		}

		if in.Type.Equals(cty.DynamicPseudoType) {
			logger.Warn("Input typed 'any' skips static checking.", "runner", runnerType, "input", name)
			continue
		}

		goType, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface())
		if err != nil {
			problems = append(problems, fmt.Sprintf("runner %q input %q: Go field type %s has no cty equivalent: %v", runnerType, name, field.Type, err))
			continue
		}
		if !in.Type.Equals(goType) {
			problems = append(problems, fmt.Sprintf("runner %q input %q: manifest wants '%s' but Go field %s carries '%s'",
				runnerType, name, in.Type.FriendlyName(), field.Name, goType.FriendlyName()))
		}
	}
	return problems
}

// taggedFields indexes the exported struct fields by their mlgo tag name.
// Untagged or `-` fields do not participate in argument binding.
func taggedFields(t reflect.Type) map[string]reflect.StructField {
	fields := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("mlgo"), ",")[0]
		if name != "" && name != "-" {
			fields[name] = f
		}
	}
	return fields
}

package hcl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/mlgridgo/internal/config"
	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeArguments binds a step's arguments to the handler's input struct.
// Fields opt in through the `mlgo` tag naming the manifest input they bind
// to; an argument absent from the step falls back to the manifest default,
// and a required input with neither is an error. Expressions are evaluated
// against evalCtx, which carries completed steps' outputs.
func (c *Converter) DecodeArguments(
	ctx context.Context,
	inputStruct any,
	args map[string]hcl.Expression,
	defs map[string]*config.InputDefinition,
	evalCtx *hcl.EvalContext,
) error {
	logger := ctxlog.FromContext(ctx)

	structVal := reflect.ValueOf(inputStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("input binding target must be a non-nil struct pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("mlgo"); tag != "" {
			name = strings.Split(tag, ",")[0]
		}

		def, declared := defs[name]
		if !declared {
			// Fields without a manifest counterpart stay zero-valued.
			continue
		}

		target := fieldVal.Addr().Interface()
		expr, provided := args[name]

		switch {
		case provided:
			val, diags := expr.Value(evalCtx)
			if diags.HasErrors() {
				return diags
			}
			if err := c.assign(ctx, val, target); err != nil {
				return fmt.Errorf("argument %q: %w", name, err)
			}
		case def.Default != nil:
			if err := c.assign(ctx, *def.Default, target); err != nil {
				return fmt.Errorf("default for %q: %w", name, err)
			}
		case !def.Optional:
			return fmt.Errorf("missing required argument %q", name)
		}
	}

	logger.Debug("Arguments bound to input struct.", "fields", structType.NumField())
	return nil
}

// assign writes one cty.Value into the addressed Go field, going through
// cty's conversion rules so e.g. a manifest number lands in an int field.
func (c *Converter) assign(ctx context.Context, val cty.Value, goVal any) error {
	ptr := reflect.ValueOf(goVal)
	if ptr.Kind() != reflect.Ptr {
		return fmt.Errorf("assignment target must be a pointer, got %T", goVal)
	}

	impliedType, err := gocty.ImpliedType(ptr.Elem().Interface())
	if err != nil {
		// No cty equivalent for the Go type; let gocty report the mismatch.
		ctxlog.FromContext(ctx).Debug("Go type has no implied cty.Type, decoding directly.", "go_type", ptr.Elem().Type().String())
		return gocty.FromCtyValue(val, goVal)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, goVal)
}

// ToCtyValue lifts a handler's native output into a cty.Value for the eval
// context of later steps.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}

package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the interface for a format-specific data binding and type
// conversion implementation. It acts as the bridge between the raw
// configuration and the Go types used by step modules.
type Converter interface {
	// DecodeArguments decodes a step's raw argument expressions into a
	// target Go struct, applying manifest defaults and enforcing required
	// inputs.
	DecodeArguments(
		ctx context.Context,
		inputStruct any,
		args map[string]hcl.Expression,
		defs map[string]*InputDefinition,
		evalCtx *hcl.EvalContext,
	) error

	// ToCtyValue converts a native Go value (such as a step module's output
	// struct) into its equivalent cty.Value for the driver's eval context.
	ToCtyValue(v any) (cty.Value, error)
}

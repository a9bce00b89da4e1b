package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

// typeExprToCtyType resolves a manifest type expression (`string`,
// `list(number)`, ...) into the cty.Type arguments are checked against.
// A missing expression means the input accepts anything.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		ctxlog.FromContext(ctx).Debug("Input has no type expression, treating as any.")
		return cty.DynamicPseudoType, nil
	}

	switch e := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		return primitiveType(e)
	case *hclsyntax.FunctionCallExpr:
		return collectionType(ctx, e)
	default:
		return cty.DynamicPseudoType, fmt.Errorf("cannot use %T as a type expression", expr)
	}
}

// primitiveType maps a bare type keyword. HCL parses `string` as a scope
// traversal, so a valid keyword is always a single identifier.
func primitiveType(e *hclsyntax.ScopeTraversalExpr) (cty.Type, error) {
	if len(e.Traversal) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("a type keyword must be a single identifier")
	}

	switch name := e.Traversal.RootName(); name {
	case "string":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "bool":
		return cty.Bool, nil
	case "any":
		return cty.DynamicPseudoType, nil
	default:
		return cty.DynamicPseudoType, fmt.Errorf("unknown type keyword %q", name)
	}
}

// collectionType handles the list/map/set constructors, recursing for the
// element type. `any` elements are rejected: a collection of unknowns cannot
// be checked against a Go field.
func collectionType(ctx context.Context, e *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if len(e.Args) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("%s(...) takes exactly one element type, got %d arguments", e.Name, len(e.Args))
	}

	elem, err := typeExprToCtyType(ctx, e.Args[0])
	if err != nil {
		return cty.DynamicPseudoType, err
	}
	if elem == cty.DynamicPseudoType {
		return cty.DynamicPseudoType, fmt.Errorf("%s(any) is not a checkable type", e.Name)
	}

	switch e.Name {
	case "list":
		return cty.List(elem), nil
	case "map":
		return cty.Map(elem), nil
	case "set":
		return cty.Set(elem), nil
	default:
		return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor %q", e.Name)
	}
}

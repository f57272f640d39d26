// This file contains the logic for parsing HCL type expressions (e.g.,
// `address`, `list(number)`) into their corresponding cty.Type objects.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToCtyType converts an HCL type expression into its cty.Type
// equivalent. The Soroban keywords `address` and `bytes` map to cty.String
// and are reported through kind when they appear at the top level.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (ty cty.Type, kind string, err error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Type expression is nil, defaulting to any.")
		return cty.DynamicPseudoType, "", nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if v.Name == "object" {
			ty, err := objectType(ctx, v)
			return ty, "", err
		}

		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, "", fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(v.Args))
		}
		elementType, _, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, "", err
		}
		if elementType == cty.DynamicPseudoType {
			return cty.DynamicPseudoType, "", fmt.Errorf("collection types cannot contain type 'any'")
		}

		switch v.Name {
		case "list":
			return cty.List(elementType), "", nil
		case "map":
			return cty.Map(elementType), "", nil
		case "set":
			return cty.Set(elementType), "", nil
		default:
			return cty.DynamicPseudoType, "", fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, "", fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch keyword := v.Traversal.RootName(); keyword {
		case "string":
			return cty.String, "", nil
		case "number":
			return cty.Number, "", nil
		case "bool":
			return cty.Bool, "", nil
		case "any":
			return cty.DynamicPseudoType, "", nil
		case contract.KindAddress, contract.KindBytes:
			return cty.String, keyword, nil
		default:
			return cty.DynamicPseudoType, "", fmt.Errorf("unknown primitive type %q", keyword)
		}

	default:
		return cty.DynamicPseudoType, "", fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

func objectType(ctx context.Context, call *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if len(call.Args) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("the object() type constructor requires exactly one argument (the object definition), got %d", len(call.Args))
	}
	objExpr, ok := call.Args[0].(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.DynamicPseudoType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", call.Args[0])
	}

	attrTypes := make(map[string]cty.Type, len(objExpr.Items))
	for _, item := range objExpr.Items {
		key := objectKey(item.KeyExpr)
		if key == "" {
			return cty.DynamicPseudoType, fmt.Errorf("invalid key in object type definition: keys must be simple identifiers or quoted strings, not complex expressions")
		}
		valueType, _, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return cty.DynamicPseudoType, fmt.Errorf("in object attribute '%s': %w", key, err)
		}
		attrTypes[key] = valueType
	}
	return cty.Object(attrTypes), nil
}

func objectKey(expr hclsyntax.Expression) string {
	keyExpr, ok := expr.(*hclsyntax.ObjectConsKeyExpr)
	if !ok {
		return ""
	}
	switch k := keyExpr.Wrapped.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(k.Traversal) == 1 {
			return k.Traversal.RootName()
		}
	case *hclsyntax.TemplateExpr:
		if len(k.Parts) == 1 {
			if lit, isLit := k.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
				return lit.Val.AsString()
			}
		}
	}
	return ""
}

package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/declrt/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// evalContext is the evaluation context for manifest expressions. Only pure
// functions are available; there are no variables.
var evalContext = &hcl.EvalContext{
	Functions: map[string]function.Function{
		"concat": stdlib.ConcatFunc,
		"format": stdlib.FormatFunc,
		"join":   stdlib.JoinFunc,
		"lower":  stdlib.LowerFunc,
		"upper":  stdlib.UpperFunc,
	},
}

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional expression fields with
// zero-width placeholder expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}

	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// evalExpr evaluates a constant manifest expression.
func evalExpr(ctx context.Context, expr hcl.Expression, attrName string) (cty.Value, hcl.Diagnostics) {
	val, diags := expr.Value(evalContext)
	if diags.HasErrors() {
		ctxlog.FromContext(ctx).Debug("Failed to evaluate HCL attribute.", "attribute", attrName, "error", diags.Error())
		return cty.NilVal, diags
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, hcl.Diagnostics{errorDiag("Unknown value", "The value of \""+attrName+"\" must be known when the manifest is loaded.", expr.Range())}
	}
	return val, nil
}

// evalArgs evaluates a call step's argument list into positional values.
func evalArgs(ctx context.Context, expr hcl.Expression) ([]cty.Value, hcl.Diagnostics) {
	val, diags := evalExpr(ctx, expr, "args")
	if diags.HasErrors() {
		return nil, diags
	}
	ty := val.Type()
	if val.IsNull() || !(ty.IsTupleType() || ty.IsListType()) {
		return nil, hcl.Diagnostics{errorDiag("Invalid arguments", "The \"args\" attribute must be a list of values.", expr.Range())}
	}

	args := make([]cty.Value, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		args = append(args, v)
	}
	return args, nil
}

// This file parses HCL type expressions (e.g. `string`, `list(number)`) used
// by parameter declarations into cty.Type values.

package hcl_adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/vk/declrt/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToCtyType converts an HCL type constraint into its cty.Type
// equivalent. An omitted expression means any type.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if !isExprDefined(ctx, expr, "type") {
		return cty.DynamicPseudoType, nil
	}

	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.DynamicPseudoType, diagsError(diags)
	}
	ctxlog.FromContext(ctx).Debug("Parsed type expression.", "type", typeexpr.TypeString(ty))
	return ty, nil
}

// diagsError flattens error diagnostics into a single error for callers that
// attach their own subject range.
func diagsError(diags hcl.Diagnostics) error {
	msgs := make([]string, 0, len(diags))
	for _, d := range diags.Errs() {
		var diag *hcl.Diagnostic
		if errors.As(d, &diag) && diag.Detail != "" {
			msgs = append(msgs, strings.TrimSuffix(diag.Detail, "."))
			continue
		}
		msgs = append(msgs, d.Error())
	}
	return errors.New(strings.Join(msgs, "; "))
}

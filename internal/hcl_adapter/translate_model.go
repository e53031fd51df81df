// This file translates the gohcl manifest structs into the format-agnostic
// configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/ctxlog"
	"github.com/vk/declrt/internal/qname"
	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// translateUnit converts a unit block into the agnostic model. All problems
// in the unit are collected rather than stopping at the first.
func (l *Loader) translateUnit(ctx context.Context, u *schema.Unit) (*config.Unit, hcl.Diagnostics) {
	ctx, logger := ctxlog.With(ctx, "unit", u.Path)
	logger.Debug("Translating HCL unit to internal config model.")

	var diags hcl.Diagnostics
	unit := &config.Unit{
		Path:     registry.NormalizePath(u.Path),
		Main:     u.Main,
		DefRange: u.DefRange,
	}
	if unit.Path == "" {
		diags = append(diags, errorDiag("Invalid unit path", "A unit path cannot be empty.", u.DefRange))
	}

	for _, f := range u.Functions {
		fn, fnDiags := translateFunction(ctx, f)
		diags = append(diags, fnDiags...)
		if fn != nil {
			unit.Functions = append(unit.Functions, fn)
		}
	}

	for _, t := range u.Types {
		diags = append(diags, checkName(t.Name, t.DefRange)...)
		if t.Extends != "" {
			diags = append(diags, checkName(t.Extends, t.DefRange)...)
		}
		unit.Types = append(unit.Types, &config.Symbol{
			Name:        t.Name,
			Conditional: t.Conditional,
			Extends:     t.Extends,
			DefRange:    t.DefRange,
		})
	}

	for _, c := range u.Constants {
		val, valDiags := evalExpr(ctx, c.Value, "value")
		diags = append(diags, valDiags...)
		if c.Name == "" {
			diags = append(diags, errorDiag("Invalid constant name", "A constant name cannot be empty.", c.DefRange))
		}
		unit.Constants = append(unit.Constants, &config.Constant{
			Name:            c.Name,
			Value:           val,
			CaseInsensitive: c.CaseInsensitive,
			DefRange:        c.DefRange,
		})
	}

	for _, s := range u.Steps {
		step, stepDiags := translateStep(ctx, s)
		diags = append(diags, stepDiags...)
		if step != nil {
			unit.Steps = append(unit.Steps, step)
		}
	}

	if isExprDefined(ctx, u.Result, "result") {
		val, valDiags := evalExpr(ctx, u.Result, "result")
		diags = append(diags, valDiags...)
		unit.Result = &val
	}

	return unit, diags
}

func translateFunction(ctx context.Context, f *schema.Function) (*config.Symbol, hcl.Diagnostics) {
	diags := checkName(f.Name, f.DefRange)

	sym := &config.Symbol{
		Name:        f.Name,
		Conditional: f.Conditional,
		Handler:     f.Handler,
		DefRange:    f.DefRange,
	}

	sawDefault := false
	for _, p := range f.Params {
		paramType, err := typeExprToCtyType(ctx, p.Type)
		if err != nil {
			diags = append(diags, errorDiag("Invalid parameter type",
				fmt.Sprintf("In function %q, parameter %q: %s.", f.Name, p.Name, err), f.DefRange))
			continue
		}

		param := &config.Param{Name: p.Name, Type: paramType}
		if isExprDefined(ctx, p.Default, "default") {
			val, valDiags := evalExpr(ctx, p.Default, "default")
			diags = append(diags, valDiags...)
			param.Default = &val
			sawDefault = true
		} else if sawDefault {
			diags = append(diags, errorDiag("Required parameter after optional parameter",
				fmt.Sprintf("In function %q, parameter %q has no default but follows a parameter that does.", f.Name, p.Name), f.DefRange))
		}
		sym.Params = append(sym.Params, param)
	}

	return sym, diags
}

func translateStep(ctx context.Context, s *schema.Step) (*config.Step, hcl.Diagnostics) {
	kind := config.StepKind(s.Kind)
	if !kind.Valid() {
		return nil, hcl.Diagnostics{errorDiag("Unsupported step kind",
			fmt.Sprintf("Step kind %q is not one of declare, include, include_once, require, require_once, define, call.", s.Kind), s.DefRange)}
	}

	var diags hcl.Diagnostics
	step := &config.Step{
		Kind:            kind,
		Target:          s.Target,
		Value:           cty.NilVal,
		CaseInsensitive: s.CaseInsensitive,
		DefRange:        s.DefRange,
	}

	if kind != config.StepDeclare && (s.SymbolKind != "" || s.Occurrence != 0) {
		diags = append(diags, errorDiag("Unexpected declaration selector",
			"Only declare steps accept symbol_kind and occurrence.", s.DefRange))
	}

	switch kind {
	case config.StepDeclare:
		diags = append(diags, checkName(s.Target, s.DefRange)...)
		symKind := config.SymbolKind(s.SymbolKind)
		if !symKind.Valid() {
			diags = append(diags, errorDiag("Unsupported symbol kind",
				fmt.Sprintf("Symbol kind %q is not one of function, type.", s.SymbolKind), s.DefRange))
		}
		step.SymbolKind = symKind
		// occurrence is 1-based in manifests; omitted means the first.
		switch {
		case s.Occurrence < 0:
			diags = append(diags, errorDiag("Invalid occurrence",
				fmt.Sprintf("Occurrence %d must be 1 or greater.", s.Occurrence), s.DefRange))
		case s.Occurrence > 0:
			step.Occurrence = s.Occurrence - 1
		}
	case config.StepInclude, config.StepIncludeOnce, config.StepRequire, config.StepRequireOnce:
		if s.Target == "" {
			diags = append(diags, errorDiag("Missing include target", "An include step needs a target path.", s.DefRange))
		}
	case config.StepDefine:
		if !isExprDefined(ctx, s.Value, "value") {
			diags = append(diags, errorDiag("Missing constant value", "A define step needs a value.", s.DefRange))
			break
		}
		val, valDiags := evalExpr(ctx, s.Value, "value")
		diags = append(diags, valDiags...)
		step.Value = val
	case config.StepCall:
		diags = append(diags, checkName(s.Target, s.DefRange)...)
		if isExprDefined(ctx, s.Args, "args") {
			args, argDiags := evalArgs(ctx, s.Args)
			diags = append(diags, argDiags...)
			step.Args = args
		}
	}

	return step, diags
}

func checkName(name string, rng hcl.Range) hcl.Diagnostics {
	if _, err := qname.Parse(name); err != nil {
		return hcl.Diagnostics{errorDiag("Invalid qualified name", err.Error()+".", rng)}
	}
	return nil
}

func errorDiag(summary, detail string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}
}

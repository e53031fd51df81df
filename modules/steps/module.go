// Package steps provides the built-in unit entry point that executes the
// steps a manifest lists for a unit.
package steps

import (
	"context"
	"fmt"
	"path"

	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/session"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the entry point with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterMain(config.DefaultMain, OnMainSteps)
}

// OnMainSteps runs the steps of the executing unit in order. It stops at the
// first failing step. The unit's result value is returned, or 1 when the
// manifest sets none.
func OnMainSteps(ctx context.Context, locals *value.Locals, this any) (cty.Value, error) {
	s := session.FromContext(ctx)
	script := s.CurrentScript()
	if script == nil {
		return value.Unset, fmt.Errorf("no unit is executing")
	}
	logger := s.Logger().With("unit", script.Path)

	dir := path.Dir(script.Path)
	if dir == "." {
		dir = ""
	}

	for _, step := range script.Steps {
		logger.Debug("Running step.", "kind", string(step.Kind), "target", step.Target)
		if err := runStep(ctx, s, script, dir, step, locals, this); err != nil {
			return value.Unset, fmt.Errorf("%s: %s step %q: %w", step.DefRange.String(), step.Kind, step.Target, err)
		}
	}

	if script.Result != nil {
		return *script.Result, nil
	}
	return cty.NumberIntVal(1), nil
}

func runStep(ctx context.Context, s *session.Session, script *registry.Script, dir string, step *config.Step, locals *value.Locals, this any) error {
	switch step.Kind {
	case config.StepDeclare:
		return declare(s, script, step)

	case config.StepInclude, config.StepIncludeOnce, config.StepRequire, config.StepRequireOnce:
		once := step.Kind == config.StepIncludeOnce || step.Kind == config.StepRequireOnce
		require := step.Kind == config.StepRequire || step.Kind == config.StepRequireOnce
		_, err := s.Include(ctx, dir, step.Target, locals, this, once, require)
		return err

	case config.StepDefine:
		if !s.DefineConstant(step.Target, step.Value, step.CaseInsensitive) && !s.ErrorReportingDisabled() {
			s.Logger().Warn("Constant already defined.", "constant", step.Target, "unit", script.Path)
		}
		return nil

	case config.StepCall:
		_, err := s.CallFunction(ctx, step.Target, step.Args...)
		return err
	}
	return fmt.Errorf("unsupported step kind %q", step.Kind)
}

// declare binds one of the unit's conditional functions or types in the
// session. Without an explicit symbol kind, functions are looked up first.
func declare(s *session.Session, script *registry.Script, step *config.Step) error {
	if step.SymbolKind != config.SymbolType {
		if r := script.ConditionalFunction(step.Target, step.Occurrence); r != nil {
			return s.DeclareFunction(r)
		}
	}
	if step.SymbolKind != config.SymbolFunction {
		if t := script.ConditionalType(step.Target, step.Occurrence); t != nil {
			return s.DeclareType(t)
		}
	}
	kind := string(step.SymbolKind)
	if kind == "" {
		kind = "function or type"
	}
	return fmt.Errorf("unit %s declares no conditional %s named %s (occurrence %d)", script.Path, kind, step.Target, step.Occurrence+1)
}

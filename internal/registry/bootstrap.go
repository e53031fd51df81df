package registry

import (
	"context"
	"fmt"

	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/ctxlog"
)

// Bootstrap registers every unit of the model together with its
// application-level functions, types and constants. It runs once, before any
// run context exists.
//
// Units are processed in model order. When two units declare the same
// application-level name, the unit processed first wins and the collision is
// logged as a warning.
func (r *Registry) Bootstrap(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry bootstrap started.", "units", len(model.Units))

	for _, unit := range model.Units {
		if err := r.bootstrapUnit(ctx, unit); err != nil {
			return fmt.Errorf("failed to bootstrap unit '%s': %w", unit.Path, err)
		}
	}

	logger.Info("Registry bootstrapped.",
		"scripts", r.Scripts.Len(),
		"functions", len(r.Functions.AppEntries()),
		"types", len(r.Types.AppEntries()),
		"constants", r.Constants.Len(),
	)
	return nil
}

func (r *Registry) bootstrapUnit(ctx context.Context, unit *config.Unit) error {
	logger := ctxlog.FromContext(ctx).With("unit", unit.Path)

	path := NormalizePath(unit.Path)
	if _, exists := r.Scripts.Lookup(path); exists {
		return fmt.Errorf("unit path '%s' is already registered", path)
	}

	mainName := unit.Main
	if mainName == "" {
		mainName = config.DefaultMain
	}
	main, ok := r.Main(mainName)
	if !ok {
		return fmt.Errorf("entry point '%s' is not registered", mainName)
	}

	script := &Script{
		Path:   path,
		Main:   main,
		Steps:  unit.Steps,
		Result: unit.Result,
		Span:   unit.DefRange,
	}

	for _, f := range unit.Functions {
		fn, ok := r.Handler(f.Handler)
		if !ok {
			return fmt.Errorf("function '%s': handler '%s' is not registered", f.Name, f.Handler)
		}
		routine := &Routine{
			Name:        f.Name,
			Unit:        path,
			Span:        f.DefRange,
			Conditional: f.Conditional,
			Params:      translateParams(f.Params),
			Fn:          fn,
		}
		script.Functions = append(script.Functions, routine)
		if routine.Conditional {
			continue
		}
		if winner, ok := r.Functions.DeclareApp(routine); !ok {
			logger.Warn("Application-level function already declared; keeping the first declaration.",
				"function", f.Name, "kept", winner.Span.String(), "ignored", routine.Span.String())
		}
	}

	for _, t := range unit.Types {
		info := &TypeInfo{
			Name:        t.Name,
			Unit:        path,
			Span:        t.DefRange,
			Conditional: t.Conditional,
			Extends:     t.Extends,
		}
		script.Types = append(script.Types, info)
		if info.Conditional {
			continue
		}
		if winner, ok := r.Types.DeclareApp(info); !ok {
			logger.Warn("Application-level type already declared; keeping the first declaration.",
				"type", t.Name, "kept", winner.Span.String(), "ignored", info.Span.String())
		}
	}

	for _, c := range unit.Constants {
		if !r.Constants.Define(c.Name, c.Value, c.CaseInsensitive) {
			logger.Warn("Application-level constant already defined; keeping the first definition.",
				"constant", c.Name, "ignored", c.DefRange.String())
		}
	}

	id := r.Scripts.Register(script)
	logger.Debug("Unit bootstrapped.", "id", int(id), "functions", len(script.Functions), "types", len(script.Types))
	return nil
}

func translateParams(params []*config.Param) []Param {
	if len(params) == 0 {
		return nil
	}
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = Param{Name: p.Name, Type: p.Type, Default: p.Default}
	}
	return out
}

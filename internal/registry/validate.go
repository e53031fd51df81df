package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/ctxlog"
	"github.com/vk/declrt/internal/qname"
)

// ValidateRegistry performs a strict parity check between the manifests and
// the registered Go code. Every referenced entry point and function handler
// must exist, and every declare step must name a conditional function or
// type of its own unit.
func (r *Registry) ValidateRegistry(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	declaredTypes := make(map[string]struct{})
	for _, unit := range model.Units {
		for _, t := range unit.Types {
			declaredTypes[qname.Key(t.Name)] = struct{}{}
		}
	}

	for _, unit := range model.Units {
		mainName := unit.Main
		if mainName == "" {
			mainName = config.DefaultMain
		}
		if _, ok := r.Main(mainName); !ok {
			errs = append(errs, fmt.Sprintf("unit '%s': entry point '%s' is not registered in Go code", unit.Path, mainName))
		}

		condFuncs := make(map[string]int)
		condTypes := make(map[string]int)
		for _, f := range unit.Functions {
			if f.Handler == "" {
				errs = append(errs, fmt.Sprintf("unit '%s', function '%s': manifest declares no handler", unit.Path, f.Name))
			} else if _, ok := r.Handler(f.Handler); !ok {
				errs = append(errs, fmt.Sprintf("unit '%s', function '%s': handler '%s' is not registered in Go code", unit.Path, f.Name, f.Handler))
			}
			if f.Conditional {
				condFuncs[qname.Key(f.Name)]++
			}
		}
		for _, t := range unit.Types {
			if t.Conditional {
				condTypes[qname.Key(t.Name)]++
			}
			if t.Extends == "" {
				continue
			}
			if _, ok := declaredTypes[qname.Key(t.Extends)]; !ok {
				logger.Warn("Type extends a parent that no unit declares.", "unit", unit.Path, "type", t.Name, "extends", t.Extends)
			}
		}

		for _, step := range unit.Steps {
			if step.Kind != config.StepDeclare {
				continue
			}
			if msg := checkDeclareStep(step, condFuncs, condTypes); msg != "" {
				errs = append(errs, fmt.Sprintf("unit '%s': declare step at %s %s", unit.Path, step.DefRange.String(), msg))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// checkDeclareStep reports why a declare step cannot address exactly one
// conditional declaration of its unit, or "" when it can.
func checkDeclareStep(step *config.Step, funcs, types map[string]int) string {
	key := qname.Key(step.Target)
	nf, nt := funcs[key], types[key]

	var n int
	switch step.SymbolKind {
	case config.SymbolFunction:
		n = nf
	case config.SymbolType:
		n = nt
	default:
		if nf > 0 && nt > 0 {
			return fmt.Sprintf("targets '%s', which is both a conditional function and type; set symbol_kind", step.Target)
		}
		n = nf + nt
	}

	what := string(step.SymbolKind)
	if what == "" {
		what = "function or type"
	}
	switch {
	case n == 0:
		return fmt.Sprintf("targets '%s', which is not a conditional %s of this unit", step.Target, what)
	case step.Occurrence >= n:
		return fmt.Sprintf("targets occurrence %d of '%s', but the unit has only %d conditional %s declaration(s) of it",
			step.Occurrence+1, step.Target, n, what)
	}
	return ""
}

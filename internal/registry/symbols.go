package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Symbol is the payload constraint of a Table. Entries are compared by
// identity, so implementations are pointer types.
type Symbol interface {
	comparable
	QualifiedName() string
	DeclRange() hcl.Range
}

// Callable is the Go implementation of a function.
type Callable func(ctx context.Context, args ...cty.Value) (cty.Value, error)

// Param describes one declared parameter of a routine.
type Param struct {
	Name string
	Type cty.Type
	// Default is used when the argument is omitted. A nil Default makes the
	// parameter required.
	Default *cty.Value
}

// Routine is a declared function.
type Routine struct {
	Name        string
	Unit        string
	Span        hcl.Range
	Conditional bool
	// Params is the declared signature. A routine without one accepts any
	// arguments unchanged.
	Params []Param
	Fn     Callable
}

func (r *Routine) QualifiedName() string { return r.Name }
func (r *Routine) DeclRange() hcl.Range  { return r.Span }

// NumberOfParameters returns the number of declared parameters.
func (r *Routine) NumberOfParameters() int {
	return len(r.Params)
}

// NumberOfRequiredParameters returns the number of leading parameters
// without a default.
func (r *Routine) NumberOfRequiredParameters() int {
	n := 0
	for _, p := range r.Params {
		if p.Default != nil {
			break
		}
		n++
	}
	return n
}

// Invoke calls the routine's implementation. Arguments are converted to the
// declared parameter types and omitted trailing arguments take their
// defaults. Extra arguments are passed through unchanged.
func (r *Routine) Invoke(ctx context.Context, args ...cty.Value) (cty.Value, error) {
	if r.Fn == nil {
		return cty.NilVal, fmt.Errorf("function %s has no implementation", r.Name)
	}
	args, err := r.bindArgs(args)
	if err != nil {
		return cty.NilVal, err
	}
	return r.Fn(ctx, args...)
}

func (r *Routine) bindArgs(args []cty.Value) ([]cty.Value, error) {
	if len(r.Params) == 0 {
		return args, nil
	}
	if required := r.NumberOfRequiredParameters(); len(args) < required {
		return nil, fmt.Errorf("too few arguments to function %s(), %d passed and at least %d expected", r.Name, len(args), required)
	}

	bound := make([]cty.Value, 0, max(len(args), len(r.Params)))
	for i, p := range r.Params {
		if i >= len(args) {
			if p.Default == nil {
				// A required parameter after an optional one.
				return nil, fmt.Errorf("too few arguments to function %s(), %d passed and at least %d expected", r.Name, len(args), i+1)
			}
			bound = append(bound, *p.Default)
			continue
		}
		v, err := convert.Convert(args[i], p.Type)
		if err != nil {
			return nil, fmt.Errorf("function %s(): argument #%d ($%s): %w", r.Name, i+1, p.Name, err)
		}
		bound = append(bound, v)
	}
	if len(args) > len(r.Params) {
		bound = append(bound, args[len(r.Params):]...)
	}
	return bound, nil
}

// TypeInfo is a declared type. Only the metadata the registry needs is kept.
type TypeInfo struct {
	Name        string
	Unit        string
	Span        hcl.Range
	Conditional bool
	Extends     string
}

func (t *TypeInfo) QualifiedName() string { return t.Name }
func (t *TypeInfo) DeclRange() hcl.Range  { return t.Span }

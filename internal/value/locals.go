package value

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Locals is a mutable variables scope handed to a unit's entry point. It is
// owned by a single run context and is not safe for concurrent use.
type Locals struct {
	vars map[string]cty.Value
}

// NewLocals creates an empty scope.
func NewLocals() *Locals {
	return &Locals{vars: make(map[string]cty.Value)}
}

// LocalsFrom creates a scope pre-populated from a map.
func LocalsFrom(vars map[string]cty.Value) *Locals {
	l := NewLocals()
	for k, v := range vars {
		l.vars[k] = v
	}
	return l
}

// Get returns the variable's value, or Unset.
func (l *Locals) Get(name string) cty.Value {
	if v, ok := l.vars[name]; ok {
		return v
	}
	return Unset
}

// Has reports whether the variable is bound.
func (l *Locals) Has(name string) bool {
	_, ok := l.vars[name]
	return ok
}

// Set binds a variable.
func (l *Locals) Set(name string, v cty.Value) {
	l.vars[name] = v
}

// Unset removes a variable binding.
func (l *Locals) Unset(name string) {
	delete(l.vars, name)
}

// Len returns the number of bound variables.
func (l *Locals) Len() int {
	return len(l.vars)
}

// Names returns the bound variable names in sorted order.
func (l *Locals) Names() []string {
	names := make([]string, 0, len(l.vars))
	for k := range l.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Object snapshots the scope as a cty object value.
func (l *Locals) Object() cty.Value {
	if len(l.vars) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(l.vars))
	for k, v := range l.vars {
		if IsUnset(v) {
			continue
		}
		attrs[k] = v
	}
	return cty.ObjectVal(attrs)
}

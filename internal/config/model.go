package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// DefaultMain is the entry point used by units that do not name one.
const DefaultMain = "OnMainSteps"

// Model is the unified representation of all loaded manifests.
type Model struct {
	// Units are ordered by manifest file path, then by source order. This
	// order decides which unit wins an application-level name collision.
	Units []*Unit
}

// Unit is one compiled program file.
type Unit struct {
	Path      string
	Main      string
	Functions []*Symbol
	Types     []*Symbol
	Constants []*Constant
	Steps     []*Step
	Result    *cty.Value
	DefRange  hcl.Range
}

// Symbol is a declared function or type.
type Symbol struct {
	Name        string
	Conditional bool
	// Handler names the Go callable implementing a function. Unused for types.
	Handler string
	// Params is the declared signature of a function. Unused for types.
	Params []*Param
	// Extends names the parent of a type. Unused for functions.
	Extends  string
	DefRange hcl.Range
}

// Param is one declared function parameter.
type Param struct {
	Name    string
	Type    cty.Type
	Default *cty.Value
}

// Constant is an application-level constant declared by a unit.
type Constant struct {
	Name            string
	Value           cty.Value
	CaseInsensitive bool
	DefRange        hcl.Range
}

// StepKind enumerates the operations a unit's entry point performs.
type StepKind string

const (
	StepDeclare     StepKind = "declare"
	StepInclude     StepKind = "include"
	StepIncludeOnce StepKind = "include_once"
	StepRequire     StepKind = "require"
	StepRequireOnce StepKind = "require_once"
	StepDefine      StepKind = "define"
	StepCall        StepKind = "call"
)

// Valid reports whether k is a known step kind.
func (k StepKind) Valid() bool {
	switch k {
	case StepDeclare, StepInclude, StepIncludeOnce, StepRequire, StepRequireOnce, StepDefine, StepCall:
		return true
	}
	return false
}

// SymbolKind selects which namespace a declare step binds into.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolType     SymbolKind = "type"
)

// Valid reports whether k is a known symbol kind. The empty kind is valid and
// lets the declare step pick whichever namespace declares the target.
func (k SymbolKind) Valid() bool {
	switch k {
	case "", SymbolFunction, SymbolType:
		return true
	}
	return false
}

// Step is a single operation of a unit's body.
type Step struct {
	Kind   StepKind
	Target string
	// SymbolKind and Occurrence address one conditional declaration of a
	// declare step. Occurrence is zero-based among the unit's conditional
	// declarations of Target in that namespace.
	SymbolKind SymbolKind
	Occurrence int
	// Value is the constant value of a define step.
	Value cty.Value
	// Args are the arguments of a call step.
	Args            []cty.Value
	CaseInsensitive bool
	DefRange        hcl.Range
}

// Package schema holds the gohcl decoding structs of the bootstrap manifest
// format. They mirror the HCL source one-to-one; translation into the
// format-agnostic config model happens in hcl_adapter.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Manifest is the top-level structure of a manifest file.
type Manifest struct {
	Units  []*Unit  `hcl:"unit,block"`
	Remain hcl.Body `hcl:",remain"`
}

// Unit represents a `unit` block: one compiled program file.
type Unit struct {
	Path      string         `hcl:"path,label"`
	Main      string         `hcl:"main,optional"`
	Functions []*Function    `hcl:"function,block"`
	Types     []*Type        `hcl:"type,block"`
	Constants []*Constant    `hcl:"constant,block"`
	Steps     []*Step        `hcl:"step,block"`
	Result    hcl.Expression `hcl:"result,optional"`
	DefRange  hcl.Range      `hcl:",def_range"`
}

// Function represents a `function` block within a unit.
type Function struct {
	Name        string    `hcl:"name,label"`
	Handler     string    `hcl:"handler"`
	Conditional bool      `hcl:"conditional,optional"`
	Params      []*Param  `hcl:"param,block"`
	DefRange    hcl.Range `hcl:",def_range"`
}

// Param represents a `param` block within a function.
type Param struct {
	Name    string         `hcl:"name,label"`
	Type    hcl.Expression `hcl:"type,optional"`
	Default hcl.Expression `hcl:"default,optional"`
}

// Type represents a `type` block within a unit.
type Type struct {
	Name        string    `hcl:"name,label"`
	Conditional bool      `hcl:"conditional,optional"`
	Extends     string    `hcl:"extends,optional"`
	DefRange    hcl.Range `hcl:",def_range"`
}

// Constant represents a `constant` block within a unit.
type Constant struct {
	Name            string         `hcl:"name,label"`
	Value           hcl.Expression `hcl:"value"`
	CaseInsensitive bool           `hcl:"case_insensitive,optional"`
	SymbolKind      string         `hcl:"symbol_kind,optional"`
	Occurrence      int            `hcl:"occurrence,optional"`
	DefRange        hcl.Range      `hcl:",def_range"`
}

// Step represents a `step` block: one operation of the unit's body.
type Step struct {
	Kind            string         `hcl:"kind,label"`
	Target          string         `hcl:"target"`
	Value           hcl.Expression `hcl:"value,optional"`
	Args            hcl.Expression `hcl:"args,optional"`
	CaseInsensitive bool           `hcl:"case_insensitive,optional"`
	SymbolKind      string         `hcl:"symbol_kind,optional"`
	Occurrence      int            `hcl:"occurrence,optional"`
	DefRange        hcl.Range      `hcl:",def_range"`
}

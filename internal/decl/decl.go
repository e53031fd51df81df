// Package decl checks the declarations of a single compiled file before any
// code runs.
//
// Only unconditionally declared symbols are checked. A function or type that
// is declared under a branch may legally appear several times in one file,
// because at most one of those branches is expected to execute; a second
// execution is detected at run time by the registry instead.
package decl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/declrt/internal/qname"
)

// Kind distinguishes the two independently checked symbol namespaces.
type Kind int

const (
	Function Kind = iota
	Type
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case Type:
		return "type"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Declaration is one declared symbol as reported by the front end.
type Declaration struct {
	QualifiedName string
	Kind          Kind
	Conditional   bool
	Span          hcl.Range
}

// Redeclaration is attached as the Extra of every redeclared diagnostic so
// that callers can read both declaration sites.
type Redeclaration struct {
	Name      string
	Kind      Kind
	Previous  hcl.Range
	Duplicate hcl.Range
}

// Validate reports every unconditional declaration whose name was already
// declared unconditionally earlier in the same file. The first declaration
// wins and each later one yields exactly one error diagnostic.
func Validate(decls []Declaration) hcl.Diagnostics {
	var diags hcl.Diagnostics

	seen := map[Kind]map[string]hcl.Range{
		Function: {},
		Type:     {},
	}

	for _, d := range decls {
		if d.Conditional {
			continue
		}

		names, ok := seen[d.Kind]
		if !ok {
			names = map[string]hcl.Range{}
			seen[d.Kind] = names
		}

		key := qname.Key(d.QualifiedName)
		first, exists := names[key]
		if !exists {
			names[key] = d.Span
			continue
		}

		dup := d.Span
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  summaryFor(d.Kind),
			Detail: fmt.Sprintf("Cannot redeclare %s %s: it was already declared at %s.",
				d.Kind, d.QualifiedName, first.String()),
			Subject: &dup,
			Extra: &Redeclaration{
				Name:      d.QualifiedName,
				Kind:      d.Kind,
				Previous:  first,
				Duplicate: dup,
			},
		})
	}

	return diags
}

// Redeclarations extracts the redeclaration details from diagnostics
// produced by Validate.
func Redeclarations(diags hcl.Diagnostics) []*Redeclaration {
	var out []*Redeclaration
	for _, diag := range diags {
		if r, ok := diag.Extra.(*Redeclaration); ok {
			out = append(out, r)
		}
	}
	return out
}

func summaryFor(k Kind) string {
	if k == Type {
		return "Type redeclared"
	}
	return "Function redeclared"
}

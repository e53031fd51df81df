package decl

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(line int) hcl.Range {
	return hcl.Range{
		Filename: "index.php",
		Start:    hcl.Pos{Line: line, Column: 1, Byte: line * 10},
		End:      hcl.Pos{Line: line, Column: 9, Byte: line*10 + 8},
	}
}

func fn(name string, conditional bool, line int) Declaration {
	return Declaration{QualifiedName: name, Kind: Function, Conditional: conditional, Span: span(line)}
}

func typ(name string, conditional bool, line int) Declaration {
	return Declaration{QualifiedName: name, Kind: Type, Conditional: conditional, Span: span(line)}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name          string
		decls         []Declaration
		expectedCount int
	}{
		{
			name:          "no declarations",
			expectedCount: 0,
		},
		{
			name:          "distinct functions",
			decls:         []Declaration{fn("a", false, 1), fn("b", false, 2)},
			expectedCount: 0,
		},
		{
			name:          "two unconditional functions",
			decls:         []Declaration{fn("f", false, 1), fn("f", false, 5)},
			expectedCount: 1,
		},
		{
			name:          "unconditional and conditional",
			decls:         []Declaration{fn("f", false, 1), fn("f", true, 5)},
			expectedCount: 0,
		},
		{
			name:          "conditional and unconditional",
			decls:         []Declaration{fn("f", true, 1), fn("f", false, 5)},
			expectedCount: 0,
		},
		{
			name:          "two conditional functions",
			decls:         []Declaration{fn("f", true, 1), fn("f", true, 5)},
			expectedCount: 0,
		},
		{
			name:          "three unconditional functions",
			decls:         []Declaration{fn("f", false, 1), fn("f", false, 2), fn("f", false, 3)},
			expectedCount: 2,
		},
		{
			name:          "names compare case-insensitively",
			decls:         []Declaration{fn(`App\Run`, false, 1), fn(`\app\run`, false, 2)},
			expectedCount: 1,
		},
		{
			name:          "function and type share a name",
			decls:         []Declaration{fn("Thing", false, 1), typ("Thing", false, 2)},
			expectedCount: 0,
		},
		{
			name:          "two unconditional types",
			decls:         []Declaration{typ("Box", false, 1), typ("Box", false, 2)},
			expectedCount: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			diags := Validate(tc.decls)
			assert.Len(t, diags, tc.expectedCount)
			if tc.expectedCount > 0 {
				assert.True(t, diags.HasErrors())
			}
		})
	}
}

func TestValidate_DiagnosticCitesBothSpans(t *testing.T) {
	diags := Validate([]Declaration{fn("helper", false, 3), fn("other", false, 4), fn("helper", false, 9)})
	require.Len(t, diags, 1)

	diag := diags[0]
	assert.Equal(t, hcl.DiagError, diag.Severity)
	assert.Equal(t, "Function redeclared", diag.Summary)
	require.NotNil(t, diag.Subject)
	assert.Equal(t, 9, diag.Subject.Start.Line)
	assert.Contains(t, diag.Detail, "helper")
	assert.Contains(t, diag.Detail, span(3).String())

	redecls := Redeclarations(diags)
	require.Len(t, redecls, 1)
	assert.Equal(t, "helper", redecls[0].Name)
	assert.Equal(t, Function, redecls[0].Kind)
	assert.Equal(t, 3, redecls[0].Previous.Start.Line)
	assert.Equal(t, 9, redecls[0].Duplicate.Start.Line)
}

func TestValidate_FirstSeenWins(t *testing.T) {
	diags := Validate([]Declaration{typ("T", false, 1), typ("T", false, 2), typ("T", false, 3)})
	redecls := Redeclarations(diags)
	require.Len(t, redecls, 2)
	for _, r := range redecls {
		assert.Equal(t, 1, r.Previous.Start.Line)
		assert.Equal(t, "Type redeclared", diags[0].Summary)
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "function", Function.String())
	assert.Equal(t, "type", Type.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

package integrationtests

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/require"
	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// TestLoader_FocusOnParsing verifies that HCL manifests are correctly
// parsed into the application's internal model.
func TestLoader_FocusOnParsing(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	manifestHCL := `
unit "./lib\\util.php" {
  function "util\\slugify" {
    handler = "NoOp"
    param "text" {
      type = string
    }
    param "sep" {
      type    = string
      default = "-"
    }
  }
  type "util\\Box" {
    conditional = true
    extends     = "util\\Base"
  }
  constant "UTIL_VERSION" {
    value = "1.2"
  }
  step "declare" {
    target = "util\\Box"
  }
  step "define" {
    target           = "LOADED"
    value            = true
    case_insensitive = true
  }
  step "call" {
    target = "util\\slugify"
    args   = [upper("hello world"), format("%s", "_")]
  }
  result = join(",", ["a", "b"])
}
`
	dash := cty.StringVal("-")
	result := cty.StringVal("a,b")
	expected := &config.Unit{
		Path: "lib/util.php",
		Functions: []*config.Symbol{
			{
				Name:    `util\slugify`,
				Handler: "NoOp",
				Params: []*config.Param{
					{Name: "text", Type: cty.String},
					{Name: "sep", Type: cty.String, Default: &dash},
				},
			},
		},
		Types: []*config.Symbol{
			{Name: `util\Box`, Conditional: true, Extends: `util\Base`},
		},
		Constants: []*config.Constant{
			{Name: "UTIL_VERSION", Value: cty.StringVal("1.2")},
		},
		Steps: []*config.Step{
			{Kind: config.StepDeclare, Target: `util\Box`},
			{Kind: config.StepDefine, Target: "LOADED", Value: cty.True, CaseInsensitive: true},
			{
				Kind:   config.StepCall,
				Target: `util\slugify`,
				Args:   []cty.Value{cty.StringVal("HELLO WORLD"), cty.StringVal("_")},
			},
		},
		Result: &result,
	}

	// --- Act ---
	harness, model := testutil.RunManifestTest(t, manifestHCL)

	// --- Assert ---
	require.NoError(t, harness.Err)
	require.NotNil(t, model)
	require.Len(t, model.Units, 1)

	opts := cmp.Options{
		cmpopts.IgnoreTypes(hcl.Range{}),
		cmpopts.EquateEmpty(),
		cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) }),
		cmp.Comparer(func(a, b cty.Type) bool { return a.Equals(b) }),
	}
	if diff := cmp.Diff(expected, model.Units[0], opts); diff != "" {
		t.Errorf("Loaded unit mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Rejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		manifest    string
		wantSummary string
	}{
		{
			name: "unknown step kind",
			manifest: `
unit "a.php" {
  step "goto" {
    target = "b.php"
  }
}
`,
			wantSummary: "Unsupported step kind",
		},
		{
			name: "required param after optional",
			manifest: `
unit "a.php" {
  function "f" {
    handler = "NoOp"
    param "a" {
      default = 1
    }
    param "b" {}
  }
}
`,
			wantSummary: "Required parameter after optional parameter",
		},
		{
			name: "define without value",
			manifest: `
unit "a.php" {
  step "define" {
    target = "X"
  }
}
`,
			wantSummary: "Missing constant value",
		},
		{
			name: "call args not a list",
			manifest: `
unit "a.php" {
  step "call" {
    target = "print"
    args   = "hello"
  }
}
`,
			wantSummary: "Invalid arguments",
		},
		{
			name: "invalid function name",
			manifest: `
unit "a.php" {
  function "bad name" {
    handler = "NoOp"
  }
}
`,
			wantSummary: "Invalid qualified name",
		},
		{
			name: "duplicate unit",
			manifest: `
unit "a.php" {}
unit "./a.php" {}
`,
			wantSummary: "Duplicate unit",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			harness, _ := testutil.RunManifestTest(t, tc.manifest)
			diags := loadDiagnostics(t, harness.Err)

			summaries := make([]string, 0, len(diags))
			for _, d := range diags {
				summaries = append(summaries, d.Summary)
			}
			require.Contains(t, summaries, tc.wantSummary)
		})
	}
}

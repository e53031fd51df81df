package integrationtests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/testutil"
)

const branchesManifest = `
unit "branch_a.php" {
  function "f" {
    handler     = "Record"
    conditional = true
  }
  type "Shape" {
    conditional = true
  }
  step "declare" {
    target = "f"
  }
  step "declare" {
    target = "Shape"
  }
}

unit "branch_b.php" {
  function "f" {
    handler     = "Record"
    conditional = true
  }
  step "declare" {
    target = "f"
  }
}

unit "both.php" {
  step "include" {
    target = "branch_a.php"
  }
  step "include" {
    target = "branch_b.php"
  }
}

unit "only_a.php" {
  step "include" {
    target = "branch_a.php"
  }
  step "call" {
    target = "f"
    args   = ["a"]
  }
}

unit "only_b.php" {
  step "include" {
    target = "branch_b.php"
  }
  step "call" {
    target = "F"
    args   = ["b"]
  }
}

unit "a_twice.php" {
  step "include" {
    target = "branch_a.php"
  }
  step "include" {
    target = "branch_a.php"
  }
}

unit "a_once_twice.php" {
  step "include_once" {
    target = "branch_a.php"
  }
  step "include_once" {
    target = "branch_a.php"
  }
}
`

func TestRedeclaration_BothBranchesInOneContext(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	recorder := testutil.NewRecorderModule(nil, 0)
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": branchesManifest}, recorder)
	require.NoError(t, result.Err)

	// --- Act ---
	_, err := result.Run(t, "both.php")

	// --- Assert ---
	require.ErrorIs(t, err, registry.ErrRedeclared)
	var redecl *registry.RedeclaredError
	require.True(t, errors.As(err, &redecl))
	assert.Equal(t, "f", redecl.Name)
	assert.Equal(t, 3, redecl.Previous.Start.Line, "the first binding came from branch_a.php")
}

func TestRedeclaration_IndependentContexts(t *testing.T) {
	t.Parallel()

	recorder := testutil.NewRecorderModule(nil, 0)
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": branchesManifest}, recorder)
	require.NoError(t, result.Err)

	// A failing context does not leak its bindings into later ones.
	_, err := result.Run(t, "both.php")
	require.Error(t, err)

	_, err = result.Run(t, "only_a.php")
	require.NoError(t, err)
	_, err = result.Run(t, "only_b.php")
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.Count("a"))
	assert.Equal(t, 1, recorder.Count("b"), "function names are case-insensitive")
}

func TestRedeclaration_RepeatedInclude(t *testing.T) {
	t.Parallel()

	recorder := testutil.NewRecorderModule(nil, 0)
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": branchesManifest}, recorder)
	require.NoError(t, result.Err)

	_, err := result.Run(t, "a_twice.php")
	require.ErrorIs(t, err, registry.ErrRedeclared)

	_, err = result.Run(t, "a_once_twice.php")
	require.NoError(t, err)
}

func TestRedeclaration_DeclaredSymbolsStayInTheirContext(t *testing.T) {
	t.Parallel()

	recorder := testutil.NewRecorderModule(nil, 0)
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": branchesManifest}, recorder)
	require.NoError(t, result.Err)

	ctx := context.Background()
	first, err := result.App.NewSession(ctx)
	require.NoError(t, err)
	defer first.Close(ctx)
	second, err := result.App.NewSession(ctx)
	require.NoError(t, err)
	defer second.Close(ctx)

	_, err = first.Require(ctx, "", "branch_a.php")
	require.NoError(t, err)

	_, ok := first.GetDeclaredFunction("f")
	assert.True(t, ok)
	_, ok = first.GetDeclaredType("shape")
	assert.True(t, ok)

	_, ok = second.GetDeclaredFunction("f")
	assert.False(t, ok)
	_, err = second.CallFunction(ctx, "f")
	require.ErrorIs(t, err, registry.ErrUndefinedFunction)
}

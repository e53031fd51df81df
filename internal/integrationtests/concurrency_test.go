package integrationtests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/declrt/internal/app"
	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/testutil"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"
)

const concurrencyManifest = `
unit "index.php" {
  function "record" {
    handler = "Record"
  }
  step "require_once" {
    target = "bootstrap.php"
  }
  step "require_once" {
    target = "bootstrap.php"
  }
  step "include" {
    target = "branch.php"
  }
  step "call" {
    target = "handle"
    args   = ["request"]
  }
}

unit "bootstrap.php" {
  step "call" {
    target = "record"
    args   = ["bootstrap"]
  }
}

unit "branch.php" {
  function "handle" {
    handler     = "Record"
    conditional = true
  }
  step "declare" {
    target = "handle"
  }
}
`

func TestConcurrency_RunsAreIsolated(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	const runs = 100
	recorder := testutil.NewRecorderModule(nil, time.Millisecond)
	result := testutil.RunIntegrationTestWithConfig(context.Background(), t,
		map[string]string{"main.hcl": concurrencyManifest},
		app.Config{WorkerCount: 16},
		recorder,
	)
	require.NoError(t, result.Err)
	scriptsBefore := result.App.Registry().Scripts.Len()

	// --- Act ---
	results, err := result.App.RunConcurrent(context.Background(), "index.php", runs)

	// --- Assert ---
	require.NoError(t, err, "conditional declarations in one run must not collide with another run")
	require.Len(t, results, runs)
	for _, v := range results {
		assert.True(t, v.RawEquals(cty.NumberIntVal(1)))
	}
	assert.Equal(t, runs, recorder.Count("bootstrap"), "require_once runs once per context")
	assert.Equal(t, runs, recorder.Count("request"))
	assert.Equal(t, scriptsBefore, result.App.Registry().Scripts.Len(), "runs never register units")
}

func TestConcurrency_WorkerLimit(t *testing.T) {
	t.Parallel()

	const runs = 8
	recorder := testutil.NewRecorderModule(nil, 20*time.Millisecond)
	result := testutil.RunIntegrationTestWithConfig(context.Background(), t,
		map[string]string{"main.hcl": concurrencyManifest},
		app.Config{WorkerCount: 2},
		recorder,
	)
	require.NoError(t, result.Err)

	_, err := result.App.RunConcurrent(context.Background(), "index.php", runs)
	require.NoError(t, err)

	// With two workers, no more than two "request" calls may overlap.
	calls := recorder.Calls("request")
	require.Len(t, calls, runs)
	for _, c := range calls {
		overlapping := 0
		for _, other := range calls {
			if other.Start.Before(c.End) && c.Start.Before(other.End) {
				overlapping++
			}
		}
		assert.LessOrEqual(t, overlapping, 2)
	}
}

func TestConcurrency_FirstFailureIsReported(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTestWithConfig(context.Background(), t,
		map[string]string{"main.hcl": concurrencyManifest},
		app.Config{WorkerCount: 4},
		testutil.NewRecorderModule(nil, 0),
	)
	require.NoError(t, result.Err)

	_, err := result.App.RunConcurrent(context.Background(), "missing.php", 10)
	require.ErrorIs(t, err, registry.ErrMissingUnit)
}

func TestConcurrency_SessionsShareTheRegistry(t *testing.T) {
	t.Parallel()

	recorder := testutil.NewRecorderModule(nil, 0)
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": concurrencyManifest}, recorder)
	require.NoError(t, result.Err)

	reg := result.App.Registry()
	_, want, ok := reg.Scripts.LookupID("branch.php")
	require.True(t, ok)

	var (
		mu  sync.Mutex
		ids = make(map[registry.ScriptID]struct{})
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			s, err := result.App.NewSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if _, err := s.IncludeOnce(ctx, "", "branch.php"); err != nil {
				return err
			}
			id := reg.Scripts.IdentityFor(registry.NewToken(want))

			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Len(t, ids, 1)
}

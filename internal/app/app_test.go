package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/declrt/internal/hcl_adapter"
	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/modules/steps"
	"github.com/zclconf/go-cty/cty"
)

type countingModule struct {
	calls atomic.Int64
}

func (m *countingModule) Register(r *registry.Registry) {
	r.RegisterHandler("Tick", func(context.Context, ...cty.Value) (cty.Value, error) {
		m.calls.Add(1)
		return cty.True, nil
	})
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(content), 0644))
	return dir
}

const testManifest = `
unit "main.php" {
  function "tick" {
    handler = "Tick"
  }
  step "require_once" {
    target = "lib.php"
  }
  step "call" {
    target = "tick"
  }
  result = "ok"
}

unit "lib.php" {
  function "helper" {
    handler     = "Tick"
    conditional = true
  }
  step "declare" {
    target = "helper"
  }
}
`

func newTestApp(t *testing.T, manifest string, workers int, modules ...registry.Module) (*App, *bytes.Buffer, error) {
	t.Helper()
	cfg, err := NewConfig(Config{
		ManifestPaths: []string{writeManifest(t, manifest)},
		LogLevel:      "debug",
		WorkerCount:   workers,
	})
	require.NoError(t, err)

	var logs bytes.Buffer
	a, err := NewApp(context.Background(), &logs, cfg, hcl_adapter.NewLoader(), modules...)
	return a, &logs, err
}

func TestApp_Run(t *testing.T) {
	counter := &countingModule{}
	a, logs, err := newTestApp(t, testManifest, 1, &steps.Module{}, counter)
	require.NoError(t, err)

	v, err := a.Run(context.Background(), "main.php")
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.StringVal("ok")))
	assert.Equal(t, int64(1), counter.calls.Load())
	assert.Equal(t, []string{"main.php", "lib.php"}, a.Registry().Scripts.Paths())
	assert.Contains(t, logs.String(), "Registry bootstrapped.")

	// Each run gets a fresh session, so the conditional declaration in
	// lib.php succeeds again.
	_, err = a.Run(context.Background(), "main.php")
	require.NoError(t, err)
}

func TestApp_RunConcurrent(t *testing.T) {
	counter := &countingModule{}
	a, _, err := newTestApp(t, testManifest, 8, &steps.Module{}, counter)
	require.NoError(t, err)

	results, err := a.RunConcurrent(context.Background(), "main.php", 100)
	require.NoError(t, err)
	require.Len(t, results, 100)
	for _, v := range results {
		assert.True(t, v.RawEquals(cty.StringVal("ok")))
	}
	assert.Equal(t, int64(100), counter.calls.Load())
}

func TestApp_RunMissingEntry(t *testing.T) {
	a, _, err := newTestApp(t, testManifest, 1, &steps.Module{}, &countingModule{})
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "nope.php")
	assert.ErrorIs(t, err, registry.ErrMissingUnit)

	_, err = a.RunConcurrent(context.Background(), "nope.php", 3)
	assert.ErrorIs(t, err, registry.ErrMissingUnit)
}

func TestNewApp_Failures(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		_, _, err := newTestApp(t, testManifest, 1, &steps.Module{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registry validation failed")
		assert.Contains(t, err.Error(), "handler 'Tick' is not registered")
	})

	t.Run("load", func(t *testing.T) {
		_, _, err := newTestApp(t, `unit "a.php" {`, 1, &steps.Module{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load manifests")
	})
}

func TestApp_DefaultModules(t *testing.T) {
	a, _, err := newTestApp(t, `
unit "hello.php" {
  step "define" {
    target = "GREETING"
    value  = "hi"
  }
}
`, 1)
	require.NoError(t, err)

	_, ok := a.Registry().Functions.App("print")
	assert.True(t, ok)
	assert.True(t, a.Registry().Constants.IsDefined("RUNTIME_OS"))

	s, err := a.NewSession(context.Background())
	require.NoError(t, err)
	_, err = s.Require(context.Background(), "", "hello.php")
	require.NoError(t, err)
	assert.True(t, s.Constant("GREETING").RawEquals(cty.StringVal("hi")))
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "no manifests", cfg: Config{}, wantErr: "at least one manifest path"},
		{name: "bad level", cfg: Config{ManifestPaths: []string{"."}, LogLevel: "loud"}, wantErr: "invalid log level"},
		{name: "bad format", cfg: Config{ManifestPaths: []string{"."}, LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "negative workers", cfg: Config{ManifestPaths: []string{"."}, WorkerCount: -1}, wantErr: "worker count"},
		{name: "negative runs", cfg: Config{ManifestPaths: []string{"."}, Runs: -2}, wantErr: "runs must be positive"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}

	cfg, err := NewConfig(Config{ManifestPaths: []string{"."}})
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 1, cfg.WorkerCount)
	assert.Equal(t, 1, cfg.Runs)
}

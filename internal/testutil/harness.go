package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/declrt/internal/app"
	"github.com/vk/declrt/internal/hcl_adapter"
	"github.com/vk/declrt/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	// Output is what the print module wrote.
	Output string
	Err    error
	App    *app.App
	Dir    string

	logs *SafeBuffer
	out  *SafeBuffer
}

// Logs returns the log output captured so far, including runs made after the
// harness returned.
func (r *HarnessResult) Logs() string {
	return r.logs.String()
}

// Printed returns the print module output captured so far.
func (r *HarnessResult) Printed() string {
	return r.out.String()
}

// Run executes entry with require semantics in a fresh session.
func (r *HarnessResult) Run(t *testing.T, entry string) (cty.Value, error) {
	t.Helper()
	require.NoError(t, r.Err, "cannot run %s: app failed to start", entry)
	return r.App.Run(context.Background(), entry)
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context and configuration.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithConfig(context.Background(), t, files, app.Config{}, modules...)
}

// RunIntegrationTestWithConfig writes files into a temporary directory, loads
// every manifest in it and builds an app with the core modules plus modules.
// cfg.ManifestPaths is ignored. An empty log level selects debug.
func RunIntegrationTestWithConfig(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	tmpDir := t.TempDir()

	// 2. Write all manifests to the temporary directory. Names may contain
	//    subdirectories.
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	// 3. Configure the app to load the directory.
	cfg.ManifestPaths = []string{tmpDir}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 4
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	outBuffer := &SafeBuffer{}
	allModules := append(app.CoreModules(outBuffer), modules...)

	var testApp *app.App
	var startErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("DECLRT_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				startErr = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		testApp, startErr = app.NewApp(ctx, logBuffer, appConfig, hcl_adapter.NewLoader(), allModules...)
	}()

	if os.Getenv("DECLRT_TEST_LOGS") == "true" {
		t.Cleanup(func() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		})
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Output:    outBuffer.String(),
		Err:       startErr,
		App:       testApp,
		Dir:       tmpDir,
		logs:      logBuffer,
		out:       outBuffer,
	}
}

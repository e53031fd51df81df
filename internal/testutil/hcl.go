package testutil

import (
	"testing"

	"github.com/vk/declrt/internal/config"
)

// RunManifestTest provides a simplified harness for testing the loading of a
// single manifest HCL string. The NoOp handler and entry point are available
// to the manifest.
func RunManifestTest(t *testing.T, manifestHCL string) (*HarnessResult, *config.Model) {
	t.Helper()

	files := map[string]string{
		"main.hcl": manifestHCL,
	}
	result := RunIntegrationTest(t, files, &NoOpModule{})
	if result.App != nil {
		return result, result.App.Model()
	}
	return result, nil
}

package env_vars

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Getenv returns the value of the named environment variable, or false if it
// is not set. Without arguments it returns every variable as an object.
func Getenv(_ context.Context, args ...cty.Value) (cty.Value, error) {
	if len(args) == 0 || args[0].IsNull() {
		envMap := make(map[string]cty.Value)
		for _, e := range os.Environ() {
			pair := strings.SplitN(e, "=", 2)
			if len(pair) == 2 {
				envMap[pair[0]] = cty.StringVal(pair[1])
			}
		}
		return cty.ObjectVal(envMap), nil
	}

	v, ok := os.LookupEnv(value.String(args[0]))
	if !ok {
		return cty.False, nil
	}
	return cty.StringVal(v), nil
}

// Register registers the handler, library function and constants with the
// registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("Getenv", Getenv)
	r.DeclareLibraryFunction("getenv", Getenv)
	r.Constants.Define("RUNTIME_OS", cty.StringVal(runtime.GOOS), false)
	r.Constants.Define("RUNTIME_ARCH", cty.StringVal(runtime.GOARCH), false)
}

package testutil

import (
	"context"

	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// NoOpModule registers a "NoOp" handler and a "NoOpMain" entry point that do
// nothing. It's useful for tests that should fail before execution begins
// but still need manifests that pass registry validation.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterHandler("NoOp", func(context.Context, ...cty.Value) (cty.Value, error) {
		return cty.NullVal(cty.DynamicPseudoType), nil
	})
	r.RegisterMain("NoOpMain", func(context.Context, *value.Locals, any) (cty.Value, error) {
		return cty.NumberIntVal(1), nil
	})
}

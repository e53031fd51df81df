package testutil

import "github.com/vk/declrt/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers an entry point and a set of function handlers.
type SimpleModule struct {
	MainName string
	Main     registry.MainFunc

	Handlers map[string]registry.Callable
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.MainName != "" && m.Main != nil {
		r.RegisterMain(m.MainName, m.Main)
	}
	for name, fn := range m.Handlers {
		r.RegisterHandler(name, fn)
	}
}

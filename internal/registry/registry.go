package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/declrt/internal/decl"
)

// Module is the interface that Go code providing entry points, callables or
// library symbols implements to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds every process-wide table for a single application instance.
type Registry struct {
	Scripts   *Scripts
	Functions *Table[*Routine]
	Types     *Table[*TypeInfo]
	Constants *Constants

	mu       sync.RWMutex
	mains    map[string]MainFunc
	handlers map[string]Callable
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		Scripts:   NewScripts(),
		Functions: NewTable[*Routine](decl.Function),
		Types:     NewTable[*TypeInfo](decl.Type),
		Constants: NewConstants(),
		mains:     make(map[string]MainFunc),
		handlers:  make(map[string]Callable),
	}
}

// RegisterMain registers a unit entry point under the name manifests use.
func (r *Registry) RegisterMain(name string, fn MainFunc) {
	if fn == nil {
		panic(fmt.Sprintf("entry point '%s' is nil", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mains[name]; exists {
		panic(fmt.Sprintf("entry point with name '%s' already registered", name))
	}
	slog.Debug("Registering entry point.", "name", name)
	r.mains[name] = fn
}

// RegisterHandler registers a function implementation under the name
// manifests use.
func (r *Registry) RegisterHandler(name string, fn Callable) {
	if fn == nil {
		panic(fmt.Sprintf("function handler '%s' is nil", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("function handler with name '%s' already registered", name))
	}
	slog.Debug("Registering function handler.", "name", name)
	r.handlers[name] = fn
}

// Main returns the entry point registered under name.
func (r *Registry) Main(name string) (MainFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.mains[name]
	return fn, ok
}

// Handler returns the function implementation registered under name.
func (r *Registry) Handler(name string) (Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// DeclareLibraryFunction declares a Go-implemented function at application
// level, the way library modules expose built-ins. It returns the routine
// that ends up bound to the name.
func (r *Registry) DeclareLibraryFunction(name string, fn Callable) *Routine {
	winner, ok := r.Functions.DeclareApp(&Routine{
		Name: name,
		Span: hcl.Range{Filename: "<library>"},
		Fn:   fn,
	})
	if !ok {
		slog.Warn("Library function already declared; keeping the first declaration.", "function", name)
	}
	return winner
}

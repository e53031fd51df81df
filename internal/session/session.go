// Package session implements the run context: one logical execution with its
// own inclusion state, declaration overlays, constants and globals. Many
// sessions run concurrently against one shared registry; a single session is
// used sequentially and is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/bits-and-blooms/bitset"
	"github.com/vk/declrt/internal/ctxlog"
	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// ErrSessionClosed is the panic value raised when a closed session is used.
var ErrSessionClosed = errors.New("session: use after context teardown")

// Options configures path resolution and logging for new sessions.
type Options struct {
	// RootPath is the directory units are registered relative to. Include
	// paths under it are looked up directly.
	RootPath string
	// WorkingDirectory is the directory relative include paths are resolved
	// against when the caller provides no current directory.
	WorkingDirectory string
	// IncludePaths are searched in order after the current directory.
	IncludePaths []string
	// Search resolves non-rooted include paths. Defaults to DefaultSearch.
	Search SearchFunc
	// Logger defaults to the logger carried by the factory's context.
	Logger *slog.Logger
}

// Factory creates sessions bound to one registry.
type Factory struct {
	Registry *registry.Registry
	Options  Options
}

// NewSession creates and configures a new session.
func (f *Factory) NewSession(ctx context.Context) (*Session, error) {
	if f.Registry == nil {
		return nil, fmt.Errorf("session factory has no registry")
	}
	opts := f.Options
	if opts.Logger == nil {
		opts.Logger = ctxlog.FromContext(ctx)
	}
	s := New(f.Registry, opts)
	s.logger.Debug("Session created.", "root", s.opts.RootPath, "include_paths", s.opts.IncludePaths)
	return s, nil
}

// Session is a single run context.
type Session struct {
	reg    *registry.Registry
	opts   Options
	root   string
	logger *slog.Logger

	included  *bitset.BitSet
	functions *registry.Overlay[*registry.Routine]
	types     *registry.Overlay[*registry.TypeInfo]
	constants *registry.Constants
	globals   *value.Locals

	// stack holds the scripts currently executing, innermost last.
	stack []*registry.Script
	// silenced counts nested DisableErrorReporting calls.
	silenced int
	closed   bool
}

// New creates a session directly. Most callers go through a Factory.
func New(reg *registry.Registry, opts Options) *Session {
	if opts.Search == nil {
		opts.Search = DefaultSearch
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Session{
		reg:       reg,
		opts:      opts,
		root:      normalizeRoot(opts.RootPath),
		logger:    opts.Logger,
		included:  bitset.New(uint(reg.Scripts.Len())),
		functions: reg.Functions.NewOverlay(),
		types:     reg.Types.NewOverlay(),
		constants: registry.NewConstants(),
		globals:   value.NewLocals(),
	}
}

// Registry returns the registry the session runs against.
func (s *Session) Registry() *registry.Registry {
	return s.reg
}

// Options returns the options the session was created with.
func (s *Session) Options() Options {
	return s.opts
}

// Logger returns the session's logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Globals returns the global variables scope.
func (s *Session) Globals() *value.Locals {
	s.mustBeOpen()
	return s.globals
}

// Close discards all context-level state. Any later use of the session
// panics with ErrSessionClosed.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	ctxlog.FromContext(ctx).Debug("Session closed.",
		"included", s.included.Count(),
		"functions", s.functions.Len(),
		"types", s.types.Len(),
		"constants", s.constants.Len(),
	)
	s.closed = true
	s.included = nil
	s.functions.Reset()
	s.types.Reset()
	s.constants = nil
	s.globals = nil
	s.stack = nil
	return nil
}

func (s *Session) mustBeOpen() {
	if s.closed {
		panic(ErrSessionClosed)
	}
}

// DeclareFunction binds a routine in this context. Any binding already
// visible under the routine's name makes this a redeclaration.
func (s *Session) DeclareFunction(r *registry.Routine) error {
	s.mustBeOpen()
	if err := s.functions.Declare(r); err != nil {
		return err
	}
	s.logger.Debug("Function declared.", "function", r.Name, "unit", r.Unit)
	return nil
}

// OverrideFunction binds a routine in this context, shadowing an
// application-level routine of the same name.
func (s *Session) OverrideFunction(r *registry.Routine) error {
	s.mustBeOpen()
	if err := s.functions.Override(r); err != nil {
		return err
	}
	s.logger.Debug("Function overridden.", "function", r.Name, "unit", r.Unit)
	return nil
}

// DeclareType binds a type in this context.
func (s *Session) DeclareType(t *registry.TypeInfo) error {
	s.mustBeOpen()
	if err := s.types.Declare(t); err != nil {
		return err
	}
	s.logger.Debug("Type declared.", "type", t.Name, "unit", t.Unit)
	return nil
}

// GetDeclaredFunction returns the routine visible under name.
func (s *Session) GetDeclaredFunction(name string) (*registry.Routine, bool) {
	s.mustBeOpen()
	return s.functions.Resolve(name)
}

// GetDeclaredType returns the type visible under name.
func (s *Session) GetDeclaredType(name string) (*registry.TypeInfo, bool) {
	s.mustBeOpen()
	return s.types.Resolve(name)
}

// DeclaredFunctions returns every routine visible in this context.
func (s *Session) DeclaredFunctions() []*registry.Routine {
	s.mustBeOpen()
	return s.functions.Declared()
}

// DeclaredTypes returns every type visible in this context.
func (s *Session) DeclaredTypes() []*registry.TypeInfo {
	s.mustBeOpen()
	return s.types.Declared()
}

// IsFunctionDeclared reports whether r itself is bound in this context.
func (s *Session) IsFunctionDeclared(r *registry.Routine) bool {
	s.mustBeOpen()
	return s.functions.IsDeclared(r)
}

// FunctionSlot returns the stable slot of a function name for use with
// CheckFunctionDeclared.
func (s *Session) FunctionSlot(name string) int {
	return s.reg.Functions.Slot(name)
}

// CheckFunctionDeclared reports whether the routine bound at slot is r.
func (s *Session) CheckFunctionDeclared(slot int, r *registry.Routine) bool {
	s.mustBeOpen()
	return s.functions.IsDeclaredAt(slot, r)
}

// AssertFunctionDeclared fails with ErrUndefinedFunction unless r is bound.
func (s *Session) AssertFunctionDeclared(r *registry.Routine) error {
	if !s.IsFunctionDeclared(r) {
		return fmt.Errorf("%w: %s()", registry.ErrUndefinedFunction, r.Name)
	}
	return nil
}

// IsTypeDeclared reports whether t itself is bound in this context.
func (s *Session) IsTypeDeclared(t *registry.TypeInfo) bool {
	s.mustBeOpen()
	return s.types.IsDeclared(t)
}

// TypeSlot returns the stable slot of a type name for use with
// CheckTypeDeclared.
func (s *Session) TypeSlot(name string) int {
	return s.reg.Types.Slot(name)
}

// CheckTypeDeclared reports whether the type bound at slot is t.
func (s *Session) CheckTypeDeclared(slot int, t *registry.TypeInfo) bool {
	s.mustBeOpen()
	return s.types.IsDeclaredAt(slot, t)
}

// AssertTypeDeclared fails with ErrUndefinedType unless t is bound.
func (s *Session) AssertTypeDeclared(t *registry.TypeInfo) error {
	if !s.IsTypeDeclared(t) {
		return fmt.Errorf("%w: %s", registry.ErrUndefinedType, t.Name)
	}
	return nil
}

// CallFunction invokes the routine visible under name.
func (s *Session) CallFunction(ctx context.Context, name string, args ...cty.Value) (cty.Value, error) {
	r, ok := s.GetDeclaredFunction(name)
	if !ok {
		return value.Unset, fmt.Errorf("%w: %s()", registry.ErrUndefinedFunction, name)
	}
	return r.Invoke(s.bind(ctx), args...)
}

// DefineConstant binds a context-level constant. It returns false if the
// name is already bound at application or context level.
func (s *Session) DefineConstant(name string, v cty.Value, caseInsensitive bool) bool {
	s.mustBeOpen()
	if s.reg.Constants.Conflicts(name, caseInsensitive) {
		return false
	}
	return s.constants.Define(name, v, caseInsensitive)
}

// Constant returns the value bound to name, or value.Unset.
func (s *Session) Constant(name string) cty.Value {
	s.mustBeOpen()
	if entry, ok := s.constants.Lookup(name); ok {
		return entry.Value
	}
	return s.reg.Constants.Get(name)
}

// IsConstantDefined reports whether name is bound.
func (s *Session) IsConstantDefined(name string) bool {
	return !value.IsUnset(s.Constant(name))
}

// Constants returns application-level constants followed by the ones this
// context defined.
func (s *Session) Constants() iter.Seq2[string, cty.Value] {
	s.mustBeOpen()
	app, local := s.reg.Constants.All(), s.constants.All()
	return func(yield func(string, cty.Value) bool) {
		for name, v := range app {
			if !yield(name, v) {
				return
			}
		}
		for name, v := range local {
			if !yield(name, v) {
				return
			}
		}
	}
}

// DisableErrorReporting suppresses soft warnings until a matching
// EnableErrorReporting call.
func (s *Session) DisableErrorReporting() {
	s.silenced++
}

// EnableErrorReporting undoes one DisableErrorReporting call.
func (s *Session) EnableErrorReporting() {
	if s.silenced > 0 {
		s.silenced--
	}
}

// ErrorReportingDisabled reports whether soft warnings are suppressed.
func (s *Session) ErrorReportingDisabled() bool {
	return s.silenced != 0
}

// CurrentScript returns the innermost executing script, or nil.
func (s *Session) CurrentScript() *registry.Script {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// bind returns ctx carrying this session and its logger.
func (s *Session) bind(ctx context.Context) context.Context {
	if cur, ok := Lookup(ctx); !ok || cur != s {
		ctx = WithSession(ctx, s)
	}
	return ctxlog.WithLogger(ctx, s.logger)
}

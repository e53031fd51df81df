package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/qname"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// MainFunc is the entry point of a compiled unit. The run context executing
// the unit travels in ctx.
type MainFunc func(ctx context.Context, locals *value.Locals, this any) (cty.Value, error)

// ScriptID is the process-wide identity of a unit. Identities are assigned
// in registration order starting at zero and are never reused.
type ScriptID int

// Script describes one compiled unit.
type Script struct {
	Path string
	Main MainFunc

	// Functions and Types are everything the unit declares. Conditional
	// entries are only bound when the unit's body declares them at run time.
	Functions []*Routine
	Types     []*TypeInfo

	Steps  []*config.Step
	Result *cty.Value
	Span   hcl.Range
}

// Function returns the function the unit declares under name.
func (s *Script) Function(name string) *Routine {
	key := qname.Key(name)
	for _, r := range s.Functions {
		if qname.Key(r.Name) == key {
			return r
		}
	}
	return nil
}

// Type returns the type the unit declares under name.
func (s *Script) Type(name string) *TypeInfo {
	key := qname.Key(name)
	for _, t := range s.Types {
		if qname.Key(t.Name) == key {
			return t
		}
	}
	return nil
}

// ConditionalFunction returns the n-th (zero-based) conditional function the
// unit declares under name.
func (s *Script) ConditionalFunction(name string, n int) *Routine {
	key := qname.Key(name)
	for _, r := range s.Functions {
		if !r.Conditional || qname.Key(r.Name) != key {
			continue
		}
		if n == 0 {
			return r
		}
		n--
	}
	return nil
}

// ConditionalType returns the n-th (zero-based) conditional type the unit
// declares under name.
func (s *Script) ConditionalType(name string, n int) *TypeInfo {
	key := qname.Key(name)
	for _, t := range s.Types {
		if !t.Conditional || qname.Key(t.Name) != key {
			continue
		}
		if n == 0 {
			return t
		}
		n--
	}
	return nil
}

// NormalizePath converts a unit path to its canonical form: forward
// slashes, cleaned, no leading "./".
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	p = path.Clean(strings.ReplaceAll(p, `\`, "/"))
	if p == "." {
		return ""
	}
	return p
}

// Token is the handle compiled code holds for its own unit. Resolving a
// token to an identity registers the unit on first use.
type Token struct {
	script *Script
}

// NewToken creates a token for a unit descriptor.
func NewToken(s *Script) *Token {
	return &Token{script: s}
}

// Script returns the descriptor the token stands for.
func (t *Token) Script() *Script {
	return t.script
}

// Scripts maps normalized unit paths to identities and descriptors.
type Scripts struct {
	mu      sync.RWMutex
	ids     map[string]ScriptID
	scripts []*Script

	// tokens caches token resolutions. Key: *Token, Value: ScriptID.
	tokens sync.Map
}

// NewScripts creates an empty script registry.
func NewScripts() *Scripts {
	return &Scripts{ids: make(map[string]ScriptID)}
}

// Register stores a copy of the descriptor under its normalized path and
// returns the path's identity. Registering a known path returns the existing
// identity and keeps the existing descriptor. A descriptor without a path or
// entry point is a build inconsistency and panics.
func (s *Scripts) Register(script *Script) ScriptID {
	if script == nil {
		panic("registry: cannot register a nil script")
	}
	p := NormalizePath(script.Path)
	if p == "" {
		panic("registry: cannot register a script without a path")
	}
	if script.Main == nil {
		panic(fmt.Sprintf("registry: script '%s' has no entry point", p))
	}

	s.mu.RLock()
	id, ok := s.ids[p]
	s.mu.RUnlock()
	if ok {
		return id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.ids[p]; ok {
		return id
	}

	stored := *script
	stored.Path = p
	id = ScriptID(len(s.scripts))
	s.scripts = append(s.scripts, &stored)
	s.ids[p] = id

	slog.Debug("Script registered.", "path", p, "id", int(id))
	return id
}

// Lookup returns the descriptor registered under path.
func (s *Scripts) Lookup(p string) (*Script, bool) {
	_, script, ok := s.LookupID(p)
	return script, ok
}

// LookupID returns the identity and descriptor registered under path.
func (s *Scripts) LookupID(p string) (ScriptID, *Script, bool) {
	key := NormalizePath(p)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ids[key]
	if !ok {
		return -1, nil, false
	}
	return id, s.scripts[id], true
}

// Get returns the descriptor with the given identity, or nil.
func (s *Scripts) Get(id ScriptID) *Script {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 0 || int(id) >= len(s.scripts) {
		return nil
	}
	return s.scripts[id]
}

// IdentityFor resolves a token to its unit's identity. The first resolution
// registers the unit; later ones are served from a cache.
func (s *Scripts) IdentityFor(t *Token) ScriptID {
	if id, ok := s.tokens.Load(t); ok {
		return id.(ScriptID)
	}
	id := s.Register(t.script)
	actual, _ := s.tokens.LoadOrStore(t, id)
	return actual.(ScriptID)
}

// Len returns the number of registered units.
func (s *Scripts) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scripts)
}

// Paths returns all registered paths in identity order.
func (s *Scripts) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.scripts))
	for i, script := range s.scripts {
		out[i] = script.Path
	}
	return out
}

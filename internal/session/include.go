package session

import (
	"context"
	"fmt"
	"path"

	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Include resolves p, then runs the unit's entry point in this session.
//
// dir is the directory of the including script; when empty the session's
// working directory is used. A nil locals runs the unit in the global scope.
// With once set, a unit already included in this session is not run again
// and value.True is returned. A target that cannot be resolved fails with
// *registry.MissingUnitError when throwOnMissing is set and otherwise yields
// value.False with a warning.
//
// The inclusion bit of a unit is set after its entry point returns without
// error, whichever variant ran it.
func (s *Session) Include(ctx context.Context, dir, p string, locals *value.Locals, this any, once, throwOnMissing bool) (cty.Value, error) {
	s.mustBeOpen()

	id, script, ok := s.resolve(dir, p)
	if !ok {
		if throwOnMissing {
			return value.Unset, &registry.MissingUnitError{Path: p}
		}
		if !s.ErrorReportingDisabled() {
			s.logger.Warn("Include target not found.", "path", p, "dir", dir)
		}
		return value.False, nil
	}

	if once && s.included.Test(uint(id)) {
		s.logger.Debug("Unit already included; skipping.", "path", script.Path, "id", int(id))
		return value.True, nil
	}

	if locals == nil {
		locals = s.globals
	}

	s.logger.Debug("Including unit.", "path", script.Path, "id", int(id), "once", once, "require", throwOnMissing)
	result, err := s.run(ctx, script, locals, this)
	if err != nil {
		return value.Unset, fmt.Errorf("failed to include '%s': %w", script.Path, err)
	}

	s.included.Set(uint(id))
	return result, nil
}

func (s *Session) run(ctx context.Context, script *registry.Script, locals *value.Locals, this any) (cty.Value, error) {
	s.stack = append(s.stack, script)
	defer func() {
		s.stack = s.stack[:len(s.stack)-1]
	}()
	return script.Main(s.bind(ctx), locals, this)
}

// IncludeFile is include semantics in the global scope.
func (s *Session) IncludeFile(ctx context.Context, dir, p string) (cty.Value, error) {
	return s.Include(ctx, dir, p, nil, nil, false, false)
}

// IncludeOnce is include_once semantics in the global scope.
func (s *Session) IncludeOnce(ctx context.Context, dir, p string) (cty.Value, error) {
	return s.Include(ctx, dir, p, nil, nil, true, false)
}

// Require is require semantics in the global scope.
func (s *Session) Require(ctx context.Context, dir, p string) (cty.Value, error) {
	return s.Include(ctx, dir, p, nil, nil, false, true)
}

// RequireOnce is require_once semantics in the global scope.
func (s *Session) RequireOnce(ctx context.Context, dir, p string) (cty.Value, error) {
	return s.Include(ctx, dir, p, nil, nil, true, true)
}

// CheckIncludeOnce reports whether the token's unit may still be included
// with once semantics, that is, it has not been included in this session.
func (s *Session) CheckIncludeOnce(tok *registry.Token) bool {
	s.mustBeOpen()
	return !s.included.Test(uint(s.reg.Scripts.IdentityFor(tok)))
}

// MarkIncluded sets the token's inclusion bit. Compiled code calls it at the
// start of its entry point when a once-include of the unit must short
// circuit even while the unit is still running.
func (s *Session) MarkIncluded(tok *registry.Token) {
	s.mustBeOpen()
	s.included.Set(uint(s.reg.Scripts.IdentityFor(tok)))
}

// IsIncluded reports whether the unit registered under p has been included.
// p is either root-relative or an absolute path under the root.
func (s *Session) IsIncluded(p string) bool {
	s.mustBeOpen()
	id, _, ok := s.lookup(p)
	return ok && s.included.Test(uint(id))
}

// IncludedPaths returns the paths of every included unit in identity order.
func (s *Session) IncludedPaths() []string {
	s.mustBeOpen()
	out := make([]string, 0, s.included.Count())
	for i, ok := s.included.NextSet(0); ok; i, ok = s.included.NextSet(i + 1) {
		if script := s.reg.Scripts.Get(registry.ScriptID(i)); script != nil {
			out = append(out, script.Path)
		}
	}
	return out
}

// ScriptPath returns the full path of the token's unit in this session.
func (s *Session) ScriptPath(tok *registry.Token) string {
	id := s.reg.Scripts.IdentityFor(tok)
	script := s.reg.Scripts.Get(id)
	if s.root == "" {
		return script.Path
	}
	return path.Join(s.root, script.Path)
}

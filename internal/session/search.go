package session

import (
	"path"
	"strings"

	"github.com/vk/declrt/internal/registry"
)

// LookupFunc looks a candidate path up in the script registry.
type LookupFunc func(candidate string) (registry.ScriptID, *registry.Script, bool)

// SearchFunc resolves a non-rooted include path to at most one script. It
// must be deterministic: the same inputs always select the same script.
type SearchFunc func(p, currentDir string, includePaths []string, lookup LookupFunc) (registry.ScriptID, *registry.Script, bool)

// DefaultSearch resolves include paths the way the source language does.
// Paths starting with "./" or "../" are resolved against currentDir only.
// Absolute paths are looked up as they are. Any other path is tried against
// currentDir, then each include path in order, then as-is. The first match
// wins.
func DefaultSearch(p, currentDir string, includePaths []string, lookup LookupFunc) (registry.ScriptID, *registry.Script, bool) {
	p = toSlash(p)
	if p == "" {
		return -1, nil, false
	}

	if isExplicitRelative(p) {
		return lookup(path.Join(toSlash(currentDir), p))
	}
	if path.IsAbs(p) {
		return lookup(p)
	}

	candidates := make([]string, 0, len(includePaths)+2)
	if currentDir != "" {
		candidates = append(candidates, path.Join(toSlash(currentDir), p))
	}
	for _, dir := range includePaths {
		candidates = append(candidates, path.Join(toSlash(dir), p))
	}
	candidates = append(candidates, p)

	for _, candidate := range candidates {
		if id, script, ok := lookup(candidate); ok {
			return id, script, true
		}
	}
	return -1, nil, false
}

func isExplicitRelative(p string) bool {
	return p == "." || p == ".." || strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func normalizeRoot(root string) string {
	root = toSlash(root)
	if root == "" {
		return ""
	}
	return path.Clean(root)
}

// relativeToRoot strips the session root from a path under it.
func (s *Session) relativeToRoot(p string) (string, bool) {
	if s.root == "" {
		return "", false
	}
	p = path.Clean(p)
	prefix := strings.TrimSuffix(s.root, "/") + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return p[len(prefix):], true
}

// lookup is the LookupFunc handed to the search function. Candidates under
// the root are looked up by their root-relative path.
func (s *Session) lookup(candidate string) (registry.ScriptID, *registry.Script, bool) {
	candidate = toSlash(candidate)
	if rel, ok := s.relativeToRoot(candidate); ok {
		candidate = rel
	}
	return s.reg.Scripts.LookupID(candidate)
}

// resolve implements path resolution for Include. Rooted paths are looked up
// directly; everything else goes through the configured search function.
func (s *Session) resolve(dir, p string) (registry.ScriptID, *registry.Script, bool) {
	p = toSlash(p)
	if rel, ok := s.relativeToRoot(p); ok {
		return s.reg.Scripts.LookupID(rel)
	}
	if dir == "" {
		dir = s.opts.WorkingDirectory
	}
	return s.opts.Search(p, dir, s.opts.IncludePaths, s.lookup)
}

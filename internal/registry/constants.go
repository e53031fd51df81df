package registry

import (
	"iter"
	"sync"

	"github.com/vk/declrt/internal/qname"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Constant is one bound constant.
type Constant struct {
	Name            string
	Value           cty.Value
	CaseInsensitive bool
}

// Constants is a name-to-value map supporting case-sensitive and
// case-insensitive bindings. A binding, once made, never changes.
type Constants struct {
	mu      sync.RWMutex
	byName  map[string]*Constant
	byFold  map[string]*Constant // case-insensitive bindings only
	folded  map[string]int       // every binding, by folded name
	entries []*Constant
}

// NewConstants creates an empty constant map.
func NewConstants() *Constants {
	return &Constants{
		byName: make(map[string]*Constant),
		byFold: make(map[string]*Constant),
		folded: make(map[string]int),
	}
}

// Define binds name to v. It returns false, leaving the map unchanged, if a
// binding already exists under the relevant comparison: a case-sensitive
// name clashes with an identical name or with a case-insensitive binding of
// the same folded name; a case-insensitive name clashes with any binding of
// the same folded name.
func (c *Constants) Define(name string, v cty.Value, caseInsensitive bool) bool {
	if name == "" || value.IsUnset(v) {
		return false
	}
	fold := qname.Fold(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conflictsLocked(name, fold, caseInsensitive) {
		return false
	}

	entry := &Constant{Name: name, Value: v, CaseInsensitive: caseInsensitive}
	c.byName[name] = entry
	c.folded[fold]++
	if caseInsensitive {
		c.byFold[fold] = entry
	}
	c.entries = append(c.entries, entry)
	return true
}

// Conflicts reports whether defining name would clash with an existing
// binding under the rules of Define.
func (c *Constants) Conflicts(name string, caseInsensitive bool) bool {
	fold := qname.Fold(name)

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conflictsLocked(name, fold, caseInsensitive)
}

func (c *Constants) conflictsLocked(name, fold string, caseInsensitive bool) bool {
	if caseInsensitive {
		return c.folded[fold] > 0
	}
	if _, ok := c.byName[name]; ok {
		return true
	}
	_, ok := c.byFold[fold]
	return ok
}

// Lookup returns the binding matching name: an exact match first, then a
// case-insensitive binding of the same folded name.
func (c *Constants) Lookup(name string) (*Constant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, ok := c.byName[name]; ok {
		return entry, true
	}
	if len(c.byFold) == 0 {
		return nil, false
	}
	entry, ok := c.byFold[qname.Fold(name)]
	return entry, ok
}

// Get returns the bound value, or value.Unset.
func (c *Constants) Get(name string) cty.Value {
	if entry, ok := c.Lookup(name); ok {
		return entry.Value
	}
	return value.Unset
}

// IsDefined reports whether name is bound.
func (c *Constants) IsDefined(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Len returns the number of bindings.
func (c *Constants) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// All returns the bindings in definition order. The sequence iterates over a
// snapshot taken when All is called.
func (c *Constants) All() iter.Seq2[string, cty.Value] {
	c.mu.RLock()
	snapshot := make([]*Constant, len(c.entries))
	copy(snapshot, c.entries)
	c.mu.RUnlock()

	return func(yield func(string, cty.Value) bool) {
		for _, entry := range snapshot {
			if !yield(entry.Name, entry.Value) {
				return
			}
		}
	}
}

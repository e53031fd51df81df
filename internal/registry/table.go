package registry

import (
	"log/slog"
	"sync"

	"github.com/vk/declrt/internal/decl"
	"github.com/vk/declrt/internal/qname"
)

// Table is the process-wide half of the function or type registry.
//
// Every distinct name gets a slot the first time it is seen, whether it is
// declared at application level or by some run context. Slots index both the
// shared application entries and the per-context Overlay entries. They are
// never reused, so a slot captured by compiled code always denotes the same
// name.
type Table[T Symbol] struct {
	kind decl.Kind

	mu    sync.RWMutex
	slots map[string]int
	names []string
	app   []T
}

// NewTable creates an empty table for the given symbol kind.
func NewTable[T Symbol](kind decl.Kind) *Table[T] {
	return &Table[T]{
		kind:  kind,
		slots: make(map[string]int),
	}
}

// Kind returns the symbol kind stored in the table.
func (t *Table[T]) Kind() decl.Kind {
	return t.kind
}

// Slot returns the stable slot of a name, assigning one if necessary.
func (t *Table[T]) Slot(name string) int {
	key := qname.Key(name)

	t.mu.RLock()
	slot, ok := t.slots[key]
	t.mu.RUnlock()
	if ok {
		return slot
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slotLocked(key, name)
}

// LookupSlot returns the slot of a name without assigning one.
func (t *Table[T]) LookupSlot(name string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	slot, ok := t.slots[qname.Key(name)]
	return slot, ok
}

func (t *Table[T]) slotLocked(key, name string) int {
	if slot, ok := t.slots[key]; ok {
		return slot
	}
	var zero T
	slot := len(t.names)
	t.slots[key] = slot
	t.names = append(t.names, name)
	t.app = append(t.app, zero)
	return slot
}

// DeclareApp registers an application-level entry. Application-level
// declarations are not checked for redeclaration: the first entry declared
// under a name wins. On a collision the winning entry is returned with false.
func (t *Table[T]) DeclareApp(entry T) (T, bool) {
	name := entry.QualifiedName()

	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	slot := t.slotLocked(qname.Key(name), name)
	if existing := t.app[slot]; existing != zero {
		return existing, false
	}
	t.app[slot] = entry
	slog.Debug("Application-level symbol declared.", "kind", t.kind.String(), "name", name, "slot", slot)
	return entry, true
}

// App returns the application-level entry bound to a name.
func (t *Table[T]) App(name string) (T, bool) {
	var zero T
	slot, ok := t.LookupSlot(name)
	if !ok {
		return zero, false
	}
	return t.AppAt(slot)
}

// AppAt returns the application-level entry bound to a slot.
func (t *Table[T]) AppAt(slot int) (T, bool) {
	var zero T

	t.mu.RLock()
	defer t.mu.RUnlock()

	if slot < 0 || slot >= len(t.app) {
		return zero, false
	}
	entry := t.app[slot]
	return entry, entry != zero
}

// AppEntries returns every application-level entry in slot order.
func (t *Table[T]) AppEntries() []T {
	var zero T

	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.app))
	for _, entry := range t.app {
		if entry != zero {
			out = append(out, entry)
		}
	}
	return out
}

// Len returns the number of assigned slots.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// NewOverlay creates the context-level half of the table for one run context.
func (t *Table[T]) NewOverlay() *Overlay[T] {
	return &Overlay[T]{table: t}
}

func (t *Table[T]) snapshot() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, len(t.app))
	copy(out, t.app)
	return out
}

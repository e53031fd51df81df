package registry

// Overlay holds the declarations one run context made at run time. It is
// owned by that context and is not safe for concurrent use.
type Overlay[T Symbol] struct {
	table   *Table[T]
	entries []T
	count   int
}

// Table returns the shared table the overlay sits on.
func (o *Overlay[T]) Table() *Table[T] {
	return o.table
}

// Declare binds entry in this context. Any visible binding of the same name,
// application-level or context-level, makes this a redeclaration.
func (o *Overlay[T]) Declare(entry T) error {
	slot := o.table.Slot(entry.QualifiedName())
	if prev, ok := o.at(slot); ok {
		return o.redeclared(entry, prev)
	}
	if prev, ok := o.table.AppAt(slot); ok {
		return o.redeclared(entry, prev)
	}
	o.set(slot, entry)
	return nil
}

// Override binds entry in this context even if an application-level entry of
// the same name exists, shadowing it for this context only. A second
// context-level binding of the name is still a redeclaration.
func (o *Overlay[T]) Override(entry T) error {
	slot := o.table.Slot(entry.QualifiedName())
	if prev, ok := o.at(slot); ok {
		return o.redeclared(entry, prev)
	}
	o.set(slot, entry)
	return nil
}

// Resolve returns the entry visible under name. Context-level entries take
// precedence over application-level ones.
func (o *Overlay[T]) Resolve(name string) (T, bool) {
	slot, ok := o.table.LookupSlot(name)
	if !ok {
		var zero T
		return zero, false
	}
	return o.ResolveAt(slot)
}

// ResolveAt is Resolve for a known slot.
func (o *Overlay[T]) ResolveAt(slot int) (T, bool) {
	if entry, ok := o.at(slot); ok {
		return entry, true
	}
	return o.table.AppAt(slot)
}

// IsDeclared reports whether entry itself is the binding visible under its
// name, as opposed to some other entry of the same name.
func (o *Overlay[T]) IsDeclared(entry T) bool {
	got, ok := o.Resolve(entry.QualifiedName())
	return ok && got == entry
}

// IsDeclaredAt reports whether the binding visible at slot is expected.
func (o *Overlay[T]) IsDeclaredAt(slot int, expected T) bool {
	got, ok := o.ResolveAt(slot)
	return ok && got == expected
}

// Declared returns every visible entry in slot order, hiding shadowed
// application-level entries.
func (o *Overlay[T]) Declared() []T {
	var zero T
	app := o.table.snapshot()
	out := make([]T, 0, len(app))
	for slot, appEntry := range app {
		if entry, ok := o.at(slot); ok {
			out = append(out, entry)
			continue
		}
		if appEntry != zero {
			out = append(out, appEntry)
		}
	}
	return out
}

// Len returns the number of context-level entries.
func (o *Overlay[T]) Len() int {
	return o.count
}

// Reset drops every context-level entry.
func (o *Overlay[T]) Reset() {
	o.entries = nil
	o.count = 0
}

func (o *Overlay[T]) at(slot int) (T, bool) {
	var zero T
	if slot < 0 || slot >= len(o.entries) {
		return zero, false
	}
	entry := o.entries[slot]
	return entry, entry != zero
}

func (o *Overlay[T]) set(slot int, entry T) {
	if slot >= len(o.entries) {
		grown := make([]T, slot+1, 2*slot+1)
		copy(grown, o.entries)
		o.entries = grown
	}
	o.entries[slot] = entry
	o.count++
}

func (o *Overlay[T]) redeclared(entry, prev T) error {
	return &RedeclaredError{
		Kind:      o.table.kind,
		Name:      entry.QualifiedName(),
		Previous:  prev.DeclRange(),
		Duplicate: entry.DeclRange(),
	}
}

package project

import "github.com/skyripley/boomerang/pkg/btypes"

// TypeTable resolves btypes.Named references by name (spec.md §4.B's
// resolvesToX predicates "transparently follow Named"), owned by a
// Program and shared by every Module's Compound/Union declarations.
type TypeTable struct {
	types map[string]btypes.Type
}

// NewTypeTable returns an empty TypeTable.
func NewTypeTable() *TypeTable {
	return &TypeTable{types: make(map[string]btypes.Type)}
}

// Define registers name to resolve to t.
func (tt *TypeTable) Define(name string, t btypes.Type) {
	tt.types[name] = t
}

// Lookup returns the type registered for name, if any.
func (tt *TypeTable) Lookup(name string) (btypes.Type, bool) {
	t, ok := tt.types[name]
	return t, ok
}

// Named returns a btypes.Named reference bound to this table, so
// resolution follows whatever Define call eventually registers (or was
// already registered) for name.
func (tt *TypeTable) Named(name string) btypes.Named {
	return btypes.Named{Name: name, Resolve: func(n string) btypes.Type {
		t, ok := tt.types[n]
		if !ok {
			return nil
		}
		return t
	}}
}

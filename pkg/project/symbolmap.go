package project

import (
	"fmt"

	"github.com/skyripley/boomerang/pkg/bexpr"
)

// SymbolMap keeps both directions of a procedure's expression-to-name
// binding (SPEC_FULL.md §3 EXPANSION): forward (expression key → name) for
// the emitter to substitute at print time, and reverse (name → expression
// key) so ParameterSymbolMap/LocalAndParamMap can detect a name collision
// before assigning a fresh one.
type SymbolMap struct {
	forward map[string]string
	reverse map[string]string
}

// NewSymbolMap returns an empty SymbolMap.
func NewSymbolMap() *SymbolMap {
	return &SymbolMap{forward: make(map[string]string), reverse: make(map[string]string)}
}

func (m *SymbolMap) key(e bexpr.Expr) string {
	if e == nil {
		return "<nil>"
	}
	return bexprKey(e)
}

// Lookup returns the name bound to e, if any.
func (m *SymbolMap) Lookup(e bexpr.Expr) (string, bool) {
	name, ok := m.forward[m.key(e)]
	return name, ok
}

// Bind records that e should print as name, replacing any previous
// binding for either e or name.
func (m *SymbolMap) Bind(e bexpr.Expr, name string) {
	k := m.key(e)
	if old, ok := m.forward[k]; ok {
		delete(m.reverse, old)
	}
	m.forward[k] = name
	m.reverse[name] = k
}

// HasName reports whether name is already bound to some expression.
func (m *SymbolMap) HasName(name string) bool {
	_, ok := m.reverse[name]
	return ok
}

func bexprKey(e bexpr.Expr) string {
	return fmt.Sprintf("%x", bexpr.Hash(e))
}

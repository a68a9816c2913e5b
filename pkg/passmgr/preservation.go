package passmgr

import (
	"fmt"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/simplify"
)

// maxPreservationUnfold bounds how many SSA def substitutions
// checkPreservation will inline before giving up and calling a value
// unprovable, so a defining chain through a loop-carried phi cannot hang
// the pass.
const maxPreservationUnfold = 16

// passSPPreservation checks whether the stack-pointer register's value on
// entry equals its value on every return path, the special-cased check
// the original decompiler runs before the general PreservationAnalysis
// pass since SP arithmetic is ubiquitous (frame setup/teardown) and
// almost always cancels out exactly.
func passSPPreservation(p Proc) bool {
	rv, ok := p.Variables().(bcfg.RegisterVariables)
	if !ok {
		return false
	}
	key := bcfg.VariableKey(fmt.Sprintf("r%d", rv.StackPointerReg))
	return checkPreservation(p, key)
}

// passPreservationAnalysis runs the same check for every other variable
// key live in the procedure (spec.md §4.G's preservation step, generalized
// beyond the stack pointer).
func passPreservationAnalysis(p Proc) bool {
	changed := false
	for _, key := range allVariableKeys(p) {
		if checkPreservation(p, key) {
			changed = true
		}
	}
	return changed
}

func allVariableKeys(p Proc) []bcfg.VariableKey {
	seen := make(map[bcfg.VariableKey]bool)
	var out []bcfg.VariableKey
	g := p.CFG()
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				for _, d := range s.Defines() {
					key, ok := p.Variables().KeyOf(d)
					if t, isTemp := d.(bexpr.Temp); isTemp {
						key, ok = bcfg.VariableKey(t.Name), true
					}
					if !ok || seen[key] {
						continue
					}
					seen[key] = true
					out = append(out, key)
				}
			}
		}
	}
	return out
}

// checkPreservation determines whether key's value is identical on entry
// and at every return, by inlining each Return's use of key back through
// its SSA definition chain and simplifying, then comparing the result to
// the procedure's implicit entry definition for key. The result is cached
// on p via SetPreserved; the return value reports whether this call
// changed the cached verdict.
func checkPreservation(p Proc, key bcfg.VariableKey) bool {
	g := p.CFG()
	defByTemp := make(map[string]bexpr.Expr)
	var entryTemp bexpr.Expr
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				for _, d := range s.Defines() {
					t, ok := d.(bexpr.Temp)
					if !ok || bcfg.VariableKey(t.Name) != key {
						continue
					}
					if _, isImplicit := s.(*bstmt.ImplicitAssign); isImplicit && entryTemp == nil {
						entryTemp = t
					}
					switch st := s.(type) {
					case *bstmt.Assign:
						defByTemp[t.String()] = st.Rhs
					case *bstmt.PhiAssign:
						defByTemp[t.String()] = t // a phi's value is only provably
						// preserved if every incoming def unfolds to the same
						// value; conservatively treat it as opaque here.
					}
				}
			}
		}
	}
	if entryTemp == nil {
		return setPreservedIfChanged(p, key, false)
	}

	preserved := true
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				ret, ok := s.(*bstmt.Return)
				if !ok {
					continue
				}
				for _, u := range ret.Returns {
					t, ok := u.(bexpr.Temp)
					if !ok || t.Name != key2name(key) {
						continue
					}
					unfolded := unfoldTemp(u, defByTemp, maxPreservationUnfold)
					if !bexpr.Equal(simplify.Simplify(unfolded), entryTemp) {
						preserved = false
					}
				}
			}
		}
	}
	return setPreservedIfChanged(p, key, preserved)
}

func key2name(key bcfg.VariableKey) string { return string(key) }

func unfoldTemp(e bexpr.Expr, defByTemp map[string]bexpr.Expr, depth int) bexpr.Expr {
	if depth <= 0 {
		return e
	}
	t, ok := e.(bexpr.Temp)
	if !ok {
		var changed bool
		children := e.Children()
		nc := make([]bexpr.Expr, len(children))
		for i, c := range children {
			nc[i] = unfoldTemp(c, defByTemp, depth-1)
			if !bexpr.Equal(nc[i], c) {
				changed = true
			}
		}
		if !changed {
			return e
		}
		return e.WithChildren(nc)
	}
	def, ok := defByTemp[t.String()]
	if !ok || bexpr.Equal(def, t) {
		return e
	}
	return unfoldTemp(def, defByTemp, depth-1)
}

func setPreservedIfChanged(p Proc, key bcfg.VariableKey, preserved bool) bool {
	old, known := p.IsPreserved(key)
	p.SetPreserved(key, preserved)
	return !known || old != preserved
}

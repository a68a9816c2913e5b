package passmgr

import (
	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// walkStmts visits every statement owned by the procedure's CFG, in block
// order, applying f to each and writing back any rewrite f returns.
// Returns whether any statement was actually rewritten.
func walkStmts(p Proc, f func(bstmt.Stmt) bstmt.Stmt) bool {
	g := p.CFG()
	changed := false
	for _, id := range g.Order() {
		block := g.Blocks[id]
		for _, r := range block.RTLs {
			for i, s := range r.Stmts {
				rewritten := f(s)
				if !bstmt.Equal(s, rewritten) {
					changed = true
				}
				r.Stmts[i] = rewritten
			}
		}
	}
	return changed
}

// passStatementInit runs every statement's Simplify once, the first
// canonicalization after materialization from the decoder (spec.md §4.G
// earlyDecompile's first step).
func passStatementInit(p Proc) bool {
	return walkStmts(p, func(s bstmt.Stmt) bstmt.Stmt { return s.Simplify() })
}

// passBBSimplify re-simplifies every statement, run after propagation has
// had a chance to substitute operands that weren't in canonical form the
// first time (spec.md §4.C: simplify is referentially transparent, so
// re-running it after a rewrite is always safe and idempotent at
// fixpoint).
func passBBSimplify(p Proc) bool {
	return walkStmts(p, func(s bstmt.Stmt) bstmt.Stmt { return s.Simplify() })
}

// passDominators recomputes the dominator tree and dominance frontier,
// caching both on the CFG for PhiPlacement and the structural analyzer to
// consult.
func passDominators(p Proc) bool {
	g := p.CFG()
	changed := g.RecomputeDominators()
	if g.RecomputeDominanceFrontier() {
		changed = true
	}
	return changed
}

// passPhiPlacement inserts phi statements at dominance-frontier joins for
// every variable in the procedure's current VariableSet (registers only
// during earlyDecompile, widened to memory locations once
// setRenameLocalsParams is called — SPEC_FULL.md §4.E).
func passPhiPlacement(p Proc) bool {
	g := p.CFG()
	return g.PlacePhis(p.Variables(), g.DF(), p.AllocStmtID)
}

// passBlockVarRename performs the stack-per-variable SSA rename over the
// dominator tree computed by Dominators.
func passBlockVarRename(p Proc) bool {
	g := p.CFG()
	before := snapshotDefs(g)
	g.RenameVariables(p.Variables(), g.Idom())
	return !defsEqual(before, snapshotDefs(g))
}

// snapshotDefs captures every statement's Defines(), keyed by statement
// id, so BlockVarRename can report whether the rename actually introduced
// new SSA names (renaming to the same temp twice in a row is the
// idempotence case spec.md §4.F requires).
func snapshotDefs(g *bcfg.CFG) map[bstmt.StmtID]string {
	out := make(map[bstmt.StmtID]string)
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				for _, d := range s.Defines() {
					out[s.ID()] += exprKey(d)
				}
			}
		}
	}
	return out
}

func defsEqual(a, b map[bstmt.StmtID]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

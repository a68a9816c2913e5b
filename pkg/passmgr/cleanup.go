package passmgr

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// passAssignRemoval deletes identity assignments (lhs == rhs), the
// residue statement propagation and constant folding routinely leave
// behind once a value has been substituted everywhere it was used
// (spec.md §4.F's AssignRemoval).
func passAssignRemoval(p Proc) bool {
	changed := false
	g := p.CFG()
	for _, id := range g.Order() {
		block := g.Blocks[id]
		for _, r := range block.RTLs {
			kept := r.Stmts[:0]
			for _, s := range r.Stmts {
				if a, ok := s.(*bstmt.Assign); ok && bexpr.Equal(a.Lhs, a.Rhs) {
					changed = true
					continue
				}
				kept = append(kept, s)
			}
			r.Stmts = kept
		}
	}
	return changed
}

// passStrengthReductionReversal rewrites x << n back into x * (1<<n) for
// display, the inverse of simplify's power-of-two-multiply-to-shift
// folding (rewrite class 7). Late in the pipeline the canonical shift form
// has already served analysis (switch-table index recognition, constant
// propagation); multiplicative form reads better as emitted C for
// induction-variable-derived addresses, mirroring the original
// decompiler's "reverse strength reduction" step.
func passStrengthReductionReversal(p Proc) bool {
	changed := false
	walkStmts(p, func(s bstmt.Stmt) bstmt.Stmt {
		rewritten := rewriteShiftToMult(s)
		if !bstmt.Equal(s, rewritten) {
			changed = true
		}
		return rewritten
	})
	return changed
}

func rewriteShiftToMult(s bstmt.Stmt) bstmt.Stmt {
	a, ok := s.(*bstmt.Assign)
	if !ok {
		return s
	}
	if a.Rhs.Op() != bexpr.OpShl {
		return s
	}
	c := a.Rhs.Children()
	shift, ok := c[1].(bexpr.IntConst)
	if !ok || shift.Value <= 0 || shift.Value >= 63 {
		return s
	}
	mult := bexpr.New(bexpr.OpMult, c[0], bexpr.IntConst{Value: int64(1) << uint(shift.Value)})
	return a.SearchAndReplace(a.Rhs, mult)
}

// passUnusedStatementRemoval deletes Assign/PhiAssign/ImplicitAssign
// statements whose defined value is never used by any other statement in
// the procedure (spec.md §4.F). Removing a dead def can free up the
// statements that fed it (their only use just disappeared), so a single
// use/remove scan does not reach a fixpoint on its own — this runs the
// scan to its own internal fixpoint, so the pass is idempotent: back to
// back calls always return false the second time (spec.md §8 invariant
// 2), and one call from lateDecompile does the work a hand-written
// worklist would otherwise need a caller-side loop for.
func passUnusedStatementRemoval(p Proc) bool {
	g := p.CFG()
	changedAny := false
	for {
		used := make(map[string]bool)
		for _, id := range g.Order() {
			for _, r := range g.Blocks[id].RTLs {
				for _, s := range r.Stmts {
					for _, u := range s.Uses() {
						used[exprKey(u)] = true
					}
				}
			}
		}

		changed := false
		for _, id := range g.Order() {
			block := g.Blocks[id]
			for _, r := range block.RTLs {
				kept := r.Stmts[:0]
				for _, s := range r.Stmts {
					if isDeadDef(s, used) {
						changed = true
						continue
					}
					kept = append(kept, s)
				}
				r.Stmts = kept
			}
		}
		if !changed {
			return changedAny
		}
		changedAny = true
	}
}

func isDeadDef(s bstmt.Stmt, used map[string]bool) bool {
	switch s.(type) {
	case *bstmt.Assign, *bstmt.PhiAssign, *bstmt.ImplicitAssign:
	default:
		return false
	}
	defs := s.Defines()
	if len(defs) == 0 {
		return false
	}
	for _, d := range defs {
		if used[exprKey(d)] {
			return false
		}
	}
	return true
}

// passUnusedLocalRemoval drops any local whose name no longer appears as
// a Temp anywhere in the procedure's statements, the locals-table
// counterpart to UnusedStatementRemoval.
func passUnusedLocalRemoval(p Proc) bool {
	g := p.CFG()
	live := make(map[string]bool)
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				for _, d := range s.Defines() {
					if t, ok := d.(bexpr.Temp); ok {
						live[t.Name] = true
					}
				}
				for _, u := range s.Uses() {
					if t, ok := u.(bexpr.Temp); ok {
						live[t.Name] = true
					}
				}
			}
		}
	}

	changed := false
	for _, name := range p.Locals() {
		if !live[name] {
			p.RemoveLocal(name)
			changed = true
		}
	}
	return changed
}

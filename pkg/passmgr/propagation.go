package passmgr

import "github.com/skyripley/boomerang/pkg/bstmt"

// passStatementPropagation substitutes each Assign's right-hand side into
// every later statement in the same block that uses its left-hand side,
// the per-block half of spec.md §4.F's StatementPropagation (cross-block
// propagation is carried by SSA use-def chains already being exact after
// BlockVarRename, so a statement's only remaining local defs to propagate
// are the ones preceding it in program order within the block).
func passStatementPropagation(p Proc) bool {
	g := p.CFG()
	changed := false
	for _, id := range g.Order() {
		block := g.Blocks[id]
		var seen []*bstmt.Assign
		for _, r := range block.RTLs {
			for i, s := range r.Stmts {
				rewritten := s
				for _, def := range seen {
					next := rewritten.PropagateTo(def)
					if !bstmt.Equal(rewritten, next) {
						changed = true
					}
					rewritten = next
				}
				rewritten = rewritten.Simplify()
				if !bstmt.Equal(s, rewritten) {
					changed = true
				}
				r.Stmts[i] = rewritten
				if a, ok := rewritten.(*bstmt.Assign); ok {
					seen = append(seen, a)
				}
			}
		}
	}
	return changed
}

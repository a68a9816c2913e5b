package passmgr

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// passCallDefineUpdate widens each resolved Call's Define list to match
// its callee's Modifieds, once CalleeReturn has been attached (spec.md
// §4.G: callee summaries propagate to call sites once the callee itself
// reaches EarlyDone).
func passCallDefineUpdate(p Proc) bool {
	changed := false
	walkStmts(p, func(s bstmt.Stmt) bstmt.Stmt {
		c, ok := s.(*bstmt.Call)
		if !ok || c.CalleeReturn == nil {
			return s
		}
		if exprSetEqual(c.Define, c.CalleeReturn.Modifieds) {
			return s
		}
		changed = true
		return c.WithDefine(c.CalleeReturn.Modifieds)
	})
	return changed
}

// passCallArgumentUpdate narrows each resolved Call's Args list to match
// its callee's discovered parameter count, once FinalParameterSearch has
// run on the callee (spec.md §4.G: "call sites are updated to match the
// callee's final signature").
func passCallArgumentUpdate(p Proc) bool {
	changed := false
	walkStmts(p, func(s bstmt.Stmt) bstmt.Stmt {
		c, ok := s.(*bstmt.Call)
		if !ok || c.CalleeReturn == nil {
			return s
		}
		want := len(c.CalleeReturn.Returns)
		if want == 0 || want >= len(c.Args) {
			return s
		}
		changed = true
		return c.WithArgs(c.Args[:want])
	})
	return changed
}

// passCallAndPhiFix drops phi incoming edges whose predecessor is no
// longer among the block's actual CFG predecessors. Call resolution (and
// the indirect-recovery restart it can trigger) may restructure edges
// after phis were placed; this resyncs them the same way CFG.RemoveEdge
// does for an explicitly removed edge.
func passCallAndPhiFix(p Proc) bool {
	changed := false
	g := p.CFG()
	for _, id := range g.Order() {
		block := g.Blocks[id]
		live := make(map[bstmt.BlockID]bool, len(block.Preds))
		for _, pr := range block.Preds {
			live[bstmt.BlockID(pr)] = true
		}
		for _, r := range block.RTLs {
			for _, s := range r.Stmts {
				phi, ok := s.(*bstmt.PhiAssign)
				if !ok {
					continue
				}
				for _, in := range append([]bstmt.PhiIncoming(nil), phi.Incoming...) {
					if !live[in.Pred] {
						phi.RemoveIncoming(in.Pred)
						changed = true
					}
				}
			}
		}
	}
	return changed
}

func exprSetEqual(a, b []bexpr.Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if exprKey(a[i]) != exprKey(b[i]) {
			return false
		}
	}
	return true
}

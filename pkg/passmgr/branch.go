package passmgr

import (
	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/simplify"
)

// passBranchAnalysis simplifies every Branch condition and, where the
// condition is a bare logical negation, strips the negation and retargets
// the branch to the block's other successor instead — the canonical form
// the structural analyzer and C emitter expect (spec.md §4.I/§4.J:
// conditions are rendered positively with the then/else arms ordered by
// the CFG, not by an extra "!").
func passBranchAnalysis(p Proc) bool {
	changed := false
	g := p.CFG()
	for _, id := range g.Order() {
		block := g.Blocks[id]
		if block.Type != bcfg.TwoWay {
			continue
		}
		for _, r := range block.RTLs {
			for i, s := range r.Stmts {
				br, ok := s.(*bstmt.Branch)
				if !ok {
					continue
				}
				next := simplifyBranch(br, block)
				if !bstmt.Equal(br, next) {
					changed = true
				}
				r.Stmts[i] = next
			}
		}
	}
	return changed
}

func simplifyBranch(br *bstmt.Branch, block *bcfg.BasicBlock) *bstmt.Branch {
	cond := simplify.Simplify(br.Cond)
	if cond.Op() != bexpr.OpLogNot {
		if bexpr.Equal(cond, br.Cond) {
			return br
		}
		return bstmt.NewBranch(br.ID(), cond, br.Taken)
	}
	inner := bexpr.ChildAt(cond, 0)
	other := otherSuccessor(block, br.Taken)
	if other < 0 {
		return bstmt.NewBranch(br.ID(), cond, br.Taken)
	}
	return bstmt.NewBranch(br.ID(), inner, bstmt.BlockID(other))
}

func otherSuccessor(block *bcfg.BasicBlock, taken bstmt.BlockID) bcfg.BBID {
	for _, s := range block.Succs {
		if s != bcfg.BBID(taken) {
			return s
		}
	}
	return -1
}

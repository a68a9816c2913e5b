package passmgr

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

func branchProc(cond bexpr.Expr, taken bcfg.BBID) (*bcfg.CFG, *fakeProc, *bcfg.BasicBlock) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.TwoWay)
	then := g.AddBlock(bcfg.Ret)
	els := g.AddBlock(bcfg.Ret)
	g.AddEdge(entry.ID, then.ID)
	g.AddEdge(entry.ID, els.ID)
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewBranch(1, cond, bstmt.BlockID(taken))))
	return g, newFakeProc(g), entry
}

func TestBranchAnalysisStripsLeadingNegation(t *testing.T) {
	// A bare flag register negation, not a comparison: simplify's own
	// canonicalizeComparison rule (¬(a<b) -> a>=b) only fires on a
	// comparison operand, so this is the shape that actually reaches
	// passBranchAnalysis still wrapped in OpLogNot.
	flag := bexpr.RegOf{Reg: 9}
	cond := bexpr.New(bexpr.OpLogNot, flag)
	_, p, entry := branchProc(cond, 2)

	if !passBranchAnalysis(p) {
		t.Fatal("expected the leading negation to be stripped")
	}
	br := entry.Stmts()[0].(*bstmt.Branch)
	if br.Cond.Op() == bexpr.OpLogNot {
		t.Error("expected the negation to be removed from the rewritten condition")
	}
	if br.Taken != bstmt.BlockID(1) {
		t.Errorf("expected the branch to retarget to the other successor (block 1), got %d", br.Taken)
	}

	if passBranchAnalysis(p) {
		t.Error("expected BranchAnalysis to be idempotent once the negation has been stripped")
	}
}

func TestBranchAnalysisLeavesPositiveConditionAlone(t *testing.T) {
	r1 := bexpr.RegOf{Reg: 1}
	cond := bexpr.New(bexpr.OpEquals, r1, bexpr.IntConst{Value: 0})
	_, p, entry := branchProc(cond, 2)

	if passBranchAnalysis(p) {
		t.Error("expected no change for an already-positive condition")
	}
	br := entry.Stmts()[0].(*bstmt.Branch)
	if br.Taken != bstmt.BlockID(2) {
		t.Errorf("expected Taken to remain block 2, got %d", br.Taken)
	}
}

package passmgr

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// straightLineCFG builds a single block: entry, with two register
// assignments and a return, used by multiple pass tests below.
func straightLineCFG() (*bcfg.CFG, *fakeProc) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	r1 := bexpr.RegOf{Reg: 1}
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewImplicitAssign(1, r1)))
	entry.AppendRTL(bstmt.NewRTL(0x1004, bstmt.NewAssign(2, nil, r1,
		bexpr.New(bexpr.OpPlus, r1, bexpr.IntConst{Value: 0}))))
	entry.AppendRTL(bstmt.NewRTL(0x1008, bstmt.NewReturn(3, nil, []bexpr.Expr{r1})))
	return g, newFakeProc(g)
}

func TestRegistryRunRecordsStats(t *testing.T) {
	g, p := straightLineCFG()
	_ = g
	r := NewRegistry()
	r.Run(StatementInit, p)
	if r.Stats().Runs(StatementInit) != 1 {
		t.Fatalf("expected 1 run recorded, got %d", r.Stats().Runs(StatementInit))
	}
}

func TestRunToFixpointStopsWhenStable(t *testing.T) {
	_, p := straightLineCFG()
	r := NewRegistry()
	iterations := r.RunToFixpoint([]ID{StatementInit}, p, 12)
	if iterations == 12 {
		t.Errorf("expected fixpoint before the iteration cap, got exactly %d", iterations)
	}

	changedAgain := r.Run(StatementInit, p)
	if changedAgain {
		t.Error("StatementInit should be idempotent: running it again after fixpoint should report no change")
	}
}

func TestEarlySequenceComposesCleanly(t *testing.T) {
	_, p := straightLineCFG()
	r := NewRegistry()
	r.RunSequence(EarlySequence, p)

	if p.CFG().Idom() == nil {
		t.Error("EarlySequence should have computed dominators")
	}
}

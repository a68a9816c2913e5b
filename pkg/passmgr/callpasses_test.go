package passmgr

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

func TestCallDefineUpdateWidensToCalleeModifieds(t *testing.T) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	r1, r2 := bexpr.RegOf{Reg: 1}, bexpr.RegOf{Reg: 2}
	call := bstmt.NewCall(1, bexpr.FuncConst{ProcID: 42}, nil, []bexpr.Expr{r1})
	call.DestProc = 42
	call.CalleeReturn = bstmt.NewReturn(0, []bexpr.Expr{r1, r2}, nil)
	entry.AppendRTL(bstmt.NewRTL(0x1000, call))
	p := newFakeProc(g)

	if !passCallDefineUpdate(p) {
		t.Fatal("expected the call's Define list to widen to match the callee's Modifieds")
	}
	updated := entry.Stmts()[0].(*bstmt.Call)
	if len(updated.Define) != 2 {
		t.Fatalf("expected 2 defines, got %d", len(updated.Define))
	}
	if updated.ID() != 1 {
		t.Errorf("expected the rewritten call to preserve its statement id, got %d", updated.ID())
	}

	if passCallDefineUpdate(p) {
		t.Error("expected CallDefineUpdate to be idempotent once Define matches Modifieds")
	}
}

func TestCallArgumentUpdateNarrowsToCalleeReturnCount(t *testing.T) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	r1, r2, r3 := bexpr.RegOf{Reg: 1}, bexpr.RegOf{Reg: 2}, bexpr.RegOf{Reg: 3}
	call := bstmt.NewCall(1, bexpr.FuncConst{ProcID: 7}, []bexpr.Expr{r1, r2, r3}, nil)
	call.DestProc = 7
	call.CalleeReturn = bstmt.NewReturn(0, nil, []bexpr.Expr{r1})
	entry.AppendRTL(bstmt.NewRTL(0x1000, call))
	p := newFakeProc(g)

	if !passCallArgumentUpdate(p) {
		t.Fatal("expected the call's Args list to narrow to the callee's final parameter count")
	}
	updated := entry.Stmts()[0].(*bstmt.Call)
	if len(updated.Args) != 1 {
		t.Fatalf("expected 1 arg remaining, got %d", len(updated.Args))
	}

	if passCallArgumentUpdate(p) {
		t.Error("expected CallArgumentUpdate to be idempotent once Args matches the callee's Returns count")
	}
}

func TestCallAndPhiFixDropsStaleIncoming(t *testing.T) {
	g := bcfg.NewCFG()
	a := g.AddBlock(bcfg.OneWay)
	b := g.AddBlock(bcfg.OneWay)
	join := g.AddBlock(bcfg.Ret)
	g.AddEdge(a.ID, join.ID)
	g.AddEdge(b.ID, join.ID)

	r1 := bexpr.RegOf{Reg: 1}
	phi := bstmt.NewPhiAssign(1, r1)
	phi.AddIncoming(bstmt.BlockID(a.ID), 10)
	phi.AddIncoming(bstmt.BlockID(b.ID), 11)
	phi.AddIncoming(bstmt.BlockID(99), 12) // stale: block 99 is not a live predecessor
	join.AppendRTL(bstmt.NewRTL(0x1000, phi))
	p := newFakeProc(g)

	if !passCallAndPhiFix(p) {
		t.Fatal("expected the stale incoming edge to be detected and removed")
	}
	rewritten := join.Stmts()[0].(*bstmt.PhiAssign)
	if len(rewritten.Incoming) != 2 {
		t.Fatalf("expected 2 incoming edges to remain, got %d", len(rewritten.Incoming))
	}
	for _, in := range rewritten.Incoming {
		if in.Pred == bstmt.BlockID(99) {
			t.Error("stale incoming edge from block 99 should have been removed")
		}
	}

	if passCallAndPhiFix(p) {
		t.Error("expected CallAndPhiFix to be idempotent once incoming edges match live predecessors")
	}
}

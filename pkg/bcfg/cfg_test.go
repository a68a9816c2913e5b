package bcfg

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// diamond builds:
//
//	entry -> a, b
//	a -> join
//	b -> join
//	join -> ret
func diamond() *CFG {
	g := NewCFG()
	entry := g.AddBlock(OneWay)
	a := g.AddBlock(OneWay)
	b := g.AddBlock(OneWay)
	join := g.AddBlock(OneWay)
	ret := g.AddBlock(Ret)

	g.AddEdge(entry.ID, a.ID)
	g.AddEdge(entry.ID, b.ID)
	g.AddEdge(a.ID, join.ID)
	g.AddEdge(b.ID, join.ID)
	g.AddEdge(join.ID, ret.ID)
	return g
}

func TestDominatorsDiamond(t *testing.T) {
	g := diamond()
	idom := g.Dominators()

	entry, aID, bID, joinID, retID := BBID(0), BBID(1), BBID(2), BBID(3), BBID(4)
	if idom[aID] != entry || idom[bID] != entry {
		t.Errorf("a, b should be idominated by entry: got %v %v", idom[aID], idom[bID])
	}
	if idom[joinID] != entry {
		t.Errorf("join should be idominated by entry (two paths in), got %v", idom[joinID])
	}
	if idom[retID] != joinID {
		t.Errorf("ret should be idominated by join, got %v", idom[retID])
	}
}

func TestDominanceFrontierDiamond(t *testing.T) {
	g := diamond()
	idom := g.Dominators()
	df := g.DominanceFrontier(idom)

	joinID := BBID(3)
	aID, bID := BBID(1), BBID(2)
	if !df[aID].Contains(joinID) {
		t.Errorf("DF(a) should contain join, got %v", df[aID])
	}
	if !df[bID].Contains(joinID) {
		t.Errorf("DF(b) should contain join, got %v", df[bID])
	}
}

func TestPostDominatorsDiamond(t *testing.T) {
	g := diamond()
	pdom := g.PostDominators()

	aID, bID, joinID, retID := BBID(1), BBID(2), BBID(3), BBID(4)
	if pdom[aID] != joinID || pdom[bID] != joinID {
		t.Errorf("a, b should be post-dominated by join, got %v %v", pdom[aID], pdom[bID])
	}
	if pdom[joinID] != retID {
		t.Errorf("join should be post-dominated by ret, got %v", pdom[joinID])
	}
}

func TestPhiPlacementAndRename(t *testing.T) {
	g := diamond()
	r1 := bexpr.RegOf{Reg: 1}

	entry, aID, bID, joinID := g.Blocks[0], g.Blocks[1], g.Blocks[2], g.Blocks[3]
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewAssign(1, nil, r1, bexpr.IntConst{Value: 0})))
	aID.AppendRTL(bstmt.NewRTL(0x1010, bstmt.NewAssign(2, nil, r1, bexpr.New(bexpr.OpPlus, r1, bexpr.IntConst{Value: 1}))))
	bID.AppendRTL(bstmt.NewRTL(0x1020, bstmt.NewAssign(3, nil, r1, bexpr.New(bexpr.OpPlus, r1, bexpr.IntConst{Value: 2}))))
	joinID.AppendRTL(bstmt.NewRTL(0x1030, bstmt.NewReturn(4, nil, []bexpr.Expr{r1})))

	idom := g.Dominators()
	df := g.DominanceFrontier(idom)

	nextID := bstmt.StmtID(100)
	alloc := func() bstmt.StmtID {
		nextID++
		return nextID
	}
	vars := RegisterVariables{}
	g.PlacePhis(vars, df, alloc)

	phiStmts := joinID.Stmts()
	if len(phiStmts) == 0 {
		t.Fatal("expected a phi statement prepended to join")
	}
	phi, ok := phiStmts[0].(*bstmt.PhiAssign)
	if !ok {
		t.Fatalf("join's first statement should be a PhiAssign, got %T", phiStmts[0])
	}

	g.RenameVariables(vars, idom)

	if len(phi.Incoming) != 2 {
		t.Fatalf("phi should have 2 incoming edges (one per predecessor), got %v", phi.Incoming)
	}

	ret := joinID.Stmts()[len(joinID.Stmts())-1].(*bstmt.Return)
	used, ok := ret.Returns[0].(bexpr.Temp)
	if !ok {
		t.Fatalf("return's operand should have been renamed to a Temp, got %T", ret.Returns[0])
	}
	lhsTemp, ok := phi.Lhs.(bexpr.Temp)
	if !ok {
		t.Fatalf("phi lhs should have been renamed to a Temp, got %T", phi.Lhs)
	}
	if used.Name != lhsTemp.Name || used.Version != lhsTemp.Version {
		t.Errorf("return's use %v does not reach the phi's definition %v", used, lhsTemp)
	}
}

func TestSplitBB(t *testing.T) {
	g := NewCFG()
	b := g.AddBlock(OneWay)
	succ := g.AddBlock(Ret)
	g.AddEdge(b.ID, succ.ID)

	b.AppendRTL(bstmt.NewRTL(0x100, bstmt.NewAssign(1, nil, bexpr.RegOf{Reg: 1}, bexpr.IntConst{Value: 1})))
	b.AppendRTL(bstmt.NewRTL(0x104, bstmt.NewAssign(2, nil, bexpr.RegOf{Reg: 2}, bexpr.IntConst{Value: 2})))

	tail := g.SplitBB(b.ID, 0x104)
	if tail == nil {
		t.Fatal("SplitBB returned nil")
	}
	if len(b.RTLs) != 1 || len(tail.RTLs) != 1 {
		t.Fatalf("expected 1 RTL on each side of the split, got %d/%d", len(b.RTLs), len(tail.RTLs))
	}
	if len(b.Succs) != 1 || b.Succs[0] != tail.ID {
		t.Errorf("original block should fall through to the new tail, got %v", b.Succs)
	}
	if len(tail.Succs) != 1 || tail.Succs[0] != succ.ID {
		t.Errorf("tail should inherit the original successor, got %v", tail.Succs)
	}
}

func TestRemoveEdgeClearsPhiIncoming(t *testing.T) {
	g := diamond()
	joinID := g.Blocks[3]
	phi := bstmt.NewPhiAssign(1, bexpr.Temp{Name: "r1"})
	phi.AddIncoming(bstmt.BlockID(1), 10)
	phi.AddIncoming(bstmt.BlockID(2), 20)
	joinID.AppendRTL(bstmt.NewRTL(0, phi))

	g.RemoveEdge(1, 3)
	if len(phi.Incoming) != 1 || phi.Incoming[0].Pred != 2 {
		t.Errorf("RemoveEdge should drop the phi's incoming entry for the removed predecessor, got %v", phi.Incoming)
	}
}

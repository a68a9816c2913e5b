package bcfg

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// loopCFG builds:
//
//	entry -> header
//	header -> body, exit   (TwoWay)
//	body -> header          (back edge)
//
// with r1 defined in entry and again in body, so header's join point
// needs a phi merging the preheader definition with the latch's.
func loopCFG() (*CFG, BBID, BBID, BBID, BBID) {
	g := NewCFG()
	entry := g.AddBlock(OneWay)
	header := g.AddBlock(TwoWay)
	body := g.AddBlock(OneWay)
	exit := g.AddBlock(Ret)

	g.AddEdge(entry.ID, header.ID)
	g.AddEdge(header.ID, body.ID)
	g.AddEdge(header.ID, exit.ID)
	g.AddEdge(body.ID, header.ID)

	r1 := bexpr.RegOf{Reg: 1}
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewAssign(1, nil, r1, bexpr.IntConst{Value: 0})))
	header.AppendRTL(bstmt.NewRTL(0x1010, bstmt.NewBranch(2,
		bexpr.New(bexpr.OpLess, r1, bexpr.IntConst{Value: 10}), bstmt.BlockID(body.ID))))
	body.AppendRTL(bstmt.NewRTL(0x1020, bstmt.NewAssign(3, nil, r1,
		bexpr.New(bexpr.OpPlus, r1, bexpr.IntConst{Value: 1}))))
	exit.AppendRTL(bstmt.NewRTL(0x1030, bstmt.NewReturn(4, nil, []bexpr.Expr{r1})))

	return g, entry.ID, header.ID, body.ID, exit.ID
}

// TestSingleReachingDefinitionAtLoopHeader verifies spec.md §4.E's core
// SSA guarantee: every use resolves to exactly one live definition. The
// loop header merges the preheader's def with the latch's redefinition
// through a single phi, and every use downstream of the phi reads that
// phi's own version, never the raw pre-SSA register.
func TestSingleReachingDefinitionAtLoopHeader(t *testing.T) {
	g, _, headerID, bodyID, exitID := loopCFG()
	header, body, exit := g.Blocks[headerID], g.Blocks[bodyID], g.Blocks[exitID]

	idom := g.Dominators()
	df := g.DominanceFrontier(idom)

	var nextID bstmt.StmtID = 100
	alloc := func() bstmt.StmtID { nextID++; return nextID }
	vars := RegisterVariables{}
	if !g.PlacePhis(vars, df, alloc) {
		t.Fatal("expected a phi to be placed at the loop header")
	}

	phiStmts := header.Stmts()
	phi, ok := phiStmts[0].(*bstmt.PhiAssign)
	if !ok {
		t.Fatalf("header's first statement should be a PhiAssign, got %T", phiStmts[0])
	}

	g.RenameVariables(vars, idom)

	if len(phi.Incoming) != 2 {
		t.Fatalf("header's phi should merge 2 incoming defs (preheader + latch), got %d", len(phi.Incoming))
	}

	phiLhs, ok := phi.Lhs.(bexpr.Temp)
	if !ok {
		t.Fatalf("phi lhs should be a renamed Temp, got %T", phi.Lhs)
	}

	branch := header.Stmts()[1].(*bstmt.Branch)
	condUse, ok := bexpr.ChildAt(branch.Cond, 0).(bexpr.Temp)
	if !ok || condUse.Name != phiLhs.Name || condUse.Version != phiLhs.Version {
		t.Errorf("branch condition should read the phi's own version, got %v want %v", condUse, phiLhs)
	}

	bodyDef := body.Stmts()[0].(*bstmt.Assign)
	bodyUse, ok := bexpr.ChildAt(bodyDef.Rhs, 0).(bexpr.Temp)
	if !ok || bodyUse.Name != phiLhs.Name || bodyUse.Version != phiLhs.Version {
		t.Errorf("body's increment should read the phi's version before redefining it, got %v", bodyUse)
	}
	bodyDefTemp, ok := bodyDef.Lhs.(bexpr.Temp)
	if !ok {
		t.Fatalf("body's def should be renamed to a Temp, got %T", bodyDef.Lhs)
	}
	if bodyDefTemp.Version == phiLhs.Version {
		t.Error("body's redefinition should carry a fresh version, distinct from the phi's")
	}

	latch := phiIncomingFor(phi, bstmt.BlockID(body.ID))
	if latch == nil {
		t.Fatal("phi should have an incoming entry from the loop body (latch)")
	}
	if *latch != bodyDef.ID() {
		t.Errorf("latch incoming should point at the body's own def id %v, got %v", bodyDef.ID(), *latch)
	}

	exitUse, ok := exit.Stmts()[0].(*bstmt.Return).Returns[0].(bexpr.Temp)
	if !ok || exitUse.Name != phiLhs.Name || exitUse.Version != phiLhs.Version {
		t.Errorf("exit's return should read the header phi's version directly, got %v", exitUse)
	}
}

func phiIncomingFor(phi *bstmt.PhiAssign, pred bstmt.BlockID) *bstmt.StmtID {
	for _, in := range phi.Incoming {
		if in.Pred == pred {
			def := in.Def
			return &def
		}
	}
	return nil
}

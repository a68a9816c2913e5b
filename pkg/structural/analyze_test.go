package structural

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bcfg"
)

// preTestedLoopCFG builds:
//
//	header (TwoWay) -> body (OneWay), follow (Ret)
//	body -> header   (back edge)
func preTestedLoopCFG() (*bcfg.CFG, bcfg.BBID, bcfg.BBID, bcfg.BBID) {
	g := bcfg.NewCFG()
	header := g.AddBlock(bcfg.TwoWay)
	body := g.AddBlock(bcfg.OneWay)
	follow := g.AddBlock(bcfg.Ret)

	g.AddEdge(header.ID, body.ID)
	g.AddEdge(header.ID, follow.ID)
	g.AddEdge(body.ID, header.ID)

	return g, header.ID, body.ID, follow.ID
}

// TestPreTestedLoopClassification checks spec.md §4.I's loop-shape
// classification and the natural loop's defining invariant: the header
// dominates the latch that closes the back edge into it.
func TestPreTestedLoopClassification(t *testing.T) {
	g, headerID, bodyID, followID := preTestedLoopCFG()
	Analyze(g)

	header := g.Blocks[headerID]
	if header.StructType != bcfg.LoopCond {
		t.Errorf("header StructType = %v, want LoopCond (a TwoWay header does double duty as loop head and conditional test)", header.StructType)
	}
	if header.LoopType != bcfg.PreTested {
		t.Errorf("header LoopType = %v, want PreTested", header.LoopType)
	}
	if header.LoopFollow != followID {
		t.Errorf("header LoopFollow = %v, want %v", header.LoopFollow, followID)
	}

	idom := g.Dominators()
	if !dominates(idom, headerID, bodyID) {
		t.Error("loop header must dominate its own latch")
	}
	if !g.Blocks[bodyID].IsLatchNode {
		t.Error("body should be marked as the loop's latch node")
	}
}

// diamondFollowCFG builds a plain if/else diamond with no loop:
//
//	cond (TwoWay) -> a, b   (both OneWay)
//	a, b -> join (Ret)
func diamondFollowCFG() (*bcfg.CFG, bcfg.BBID, bcfg.BBID, bcfg.BBID, bcfg.BBID) {
	g := bcfg.NewCFG()
	cond := g.AddBlock(bcfg.TwoWay)
	a := g.AddBlock(bcfg.OneWay)
	b := g.AddBlock(bcfg.OneWay)
	join := g.AddBlock(bcfg.Ret)

	g.AddEdge(cond.ID, a.ID)
	g.AddEdge(cond.ID, b.ID)
	g.AddEdge(a.ID, join.ID)
	g.AddEdge(b.ID, join.ID)

	return g, cond.ID, a.ID, b.ID, join.ID
}

// TestEveryReachableBlockGetsExactlyOneStructType verifies every block in
// a loop-free CFG is assigned exactly one non-default StructType: the
// conditional itself becomes Cond, and every other reachable block
// becomes Seq. No block is left NoStruct.
func TestEveryReachableBlockGetsExactlyOneStructType(t *testing.T) {
	g, condID, aID, bID, joinID := diamondFollowCFG()
	Analyze(g)

	want := map[bcfg.BBID]bcfg.StructType{
		condID:  bcfg.Cond,
		aID:     bcfg.Seq,
		bID:     bcfg.Seq,
		joinID:  bcfg.Seq,
	}
	for id, w := range want {
		if got := g.Blocks[id].StructType; got != w {
			t.Errorf("block %v StructType = %v, want %v", id, got, w)
		}
	}

	if g.Blocks[condID].CondFollow != joinID {
		t.Errorf("cond CondFollow = %v, want %v", g.Blocks[condID].CondFollow, joinID)
	}
	if g.Blocks[condID].CondType != bcfg.IfThenElse {
		t.Errorf("cond CondType = %v, want IfThenElse (neither branch is the immediate follow)", g.Blocks[condID].CondType)
	}
}

// caseCFG builds a 3-way switch: head (Nway) -> c1, c2, c3, each falling
// through to a shared follow block.
func caseCFG() (*bcfg.CFG, bcfg.BBID, bcfg.BBID) {
	g := bcfg.NewCFG()
	head := g.AddBlock(bcfg.Nway)
	c1 := g.AddBlock(bcfg.OneWay)
	c2 := g.AddBlock(bcfg.OneWay)
	c3 := g.AddBlock(bcfg.OneWay)
	follow := g.AddBlock(bcfg.Ret)

	g.AddEdge(head.ID, c1.ID)
	g.AddEdge(head.ID, c2.ID)
	g.AddEdge(head.ID, c3.ID)
	g.AddEdge(c1.ID, follow.ID)
	g.AddEdge(c2.ID, follow.ID)
	g.AddEdge(c3.ID, follow.ID)

	return g, head.ID, follow.ID
}

// TestCaseClassification checks an Nway block becomes a Case-typed Cond
// with itself as CaseHead.
func TestCaseClassification(t *testing.T) {
	g, headID, followID := caseCFG()
	Analyze(g)

	head := g.Blocks[headID]
	if head.StructType != bcfg.Cond || head.CondType != bcfg.Case {
		t.Errorf("head StructType/CondType = %v/%v, want Cond/Case", head.StructType, head.CondType)
	}
	if head.CaseHead != headID {
		t.Errorf("head CaseHead = %v, want itself (%v)", head.CaseHead, headID)
	}
	if head.CondFollow != followID {
		t.Errorf("head CondFollow = %v, want %v", head.CondFollow, followID)
	}
}

package cemit

import (
	"strings"
	"testing"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/project"
	"github.com/skyripley/boomerang/pkg/structural"
)

func newTestProc(g *bcfg.CFG) *project.UserProc {
	up := project.NewUserProc(nil, "test_proc", 0x1000)
	up.SetCFG(g)
	return up
}

// TestEmitStraightLineProcedure checks a single-block body renders its
// assignment and return with no control-flow constructs at all.
func TestEmitStraightLineProcedure(t *testing.T) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	r1 := bexpr.RegOf{Reg: 1}
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewAssign(1, nil, r1, bexpr.IntConst{Value: 41})))
	entry.AppendRTL(bstmt.NewRTL(0x1004, bstmt.NewReturn(2, nil, []bexpr.Expr{r1})))

	up := newTestProc(g)
	structural.Analyze(g)

	p := NewPrinter(up, nil)
	p.EmitBody(g)
	body := p.Body()

	if !strings.Contains(body, "r1 = 41;") {
		t.Errorf("expected assignment in body, got:\n%s", body)
	}
	if !strings.Contains(body, "return r1;") {
		t.Errorf("expected return statement in body, got:\n%s", body)
	}
}

// ifElseCFG builds a two-branch conditional whose branches are neither
// one the immediate post-dominator, forcing an if/else rendering.
func ifElseCFG() (*bcfg.CFG, bcfg.BBID, bcfg.BBID) {
	g := bcfg.NewCFG()
	cond := g.AddBlock(bcfg.TwoWay)
	thenBB := g.AddBlock(bcfg.OneWay)
	elseBB := g.AddBlock(bcfg.OneWay)
	join := g.AddBlock(bcfg.Ret)

	g.AddEdge(cond.ID, thenBB.ID)
	g.AddEdge(cond.ID, elseBB.ID)
	g.AddEdge(thenBB.ID, join.ID)
	g.AddEdge(elseBB.ID, join.ID)

	r1 := bexpr.RegOf{Reg: 1}
	cond.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewBranch(1,
		bexpr.New(bexpr.OpEquals, r1, bexpr.IntConst{Value: 0}), bstmt.BlockID(thenBB.ID))))
	thenBB.AppendRTL(bstmt.NewRTL(0x1010, bstmt.NewAssign(2, nil, r1, bexpr.IntConst{Value: 1})))
	elseBB.AppendRTL(bstmt.NewRTL(0x1020, bstmt.NewAssign(3, nil, r1, bexpr.IntConst{Value: 2})))
	join.AppendRTL(bstmt.NewRTL(0x1030, bstmt.NewReturn(4, nil, []bexpr.Expr{r1})))

	return g, thenBB.ID, elseBB.ID
}

// TestEmitIfElseConditional checks both arms of an IfThenElse render
// under their own braces, and the shared join point renders once,
// after the conditional closes.
func TestEmitIfElseConditional(t *testing.T) {
	g, _, _ := ifElseCFG()
	up := newTestProc(g)
	structural.Analyze(g)

	p := NewPrinter(up, nil)
	p.EmitBody(g)
	body := p.Body()

	if !strings.Contains(body, "if (") || !strings.Contains(body, "} else {") {
		t.Fatalf("expected an if/else construct, got:\n%s", body)
	}
	if !strings.Contains(body, "r1 = 1;") || !strings.Contains(body, "r1 = 2;") {
		t.Errorf("expected both arms' assignments present, got:\n%s", body)
	}
	if strings.Count(body, "return r1;") != 1 {
		t.Errorf("join's return should render exactly once, got:\n%s", body)
	}
}

// pretestedLoopBodyCFG builds a while-shaped loop: header tests r1 < 10,
// body increments r1 and loops back, follow returns r1.
func pretestedLoopBodyCFG() *bcfg.CFG {
	g := bcfg.NewCFG()
	header := g.AddBlock(bcfg.TwoWay)
	body := g.AddBlock(bcfg.OneWay)
	follow := g.AddBlock(bcfg.Ret)

	g.AddEdge(header.ID, body.ID)
	g.AddEdge(header.ID, follow.ID)
	g.AddEdge(body.ID, header.ID)

	r1 := bexpr.RegOf{Reg: 1}
	header.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewBranch(1,
		bexpr.New(bexpr.OpLess, r1, bexpr.IntConst{Value: 10}), bstmt.BlockID(body.ID))))
	body.AppendRTL(bstmt.NewRTL(0x1010, bstmt.NewAssign(2, nil, r1,
		bexpr.New(bexpr.OpPlus, r1, bexpr.IntConst{Value: 1}))))
	follow.AppendRTL(bstmt.NewRTL(0x1020, bstmt.NewReturn(3, nil, []bexpr.Expr{r1})))

	return g
}

// TestEmitPreTestedLoop checks a PreTested loop renders as a while
// header with the test condition, the body inside it, and the follow
// block's return after the loop closes.
func TestEmitPreTestedLoop(t *testing.T) {
	g := pretestedLoopBodyCFG()
	up := newTestProc(g)
	structural.Analyze(g)

	p := NewPrinter(up, nil)
	p.EmitBody(g)
	body := p.Body()

	if !strings.Contains(body, "while (") {
		t.Fatalf("expected a while loop, got:\n%s", body)
	}
	if !strings.Contains(body, "r1 + 1") {
		t.Errorf("expected the increment inside the loop body, got:\n%s", body)
	}
	if !strings.Contains(body, "return r1;") {
		t.Errorf("expected the follow block's return after the loop, got:\n%s", body)
	}
}

// TestPruneUnusedLabelsDropsUnreferencedTarget checks a "bb0x...:" line is
// removed unless AddGoto recorded that address as used (spec.md §4.J:
// "unused labels are pruned after emission").
func TestPruneUnusedLabelsDropsUnreferencedTarget(t *testing.T) {
	up := newTestProc(bcfg.NewCFG())
	p := NewPrinter(up, nil)

	p.AddLabel(1)
	p.w.WriteString("r1 = 0;\n")
	p.AddLabel(2)
	p.AddGoto(bstmt.BlockID(2))

	p.pruneUnusedLabels()
	body := p.Body()

	if strings.Contains(body, "bb0x1:") {
		t.Errorf("label bb0x1 should have been pruned, got:\n%s", body)
	}
	if !strings.Contains(body, "bb0x2:") {
		t.Errorf("label bb0x2 is referenced by the goto and should survive, got:\n%s", body)
	}
	if !strings.Contains(body, "goto bb0x2;") {
		t.Errorf("expected the goto statement to survive pruning, got:\n%s", body)
	}
}

package passmgr

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

func spProc(t *testing.T, withRestore bool) *fakeProc {
	t.Helper()
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	sp := bexpr.RegOf{Reg: 13}
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewImplicitAssign(1, sp)))
	entry.AppendRTL(bstmt.NewRTL(0x1004, bstmt.NewAssign(2, nil, sp,
		bexpr.New(bexpr.OpPlus, sp, bexpr.IntConst{Value: -16}))))
	if withRestore {
		entry.AppendRTL(bstmt.NewRTL(0x1008, bstmt.NewAssign(3, nil, sp,
			bexpr.New(bexpr.OpPlus, sp, bexpr.IntConst{Value: 16}))))
	}
	entry.AppendRTL(bstmt.NewRTL(0x100c, bstmt.NewReturn(4, nil, []bexpr.Expr{sp})))

	p := newFakeProc(g)
	p.vars = bcfg.RegisterVariables{StackPointerReg: 13}
	r := NewRegistry()
	r.RunSequence(EarlySequence, p)
	return p
}

func TestSPPreservationDetectsCancelingArithmetic(t *testing.T) {
	p := spProc(t, true)
	if !passSPPreservation(p) {
		t.Fatal("expected a preservation verdict to be newly recorded")
	}
	preserved, known := p.IsPreserved(bcfg.VariableKey("r13"))
	if !known || !preserved {
		t.Errorf("expected sp to be classified preserved, got preserved=%v known=%v", preserved, known)
	}
}

func TestSPPreservationDetectsNonPreserved(t *testing.T) {
	p := spProc(t, false)
	passSPPreservation(p)
	preserved, known := p.IsPreserved(bcfg.VariableKey("r13"))
	if !known || preserved {
		t.Errorf("expected sp to be classified not preserved, got preserved=%v known=%v", preserved, known)
	}
}

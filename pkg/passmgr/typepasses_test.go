package passmgr

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/btypes"
)

func TestLocalTypeAnalysisRecordsAssignedType(t *testing.T) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	local := bexpr.Temp{Name: "v1"}
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewAssign(1,
		btypes.Integer{Bits: 32, Sign: btypes.Signed}, local, bexpr.IntConst{Value: 1})))
	p := newFakeProc(g)

	if !passLocalTypeAnalysis(p) {
		t.Fatal("expected the local's type to be recorded the first time")
	}
	typ, ok := p.LocalType("v1")
	if !ok || typ.String() != "int32" {
		t.Fatalf("expected v1 to be int32, got %v (known=%v)", typ, ok)
	}

	if passLocalTypeAnalysis(p) {
		t.Error("expected LocalTypeAnalysis to be idempotent once the type has converged")
	}
}

func TestLocalTypeAnalysisMeetsAcrossMultipleAssigns(t *testing.T) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	local := bexpr.Temp{Name: "v1"}
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewAssign(1,
		btypes.Integer{Bits: 32, Sign: btypes.Unknown}, local, bexpr.IntConst{Value: 1})))
	entry.AppendRTL(bstmt.NewRTL(0x1004, bstmt.NewAssign(2,
		btypes.Integer{Bits: 32, Sign: btypes.Signed}, local, bexpr.IntConst{Value: 2})))
	p := newFakeProc(g)

	r := NewRegistry()
	r.RunToFixpoint([]ID{LocalTypeAnalysis}, p, 4)

	typ, ok := p.LocalType("v1")
	if !ok {
		t.Fatal("expected v1 to have a recorded type")
	}
	if typ.String() != "int32" {
		t.Errorf("expected the meet of unknown-sign and signed int32 to settle on signed int32, got %v", typ)
	}
}

package passmgr

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

func TestFinalParameterSearchDropsUnusedImplicit(t *testing.T) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	r1, r2 := bexpr.RegOf{Reg: 1}, bexpr.RegOf{Reg: 2}
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewImplicitAssign(1, r1)))
	entry.AppendRTL(bstmt.NewRTL(0x1004, bstmt.NewImplicitAssign(2, r2)))
	entry.AppendRTL(bstmt.NewRTL(0x1008, bstmt.NewReturn(3, nil, []bexpr.Expr{r1})))
	p := newFakeProc(g)

	if !passFinalParameterSearch(p) {
		t.Fatal("expected the parameter list to be populated the first time")
	}
	if len(p.Params()) != 1 {
		t.Fatalf("expected only r1 to survive as a parameter, got %d", len(p.Params()))
	}

	if passFinalParameterSearch(p) {
		t.Error("expected FinalParameterSearch to be idempotent once Params matches the used implicit set")
	}
}

func TestDuplicateArgsRemovalDedupes(t *testing.T) {
	g := bcfg.NewCFG()
	p := newFakeProc(g)
	r1 := bexpr.RegOf{Reg: 1}
	p.SetParams([]bexpr.Expr{r1, r1, bexpr.RegOf{Reg: 2}})

	if !passDuplicateArgsRemoval(p) {
		t.Fatal("expected the duplicate parameter to be removed")
	}
	if len(p.Params()) != 2 {
		t.Fatalf("expected 2 parameters after dedup, got %d", len(p.Params()))
	}

	if passDuplicateArgsRemoval(p) {
		t.Error("expected DuplicateArgsRemoval to be idempotent once params are unique")
	}
}

func TestParameterSymbolMapGatedByNameParameters(t *testing.T) {
	g := bcfg.NewCFG()
	p := newFakeProc(g)
	r1 := bexpr.RegOf{Reg: 1}
	p.SetParams([]bexpr.Expr{r1})

	if passParameterSymbolMap(p) {
		t.Fatal("expected no symbol assignment when NameParameters is false")
	}

	p.nameParams = true
	if !passParameterSymbolMap(p) {
		t.Fatal("expected param1 to be assigned once NameParameters is true")
	}
	name, ok := p.SymbolFor(r1)
	if !ok || name != "param1" {
		t.Errorf("expected r1 to be named param1, got %q (known=%v)", name, ok)
	}

	if passParameterSymbolMap(p) {
		t.Error("expected ParameterSymbolMap to be idempotent once names are assigned")
	}
}

func TestLocalAndParamMapSkipsParameters(t *testing.T) {
	g := bcfg.NewCFG()
	entry := g.AddBlock(bcfg.Ret)
	r1, r2 := bexpr.RegOf{Reg: 1}, bexpr.RegOf{Reg: 2}
	entry.AppendRTL(bstmt.NewRTL(0x1000, bstmt.NewAssign(1, nil, r1, bexpr.IntConst{Value: 1})))
	entry.AppendRTL(bstmt.NewRTL(0x1004, bstmt.NewAssign(2, nil, r2, bexpr.IntConst{Value: 2})))
	p := newFakeProc(g)
	p.SetParams([]bexpr.Expr{r1})

	if !passLocalAndParamMap(p) {
		t.Fatal("expected r2 to be assigned a local name")
	}
	if _, ok := p.SymbolFor(r1); ok {
		t.Error("expected r1 to be left unnamed since it is already a parameter")
	}
	name, ok := p.SymbolFor(r2)
	if !ok || name != "local1" {
		t.Errorf("expected r2 to be named local1, got %q (known=%v)", name, ok)
	}

	if passLocalAndParamMap(p) {
		t.Error("expected LocalAndParamMap to be idempotent once every non-parameter def is named")
	}
}

package passmgr

import (
	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/btypes"
)

// fakeProc is a minimal Proc implementation for pass-level unit tests,
// standing in for the not-yet-built project.UserProc.
type fakeProc struct {
	cfg            *bcfg.CFG
	vars           bcfg.VariableSet
	nextID         bstmt.StmtID
	nameParams     bool
	globals        map[uint64]bexpr.Expr
	preserved      map[bcfg.VariableKey]bool
	localTypes     map[string]btypes.Type
	params         []bexpr.Expr
	symbolsByExpr  map[string]string
	locals         []string
}

func newFakeProc(cfg *bcfg.CFG) *fakeProc {
	return &fakeProc{
		cfg:           cfg,
		vars:          bcfg.RegisterVariables{},
		nextID:        1000,
		globals:       make(map[uint64]bexpr.Expr),
		preserved:     make(map[bcfg.VariableKey]bool),
		localTypes:    make(map[string]btypes.Type),
		symbolsByExpr: make(map[string]string),
	}
}

func (f *fakeProc) CFG() *bcfg.CFG                   { return f.cfg }
func (f *fakeProc) Variables() bcfg.VariableSet      { return f.vars }
func (f *fakeProc) SetVariables(v bcfg.VariableSet)  { f.vars = v }
func (f *fakeProc) AllocStmtID() bstmt.StmtID        { f.nextID++; return f.nextID }
func (f *fakeProc) NameParameters() bool             { return f.nameParams }

func (f *fakeProc) ResolveGlobal(addr uint64) (bexpr.Expr, bool) {
	e, ok := f.globals[addr]
	return e, ok
}

func (f *fakeProc) IsPreserved(key bcfg.VariableKey) (bool, bool) {
	v, ok := f.preserved[key]
	return v, ok
}
func (f *fakeProc) SetPreserved(key bcfg.VariableKey, preserved bool) {
	f.preserved[key] = preserved
}

func (f *fakeProc) LocalType(name string) (btypes.Type, bool) {
	t, ok := f.localTypes[name]
	return t, ok
}
func (f *fakeProc) SetLocalType(name string, t btypes.Type) { f.localTypes[name] = t }

func (f *fakeProc) Params() []bexpr.Expr      { return f.params }
func (f *fakeProc) SetParams(p []bexpr.Expr) { f.params = p }

func (f *fakeProc) SymbolFor(e bexpr.Expr) (string, bool) {
	name, ok := f.symbolsByExpr[exprKey(e)]
	return name, ok
}
func (f *fakeProc) SetSymbol(e bexpr.Expr, name string) {
	f.symbolsByExpr[exprKey(e)] = name
}

func (f *fakeProc) Locals() []string { return f.locals }
func (f *fakeProc) RemoveLocal(name string) {
	out := f.locals[:0]
	for _, n := range f.locals {
		if n != name {
			out = append(out, n)
		}
	}
	f.locals = out
}

package project

import (
	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/btypes"
)

// Procedure is either a LibProc (opaque, signature only) or a UserProc
// (decoded), per spec.md §3.
type Procedure interface {
	implProcedure()
	ProcName() string
	Entry() uint64
}

// LibProc is an external procedure known only by name and signature; its
// body is never decoded, and calls to it are typed from its Signature
// alone (spec.md §7 "missing callee/signature" is the case where even
// the signature is unknown, modeled as a Signature with NumParams 0 and
// HasReturn inferred from use).
type LibProc struct {
	Name       string
	Addr       uint64
	NumParams  int
	HasReturn  bool
}

func (*LibProc) implProcedure()     {}
func (p *LibProc) ProcName() string { return p.Name }
func (p *LibProc) Entry() uint64    { return p.Addr }

// UserProc is a decoded procedure: it owns its CFG, parameter/return
// lists, locals table, symbol map, signature, status, and recursion-group
// handle (spec.md §3). UserProc implements passmgr.Proc directly so the
// pass registry can operate on it without importing this package.
type UserProc struct {
	Name string
	Addr uint64

	cfg    *bcfg.CFG
	vars   bcfg.VariableSet
	nextID bstmt.StmtID

	params  []bexpr.Expr
	returns []bexpr.Expr
	locals  map[string]btypes.Type
	localOrder []string
	symbols *SymbolMap

	Status         Status
	RecursionGroup *RecursionGroup

	preserved map[bcfg.VariableKey]bool

	module *Module

	retStmt *bstmt.Return

	// SignaturePromoted records whether promoteSignature ran for this
	// procedure during middleDecompile (spec.md §9 usePromotion). The
	// parameter list is not widened, and no pass reads this flag.
	SignaturePromoted bool
}

// SetCFG replaces the procedure's CFG wholesale, used by decode/redecode
// and by the indirect-recovery restart protocol.
func (p *UserProc) SetCFG(g *bcfg.CFG) { p.cfg = g }

// NewUserProc constructs an undecoded UserProc owned by mod, with an
// empty CFG ready for the decoder to populate.
func NewUserProc(mod *Module, name string, addr uint64) *UserProc {
	return &UserProc{
		Name:      name,
		Addr:      addr,
		cfg:       bcfg.NewCFG(),
		vars:      bcfg.RegisterVariables{},
		nextID:    1,
		locals:    make(map[string]btypes.Type),
		symbols:   NewSymbolMap(),
		Status:    Undecoded,
		preserved: make(map[bcfg.VariableKey]bool),
		module:    mod,
	}
}

func (*UserProc) implProcedure()     {}
func (p *UserProc) ProcName() string { return p.Name }
func (p *UserProc) Entry() uint64    { return p.Addr }

// --- passmgr.Proc ---

func (p *UserProc) CFG() *bcfg.CFG              { return p.cfg }
func (p *UserProc) Variables() bcfg.VariableSet { return p.vars }
func (p *UserProc) SetVariables(v bcfg.VariableSet) { p.vars = v }

func (p *UserProc) AllocStmtID() bstmt.StmtID {
	id := p.nextID
	p.nextID++
	return id
}

func (p *UserProc) NameParameters() bool {
	return p.module != nil && p.module.program != nil && p.module.program.Settings.NameParameters
}

func (p *UserProc) ResolveGlobal(addr uint64) (bexpr.Expr, bool) {
	if p.module == nil || p.module.program == nil {
		return nil, false
	}
	return p.module.program.ResolveGlobal(addr)
}

func (p *UserProc) IsPreserved(key bcfg.VariableKey) (bool, bool) {
	v, ok := p.preserved[key]
	return v, ok
}

func (p *UserProc) SetPreserved(key bcfg.VariableKey, preserved bool) {
	p.preserved[key] = preserved
}

func (p *UserProc) LocalType(name string) (btypes.Type, bool) {
	t, ok := p.locals[name]
	return t, ok
}

func (p *UserProc) SetLocalType(name string, t btypes.Type) {
	if _, exists := p.locals[name]; !exists {
		p.localOrder = append(p.localOrder, name)
	}
	p.locals[name] = t
}

func (p *UserProc) Locals() []string {
	out := make([]string, len(p.localOrder))
	copy(out, p.localOrder)
	return out
}

func (p *UserProc) RemoveLocal(name string) {
	delete(p.locals, name)
	out := p.localOrder[:0]
	for _, n := range p.localOrder {
		if n != name {
			out = append(out, n)
		}
	}
	p.localOrder = out
}

func (p *UserProc) Params() []bexpr.Expr     { return p.params }
func (p *UserProc) SetParams(ps []bexpr.Expr) { p.params = ps }

// Returns lists the expressions the procedure hands back on every return
// path once preservation/final-parameter search have converged; it
// narrows from the Return statements' own Modifieds set the way
// spec.md §3 describes.
func (p *UserProc) Returns() []bexpr.Expr      { return p.returns }
func (p *UserProc) SetReturns(rs []bexpr.Expr) { p.returns = rs }

func (p *UserProc) SymbolFor(e bexpr.Expr) (string, bool) { return p.symbols.Lookup(e) }
func (p *UserProc) SetSymbol(e bexpr.Expr, name string)   { p.symbols.Bind(e, name) }

// RetStmt returns the procedure's single Return statement, the value
// callers substitute as call.calleeReturn once this procedure reaches
// Final (spec.md §4.G).
func (p *UserProc) RetStmt() *bstmt.Return { return p.retStmt }

// SetRetStmt records the procedure's Return statement, found by the
// driver by scanning every Ret-type block once decoding completes.
func (p *UserProc) SetRetStmt(r *bstmt.Return) { p.retStmt = r }

// FindRetStmt scans the CFG for the first Return statement and records
// it via SetRetStmt, called once per decode/redecode.
func (p *UserProc) FindRetStmt() {
	for _, id := range p.cfg.Order() {
		for _, r := range p.cfg.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				if ret, ok := s.(*bstmt.Return); ok {
					p.retStmt = ret
					return
				}
			}
		}
	}
}

// Module returns the owning Module.
func (p *UserProc) Module() *Module { return p.module }

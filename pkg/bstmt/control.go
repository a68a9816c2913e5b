package bstmt

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/simplify"
)

// Branch is a two-way conditional transfer: cond evaluated true transfers
// to taken, false falls through to the block's other CFG successor (the
// fall-through edge is owned by the CFG, not by the statement).
type Branch struct {
	id    StmtID
	Cond  bexpr.Expr
	Taken BlockID
}

// NewBranch constructs a Branch.
func NewBranch(id StmtID, cond bexpr.Expr, taken BlockID) *Branch {
	return &Branch{id: id, Cond: cond, Taken: taken}
}

func (*Branch) implStmt()    {}
func (b *Branch) ID() StmtID { return b.id }
func (b *Branch) Uses() []bexpr.Expr   { return usesIn(b.Cond) }
func (b *Branch) Defines() []bexpr.Expr { return nil }
func (b *Branch) PropagateTo(def Stmt) Stmt {
	a, ok := def.(*Assign)
	if !ok {
		return b
	}
	return &Branch{id: b.id, Cond: bexpr.SearchAndReplace(b.Cond, a.Lhs, a.Rhs), Taken: b.Taken}
}
func (b *Branch) SearchAndReplace(from, to bexpr.Expr) Stmt {
	return &Branch{id: b.id, Cond: bexpr.SearchAndReplace(b.Cond, from, to), Taken: b.Taken}
}
func (b *Branch) Simplify() Stmt {
	return &Branch{id: b.id, Cond: simplify.Simplify(b.Cond), Taken: b.Taken}
}
func (b *Branch) GenerateCode(e Emitter, bb BlockID) {
	e.AddGoto(b.Taken)
}

// Goto is an unconditional transfer, typically introduced by the
// structural analyzer when a block's single successor cannot be rendered
// as fall-through (a loop continuation, an out-of-structure jump).
type Goto struct {
	id   StmtID
	Dest BlockID
}

// NewGoto constructs a Goto.
func NewGoto(id StmtID, dest BlockID) *Goto {
	return &Goto{id: id, Dest: dest}
}

func (*Goto) implStmt()    {}
func (g *Goto) ID() StmtID { return g.id }
func (g *Goto) Uses() []bexpr.Expr          { return nil }
func (g *Goto) Defines() []bexpr.Expr       { return nil }
func (g *Goto) PropagateTo(def Stmt) Stmt   { return g }
func (g *Goto) SearchAndReplace(from, to bexpr.Expr) Stmt { return g }
func (g *Goto) Simplify() Stmt              { return g }
func (g *Goto) GenerateCode(e Emitter, bb BlockID) {
	e.AddGoto(g.Dest)
}

package bstmt

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/btypes"
	"github.com/skyripley/boomerang/pkg/simplify"
)

// Assign is a typed assignment lhs := rhs (spec.md §3).
type Assign struct {
	id   StmtID
	Type btypes.Type
	Lhs  bexpr.Expr
	Rhs  bexpr.Expr
}

// NewAssign constructs an Assign with the given id.
func NewAssign(id StmtID, typ btypes.Type, lhs, rhs bexpr.Expr) *Assign {
	return &Assign{id: id, Type: typ, Lhs: lhs, Rhs: rhs}
}

func (*Assign) implStmt()    {}
func (a *Assign) ID() StmtID { return a.id }

func (a *Assign) Uses() []bexpr.Expr {
	u := usesIn(a.Rhs)
	if a.Lhs.Op() == bexpr.OpMemOf {
		u = append(u, usesIn(bexpr.ChildAt(a.Lhs, 0))...)
	}
	return u
}

func (a *Assign) Defines() []bexpr.Expr {
	return []bexpr.Expr{a.Lhs}
}

func (a *Assign) PropagateTo(def Stmt) Stmt {
	src, ok := def.(*Assign)
	if !ok {
		return a
	}
	return &Assign{id: a.id, Type: a.Type, Lhs: a.Lhs, Rhs: bexpr.SearchAndReplace(a.Rhs, src.Lhs, src.Rhs)}
}

func (a *Assign) SearchAndReplace(from, to bexpr.Expr) Stmt {
	return &Assign{
		id:   a.id,
		Type: a.Type,
		Lhs:  bexpr.SearchAndReplace(a.Lhs, from, to),
		Rhs:  bexpr.SearchAndReplace(a.Rhs, from, to),
	}
}

func (a *Assign) Simplify() Stmt {
	return &Assign{id: a.id, Type: a.Type, Lhs: simplify.Simplify(a.Lhs), Rhs: simplify.Simplify(a.Rhs)}
}

func (a *Assign) GenerateCode(e Emitter, bb BlockID) {
	e.AddAssignmentStatement(a.Lhs, a.Rhs)
}

// PhiIncoming maps a predecessor block to the definition id live on that
// edge. Phi statements are maintained as one incoming entry per
// predecessor; removing a predecessor from the CFG removes its entry
// here (spec.md §4.D).
type PhiIncoming struct {
	Pred BlockID
	Def  StmtID
}

// PhiAssign merges one value per predecessor edge into a single SSA
// definition at a control-flow join.
type PhiAssign struct {
	id       StmtID
	Lhs      bexpr.Expr
	Incoming []PhiIncoming
}

// NewPhiAssign constructs a PhiAssign with no incoming edges yet; edges
// are added as predecessors are discovered during phi placement.
func NewPhiAssign(id StmtID, lhs bexpr.Expr) *PhiAssign {
	return &PhiAssign{id: id, Lhs: lhs}
}

func (*PhiAssign) implStmt()    {}
func (p *PhiAssign) ID() StmtID { return p.id }

func (p *PhiAssign) Uses() []bexpr.Expr {
	return nil
}

func (p *PhiAssign) Defines() []bexpr.Expr {
	return []bexpr.Expr{p.Lhs}
}

func (p *PhiAssign) PropagateTo(def Stmt) Stmt {
	return p
}

func (p *PhiAssign) SearchAndReplace(from, to bexpr.Expr) Stmt {
	return &PhiAssign{id: p.id, Lhs: bexpr.SearchAndReplace(p.Lhs, from, to), Incoming: p.Incoming}
}

func (p *PhiAssign) Simplify() Stmt { return p }

func (p *PhiAssign) GenerateCode(e Emitter, bb BlockID) {}

// AddIncoming appends or replaces the incoming entry for pred.
func (p *PhiAssign) AddIncoming(pred BlockID, def StmtID) {
	for i, in := range p.Incoming {
		if in.Pred == pred {
			p.Incoming[i].Def = def
			return
		}
	}
	p.Incoming = append(p.Incoming, PhiIncoming{Pred: pred, Def: def})
}

// RemoveIncoming drops the incoming entry for pred, maintaining the
// invariant that a phi's incoming set mirrors its block's predecessor set.
func (p *PhiAssign) RemoveIncoming(pred BlockID) {
	out := p.Incoming[:0]
	for _, in := range p.Incoming {
		if in.Pred != pred {
			out = append(out, in)
		}
	}
	p.Incoming = out
}

// ImplicitAssign marks a value as live-in to a procedure without an
// explicit defining statement (a parameter or a preserved register),
// giving SSA rename something to reference at the entry block.
type ImplicitAssign struct {
	id  StmtID
	Lhs bexpr.Expr
}

// NewImplicitAssign constructs an ImplicitAssign.
func NewImplicitAssign(id StmtID, lhs bexpr.Expr) *ImplicitAssign {
	return &ImplicitAssign{id: id, Lhs: lhs}
}

func (*ImplicitAssign) implStmt()    {}
func (i *ImplicitAssign) ID() StmtID { return i.id }
func (i *ImplicitAssign) Uses() []bexpr.Expr   { return nil }
func (i *ImplicitAssign) Defines() []bexpr.Expr { return []bexpr.Expr{i.Lhs} }
func (i *ImplicitAssign) PropagateTo(def Stmt) Stmt { return i }
func (i *ImplicitAssign) SearchAndReplace(from, to bexpr.Expr) Stmt {
	return &ImplicitAssign{id: i.id, Lhs: bexpr.SearchAndReplace(i.Lhs, from, to)}
}
func (i *ImplicitAssign) Simplify() Stmt                   { return i }
func (i *ImplicitAssign) GenerateCode(e Emitter, bb BlockID) {}

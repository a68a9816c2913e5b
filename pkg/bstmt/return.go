package bstmt

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/simplify"
)

// Return transfers control back to the caller. Modifieds lists every
// location the procedure may have written (used by callers before the
// callee's actual return value set is known); Returns lists the
// expressions actually returned, narrowed from Modifieds once
// preservation analysis and the final parameter/return search settle.
type Return struct {
	id        StmtID
	Modifieds []bexpr.Expr
	Returns   []bexpr.Expr
}

// NewReturn constructs a Return.
func NewReturn(id StmtID, modifieds, returns []bexpr.Expr) *Return {
	return &Return{id: id, Modifieds: modifieds, Returns: returns}
}

func (*Return) implStmt()    {}
func (r *Return) ID() StmtID { return r.id }

func (r *Return) Uses() []bexpr.Expr {
	return usesInAll(r.Returns...)
}

func (r *Return) Defines() []bexpr.Expr { return nil }

func (r *Return) PropagateTo(def Stmt) Stmt {
	a, ok := def.(*Assign)
	if !ok {
		return r
	}
	return &Return{id: r.id, Modifieds: r.Modifieds, Returns: replaceAll(r.Returns, a.Lhs, a.Rhs)}
}

func (r *Return) SearchAndReplace(from, to bexpr.Expr) Stmt {
	return &Return{
		id:        r.id,
		Modifieds: replaceAll(r.Modifieds, from, to),
		Returns:   replaceAll(r.Returns, from, to),
	}
}

func (r *Return) Simplify() Stmt {
	rets := make([]bexpr.Expr, len(r.Returns))
	for i, e := range r.Returns {
		rets[i] = simplify.Simplify(e)
	}
	return &Return{id: r.id, Modifieds: r.Modifieds, Returns: rets}
}

func (r *Return) GenerateCode(e Emitter, bb BlockID) {
	e.AddReturnStatement(r.Returns)
}

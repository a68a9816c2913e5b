package bstmt

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/simplify"
)

// Call transfers control to a callee and collects its effects on the
// caller's state. Dest is the call target expression (a FuncConst for a
// direct call, anything else for an indirect one); DestProc is the
// resolved procedure id once the callee has been identified (0 if
// unresolved); CalleeReturn mirrors the callee's own Return statement so
// CallAndPhiFix (spec.md §4.F) can copy modifieds/returns forward without
// re-deriving them.
type Call struct {
	id           StmtID
	Dest         bexpr.Expr
	DestProc     int64
	Args         []bexpr.Expr
	Define       []bexpr.Expr
	CalleeReturn *Return
}

// NewCall constructs a Call.
func NewCall(id StmtID, dest bexpr.Expr, args, define []bexpr.Expr) *Call {
	return &Call{id: id, Dest: dest, Args: args, Define: define}
}

func (*Call) implStmt()    {}
func (c *Call) ID() StmtID { return c.id }

func (c *Call) Uses() []bexpr.Expr {
	u := usesIn(c.Dest)
	u = append(u, usesInAll(c.Args...)...)
	return u
}

func (c *Call) Defines() []bexpr.Expr {
	return c.Define
}

func (c *Call) PropagateTo(def Stmt) Stmt {
	a, ok := def.(*Assign)
	if !ok {
		return c
	}
	return &Call{
		id:           c.id,
		Dest:         bexpr.SearchAndReplace(c.Dest, a.Lhs, a.Rhs),
		DestProc:     c.DestProc,
		Args:         replaceAll(c.Args, a.Lhs, a.Rhs),
		Define:       c.Define,
		CalleeReturn: c.CalleeReturn,
	}
}

func (c *Call) SearchAndReplace(from, to bexpr.Expr) Stmt {
	return &Call{
		id:           c.id,
		Dest:         bexpr.SearchAndReplace(c.Dest, from, to),
		DestProc:     c.DestProc,
		Args:         replaceAll(c.Args, from, to),
		Define:       replaceAll(c.Define, from, to),
		CalleeReturn: c.CalleeReturn,
	}
}

func (c *Call) Simplify() Stmt {
	args := make([]bexpr.Expr, len(c.Args))
	for i, a := range c.Args {
		args[i] = simplify.Simplify(a)
	}
	return &Call{
		id:           c.id,
		Dest:         simplify.Simplify(c.Dest),
		DestProc:     c.DestProc,
		Args:         args,
		Define:       c.Define,
		CalleeReturn: c.CalleeReturn,
	}
}

// WithDefine returns a copy of c with its Define list replaced, used by
// CallDefineUpdate to widen a call site to match its callee's discovered
// Modifieds set.
func (c *Call) WithDefine(define []bexpr.Expr) *Call {
	return &Call{id: c.id, Dest: c.Dest, DestProc: c.DestProc, Args: c.Args, Define: define, CalleeReturn: c.CalleeReturn}
}

// WithArgs returns a copy of c with its Args list replaced, used by
// CallArgumentUpdate to narrow a call site to match its callee's final
// parameter count.
func (c *Call) WithArgs(args []bexpr.Expr) *Call {
	return &Call{id: c.id, Dest: c.Dest, DestProc: c.DestProc, Args: args, Define: c.Define, CalleeReturn: c.CalleeReturn}
}

// IsResolved reports whether the call's target procedure has been
// identified (a direct call, or an indirect call successfully matched
// during recovery).
func (c *Call) IsResolved() bool {
	return c.DestProc != 0
}

func (c *Call) GenerateCode(e Emitter, bb BlockID) {
	if c.IsResolved() {
		e.AddCallStatement(c.DestProc, c.Args, c.Define)
		return
	}
	e.AddIndCallStatement(c.Dest, c.Args, c.Define)
}

// Package bstmt defines the statement intermediate representation: the
// Assign/PhiAssign/ImplicitAssign/Branch/Goto/Call/Return/Case variants
// that make up a basic block's contents, grouped into per-address RTLs.
//
// The tagged-interface shape is grounded on the teacher's pkg/rtl.Instruction
// (marker method plus a Successors() query) and pkg/cminor.Stmt (the
// Sassign/Scall/Sifthenelse/Sswitch/Sreturn variant family); here the
// variants carry spec-level fields (bexpr.Expr operands, phi incoming
// edges, call argument/define lists) instead of the teacher's physical
// register/addressing-mode fields.
package bstmt

import "github.com/skyripley/boomerang/pkg/bexpr"

// StmtID is a monotonically-assigned, procedure-unique statement
// identifier.
type StmtID int64

// BlockID references a basic block without creating an import cycle with
// pkg/bcfg, which embeds Stmt values in its own BasicBlock type.
type BlockID int

// Stmt is the interface implemented by every statement variant.
type Stmt interface {
	implStmt()
	// ID returns the statement's unique, monotonically-assigned identifier.
	ID() StmtID
	// Uses returns the set of expressions this statement reads.
	Uses() []bexpr.Expr
	// Defines returns the set of expressions this statement assigns to.
	Defines() []bexpr.Expr
	// PropagateTo returns a copy of this statement with def's right-hand
	// side inlined wherever this statement uses def's left-hand side.
	PropagateTo(def Stmt) Stmt
	// SearchAndReplace returns a copy of this statement with every
	// occurrence of from (in any operand expression) replaced by to.
	SearchAndReplace(from, to bexpr.Expr) Stmt
	// Simplify returns a copy of this statement with its operand
	// expressions run through the canonical simplifier.
	Simplify() Stmt
	// GenerateCode emits this statement's effect via e, in the context of
	// the basic block bb (used for goto/branch label resolution).
	GenerateCode(e Emitter, bb BlockID)
}

// Emitter is the subset of the C emitter's callback surface that
// individual statements call back into during code generation. The full
// callback surface (addIfCondHeader, addPretestedLoopHeader, ...) belongs
// to the structural analyzer's block-shape traversal, not to individual
// statements; pkg/cemit's Printer implements this interface as a subset
// of a larger one.
type Emitter interface {
	AddAssignmentStatement(lhs, rhs bexpr.Expr)
	// AddCallStatement emits a direct call to the procedure identified by
	// procID; the emitter resolves the display name via the program's
	// symbol table.
	AddCallStatement(procID int64, args, defines []bexpr.Expr)
	AddIndCallStatement(dest bexpr.Expr, args, defines []bexpr.Expr)
	AddReturnStatement(returns []bexpr.Expr)
	AddGoto(target BlockID)
	AddLineComment(text string)
}

// usesIn collects the leaf uses referenced by e: registers, SSA
// temporaries, and memory-of expressions (a memory reference is itself a
// use, in addition to whatever registers compute its address).
func usesIn(e bexpr.Expr) []bexpr.Expr {
	var out []bexpr.Expr
	var walk func(bexpr.Expr)
	walk = func(x bexpr.Expr) {
		if x == nil {
			return
		}
		switch x.Op() {
		case bexpr.OpRegOf, bexpr.OpTemp:
			out = append(out, x)
			return
		case bexpr.OpMemOf:
			out = append(out, x)
		}
		for _, c := range x.Children() {
			walk(c)
		}
	}
	walk(e)
	return out
}

func usesInAll(exprs ...bexpr.Expr) []bexpr.Expr {
	var out []bexpr.Expr
	for _, e := range exprs {
		out = append(out, usesIn(e)...)
	}
	return out
}

func replaceAll(exprs []bexpr.Expr, from, to bexpr.Expr) []bexpr.Expr {
	out := make([]bexpr.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = bexpr.SearchAndReplace(e, from, to)
	}
	return out
}

// Package simplify implements the canonical expression simplifier
// (spec.md §4.C): constant folding, identity/absorber elimination,
// associativity normalization, address arithmetic collapse, bitfield
// collapse, comparison canonicalization, power-of-two shift folding, and
// cast collapse, applied in that priority order to fixpoint.
//
// The recursive bottom-up/rule-dispatch shape is grounded on the
// teacher's pkg/simplexpr.Transformer, which recursively rewrites a Cabs
// expression tree via a switch on node kind with small per-case helpers;
// here the switch dispatches on bexpr.Operator instead of a Go node type
// because bexpr uses one tagged Node type for most operators.
package simplify

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
)

// Simplify returns an equivalent expression in canonical form, with
// constant folding fully applied and commutative operands canonically
// ordered (constants right, lexicographically-smaller operand left for
// ties). It is idempotent at fixpoint: Simplify(Simplify(e)) == Simplify(e)
// (spec.md §8 invariant 1).
func Simplify(e bexpr.Expr) bexpr.Expr {
	for {
		next := simplifyOnce(e)
		if bexpr.Equal(next, e) {
			return next
		}
		e = next
	}
}

// simplifyOnce simplifies children first (bottom-up), then applies the
// rewrite classes at this node, in priority order, once.
func simplifyOnce(e bexpr.Expr) bexpr.Expr {
	if e == nil {
		return nil
	}
	children := e.Children()
	if len(children) > 0 {
		nc := make([]bexpr.Expr, len(children))
		changed := false
		for i, c := range children {
			nc[i] = simplifyOnce(c)
			if !bexpr.Equal(nc[i], c) {
				changed = true
			}
		}
		if changed {
			e = e.WithChildren(nc)
		}
	}
	return applyRules(e)
}

// applyRules runs the priority-ordered rewrite classes at a single node,
// returning as soon as one fires (the outer fixpoint loop in Simplify
// re-runs applyRules on the result, so classes compose without an inner
// loop here).
func applyRules(e bexpr.Expr) bexpr.Expr {
	if r, ok := foldConstant(e); ok {
		return r
	}
	if r, ok := identityAbsorber(e); ok {
		return r
	}
	if r, ok := normalizeAssociativity(e); ok {
		return r
	}
	if r, ok := addressArithmetic(e); ok {
		return r
	}
	if r, ok := bitfieldCollapse(e); ok {
		return r
	}
	if r, ok := canonicalizeComparison(e); ok {
		return r
	}
	if r, ok := foldShiftForPow2(e); ok {
		return r
	}
	if r, ok := collapseCast(e); ok {
		return r
	}
	if r, ok := commutativeTieBreak(e); ok {
		return r
	}
	return e
}

func intOf(e bexpr.Expr) (int64, bool) {
	switch c := e.(type) {
	case bexpr.IntConst:
		return c.Value, true
	case bexpr.LongConst:
		return c.Value, true
	}
	return 0, false
}

func floatOf(e bexpr.Expr) (float64, bool) {
	if c, ok := e.(bexpr.FloatConst); ok {
		return c.Value, true
	}
	return 0, false
}

func isConst(e bexpr.Expr) bool {
	switch e.(type) {
	case bexpr.IntConst, bexpr.LongConst, bexpr.FloatConst:
		return true
	}
	return false
}

func isZero(e bexpr.Expr) bool {
	v, ok := intOf(e)
	return ok && v == 0
}

func isOne(e bexpr.Expr) bool {
	v, ok := intOf(e)
	return ok && v == 1
}

func isAllOnes(e bexpr.Expr) bool {
	v, ok := intOf(e)
	return ok && v == -1
}

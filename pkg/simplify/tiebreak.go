package simplify

import "github.com/skyripley/boomerang/pkg/bexpr"

// commutativeTieBreak canonically orders the operands of a commutative
// operator: if both operands are constant they would already have been
// folded above; if exactly one is constant it goes right; otherwise
// operands are ordered by a stable total order on expression hashes
// (spec.md §4.C).
func commutativeTieBreak(e bexpr.Expr) (bexpr.Expr, bool) {
	if !e.Op().IsCommutative() {
		return e, false
	}
	c := e.Children()
	if len(c) != 2 {
		return e, false
	}
	a, b := c[0], c[1]

	aConst, bConst := isConst(a), isConst(b)
	switch {
	case aConst && !bConst:
		return bexpr.New(e.Op(), b, a), true
	case !aConst && !bConst:
		if bexpr.Hash(a) > bexpr.Hash(b) {
			return bexpr.New(e.Op(), b, a), true
		}
	}
	return e, false
}

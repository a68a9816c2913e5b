package simplify

import "github.com/skyripley/boomerang/pkg/bexpr"

// addressArithmetic implements rewrite class 4: addrOf(memOf(e)) -> e,
// memOf(addrOf(e)) -> e.
func addressArithmetic(e bexpr.Expr) (bexpr.Expr, bool) {
	c := e.Children()
	if len(c) != 1 {
		return e, false
	}
	inner := c[0]

	switch e.Op() {
	case bexpr.OpAddrOf:
		if bexpr.ChildAt(inner, 0) != nil && inner.Op() == bexpr.OpMemOf {
			return inner.Children()[0], true
		}
	case bexpr.OpMemOf:
		if inner.Op() == bexpr.OpAddrOf {
			return inner.Children()[0], true
		}
	}
	return e, false
}

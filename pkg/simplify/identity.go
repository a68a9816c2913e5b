package simplify

import "github.com/skyripley/boomerang/pkg/bexpr"

// identityAbsorber implements rewrite class 2: x+0->x, x*0->0, x*1->x,
// x&~0->x, x|0->x, x^x->0, x-x->0, x/1->x.
func identityAbsorber(e bexpr.Expr) (bexpr.Expr, bool) {
	c := e.Children()
	if len(c) != 2 {
		return e, false
	}
	a, b := c[0], c[1]

	switch e.Op() {
	case bexpr.OpPlus:
		if isZero(b) {
			return a, true
		}
		if isZero(a) {
			return b, true
		}
	case bexpr.OpMinus:
		if isZero(b) {
			return a, true
		}
		if bexpr.Equal(a, b) {
			return bexpr.IntConst{Value: 0}, true
		}
	case bexpr.OpMult, bexpr.OpMultU:
		if isZero(a) || isZero(b) {
			return bexpr.IntConst{Value: 0}, true
		}
		if isOne(b) {
			return a, true
		}
		if isOne(a) {
			return b, true
		}
	case bexpr.OpDiv, bexpr.OpDivU:
		if isOne(b) {
			return a, true
		}
	case bexpr.OpAnd:
		if isAllOnes(b) {
			return a, true
		}
		if isAllOnes(a) {
			return b, true
		}
		if isZero(a) || isZero(b) {
			return bexpr.IntConst{Value: 0}, true
		}
	case bexpr.OpOr:
		if isZero(b) {
			return a, true
		}
		if isZero(a) {
			return b, true
		}
	case bexpr.OpXor:
		if bexpr.Equal(a, b) {
			return bexpr.IntConst{Value: 0}, true
		}
		if isZero(b) {
			return a, true
		}
		if isZero(a) {
			return b, true
		}
	}
	return e, false
}

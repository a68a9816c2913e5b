package simplify

import (
	"math/bits"

	"github.com/skyripley/boomerang/pkg/bexpr"
)

// foldShiftForPow2 implements rewrite class 7: power-of-two multiplication
// and division folded to shifts where signedness permits. Signed division
// by a power of two is not folded to a plain shift here because of
// rounding-towards-zero semantics; only the unsigned and multiplication
// cases are unconditionally safe, matching the spec's "where signedness
// permits" qualifier.
func foldShiftForPow2(e bexpr.Expr) (bexpr.Expr, bool) {
	c := e.Children()
	if len(c) != 2 {
		return e, false
	}
	a, b := c[0], c[1]
	v, ok := intOf(b)
	if !ok || v <= 0 || !isPowerOfTwo(v) {
		return e, false
	}
	shift := int64(bits.TrailingZeros64(uint64(v)))

	switch e.Op() {
	case bexpr.OpMult, bexpr.OpMultU:
		return bexpr.New(bexpr.OpShl, a, bexpr.IntConst{Value: shift}), true
	case bexpr.OpDivU:
		return bexpr.New(bexpr.OpShr, a, bexpr.IntConst{Value: shift}), true
	case bexpr.OpModU:
		return bexpr.New(bexpr.OpAnd, a, bexpr.IntConst{Value: v - 1}), true
	}
	return e, false
}

func isPowerOfTwo(v int64) bool {
	return v > 0 && v&(v-1) == 0
}

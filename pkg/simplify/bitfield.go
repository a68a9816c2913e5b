package simplify

import "github.com/skyripley/boomerang/pkg/bexpr"

// Bitfield builds the x @ [n:m] read expression (n >= m, both bit
// positions inclusive), the form the Simplifier collapses to a
// shift-and-mask once n and m are known constants.
func Bitfield(x bexpr.Expr, n, m int64) bexpr.Expr {
	return bexpr.New(bexpr.OpBitfield, x, bexpr.IntConst{Value: n}, bexpr.IntConst{Value: m})
}

// Mask returns the ((1<<width)-1) mask for a bitfield of the given
// inclusive bit range, used both by the expression collapse below and by
// bstmt's read-modify-write rewrite for bitfield assignment.
func Mask(n, m int64) int64 {
	width := n - m + 1
	if width <= 0 || width >= 64 {
		return -1
	}
	return (int64(1) << uint64(width)) - 1
}

// bitfieldCollapse implements rewrite class 5: (x @[n:m]) patterns
// collapse to shift+mask when n,m are constants.
func bitfieldCollapse(e bexpr.Expr) (bexpr.Expr, bool) {
	if e.Op() != bexpr.OpBitfield {
		return e, false
	}
	c := e.Children()
	if len(c) != 3 {
		return e, false
	}
	x, nc, mc := c[0], c[1], c[2]
	n, ok1 := intOf(nc)
	m, ok2 := intOf(mc)
	if !ok1 || !ok2 {
		return e, false
	}
	mask := Mask(n, m)
	shifted := x
	if m != 0 {
		shifted = bexpr.New(bexpr.OpShr, x, bexpr.IntConst{Value: m})
	}
	return bexpr.New(bexpr.OpAnd, shifted, bexpr.IntConst{Value: mask}), true
}

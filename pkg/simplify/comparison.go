package simplify

import "github.com/skyripley/boomerang/pkg/bexpr"

// negatedComparison maps each comparison operator to its logical negation
// within the same signed/unsigned/float family; rule 6 only fires within
// a family (unsigned vs signed variants are preserved, never crossed).
var negatedComparison = map[bexpr.Operator]bexpr.Operator{
	bexpr.OpEquals:    bexpr.OpNotEqual,
	bexpr.OpNotEqual:  bexpr.OpEquals,
	bexpr.OpLess:      bexpr.OpGtrEq,
	bexpr.OpGtrEq:     bexpr.OpLess,
	bexpr.OpLessEq:    bexpr.OpGtr,
	bexpr.OpGtr:       bexpr.OpLessEq,
	bexpr.OpLessU:     bexpr.OpGtrEqU,
	bexpr.OpGtrEqU:    bexpr.OpLessU,
	bexpr.OpLessEqU:   bexpr.OpGtrU,
	bexpr.OpGtrU:      bexpr.OpLessEqU,
	bexpr.OpFEquals:   bexpr.OpFNotEqual,
	bexpr.OpFNotEqual: bexpr.OpFEquals,
	bexpr.OpFLess:     bexpr.OpFGtrEq,
	bexpr.OpFGtrEq:    bexpr.OpFLess,
	bexpr.OpFLessEq:   bexpr.OpFGtr,
	bexpr.OpFGtr:      bexpr.OpFLessEq,
}

// canonicalizeComparison implements rewrite class 6: ¬(a<b) -> a>=b, only
// when the operator's signedness/float variant is preserved by the
// negation table (i.e. never turns a signed comparison into an unsigned
// one or vice versa).
func canonicalizeComparison(e bexpr.Expr) (bexpr.Expr, bool) {
	if e.Op() != bexpr.OpLogNot {
		return e, false
	}
	c := e.Children()
	if len(c) != 1 {
		return e, false
	}
	inner := c[0]
	if !inner.Op().IsComparison() {
		return e, false
	}
	negated, ok := negatedComparison[inner.Op()]
	if !ok {
		return e, false
	}
	ic := inner.Children()
	if len(ic) != 2 {
		return e, false
	}
	return bexpr.New(negated, ic[0], ic[1]), true
}

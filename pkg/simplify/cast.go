package simplify

import "github.com/skyripley/boomerang/pkg/bexpr"

// castOps is the set of operators treated as a type-cast for rule 8's
// nested-identical-cast elision.
var castOps = map[bexpr.Operator]bool{
	bexpr.OpSgnEx:  true,
	bexpr.OpZfill:  true,
	bexpr.OpTruncu: true,
	bexpr.OpTruncs: true,
	bexpr.OpFsize:  true,
	bexpr.OpItof:   true,
	bexpr.OpFtoi:   true,
}

// collapseCast implements rewrite class 8: nested identical casts are
// elided; cast of a constant is re-typed (folded in place since the
// constant's numeric value is reinterpreted, not recomputed).
func collapseCast(e bexpr.Expr) (bexpr.Expr, bool) {
	if !castOps[e.Op()] {
		return e, false
	}
	c := e.Children()
	if len(c) != 1 {
		return e, false
	}
	inner := c[0]

	if inner.Op() == e.Op() {
		return inner, true
	}

	if r, ok := foldCastOfConstant(e.Op(), inner); ok {
		return r, true
	}
	return e, false
}

func foldCastOfConstant(op bexpr.Operator, inner bexpr.Expr) (bexpr.Expr, bool) {
	switch op {
	case bexpr.OpItof:
		if v, ok := intOf(inner); ok {
			return bexpr.FloatConst{Value: float64(v)}, true
		}
	case bexpr.OpFtoi:
		if v, ok := floatOf(inner); ok {
			return bexpr.IntConst{Value: int64(v)}, true
		}
	case bexpr.OpSgnEx, bexpr.OpZfill, bexpr.OpTruncu, bexpr.OpTruncs:
		if v, ok := intOf(inner); ok {
			return bexpr.IntConst{Value: v}, true
		}
	}
	return nil, false
}

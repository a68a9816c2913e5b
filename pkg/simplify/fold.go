package simplify

import "github.com/skyripley/boomerang/pkg/bexpr"

// foldConstant implements rewrite class 1: constant folding for all
// arithmetic/bitwise/comparison/float ops.
func foldConstant(e bexpr.Expr) (bexpr.Expr, bool) {
	children := e.Children()
	switch len(children) {
	case 1:
		return foldUnary(e.Op(), children[0])
	case 2:
		return foldBinary(e.Op(), children[0], children[1])
	}
	return e, false
}

func foldUnary(op bexpr.Operator, a bexpr.Expr) (bexpr.Expr, bool) {
	if av, ok := intOf(a); ok {
		switch op {
		case bexpr.OpNeg:
			return bexpr.IntConst{Value: -av}, true
		case bexpr.OpNot:
			return bexpr.IntConst{Value: ^av}, true
		case bexpr.OpLogNot:
			return boolConst(av == 0), true
		}
	}
	if av, ok := floatOf(a); ok {
		switch op {
		case bexpr.OpFNeg:
			return bexpr.FloatConst{Value: -av}, true
		case bexpr.OpFAbs:
			if av < 0 {
				return bexpr.FloatConst{Value: -av}, true
			}
			return bexpr.FloatConst{Value: av}, true
		}
	}
	return a, false
}

func boolConst(b bool) bexpr.Expr {
	if b {
		return bexpr.IntConst{Value: 1}
	}
	return bexpr.IntConst{Value: 0}
}

func foldBinary(op bexpr.Operator, a, b bexpr.Expr) (bexpr.Expr, bool) {
	if av, aok := intOf(a); aok {
		if bv, bok := intOf(b); bok {
			if r, ok := foldIntBinary(op, av, bv); ok {
				return r, true
			}
		}
	}
	if av, aok := floatOf(a); aok {
		if bv, bok := floatOf(b); bok {
			if r, ok := foldFloatBinary(op, av, bv); ok {
				return r, true
			}
		}
	}
	return nil, false
}

func foldIntBinary(op bexpr.Operator, a, b int64) (bexpr.Expr, bool) {
	switch op {
	case bexpr.OpPlus:
		return bexpr.IntConst{Value: a + b}, true
	case bexpr.OpMinus:
		return bexpr.IntConst{Value: a - b}, true
	case bexpr.OpMult, bexpr.OpMultU:
		return bexpr.IntConst{Value: a * b}, true
	case bexpr.OpDiv:
		if b == 0 {
			return nil, false
		}
		return bexpr.IntConst{Value: a / b}, true
	case bexpr.OpDivU:
		if b == 0 {
			return nil, false
		}
		return bexpr.IntConst{Value: int64(uint64(a) / uint64(b))}, true
	case bexpr.OpMod:
		if b == 0 {
			return nil, false
		}
		return bexpr.IntConst{Value: a % b}, true
	case bexpr.OpModU:
		if b == 0 {
			return nil, false
		}
		return bexpr.IntConst{Value: int64(uint64(a) % uint64(b))}, true
	case bexpr.OpAnd:
		return bexpr.IntConst{Value: a & b}, true
	case bexpr.OpOr:
		return bexpr.IntConst{Value: a | b}, true
	case bexpr.OpXor:
		return bexpr.IntConst{Value: a ^ b}, true
	case bexpr.OpShl:
		return bexpr.IntConst{Value: a << uint64(b)}, true
	case bexpr.OpShr, bexpr.OpShrA:
		return bexpr.IntConst{Value: a >> uint64(b)}, true
	case bexpr.OpEquals:
		return boolConst(a == b), true
	case bexpr.OpNotEqual:
		return boolConst(a != b), true
	case bexpr.OpLess:
		return boolConst(a < b), true
	case bexpr.OpLessEq:
		return boolConst(a <= b), true
	case bexpr.OpGtr:
		return boolConst(a > b), true
	case bexpr.OpGtrEq:
		return boolConst(a >= b), true
	case bexpr.OpLessU:
		return boolConst(uint64(a) < uint64(b)), true
	case bexpr.OpLessEqU:
		return boolConst(uint64(a) <= uint64(b)), true
	case bexpr.OpGtrU:
		return boolConst(uint64(a) > uint64(b)), true
	case bexpr.OpGtrEqU:
		return boolConst(uint64(a) >= uint64(b)), true
	}
	return nil, false
}

func foldFloatBinary(op bexpr.Operator, a, b float64) (bexpr.Expr, bool) {
	switch op {
	case bexpr.OpFPlus:
		return bexpr.FloatConst{Value: a + b}, true
	case bexpr.OpFMinus:
		return bexpr.FloatConst{Value: a - b}, true
	case bexpr.OpFMult:
		return bexpr.FloatConst{Value: a * b}, true
	case bexpr.OpFDiv:
		if b == 0 {
			return nil, false
		}
		return bexpr.FloatConst{Value: a / b}, true
	case bexpr.OpFEquals:
		return boolConst(a == b), true
	case bexpr.OpFNotEqual:
		return boolConst(a != b), true
	case bexpr.OpFLess:
		return boolConst(a < b), true
	case bexpr.OpFLessEq:
		return boolConst(a <= b), true
	case bexpr.OpFGtr:
		return boolConst(a > b), true
	case bexpr.OpFGtrEq:
		return boolConst(a >= b), true
	}
	return nil, false
}

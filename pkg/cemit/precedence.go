package cemit

import "github.com/skyripley/boomerang/pkg/bexpr"

// precedence orders C operators from loosest to tightest binding
// (spec.md §4.J): None < Assign < Cond < LogOr < LogAnd < BitOr < BitXor
// < BitAnd < Equal < Rel < BitShift < Add < Mult < Unary < Prim. A child
// is parenthesized iff its precedence is strictly less than the
// parent's — i.e. binds *less* tightly and would otherwise be absorbed
// incorrectly by the parent's operator.
type precedence int

const (
	precNone precedence = iota
	precAssign
	precCond
	precLogOr
	precLogAnd
	precBitOr
	precBitXor
	precBitAnd
	precEqual
	precRel
	precShift
	precAdd
	precMult
	precUnary
	precPrim
)

func precedenceOf(op bexpr.Operator) precedence {
	switch op {
	case bexpr.OpLogOr:
		return precLogOr
	case bexpr.OpLogAnd:
		return precLogAnd
	case bexpr.OpOr:
		return precBitOr
	case bexpr.OpXor:
		return precBitXor
	case bexpr.OpAnd:
		return precBitAnd
	case bexpr.OpEquals, bexpr.OpNotEqual, bexpr.OpFEquals, bexpr.OpFNotEqual:
		return precEqual
	case bexpr.OpLess, bexpr.OpLessEq, bexpr.OpGtr, bexpr.OpGtrEq,
		bexpr.OpLessU, bexpr.OpLessEqU, bexpr.OpGtrU, bexpr.OpGtrEqU,
		bexpr.OpFLess, bexpr.OpFLessEq, bexpr.OpFGtr, bexpr.OpFGtrEq:
		return precRel
	case bexpr.OpShl, bexpr.OpShr, bexpr.OpShrA, bexpr.OpRotl, bexpr.OpRotr:
		return precShift
	case bexpr.OpPlus, bexpr.OpMinus, bexpr.OpFPlus, bexpr.OpFMinus:
		return precAdd
	case bexpr.OpMult, bexpr.OpMultU, bexpr.OpDiv, bexpr.OpDivU, bexpr.OpMod, bexpr.OpModU,
		bexpr.OpFMult, bexpr.OpFDiv:
		return precMult
	case bexpr.OpNeg, bexpr.OpFNeg, bexpr.OpFAbs, bexpr.OpLogNot, bexpr.OpNot,
		bexpr.OpAddrOf, bexpr.OpMemOf,
		bexpr.OpSgnEx, bexpr.OpZfill, bexpr.OpTruncu, bexpr.OpTruncs,
		bexpr.OpFsize, bexpr.OpItof, bexpr.OpFtoi, bexpr.OpFtrunc, bexpr.OpRound:
		return precUnary
	case bexpr.OpTernary:
		return precCond
	case bexpr.OpSubscript, bexpr.OpMember, bexpr.OpArrayOf, bexpr.OpBitfield:
		return precPrim
	default:
		return precPrim
	}
}

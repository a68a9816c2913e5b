package simplify

import "github.com/skyripley/boomerang/pkg/bexpr"

// normalizeAssociativity implements rewrite class 3: nested +/*/&/|/^
// flattened, constants combined and placed on the right.
func normalizeAssociativity(e bexpr.Expr) (bexpr.Expr, bool) {
	op := e.Op()
	if !isAssocOp(op) {
		return e, false
	}
	c := e.Children()
	if len(c) != 2 {
		return e, false
	}

	leaves := flatten(op, c[0], c[1])
	if len(leaves) <= 2 {
		// Nothing to flatten beyond the existing binary node; still try
		// to move a lone constant to the right.
		r, _ := rebuildMovingConstRight(op, leaves)
		if bexpr.Equal(r, e) {
			return e, false
		}
		return r, true
	}

	rebuilt, changed := rebuildMovingConstRight(op, leaves)
	if !changed && bexpr.Equal(rebuilt, e) {
		return e, false
	}
	return rebuilt, true
}

func isAssocOp(op bexpr.Operator) bool {
	switch op {
	case bexpr.OpPlus, bexpr.OpMult, bexpr.OpAnd, bexpr.OpOr, bexpr.OpXor:
		return true
	}
	return false
}

// flatten collects the operands of a left/right-nested chain of the same
// associative operator into a flat slice, in left-to-right order.
func flatten(op bexpr.Operator, a, b bexpr.Expr) []bexpr.Expr {
	var out []bexpr.Expr
	var walk func(e bexpr.Expr)
	walk = func(e bexpr.Expr) {
		if n, ok := e.(bexpr.Node); ok && n.Op() == op && len(n.Children()) == 2 {
			walk(n.Children()[0])
			walk(n.Children()[1])
			return
		}
		out = append(out, e)
	}
	walk(a)
	walk(b)
	return out
}

// rebuildMovingConstRight combines every constant leaf via constant
// folding and rebuilds a left-leaning chain with non-constant operands
// first (stable original order) followed by the single folded constant,
// omitted entirely if it is the operator's identity element.
func rebuildMovingConstRight(op bexpr.Operator, leaves []bexpr.Expr) (bexpr.Expr, bool) {
	var nonConst []bexpr.Expr
	var haveConst bool
	var constVal int64
	changedOrder := false

	for i, l := range leaves {
		if v, ok := intOf(l); ok {
			if haveConst {
				constVal = combineConst(op, constVal, v)
			} else {
				haveConst = true
				constVal = v
			}
			if i != len(leaves)-1 {
				changedOrder = true
			}
			continue
		}
		nonConst = append(nonConst, l)
	}

	if len(nonConst) == 0 {
		if !haveConst {
			return leaves[0], false
		}
		return bexpr.IntConst{Value: constVal}, true
	}

	result := nonConst[0]
	for _, n := range nonConst[1:] {
		result = bexpr.New(op, result, n)
	}

	if haveConst && !isIdentityConst(op, constVal) {
		result = bexpr.New(op, result, bexpr.IntConst{Value: constVal})
		changedOrder = true
	} else if haveConst {
		changedOrder = true
	}

	return result, changedOrder
}

func combineConst(op bexpr.Operator, a, b int64) int64 {
	switch op {
	case bexpr.OpPlus:
		return a + b
	case bexpr.OpMult:
		return a * b
	case bexpr.OpAnd:
		return a & b
	case bexpr.OpOr:
		return a | b
	case bexpr.OpXor:
		return a ^ b
	}
	return b
}

func isIdentityConst(op bexpr.Operator, v int64) bool {
	switch op {
	case bexpr.OpPlus, bexpr.OpOr, bexpr.OpXor:
		return v == 0
	case bexpr.OpMult:
		return v == 1
	case bexpr.OpAnd:
		return v == -1
	}
	return false
}

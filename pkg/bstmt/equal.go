package bstmt

import "github.com/skyripley/boomerang/pkg/bexpr"

// Equal reports whether a and b are structurally identical statements,
// the same per-variant structural comparison bexpr.Equal performs for
// expressions. Used by passes to detect whether a rewrite actually
// changed anything (idempotence at fixpoint, spec.md §4.F).
func Equal(a, b Stmt) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ID() != b.ID() {
		return false
	}
	switch x := a.(type) {
	case *Assign:
		y, ok := b.(*Assign)
		return ok && bexpr.Equal(x.Lhs, y.Lhs) && bexpr.Equal(x.Rhs, y.Rhs)
	case *PhiAssign:
		y, ok := b.(*PhiAssign)
		if !ok || !bexpr.Equal(x.Lhs, y.Lhs) || len(x.Incoming) != len(y.Incoming) {
			return false
		}
		for i := range x.Incoming {
			if x.Incoming[i] != y.Incoming[i] {
				return false
			}
		}
		return true
	case *ImplicitAssign:
		y, ok := b.(*ImplicitAssign)
		return ok && bexpr.Equal(x.Lhs, y.Lhs)
	case *Branch:
		y, ok := b.(*Branch)
		return ok && x.Taken == y.Taken && bexpr.Equal(x.Cond, y.Cond)
	case *Goto:
		y, ok := b.(*Goto)
		return ok && x.Dest == y.Dest
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.DestProc != y.DestProc || !bexpr.Equal(x.Dest, y.Dest) {
			return false
		}
		return exprSliceEqual(x.Args, y.Args) && exprSliceEqual(x.Define, y.Define)
	case *Return:
		y, ok := b.(*Return)
		if !ok {
			return false
		}
		return exprSliceEqual(x.Modifieds, y.Modifieds) && exprSliceEqual(x.Returns, y.Returns)
	case *Case:
		y, ok := b.(*Case)
		if !ok || x.Info.Kind != y.Info.Kind || x.Info.Default != y.Info.Default || x.Info.HasDefault != y.Info.HasDefault {
			return false
		}
		if !bexpr.Equal(x.Info.Expr, y.Info.Expr) || len(x.Info.Targets) != len(y.Info.Targets) {
			return false
		}
		for i := range x.Info.Targets {
			if x.Info.Targets[i] != y.Info.Targets[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func exprSliceEqual(a, b []bexpr.Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bexpr.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

package bstmt

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/btypes"
	"github.com/skyripley/boomerang/pkg/simplify"
)

// NewBitfieldAssign builds the read-modify-write rewrite for an
// assignment to bitfield x@[n:m] := rhs: x := (x & ^(mask << m)) |
// ((rhs & mask) << m). It reuses the simplifier's mask arithmetic (pkg/simplify.Mask)
// so a write and a later read of the same field (pkg/simplify's bitfield
// collapse rule) agree on exactly which bits the field occupies.
func NewBitfieldAssign(id StmtID, typ btypes.Type, x bexpr.Expr, n, m int64, rhs bexpr.Expr) *Assign {
	mask := simplify.Mask(n, m)
	cleared := bexpr.New(bexpr.OpAnd, x, bexpr.IntConst{Value: ^(mask << uint64(m))})
	shifted := bexpr.New(bexpr.OpShl, bexpr.New(bexpr.OpAnd, rhs, bexpr.IntConst{Value: mask}), bexpr.IntConst{Value: m})
	return NewAssign(id, typ, x, bexpr.New(bexpr.OpOr, cleared, shifted))
}

package indirect

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/project"
)

// switchMatch is the result of recognizing one of the three table idioms
// spec.md §4.H names: the selector expression (what the enumerated
// CaseTarget.Value ranges over), the table's base address, and which
// idiom matched.
type switchMatch struct {
	index     bexpr.Expr
	tableAddr uint64
	baseAddr  uint64 // jump-target base for OffsetTable; unused otherwise
	kind      bstmt.TableKind
}

// matchSwitch recognizes:
//   - linear-indexed: memOf(AddrConst{base} + index*wordSize) — the table
//     holds absolute target addresses directly.
//   - offset: AddrConst{base} + memOf(AddrConst{table} + index*2) — the
//     table holds 16-bit offsets relative to base (the classic bounded
//     jump table).
//   - fortran-style: memOf(memOf(AddrConst{table} + index*wordSize)) — an
//     extra level of indirection through a pointer table.
func matchSwitch(dest bexpr.Expr, wordSize int) (switchMatch, bool) {
	if dest == nil {
		return switchMatch{}, false
	}

	if dest.Op() == bexpr.OpMemOf {
		inner := bexpr.ChildAt(dest, 0)

		if inner.Op() == bexpr.OpMemOf {
			addr, index, ok := matchIndexedAddr(bexpr.ChildAt(inner, 0), wordSize)
			if ok {
				return switchMatch{index: index, tableAddr: addr, kind: bstmt.FortranStyle}, true
			}
			return switchMatch{}, false
		}

		addr, index, ok := matchIndexedAddr(inner, wordSize)
		if ok {
			return switchMatch{index: index, tableAddr: addr, kind: bstmt.LinearIndexed}, true
		}
		return switchMatch{}, false
	}

	if dest.Op() == bexpr.OpPlus {
		lhs, rhs := bexpr.ChildAt(dest, 0), bexpr.ChildAt(dest, 1)
		base, baseOK := lhs.(bexpr.AddrConst)
		if !baseOK {
			return switchMatch{}, false
		}
		if rhs.Op() != bexpr.OpMemOf {
			return switchMatch{}, false
		}
		tableAddr, index, ok := matchIndexedAddr(bexpr.ChildAt(rhs, 0), 2)
		if !ok {
			return switchMatch{}, false
		}
		return switchMatch{index: index, tableAddr: tableAddr, baseAddr: base.Addr, kind: bstmt.OffsetTable}, true
	}

	return switchMatch{}, false
}

// matchIndexedAddr recognizes AddrConst{base} + index*scale (or the
// commuted form), returning base and index when scale equals the caller's
// expected element width.
func matchIndexedAddr(e bexpr.Expr, scale int) (uint64, bexpr.Expr, bool) {
	if e == nil || e.Op() != bexpr.OpPlus {
		return 0, nil, false
	}
	lhs, rhs := bexpr.ChildAt(e, 0), bexpr.ChildAt(e, 1)

	base, index, ok := splitBaseAndScaled(lhs, rhs, scale)
	if ok {
		return base, index, true
	}
	base, index, ok = splitBaseAndScaled(rhs, lhs, scale)
	return base, index, ok
}

func splitBaseAndScaled(basePart, scaledPart bexpr.Expr, scale int) (uint64, bexpr.Expr, bool) {
	base, ok := basePart.(bexpr.AddrConst)
	if !ok {
		return 0, nil, false
	}
	if scaledPart == nil || scaledPart.Op() != bexpr.OpMult {
		return 0, nil, false
	}
	a, b := bexpr.ChildAt(scaledPart, 0), bexpr.ChildAt(scaledPart, 1)
	if c, ok := b.(bexpr.IntConst); ok && int(c.Value) == scale {
		return base.Addr, a, true
	}
	if c, ok := a.(bexpr.IntConst); ok && int(c.Value) == scale {
		return base.Addr, b, true
	}
	return 0, nil, false
}

// enumerate walks the table matched by m, reading one entry at a time
// via the binary image until a read fails (table end) or maxTableEntries
// is reached. The index value recorded for each entry is its position in
// the table; callers that need the original selector's concrete range
// rely on the structural/emitter stage to bound it from the guarding
// branch instead.
func enumerate(m switchMatch, prog *project.Program) ([]bstmt.CaseTarget, bool, uint64) {
	var targets []bstmt.CaseTarget
	for i := 0; i < maxTableEntries; i++ {
		entryAddr := m.tableAddr + uint64(i)*entryWidth(m.kind)
		word, ok := prog.Image.ReadNative4(entryAddr)
		if !ok {
			break
		}
		var target uint64
		switch m.kind {
		case bstmt.OffsetTable:
			target = m.baseAddr + uint64(int32(int16(uint16(word))))
		default:
			target = uint64(word)
		}
		if target == 0 {
			break
		}
		targets = append(targets, bstmt.CaseTarget{Value: int64(i), Block: bstmt.BlockID(target)})
	}
	return targets, false, 0
}

func entryWidth(kind bstmt.TableKind) uint64 {
	if kind == bstmt.OffsetTable {
		return 2
	}
	return 4
}

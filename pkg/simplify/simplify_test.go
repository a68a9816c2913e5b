package simplify

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bexpr"
)

func TestIdempotence(t *testing.T) {
	// spec.md §8 invariant 1: simplify(simplify(e)) == simplify(e).
	exprs := []bexpr.Expr{
		bexpr.New(bexpr.OpPlus, bexpr.RegOf{Reg: 24}, bexpr.IntConst{Value: 0}),
		bexpr.New(bexpr.OpMult, bexpr.New(bexpr.OpPlus, bexpr.RegOf{Reg: 1}, bexpr.IntConst{Value: 2}), bexpr.IntConst{Value: 4}),
		bexpr.New(bexpr.OpLogNot, bexpr.New(bexpr.OpLess, bexpr.RegOf{Reg: 1}, bexpr.RegOf{Reg: 2})),
		Bitfield(bexpr.RegOf{Reg: 3}, 7, 4),
		bexpr.New(bexpr.OpAddrOf, bexpr.New(bexpr.OpMemOf, bexpr.RegOf{Reg: 5})),
	}
	for _, e := range exprs {
		once := Simplify(e)
		twice := Simplify(once)
		if !bexpr.Equal(once, twice) {
			t.Errorf("not idempotent: simplify(e)=%v simplify(simplify(e))=%v", once, twice)
		}
	}
}

func TestConstantFolding(t *testing.T) {
	e := bexpr.New(bexpr.OpPlus, bexpr.IntConst{Value: 2}, bexpr.IntConst{Value: 3})
	got := Simplify(e)
	if !bexpr.Equal(got, bexpr.IntConst{Value: 5}) {
		t.Errorf("got %v, want 5", got)
	}
}

func TestIdentityElimination(t *testing.T) {
	r24 := bexpr.RegOf{Reg: 24}
	tests := []struct {
		name string
		e    bexpr.Expr
		want bexpr.Expr
	}{
		{"x+0", bexpr.New(bexpr.OpPlus, r24, bexpr.IntConst{Value: 0}), r24},
		{"x*0", bexpr.New(bexpr.OpMult, r24, bexpr.IntConst{Value: 0}), bexpr.IntConst{Value: 0}},
		{"x*1", bexpr.New(bexpr.OpMult, r24, bexpr.IntConst{Value: 1}), r24},
		{"x|0", bexpr.New(bexpr.OpOr, r24, bexpr.IntConst{Value: 0}), r24},
		{"x^x", bexpr.New(bexpr.OpXor, r24, r24), bexpr.IntConst{Value: 0}},
		{"x-x", bexpr.New(bexpr.OpMinus, r24, r24), bexpr.IntConst{Value: 0}},
		{"x/1", bexpr.New(bexpr.OpDiv, r24, bexpr.IntConst{Value: 1}), r24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.e)
			if !bexpr.Equal(got, tt.want) {
				t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAddressArithmeticCollapse(t *testing.T) {
	r := bexpr.RegOf{Reg: 28}
	addrOfMem := bexpr.New(bexpr.OpAddrOf, bexpr.New(bexpr.OpMemOf, r))
	if got := Simplify(addrOfMem); !bexpr.Equal(got, r) {
		t.Errorf("addrOf(memOf(e)) = %v, want %v", got, r)
	}
	memOfAddr := bexpr.New(bexpr.OpMemOf, bexpr.New(bexpr.OpAddrOf, r))
	if got := Simplify(memOfAddr); !bexpr.Equal(got, r) {
		t.Errorf("memOf(addrOf(e)) = %v, want %v", got, r)
	}
}

func TestBitfieldCollapse(t *testing.T) {
	r := bexpr.RegOf{Reg: 1}
	got := Simplify(Bitfield(r, 7, 4))
	want := bexpr.New(bexpr.OpAnd, bexpr.New(bexpr.OpShr, r, bexpr.IntConst{Value: 4}), bexpr.IntConst{Value: 0xF})
	if !bexpr.Equal(got, want) {
		t.Errorf("bitfield collapse: got %v, want %v", got, want)
	}
}

func TestBitfieldReadModifyWriteBoundary(t *testing.T) {
	// Checks that Mask(n,m) is the (n-m+1)-bit low mask that the
	// bitfield round trip (assign x@[n:m] := v; read x@[n:m]) = v & mask uses.
	for _, tc := range []struct{ n, m, v int64 }{
		{7, 4, 0xFF}, {3, 0, 5}, {31, 16, 0x1FFFF},
	} {
		mask := Mask(tc.n, tc.m)
		got := tc.v & mask
		want := tc.v & ((int64(1) << uint64(tc.n-tc.m+1)) - 1)
		if got != want {
			t.Errorf("mask(%d,%d) & %d = %d, want %d", tc.n, tc.m, tc.v, got, want)
		}
	}
}

func TestComparisonNegation(t *testing.T) {
	a, b := bexpr.RegOf{Reg: 1}, bexpr.RegOf{Reg: 2}
	e := bexpr.New(bexpr.OpLogNot, bexpr.New(bexpr.OpLess, a, b))
	got := Simplify(e)
	want := bexpr.New(bexpr.OpGtrEq, a, b)
	if !bexpr.Equal(got, want) {
		t.Errorf("not(a<b) = %v, want %v", got, want)
	}
}

func TestPowerOfTwoShiftFolding(t *testing.T) {
	r := bexpr.RegOf{Reg: 1}
	got := Simplify(bexpr.New(bexpr.OpMult, r, bexpr.IntConst{Value: 8}))
	want := bexpr.New(bexpr.OpShl, r, bexpr.IntConst{Value: 3})
	if !bexpr.Equal(got, want) {
		t.Errorf("r*8 = %v, want %v", got, want)
	}
}

func TestCastCollapse(t *testing.T) {
	r := bexpr.RegOf{Reg: 1}
	nested := bexpr.New(bexpr.OpSgnEx, bexpr.New(bexpr.OpSgnEx, r))
	want := bexpr.New(bexpr.OpSgnEx, r)
	if got := Simplify(nested); !bexpr.Equal(got, want) {
		t.Errorf("nested identical casts = %v, want %v", got, want)
	}
}

func TestCommutativeTieBreakConstantGoesRight(t *testing.T) {
	got := Simplify(bexpr.New(bexpr.OpAnd, bexpr.IntConst{Value: 0xFF}, bexpr.RegOf{Reg: 9}))
	n, ok := got.(bexpr.Node)
	if !ok {
		t.Fatalf("expected a Node, got %T", got)
	}
	if _, ok := bexpr.ChildAt(n, 1).(bexpr.IntConst); !ok {
		t.Errorf("expected constant operand to be on the right, got %v", got)
	}
}

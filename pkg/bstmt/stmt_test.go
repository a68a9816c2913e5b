package bstmt

import (
	"testing"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/btypes"
	"github.com/skyripley/boomerang/pkg/simplify"
)

func TestAssignUsesAndDefines(t *testing.T) {
	lhs := bexpr.RegOf{Reg: 24}
	rhs := bexpr.New(bexpr.OpPlus, bexpr.RegOf{Reg: 1}, bexpr.RegOf{Reg: 2})
	a := NewAssign(1, btypes.Integer{Bits: 32, Sign: btypes.Signed}, lhs, rhs)

	defs := a.Defines()
	if len(defs) != 1 || !bexpr.Equal(defs[0], lhs) {
		t.Fatalf("Defines() = %v, want [%v]", defs, lhs)
	}
	uses := a.Uses()
	if len(uses) != 2 {
		t.Fatalf("Uses() = %v, want 2 register uses", uses)
	}
}

func TestAssignPropagateTo(t *testing.T) {
	r1 := bexpr.RegOf{Reg: 1}
	def := NewAssign(1, nil, r1, bexpr.IntConst{Value: 5})
	use := NewAssign(2, nil, bexpr.RegOf{Reg: 2}, bexpr.New(bexpr.OpPlus, r1, bexpr.IntConst{Value: 1}))

	got := use.PropagateTo(def).(*Assign)
	want := bexpr.New(bexpr.OpPlus, bexpr.IntConst{Value: 5}, bexpr.IntConst{Value: 1})
	if !bexpr.Equal(got.Rhs, want) {
		t.Errorf("PropagateTo Rhs = %v, want %v", got.Rhs, want)
	}
}

func TestAssignSimplify(t *testing.T) {
	a := NewAssign(1, nil, bexpr.RegOf{Reg: 1}, bexpr.New(bexpr.OpPlus, bexpr.RegOf{Reg: 2}, bexpr.IntConst{Value: 0}))
	got := a.Simplify().(*Assign)
	if !bexpr.Equal(got.Rhs, bexpr.RegOf{Reg: 2}) {
		t.Errorf("Simplify Rhs = %v, want reg2", got.Rhs)
	}
}

func TestPhiIncomingMaintenance(t *testing.T) {
	p := NewPhiAssign(1, bexpr.Temp{Name: "v1", Version: 3})
	p.AddIncoming(10, 100)
	p.AddIncoming(20, 200)
	if len(p.Incoming) != 2 {
		t.Fatalf("len(Incoming) = %d, want 2", len(p.Incoming))
	}
	p.AddIncoming(10, 101)
	if len(p.Incoming) != 2 {
		t.Fatalf("AddIncoming on existing pred should update, not append: %v", p.Incoming)
	}
	p.RemoveIncoming(10)
	if len(p.Incoming) != 1 || p.Incoming[0].Pred != 20 {
		t.Fatalf("RemoveIncoming left %v, want only pred 20", p.Incoming)
	}
}

func TestCallUsesArgsAndDest(t *testing.T) {
	c := NewCall(1, bexpr.RegOf{Reg: 9}, []bexpr.Expr{bexpr.RegOf{Reg: 0}, bexpr.IntConst{Value: 3}}, nil)
	uses := c.Uses()
	if len(uses) != 2 {
		t.Fatalf("Uses() = %v, want 2 (dest reg + one arg reg)", uses)
	}
	if c.IsResolved() {
		t.Error("call with DestProc unset should not be resolved")
	}
	c.DestProc = 42
	if !c.IsResolved() {
		t.Error("call with DestProc set should be resolved")
	}
}

func TestReturnSearchAndReplace(t *testing.T) {
	r := NewReturn(1, nil, []bexpr.Expr{bexpr.RegOf{Reg: 24}})
	got := r.SearchAndReplace(bexpr.RegOf{Reg: 24}, bexpr.IntConst{Value: 0}).(*Return)
	if !bexpr.Equal(got.Returns[0], bexpr.IntConst{Value: 0}) {
		t.Errorf("SearchAndReplace Returns = %v", got.Returns)
	}
}

func TestBitfieldAssignRoundTripsWithRead(t *testing.T) {
	x := bexpr.RegOf{Reg: 1}
	a := NewBitfieldAssign(1, nil, x, 7, 4, bexpr.IntConst{Value: 0xAB})
	// Writing 0xAB into bits [7:4] sets the cleared field to (0xAB & 0xF) << 4.
	if a.Rhs.Op() != bexpr.OpOr {
		t.Fatalf("bitfield assign rhs root = %v, want OpOr", a.Rhs.Op())
	}

	// Round trip on a concrete word: writing 0xAB into bits [7:4] of 0xFF
	// gives 0xBF, and reading bits [7:4] back gives 0xAB & 0xF = 0xB.
	word := NewBitfieldAssign(2, nil, bexpr.IntConst{Value: 0xFF}, 7, 4, bexpr.IntConst{Value: 0xAB})
	written := simplify.Simplify(word.Rhs)
	if !bexpr.Equal(written, bexpr.IntConst{Value: 0xBF}) {
		t.Fatalf("written word = %v, want 0xBF", written)
	}
	if got := simplify.Simplify(simplify.Bitfield(written, 7, 4)); !bexpr.Equal(got, bexpr.IntConst{Value: 0xB}) {
		t.Errorf("read back x@[7:4] = %v, want 0xB", got)
	}
}

func TestGotoAndBranchGenerateCode(t *testing.T) {
	rec := &recordingEmitter{}
	NewGoto(1, BlockID(5)).GenerateCode(rec, 0)
	if rec.gotoTarget != 5 {
		t.Errorf("Goto target = %d, want 5", rec.gotoTarget)
	}
	NewBranch(2, bexpr.RegOf{Reg: 1}, BlockID(7)).GenerateCode(rec, 0)
	if rec.gotoTarget != 7 {
		t.Errorf("Branch taken target = %d, want 7", rec.gotoTarget)
	}
}

type recordingEmitter struct {
	gotoTarget BlockID
}

func (r *recordingEmitter) AddAssignmentStatement(lhs, rhs bexpr.Expr)      {}
func (r *recordingEmitter) AddCallStatement(procID int64, args, defines []bexpr.Expr) {}
func (r *recordingEmitter) AddIndCallStatement(dest bexpr.Expr, args, defines []bexpr.Expr) {}
func (r *recordingEmitter) AddReturnStatement(returns []bexpr.Expr)         {}
func (r *recordingEmitter) AddGoto(target BlockID)                         { r.gotoTarget = target }
func (r *recordingEmitter) AddLineComment(text string)                     {}

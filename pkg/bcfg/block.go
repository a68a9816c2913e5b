// Package bcfg implements the control-flow graph: basic blocks, edges,
// dominators and dominance frontiers, and SSA renaming.
//
// Grounded on the teacher's pkg/regalloc/interference.go for the
// map-backed set vocabulary (BBSet mirrors RegSet's Add/Contains/Copy
// shape) and on the decompiler library reviewed in
// _examples/other_examples/nukilabs-decompile__structure.go for the
// *shape* of a dominator-tree-first CFG API, re-expressed here as
// CFG.Dominators()/CFG.DominanceFrontier() computed with the standard
// iterative (Cooper-Harvey-Kennedy) algorithm.
package bcfg

import "github.com/skyripley/boomerang/pkg/bstmt"

// BBID identifies a basic block within a single procedure's CFG.
type BBID int

// BBType classifies a block by how it transfers control (spec.md §3).
type BBType int

const (
	Invalid BBType = iota
	OneWay
	TwoWay
	Nway
	Call
	Ret
	Fall
	CompJump
	CompCall
)

func (t BBType) String() string {
	switch t {
	case OneWay:
		return "OneWay"
	case TwoWay:
		return "TwoWay"
	case Nway:
		return "Nway"
	case Call:
		return "Call"
	case Ret:
		return "Ret"
	case Fall:
		return "Fall"
	case CompJump:
		return "CompJump"
	case CompCall:
		return "CompCall"
	default:
		return "Invalid"
	}
}

// StructType is the structural shape the analyzer assigns a block
// (spec.md §4.I).
type StructType int

const (
	NoStruct StructType = iota
	Loop
	LoopCond
	Cond
	Seq
)

// LoopType classifies a Loop/LoopCond block's testing position.
type LoopType int

const (
	NoLoop LoopType = iota
	PreTested
	PostTested
	Endless
)

// CondType classifies a Cond/LoopCond block's branching shape.
type CondType int

const (
	NoCond CondType = iota
	IfThen
	IfElse
	IfThenElse
	Case
)

// UnstructType flags a block whose control transfer cannot be rendered
// purely by the enclosing structure.
type UnstructType int

const (
	Structured UnstructType = iota
	JumpInOutLoop
	JumpIntoCase
)

// Traversal is a block's visitation state during a CFG walk (DFS order
// computation, loop structuring, restart bookkeeping).
type Traversal int

const (
	Unvisited Traversal = iota
	OnStack
	Visited
)

// BasicBlock owns an ordered list of RTLs, its predecessor/successor
// edges, and the structural annotations the passes and the structural
// analyzer attach to it.
type BasicBlock struct {
	ID    BBID
	Type  BBType
	RTLs  []*bstmt.RTL
	Preds []BBID
	Succs []BBID

	StructType   StructType
	LoopType     LoopType
	CondType     CondType
	UnstructType UnstructType

	LoopHead    BBID
	LoopFollow  BBID
	Latch       BBID
	CaseHead    BBID
	CondFollow  BBID
	IsLatchNode bool

	Traversal Traversal
}

// BlockID satisfies bstmt.BlockRef-shaped callers that only need a plain
// identifier back from a block.
func (b *BasicBlock) BlockID() int { return int(b.ID) }

// AppendRTL adds an RTL to the block's statement list.
func (b *BasicBlock) AppendRTL(r *bstmt.RTL) {
	b.RTLs = append(b.RTLs, r)
}

// Stmts flattens the block's RTLs into a single statement slice, in
// program order.
func (b *BasicBlock) Stmts() []bstmt.Stmt {
	var out []bstmt.Stmt
	for _, r := range b.RTLs {
		out = append(out, r.Stmts...)
	}
	return out
}

// LastRTL returns the block's final RTL, or nil if it has none.
func (b *BasicBlock) LastRTL() *bstmt.RTL {
	if len(b.RTLs) == 0 {
		return nil
	}
	return b.RTLs[len(b.RTLs)-1]
}

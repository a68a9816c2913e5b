package bstmt

import "github.com/skyripley/boomerang/pkg/bexpr"

// TableKind distinguishes the switch-table idioms indirect.Recover
// pattern-matches against (spec.md §4.H).
type TableKind int

const (
	LinearIndexed TableKind = iota
	OffsetTable
	FortranStyle
)

func (k TableKind) String() string {
	switch k {
	case LinearIndexed:
		return "linear-indexed"
	case OffsetTable:
		return "offset"
	case FortranStyle:
		return "fortran-style"
	default:
		return "unknown-table"
	}
}

// CaseTarget associates a switch value with the block it transfers to.
type CaseTarget struct {
	Value int64
	Block BlockID
}

// SwitchInfo describes a recovered multi-way transfer: the index
// expression, which table idiom produced it, and the enumerated
// value-to-target mapping.
type SwitchInfo struct {
	Expr       bexpr.Expr
	Kind       TableKind
	TableAddr  uint64
	Targets    []CaseTarget
	Default    BlockID
	HasDefault bool
}

// Case is a multi-way transfer statement produced once indirect recovery
// (or direct Nway decoding) has enumerated a switch table.
type Case struct {
	id   StmtID
	Info SwitchInfo
}

// NewCase constructs a Case.
func NewCase(id StmtID, info SwitchInfo) *Case {
	return &Case{id: id, Info: info}
}

func (*Case) implStmt()    {}
func (c *Case) ID() StmtID { return c.id }
func (c *Case) Uses() []bexpr.Expr   { return usesIn(c.Info.Expr) }
func (c *Case) Defines() []bexpr.Expr { return nil }

func (c *Case) PropagateTo(def Stmt) Stmt {
	a, ok := def.(*Assign)
	if !ok {
		return c
	}
	info := c.Info
	info.Expr = bexpr.SearchAndReplace(info.Expr, a.Lhs, a.Rhs)
	return &Case{id: c.id, Info: info}
}

func (c *Case) SearchAndReplace(from, to bexpr.Expr) Stmt {
	info := c.Info
	info.Expr = bexpr.SearchAndReplace(info.Expr, from, to)
	return &Case{id: c.id, Info: info}
}

func (c *Case) Simplify() Stmt {
	return c
}

func (c *Case) GenerateCode(e Emitter, bb BlockID) {}

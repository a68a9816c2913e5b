// Package passmgr implements the registry of named, idempotent-at-fixpoint
// transformation passes over a procedure (spec.md §4.F). The registry is
// grounded on cmd/ralph-cc/main.go's fixed ordered sequence of named
// package transformations gated by debug-dump flags, re-expressed here as
// data: a map of ID to Pass plus ordered ID sequences the driver consumes.
package passmgr

import (
	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/btypes"
)

// Proc is the minimal surface a procedure must expose to run passes over
// it. It exists so passmgr does not import pkg/project (which in turn
// depends on passmgr.Registry for its pipeline), the same
// dependency-direction discipline bstmt.Emitter uses to stay decoupled
// from bcfg/cemit.
type Proc interface {
	CFG() *bcfg.CFG
	Variables() bcfg.VariableSet
	SetVariables(bcfg.VariableSet)

	AllocStmtID() bstmt.StmtID

	NameParameters() bool

	// ResolveGlobal returns the global-variable expression rooted at addr,
	// if addr falls within a known global (used by GlobalConstReplace).
	ResolveGlobal(addr uint64) (bexpr.Expr, bool)

	// IsPreserved reports whether key's value on entry equals its value on
	// every exit path, per the cached result of PreservationAnalysis.
	IsPreserved(key bcfg.VariableKey) (preserved bool, known bool)
	SetPreserved(key bcfg.VariableKey, preserved bool)

	LocalType(name string) (btypes.Type, bool)
	SetLocalType(name string, t btypes.Type)
	// Locals lists every local currently tracked, for UnusedLocalRemoval
	// to scan; RemoveLocal drops one by name.
	Locals() []string
	RemoveLocal(name string)

	Params() []bexpr.Expr
	SetParams([]bexpr.Expr)

	// SymbolFor/SetSymbol maintain the forward (name to expr) and reverse
	// (expr to name) halves of the symbol map (SPEC_FULL.md §3 EXPANSION:
	// UserProc keeps both directions since the emitter needs expr->name
	// for substitution and name->expr for parameter binding).
	SymbolFor(e bexpr.Expr) (name string, ok bool)
	SetSymbol(e bexpr.Expr, name string)
}

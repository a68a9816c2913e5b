// Package indirect implements indirect jump/call recovery (spec.md
// §4.H): pattern-matching a CompJump/CompCall terminator's destination
// expression against known switch-table idioms, enumerating the table's
// entries from the binary image, and rewriting the terminator into a
// resolved multi-way transfer.
package indirect

import (
	"context"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/project"
)

// maxTableEntries bounds table enumeration so a malformed or
// not-actually-bounded table can never cause an unbounded read loop.
const maxTableEntries = 4096

// Recover scans proc's CFG for CompJump/CompCall blocks whose terminator
// is still unresolved, pattern-matches and enumerates any switch-table
// idiom it recognizes, and records the rewritten statement with the
// program's decoder so a subsequent redecode picks it up (the restart
// protocol itself — clearing the CFG, redecoding, resetting status — is
// the driver's responsibility; Recover only reports whether it found
// anything to restart for).
func Recover(ctx context.Context, proc *project.UserProc, prog *project.Program) bool {
	rewrote := false
	g := proc.CFG()
	wordSize := prog.Settings.WordSize / 8
	if wordSize <= 0 {
		wordSize = 4
	}

	for _, id := range g.Order() {
		bb := g.Blocks[id]
		var found bool
		switch bb.Type {
		case bcfg.CompJump:
			found = recoverJump(bb, prog, wordSize)
		case bcfg.CompCall:
			found = recoverCall(bb, prog)
		default:
			continue
		}
		if found {
			rewrote = true
			if prog.Settings.DebugSwitch {
				prog.Alerts.AlertDecompileDebugPoint(ctx, proc.Name, "indirect-recovered")
			}
		}
	}
	return rewrote
}

func recoverJump(bb *bcfg.BasicBlock, prog *project.Program, wordSize int) bool {
	last := bb.LastRTL()
	if last == nil || len(last.Stmts) == 0 {
		return false
	}
	c, ok := last.Stmts[len(last.Stmts)-1].(*bstmt.Case)
	if !ok || len(c.Info.Targets) > 0 {
		return false
	}

	m, ok := matchSwitch(c.Info.Expr, wordSize)
	if !ok {
		return false
	}

	targets, hasDefault, defAddr := enumerate(m, prog)
	if len(targets) == 0 {
		return false
	}

	newCase := bstmt.NewCase(c.ID(), bstmt.SwitchInfo{
		Expr:       m.index,
		Kind:       m.kind,
		TableAddr:  m.tableAddr,
		Targets:    targets,
		Default:    bstmt.BlockID(defAddr),
		HasDefault: hasDefault,
	})
	last.Stmts[len(last.Stmts)-1] = newCase
	prog.Decoder.SaveDecodedRTL(last.Addr, last)
	return true
}

// recoverCall resolves a computed call whose destination turns out to be
// a single known address (a function-pointer load GlobalConstReplace
// could not fold earlier because the address table itself needed
// recovery), setting DestProc so visitCalls can treat it like a direct
// call on the next pass.
func recoverCall(bb *bcfg.BasicBlock, prog *project.Program) bool {
	last := bb.LastRTL()
	if last == nil || len(last.Stmts) == 0 {
		return false
	}
	call, ok := last.Stmts[len(last.Stmts)-1].(*bstmt.Call)
	if !ok || call.IsResolved() {
		return false
	}
	addr, ok := singleTargetAddr(call.Dest, prog)
	if !ok {
		return false
	}
	newCall := bstmt.NewCall(call.ID(), call.Dest, call.Args, call.Define)
	newCall.DestProc = int64(addr)
	last.Stmts[len(last.Stmts)-1] = newCall
	prog.Decoder.SaveDecodedRTL(last.Addr, last)
	return true
}

func singleTargetAddr(dest bexpr.Expr, prog *project.Program) (uint64, bool) {
	if dest.Op() == bexpr.OpMemOf {
		addr, ok := bexpr.ChildAt(dest, 0).(bexpr.AddrConst)
		if !ok {
			return 0, false
		}
		w, ok := prog.Image.ReadNative4(addr.Addr)
		return uint64(w), ok
	}
	if addr, ok := dest.(bexpr.AddrConst); ok {
		return addr.Addr, true
	}
	return 0, false
}

// Package driver implements the per-procedure decompilation pipeline
// (spec.md §4.G): decoding, the early/middle/late pass stages, recursion
// detection and recursion-group analysis, and the indirect-jump/call
// recovery restart.
package driver

import (
	"context"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/indirect"
	"github.com/skyripley/boomerang/pkg/passmgr"
	"github.com/skyripley/boomerang/pkg/project"
	"tlog.app/go/errors"
)

// MaxMiddleFixpointIterations bounds middleDecompile's inner PhiPlacement
// loop (spec.md §9 Open Question: fixpoint bounds are named constants,
// not magic numbers).
const MaxMiddleFixpointIterations = 12

// MaxReturnUpdateIterations bounds recursionGroupAnalysis's outer DFS
// loop over the group (spec.md §4.G: "≤2 outer iterations").
const MaxReturnUpdateIterations = 2

// ErrInvariant is the error value for a pipeline invariant violated at
// runtime. No function in this package returns it; Decompile reports a
// procedure's outcome through its Status.
var ErrInvariant = errors.New("driver: invariant violated")

// Decompiler owns the collaborators every decompile() call needs: the
// pass registry, the decoder, and the owning program (for callee lookup,
// settings, and alerts).
type Decompiler struct {
	Registry *passmgr.Registry
	Program  *project.Program
}

// New returns a Decompiler wired to prog's decoder image and settings.
func New(prog *project.Program) *Decompiler {
	return &Decompiler{Registry: passmgr.NewRegistry(), Program: prog}
}

// Decompile runs the full per-procedure pipeline on proc, recursing into
// every callee it discovers, exactly as spec.md §4.G's decompile(proc,
// callStack) describes.
func (d *Decompiler) Decompile(ctx context.Context, proc *project.UserProc, stack *CallStack) project.Status {
	if proc.Status >= project.Final {
		return project.Final
	}
	if proc.Status < project.Decoded {
		g, ok := decode(proc.Addr, d.Program.Decoder)
		if !ok {
			proc.Status = project.Undecoded
			return project.Undecoded
		}
		proc.SetCFG(g)
		proc.FindRetStmt()
		proc.Status = project.Decoded
	}
	if proc.Status < project.Visited {
		proc.Status = project.Visited
	}

	stack.Push(proc)
	d.Program.Alerts.AlertDecompiling(ctx, proc.Name)

	d.visitCalls(ctx, proc, stack)

	if proc.Status != project.InCycle {
		d.earlyDecompile(proc)
		if d.middleDecompile(ctx, proc) {
			// Indirect recovery rewrote a transfer: restart this
			// procedure from scratch (spec.md §4.H).
			stack.Pop(proc)
			proc.Status = project.Visited
			return d.Decompile(ctx, proc, stack)
		}
		d.lateDecompile(proc)
		proc.Status = project.Final
	} else if firstGroupMember(stack, proc.RecursionGroup) == proc {
		d.recursionGroupAnalysis(ctx, proc.RecursionGroup)
		proc.Status = project.Final
	}

	stack.Pop(proc)
	d.Program.Alerts.AlertEndDecompile(ctx, proc.Name, proc.Status)
	return proc.Status
}

// visitCalls walks every call in proc's CFG, resolving each callee and
// either copying forward its settled return shape, growing a recursion
// group, or recursing into it.
func (d *Decompiler) visitCalls(ctx context.Context, proc *project.UserProc, stack *CallStack) {
	for _, call := range proc.CFG().Calls() {
		if call.DestProc == 0 {
			continue // unresolved indirect call; left to indirect recovery
		}
		callee, _, ok := d.Program.FindProc(uint64(call.DestProc))
		if !ok {
			continue // missing callee/signature (spec.md §7): leave unresolved
		}
		calleeProc, ok := callee.(*project.UserProc)
		if !ok {
			continue // LibProc: no recursion tracking, no pipeline to run
		}

		switch {
		case calleeProc.Status == project.Final:
			call.CalleeReturn = calleeProc.RetStmt()
		case calleeProc.Status >= project.Visited && calleeProc.Status <= project.EarlyDone:
			if stack.Contains(calleeProc) {
				unionChain(d.Program.Groups, stack.From(calleeProc))
			} else {
				first := firstGroupMember(stack, calleeProc.RecursionGroup)
				if first != nil {
					unionChain(d.Program.Groups, append([]*project.UserProc{first}, stack.After(first)...))
					d.Program.Groups.Union(calleeProc, first)
				}
			}
			proc.Status = project.InCycle
		default:
			d.Decompile(ctx, calleeProc, stack)
			call.CalleeReturn = calleeProc.RetStmt()
			if proc.RecursionGroup != nil {
				proc.Status = project.InCycle
			}
		}
	}
}

func unionChain(reg *project.GroupRegistry, members []*project.UserProc) {
	for i := 1; i < len(members); i++ {
		reg.Union(members[0], members[i])
	}
}

func firstGroupMember(stack *CallStack, group *project.RecursionGroup) *project.UserProc {
	if group == nil {
		return nil
	}
	for _, p := range stack.order {
		if group.Contains(p) {
			return p
		}
	}
	return nil
}

// earlyDecompile runs the one-shot pass sequence spec.md §4.G names:
// StatementInit, BBSimplify, Dominators, CallDefineUpdate,
// GlobalConstReplace, PhiPlacement, BlockVarRename, StatementPropagation.
func (d *Decompiler) earlyDecompile(proc *project.UserProc) {
	d.Registry.RunSequence([]passmgr.ID{
		passmgr.StatementInit,
		passmgr.BBSimplify,
		passmgr.Dominators,
		passmgr.CallDefineUpdate,
		passmgr.GlobalConstReplace,
		passmgr.PhiPlacement,
		passmgr.BlockVarRename,
		passmgr.StatementPropagation,
	}, proc)
}

var fixpointLoop = []passmgr.ID{
	passmgr.PhiPlacement,
	passmgr.BlockVarRename,
	passmgr.StatementPropagation,
	passmgr.CallArgumentUpdate,
	passmgr.StrengthReductionReversal,
	passmgr.AssignRemoval,
}

// middleDecompile runs the fixed head sequence, the bounded fixpoint
// loop, the memory-rename enable point, indirect recovery, and the tail
// sequence spec.md §4.G describes, then marks proc EarlyDone. It returns
// true if indirect recovery rewrote a transfer, meaning the caller must
// restart the whole procedure (spec.md §4.H): in that case proc's CFG is
// already cleared and redecoded when this function returns, the tail
// sequence is left unrun, and resetting status to Visited is left to the
// caller.
func (d *Decompiler) middleDecompile(ctx context.Context, proc *project.UserProc) bool {
	d.Registry.RunSequence([]passmgr.ID{
		passmgr.CallAndPhiFix,
		passmgr.StatementPropagation,
		passmgr.SPPreservation,
		passmgr.PreservationAnalysis,
		passmgr.CallAndPhiFix,
	}, proc)

	if d.Program.Settings.UsePromotion {
		promoteSignature(proc)
	}

	d.Registry.RunToFixpoint(fixpointLoop, proc, MaxMiddleFixpointIterations)

	proc.SetVariables(bcfg.MemoryVariables{})

	d.Registry.RunSequence([]passmgr.ID{
		passmgr.PhiPlacement,
		passmgr.BlockVarRename,
		passmgr.StatementPropagation,
		passmgr.CallAndPhiFix,
	}, proc)

	if indirect.Recover(ctx, proc, d.Program) {
		proc.SetRetStmt(nil)
		g, ok := decode(proc.Addr, d.Program.Decoder)
		if !ok {
			return false
		}
		proc.SetCFG(g)
		proc.FindRetStmt()
		return true
	}

	d.Registry.RunSequence([]passmgr.ID{
		passmgr.PreservationAnalysis,
		passmgr.DuplicateArgsRemoval,
	}, proc)

	proc.Status = project.EarlyDone
	return false
}

// promoteSignature runs when signature promotion is enabled (spec.md §9
// "usePromotion") and only sets proc.SignaturePromoted. It does not widen
// proc's parameter or return lists, and no pass reads the flag.
func promoteSignature(proc *project.UserProc) {
	proc.SignaturePromoted = true
}

// lateDecompile runs the pass sequence spec.md §4.G names for the final
// stage: LocalTypeAnalysis, PhiPlacement, BlockVarRename,
// StatementPropagation, UnusedStatementRemoval, FinalParameterSearch,
// then (if enabled) ParameterSymbolMap, then CallDefineUpdate,
// CallArgumentUpdate, BranchAnalysis.
func (d *Decompiler) lateDecompile(proc *project.UserProc) {
	d.Registry.RunSequence([]passmgr.ID{
		passmgr.LocalTypeAnalysis,
		passmgr.PhiPlacement,
		passmgr.BlockVarRename,
		passmgr.StatementPropagation,
		passmgr.UnusedStatementRemoval,
		passmgr.FinalParameterSearch,
	}, proc)

	if proc.NameParameters() {
		d.Registry.Run(passmgr.ParameterSymbolMap, proc)
	}

	d.Registry.RunSequence([]passmgr.ID{
		passmgr.CallDefineUpdate,
		passmgr.CallArgumentUpdate,
		passmgr.BranchAnalysis,
	}, proc)
}

// recursionGroupAnalysis runs the group-wide convergence spec.md §4.G
// describes: for each member, earlyDecompile and middleDecompile run
// with status forced to InCycle (neither visits calls, so a member's
// calls to group peers are not recursed into), then status is restored
// and a bounded fixpoint loop runs LocalAndParamMap/CallArgumentUpdate/
// Dominators/StatementPropagation over the whole group, and finally
// lateDecompile runs twice per member. A member whose middleDecompile
// call rewrites an indirect transfer is not restarted here: its
// redecoded CFG enters the convergence loop as it is.
func (d *Decompiler) recursionGroupAnalysis(ctx context.Context, group *project.RecursionGroup) {
	members := group.Members()
	for _, m := range members {
		forced := m.Status
		m.Status = project.InCycle
		d.earlyDecompile(m)
		d.middleDecompile(ctx, m)
		m.Status = forced
	}
	for iter := 0; iter < MaxReturnUpdateIterations; iter++ {
		changed := false
		for _, m := range members {
			forced := m.Status
			m.Status = project.InCycle
			if d.Registry.RunSequence([]passmgr.ID{
				passmgr.LocalAndParamMap,
				passmgr.CallArgumentUpdate,
				passmgr.Dominators,
				passmgr.StatementPropagation,
			}, m) {
				changed = true
			}
			m.Status = forced
		}
		if !changed {
			break
		}
	}
	for _, m := range members {
		d.lateDecompile(m)
		d.lateDecompile(m)
		m.Status = project.Final
	}
}

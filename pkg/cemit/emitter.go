package cemit

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/project"
)

// Printer renders one procedure's structured CFG as C source. It
// implements bstmt.Emitter (the subset individual statements call back
// into from GenerateCode) as well as the larger structural callback
// surface (spec.md §6) the traversal in this file drives directly.
//
// Grounded on pkg/cminor/printer.go's Printer{w io.Writer, indent int}
// shape; the followSet/gotoSet/generated/usedLabels bookkeeping below is
// this package's port of spec.md §4.J's traversal state.
type Printer struct {
	w      *bytes.Buffer
	indent int
	ctx    exprContext

	followSet []bcfg.BBID
	gotoSet   map[bcfg.BBID]bool
	generated map[bcfg.BBID]bool
	usedLabels map[bcfg.BBID]bool
}

// NewPrinter returns a Printer ready to emit proc's body, resolving
// symbol/global/procedure names against proc and prog.
func NewPrinter(proc *project.UserProc, prog *project.Program) *Printer {
	return &Printer{
		w:          &bytes.Buffer{},
		ctx:        exprContext{proc: proc, prog: prog},
		gotoSet:    make(map[bcfg.BBID]bool),
		generated:  make(map[bcfg.BBID]bool),
		usedLabels: make(map[bcfg.BBID]bool),
	}
}

func (p *Printer) writeIndent() { p.w.WriteString(strings.Repeat("    ", p.indent)) }

// --- bstmt.Emitter / spec §6 callback surface ---

func (p *Printer) AddAssignmentStatement(lhs, rhs bexpr.Expr) {
	p.writeIndent()
	fmt.Fprintf(p.w, "%s = %s;\n", p.ctx.renderExpr(lhs, precNone), p.ctx.renderExpr(rhs, precAssign))
}

func (p *Printer) AddCallStatement(procID int64, args, defines []bexpr.Expr) {
	p.writeIndent()
	if len(defines) == 1 {
		fmt.Fprintf(p.w, "%s = ", p.ctx.renderExpr(defines[0], precNone))
	}
	fmt.Fprintf(p.w, "%s(%s);\n", p.ctx.procName(uint64(procID)), p.renderArgs(args))
}

func (p *Printer) AddIndCallStatement(dest bexpr.Expr, args, defines []bexpr.Expr) {
	p.writeIndent()
	if len(defines) == 1 {
		fmt.Fprintf(p.w, "%s = ", p.ctx.renderExpr(defines[0], precNone))
	}
	fmt.Fprintf(p.w, "(*%s)(%s);\n", p.ctx.renderExpr(dest, precUnary), p.renderArgs(args))
}

func (p *Printer) renderArgs(args []bexpr.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = p.ctx.renderExpr(a, precAssign)
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) AddReturnStatement(returns []bexpr.Expr) {
	p.writeIndent()
	if len(returns) == 0 {
		p.w.WriteString("return;\n")
		return
	}
	fmt.Fprintf(p.w, "return %s;\n", p.ctx.renderExpr(returns[0], precNone))
}

func (p *Printer) AddLabel(id bcfg.BBID) {
	fmt.Fprintf(p.w, "bb0x%x:\n", id)
}

func (p *Printer) AddGoto(id bstmt.BlockID) {
	p.usedLabels[bcfg.BBID(id)] = true
	p.writeIndent()
	fmt.Fprintf(p.w, "goto bb0x%x;\n", id)
}

func (p *Printer) AddContinue() {
	p.writeIndent()
	p.w.WriteString("continue;\n")
}

func (p *Printer) AddBreak() {
	p.writeIndent()
	p.w.WriteString("break;\n")
}

func (p *Printer) AddIfCondHeader(cond bexpr.Expr) {
	p.writeIndent()
	fmt.Fprintf(p.w, "if (%s) {\n", p.ctx.renderExpr(cond, precNone))
	p.indent++
}

func (p *Printer) AddIfCondEnd() {
	p.indent--
	p.writeIndent()
	p.w.WriteString("}\n")
}

func (p *Printer) AddIfElseCondHeader(cond bexpr.Expr) {
	p.writeIndent()
	fmt.Fprintf(p.w, "if (%s) {\n", p.ctx.renderExpr(cond, precNone))
	p.indent++
}

func (p *Printer) AddIfElseCondOption() {
	p.indent--
	p.writeIndent()
	p.w.WriteString("} else {\n")
	p.indent++
}

func (p *Printer) AddIfElseCondEnd() {
	p.indent--
	p.writeIndent()
	p.w.WriteString("}\n")
}

func (p *Printer) AddCaseCondHeader(expr bexpr.Expr) {
	p.writeIndent()
	fmt.Fprintf(p.w, "switch (%s) {\n", p.ctx.renderExpr(expr, precNone))
	p.indent++
}

func (p *Printer) AddCaseCondOption(value int64) {
	p.writeIndent()
	fmt.Fprintf(p.w, "case %d:\n", value)
	p.indent++
}

func (p *Printer) AddCaseCondOptionEnd() {
	p.indent--
}

func (p *Printer) AddCaseCondElse() {
	p.writeIndent()
	p.w.WriteString("default:\n")
	p.indent++
}

func (p *Printer) AddCaseCondEnd() {
	p.indent--
	p.writeIndent()
	p.w.WriteString("}\n")
}

func (p *Printer) AddPretestedLoopHeader(cond bexpr.Expr) {
	p.writeIndent()
	fmt.Fprintf(p.w, "while (%s) {\n", p.ctx.renderExpr(cond, precNone))
	p.indent++
}

func (p *Printer) AddPretestedLoopEnd() {
	p.indent--
	p.writeIndent()
	p.w.WriteString("}\n")
}

func (p *Printer) AddPostTestedLoopHeader() {
	p.writeIndent()
	p.w.WriteString("do {\n")
	p.indent++
}

func (p *Printer) AddPostTestedLoopEnd(cond bexpr.Expr) {
	p.indent--
	p.writeIndent()
	fmt.Fprintf(p.w, "} while (%s);\n", p.ctx.renderExpr(cond, precNone))
}

func (p *Printer) AddEndlessLoopHeader() {
	p.writeIndent()
	p.w.WriteString("for (;;) {\n")
	p.indent++
}

func (p *Printer) AddEndlessLoopEnd() {
	p.indent--
	p.writeIndent()
	p.w.WriteString("}\n")
}

func (p *Printer) AddLineComment(text string) {
	p.writeIndent()
	fmt.Fprintf(p.w, "/* %s */\n", text)
}

func (p *Printer) AddLocal(name string, t string) {
	p.writeIndent()
	fmt.Fprintf(p.w, "%s;\n", declString(t, name))
}

func (p *Printer) AddGlobal(name, t string, initial string) {
	if initial != "" {
		fmt.Fprintf(p.w, "%s = %s;\n", declString(t, name), initial)
		return
	}
	fmt.Fprintf(p.w, "%s;\n", declString(t, name))
}

func (p *Printer) AddPrototype(sig string) {
	fmt.Fprintf(p.w, "%s;\n", sig)
}

func (p *Printer) AddFunctionSignature(name string, returnType string, params []string) {
	fmt.Fprintf(p.w, "%s %s(%s)", returnType, name, strings.Join(params, ", "))
}

func (p *Printer) AddProcStart() {
	p.w.WriteString(" {\n")
	p.indent++
}

func (p *Printer) AddProcEnd() {
	p.indent--
	p.w.WriteString("}\n")
}

// declString renders a declaration, splitting an array-suffixed type
// ("int[4]") onto the identifier the way C requires ("int name[4]"), and
// splicing name into a function-pointer type's "(*)(...)" marker (spec.md
// §6: function pointers become "R (*name)(P)").
func declString(t, name string) string {
	if i := strings.Index(t, "(*)"); i >= 0 {
		return strings.Replace(t, "(*)", "(*"+name+")", 1)
	}
	if i := strings.Index(t, "["); i >= 0 {
		return fmt.Sprintf("%s %s%s", t[:i], name, t[i:])
	}
	return fmt.Sprintf("%s %s", t, name)
}

// diagnostic emits a line comment describing a recoverable emission
// failure (spec.md §7: "type failure during emission" logs and proceeds
// rather than aborting the whole program).
func (p *Printer) diagnostic(format string, args ...any) {
	p.AddLineComment(fmt.Sprintf(format, args...))
}

// --- Structural traversal (spec.md §4.J) ---

// EmitBody walks proc's structurally-annotated CFG from its entry block
// and writes the resulting statement sequence into p's buffer, pruning
// any label never referenced by a goto.
func (p *Printer) EmitBody(g *bcfg.CFG) {
	p.traverse(g, g.Entry)
	p.pruneUnusedLabels()
}

func (p *Printer) traverse(g *bcfg.CFG, id bcfg.BBID) {
	for {
		bb, ok := g.Blocks[id]
		if !ok || p.generated[id] {
			return
		}

		if p.inGotoSet(id) {
			p.AddGoto(bstmt.BlockID(id))
			return
		}
		if p.atFollowBoundary(id) {
			p.AddLabel(id)
			return
		}

		p.generated[id] = true
		if p.usedLabels[id] {
			p.AddLabel(id)
		}
		p.emitStatements(bb)

		switch bb.StructType {
		case bcfg.Loop, bcfg.LoopCond:
			p.emitLoop(g, bb)
			return
		case bcfg.Cond:
			p.emitCond(g, bb)
			return
		default:
			if len(bb.Succs) == 1 {
				id = bb.Succs[0]
				continue
			}
			return
		}
	}
}

func (p *Printer) inGotoSet(id bcfg.BBID) bool { return p.gotoSet[id] }

func (p *Printer) atFollowBoundary(id bcfg.BBID) bool {
	if len(p.followSet) == 0 {
		return false
	}
	return p.followSet[len(p.followSet)-1] == id
}

// emitStatements prints every non-terminator statement in bb via
// GenerateCode; the terminator (Branch/Goto/Case) is consumed by the
// structural dispatch in emitLoop/emitCond instead.
func (p *Printer) emitStatements(bb *bcfg.BasicBlock) {
	stmts := bb.Stmts()
	for i, s := range stmts {
		if i == len(stmts)-1 {
			switch s.(type) {
			case *bstmt.Branch, *bstmt.Goto, *bstmt.Case:
				continue
			}
		}
		s.GenerateCode(p, bstmt.BlockID(bb.ID))
	}
}

func (p *Printer) pushFollow(id bcfg.BBID) { p.followSet = append(p.followSet, id) }
func (p *Printer) popFollow()              { p.followSet = p.followSet[:len(p.followSet)-1] }

func (p *Printer) emitLoop(g *bcfg.CFG, bb *bcfg.BasicBlock) {
	p.pushFollow(bb.LoopFollow)
	switch bb.LoopType {
	case bcfg.PreTested:
		cond, body := loopCondAndBody(g, bb)
		p.AddPretestedLoopHeader(cond)
		p.traverseLoopBody(g, body, bb)
		p.AddPretestedLoopEnd()
	case bcfg.PostTested:
		p.AddPostTestedLoopHeader()
		p.traverseLoopBody(g, firstBodySucc(bb), bb)
		latch := g.Blocks[bb.Latch]
		cond := latchCond(latch)
		p.AddPostTestedLoopEnd(cond)
	default:
		p.AddEndlessLoopHeader()
		p.traverseLoopBody(g, firstBodySucc(bb), bb)
		p.AddEndlessLoopEnd()
	}
	p.popFollow()
	p.traverse(g, bb.LoopFollow)
}

// traverseLoopBody walks the loop body starting at start. traverse
// itself stops the recursion once it loops back to the (already
// generated) header, so a single-block body — where start is itself the
// latch — still gets its own statements emitted before that happens.
func (p *Printer) traverseLoopBody(g *bcfg.CFG, start bcfg.BBID, header *bcfg.BasicBlock) {
	p.traverse(g, start)
}

func firstBodySucc(bb *bcfg.BasicBlock) bcfg.BBID {
	for _, s := range bb.Succs {
		if s != bb.LoopFollow {
			return s
		}
	}
	if len(bb.Succs) > 0 {
		return bb.Succs[0]
	}
	return bb.ID
}

// loopCondAndBody extracts a PreTested header's branch condition and the
// successor that continues into the loop body (the successor that is not
// the loop follow).
func loopCondAndBody(g *bcfg.CFG, header *bcfg.BasicBlock) (bexpr.Expr, bcfg.BBID) {
	cond := branchCond(header)
	body := firstBodySucc(header)
	return cond, body
}

func branchCond(bb *bcfg.BasicBlock) bexpr.Expr {
	stmts := bb.Stmts()
	if len(stmts) == 0 {
		return nil
	}
	if br, ok := stmts[len(stmts)-1].(*bstmt.Branch); ok {
		return br.Cond
	}
	return nil
}

func latchCond(latch *bcfg.BasicBlock) bexpr.Expr { return branchCond(latch) }

// emitCond dispatches an if/if-else/switch header. When bb itself is
// flagged unstructured (spec.md §4.I: one of its own edges jumps out of
// its enclosing loop to somewhere other than the loop follow, or into
// the middle of a case body), the follow targets already enclosing this
// point are pushed onto gotoSet before recursing into the arms, so that
// an arm which lands on one of them by ordinary fallthrough renders an
// explicit goto instead of inlining a copy of code that belongs at an
// outer nesting level (spec.md §4.J: "push outer follows onto gotoSet
// for jump-in/out").
func (p *Printer) emitCond(g *bcfg.CFG, bb *bcfg.BasicBlock) {
	if bb.UnstructType != bcfg.Structured {
		for _, f := range p.followSet {
			p.gotoSet[f] = true
		}
	}
	p.pushFollow(bb.CondFollow)
	switch bb.CondType {
	case bcfg.IfThen:
		p.AddIfCondHeader(branchCond(bb))
		p.traverse(g, thenSucc(bb))
		p.AddIfCondEnd()
	case bcfg.IfElse:
		p.AddIfElseCondHeader(negate(branchCond(bb)))
		p.traverse(g, elseSucc(bb))
		p.AddIfElseCondEnd()
	case bcfg.IfThenElse:
		p.AddIfElseCondHeader(branchCond(bb))
		p.traverse(g, thenSucc(bb))
		p.AddIfElseCondOption()
		p.traverse(g, elseSucc(bb))
		p.AddIfElseCondEnd()
	case bcfg.Case:
		p.emitCase(g, bb)
	}
	p.popFollow()
	p.traverse(g, bb.CondFollow)
}

func thenSucc(bb *bcfg.BasicBlock) bcfg.BBID {
	if len(bb.Succs) > 0 {
		return bb.Succs[0]
	}
	return bb.ID
}

func elseSucc(bb *bcfg.BasicBlock) bcfg.BBID {
	if len(bb.Succs) > 1 {
		return bb.Succs[1]
	}
	return bb.ID
}

// negate wraps cond in a logical-not, used for IfElse where the taken
// branch is the fall-through-to-follow arm and the printed "then" body is
// the non-taken successor.
func negate(cond bexpr.Expr) bexpr.Expr {
	if cond == nil {
		return nil
	}
	return bexpr.New(bexpr.OpLogNot, cond)
}

func (p *Printer) emitCase(g *bcfg.CFG, bb *bcfg.BasicBlock) {
	stmts := bb.Stmts()
	var info bstmt.SwitchInfo
	if len(stmts) > 0 {
		if c, ok := stmts[len(stmts)-1].(*bstmt.Case); ok {
			info = c.Info
		}
	}
	p.AddCaseCondHeader(info.Expr)

	targets := append([]bstmt.CaseTarget(nil), info.Targets...)
	sort.Slice(targets, func(i, j int) bool { return targets[i].Value < targets[j].Value })

	for _, t := range targets {
		p.AddCaseCondOption(t.Value)
		p.traverse(g, bcfg.BBID(t.Block))
		p.AddBreak()
		p.AddCaseCondOptionEnd()
	}
	if info.HasDefault {
		p.AddCaseCondElse()
		p.traverse(g, bcfg.BBID(info.Default))
		p.AddBreak()
		p.AddCaseCondOptionEnd()
	}
	p.AddCaseCondEnd()
}

// pruneUnusedLabels removes any "bb0x...:" line from the rendered body
// whose address was never the target of a goto (spec.md §4.J: "unused
// labels are pruned after emission").
func (p *Printer) pruneUnusedLabels() {
	lines := strings.Split(p.w.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSuffix(strings.TrimSpace(line), ":")
		if strings.HasPrefix(trimmed, "bb0x") {
			var addr uint64
			fmt.Sscanf(trimmed, "bb0x%x", &addr)
			if !p.usedLabels[bcfg.BBID(addr)] {
				continue
			}
		}
		out = append(out, line)
	}
	p.w.Reset()
	p.w.WriteString(strings.Join(out, "\n"))
}

// Body returns the procedure's rendered statement text.
func (p *Printer) Body() string { return p.w.String() }

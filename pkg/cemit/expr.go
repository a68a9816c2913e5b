// Package cemit implements the C emitter (spec.md §4.J): it walks a
// structurally-analyzed procedure and prints it as C source, honoring the
// structural shapes pkg/structural assigns (while/do-while/for, if/else,
// switch) and falling back to goto/label for anything UnstructType marks.
//
// Grounded on pkg/cminor/printer.go's Printer{w io.Writer, indent int}
// shape and its writeIndent/fmt.Fprintf rendering style, generalized from
// Cminor's prefix-operator notation to C's infix-with-precedence notation.
package cemit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/btypes"
	"github.com/skyripley/boomerang/pkg/project"
)

// exprContext supplies the name/type lookups the expression printer needs
// beyond the tree itself: a procedure's bound symbols and locals, and the
// program's procedure/global tables for addresses the procedure itself
// knows nothing about.
type exprContext struct {
	proc *project.UserProc
	prog *project.Program
}

// renderExpr prints e at the given parent precedence, wrapping it in
// parentheses iff e's own top-level operator binds less tightly.
func (c exprContext) renderExpr(e bexpr.Expr, parent precedence) string {
	if e == nil {
		return ""
	}
	s, own := c.render(e)
	if own < parent {
		return "(" + s + ")"
	}
	return s
}

func (c exprContext) render(e bexpr.Expr) (string, precedence) {
	if name, ok := c.proc.SymbolFor(e); ok {
		return name, precPrim
	}

	switch v := e.(type) {
	case bexpr.IntConst:
		return c.renderInt(v.Value, e), precPrim
	case bexpr.LongConst:
		return c.renderInt(v.Value, e) + "L", precPrim
	case bexpr.FloatConst:
		return renderFloat(v.Value), precPrim
	case bexpr.StrConst:
		return strconv.Quote(v.Value), precPrim
	case bexpr.FuncConst:
		return c.procName(uint64(v.ProcID)), precPrim
	case bexpr.AddrConst:
		return c.renderAddrConst(v.Addr), precPrim
	case bexpr.RegOf:
		return fmt.Sprintf("r%d", v.Reg), precPrim
	case bexpr.Temp:
		return v.String(), precPrim
	case bexpr.Flags:
		return "flags", precPrim
	case bexpr.Nil:
		return "", precPrim
	}

	op := e.Op()
	prec := precedenceOf(op)
	children := e.Children()

	switch op {
	case bexpr.OpMemOf:
		return "*" + c.renderExpr(children[0], precUnary), precUnary
	case bexpr.OpAddrOf:
		if c.suppressAddrOf(children[0]) {
			return c.renderExpr(children[0], precUnary), precUnary
		}
		return "&" + c.renderExpr(children[0], precUnary), precUnary
	case bexpr.OpNeg:
		return "-" + c.renderExpr(children[0], precUnary), precUnary
	case bexpr.OpFNeg:
		return "-" + c.renderExpr(children[0], precUnary), precUnary
	case bexpr.OpFAbs:
		return "fabs(" + c.renderExpr(children[0], precNone) + ")", precPrim
	case bexpr.OpNot:
		return "~" + c.renderExpr(children[0], precUnary), precUnary
	case bexpr.OpLogNot:
		return "!" + c.renderExpr(children[0], precUnary), precUnary
	case bexpr.OpSgnEx, bexpr.OpZfill, bexpr.OpTruncu, bexpr.OpTruncs,
		bexpr.OpFsize, bexpr.OpItof, bexpr.OpFtoi, bexpr.OpFtrunc, bexpr.OpRound:
		return fmt.Sprintf("(%s)%s", castName(op), c.renderExpr(children[0], precUnary)), precUnary

	case bexpr.OpSubscript:
		return fmt.Sprintf("%s[%s]", c.renderExpr(children[0], precPrim), c.renderExpr(children[1], precNone)), precPrim
	case bexpr.OpMember:
		return fmt.Sprintf("%s.%s", c.renderExpr(children[0], precPrim), c.renderExpr(children[1], precPrim)), precPrim
	case bexpr.OpArrayOf:
		return fmt.Sprintf("%s[%s]", c.renderExpr(children[0], precPrim), c.renderExpr(children[1], precNone)), precPrim
	case bexpr.OpBitfield:
		return fmt.Sprintf("(%s >> %s) & %s", c.renderExpr(children[0], precShift),
			c.renderExpr(children[1], precNone), c.renderExpr(children[2], precNone)), precBitAnd

	case bexpr.OpTernary:
		return fmt.Sprintf("%s ? %s : %s",
			c.renderExpr(children[0], precLogOr+1),
			c.renderExpr(children[1], precCond),
			c.renderExpr(children[2], precCond+1)), precCond

	case bexpr.OpPlus, bexpr.OpFPlus:
		if step, base, ok := c.pointerStep(children[0], children[1]); ok {
			if step == 1 {
				return base + "++", precPrim
			}
			return fmt.Sprintf("%s += %d", base, step), precAssign
		}
		return c.binary(children[0], children[1], "+", prec), prec
	case bexpr.OpMinus, bexpr.OpFMinus:
		if step, base, ok := c.pointerStep(children[0], children[1]); ok {
			if step == 1 {
				return base + "--", precPrim
			}
			return fmt.Sprintf("%s -= %d", base, step), precAssign
		}
		return c.binary(children[0], children[1], "-", prec), prec

	case bexpr.OpMult, bexpr.OpFMult:
		return c.binary(children[0], children[1], "*", prec), prec
	case bexpr.OpMultU:
		return c.binary(children[0], children[1], "*", prec), prec
	case bexpr.OpDiv, bexpr.OpDivU, bexpr.OpFDiv:
		return c.binary(children[0], children[1], "/", prec), prec
	case bexpr.OpMod, bexpr.OpModU:
		return c.binary(children[0], children[1], "%", prec), prec
	case bexpr.OpAnd:
		return c.binary(children[0], children[1], "&", prec), prec
	case bexpr.OpOr:
		return c.binary(children[0], children[1], "|", prec), prec
	case bexpr.OpXor:
		return c.binary(children[0], children[1], "^", prec), prec
	case bexpr.OpShl:
		return c.binary(children[0], children[1], "<<", prec), prec
	case bexpr.OpShr, bexpr.OpShrA:
		return c.binary(children[0], children[1], ">>", prec), prec
	case bexpr.OpRotl, bexpr.OpRotr:
		name := "rotl"
		if op == bexpr.OpRotr {
			name = "rotr"
		}
		return fmt.Sprintf("%s(%s, %s)", name,
			c.renderExpr(children[0], precNone), c.renderExpr(children[1], precNone)), precPrim
	case bexpr.OpLogAnd:
		return c.binary(children[0], children[1], "&&", prec), prec
	case bexpr.OpLogOr:
		return c.binary(children[0], children[1], "||", prec), prec
	case bexpr.OpEquals, bexpr.OpFEquals:
		return c.binary(children[0], children[1], "==", prec), prec
	case bexpr.OpNotEqual, bexpr.OpFNotEqual:
		return c.binary(children[0], children[1], "!=", prec), prec
	case bexpr.OpLess, bexpr.OpLessU, bexpr.OpFLess:
		return c.binary(children[0], children[1], "<", prec), prec
	case bexpr.OpLessEq, bexpr.OpLessEqU, bexpr.OpFLessEq:
		return c.binary(children[0], children[1], "<=", prec), prec
	case bexpr.OpGtr, bexpr.OpGtrU, bexpr.OpFGtr:
		return c.binary(children[0], children[1], ">", prec), prec
	case bexpr.OpGtrEq, bexpr.OpGtrEqU, bexpr.OpFGtrEq:
		return c.binary(children[0], children[1], ">=", prec), prec

	case bexpr.OpList:
		elems := bexpr.ListElems(e)
		parts := make([]string, len(elems))
		for i, el := range elems {
			parts[i] = c.renderExpr(el, precAssign)
		}
		return strings.Join(parts, ", "), precPrim
	}

	return fmt.Sprintf("/* %s */", op.String()), precPrim
}

func (c exprContext) binary(lhs, rhs bexpr.Expr, op string, prec precedence) string {
	return fmt.Sprintf("%s %s %s", c.renderExpr(lhs, prec), op, c.renderExpr(rhs, prec+1))
}

// renderInt formats an integer constant decimal if its magnitude is under
// 2048, hex otherwise, and appends a U suffix when the value is used where
// an unsigned type is expected (spec.md §4.J "unsigned heuristics").
func (c exprContext) renderInt(v int64, e bexpr.Expr) string {
	unsigned := c.isUnsignedContext(e)
	if v > -2048 && v < 2048 {
		if unsigned && v >= 0 {
			return fmt.Sprintf("%dU", v)
		}
		return strconv.FormatInt(v, 10)
	}
	if unsigned {
		return fmt.Sprintf("0x%xU", uint64(v))
	}
	if v < 0 {
		return fmt.Sprintf("-0x%x", -v)
	}
	return fmt.Sprintf("0x%x", v)
}

func (c exprContext) isUnsignedContext(e bexpr.Expr) bool {
	name, ok := c.proc.SymbolFor(e)
	if !ok {
		return false
	}
	t, ok := c.proc.LocalType(name)
	if !ok {
		return false
	}
	i, ok := btypes.AsInteger(t)
	return ok && i.Sign == btypes.Unsigned
}

// renderFloat always shows a decimal point, matching C float literal
// syntax even for whole-valued constants.
func renderFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func castName(op bexpr.Operator) string {
	switch op {
	case bexpr.OpSgnEx:
		return "int"
	case bexpr.OpZfill:
		return "unsigned int"
	case bexpr.OpTruncu:
		return "unsigned short"
	case bexpr.OpTruncs:
		return "short"
	case bexpr.OpFsize, bexpr.OpFtrunc, bexpr.OpRound:
		return "double"
	case bexpr.OpItof:
		return "double"
	case bexpr.OpFtoi:
		return "int"
	}
	return "int"
}

// procName resolves addr to its display name via the program's procedure
// index, falling back to a synthesized address-based name for procedures
// the current module hasn't discovered (an external library call).
func (c exprContext) procName(addr uint64) string {
	if c.prog != nil {
		if proc, _, ok := c.prog.FindProc(addr); ok {
			return proc.ProcName()
		}
	}
	return fmt.Sprintf("sub_%x", addr)
}

// renderAddrConst renders a bare address constant as its global's name
// when one is registered, or as a raw address-cast otherwise.
func (c exprContext) renderAddrConst(addr uint64) string {
	if c.prog != nil {
		if g, ok := c.prog.GlobalAt(addr); ok {
			return g.Name
		}
		if proc, _, ok := c.prog.FindProc(addr); ok {
			return proc.ProcName()
		}
	}
	return fmt.Sprintf("0x%x", addr)
}

// suppressAddrOf reports whether operand should print without a leading
// & because it already denotes an address by itself: an array-typed
// global or a string literal, both of which decay to a pointer value in C
// without an explicit address-of (spec.md §4.J "array globals/string
// pointers suppress &").
func (c exprContext) suppressAddrOf(e bexpr.Expr) bool {
	if _, ok := e.(bexpr.StrConst); ok {
		return true
	}
	if ac, ok := e.(bexpr.AddrConst); ok && c.prog != nil {
		if g, ok := c.prog.GlobalAt(ac.Addr); ok {
			_, isArray := btypes.AsArray(g.Type)
			return isArray
		}
	}
	return false
}

// pointerStep recognizes lhs +/- rhs where lhs's bound local is a pointer
// and rhs is an integer constant equal to the pointee's byte size,
// returning a step of 1 and the local's name so the caller can render it
// as ++/-- rather than raw pointer arithmetic. Any other constant, such as
// a multiple of the pointee size, is not recognized (spec.md §4.J).
func (c exprContext) pointerStep(lhs, rhs bexpr.Expr) (int, string, bool) {
	name, ok := c.proc.SymbolFor(lhs)
	if !ok {
		return 0, "", false
	}
	t, ok := c.proc.LocalType(name)
	if !ok {
		return 0, "", false
	}
	ptr, ok := btypes.AsPointer(t)
	if !ok {
		return 0, "", false
	}
	elemSize := btypes.SizeOf(ptr.Pointee) / 8
	if elemSize == 0 {
		elemSize = 1
	}
	if ic, ok := rhs.(bexpr.IntConst); ok && int(ic.Value) == elemSize {
		return 1, name, true
	}
	return 0, "", false
}

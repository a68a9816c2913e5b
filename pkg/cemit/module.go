package cemit

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/btypes"
	"github.com/skyripley/boomerang/pkg/project"
	"github.com/skyripley/boomerang/pkg/structural"
	"tlog.app/go/errors"
)

// RenderModule assembles mod's whole-file C rendering: global
// declarations, then a function prototype per UserProc, then a full
// definition per UserProc, in the order spec.md §6 names. Each
// definition runs structural.Analyze on its CFG before emitting, so
// RenderModule is the single entry point a caller (cmd/boomerangc) needs
// once a Module's procedures have reached project.Final.
func RenderModule(mod *project.Module) string {
	prog := mod.Program()
	header := NewPrinter(nil, prog)
	for _, g := range prog.Globals() {
		header.AddGlobal(g.Name, cTypeString(g.Type), renderLiteral(g.Initial))
	}

	procs := userProcs(mod)

	protos := NewPrinter(nil, prog)
	for _, up := range procs {
		protos.AddPrototype(signature(up, prog))
	}

	body := ""
	for _, up := range procs {
		body += renderProc(up, prog)
	}

	out := header.Body()
	if out != "" {
		out += "\n"
	}
	out += protos.Body()
	if protos.Body() != "" {
		out += "\n"
	}
	out += body
	return out
}

// WriteModule writes the already-rendered src for mod to
// <dir>/<mod.Name>.c, creating the output directory
// if needed (spec.md §6 EXPANSION: one .c file per module).
func WriteModule(dir string, mod *project.Module, src string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory %s", dir)
	}
	path := filepath.Join(dir, mod.Name+".c")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return errors.Wrap(err, "write module file %s", path)
	}
	return nil
}

func userProcs(mod *project.Module) []*project.UserProc {
	var out []*project.UserProc
	for _, p := range mod.Procedures() {
		if up, ok := p.(*project.UserProc); ok {
			out = append(out, up)
		}
	}
	return out
}

func renderProc(up *project.UserProc, prog *project.Program) string {
	structural.Analyze(up.CFG())

	p := NewPrinter(up, prog)
	p.AddFunctionSignature(up.Name, returnTypeString(up), paramDecls(up))
	p.AddProcStart()
	for _, name := range up.Locals() {
		t, _ := up.LocalType(name)
		p.AddLocal(name, cTypeString(t))
	}
	p.EmitBody(up.CFG())
	p.AddProcEnd()
	return p.Body()
}

func signature(up *project.UserProc, prog *project.Program) string {
	return fmt.Sprintf("%s %s(%s)", returnTypeString(up), up.Name, joinParams(paramDecls(up)))
}

func joinParams(decls []string) string {
	if len(decls) == 0 {
		return "void"
	}
	s := decls[0]
	for _, d := range decls[1:] {
		s += ", " + d
	}
	return s
}

func returnTypeString(up *project.UserProc) string {
	rets := up.Returns()
	if len(rets) == 0 {
		return "void"
	}
	return cTypeString(exprType(up, rets[0]))
}

func paramDecls(up *project.UserProc) []string {
	params := up.Params()
	decls := make([]string, len(params))
	for i, e := range params {
		name := paramName(up, e, i)
		decls[i] = declString(cTypeString(exprType(up, e)), name)
	}
	return decls
}

func paramName(up *project.UserProc, e bexpr.Expr, index int) string {
	if name, ok := up.SymbolFor(e); ok {
		return name
	}
	if t, ok := e.(bexpr.Temp); ok {
		return t.Name
	}
	return fmt.Sprintf("arg%d", index)
}

// exprType resolves e's declared type via the procedure's local-type
// table when e names a symbol, falling back to an unsigned 32-bit word
// (the decoder's default guess, spec.md §4.B) when no type analysis
// result is on file for it.
func exprType(up *project.UserProc, e bexpr.Expr) btypes.Type {
	if name, ok := up.SymbolFor(e); ok {
		if t, ok := up.LocalType(name); ok {
			return t
		}
	}
	if t, ok := e.(bexpr.Temp); ok {
		if lt, ok := up.LocalType(t.Name); ok {
			return lt
		}
	}
	return btypes.Integer{Bits: 32, Sign: btypes.Unsigned}
}

// renderLiteral renders a global's initial-value expression outside any
// procedure context; globals read from a data section only ever carry a
// leaf constant, never a symbol reference, so this skips the full
// exprContext machinery that needs a bound UserProc.
func renderLiteral(e bexpr.Expr) string {
	switch v := e.(type) {
	case nil:
		return ""
	case bexpr.IntConst:
		return strconv.FormatInt(v.Value, 10)
	case bexpr.LongConst:
		return strconv.FormatInt(v.Value, 10) + "L"
	case bexpr.FloatConst:
		return renderFloat(v.Value)
	case bexpr.StrConst:
		return strconv.Quote(v.Value)
	case bexpr.AddrConst:
		return fmt.Sprintf("0x%x", v.Addr)
	case bexpr.Nil:
		return ""
	default:
		return ""
	}
}

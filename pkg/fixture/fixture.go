// Package fixture loads a YAML-described toy program into a
// decoder.Fake-backed project.Program, the same way the teacher's own
// integration tests (cmd/ralph-cc/integration_test.go's TestE2EAsmYAML /
// TestE2ERuntimeYAML) drive a compiler run from a table-driven YAML
// fixture instead of a real source file. It exists because instruction
// decoding from raw bytes is explicitly out of scope (spec.md §1): this
// is the stand-in a caller uses to exercise the pipeline end to end
// without a real disassembler or binary loader.
package fixture

import (
	"os"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/btypes"
	"github.com/skyripley/boomerang/pkg/decoder"
	"github.com/skyripley/boomerang/pkg/project"
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// Program is the top-level YAML document shape.
type Program struct {
	Module     string       `yaml:"module"`
	WordSize   int          `yaml:"wordSize"`
	Win32      bool         `yaml:"win32"`
	Procedures []Procedure  `yaml:"procedures"`
	Globals    []Global     `yaml:"globals"`
	Signatures []LibSig     `yaml:"librarySignatures"`
}

// Global describes one program.DefineGlobal entry.
type Global struct {
	Name string `yaml:"name"`
	Addr uint64 `yaml:"addr"`
	Type Type   `yaml:"type"`
}

// LibSig describes one decoder.Signature registered under a library
// procedure name, used to resolve calls whose destination is never
// itself decoded (spec.md §7 "missing callee/signature").
type LibSig struct {
	Name      string `yaml:"name"`
	NumParams int    `yaml:"numParams"`
	HasReturn bool   `yaml:"hasReturn"`
}

// Procedure describes one UserProc: its entry address and the sequence
// of decoded instructions the Fake decoder should answer with.
type Procedure struct {
	Name         string        `yaml:"name"`
	Entry        uint64        `yaml:"entry"`
	Instructions []Instruction `yaml:"instructions"`
}

// Instruction is one machine-instruction-worth of RTL: an address, its
// byte length (so the sweep in driver.decode can advance), and the
// statements it decodes to.
type Instruction struct {
	Addr   uint64 `yaml:"addr"`
	Length int    `yaml:"length"`
	Stmts  []Stmt `yaml:"stmts"`
}

// Stmt is a tagged union over the bstmt.Stmt variants a fixture can
// build; exactly one field should be set per entry.
type Stmt struct {
	Assign *AssignStmt `yaml:"assign"`
	Branch *BranchStmt `yaml:"branch"`
	Goto   *GotoStmt   `yaml:"goto"`
	Call   *CallStmt   `yaml:"call"`
	Return *ReturnStmt `yaml:"return"`
}

type AssignStmt struct {
	Lhs  Expr `yaml:"lhs"`
	Rhs  Expr `yaml:"rhs"`
	Type Type `yaml:"type"`
}

type BranchStmt struct {
	Cond  Expr   `yaml:"cond"`
	Taken uint64 `yaml:"taken"`
}

type GotoStmt struct {
	Dest uint64 `yaml:"dest"`
}

type CallStmt struct {
	// DestAddr, if nonzero, is a direct call's target procedure address
	// (resolved to a FuncConst/DestProc pair). Dest, if set instead,
	// builds an unresolved indirect-call target expression.
	DestAddr uint64 `yaml:"destAddr"`
	Dest     *Expr  `yaml:"dest"`
	Args     []Expr `yaml:"args"`
	Define   []Expr `yaml:"define"`
}

type ReturnStmt struct {
	Modifieds []Expr `yaml:"modifieds"`
	Returns   []Expr `yaml:"returns"`
}

// Expr is a tagged union over the bexpr.Expr leaf/node shapes a fixture
// can build. Exactly one leaf field, or Op+Args, should be set.
type Expr struct {
	Reg   *int     `yaml:"reg"`
	Temp  string   `yaml:"temp"`
	Int   *int64   `yaml:"int"`
	Long  *int64   `yaml:"long"`
	Float *float64 `yaml:"float"`
	Str   *string  `yaml:"str"`
	Addr  *uint64  `yaml:"addr"`
	Func  *uint64  `yaml:"func"`

	Op   string `yaml:"op"`
	Args []Expr `yaml:"args"`
}

// Type is a tagged union over the btypes.Type variants a fixture can
// name; the zero value resolves to an unsigned 32-bit Integer, the
// decoder's usual guess before type analysis runs.
type Type struct {
	Void    bool `yaml:"void"`
	Bits    int  `yaml:"bits"`
	Signed  bool `yaml:"signed"`
	Pointer *Type `yaml:"pointer"`
}

// Load reads and parses a YAML fixture file into a Program document.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read fixture %s", path)
	}
	var doc Program
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse fixture %s", path)
	}
	if doc.WordSize == 0 {
		doc.WordSize = 64
	}
	if doc.Module == "" {
		doc.Module = "fixture"
	}
	return &doc, nil
}

// Build turns a parsed fixture document into a decoder.Fake and a
// project.Program with one Module holding every described UserProc,
// ready for driver.Decompiler.Decompile.
func Build(doc *Program, settings project.Settings) (*decoder.Fake, *project.Program, error) {
	settings.WordSize = doc.WordSize
	fake := decoder.NewFake()
	fake.Win32 = doc.Win32
	for _, sig := range doc.Signatures {
		fake.Signatures[sig.Name] = decoder.Signature{Name: sig.Name, NumParams: sig.NumParams, HasReturn: sig.HasReturn}
	}

	prog := project.NewProgram(settings, fake, fake)
	mod := project.NewModule(doc.Module)
	prog.AddModule(mod)

	for _, g := range doc.Globals {
		prog.DefineGlobal(&project.Global{Name: g.Name, Addr: g.Addr, Type: buildType(g.Type)})
	}

	for _, procDoc := range doc.Procedures {
		up := project.NewUserProc(mod, procDoc.Name, procDoc.Entry)
		mod.AddProc(up)
		for _, inst := range procDoc.Instructions {
			rtl, err := buildRTL(inst)
			if err != nil {
				return nil, nil, errors.Wrap(err, "proc %s instruction 0x%x", procDoc.Name, inst.Addr)
			}
			length := inst.Length
			if length == 0 {
				length = 4
			}
			fake.Instructions[inst.Addr] = decoder.FakeInstruction{RTL: rtl, Length: length, IsValid: true}
		}
	}
	return fake, prog, nil
}

var idSeq bstmt.StmtID

// nextID hands out a fresh statement id for fixture-built statements.
// Fixtures are loaded once at startup, well before any procedure's own
// AllocStmtID counter runs, so a package-level counter cannot collide
// with per-procedure ids minted later by the pipeline.
func nextID() bstmt.StmtID {
	idSeq++
	return idSeq
}

func buildRTL(inst Instruction) (*bstmt.RTL, error) {
	rtl := bstmt.NewRTL(inst.Addr)
	for _, s := range inst.Stmts {
		stmt, err := buildStmt(s)
		if err != nil {
			return nil, err
		}
		rtl.Append(stmt)
	}
	return rtl, nil
}

func buildStmt(s Stmt) (bstmt.Stmt, error) {
	switch {
	case s.Assign != nil:
		lhs, err := buildExpr(s.Assign.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := buildExpr(s.Assign.Rhs)
		if err != nil {
			return nil, err
		}
		return bstmt.NewAssign(nextID(), buildType(s.Assign.Type), lhs, rhs), nil
	case s.Branch != nil:
		cond, err := buildExpr(s.Branch.Cond)
		if err != nil {
			return nil, err
		}
		return bstmt.NewBranch(nextID(), cond, bstmt.BlockID(s.Branch.Taken)), nil
	case s.Goto != nil:
		return bstmt.NewGoto(nextID(), bstmt.BlockID(s.Goto.Dest)), nil
	case s.Call != nil:
		args, err := buildExprs(s.Call.Args)
		if err != nil {
			return nil, err
		}
		define, err := buildExprs(s.Call.Define)
		if err != nil {
			return nil, err
		}
		if s.Call.DestAddr != 0 {
			c := bstmt.NewCall(nextID(), bexpr.FuncConst{ProcID: int64(s.Call.DestAddr)}, args, define)
			c.DestProc = int64(s.Call.DestAddr)
			return c, nil
		}
		dest, err := buildExpr(derefExpr(s.Call.Dest))
		if err != nil {
			return nil, err
		}
		return bstmt.NewCall(nextID(), dest, args, define), nil
	case s.Return != nil:
		mods, err := buildExprs(s.Return.Modifieds)
		if err != nil {
			return nil, err
		}
		rets, err := buildExprs(s.Return.Returns)
		if err != nil {
			return nil, err
		}
		return bstmt.NewReturn(nextID(), mods, rets), nil
	default:
		return nil, errors.New("fixture: statement entry has no recognized variant set")
	}
}

func derefExpr(e *Expr) Expr {
	if e == nil {
		return Expr{}
	}
	return *e
}

func buildExprs(es []Expr) ([]bexpr.Expr, error) {
	out := make([]bexpr.Expr, len(es))
	for i, e := range es {
		v, err := buildExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func buildExpr(e Expr) (bexpr.Expr, error) {
	switch {
	case e.Reg != nil:
		return bexpr.RegOf{Reg: *e.Reg}, nil
	case e.Temp != "":
		return bexpr.Temp{Name: e.Temp}, nil
	case e.Int != nil:
		return bexpr.IntConst{Value: *e.Int}, nil
	case e.Long != nil:
		return bexpr.LongConst{Value: *e.Long}, nil
	case e.Float != nil:
		return bexpr.FloatConst{Value: *e.Float}, nil
	case e.Str != nil:
		return bexpr.StrConst{Value: *e.Str}, nil
	case e.Addr != nil:
		return bexpr.AddrConst{Addr: *e.Addr}, nil
	case e.Func != nil:
		return bexpr.FuncConst{ProcID: int64(*e.Func)}, nil
	case e.Op != "":
		op, ok := operatorByName[e.Op]
		if !ok {
			return nil, errors.New("fixture: unknown operator %q", e.Op)
		}
		children, err := buildExprs(e.Args)
		if err != nil {
			return nil, err
		}
		return bexpr.New(op, children...), nil
	default:
		return nil, errors.New("fixture: expression entry has no recognized variant set")
	}
}

var operatorByName = func() map[string]bexpr.Operator {
	m := make(map[string]bexpr.Operator, 150)
	for op := bexpr.OpInvalid; ; op++ {
		name := op.String()
		if name == "?op?" {
			break
		}
		m[name] = op
	}
	return m
}()

func buildType(t Type) btypes.Type {
	switch {
	case t.Void:
		return btypes.Void{}
	case t.Pointer != nil:
		return btypes.Pointer{Pointee: buildType(*t.Pointer)}
	case t.Bits != 0:
		sign := btypes.Unsigned
		if t.Signed {
			sign = btypes.Signed
		}
		return btypes.Integer{Bits: t.Bits, Sign: sign}
	default:
		return btypes.Integer{Bits: 32, Sign: btypes.Unsigned}
	}
}

package project

import (
	"sort"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/btypes"
	"github.com/skyripley/boomerang/pkg/decoder"
)

// Global is a program-level variable: a name, its type, and an optional
// initial value read from the binary's data section (spec.md §3
// "global variables (name -> (type, initial expr))").
type Global struct {
	Name    string
	Type    btypes.Type
	Initial bexpr.Expr
	Addr    uint64
}

// Module owns a set of procedures decoded from one object file or
// library unit, plus an address-to-procedure index for fast callee
// lookup during decoding (spec.md §3).
type Module struct {
	Name  string
	procs map[uint64]Procedure
	order []uint64

	program *Program
}

// NewModule returns an empty Module, to be populated by the driver as it
// discovers procedures.
func NewModule(name string) *Module {
	return &Module{Name: name, procs: make(map[uint64]Procedure)}
}

// AddProc registers proc at its entry address.
func (m *Module) AddProc(proc Procedure) {
	addr := proc.Entry()
	if _, exists := m.procs[addr]; !exists {
		m.order = append(m.order, addr)
	}
	m.procs[addr] = proc
}

// ProcAt returns the procedure starting at addr, if known.
func (m *Module) ProcAt(addr uint64) (Procedure, bool) {
	p, ok := m.procs[addr]
	return p, ok
}

// Procedures returns every procedure in discovery order.
func (m *Module) Procedures() []Procedure {
	out := make([]Procedure, len(m.order))
	for i, addr := range m.order {
		out[i] = m.procs[addr]
	}
	return out
}

// Program returns the owning Program, set by AddModule.
func (m *Module) Program() *Program { return m.program }

// Program is the top-level container: it owns every Module, the global
// variable table, the binary image, and the cross-cutting services
// (Settings, AlertSink, GroupRegistry, TypeTable) every UserProc in every
// Module shares (spec.md §3).
type Program struct {
	Settings Settings
	Alerts   AlertSink
	Groups   *GroupRegistry
	Types    *TypeTable
	Image    decoder.BinaryImage
	Decoder  decoder.Decoder

	modules []*Module
	globals map[uint64]*Global
}

// NewProgram returns a Program ready to receive Modules, wired to dec for
// instruction decoding and image for data-section reads (spec.md §6's
// Decoder and BinaryImage collaborators).
func NewProgram(settings Settings, dec decoder.Decoder, image decoder.BinaryImage) *Program {
	return &Program{
		Settings: settings,
		Alerts:   NoopAlertSink{},
		Groups:   NewGroupRegistry(),
		Types:    NewTypeTable(),
		Image:    image,
		Decoder:  dec,
		globals:  make(map[uint64]*Global),
	}
}

// AddModule registers mod with the program, binding its back-reference.
func (pr *Program) AddModule(mod *Module) {
	mod.program = pr
	pr.modules = append(pr.modules, mod)
}

// Modules returns every registered Module.
func (pr *Program) Modules() []*Module {
	out := make([]*Module, len(pr.modules))
	copy(out, pr.modules)
	return out
}

// DefineGlobal records a global variable at addr.
func (pr *Program) DefineGlobal(g *Global) {
	pr.globals[g.Addr] = g
}

// ResolveGlobal returns the bexpr reference a memory access at addr
// should be rewritten to (passGlobalConstReplace's ResolveGlobal
// collaborator, spec.md §4.F), constructing a fresh Global symbol
// reference from the program's table.
func (pr *Program) ResolveGlobal(addr uint64) (bexpr.Expr, bool) {
	g, ok := pr.globals[addr]
	if !ok {
		return nil, false
	}
	// A global has no SSA version of its own; Temp{Name, 0} gives it a
	// stable identity distinct from any local's versioned Temp.
	return bexpr.Temp{Name: g.Name, Version: 0}, true
}

// FindProc looks up a procedure by entry address across every module.
func (pr *Program) FindProc(addr uint64) (Procedure, *Module, bool) {
	for _, mod := range pr.modules {
		if p, ok := mod.ProcAt(addr); ok {
			return p, mod, true
		}
	}
	return nil, nil, false
}

// GlobalAt returns the Global registered at addr, if any, for the emitter's
// address-constant-to-name rendering.
func (pr *Program) GlobalAt(addr uint64) (*Global, bool) {
	g, ok := pr.globals[addr]
	return g, ok
}

// Globals returns every defined global, in address order, for whole-module
// declaration emission.
func (pr *Program) Globals() []*Global {
	addrs := make([]uint64, 0, len(pr.globals))
	for a := range pr.globals {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	out := make([]*Global, len(addrs))
	for i, a := range addrs {
		out[i] = pr.globals[a]
	}
	return out
}

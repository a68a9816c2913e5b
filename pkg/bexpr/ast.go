package bexpr

import (
	"fmt"
	"hash"
	"hash/fnv"
)

// Expr is the interface implemented by every expression tree node. Nodes
// are treated as immutable by convention (spec.md §3): rewrites return a
// new node for the changed path and reuse untouched subtrees, the same
// copy-on-mutate discipline the teacher's pkg/cabs and pkg/rtl ASTs use
// for their tagged node interfaces.
type Expr interface {
	implExpr()
	// Op returns the node's operator tag.
	Op() Operator
	// Children returns the node's child expressions, 0..3 long.
	Children() []Expr
	// WithChildren returns a shallow copy of the node with its children
	// replaced; len(children) must equal len(Children()).
	WithChildren(children []Expr) Expr
}

// Leaf is implemented by terminal nodes that carry a scalar payload
// instead of children (constants, registers, temporaries, flags).
type Leaf interface {
	Expr
	leafValue() any
}

// --- N-ary node ---

// Node is the generic operator-tagged tree node used for every operator
// that is not a distinguished leaf kind. It carries up to three children.
type Node struct {
	op       Operator
	children []Expr
}

// New constructs a Node for op over the given children. The number of
// children must match op.Arity() for well-formed trees, but New does not
// enforce that so callers can build OpList spines and other variadic
// shapes freely.
func New(op Operator, children ...Expr) Expr {
	return Node{op: op, children: children}
}

func (Node) implExpr()            {}
func (n Node) Op() Operator       { return n.op }
func (n Node) Children() []Expr   { return n.children }
func (n Node) WithChildren(c []Expr) Expr {
	cp := make([]Expr, len(c))
	copy(cp, c)
	return Node{op: n.op, children: cp}
}

// --- Leaves ---

// IntConst is a signed or unsigned integer constant of unresolved width;
// width/signedness is attached later by type analysis (pkg/btypes).
type IntConst struct {
	Value int64
}

func (IntConst) implExpr()          {}
func (IntConst) Op() Operator       { return OpIntConst }
func (IntConst) Children() []Expr   { return nil }
func (c IntConst) WithChildren([]Expr) Expr { return c }
func (c IntConst) leafValue() any    { return c.Value }

// LongConst is a 64-bit integer constant, distinguished from IntConst once
// a procedure's type analysis has determined a value does not fit 32 bits.
type LongConst struct {
	Value int64
}

func (LongConst) implExpr()        {}
func (LongConst) Op() Operator     { return OpLongConst }
func (LongConst) Children() []Expr { return nil }
func (c LongConst) WithChildren([]Expr) Expr { return c }
func (c LongConst) leafValue() any { return c.Value }

// FloatConst is a floating-point constant.
type FloatConst struct {
	Value float64
}

func (FloatConst) implExpr()        {}
func (FloatConst) Op() Operator     { return OpFloatConst }
func (FloatConst) Children() []Expr { return nil }
func (c FloatConst) WithChildren([]Expr) Expr { return c }
func (c FloatConst) leafValue() any { return c.Value }

// StrConst is a string-literal constant (address of a rodata blob once
// emitted).
type StrConst struct {
	Value string
}

func (StrConst) implExpr()        {}
func (StrConst) Op() Operator     { return OpStrConst }
func (StrConst) Children() []Expr { return nil }
func (c StrConst) WithChildren([]Expr) Expr { return c }
func (c StrConst) leafValue() any { return c.Value }

// FuncConst references a procedure by a stable identifier (its entry
// address), resolved to a callable name at emission time via the
// Program's procedure index.
type FuncConst struct {
	ProcID int64
}

func (FuncConst) implExpr()        {}
func (FuncConst) Op() Operator     { return OpFuncConst }
func (FuncConst) Children() []Expr { return nil }
func (c FuncConst) WithChildren([]Expr) Expr { return c }
func (c FuncConst) leafValue() any  { return c.ProcID }

// AddrConst is a bare code/data address constant, e.g. a switch-table
// entry or jump target recovered by indirect-transfer analysis.
type AddrConst struct {
	Addr uint64
}

func (AddrConst) implExpr()        {}
func (AddrConst) Op() Operator     { return OpAddrConst }
func (AddrConst) Children() []Expr { return nil }
func (c AddrConst) WithChildren([]Expr) Expr { return c }
func (c AddrConst) leafValue() any  { return c.Addr }

// RegOf names a machine register by its decoder-assigned id, before SSA
// renaming replaces it with a Temp.
type RegOf struct {
	Reg int
}

func (RegOf) implExpr()        {}
func (RegOf) Op() Operator     { return OpRegOf }
func (RegOf) Children() []Expr { return nil }
func (c RegOf) WithChildren([]Expr) Expr { return c }
func (c RegOf) leafValue() any { return c.Reg }

// Temp is an SSA-renamed local value: a base register/location plus a
// per-definition version number, assigned by bcfg's rename pass.
type Temp struct {
	Name    string
	Version int
}

func (Temp) implExpr()        {}
func (Temp) Op() Operator     { return OpTemp }
func (Temp) Children() []Expr { return nil }
func (c Temp) WithChildren([]Expr) Expr { return c }
func (c Temp) leafValue() any { return c }

func (t Temp) String() string {
	if t.Version == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s.%d", t.Name, t.Version)
}

// Flags is the machine condition-code vector, alive only until
// FlagElim-style rewriting replaces comparisons derived from it with
// direct high-level comparisons.
type Flags struct{}

func (Flags) implExpr()        {}
func (Flags) Op() Operator     { return OpFlags }
func (Flags) Children() []Expr { return nil }
func (c Flags) WithChildren([]Expr) Expr { return c }
func (c Flags) leafValue() any { return nil }

// Wild is a pattern-matching wildcard used only in search-and-replace
// templates (§4.A); it never appears in a well-formed procedure body.
type Wild struct{ Tag string }

func (Wild) implExpr()        {}
func (Wild) Op() Operator     { return OpWild }
func (Wild) Children() []Expr { return nil }
func (c Wild) WithChildren([]Expr) Expr { return c }
func (c Wild) leafValue() any { return c.Tag }

// Nil terminates a List spine.
type Nil struct{}

func (Nil) implExpr()        {}
func (Nil) Op() Operator     { return OpNil }
func (Nil) Children() []Expr { return nil }
func (c Nil) WithChildren([]Expr) Expr { return c }
func (c Nil) leafValue() any { return nil }

// --- Construction helpers ---

// List builds a right-associative List(head, tail) spine from elements,
// terminated by Nil, as spec.md §4.A requires for variadic constructs
// such as call-argument lists and switch option lists.
func List(elems ...Expr) Expr {
	var tail Expr = Nil{}
	for i := len(elems) - 1; i >= 0; i-- {
		tail = New(OpList, elems[i], tail)
	}
	return tail
}

// ListElems flattens a List spine back into a slice; it is the inverse of
// List and tolerates a non-list expr by returning it as a single element.
func ListElems(e Expr) []Expr {
	var out []Expr
	for {
		if _, ok := e.(Nil); ok {
			return out
		}
		n, ok := e.(Node)
		if !ok || n.op != OpList {
			return append(out, e)
		}
		out = append(out, n.children[0])
		e = n.children[1]
	}
}

// --- Child access/replace (spec.md §4.A: access child i, replace child i) ---

// ChildAt returns child i of e, or nil if e has fewer than i+1 children.
func ChildAt(e Expr, i int) Expr {
	c := e.Children()
	if i < 0 || i >= len(c) {
		return nil
	}
	return c[i]
}

// ReplaceChild returns a copy of e with child i replaced by r.
func ReplaceChild(e Expr, i int, r Expr) Expr {
	c := e.Children()
	if i < 0 || i >= len(c) {
		return e
	}
	nc := make([]Expr, len(c))
	copy(nc, c)
	nc[i] = r
	return e.WithChildren(nc)
}

// --- Structural equality ---

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Op() != b.Op() {
		return false
	}
	if al, ok := a.(Leaf); ok {
		bl, ok2 := b.(Leaf)
		if !ok2 {
			return false
		}
		return al.leafValue() == bl.leafValue()
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// --- Structural hashing ---

// Hash computes a structural hash of e such that Equal(a, b) implies
// Hash(a) == Hash(b). Used by the Simplifier's commutative tie-break (a
// stable total order on expression hashes, spec.md §4.C) and by
// deduplicating caches in the pass manager.
func Hash(e Expr) uint64 {
	h := fnv.New64a()
	hashInto(h, e)
	return h.Sum64()
}

func hashInto(h hash.Hash64, e Expr) {
	if e == nil {
		h.Write([]byte{0})
		return
	}
	h.Write([]byte{byte(e.Op())})
	if l, ok := e.(Leaf); ok {
		fmt.Fprintf(h, "%v", l.leafValue())
		return
	}
	for _, c := range e.Children() {
		hashInto(h, c)
	}
}

// --- Clone ---

// Clone deep-copies e. Because nodes are treated as immutable, Clone is
// rarely needed in the hot path (sharing is preferred) but is used when a
// subtree is about to be handed to a mutating consumer outside the
// package's control (e.g. a Decoder fake in tests).
func Clone(e Expr) Expr {
	if e == nil {
		return nil
	}
	c := e.Children()
	if len(c) == 0 {
		return e
	}
	nc := make([]Expr, len(c))
	for i, ch := range c {
		nc[i] = Clone(ch)
	}
	return e.WithChildren(nc)
}

// --- Search and replace ---

// SearchAndReplace returns a new tree where every subtree structurally
// equal to from is replaced by to. Untouched subtrees are reused
// (spec.md §4.A: rewrites return a new node for the changed path only).
func SearchAndReplace(e, from, to Expr) Expr {
	if Equal(e, from) {
		return to
	}
	c := e.Children()
	if len(c) == 0 {
		return e
	}
	changed := false
	nc := make([]Expr, len(c))
	for i, ch := range c {
		r := SearchAndReplace(ch, from, to)
		nc[i] = r
		if !Equal(r, ch) {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return e.WithChildren(nc)
}

// --- Visitor ---

// Visitor is the external double-dispatch interface for tree traversal
// (spec.md §9: "visitors are external double-dispatch... or trait-object
// visitors keyed by capability"), avoiding open inheritance on Expr.
type Visitor interface {
	// PreVisit is called before descending into e's children. Returning
	// replace=true with a non-nil r substitutes r for e and does not
	// descend into e's original children.
	PreVisit(e Expr) (r Expr, replace bool, descend bool)
	// PostVisit is called after children have been visited/rewritten,
	// receiving the (possibly rewritten) node. It may return a further
	// replacement.
	PostVisit(e Expr) Expr
}

// Accept walks e with v, modifying the tree when v is a modifying
// visitor (i.e. PostVisit/PreVisit return non-identity replacements) or
// simply reading it when v's callbacks always return e unchanged.
func Accept(e Expr, v Visitor) Expr {
	if e == nil {
		return nil
	}
	r, replace, descend := v.PreVisit(e)
	if replace {
		return r
	}
	if !descend {
		return e
	}
	c := e.Children()
	if len(c) == 0 {
		return v.PostVisit(e)
	}
	nc := make([]Expr, len(c))
	changed := false
	for i, ch := range c {
		nc[i] = Accept(ch, v)
		if !Equal(nc[i], ch) {
			changed = true
		}
	}
	if changed {
		e = e.WithChildren(nc)
	}
	return v.PostVisit(e)
}

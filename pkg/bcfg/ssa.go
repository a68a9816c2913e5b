package bcfg

import (
	"fmt"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// VariableKey identifies a renamable storage location independent of SSA
// version.
type VariableKey string

// VariableSet decides which expressions the rename pass treats as
// variables. The set is configurable (spec.md §4.E): initially registers
// and the stack pointer, later widened to include memory locations once
// address expressions are stable (see driver.middleDecompile's
// setRenameLocalsParams enable point).
type VariableSet interface {
	// KeyOf returns e's variable key and true if e is a renamable
	// location; false for constants, flags, and anything already in SSA
	// temporary form.
	KeyOf(e bexpr.Expr) (VariableKey, bool)
}

// RegisterVariables renames machine registers and the stack pointer
// register only — the rename set used by earlyDecompile.
type RegisterVariables struct{ StackPointerReg int }

func (v RegisterVariables) KeyOf(e bexpr.Expr) (VariableKey, bool) {
	if r, ok := e.(bexpr.RegOf); ok {
		return VariableKey(fmt.Sprintf("r%d", r.Reg)), true
	}
	return "", false
}

// MemoryVariables widens RegisterVariables to also rename memOf(addr)
// locations, keyed by the structural hash of the (already-simplified,
// address-stable) address expression — the rename set middleDecompile
// switches to once memory renaming is enabled.
type MemoryVariables struct{}

func (v MemoryVariables) KeyOf(e bexpr.Expr) (VariableKey, bool) {
	if r, ok := e.(bexpr.RegOf); ok {
		return VariableKey(fmt.Sprintf("r%d", r.Reg)), true
	}
	if e.Op() == bexpr.OpMemOf {
		return VariableKey(fmt.Sprintf("m%x", bexpr.Hash(bexpr.ChildAt(e, 0)))), true
	}
	return "", false
}

// PlacePhis inserts PhiAssign statements at dominance-frontier join
// points for every variable with more than one definition site, the
// standard Cytron et al. construction. idom and df come from
// CFG.Dominators/DominanceFrontier. alloc supplies fresh statement ids.
// It returns whether any phi was inserted.
func (g *CFG) PlacePhis(vars VariableSet, df map[BBID]BBSet, alloc func() bstmt.StmtID) bool {
	inserted := false
	defSites := make(map[VariableKey]BBSet)
	keyExpr := make(map[VariableKey]bexpr.Expr)
	for _, id := range g.order {
		for _, s := range g.Blocks[id].Stmts() {
			for _, d := range s.Defines() {
				key, ok := vars.KeyOf(d)
				if !ok {
					continue
				}
				if defSites[key] == nil {
					defSites[key] = NewBBSet()
				}
				defSites[key].Add(id)
				if _, ok := keyExpr[key]; !ok {
					keyExpr[key] = d
				}
			}
		}
	}

	for key, sites := range defSites {
		hasPhi := NewBBSet()
		worklist := sites.Slice()
		for len(worklist) > 0 {
			n := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for y := range df[n] {
				if hasPhi.Contains(y) {
					continue
				}
				hasPhi.Add(y)
				block := g.Blocks[y]
				if !blockHasPhiFor(block, vars, key) {
					phi := bstmt.NewPhiAssign(alloc(), keyExpr[key])
					block.RTLs = append([]*bstmt.RTL{bstmt.NewRTL(0, phi)}, block.RTLs...)
					inserted = true
				}
				if !sites.Contains(y) {
					worklist = append(worklist, y)
				}
			}
		}
	}
	return inserted
}

// blockHasPhiFor reports whether block already carries a PhiAssign for
// key, so PlacePhis stays idempotent across repeated invocations (a
// requirement on every passmgr pass, since PhiPlacement may run again in
// a later fixpoint iteration after widening the variable set).
func blockHasPhiFor(block *BasicBlock, vars VariableSet, key VariableKey) bool {
	for _, r := range block.RTLs {
		for _, s := range r.Stmts {
			phi, ok := s.(*bstmt.PhiAssign)
			if !ok {
				continue
			}
			if k, ok := vars.KeyOf(phi.Lhs); ok && k == key {
				return true
			}
		}
	}
	return false
}

type ssaStackEntry struct {
	id    bstmt.StmtID
	value bexpr.Expr
}

// RenameVariables performs the standard stack-per-variable SSA rename
// over the dominator tree: each block rewrites its own uses against the
// currently live definition, pushes a freshly versioned Temp for each
// def it makes, fills in phi incoming edges for every successor, then
// recurses into its dominator-tree children before popping its pushes.
func (g *CFG) RenameVariables(vars VariableSet, idom map[BBID]BBID) {
	children := make(map[BBID][]BBID)
	for id, d := range idom {
		if id == d {
			continue
		}
		children[d] = append(children[d], id)
	}

	stacks := make(map[VariableKey][]ssaStackEntry)
	versions := make(map[VariableKey]int)

	var walk func(BBID)
	walk = func(id BBID) {
		block := g.Blocks[id]
		var pushed []VariableKey

		for _, r := range block.RTLs {
			for i, s := range r.Stmts {
				for _, u := range s.Uses() {
					key, ok := vars.KeyOf(u)
					if !ok {
						continue
					}
					st := stacks[key]
					if len(st) == 0 {
						continue
					}
					if a, ok := s.(*bstmt.Assign); ok && bexpr.Equal(a.Lhs, u) {
						s = bstmt.NewAssign(a.ID(), a.Type, a.Lhs, bexpr.SearchAndReplace(a.Rhs, u, st[len(st)-1].value))
						continue
					}
					s = s.SearchAndReplace(u, st[len(st)-1].value)
				}
				for _, d := range s.Defines() {
					key, ok := vars.KeyOf(d)
					if !ok {
						continue
					}
					versions[key]++
					temp := bexpr.Temp{Name: string(key), Version: versions[key]}
					if phi, ok := s.(*bstmt.PhiAssign); ok {
						phi.Lhs = temp
					} else {
						s = s.SearchAndReplace(d, temp)
					}
					stacks[key] = append(stacks[key], ssaStackEntry{id: s.ID(), value: temp})
					pushed = append(pushed, key)
				}
				r.Stmts[i] = s
			}
		}

		for _, succID := range block.Succs {
			succ := g.Blocks[succID]
			for _, r := range succ.RTLs {
				for _, s := range r.Stmts {
					phi, ok := s.(*bstmt.PhiAssign)
					if !ok {
						continue
					}
					key, ok := vars.KeyOf(phi.Lhs)
					if !ok {
						if t, ok := phi.Lhs.(bexpr.Temp); ok {
							key = VariableKey(t.Name)
						} else {
							continue
						}
					}
					st := stacks[key]
					if len(st) == 0 {
						continue
					}
					phi.AddIncoming(bstmt.BlockID(id), st[len(st)-1].id)
				}
			}
		}

		for _, c := range children[id] {
			walk(c)
		}

		for _, key := range pushed {
			st := stacks[key]
			stacks[key] = st[:len(st)-1]
		}
	}
	walk(g.Entry)
}

package passmgr

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// passGlobalConstReplace replaces memOf(AddrConst) reads with the named
// global expression the Program's global table resolves that address to
// (spec.md §4.F: "GlobalConstReplace" substitutes a resolved global in
// place of a raw address constant once the global table is populated).
func passGlobalConstReplace(p Proc) bool {
	changed := false
	g := p.CFG()
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for i, s := range r.Stmts {
				rewritten := s
				for _, u := range s.Uses() {
					if u.Op() != bexpr.OpMemOf {
						continue
					}
					addr, ok := bexpr.ChildAt(u, 0).(bexpr.AddrConst)
					if !ok {
						continue
					}
					global, ok := p.ResolveGlobal(addr.Addr)
					if !ok {
						continue
					}
					rewritten = rewritten.SearchAndReplace(u, global)
				}
				if !bstmt.Equal(s, rewritten) {
					changed = true
					r.Stmts[i] = rewritten
				}
			}
		}
	}
	return changed
}

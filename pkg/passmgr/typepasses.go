package passmgr

import (
	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/btypes"
)

// passLocalTypeAnalysis merges each local's recorded type with the type
// every Assign that writes to it carries, meeting them through the type
// lattice (spec.md §4.B) so a local's final type is the most specific one
// compatible with every assignment that reaches it.
func passLocalTypeAnalysis(p Proc) bool {
	changed := false
	g := p.CFG()
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				a, ok := s.(*bstmt.Assign)
				if !ok || a.Type == nil {
					continue
				}
				t, ok := a.Lhs.(bexpr.Temp)
				if !ok {
					continue
				}
				cur, _ := p.LocalType(t.Name)
				next := btypes.Meet(cur, a.Type)
				if cur == nil || next.String() != cur.String() {
					p.SetLocalType(t.Name, next)
					changed = true
				}
			}
		}
	}
	return changed
}

package bcfg

// Cached dataflow results, populated by the Dominators/PhiPlacement
// passes and consulted by later passes (structural analysis, phi
// placement) without recomputing them from scratch on every pass run.
type domCache struct {
	idom     map[BBID]BBID
	postIdom map[BBID]BBID
	df       map[BBID]BBSet
}

// RecomputeDominators recomputes the immediate-dominator map and caches
// it on the CFG, returning whether it differs from the previously cached
// result (so passmgr.Dominators can report "changed").
func (g *CFG) RecomputeDominators() bool {
	next := g.Dominators()
	changed := !domMapsEqual(g.cache.idom, next)
	g.cache.idom = next
	return changed
}

// Idom returns the most recently computed immediate-dominator map, or
// nil if RecomputeDominators has not run yet.
func (g *CFG) Idom() map[BBID]BBID { return g.cache.idom }

// RecomputePostDominators recomputes and caches the post-dominator map.
func (g *CFG) RecomputePostDominators() bool {
	next := g.PostDominators()
	changed := !domMapsEqual(g.cache.postIdom, next)
	g.cache.postIdom = next
	return changed
}

// PostIdom returns the most recently computed post-dominator map.
func (g *CFG) PostIdom() map[BBID]BBID { return g.cache.postIdom }

// RecomputeDominanceFrontier recomputes and caches the dominance
// frontier using the cached idom map (RecomputeDominators must have run
// first).
func (g *CFG) RecomputeDominanceFrontier() bool {
	next := g.DominanceFrontier(g.cache.idom)
	changed := !dfMapsEqual(g.cache.df, next)
	g.cache.df = next
	return changed
}

// DF returns the most recently computed dominance frontier.
func (g *CFG) DF() map[BBID]BBSet { return g.cache.df }

func domMapsEqual(a, b map[BBID]BBID) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func dfMapsEqual(a, b map[BBID]BBSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

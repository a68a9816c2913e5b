package bcfg

// Dominators computes the immediate-dominator map using the standard
// iterative (Cooper-Harvey-Kennedy) algorithm: repeatedly intersect each
// block's currently-known dominator candidates along reverse-postorder
// until the map stops changing. Chosen over Lengauer-Tarjan for
// simplicity and because it has no recursion-depth risk on large
// procedures (SPEC_FULL.md §4.E).
func (g *CFG) Dominators() map[BBID]BBID {
	rpo := g.ReversePostorder()
	rpoIndex := make(map[BBID]int, len(rpo))
	for i, id := range rpo {
		rpoIndex[id] = i
	}

	idom := map[BBID]BBID{g.Entry: g.Entry}
	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == g.Entry {
				continue
			}
			var newIdom BBID
			have := false
			for _, p := range g.Blocks[b].Preds {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !have {
					newIdom = p
					have = true
					continue
				}
				newIdom = intersect(idom, rpoIndex, newIdom, p)
			}
			if !have {
				continue
			}
			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	return idom
}

func intersect(idom map[BBID]BBID, rpoIndex map[BBID]int, a, b BBID) BBID {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

// DominanceFrontier computes the dominance frontier for every block,
// following the standard Cytron et al. construction: for each join point
// (a block with 2+ predecessors), walk each predecessor up its dominator
// chain until reaching the join's immediate dominator, adding the join
// to every block visited along the way.
func (g *CFG) DominanceFrontier(idom map[BBID]BBID) map[BBID]BBSet {
	df := make(map[BBID]BBSet, len(g.Blocks))
	for id := range g.Blocks {
		df[id] = NewBBSet()
	}
	for _, b := range g.order {
		block := g.Blocks[b]
		if len(block.Preds) < 2 {
			continue
		}
		for _, p := range block.Preds {
			runner := p
			for runner != idom[b] {
				df[runner].Add(b)
				if next, ok := idom[runner]; ok && next != runner {
					runner = next
				} else {
					break
				}
			}
		}
	}
	return df
}

// virtualExit is the synthetic successor every exit block (Ret, or any
// block with no successors) is connected to, so PostDominators can reuse
// the same reverse-postorder/intersect machinery as Dominators.
const virtualExit BBID = -1

// PostDominators computes the immediate post-dominator map over the
// reverse CFG, rooted at a synthetic exit node connected from every
// block with no successors. Needed by the structural analyzer to find
// cond-follow nodes (spec.md §4.I).
func (g *CFG) PostDominators() map[BBID]BBID {
	// revSuccs(v) = original Preds(v): flipping edge u->v yields v->u, so
	// u becomes a successor of v in the reversed graph.
	revSuccs := make(map[BBID][]BBID, len(g.Blocks)+1)
	// revPreds(b) = original Succs(b), plus virtualExit for any block
	// with no original successors (virtualExit's only outgoing edges go
	// to those exit blocks).
	revPreds := make(map[BBID][]BBID, len(g.Blocks)+1)
	for _, id := range g.order {
		revSuccs[id] = append(revSuccs[id], g.Blocks[id].Preds...)
		revPreds[id] = append(revPreds[id], g.Blocks[id].Succs...)
		if len(g.Blocks[id].Succs) == 0 {
			revSuccs[virtualExit] = append(revSuccs[virtualExit], id)
			revPreds[id] = append(revPreds[id], virtualExit)
		}
	}

	rpo := reversePostorderFrom(virtualExit, revSuccs)
	rpoIndex := make(map[BBID]int, len(rpo))
	for i, id := range rpo {
		rpoIndex[id] = i
	}

	idom := map[BBID]BBID{virtualExit: virtualExit}
	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == virtualExit {
				continue
			}
			var newIdom BBID
			have := false
			for _, p := range revPreds[b] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !have {
					newIdom = p
					have = true
					continue
				}
				newIdom = intersect(idom, rpoIndex, newIdom, p)
			}
			if !have {
				continue
			}
			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	delete(idom, virtualExit)
	return idom
}

func reversePostorderFrom(start BBID, succs map[BBID][]BBID) []BBID {
	visited := NewBBSet()
	var post []BBID
	var dfs func(BBID)
	dfs = func(id BBID) {
		if visited.Contains(id) {
			return
		}
		visited.Add(id)
		for _, s := range succs[id] {
			dfs(s)
		}
		post = append(post, id)
	}
	dfs(start)
	rpo := make([]BBID, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}
	return rpo
}

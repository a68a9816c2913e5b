package bcfg

import "github.com/skyripley/boomerang/pkg/bstmt"

// CFG is the basic-block container for one procedure: an entry block
// plus the dataflow side-structure (dominator tree, dominance frontier)
// populated by passes (spec.md §3).
type CFG struct {
	Blocks map[BBID]*BasicBlock
	Entry  BBID
	order  []BBID
	nextID BBID
	cache  domCache
}

// NewCFG returns an empty CFG.
func NewCFG() *CFG {
	return &CFG{Blocks: make(map[BBID]*BasicBlock)}
}

// AddBlock allocates a new block of the given type and adds it to the
// graph. The first block added becomes the entry.
func (g *CFG) AddBlock(t BBType) *BasicBlock {
	id := g.nextID
	g.nextID++
	b := &BasicBlock{ID: id, Type: t}
	g.Blocks[id] = b
	g.order = append(g.order, id)
	if len(g.order) == 1 {
		g.Entry = id
	}
	return b
}

// Order returns block ids in allocation order.
func (g *CFG) Order() []BBID {
	out := make([]BBID, len(g.order))
	copy(out, g.order)
	return out
}

// AddEdge adds a directed edge u->v if it does not already exist.
func (g *CFG) AddEdge(u, v BBID) {
	ub, uok := g.Blocks[u]
	vb, vok := g.Blocks[v]
	if !uok || !vok {
		return
	}
	for _, s := range ub.Succs {
		if s == v {
			return
		}
	}
	ub.Succs = append(ub.Succs, v)
	vb.Preds = append(vb.Preds, u)
}

// RemoveEdge removes the directed edge u->v if present, and removes the
// corresponding incoming entry from any phi statements in v (spec.md
// §4.D: "removing a predecessor removes the corresponding incoming").
func (g *CFG) RemoveEdge(u, v BBID) {
	ub, uok := g.Blocks[u]
	vb, vok := g.Blocks[v]
	if !uok || !vok {
		return
	}
	ub.Succs = removeBBID(ub.Succs, v)
	vb.Preds = removeBBID(vb.Preds, u)
	for _, r := range vb.RTLs {
		for _, s := range r.Stmts {
			if p, ok := s.(*bstmt.PhiAssign); ok {
				p.RemoveIncoming(bstmt.BlockID(u))
			}
		}
	}
}

func removeBBID(s []BBID, target BBID) []BBID {
	out := s[:0]
	for _, id := range s {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// SplitBB splits bb at the RTL whose address is addr: the RTLs before
// addr remain in bb, the RTLs at and after addr move to a new
// fall-through successor block, which inherits bb's outgoing edges and
// its type. bb becomes a Fall block into the new tail. Used when
// indirect-jump recovery or structuring needs a clean join point inside
// an existing block.
func (g *CFG) SplitBB(bb BBID, addr uint64) *BasicBlock {
	b, ok := g.Blocks[bb]
	if !ok {
		return nil
	}
	splitAt := len(b.RTLs)
	for i, r := range b.RTLs {
		if r.Addr >= addr {
			splitAt = i
			break
		}
	}
	if splitAt == 0 || splitAt == len(b.RTLs) {
		return nil
	}

	tail := g.AddBlock(b.Type)
	tail.RTLs = append(tail.RTLs, b.RTLs[splitAt:]...)
	tail.Succs = b.Succs
	for _, s := range tail.Succs {
		if sb, ok := g.Blocks[s]; ok {
			sb.Preds = replaceBBID(sb.Preds, bb, tail.ID)
		}
	}

	b.RTLs = b.RTLs[:splitAt]
	b.Succs = []BBID{tail.ID}
	b.Type = Fall
	tail.Preds = []BBID{bb}
	return tail
}

func replaceBBID(s []BBID, from, to BBID) []BBID {
	out := make([]BBID, len(s))
	for i, id := range s {
		if id == from {
			out[i] = to
		} else {
			out[i] = id
		}
	}
	return out
}

// Calls returns every Call statement in the CFG, in block allocation
// order, for the driver's per-call callee resolution walk (spec.md
// §4.G).
func (g *CFG) Calls() []*bstmt.Call {
	var out []*bstmt.Call
	for _, id := range g.order {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				if c, ok := s.(*bstmt.Call); ok {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// ReversePostorder returns block ids reachable from the entry in reverse
// postorder, the iteration order the dominator algorithm requires for
// fast convergence.
func (g *CFG) ReversePostorder() []BBID {
	visited := NewBBSet()
	var post []BBID
	var dfs func(BBID)
	dfs = func(id BBID) {
		if visited.Contains(id) {
			return
		}
		visited.Add(id)
		b, ok := g.Blocks[id]
		if !ok {
			return
		}
		for _, s := range b.Succs {
			dfs(s)
		}
		post = append(post, id)
	}
	dfs(g.Entry)
	rpo := make([]BBID, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}
	return rpo
}

package driver

import (
	"github.com/skyripley/boomerang/pkg/bcfg"
	"github.com/skyripley/boomerang/pkg/bstmt"
	"github.com/skyripley/boomerang/pkg/decoder"
)

// decodeEdge records a provisional successor edge discovered during the
// address-level sweep, before block ids are known.
type decodeEdge struct {
	from bcfg.BBID
	to   uint64
}

// decode builds proc's CFG by sweeping from entry, following every
// control transfer the decoder reports. Branch/Goto statements carry
// their target as the raw transfer address reinterpreted as a BlockID
// (the decoder has no way to know a block's eventual BBID before the
// sweep assigns one); decode's final pass rewrites every such
// address-shaped BlockID to the real block id once every leader address
// has a block.
//
// Returns false if the entry address itself fails to decode.
func decode(entry uint64, dec decoder.Decoder) (*bcfg.CFG, bool) {
	g := bcfg.NewCFG()
	blockAt := make(map[uint64]*bcfg.BasicBlock)
	queue := []uint64{entry}
	var edges []decodeEdge

	for len(queue) > 0 {
		addr := queue[0]
		queue = queue[1:]
		if _, ok := blockAt[addr]; ok {
			continue
		}
		bb := g.AddBlock(bcfg.Fall)
		blockAt[addr] = bb

		cur := addr
		for {
			res := dec.DecodeInstruction(cur)
			if !res.IsValid {
				if len(bb.RTLs) == 0 {
					if bb.ID == g.Entry {
						return nil, false
					}
					bb.Type = bcfg.Ret
				}
				break
			}
			dec.SaveDecodedRTL(cur, res.RTL)
			bb.AppendRTL(res.RTL)
			next := cur + uint64(res.Length)

			switch s := res.RTL.Last().(type) {
			case *bstmt.Branch:
				bb.Type = bcfg.TwoWay
				taken := uint64(s.Taken)
				edges = append(edges, decodeEdge{bb.ID, taken}, decodeEdge{bb.ID, next})
				queue = append(queue, taken, next)
				goto nextBlock
			case *bstmt.Goto:
				bb.Type = bcfg.OneWay
				target := uint64(s.Dest)
				edges = append(edges, decodeEdge{bb.ID, target})
				queue = append(queue, target)
				goto nextBlock
			case *bstmt.Return:
				bb.Type = bcfg.Ret
				goto nextBlock
			case *bstmt.Case:
				bb.Type = bcfg.Nway
				for _, tgt := range s.Info.Targets {
					t := uint64(tgt.Block)
					edges = append(edges, decodeEdge{bb.ID, t})
					queue = append(queue, t)
				}
				if s.Info.HasDefault {
					t := uint64(s.Info.Default)
					edges = append(edges, decodeEdge{bb.ID, t})
					queue = append(queue, t)
				}
				goto nextBlock
			case *bstmt.Call:
				if s.IsResolved() {
					bb.Type = bcfg.Call
				} else {
					bb.Type = bcfg.CompCall
				}
				edges = append(edges, decodeEdge{bb.ID, next})
				queue = append(queue, next)
				goto nextBlock
			default:
				cur = next
				continue
			}
		}
	nextBlock:
	}

	for _, e := range edges {
		target, ok := blockAt[e.to]
		if !ok {
			continue
		}
		g.AddEdge(e.from, target.ID)
	}
	rewriteBlockTargets(g, blockAt)
	return g, true
}

// rewriteBlockTargets replaces every Branch/Goto/Case target with the
// real BBID of the block starting at that address, now that every
// leader has a block.
func rewriteBlockTargets(g *bcfg.CFG, blockAt map[uint64]*bcfg.BasicBlock) {
	resolve := func(addr uint64) bstmt.BlockID {
		if b, ok := blockAt[addr]; ok {
			return bstmt.BlockID(b.ID)
		}
		return bstmt.BlockID(addr)
	}
	for _, id := range g.Order() {
		bb := g.Blocks[id]
		for _, r := range bb.RTLs {
			for i, s := range r.Stmts {
				switch v := s.(type) {
				case *bstmt.Branch:
					r.Stmts[i] = bstmt.NewBranch(v.ID(), v.Cond, resolve(uint64(v.Taken)))
				case *bstmt.Goto:
					r.Stmts[i] = bstmt.NewGoto(v.ID(), resolve(uint64(v.Dest)))
				case *bstmt.Case:
					info := v.Info
					targets := make([]bstmt.CaseTarget, len(info.Targets))
					for j, t := range info.Targets {
						targets[j] = bstmt.CaseTarget{Value: t.Value, Block: resolve(uint64(t.Block))}
					}
					info.Targets = targets
					if info.HasDefault {
						info.Default = resolve(uint64(info.Default))
					}
					r.Stmts[i] = bstmt.NewCase(v.ID(), info)
				}
			}
		}
	}
}

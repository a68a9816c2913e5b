// Package structural implements the structural analyzer (spec.md §4.I):
// it classifies every block in a stabilized CFG with the loop/conditional
// shape the C emitter needs to decide between while/do-while/for/if/switch
// and goto fallback.
//
// Grounded on bcfg.CFG's already-computed dominator/post-dominator/back-edge
// facts (pkg/bcfg/dominators.go), generalizing the phase-split approach
// surveyed in _examples/other_examples/nukilabs-decompile__structure.go
// (natural-loop-from-back-edge, then two-way/n-way classification, then
// unstructured-jump marking) to this package's BBSet/BBID vocabulary.
package structural

import (
	"sort"

	"github.com/skyripley/boomerang/pkg/bcfg"
)

// Analyze computes dominators, post-dominators, natural loops, and
// conditional structure over g, annotating every reachable block's
// StructType/LoopType/CondType/UnstructType/LoopHead/LoopFollow/
// Latch/CaseHead/CondFollow/IsLatchNode fields in place.
func Analyze(g *bcfg.CFG) {
	idom := g.Dominators()
	postIdom := g.PostDominators()

	loops := findLoops(g, idom)
	markLoops(g, loops)
	classifyLoops(g, loops)
	classifyConds(g, postIdom, loops)
	markUnstructured(g, loops)
}

// naturalLoop is one back-edge-rooted loop: header dominates latch, and
// body is every block that reaches latch without passing through header
// again.
type naturalLoop struct {
	header BBID
	latch  BBID
	body   bcfg.BBSet
}

type BBID = bcfg.BBID

// findLoops detects every back-edge (a->b where b dominates a) and
// builds the natural loop it roots, merging loops that share a header
// (spec.md §4.I step 1).
func findLoops(g *bcfg.CFG, idom map[BBID]BBID) map[BBID]*naturalLoop {
	loops := make(map[BBID]*naturalLoop)
	for _, a := range g.Order() {
		for _, b := range g.Blocks[a].Succs {
			if !dominates(idom, b, a) {
				continue
			}
			l, ok := loops[b]
			if !ok {
				l = &naturalLoop{header: b, latch: a, body: bcfg.NewBBSet()}
				l.body.Add(b)
				loops[b] = l
			}
			growLoopBody(g, l, a)
		}
	}
	return loops
}

// growLoopBody adds every block that can reach latch without going
// through header again, the standard natural-loop body construction via
// reverse traversal from latch.
func growLoopBody(g *bcfg.CFG, l *naturalLoop, latch BBID) {
	if l.body.Contains(latch) {
		return
	}
	stack := []BBID{latch}
	l.body.Add(latch)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.Blocks[n].Preds {
			if !l.body.Contains(p) {
				l.body.Add(p)
				stack = append(stack, p)
			}
		}
	}
}

func dominates(idom map[BBID]BBID, a, b BBID) bool {
	if a == b {
		return true
	}
	cur := b
	for {
		next, ok := idom[cur]
		if !ok || next == cur {
			return false
		}
		if next == a {
			return true
		}
		cur = next
	}
}

// markLoops stamps LoopHead/Latch/loop membership onto every block in
// every detected loop. Loops are applied smallest body first, so a block
// shared by nested loops ends up stamped with its innermost enclosing
// loop (processed last, overwriting the outer stamp).
func markLoops(g *bcfg.CFG, loops map[BBID]*naturalLoop) {
	ordered := make([]*naturalLoop, 0, len(loops))
	for _, l := range loops {
		ordered = append(ordered, l)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return len(ordered[i].body) > len(ordered[j].body)
	})

	for _, l := range ordered {
		for id := range l.body {
			bb := g.Blocks[id]
			if bb.ID == l.header {
				bb.StructType = bcfg.Loop
			}
			bb.LoopHead = l.header
			bb.Latch = l.latch
		}
		g.Blocks[l.latch].IsLatchNode = true
	}
}

// classifyLoops assigns LoopType and LoopFollow to every loop header
// (spec.md §4.I step 2): PreTested if the header itself is the
// exit-testing conditional, PostTested if the latch is, else Endless.
// A header that is itself a TwoWay block is doing double duty as both
// the loop's own head and a conditional test (the PreTested shape), so
// step 5's "combined loop+cond header" is stamped LoopCond in place of
// markLoops' plain Loop; classifyConds leaves both alone, and the
// emitter's traversal dispatches Loop and LoopCond identically, since
// the header's conditional role is already fully captured by LoopType.
func classifyLoops(g *bcfg.CFG, loops map[BBID]*naturalLoop) {
	for _, l := range loops {
		header := g.Blocks[l.header]
		latch := g.Blocks[l.latch]

		if header.Type == bcfg.TwoWay && exitsLoop(l, header) {
			header.LoopType = bcfg.PreTested
			header.LoopFollow = loopFollow(l, header)
		} else if latch.Type == bcfg.TwoWay && exitsLoop(l, latch) {
			header.LoopType = bcfg.PostTested
			header.LoopFollow = loopFollow(l, latch)
		} else {
			header.LoopType = bcfg.Endless
			header.LoopFollow = loopFollowFromSuccessors(g, l)
		}
		if header.Type == bcfg.TwoWay {
			header.StructType = bcfg.LoopCond
		}
	}
}

func exitsLoop(l *naturalLoop, bb *bcfg.BasicBlock) bool {
	for _, s := range bb.Succs {
		if !l.body.Contains(s) {
			return true
		}
	}
	return false
}

func loopFollow(l *naturalLoop, bb *bcfg.BasicBlock) BBID {
	for _, s := range bb.Succs {
		if !l.body.Contains(s) {
			return s
		}
	}
	return 0
}

func loopFollowFromSuccessors(g *bcfg.CFG, l *naturalLoop) BBID {
	for id := range l.body {
		bb := g.Blocks[id]
		for _, s := range bb.Succs {
			if !l.body.Contains(s) {
				return s
			}
		}
	}
	return 0
}

// classifyConds assigns CondType and CondFollow to every TwoWay/Nway
// block not already consumed as a loop's own test (spec.md §4.I step 3).
func classifyConds(g *bcfg.CFG, postIdom map[BBID]BBID, loops map[BBID]*naturalLoop) {
	for _, id := range g.Order() {
		bb := g.Blocks[id]
		switch bb.Type {
		case bcfg.TwoWay:
			if bb.StructType == bcfg.Loop || bb.StructType == bcfg.LoopCond {
				continue
			}
			bb.StructType = bcfg.Cond
			bb.CondFollow = postIdom[id]
			bb.CondType = classifyTwoWay(g, bb)
		case bcfg.Nway:
			bb.StructType = bcfg.Cond
			bb.CondFollow = postIdom[id]
			bb.CondType = bcfg.Case
			bb.CaseHead = id
		default:
			if bb.StructType == bcfg.NoStruct {
				bb.StructType = bcfg.Seq
			}
		}
	}
}

func classifyTwoWay(g *bcfg.CFG, bb *bcfg.BasicBlock) bcfg.CondType {
	if len(bb.Succs) != 2 {
		return bcfg.IfThenElse
	}
	a, b := bb.Succs[0], bb.Succs[1]
	aIsFollow := a == bb.CondFollow
	bIsFollow := b == bb.CondFollow
	switch {
	case aIsFollow && !bIsFollow:
		return bcfg.IfElse
	case bIsFollow && !aIsFollow:
		return bcfg.IfThen
	default:
		return bcfg.IfThenElse
	}
}

// markUnstructured flags branches that defeat pure structural recursion
// (spec.md §4.I step 4): a jump leaving its loop to somewhere other than
// the loop follow, or a jump landing in the middle of a case body.
func markUnstructured(g *bcfg.CFG, loops map[BBID]*naturalLoop) {
	caseMembers := make(map[BBID]BBID) // member -> owning case head
	for _, id := range g.Order() {
		bb := g.Blocks[id]
		if bb.CondType == bcfg.Case {
			for _, s := range bb.Succs {
				caseMembers[s] = id
			}
		}
	}

	for _, id := range g.Order() {
		bb := g.Blocks[id]
		l, ok := loops[bb.LoopHead]
		if !ok || !l.body.Contains(bb.ID) {
			continue
		}
		for _, s := range bb.Succs {
			if l.body.Contains(s) {
				continue
			}
			if s != g.Blocks[bb.LoopHead].LoopFollow {
				bb.UnstructType = bcfg.JumpInOutLoop
			}
		}
	}

	for target, head := range caseMembers {
		for _, id := range g.Order() {
			bb := g.Blocks[id]
			if bb.ID == head {
				continue
			}
			for _, s := range bb.Succs {
				if s == target && g.Blocks[head].Succs[0] != target {
					bb.UnstructType = bcfg.JumpIntoCase
				}
			}
		}
	}
}

package driver

import "github.com/skyripley/boomerang/pkg/project"

// CallStack is the in-progress recursion-detection stack decompile pushes
// onto before visiting each call (spec.md §4.G): a slice for the
// first-member-of-group scan recursionGroupAnalysis needs, plus a set for
// O(1) "callee in callStack" membership checks.
type CallStack struct {
	order []*project.UserProc
	index map[*project.UserProc]int
}

// NewCallStack returns an empty CallStack.
func NewCallStack() *CallStack {
	return &CallStack{index: make(map[*project.UserProc]int)}
}

// Push adds p to the top of the stack.
func (s *CallStack) Push(p *project.UserProc) {
	s.index[p] = len(s.order)
	s.order = append(s.order, p)
}

// Pop removes the top of the stack, which must be p.
func (s *CallStack) Pop(p *project.UserProc) {
	delete(s.index, p)
	s.order = s.order[:len(s.order)-1]
}

// Contains reports whether p is currently on the stack.
func (s *CallStack) Contains(p *project.UserProc) bool {
	_, ok := s.index[p]
	return ok
}

// From returns the stack suffix starting at p (inclusive), the slice
// "union callStack[from callee..end]" in spec.md §4.G refers to when a
// new cycle is discovered.
func (s *CallStack) From(p *project.UserProc) []*project.UserProc {
	i, ok := s.index[p]
	if !ok {
		return nil
	}
	return s.order[i:]
}

// After returns the stack suffix strictly after p, the slice
// "callStack[after first member of callee.group..end]" refers to when
// widening a known cycle.
func (s *CallStack) After(p *project.UserProc) []*project.UserProc {
	i, ok := s.index[p]
	if !ok {
		return nil
	}
	return s.order[i+1:]
}

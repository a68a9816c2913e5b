package passmgr

import (
	"fmt"

	"github.com/skyripley/boomerang/pkg/bexpr"
	"github.com/skyripley/boomerang/pkg/bstmt"
)

// passFinalParameterSearch narrows the procedure's parameter list to the
// ImplicitAssign locations that are actually used somewhere in the body,
// dropping live-in locations (typically callee-saved registers the
// decoder materialized defensively) that preservation analysis or
// propagation made dead (spec.md §4.F).
func passFinalParameterSearch(p Proc) bool {
	g := p.CFG()
	used := make(map[string]bool)
	var implicit []bexpr.Expr
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				if ia, ok := s.(*bstmt.ImplicitAssign); ok {
					implicit = append(implicit, ia.Lhs)
					continue
				}
				for _, u := range s.Uses() {
					used[exprKey(u)] = true
				}
			}
		}
	}

	var params []bexpr.Expr
	for _, e := range implicit {
		if used[exprKey(e)] {
			params = append(params, e)
		}
	}

	if exprSetEqual(params, p.Params()) {
		return false
	}
	p.SetParams(params)
	return true
}

// passDuplicateArgsRemoval collapses structurally identical entries in
// the procedure's own parameter list, the residue of over-approximate
// call-site analysis binding the same incoming location to more than one
// slot before FinalParameterSearch has fully converged.
func passDuplicateArgsRemoval(p Proc) bool {
	params := p.Params()
	seen := make(map[string]bool, len(params))
	var deduped []bexpr.Expr
	for _, e := range params {
		k := exprKey(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, e)
	}
	if len(deduped) == len(params) {
		return false
	}
	p.SetParams(deduped)
	return true
}

// passParameterSymbolMap assigns "param1", "param2", ... names to each
// parameter expression in order, gated by Settings.NameParameters (spec.md
// §6; SPEC_FULL.md Open Question decision: no separate feature flag).
func passParameterSymbolMap(p Proc) bool {
	if !p.NameParameters() {
		return false
	}
	changed := false
	for i, e := range p.Params() {
		name := fmt.Sprintf("param%d", i+1)
		if existing, ok := p.SymbolFor(e); ok && existing == name {
			continue
		}
		p.SetSymbol(e, name)
		changed = true
	}
	return changed
}

// passLocalAndParamMap assigns "local1", "local2", ... names to every
// defined Temp not already a parameter and not already named, completing
// the symbol map the emitter consults for every identifier it prints.
func passLocalAndParamMap(p Proc) bool {
	isParam := make(map[string]bool)
	for _, e := range p.Params() {
		isParam[exprKey(e)] = true
	}

	g := p.CFG()
	changed := false
	n := 0
	seen := make(map[string]bool)
	for _, id := range g.Order() {
		for _, r := range g.Blocks[id].RTLs {
			for _, s := range r.Stmts {
				for _, d := range s.Defines() {
					k := exprKey(d)
					if isParam[k] || seen[k] {
						continue
					}
					seen[k] = true
					if _, ok := p.SymbolFor(d); ok {
						continue
					}
					n++
					p.SetSymbol(d, fmt.Sprintf("local%d", n))
					changed = true
				}
			}
		}
	}
	return changed
}

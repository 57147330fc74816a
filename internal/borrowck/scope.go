package borrowck

import (
	"slices"

	"mirck/internal/mir"
)

// exitScopes pops every scope of from that the edge into to leaves,
// innermost first.
func (ck *bodyChecker) exitScopes(st *flowState, from, to *mir.Block) {
	if from.Scope == to.Scope {
		return
	}
	fromChain := ck.body.ScopeChain(from.Scope)
	toChain := ck.body.ScopeChain(to.Scope)
	loc := from.TermLocation()
	for i := len(fromChain) - 1; i >= 0; i-- {
		s := fromChain[i]
		if slices.Contains(toChain, s) {
			break
		}
		ck.popScope(st, s, loc)
	}
}

// exitFunction pops every scope at a return. Only the return slot
// survives.
func (ck *bodyChecker) exitFunction(st *flowState, from *mir.Block, loc mir.Location) {
	chain := ck.body.ScopeChain(from.Scope)
	for i := len(chain) - 1; i >= 0; i-- {
		ck.popScope(st, chain[i], loc)
	}
}

// popScope ends the borrows of scope s, reports surviving references into
// its dying locals and forgets those locals.
func (ck *bodyChecker) popScope(st *flowState, s mir.ScopeID, loc mir.Location) {
	if s < 0 || int(s) >= len(ck.dying) {
		return
	}
	var dying []mir.LocalID
	for _, id := range ck.dying[s] {
		if id != mir.ReturnLocal {
			dying = append(dying, id)
		}
	}

	st.borrows.removeIf(func(b *BorrowInfo) bool {
		return b.Scope == s || slices.Contains(dying, b.Borrowed)
	})

	for _, ref := range st.refs.sortedRefs() {
		if slices.Contains(dying, ref) {
			continue
		}
		for _, src := range st.refs.sources(ref) {
			if !slices.Contains(dying, src) {
				continue
			}
			ck.record(BorrowError{
				Kind:     DanglingReference,
				Local:    ref,
				Other:    src,
				At:       loc,
				Prior:    st.refs[ref][src],
				HasPrior: true,
			})
		}
	}

	for _, id := range dying {
		st.locals[id] = LocalState{}
		st.refs.forget(id)
	}
}

// escapingArgument reports references into the frame passed to a tail
// call, which outlives every local.
func (ck *bodyChecker) escapingArgument(st *flowState, id mir.LocalID, loc mir.Location) {
	for _, src := range st.refs.sources(id) {
		ck.record(BorrowError{
			Kind:     DanglingReference,
			Local:    id,
			Other:    src,
			At:       loc,
			Prior:    st.refs[id][src],
			HasPrior: true,
		})
	}
}

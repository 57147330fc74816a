package borrowck

import (
	"maps"

	"mirck/internal/mir"
)

// flowState is everything the checker knows at one program point.
type flowState struct {
	locals  []LocalState
	borrows borrowSet
	refs    refSources
}

func newFlowState(n int) *flowState {
	return &flowState{
		locals:  make([]LocalState, n),
		borrows: make(borrowSet),
		refs:    make(refSources),
	}
}

func (s *flowState) clone() *flowState {
	out := &flowState{
		locals:  make([]LocalState, len(s.locals)),
		borrows: maps.Clone(s.borrows),
		refs:    s.refs.clone(),
	}
	for i := range s.locals {
		out.locals[i] = s.locals[i].clone()
	}
	if out.borrows == nil {
		out.borrows = make(borrowSet)
	}
	return out
}

func (s *flowState) local(id mir.LocalID) *LocalState {
	if id < 0 || int(id) >= len(s.locals) {
		return nil
	}
	return &s.locals[id]
}

// join merges o into s and reports whether s changed.
func (s *flowState) join(o *flowState) bool {
	changed := false
	for i := range s.locals {
		if s.locals[i].join(&o.locals[i]) {
			changed = true
		}
	}
	if s.borrows.join(o.borrows) {
		changed = true
	}
	if s.refs.join(o.refs) {
		changed = true
	}
	return changed
}

func (s *flowState) equal(o *flowState) bool {
	if len(s.locals) != len(o.locals) {
		return false
	}
	for i := range s.locals {
		if !s.locals[i].equal(&o.locals[i]) {
			return false
		}
	}
	return s.borrows.equal(o.borrows) && s.refs.equal(o.refs)
}

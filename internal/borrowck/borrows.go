package borrowck

import (
	"cmp"
	"maps"
	"slices"

	"mirck/internal/mir"
)

// BorrowKind is the flavour of an active borrow.
type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	// BorrowReservedMutable is a two-phase mutable borrow that has not been
	// used yet. It blocks new borrows but still permits reads.
	BorrowReservedMutable
	BorrowMutable
)

func (k BorrowKind) String() string {
	switch k {
	case BorrowShared:
		return "shared"
	case BorrowReservedMutable:
		return "reserved mutable"
	case BorrowMutable:
		return "mutable"
	}
	return "unknown"
}

// IsMut reports whether the borrow is exclusive.
func (k BorrowKind) IsMut() bool { return k != BorrowShared }

func borrowKindOf(k mir.RefKind) BorrowKind {
	switch k {
	case mir.RefMut:
		return BorrowMutable
	case mir.RefTwoPhaseMut:
		return BorrowReservedMutable
	}
	return BorrowShared
}

// BorrowInfo is one active borrow. Borrower holds the reference; Borrowed
// is the local whose storage is referenced.
type BorrowInfo struct {
	Kind     BorrowKind
	Location mir.Location
	Borrower mir.LocalID
	Borrowed mir.LocalID
	Target   mir.Place
	// Scope is the declared scope of the borrower; the borrow ends when it exits.
	Scope mir.ScopeID
}

type borrowKey struct {
	borrower mir.LocalID
	at       mir.Location
}

func compareBorrowKeys(a, b borrowKey) int {
	if c := a.at.Compare(b.at); c != 0 {
		return c
	}
	return cmp.Compare(a.borrower, b.borrower)
}

// borrowSet holds the active borrows of one program point.
type borrowSet map[borrowKey]BorrowInfo

func (s borrowSet) add(b BorrowInfo) {
	s[borrowKey{borrower: b.Borrower, at: b.Location}] = b
}

// sorted returns the borrows matching keep in a stable order.
func (s borrowSet) sorted(keep func(*BorrowInfo) bool) []BorrowInfo {
	keys := slices.SortedFunc(maps.Keys(s), compareBorrowKeys)
	out := make([]BorrowInfo, 0, len(keys))
	for _, k := range keys {
		b := s[k]
		if keep == nil || keep(&b) {
			out = append(out, b)
		}
	}
	return out
}

// of returns the active borrows of local overlapping place, excluding those
// held by skip.
func (s borrowSet) of(place mir.Place, skip mir.LocalID) []BorrowInfo {
	return s.sorted(func(b *BorrowInfo) bool {
		return b.Borrowed == place.Local && b.Borrower != skip && b.Target.Overlaps(place)
	})
}

// heldBy returns the borrows whose borrower is id.
func (s borrowSet) heldBy(id mir.LocalID) []BorrowInfo {
	return s.sorted(func(b *BorrowInfo) bool { return b.Borrower == id })
}

func (s borrowSet) removeIf(drop func(*BorrowInfo) bool) {
	maps.DeleteFunc(s, func(_ borrowKey, b BorrowInfo) bool { return drop(&b) })
}

// activate turns the reserved borrows held by id into mutable ones.
func (s borrowSet) activate(id mir.LocalID) {
	for k, b := range s {
		if b.Borrower == id && b.Kind == BorrowReservedMutable {
			b.Kind = BorrowMutable
			s[k] = b
		}
	}
}

// transfer copies the borrows held by from to a new holder.
func (s borrowSet) transfer(from, to mir.LocalID, scope mir.ScopeID, keepSource bool) {
	for _, b := range s.heldBy(from) {
		if !keepSource {
			delete(s, borrowKey{borrower: from, at: b.Location})
		}
		b.Borrower = to
		b.Scope = scope
		s.add(b)
	}
}

func (s borrowSet) join(o borrowSet) bool {
	changed := false
	for k, b := range o {
		cur, ok := s[k]
		switch {
		case !ok:
			s[k] = b
			changed = true
		case b.Kind > cur.Kind:
			cur.Kind = b.Kind
			s[k] = cur
			changed = true
		}
	}
	return changed
}

func (s borrowSet) equal(o borrowSet) bool {
	if len(s) != len(o) {
		return false
	}
	for k, b := range s {
		ob, ok := o[k]
		if !ok || ob.Kind != b.Kind || ob.Scope != b.Scope {
			return false
		}
	}
	return true
}

// refSources maps a local holding a reference to the locals its value
// points into, with the location of the originating borrow.
type refSources map[mir.LocalID]map[mir.LocalID]mir.Location

func (r refSources) add(ref, src mir.LocalID, at mir.Location) {
	m := r[ref]
	if m == nil {
		m = make(map[mir.LocalID]mir.Location)
		r[ref] = m
	}
	if old, ok := m[src]; ok {
		at = minLocation(old, at)
	}
	m[src] = at
}

// copyInto makes to point wherever from points.
func (r refSources) copyInto(from, to mir.LocalID) {
	for src, at := range r[from] {
		r.add(to, src, at)
	}
}

// forget removes id both as a holder and as a source.
func (r refSources) forget(id mir.LocalID) {
	delete(r, id)
	for ref, m := range r {
		delete(m, id)
		if len(m) == 0 {
			delete(r, ref)
		}
	}
}

// sortedRefs returns the reference holders in ascending order.
func (r refSources) sortedRefs() []mir.LocalID {
	return slices.Sorted(maps.Keys(r))
}

func (r refSources) sources(ref mir.LocalID) []mir.LocalID {
	return slices.Sorted(maps.Keys(r[ref]))
}

func (r refSources) join(o refSources) bool {
	changed := false
	for ref, m := range o {
		for src, at := range m {
			old, ok := r[ref][src]
			if !ok || at.Less(old) {
				r.add(ref, src, at)
				changed = true
			}
		}
	}
	return changed
}

func (r refSources) equal(o refSources) bool {
	if len(r) != len(o) {
		return false
	}
	for ref, m := range r {
		om, ok := o[ref]
		if !ok || !maps.Equal(m, om) {
			return false
		}
	}
	return true
}

func (r refSources) clone() refSources {
	out := make(refSources, len(r))
	for ref, m := range r {
		out[ref] = maps.Clone(m)
	}
	return out
}

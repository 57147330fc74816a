package mir

import "slices"

// LocalSet is an unordered set of locals.
type LocalSet map[LocalID]struct{}

func (s LocalSet) add(id LocalID) {
	if s == nil || id == NoLocalID {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s LocalSet) Has(id LocalID) bool {
	if s == nil {
		return false
	}
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s LocalSet) Sorted() []LocalID {
	if len(s) == 0 {
		return nil
	}
	ids := make([]LocalID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// cloneSet creates a copy of a LocalSet.
func cloneSet(s LocalSet) LocalSet {
	if len(s) == 0 {
		return nil
	}
	out := make(LocalSet, len(s))
	for id := range s {
		out.add(id)
	}
	return out
}

// unionSet merges src into dst and returns dst.
func unionSet(dst, src LocalSet) LocalSet {
	if dst == nil {
		dst = LocalSet{}
	}
	for id := range src {
		dst.add(id)
	}
	return dst
}

// subtractSet returns src minus sub.
func subtractSet(src, sub LocalSet) LocalSet {
	if len(src) == 0 {
		return nil
	}
	out := LocalSet{}
	for id := range src {
		if sub.Has(id) {
			continue
		}
		out.add(id)
	}
	return out
}

// setEqual checks if two LocalSets contain the same elements.
func setEqual(a, b LocalSet) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b.Has(id) {
			return false
		}
	}
	return true
}

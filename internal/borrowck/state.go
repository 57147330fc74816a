package borrowck

import (
	"slices"

	"mirck/internal/mir"
)

// StateKind is the ownership state of a local. The numeric order is the
// join order: the larger kind wins where control flow merges.
type StateKind uint8

const (
	Uninitialized StateKind = iota
	Owned
	PartiallyMoved
	Moved
	Dropped
)

func (k StateKind) String() string {
	switch k {
	case Uninitialized:
		return "uninitialized"
	case Owned:
		return "owned"
	case PartiallyMoved:
		return "partially moved"
	case Moved:
		return "moved"
	case Dropped:
		return "dropped"
	}
	return "unknown"
}

// MovedField records one field path moved out of a partially moved local.
type MovedField struct {
	Path []int
	At   mir.Location
}

// LocalState is the ownership automaton of one local.
type LocalState struct {
	Kind StateKind

	// Moved
	MovedAt mir.Location
	MovedTo mir.LocalID

	// PartiallyMoved, sorted by path
	MovedFields []MovedField

	// Dropped
	DroppedAt mir.Location
}

func (s LocalState) clone() LocalState {
	if len(s.MovedFields) > 0 {
		s.MovedFields = slices.Clone(s.MovedFields)
	}
	return s
}

// movedOverlap returns the first moved field overlapping path. An empty
// path overlaps every moved field.
func (s *LocalState) movedOverlap(path []int) (MovedField, bool) {
	for _, f := range s.MovedFields {
		if mir.FieldPathHasPrefix(f.Path, path) || mir.FieldPathHasPrefix(path, f.Path) {
			return f, true
		}
	}
	return MovedField{}, false
}

// addMovedField records path as moved, keeping the list sorted and free of
// paths covered by a shorter one.
func (s *LocalState) addMovedField(path []int, at mir.Location) {
	for _, f := range s.MovedFields {
		if mir.FieldPathHasPrefix(path, f.Path) {
			return
		}
	}
	kept := s.MovedFields[:0:0]
	for _, f := range s.MovedFields {
		if !mir.FieldPathHasPrefix(f.Path, path) {
			kept = append(kept, f)
		}
	}
	kept = append(kept, MovedField{Path: slices.Clone(path), At: at})
	slices.SortFunc(kept, func(a, b MovedField) int { return slices.Compare(a.Path, b.Path) })
	s.MovedFields = kept
}

// restoreField forgets moved paths under path after it is re-assigned.
func (s *LocalState) restoreField(path []int) {
	kept := s.MovedFields[:0:0]
	for _, f := range s.MovedFields {
		if !mir.FieldPathHasPrefix(f.Path, path) {
			kept = append(kept, f)
		}
	}
	s.MovedFields = kept
}

// allFieldsMoved reports whether every top-level field of a type with n
// fields has been moved out whole.
func (s *LocalState) allFieldsMoved(n int) bool {
	if n == 0 {
		return false
	}
	for i := range n {
		found := false
		for _, f := range s.MovedFields {
			if len(f.Path) == 1 && f.Path[0] == i {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func minLocation(a, b mir.Location) mir.Location {
	if b.Less(a) {
		return b
	}
	return a
}

// join merges the state reaching along another edge. It reports whether s
// changed.
func (s *LocalState) join(o *LocalState) bool {
	if o.Kind > s.Kind {
		*s = o.clone()
		return true
	}
	if o.Kind < s.Kind {
		return false
	}
	changed := false
	switch s.Kind {
	case Moved:
		if o.MovedAt.Less(s.MovedAt) {
			s.MovedAt, s.MovedTo = o.MovedAt, o.MovedTo
			changed = true
		}
	case Dropped:
		if o.DroppedAt.Less(s.DroppedAt) {
			s.DroppedAt = o.DroppedAt
			changed = true
		}
	case PartiallyMoved:
		before := s.clone()
		for _, f := range o.MovedFields {
			idx := slices.IndexFunc(s.MovedFields, func(g MovedField) bool { return slices.Equal(g.Path, f.Path) })
			if idx < 0 {
				s.addMovedField(f.Path, f.At)
				continue
			}
			if f.At.Less(s.MovedFields[idx].At) {
				s.MovedFields[idx].At = f.At
			}
		}
		changed = !s.equal(&before)
	}
	return changed
}

func (s *LocalState) equal(o *LocalState) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case Moved:
		return s.MovedAt == o.MovedAt && s.MovedTo == o.MovedTo
	case Dropped:
		return s.DroppedAt == o.DroppedAt
	case PartiallyMoved:
		return slices.EqualFunc(s.MovedFields, o.MovedFields, func(a, b MovedField) bool {
			return a.At == b.At && slices.Equal(a.Path, b.Path)
		})
	}
	return true
}

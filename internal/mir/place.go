package mir

import "slices"

type PlaceProjKind uint8

const (
	ProjField PlaceProjKind = iota
	ProjDeref
)

type PlaceProj struct {
	Kind  PlaceProjKind
	Field int
}

// Place is a local plus a projection path.
type Place struct {
	Local LocalID
	Proj  []PlaceProj
}

func LocalPlace(id LocalID) Place { return Place{Local: id} }

// Field returns a new place projecting field idx of p.
func (p Place) Field(idx int) Place {
	proj := make([]PlaceProj, 0, len(p.Proj)+1)
	proj = append(proj, p.Proj...)
	proj = append(proj, PlaceProj{Kind: ProjField, Field: idx})
	return Place{Local: p.Local, Proj: proj}
}

// Deref returns a new place dereferencing p.
func (p Place) Deref() Place {
	proj := make([]PlaceProj, 0, len(p.Proj)+1)
	proj = append(proj, p.Proj...)
	proj = append(proj, PlaceProj{Kind: ProjDeref})
	return Place{Local: p.Local, Proj: proj}
}

func (p Place) IsValid() bool { return p.Local != NoLocalID }

// IsLocal reports whether p names a whole local.
func (p Place) IsLocal() bool { return len(p.Proj) == 0 }

// HasDeref reports whether the place reads through a reference.
func (p Place) HasDeref() bool {
	for _, proj := range p.Proj {
		if proj.Kind == ProjDeref {
			return true
		}
	}
	return false
}

// FieldPath returns the leading field indices of the projection, stopping at
// the first dereference.
func (p Place) FieldPath() []int {
	var path []int
	for _, proj := range p.Proj {
		if proj.Kind != ProjField {
			break
		}
		path = append(path, proj.Field)
	}
	return path
}

// IsPrefixOf reports whether p is a syntactic prefix of other.
func (p Place) IsPrefixOf(other Place) bool {
	if p.Local != other.Local || len(p.Proj) > len(other.Proj) {
		return false
	}
	return slices.Equal(p.Proj, other.Proj[:len(p.Proj)])
}

// Overlaps reports whether two places may alias: one must be a prefix of
// the other. Index aliasing is not modelled.
func (p Place) Overlaps(other Place) bool {
	return p.IsPrefixOf(other) || other.IsPrefixOf(p)
}

func (p Place) Equal(other Place) bool {
	return p.Local == other.Local && slices.Equal(p.Proj, other.Proj)
}

// FieldPathHasPrefix reports whether prefix is a leading part of path.
func FieldPathHasPrefix(path, prefix []int) bool {
	if len(prefix) > len(path) {
		return false
	}
	return slices.Equal(path[:len(prefix)], prefix)
}

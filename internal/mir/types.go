package mir

type BlockID int32
type LocalID int32
type ScopeID int32

const (
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
	NoScopeID ScopeID = -1
)

// ReturnLocal is the return-value slot of every body.
const ReturnLocal LocalID = 0

// RootScope is the function-level scope; parameters and the return slot live here.
const RootScope ScopeID = 0

// StaticLifetime outlives every other lifetime.
const StaticLifetime = "static"

type TypeKind uint8

const (
	TypeUnit TypeKind = iota
	TypeScalar
	TypeAdt
	TypeRef
	TypeRefMut
)

// Type is the declared type of a local as far as the checker cares about it.
// Copy is decided upstream and taken as given.
type Type struct {
	Kind     TypeKind
	Name     string
	Copy     bool
	Lifetime string
	Elem     *Type
	Fields   []Type
}

func Unit() Type { return Type{Kind: TypeUnit, Name: "()", Copy: true} }

func Scalar(name string) Type { return Type{Kind: TypeScalar, Name: name, Copy: true} }

// Adt describes a struct-like aggregate. copy reports whether the upstream
// type checker considers the whole aggregate copyable.
func Adt(name string, copy bool, fields ...Type) Type {
	return Type{Kind: TypeAdt, Name: name, Copy: copy, Fields: fields}
}

// Ref is a shared reference; shared references are always copy.
func Ref(lifetime string, elem Type) Type {
	return Type{Kind: TypeRef, Copy: true, Lifetime: lifetime, Elem: &elem}
}

// MutRef is a unique reference; it moves.
func MutRef(lifetime string, elem Type) Type {
	return Type{Kind: TypeRefMut, Lifetime: lifetime, Elem: &elem}
}

func (t Type) IsRef() bool {
	return t.Kind == TypeRef || t.Kind == TypeRefMut
}

// Field returns the type of field idx, or false when the type has no such field.
func (t Type) Field(idx int) (Type, bool) {
	if t.Kind != TypeAdt || idx < 0 || idx >= len(t.Fields) {
		return Type{}, false
	}
	return t.Fields[idx], true
}

// Pointee returns the referenced type for references.
func (t Type) Pointee() (Type, bool) {
	if !t.IsRef() || t.Elem == nil {
		return Type{}, false
	}
	return *t.Elem, true
}

// LocalDecl declares one storage slot of a body.
type LocalDecl struct {
	Name     string
	Type     Type
	Mutable  bool
	Lifetime string
	Scope    ScopeID
}

// RegionName returns the lifetime tag of the local, falling back to the
// lifetime of its reference type.
func (d *LocalDecl) RegionName() string {
	if d == nil {
		return ""
	}
	if d.Lifetime != "" {
		return d.Lifetime
	}
	if d.Type.IsRef() {
		return d.Type.Lifetime
	}
	return ""
}

// ScopeData is one node of the lexical scope tree. Scope 0 has no parent.
type ScopeData struct {
	Parent ScopeID
}

// OutlivesBound records 'Longer: 'Shorter.
type OutlivesBound struct {
	Longer  string
	Shorter string
}

// Location addresses a statement, or the terminator when Stmt equals the
// number of statements in the block.
type Location struct {
	Block BlockID
	Stmt  int32
}

// Less orders locations by block, then statement.
func (l Location) Less(o Location) bool {
	if l.Block != o.Block {
		return l.Block < o.Block
	}
	return l.Stmt < o.Stmt
}

// Compare returns -1, 0 or 1, suitable for slices.SortFunc.
func (l Location) Compare(o Location) int {
	switch {
	case l.Less(o):
		return -1
	case o.Less(l):
		return 1
	}
	return 0
}

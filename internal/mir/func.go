package mir

// Body is the MIR of one function. Block 0 is the entry block.
type Body struct {
	Name       string
	Params     []Type
	ReturnType Type

	Locals     []LocalDecl
	Blocks     []Block
	BlockNames map[BlockID]string
	Scopes     []ScopeData

	LifetimeParams []string
	LifetimeBounds []OutlivesBound
}

func (b *Body) Local(id LocalID) *LocalDecl {
	if b == nil || id < 0 || int(id) >= len(b.Locals) {
		return nil
	}
	return &b.Locals[id]
}

func (b *Body) Block(id BlockID) *Block {
	if b == nil || id < 0 || int(id) >= len(b.Blocks) {
		return nil
	}
	return &b.Blocks[id]
}

// IsParam reports whether id is one of the parameter slots.
func (b *Body) IsParam(id LocalID) bool {
	return id > ReturnLocal && int(id) <= len(b.Params)
}

// ScopeParent returns the parent of s, or NoScopeID for the root.
func (b *Body) ScopeParent(s ScopeID) ScopeID {
	if b == nil || s <= RootScope || int(s) >= len(b.Scopes) {
		return NoScopeID
	}
	return b.Scopes[s].Parent
}

// ScopeChain returns the scopes enclosing s, outermost first, s last.
func (b *Body) ScopeChain(s ScopeID) []ScopeID {
	var rev []ScopeID
	for cur := s; cur != NoScopeID; cur = b.ScopeParent(cur) {
		rev = append(rev, cur)
		if cur == RootScope {
			break
		}
	}
	out := make([]ScopeID, len(rev))
	for i, id := range rev {
		out[len(rev)-1-i] = id
	}
	return out
}

// PlaceType resolves the type of p by walking its projections. The second
// result is false when the projection does not match the declared type.
func (b *Body) PlaceType(p Place) (Type, bool) {
	decl := b.Local(p.Local)
	if decl == nil {
		return Type{}, false
	}
	ty := decl.Type
	for _, proj := range p.Proj {
		var ok bool
		switch proj.Kind {
		case ProjField:
			ty, ok = ty.Field(proj.Field)
		case ProjDeref:
			ty, ok = ty.Pointee()
		}
		if !ok {
			return decl.Type, false
		}
	}
	return ty, true
}

// IsCopyPlace reports whether reading p duplicates the value rather than moving it.
func (b *Body) IsCopyPlace(p Place) bool {
	ty, _ := b.PlaceType(p)
	return ty.Copy
}

package mir

import (
	"fmt"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Builder assembles a Body one instruction at a time. It is an internal
// construction tool: referring to a block or local that was never allocated
// is a contract violation and panics.
type Builder struct {
	body  *Body
	cur   BlockID
	scope ScopeID
}

// NewBuilder allocates the return slot, one local per parameter and the
// entry block, and places the cursor on the entry block.
func NewBuilder(name string, params []Type, ret Type) *Builder {
	b := &Builder{
		body: &Body{
			Name:       name,
			Params:     append([]Type(nil), params...),
			ReturnType: ret,
			Scopes:     []ScopeData{{Parent: NoScopeID}},
		},
		scope: RootScope,
	}
	b.body.Locals = append(b.body.Locals, LocalDecl{Name: "ret", Type: ret, Mutable: true, Scope: RootScope})
	for _, p := range params {
		b.body.Locals = append(b.body.Locals, LocalDecl{Type: p, Scope: RootScope})
	}
	b.cur = b.NewBlock()
	return b
}

func toID(n int, what string) int32 {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		panic(fmt.Errorf("%s index overflow: %w", what, err))
	}
	return v
}

// NewBlock allocates a terminator-less block in the current scope. The
// cursor does not move.
func (b *Builder) NewBlock() BlockID {
	id := BlockID(toID(len(b.body.Blocks), "block"))
	b.body.Blocks = append(b.body.Blocks, Block{ID: id, Scope: b.scope})
	return id
}

func (b *Builder) SwitchToBlock(id BlockID) {
	b.block(id)
	b.cur = id
}

func (b *Builder) CurrentBlock() BlockID { return b.cur }

func (b *Builder) SetBlockName(id BlockID, name string) {
	b.block(id)
	if b.body.BlockNames == nil {
		b.body.BlockNames = make(map[BlockID]string)
	}
	b.body.BlockNames[id] = name
}

// SetBlockScope moves a block into scope s.
func (b *Builder) SetBlockScope(id BlockID, s ScopeID) {
	b.checkScope(s)
	b.block(id).Scope = s
}

// NewLocal allocates a temporary after every local allocated so far. The
// local belongs to the current scope.
func (b *Builder) NewLocal(ty Type, name string) LocalID {
	return b.DeclareLocal(LocalDecl{Name: name, Type: ty, Scope: b.scope})
}

// DeclareLocal allocates a local from a full declaration. A NoScopeID scope
// is replaced by the current scope.
func (b *Builder) DeclareLocal(decl LocalDecl) LocalID {
	if decl.Scope == NoScopeID {
		decl.Scope = b.scope
	}
	b.checkScope(decl.Scope)
	decl.Name = norm.NFC.String(decl.Name)
	id := LocalID(toID(len(b.body.Locals), "local"))
	b.body.Locals = append(b.body.Locals, decl)
	return id
}

// LocalDecl exposes a declaration for adjustment (name, mutability, lifetime).
func (b *Builder) LocalDecl(id LocalID) *LocalDecl {
	decl := b.body.Local(id)
	if decl == nil {
		panic(fmt.Errorf("local _%d was never allocated", id))
	}
	return decl
}

func (b *Builder) SetMutable(id LocalID, mutable bool) {
	b.LocalDecl(id).Mutable = mutable
}

func (b *Builder) SetLocalName(id LocalID, name string) {
	b.LocalDecl(id).Name = norm.NFC.String(name)
}

// PushScope opens a child of the current scope and makes it current.
func (b *Builder) PushScope() ScopeID {
	id := ScopeID(toID(len(b.body.Scopes), "scope"))
	b.body.Scopes = append(b.body.Scopes, ScopeData{Parent: b.scope})
	b.scope = id
	return id
}

// PopScope returns to the parent of the current scope.
func (b *Builder) PopScope() {
	parent := b.body.ScopeParent(b.scope)
	if parent == NoScopeID {
		panic("PopScope called on the root scope")
	}
	b.scope = parent
}

func (b *Builder) CurrentScope() ScopeID { return b.scope }

func (b *Builder) PushStmt(st Statement) {
	blk := b.block(b.cur)
	blk.Stmts = append(blk.Stmts, st)
}

func (b *Builder) Assign(dst Place, src RValue) {
	b.PushStmt(Statement{Kind: StmtAssign, Assign: AssignStmt{Dst: dst, Src: src}})
}

func (b *Builder) AssignConst(dst Place, c Const) {
	b.Assign(dst, Use(ConstOperand(c)))
}

func (b *Builder) AssignBinOp(dst Place, op BinOp, l, r Operand) {
	b.Assign(dst, Binary(op, l, r))
}

// Borrow assigns a reference to src into dst.
func (b *Builder) Borrow(dst Place, kind RefKind, src Place) {
	b.Assign(dst, RefOf(kind, src))
}

func (b *Builder) Drop(p Place) {
	b.PushStmt(Statement{Kind: StmtDrop, Drop: DropStmt{Place: p}})
}

func (b *Builder) Nop() {
	b.PushStmt(Statement{Kind: StmtNop})
}

// Terminate sets the terminator of the current block, replacing any
// previous one.
func (b *Builder) Terminate(t Terminator) {
	b.block(b.cur).Term = t
}

func (b *Builder) Goto(target BlockID) {
	b.block(target)
	b.Terminate(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: target}})
}

func (b *Builder) Return() {
	b.Terminate(Terminator{Kind: TermReturn})
}

func (b *Builder) Unreachable() {
	b.Terminate(Terminator{Kind: TermUnreachable})
}

func (b *Builder) SwitchInt(discr Operand, cases []SwitchCase, otherwise BlockID) {
	for _, c := range cases {
		b.block(c.Target)
	}
	b.block(otherwise)
	b.Terminate(Terminator{Kind: TermSwitchInt, SwitchInt: SwitchIntTerm{
		Discr:     discr,
		Cases:     append([]SwitchCase(nil), cases...),
		Otherwise: otherwise,
	}})
}

// Call terminates the block with a call to fn; target may be NoBlockID for a
// diverging call.
func (b *Builder) Call(fn string, args []Operand, dst Place, target BlockID) {
	if target != NoBlockID {
		b.block(target)
	}
	b.Terminate(Terminator{Kind: TermCall, Call: CallTerm{
		Func:   fn,
		Args:   append([]Operand(nil), args...),
		Dst:    dst,
		Target: target,
	}})
}

func (b *Builder) TailCall(fn string, args []Operand) {
	b.Terminate(Terminator{Kind: TermTailCall, TailCall: TailCallTerm{Func: fn, Args: append([]Operand(nil), args...)}})
}

func (b *Builder) Assert(cond Operand, expected bool, msg string, target BlockID) {
	b.block(target)
	b.Terminate(Terminator{Kind: TermAssert, Assert: AssertTerm{Cond: cond, Expected: expected, Msg: msg, Target: target}})
}

func (b *Builder) AddLifetimeParam(name string) {
	b.body.LifetimeParams = append(b.body.LifetimeParams, name)
}

// AddOutlives records 'longer: 'shorter.
func (b *Builder) AddOutlives(longer, shorter string) {
	b.body.LifetimeBounds = append(b.body.LifetimeBounds, OutlivesBound{Longer: longer, Shorter: shorter})
}

// Build hands over the body. The builder must not be used afterwards.
func (b *Builder) Build() *Body {
	body := b.body
	b.body = nil
	return body
}

func (b *Builder) block(id BlockID) *Block {
	if b.body == nil {
		panic("builder used after Build")
	}
	blk := b.body.Block(id)
	if blk == nil {
		panic(fmt.Errorf("bb%d was never allocated", id))
	}
	return blk
}

func (b *Builder) checkScope(s ScopeID) {
	if s < 0 || int(s) >= len(b.body.Scopes) {
		panic(fmt.Errorf("scope %d was never allocated", s))
	}
}

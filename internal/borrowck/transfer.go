package borrowck

import (
	"mirck/internal/mir"
)

func (ck *bodyChecker) statement(st *flowState, s *mir.Statement, loc mir.Location) {
	switch s.Kind {
	case mir.StmtAssign:
		ck.assign(st, s.Assign.Dst, &s.Assign.Src, loc)
	case mir.StmtDrop:
		ck.drop(st, s.Drop.Place, loc)
	}
}

func (ck *bodyChecker) terminator(st *flowState, blk *mir.Block) {
	loc := blk.TermLocation()
	term := &blk.Term
	switch term.Kind {
	case mir.TermSwitchInt:
		ck.operand(st, &term.SwitchInt.Discr, mir.NoLocalID, loc)
	case mir.TermAssert:
		ck.operand(st, &term.Assert.Cond, mir.NoLocalID, loc)
	case mir.TermReturn:
		ck.read(st, mir.LocalPlace(mir.ReturnLocal), loc)
		ck.exitFunction(st, blk, loc)
	case mir.TermCall:
		call := &term.Call
		if call.Target == mir.NoBlockID || !call.Dst.IsValid() {
			for i := range call.Args {
				ck.operand(st, &call.Args[i], mir.NoLocalID, loc)
			}
			return
		}
		// a returned reference may point wherever a reference argument points
		var sources []mir.LocalID
		if ty, _ := ck.body.PlaceType(call.Dst); ty.IsRef() {
			for i := range call.Args {
				if call.Args[i].Kind != mir.OperandConst {
					sources = append(sources, call.Args[i].Place.Local)
				}
			}
		}
		for i := range call.Args {
			ck.operand(st, &call.Args[i], call.Dst.Local, loc)
		}
		ck.write(st, call.Dst, loc, func() {
			for _, src := range sources {
				ck.propagate(st, src, call.Dst.Local, true)
			}
		})
	case mir.TermTailCall:
		for i := range term.TailCall.Args {
			arg := &term.TailCall.Args[i]
			ck.operand(st, arg, mir.NoLocalID, loc)
			if arg.Kind != mir.OperandConst {
				ck.escapingArgument(st, arg.Place.Local, loc)
			}
		}
	}
}

// operand evaluates one operand; dst is the local receiving the value, if any.
func (ck *bodyChecker) operand(st *flowState, op *mir.Operand, dst mir.LocalID, loc mir.Location) {
	switch op.Kind {
	case mir.OperandCopy:
		ck.read(st, op.Place, loc)
	case mir.OperandMove:
		ck.move(st, op.Place, dst, loc)
	}
}

// read checks that place may be read at loc.
func (ck *bodyChecker) read(st *flowState, place mir.Place, loc mir.Location) {
	id := place.Local
	ls := st.local(id)
	if ls == nil {
		return
	}
	st.borrows.activate(id)
	if !ck.checkInitialized(ls, id, place.FieldPath(), loc) {
		return
	}
	// copy values are read by value; only non-copy reads conflict
	if ck.body.IsCopyPlace(place) {
		return
	}
	for _, b := range st.borrows.of(readTarget(place), id) {
		if b.Kind != BorrowMutable {
			continue
		}
		ck.record(BorrowError{
			Kind:     BorrowWhileMutablyBorrowed,
			Local:    id,
			Other:    b.Borrower,
			At:       loc,
			Prior:    b.Location,
			HasPrior: true,
		})
		break
	}
}

// readTarget is the part of the base local a read through place touches.
func readTarget(place mir.Place) mir.Place {
	if !place.HasDeref() {
		return place
	}
	path := place.FieldPath()
	out := mir.LocalPlace(place.Local)
	for _, f := range path {
		out = out.Field(f)
	}
	return out
}

// checkInitialized reports use-after-move/free errors for a read of path.
// It returns false when an error was found.
func (ck *bodyChecker) checkInitialized(ls *LocalState, id mir.LocalID, path []int, loc mir.Location) bool {
	switch ls.Kind {
	case Moved:
		ck.record(BorrowError{Kind: UseAfterMove, Local: id, Other: ls.MovedTo, At: loc, Prior: ls.MovedAt, HasPrior: true})
		return false
	case Dropped:
		ck.record(BorrowError{Kind: UseAfterFree, Local: id, Other: mir.NoLocalID, At: loc, Prior: ls.DroppedAt, HasPrior: true})
		return false
	case PartiallyMoved:
		if f, ok := ls.movedOverlap(path); ok {
			ck.record(BorrowError{
				Kind:     UseAfterPartialMove,
				Local:    id,
				Other:    mir.NoLocalID,
				At:       loc,
				Prior:    f.At,
				HasPrior: true,
				Field:    f.Path,
			})
			return false
		}
	}
	return true
}

// move consumes place into dst.
func (ck *bodyChecker) move(st *flowState, place mir.Place, dst mir.LocalID, loc mir.Location) {
	if place.HasDeref() || ck.body.IsCopyPlace(place) {
		ck.read(st, place, loc)
		return
	}
	id := place.Local
	ls := st.local(id)
	if ls == nil {
		return
	}
	st.borrows.activate(id)
	if !ck.checkInitialized(ls, id, place.FieldPath(), loc) {
		return
	}
	if held := st.borrows.of(place, id); len(held) > 0 {
		b := held[0]
		ck.record(BorrowError{Kind: MoveWhileBorrowed, Local: id, Other: b.Borrower, At: loc, Prior: b.Location, HasPrior: true})
		return
	}
	ck.markMoved(ls, place, dst, loc)
}

func (ck *bodyChecker) markMoved(ls *LocalState, place mir.Place, dst mir.LocalID, loc mir.Location) {
	path := place.FieldPath()
	if len(path) == 0 {
		*ls = LocalState{Kind: Moved, MovedAt: loc, MovedTo: dst}
		return
	}
	if ls.Kind != PartiallyMoved {
		*ls = LocalState{Kind: PartiallyMoved}
	}
	ls.addMovedField(path, loc)
	ty := ck.body.Locals[place.Local].Type
	if ls.allFieldsMoved(len(ty.Fields)) {
		*ls = LocalState{Kind: Moved, MovedAt: loc, MovedTo: dst}
	}
}

// drop destroys place.
func (ck *bodyChecker) drop(st *flowState, place mir.Place, loc mir.Location) {
	id := place.Local
	ls := st.local(id)
	if ls == nil {
		return
	}
	if place.IsLocal() {
		// a dropped reference no longer holds its borrows
		st.borrows.removeIf(func(b *BorrowInfo) bool { return b.Borrower == id })
		delete(st.refs, id)
	}
	if place.HasDeref() {
		ck.read(st, place, loc)
		return
	}
	if ck.body.IsCopyPlace(place) {
		return
	}
	if !place.IsLocal() {
		ck.move(st, place, mir.NoLocalID, loc)
		return
	}
	switch ls.Kind {
	case Dropped:
		ck.record(BorrowError{Kind: DoubleFree, Local: id, Other: mir.NoLocalID, At: loc, Prior: ls.DroppedAt, HasPrior: true})
		return
	case Moved:
		return
	}
	*ls = LocalState{Kind: Dropped, DroppedAt: loc}
}

// assign evaluates rv and stores it into dst.
func (ck *bodyChecker) assign(st *flowState, dst mir.Place, rv *mir.RValue, loc mir.Location) {
	var post func()
	switch rv.Kind {
	case mir.RValueRef:
		post = ck.borrow(st, dst, rv.Ref.Kind, rv.Ref.Place, loc)
	case mir.RValueDiscriminant:
		ck.read(st, rv.Discriminant, loc)
	case mir.RValueLen:
		ck.read(st, rv.Len, loc)
	default:
		var sources []mir.Operand
		rv.Operands(func(op *mir.Operand) {
			ck.operand(st, op, dst.Local, loc)
			if op.Kind != mir.OperandConst && op.Place.IsLocal() {
				sources = append(sources, *op)
			}
		})
		if propagatesReferences(rv.Kind) && len(sources) > 0 {
			post = func() {
				for _, src := range sources {
					moved := src.Kind == mir.OperandMove && !ck.body.IsCopyPlace(src.Place)
					ck.propagate(st, src.Place.Local, dst.Local, !moved)
				}
			}
		}
	}
	ck.write(st, dst, loc, post)
}

func propagatesReferences(k mir.RValueKind) bool {
	switch k {
	case mir.RValueUse, mir.RValueCast, mir.RValueAggregate:
		return true
	}
	return false
}

// propagate makes dst refer wherever src refers. Borrows held by src are
// shared with dst, or handed over when keepSource is false.
func (ck *bodyChecker) propagate(st *flowState, src, dst mir.LocalID, keepSource bool) {
	if src == dst {
		return
	}
	st.refs.copyInto(src, dst)
	scope := mir.RootScope
	if decl := ck.body.Local(dst); decl != nil {
		scope = decl.Scope
	}
	st.borrows.transfer(src, dst, scope, keepSource)
}

// write stores a fresh value into dst; record runs after the old borrows
// of dst are gone and before its state is updated.
func (ck *bodyChecker) write(st *flowState, dst mir.Place, loc mir.Location, record func()) {
	id := dst.Local
	ls := st.local(id)
	if ls == nil {
		return
	}
	if dst.HasDeref() {
		// a write through a reference uses the reference
		ck.read(st, dst, loc)
		if record != nil {
			record()
		}
		return
	}
	if held := st.borrows.of(dst, id); len(held) > 0 {
		b := held[0]
		ck.record(BorrowError{Kind: AssignWhileBorrowed, Local: id, Other: b.Borrower, At: loc, Prior: b.Location, HasPrior: true})
	}
	if dst.IsLocal() {
		st.borrows.removeIf(func(b *BorrowInfo) bool { return b.Borrower == id })
		delete(st.refs, id)
	}
	if record != nil {
		record()
	}
	if dst.IsLocal() {
		*ls = LocalState{Kind: Owned}
		return
	}
	if ls.Kind == PartiallyMoved {
		ls.restoreField(dst.FieldPath())
		if len(ls.MovedFields) == 0 {
			*ls = LocalState{Kind: Owned}
		}
	}
}

// borrow checks a new reference to place and returns the bookkeeping to run
// once the destination is ready.
func (ck *bodyChecker) borrow(st *flowState, dst mir.Place, kind mir.RefKind, place mir.Place, loc mir.Location) func() {
	id := place.Local
	ls := st.local(id)
	if ls == nil {
		return nil
	}
	if place.HasDeref() {
		// reborrow through a reference: a use of the reference
		ck.read(st, place, loc)
		return nil
	}
	switch ls.Kind {
	case Moved:
		ck.record(BorrowError{Kind: BorrowAfterMove, Local: id, Other: ls.MovedTo, At: loc, Prior: ls.MovedAt, HasPrior: true})
		return nil
	case Dropped:
		ck.record(BorrowError{Kind: UseAfterFree, Local: id, Other: mir.NoLocalID, At: loc, Prior: ls.DroppedAt, HasPrior: true})
		return nil
	case PartiallyMoved:
		if f, ok := ls.movedOverlap(place.FieldPath()); ok {
			ck.record(BorrowError{Kind: BorrowAfterMove, Local: id, Other: mir.NoLocalID, At: loc, Prior: f.At, HasPrior: true, Field: f.Path})
			return nil
		}
	}

	newKind := borrowKindOf(kind)
	if newKind.IsMut() && !ck.body.Locals[id].Mutable {
		ck.record(BorrowError{Kind: MutBorrowOfImmutable, Local: id, Other: mir.NoLocalID, At: loc})
	}

	// borrows held by the destination end with this assignment
	skip := mir.NoLocalID
	if dst.IsLocal() && !dst.HasDeref() {
		skip = dst.Local
	}
	for _, b := range st.borrows.of(place, skip) {
		if !newKind.IsMut() && !b.Kind.IsMut() {
			continue
		}
		ck.record(BorrowError{
			Kind:          BorrowConflict,
			Local:         id,
			Other:         b.Borrower,
			At:            loc,
			Prior:         b.Location,
			HasPrior:      true,
			ExistingIsMut: b.Kind.IsMut(),
			NewIsMut:      newKind.IsMut(),
		})
		break
	}

	borrower := dst.Local
	scope := mir.RootScope
	if decl := ck.body.Local(borrower); decl != nil {
		scope = decl.Scope
	}
	return func() {
		st.borrows.add(BorrowInfo{
			Kind:     newKind,
			Location: loc,
			Borrower: borrower,
			Borrowed: id,
			Target:   place,
			Scope:    scope,
		})
		st.refs.add(borrower, id, loc)
	}
}

package mir

// ComputeLiveness returns, for every local that is read at least once as an
// operand, the last location of such a read. Borrows, writes through a deref
// and the implicit read of the return slot do not count. Blocks are scanned in
// index order and statements in order; this is a textual approximation
// and does not follow control flow. ComputeBlockLiveness is the precise
// variant.
func ComputeLiveness(b *Body) map[LocalID]Location {
	last := make(map[LocalID]Location)
	if b == nil {
		return last
	}
	for i := range b.Blocks {
		blk := &b.Blocks[i]
		for j := range blk.Stmts {
			loc := Location{Block: blk.ID, Stmt: int32(j)} //nolint:gosec // G115: bounded by statement count
			forEachStmtRead(&blk.Stmts[j], func(id LocalID) { last[id] = loc })
		}
		loc := blk.TermLocation()
		forEachTermRead(&blk.Term, func(id LocalID) { last[id] = loc })
	}
	return last
}

func forEachStmtRead(st *Statement, read func(LocalID)) {
	switch st.Kind {
	case StmtAssign:
		st.Assign.Src.Operands(func(op *Operand) {
			if op.Kind != OperandConst {
				read(op.Place.Local)
			}
		})
	}
}

func forEachTermRead(t *Terminator, read func(LocalID)) {
	t.Operands(func(op *Operand) {
		if op.Kind != OperandConst {
			read(op.Place.Local)
		}
	})
}

// BlockLiveness holds use/def and live-in/live-out sets of one block.
type BlockLiveness struct {
	Use LocalSet
	Def LocalSet
	In  LocalSet
	Out LocalSet
}

// ComputeBlockLiveness runs backward liveness to a fixed point over the CFG,
// so loops are handled. Besides operand reads, borrows count as uses of the
// borrowed local, writes through projections count as uses of the base
// local and return reads the return slot.
func ComputeBlockLiveness(b *Body) []BlockLiveness {
	if b == nil {
		return nil
	}
	info := make([]BlockLiveness, len(b.Blocks))
	for i := range b.Blocks {
		info[i].Use, info[i].Def = computeBlockUseDef(&b.Blocks[i])
	}
	succs := Successors(b)

	changed := true
	for changed {
		changed = false
		for i := len(b.Blocks) - 1; i >= 0; i-- {
			out := LocalSet{}
			for _, succ := range succs[i] {
				if succ < 0 || int(succ) >= len(info) {
					continue
				}
				out = unionSet(out, info[succ].In)
			}
			in := unionSet(cloneSet(info[i].Use), subtractSet(out, info[i].Def))

			if !setEqual(out, info[i].Out) || !setEqual(in, info[i].In) {
				info[i].Out = out
				info[i].In = in
				changed = true
			}
		}
	}
	return info
}

func computeBlockUseDef(bb *Block) (use, def LocalSet) {
	use = LocalSet{}
	def = LocalSet{}
	addUse := func(id LocalID) {
		if id == NoLocalID || def.Has(id) {
			return
		}
		use.add(id)
	}
	write := func(p Place) {
		if p.IsLocal() {
			def.add(p.Local)
			return
		}
		addUse(p.Local)
	}

	for i := range bb.Stmts {
		st := &bb.Stmts[i]
		switch st.Kind {
		case StmtAssign:
			forEachStmtRead(st, addUse)
			if st.Assign.Src.Kind == RValueRef {
				addUse(st.Assign.Src.Ref.Place.Local)
			}
			write(st.Assign.Dst)
		case StmtDrop:
			addUse(st.Drop.Place.Local)
		}
	}
	forEachTermRead(&bb.Term, addUse)
	switch bb.Term.Kind {
	case TermReturn:
		addUse(ReturnLocal)
	case TermCall:
		if bb.Term.Call.Dst.IsValid() {
			write(bb.Term.Call.Dst)
		}
	}
	return use, def
}

// LiveAcrossEdge reports whether id is live on entry to block to.
func LiveAcrossEdge(info []BlockLiveness, to BlockID, id LocalID) bool {
	if to < 0 || int(to) >= len(info) {
		return false
	}
	return info[to].In.Has(id)
}

package mir

type Block struct {
	ID    BlockID
	Scope ScopeID
	Stmts []Statement
	Term  Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// TermLocation returns the location of the block's terminator.
func (b *Block) TermLocation() Location {
	return Location{Block: b.ID, Stmt: int32(len(b.Stmts))} //nolint:gosec // G115: statement count bounded by builder
}

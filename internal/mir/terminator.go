package mir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermSwitchInt
	TermReturn
	TermCall
	TermTailCall
	TermAssert
	TermUnreachable
)

type Terminator struct {
	Kind TermKind

	Goto        GotoTerm
	SwitchInt   SwitchIntTerm
	Call        CallTerm
	TailCall    TailCallTerm
	Assert      AssertTerm
	Unreachable struct{}
}

type GotoTerm struct {
	Target BlockID
}

type SwitchCase struct {
	Value  int64
	Target BlockID
}

type SwitchIntTerm struct {
	Discr     Operand
	Cases     []SwitchCase
	Otherwise BlockID
}

// CallTerm calls Func and continues at Target with the result in Dst.
// A Target of NoBlockID marks a diverging call.
type CallTerm struct {
	Func   string
	Args   []Operand
	Dst    Place
	Target BlockID
}

type TailCallTerm struct {
	Func string
	Args []Operand
}

// AssertTerm continues at Target when Cond equals Expected and traps otherwise.
type AssertTerm struct {
	Cond     Operand
	Expected bool
	Msg      string
	Target   BlockID
}

// Targets returns the successor blocks of the terminator in declaration order.
func (t *Terminator) Targets() []BlockID {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TermGoto:
		return []BlockID{t.Goto.Target}
	case TermSwitchInt:
		out := make([]BlockID, 0, len(t.SwitchInt.Cases)+1)
		for _, c := range t.SwitchInt.Cases {
			out = append(out, c.Target)
		}
		return append(out, t.SwitchInt.Otherwise)
	case TermCall:
		if t.Call.Target == NoBlockID {
			return nil
		}
		return []BlockID{t.Call.Target}
	case TermAssert:
		return []BlockID{t.Assert.Target}
	}
	// TermReturn, TermTailCall, TermUnreachable and TermNone have no successors
	return nil
}

// Operands calls fn for every operand the terminator reads.
func (t *Terminator) Operands(fn func(*Operand)) {
	if t == nil {
		return
	}
	switch t.Kind {
	case TermSwitchInt:
		fn(&t.SwitchInt.Discr)
	case TermCall:
		for i := range t.Call.Args {
			fn(&t.Call.Args[i])
		}
	case TermTailCall:
		for i := range t.TailCall.Args {
			fn(&t.TailCall.Args[i])
		}
	case TermAssert:
		fn(&t.Assert.Cond)
	}
}

package mir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

func (id LocalID) String() string {
	if id == NoLocalID {
		return "_?"
	}
	return "_" + strconv.Itoa(int(id))
}

func (id BlockID) String() string {
	if id == NoBlockID {
		return "bb?"
	}
	return "bb" + strconv.Itoa(int(id))
}

func (l Location) String() string {
	return fmt.Sprintf("%s[%d]", l.Block, l.Stmt)
}

func (t Type) String() string {
	switch t.Kind {
	case TypeUnit:
		return "()"
	case TypeScalar:
		return t.Name
	case TypeAdt:
		if t.Name != "" {
			return t.Name
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TypeRef, TypeRefMut:
		var sb strings.Builder
		sb.WriteString("&")
		if t.Lifetime != "" {
			sb.WriteString("'" + t.Lifetime + " ")
		}
		if t.Kind == TypeRefMut {
			sb.WriteString("mut ")
		}
		if t.Elem != nil {
			sb.WriteString(t.Elem.String())
		} else {
			sb.WriteString("?")
		}
		return sb.String()
	}
	return "?"
}

func (p Place) String() string {
	if !p.IsValid() {
		return "_?"
	}
	out := p.Local.String()
	for _, proj := range p.Proj {
		switch proj.Kind {
		case ProjField:
			out += "." + strconv.Itoa(proj.Field)
		case ProjDeref:
			out = "(*" + out + ")"
		}
	}
	return out
}

func (c Const) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("const %d", c.IntValue)
	case ConstBool:
		return fmt.Sprintf("const %t", c.BoolValue)
	case ConstStr:
		return fmt.Sprintf("const %q", c.StrValue)
	case ConstUnit:
		return "const ()"
	case ConstFn:
		return "const fn " + c.StrValue
	}
	return "const ?"
}

func (op Operand) String() string {
	switch op.Kind {
	case OperandConst:
		return op.Const.String()
	case OperandCopy:
		return "copy " + op.Place.String()
	case OperandMove:
		return "move " + op.Place.String()
	}
	return "<op?>"
}

func formatOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, ", ")
}

func (rv RValue) String() string {
	switch rv.Kind {
	case RValueUse:
		return rv.Use.String()
	case RValueBinaryOp:
		return fmt.Sprintf("%s(%s, %s)", rv.Binary.Op, rv.Binary.Left, rv.Binary.Right)
	case RValueUnaryOp:
		return fmt.Sprintf("%s(%s)", rv.Unary.Op, rv.Unary.Operand)
	case RValueRef:
		switch rv.Ref.Kind {
		case RefMut:
			return "&mut " + rv.Ref.Place.String()
		case RefTwoPhaseMut:
			return "&two_phase " + rv.Ref.Place.String()
		}
		return "&" + rv.Ref.Place.String()
	case RValueAggregate:
		agg := rv.Aggregate
		switch agg.Kind {
		case AggregateTuple:
			return "(" + formatOperands(agg.Operands) + ")"
		case AggregateVariant:
			return fmt.Sprintf("%s::%d { %s }", agg.Name, agg.Variant, formatOperands(agg.Operands))
		}
		return fmt.Sprintf("%s { %s }", agg.Name, formatOperands(agg.Operands))
	case RValueDiscriminant:
		return "discriminant(" + rv.Discriminant.String() + ")"
	case RValueCast:
		return fmt.Sprintf("%s as %s", rv.Cast.Value, rv.Cast.Target)
	case RValueLen:
		return "Len(" + rv.Len.String() + ")"
	}
	return "<rvalue?>"
}

func (st Statement) String() string {
	switch st.Kind {
	case StmtAssign:
		return fmt.Sprintf("%s = %s", st.Assign.Dst, st.Assign.Src)
	case StmtDrop:
		return "drop(" + st.Drop.Place.String() + ")"
	case StmtNop:
		return "nop"
	}
	return "<stmt?>"
}

func (t Terminator) String() string {
	switch t.Kind {
	case TermNone:
		return "<unterminated>"
	case TermGoto:
		return "goto -> " + t.Goto.Target.String()
	case TermSwitchInt:
		var sb strings.Builder
		fmt.Fprintf(&sb, "switchInt(%s) -> [", t.SwitchInt.Discr)
		for _, c := range t.SwitchInt.Cases {
			fmt.Fprintf(&sb, "%d: %s, ", c.Value, c.Target)
		}
		fmt.Fprintf(&sb, "otherwise: %s]", t.SwitchInt.Otherwise)
		return sb.String()
	case TermReturn:
		return "return"
	case TermCall:
		call := fmt.Sprintf("%s = %s(%s)", t.Call.Dst, t.Call.Func, formatOperands(t.Call.Args))
		if t.Call.Target == NoBlockID {
			return call + " -> !"
		}
		return call + " -> " + t.Call.Target.String()
	case TermTailCall:
		return fmt.Sprintf("tailcall %s(%s)", t.TailCall.Func, formatOperands(t.TailCall.Args))
	case TermAssert:
		return fmt.Sprintf("assert(%s == %t, %q) -> %s", t.Assert.Cond, t.Assert.Expected, t.Assert.Msg, t.Assert.Target)
	case TermUnreachable:
		return "unreachable"
	}
	return "<term?>"
}

// DumpOptions configures MIR dumping.
type DumpOptions struct {
	// CommentColumn aligns local comments; 0 disables alignment.
	CommentColumn int
	// Liveness annotates every block with its live-in locals.
	Liveness bool
}

// DumpModule writes the canonical textual form of every body in m.
func DumpModule(w io.Writer, m *Module, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	for i, b := range m.Bodies {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := DumpBody(w, b, opts); err != nil {
			return err
		}
	}
	return nil
}

// DumpBody writes the canonical textual form of a body.
func DumpBody(w io.Writer, b *Body, opts DumpOptions) error {
	if w == nil || b == nil {
		return nil
	}
	var sb strings.Builder

	params := make([]string, len(b.Params))
	for i, p := range b.Params {
		params[i] = fmt.Sprintf("%s: %s", LocalID(i+1), p) //nolint:gosec // G115: bounded by param count
	}
	sb.WriteString("fn " + b.Name)
	if len(b.LifetimeParams) > 0 {
		lts := make([]string, len(b.LifetimeParams))
		for i, lt := range b.LifetimeParams {
			lts[i] = "'" + lt
		}
		sb.WriteString("<" + strings.Join(lts, ", ") + ">")
	}
	fmt.Fprintf(&sb, "(%s) -> %s", strings.Join(params, ", "), b.ReturnType)
	if len(b.LifetimeBounds) > 0 {
		bounds := make([]string, len(b.LifetimeBounds))
		for i, bd := range b.LifetimeBounds {
			bounds[i] = fmt.Sprintf("'%s: '%s", bd.Longer, bd.Shorter)
		}
		sb.WriteString(" where " + strings.Join(bounds, ", "))
	}
	sb.WriteString(" {\n")

	for i := range b.Locals {
		decl := &b.Locals[i]
		line := "    let "
		if decl.Mutable {
			line += "mut "
		}
		line += fmt.Sprintf("%s: %s;", LocalID(i), decl.Type) //nolint:gosec // G115: bounded by local count
		var notes []string
		if decl.Name != "" {
			notes = append(notes, decl.Name)
		}
		if decl.Scope != RootScope {
			notes = append(notes, fmt.Sprintf("scope %d", decl.Scope))
		}
		if lt := decl.Lifetime; lt != "" {
			notes = append(notes, "'"+lt)
		}
		if len(notes) > 0 {
			line = padTo(line, opts.CommentColumn) + " // " + strings.Join(notes, ", ")
		}
		sb.WriteString(line + "\n")
	}

	var live []BlockLiveness
	if opts.Liveness {
		live = ComputeBlockLiveness(b)
	}
	for i := range b.Blocks {
		blk := &b.Blocks[i]
		sb.WriteString("\n    " + blk.ID.String())
		if name, ok := b.BlockNames[blk.ID]; ok && name != "" {
			sb.WriteString(" (" + name + ")")
		}
		sb.WriteString(": {\n")
		if i < len(live) {
			if ids := live[i].In.Sorted(); len(ids) > 0 {
				names := make([]string, len(ids))
				for k, id := range ids {
					names[k] = id.String()
				}
				sb.WriteString("        // live-in: " + strings.Join(names, ", ") + "\n")
			}
		}
		for j := range blk.Stmts {
			sb.WriteString("        " + blk.Stmts[j].String() + ";\n")
		}
		sb.WriteString("        " + blk.Term.String() + ";\n")
		sb.WriteString("    }\n")
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func padTo(s string, col int) string {
	width := runewidth.StringWidth(s)
	if col <= 0 || width >= col {
		return s
	}
	return s + strings.Repeat(" ", col-width)
}

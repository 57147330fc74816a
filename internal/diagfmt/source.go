package diagfmt

import (
	"mirck/internal/diag"
	"mirck/internal/mir"
)

// Source resolves a span to the MIR text it points at.
type Source interface {
	Line(span diag.Span) (string, bool)
}

// Modules resolves spans against decoded modules keyed by file path.
type Modules map[string]*mir.Module

func (m Modules) Line(span diag.Span) (string, bool) {
	if !span.HasAt {
		return "", false
	}
	mod := m[span.File]
	if mod == nil {
		return "", false
	}
	body := mod.Lookup(span.Func)
	if body == nil {
		return "", false
	}
	blk := body.Block(span.At.Block)
	if blk == nil || span.At.Stmt < 0 {
		return "", false
	}
	switch i := int(span.At.Stmt); {
	case i < len(blk.Stmts):
		return blk.Stmts[i].String(), true
	case i == len(blk.Stmts) && blk.Terminated():
		return blk.Term.String(), true
	}
	return "", false
}

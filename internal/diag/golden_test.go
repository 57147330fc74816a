package diag

import (
	"testing"

	"mirck/internal/mir"
)

func TestFormatShortDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     MirInvalidBody,
			Message:  "another",
			Primary:  BodySpan("./lib.mirpk", "main", mir.Location{Block: 1, Stmt: 0}),
		},
		{
			Severity: SevError,
			Code:     BorrowUseAfterMove,
			Message:  "first line\nsecond",
			Primary:  BodySpan("./lib.mirpk", "main", mir.Location{Block: 0, Stmt: 2}),
			Notes: []Note{
				{Span: BodySpan("lib.mirpk", "main", mir.Location{Block: 0, Stmt: 1}), Msg: "moved here"},
			},
		},
	}

	expected := "note E0501 lib.mirpk:main:bb0[1] moved here\n" +
		"error E0501 lib.mirpk:main:bb0[2] first line second\n" +
		"warning MIR2001 lib.mirpk:main:bb1[0] another"

	if got := FormatShortDiagnostics(diags, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
	if got := FormatShortDiagnostics(nil, true); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

package diag

import (
	"testing"

	"mirck/internal/mir"
)

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{BorrowUseAfterMove, "E0501"},
		{BorrowLifetimeViolation, "E0512"},
		{IOLoadFileError, "IO1001"},
		{MirInvalidBody, "MIR2001"},
		{ProjConfigInvalid, "PRJ5001"},
		{ObsTimings, "OBS6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if got := Code(4242).Title(); got != "Unknown error" {
		t.Errorf("unexpected fallback title %q", got)
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	b := NewBag(3)
	at := func(blk mir.BlockID, stmt int32) Span {
		return BodySpan("a.mirpk", "f", mir.Location{Block: blk, Stmt: stmt})
	}
	b.Add(NewError(BorrowConflict, at(1, 0), "x"))
	b.Add(New(SevWarning, MirInvalidBody, at(0, 0), "w"))
	b.Add(NewError(BorrowConflict, at(1, 0), "x"))
	if b.Add(NewError(BorrowDoubleFree, at(2, 0), "overflow")) {
		t.Fatal("bag accepted a diagnostic past its limit")
	}

	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", b.Len())
	}
	b.Sort()
	if got := b.Items()[0].Code; got != MirInvalidBody {
		t.Fatalf("expected bb0 diagnostic first, got %s", got.ID())
	}
	if !b.HasErrors() || b.ErrorCount() != 1 {
		t.Fatalf("expected exactly one error, got %d", b.ErrorCount())
	}
}

func TestBagSortErrorsBeforeWarnings(t *testing.T) {
	b := NewBag(0)
	sp := FileSpan("a.mirpk")
	b.Add(New(SevWarning, MirInvalidBody, sp, "w"))
	b.Add(NewError(IODecodeError, sp, "e"))
	b.Sort()
	if b.Items()[0].Severity != SevError {
		t.Fatal("errors must sort before warnings at the same span")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(&BagReporter{Bag: bag})
	sp := BodySpan("a.mirpk", "f", mir.Location{})
	for range 3 {
		ReportError(r, BorrowUseAfterFree, sp, "use of dropped value").
			WithNote(sp, "dropped here").
			Emit()
	}
	ReportError(r, BorrowUseAfterFree, sp, "different message").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("expected note to be forwarded, got %+v", bag.Items()[0].Notes)
	}
}

func TestSpanString(t *testing.T) {
	tests := []struct {
		span Span
		want string
	}{
		{FileSpan("m.mirpk"), "m.mirpk"},
		{Span{File: "m.mirpk", Func: "f"}, "m.mirpk:f"},
		{BodySpan("m.mirpk", "f", mir.Location{Block: 3, Stmt: 1}), "m.mirpk:f:bb3[1]"},
	}
	for _, tt := range tests {
		if got := tt.span.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

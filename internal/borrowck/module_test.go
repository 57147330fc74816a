package borrowck_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"mirck/internal/borrowck"
	"mirck/internal/diag"
	"mirck/internal/mir"
	"mirck/internal/trace"
)

func moduleBodies() []*mir.Body {
	clean := mir.NewBuilder("clean", []mir.Type{intTy}, intTy)
	clean.Assign(local(0), mir.Use(mir.Copy(local(1))))
	clean.Return()
	return []*mir.Body{moveTwice(), clean.Build(), twoMutableBorrows(), pick()}
}

func TestCheckModuleConcatenatesInOrder(t *testing.T) {
	errs := borrowck.CheckModule(moduleBodies())
	expectKinds(t, errs, borrowck.UseAfterMove, borrowck.BorrowConflict, borrowck.LifetimeViolation)

	funcs := []string{errs[0].Func, errs[1].Func, errs[2].Func}
	if !reflect.DeepEqual(funcs, []string{"move_twice", "two_mut", "pick"}) {
		t.Fatalf("unexpected function order %v", funcs)
	}
}

func TestConcurrentCheckModuleMatchesSequential(t *testing.T) {
	want := borrowck.CheckModule(moduleBodies())
	for _, jobs := range []int{0, 1, 3} {
		ck := borrowck.New(borrowck.Config{Jobs: jobs})
		got, err := ck.CheckModule(context.Background(), moduleBodies())
		if err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("jobs=%d: concurrent result differs:\n%v\n%v", jobs, got, want)
		}
	}
}

func TestCheckModuleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := borrowck.New(borrowck.Config{}).CheckModule(ctx, moduleBodies())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCheckModuleTracesBodies(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := borrowck.New(borrowck.Config{Jobs: 2}).CheckModule(ctx, moduleBodies()); err != nil {
		t.Fatal(err)
	}
	ends := 0
	for _, ev := range ring.Snapshot() {
		if ev.Scope == trace.ScopeBody && ev.Kind == trace.KindSpanEnd {
			ends++
		}
	}
	if ends != len(moduleBodies()) {
		t.Fatalf("expected %d body spans, got %d", len(moduleBodies()), ends)
	}
}

func TestToDiagnostic(t *testing.T) {
	errs := borrowck.CheckBody(moveTwice())
	expectKinds(t, errs, borrowck.UseAfterMove)

	d := borrowck.ToDiagnostic("m.mirpk", errs[0])
	if d.Code != diag.BorrowUseAfterMove || d.Severity != diag.SevError {
		t.Fatalf("unexpected code/severity %s %s", d.Code.ID(), d.Severity)
	}
	if got := d.Primary.String(); got != "m.mirpk:move_twice:bb0[2]" {
		t.Fatalf("primary = %q", got)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "moved here" || d.Notes[0].Span.At != loc(0, 1) {
		t.Fatalf("unexpected notes %+v", d.Notes)
	}

	bag := diag.NewBag(10)
	borrowck.Report(&diag.BagReporter{Bag: bag}, "m.mirpk", errs)
	if bag.Len() != 1 || !bag.HasErrors() {
		t.Fatalf("expected one reported error, got %d", bag.Len())
	}
}

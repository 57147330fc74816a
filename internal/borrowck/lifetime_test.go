package borrowck_test

import (
	"testing"

	"mirck/internal/borrowck"
	"mirck/internal/mir"
)

// pick returns its second parameter, tagged 'b, as a reference tagged 'a.
func pick(bounds ...[2]string) *mir.Body {
	b := mir.NewBuilder("pick", []mir.Type{mir.Ref("a", intTy), mir.Ref("b", intTy)}, mir.Ref("a", intTy))
	b.AddLifetimeParam("a")
	b.AddLifetimeParam("b")
	for _, bd := range bounds {
		b.AddOutlives(bd[0], bd[1])
	}
	b.Assign(local(0), mir.Use(mir.Copy(local(2))))
	b.Return()
	return b.Build()
}

func TestLifetimeViolationOnReturn(t *testing.T) {
	errs := borrowck.CheckBody(pick())
	expectKinds(t, errs, borrowck.LifetimeViolation)

	e := errs[0]
	if e.Shorter != "b" || e.Longer != "a" || e.Local != mir.ReturnLocal || e.At != loc(0, 1) {
		t.Fatalf("unexpected error %+v", e)
	}
	want := "lifetime 'b may not live long enough for `_0`: 'b must outlive 'a"
	if got := e.Summary(); got != want {
		t.Fatalf("summary = %q", got)
	}
}

func TestOutlivesBounds(t *testing.T) {
	tests := []struct {
		name   string
		bounds [][2]string
		want   []borrowck.ErrorKind
	}{
		{name: "no bound", want: []borrowck.ErrorKind{borrowck.LifetimeViolation}},
		{name: "direct bound", bounds: [][2]string{{"b", "a"}}},
		{name: "wrong direction", bounds: [][2]string{{"a", "b"}}, want: []borrowck.ErrorKind{borrowck.LifetimeViolation}},
		{name: "transitive", bounds: [][2]string{{"b", "c"}, {"c", "a"}}},
		{name: "through static", bounds: [][2]string{{"b", mir.StaticLifetime}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectKinds(t, borrowck.CheckLifetimes(pick(tt.bounds...)), tt.want...)
		})
	}
}

func TestStaticOutlivesEverything(t *testing.T) {
	b := mir.NewBuilder("global", []mir.Type{mir.Ref(mir.StaticLifetime, intTy)}, mir.Ref("a", intTy))
	b.AddLifetimeParam("a")
	b.Assign(local(0), mir.Use(mir.Copy(local(1))))
	b.Return()

	expectKinds(t, borrowck.CheckBody(b.Build()))
}

func TestLifetimeOfTaggedLocal(t *testing.T) {
	b := mir.NewBuilder("store", []mir.Type{mir.Ref("b", intTy)}, mir.Unit())
	b.AddLifetimeParam("a")
	b.AddLifetimeParam("b")
	slot := b.DeclareLocal(mir.LocalDecl{Name: "slot", Type: mir.Ref("a", intTy), Mutable: true, Scope: mir.NoScopeID})
	x := b.NewLocal(intTy, "x")
	b.Assign(local(slot), mir.Use(mir.Copy(local(1))))
	b.AssignConst(local(x), mir.IntConst(1))
	b.Borrow(local(slot), mir.RefShared, local(x))
	b.Return()

	errs := borrowck.CheckLifetimes(b.Build())
	expectKinds(t, errs, borrowck.LifetimeViolation, borrowck.LifetimeViolation)
	if errs[0].Shorter != "b" || errs[0].At != loc(0, 0) {
		t.Errorf("first violation: %+v", errs[0])
	}
	if errs[1].Shorter != "_" || errs[1].Longer != "a" || errs[1].At != loc(0, 2) {
		t.Errorf("second violation: %+v", errs[1])
	}
}

func TestReborrowKeepsRegion(t *testing.T) {
	b := mir.NewBuilder("reborrow", []mir.Type{mir.Ref("a", intTy)}, mir.Ref("a", intTy))
	b.AddLifetimeParam("a")
	b.Borrow(local(0), mir.RefShared, local(1).Deref())
	b.Return()

	expectKinds(t, borrowck.CheckBody(b.Build()))
}

func TestSkipLifetimes(t *testing.T) {
	ck := borrowck.New(borrowck.Config{SkipLifetimes: true})
	expectKinds(t, ck.Check(pick()))
}

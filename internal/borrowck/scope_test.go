package borrowck_test

import (
	"testing"

	"mirck/internal/borrowck"
	"mirck/internal/mir"
)

// innerBorrow borrows a local of an inner scope into `_1`, leaves the
// scope and, when useAfter is set, reads through `_1` afterwards.
func innerBorrow(useAfter bool) *mir.Body {
	b := mir.NewBuilder("inner", nil, mir.Unit())
	r := b.NewLocal(mir.Ref("", intTy), "r")
	y := b.NewLocal(intTy, "y")
	b.PushScope()
	inner := b.NewBlock()
	x := b.NewLocal(intTy, "x")
	b.PopScope()
	after := b.NewBlock()

	b.Goto(inner)
	b.SwitchToBlock(inner)
	b.AssignConst(local(x), mir.IntConst(1))
	b.Borrow(local(r), mir.RefShared, local(x))
	b.Goto(after)
	b.SwitchToBlock(after)
	if useAfter {
		b.Assign(local(y), mir.Use(mir.Copy(local(r).Deref())))
	}
	b.Return()
	return b.Build()
}

func TestDanglingReferenceOnScopeExit(t *testing.T) {
	errs := borrowck.CheckBody(innerBorrow(true))
	expectKinds(t, errs, borrowck.DanglingReference)

	e := errs[0]
	if e.Local != 1 || e.Other != 3 {
		t.Errorf("expected `_1` dangling into `_3`, got %s -> %s", e.Local, e.Other)
	}
	if e.At != loc(1, 2) || e.Prior != loc(1, 1) {
		t.Errorf("unexpected locations: at %s prior %s", e.At, e.Prior)
	}
}

func TestUnusedReferenceStillDangles(t *testing.T) {
	errs := borrowck.CheckBody(innerBorrow(false))
	expectKinds(t, errs, borrowck.DanglingReference)
	if errs[0].Local != 1 || errs[0].Other != 3 || errs[0].At != loc(1, 2) {
		t.Fatalf("unexpected error %+v", errs[0])
	}
}

func TestScopeExitEndsBorrows(t *testing.T) {
	b := mir.NewBuilder("reborrow", []mir.Type{stringTy}, mir.Unit())
	b.SetMutable(1, true)
	b.PushScope()
	inner := b.NewBlock()
	m := b.NewLocal(mir.MutRef("", stringTy), "m")
	b.PopScope()
	after := b.NewBlock()
	m2 := b.NewLocal(mir.MutRef("", stringTy), "m2")

	b.Goto(inner)
	b.SwitchToBlock(inner)
	b.Borrow(local(m), mir.RefMut, local(1))
	b.Goto(after)
	b.SwitchToBlock(after)
	b.Borrow(local(m2), mir.RefMut, local(1))
	b.Return()

	expectKinds(t, borrowck.CheckBody(b.Build()))
}

func TestReturningReferenceToLocal(t *testing.T) {
	b := mir.NewBuilder("ret_local", nil, mir.Ref("", intTy))
	x := b.NewLocal(intTy, "x")
	b.AssignConst(local(x), mir.IntConst(3))
	b.Borrow(local(0), mir.RefShared, local(x))
	b.Return()

	errs := borrowck.CheckBody(b.Build())
	expectKinds(t, errs, borrowck.DanglingReference)
	if errs[0].Local != mir.ReturnLocal || errs[0].Other != x || errs[0].At != loc(0, 2) {
		t.Fatalf("unexpected error %+v", errs[0])
	}
}

func TestReturningReferenceThroughCopy(t *testing.T) {
	b := mir.NewBuilder("ret_copy", nil, mir.Ref("", intTy))
	x := b.NewLocal(intTy, "x")
	r := b.NewLocal(mir.Ref("", intTy), "r")
	b.AssignConst(local(x), mir.IntConst(3))
	b.Borrow(local(r), mir.RefShared, local(x))
	b.Assign(local(0), mir.Use(mir.Copy(local(r))))
	b.Return()

	expectKinds(t, borrowck.CheckBody(b.Build()), borrowck.DanglingReference)
}

func TestReturningParameterReference(t *testing.T) {
	ref := mir.Ref("a", intTy)
	b := mir.NewBuilder("identity", []mir.Type{ref}, ref)
	b.AddLifetimeParam("a")
	b.Assign(local(0), mir.Use(mir.Copy(local(1))))
	b.Return()

	expectKinds(t, borrowck.CheckBody(b.Build()))
}

func TestTailCallWithLocalReference(t *testing.T) {
	tests := []struct {
		name   string
		borrow bool
		want   []borrowck.ErrorKind
	}{
		{name: "reference to a local", borrow: true, want: []borrowck.ErrorKind{borrowck.DanglingReference}},
		{name: "plain value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mir.NewBuilder("tail", []mir.Type{mir.Ref("", intTy)}, mir.Unit())
			b.SetMutable(1, true)
			x := b.NewLocal(intTy, "x")
			b.AssignConst(local(x), mir.IntConst(1))
			if tt.borrow {
				b.Borrow(local(1), mir.RefShared, local(x))
			}
			b.TailCall("next", []mir.Operand{mir.Copy(local(1))})
			expectKinds(t, borrowck.CheckBody(b.Build()), tt.want...)
		})
	}
}

func TestLoopSinglePassAndFixedPoint(t *testing.T) {
	build := func() *mir.Body {
		b := mir.NewBuilder("loop", []mir.Type{intTy}, mir.Unit())
		s := b.NewLocal(stringTy, "s")
		t := b.NewLocal(stringTy, "t")
		head, body, exit := b.NewBlock(), b.NewBlock(), b.NewBlock()
		b.AssignConst(local(s), mir.StrConst("x"))
		b.Goto(head)
		b.SwitchToBlock(head)
		b.SwitchInt(mir.Copy(local(1)), []mir.SwitchCase{{Value: 0, Target: exit}}, body)
		b.SwitchToBlock(body)
		b.Assign(local(t), mir.Use(mir.Move(local(s))))
		b.Goto(head)
		b.SwitchToBlock(exit)
		b.Return()
		return b.Build()
	}

	expectKinds(t, borrowck.CheckBody(build()))

	ck := borrowck.New(borrowck.Config{Dataflow: borrowck.DataflowFixedPoint})
	errs := ck.Check(build())
	expectKinds(t, errs, borrowck.UseAfterMove)
	if errs[0].At != loc(2, 0) {
		t.Fatalf("expected the move in the loop body to fail, got %s", errs[0].At)
	}
}

func TestJoinIsPessimistic(t *testing.T) {
	b := mir.NewBuilder("branch", []mir.Type{intTy, stringTy}, mir.Unit())
	t1 := b.NewLocal(stringTy, "t1")
	t2 := b.NewLocal(stringTy, "t2")
	left, right, join := b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.SwitchInt(mir.Copy(local(1)), []mir.SwitchCase{{Value: 0, Target: left}}, right)
	b.SwitchToBlock(left)
	b.Assign(local(t1), mir.Use(mir.Move(local(2))))
	b.Goto(join)
	b.SwitchToBlock(right)
	b.Goto(join)
	b.SwitchToBlock(join)
	b.Assign(local(t2), mir.Use(mir.Move(local(2))))
	b.Return()

	errs := borrowck.CheckBody(b.Build())
	expectKinds(t, errs, borrowck.UseAfterMove)
	if errs[0].Prior != loc(1, 0) || errs[0].At != loc(3, 0) {
		t.Fatalf("unexpected locations %+v", errs[0])
	}
}

package borrowck_test

import (
	"slices"
	"testing"

	"mirck/internal/borrowck"
	"mirck/internal/mir"
)

var (
	intTy    = mir.Scalar("int")
	stringTy = mir.Adt("String", false)
	pairTy   = mir.Adt("Pair", false, stringTy, stringTy)
)

func loc(blk mir.BlockID, stmt int32) mir.Location {
	return mir.Location{Block: blk, Stmt: stmt}
}

func local(id mir.LocalID) mir.Place { return mir.LocalPlace(id) }

func kinds(errs []borrowck.BorrowError) []borrowck.ErrorKind {
	out := make([]borrowck.ErrorKind, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Kind)
	}
	return out
}

func expectKinds(t *testing.T, errs []borrowck.BorrowError, want ...borrowck.ErrorKind) {
	t.Helper()
	if got := kinds(errs); !slices.Equal(got, want) {
		for _, e := range errs {
			t.Logf("%v", e)
		}
		t.Fatalf("error kinds = %v, want %v", got, want)
	}
}

// moveTwice moves `_1` into `_2` and then again into `_3`.
func moveTwice() *mir.Body {
	b := mir.NewBuilder("move_twice", nil, mir.Unit())
	s := b.NewLocal(stringTy, "s")
	t := b.NewLocal(stringTy, "t")
	u := b.NewLocal(stringTy, "u")
	b.AssignConst(local(s), mir.StrConst("x"))
	b.Assign(local(t), mir.Use(mir.Move(local(s))))
	b.Assign(local(u), mir.Use(mir.Move(local(s))))
	b.Return()
	return b.Build()
}

// twoMutableBorrows takes `&mut _1` twice and then uses the first one.
func twoMutableBorrows() *mir.Body {
	b := mir.NewBuilder("two_mut", nil, mir.Unit())
	x := b.NewLocal(intTy, "x")
	b.SetMutable(x, true)
	r1 := b.NewLocal(mir.MutRef("", intTy), "r1")
	r2 := b.NewLocal(mir.MutRef("", intTy), "r2")
	y := b.NewLocal(intTy, "y")
	b.AssignConst(local(x), mir.IntConst(1))
	b.Borrow(local(r1), mir.RefMut, local(x))
	b.Borrow(local(r2), mir.RefMut, local(x))
	b.Assign(local(y), mir.Use(mir.Copy(local(r1).Deref())))
	b.Return()
	return b.Build()
}

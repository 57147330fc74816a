package mir_test

import (
	"slices"
	"testing"

	"mirck/internal/mir"
)

func TestCFGSingleReturnBlock(t *testing.T) {
	b := mir.NewBuilder("f", nil, mir.Unit())
	b.Return()
	body := b.Build()

	if succ := mir.Successors(body); len(succ) != 1 || len(succ[0]) != 0 {
		t.Errorf("expected no successors, got %v", succ)
	}
	if pred := mir.Predecessors(body); len(pred[0]) != 0 {
		t.Errorf("entry block should have no predecessors, got %v", pred[0])
	}
}

// diamond builds bb0 -switch-> bb1 | bb2 -> bb3 -> return.
func diamond() *mir.Body {
	b := mir.NewBuilder("diamond", []mir.Type{intTy}, mir.Unit())
	left, right, join := b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.SwitchInt(mir.Copy(mir.LocalPlace(1)), []mir.SwitchCase{{Value: 0, Target: left}}, right)
	b.SwitchToBlock(left)
	b.Goto(join)
	b.SwitchToBlock(right)
	b.Goto(join)
	b.SwitchToBlock(join)
	b.Return()
	return b.Build()
}

func TestCFGDiamond(t *testing.T) {
	body := diamond()
	succ := mir.Successors(body)
	pred := mir.Predecessors(body)

	if !slices.Equal(succ[0], []mir.BlockID{1, 2}) {
		t.Errorf("bb0 successors: %v", succ[0])
	}
	if !slices.Equal(pred[3], []mir.BlockID{1, 2}) {
		t.Errorf("bb3 predecessors: %v", pred[3])
	}
	if len(succ[3]) != 0 {
		t.Errorf("return block must have no successors: %v", succ[3])
	}
	rpo := mir.ReversePostorder(body)
	if rpo[0] != 0 || rpo[len(rpo)-1] != 3 {
		t.Errorf("unexpected reverse postorder %v", rpo)
	}
}

func TestCFGEdgeKinds(t *testing.T) {
	b := mir.NewBuilder("f", []mir.Type{intTy}, intTy)
	cont, trap, same := b.NewBlock(), b.NewBlock(), b.NewBlock()
	b.Call("g", []mir.Operand{mir.Copy(mir.LocalPlace(1))}, mir.LocalPlace(0), cont)
	b.SwitchToBlock(cont)
	b.Assert(mir.ConstOperand(mir.BoolConst(true)), true, "ok", same)
	b.SwitchToBlock(trap)
	b.Call("abort", nil, mir.LocalPlace(0), mir.NoBlockID)
	b.SwitchToBlock(same)
	b.SwitchInt(mir.Copy(mir.LocalPlace(1)), []mir.SwitchCase{{Value: 1, Target: trap}, {Value: 2, Target: trap}}, trap)
	body := b.Build()

	succ := mir.Successors(body)
	tests := []struct {
		block mir.BlockID
		want  []mir.BlockID
	}{
		{0, []mir.BlockID{cont}},
		{cont, []mir.BlockID{same}},
		{trap, nil},
		{same, []mir.BlockID{trap}},
	}
	for _, tt := range tests {
		if !slices.Equal(succ[tt.block], tt.want) {
			t.Errorf("%s successors: got %v, want %v", tt.block, succ[tt.block], tt.want)
		}
	}
}

func TestReachable(t *testing.T) {
	b := mir.NewBuilder("f", nil, mir.Unit())
	dead := b.NewBlock()
	b.Return()
	b.SwitchToBlock(dead)
	b.Return()
	body := b.Build()

	reach := mir.Reachable(body)
	if !reach[0] || reach[dead] {
		t.Errorf("unexpected reachability %v", reach)
	}
	if rpo := mir.ReversePostorder(body); !slices.Equal(rpo, []mir.BlockID{0}) {
		t.Errorf("reverse postorder should skip dead blocks: %v", rpo)
	}
}

package mir_test

import (
	"testing"

	"mirck/internal/mir"
)

// TestSimplifyCFG_TrivialGoto tests that trivial goto blocks are removed.
func TestSimplifyCFG_TrivialGoto(t *testing.T) {
	// bb0 (with statement) -> bb1 (trivial goto) -> bb2 (return)
	b := mir.NewBuilder("test", nil, intTy)
	mid, end := b.NewBlock(), b.NewBlock()
	b.AssignConst(mir.LocalPlace(0), mir.IntConst(1))
	b.Goto(mid)
	b.SwitchToBlock(mid)
	b.Goto(end)
	b.SwitchToBlock(end)
	b.Return()
	b.SetBlockName(end, "exit")
	f := b.Build()

	mir.SimplifyCFG(f)

	if len(f.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(f.Blocks))
	}
	if f.Blocks[0].Term.Goto.Target != 1 {
		t.Errorf("expected bb0 -> bb1, got %s", f.Blocks[0].Term.Goto.Target)
	}
	if f.Blocks[1].Term.Kind != mir.TermReturn {
		t.Errorf("expected bb1 to return")
	}
	if f.BlockNames[1] != "exit" {
		t.Errorf("block names not remapped: %v", f.BlockNames)
	}
	if err := mir.Validate(f); err != nil {
		t.Errorf("simplified body invalid: %v", err)
	}
}

// TestSimplifyCFG_UnreachableBlocks tests that unreachable blocks are removed.
func TestSimplifyCFG_UnreachableBlocks(t *testing.T) {
	b := mir.NewBuilder("test", nil, mir.Unit())
	dead := b.NewBlock()
	b.Return()
	b.SwitchToBlock(dead)
	b.Unreachable()
	f := b.Build()

	mir.SimplifyCFG(f)

	if len(f.Blocks) != 1 {
		t.Errorf("expected 1 block, got %d", len(f.Blocks))
	}
}

// TestSimplifyCFG_KeepsScopeBoundary tests that a trivial block whose scope
// differs from its target is kept.
func TestSimplifyCFG_KeepsScopeBoundary(t *testing.T) {
	b := mir.NewBuilder("test", nil, mir.Unit())
	b.PushScope()
	inner := b.NewBlock()
	b.PopScope()
	exit := b.NewBlock()
	b.Goto(inner)
	b.SwitchToBlock(inner)
	b.Goto(exit)
	b.SwitchToBlock(exit)
	b.Return()
	f := b.Build()

	mir.SimplifyCFG(f)

	if len(f.Blocks) != 3 {
		t.Errorf("expected scope boundary block to survive, got %d blocks", len(f.Blocks))
	}
}

// TestSimplifyCFG_SwitchTargets tests redirection through switch terminators.
func TestSimplifyCFG_SwitchTargets(t *testing.T) {
	b := mir.NewBuilder("test", []mir.Type{intTy}, mir.Unit())
	hop, end := b.NewBlock(), b.NewBlock()
	b.SwitchInt(mir.Copy(mir.LocalPlace(1)), []mir.SwitchCase{{Value: 0, Target: hop}}, end)
	b.SwitchToBlock(hop)
	b.Goto(end)
	b.SwitchToBlock(end)
	b.Return()
	f := b.Build()

	mir.SimplifyCFG(f)

	sw := f.Blocks[0].Term.SwitchInt
	if len(f.Blocks) != 2 || sw.Cases[0].Target != 1 || sw.Otherwise != 1 {
		t.Errorf("unexpected switch after simplify: %v (%d blocks)", f.Blocks[0].Term, len(f.Blocks))
	}
}

package mir

import "slices"

// Successors returns, for every block, the distinct blocks its terminator
// can transfer control to, in target order.
func Successors(b *Body) [][]BlockID {
	if b == nil {
		return nil
	}
	out := make([][]BlockID, len(b.Blocks))
	for i := range b.Blocks {
		out[i] = succBlocks(b, BlockID(i)) //nolint:gosec // G115: bounded by block count
	}
	return out
}

// Predecessors returns, for every block, the distinct blocks that can
// transfer control to it, in ascending order.
func Predecessors(b *Body) [][]BlockID {
	if b == nil {
		return nil
	}
	out := make([][]BlockID, len(b.Blocks))
	for i := range b.Blocks {
		for _, succ := range succBlocks(b, BlockID(i)) { //nolint:gosec // G115: bounded by block count
			if succ < 0 || int(succ) >= len(out) {
				continue
			}
			out[succ] = append(out[succ], BlockID(i)) //nolint:gosec // G115: bounded by block count
		}
	}
	return out
}

func succBlocks(b *Body, id BlockID) []BlockID {
	blk := b.Block(id)
	if blk == nil {
		return nil
	}
	targets := blk.Term.Targets()
	out := make([]BlockID, 0, len(targets))
	for _, t := range targets {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Reachable marks every block reachable from the entry block.
func Reachable(b *Body) []bool {
	if b == nil {
		return nil
	}
	reachable := make([]bool, len(b.Blocks))
	var visit func(id BlockID)
	visit = func(id BlockID) {
		if id < 0 || int(id) >= len(b.Blocks) || reachable[id] {
			return
		}
		reachable[id] = true
		for _, succ := range succBlocks(b, id) {
			visit(succ)
		}
	}
	if len(b.Blocks) > 0 {
		visit(0)
	}
	return reachable
}

// ReversePostorder lists the blocks reachable from the entry in reverse
// postorder, so every block comes after its forward-edge predecessors.
func ReversePostorder(b *Body) []BlockID {
	if b == nil || len(b.Blocks) == 0 {
		return nil
	}
	seen := make([]bool, len(b.Blocks))
	post := make([]BlockID, 0, len(b.Blocks))
	var visit func(id BlockID)
	visit = func(id BlockID) {
		if id < 0 || int(id) >= len(b.Blocks) || seen[id] {
			return
		}
		seen[id] = true
		for _, succ := range succBlocks(b, id) {
			visit(succ)
		}
		post = append(post, id)
	}
	visit(0)
	slices.Reverse(post)
	return post
}

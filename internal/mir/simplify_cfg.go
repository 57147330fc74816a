package mir

// SimplifyCFG performs control flow graph simplification on a body.
// Transformations:
// 1. Bypass trivial goto blocks (no statements + goto terminator)
// 2. Collapse goto chains
// 3. Remove unreachable blocks
// 4. Renumber blocks deterministically
//
// A trivial block is only bypassed when it shares its scope with its
// target, so the scopes exited along every edge stay the same. The entry
// block is never bypassed.
func SimplifyCFG(b *Body) {
	if b == nil || len(b.Blocks) == 0 {
		return
	}

	// Phase 1: Build redirect map for trivial goto blocks
	redirects := buildRedirectMap(b)

	// Phase 2: Apply redirects to all terminators
	applyRedirects(b, redirects)

	// Phase 3: Compute reachability and remove dead blocks
	reachable := Reachable(b)

	// Phase 4: Compact and renumber blocks
	compactBlocks(b, reachable)
}

// buildRedirectMap finds all bypassable goto blocks and maps them to their
// final targets (following chains).
func buildRedirectMap(b *Body) map[BlockID]BlockID {
	redirects := make(map[BlockID]BlockID)

	for i := 1; i < len(b.Blocks); i++ {
		bb := &b.Blocks[i]
		if !isTrivialGotoBlock(b, bb.ID) {
			continue
		}
		target := bb.ID
		visited := make(map[BlockID]bool)
		for !visited[target] && isTrivialGotoBlock(b, target) && target != 0 {
			visited[target] = true
			target = b.Blocks[target].Term.Goto.Target
		}
		if visited[target] {
			// goto cycle with no statements; leave it alone
			continue
		}
		redirects[bb.ID] = target
	}
	return redirects
}

// isTrivialGotoBlock reports whether a block has no statements, ends in a
// goto, and lives in the same scope as its target.
func isTrivialGotoBlock(b *Body, id BlockID) bool {
	bb := b.Block(id)
	if bb == nil || len(bb.Stmts) != 0 || bb.Term.Kind != TermGoto {
		return false
	}
	target := b.Block(bb.Term.Goto.Target)
	return target != nil && target.Scope == bb.Scope
}

// retarget rewrites every successor of t through fn.
func retarget(t *Terminator, fn func(BlockID) BlockID) {
	switch t.Kind {
	case TermGoto:
		t.Goto.Target = fn(t.Goto.Target)
	case TermSwitchInt:
		if len(t.SwitchInt.Cases) > 0 {
			t.SwitchInt.Cases = append([]SwitchCase(nil), t.SwitchInt.Cases...)
		}
		for j := range t.SwitchInt.Cases {
			t.SwitchInt.Cases[j].Target = fn(t.SwitchInt.Cases[j].Target)
		}
		t.SwitchInt.Otherwise = fn(t.SwitchInt.Otherwise)
	case TermCall:
		if t.Call.Target != NoBlockID {
			t.Call.Target = fn(t.Call.Target)
		}
	case TermAssert:
		t.Assert.Target = fn(t.Assert.Target)
	}
}

// applyRedirects updates all terminators to use the redirected targets.
func applyRedirects(b *Body, redirects map[BlockID]BlockID) {
	if len(redirects) == 0 {
		return
	}
	redirect := func(id BlockID) BlockID {
		if newID, ok := redirects[id]; ok {
			return newID
		}
		return id
	}
	for i := range b.Blocks {
		retarget(&b.Blocks[i].Term, redirect)
	}
}

// compactBlocks removes unreachable blocks and renumbers the remaining ones.
func compactBlocks(b *Body, reachable []bool) {
	count := 0
	for _, r := range reachable {
		if r {
			count++
		}
	}

	// If all blocks are reachable, just update IDs
	if count == len(b.Blocks) {
		for i := range b.Blocks {
			b.Blocks[i].ID = BlockID(i) //nolint:gosec // G115: bounded by existing block count
		}
		return
	}

	// Build old→new ID mapping
	oldToNew := make(map[BlockID]BlockID, count)
	newBlocks := make([]Block, 0, count)
	for i, keep := range reachable {
		if keep {
			//nolint:gosec // G115: bounded by existing block count
			oldToNew[BlockID(i)] = BlockID(len(newBlocks))
			newBlocks = append(newBlocks, b.Blocks[i])
		}
	}

	remap := func(id BlockID) BlockID {
		if newID, ok := oldToNew[id]; ok {
			return newID
		}
		return id
	}
	for i := range newBlocks {
		newBlocks[i].ID = BlockID(i) //nolint:gosec // G115: bounded by newBlocks length
		retarget(&newBlocks[i].Term, remap)
	}

	if len(b.BlockNames) > 0 {
		names := make(map[BlockID]string, len(b.BlockNames))
		for old, name := range b.BlockNames {
			if id, ok := oldToNew[old]; ok {
				names[id] = name
			}
		}
		b.BlockNames = names
	}
	b.Blocks = newBlocks
}

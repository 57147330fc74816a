package borrowck

import (
	"maps"
	"slices"

	"mirck/internal/mir"
)

// localRegion is the anonymous region of storage owned by the body.
const localRegion = "_"

// outlives is the relation built from a body's declared bounds.
type outlives struct {
	edges map[string][]string
}

func newOutlives(body *mir.Body) *outlives {
	r := &outlives{edges: make(map[string][]string)}
	for _, b := range body.LifetimeBounds {
		r.edges[b.Longer] = append(r.edges[b.Longer], b.Shorter)
	}
	return r
}

// holds reports whether longer is known to outlive shorter. The relation is
// reflexive and transitive; 'static outlives everything and every region
// outlives the body-local one.
func (r *outlives) holds(longer, shorter string) bool {
	if longer == shorter || longer == mir.StaticLifetime || shorter == localRegion {
		return true
	}
	seen := map[string]bool{longer: true}
	queue := []string{longer}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range r.edges[cur] {
			if next == shorter || next == mir.StaticLifetime {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

type regionSet map[string]struct{}

func (s regionSet) addAll(o regionSet) bool {
	changed := false
	for r := range o {
		if _, ok := s[r]; !ok {
			s[r] = struct{}{}
			changed = true
		}
	}
	return changed
}

func (s regionSet) sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// lifetimeChecker tracks which regions each local's value may carry.
type lifetimeChecker struct {
	body    *mir.Body
	rel     *outlives
	regions []regionSet
}

// CheckLifetimes reports values that flow into a lifetime-tagged local, or
// out through the return slot, without a declared bound proving that their
// region outlives the required one. The analysis is flow-insensitive over
// the reachable blocks.
func CheckLifetimes(body *mir.Body) []BorrowError {
	if body == nil || len(body.Blocks) == 0 {
		return nil
	}
	lc := &lifetimeChecker{
		body:    body,
		rel:     newOutlives(body),
		regions: make([]regionSet, len(body.Locals)),
	}
	for i := range lc.regions {
		lc.regions[i] = regionSet{}
	}
	for i := 1; i <= len(body.Params) && i < len(body.Locals); i++ {
		if lt := body.Locals[i].RegionName(); lt != "" {
			lc.regions[i][lt] = struct{}{}
		}
	}
	reachable := mir.Reachable(body)
	lc.propagate(reachable)
	return lc.check(reachable)
}

func (lc *lifetimeChecker) propagate(reachable []bool) {
	for changed := true; changed; {
		changed = false
		lc.eachFlow(reachable, func(dst mir.Place, value regionSet, _ mir.Location) {
			if dst.HasDeref() || lc.body.Local(dst.Local) == nil {
				return
			}
			if lc.regions[dst.Local].addAll(value) {
				changed = true
			}
		})
	}
}

func (lc *lifetimeChecker) check(reachable []bool) []BorrowError {
	var errs []BorrowError
	seen := make(map[errKey]struct{})
	add := func(e BorrowError) {
		e.Func = lc.body.Name
		k := e.key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		errs = append(errs, e)
	}

	lc.eachFlow(reachable, func(dst mir.Place, value regionSet, loc mir.Location) {
		if dst.HasDeref() || dst.Local == mir.ReturnLocal {
			return
		}
		required := lc.body.Local(dst.Local).RegionName()
		if required == "" {
			return
		}
		for _, r := range value.sorted() {
			if !lc.rel.holds(r, required) {
				add(BorrowError{Kind: LifetimeViolation, Local: dst.Local, Other: mir.NoLocalID, At: loc, Shorter: r, Longer: required})
			}
		}
	})

	required := lc.body.ReturnType.Lifetime
	if required == "" {
		return errs
	}
	for i := range lc.body.Blocks {
		blk := &lc.body.Blocks[i]
		if !reachable[i] || blk.Term.Kind != mir.TermReturn {
			continue
		}
		for _, r := range lc.regions[mir.ReturnLocal].sorted() {
			// references to body-local storage are reported as dangling
			if r == localRegion {
				continue
			}
			if !lc.rel.holds(r, required) {
				add(BorrowError{Kind: LifetimeViolation, Local: mir.ReturnLocal, Other: mir.NoLocalID, At: blk.TermLocation(), Shorter: r, Longer: required})
			}
		}
	}
	return errs
}

// eachFlow calls fn for every value stored into a place, in block order.
func (lc *lifetimeChecker) eachFlow(reachable []bool, fn func(dst mir.Place, value regionSet, loc mir.Location)) {
	for i := range lc.body.Blocks {
		if !reachable[i] {
			continue
		}
		blk := &lc.body.Blocks[i]
		for j := range blk.Stmts {
			st := &blk.Stmts[j]
			if st.Kind != mir.StmtAssign {
				continue
			}
			loc := mir.Location{Block: blk.ID, Stmt: int32(j)} //nolint:gosec // G115: bounded by statement count
			if value := lc.rvalueRegions(&st.Assign.Src); len(value) > 0 {
				fn(st.Assign.Dst, value, loc)
			}
		}
		if blk.Term.Kind == mir.TermCall && blk.Term.Call.Target != mir.NoBlockID && blk.Term.Call.Dst.IsValid() {
			call := &blk.Term.Call
			if ty, _ := lc.body.PlaceType(call.Dst); !ty.IsRef() {
				continue
			}
			value := regionSet{}
			for k := range call.Args {
				value.addAll(lc.operandRegions(&call.Args[k]))
			}
			if len(value) > 0 {
				fn(call.Dst, value, blk.TermLocation())
			}
		}
	}
}

func (lc *lifetimeChecker) rvalueRegions(rv *mir.RValue) regionSet {
	out := regionSet{}
	switch rv.Kind {
	case mir.RValueUse:
		out.addAll(lc.operandRegions(&rv.Use))
	case mir.RValueCast:
		out.addAll(lc.operandRegions(&rv.Cast.Value))
	case mir.RValueAggregate:
		for i := range rv.Aggregate.Operands {
			out.addAll(lc.operandRegions(&rv.Aggregate.Operands[i]))
		}
	case mir.RValueRef:
		if rv.Ref.Place.HasDeref() {
			// reborrow: lives as long as the reference it goes through
			out.addAll(lc.regionsOf(rv.Ref.Place.Local))
		} else {
			out[localRegion] = struct{}{}
		}
	}
	return out
}

func (lc *lifetimeChecker) operandRegions(op *mir.Operand) regionSet {
	if op.Kind == mir.OperandConst {
		return nil
	}
	p := op.Place
	if !p.HasDeref() {
		return lc.regionsOf(p.Local)
	}
	// reading through a reference yields the pointee; only a pointee that is
	// itself a reference carries a region
	if ty, ok := lc.body.PlaceType(p); ok && ty.IsRef() && ty.Lifetime != "" {
		return regionSet{ty.Lifetime: {}}
	}
	return nil
}

func (lc *lifetimeChecker) regionsOf(id mir.LocalID) regionSet {
	if id < 0 || int(id) >= len(lc.regions) {
		return nil
	}
	return lc.regions[id]
}

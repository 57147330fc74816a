package borrowck

import (
	"fmt"

	"mirck/internal/mir"
)

// Mode selects how violations are reported.
type Mode uint8

const (
	// ModeCollect reports every violation; the automaton keeps advancing
	// past each one.
	ModeCollect Mode = iota
	// ModeFailFast stops at the first violation.
	ModeFailFast
)

func (m Mode) String() string {
	switch m {
	case ModeCollect:
		return "collect"
	case ModeFailFast:
		return "failfast"
	}
	return "unknown"
}

// ParseMode converts a string to Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "collect":
		return ModeCollect, nil
	case "failfast", "fail-fast":
		return ModeFailFast, nil
	}
	return ModeCollect, fmt.Errorf("invalid mode: %q (expected: collect|failfast)", s)
}

// Dataflow selects how loops are handled.
type Dataflow uint8

const (
	// DataflowSinglePass visits each reachable block once in reverse
	// postorder; states along back edges are not propagated.
	DataflowSinglePass Dataflow = iota
	// DataflowFixedPoint iterates block entry states to a fixed point
	// before reporting.
	DataflowFixedPoint
)

func (d Dataflow) String() string {
	switch d {
	case DataflowSinglePass:
		return "single"
	case DataflowFixedPoint:
		return "fixpoint"
	}
	return "unknown"
}

// ParseDataflow converts a string to Dataflow.
func ParseDataflow(s string) (Dataflow, error) {
	switch s {
	case "", "single":
		return DataflowSinglePass, nil
	case "fixpoint", "fixed-point":
		return DataflowFixedPoint, nil
	}
	return DataflowSinglePass, fmt.Errorf("invalid dataflow: %q (expected: single|fixpoint)", s)
}

// Config controls a Checker.
type Config struct {
	Mode     Mode
	Dataflow Dataflow
	// Jobs bounds concurrent bodies in CheckModule; 0 means GOMAXPROCS.
	Jobs int
	// SkipLifetimes disables the lifetime pass.
	SkipLifetimes bool
}

// Checker checks bodies. It holds no per-body state and is safe for
// concurrent use.
type Checker struct {
	cfg Config
}

// New returns a Checker using cfg.
func New(cfg Config) *Checker {
	return &Checker{cfg: cfg}
}

// Config returns the checker configuration.
func (c *Checker) Config() Config { return c.cfg }

// Check runs the ownership pass and then the lifetime pass over body.
// In fail-fast mode at most one error is returned.
func (c *Checker) Check(body *mir.Body) []BorrowError {
	if body == nil {
		return nil
	}
	ck := newBodyChecker(body, c.cfg)
	ck.solve()
	if !c.cfg.SkipLifetimes {
		for _, e := range CheckLifetimes(body) {
			ck.record(e)
		}
	}
	return ck.errs
}

// Err returns the first violation in body, or nil.
func (c *Checker) Err(body *mir.Body) error {
	errs := New(Config{Mode: ModeFailFast, Dataflow: c.cfg.Dataflow, SkipLifetimes: c.cfg.SkipLifetimes}).Check(body)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// bodyChecker is the scratch state of one Check call.
type bodyChecker struct {
	body *mir.Body
	cfg  Config

	succs   [][]mir.BlockID
	lastUse map[mir.LocalID]mir.Location
	// dying[s] lists the locals declared directly in scope s.
	dying [][]mir.LocalID

	report bool
	halted bool
	errs   []BorrowError
	seen   map[errKey]struct{}
}

func newBodyChecker(body *mir.Body, cfg Config) *bodyChecker {
	ck := &bodyChecker{
		body:    body,
		cfg:     cfg,
		succs:   mir.Successors(body),
		lastUse: mir.ComputeLiveness(body),
		dying:   make([][]mir.LocalID, len(body.Scopes)),
		report:  true,
		seen:    make(map[errKey]struct{}),
	}
	for i := range body.Locals {
		s := body.Locals[i].Scope
		if s < 0 || int(s) >= len(ck.dying) {
			continue
		}
		ck.dying[s] = append(ck.dying[s], mir.LocalID(i)) //nolint:gosec // G115: bounded by local count
	}
	return ck
}

// record adds e unless it is a duplicate or reporting is off. It reports
// whether e was added.
func (ck *bodyChecker) record(e BorrowError) bool {
	if !ck.report || ck.halted {
		return false
	}
	e.Func = ck.body.Name
	if e.Kind.isBorrowRelated() && e.Other != mir.NoLocalID {
		if last, ok := ck.lastUse[e.Other]; ok && e.At.Less(last) {
			e.LaterUse, e.HasLaterUse = last, true
		}
	}
	k := e.key()
	if _, dup := ck.seen[k]; dup {
		return false
	}
	ck.seen[k] = struct{}{}
	ck.errs = append(ck.errs, e)
	if ck.cfg.Mode == ModeFailFast {
		ck.halted = true
	}
	return true
}

// entryState has the parameters owned and every other local uninitialized.
func (ck *bodyChecker) entryState() *flowState {
	st := newFlowState(len(ck.body.Locals))
	for i := 1; i <= len(ck.body.Params) && i < len(st.locals); i++ {
		st.locals[i].Kind = Owned
	}
	return st
}

func (ck *bodyChecker) solve() {
	if len(ck.body.Blocks) == 0 {
		return
	}
	order := mir.ReversePostorder(ck.body)
	in := make([]*flowState, len(ck.body.Blocks))
	in[0] = ck.entryState()

	if ck.cfg.Dataflow == DataflowFixedPoint {
		ck.report = false
		for changed := true; changed; {
			changed = false
			for _, id := range order {
				if in[id] == nil {
					continue
				}
				ck.visit(id, in[id].clone(), func(succ mir.BlockID, st *flowState) {
					if in[succ] == nil {
						in[succ] = st
						changed = true
						return
					}
					if in[succ].join(st) {
						changed = true
					}
				})
			}
		}
		ck.report = true
		for _, id := range order {
			if in[id] == nil || ck.halted {
				continue
			}
			ck.visit(id, in[id].clone(), func(mir.BlockID, *flowState) {})
		}
		return
	}

	visited := make([]bool, len(ck.body.Blocks))
	for _, id := range order {
		if in[id] == nil || ck.halted {
			continue
		}
		visited[id] = true
		ck.visit(id, in[id].clone(), func(succ mir.BlockID, st *flowState) {
			if visited[succ] {
				// back edge
				return
			}
			if in[succ] == nil {
				in[succ] = st
				return
			}
			in[succ].join(st)
		})
	}
}

// visit runs the transfer function of one block and hands the state of
// every outgoing edge, after its scope exits, to edge.
func (ck *bodyChecker) visit(id mir.BlockID, st *flowState, edge func(mir.BlockID, *flowState)) {
	blk := ck.body.Block(id)
	for i := range blk.Stmts {
		if ck.halted {
			return
		}
		loc := mir.Location{Block: id, Stmt: int32(i)} //nolint:gosec // G115: bounded by statement count
		ck.statement(st, &blk.Stmts[i], loc)
	}
	if ck.halted {
		return
	}
	ck.terminator(st, blk)

	succs := ck.succs[id]
	for i, succ := range succs {
		target := ck.body.Block(succ)
		if target == nil {
			continue
		}
		out := st
		if i < len(succs)-1 {
			out = st.clone()
		}
		ck.exitScopes(out, blk, target)
		edge(succ, out)
	}
}

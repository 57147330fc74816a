// Package borrowck checks ownership, borrowing and lifetime rules on MIR
// bodies.
//
// The ownership pass walks the reachable blocks of a body in reverse
// postorder and runs a per-local state machine:
//
//	Uninitialized -> Owned -> Moved | PartiallyMoved | Dropped
//
// Assignment brings a local back to Owned. Alongside the states it tracks
// the set of active borrows and, for every reference-holding local, the
// locals it may point into. Leaving a lexical scope ends the borrows
// created in it, and a reference that outlives its referent is reported.
//
// At join points states merge pessimistically: a local moved on any
// incoming path is moved after the join. By default loop back edges are
// not revisited; Config.Dataflow selects a fixed-point iteration instead.
//
// The lifetime pass is flow-insensitive. It collects the named regions
// that reach each local and checks them against the declared outlives
// bounds.
package borrowck

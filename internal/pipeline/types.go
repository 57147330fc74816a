package pipeline

import "time"

// Stage is a step a module file goes through.
type Stage string

const (
	// StageLoad decodes and validates a module file.
	StageLoad Stage = "load"
	// StageCheck runs the borrow and lifetime checks.
	StageCheck Stage = "check"
	// StageReport renders diagnostics.
	StageReport Stage = "report"
)

// Status captures progress within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file, or for the whole run when File is
// empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	// Errors is the number of violations found, set on StageCheck done.
	Errors int
	// Cached is set when every body was answered from the result cache.
	Cached bool
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// Emit sends ev to sink if there is one.
func Emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

// EmitQueued marks every file as queued.
func EmitQueued(sink ProgressSink, files []string) {
	for _, f := range files {
		Emit(sink, Event{File: f, Status: StatusQueued})
	}
}

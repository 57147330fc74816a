package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat periodically emits a liveness event carrying the goroutine count
// and heap size. Beats with no span ends in between point at a stuck body.
type Heartbeat struct {
	tracer Tracer
	start  time.Time
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// StartHeartbeat returns nil when tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer: tracer,
		start:  time.Now(),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go h.loop(interval)
	return h
}

func (h *Heartbeat) loop(interval time.Duration) {
	defer close(h.exited)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-h.done:
			return
		case now := <-ticker.C:
			h.beat(beat, now)
		}
	}
}

func (h *Heartbeat) beat(n int, now time.Time) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	h.tracer.Emit(&Event{
		Time:   now,
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat",
		Detail: "beat " + strconv.Itoa(n),
		Extra: map[string]string{
			"elapsed":    now.Sub(h.start).Round(time.Millisecond).String(),
			"goroutines": strconv.Itoa(runtime.NumGoroutine()),
			"heap_kb":    strconv.FormatUint(mem.HeapAlloc/1024, 10),
		},
	})
}

// Stop ends the loop and waits for it. Safe on nil and when called twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
	<-h.exited
}

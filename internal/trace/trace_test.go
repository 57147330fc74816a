package trace

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{"debug", LevelDebug, false},
		{"loud", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeBody, false},
		{LevelDebug, ScopeBody, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeBody, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Errorf("snapshot[%d] = %q, want %q", i, snap[i].Name, want)
		}
	}
}

func TestRingFiltersByLevel(t *testing.T) {
	r := NewRingTracer(8, LevelPhase)
	r.Emit(&Event{Kind: KindPoint, Scope: ScopeBody, Name: "body"})
	r.Emit(&Event{Kind: KindPoint, Scope: ScopePass, Name: "check"})
	if snap := r.Snapshot(); len(snap) != 1 || snap[0].Name != "check" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestFormatEvent(t *testing.T) {
	ev := &Event{
		Seq:    7,
		Kind:   KindSpanEnd,
		Scope:  ScopeModule,
		Name:   "module:lib.mirpk",
		Detail: "2 errors",
		Extra:  map[string]string{"bodies": "3", "blocks": "9"},
	}
	text := string(FormatEvent(ev, FormatText))
	if want := "#000007     ← module:lib.mirpk (2 errors) {blocks=9, bodies=3}\n"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}

	var decoded map[string]any
	if err := json.Unmarshal(FormatEvent(ev, FormatNDJSON), &decoded); err != nil {
		t.Fatalf("ndjson: %v", err)
	}
	if decoded["kind"] != "end" || decoded["scope"] != "module" || decoded["detail"] != "2 errors" {
		t.Errorf("unexpected ndjson %v", decoded)
	}
}

func TestSpanDisabled(t *testing.T) {
	s := Begin(Nop, ScopeDriver, "run", 0)
	if s.ID() != 0 {
		t.Errorf("disabled span has id %d", s.ID())
	}
	if d := s.WithExtra("k", "v").End("done"); d != 0 {
		t.Errorf("disabled span measured %v", d)
	}
}

func TestSpanParentage(t *testing.T) {
	r := NewRingTracer(16, LevelDebug)
	root := Begin(r, ScopeDriver, "run", 0)
	child := Begin(r, ScopeBody, "body:main", root.ID())
	child.WithExtra("blocks", "4").End("ok")
	root.End("")

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	if snap[1].ParentID != root.ID() || snap[2].Extra["blocks"] != "4" {
		t.Errorf("unexpected child events %+v %+v", snap[1], snap[2])
	}
}

func TestStreamTracer(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf, Format: FormatText})
	if err != nil {
		t.Fatal(err)
	}
	Point(tr, ScopePass, "decode", "1 file", 0)
	Point(tr, ScopeBody, "skipped", "", 0)
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "• decode (1 file)") || strings.Contains(out, "skipped") {
		t.Errorf("unexpected stream output %q", out)
	}
}

func TestHeartbeat(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat on a disabled tracer")
	}
	r := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(r.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()

	snap := r.Snapshot()
	if len(snap) == 0 {
		t.Fatal("no heartbeat recorded")
	}
	if snap[0].Kind != KindHeartbeat || snap[0].Extra["goroutines"] == "" {
		t.Errorf("unexpected heartbeat %+v", snap[0])
	}
}

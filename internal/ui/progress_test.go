package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mirck/internal/pipeline"
)

func TestProgressModelEvents(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("checking", []string{"a.mirpk", "b.mirpk"}, events).(*progressModel)

	m.Update(eventMsg{File: "a.mirpk", Stage: pipeline.StageCheck, Status: pipeline.StatusError, Errors: 2, Elapsed: 1500 * time.Microsecond})
	m.Update(eventMsg{File: "b.mirpk", Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: errors.New("bad schema")})
	m.Update(eventMsg{File: "unknown.mirpk", Status: pipeline.StatusDone})

	if got := m.items[0]; got.status != "errors" || got.detail != "2 errors, 1.5 ms" {
		t.Errorf("unexpected a item %+v", got)
	}
	if got := m.items[1]; got.status != "failed" || !strings.Contains(got.detail, "bad schema") {
		t.Errorf("unexpected b item %+v", got)
	}
	if m.finished() != 2 {
		t.Errorf("finished = %d, want 2", m.finished())
	}

	_, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Fatal("done should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done should return tea.Quit")
	}
	view := m.View()
	if !strings.Contains(view, "done: checking 2/2") || !strings.Contains(view, "a.mirpk") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		stage  pipeline.Stage
		status pipeline.Status
		want   string
	}{
		{"", pipeline.StatusQueued, "queued"},
		{pipeline.StageLoad, pipeline.StatusWorking, "loading"},
		{pipeline.StageLoad, pipeline.StatusDone, ""},
		{pipeline.StageCheck, pipeline.StatusDone, "ok"},
		{pipeline.StageCheck, pipeline.StatusError, "errors"},
		{pipeline.StageLoad, pipeline.StatusError, "failed"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.stage, tt.status); got != tt.want {
			t.Errorf("statusLabel(%q, %q) = %q, want %q", tt.stage, tt.status, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("ab", 6); got != "ab" {
		t.Errorf("got %q", got)
	}
	if got := truncate("日本語テキスト", 7); got != "日本..." {
		t.Errorf("wide runes: got %q", got)
	}
}

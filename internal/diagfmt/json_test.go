package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"mirck/internal/diag"
	"mirck/internal/mir"
)

func TestJSONBasic(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag("/tmp/sample.mirpk"), JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || output.Errors != 1 {
		t.Fatalf("Expected count=1 errors=1, got %d/%d", output.Count, output.Errors)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "E0501" || d.Title != "use of moved value" {
		t.Errorf("unexpected header fields: %+v", d)
	}
	if d.Location.File != "sample.mirpk" || d.Location.Func != "main" {
		t.Errorf("unexpected location: %+v", d.Location)
	}
	if d.Location.Block == nil || *d.Location.Block != 0 || d.Location.Stmt == nil || *d.Location.Stmt != 2 {
		t.Errorf("expected bb0[2], got %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "moved here" {
		t.Errorf("unexpected notes: %+v", d.Notes)
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	bag := diag.NewBag(10)
	for i := range 3 {
		sp := diag.BodySpan("m.mirpk", "f", mir.Location{Block: mir.BlockID(i)})
		bag.Add(diag.NewError(diag.BorrowDoubleFree, sp, "value `_1` dropped twice").WithNote(sp, "first dropped here"))
	}
	out := BuildDiagnosticsOutput(bag, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("expected output truncated to 2, got %d", out.Count)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatal("notes must be omitted unless requested")
	}
}

func TestJSONFileOnlySpan(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IODecodeError, diag.FileSpan("broken.mirpk"), "unexpected EOF"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"block"`) {
		t.Fatalf("file-only span must not carry a block:\n%s", buf.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, sampleBag("sample.mirpk"), false); err != nil {
		t.Fatal(err)
	}
	want := "error E0501 sample.mirpk:main:bb0[2] use of moved value `_1`\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

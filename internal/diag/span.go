package diag

import (
	"strings"

	"mirck/internal/mir"
)

// Span locates a diagnostic: a MIR file, optionally a function in it and
// optionally a statement or terminator of that function.
type Span struct {
	File  string
	Func  string
	At    mir.Location
	HasAt bool
}

// FileSpan points at a whole input file.
func FileSpan(file string) Span { return Span{File: file} }

// BodySpan points at a location inside a function.
func BodySpan(file, fn string, at mir.Location) Span {
	return Span{File: file, Func: fn, At: at, HasAt: true}
}

// String renders file:func:bbN[M], dropping the parts that are unset.
func (s Span) String() string {
	parts := make([]string, 0, 3)
	if s.File != "" {
		parts = append(parts, s.File)
	}
	if s.Func != "" {
		parts = append(parts, s.Func)
	}
	if s.HasAt {
		parts = append(parts, s.At.String())
	}
	return strings.Join(parts, ":")
}

// Compare orders spans by file, function and location.
func (s Span) Compare(o Span) int {
	if c := strings.Compare(s.File, o.File); c != 0 {
		return c
	}
	if c := strings.Compare(s.Func, o.Func); c != 0 {
		return c
	}
	if s.HasAt != o.HasAt {
		if !s.HasAt {
			return -1
		}
		return 1
	}
	return s.At.Compare(o.At)
}

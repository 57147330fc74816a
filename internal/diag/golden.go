package diag

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

type shortLine struct {
	sev  string
	code string
	span Span
	msg  string
}

// FormatShortDiagnostics renders one line per diagnostic, and per note when
// includeNotes is set, sorted by location:
//
//	error E0501 lib.mirpk:main:bb0[2] use of moved value `_1`
func FormatShortDiagnostics(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	lines := make([]shortLine, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		lines = append(lines, shortLine{
			sev:  severityLabel(d.Severity),
			code: d.Code.ID(),
			span: normalizeSpan(d.Primary),
			msg:  sanitizeMessage(d.Message),
		})
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			lines = append(lines, shortLine{
				sev:  "note",
				code: d.Code.ID(),
				span: normalizeSpan(n.Span),
				msg:  sanitizeMessage(n.Msg),
			})
		}
	}

	slices.SortStableFunc(lines, func(a, b shortLine) int {
		if c := a.span.Compare(b.span); c != 0 {
			return c
		}
		if c := cmp.Compare(a.sev, b.sev); c != 0 {
			return c
		}
		if c := cmp.Compare(a.code, b.code); c != 0 {
			return c
		}
		return cmp.Compare(a.msg, b.msg)
	})

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.sev + " " + l.code + " " + l.span.String() + " " + l.msg)
	}
	return b.String()
}

func normalizeSpan(s Span) Span {
	s.File = normalizePath(s.File)
	return s
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

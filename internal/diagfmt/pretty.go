package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"mirck/internal/diag"
)

type palette struct {
	err, warn, info, note, code, loc, gutter, mark *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		code:   mk(color.Bold),
		loc:    mk(color.FgWhite, color.Faint),
		gutter: mk(color.FgBlue),
		mark:   mk(color.FgRed),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty prints the diagnostics of bag in order, so call bag.Sort first.
// Each one gets a header
//
//	<path>:<func>:<bbN[M]>: <SEV> <CODE>: <message>
//
// followed, when opts.Context is set and src knows the location, by the
// MIR statement underlined with ^, and then by its notes.
func Pretty(w io.Writer, bag *diag.Bag, src Source, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.loc.Sprint(spanText(d.Primary, opts)),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			truncate(d.Message, opts.Width),
		)
		if opts.Context && src != nil {
			if line, ok := src.Line(d.Primary); ok {
				writeContext(w, p, d.Primary, line, opts.Width)
			}
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), spanText(n.Span, opts), n.Msg)
			if opts.Context && src != nil {
				if line, ok := src.Line(n.Span); ok {
					writeContext(w, p, n.Span, line, opts.Width)
				}
			}
		}
	}
}

func spanText(s diag.Span, opts PrettyOpts) string {
	s.File = formatPath(s.File, opts.PathMode, opts.BaseDir)
	return s.String()
}

func writeContext(w io.Writer, p palette, span diag.Span, line string, width int) {
	label := span.At.String()
	pad := strings.Repeat(" ", runewidth.StringWidth(label))
	line = truncate(line, width)
	fmt.Fprintf(w, "  %s %s\n", pad, p.gutter.Sprint("|"))
	fmt.Fprintf(w, "  %s %s %s\n", p.gutter.Sprint(label), p.gutter.Sprint("|"), line)
	fmt.Fprintf(w, "  %s %s %s\n", pad, p.gutter.Sprint("|"), p.mark.Sprint(strings.Repeat("^", max(1, runewidth.StringWidth(line)))))
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

package borrowck

import (
	"mirck/internal/diag"
)

// ToDiagnostic converts e into a diagnostic anchored in file. Every site of
// the error other than At becomes a note.
func ToDiagnostic(file string, e BorrowError) diag.Diagnostic {
	d := diag.NewError(e.Kind.Code(), diag.BodySpan(file, e.Func, e.At), e.Summary())
	primaryTaken := false
	for _, s := range e.Sites() {
		if s.At == e.At && !primaryTaken {
			primaryTaken = true
			continue
		}
		d = d.WithNote(diag.BodySpan(file, e.Func, s.At), s.Role+" here")
	}
	return d
}

// Report emits every error through r.
func Report(r diag.Reporter, file string, errs []BorrowError) {
	for _, e := range errs {
		d := ToDiagnostic(file, e)
		r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	}
}

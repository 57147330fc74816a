// Package diag defines the diagnostic model shared by every mirck phase.
//
// A Diagnostic carries a Severity, a stable numeric Code, a short message,
// a primary Span and optional notes. Spans do not point into source text:
// they name the MIR file, the function and the statement or terminator
// location (bbN[M]) involved.
//
// Codes are grouped by range and render with a prefix:
//
//   - 1..999: ownership and lifetime violations, E0501 and up
//   - 1000s: input files (IO)
//   - 2000s: malformed MIR (MIR)
//   - 5000s: project configuration (PRJ)
//   - 6000s: observability (OBS)
//
// Phases emit through a Reporter, usually a BagReporter, optionally behind
// a DedupReporter. Rendering lives in internal/diagfmt.
package diag

// Package trace records spans for the phases of a mirck run.
//
// Spans nest by scope: the driver, its passes (decode, validate, check,
// render), each input module and, at debug level, each function body.
// A ring tracer keeps the most recent events so they can be dumped when a
// run fails or hangs.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "check", 0)
//	defer span.End("")
package trace

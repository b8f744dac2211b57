// Package trace records spans around workspace loading and commits, to find
// out which documents make indexing slow.
//
// Tracing is off unless --trace-level (or trace in luasema.toml) asks for it:
//
//	luasema index --trace-level=detail --trace-mode=ring ./scripts
//
// A level admits scopes up to a limit: phase shows workspace operations and
// passes, detail adds documents, debug adds queries. In stream mode events
// go to the logger at debug level as they happen. In ring mode only the last
// events are kept and dumped at info level when the command exits.
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
package trace

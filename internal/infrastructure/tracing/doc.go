/*
Package tracing gives every HTTP request a trace and span id.

Ids are ULIDs from shared/id. A client that already has a trace passes it in
X-Trace-ID (and optionally X-Span-ID as the parent); otherwise one is minted.
Both ids are echoed in the response headers so the front end can quote them
when reporting a problem. Requests on /windows/:id routes carry the app id
on their span, so one window's history can be grepped out of the log.

Finished spans go through a buffered channel to a collector goroutine that
writes them to the zap logger. Close drains the buffer and stops it.

# Usage

	tracer := tracing.New("folio", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing

/*
Package tracing provides lightweight request tracing for the shell service.

# Overview

This package tracks operations across the shell's surfaces (REST API,
WebSocket gateway, probe pipeline) with spans tied together by trace IDs.
It follows OpenTelemetry concepts with a minimal implementation: spans are
collected through a buffered channel and emitted via structured logging.

# Features

- Trace context propagation via HTTP headers
- Span creation with parent-child relationships
- Automatic trace ID generation (ULID-backed)
- Gin middleware for automatic instrumentation
- Low overhead with buffered span collection

# Usage

	// Create tracer
	tracer := tracing.New("shell", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation (probe pipeline)
	span, ctx := tracer.StartSpan(ctx, "probe.fetch")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	span.SetTag("url", target)
	span.Log("redirect", map[string]interface{}{"hop": 2})

# Trace Format

Traces use standard HTTP headers for propagation:
- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation

# Performance

The tracing system is designed for minimal overhead:
- Buffered span collection (1000 spans)
- Async span processing
- Completed spans log at debug level, errors at error level
*/
package tracing

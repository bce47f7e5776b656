// Package tracing wraps the bare go.opentelemetry.io/otel/trace API with no
// SDK or exporter wired in (see DESIGN.md). By default this resolves to
// OTel's global no-op tracer, so every Span call below costs nothing unless
// the embedding program installs a real TracerProvider with
// otel.SetTracerProvider — the same "instrumentation always present,
// backend optional" shape internal/logging applies to logging, carried
// here to tracing instead.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "graphmirror"

// Tracer returns the package-level tracer for the mirror engine.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartSpan starts a span named for a mirror operation (registerObject,
// findOutdated, updateConnection, ...). The returned end func records err
// (if non-nil) on the span and always ends it; call it in a defer.
func StartSpan(ctx context.Context, name string) (context.Context, func(err *error)) {
	ctx, span := Tracer().Start(ctx, name)
	return ctx, func(err *error) {
		if err != nil && *err != nil {
			span.RecordError(*err)
			span.SetStatus(codes.Error, (*err).Error())
		}
		span.End()
	}
}

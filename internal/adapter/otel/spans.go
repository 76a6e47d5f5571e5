package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lexforge"

// StartQuerySpan starts a span covering one orchestrated query.
func StartQuerySpan(ctx context.Context, queryID, matterID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "query",
		trace.WithAttributes(
			attribute.String("query.id", queryID),
			attribute.String("matter.id", matterID),
		),
	)
}

// StartEngineSpan starts a span for one engine execution within a query.
func StartEngineSpan(ctx context.Context, engine, matterID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "engine",
		trace.WithAttributes(
			attribute.String("engine.id", engine),
			attribute.String("matter.id", matterID),
		),
	)
}

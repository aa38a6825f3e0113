// Tracing instrumentation for kernel runs.
package kernel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/verdantlabs/agentcore/internal/trace"
)

const tracerName = "github.com/verdantlabs/agentcore/internal/kernel"

// startRunSpan starts a span for one work order run.
func startRunSpan(ctx context.Context, order trace.WorkOrder) (context.Context, oteltrace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "kernel.execute")
	span.SetAttributes(
		attribute.String("workorder.id", order.ID),
		attribute.String("workorder.agent", order.RequestedBy),
	)
	return ctx, span
}

// endRunSpan ends the run span with the path taken and any error.
func endRunSpan(span oteltrace.Span, method trace.Method, err error) {
	span.SetAttributes(attribute.String("workorder.method", string(method)))
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

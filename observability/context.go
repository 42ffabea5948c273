package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one queryset or manager call from span start to the
// final metric record.
type Operation struct {
	Model     string
	Name      string
	Path      string
	RequestID string
	StartTime time.Time
	Metrics   *Metrics
}

// NewOperation creates a new operation. A nil metrics skips metric recording.
func NewOperation(model, name, path, requestID string, metrics *Metrics) *Operation {
	return &Operation{
		Model:     model,
		Name:      name,
		Path:      path,
		RequestID: requestID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

type operationKey struct{}

// WithOperation stores an Operation in the context.
func WithOperation(ctx context.Context, op *Operation) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext retrieves the Operation from context, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// Start opens the span for the operation and records the start metric.
func (op *Operation) Start(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String(AttrModel, op.Model),
		attribute.String(AttrOperation, op.Name),
		attribute.String(AttrPath, op.Path),
		attribute.String(AttrRequestID, op.RequestID),
	)
	if op.Metrics != nil {
		op.Metrics.RecordQueryStart(ctx)
	}
	return WithOperation(ctx, op), span
}

// End closes the span and records the outcome. errCode labels the error
// metric when err is non-nil.
func (op *Operation) End(ctx context.Context, span trace.Span, objects int, errCode string, err error) {
	duration := time.Since(op.StartTime)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int(AttrCount, objects),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if op.Metrics != nil {
		op.Metrics.RecordQueryEnd(ctx, op.Model, op.Name, status, objects, duration)
		if err != nil {
			op.Metrics.RecordError(ctx, errCode, op.Model)
		}
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}

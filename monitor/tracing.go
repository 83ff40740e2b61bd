package monitor

import (
	"context"

	"github.com/satishbabariya/dbkit/query"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/satishbabariya/dbkit"

// Span attribute keys
var (
	AttrSystem    = attribute.Key("db.system")
	AttrStatement = attribute.Key("db.statement")
	AttrOperation = attribute.Key("db.operation")
	AttrParams    = attribute.Key("db.dbkit.params")
)

// TracingMonitor wraps every statement in a client span.
type TracingMonitor struct {
	tracer trace.Tracer
	system string
}

type spanKey struct{ m *TracingMonitor }

// NewTracingMonitor returns a monitor creating spans from tp, or from the
// global provider when tp is nil. system is recorded as db.system.
func NewTracingMonitor(tp trace.TracerProvider, system string) *TracingMonitor {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingMonitor{tracer: tp.Tracer(tracerName), system: system}
}

func (m *TracingMonitor) StartQuery(ctx context.Context, sql string, bounded []query.Binding) context.Context {
	op := operation(sql)
	ctx, span := m.tracer.Start(ctx, "db."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrSystem.String(m.system),
			AttrStatement.String(sql),
			AttrOperation.String(op),
			AttrParams.Int(len(bounded)),
		),
	)
	return context.WithValue(ctx, spanKey{m}, span)
}

func (m *TracingMonitor) StopQuery(ctx context.Context, err error) {
	span, ok := ctx.Value(spanKey{m}).(trace.Span)
	if !ok {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

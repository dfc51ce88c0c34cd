package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a recording tracer provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithService(ServiceCalendar).
		WithOperation(OperationList).
		WithRoom("Kilimanjaro", "c_188abc@resource.calendar.google.com").
		WithPublisher("asana").
		WithRange("2021-01-01T00:00:00Z", "2021-01-31T00:00:00Z").
		Build()

	if len(attrs) != 7 {
		t.Errorf("expected 7 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrService] != ServiceCalendar {
		t.Errorf("expected service %q, got %v", ServiceCalendar, attrMap[SpanAttrService])
	}
	if attrMap[SpanAttrRoom] != "Kilimanjaro" {
		t.Errorf("expected room 'Kilimanjaro', got %v", attrMap[SpanAttrRoom])
	}
	if attrMap[SpanAttrCalendarID] != "c_188abc@resource.calendar.google.com" {
		t.Errorf("unexpected calendar id %v", attrMap[SpanAttrCalendarID])
	}
	if attrMap[SpanAttrPublisher] != "asana" {
		t.Errorf("expected publisher 'asana', got %v", attrMap[SpanAttrPublisher])
	}
	if attrMap[SpanAttrStartDate] != "2021-01-01T00:00:00Z" {
		t.Errorf("unexpected start %v", attrMap[SpanAttrStartDate])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithService(ServiceTasks).
		WithRoom("", "").
		WithPublisher("").
		Build()

	if len(attrs) != 1 {
		t.Errorf("expected 1 attribute (only service), got %d", len(attrs))
	}
}

func TestStartAPISpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartAPISpan(context.Background(), ServiceCalendar, OperationList)
	SetSpanSuccess(span)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "calendar.list" {
		t.Errorf("expected span name 'calendar.list', got %q", spans[0].Name())
	}
	if spans[0].SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span, got %v", spans[0].SpanKind())
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("expected OK status, got %v", spans[0].Status().Code)
	}
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartToolSpan(context.Background(), "room_utilization_report")
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "tool.room_utilization_report" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].SpanKind() != trace.SpanKindServer {
		t.Errorf("expected server span, got %v", spans[0].SpanKind())
	}
}

func TestStartSpan_Nested(t *testing.T) {
	recorder := recordSpans(t)

	ctx, parent := StartSpan(context.Background(), "report.run")
	_, child := StartAPISpan(ctx, ServiceAsana, OperationCreate)
	child.End()
	parent.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("expected API span to be a child of the run span")
	}
}

func TestSetSpanError(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "test-span")
	SetSpanError(span, errors.New("test error"))
	SetSpanError(span, nil) // nil error is ignored
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status().Code)
	}
	if spans[0].Status().Description != "test error" {
		t.Errorf("unexpected status description %q", spans[0].Status().Description)
	}
}

func TestAddSpanEvent(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "test-span")
	AddSpanEvent(span, "room.skipped")
	span.End()

	events := recorder.Ended()[0].Events()
	if len(events) != 1 || events[0].Name != "room.skipped" {
		t.Errorf("expected one room.skipped event, got %v", events)
	}
}

func TestGetTraceID(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID for context without span, got %q", id)
	}

	recordSpans(t)
	ctx, span := StartSpan(context.Background(), "test-span")
	defer span.End()

	if id := GetTraceID(ctx); id == "" {
		t.Error("expected trace ID inside a recorded span")
	}
}

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	before := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(before)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartServiceSpan(t *testing.T) {
	sr := recordSpans(t)

	_, span := StartServiceSpan(context.Background(), "message", "create",
		SpanAttrMessageID, int64(7), "ignored")
	SetAttributes(span, SpanAttrStored, true, 42, "non-string key")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "message.create", spans[0].Name())
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.Int64(SpanAttrMessageID, 7),
		attribute.Bool(SpanAttrStored, true),
	}, spans[0].Attributes())
}

func TestRecordError(t *testing.T) {
	sr := recordSpans(t)

	_, span := StartServiceSpan(context.Background(), "contact", "submit")
	RecordError(span, nil)
	RecordError(span, errors.New("insert failed"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "insert failed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.String("k", "v"), toAttribute("k", "v"))
	assert.Equal(t, attribute.Int("k", 3), toAttribute("k", 3))
	assert.Equal(t, attribute.Float64("k", 1.5), toAttribute("k", 1.5))
	assert.Equal(t, attribute.StringSlice("k", []string{"a"}), toAttribute("k", []string{"a"}))
	assert.Equal(t, attribute.String("k", "[1 2]"), toAttribute("k", []uint8{1, 2}))
}

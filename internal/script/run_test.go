package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/redraft/internal/editor"
	"github.com/zjrosen/redraft/internal/history"
	"github.com/zjrosen/redraft/internal/tracing"
)

func mustParse(t *testing.T, src string) Script {
	t.Helper()
	sc, err := Parse([]byte(src))
	require.NoError(t, err)
	return sc
}

func TestRun_Demo(t *testing.T) {
	s := editor.New()
	require.NoError(t, Run(context.Background(), s, Demo(), nil))

	snap := s.Snapshot()
	require.Equal(t, "Hello World, Go Design Patterns", snap.Content)
	require.Equal(t, 31, snap.Cursor)
}

func TestRun_ObserverSeesEachStep(t *testing.T) {
	sc := mustParse(t, `
steps:
  - insert: "ab"
  - delete: 1
  - undo: 1
`)
	var seen []string
	obs := ObserverFunc(func(i int, step Step, before, after editor.Snapshot) {
		seen = append(seen, before.Content+">"+after.Content)
	})

	require.NoError(t, Run(context.Background(), editor.New(), sc, obs))
	require.Equal(t, []string{">ab", "ab>a", "a>ab"}, seen)
}

func TestRun_MacroIsOneEntry(t *testing.T) {
	sc := mustParse(t, `
steps:
  - insert: "x"
  - macro:
      - insert: "yz"
      - delete: 1
      - macro:
          - insert: "!"
  - expect: {content: "xy!", cursor: 3, undo: 2, redo: 0}
  - undo: 1
  - expect: {content: "x", cursor: 1, undo: 1, redo: 1}
`)
	require.NoError(t, Run(context.Background(), editor.New(), sc, nil))
}

func TestRun_UndoBeyondHistoryIsNoop(t *testing.T) {
	sc := mustParse(t, `
steps:
  - insert: "a"
  - undo: 5
  - expect: {content: "", undo: 0, redo: 1}
  - redo: 3
  - expect: {content: "a", undo: 1, redo: 0}
`)
	require.NoError(t, Run(context.Background(), editor.New(), sc, nil))
}

func TestRun_Clear(t *testing.T) {
	sc := mustParse(t, `
steps:
  - insert: "keep"
  - clear: true
  - undo: 1
  - expect: {content: "keep", undo: 0, redo: 0}
`)
	require.NoError(t, Run(context.Background(), editor.New(), sc, nil))
}

func TestRun_ExpectationFailureStops(t *testing.T) {
	sc := mustParse(t, `
steps:
  - insert: "a"
  - expect: {content: "b"}
  - insert: "never"
`)
	s := editor.New()

	err := Run(context.Background(), s, sc, nil)
	require.ErrorIs(t, err, ErrExpectation)
	require.ErrorContains(t, err, "step 2 (line 4, expect)")
	require.Equal(t, "a", s.Snapshot().Content)
}

func TestRun_ExpectationFields(t *testing.T) {
	tests := []struct {
		name   string
		expect string
		want   string
	}{
		{"cursor", "{cursor: 9}", "cursor is 2"},
		{"undo", "{undo: 9}", "undo count is 1"},
		{"redo", "{redo: 9}", "redo count is 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := mustParse(t, "steps:\n  - insert: ab\n  - expect: "+tt.expect+"\n")
			err := Run(context.Background(), editor.New(), sc, nil)
			require.ErrorIs(t, err, ErrExpectation)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := editor.New()
	err := Run(ctx, s, Demo(), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, s.Snapshot().Content)
}

func TestRun_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	s := editor.New(editor.WithHistory(history.New(history.WithTracer(tp.Tracer("test")))))
	defer s.Close()

	sc := mustParse(t, "name: spans\nsteps:\n  - insert: a\n  - undo: 1\n")
	require.NoError(t, Run(context.Background(), s, sc, nil))

	spans := recorder.Ended()
	var names []string
	for _, span := range spans {
		names = append(names, span.Name())
	}
	require.Equal(t, []string{
		tracing.SpanHistoryExecute, tracing.SpanScriptStep,
		tracing.SpanHistoryUndo, tracing.SpanScriptStep,
		tracing.SpanScriptRun,
	}, names)

	run := spans[len(spans)-1]
	for _, span := range spans[:len(spans)-1] {
		require.Equal(t, run.SpanContext().TraceID(), span.SpanContext().TraceID(), span.Name())
	}
}

func TestRun_DefaultSessionRecordsNoSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	require.NoError(t, Run(context.Background(), editor.New(), Demo(), nil))
	require.Empty(t, recorder.Ended())
}

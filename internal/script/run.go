package script

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/redraft/internal/command"
	"github.com/zjrosen/redraft/internal/document"
	"github.com/zjrosen/redraft/internal/editor"
	"github.com/zjrosen/redraft/internal/log"
	"github.com/zjrosen/redraft/internal/tracing"
)

// Observer is notified after each top-level step completes.
type Observer interface {
	StepDone(index int, step Step, before, after editor.Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(index int, step Step, before, after editor.Snapshot)

// StepDone calls f.
func (f ObserverFunc) StepDone(index int, step Step, before, after editor.Snapshot) {
	f(index, step, before, after)
}

// Run executes the script's steps in order against s. It stops at the first
// failing step and returns its error wrapped with the step number. obs may be
// nil. Spans come from the tracer of s's history manager.
func Run(ctx context.Context, s *editor.Session, sc Script, obs Observer) (err error) {
	tracer := s.History().Tracer()
	ctx, span := tracer.Start(ctx, tracing.SpanScriptRun, trace.WithAttributes(
		attribute.String(tracing.AttrScriptName, sc.Name),
		attribute.Int("script.steps", len(sc.Steps)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	log.Info(log.CatScript, "Running script", "name", sc.Name, "steps", len(sc.Steps))

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		before := s.Snapshot()
		if err := runStep(ctx, tracer, s, i, step); err != nil {
			log.ErrorErr(log.CatScript, "Step failed", err, "step", i+1, "op", step.Op)
			if step.Line > 0 {
				return fmt.Errorf("step %d (line %d, %s): %w", i+1, step.Line, step, err)
			}
			return fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
		if obs != nil {
			obs.StepDone(i, step, before, s.Snapshot())
		}
	}
	return nil
}

func runStep(ctx context.Context, tracer trace.Tracer, s *editor.Session, index int, step Step) error {
	ctx, span := tracer.Start(ctx, tracing.SpanScriptStep, trace.WithAttributes(
		attribute.Int(tracing.AttrScriptStep, index+1),
		attribute.String(tracing.AttrScriptOp, string(step.Op)),
	))
	defer span.End()

	err := dispatch(ctx, s, step)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func dispatch(ctx context.Context, s *editor.Session, step Step) error {
	switch step.Op {
	case OpInsert:
		return s.TypeText(ctx, step.Text)
	case OpDelete:
		return s.DeleteCharacters(ctx, step.Count)
	case OpUndo:
		for range step.Count {
			if err := s.Undo(ctx); err != nil {
				return err
			}
		}
		return nil
	case OpRedo:
		for range step.Count {
			if err := s.Redo(ctx); err != nil {
				return err
			}
		}
		return nil
	case OpMacro:
		cmds, err := buildCommands(s.Document(), step.Steps)
		if err != nil {
			return err
		}
		return s.ExecuteMacro(ctx, cmds)
	case OpClear:
		return s.ClearHistory(ctx)
	case OpExpect:
		return check(s.Snapshot(), step.Expect)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, step.Op)
	}
}

// buildCommands turns editing steps into commands targeting doc.
func buildCommands(doc document.Document, steps []Step) ([]command.Command, error) {
	cmds := make([]command.Command, 0, len(steps))
	for _, step := range steps {
		switch step.Op {
		case OpInsert:
			cmds = append(cmds, command.NewInsert(doc, step.Text))
		case OpDelete:
			cmds = append(cmds, command.NewDelete(doc, step.Count))
		case OpMacro:
			children, err := buildCommands(doc, step.Steps)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, command.NewMacro(children...))
		default:
			return nil, fmt.Errorf("%w: %q is not allowed inside a macro", ErrUnknownStep, step.Op)
		}
	}
	return cmds, nil
}

func check(snap editor.Snapshot, exp Expectation) error {
	if exp.Content != nil && snap.Content != *exp.Content {
		return fmt.Errorf("%w: content is %q, want %q", ErrExpectation, snap.Content, *exp.Content)
	}
	if exp.Cursor != nil && snap.Cursor != *exp.Cursor {
		return fmt.Errorf("%w: cursor is %d, want %d", ErrExpectation, snap.Cursor, *exp.Cursor)
	}
	if exp.UndoCount != nil && snap.UndoCount != *exp.UndoCount {
		return fmt.Errorf("%w: undo count is %d, want %d", ErrExpectation, snap.UndoCount, *exp.UndoCount)
	}
	if exp.RedoCount != nil && snap.RedoCount != *exp.RedoCount {
		return fmt.Errorf("%w: redo count is %d, want %d", ErrExpectation, snap.RedoCount, *exp.RedoCount)
	}
	return nil
}

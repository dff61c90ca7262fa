package history

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/redraft/internal/command"
	"github.com/zjrosen/redraft/internal/log"
	"github.com/zjrosen/redraft/internal/pubsub"
	"github.com/zjrosen/redraft/internal/tracing"
)

// ErrNilCommand is returned by ExecuteCommand when given a nil command.
var ErrNilCommand = errors.New("nil command")

// Entry describes a command sitting on one of the stacks.
type Entry struct {
	ID          string
	Kind        command.Kind
	Description string
	// At is when the command was last applied (undo stack) or reversed
	// (redo stack).
	At time.Time
}

// Change is the payload published after every stack mutation.
type Change struct {
	Entry     Entry // zero for ClearedEvent
	UndoCount int
	RedoCount int
}

type stackEntry struct {
	cmd command.Command
	at  time.Time
}

func (e *stackEntry) info() Entry {
	return Entry{
		ID:          e.cmd.ID(),
		Kind:        e.cmd.Kind(),
		Description: e.cmd.Description(),
		At:          e.at,
	}
}

// Manager owns the undo and redo stacks for one editing session.
type Manager struct {
	mu sync.Mutex

	undoStack []*stackEntry
	redoStack []*stackEntry

	maxDepth int
	tracer   trace.Tracer
	broker   *pubsub.Broker[Change]
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxDepth caps the undo stack; the oldest entries are dropped once it
// grows past n. Zero or negative means unlimited.
func WithMaxDepth(n int) Option {
	return func(m *Manager) {
		m.maxDepth = max(n, 0)
	}
}

// WithTracer records a span around every operation.
func WithTracer(t trace.Tracer) Option {
	return func(m *Manager) {
		if t != nil {
			m.tracer = t
		}
	}
}

// WithBroker publishes changes on b instead of a private broker.
func WithBroker(b *pubsub.Broker[Change]) Option {
	return func(m *Manager) {
		if b != nil {
			m.broker = b
		}
	}
}

// New returns a Manager with empty stacks.
func New(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.tracer == nil {
		m.tracer = noop.NewTracerProvider().Tracer("history")
	}
	if m.broker == nil {
		m.broker = pubsub.NewBroker[Change]()
	}
	return m
}

// ExecuteCommand applies cmd, pushes it onto the undo stack and discards the
// redo stack. If cmd fails, its error is returned and neither stack changes.
func (m *Manager) ExecuteCommand(ctx context.Context, cmd command.Command) error {
	if cmd == nil {
		return ErrNilCommand
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, span := m.tracer.Start(ctx, tracing.SpanHistoryExecute, commandAttrs(cmd))
	defer span.End()

	if err := cmd.Execute(); err != nil {
		failSpan(span, err)
		log.ErrorErr(log.CatHistory, "execute failed", err, "id", cmd.ID(), "kind", cmd.Kind())
		return err
	}

	entry := &stackEntry{cmd: cmd, at: time.Now()}
	m.undoStack = append(m.undoStack, entry)

	if discarded := len(m.redoStack); discarded > 0 {
		span.AddEvent(tracing.EventRedoDiscarded, trace.WithAttributes(attribute.Int(tracing.AttrRedoDepth, discarded)))
		log.Debug(log.CatHistory, "redo history discarded", "count", discarded)
	}
	clear(m.redoStack)
	m.redoStack = m.redoStack[:0]

	if m.maxDepth > 0 && len(m.undoStack) > m.maxDepth {
		excess := len(m.undoStack) - m.maxDepth
		m.undoStack = slices.Delete(m.undoStack, 0, excess)
		span.AddEvent(tracing.EventUndoTrimmed, trace.WithAttributes(attribute.Int(tracing.AttrUndoDepth, excess)))
		log.Debug(log.CatHistory, "undo history trimmed", "dropped", excess, "max", m.maxDepth)
	}

	m.finish(span, pubsub.ExecutedEvent, entry)
	return nil
}

// Undo reverses the most recent command and moves it to the redo stack.
// With nothing to undo it does nothing. If the command's Undo fails, the
// command stays on the undo stack and the error is returned.
func (m *Manager) Undo(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, span := m.tracer.Start(ctx, tracing.SpanHistoryUndo)
	defer span.End()

	if len(m.undoStack) == 0 {
		span.SetAttributes(attribute.Bool(tracing.AttrHistoryNoop, true))
		return nil
	}

	top := len(m.undoStack) - 1
	entry := m.undoStack[top]
	span.SetAttributes(commandAttrList(entry.cmd)...)

	if err := entry.cmd.Undo(); err != nil {
		failSpan(span, err)
		log.ErrorErr(log.CatHistory, "undo failed", err, "id", entry.cmd.ID())
		return err
	}

	m.undoStack[top] = nil
	m.undoStack = m.undoStack[:top]
	entry.at = time.Now()
	m.redoStack = append(m.redoStack, entry)

	m.finish(span, pubsub.UndoneEvent, entry)
	return nil
}

// Redo re-applies the most recently undone command and moves it back to the
// undo stack. With nothing to redo it does nothing. If the command fails to
// execute, it stays on the redo stack and the error is returned.
func (m *Manager) Redo(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, span := m.tracer.Start(ctx, tracing.SpanHistoryRedo)
	defer span.End()

	if len(m.redoStack) == 0 {
		span.SetAttributes(attribute.Bool(tracing.AttrHistoryNoop, true))
		return nil
	}

	top := len(m.redoStack) - 1
	entry := m.redoStack[top]
	span.SetAttributes(commandAttrList(entry.cmd)...)

	if err := entry.cmd.Execute(); err != nil {
		failSpan(span, err)
		log.ErrorErr(log.CatHistory, "redo failed", err, "id", entry.cmd.ID())
		return err
	}

	m.redoStack[top] = nil
	m.redoStack = m.redoStack[:top]
	entry.at = time.Now()
	m.undoStack = append(m.undoStack, entry)

	m.finish(span, pubsub.RedoneEvent, entry)
	return nil
}

// ClearHistory empties both stacks. The document is not touched.
func (m *Manager) ClearHistory(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, span := m.tracer.Start(ctx, tracing.SpanHistoryClear)
	defer span.End()

	m.undoStack = nil
	m.redoStack = nil
	m.finish(span, pubsub.ClearedEvent, nil)
}

// finish records resulting depths on the span, logs and publishes the
// change. Callers hold m.mu.
func (m *Manager) finish(span trace.Span, event pubsub.EventType, entry *stackEntry) {
	change := Change{UndoCount: len(m.undoStack), RedoCount: len(m.redoStack)}
	if entry != nil {
		change.Entry = entry.info()
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrUndoDepth, change.UndoCount),
		attribute.Int(tracing.AttrRedoDepth, change.RedoCount),
	)
	span.SetStatus(codes.Ok, "")

	log.Debug(log.CatHistory, string(event),
		"id", change.Entry.ID,
		"undo", change.UndoCount,
		"redo", change.RedoCount)
	m.broker.Publish(event, change)
}

// UndoCount returns the depth of the undo stack.
func (m *Manager) UndoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack)
}

// RedoCount returns the depth of the redo stack.
func (m *Manager) RedoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack)
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool {
	return m.UndoCount() > 0
}

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool {
	return m.RedoCount() > 0
}

// PeekUndo describes the command Undo would reverse next.
func (m *Manager) PeekUndo() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undoStack) == 0 {
		return Entry{}, false
	}
	return m.undoStack[len(m.undoStack)-1].info(), true
}

// PeekRedo describes the command Redo would re-apply next.
func (m *Manager) PeekRedo() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redoStack) == 0 {
		return Entry{}, false
	}
	return m.redoStack[len(m.redoStack)-1].info(), true
}

// UndoEntries lists the undo stack, oldest first.
func (m *Manager) UndoEntries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return entries(m.undoStack)
}

// RedoEntries lists the redo stack, oldest first (the last element is what
// Redo applies next).
func (m *Manager) RedoEntries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return entries(m.redoStack)
}

// MaxDepth returns the undo cap, 0 meaning unlimited.
func (m *Manager) MaxDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxDepth
}

// Tracer returns the tracer the manager records spans with, so callers can
// nest their own spans under the same provider.
func (m *Manager) Tracer() trace.Tracer {
	return m.tracer
}

// Subscribe streams a Change after every stack mutation until ctx is done.
func (m *Manager) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return m.broker.Subscribe(ctx)
}

// Close releases subscribers. The manager stays usable; later changes are
// simply not published.
func (m *Manager) Close() {
	m.broker.Close()
}

func entries(stack []*stackEntry) []Entry {
	out := make([]Entry, len(stack))
	for i, e := range stack {
		out[i] = e.info()
	}
	return out
}

func commandAttrList(cmd command.Command) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(tracing.AttrCommandID, cmd.ID()),
		attribute.String(tracing.AttrCommandKind, cmd.Kind().String()),
		attribute.String(tracing.AttrCommandDescription, cmd.Description()),
	}
}

func commandAttrs(cmd command.Command) trace.SpanStartOption {
	return trace.WithAttributes(commandAttrList(cmd)...)
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

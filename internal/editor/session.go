// Package editor exposes the high-level editing operations of redraft: typing,
// deleting, undo/redo, macros and macro recording over one document and one
// history manager.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zjrosen/redraft/internal/command"
	"github.com/zjrosen/redraft/internal/document"
	"github.com/zjrosen/redraft/internal/history"
	"github.com/zjrosen/redraft/internal/log"
)

var (
	// ErrRecording is returned by operations that cannot run while a macro
	// is being recorded.
	ErrRecording = errors.New("macro recording in progress")
	// ErrNotRecording is returned when stopping or cancelling without an
	// active recording.
	ErrNotRecording = errors.New("no macro recording in progress")
)

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	Content       string
	Cursor        int
	UndoCount     int
	RedoCount     int
	Recording     bool
	RecordedSteps int
}

// Session owns one document and its history.
type Session struct {
	mu       sync.Mutex
	doc      *document.Buffer
	history  *history.Manager
	recorded []command.Command
	// recording is separate from len(recorded) so an empty recording is
	// still a recording.
	recording bool
}

// Option configures a Session.
type Option func(*Session)

// WithInitialText preloads the document. The text is not undoable.
func WithInitialText(text string) Option {
	return func(s *Session) {
		s.doc = document.NewWithContent(text)
	}
}

// WithHistory uses m instead of a default history.Manager.
func WithHistory(m *history.Manager) Option {
	return func(s *Session) {
		if m != nil {
			s.history = m
		}
	}
}

// New creates a session with an empty document and empty history.
func New(opts ...Option) *Session {
	s := &Session{doc: document.New()}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = history.New()
	}
	return s
}

// Document returns the session's document, for building commands passed to
// ExecuteMacro.
func (s *Session) Document() document.Document {
	return s.doc
}

// History returns the session's history manager.
func (s *Session) History() *history.Manager {
	return s.history
}

// TypeText inserts text at the cursor.
func (s *Session) TypeText(ctx context.Context, text string) error {
	return s.apply(ctx, command.NewInsert(s.doc, text))
}

// DeleteCharacters removes up to count characters before the cursor.
func (s *Session) DeleteCharacters(ctx context.Context, count int) error {
	return s.apply(ctx, command.NewDelete(s.doc, count))
}

// ExecuteMacro runs cmds as one undoable unit. The commands must target
// Document().
func (s *Session) ExecuteMacro(ctx context.Context, cmds []command.Command) error {
	return s.apply(ctx, command.NewMacro(cmds...))
}

// apply routes cmd through history, or buffers it while recording.
func (s *Session) apply(ctx context.Context, cmd command.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return s.history.ExecuteCommand(ctx, cmd)
	}

	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("recording %s: %w", cmd.Description(), err)
	}
	s.recorded = append(s.recorded, cmd)
	log.Debug(log.CatCommand, "Recorded step", "step", len(s.recorded), "desc", cmd.Description())
	return nil
}

// Undo reverts the most recent history entry.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording {
		return ErrRecording
	}
	return s.history.Undo(ctx)
}

// Redo reapplies the most recently undone entry.
func (s *Session) Redo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording {
		return ErrRecording
	}
	return s.history.Redo(ctx)
}

// ClearHistory empties both stacks. The document is left as it is.
func (s *Session) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording {
		return ErrRecording
	}
	s.history.ClearHistory(ctx)
	return nil
}

// StartRecording begins buffering edits into a macro.
func (s *Session) StartRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording {
		return ErrRecording
	}
	s.recording = true
	s.recorded = nil
	log.Info(log.CatCommand, "Macro recording started")
	return nil
}

// StopRecording folds the buffered edits into a single history entry. It
// reports whether an entry was added; an empty recording adds none.
func (s *Session) StopRecording(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return false, ErrNotRecording
	}

	steps := s.recorded
	s.recording = false
	s.recorded = nil

	if len(steps) == 0 {
		log.Info(log.CatCommand, "Macro recording stopped", "steps", 0)
		return false, nil
	}

	// The steps are already applied; rewind them so the macro replays them
	// from the original state.
	if err := rewind(steps); err != nil {
		return false, err
	}
	if err := s.history.ExecuteCommand(ctx, command.NewMacro(steps...)); err != nil {
		return false, err
	}

	log.Info(log.CatCommand, "Macro recording stopped", "steps", len(steps))
	return true, nil
}

// CancelRecording discards the buffered edits and restores the document to
// its state when recording started.
func (s *Session) CancelRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return ErrNotRecording
	}

	steps := s.recorded
	s.recording = false
	s.recorded = nil

	log.Info(log.CatCommand, "Macro recording cancelled", "steps", len(steps))
	return rewind(steps)
}

// Recording reports whether a macro is being recorded.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Snapshot returns the current document and history state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Content:       s.doc.Content(),
		Cursor:        s.doc.CursorPosition(),
		UndoCount:     s.history.UndoCount(),
		RedoCount:     s.history.RedoCount(),
		Recording:     s.recording,
		RecordedSteps: len(s.recorded),
	}
}

// Close releases the history's subscribers.
func (s *Session) Close() {
	s.history.Close()
}

func rewind(steps []command.Command) error {
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].Undo(); err != nil {
			return fmt.Errorf("rewinding recorded step %d: %w", i+1, err)
		}
	}
	return nil
}

package editor

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/redraft/internal/config"
	session "github.com/zjrosen/redraft/internal/editor"
	"github.com/zjrosen/redraft/internal/flags"
	"github.com/zjrosen/redraft/internal/history"
	"github.com/zjrosen/redraft/internal/log"
	"github.com/zjrosen/redraft/internal/pubsub"
)

func newTestModel(t *testing.T, opts ...session.Option) (Model, *session.Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := session.New(opts...)
	t.Cleanup(s.Close)

	cfg := config.Defaults().UI
	return New(ctx, s, cfg), s
}

func runes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func view(m Model) string {
	return ansi.Strip(m.View())
}

func TestModel_TypingInsertsText(t *testing.T) {
	m, s := newTestModel(t)

	m = send(t, m, runes("Hi"), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, runes("there"))

	snap := s.Snapshot()
	require.Equal(t, "Hi there", snap.Content)
	require.Equal(t, 3, snap.UndoCount)
	require.Contains(t, view(m), "Hi there")
}

func TestModel_BackspaceAndEnter(t *testing.T) {
	m, s := newTestModel(t)

	m = send(t, m,
		runes("ab"),
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyEnter},
		runes("c"),
	)

	require.Equal(t, "a\nc", s.Snapshot().Content)
	lines := strings.Split(view(m), "\n")
	require.Equal(t, "a", strings.TrimRight(lines[0], " "))
	require.True(t, strings.HasPrefix(lines[1], "c"))
}

func TestModel_UndoRedoKeys(t *testing.T) {
	m, s := newTestModel(t)

	m = send(t, m, runes("a"), runes("b"), tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Equal(t, "a", s.Snapshot().Content)
	require.Contains(t, view(m), "undo 1 · redo 1")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.Equal(t, "ab", s.Snapshot().Content)
	require.Contains(t, view(m), "undo 2 · redo 0")
}

func TestModel_RecordMacro(t *testing.T) {
	m, s := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR}, runes("x"), runes("y"))
	require.True(t, s.Recording())
	require.Contains(t, view(m), "● REC 2")
	require.Equal(t, 0, s.Snapshot().UndoCount)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.False(t, s.Recording())
	require.NotContains(t, view(m), "REC")

	snap := s.Snapshot()
	require.Equal(t, "xy", snap.Content)
	require.Equal(t, 1, snap.UndoCount)

	send(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Empty(t, s.Snapshot().Content)
}

func TestModel_UndoWhileRecordingShowsError(t *testing.T) {
	m, s := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR}, runes("x"), tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Equal(t, "x", s.Snapshot().Content)
	require.Contains(t, view(m), session.ErrRecording.Error())
}

func TestModel_ClearHistory(t *testing.T) {
	m, s := newTestModel(t)

	send(t, m, runes("abc"), tea.KeyMsg{Type: tea.KeyCtrlL})

	snap := s.Snapshot()
	require.Equal(t, "abc", snap.Content)
	require.Equal(t, 0, snap.UndoCount)
}

func TestModel_QuitCancelsRecording(t *testing.T) {
	m, s := newTestModel(t, session.WithInitialText("keep"))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR}, runes("!"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
	require.Equal(t, "keep", s.Snapshot().Content)
	require.False(t, s.Recording())
}

func TestModel_HistoryEventSetsStatus(t *testing.T) {
	m, _ := newTestModel(t)

	updated, cmd := m.Update(pubsub.Event[history.Change]{
		Type:    pubsub.UndoneEvent,
		Payload: history.Change{Entry: history.Entry{Description: `Insert "a"`}},
	})
	m = updated.(Model)

	require.NotNil(t, cmd, "keeps listening")
	require.Contains(t, view(m), `Undo: Insert "a"`)
}

func TestModel_HistoryEventGapIsLogged(t *testing.T) {
	var buf bytes.Buffer
	defer log.InitWriter(&buf)()

	m, _ := newTestModel(t)
	m = send(t, m,
		pubsub.Event[history.Change]{Type: pubsub.ExecutedEvent, Seq: 1},
		pubsub.Event[history.Change]{Type: pubsub.ExecutedEvent, Seq: 4},
	)

	require.Equal(t, uint64(4), m.changeSeq)
	require.Contains(t, buf.String(), "History events dropped missed=2")
}

func TestModel_LogTail(t *testing.T) {
	var buf bytes.Buffer
	defer log.InitWriter(&buf)()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := session.New()

	m := New(ctx, s, config.Defaults().UI, WithFlags(flags.New(map[string]bool{flags.FlagLogTail: true})))
	m = send(t, m, pubsub.Event[string]{Type: pubsub.LoggedEvent, Payload: "[INFO] [ui] hello\n"})
	require.Contains(t, view(m), "[INFO] [ui] hello")
}

func TestModel_LogTailOffByDefault(t *testing.T) {
	var buf bytes.Buffer
	defer log.InitWriter(&buf)()

	m, _ := newTestModel(t)
	m = send(t, m, pubsub.Event[string]{Type: pubsub.LoggedEvent, Payload: "[INFO] [ui] hidden"})
	require.NotContains(t, view(m), "hidden")
}

func TestModel_RecordingFlagOff(t *testing.T) {
	ctx := context.Background()
	s := session.New()
	m := New(ctx, s, config.Defaults().UI, WithFlags(flags.New(map[string]bool{flags.FlagMacroRecording: false})))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR}, runes("a"))
	require.False(t, s.Recording())
	require.Equal(t, 1, s.Snapshot().UndoCount)
	require.Contains(t, view(m), "Macro recording is disabled")
}

func TestModel_CursorRendering(t *testing.T) {
	m, s := newTestModel(t, session.WithInitialText("abc"))
	s.Document().SetCursorPosition(1)

	out := m.renderDocument(s.Snapshot())
	require.Equal(t, "abc", ansi.Strip(out))

	s.Document().SetCursorPosition(3)
	require.Equal(t, "abc ", ansi.Strip(m.renderDocument(s.Snapshot())))
}

func TestModel_HiddenStatusBar(t *testing.T) {
	ctx := context.Background()
	s := session.New()
	cfg := config.Defaults().UI
	cfg.ShowStatusBar = false

	m := New(ctx, s, cfg)
	require.NotContains(t, view(m), "undo 0")
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	short := view(m)
	require.Contains(t, short, "undo")
	require.NotContains(t, short, "clear history")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	require.Contains(t, view(m), "clear history")
}

func TestModel_WindowSize(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	require.Equal(t, 80, m.width)
	require.Equal(t, 80, m.help.Width)
}

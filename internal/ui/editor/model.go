// Package editor provides the interactive Bubble Tea editor over a session.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wrap"

	"github.com/zjrosen/redraft/internal/config"
	session "github.com/zjrosen/redraft/internal/editor"
	"github.com/zjrosen/redraft/internal/flags"
	"github.com/zjrosen/redraft/internal/history"
	"github.com/zjrosen/redraft/internal/keys"
	"github.com/zjrosen/redraft/internal/log"
	"github.com/zjrosen/redraft/internal/pubsub"
)

// Model is the interactive editor.
type Model struct {
	ctx     context.Context
	session *session.Session
	keys    keys.KeyMap
	help    help.Model
	styles  styles
	cfg     config.UIConfig
	flags   *flags.Registry

	changes   *pubsub.Listener[history.Change]
	changeSeq uint64 // last change event seen
	logs      *pubsub.Listener[string]

	width   int
	height  int
	status  string
	lastLog string
	err     error
}

type styles struct {
	text      lipgloss.Style
	cursor    lipgloss.Style
	status    lipgloss.Style
	recording lipgloss.Style
	errorText lipgloss.Style
}

func newStyles(theme config.ThemeConfig) styles {
	return styles{
		text:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Text)),
		cursor:    lipgloss.NewStyle().Reverse(true).Foreground(lipgloss.Color(theme.Cursor)),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Status)),
		recording: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Recording)),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Recording)),
	}
}

// Option configures a Model.
type Option func(*Model)

// WithFlags sets the feature flags. Without it flags.Defaults apply.
func WithFlags(r *flags.Registry) Option {
	return func(m *Model) {
		m.flags = r
	}
}

// New creates the editor model. ctx bounds the history and log subscriptions.
func New(ctx context.Context, s *session.Session, cfg config.UIConfig, opts ...Option) Model {
	m := Model{
		ctx:     ctx,
		session: s,
		keys:    keys.Editor,
		help:    help.New(),
		styles:  newStyles(cfg.Theme),
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.flags == nil {
		m.flags = flags.New(flags.Defaults())
	}

	m.changes = pubsub.NewListener[history.Change](ctx, s.History())
	if m.flags.Enabled(flags.FlagLogTail) {
		m.logs = log.NewListener(ctx)
	}
	return m
}

// Init starts listening for history changes and log lines.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.changes.Listen()}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pubsub.Event[history.Change]:
		if missed := msg.Missed(m.changeSeq); missed > 0 {
			log.Warn(log.CatUI, "History events dropped", "missed", missed)
		}
		m.changeSeq = msg.Seq
		m.status = describeChange(msg)
		return m, m.changes.Listen()

	case pubsub.Event[string]:
		if m.logs == nil {
			return m, nil
		}
		m.lastLog = strings.TrimSpace(msg.Payload)
		return m, m.logs.Listen()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.session.Recording() {
			m.err = m.session.CancelRecording()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Undo):
		m.err = m.session.Undo(m.ctx)

	case key.Matches(msg, m.keys.Redo):
		m.err = m.session.Redo(m.ctx)

	case key.Matches(msg, m.keys.Record):
		m.toggleRecording()

	case key.Matches(msg, m.keys.ClearHistory):
		m.err = m.session.ClearHistory(m.ctx)

	case key.Matches(msg, m.keys.Backspace):
		m.err = m.session.DeleteCharacters(m.ctx, m.backspaceWidth())

	case key.Matches(msg, m.keys.Newline):
		m.err = m.session.TypeText(m.ctx, "\n")

	case msg.Type == tea.KeyRunes, msg.Type == tea.KeySpace:
		m.err = m.session.TypeText(m.ctx, string(msg.Runes))
	}

	if m.err != nil {
		log.ErrorErr(log.CatUI, "Key action failed", m.err, "key", msg.String())
	}
	return m, nil
}

// backspaceWidth is the code point count of the grapheme before the cursor.
func (m Model) backspaceWidth() int {
	snap := m.session.Snapshot()
	runes := []rune(snap.Content)
	before := string(runes[:min(max(snap.Cursor, 0), len(runes))])
	return max(lastGraphemeLen(before), 1)
}

func (m *Model) toggleRecording() {
	if !m.flags.Enabled(flags.FlagMacroRecording) {
		m.status = "Macro recording is disabled"
		return
	}
	if !m.session.Recording() {
		m.err = m.session.StartRecording()
		if m.err == nil {
			m.status = "Recording macro"
		}
		return
	}

	steps := m.session.Snapshot().RecordedSteps
	added, err := m.session.StopRecording(m.ctx)
	m.err = err
	if err == nil && !added {
		m.status = "Empty macro discarded"
	}
	if added {
		log.Info(log.CatUI, "Macro recorded", "steps", steps)
	}
}

func describeChange(event pubsub.Event[history.Change]) string {
	switch event.Type {
	case pubsub.ExecutedEvent:
		return event.Payload.Entry.Description
	case pubsub.UndoneEvent:
		return "Undo: " + event.Payload.Entry.Description
	case pubsub.RedoneEvent:
		return "Redo: " + event.Payload.Entry.Description
	case pubsub.ClearedEvent:
		return "History cleared"
	default:
		return string(event.Type)
	}
}

// View renders the document, the status bar and help.
func (m Model) View() string {
	snap := m.session.Snapshot()

	doc := m.renderDocument(snap)
	if m.width > 0 {
		doc = wrap.String(doc, m.width)
	}

	sections := []string{doc}
	if m.cfg.ShowStatusBar {
		sections = append(sections, m.renderStatus(snap))
	}
	if m.lastLog != "" {
		line := m.lastLog
		if m.width > 0 {
			line = runewidth.Truncate(line, m.width, "…")
		}
		sections = append(sections, m.styles.status.Render(line))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDocument draws the content with the cursor cell highlighted. A cursor
// sitting on a newline or at the end is drawn as a blank cell.
func (m Model) renderDocument(snap session.Snapshot) string {
	if !m.cfg.ShowCursor {
		return m.renderText(snap.Content)
	}

	runes := []rune(snap.Content)
	cursor := min(max(snap.Cursor, 0), len(runes))

	var b strings.Builder
	b.WriteString(m.renderText(string(runes[:cursor])))

	rest := runes[cursor:]
	switch {
	case len(rest) == 0:
		b.WriteString(m.styles.cursor.Render(" "))
	case rest[0] == '\n':
		b.WriteString(m.styles.cursor.Render(" "))
		b.WriteString(m.renderText(string(rest)))
	default:
		b.WriteString(m.styles.cursor.Render(string(rest[0])))
		b.WriteString(m.renderText(string(rest[1:])))
	}
	return b.String()
}

// renderText styles text line by line so newlines survive styling.
func (m Model) renderText(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = m.styles.text.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus(snap session.Snapshot) string {
	parts := []string{
		fmt.Sprintf("cursor %d", snap.Cursor),
		fmt.Sprintf("undo %d", snap.UndoCount),
		fmt.Sprintf("redo %d", snap.RedoCount),
	}
	line := m.styles.status.Render(strings.Join(parts, " · "))

	if snap.Recording {
		line += "  " + m.styles.recording.Render(fmt.Sprintf("● REC %d", snap.RecordedSteps))
	}
	switch {
	case m.err != nil:
		line += "  " + m.styles.errorText.Render(m.err.Error())
	case m.status != "":
		line += "  " + m.styles.status.Render(m.status)
	}
	return line
}

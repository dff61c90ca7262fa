// Package render formats session snapshots and step changes for terminal
// output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/redraft/internal/config"
	"github.com/zjrosen/redraft/internal/editor"
)

// Styles holds the Lip Gloss styles used by a Renderer.
type Styles struct {
	Box     lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Step    lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Muted   lipgloss.Style
}

// Semantic colors for diff output.
var (
	AddedColor   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	RemovedColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
)

// StylesFromTheme builds styles from the configured editor colors.
func StylesFromTheme(theme config.ThemeConfig) Styles {
	text := lipgloss.Color(theme.Text)
	accent := lipgloss.Color(theme.Cursor)
	muted := lipgloss.Color(theme.Status)

	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Label:   lipgloss.NewStyle().Foreground(muted),
		Value:   lipgloss.NewStyle().Foreground(text),
		Step:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Added:   lipgloss.NewStyle().Foreground(AddedColor),
		Removed: lipgloss.NewStyle().Foreground(RemovedColor).Strikethrough(true),
		Muted:   lipgloss.NewStyle().Foreground(muted).Italic(true),
	}
}

// DefaultStyles uses config.DefaultTheme.
func DefaultStyles() Styles {
	return StylesFromTheme(config.DefaultTheme())
}

// Renderer formats snapshots and diffs.
type Renderer struct {
	styles Styles
	dmp    *diffmatchpatch.DiffMatchPatch
}

// New creates a Renderer.
func New(styles Styles) *Renderer {
	return &Renderer{styles: styles, dmp: diffmatchpatch.New()}
}

// Snapshot renders the editor state block: content, cursor and the number of
// available undo and redo steps.
func (r *Renderer) Snapshot(snap editor.Snapshot) string {
	rows := []string{
		r.styles.Title.Render("Editor"),
		r.row("Content", fmt.Sprintf("'%s'", snap.Content)),
		r.row("Cursor", fmt.Sprintf("%d", snap.Cursor)),
		r.row("Undo available", fmt.Sprintf("%d", snap.UndoCount)),
		r.row("Redo available", fmt.Sprintf("%d", snap.RedoCount)),
	}
	if snap.Recording {
		rows = append(rows, r.row("Recording", fmt.Sprintf("%d steps", snap.RecordedSteps)))
	}
	return r.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (r *Renderer) row(label, value string) string {
	return r.styles.Label.Render(label+":") + " " + r.styles.Value.Render(value)
}

// Diff renders the change from before to after inline. Removed text is shown
// as [-text-] and added text as {+text+}.
func (r *Renderer) Diff(before, after string) string {
	if before == after {
		return r.styles.Muted.Render("(no change)")
	}

	diffs := r.dmp.DiffMain(before, after, false)
	diffs = r.dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(r.styles.Value.Render(d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(r.styles.Removed.Render("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			b.WriteString(r.styles.Added.Render("{+" + d.Text + "+}"))
		}
	}
	return b.String()
}

// Step renders a numbered step header, the resulting snapshot and, when
// showDiff is set, the content diff.
func (r *Renderer) Step(index int, desc string, before, after editor.Snapshot, showDiff bool) string {
	parts := []string{r.styles.Step.Render(fmt.Sprintf(">> %d. %s", index+1, desc))}
	if showDiff {
		parts = append(parts, r.Diff(before.Content, after.Content))
	}
	parts = append(parts, r.Snapshot(after))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

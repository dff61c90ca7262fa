package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/redraft/internal/editor"
)

func TestSnapshot_ShowsAllFields(t *testing.T) {
	r := New(DefaultStyles())

	out := ansi.Strip(r.Snapshot(editor.Snapshot{
		Content:   "Hello",
		Cursor:    5,
		UndoCount: 3,
		RedoCount: 1,
	}))

	require.Contains(t, out, "Editor")
	require.Contains(t, out, "Content: 'Hello'")
	require.Contains(t, out, "Cursor: 5")
	require.Contains(t, out, "Undo available: 3")
	require.Contains(t, out, "Redo available: 1")
	require.NotContains(t, out, "Recording")
}

func TestSnapshot_Recording(t *testing.T) {
	r := New(DefaultStyles())

	out := ansi.Strip(r.Snapshot(editor.Snapshot{Recording: true, RecordedSteps: 2}))
	require.Contains(t, out, "Recording: 2 steps")
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
		want          string
	}{
		{"insert", "Hello", "Hello World", "Hello{+ World+}"},
		{"delete", "Hello World", "Hello", "Hello[- World-]"},
		{"unchanged", "same", "same", "(no change)"},
		{"from empty", "", "abc", "{+abc+}"},
	}

	r := New(DefaultStyles())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ansi.Strip(r.Diff(tt.before, tt.after)))
		})
	}
}

func TestStep(t *testing.T) {
	r := New(DefaultStyles())
	before := editor.Snapshot{Content: "Hi"}
	after := editor.Snapshot{Content: "Hi!", Cursor: 3, UndoCount: 1}

	out := ansi.Strip(r.Step(1, `insert "!"`, before, after, true))
	lines := strings.Split(out, "\n")

	require.Equal(t, `>> 2. insert "!"`, strings.TrimRight(lines[0], " "))
	require.Equal(t, "Hi{+!+}", strings.TrimRight(lines[1], " "))
	require.Contains(t, out, "Content: 'Hi!'")

	noDiff := ansi.Strip(r.Step(0, "undo 1", before, after, false))
	require.NotContains(t, noDiff, "{+")
}

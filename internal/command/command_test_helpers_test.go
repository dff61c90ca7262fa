package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/redraft/internal/document"
)

// recordingCommand appends "<name>.execute" / "<name>.undo" to a shared
// journal so tests can check call order. It can be told to fail.
type recordingCommand struct {
	BaseCommand
	name        string
	journal     *[]string
	failExecute bool
	failUndo    bool
}

func newRecording(name string, journal *[]string) *recordingCommand {
	return &recordingCommand{
		BaseCommand: NewBaseCommand("recording"),
		name:        name,
		journal:     journal,
	}
}

func (c *recordingCommand) Execute() error {
	if c.failExecute {
		return assert.AnError
	}
	*c.journal = append(*c.journal, c.name+".execute")
	return nil
}

func (c *recordingCommand) Undo() error {
	if c.failUndo {
		return assert.AnError
	}
	*c.journal = append(*c.journal, c.name+".undo")
	return nil
}

func (c *recordingCommand) Description() string {
	return "record " + c.name
}

type docState struct {
	content string
	cursor  int
}

func stateOf(d document.Document) docState {
	return docState{content: d.Content(), cursor: d.CursorPosition()}
}

func requireDoc(t *testing.T, d document.Document, content string, cursor int) {
	t.Helper()
	require.Equal(t, content, d.Content(), "content")
	require.Equal(t, cursor, d.CursorPosition(), "cursor")
}

// drawDocument draws a buffer with random content and cursor.
func drawDocument(t *rapid.T) *document.Buffer {
	content := rapid.StringMatching(`[a-zA-Z0-9 äß日]{0,20}`).Draw(t, "content")
	b := document.NewWithContent(content)
	b.SetCursorPosition(rapid.IntRange(0, b.Length()).Draw(t, "cursor"))
	return b
}

// drawEdit draws an Insert or Delete bound to d.
func drawEdit(t *rapid.T, d document.Document, label string) Command {
	if rapid.Bool().Draw(t, label+".isInsert") {
		return NewInsert(d, rapid.StringMatching(`[a-z日 ]{0,8}`).Draw(t, label+".text"))
	}
	return NewDelete(d, rapid.IntRange(-2, 25).Draw(t, label+".length"))
}

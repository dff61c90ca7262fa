package command

import (
	"fmt"
	"unicode/utf8"

	"github.com/zjrosen/redraft/internal/document"
	"github.com/zjrosen/redraft/internal/log"
)

// Insert types text at the document cursor.
type Insert struct {
	BaseCommand
	target document.Document
	text   string

	// Cursor position before the most recent Execute.
	insertedAt int
}

var _ Command = (*Insert)(nil)

// NewInsert returns a command that inserts text into target.
func NewInsert(target document.Document, text string) *Insert {
	return &Insert{
		BaseCommand: NewBaseCommand(KindInsert),
		target:      target,
		text:        text,
	}
}

// Text returns the text this command inserts.
func (c *Insert) Text() string {
	return c.text
}

// InsertedAt returns the cursor offset captured by the last Execute.
func (c *Insert) InsertedAt() int {
	return c.insertedAt
}

// Execute inserts the text at the cursor. Empty text leaves the document
// untouched.
func (c *Insert) Execute() error {
	if c.target == nil {
		return ErrNilDocument
	}
	c.insertedAt = c.target.CursorPosition()
	c.target.InsertText(c.text)

	log.Debug(log.CatCommand, "insert executed", "id", c.ID(), "at", c.insertedAt)
	return nil
}

// Undo deletes the inserted characters, which end at the current cursor, and
// so returns the cursor to where the insert started.
func (c *Insert) Undo() error {
	if c.target == nil {
		return ErrNilDocument
	}
	c.target.DeleteText(utf8.RuneCountInString(c.text))

	log.Debug(log.CatCommand, "insert undone", "id", c.ID(), "cursor", c.target.CursorPosition())
	return nil
}

// Description returns a short label such as `Insert "abc"`.
func (c *Insert) Description() string {
	switch n := utf8.RuneCountInString(c.text); {
	case c.text == "\n":
		return "Insert newline"
	case n <= 20:
		return fmt.Sprintf("Insert %q", c.text)
	default:
		return fmt.Sprintf("Insert %d characters", n)
	}
}

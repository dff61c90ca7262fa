package command

import (
	"fmt"
	"unicode/utf8"

	"github.com/zjrosen/redraft/internal/document"
	"github.com/zjrosen/redraft/internal/log"
)

// Delete removes characters immediately before the cursor (backspace).
type Delete struct {
	BaseCommand
	target          document.Document
	requestedLength int

	// Captured by Execute.
	deletedText    string
	positionBefore int
}

var _ Command = (*Delete)(nil)

// NewDelete returns a command that deletes up to length characters before
// the cursor of target.
func NewDelete(target document.Document, length int) *Delete {
	return &Delete{
		BaseCommand:     NewBaseCommand(KindDelete),
		target:          target,
		requestedLength: length,
	}
}

// RequestedLength returns the length passed to NewDelete.
func (c *Delete) RequestedLength() int {
	return c.requestedLength
}

// DeletedText returns the text removed by the last Execute.
func (c *Delete) DeletedText() string {
	return c.deletedText
}

// PositionBefore returns the cursor offset captured by the last Execute.
func (c *Delete) PositionBefore() int {
	return c.positionBefore
}

// Execute deletes min(requestedLength, cursor) characters ending at the
// cursor.
func (c *Delete) Execute() error {
	if c.target == nil {
		return ErrNilDocument
	}
	c.positionBefore = c.target.CursorPosition()
	c.deletedText = c.target.DeleteText(c.requestedLength)

	log.Debug(log.CatCommand, "delete executed",
		"id", c.ID(),
		"requested", c.requestedLength,
		"removed", utf8.RuneCountInString(c.deletedText))
	return nil
}

// Undo puts the deleted text back where it was taken from, leaving the
// cursor at its pre-delete position.
func (c *Delete) Undo() error {
	if c.target == nil {
		return ErrNilDocument
	}
	c.target.SetCursorPosition(c.positionBefore - utf8.RuneCountInString(c.deletedText))
	c.target.InsertText(c.deletedText)

	log.Debug(log.CatCommand, "delete undone", "id", c.ID(), "cursor", c.target.CursorPosition())
	return nil
}

// Description returns a short label such as "Delete 3 characters".
func (c *Delete) Description() string {
	if c.requestedLength == 1 {
		return "Delete 1 character"
	}
	return fmt.Sprintf("Delete %d characters", c.requestedLength)
}

// Package document holds the editable text buffer that commands operate on.
//
// Content is a sequence of Unicode code points and every offset and length in
// this package counts code points, not bytes. The cursor always sits in
// [0, Length()]; every operation clamps or degrades to a no-op instead of
// failing.
package document

import (
	"github.com/zjrosen/redraft/internal/log"
)

// Document is the capability set edit commands need from a text buffer.
// Any implementation honoring these semantics can back a command.
type Document interface {
	// InsertText splices text at the cursor and advances the cursor past it.
	// Empty text is a no-op.
	InsertText(text string)

	// DeleteText removes up to length characters immediately before the
	// cursor, moves the cursor back by the number removed and returns them.
	// Returns "" without changes when length <= 0 or the cursor is at 0.
	DeleteText(length int) string

	// SetCursorPosition moves the cursor, clamping into [0, Length()].
	SetCursorPosition(pos int)

	CursorPosition() int
	Content() string
	Length() int
}

// Buffer is the in-memory Document implementation.
// It is not safe for concurrent use; callers serialize access through the
// history manager.
type Buffer struct {
	content []rune
	cursor  int
}

var _ Document = (*Buffer)(nil)

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewWithContent returns a buffer holding text with the cursor at its end.
func NewWithContent(text string) *Buffer {
	r := []rune(text)
	return &Buffer{content: r, cursor: len(r)}
}

// InsertText implements Document.
func (b *Buffer) InsertText(text string) {
	if text == "" {
		return
	}
	ins := []rune(text)

	next := make([]rune, 0, len(b.content)+len(ins))
	next = append(next, b.content[:b.cursor]...)
	next = append(next, ins...)
	next = append(next, b.content[b.cursor:]...)
	b.content = next
	b.cursor += len(ins)

	log.Debug(log.CatDocument, "inserted", "chars", len(ins), "cursor", b.cursor)
}

// DeleteText implements Document.
func (b *Buffer) DeleteText(length int) string {
	if length <= 0 || b.cursor == 0 {
		return ""
	}

	n := min(length, b.cursor)
	start := b.cursor - n
	removed := string(b.content[start:b.cursor])

	b.content = append(b.content[:start:start], b.content[b.cursor:]...)
	b.cursor = start

	log.Debug(log.CatDocument, "deleted", "chars", n, "cursor", b.cursor)
	return removed
}

// SetCursorPosition implements Document.
func (b *Buffer) SetCursorPosition(pos int) {
	b.cursor = max(0, min(pos, len(b.content)))
}

// CursorPosition implements Document.
func (b *Buffer) CursorPosition() int {
	return b.cursor
}

// Content implements Document.
func (b *Buffer) Content() string {
	return string(b.content)
}

// Length implements Document.
func (b *Buffer) Length() int {
	return len(b.content)
}

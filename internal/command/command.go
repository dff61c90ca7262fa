// Package command implements reversible edit commands over a document.
//
// A command remembers what it actually did during Execute (the capture
// fields) so that Undo can reverse exactly that. Undo is only meaningful
// after Execute, and only while nothing outside the command layer has
// mutated the document in between.
package command

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNilDocument is returned when a command is bound to a nil document.
var ErrNilDocument = errors.New("command has no target document")

// Command is a reversible unit of edit work.
type Command interface {
	// Execute applies the command. It may be called again after Undo to
	// redo the same edit.
	Execute() error

	// Undo reverses the most recent Execute.
	Undo() error

	// ID returns a unique identifier for tracing and logging.
	ID() string

	// Kind returns the command variant.
	Kind() Kind

	// Description returns a short human-readable label.
	Description() string
}

// Kind identifies a command variant.
type Kind string

const (
	KindInsert Kind = "insert"
	KindDelete Kind = "delete"
	KindMacro  Kind = "macro"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// BaseCommand carries identity shared by every command.
// Concrete command types embed it.
type BaseCommand struct {
	id        string
	kind      Kind
	createdAt time.Time
}

// NewBaseCommand creates a BaseCommand with a generated UUID.
func NewBaseCommand(kind Kind) BaseCommand {
	return BaseCommand{
		id:        uuid.New().String(),
		kind:      kind,
		createdAt: time.Now(),
	}
}

// ID returns the unique command identifier.
func (b *BaseCommand) ID() string {
	return b.id
}

// Kind returns the command variant.
func (b *BaseCommand) Kind() Kind {
	return b.kind
}

// CreatedAt returns when the command was constructed.
func (b *BaseCommand) CreatedAt() time.Time {
	return b.createdAt
}

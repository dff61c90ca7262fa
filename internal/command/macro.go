package command

import (
	"errors"
	"fmt"

	"github.com/zjrosen/redraft/internal/log"
)

// Macro groups child commands into one undo unit.
//
// Macros are atomic: if a child fails to execute, the children already
// applied are undone (last first) before the error is returned, and if a
// child fails to undo, the children already reversed are re-executed. Either
// way the document is left as it was before the failed call.
type Macro struct {
	BaseCommand
	children []Command
}

var _ Command = (*Macro)(nil)

// NewMacro returns a macro over children. Nil children are dropped.
func NewMacro(children ...Command) *Macro {
	kept := make([]Command, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Macro{
		BaseCommand: NewBaseCommand(KindMacro),
		children:    kept,
	}
}

// Children returns a copy of the child list.
func (m *Macro) Children() []Command {
	return append([]Command(nil), m.children...)
}

// Len returns the number of children.
func (m *Macro) Len() int {
	return len(m.children)
}

// Execute runs every child in order.
func (m *Macro) Execute() error {
	for i, child := range m.children {
		if err := child.Execute(); err != nil {
			err = fmt.Errorf("macro step %d (%s): %w", i, child.Description(), err)
			if rbErr := undoReverse(m.children[:i]); rbErr != nil {
				log.ErrorErr(log.CatCommand, "macro rollback failed", rbErr, "id", m.ID())
				return errors.Join(err, rbErr)
			}
			log.Warn(log.CatCommand, "macro execute rolled back", "id", m.ID(), "step", i)
			return err
		}
	}
	return nil
}

// Undo reverses every child, last first.
func (m *Macro) Undo() error {
	for i := len(m.children) - 1; i >= 0; i-- {
		child := m.children[i]
		if err := child.Undo(); err != nil {
			err = fmt.Errorf("macro undo step %d (%s): %w", i, child.Description(), err)
			if rbErr := executeForward(m.children[i+1:]); rbErr != nil {
				log.ErrorErr(log.CatCommand, "macro reapply failed", rbErr, "id", m.ID())
				return errors.Join(err, rbErr)
			}
			log.Warn(log.CatCommand, "macro undo rolled back", "id", m.ID(), "step", i)
			return err
		}
	}
	return nil
}

// Description returns a short label such as "Macro (3 steps)".
func (m *Macro) Description() string {
	if len(m.children) == 1 {
		return "Macro (1 step)"
	}
	return fmt.Sprintf("Macro (%d steps)", len(m.children))
}

func undoReverse(cmds []Command) error {
	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].Undo(); err != nil {
			return fmt.Errorf("rollback step %d: %w", i, err)
		}
	}
	return nil
}

func executeForward(cmds []Command) error {
	for i, c := range cmds {
		if err := c.Execute(); err != nil {
			return fmt.Errorf("reapply step %d: %w", i, err)
		}
	}
	return nil
}

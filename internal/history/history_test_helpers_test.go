package history

import (
	"github.com/stretchr/testify/mock"

	"github.com/zjrosen/redraft/internal/command"
)

// mockCommand is a testify mock of command.Command.
type mockCommand struct {
	mock.Mock
	id string
}

var _ command.Command = (*mockCommand)(nil)

func newMockCommand(id string) *mockCommand {
	return &mockCommand{id: id}
}

func (m *mockCommand) Execute() error {
	return m.Called().Error(0)
}

func (m *mockCommand) Undo() error {
	return m.Called().Error(0)
}

func (m *mockCommand) ID() string {
	return m.id
}

func (m *mockCommand) Kind() command.Kind {
	return "mock"
}

func (m *mockCommand) Description() string {
	return "mock " + m.id
}

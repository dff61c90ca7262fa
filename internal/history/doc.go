// Package history sequences command execution and keeps the undo and redo
// stacks.
//
// ExecuteCommand is the only way onto the undo stack, and it always empties
// the redo stack: once a new edit diverges from an undone future, that future
// is gone.
//
//	h := history.New()
//	_ = h.ExecuteCommand(ctx, command.NewInsert(doc, "Hello"))
//	_ = h.Undo(ctx)
//	_ = h.Redo(ctx)
//
// Undo and Redo on an empty stack are silent no-ops. All methods are safe
// for concurrent use: every stack operation, including the command call it
// wraps, runs under a single mutex.
package history

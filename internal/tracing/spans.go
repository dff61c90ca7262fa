package tracing

// Span names.
const (
	SpanHistoryExecute = "history.execute"
	SpanHistoryUndo    = "history.undo"
	SpanHistoryRedo    = "history.redo"
	SpanHistoryClear   = "history.clear"
	SpanScriptRun      = "script.run"
	SpanScriptStep     = "script.step"
)

// Attribute keys.
const (
	AttrCommandID          = "command.id"
	AttrCommandKind        = "command.kind"
	AttrCommandDescription = "command.description"
	AttrUndoDepth          = "history.undo_depth"
	AttrRedoDepth          = "history.redo_depth"
	AttrHistoryNoop        = "history.noop"
	AttrScriptName         = "script.name"
	AttrScriptStep         = "script.step"
	AttrScriptOp           = "script.op"
)

// Event names.
const (
	EventRedoDiscarded = "history.redo_discarded"
	EventUndoTrimmed   = "history.undo_trimmed"
)

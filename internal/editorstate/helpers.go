package editorstate

import (
	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/cursor"
	"github.com/fresh-editor/fresh/internal/eventlog"
)

func cursorAt(offset buffer.ByteOffset) cursor.Selection {
	return cursor.NewCursorSelection(offset)
}

func newSingleDelete(start, end buffer.ByteOffset) eventlog.Event {
	return eventlog.NewDelete(start, end)
}

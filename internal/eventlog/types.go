// Package eventlog is the sole path by which a buffer is mutated: every
// insert, delete, and cursor change is appended as an Event, applied
// immediately, and kept (grouped, bounded) so it can be undone and redone.
//
// Grounded on the teacher's internal/engine/history package (command.go,
// group.go, operation.go, stack.go): same undo/redo stack shape, same
// BeginGroup/EndGroup/CancelGroup grouping, same checkpoint mechanism —
// generalized from the teacher's Command-that-knows-how-to-replay-itself
// model to the spec's flat Event types, and extended so every edit also
// drives the marker tree's adjust_for_edit, not just cursor positions.
package eventlog

import (
	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/marker"
)

// ByteOffset aliases buffer.ByteOffset for convenience.
type ByteOffset = buffer.ByteOffset

// CursorPos captures one cursor's anchor/head pair, restorable by undo.
type CursorPos struct {
	ID     int
	Anchor ByteOffset
	Head   ByteOffset
}

// CursorSink is the minimal cursor-set surface an event needs to replay or
// invert a cursor-affecting event. internal/editorstate's cursor set
// implements it; the event log itself has no opinion on cursor storage.
type CursorSink interface {
	Get(id int) (CursorPos, bool)
	AddCursor(pos CursorPos)
	RemoveCursor(id int)
	MoveCursor(id int, pos CursorPos)
}

// Event is a single appendable, undoable, redoable change.
type Event interface {
	// Apply performs the event against buf/markers/cursors, and must record
	// whatever state it needs to invert itself later.
	Apply(buf *buffer.Buffer, markers *marker.Tree, cursors CursorSink) error
	// Invert returns the event that undoes this one, using state captured
	// during the most recent Apply.
	Invert() Event
	// Description is a human-readable label, e.g. for an undo history UI.
	Description() string
}

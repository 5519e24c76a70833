package eventlog

import (
	"fmt"
	"unicode/utf8"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/marker"
)

// Insert inserts Text at Pos, then shifts every marker with
// adjust_for_edit(Pos, +inserted_len). The buffer normalizes Text's line
// endings to its own convention on the way in, which can change its
// length, so the marker shift (and the inverse Delete's range) is derived
// from the buffer's actual end offset rather than len(Text).
type Insert struct {
	Pos       ByteOffset
	Text      string
	insertedN ByteOffset
}

func (e *Insert) Apply(buf *buffer.Buffer, markers *marker.Tree, _ CursorSink) error {
	end, err := buf.Insert(e.Pos, e.Text)
	if err != nil {
		return err
	}
	e.insertedN = end - e.Pos
	markers.AdjustForEdit(e.Pos, int64(e.insertedN))
	return nil
}

func (e *Insert) Invert() Event {
	n := e.insertedN
	if n == 0 {
		n = ByteOffset(len(e.Text))
	}
	return &Delete{Start: e.Pos, End: e.Pos + n, text: e.Text}
}

func (e *Insert) Description() string {
	if utf8.RuneCountInString(e.Text) <= 20 {
		return fmt.Sprintf("Insert %q", e.Text)
	}
	return fmt.Sprintf("Insert %d characters", utf8.RuneCountInString(e.Text))
}

// Delete removes [Start, End), then shifts every marker with
// adjust_for_edit(Start, -(End-Start)). The removed text is captured on
// Apply so Invert can reconstruct an Insert.
type Delete struct {
	Start, End ByteOffset
	text       string
}

// NewDelete builds a Delete event for [start, end).
func NewDelete(start, end ByteOffset) *Delete { return &Delete{Start: start, End: end} }

func (e *Delete) Apply(buf *buffer.Buffer, markers *marker.Tree, _ CursorSink) error {
	text, err := buf.Read(e.Start, e.End)
	if err != nil {
		return err
	}
	if err := buf.Delete(e.Start, e.End); err != nil {
		return err
	}
	e.text = text
	markers.AdjustForEdit(e.Start, -(e.End - e.Start))
	return nil
}

func (e *Delete) Invert() Event {
	return &Insert{Pos: e.Start, Text: e.text}
}

func (e *Delete) Description() string {
	n := e.End - e.Start
	return fmt.Sprintf("Delete %d bytes", n)
}

// AddCursor adds a cursor at Pos.
type AddCursor struct {
	Pos CursorPos
}

func (e *AddCursor) Apply(_ *buffer.Buffer, _ *marker.Tree, cursors CursorSink) error {
	cursors.AddCursor(e.Pos)
	return nil
}

func (e *AddCursor) Invert() Event { return &RemoveCursor{ID: e.Pos.ID, removed: e.Pos} }

func (e *AddCursor) Description() string { return "Add cursor" }

// RemoveCursor removes the cursor with ID. The removed position is
// captured on Apply so Invert can restore it.
type RemoveCursor struct {
	ID      int
	removed CursorPos
}

// NewRemoveCursor builds a RemoveCursor event.
func NewRemoveCursor(id int) *RemoveCursor { return &RemoveCursor{ID: id} }

func (e *RemoveCursor) Apply(_ *buffer.Buffer, _ *marker.Tree, cursors CursorSink) error {
	if pos, ok := cursors.Get(e.ID); ok {
		e.removed = pos
	}
	cursors.RemoveCursor(e.ID)
	return nil
}

func (e *RemoveCursor) Invert() Event { return &AddCursor{Pos: e.removed} }

func (e *RemoveCursor) Description() string { return "Remove cursor" }

// MoveCursor moves the cursor with ID to To. The cursor's prior position is
// captured on Apply so Invert can restore it.
type MoveCursor struct {
	ID   int
	To   CursorPos
	from CursorPos
}

// NewMoveCursor builds a MoveCursor event.
func NewMoveCursor(id int, to CursorPos) *MoveCursor { return &MoveCursor{ID: id, To: to} }

func (e *MoveCursor) Apply(_ *buffer.Buffer, _ *marker.Tree, cursors CursorSink) error {
	if pos, ok := cursors.Get(e.ID); ok {
		e.from = pos
	}
	cursors.MoveCursor(e.ID, e.To)
	return nil
}

func (e *MoveCursor) Invert() Event { return &MoveCursor{ID: e.ID, To: e.from} }

func (e *MoveCursor) Description() string { return "Move cursor" }

// BulkEdit applies Children atomically, in the order given — callers
// building a multi-cursor fan-out must order children from highest byte
// offset to lowest so each child's own offsets stay valid as earlier ones
// mutate the buffer. If a child fails partway through, already-applied
// children are rolled back via their own Invert.
type BulkEdit struct {
	Label    string
	Children []Event
}

// NewBulkEdit builds a BulkEdit event.
func NewBulkEdit(label string, children ...Event) *BulkEdit {
	return &BulkEdit{Label: label, Children: children}
}

func (e *BulkEdit) Apply(buf *buffer.Buffer, markers *marker.Tree, cursors CursorSink) error {
	applied := 0
	for _, child := range e.Children {
		if err := child.Apply(buf, markers, cursors); err != nil {
			for i := applied - 1; i >= 0; i-- {
				_ = e.Children[i].Invert().Apply(buf, markers, cursors)
			}
			return fmt.Errorf("bulk edit %q: %w", e.Label, err)
		}
		applied++
	}
	return nil
}

func (e *BulkEdit) Invert() Event {
	inv := make([]Event, len(e.Children))
	for i, c := range e.Children {
		inv[len(e.Children)-1-i] = c.Invert()
	}
	return &BulkEdit{Label: e.Label, Children: inv}
}

func (e *BulkEdit) Description() string {
	if e.Label != "" {
		return e.Label
	}
	return fmt.Sprintf("%d edits", len(e.Children))
}

// IsEmpty reports whether a bulk edit has no children.
func (e *BulkEdit) IsEmpty() bool { return len(e.Children) == 0 }

// Package editorstate owns the per-split view onto a buffer (spec 4.E):
// its multi-cursor set, selection-replacement policy, clipboard adapter,
// and the per-frame snapshot exposed to plugins.
package editorstate

import (
	"fmt"
	"strings"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/cursor"
	"github.com/fresh-editor/fresh/internal/eventlog"
	"github.com/fresh-editor/fresh/internal/marker"
)

// View is one split's editor state: the buffer it shows, the marker tree
// anchoring its decorations, the event log it mutates through, and the
// cursor set the user is driving.
type View struct {
	Buffer    *buffer.Buffer
	Markers   *marker.Tree
	Log       *eventlog.Log
	Cursors   *cursor.Set
	Clipboard ClipboardProvider

	sticky map[cursor.ID]int64 // sticky visual column, by cursor ID
}

// NewView returns a View with a single cursor at offset 0.
func NewView(buf *buffer.Buffer, markers *marker.Tree, log *eventlog.Log, clipboard ClipboardProvider) *View {
	if clipboard == nil {
		clipboard = NewMemoryClipboard()
	}
	return &View{
		Buffer:    buf,
		Markers:   markers,
		Log:       log,
		Cursors:   cursor.NewSet(0),
		Clipboard: clipboard,
		sticky:    make(map[cursor.ID]int64),
	}
}

// cursorSink adapts v.Cursors to eventlog.CursorSink; *cursor.Set already
// implements it directly, so this is just a readability alias at call
// sites.
func (v *View) cursorSink() eventlog.CursorSink { return v.Cursors }

// Type inserts text at every cursor. A cursor with a non-empty selection
// has that selection deleted first, in the same bulk group, per spec
// 4.E's "selection delete precedes insert" rule. Cursors are processed
// from the highest byte offset to the lowest so earlier edits don't
// invalidate later ones (internal/eventlog.BulkEdit's ordering contract).
func (v *View) Type(text string) error {
	entries := v.Cursors.All()
	sortDescendingByStart(entries)

	children := make([]eventlog.Event, 0, len(entries)*2)
	for _, e := range entries {
		sel := e.Selection
		if !sel.IsEmpty() {
			children = append(children, eventlog.NewDelete(sel.Start(), sel.End()))
		}
		children = append(children, &eventlog.Insert{Pos: sel.Start(), Text: text})
	}
	if len(children) == 0 {
		return nil
	}

	bulk := eventlog.NewBulkEdit(fmt.Sprintf("Type %q", text), children...)
	if err := v.Log.Append(bulk, v.Buffer, v.Markers, v.cursorSink()); err != nil {
		return err
	}
	v.relocateCursorsAfterTyping(entries, text)
	v.Cursors.Dedup()
	return nil
}

// relocateCursorsAfterTyping moves every cursor to just past what it
// typed. entries is in descending start order (as Type applied them), so
// it is walked from the end: each cursor's new offset is its own start,
// plus the net length change of every edit at a lower offset, plus the
// inserted length.
func (v *View) relocateCursorsAfterTyping(entries []cursor.Entry, text string) {
	var shift buffer.ByteOffset
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		newPos := e.Selection.Start() + shift + buffer.ByteOffset(len(text))
		v.Cursors.Move(e.ID, cursor.NewCursorSelection(newPos))
		shift += buffer.ByteOffset(len(text)) - e.Selection.Len()
	}
}

func sortDescendingByStart(entries []cursor.Entry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Selection.Start() > entries[j-1].Selection.Start(); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// DeleteSelections deletes every cursor's current selection (a no-op for
// cursors with an empty selection), as one bulk group.
func (v *View) DeleteSelections() error {
	entries := v.Cursors.All()
	sortDescendingByStart(entries)

	children := make([]eventlog.Event, 0, len(entries))
	for _, e := range entries {
		if !e.Selection.IsEmpty() {
			children = append(children, eventlog.NewDelete(e.Selection.Start(), e.Selection.End()))
		}
	}
	if len(children) == 0 {
		return nil
	}
	bulk := eventlog.NewBulkEdit("Delete selection", children...)
	if err := v.Log.Append(bulk, v.Buffer, v.Markers, v.cursorSink()); err != nil {
		return err
	}
	for _, e := range entries {
		v.Cursors.Move(e.ID, cursor.NewCursorSelection(e.Selection.Start()))
	}
	v.Cursors.Dedup()
	return nil
}

// AddCursorBelow adds a new cursor one visual line below the primary,
// preserving its sticky visual column. AddCursorAbove is the symmetric
// operation.
func (v *View) AddCursorBelow() error { return v.addCursorVertical(1) }
func (v *View) AddCursorAbove() error { return v.addCursorVertical(-1) }

func (v *View) addCursorVertical(lineDelta int64) error {
	primary := v.Cursors.Primary()
	col, err := v.stickyColumnFor(primary)
	if err != nil {
		return err
	}

	// Extend from whichever existing cursor is furthest in lineDelta's
	// direction, so repeated add-below/add-above presses walk progressively
	// further rather than re-adding next to the primary every time. The
	// sticky column itself still always comes from the primary.
	edge, err := v.edgeCursorLine(lineDelta)
	if err != nil {
		return err
	}
	targetLine := edge + lineDelta
	if targetLine < 0 || targetLine >= v.Buffer.LineCount() {
		return nil // no line in that direction; no-op
	}

	lineStart, err := v.Buffer.ByteOfLine(targetLine)
	if err != nil {
		return err
	}
	lineText, contentEnd, err := v.lineTextAndContentEnd(targetLine, lineStart)
	if err != nil {
		return err
	}

	target := AlignToGraphemeBoundary(lineText, lineStart, clampColumnToOffset(lineStart, contentEnd, col))
	id := v.Cursors.Add(cursor.NewCursorSelection(target))
	v.sticky[id] = col
	return nil
}

// edgeCursorLine returns the line number of the existing cursor furthest
// in lineDelta's direction (greatest line for +1/below, smallest for
// -1/above).
func (v *View) edgeCursorLine(lineDelta int64) (int64, error) {
	entries := v.Cursors.All()
	best := int64(0)
	for i, e := range entries {
		line, _, err := v.Buffer.LineOf(e.Selection.Head)
		if err != nil {
			return 0, err
		}
		if i == 0 || (lineDelta > 0 && line > best) || (lineDelta < 0 && line < best) {
			best = line
		}
	}
	return best, nil
}

// lineTextAndContentEnd returns line's full text (including its trailing
// terminator, if any) and the offset just past its content, excluding
// that terminator — a vertical cursor move must never land past the
// visible characters of a short line and onto its newline.
func (v *View) lineTextAndContentEnd(line int64, lineStart buffer.ByteOffset) (string, buffer.ByteOffset, error) {
	var lineEnd buffer.ByteOffset
	hasNext := false
	if next, err := v.Buffer.ByteOfLine(line + 1); err == nil {
		lineEnd, hasNext = next, true
	} else {
		lineEnd = v.Buffer.Len()
	}
	text, err := v.Buffer.Read(lineStart, lineEnd)
	if err != nil {
		return "", 0, err
	}
	contentEnd := lineEnd
	if hasNext {
		contentEnd -= buffer.ByteOffset(len(v.Buffer.LineEnding().Sequence()))
	}
	return text, contentEnd, nil
}

func clampColumnToOffset(lineStart, lineEnd, col buffer.ByteOffset) buffer.ByteOffset {
	target := lineStart + col
	if target > lineEnd {
		target = lineEnd
	}
	return target
}

// stickyColumnFor returns e's sticky visual column, computing and caching
// it from its current byte offset if this is the first vertical move.
func (v *View) stickyColumnFor(e cursor.Entry) (buffer.ByteOffset, error) {
	if col, ok := v.sticky[e.ID]; ok {
		return col, nil
	}
	line, _, err := v.Buffer.LineOf(e.Selection.Head)
	if err != nil {
		return 0, err
	}
	lineStart, err := v.Buffer.ByteOfLine(line)
	if err != nil {
		return 0, err
	}
	col := e.Selection.Head - lineStart
	v.sticky[e.ID] = col
	return col, nil
}

// ClearStickyColumn drops cached sticky-column state for id, called after
// any horizontal motion (which resets the sticky column to the new
// position).
func (v *View) ClearStickyColumn(id cursor.ID) { delete(v.sticky, id) }

// AddCursorAtNextMatch searches forward from the primary selection's end
// for the next occurrence of the primary selection's literal text (or, if
// the primary selection is empty, the word touching the cursor), adding a
// new selection there and making it primary. Wraps once at EOF.
func (v *View) AddCursorAtNextMatch() error {
	primary := v.Cursors.Primary()
	full, err := v.Buffer.Text()
	if err != nil {
		return err
	}

	needle := full[primary.Selection.Start():primary.Selection.End()]
	searchFrom := primary.Selection.End()
	if needle == "" {
		ws, we := wordAt(full, 0, primary.Selection.Head)
		if ws == we {
			return nil // no word under an empty selection; nothing to match
		}
		needle = full[ws:we]
		searchFrom = we
	}

	idx := strings.Index(full[searchFrom:], needle)
	wrapped := false
	if idx < 0 {
		idx = strings.Index(full[:searchFrom], needle)
		if idx < 0 {
			return nil // no other occurrence anywhere
		}
		wrapped = true
	}

	var matchStart buffer.ByteOffset
	if wrapped {
		matchStart = buffer.ByteOffset(idx)
	} else {
		matchStart = searchFrom + buffer.ByteOffset(idx)
	}
	matchEnd := matchStart + buffer.ByteOffset(len(needle))

	id := v.Cursors.Add(cursor.Selection{Anchor: matchStart, Head: matchEnd})
	v.Cursors.SetPrimary(id)
	return nil
}

// Package cursor implements selection ranges and the multi-cursor set
// (spec 4.E): half-open [lo, hi) byte ranges with anchor/head semantics,
// transformed across edits, deduplicated after they coincide, and exposed
// through the same ID-keyed surface internal/eventlog expects of a
// CursorSink.
//
// Grounded on the teacher's internal/engine/cursor package
// (cursor.go/selection.go/cursors.go/transform.go): the Selection value
// type and its motion/normalize helpers are carried over close to
// verbatim, but CursorSet is replaced with an ID-keyed Set (the teacher's
// set has no stable identity per cursor, only index position, which can't
// survive adds/removes/merges the way spec 4.D's AddCursor/RemoveCursor/
// MoveCursor events need).
package cursor

import (
	"fmt"

	"github.com/fresh-editor/fresh/internal/buffer"
)

// ByteOffset aliases buffer.ByteOffset for convenience.
type ByteOffset = buffer.ByteOffset

// Range aliases buffer.Range for convenience.
type Range = buffer.Range

// Selection is a half-open [lo, hi) byte range. Anchor is where the
// selection started; Head is the live end (where typing/motion happens).
// Anchor == Head represents a plain cursor with no selection.
type Selection struct {
	Anchor ByteOffset
	Head   ByteOffset
}

// NewCursorSelection returns a collapsed selection (a cursor) at offset.
func NewCursorSelection(offset ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// NewRangeSelection returns a forward selection covering r.
func NewRangeSelection(r Range) Selection {
	return Selection{Anchor: r.Start, Head: r.End}
}

func (s Selection) IsEmpty() bool { return s.Anchor == s.Head }

func (s Selection) Len() ByteOffset {
	if s.Anchor <= s.Head {
		return s.Head - s.Anchor
	}
	return s.Anchor - s.Head
}

// Range returns the selection as a normalized (Start <= End) range.
func (s Selection) Range() Range {
	if s.Anchor <= s.Head {
		return Range{Start: s.Anchor, End: s.Head}
	}
	return Range{Start: s.Head, End: s.Anchor}
}

func (s Selection) Start() ByteOffset {
	if s.Anchor <= s.Head {
		return s.Anchor
	}
	return s.Head
}

func (s Selection) End() ByteOffset {
	if s.Anchor >= s.Head {
		return s.Anchor
	}
	return s.Head
}

// Cursor returns the head, the position where typing occurs.
func (s Selection) Cursor() ByteOffset { return s.Head }

func (s Selection) IsForward() bool  { return s.Head >= s.Anchor }
func (s Selection) IsBackward() bool { return s.Head < s.Anchor }

// Extend moves the head to offset, keeping the anchor fixed.
func (s Selection) Extend(offset ByteOffset) Selection {
	return Selection{Anchor: s.Anchor, Head: offset}
}

func (s Selection) MoveTo(offset ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

func (s Selection) MoveBy(delta ByteOffset) Selection {
	return Selection{Anchor: s.Anchor + delta, Head: s.Head + delta}
}

func (s Selection) Collapse() Selection { return Selection{Anchor: s.Head, Head: s.Head} }

func (s Selection) CollapseToStart() Selection {
	start := s.Start()
	return Selection{Anchor: start, Head: start}
}

func (s Selection) CollapseToEnd() Selection {
	end := s.End()
	return Selection{Anchor: end, Head: end}
}

func (s Selection) Flip() Selection { return Selection{Anchor: s.Head, Head: s.Anchor} }

// Normalize returns a forward selection (Anchor <= Head).
func (s Selection) Normalize() Selection {
	if s.Anchor <= s.Head {
		return s
	}
	return Selection{Anchor: s.Head, Head: s.Anchor}
}

// Contains reports whether offset falls in [Start, End).
func (s Selection) Contains(offset ByteOffset) bool {
	return offset >= s.Start() && offset < s.End()
}

func (s Selection) Overlaps(other Selection) bool {
	return s.Start() < other.End() && other.Start() < s.End()
}

func (s Selection) Clamp(maxOffset ByteOffset) Selection {
	anchor, head := s.Anchor, s.Head
	if anchor < 0 {
		anchor = 0
	} else if anchor > maxOffset {
		anchor = maxOffset
	}
	if head < 0 {
		head = 0
	} else if head > maxOffset {
		head = maxOffset
	}
	return Selection{Anchor: anchor, Head: head}
}

func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor(%d)", s.Head)
	}
	dir := "->"
	if s.IsBackward() {
		dir = "<-"
	}
	return fmt.Sprintf("Selection(%d%s%d)", s.Anchor, dir, s.Head)
}

func (s Selection) Equals(other Selection) bool {
	return s.Anchor == other.Anchor && s.Head == other.Head
}

// SameRange reports whether two selections cover the same range,
// regardless of direction.
func (s Selection) SameRange(other Selection) bool {
	return s.Start() == other.Start() && s.End() == other.End()
}

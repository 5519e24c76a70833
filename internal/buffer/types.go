package buffer

import (
	"fmt"
	"sync/atomic"
)

// ByteOffset is the fundamental position type: an absolute byte position in
// the buffer. Line/column conversion is a view-pipeline concern, not a
// buffer concern.
type ByteOffset = int64

// Point is a line/column position, used only by the handful of call sites
// (LSP-style integrations) that need one; the buffer itself is addressed by
// ByteOffset.
type Point struct {
	Line   uint32
	Column uint32
}

func (p Point) String() string { return fmt.Sprintf("(%d:%d)", p.Line, p.Column) }

// Range is a half-open byte range [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

func NewRange(start, end ByteOffset) Range { return Range{Start: start, End: end} }

func (r Range) String() string        { return fmt.Sprintf("[%d:%d)", r.Start, r.End) }
func (r Range) Len() ByteOffset        { return r.End - r.Start }
func (r Range) IsEmpty() bool          { return r.Start == r.End }
func (r Range) IsValid() bool          { return r.Start <= r.End }
func (r Range) Contains(o ByteOffset) bool {
	return o >= r.Start && o < r.End
}
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}
func (r Range) Shift(delta ByteOffset) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// LineEnding is fixed per buffer at load time.
type LineEnding uint8

const (
	LineEndingLF LineEnding = iota
	LineEndingCRLF
	LineEndingCR
)

func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "CRLF"
	case LineEndingCR:
		return "CR"
	default:
		return "LF"
	}
}

// Sequence returns the literal terminator bytes for this line ending.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// RevisionID uniquely identifies a buffer revision; it is bumped on every
// mutation and gives caches (gutter, row cache) a cheap change check
// independent of the event log's undo position.
type RevisionID uint64

var revisionCounter uint64

func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}

// BufferID identifies a buffer across the session-file persistence boundary.
type BufferID string

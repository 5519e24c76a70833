package buffer

import "github.com/fresh-editor/fresh/internal/fresherr"

// Snapshot is a read-only view of a buffer at a point in time. It shares the
// underlying (immutable) piece tree with the live buffer, so it never
// reflects later mutations and is safe to hand to another goroutine or a
// suspended plugin callback (spec 5: "plugins see a single coherent frame
// even if they suspend and resume").
type Snapshot struct {
	pt         *pieceTable
	id         BufferID
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// Read returns the text in [start, end), loading chunks as needed. Loads
// performed here mutate only this snapshot's private root pointer, never
// the live buffer's.
func (s *Snapshot) Read(start, end ByteOffset) (string, error) {
	if start < 0 || start > end || end > s.pt.Len() {
		return "", ErrRangeInvalid
	}
	text, err := s.pt.Slice(start, end)
	if err != nil {
		return "", fresherr.Wrap(fresherr.KindIO, "snapshot.Read", err)
	}
	return text, nil
}

// Len returns the total byte length at snapshot time.
func (s *Snapshot) Len() ByteOffset { return s.pt.Len() }

// LineCount returns the line count at snapshot time.
func (s *Snapshot) LineCount() int64 { return s.pt.LineCount() }

// ID returns the originating buffer's identity.
func (s *Snapshot) ID() BufferID { return s.id }

// RevisionID returns the revision this snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID { return s.revisionID }

// LineEnding returns the buffer's line ending at snapshot time.
func (s *Snapshot) LineEnding() LineEnding { return s.lineEnding }

// TabWidth returns the buffer's tab width at snapshot time.
func (s *Snapshot) TabWidth() int { return s.tabWidth }

// LineOf returns the line containing offset, see Buffer.LineOf.
func (s *Snapshot) LineOf(offset ByteOffset) (line int64, approx bool, err error) {
	if offset < 0 || offset > s.pt.Len() {
		return 0, false, ErrOffsetOutOfRange
	}
	l, a := s.pt.lineOf(offset)
	return l, a, nil
}

// ByteOfLine returns the start offset of line, see Buffer.ByteOfLine.
func (s *Snapshot) ByteOfLine(line int64) (ByteOffset, error) {
	off, err := s.pt.offsetOfLine(line)
	if err != nil {
		return 0, fresherr.Wrap(fresherr.KindIO, "snapshot.ByteOfLine", err)
	}
	return off, nil
}

// LineIterator returns a line iterator starting at byteOffset, see
// Buffer.LineIterator.
func (s *Snapshot) LineIterator(byteOffset ByteOffset, hint int) *LineIterator {
	return newLineIterator(s.pt, byteOffset, hint)
}

// Package buffer implements the lazily-loaded, line-ending-aware piece
// buffer: the bottom component of the text-manipulation core. It presents
// the current text of a file as an addressable byte sequence, loading
// chunks from its backing source only as reads demand them, so memory
// stays proportional to the working set rather than file size.
package buffer

import (
	"strings"
	"sync"

	"github.com/fresh-editor/fresh/internal/fresherr"
	"github.com/fresh-editor/fresh/internal/vfs"
	"github.com/google/uuid"
)

// Buffer wraps a pieceTable with revision tracking and line-ending policy.
// All methods are safe for concurrent use.
type Buffer struct {
	mu         sync.RWMutex
	pt         *pieceTable
	id         BufferID
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Buffer{
		pt:         emptyPieceTable(terminatorOf(cfg.lineEnding)),
		id:         BufferID(uuid.NewString()),
		revisionID: NewRevisionID(),
		lineEnding: cfg.lineEnding,
		tabWidth:   cfg.tabWidth,
	}
}

// NewBufferFromString creates an in-memory buffer from initial content,
// auto-detecting the line ending unless WithLineEnding/WithLF/... was given.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.lineEndingSet {
		cfg.lineEnding = DetectLineEnding(s)
	}
	return &Buffer{
		pt:         pieceTableFromString(s, terminatorOf(cfg.lineEnding)),
		id:         BufferID(uuid.NewString()),
		revisionID: NewRevisionID(),
		lineEnding: cfg.lineEnding,
		tabWidth:   cfg.tabWidth,
	}
}

// NewBufferFromSource opens a buffer over src without reading it in full.
// Only the configured head window (default 64 KiB) is scanned eagerly, to
// seed line-ending detection and the average-line-length estimator; the
// remainder is carved into fixed-size unscanned pieces loaded on demand.
func NewBufferFromSource(src vfs.Source, opts ...Option) (*Buffer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	probeTerm := terminatorOf(cfg.lineEnding)
	pt, head, err := pieceTableFromSource(src, probeTerm, cfg.headWindow)
	if err != nil {
		return nil, fresherr.Wrap(fresherr.KindIO, "buffer.Open", err)
	}
	if !cfg.lineEndingSet {
		cfg.lineEnding = DetectLineEnding(head)
		if term := terminatorOf(cfg.lineEnding); term != probeTerm {
			pt, _, err = pieceTableFromSource(src, term, cfg.headWindow)
			if err != nil {
				return nil, fresherr.Wrap(fresherr.KindIO, "buffer.Open", err)
			}
		}
	}

	return &Buffer{
		pt:         pt,
		id:         BufferID(uuid.NewString()),
		revisionID: NewRevisionID(),
		lineEnding: cfg.lineEnding,
		tabWidth:   cfg.tabWidth,
	}, nil
}

// normalizeLineEndings rewrites every line terminator in s to the buffer's
// configured sequence, matching the convention applied to pasted content
// (spec 4.E: "trailing newline in pasted content has normalization applied").
func (b *Buffer) normalizeLineEndings(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if b.lineEnding == LineEndingLF {
		return s
	}
	return strings.ReplaceAll(s, "\n", b.lineEnding.Sequence())
}

// ID returns the buffer's identity, stable across the session-file
// persistence boundary.
func (b *Buffer) ID() BufferID { return b.id }

// Read Operations

// Read returns the text in [start, end), loading any chunks overlapping the
// range on demand. Fails with fresherr.KindIO only when the backing source
// errors.
func (b *Buffer) Read(start, end ByteOffset) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if start < 0 || start > end || end > b.pt.Len() {
		return "", ErrRangeInvalid
	}
	s, err := b.pt.Slice(start, end)
	if err != nil {
		return "", fresherr.Wrap(fresherr.KindIO, "buffer.Read", err)
	}
	return s, nil
}

// Text returns the full buffer content. For large buffers prefer Read or
// the line iterator.
func (b *Buffer) Text() (string, error) {
	b.mu.RLock()
	n := b.pt.Len()
	b.mu.RUnlock()
	return b.Read(0, n)
}

// Len returns the total byte length of the buffer; always exact.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pt.Len()
}

// LineCount returns the number of logical lines, exact where loaded and
// estimated where not (see LineOf).
func (b *Buffer) LineCount() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pt.LineCount()
}

// IsEmpty reports whether the buffer holds zero bytes.
func (b *Buffer) IsEmpty() bool { return b.Len() == 0 }

// ByteAt returns the byte at offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset < 0 || offset >= b.pt.Len() {
		return 0, ErrOffsetOutOfRange
	}
	v, err := b.pt.byteAt(offset)
	if err != nil {
		return 0, fresherr.Wrap(fresherr.KindIO, "buffer.ByteAt", err)
	}
	return v, nil
}

// LineOf returns the 0-indexed line containing offset. approx is true when
// offset falls inside an unloaded region and the line number is a linear
// estimate derived from the average loaded line length; such approximations
// must never be persisted (spec 4.A).
func (b *Buffer) LineOf(offset ByteOffset) (line int64, approx bool, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset > b.pt.Len() {
		return 0, false, ErrOffsetOutOfRange
	}
	l, a := b.pt.lineOf(offset)
	return l, a, nil
}

// ByteOfLine returns the byte offset of the first content byte of the given
// 0-indexed line, loading chunks as needed. It never points at the
// preceding terminator.
func (b *Buffer) ByteOfLine(line int64) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	off, err := b.pt.offsetOfLine(line)
	if err != nil {
		return 0, fresherr.Wrap(fresherr.KindIO, "buffer.ByteOfLine", err)
	}
	return off, nil
}

// LineIterator returns an iterator over lines starting at byteOffset,
// walkable forward via Next and backward via Prev independently. hint sizes
// the backing reads; pass 0 for a sensible default.
func (b *Buffer) LineIterator(byteOffset ByteOffset, hint int) *LineIterator {
	b.mu.Lock()
	defer b.mu.Unlock()
	return newLineIterator(b.pt, byteOffset, hint)
}

// Write Operations

// Insert inserts text at offset, returning the offset just past the
// inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset < 0 || offset > b.pt.Len() {
		return 0, ErrOffsetOutOfRange
	}
	text = b.normalizeLineEndings(text)
	if err := b.pt.Insert(offset, text); err != nil {
		return 0, fresherr.Wrap(fresherr.KindIO, "buffer.Insert", err)
	}
	b.revisionID = NewRevisionID()
	return offset + ByteOffset(len(text)), nil
}

// Delete removes the text in [start, end).
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if start < 0 || start > end || end > b.pt.Len() {
		return ErrRangeInvalid
	}
	if err := b.pt.Delete(start, end); err != nil {
		return fresherr.Wrap(fresherr.KindIO, "buffer.Delete", err)
	}
	b.revisionID = NewRevisionID()
	return nil
}

// Replace replaces [start, end) with text, returning the offset just past
// the replacement.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if start < 0 || start > end || end > b.pt.Len() {
		return 0, ErrRangeInvalid
	}
	text = b.normalizeLineEndings(text)
	if err := b.pt.Delete(start, end); err != nil {
		return 0, fresherr.Wrap(fresherr.KindIO, "buffer.Replace", err)
	}
	if err := b.pt.Insert(start, text); err != nil {
		return 0, fresherr.Wrap(fresherr.KindIO, "buffer.Replace", err)
	}
	b.revisionID = NewRevisionID()
	return start + ByteOffset(len(text)), nil
}

// ApplyEdit applies a single edit, reporting the old text it replaced.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End || edit.Range.End > b.pt.Len() {
		return EditResult{}, ErrRangeInvalid
	}
	oldText, err := b.pt.Slice(edit.Range.Start, edit.Range.End)
	if err != nil {
		return EditResult{}, fresherr.Wrap(fresherr.KindIO, "buffer.ApplyEdit", err)
	}
	text := b.normalizeLineEndings(edit.NewText)
	if err := b.pt.Delete(edit.Range.Start, edit.Range.End); err != nil {
		return EditResult{}, fresherr.Wrap(fresherr.KindIO, "buffer.ApplyEdit", err)
	}
	if err := b.pt.Insert(edit.Range.Start, text); err != nil {
		return EditResult{}, fresherr.Wrap(fresherr.KindIO, "buffer.ApplyEdit", err)
	}
	b.revisionID = NewRevisionID()
	newEnd := edit.Range.Start + ByteOffset(len(text))
	return EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: newEnd},
		OldText:  oldText,
		Delta:    int64(len(text)) - int64(edit.Range.Len()),
	}, nil
}

// ApplyEdits applies multiple edits atomically. Edits must be supplied in
// descending-offset order (highest Range.Start first) and must not overlap,
// the classic bulk-edit rule that keeps each edit's positions valid as
// earlier (higher-offset) edits mutate the buffer first.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return ErrEditsOverlap
		}
	}
	ln := b.pt.Len()
	for _, e := range edits {
		if e.Range.Start < 0 || e.Range.Start > e.Range.End || e.Range.End > ln {
			return ErrRangeInvalid
		}
	}
	for _, e := range edits {
		text := b.normalizeLineEndings(e.NewText)
		if err := b.pt.Delete(e.Range.Start, e.Range.End); err != nil {
			return fresherr.Wrap(fresherr.KindIO, "buffer.ApplyEdits", err)
		}
		if err := b.pt.Insert(e.Range.Start, text); err != nil {
			return fresherr.Wrap(fresherr.KindIO, "buffer.ApplyEdits", err)
		}
	}
	b.revisionID = NewRevisionID()
	return nil
}

// Buffer State

// RevisionID returns the current revision, bumped on every mutation; a
// cheap change check for caches independent of the event log's undo
// position.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// LineEnding returns the buffer's fixed-at-load line ending.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// TabWidth returns the tab width used by downstream visual-column math.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetTabWidth updates the tab width.
func (b *Buffer) SetTabWidth(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width > 0 {
		b.tabWidth = width
	}
}

// Snapshot returns a read-only view of the current buffer state, safe for
// concurrent use from other goroutines even as the live buffer mutates
// further (the piece tree is immutable; a snapshot just pins a root).
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{
		pt: &pieceTable{
			root:         b.pt.root,
			source:       b.pt.source,
			term:         b.pt.term,
			scannedBytes: b.pt.scannedBytes,
			scannedLines: b.pt.scannedLines,
		},
		id:         b.id,
		revisionID: b.revisionID,
		lineEnding: b.lineEnding,
		tabWidth:   b.tabWidth,
	}
}

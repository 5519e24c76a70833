package buffer

// maxSyntheticLine bounds how much of a single physical line is ever
// materialized at once. A physical line longer than this is emitted as
// multiple synthetic "lines" so that one pathologically long line cannot
// exhaust memory (spec 4.A: "cap (>=100 KB)").
const maxSyntheticLine = 128 * 1024

const defaultIterHint = 4096

// LineIterator walks a buffer's lines forward (Next) and/or backward (Prev)
// from a starting byte offset, loading chunks from the backing source as it
// goes. Forward and backward cursors are independent, so a single iterator
// can be walked in both directions from the same starting point.
type LineIterator struct {
	pt   *pieceTable
	hint ByteOffset

	fwdPos        ByteOffset
	fwdDone       bool
	fwdEOFEmitted bool

	bwdPos  ByteOffset
	bwdDone bool

	start ByteOffset
	end   ByteOffset
	text  string
}

func newLineIterator(pt *pieceTable, byteOffset ByteOffset, hint int) *LineIterator {
	if hint <= 0 {
		hint = defaultIterHint
	}
	if byteOffset < 0 {
		byteOffset = 0
	}
	if byteOffset > pt.Len() {
		byteOffset = pt.Len()
	}
	lineStart, _ := findLineStartApprox(pt, byteOffset)
	return &LineIterator{pt: pt, hint: ByteOffset(hint), fwdPos: lineStart, bwdPos: lineStart}
}

// findLineStartApprox returns the start of the line containing offset,
// loading the piece it falls in.
func findLineStartApprox(pt *pieceTable, offset ByteOffset) (ByteOffset, error) {
	if offset == 0 {
		return 0, nil
	}
	line, _ := pt.lineOf(offset)
	return pt.offsetOfLine(line)
}

func endsWithTerminator(pt *pieceTable) bool {
	n := pt.Len()
	if n == 0 {
		return false
	}
	b, err := pt.byteAt(n - 1)
	return err == nil && b == pt.term
}

// Next advances the forward cursor to the next line, returning false when
// iteration is exhausted. A buffer ending with a terminator emits one
// trailing empty line before terminating.
func (it *LineIterator) Next() bool {
	if it.fwdDone {
		return false
	}
	length := it.pt.Len()

	if it.fwdPos >= length {
		if !it.fwdEOFEmitted && endsWithTerminator(it.pt) {
			it.fwdEOFEmitted = true
			it.fwdDone = true
			it.start, it.end, it.text = length, length, ""
			return true
		}
		it.fwdDone = true
		return false
	}

	window := it.hint
	for {
		readEnd := it.fwdPos + window
		capped := false
		if window >= maxSyntheticLine {
			readEnd = it.fwdPos + maxSyntheticLine
			capped = true
		}
		if readEnd > length {
			readEnd = length
		}
		chunk, err := it.pt.Slice(it.fwdPos, readEnd)
		if err != nil {
			it.fwdDone = true
			return false
		}
		if p := indexByte(chunk, it.pt.term); p >= 0 {
			it.start = it.fwdPos
			it.end = it.fwdPos + ByteOffset(p) + 1
			it.text = chunk[:p+1]
			it.fwdPos = it.end
			return true
		}
		if capped || readEnd >= length {
			it.start = it.fwdPos
			it.end = readEnd
			it.text = chunk
			it.fwdPos = readEnd
			return true
		}
		window *= 2
	}
}

// Prev retreats the backward cursor to the preceding line, returning false
// once the start of the buffer has been passed.
func (it *LineIterator) Prev() bool {
	if it.bwdDone {
		return false
	}
	if it.bwdPos <= 0 {
		it.bwdDone = true
		return false
	}

	searchEnd := it.bwdPos - 1 // byte at searchEnd, if any, belongs to the prior line's terminator
	window := it.hint

	for {
		lo := searchEnd - window
		capped := false
		if window >= maxSyntheticLine {
			lo = searchEnd - maxSyntheticLine
			capped = true
		}
		if lo < 0 {
			lo = 0
		}
		chunk, err := it.pt.Slice(lo, searchEnd)
		if err != nil {
			it.bwdDone = true
			return false
		}
		if p := lastIndexByte(chunk, it.pt.term); p >= 0 {
			lineStart := lo + ByteOffset(p) + 1
			text, err := it.pt.Slice(lineStart, it.bwdPos)
			if err != nil {
				it.bwdDone = true
				return false
			}
			it.start, it.end, it.text = lineStart, it.bwdPos, text
			it.bwdPos = lineStart
			return true
		}
		if capped || lo == 0 {
			text, err := it.pt.Slice(lo, it.bwdPos)
			if err != nil {
				it.bwdDone = true
				return false
			}
			it.start, it.end, it.text = lo, it.bwdPos, text
			it.bwdPos = lo
			if lo == 0 {
				it.bwdDone = true
			}
			return true
		}
		window *= 2
	}
}

// StartOffset returns the byte offset of the start of the current line.
func (it *LineIterator) StartOffset() ByteOffset { return it.start }

// EndOffset returns the byte offset just past the current line, including
// its terminator if any.
func (it *LineIterator) EndOffset() ByteOffset { return it.end }

// Text returns the current line's content including its terminator, if it
// has one (the final unterminated line of a buffer has none).
func (it *LineIterator) Text() string { return it.text }

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

package buffer

import (
	"strings"

	"github.com/fresh-editor/fresh/internal/vfs"
)

// pieceLoadChunk bounds how much of the original source is carved into a
// single unscanned piece up front, so that any later load — satisfying a
// read, a line lookup, a byte_of(line) — only ever materializes at most
// this many bytes, independent of how far into the file it lands.
const pieceLoadChunk = 1 << 20 // 1 MiB

// pieceTable is the mutable, lazily-materializing piece sequence behind a
// Buffer. The tree itself (pieceNode) is immutable and persistent; pieceTable
// owns the current root and the source used to satisfy lazy reads.
type pieceTable struct {
	root   *pieceNode
	source vfs.Source
	term   byte // line-terminator anchor byte: '\n' for LF/CRLF, '\r' for CR

	scannedBytes int64
	scannedLines int64
}

func emptyPieceTable(term byte) *pieceTable {
	return &pieceTable{root: newLeaf(), term: term}
}

func pieceTableFromString(s string, term byte) *pieceTable {
	if len(s) == 0 {
		return emptyPieceTable(term)
	}
	pieces := splitIntoAddedPieces(s, term)
	return &pieceTable{
		root: buildPieceNode(pieces), term: term,
		scannedBytes: int64(len(s)), scannedLines: countTerminators(s, term),
	}
}

const targetPieceSize = 4096

func splitIntoAddedPieces(s string, term byte) []piece {
	if len(s) <= targetPieceSize*2 {
		return []piece{newAddedPiece(s, term)}
	}
	var pieces []piece
	for len(s) > 0 {
		n := targetPieceSize
		if n >= len(s) {
			n = len(s)
		} else {
			for n < len(s) && !isUTF8StartByte(s[n]) {
				n++
			}
		}
		pieces = append(pieces, newAddedPiece(s[:n], term))
		s = s[n:]
	}
	return pieces
}

func isUTF8StartByte(b byte) bool { return b&0xC0 != 0x80 }

// pieceTableFromSource builds a lazily-loaded table spanning the full size
// of src without reading it, except for a small head window used to seed
// the average-line-length estimator and detect the line ending.
func pieceTableFromSource(src vfs.Source, term byte, headWindow int) (*pieceTable, string, error) {
	size := src.Size()
	pt := &pieceTable{root: newLeaf(), source: src, term: term}
	if size == 0 {
		return pt, "", nil
	}
	if headWindow > int(size) {
		headWindow = int(size)
	}
	head := make([]byte, headWindow)
	n, err := src.ReadAt(head, 0)
	if err != nil && n == 0 {
		return nil, "", err
	}
	head = head[:n]
	headStr := string(head)

	avg := defaultAvgLineLen
	if nl := countTerminators(headStr, term); nl > 0 {
		avg = float64(n) / float64(nl)
	}

	var pieces []piece
	headPiece := piece{kind: pieceOriginal, start: 0, length: int64(n)}.materialize(headStr, term)
	pieces = append(pieces, headPiece)
	for off := int64(n); off < size; off += pieceLoadChunk {
		plen := int64(pieceLoadChunk)
		if off+plen > size {
			plen = size - off
		}
		pieces = append(pieces, newUnscannedPiece(off, plen, avg))
	}
	pt.root = buildPieceNode(pieces)
	pt.scannedBytes = int64(n)
	pt.scannedLines = countTerminators(headStr, term)
	return pt, headStr, nil
}

func (pt *pieceTable) Len() int64       { return pt.root.Len() }
func (pt *pieceTable) LineCount() int64 { return pt.root.LineCount() }

func (pt *pieceTable) avgLineLen() float64 {
	if pt.scannedLines > 0 {
		return float64(pt.scannedBytes) / float64(pt.scannedLines)
	}
	return defaultAvgLineLen
}

// ensureLoaded guarantees every piece overlapping [start,end) is materialized,
// loading from source as needed. No-op for purely in-memory tables.
func (pt *pieceTable) ensureLoaded(start, end int64) error {
	if pt.source == nil {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end > pt.Len() {
		end = pt.Len()
	}
	if start >= end {
		return nil
	}

	left, rest := pt.root.split(start, pt.term)
	mid, right := rest.split(end-start, pt.term)

	var pieces []piece
	mid.flattenPieces(&pieces)

	changed := false
	for i, p := range pieces {
		if p.isLoaded() {
			continue
		}
		data, err := pt.loadPieceBytes(p)
		if err != nil {
			return err
		}
		pieces[i] = p.materialize(data, pt.term)
		pt.scannedBytes += p.length
		pt.scannedLines += pieces[i].summary.Lines
		changed = true
	}

	if !changed {
		pt.root = concatNodes(concatNodes(left, mid), right)
		return nil
	}
	pt.root = concatNodes(concatNodes(left, buildPieceNode(pieces)), right)
	return nil
}

func (pt *pieceTable) loadPieceBytes(p piece) (string, error) {
	buf := make([]byte, p.length)
	n, err := pt.source.ReadAt(buf, p.start)
	if err != nil && int64(n) < p.length {
		return "", err
	}
	return string(buf[:n]), nil
}

// Slice returns the text in [start,end), loading as needed.
func (pt *pieceTable) Slice(start, end int64) (string, error) {
	if start >= end {
		return "", nil
	}
	if err := pt.ensureLoaded(start, end); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(int(end - start))
	pt.root.textInRange(&sb, start, end)
	return sb.String(), nil
}

// Insert inserts text at offset; the inserted text always becomes added
// pieces, regardless of whether offset falls inside a lazy region (splitting
// an unscanned piece needs no load — the halves are just re-estimated).
func (pt *pieceTable) Insert(offset int64, text string) error {
	if len(text) == 0 {
		return nil
	}
	left, right := pt.root.split(offset, pt.term)
	inserted := buildPieceNode(splitIntoAddedPieces(text, pt.term))
	pt.root = concatNodes(concatNodes(left, inserted), right)
	pt.scannedBytes += int64(len(text))
	pt.scannedLines += countTerminators(text, pt.term)
	return nil
}

// Delete removes [start,end). Loading first keeps scannedBytes/scannedLines
// accounting correct (we must know how many terminators the deleted range
// actually held, not an estimate).
func (pt *pieceTable) Delete(start, end int64) error {
	if start >= end {
		return nil
	}
	if err := pt.ensureLoaded(start, end); err != nil {
		return err
	}
	left, rest := pt.root.split(start, pt.term)
	_, right := rest.split(end-start, pt.term)
	pt.root = concatNodes(left, right)
	return nil
}

func (pt *pieceTable) byteAt(offset int64) (byte, error) {
	s, err := pt.Slice(offset, offset+1)
	if err != nil || len(s) == 0 {
		return 0, err
	}
	return s[0], nil
}

// lineOf returns the 0-indexed line containing offset without forcing a
// load: if offset falls inside an unscanned piece, the result is a linear
// estimate flagged approx=true, matching the spec's "estimated line numbers
// marked as approximate" requirement.
func (pt *pieceTable) lineOf(offset int64) (line int64, approx bool) {
	return lineOfNode(pt.root, pt.term, 0, 0, offset)
}

func lineOfNode(n *pieceNode, term byte, base, baseLine, offset int64) (int64, bool) {
	if n.IsLeaf() {
		cur := base
		curLine := baseLine
		for _, p := range n.pieces {
			pend := cur + p.length
			if offset < pend || p.length == 0 {
				within := offset - cur
				if p.isLoaded() {
					return curLine + countTerminators(p.data[:clampInt(within, 0, p.length)], term), false
				}
				frac := float64(0)
				if p.length > 0 {
					frac = float64(within) / float64(p.length)
				}
				return curLine + int64(frac*float64(p.summary.Lines)), true
			}
			cur = pend
			curLine += p.summary.Lines
		}
		return curLine, false
	}
	cur := base
	curLine := baseLine
	for i, c := range n.children {
		clen := n.childSummaries[i].Bytes
		if offset < cur+clen || i == len(n.children)-1 {
			return lineOfNode(c, term, cur, curLine, offset)
		}
		cur += clen
		curLine += n.childSummaries[i].Lines
	}
	return curLine, false
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// offsetOfLine returns the byte offset of the start of the given 0-indexed
// line, loading any unscanned piece that line falls within. Returns Len()
// if line is at or past the end.
func (pt *pieceTable) offsetOfLine(line int64) (int64, error) {
	if line <= 0 {
		return 0, nil
	}
	for {
		off, found, loadRange := findLineStart(pt.root, pt.term, 0, 0, line)
		if found {
			return off, nil
		}
		if loadRange == nil {
			return pt.Len(), nil
		}
		if err := pt.ensureLoaded(loadRange[0], loadRange[1]); err != nil {
			return 0, err
		}
	}
}

// findLineStart locates the byte offset where the target (1-indexed count
// of terminators to skip) line begins. It returns found=false with a
// loadRange when it must materialize an unscanned piece to proceed.
func findLineStart(n *pieceNode, term byte, base, curLines, target int64) (int64, bool, []int64) {
	if n.IsLeaf() {
		cur := base
		cl := curLines
		for _, p := range n.pieces {
			if cl+p.summary.Lines >= target {
				need := target - cl
				if need <= 0 {
					return cur, true, nil
				}
				if !p.isLoaded() {
					return 0, false, []int64{cur, cur + p.length}
				}
				pos := nthTerminator(p.data, term, need)
				if pos < 0 {
					return 0, false, nil
				}
				return cur + int64(pos) + 1, true, nil
			}
			cl += p.summary.Lines
			cur += p.length
		}
		return 0, false, nil
	}
	cur := base
	cl := curLines
	for i, c := range n.children {
		cs := n.childSummaries[i]
		if cl+cs.Lines >= target {
			return findLineStart(c, term, cur, cl, target)
		}
		cl += cs.Lines
		cur += cs.Bytes
	}
	return 0, false, nil
}

// nthTerminator returns the byte index of the n-th (1-indexed) occurrence of
// term in s, or -1 if there are fewer than n.
func nthTerminator(s string, term byte, n int64) int {
	var count int64
	for i := 0; i < len(s); i++ {
		if s[i] == term {
			count++
			if count == n {
				return i
			}
		}
	}
	return -1
}

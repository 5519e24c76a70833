package buffer

// pieceKind distinguishes the two append-only stores a piece table draws
// from: the lazily-loaded original file content, and the in-memory added
// content produced by edits.
type pieceKind uint8

const (
	pieceOriginal pieceKind = iota
	pieceAdded
)

// Tree shape constants, sized the same as the teacher's rope package: small
// enough to keep split/concat cheap, large enough to keep the tree shallow.
const (
	minChildren      = 4
	maxChildren      = 8
	maxPiecesPerLeaf = 4

	// defaultAvgLineLen seeds the line-count estimator before any piece has
	// been scanned; 80 matches common source-line width.
	defaultAvgLineLen = 80
)

// piece is one contiguous run referencing either store. Unscanned original
// pieces carry no materialized bytes and an estimated line count; once
// loaded, data and lines become exact.
type piece struct {
	kind    pieceKind
	start   int64 // offset into the original source; meaningless for pieceAdded
	length  int64
	data    string // materialized text; always set for pieceAdded, set for scanned original pieces
	scanned bool   // true once data/lines reflect the real bytes
	summary pieceSummary
}

func (p piece) isLoaded() bool {
	return p.kind == pieceAdded || p.scanned
}

// pieceSummary is the monoid aggregate carried by every tree node, mirroring
// the rope package's TextSummary but tracking whether Lines is exact or an
// estimate derived from unscanned regions.
type pieceSummary struct {
	Bytes     int64
	Lines     int64 // count of terminator occurrences; line count is Lines+1
	Estimated bool
}

func (s pieceSummary) Add(o pieceSummary) pieceSummary {
	return pieceSummary{
		Bytes:     s.Bytes + o.Bytes,
		Lines:     s.Lines + o.Lines,
		Estimated: s.Estimated || o.Estimated,
	}
}

// countTerminators counts occurrences of term (the buffer's configured line
// terminator anchor byte: '\n' for LF/CRLF-style buffers, '\r' for CR-style
// buffers) in s.
func countTerminators(s string, term byte) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		if s[i] == term {
			n++
		}
	}
	return n
}

// newAddedPiece builds an always-exact piece from in-memory text.
func newAddedPiece(s string, term byte) piece {
	return piece{
		kind:    pieceAdded,
		length:  int64(len(s)),
		data:    s,
		scanned: true,
		summary: pieceSummary{Bytes: int64(len(s)), Lines: countTerminators(s, term)},
	}
}

// newUnscannedPiece builds a lazy original-source piece whose line count is
// an estimate until materialized.
func newUnscannedPiece(start, length int64, avgLineLen float64) piece {
	if avgLineLen <= 0 {
		avgLineLen = defaultAvgLineLen
	}
	estLines := int64(float64(length) / avgLineLen)
	return piece{
		kind:   pieceOriginal,
		start:  start,
		length: length,
		summary: pieceSummary{
			Bytes:     length,
			Lines:     estLines,
			Estimated: true,
		},
	}
}

// materialize returns a scanned copy of an original piece given its bytes.
func (p piece) materialize(data string, term byte) piece {
	p.data = data
	p.scanned = true
	p.summary = pieceSummary{Bytes: p.length, Lines: countTerminators(data, term), Estimated: false}
	return p
}

func (p piece) split(at int64, term byte) (piece, piece) {
	if at <= 0 {
		return piece{}, p
	}
	if at >= p.length {
		return p, piece{}
	}
	switch p.kind {
	case pieceAdded:
		return newAddedPiece(p.data[:at], term), newAddedPiece(p.data[at:], term)
	default:
		if p.scanned {
			return p.materialize(p.data[:at], term), piece{
				kind: pieceOriginal, start: p.start + at, length: p.length - at,
			}.materialize(p.data[at:], term)
		}
		avg := defaultAvgLineLen
		if p.summary.Lines > 0 {
			avg = float64(p.summary.Bytes) / float64(p.summary.Lines)
		}
		left := newUnscannedPiece(p.start, at, avg)
		right := newUnscannedPiece(p.start+at, p.length-at, avg)
		return left, right
	}
}

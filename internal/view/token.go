// Package view implements the view pipeline (spec 4.F): turning a byte
// range of a buffer into an ordered sequence of screen rows, by way of
// five stages — tokenize, plugin transform, virtual-text injection, wrap,
// and style — plus the cursor-to-screen mapping and its inverse.
//
// Grounded on the teacher's internal/engine/rope iterators (the Next()
// advance idiom of ChunkIterator/LineIterator/RuneIterator) for streaming
// buffer content, and internal/renderer (cell.go, style.go, view.go's
// ScreenToBuffer/BufferToScreen) for the cell/style/mapping shapes, with
// the teacher's hand-rolled East-Asian-width table and flat style overwrite
// replaced by github.com/rivo/uniseg and github.com/lucasb-eyer/go-colorful
// respectively.
package view

import "github.com/fresh-editor/fresh/internal/buffer"

// TokenKind classifies one token in the pipeline's token stream (spec 4.F
// stage 1).
type TokenKind uint8

const (
	// Text is a run of contiguous, decodable, non-space characters.
	Text TokenKind = iota
	// Space is a run of contiguous space/tab characters.
	Space
	// Newline is one line terminator (LF, CRLF, or CR, per the buffer's
	// line-ending convention).
	Newline
	// HardBreak is a forced line break with no buffer terminator behind
	// it; only a Transform (stage 2) ever introduces one.
	HardBreak
	// BinaryByte is a single byte that did not decode as valid UTF-8.
	BinaryByte
	// VirtualInline is synthetic text spliced in by stage 3, anchored
	// next to a real byte but not itself part of the buffer.
	VirtualInline
)

// Token is one unit of the pipeline's token stream. Offset is the byte
// offset in the source buffer the token was derived from. A token with no
// real-buffer origin of its own (a HardBreak a transform inserted, or a
// VirtualInline fragment) carries the offset of the real token it is
// anchored next to, per spec 4.F stage 2's "preserve the byte-offset
// annotation on any token derived from real buffer bytes" rule.
type Token struct {
	Kind   TokenKind
	Text   string // payload for Text, Space, VirtualInline
	Byte   byte   // payload for BinaryByte
	Offset buffer.ByteOffset
}

// EndOffset returns the offset just past this token's real-buffer content
// (Offset+len(Text) for Text/Space, Offset+1 for BinaryByte, Offset for
// everything else — tokens with no width of their own in the source).
func (t Token) EndOffset() buffer.ByteOffset {
	switch t.Kind {
	case Text, Space:
		return t.Offset + buffer.ByteOffset(len(t.Text))
	case BinaryByte:
		return t.Offset + 1
	default:
		return t.Offset
	}
}

// IsReal reports whether this token was derived directly from buffer
// bytes (as opposed to being injected by a transform or the virtual-text
// stage).
func (t Token) IsReal() bool {
	switch t.Kind {
	case Text, Space, Newline, BinaryByte:
		return true
	default:
		return false
	}
}

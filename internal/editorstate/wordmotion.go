package editorstate

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/fresh-editor/fresh/internal/buffer"
)

// wordClass is the language-neutral word classification spec 4.E requires
// for word motions: alphanumeric-plus-underscore vs everything else, with
// whitespace runs collapsed rather than classed as their own boundary
// type.
type wordClass uint8

const (
	classWhitespace wordClass = iota
	classWord
	classPunct
)

func classify(r rune) wordClass {
	switch {
	case unicode.IsSpace(r):
		return classWhitespace
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	default:
		return classPunct
	}
}

// wordAt returns the [start, end) byte range of the word (or punctuation
// run) touching offset within s, where s starts at byte absolute base.
// Used by add-at-next-match when the primary selection is empty (the
// "word under the cursor" fallback).
func wordAt(s string, base, offset buffer.ByteOffset) (buffer.ByteOffset, buffer.ByteOffset) {
	rel := int(offset - base)
	if rel < 0 || rel > len(s) {
		return offset, offset
	}
	if rel == len(s) {
		rel--
		if rel < 0 {
			return offset, offset
		}
	}
	r, _ := utf8.DecodeRuneInString(s[rel:])
	cls := classify(r)
	if cls == classWhitespace {
		return offset, offset
	}

	start := rel
	for start > 0 {
		pr, size := utf8.DecodeLastRuneInString(s[:start])
		if classify(pr) != cls {
			break
		}
		start -= size
	}
	end := rel
	for end < len(s) {
		nr, size := utf8.DecodeRuneInString(s[end:])
		if classify(nr) != cls {
			break
		}
		end += size
	}
	return base + buffer.ByteOffset(start), base + buffer.ByteOffset(end)
}

// AlignToRuneBoundary nudges offset backward, if needed, so it never falls
// inside a multi-byte UTF-8 scalar. s is the buffer text covering
// [base, base+len(s)).
func AlignToRuneBoundary(s string, base, offset buffer.ByteOffset) buffer.ByteOffset {
	rel := int(offset - base)
	if rel <= 0 || rel >= len(s) {
		return offset
	}
	for rel > 0 && !utf8.RuneStart(s[rel]) {
		rel--
	}
	return base + buffer.ByteOffset(rel)
}

// AlignToGraphemeBoundary nudges offset backward, if needed, so it never
// splits a grapheme cluster (spec 4.E: "never split a UTF-8 scalar, CRLF
// pair, or grapheme cluster"). s is the buffer text covering
// [base, base+len(s)).
func AlignToGraphemeBoundary(s string, base, offset buffer.ByteOffset) buffer.ByteOffset {
	rel := int(offset - base)
	if rel <= 0 || rel >= len(s) {
		return offset
	}
	pos := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		start, end := gr.Positions()
		if rel > start && rel < end {
			return base + buffer.ByteOffset(start)
		}
		if rel <= end {
			break
		}
		pos = end
	}
	_ = pos
	return offset
}

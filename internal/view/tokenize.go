package view

import (
	"strings"
	"unicode/utf8"

	"github.com/fresh-editor/fresh/internal/buffer"
)

// Tokenize streams [start, end) of buf as a token list (spec 4.F stage 1).
// It walks whole lines via buf.LineIterator — the same forward-cursor idiom
// internal/buffer/iterator.go and the teacher's rope.LineIterator both use
// — rather than decoding the entire viewport into memory in one read, so a
// tall viewport over a buffer loaded lazily from disk only pulls in the
// chunks its lines actually live in. start snaps back to the start of its
// containing line (LineIterator always begins at a line boundary), so
// callers that want exactly [start, end) tokenized should pass a
// line-aligned start, as the view pipeline's Render does.
func Tokenize(buf *buffer.Buffer, start, end buffer.ByteOffset) ([]Token, error) {
	if end < start {
		start, end = end, start
	}
	if start == end {
		return nil, nil
	}

	term := buf.LineEnding().Sequence()
	it := buf.LineIterator(start, 0)

	var tokens []Token
	for it.Next() {
		lineStart := it.StartOffset()
		if lineStart >= end {
			break
		}
		text := it.Text()

		content := text
		hasTerm := term != "" && strings.HasSuffix(text, term)
		if hasTerm {
			content = text[:len(text)-len(term)]
		}

		tokens = append(tokens, tokenizeRun(content, lineStart)...)
		if hasTerm {
			tokens = append(tokens, Token{
				Kind:   Newline,
				Offset: lineStart + buffer.ByteOffset(len(content)),
			})
		}

		if it.EndOffset() >= end {
			break
		}
	}
	return tokens, nil
}

// tokenizeRun splits one line's content (with its terminator already
// stripped) into Text/Space/BinaryByte tokens, coalescing contiguous runs
// of the same class into a single token.
func tokenizeRun(s string, base buffer.ByteOffset) []Token {
	var out []Token
	runStart := 0
	runIsSpace := false
	haveRun := false

	flush := func(end int) {
		if !haveRun || end <= runStart {
			return
		}
		kind := Text
		if runIsSpace {
			kind = Space
		}
		out = append(out, Token{Kind: kind, Text: s[runStart:end], Offset: base + buffer.ByteOffset(runStart)})
	}

	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			flush(i)
			out = append(out, Token{Kind: BinaryByte, Byte: s[i], Offset: base + buffer.ByteOffset(i)})
			i++
			runStart = i
			haveRun = false
			continue
		}

		isSpace := r == ' ' || r == '\t'
		if !haveRun {
			runStart, runIsSpace, haveRun = i, isSpace, true
		} else if isSpace != runIsSpace {
			flush(i)
			runStart, runIsSpace = i, isSpace
		}
		i += size
	}
	flush(len(s))
	return out
}

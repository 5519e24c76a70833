package view

import (
	"sort"
	"unicode/utf8"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/decoration"
)

// InjectVirtualText walks tokens in source-offset order and splices in
// inline virtual-text fragments at their anchors (spec 4.F stage 3). An
// anchor frequently falls in the middle of a coalesced Text or Space run —
// tokenizeRun merges whole runs of like bytes into one token — so this
// splits the containing token at the anchor's rune boundary rather than
// only matching token-start offsets.
//
// Line-level fragments (decoration.VirtualLine) are not spliced inline;
// LineVirtualTexts extracts those separately so the wrap stage can
// interleave them as synthetic rows between source lines.
func InjectVirtualText(tokens []Token, reg *decoration.Registry, start, end buffer.ByteOffset) []Token {
	if reg == nil {
		return tokens
	}
	anchors := reg.VirtualTextsIn(int64(start), int64(end))
	var before, after []decoration.VirtualTextAnchor
	for _, a := range anchors {
		switch a.Text.Kind {
		case decoration.VirtualInlineBefore:
			before = append(before, a)
		case decoration.VirtualInlineAfter:
			after = append(after, a)
		}
	}
	if len(before) == 0 && len(after) == 0 {
		return tokens
	}

	out := make([]Token, 0, len(tokens)+len(before)+len(after))
	for _, tok := range tokens {
		out = append(out, spliceToken(tok, before, after)...)
	}
	return out
}

// spliceToken splits tok at every anchor that falls inside its byte range,
// inserting a VirtualInline token right before or right after the anchor
// byte. Anchors outside tok's range are left for whichever token does
// contain them.
func spliceToken(tok Token, before, after []decoration.VirtualTextAnchor) []Token {
	if tok.Kind != Text && tok.Kind != Space {
		// Newline and BinaryByte tokens carry no splittable payload; an
		// anchor landing exactly on one is left to the map-free fallback of
		// being rendered adjacent to it by the caller's token ordering.
		return []Token{tok}
	}

	type cut struct {
		pos  int // byte offset relative to tok.Text where vtok is inserted
		vtok Token
	}
	var cuts []cut
	for _, a := range before {
		off := buffer.ByteOffset(a.Offset)
		if off >= tok.Offset && off < tok.EndOffset() {
			rel := int(off - tok.Offset)
			cuts = append(cuts, cut{rel, Token{Kind: VirtualInline, Text: a.Text.Text, Offset: off}})
		}
	}
	for _, a := range after {
		off := buffer.ByteOffset(a.Offset)
		if off >= tok.Offset && off < tok.EndOffset() {
			rel := int(off - tok.Offset)
			_, size := utf8.DecodeRuneInString(tok.Text[rel:])
			cuts = append(cuts, cut{rel + size, Token{Kind: VirtualInline, Text: a.Text.Text, Offset: off}})
		}
	}
	if len(cuts) == 0 {
		return []Token{tok}
	}
	sort.SliceStable(cuts, func(i, j int) bool { return cuts[i].pos < cuts[j].pos })

	out := make([]Token, 0, len(cuts)*2+1)
	prev := 0
	for _, c := range cuts {
		if c.pos > prev {
			out = append(out, Token{Kind: tok.Kind, Text: tok.Text[prev:c.pos], Offset: tok.Offset + buffer.ByteOffset(prev)})
		}
		out = append(out, c.vtok)
		prev = c.pos
	}
	if prev < len(tok.Text) {
		out = append(out, Token{Kind: tok.Kind, Text: tok.Text[prev:], Offset: tok.Offset + buffer.ByteOffset(prev)})
	}
	return out
}

// LineVirtualTexts returns the line-level virtual-text fragments anchored
// in [start, end), each paired with its resolved anchor offset, in
// source-offset order, for the wrap stage to interleave as synthetic rows
// carrying no gutter line number.
func LineVirtualTexts(reg *decoration.Registry, start, end buffer.ByteOffset) []decoration.VirtualTextAnchor {
	if reg == nil {
		return nil
	}
	anchors := reg.VirtualTextsIn(int64(start), int64(end))
	var out []decoration.VirtualTextAnchor
	for _, a := range anchors {
		if a.Text.Kind == decoration.VirtualLine {
			out = append(out, a)
		}
	}
	return out
}

package view

import (
	"sort"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/decoration"
)

// SyntaxSpan is one highlighted byte range a syntax highlighter reports.
type SyntaxSpan struct {
	Start, End buffer.ByteOffset
	Style      decoration.Style
}

// SyntaxFunc highlights [start, end) of the buffer, returning spans in any
// order. A nil SyntaxFunc means "no syntax highlighting" — every cell gets
// the zero Style from this stage, with only overlays applied on top.
type SyntaxFunc func(start, end buffer.ByteOffset) []SyntaxSpan

// StyledCell pairs a Cell with its flattened style, the Style stage's
// per-cell output (spec 4.F stage 5).
type StyledCell struct {
	Cell
	Style decoration.Style
}

// StyledRow is a Row after the Style stage has resolved every cell's style.
type StyledRow struct {
	Line      int64
	Segment   int
	Cells     []StyledCell
	StartByte buffer.ByteOffset
	EndByte   buffer.ByteOffset
}

// StyleRows flattens syntax and overlay layers onto every row's cells,
// ascending priority (syntax first, overlays on top), and emits the final
// styled rows a cell-grid renderer consumes. reg may be nil (no overlays);
// syntax may be nil (no highlighting).
func StyleRows(rows []Row, reg *decoration.Registry, syntax SyntaxFunc) []StyledRow {
	if len(rows) == 0 {
		return nil
	}
	lo, hi, ok := rowByteBounds(rows)

	var spans []SyntaxSpan
	if ok && syntax != nil {
		spans = syntax(lo, hi)
		sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	}
	var layers []decoration.OverlayLayer
	if ok && reg != nil {
		layers = reg.OverlaysIn(int64(lo), int64(hi))
	}

	out := make([]StyledRow, len(rows))
	for i, row := range rows {
		out[i] = StyledRow{
			Line:      row.Line,
			Segment:   row.Segment,
			StartByte: row.StartByte,
			EndByte:   row.EndByte,
			Cells:     make([]StyledCell, len(row.Cells)),
		}
		for j, c := range row.Cells {
			style := decoration.Style{}
			if c.Real {
				style = style.Over(syntaxStyleAt(spans, c.Offset))
				style = style.Over(overlayStyleAt(layers, c.Offset))
			}
			out[i].Cells[j] = StyledCell{Cell: c, Style: style}
		}
	}
	return out
}

func rowByteBounds(rows []Row) (buffer.ByteOffset, buffer.ByteOffset, bool) {
	lo, hi := buffer.ByteOffset(0), buffer.ByteOffset(0)
	found := false
	for _, r := range rows {
		if r.StartByte == NoOffset {
			continue
		}
		if !found || r.StartByte < lo {
			lo = r.StartByte
		}
		if !found || r.EndByte > hi {
			hi = r.EndByte
		}
		found = true
	}
	return lo, hi, found
}

func syntaxStyleAt(spans []SyntaxSpan, offset buffer.ByteOffset) decoration.Style {
	for _, s := range spans {
		if offset >= s.Start && offset < s.End {
			return s.Style
		}
	}
	return decoration.Style{}
}

// overlayStyleAt flattens every overlay covering offset, in the ascending
// priority order OverlaysIn already sorted layers into.
func overlayStyleAt(layers []decoration.OverlayLayer, offset buffer.ByteOffset) decoration.Style {
	style := decoration.Style{}
	for _, l := range layers {
		if int64(offset) >= l.Start && int64(offset) < l.End {
			style = style.Over(l.Overlay.Style)
		}
	}
	return style
}

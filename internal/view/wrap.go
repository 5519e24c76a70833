package view

import (
	"github.com/rivo/uniseg"

	"github.com/fresh-editor/fresh/internal/buffer"
)

// NoOffset marks a cell with no real-buffer byte behind it (a wide
// character's continuation cell, or synthetic virtual text).
const NoOffset buffer.ByteOffset = -1

// Cell is one rendered screen cell: a single grapheme cluster (which may
// occupy one or two display columns) plus the byte offset it came from.
// Grounded on the teacher's renderer.Cell, generalized to carry a source
// offset instead of only a rune, since the view pipeline needs to map
// screen cells back to buffer bytes (spec 4.F's cursor-to-screen mapping).
type Cell struct {
	Text    string // the grapheme cluster's text; "" for a wide char's continuation cell
	Width   int    // display width in columns: 0 (continuation), 1, or 2
	Offset  buffer.ByteOffset
	Real    bool // true if Offset names an actual buffer byte
	Virtual bool // true for a cell spliced in by stage 3
}

// Row is one wrapped screen row: at most textWidth display columns worth
// of cells from a single logical line (or a synthetic line-level virtual
// row), plus the byte range of real buffer content it covers.
type Row struct {
	Line      int64 // logical source line; -1 for a line-level virtual row
	Segment   int   // 0-based wrap-segment index within Line
	Cells     []Cell
	StartByte buffer.ByteOffset // NoOffset if the row covers no real bytes
	EndByte   buffer.ByteOffset
}

// displayWidth returns a grapheme cluster's terminal column width: 1 for
// ASCII printable, 0 for zero-width joiners/combining marks, 2 for
// East-Asian Wide and most emoji. Delegates to uniseg rather than a
// hand-rolled range table.
func displayWidth(cluster string) int {
	return uniseg.StringWidth(cluster)
}

// cellsForToken expands one token into display cells, splitting Text/Space
// runs and virtual text into grapheme clusters and emitting a zero-width
// continuation cell after every double-width cluster.
func cellsForToken(tok Token) []Cell {
	switch tok.Kind {
	case Text, Space, VirtualInline:
		var cells []Cell
		gr := uniseg.NewGraphemes(tok.Text)
		for gr.Next() {
			start, _ := gr.Positions()
			cluster := gr.Str()
			w := displayWidth(cluster)
			off := tok.Offset + buffer.ByteOffset(start)
			cells = append(cells, Cell{
				Text:    cluster,
				Width:   w,
				Offset:  off,
				Real:    tok.Kind != VirtualInline,
				Virtual: tok.Kind == VirtualInline,
			})
			if w >= 2 {
				cells = append(cells, Cell{Width: 0, Offset: NoOffset})
			}
		}
		return cells
	case BinaryByte:
		return []Cell{{Text: "�", Width: 1, Offset: tok.Offset, Real: true}}
	default:
		return nil
	}
}

// Wrap splits tokens into Rows (spec 4.F stage 4). textWidth <= 0 selects
// no-wrap mode: every logical line becomes exactly one segment regardless
// of width. Wrap boundaries prefer the end of a whitespace run; a single
// grapheme cluster wider than textWidth still gets its own segment rather
// than being dropped.
func Wrap(tokens []Token, textWidth int) []Row {
	var rows []Row
	line := int64(0)
	seg := int(0)

	var cur []Cell
	width := 0
	breakAt := -1 // index into cur just past the last whitespace run seen
	breakWidth := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		rows = append(rows, newRow(line, seg, cur))
		seg++
		cur, width, breakAt, breakWidth = nil, 0, -1, 0
	}

	newLine := func() {
		flush()
		line++
		seg = 0
	}

	for _, tok := range tokens {
		if tok.Kind == Newline {
			newLine()
			continue
		}
		if tok.Kind == HardBreak {
			flush()
			continue
		}

		cells := cellsForToken(tok)
		for _, c := range cells {
			if c.Width == 0 {
				// A continuation cell never triggers a break and must stay
				// glued to the wide cell right before it.
				cur = append(cur, c)
				continue
			}
			if textWidth > 0 && len(cur) > 0 && width+c.Width > textWidth {
				if breakAt > 0 {
					tail := append([]Cell(nil), cur[breakAt:]...)
					cur = cur[:breakAt]
					rows = append(rows, newRow(line, seg, cur))
					seg++
					cur, width = tail, width-breakWidth
					breakAt, breakWidth = -1, 0
				} else {
					rows = append(rows, newRow(line, seg, cur))
					seg++
					cur, width, breakAt, breakWidth = nil, 0, -1, 0
				}
			}
			cur = append(cur, c)
			width += c.Width
		}
		if tok.Kind == Space {
			breakAt, breakWidth = len(cur), width
		}
	}
	flush()
	return rows
}

func newRow(line int64, seg int, cells []Cell) Row {
	r := Row{Line: line, Segment: seg, Cells: cells, StartByte: NoOffset, EndByte: NoOffset}
	for _, c := range cells {
		if !c.Real {
			continue
		}
		if r.StartByte == NoOffset || c.Offset < r.StartByte {
			r.StartByte = c.Offset
		}
		end := c.Offset + buffer.ByteOffset(len(c.Text))
		if end > r.EndByte {
			r.EndByte = end
		}
	}
	return r
}

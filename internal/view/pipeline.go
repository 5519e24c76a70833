package view

import (
	"sort"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/decoration"
)

// Options controls the wrap stage. TextWidth <= 0 selects no-wrap mode:
// segment width is effectively infinite, so every logical line becomes
// exactly one row (spec 4.F "No-wrap mode"); horizontal scroll on top of
// that is a render-time concern, not this package's.
type Options struct {
	TextWidth int
}

// Pipeline renders a byte range of a buffer into styled screen rows,
// wiring the five stages of spec 4.F together: tokenize, plugin transform,
// inject virtual text, wrap, style.
type Pipeline struct {
	Buf         *buffer.Buffer
	Decorations *decoration.Registry
	Transforms  []Transform
	Syntax      SyntaxFunc
}

// Render runs [start, end) through all five stages and returns the
// buffer's content as styled rows in source order, with any line-level
// virtual text interleaved per spec 4.F stage 3.
func (p *Pipeline) Render(start, end buffer.ByteOffset, opts Options) ([]StyledRow, error) {
	tokens, err := Tokenize(p.Buf, start, end)
	if err != nil {
		return nil, err
	}
	tokens = ApplyTransforms(tokens, p.Transforms)
	tokens = InjectVirtualText(tokens, p.Decorations, start, end)

	rows := Wrap(tokens, opts.TextWidth)
	rows = p.resolveAbsoluteLines(rows, start)
	rows = p.interleaveLineVirtualText(rows, start, end)

	return StyleRows(rows, p.Decorations, p.Syntax), nil
}

// resolveAbsoluteLines shifts Wrap's 0-based-from-viewport line numbers to
// absolute buffer line numbers, so they agree with Buffer.LineOf (and so
// with where a line-level virtual text's anchor resolves).
func (p *Pipeline) resolveAbsoluteLines(rows []Row, start buffer.ByteOffset) []Row {
	if len(rows) == 0 {
		return rows
	}
	startLine, _, err := p.Buf.LineOf(start)
	if err != nil {
		return rows
	}
	for i := range rows {
		rows[i].Line += startLine
	}
	return rows
}

// interleaveLineVirtualText inserts a synthetic Row (Line == -1) right
// after the last wrap segment of whatever logical line each line-level
// virtual-text fragment resolves to.
func (p *Pipeline) interleaveLineVirtualText(rows []Row, start, end buffer.ByteOffset) []Row {
	fragments := LineVirtualTexts(p.Decorations, start, end)
	if len(fragments) == 0 {
		return rows
	}

	type insertion struct {
		afterRow int
		row      Row
	}
	var insertions []insertion
	for _, a := range fragments {
		// Line-level fragments are anchored at a byte offset; resolve which
		// logical line that is so it lands after that line's last segment.
		line, _, err := p.Buf.LineOf(buffer.ByteOffset(a.Offset))
		if err != nil {
			continue
		}
		afterRow := lastSegmentIndex(rows, line)
		if afterRow < 0 {
			continue
		}
		cells := cellsForToken(Token{Kind: VirtualInline, Text: a.Text.Text, Offset: NoOffset})
		for i := range cells {
			cells[i].Offset = NoOffset
		}
		insertions = append(insertions, insertion{
			afterRow: afterRow,
			row:      Row{Line: -1, Cells: cells, StartByte: NoOffset, EndByte: NoOffset},
		})
	}
	if len(insertions) == 0 {
		return rows
	}
	sort.SliceStable(insertions, func(i, j int) bool { return insertions[i].afterRow < insertions[j].afterRow })

	out := make([]Row, 0, len(rows)+len(insertions))
	ii := 0
	for ri, r := range rows {
		out = append(out, r)
		for ii < len(insertions) && insertions[ii].afterRow == ri {
			out = append(out, insertions[ii].row)
			ii++
		}
	}
	return out
}

func lastSegmentIndex(rows []Row, line int64) int {
	idx := -1
	for i, r := range rows {
		if r.Line == line {
			idx = i
		}
	}
	return idx
}

// CursorToScreen maps a byte offset to its (row, column) position among
// rows (spec 4.F "Cursor-to-screen mapping"). Column accounts for any
// skipped leading whitespace: it is simply the sum of preceding cell
// widths in the row, so a continuation segment's visual indent (a
// render-time concern) never enters this calculation.
func CursorToScreen(rows []StyledRow, offset buffer.ByteOffset) (row, col int, ok bool) {
	for ri, r := range rows {
		c := 0
		for _, cell := range r.Cells {
			if cell.Real && cell.Offset == offset {
				return ri, c, true
			}
			c += cell.Width
		}
		if r.StartByte != NoOffset && offset >= r.StartByte && offset <= r.EndByte {
			return ri, c, true
		}
	}
	return 0, 0, false
}

// ScreenToCursor is CursorToScreen's inverse: given a (row, column)
// position, return the byte offset it corresponds to. A click inside
// inline virtual text binds to the nearest real byte in the row, per spec
// 4.F.
func ScreenToCursor(rows []StyledRow, row, col int) (buffer.ByteOffset, bool) {
	if row < 0 || row >= len(rows) {
		return 0, false
	}
	r := rows[row]
	acc := 0
	for i, cell := range r.Cells {
		if col < acc+cell.Width || (cell.Width == 0 && col == acc) {
			if cell.Real {
				return cell.Offset, true
			}
			if off, ok := nearestReal(r.Cells, i); ok {
				return off, true
			}
			break
		}
		acc += cell.Width
	}
	if r.EndByte != NoOffset {
		return r.EndByte, true
	}
	return 0, false
}

func nearestReal(cells []StyledCell, idx int) (buffer.ByteOffset, bool) {
	for i := idx; i >= 0; i-- {
		if cells[i].Real {
			return cells[i].Offset, true
		}
	}
	for i := idx; i < len(cells); i++ {
		if cells[i].Real {
			return cells[i].Offset, true
		}
	}
	return 0, false
}

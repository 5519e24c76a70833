package app

import (
	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/decoration"
	"github.com/fresh-editor/fresh/internal/renderer"
	"github.com/fresh-editor/fresh/internal/session"
	"github.com/fresh-editor/fresh/internal/view"
)

// renderBridge adapts one session.Entry to the three provider interfaces
// internal/renderer's cell-grid frontend needs (BufferReader, CursorProvider,
// HighlightProvider), driving its gutter/viewport/highlight layers from
// the same buffer/cursor/decoration state the plugin ops surface and
// internal/eventlog mutate, instead of the teacher's engine.Engine-backed
// renderer wiring.
type renderBridge struct {
	entry *session.Entry
}

func newRenderBridge(e *session.Entry) *renderBridge { return &renderBridge{entry: e} }

// renderer.BufferReader

func (b *renderBridge) LineText(line uint32) string {
	buf := b.entry.View.Buffer
	start, err := buf.ByteOfLine(int64(line))
	if err != nil {
		return ""
	}
	end, err := buf.ByteOfLine(int64(line) + 1)
	if err != nil {
		end = buf.Len()
	} else if end > start {
		end--
	}
	text, _ := buf.Read(start, end)
	return text
}

func (b *renderBridge) LineCount() uint32 {
	return uint32(b.entry.View.Buffer.LineCount())
}

func (b *renderBridge) TabWidth() int {
	return b.entry.View.Buffer.TabWidth()
}

// renderer.CursorProvider

func (b *renderBridge) PrimaryCursor() (line uint32, col uint32) {
	offset := b.entry.View.Cursors.Primary().Selection.Head
	return b.lineCol(offset)
}

func (b *renderBridge) Selections() []renderer.Selection {
	entries := b.entry.View.Cursors.All()
	out := make([]renderer.Selection, 0, len(entries))
	primary := b.entry.View.Cursors.Primary()
	for _, e := range entries {
		if e.Selection.IsEmpty() {
			continue
		}
		startLine, startCol := b.lineCol(e.Selection.Start())
		endLine, endCol := b.lineCol(e.Selection.End())
		out = append(out, renderer.Selection{
			StartLine: startLine,
			StartCol:  startCol,
			EndLine:   endLine,
			EndCol:    endCol,
			IsPrimary: e.ID == primary.ID,
		})
	}
	return out
}

func (b *renderBridge) lineCol(offset buffer.ByteOffset) (line, col uint32) {
	buf := b.entry.View.Buffer
	l, _, err := buf.LineOf(offset)
	if err != nil {
		return 0, 0
	}
	lineStart, err := buf.ByteOfLine(l)
	if err != nil {
		return uint32(l), 0
	}
	return uint32(l), uint32(offset - lineStart)
}

// renderer.HighlightProvider

func (b *renderBridge) HighlightsForLine(line uint32) []renderer.StyleSpan {
	buf := b.entry.View.Buffer
	start, err := buf.ByteOfLine(int64(line))
	if err != nil {
		return nil
	}
	end, err := buf.ByteOfLine(int64(line) + 1)
	if err != nil {
		end = buf.Len()
	}

	pipeline := &view.Pipeline{Buf: buf, Decorations: b.entry.Decorations}
	rows, err := pipeline.Render(start, end, view.Options{TextWidth: 0})
	if err != nil {
		return nil
	}

	var spans []renderer.StyleSpan
	col := uint32(0)
	for _, row := range rows {
		for _, cell := range row.Cells {
			width := uint32(cell.Width)
			if width == 0 {
				continue
			}
			spans = append(spans, renderer.StyleSpan{
				StartCol: col,
				EndCol:   col + width,
				Style:    toRendererStyle(cell.Style),
			})
			col += width
		}
	}
	return spans
}

func (b *renderBridge) InvalidateLines(startLine, endLine uint32) {}

func toRendererStyle(s decoration.Style) renderer.Style {
	out := renderer.Style{}
	if s.HasForeground {
		r, g, bl := s.Foreground.RGB255()
		out.Foreground = renderer.ColorFromRGB(r, g, bl)
	}
	if s.HasBackground {
		r, g, bl := s.Background.RGB255()
		out.Background = renderer.ColorFromRGB(r, g, bl)
	}
	if s.Attributes.Has(decoration.AttrBold) {
		out.Attributes = out.Attributes.With(renderer.AttrBold)
	}
	if s.Attributes.Has(decoration.AttrItalic) {
		out.Attributes = out.Attributes.With(renderer.AttrItalic)
	}
	if s.Attributes.Has(decoration.AttrUnderline) {
		out.Attributes = out.Attributes.With(renderer.AttrUnderline)
	}
	return out
}

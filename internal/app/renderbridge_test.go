package app

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/cursor"
	"github.com/fresh-editor/fresh/internal/decoration"
	"github.com/fresh-editor/fresh/internal/editorstate"
	"github.com/fresh-editor/fresh/internal/eventlog"
	"github.com/fresh-editor/fresh/internal/marker"
	"github.com/fresh-editor/fresh/internal/renderer"
	"github.com/fresh-editor/fresh/internal/session"
)

func newTestEntry(t *testing.T, text string) *session.Entry {
	t.Helper()
	buf := buffer.NewBufferFromString(text)
	markers := marker.New()
	log := eventlog.New(100)
	view := editorstate.NewView(buf, markers, log, nil)
	return &session.Entry{
		ID:          buf.ID(),
		View:        view,
		Decorations: decoration.NewRegistry(markers),
	}
}

func TestRenderBridgeLineTextAndCount(t *testing.T) {
	entry := newTestEntry(t, "hello\nworld\n")
	bridge := newRenderBridge(entry)

	if got := bridge.LineText(0); got != "hello" {
		t.Fatalf("LineText(0) = %q", got)
	}
	if got := bridge.LineText(1); got != "world" {
		t.Fatalf("LineText(1) = %q", got)
	}
	if got := bridge.LineCount(); got < 2 {
		t.Fatalf("LineCount() = %d, want >= 2", got)
	}
}

func TestRenderBridgePrimaryCursor(t *testing.T) {
	entry := newTestEntry(t, "hello\nworld\n")
	primary := entry.View.Cursors.Primary()
	entry.View.Cursors.Move(primary.ID, cursor.NewCursorSelection(6))

	bridge := newRenderBridge(entry)
	line, col := bridge.PrimaryCursor()
	if line != 1 || col != 0 {
		t.Fatalf("PrimaryCursor() = (%d, %d), want (1, 0)", line, col)
	}
}

func TestRenderBridgeHighlightsForLineHasNoPanic(t *testing.T) {
	entry := newTestEntry(t, "hello world\n")
	bridge := newRenderBridge(entry)

	spans := bridge.HighlightsForLine(0)
	var total uint32
	for _, s := range spans {
		total += s.EndCol - s.StartCol
	}
	if total == 0 && len(spans) != 0 {
		t.Fatal("expected either no spans or spans covering the line")
	}
}

func TestToRendererStyleConvertsAttributes(t *testing.T) {
	style := decoration.Style{}.Bold().Italic().Underline()
	out := toRendererStyle(style)

	if !out.Attributes.Has(renderer.AttrBold) {
		t.Error("expected Bold to carry over")
	}
	if !out.Attributes.Has(renderer.AttrItalic) {
		t.Error("expected Italic to carry over")
	}
	if !out.Attributes.Has(renderer.AttrUnderline) {
		t.Error("expected Underline to carry over")
	}
}

func TestToRendererStyleConvertsColors(t *testing.T) {
	style := decoration.Style{}.WithForeground(colorful.Color{R: 1, G: 0, B: 0})
	out := toRendererStyle(style)

	if out.Foreground.R != 255 {
		t.Fatalf("expected foreground red channel 255, got %d", out.Foreground.R)
	}
}

package decoration

import (
	"testing"

	"github.com/fresh-editor/fresh/internal/marker"
)

func TestAddOverlayAndQuery(t *testing.T) {
	m := marker.New()
	r := NewRegistry(m)

	key := Key{Namespace: "lsp", LocalID: 1}
	r.AddOverlay(key, 5, 10, PriorityNormal, Style{}.Bold())

	layers := r.OverlaysIn(0, 20)
	if len(layers) != 1 {
		t.Fatalf("expected 1 overlay, got %d", len(layers))
	}
	if layers[0].Start != 5 || layers[0].End != 10 {
		t.Fatalf("expected range [5,10), got [%d,%d)", layers[0].Start, layers[0].End)
	}
}

func TestOverlayMovesWithEdit(t *testing.T) {
	m := marker.New()
	r := NewRegistry(m)

	key := Key{Namespace: "diagnostics", LocalID: 1}
	r.AddOverlay(key, 10, 15, PriorityNormal, Style{})

	m.AdjustForEdit(0, 5) // insert 5 bytes at the start of the buffer

	layers := r.OverlaysIn(0, 100)
	if len(layers) != 1 {
		t.Fatalf("expected overlay to survive edit, got %d", len(layers))
	}
	if layers[0].Start != 15 || layers[0].End != 20 {
		t.Fatalf("expected overlay shifted to [15,20), got [%d,%d)", layers[0].Start, layers[0].End)
	}
}

func TestOverlayReclaimedWhenAnchorDeleted(t *testing.T) {
	m := marker.New()
	r := NewRegistry(m)

	key := Key{Namespace: "ghost", LocalID: 1}
	r.AddOverlay(key, 10, 15, PriorityNormal, Style{})

	m.AdjustForEdit(0, -100) // delete everything, collapsing the anchor
	// Edits only collapse markers; Reap reclaims once the anchor is deleted.
	if err := m.Delete(r.overlays[key].anchor); err != nil {
		t.Fatalf("Delete anchor: %v", err)
	}

	r.Reap()
	if r.Count() != 0 {
		t.Fatalf("expected overlay reclaimed after anchor collapsed and reaped, got count %d", r.Count())
	}
}

func TestClearRemovesOnlyNamespace(t *testing.T) {
	m := marker.New()
	r := NewRegistry(m)

	r.AddOverlay(Key{Namespace: "ns-a", LocalID: 1}, 0, 5, PriorityNormal, Style{})
	r.AddOverlay(Key{Namespace: "ns-b", LocalID: 1}, 10, 15, PriorityNormal, Style{})

	r.Clear("ns-a")

	if r.Count() != 1 {
		t.Fatalf("expected only ns-b overlay left, got count %d", r.Count())
	}
	if layers := r.OverlaysIn(10, 15); len(layers) != 1 {
		t.Fatalf("expected ns-b overlay to survive, got %d", len(layers))
	}
}

func TestLineIndicatorHighestPriorityWins(t *testing.T) {
	m := marker.New()
	r := NewRegistry(m)

	lineOf := func(offset int64) (int64, bool, error) {
		return offset / 10, false, nil // 10 bytes per line, for test purposes
	}

	r.AddLineIndicator(Key{Namespace: "git", LocalID: 1}, 2, PriorityLow, "~", Style{})
	r.AddLineIndicator(Key{Namespace: "lsp", LocalID: 1}, 5, PriorityHigh, "E", Style{})

	got, ok := r.LineAt(0, lineOf)
	if !ok {
		t.Fatal("expected an indicator on line 0")
	}
	if got.Symbol != "E" {
		t.Fatalf("expected highest-priority indicator 'E', got %q", got.Symbol)
	}
}

func TestLineRangeScansOnlyIndicatorsNotLines(t *testing.T) {
	m := marker.New()
	r := NewRegistry(m)

	lineOf := func(offset int64) (int64, bool, error) {
		return offset / 10, false, nil
	}

	r.AddLineIndicator(Key{Namespace: "git", LocalID: 1}, 5, PriorityNormal, "+", Style{})
	r.AddLineIndicator(Key{Namespace: "git", LocalID: 2}, 500, PriorityNormal, "+", Style{}) // outside viewport

	lines := r.LineRange(0, 100, lineOf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 indicator in viewport, got %d", len(lines))
	}
	if _, ok := lines[0]; !ok {
		t.Fatal("expected indicator on line 0")
	}
}

func TestVirtualTextAtExactOffset(t *testing.T) {
	m := marker.New()
	r := NewRegistry(m)

	r.AddVirtualText(Key{Namespace: "inline-hint", LocalID: 1}, 7, VirtualInlineAfter, ": string", Style{}.Italic())

	got := r.VirtualTextAt(7)
	if len(got) != 1 {
		t.Fatalf("expected 1 virtual text fragment at offset 7, got %d", len(got))
	}
	if got[0].Text != ": string" {
		t.Fatalf("unexpected text %q", got[0].Text)
	}

	if got := r.VirtualTextAt(8); len(got) != 0 {
		t.Fatalf("expected no fragment at a different offset, got %d", len(got))
	}
}

func TestLineLevelVirtualTextExcludedFromInlineLookup(t *testing.T) {
	m := marker.New()
	r := NewRegistry(m)

	r.AddVirtualText(Key{Namespace: "diff", LocalID: 1}, 3, VirtualLine, "+ added line", Style{})

	if got := r.VirtualTextAt(3); len(got) != 0 {
		t.Fatalf("expected line-level virtual text excluded from inline lookup, got %d", len(got))
	}
}

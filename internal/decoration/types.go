// Package decoration implements the overlay and virtual-text registry
// (spec 4.C): visual decorations anchored to marker-tree positions so
// they move with edits and vanish when their anchor is deleted.
//
// Grounded on the teacher's internal/renderer/overlay package
// (types.go/manager.go): Overlay/Priority/Style/Span are the same shape,
// but Range here is a marker.ID pair (byte-range anchored in the marker
// tree) instead of a static line/column Range, since spec 4.C requires
// overlays to track edits and be reclaimed when their anchor disappears
// rather than being repositioned by the caller on every edit.
package decoration

import "github.com/lucasb-eyer/go-colorful"

// Namespace groups decorations created by one plugin or subsystem so they
// can all be removed together with Clear.
type Namespace string

// LocalID identifies a decoration within its namespace.
type LocalID uint64

// Key is the stable external identity of a decoration: (namespace,
// local_id), per spec 4.C.
type Key struct {
	Namespace Namespace
	LocalID   LocalID
}

// Attr is a bitmask of style attributes, mirroring the teacher's
// core.Attributes but kept local so this package has no dependency on the
// teacher's renderer core.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrStrikethrough
)

func (a Attr) Has(other Attr) bool { return a&other != 0 }

// Style is a per-byte visual style layer. Foreground/Background use
// go-colorful so the view pipeline's Style stage can alpha-blend stacked
// overlays (spec 4.F) instead of doing flat last-write-wins RGB overwrite.
type Style struct {
	Foreground    colorful.Color
	HasForeground bool
	Background    colorful.Color
	HasBackground bool
	Attributes    Attr

	// Opacity is this style's blend weight when a later layer overwrites an
	// earlier one's color, in (0, 1]; the zero value means "opaque" (a
	// plain overwrite, no blending). Only a style declaring partial
	// opacity asks the Style stage to blend rather than replace.
	Opacity float64
}

func (s Style) Bold() Style          { s.Attributes |= AttrBold; return s }
func (s Style) Italic() Style        { s.Attributes |= AttrItalic; return s }
func (s Style) Underline() Style     { s.Attributes |= AttrUnderline; return s }
func (s Style) Strikethrough() Style { s.Attributes |= AttrStrikethrough; return s }

func (s Style) WithForeground(c colorful.Color) Style {
	s.Foreground, s.HasForeground = c, true
	return s
}

func (s Style) WithBackground(c colorful.Color) Style {
	s.Background, s.HasBackground = c, true
	return s
}

// WithOpacity sets the blend weight used when a later layer's color
// overwrites this one's, in (0, 1]. Values outside that range are clamped.
func (s Style) WithOpacity(opacity float64) Style {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	s.Opacity = opacity
	return s
}

// Over flattens top onto s: top's explicit color fields replace s's
// (blended toward s by top's Opacity when top declares partial opacity),
// and attributes are OR'd together. Grounded on the teacher's Style.Merge,
// generalized to blend rather than flat-overwrite colors — the view
// pipeline's Style stage (spec 4.F) flattens syntax and overlay layers by
// ascending priority with exactly this operation.
func (s Style) Over(top Style) Style {
	result := s
	if top.HasForeground {
		if top.Opacity > 0 && top.Opacity < 1 && result.HasForeground {
			result.Foreground = result.Foreground.BlendRgb(top.Foreground, top.Opacity)
		} else {
			result.Foreground = top.Foreground
		}
		result.HasForeground = true
	}
	if top.HasBackground {
		if top.Opacity > 0 && top.Opacity < 1 && result.HasBackground {
			result.Background = result.Background.BlendRgb(top.Background, top.Opacity)
		} else {
			result.Background = top.Background
		}
		result.HasBackground = true
	}
	result.Attributes |= top.Attributes
	return result
}

// Priority controls stacking order when multiple decorations cover the
// same byte: ascending priority, later (higher) wins per spec 4.C.
type Priority uint16

const (
	PriorityLow      Priority = 50
	PriorityNormal   Priority = 100
	PriorityHigh     Priority = 150
	PriorityCritical Priority = 200
)

// VirtualTextKind distinguishes inline virtual text from a synthetic
// line-level row.
type VirtualTextKind uint8

const (
	// VirtualInlineBefore renders text immediately before the anchor byte.
	VirtualInlineBefore VirtualTextKind = iota
	// VirtualInlineAfter renders text immediately after the anchor byte.
	VirtualInlineAfter
	// VirtualLine renders a synthetic row with no gutter line number.
	VirtualLine
)

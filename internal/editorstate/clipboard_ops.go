package editorstate

import (
	"strings"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/decoration"
)

// FormattedClip is the result of CopyWithFormatting: the copied text plus
// whatever overlay style layers covered it, so a paste that understands
// formatting (e.g. into another fresh buffer) can carry them over.
type FormattedClip struct {
	Text   string
	Layers []decoration.OverlayLayer
}

// Copy yanks the primary selection's text to the clipboard. With an empty
// selection it falls back to whole-line copy (the line containing the
// cursor, trailing newline preserved), per spec 4.E.
func (v *View) Copy() error {
	text, err := v.primarySelectionOrWholeLine()
	if err != nil {
		return err
	}
	return v.Clipboard.Set(text)
}

// Cut yanks the primary selection's text (or whole line, same fallback as
// Copy) and deletes it.
func (v *View) Cut() error {
	primary := v.Cursors.Primary()
	if primary.Selection.IsEmpty() {
		line, _, err := v.Buffer.LineOf(primary.Selection.Head)
		if err != nil {
			return err
		}
		start, end, err := v.wholeLineRange(line)
		if err != nil {
			return err
		}
		text, err := v.Buffer.Read(start, end)
		if err != nil {
			return err
		}
		if err := v.Clipboard.Set(text); err != nil {
			return err
		}
		v.Cursors.Move(primary.ID, cursorAt(start))
		return v.deleteRange(start, end)
	}

	text, err := v.Buffer.Read(primary.Selection.Start(), primary.Selection.End())
	if err != nil {
		return err
	}
	if err := v.Clipboard.Set(text); err != nil {
		return err
	}
	return v.DeleteSelections()
}

// CopyWithFormatting yanks the primary selection's text together with any
// overlay style layers covering it. Decorations is optional; pass nil if
// the view has none registered.
func (v *View) CopyWithFormatting(decorations *decoration.Registry) (FormattedClip, error) {
	primary := v.Cursors.Primary()
	start, end := primary.Selection.Start(), primary.Selection.End()
	if primary.Selection.IsEmpty() {
		line, _, err := v.Buffer.LineOf(primary.Selection.Head)
		if err != nil {
			return FormattedClip{}, err
		}
		start, end, err = v.wholeLineRange(line)
		if err != nil {
			return FormattedClip{}, err
		}
	}

	text, err := v.Buffer.Read(start, end)
	if err != nil {
		return FormattedClip{}, err
	}

	clip := FormattedClip{Text: text}
	if decorations != nil {
		clip.Layers = decorations.OverlaysIn(start, end)
	}
	if err := v.Clipboard.Set(text); err != nil {
		return FormattedClip{}, err
	}
	return clip, nil
}

// Paste inserts the clipboard's content at every cursor, as one bulk
// group (line-ending normalization happens inside buffer.Buffer.Insert,
// which rewrites the pasted text's terminators to the buffer's own
// convention before it ever reaches the piece table).
func (v *View) Paste() error {
	text, err := v.Clipboard.Get()
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	return v.Type(text)
}

func (v *View) primarySelectionOrWholeLine() (string, error) {
	primary := v.Cursors.Primary()
	if !primary.Selection.IsEmpty() {
		return v.Buffer.Read(primary.Selection.Start(), primary.Selection.End())
	}
	line, _, err := v.Buffer.LineOf(primary.Selection.Head)
	if err != nil {
		return "", err
	}
	start, end, err := v.wholeLineRange(line)
	if err != nil {
		return "", err
	}
	return v.Buffer.Read(start, end)
}

// wholeLineRange returns [start, end) for line, including its trailing
// line terminator if one exists (spec 4.E: "trailing newline preserved").
func (v *View) wholeLineRange(line int64) (buffer.ByteOffset, buffer.ByteOffset, error) {
	start, err := v.Buffer.ByteOfLine(line)
	if err != nil {
		return 0, 0, err
	}
	end := v.Buffer.Len()
	if next, err := v.Buffer.ByteOfLine(line + 1); err == nil {
		end = next
	}
	return start, end, nil
}

func (v *View) deleteRange(start, end buffer.ByteOffset) error {
	return v.Log.Append(newSingleDelete(start, end), v.Buffer, v.Markers, v.cursorSink())
}

// normalizePastedNewlines mirrors buffer.Buffer's own terminator rewrite
// for callers that need a preview of pasted text before it reaches the
// buffer (e.g. a status-line character count); the buffer always
// re-normalizes on Insert regardless; this is read-only convenience.
func normalizePastedNewlines(s string, target buffer.LineEnding) string {
	replaced := strings.ReplaceAll(s, "\r\n", "\n")
	replaced = strings.ReplaceAll(replaced, "\r", "\n")
	if target == buffer.LineEndingLF {
		return replaced
	}
	return strings.ReplaceAll(replaced, "\n", target.Sequence())
}

package buffer

import "fmt"

// Edit specifies a range to replace and the replacement text; an empty
// range is a pure insert, empty NewText a pure delete.
type Edit struct {
	Range   Range
	NewText string
}

// NewEdit builds an Edit.
func NewEdit(r Range, newText string) Edit { return Edit{Range: r, NewText: newText} }

// NewInsert builds an Edit that inserts text at offset.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewText: text}
}

// NewDelete builds an Edit that deletes [start, end).
func NewDelete(start, end ByteOffset) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// IsInsert reports whether this is a pure insertion.
func (e Edit) IsInsert() bool { return e.Range.IsEmpty() && e.NewText != "" }

// IsDelete reports whether this is a pure deletion.
func (e Edit) IsDelete() bool { return !e.Range.IsEmpty() && e.NewText == "" }

// IsReplace reports whether this replaces existing text with new text.
func (e Edit) IsReplace() bool { return !e.Range.IsEmpty() && e.NewText != "" }

// IsNoOp reports whether this edit changes nothing.
func (e Edit) IsNoOp() bool { return e.Range.IsEmpty() && e.NewText == "" }

// Delta returns the change in buffer length this edit causes.
func (e Edit) Delta() ByteOffset { return ByteOffset(len(e.NewText)) - e.Range.Len() }

// EditResult reports what actually happened when an edit was applied.
type EditResult struct {
	OldRange Range
	NewRange Range
	OldText  string
	Delta    int64
}

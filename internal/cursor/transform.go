package cursor

// Transform helpers recompute cursor/selection positions after a buffer
// edit. They mirror internal/marker's adjust_for_edit semantics exactly
// (a marker and a cursor both need "shift after an insert, clamp after a
// delete" logic) so a cursor tracked outside the marker tree still lands
// on the same offset a marker anchored there would.
//
// Grounded on the teacher's internal/engine/cursor/transform.go
// (TransformOffset/TransformOffsetSticky/TransformSelection and friends),
// adapted onto buffer.ByteOffset and this package's Affinity-free
// Selection (affinity here is expressed via the sticky variant's bool
// rather than a stored field, since cursors are transformed immediately
// after the edit that created them, not stored pre-affinity like markers).

// TransformOffset adjusts a single offset for an edit that replaced
// [editStart, editEnd) with newLen bytes. An offset inside the replaced
// range collapses to editStart (the replaced region no longer exists).
func TransformOffset(offset, editStart, editEnd ByteOffset, newLen ByteOffset) ByteOffset {
	switch {
	case offset < editStart:
		return offset
	case offset >= editEnd:
		return offset + (newLen - (editEnd - editStart))
	default:
		return editStart
	}
}

// TransformOffsetSticky is TransformOffset for a point offset exactly at
// editStart during a pure insertion (editStart == editEnd): stickyRight
// true moves the offset past the inserted text (AffinityRight), false
// keeps it pinned before it (AffinityLeft).
func TransformOffsetSticky(offset, editStart, editEnd, newLen ByteOffset, stickyRight bool) ByteOffset {
	if editStart == editEnd && offset == editStart {
		if stickyRight {
			return offset + newLen
		}
		return offset
	}
	return TransformOffset(offset, editStart, editEnd, newLen)
}

// TransformSelection adjusts both endpoints of sel for an edit, using
// stickyRight for the head (since the head is where typing happens and
// conventionally tracks forward) and a pinned-left anchor.
func TransformSelection(sel Selection, editStart, editEnd, newLen ByteOffset) Selection {
	return Selection{
		Anchor: TransformOffsetSticky(sel.Anchor, editStart, editEnd, newLen, false),
		Head:   TransformOffsetSticky(sel.Head, editStart, editEnd, newLen, true),
	}
}

// TransformSet applies TransformSelection to every cursor in s for one
// edit, then deduplicates coincident survivors.
func TransformSet(s *Set, editStart, editEnd, newLen ByteOffset) {
	s.MapInPlace(func(e Entry) Selection {
		return TransformSelection(e.Selection, editStart, editEnd, newLen)
	})
	s.Dedup()
}

// EditDelta is the byte-length change of an edit (newLen - replacedLen).
func EditDelta(editStart, editEnd, newLen ByteOffset) ByteOffset {
	return newLen - (editEnd - editStart)
}

package editorstate

import "github.com/fresh-editor/fresh/internal/buffer"

// Snapshot is an immutable, per-frame view published for plugin ops: even
// if a plugin suspends mid-frame and resumes later, it sees the one
// coherent frame it started with rather than live, possibly-torn state.
type Snapshot struct {
	BufferIDs    []buffer.BufferID
	ActiveBuffer buffer.BufferID
	Cursors      []CursorSnapshot
	Metadata     map[buffer.BufferID]BufferMetadata
}

// CursorSnapshot is one cursor's position at the moment of the snapshot.
type CursorSnapshot struct {
	ID        int
	Anchor    buffer.ByteOffset
	Head      buffer.ByteOffset
	IsPrimary bool
}

// BufferMetadata is the per-buffer info plugins see in a snapshot: enough
// to identify and describe a buffer without handing out a live *Buffer.
type BufferMetadata struct {
	ID         buffer.BufferID
	Len        buffer.ByteOffset
	LineCount  int64
	LineEnding buffer.LineEnding
	Revision   buffer.RevisionID
}

// Capture builds a Snapshot of v for the current frame. activeID and
// metadata describe the full set of open buffers, since a View only owns
// one; the session/app layer supplies those from its buffer registry.
func (v *View) Capture(activeID buffer.BufferID, bufferIDs []buffer.BufferID, metadata map[buffer.BufferID]BufferMetadata) Snapshot {
	primary := v.Cursors.Primary()
	entries := v.Cursors.All()
	cursors := make([]CursorSnapshot, len(entries))
	for i, e := range entries {
		cursors[i] = CursorSnapshot{
			ID:        e.ID,
			Anchor:    e.Selection.Anchor,
			Head:      e.Selection.Head,
			IsPrimary: e.ID == primary.ID,
		}
	}
	return Snapshot{
		BufferIDs:    bufferIDs,
		ActiveBuffer: activeID,
		Cursors:      cursors,
		Metadata:     metadata,
	}
}

// MetadataFor builds this view's own BufferMetadata entry, a convenience
// for callers assembling the metadata map passed to Capture.
func (v *View) MetadataFor() BufferMetadata {
	return BufferMetadata{
		ID:         v.Buffer.ID(),
		Len:        v.Buffer.Len(),
		LineCount:  v.Buffer.LineCount(),
		LineEnding: v.Buffer.LineEnding(),
		Revision:   v.Buffer.RevisionID(),
	}
}

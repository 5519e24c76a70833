package cursor

import (
	"sort"

	"github.com/fresh-editor/fresh/internal/eventlog"
)

// ID identifies a cursor within a Set for its lifetime. Aliased to int so
// *Set satisfies eventlog.CursorSink directly.
type ID = int

// Entry is one cursor in a Set: a stable ID plus its current selection.
type Entry struct {
	ID        ID
	Selection Selection
}

// Set is the multi-cursor state for one view onto a buffer: an ordered set
// of selections, each with a stable ID, one of which is designated primary.
//
// Grounded on the teacher's internal/engine/cursor.CursorSet, generalized
// with per-entry IDs: the teacher's set merges purely by slice position and
// has no concept of cursor identity surviving an edit, but spec 4.D's
// AddCursor/RemoveCursor/MoveCursor events (internal/eventlog) need a
// stable integer handle per cursor so an undo can put the right cursor
// back. *Set implements eventlog.CursorSink directly via that ID.
type Set struct {
	entries []Entry
	primary ID
	nextID  ID
}

// NewSet returns a Set with a single primary cursor at offset.
func NewSet(offset ByteOffset) *Set {
	s := &Set{}
	id := s.allocID()
	s.entries = []Entry{{ID: id, Selection: NewCursorSelection(offset)}}
	s.primary = id
	return s
}

func (s *Set) allocID() ID {
	s.nextID++
	return s.nextID
}

// Count returns the number of cursors in the set.
func (s *Set) Count() int { return len(s.entries) }

// IsMulti reports whether the set has more than one cursor.
func (s *Set) IsMulti() bool { return len(s.entries) > 1 }

// All returns a copy of every entry, ordered by ascending selection start.
func (s *Set) All() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Primary returns the primary cursor's entry. Panics if the set is empty,
// matching the invariant that a Set always has at least one cursor.
func (s *Set) Primary() Entry {
	for _, e := range s.entries {
		if e.ID == s.primary {
			return e
		}
	}
	return s.entries[0]
}

func (s *Set) indexOf(id ID) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// GetEntry returns the entry with id. Named distinctly from the
// eventlog.CursorSink Get below: ID is an alias for int, so the two would
// otherwise collide as the same method signature on the same receiver.
func (s *Set) GetEntry(id ID) (Entry, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Add inserts a new cursor at sel and returns its ID. It does not become
// primary.
func (s *Set) Add(sel Selection) ID {
	id := s.allocID()
	s.entries = append(s.entries, Entry{ID: id, Selection: sel})
	s.sort()
	return id
}

// Remove deletes the cursor with id. If it was primary, the entry with the
// smallest start becomes primary. Removing the last cursor leaves the Set
// empty; this method has no guard against that (callers that need at
// least one cursor check Count first).
func (s *Set) Remove(id ID) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	if s.primary == id && len(s.entries) > 0 {
		s.primary = s.entries[0].ID
	}
}

// SetPrimary designates id as primary. No-op if id is not present.
func (s *Set) SetPrimary(id ID) {
	if s.indexOf(id) >= 0 {
		s.primary = id
	}
}

// Move replaces the selection of the cursor with id.
func (s *Set) Move(id ID, sel Selection) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.entries[i].Selection = sel
	s.sort()
}

// ForEach calls fn for every entry in ascending-start order.
func (s *Set) ForEach(fn func(Entry)) {
	for _, e := range s.entries {
		fn(e)
	}
}

// MapInPlace replaces every entry's selection with fn's result.
func (s *Set) MapInPlace(fn func(Entry) Selection) {
	for i := range s.entries {
		s.entries[i].Selection = fn(s.entries[i])
	}
	s.sort()
}

// HasSelection reports whether any cursor has a non-empty selection.
func (s *Set) HasSelection() bool {
	for _, e := range s.entries {
		if !e.Selection.IsEmpty() {
			return true
		}
	}
	return false
}

// CollapseAll collapses every selection to its head, keeping IDs intact.
func (s *Set) CollapseAll() {
	for i := range s.entries {
		s.entries[i].Selection = s.entries[i].Selection.Collapse()
	}
}

// Clamp clips every selection to [0, maxOffset].
func (s *Set) Clamp(maxOffset ByteOffset) {
	for i := range s.entries {
		s.entries[i].Selection = s.entries[i].Selection.Clamp(maxOffset)
	}
}

func (s *Set) sort() {
	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].Selection.Start() < s.entries[j].Selection.Start()
	})
}

// Dedup merges cursors whose anchor and head both coincide after an edit,
// keeping exactly one survivor per coincident group. This is narrower than
// the teacher's normalize() (which merges on any overlap or touch): spec
// 4.E only calls for merging cursors that landed on the exact same
// position, not ones that merely now overlap. The primary designation
// survives if the primary was one of the merged entries.
func (s *Set) Dedup() {
	if len(s.entries) < 2 {
		return
	}
	s.sort()
	groups := make(map[Selection][]Entry, len(s.entries))
	order := make([]Selection, 0, len(s.entries))
	for _, e := range s.entries {
		if _, seen := groups[e.Selection]; !seen {
			order = append(order, e.Selection)
		}
		groups[e.Selection] = append(groups[e.Selection], e)
	}
	if len(order) == len(s.entries) {
		return // nothing to merge
	}

	merged := make([]Entry, 0, len(order))
	newPrimary := s.primary
	for _, key := range order {
		group := groups[key]
		survivor := group[0]
		for _, e := range group {
			if e.ID == s.primary {
				survivor = e
				newPrimary = e.ID
				break
			}
		}
		merged = append(merged, survivor)
	}
	s.entries = merged
	s.primary = newPrimary
	s.sort()
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	out := &Set{
		entries: make([]Entry, len(s.entries)),
		primary: s.primary,
		nextID:  s.nextID,
	}
	copy(out.entries, s.entries)
	return out
}

// The eventlog.CursorSink implementation below lets *Set be driven
// directly by internal/eventlog's AddCursor/RemoveCursor/MoveCursor
// events, with no adapter glue, since ID is an alias for int.

var _ eventlog.CursorSink = (*Set)(nil)

func toSelection(pos eventlog.CursorPos) Selection {
	return Selection{Anchor: pos.Anchor, Head: pos.Head}
}

func toCursorPos(id ID, sel Selection) eventlog.CursorPos {
	return eventlog.CursorPos{ID: id, Anchor: sel.Anchor, Head: sel.Head}
}

// Get implements eventlog.CursorSink.
func (s *Set) Get(id int) (eventlog.CursorPos, bool) {
	e, ok := s.get(id)
	if !ok {
		return eventlog.CursorPos{}, false
	}
	return toCursorPos(e.ID, e.Selection), true
}

func (s *Set) get(id ID) (Entry, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	return s.entries[i], true
}

// AddCursor implements eventlog.CursorSink. Unlike Add, it honors the
// incoming ID (so undo/redo restores the exact same cursor identity) and
// bumps nextID past it to avoid future collisions.
func (s *Set) AddCursor(pos eventlog.CursorPos) {
	if pos.ID >= s.nextID {
		s.nextID = pos.ID
	}
	s.entries = append(s.entries, Entry{ID: pos.ID, Selection: toSelection(pos)})
	s.sort()
}

// RemoveCursor implements eventlog.CursorSink.
func (s *Set) RemoveCursor(id int) { s.Remove(id) }

// MoveCursor implements eventlog.CursorSink.
func (s *Set) MoveCursor(id int, pos eventlog.CursorPos) { s.Move(id, toSelection(pos)) }

package eventlog

import (
	"errors"
	"sync"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/marker"
)

// ErrNothingToUndo is returned by Undo when the undo stack is empty.
var ErrNothingToUndo = errors.New("eventlog: nothing to undo")

// ErrNothingToRedo is returned by Redo when the redo stack is empty.
var ErrNothingToRedo = errors.New("eventlog: nothing to redo")

// Log is the authoritative, replayable history of mutations to one buffer.
// Retention is bounded by group count: exceeding it drops the oldest group
// wholesale, never mid-group.
type Log struct {
	mu sync.Mutex

	undo []Event
	redo []Event

	grouping      bool
	groupLabel    string
	groupChildren []Event

	maxGroups int
}

// New returns a log retaining at most maxGroups undo groups (individual
// events and BulkEdits both count as one group). maxGroups <= 0 means 1000.
func New(maxGroups int) *Log {
	if maxGroups <= 0 {
		maxGroups = 1000
	}
	return &Log{maxGroups: maxGroups}
}

// Append applies ev and records it for undo. If grouping is active (inside
// BeginGroup/EndGroup), ev becomes one child of the group's eventual
// BulkEdit instead of its own top-level entry.
func (l *Log) Append(ev Event, buf *buffer.Buffer, markers *marker.Tree, cursors CursorSink) error {
	if err := ev.Apply(buf, markers, cursors); err != nil {
		return err
	}
	l.push(ev)
	return nil
}

func (l *Log) push(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.grouping {
		l.groupChildren = append(l.groupChildren, ev)
		return
	}
	l.pushLocked(ev)
}

func (l *Log) pushLocked(ev Event) {
	l.undo = append(l.undo, ev)
	l.redo = nil
	if len(l.undo) > l.maxGroups {
		excess := len(l.undo) - l.maxGroups
		l.undo = l.undo[excess:]
	}
}

// BeginGroup starts collecting subsequently-appended events into a single
// undo group. Nested calls (while already grouping) are ignored, matching
// the teacher's history package.
func (l *Log) BeginGroup(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.grouping {
		return
	}
	l.grouping = true
	l.groupLabel = label
	l.groupChildren = nil
}

// EndGroup closes the current group, folding every event appended since
// BeginGroup into one BulkEdit entry. A group with no children is dropped
// silently.
func (l *Log) EndGroup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.grouping {
		return
	}
	l.grouping = false
	if len(l.groupChildren) == 0 {
		l.groupChildren = nil
		return
	}
	if len(l.groupChildren) == 1 {
		l.pushLocked(l.groupChildren[0])
		l.groupChildren = nil
		return
	}
	bulk := &BulkEdit{Label: l.groupLabel, Children: l.groupChildren}
	l.pushLocked(bulk)
	l.groupChildren = nil
}

// CancelGroup abandons the current group without recording it. Events
// already applied to the buffer are NOT rolled back; callers that need
// that must invert them explicitly before cancelling.
func (l *Log) CancelGroup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.grouping = false
	l.groupChildren = nil
}

// IsGrouping reports whether a group is currently open.
func (l *Log) IsGrouping() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.grouping
}

// Transaction runs fn inside a named group, cancelling the group if fn
// returns an error.
func (l *Log) Transaction(label string, fn func() error) error {
	l.BeginGroup(label)
	if err := fn(); err != nil {
		l.CancelGroup()
		return err
	}
	l.EndGroup()
	return nil
}

// Undo inverts and applies the most recent undo entry, moving it to the
// redo stack.
func (l *Log) Undo(buf *buffer.Buffer, markers *marker.Tree, cursors CursorSink) error {
	l.mu.Lock()
	if len(l.undo) == 0 {
		l.mu.Unlock()
		return ErrNothingToUndo
	}
	ev := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.mu.Unlock()

	inv := ev.Invert()
	if err := inv.Apply(buf, markers, cursors); err != nil {
		l.mu.Lock()
		l.undo = append(l.undo, ev)
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	l.redo = append(l.redo, ev)
	l.mu.Unlock()
	return nil
}

// Redo re-applies the most recently undone entry, moving it back to the
// undo stack. Any new Append truncates the redo stack (see pushLocked).
func (l *Log) Redo(buf *buffer.Buffer, markers *marker.Tree, cursors CursorSink) error {
	l.mu.Lock()
	if len(l.redo) == 0 {
		l.mu.Unlock()
		return ErrNothingToRedo
	}
	ev := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.mu.Unlock()

	if err := ev.Apply(buf, markers, cursors); err != nil {
		l.mu.Lock()
		l.redo = append(l.redo, ev)
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	l.undo = append(l.undo, ev)
	l.mu.Unlock()
	return nil
}

func (l *Log) CanUndo() bool { l.mu.Lock(); defer l.mu.Unlock(); return len(l.undo) > 0 }
func (l *Log) CanRedo() bool { l.mu.Lock(); defer l.mu.Unlock(); return len(l.redo) > 0 }

func (l *Log) UndoCount() int { l.mu.Lock(); defer l.mu.Unlock(); return len(l.undo) }
func (l *Log) RedoCount() int { l.mu.Lock(); defer l.mu.Unlock(); return len(l.redo) }

// Clear discards all undo/redo history without touching the buffer.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = nil
	l.redo = nil
	l.grouping = false
	l.groupChildren = nil
}

// Descriptions returns the undo stack's labels, oldest first, for an undo
// history UI.
func (l *Log) Descriptions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.undo))
	for i, ev := range l.undo {
		out[i] = ev.Description()
	}
	return out
}

// Checkpoint marks a position in the undo stack to later unwind to.
type Checkpoint struct {
	depth int
}

// CreateCheckpoint captures the current undo depth.
func (l *Log) CreateCheckpoint() Checkpoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Checkpoint{depth: len(l.undo)}
}

// UndoToCheckpoint undoes entries until the undo stack is back at cp's
// depth.
func (l *Log) UndoToCheckpoint(cp Checkpoint, buf *buffer.Buffer, markers *marker.Tree, cursors CursorSink) error {
	for l.UndoCount() > cp.depth {
		if err := l.Undo(buf, markers, cursors); err != nil {
			return err
		}
	}
	return nil
}

// Package marker implements the marker tree: a balanced, augmented binary
// search tree of stable-position anchors (cursors, selections, decoration
// bounds, LSP range mirrors) that survive edits without being individually
// rewritten on every keystroke.
//
// Nodes are keyed by (start, id) and carry a max_end augmentation for
// range-overlap queries, plus a lazy delta used to apply an edit's shift to
// an entire subtree in O(log n) rather than visiting every marker it
// contains. The shape is the teacher's persistent split/concat piece tree
// (internal/buffer) generalized into a self-balancing BST: same "push
// pending work down before you read structure" discipline, applied here to
// position deltas instead of byte ranges.
package marker

import (
	"fmt"
	"sync/atomic"
)

// ID stably identifies a marker for the lifetime of the buffer it belongs
// to. IDs are never reused.
type ID uint64

func (id ID) String() string { return fmt.Sprintf("marker#%d", id) }

var idCounter uint64

func newID() ID {
	return ID(atomic.AddUint64(&idCounter, 1))
}

// Affinity decides which side of an insertion at a marker's exact start
// offset the marker sticks to.
type Affinity uint8

const (
	// AffinityLeft keeps the marker before text inserted at its start
	// offset (the marker does not move).
	AffinityLeft Affinity = iota
	// AffinityRight moves the marker after text inserted at its start
	// offset (the marker shifts with the insertion).
	AffinityRight
)

func (a Affinity) String() string {
	if a == AffinityRight {
		return "right"
	}
	return "left"
}

// Marker is a snapshot of one anchor's current state, returned by queries;
// mutating it has no effect on the tree.
type Marker struct {
	ID       ID
	Start    int64
	End      int64
	Affinity Affinity
}

func (m Marker) IsPoint() bool { return m.Start == m.End }

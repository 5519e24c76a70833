package marker

import "sort"

// Tree is a balanced, augmented BST of markers anchored to byte offsets in
// one buffer. It is not safe for concurrent use; callers serialize access
// the same way they serialize buffer mutation (spec 5: markers are owned by
// the editor state that owns their buffer).
type Tree struct {
	root  *node
	nodes map[ID]*node
}

// New returns an empty marker tree.
func New() *Tree {
	return &Tree{nodes: make(map[ID]*node)}
}

// Len reports how many live markers the tree holds.
func (t *Tree) Len() int { return len(t.nodes) }

// Create adds a new marker at [start, end] with the given affinity and
// returns its id.
func (t *Tree) Create(start, end int64, affinity Affinity) ID {
	id := newID()
	n := &node{id: id, start: start, end: end, affinity: affinity, maxEnd: end, height: 1}
	t.root = insert(t.root, n)
	t.root.parent = nil
	t.nodes[id] = n
	return id
}

// Delete removes a marker. It is a no-op error, not a panic, to delete an
// id that does not exist or was already deleted.
func (t *Tree) Delete(id ID) error {
	n, ok := t.nodes[id]
	if !ok {
		return ErrNotFound
	}
	delete(t.nodes, id)
	resolvePath(n)
	t.root = deleteByKey(t.nodes, t.root, n.start, n.id)
	if t.root != nil {
		t.root.parent = nil
	}
	return nil
}

// PositionOf returns a marker's current [start, end].
func (t *Tree) PositionOf(id ID) (start, end int64, err error) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, 0, ErrNotFound
	}
	resolvePath(n)
	return n.start, n.end, nil
}

// Get returns a snapshot of the marker's full current state.
func (t *Tree) Get(id ID) (Marker, error) {
	n, ok := t.nodes[id]
	if !ok {
		return Marker{}, ErrNotFound
	}
	resolvePath(n)
	return Marker{ID: n.id, Start: n.start, End: n.end, Affinity: n.affinity}, nil
}

// Overlapping returns every marker whose [start, end] overlaps the
// half-open query range [qstart, qend), in ascending (start, id) order.
func (t *Tree) Overlapping(qstart, qend int64) []Marker {
	var out []Marker
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		pushDown(n)
		if n.left != nil && n.left.maxEnd+n.left.lazyDelta >= qstart {
			walk(n.left)
		}
		if n.start < qend && n.end >= qstart {
			out = append(out, Marker{ID: n.id, Start: n.start, End: n.end, Affinity: n.affinity})
		}
		if n.start < qend {
			walk(n.right)
		}
	}
	walk(t.root)
	return out
}

// All returns every live marker in ascending (start, id) order.
func (t *Tree) All() []Marker {
	var out []Marker
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		pushDown(n)
		walk(n.left)
		out = append(out, Marker{ID: n.id, Start: n.start, End: n.end, Affinity: n.affinity})
		walk(n.right)
	}
	walk(t.root)
	return out
}

// AdjustForEdit shifts every marker affected by a text edit of delta bytes
// at byte offset pos (delta > 0 for an insertion of that many bytes,
// delta < 0 for a deletion of |delta| bytes starting at pos).
//
// Insertion writes directly only to markers on the search path to pos,
// markers starting exactly at pos, and ranges that start before pos and
// reach it (found through maxEnd); every subtree wholly after pos inherits
// the shift as one lazy delta on its root. Markers ending before pos keep
// their offsets. Deletion gets no such shortcut — clamping a marker
// into a collapsed range is not a uniform shift, so every marker is
// visited, then the tree is rebuilt in (start, id) order. This also
// restores correct relative order when several distinct-start markers
// collapse onto the same clamped position.
func (t *Tree) AdjustForEdit(pos int64, delta int64) {
	if delta == 0 || t.root == nil {
		return
	}
	if delta > 0 {
		t.root = adjustInsert(t.root, pos, delta)
		t.root.parent = nil
		return
	}
	var all []*node
	collectClamped(t.root, pos, delta, &all)
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	t.root = buildBalanced(all, 0, len(all))
	if t.root != nil {
		t.root.parent = nil
	}
}

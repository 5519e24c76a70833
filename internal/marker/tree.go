package marker

// node is one marker in the tree. start/end/maxEnd are stored relative to
// this node's own lazyDelta: the true current value is always
// field+lazyDelta. lazyDelta only ever grows by an ancestor's push_down
// merging its own pending delta in; it is never assigned to directly once a
// node has been linked into the tree, which keeps that invariant sound
// without having to touch every node on every shift.
type node struct {
	id       ID
	start    int64
	end      int64
	affinity Affinity

	lazyDelta int64
	maxEnd    int64
	height    int8

	left, right, parent *node
}

func height(n *node) int8 {
	if n == nil {
		return 0
	}
	return n.height
}

func updateHeight(n *node) {
	l, r := height(n.left), height(n.right)
	if l > r {
		n.height = l + 1
	} else {
		n.height = r + 1
	}
}

func balanceFactor(n *node) int {
	return int(height(n.left)) - int(height(n.right))
}

// pushDown applies n's pending delta to itself and merges it into both
// children's pending deltas, leaving n caught up to "true" coordinates.
// Every read that needs structural truth out of n (a key comparison, a
// rotation, an overlap check) calls this first.
func pushDown(n *node) {
	if n == nil || n.lazyDelta == 0 {
		return
	}
	d := n.lazyDelta
	n.start += d
	n.end += d
	if n.left != nil {
		n.left.lazyDelta += d
	}
	if n.right != nil {
		n.right.lazyDelta += d
	}
	n.lazyDelta = 0
}

// recomputeMaxEnd refreshes n.maxEnd from its children. Only valid to call
// when n.lazyDelta == 0 (i.e. right after pushDown(n), or on a freshly
// built node) — see the node-level invariant comment above.
func recomputeMaxEnd(n *node) {
	me := n.end
	if n.left != nil {
		if v := n.left.maxEnd + n.left.lazyDelta; v > me {
			me = v
		}
	}
	if n.right != nil {
		if v := n.right.maxEnd + n.right.lazyDelta; v > me {
			me = v
		}
	}
	n.maxEnd = me
}

func less(a, b *node) bool {
	if a.start != b.start {
		return a.start < b.start
	}
	return a.id < b.id
}

func rotateRight(n *node) *node {
	pushDown(n)
	l := n.left
	pushDown(l)

	n.left = l.right
	if l.right != nil {
		l.right.parent = n
	}
	l.right = n
	l.parent = n.parent
	n.parent = l

	updateHeight(n)
	recomputeMaxEnd(n)
	updateHeight(l)
	recomputeMaxEnd(l)
	return l
}

func rotateLeft(n *node) *node {
	pushDown(n)
	r := n.right
	pushDown(r)

	n.right = r.left
	if r.left != nil {
		r.left.parent = n
	}
	r.left = n
	r.parent = n.parent
	n.parent = r

	updateHeight(n)
	recomputeMaxEnd(n)
	updateHeight(r)
	recomputeMaxEnd(r)
	return r
}

// rebalance restores the AVL property at n, which must already have correct
// height/maxEnd for its current children. Returns the new subtree root.
func rebalance(n *node) *node {
	bf := balanceFactor(n)
	if bf > 1 {
		pushDown(n.left)
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
			n.left.parent = n
		}
		return rotateRight(n)
	}
	if bf < -1 {
		pushDown(n.right)
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
			n.right.parent = n
		}
		return rotateLeft(n)
	}
	return n
}

// insert places leaf (a freshly allocated, childless node with
// lazyDelta == 0) into the subtree rooted at cur and returns the new
// subtree root.
func insert(cur, leaf *node) *node {
	if cur == nil {
		return leaf
	}
	pushDown(cur)
	if less(leaf, cur) {
		cur.left = insert(cur.left, leaf)
		cur.left.parent = cur
	} else {
		cur.right = insert(cur.right, leaf)
		cur.right.parent = cur
	}
	updateHeight(cur)
	recomputeMaxEnd(cur)
	return rebalance(cur)
}

// leftmost pushes down along the left spine of n and returns the leftmost
// (smallest-keyed) descendant, fully resolved to true coordinates.
func leftmost(n *node) *node {
	pushDown(n)
	for n.left != nil {
		pushDown(n.left)
		n = n.left
	}
	return n
}

// deleteByKey removes the node matching (start, id) — which must already be
// resolved to true coordinates on the caller's side via resolvePath — from
// the subtree rooted at cur, updates the nodes-by-id map when a successor's
// identity is folded into another node, and returns the new subtree root.
func deleteByKey(nodes map[ID]*node, cur *node, start int64, id ID) *node {
	if cur == nil {
		return nil
	}
	pushDown(cur)
	switch {
	case start < cur.start || (start == cur.start && id < cur.id):
		cur.left = deleteByKey(nodes, cur.left, start, id)
		if cur.left != nil {
			cur.left.parent = cur
		}
	case start > cur.start || (start == cur.start && id > cur.id):
		cur.right = deleteByKey(nodes, cur.right, start, id)
		if cur.right != nil {
			cur.right.parent = cur
		}
	default:
		switch {
		case cur.left == nil:
			r := cur.right
			if r != nil {
				r.parent = cur.parent
			}
			return r
		case cur.right == nil:
			l := cur.left
			if l != nil {
				l.parent = cur.parent
			}
			return l
		default:
			succ := leftmost(cur.right)
			cur.id, cur.start, cur.end, cur.affinity = succ.id, succ.start, succ.end, succ.affinity
			nodes[succ.id] = cur
			cur.right = deleteByKey(nodes, cur.right, succ.start, succ.id)
			if cur.right != nil {
				cur.right.parent = cur
			}
		}
	}
	updateHeight(cur)
	recomputeMaxEnd(cur)
	return rebalance(cur)
}

// adjustInsert applies an insertion of length delta at pos across the
// subtree rooted at n, in place, without restructuring: a marker that
// shifts (wholly after pos, or exactly at pos with AffinityRight) moves by
// delta; when it starts strictly after pos it hands its right subtree the
// same shift as one lazy delta instead of visiting it, and when it starts
// exactly at pos its right subtree is visited. A marker that does not
// shift only has its end extended when it is a non-point range straddling
// pos; its left subtree is visited when its maxEnd reaches pos. Returns n
// (the insert never changes tree shape).
func adjustInsert(n *node, pos int64, delta int64) *node {
	if n == nil {
		return nil
	}
	pushDown(n)
	shifts := n.start > pos || (n.start == pos && n.affinity == AffinityRight)
	if shifts {
		n.start += delta
		n.end += delta
		if n.start-delta > pos {
			if n.right != nil {
				n.right.lazyDelta += delta
			}
		} else {
			n.right = adjustInsert(n.right, pos, delta)
			if n.right != nil {
				n.right.parent = n
			}
		}
		n.left = adjustInsert(n.left, pos, delta)
		if n.left != nil {
			n.left.parent = n
		}
	} else {
		if n.start != n.end && n.end >= pos {
			n.end += delta
		}
		n.right = adjustInsert(n.right, pos, delta)
		if n.right != nil {
			n.right.parent = n
		}
		if n.left != nil && n.left.maxEnd+n.left.lazyDelta >= pos {
			n.left = adjustInsert(n.left, pos, delta)
			n.left.parent = n
		}
	}
	recomputeMaxEnd(n)
	return n
}

// collectClamped visits every node under n (deletion gets no lazy
// shortcut: clamping is not a uniform shift, so every marker must be
// individually checked), clamps it to the post-deletion coordinate space,
// detaches it from the old tree shape, and appends it to out. The caller
// re-sorts and rebuilds a balanced tree from the result.
func collectClamped(n *node, pos int64, delta int64, out *[]*node) {
	if n == nil {
		return
	}
	pushDown(n)
	left, right := n.left, n.right

	clamp := func(v int64) int64 {
		switch {
		case v <= pos:
			return v
		case v+delta >= pos:
			return v + delta
		}
		return pos
	}
	newStart, newEnd := clamp(n.start), clamp(n.end)
	n.start, n.end = newStart, newEnd
	n.left, n.right, n.parent = nil, nil, nil
	n.height = 1
	n.maxEnd = n.end

	*out = append(*out, n)
	collectClamped(left, pos, delta, out)
	collectClamped(right, pos, delta, out)
}

// buildBalanced builds a height-balanced BST from nodes[lo:hi], which must
// already be sorted by (start, id).
func buildBalanced(nodes []*node, lo, hi int) *node {
	if lo >= hi {
		return nil
	}
	mid := (lo + hi) / 2
	n := nodes[mid]
	n.left = buildBalanced(nodes, lo, mid)
	if n.left != nil {
		n.left.parent = n
	}
	n.right = buildBalanced(nodes, mid+1, hi)
	if n.right != nil {
		n.right.parent = n
	}
	updateHeight(n)
	recomputeMaxEnd(n)
	return n
}

// resolvePath pushes down every ancestor of n, from the root, so that by
// the time it reaches n its start/end/lazyDelta are exact.
func resolvePath(n *node) {
	var chain []*node
	for c := n; c != nil; c = c.parent {
		chain = append(chain, c)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	for _, a := range chain {
		pushDown(a)
	}
}

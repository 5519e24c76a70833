package buffer

import "strings"

// pieceNode is a node in the piece table's balanced tree, shaped exactly
// like the rope package's node: leaves hold pieces directly, internal nodes
// hold child summaries for O(log n) seeking. The tree is immutable — every
// mutation returns a new root and leaves prior roots (and any outstanding
// Snapshot) untouched.
type pieceNode struct {
	height  uint8
	summary pieceSummary

	children       []*pieceNode
	childSummaries []pieceSummary

	pieces []piece
}

func newLeaf() *pieceNode {
	return &pieceNode{height: 0, pieces: make([]piece, 0, maxPiecesPerLeaf)}
}

func newLeafWithPieces(pieces []piece) *pieceNode {
	n := &pieceNode{height: 0, pieces: pieces}
	n.recomputeSummary()
	return n
}

func newInternal(children []*pieceNode) *pieceNode {
	if len(children) == 0 {
		return newLeaf()
	}
	height := children[0].height + 1
	summaries := make([]pieceSummary, len(children))
	var total pieceSummary
	for i, c := range children {
		summaries[i] = c.summary
		total = total.Add(c.summary)
	}
	return &pieceNode{height: height, summary: total, children: children, childSummaries: summaries}
}

func (n *pieceNode) IsLeaf() bool     { return n.height == 0 }
func (n *pieceNode) Len() int64       { return n.summary.Bytes }
func (n *pieceNode) LineCount() int64 { return n.summary.Lines + 1 }

func (n *pieceNode) recomputeSummary() {
	if n.IsLeaf() {
		var s pieceSummary
		for _, p := range n.pieces {
			s = s.Add(p.summary)
		}
		n.summary = s
		return
	}
	var s pieceSummary
	n.childSummaries = make([]pieceSummary, len(n.children))
	for i, c := range n.children {
		n.childSummaries[i] = c.summary
		s = s.Add(c.summary)
	}
	n.summary = s
}

func (n *pieceNode) clone() *pieceNode {
	if n.IsLeaf() {
		pieces := make([]piece, len(n.pieces))
		copy(pieces, n.pieces)
		return &pieceNode{height: 0, summary: n.summary, pieces: pieces}
	}
	children := make([]*pieceNode, len(n.children))
	copy(children, n.children)
	summaries := make([]pieceSummary, len(n.childSummaries))
	copy(summaries, n.childSummaries)
	return &pieceNode{height: n.height, summary: n.summary, children: children, childSummaries: summaries}
}

// split splits the subtree at byte offset, left=[0,offset) right=[offset,len).
// term is the buffer's configured line-terminator anchor byte, needed to
// recompute exact line counts for any piece split mid-piece.
func (n *pieceNode) split(offset int64, term byte) (*pieceNode, *pieceNode) {
	if offset <= 0 {
		return newLeaf(), n.clone()
	}
	if offset >= n.Len() {
		return n.clone(), newLeaf()
	}
	if n.IsLeaf() {
		return n.splitLeaf(offset, term)
	}
	return n.splitInternal(offset, term)
}

func (n *pieceNode) splitLeaf(offset int64, term byte) (*pieceNode, *pieceNode) {
	var left, right []piece
	cur := int64(0)
	for _, p := range n.pieces {
		plen := p.length
		switch {
		case cur+plen <= offset:
			left = append(left, p)
		case cur >= offset:
			right = append(right, p)
		default:
			lp, rp := p.split(offset-cur, term)
			if lp.length > 0 {
				left = append(left, lp)
			}
			if rp.length > 0 {
				right = append(right, rp)
			}
		}
		cur += plen
	}
	return newLeafWithPieces(left), newLeafWithPieces(right)
}

func (n *pieceNode) splitInternal(offset int64, term byte) (*pieceNode, *pieceNode) {
	var left, right []*pieceNode
	cur := int64(0)
	for i, c := range n.children {
		clen := n.childSummaries[i].Bytes
		switch {
		case cur+clen <= offset:
			left = append(left, c)
		case cur >= offset:
			right = append(right, c)
		default:
			lc, rc := c.split(offset-cur, term)
			if lc.Len() > 0 {
				left = append(left, lc)
			}
			if rc.Len() > 0 {
				right = append(right, rc)
			}
		}
		cur += clen
	}
	return buildFromChildren(left), buildFromChildren(right)
}

func buildFromChildren(children []*pieceNode) *pieceNode {
	if len(children) == 0 {
		return newLeaf()
	}
	if len(children) == 1 {
		return children[0]
	}
	if len(children) <= maxChildren {
		return newInternal(children)
	}
	var parents []*pieceNode
	for i := 0; i < len(children); i += maxChildren {
		end := i + maxChildren
		if end > len(children) {
			end = len(children)
		}
		parents = append(parents, newInternal(children[i:end]))
	}
	return buildFromChildren(parents)
}

// concat concatenates two subtrees.
func concatNodes(left, right *pieceNode) *pieceNode {
	if left == nil || left.Len() == 0 {
		if right == nil {
			return newLeaf()
		}
		return right
	}
	if right == nil || right.Len() == 0 {
		return left
	}
	if left.IsLeaf() && right.IsLeaf() {
		return concatLeaves(left, right)
	}
	for left.height < right.height {
		left = newInternal([]*pieceNode{left})
	}
	for right.height < left.height {
		right = newInternal([]*pieceNode{right})
	}
	return mergeSameHeight(left, right)
}

func concatLeaves(left, right *pieceNode) *pieceNode {
	total := len(left.pieces) + len(right.pieces)
	if total <= maxPiecesPerLeaf {
		pieces := make([]piece, 0, total)
		pieces = append(pieces, left.pieces...)
		pieces = append(pieces, right.pieces...)
		return newLeafWithPieces(pieces)
	}
	return newInternal([]*pieceNode{left.clone(), right.clone()})
}

func mergeSameHeight(left, right *pieceNode) *pieceNode {
	if left.IsLeaf() {
		return concatLeaves(left, right)
	}
	all := make([]*pieceNode, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)
	if len(all) <= maxChildren {
		return newInternal(all)
	}
	return buildFromChildren(all)
}

// textInRange materializes the text in [start,end); every piece in range
// must already be loaded (callers ensure this via ensureLoaded first).
func (n *pieceNode) textInRange(sb *strings.Builder, start, end int64) {
	if start >= end || start >= n.Len() {
		return
	}
	if end > n.Len() {
		end = n.Len()
	}
	if n.IsLeaf() {
		cur := int64(0)
		for _, p := range n.pieces {
			plen := p.length
			pend := cur + plen
			if pend <= start {
				cur = pend
				continue
			}
			if cur >= end {
				break
			}
			s := int64(0)
			if start > cur {
				s = start - cur
			}
			e := plen
			if end < pend {
				e = end - cur
			}
			sb.WriteString(p.data[s:e])
			cur = pend
		}
		return
	}
	cur := int64(0)
	for i, c := range n.children {
		clen := n.childSummaries[i].Bytes
		cend := cur + clen
		if cend <= start {
			cur = cend
			continue
		}
		if cur >= end {
			break
		}
		cs := int64(0)
		if start > cur {
			cs = start - cur
		}
		ce := clen
		if end < cend {
			ce = end - cur
		}
		c.textInRange(sb, cs, ce)
		cur = cend
	}
}

// flattenPieces appends every leaf piece in this subtree, in order, to out.
func (n *pieceNode) flattenPieces(out *[]piece) {
	if n.IsLeaf() {
		*out = append(*out, n.pieces...)
		return
	}
	for _, c := range n.children {
		c.flattenPieces(out)
	}
}

// buildPieceNode builds a balanced tree from a flat piece list, batching
// maxPiecesPerLeaf pieces per leaf and combining leaves bottom-up, mirroring
// the rope package's buildFromChunks.
func buildPieceNode(pieces []piece) *pieceNode {
	if len(pieces) == 0 {
		return newLeaf()
	}
	var leaves []*pieceNode
	for i := 0; i < len(pieces); i += maxPiecesPerLeaf {
		end := i + maxPiecesPerLeaf
		if end > len(pieces) {
			end = len(pieces)
		}
		chunk := make([]piece, end-i)
		copy(chunk, pieces[i:end])
		leaves = append(leaves, newLeafWithPieces(chunk))
	}
	return buildFromChildren(leaves)
}

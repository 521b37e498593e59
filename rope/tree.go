// Package rope implements the content-indexed B-tree at the core of the
// engine's materialized document: bounded-fanout leaves holding RLE text
// spans, internal nodes caching a pluggable Metric's value per child, a
// forward leaf-chain pointer for sequential scans, and cursor-based
// navigation and splicing (spec §4.3).
package rope

import (
	"sync"

	"github.com/cshekharsharma/causalcrdt/rle"
)

// Tree is the content-indexed B-tree. It is safe for concurrent read-only
// navigation but at most one mutating Cursor may exist at a time — a
// second mutation invalidates any cursor obtained before it (spec §4.3,
// §5).
type Tree struct {
	mu     sync.RWMutex
	metric Metric
	nodes  []*node
	root   nodeId
	first  nodeId // first leaf in the chain
}

// NewTree returns an empty tree indexed by metric.
func NewTree(metric Metric) *Tree {
	t := &Tree{metric: metric}
	root := t.allocLeaf(noNode)
	t.root = root
	t.first = root
	return t
}

func (t *Tree) allocLeaf(parent nodeId) nodeId {
	n := &node{kind: leafKind, parent: parent, next: noNode}
	t.nodes = append(t.nodes, n)
	return nodeId(len(t.nodes) - 1)
}

func (t *Tree) allocInternal(parent nodeId) nodeId {
	n := &node{kind: internalKind, parent: parent}
	t.nodes = append(t.nodes, n)
	return nodeId(len(t.nodes) - 1)
}

func (t *Tree) at(id nodeId) *node { return t.nodes[id] }

// Len returns the total metric value over the whole tree.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.subtreeTotal(t.root)
}

func (t *Tree) subtreeTotal(id nodeId) int {
	n := t.at(id)
	if n.kind == leafKind {
		total := 0
		for i := 0; i < n.numEntries; i++ {
			total += t.metric.Of(n.entries[i])
		}
		return total
	}
	total := 0
	for i := 0; i < n.numChildren; i++ {
		total += n.childMetric[i]
	}
	return total
}

// Render walks the leaf chain from the start of the document and
// concatenates every non-tombstoned Content entry's text — the B-tree
// leaf-chain analog of the teacher's RGA.Value() linked-list walk.
func (t *Tree) Render() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var b []byte
	id := t.first
	for id != noNode {
		n := t.at(id)
		for i := 0; i < n.numEntries; i++ {
			if c, ok := n.entries[i].(*Content); ok && !c.Deleted {
				b = append(b, c.Text...)
			}
		}
		id = n.next
	}
	return string(b)
}

// indexOfChild returns the slot in parent's children array occupied by
// child, by linear scan — InternalCapacity is small (16), so this is
// cheaper in practice than maintaining a back-index.
func (t *Tree) indexOfChild(parent *node, child nodeId) int {
	for i := 0; i < parent.numChildren; i++ {
		if parent.children[i] == child {
			return i
		}
	}
	return -1
}

// flushDelta walks root-ward from leaf, applying delta to every ancestor's
// cached entry (spec §4.3 mutation protocol step 3).
func (t *Tree) flushDelta(leaf nodeId, delta int) {
	if delta == 0 {
		return
	}
	child := leaf
	parent := t.at(leaf).parent
	for parent != noNode {
		p := t.at(parent)
		idx := t.indexOfChild(p, child)
		p.childMetric[idx] += delta
		child = parent
		parent = p.parent
	}
}

// insertChildIntoParent inserts (metric, child) at position idx in
// parent's children array, splitting parent (and cascading upward, even
// creating a new root) if it would overflow InternalCapacity.
func (t *Tree) insertChildIntoParent(parentId nodeId, idx int, metric int, child nodeId) {
	p := t.at(parentId)
	if p.numChildren < InternalCapacity {
		copy(p.children[idx+1:p.numChildren+1], p.children[idx:p.numChildren])
		copy(p.childMetric[idx+1:p.numChildren+1], p.childMetric[idx:p.numChildren])
		p.children[idx] = child
		p.childMetric[idx] = metric
		p.numChildren++
		t.at(child).parent = parentId
		return
	}

	// Overflow: split p into two internal nodes down the middle, then
	// insert the new child into whichever half it belongs in, and link
	// the right half into the grandparent (creating a new root if p was
	// the root).
	mid := InternalCapacity / 2
	rightId := t.allocInternal(p.parent)
	right := t.at(rightId)

	var tmpChildren [InternalCapacity + 1]nodeId
	var tmpMetric [InternalCapacity + 1]int
	copy(tmpChildren[:idx], p.children[:idx])
	tmpChildren[idx] = child
	copy(tmpChildren[idx+1:], p.children[idx:InternalCapacity])
	copy(tmpMetric[:idx], p.childMetric[:idx])
	tmpMetric[idx] = metric
	copy(tmpMetric[idx+1:], p.childMetric[idx:InternalCapacity])

	p.numChildren = mid
	copy(p.children[:mid], tmpChildren[:mid])
	copy(p.childMetric[:mid], tmpMetric[:mid])

	rightCount := InternalCapacity + 1 - mid
	right.numChildren = rightCount
	copy(right.children[:rightCount], tmpChildren[mid:])
	copy(right.childMetric[:rightCount], tmpMetric[mid:])
	for i := 0; i < rightCount; i++ {
		t.at(right.children[i]).parent = rightId
	}

	rightTotal := 0
	for i := 0; i < rightCount; i++ {
		rightTotal += right.childMetric[i]
	}

	if p.parent == noNode {
		newRoot := t.allocInternal(noNode)
		r := t.at(newRoot)
		leftTotal := 0
		for i := 0; i < p.numChildren; i++ {
			leftTotal += p.childMetric[i]
		}
		r.children[0], r.childMetric[0] = parentId, leftTotal
		r.children[1], r.childMetric[1] = rightId, rightTotal
		r.numChildren = 2
		p.parent = newRoot
		right.parent = newRoot
		t.root = newRoot
		return
	}

	grandIdx := t.indexOfChild(t.at(p.parent), parentId)
	t.at(p.parent).childMetric[grandIdx] -= rightTotal
	t.insertChildIntoParent(p.parent, grandIdx+1, rightTotal, rightId)
}

// splitLeaf splits the overflowing leaf at id down the middle, links the
// new right leaf into the chain, and registers it with the parent.
func (t *Tree) splitLeaf(id nodeId) {
	leaf := t.at(id)
	mid := LeafCapacity / 2
	rightId := t.allocLeaf(leaf.parent)
	right := t.at(rightId)

	rightCount := leaf.numEntries - mid
	copy(right.entries[:rightCount], leaf.entries[mid:leaf.numEntries])
	for i := mid; i < leaf.numEntries; i++ {
		leaf.entries[i] = nil
	}
	leaf.numEntries = mid
	right.numEntries = rightCount
	right.next = leaf.next
	leaf.next = rightId

	rightTotal := 0
	for i := 0; i < rightCount; i++ {
		rightTotal += t.metric.Of(right.entries[i])
	}

	if leaf.parent == noNode {
		newRoot := t.allocInternal(noNode)
		r := t.at(newRoot)
		leftTotal := 0
		for i := 0; i < leaf.numEntries; i++ {
			leftTotal += t.metric.Of(leaf.entries[i])
		}
		r.children[0], r.childMetric[0] = id, leftTotal
		r.children[1], r.childMetric[1] = rightId, rightTotal
		r.numChildren = 2
		leaf.parent = newRoot
		right.parent = newRoot
		t.root = newRoot
		return
	}

	parentIdx := t.indexOfChild(t.at(leaf.parent), id)
	t.at(leaf.parent).childMetric[parentIdx] -= rightTotal
	t.insertChildIntoParent(leaf.parent, parentIdx+1, rightTotal, rightId)
}

// insertEntryAt splices span into leaf at array index idx, shifting later
// entries right, and splits the leaf if it would overflow. Returns the
// (possibly different) leaf and index the entry actually landed at, so a
// caller holding a cursor into this leaf can resynchronize after a split.
func (t *Tree) insertEntryAt(leafId nodeId, idx int, span rle.Span) (nodeId, int) {
	leaf := t.at(leafId)
	if leaf.numEntries == LeafCapacity {
		t.splitLeaf(leafId)
		leaf = t.at(leafId)
		if idx > leaf.numEntries {
			idx -= leaf.numEntries
			leafId = leaf.next
			leaf = t.at(leafId)
		}
	}
	copy(leaf.entries[idx+1:leaf.numEntries+1], leaf.entries[idx:leaf.numEntries])
	leaf.entries[idx] = span
	leaf.numEntries++
	t.flushDelta(leafId, t.metric.Of(span))
	return leafId, idx
}

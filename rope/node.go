package rope

import "github.com/cshekharsharma/causalcrdt/rle"

// LeafCapacity and InternalCapacity are the B-tree's fixed fan-out bounds,
// named per SUPPLEMENTED FEATURES (original_source's STATIC_LEAF_LEN /
// STATIC_IE_LEN) so callers constructing a custom Metric can reason about
// split frequency instead of relying on a magic number.
const (
	LeafCapacity     = 16
	InternalCapacity = 16
)

// nodeId indexes into a Tree's node arena. Using dense integer indices
// instead of raw pointers (spec §9 design note (a)) removes the
// self-referential-pointer aliasing the original's intrusive tree needed,
// and makes a node's parent/next-leaf links trivially comparable and
// serializable.
type nodeId int32

const noNode nodeId = -1

type nodeKind uint8

const (
	leafKind nodeKind = iota
	internalKind
)

// node is either a leaf (an array of content spans plus a forward pointer
// into the leaf chain) or an internal node (an array of (cached metric
// value, child) pairs), per spec §3 "B-tree node". Both shapes are folded
// into one struct — trading a little unused memory in each fixed-size
// array for avoiding an extra interface/type-switch indirection on every
// tree walk.
type node struct {
	kind   nodeKind
	parent nodeId

	// Leaf fields.
	entries    [LeafCapacity]rle.Span
	numEntries int
	next       nodeId

	// Internal fields.
	childMetric [InternalCapacity]int
	children    [InternalCapacity]nodeId
	numChildren int
}

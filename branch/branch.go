// Package branch materializes an op-log into a concrete text document: it
// owns a content-indexed B-tree (package rope) and replays transformed
// operations (package xform) against it through the cursor API, using the
// placement collaborator (package placement) to order concurrent edits —
// the full pipeline spec §2's "Data flow" describes end to end.
package branch

import (
	"github.com/cshekharsharma/causalcrdt/causalgraph"
	"github.com/cshekharsharma/causalcrdt/oplog"
	"github.com/cshekharsharma/causalcrdt/placement"
	"github.com/cshekharsharma/causalcrdt/rope"
	"github.com/cshekharsharma/causalcrdt/xform"
)

// Branch is a single materialized view of an OpLog's document at some
// frontier. Multiple branches may observe the same OpLog at different
// frontiers (e.g. one tracking HEAD, one pinned to a review snapshot);
// each owns an independent rope.Tree.
type Branch struct {
	log      *oplog.OpLog
	placer   placement.Placer
	tree     *rope.Tree
	frontier causalgraph.Frontier
}

// New returns a Branch over log, initially empty (frontier = root). Call
// MergeFrontier to bring it up to date.
func New(log *oplog.OpLog, placer placement.Placer) *Branch {
	if placer == nil {
		placer = placement.Sequential{}
	}
	return &Branch{
		log:    log,
		placer: placer,
		tree:   rope.NewTree(rope.VisibleLen{}),
	}
}

// Frontier returns the version this branch currently reflects.
func (b *Branch) Frontier() causalgraph.Frontier { return b.frontier.Clone() }

// Text renders the branch's current visible document.
func (b *Branch) Text() string { return b.tree.Render() }

// MergeFrontier advances the branch from its current frontier to `to`,
// applying exactly the transformed operations spec §4.6's iterator yields
// for that interval, then adopts `to` as the new frontier.
func (b *Branch) MergeFrontier(to causalgraph.Frontier) {
	ops := xform.IterXFOperationsFrom(b.log, b.frontier, to, b.placer)
	for _, xf := range ops {
		b.apply(xf.Op)
	}
	b.frontier = to.Clone()
}

// Update is a convenience for the common case of advancing straight to the
// op-log's current frontier after a local push or a merge.
func (b *Branch) Update() {
	b.MergeFrontier(b.log.Frontier())
}

// apply replays one transformed operation against the tree via the cursor
// API (spec §4.3 mutation protocol). A delete's Fwd flag affects only
// authorship-time RLE splitting (package oplog); applied to the document
// both directions cover the identical byte range [Pos, Pos+Length), so
// apply doesn't need to distinguish them.
func (b *Branch) apply(op *xform.TextOperation) {
	switch op.Kind {
	case oplog.Insert:
		c := b.tree.SeekToOffset(op.Pos)
		c.InsertAt(op.Content)
	case oplog.Delete:
		c := b.tree.SeekToOffset(op.Pos)
		c.MarkDeleted(op.Length)
	}
}

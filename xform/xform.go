// Package xform implements the transformed-operation iterator (spec
// §4.6): it walks an op-log's causal graph between two frontiers and
// yields an equivalent linear sequence of positional text operations, the
// form a branch's content-indexed B-tree actually consumes.
package xform

import (
	"sort"

	"github.com/cshekharsharma/causalcrdt/causalgraph"
	"github.com/cshekharsharma/causalcrdt/oplog"
	"github.com/cshekharsharma/causalcrdt/placement"
)

// TextOperation is the effect of one op-log entry against the materialized
// document: a positional insert or delete, re-expressed from the
// LV-indexed Operation it was transformed from (spec GLOSSARY
// "Transformed operation").
type TextOperation struct {
	Kind    oplog.Kind
	Pos     int
	Length  int
	Fwd     bool
	Content string
}

// XFOp pairs a transformed operation with the LV range of the op-log
// entries it was produced from.
type XFOp struct {
	Range causalgraph.LVRange
	Op    *TextOperation
}

// IterXFOperationsFrom returns the linear sequence of TextOperations that
// carries a document already reflecting `from` forward to reflect `to`
// (spec §4.6: "iter_xf_operations_from(version_from, version_to) — the
// diff between the two version sets drives which CG ranges are visited;
// shared history is skipped").
//
// Within the LVs reachable from `to` but not `from`, ranges are visited in
// causal order: a range whose start is an ancestor of another's start is
// visited first. Whenever two visited ranges are mutually concurrent
// (neither a causal ancestor of the other), whatever positions they touch,
// placement orders them using the deterministic rule spec §5 names — lexicographic
// agent-name tie-break — via the placement.Placer passed in (ordinarily
// placement.Sequential{}), exercised here instead of inside package rope
// because the CG, not the tree, is what exposes a range's authoring
// agent/seq.
func IterXFOperationsFrom(log *oplog.OpLog, from, to causalgraph.Frontier, placer placement.Placer) []XFOp {
	onlyTo, _ := log.CG.Diff(to, from)
	ranges := make([]causalgraph.LVRange, len(onlyTo))
	copy(ranges, onlyTo)
	sortRangesForPlacement(log, ranges, placer)

	var out []XFOp
	for _, r := range ranges {
		out = append(out, splitRange(log, r)...)
	}
	return out
}

// sortRangesForPlacement totally orders ranges consistent with the causal
// graph's partial order: where one range's start is a causal ancestor of
// another's, the ancestor sorts first; where two ranges are mutually
// concurrent, the placer breaks the tie (spec §5: "the transform iterator
// linearizes it by a deterministic rule — lexicographic agent-name
// tie-break on concurrent edits with equal parents"). Each range lies
// within one CG entry (a single agent's contiguous, linear chain), so its Start
// LV is a faithful representative of the whole range's causal position.
func sortRangesForPlacement(log *oplog.OpLog, ranges []causalgraph.LVRange, placer placement.Placer) {
	candidateOf := func(r causalgraph.LVRange) placement.Candidate {
		id, seq, ok := log.CG.Agents.IdentityOf(r.Start)
		if !ok {
			return placement.Candidate{}
		}
		return placement.Candidate{AgentName: log.CG.Agents.NameOf(id), Seq: uint64(seq)}
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		switch log.CG.VersionCmp(ranges[i].Start, ranges[j].Start) {
		case causalgraph.Less:
			return true
		case causalgraph.Greater:
			return false
		default: // Concurrent (Equal is impossible: ranges never share a Start)
			return placer.Less(candidateOf(ranges[i]), candidateOf(ranges[j]))
		}
	})
}

// splitRange walks r against the op-log's RLE-compressed operation table,
// emitting one XFOp per contiguous underlying Operation run (a single
// diff range can span more than one operation run, or only a piece of
// one, since the two tables are independently RLE-merged).
func splitRange(log *oplog.OpLog, r causalgraph.LVRange) []XFOp {
	var out []XFOp
	lv := r.Start
	for lv < r.End {
		op, offset, ok := log.OperationAt(lv)
		if !ok {
			break
		}
		avail := op.Len() - offset
		take := int(r.End - lv)
		if take > avail {
			take = avail
		}
		sliced := op.Slice(offset, take)
		out = append(out, XFOp{
			Range: causalgraph.LVRange{Start: lv, End: lv + causalgraph.LV(take)},
			Op: &TextOperation{
				Kind:    sliced.Kind,
				Pos:     sliced.Pos,
				Length:  sliced.Length,
				Fwd:     sliced.Fwd,
				Content: sliced.Content,
			},
		})
		lv += causalgraph.LV(take)
	}
	return out
}

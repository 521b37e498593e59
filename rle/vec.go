package rle

import "sort"

// Vec is a sorted run-length-encoded vector of spans, keyed by cumulative
// offset. It underlies every ordered collection the engine holds before
// that collection graduates to the content-indexed B-tree (package rope):
// the op-log's operation table is a Vec under the hood (the causal graph
// keeps its entries in a plain slice).
//
// Appends at the tail attempt to fuse with the current last element via
// CanAppend; Push always appends at the current end and does not check
// where the incoming span starts — this module only ever reassembles a Vec in LV
// order (oplog.DecodeAndMerge validates a whole patch before committing
// any of it, so there is no partial/out-of-order state to splice into).
type Vec struct {
	entries []Span
	// start[i] is the cumulative offset at which entries[i] begins.
	start []int
}

// NewVec returns an empty run-length vector.
func NewVec() *Vec {
	return &Vec{}
}

// Len returns the total length covered by all entries.
func (v *Vec) Len() int {
	if len(v.entries) == 0 {
		return 0
	}
	last := len(v.entries) - 1
	return v.start[last] + v.entries[last].Len()
}

// NumEntries returns the number of discrete (non-fused) entries.
func (v *Vec) NumEntries() int { return len(v.entries) }

// Entries returns the underlying entries in order. Callers must not mutate
// the returned slice's spans in a way that changes their Len().
func (v *Vec) Entries() []Span { return v.entries }

// Push appends span to the tail, fusing with the last entry when possible.
// Vec is append-only: span is expected to start exactly at v.Len().
func (v *Vec) Push(span Span) {
	if len(v.entries) > 0 {
		last := v.entries[len(v.entries)-1]
		if last.CanAppend(span) {
			last.Append(span)
			return
		}
	}
	v.start = append(v.start, v.Len())
	v.entries = append(v.entries, span)
}

// entryAt returns the index of the entry covering position pos, and pos's
// offset within that entry. Requires 0 <= pos < v.Len().
func (v *Vec) entryAt(pos int) (idx int, offset int) {
	idx = sort.Search(len(v.start), func(i int) bool {
		return v.start[i] > pos
	}) - 1
	return idx, pos - v.start[idx]
}

// Find returns the entry covering pos and the offset within it.
func (v *Vec) Find(pos int) (entry Span, offsetWithin int, ok bool) {
	if pos < 0 || pos >= v.Len() {
		return nil, 0, false
	}
	idx, off := v.entryAt(pos)
	return v.entries[idx], off, true
}

// Clear empties the vector without shrinking its backing arrays.
func (v *Vec) Clear() {
	v.entries = v.entries[:0]
	v.start = v.start[:0]
}

// Package causalgraph implements the history DAG at the core of the
// engine: dense local versions, run-length-encoded DAG entries, agent/seq
// assignment, and the dominator/diff queries that drive everything built
// on top of it (spec §3, §4.4).
package causalgraph

import (
	"errors"
	"fmt"
	"sort"
)

// LV is a local version: a dense, zero-based integer identifying one
// atomic operation within one replica. LVs are never reused.
type LV int

// Frontier is a sorted, unique, minimal set of LVs whose transitive
// ancestors are exactly the operations observed. The empty frontier is the
// sentinel "root" version.
type Frontier []LV

// Clone returns an independent copy of f.
func (f Frontier) Clone() Frontier {
	out := make(Frontier, len(f))
	copy(out, f)
	return out
}

// Equal reports whether f and other contain the same LVs in the same
// (sorted) order. Frontier equality is dominator-set equality only when
// both sides are already minimal, which every Frontier this package
// produces is by construction.
func (f Frontier) Equal(other Frontier) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// sortedUnique returns a sorted copy of vs with duplicates removed.
func sortedUnique(vs []LV) Frontier {
	out := append(Frontier(nil), vs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	deduped := out[:0]
	for i, v := range out {
		if i == 0 || v != deduped[len(deduped)-1] {
			deduped = append(deduped, v)
		}
	}
	return deduped
}

// Entry is a run-length-encoded segment of the causal graph: a contiguous
// range of local versions produced by a single agent, with the frontier
// that preceded it and its cached shadow.
type Entry struct {
	// Start and End bound the half-open LV range [Start, End) this entry
	// covers.
	Start, End LV
	// Agent is the dense agent id that produced this span.
	Agent AgentId
	// SeqStart is the per-agent sequence number of the first LV in this
	// span (Start maps to SeqStart, Start+1 to SeqStart+1, ...).
	SeqStart uint64
	// Parents is the frontier immediately before Start.
	Parents Frontier
	// Shadow is the smallest LV s such that every LV in [s, End) forms an
	// unbroken linear ancestry chain with no external merge.
	Shadow LV
}

// Len is the number of LVs this entry covers.
func (e *Entry) Len() int { return int(e.End - e.Start) }

// Contains reports whether lv falls within this entry's span.
func (e *Entry) Contains(lv LV) bool { return lv >= e.Start && lv < e.End }

// ShadowContains reports whether target is a pure linear ancestor of
// anything in this entry: target is in [Shadow, End). This is the "is
// target reachable along a single unbroken chain" fast path used
// throughout the query algorithms.
func (e *Entry) ShadowContains(target LV) bool {
	return target >= e.Shadow && target < e.End
}

// parentOf returns the parent frontier of the LV at the given offset
// within the entry: offset 0's parent is e.Parents (the entry's incoming
// frontier), offset > 0's parent is Start+offset-1.
func (e *Entry) parentOf(offset int) Frontier {
	if offset == 0 {
		return e.Parents
	}
	return Frontier{e.Start + LV(offset) - 1}
}

// ErrIntegrity signals a causal-graph invariant was violated: a shadow out
// of range, or a frontier that was not dominator-minimal. This is fatal —
// per spec §7 the library refuses to continue rather than produce a
// silently corrupted document.
var ErrIntegrity = errors.New("causalgraph: integrity violation")

func integrityErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIntegrity, fmt.Sprintf(format, args...))
}

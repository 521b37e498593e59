// Package rle implements the run-length-encoded span algebra that every
// collection in this module is built on: a value that represents a run of
// semantically adjacent items and knows how to split and merge with its
// neighbors.
package rle

// Span is the capability set every run-length-encoded value must satisfy.
//
// Storage containers (Vec, and the content-indexed B-tree in package rope)
// invoke CanAppend on insert to fuse a new entry with its neighbor whenever
// possible, keeping the representation compact without a separate
// compaction pass.
type Span interface {
	// Len returns the number of logical units this span covers. Must be
	// strictly positive; a zero-length span is never constructed.
	Len() int

	// SplitAt divides the span at offset n (0 < n < Len()), mutating the
	// receiver into the left half and returning the right half.
	SplitAt(n int) Span

	// CanAppend reports whether other is semantically the continuation of
	// self, i.e. whether Append(other) is legal. This must be a pure
	// predicate: calling it must not mutate either span.
	CanAppend(other Span) bool

	// Append merges other onto the end of self. Only legal when
	// CanAppend(other) is true.
	Append(other Span)

	// Prepend merges other onto the start of self. Only legal when
	// other.CanAppend(self) is true.
	Prepend(other Span)
}

// Keyed wraps a Span with an integer key, so that truncating the right half
// of a keyed pair produces a new pair whose key has advanced by the offset
// truncated away.
type Keyed struct {
	Key   int
	Inner Span
}

// Len satisfies Span by delegating to the wrapped span.
func (k *Keyed) Len() int { return k.Inner.Len() }

// SplitAt splits the keyed span in place; the returned right half's Key is
// advanced by n so it still addresses the correct logical position.
func (k *Keyed) SplitAt(n int) Span {
	right := k.Inner.SplitAt(n)
	return &Keyed{Key: k.Key + n, Inner: right}
}

// CanAppend holds when the keys are contiguous and the inner spans fuse.
func (k *Keyed) CanAppend(other Span) bool {
	o, ok := other.(*Keyed)
	if !ok {
		return false
	}
	return k.Key+k.Inner.Len() == o.Key && k.Inner.CanAppend(o.Inner)
}

// Append fuses other onto the end of k. Only legal when CanAppend(other).
func (k *Keyed) Append(other Span) {
	o := other.(*Keyed)
	k.Inner.Append(o.Inner)
}

// Prepend fuses other onto the start of k, pulling k's key back to other's.
func (k *Keyed) Prepend(other Span) {
	o := other.(*Keyed)
	k.Inner.Prepend(o.Inner)
	k.Key = o.Key
}

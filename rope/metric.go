package rope

import "github.com/cshekharsharma/causalcrdt/rle"

// Metric is the pluggable order-statistics function the tree indexes by
// (spec §4.3: "a user-pluggable metric"). A metric's values form an
// abelian monoid under addition — Of is the only operation a caller's
// metric must supply; every aggregation the tree itself needs (summing
// children, computing deltas) is plain integer addition/subtraction over
// that value.
type Metric interface {
	// Of returns the metric's contribution for a single entry.
	Of(e rle.Span) int
}

// RawLen counts every unit in an entry, tombstoned or not — "character
// count" in spec §4.3.
type RawLen struct{}

func (RawLen) Of(e rle.Span) int { return e.Len() }

// VisibleLen counts only non-tombstoned units — "visible-character count"
// in spec §4.3, the metric a rendered document is indexed by.
type VisibleLen struct{}

func (VisibleLen) Of(e rle.Span) int {
	if c, ok := e.(*Content); ok && c.Deleted {
		return 0
	}
	return e.Len()
}

package rle_test

import (
	"testing"

	"github.com/cshekharsharma/causalcrdt/rle"
)

// run is a minimal Span used purely to exercise the algebra in isolation
// from any real content type (rope.Content, oplog.Operation).
type run struct {
	label string
	n     int
}

func (r *run) Len() int { return r.n }

func (r *run) SplitAt(n int) rle.Span {
	right := &run{label: r.label, n: r.n - n}
	r.n = n
	return right
}

func (r *run) CanAppend(other rle.Span) bool {
	o, ok := other.(*run)
	return ok && o.label == r.label
}

func (r *run) Append(other rle.Span)  { r.n += other.(*run).n }
func (r *run) Prepend(other rle.Span) { r.n += other.(*run).n }

func TestSplitAppendRoundTrip(t *testing.T) {
	for _, k := range []int{1, 3, 9} {
		s := &run{label: "x", n: 10}
		right := s.SplitAt(k)
		s.Append(right)
		if s.Len() != 10 {
			t.Fatalf("split_at(%d) then append: got len %d, want 10", k, s.Len())
		}
	}
}

func TestVecPushFusesAdjacentRuns(t *testing.T) {
	v := rle.NewVec()
	v.Push(&run{label: "a", n: 3})
	v.Push(&run{label: "a", n: 4})
	if v.NumEntries() != 1 {
		t.Fatalf("expected adjacent same-label runs to fuse into 1 entry, got %d", v.NumEntries())
	}
	if v.Len() != 7 {
		t.Fatalf("Len() = %d, want 7", v.Len())
	}

	v.Push(&run{label: "b", n: 2})
	if v.NumEntries() != 2 {
		t.Fatalf("expected a different label not to fuse, got %d entries", v.NumEntries())
	}
}

func TestVecFind(t *testing.T) {
	v := rle.NewVec()
	v.Push(&run{label: "a", n: 5})
	v.Push(&run{label: "b", n: 5})

	span, off, ok := v.Find(7)
	if !ok {
		t.Fatalf("Find(7) not found")
	}
	if span.(*run).label != "b" || off != 2 {
		t.Fatalf("Find(7) = (%v, %d), want (b, 2)", span, off)
	}

	if _, _, ok := v.Find(10); ok {
		t.Fatalf("Find(10) should be out of range")
	}
}

func TestKeyedSplitAdvancesKey(t *testing.T) {
	k := &rle.Keyed{Key: 100, Inner: &run{label: "a", n: 10}}
	right := k.SplitAt(4).(*rle.Keyed)
	if k.Key != 100 || k.Len() != 4 {
		t.Fatalf("left half = (key %d, len %d), want (100, 4)", k.Key, k.Len())
	}
	if right.Key != 104 || right.Len() != 6 {
		t.Fatalf("right half = (key %d, len %d), want (104, 6)", right.Key, right.Len())
	}
}

func TestTakeMaxSplitsLongRuns(t *testing.T) {
	src := rle.NewSliceSource([]rle.Span{&run{label: "a", n: 10}})
	tm := rle.NewTakeMax(src, 4)

	var total int
	for {
		sp, ok := tm.Next()
		if !ok {
			break
		}
		if sp.Len() > 4 {
			t.Fatalf("TakeMax yielded a piece longer than 4: %d", sp.Len())
		}
		total += sp.Len()
	}
	if total != 10 {
		t.Fatalf("total yielded = %d, want 10", total)
	}
}

func TestZipAlignsUnequalRuns(t *testing.T) {
	a := rle.NewSliceSource([]rle.Span{&run{label: "a", n: 7}})
	b := rle.NewSliceSource([]rle.Span{&run{label: "b", n: 3}, &run{label: "b", n: 4}})
	z := rle.NewZip(a, b)

	var pairs [][2]int
	for {
		ca, cb, ok := z.Next()
		if !ok {
			break
		}
		if ca.Len() != cb.Len() {
			t.Fatalf("zip yielded unequal chunk lengths: %d vs %d", ca.Len(), cb.Len())
		}
		pairs = append(pairs, [2]int{ca.Len(), cb.Len()})
	}
	if len(pairs) != 2 || pairs[0][0] != 3 || pairs[1][0] != 4 {
		t.Fatalf("unexpected zip chunking: %v", pairs)
	}
}

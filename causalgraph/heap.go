package causalgraph

// lvMaxHeap is a small max-heap of LVs, used by every query algorithm in
// this package that needs to walk the graph from newest to oldest (spec
// §4.4 calls these out as "hot in benchmarks" — container/heap is a
// portable priority queue, swapped for a small-vector-optimized one only
// if profiling ever demands it).
type lvMaxHeap []LV

func (h lvMaxHeap) Len() int            { return len(h) }
func (h lvMaxHeap) Less(i, j int) bool  { return h[i] > h[j] } // max-heap
func (h lvMaxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *lvMaxHeap) Push(x interface{}) { *h = append(*h, x.(LV)) }
func (h *lvMaxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

package causalgraph

import (
	"container/heap"
	"sort"
)

// LVRange is a half-open range of local versions, [Start, End).
type LVRange struct{ Start, End LV }

// Len returns the number of LVs the range covers.
func (r LVRange) Len() int { return int(r.End - r.Start) }

// FrontierContainsVersion reports whether t is a transitive ancestor of (or
// a member of) f.
func (g *Graph) FrontierContainsVersion(f Frontier, t LV) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frontierContainsVersionLocked(f, t)
}

func (g *Graph) frontierContainsVersionLocked(f Frontier, t LV) bool {
	h := &lvMaxHeap{}
	for _, v := range f {
		if v == t {
			return true
		}
		if v > t {
			if e := g.entryFor(v); e != nil && e.ShadowContains(t) {
				return true
			}
			heap.Push(h, v)
		}
	}
	seen := make(map[LV]bool)
	for h.Len() > 0 {
		v := heap.Pop(h).(LV)
		if seen[v] {
			continue
		}
		seen[v] = true
		if v == t {
			return true
		}
		e := g.entryFor(v)
		if e == nil {
			continue
		}
		if e.ShadowContains(t) {
			return true
		}
		offset := int(v - e.Start)
		for _, p := range e.parentOf(offset) {
			if p == t {
				return true
			}
			if p > t {
				heap.Push(h, p)
			}
		}
	}
	return false
}

// VersionCmp compares two individual local versions, returning Equal,
// Less (a is an ancestor of b), Greater (b is an ancestor of a), or
// Concurrent. Results are memoized in a bounded LRU, cleared on every
// Push (spec §9: these traversals are hot in benchmarks).
func (g *Graph) VersionCmp(a, b LV) Ordering {
	if a == b {
		return Equal
	}
	g.mu.RLock()
	key := pairKey{a, b}
	if v, ok := g.cmpCache.Get(key); ok {
		g.mu.RUnlock()
		return v
	}
	var result Ordering
	if a > b {
		if g.frontierContainsVersionLocked(Frontier{a}, b) {
			result = Greater
		} else {
			result = Concurrent
		}
	} else {
		if g.frontierContainsVersionLocked(Frontier{b}, a) {
			result = Less
		} else {
			result = Concurrent
		}
	}
	g.mu.RUnlock()
	g.cmpCache.Add(key, result)
	return result
}

type diffFlag int

const (
	flagOnlyA diffFlag = iota
	flagOnlyB
	flagShared
)

// diffWalk is the shared core of Diff and FindConflicting: a max-heap walk
// tagging every reachable LV as OnlyA/OnlyB/Shared, collapsing duplicates,
// and emitting contiguous covered sub-ranges per CG entry as it goes.
func (g *Graph) diffWalk(a, b Frontier) (onlyA, onlyB []LVRange, sharedTops []LV) {
	flagOf := make(map[LV]diffFlag)
	h := &lvMaxHeap{}
	push := func(lv LV, f diffFlag) {
		if cur, ok := flagOf[lv]; ok {
			if cur != f {
				flagOf[lv] = flagShared
			}
			return
		}
		flagOf[lv] = f
		heap.Push(h, lv)
	}
	for _, v := range a {
		push(v, flagOnlyA)
	}
	for _, v := range b {
		push(v, flagOnlyB)
	}

	for h.Len() > 0 {
		v := heap.Pop(h).(LV)
		flag, ok := flagOf[v]
		if !ok {
			continue // consumed already while walking backward from a larger LV
		}
		delete(flagOf, v)
		e := g.entryFor(v)
		if e == nil {
			continue
		}
		// An entry is by construction a single linear chain produced by
		// one agent, so every LV between e.Start and v is unconditionally
		// on the ancestry path of v — walk the whole prefix, absorbing any
		// queue heads that happen to already be enqueued there. A head
		// whose flag differs makes everything from it downward Shared, so
		// the range above it is emitted first with the flag it had.
		emit := func(r LVRange, f diffFlag) {
			switch f {
			case flagOnlyA:
				onlyA = append(onlyA, r)
			case flagOnlyB:
				onlyB = append(onlyB, r)
			case flagShared:
				sharedTops = append(sharedTops, r.End-1)
			}
		}
		hi := v + 1
		lo := v
		for lo > e.Start {
			if prevFlag, ok := flagOf[lo-1]; ok {
				delete(flagOf, lo-1)
				if prevFlag != flag && flag != flagShared {
					emit(LVRange{lo, hi}, flag)
					hi = lo
					flag = flagShared
				}
			}
			lo--
		}
		emit(LVRange{lo, hi}, flag)
		for _, p := range e.Parents {
			push(p, flag)
		}
	}
	return onlyA, onlyB, sharedTops
}

// Diff returns the LV ranges reachable from a but not b, and from b but
// not a, each in reverse (newest-first) order.
func (g *Graph) Diff(a, b Frontier) (onlyA, onlyB []LVRange) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	onlyA, onlyB, _ = g.diffWalk(a, b)
	return onlyA, onlyB
}

// ConflictFlag tags an LV range visited by FindConflicting.
type ConflictFlag int

const (
	ConflictOnlyA ConflictFlag = iota
	ConflictOnlyB
)

// FindConflicting walks the history of a and b like Diff, but returns the
// common-ancestor frontier (the merge base) instead of discarding it, and
// invokes visit for every LV range outside that base frontier.
func (g *Graph) FindConflicting(a, b Frontier, visit func(LVRange, ConflictFlag)) Frontier {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(a) == 1 && len(b) == 1 {
		if e := g.entryFor(a[0]); a[0] >= b[0] && e != nil && e.ShadowContains(b[0]) {
			if a[0] > b[0] {
				visit(LVRange{b[0] + 1, a[0] + 1}, ConflictOnlyA)
			}
			return Frontier{b[0]}
		}
		if e := g.entryFor(b[0]); b[0] >= a[0] && e != nil && e.ShadowContains(a[0]) {
			if b[0] > a[0] {
				visit(LVRange{a[0] + 1, b[0] + 1}, ConflictOnlyB)
			}
			return Frontier{a[0]}
		}
	}

	onlyA, onlyB, sharedTops := g.diffWalk(a, b)
	for _, r := range onlyA {
		visit(r, ConflictOnlyA)
	}
	for _, r := range onlyB {
		visit(r, ConflictOnlyB)
	}
	return g.findDominatorsLocked(sharedTops)
}

// FindDominators returns the minimal subset of versions whose transitive
// ancestors (reflexively) equal the transitive ancestors of versions: the
// elements of versions that are not themselves a strict ancestor of any
// other element of versions.
func (g *Graph) FindDominators(versions []LV) Frontier {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.findDominatorsLocked(versions)
}

func (g *Graph) findDominatorsLocked(versionsIn []LV) Frontier {
	versions := sortedUnique(versionsIn)
	if len(versions) <= 1 {
		return versions
	}

	isOriginal := make(map[LV]bool, len(versions))
	for _, v := range versions {
		isOriginal[v] = true
	}

	h := &lvMaxHeap{}
	for _, v := range versions {
		heap.Push(h, v)
	}

	consumed := make(map[LV]bool)
	visited := make(map[LV]bool)
	var result Frontier

	for h.Len() > 0 {
		v := heap.Pop(h).(LV)
		if visited[v] {
			continue
		}
		visited[v] = true
		if isOriginal[v] && !consumed[v] {
			result = append(result, v)
		}
		e := g.entryFor(v)
		if e == nil {
			continue
		}
		offset := int(v - e.Start)
		for _, p := range e.parentOf(offset) {
			consumed[p] = true
			if !visited[p] {
				heap.Push(h, p)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// VersionUnion returns FindDominators(A ∪ B).
func (g *Graph) VersionUnion(a, b Frontier) Frontier {
	g.mu.RLock()
	defer g.mu.RUnlock()
	merged := make([]LV, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return g.findDominatorsLocked(merged)
}

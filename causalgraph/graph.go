package causalgraph

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// versionCmpCacheSize bounds the memoized VersionCmp results kept between
// Push calls. The cache is cleared (not evicted) on every Push: next_lv
// only grows and old comparisons stay valid, but the key space itself is
// unbounded, so clearing on mutation is simpler than pruning stale keys.
const versionCmpCacheSize = 4096

// Ordering is the result of comparing two versions.
type Ordering int

const (
	// Concurrent means neither version is an ancestor of the other.
	Concurrent Ordering = iota
	Equal
	// Less means a is a (strict) ancestor of b.
	Less
	// Greater means b is a (strict) ancestor of a.
	Greater
)

type pairKey struct{ a, b LV }

// Graph is the causal graph: the versioning substrate for the op-log. It
// owns the agent assignment table (spec groups "Agent assignment" with the
// causal graph because every Push touches both) and the run-length DAG
// entries.
//
// Graph is safe for concurrent read-only queries (Diff,
// FrontierContainsVersion, VersionCmp) but Push requires exclusive access,
// matching the single-mutator-at-a-time model in spec §5.
type Graph struct {
	mu sync.RWMutex

	entries []*Entry // sorted, non-overlapping, keyed by Start
	nextLV  LV
	front   Frontier

	Agents *AgentAssignment

	cmpCache *lru.Cache[pairKey, Ordering]
}

// NewGraph returns an empty causal graph rooted at LV 0.
func NewGraph() *Graph {
	c, _ := lru.New[pairKey, Ordering](versionCmpCacheSize)
	return &Graph{
		Agents:   NewAgentAssignment(),
		cmpCache: c,
	}
}

// NextLV returns the next LV that would be allocated by Push.
func (g *Graph) NextLV() LV {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nextLV
}

// Frontier returns the current frontier (a defensive copy).
func (g *Graph) Frontier() Frontier {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.front.Clone()
}

// entryFor returns the entry covering lv, via binary search over Start.
func (g *Graph) entryFor(lv LV) *Entry {
	lo, hi := 0, len(g.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if g.entries[mid].Start <= lv {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return nil
	}
	e := g.entries[lo-1]
	if e.Contains(lv) {
		return e
	}
	return nil
}

// Entries returns every CG entry in Start order. Callers must not mutate
// the returned entries; used by the op-log codec to walk the whole table
// for a full snapshot.
func (g *Graph) Entries() []*Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// EntryContaining returns the CG entry covering lv, or nil if lv is out of
// range. Exported for callers outside the package (op-log equality,
// encode/decode) that need entry-level detail the query functions don't
// surface directly.
func (g *Graph) EntryContaining(lv LV) *Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.entryFor(lv)
}

// Push reserves [lv, lv+length) for agent's length new local operations
// with explicit parent frontier parents, appending to (or extending) the
// last CG entry per the protocol in spec §4.4 step 2, and updates the
// frontier and agent table (steps 3-4). Returns the allocated LV range.
func (g *Graph) Push(agentName string, length int, parents Frontier) (LV, LV) {
	g.mu.Lock()
	defer g.mu.Unlock()

	parents = sortedUnique(parents)
	lv := g.nextLV
	end := lv + LV(length)
	id := g.Agents.IdFor(agentName)
	seq := g.Agents.NextSeq(id)

	var shadow LV
	extended := false
	if n := len(g.entries); n > 0 {
		last := g.entries[n-1]
		if last.End == lv && last.Agent == id &&
			len(parents) == 1 && parents[0] == lv-1 {
			last.End = end
			shadow = last.Shadow
			extended = true
		}
	}
	if !extended {
		shadow = lv
		g.entries = append(g.entries, &Entry{
			Start:    lv,
			End:      end,
			Agent:    id,
			SeqStart: uint64(seq),
			Parents:  parents,
			Shadow:   shadow,
		})
	}

	g.Agents.Append(id, seq, lv, length)

	// Update frontier: drop any element that is now an ancestor of end-1
	// (i.e. an ancestor of, or equal to, one of parents), then add end-1.
	newFront := g.front[:0:0]
	for _, f := range g.front {
		if g.frontierContainsVersionLocked(parents, f) {
			continue
		}
		newFront = append(newFront, f)
	}
	newFront = append(newFront, end-1)
	g.front = sortedUnique(newFront)
	g.nextLV = end

	g.cmpCache.Purge()

	return lv, end
}

// InsertKnownEntry is used by patch merge (oplog.DecodeAndMerge): it
// appends an entry whose (agent, seq) identity and parents are already
// known from the wire, after the caller has translated the patch's
// parents into local LVs and validated MissingParent/UnknownAgent
// conditions.
func (g *Graph) InsertKnownEntry(agentName string, seq int, length int, parents Frontier) (LV, LV) {
	// Reuses Push's bookkeeping: InsertKnownEntry is only ever called when
	// seq == Agents.NextSeq(id), i.e. appended in order, which decode.go
	// guarantees by constructing the agent table in LV order.
	return g.Push(agentName, length, parents)
}

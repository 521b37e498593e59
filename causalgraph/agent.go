package causalgraph

import (
	"fmt"

	"github.com/google/uuid"
)

// AgentId is a dense integer indexing into a Graph's agent table. Stable
// for the lifetime of the op-log that owns the graph (spec §5).
type AgentId int

// agentRun records one contiguous range of an agent's per-agent sequence
// numbers and the LV range it maps to: seq [SeqStart, SeqStart+Len) maps to
// lv [LVStart, LVStart+Len).
type agentRun struct {
	SeqStart int
	LVStart  LV
	Len      int
}

// agentEntry is one row of the agent table: a name and its append-only,
// strictly-LV-increasing list of sequence runs.
type agentEntry struct {
	Name string
	Runs []agentRun
}

// AgentAssignment is the bijection between (agent-name, per-agent-seq)
// tuples and dense local versions (spec §3 "Agent identity", §4.4).
type AgentAssignment struct {
	byId   []agentEntry
	byName map[string]AgentId
}

// NewAgentAssignment returns an empty assignment table.
func NewAgentAssignment() *AgentAssignment {
	return &AgentAssignment{byName: make(map[string]AgentId)}
}

// NewRandomAgentName mints a collision-resistant default agent name for
// callers that don't have a stable identity to hand (e.g. ephemeral review
// sessions), the same role google/uuid's SiteID plays in brunokim's
// causal-tree.
func NewRandomAgentName() string {
	return uuid.NewString()
}

// IdFor returns the dense AgentId for name, allocating a new row if this is
// the first time name has been seen.
func (a *AgentAssignment) IdFor(name string) AgentId {
	if id, ok := a.byName[name]; ok {
		return id
	}
	id := AgentId(len(a.byId))
	a.byId = append(a.byId, agentEntry{Name: name})
	a.byName[name] = id
	return id
}

// NameOf returns the agent name for id.
func (a *AgentAssignment) NameOf(id AgentId) string {
	return a.byId[id].Name
}

// LookupId returns the AgentId for name without allocating, ok=false if
// name has never been seen.
func (a *AgentAssignment) LookupId(name string) (AgentId, bool) {
	id, ok := a.byName[name]
	return id, ok
}

// Append records that agent produced length consecutive ops starting at
// (seq, lv). It does not check the append-only, strictly LV-increasing
// invariant; its caller (Graph.Push) passes the agent's next seq and the
// graph's next LV.
func (a *AgentAssignment) Append(id AgentId, seq int, lv LV, length int) {
	e := &a.byId[id]
	if n := len(e.Runs); n > 0 {
		last := &e.Runs[n-1]
		if last.SeqStart+last.Len == seq && last.LVStart+LV(last.Len) == lv {
			last.Len += length
			return
		}
	}
	e.Runs = append(e.Runs, agentRun{SeqStart: seq, LVStart: lv, Len: length})
}

// NextSeq returns the next unused sequence number for id (0 if the agent
// has never produced an op).
func (a *AgentAssignment) NextSeq(id AgentId) int {
	e := &a.byId[id]
	if len(e.Runs) == 0 {
		return 0
	}
	last := e.Runs[len(e.Runs)-1]
	return last.SeqStart + last.Len
}

// LVOfSeq maps (id, seq) to its LV, ok=false if unknown.
func (a *AgentAssignment) LVOfSeq(id AgentId, seq int) (LV, bool) {
	for _, r := range a.byId[id].Runs {
		if seq >= r.SeqStart && seq < r.SeqStart+r.Len {
			return r.LVStart + LV(seq-r.SeqStart), true
		}
	}
	return 0, false
}

// SeqOfLV maps an LV produced by agent id back to its per-agent sequence
// number, ok=false if that LV was not produced by this agent.
func (a *AgentAssignment) SeqOfLV(id AgentId, lv LV) (int, bool) {
	for _, r := range a.byId[id].Runs {
		if lv >= r.LVStart && lv < r.LVStart+LV(r.Len) {
			return r.SeqStart + int(lv-r.LVStart), true
		}
	}
	return 0, false
}

// AllNames returns every agent name in AgentId order, for the codec's
// agent-names chunk.
func (a *AgentAssignment) AllNames() []string {
	out := make([]string, len(a.byId))
	for i, e := range a.byId {
		out[i] = e.Name
	}
	return out
}

// IdentityOf is the inverse of the (id, seq) -> LV mapping: it scans every
// agent's run table for the one that produced lv. O(agents); callers that
// need this on a hot path (op-log equality) are expected to cache results
// per call, not per LV.
func (a *AgentAssignment) IdentityOf(lv LV) (id AgentId, seq int, ok bool) {
	for i := range a.byId {
		if s, found := a.SeqOfLV(AgentId(i), lv); found {
			return AgentId(i), s, true
		}
	}
	return 0, 0, false
}

// String renders the (agent,seq) identity as "name:seq", useful
// in error messages and debug dumps.
func (a *AgentAssignment) String(id AgentId, seq int) string {
	return fmt.Sprintf("%s:%d", a.NameOf(id), seq)
}

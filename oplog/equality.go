package oplog

import (
	"sort"

	"github.com/cshekharsharma/causalcrdt/causalgraph"
)

// Equal reports whether l and other hold the same set of operations modulo
// local numbering (spec §4.5). Agents are matched by name; op-logs produced
// by interleaving the same edits in a different push order, which gives
// them different AgentIds and LVs, compare equal as long as the resulting
// causal history and per-operation content agree.
func (l *OpLog) Equal(other *OpLog) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	lf := l.CG.Frontier()
	mappedFrontier := make(causalgraph.Frontier, 0, len(lf))
	for _, v := range lf {
		agentId, seq, ok := l.CG.Agents.IdentityOf(v)
		if !ok {
			return false
		}
		remoteId, found := other.CG.Agents.LookupId(l.CG.Agents.NameOf(agentId))
		if !found {
			return false
		}
		rv, ok := other.CG.Agents.LVOfSeq(remoteId, seq)
		if !ok {
			return false
		}
		mappedFrontier = append(mappedFrontier, rv)
	}
	sort.Slice(mappedFrontier, func(i, j int) bool { return mappedFrontier[i] < mappedFrontier[j] })
	if !mappedFrontier.Equal(other.CG.Frontier()) {
		return false
	}
	if l.CG.NextLV() != other.CG.NextLV() {
		return false
	}

	// Build the local->remote AgentId map lazily as agents are encountered
	// below; missing or seq-mismatched agents fail the whole comparison.
	remap := make(map[causalgraph.AgentId]causalgraph.AgentId)

	t := causalgraph.LV(0)
	n := l.CG.NextLV()
	for t < n {
		lOp, lOff, ok := l.ops.Find(int(t))
		if !ok {
			return false
		}
		localOp := lOp.(*Operation)
		lLen := localOp.Len() - lOff

		agentId, seq, ok := l.CG.Agents.IdentityOf(t)
		if !ok {
			return false
		}
		agentName := l.CG.Agents.NameOf(agentId)
		remoteId, ok := remap[agentId]
		if !ok {
			id, found := other.CG.Agents.LookupId(agentName)
			if !found {
				return false
			}
			remoteId = id
			remap[agentId] = remoteId
		}
		tPrime, ok := other.CG.Agents.LVOfSeq(remoteId, seq)
		if !ok {
			return false
		}

		rOp, rOff, ok := other.ops.Find(int(tPrime))
		if !ok {
			return false
		}
		remoteOp := rOp.(*Operation)
		rLen := remoteOp.Len() - rOff

		overlap := lLen
		if rLen < overlap {
			overlap = rLen
		}
		if overlap <= 0 {
			return false
		}

		if !operationsEqualOverlap(localOp, lOff, remoteOp, rOff, overlap) {
			return false
		}
		if !entriesEqualOverlap(l.CG, t, other.CG, tPrime, overlap, remap, other) {
			return false
		}

		t += causalgraph.LV(overlap)
	}
	return true
}

// operationsEqualOverlap compares overlap logical units of a and b starting
// at their respective offsets, ignoring anything the two ops disagree about
// outside that shared window (the caller has already trimmed overlap to
// the smaller of the two remaining spans).
func operationsEqualOverlap(a *Operation, aOff int, b *Operation, bOff int, overlap int) bool {
	if a.Kind != b.Kind || a.Fwd != b.Fwd {
		return false
	}
	switch a.Kind {
	case Insert:
		aStr := a.Content[aOff : aOff+overlap]
		bStr := b.Content[bOff : bOff+overlap]
		if aStr != bStr {
			return false
		}
		return a.Pos+aOff == b.Pos+bOff
	case Delete:
		if a.Fwd {
			return a.Pos+aOff == b.Pos+bOff
		}
		// Backward deletes repeat the same Pos for every unit in the run.
		return a.Pos == b.Pos
	}
	return false
}

// entriesEqualOverlap compares the CG entries covering [t, t+overlap) on a
// and [t2, t2+overlap) on b, mapping a's parent LVs through remap/agent
// translation before comparing.
func entriesEqualOverlap(a *causalgraph.Graph, t causalgraph.LV, b *causalgraph.Graph, t2 causalgraph.LV, overlap int, remap map[causalgraph.AgentId]causalgraph.AgentId, other *OpLog) bool {
	// Only the entry boundary at the start of each aligned chunk carries
	// parent information that differs between replicas; LVs strictly
	// inside an entry have an implicit parent (the previous LV) that is
	// identical in any faithful relabeling, so only offset-zero chunks
	// need a parent comparison.
	eA := a.EntryContaining(t)
	eB := b.EntryContaining(t2)
	if eA == nil || eB == nil {
		return false
	}
	if t != eA.Start || t2 != eB.Start {
		return true
	}
	if len(eA.Parents) != len(eB.Parents) {
		return false
	}
	mapped := make(causalgraph.Frontier, 0, len(eA.Parents))
	for _, p := range eA.Parents {
		pAgent, pSeq, ok := a.Agents.IdentityOf(p)
		if !ok {
			return false
		}
		remoteId, ok := remap[pAgent]
		if !ok {
			name := a.Agents.NameOf(pAgent)
			id, found := other.CG.Agents.LookupId(name)
			if !found {
				return false
			}
			remoteId = id
			remap[pAgent] = remoteId
		}
		lv, ok := b.Agents.LVOfSeq(remoteId, pSeq)
		if !ok {
			return false
		}
		mapped = append(mapped, lv)
	}
	sort.Slice(mapped, func(i, j int) bool { return mapped[i] < mapped[j] })
	return mapped.Equal(eB.Parents)
}

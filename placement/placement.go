// Package placement is the external placement collaborator the engine's
// transform iterator consults when two concurrent inserts compete for the
// same document position (spec §1: "the placement algorithm is out of
// scope for this engine — it is invoked via the cursor API on the
// content-indexed B-tree" / §4.6: "a deterministic rule (lexicographic
// agent-name tie-break on concurrent edits with equal parents)").
//
// Sequential is a direct adaptation of the teacher's RGA ID/Greater
// tiebreak (rga.go): where the teacher compares a Lamport Timestamp and a
// NodeID over an intrusive linked list, Sequential compares a per-agent Seq
// and an AgentName, and is applied through a rope.Cursor rather than by
// walking Node.Next pointers.
package placement

// Candidate describes one concurrent insertion competing to occupy a
// document position, carrying just enough of spec §3's "Agent identity"
// to total-order it against siblings: the authoring agent's name and its
// per-agent sequence number at the time of the insert.
type Candidate struct {
	AgentName string
	Seq       uint64
}

// Placer orders concurrent insertions that land at the same position.
// Less(a, b) reports whether a must be placed before b in the linearized
// document.
type Placer interface {
	Less(a, b Candidate) bool
}

// Sequential is the reference Placer: higher Seq sorts first (the
// teacher's "higher Timestamp wins"), and AgentName breaks an exact tie —
// the lexicographic rule spec §4.6 calls out by name for edits that share
// a parent and a sequence number isn't available to separate them (e.g.
// two inserts at the same position with no causal relationship to each
// other's Seq).
type Sequential struct{}

var _ Placer = Sequential{}

func (Sequential) Less(a, b Candidate) bool {
	if a.Seq != b.Seq {
		return a.Seq > b.Seq
	}
	return a.AgentName > b.AgentName
}

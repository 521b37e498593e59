package oplog

import "github.com/cshekharsharma/causalcrdt/varint"

// Chunk types for the op-log wire format (spec §6). The set is closed: an
// unrecognized chunk type at the top level is a hard decode error.
const (
	chunkFileInfo varint.ChunkType = iota + 1
	chunkAgentNames
	chunkVersionVector
	chunkCGEntries
	chunkOperations
	chunkContent
	chunkChecksum
)

// fileInfoVersion is bumped whenever the wire format changes incompatibly.
const fileInfoVersion = 1

// wireEntry is the self-describing, LV-numbering-independent form of a CG
// entry used on the wire (spec §6 "CG entry encoding"): agent index
// instead of AgentId (which is only meaningful within one replica), and
// parents expressed as (agent index, seq) pairs instead of local LVs.
type wireEntry struct {
	agentIdx int
	seqStart int
	length   int
	parents  []wireVersion
}

type wireVersion struct {
	agentIdx int
	seq      int
}

// wireOp is the self-describing form of an Operation run: a position
// delta from the previous run (zig-zag varint) rather than an absolute
// position, since absolute positions are meaningless without replaying
// every prior op.
type wireOp struct {
	length    int
	kind      Kind
	fwd       bool
	posDelta  int64
	// contentOffset is the cumulative byte offset into the content chunk
	// this run's text starts at; only meaningful for Kind == Insert.
	contentOffset int
}

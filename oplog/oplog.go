// Package oplog implements the op-log: a causal graph (package causalgraph)
// paired with an append-only, run-length-compressed table of text
// operations keyed by local version (spec §3 "Op-log", §4.4).
package oplog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cshekharsharma/causalcrdt/causalgraph"
	"github.com/cshekharsharma/causalcrdt/rle"
)

// Sentinel errors surfaced across the public API (spec §7).
var (
	// ErrUnknownAgent is returned during patch merge when an incoming
	// (agent, seq) pair has no local translation and the patch itself
	// does not introduce that agent.
	ErrUnknownAgent = errors.New("oplog: unknown agent")
	// ErrMissingParent is returned when a patch references an LV the
	// receiver has never seen and the patch does not define it either,
	// and also when an insert's content lies outside the patch's content
	// chunk.
	ErrMissingParent = errors.New("oplog: missing parent")
	// ErrChecksumMismatch is returned when a decoded byte stream's
	// trailing CRC does not match its body.
	ErrChecksumMismatch = errors.New("oplog: checksum mismatch")
)

// ErrIntegrity re-exports causalgraph.ErrIntegrity: an internal CG
// invariant was violated. Fatal — see spec §7.
var ErrIntegrity = causalgraph.ErrIntegrity

// OpLog is the causal graph plus the operation table it indexes (spec §3).
// Invariant: the operation table covers [0, CG.NextLV()) exactly, and
// Frontier() is always the dominator set of the graph's current frontier.
//
// OpLog is safe for concurrent read-only queries but PushInsert, PushDelete
// and DecodeAndMerge require exclusive access (spec §5).
type OpLog struct {
	mu sync.RWMutex

	CG  *causalgraph.Graph
	ops *rle.Vec // keyed by LV, entries are *Operation
}

// New returns an empty op-log.
func New() *OpLog {
	return &OpLog{
		CG:  causalgraph.NewGraph(),
		ops: rle.NewVec(),
	}
}

// NewWithRandomAgent is a convenience constructor that also mints a
// collision-resistant default agent name (causalgraph.NewRandomAgentName),
// for callers without a stable identity of their own.
func NewWithRandomAgent() (*OpLog, string) {
	return New(), causalgraph.NewRandomAgentName()
}

// Frontier returns the op-log's current frontier.
func (l *OpLog) Frontier() causalgraph.Frontier {
	return l.CG.Frontier()
}

// NextLV returns the next LV that would be allocated by a push.
func (l *OpLog) NextLV() causalgraph.LV {
	return l.CG.NextLV()
}

// PushInsert records an insertion of text at pos by agent, with explicit
// parents, and returns the allocated LV range [lv, lv+len(text)).
func (l *OpLog) PushInsert(agent string, parents causalgraph.Frontier, pos int, text string) (causalgraph.LV, causalgraph.LV) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lv, end := l.CG.Push(agent, len(text), parents)
	l.ops.Push(&Operation{Kind: Insert, Pos: pos, Length: int(end - lv), Fwd: true, Content: text})
	return lv, end
}

// PushDelete records a deletion of the range [pos, pos+length) by agent,
// with explicit parents. fwd is false when the delete was entered
// right-to-left (backspacing); see Operation.Fwd.
func (l *OpLog) PushDelete(agent string, parents causalgraph.Frontier, pos, length int, fwd bool) (causalgraph.LV, causalgraph.LV) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lv, end := l.CG.Push(agent, length, parents)
	l.ops.Push(&Operation{Kind: Delete, Pos: pos, Length: length, Fwd: fwd})
	return lv, end
}

// OperationAt returns the operation covering lv and the offset of lv
// within it, ok=false if lv is out of range.
func (l *OpLog) OperationAt(lv causalgraph.LV) (op *Operation, offset int, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	span, off, ok := l.ops.Find(int(lv))
	if !ok {
		return nil, 0, false
	}
	return span.(*Operation), off, true
}

// Operations returns the RLE-compressed operation table in LV order.
// Callers must not mutate the returned entries.
func (l *OpLog) Operations() []*Operation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.ops.Entries()
	out := make([]*Operation, len(entries))
	for i, e := range entries {
		out[i] = e.(*Operation)
	}
	return out
}

func integrityErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIntegrity, fmt.Sprintf(format, args...))
}

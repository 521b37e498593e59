package oplog

import (
	"fmt"
	"hash/crc32"

	"github.com/cshekharsharma/causalcrdt/causalgraph"
	"github.com/cshekharsharma/causalcrdt/varint"
)

// Decoded is a fully-parsed wire file, before it has been spliced into any
// particular replica's LV numbering.
type Decoded struct {
	compressed bool
	agentNames []string
	frontier   []wireVersion
	entries    []wireEntry
	ops        []wireOp
	content    []byte
}

// Decode parses a wire-format byte stream without merging it into any
// op-log, validating the magic header and the trailing checksum.
//
// Decode errors are always recoverable (spec §7): nothing is mutated.
func Decode(b []byte) (*Decoded, error) {
	r, err := varint.NewChunkReader(b)
	if err != nil {
		return nil, err
	}
	chunks, err := r.All()
	if err != nil {
		return nil, err
	}

	// Validate the checksum over everything preceding the checksum chunk.
	if len(chunks) == 0 || chunks[len(chunks)-1].Type != chunkChecksum {
		return nil, fmt.Errorf("oplog: %w: missing checksum chunk", varint.ErrTruncatedChunk)
	}
	bodyLen := len(b) - len(chunks[len(chunks)-1].Payload) - chunkHeaderLen(chunks[len(chunks)-1])
	wantSum, _, err := varint.DecodeU64(chunks[len(chunks)-1].Payload)
	if err != nil {
		return nil, fmt.Errorf("oplog: checksum: %w", err)
	}
	if got := crc32.ChecksumIEEE(b[:bodyLen]); got != uint32(wantSum) {
		return nil, ErrChecksumMismatch
	}

	d := &Decoded{}
	for _, c := range chunks[:len(chunks)-1] {
		switch c.Type {
		case chunkFileInfo:
			v, _, err := varint.DecodeU64(c.Payload)
			if err != nil {
				return nil, err
			}
			_, compressed := varint.UnmixBit(v)
			d.compressed = compressed
		case chunkAgentNames:
			names, err := decodeAgentNames(c.Payload)
			if err != nil {
				return nil, err
			}
			d.agentNames = names
		case chunkVersionVector:
			fr, err := decodeFrontier(c.Payload)
			if err != nil {
				return nil, err
			}
			d.frontier = fr
		case chunkCGEntries:
			entries, err := decodeCGEntries(c.Payload)
			if err != nil {
				return nil, err
			}
			d.entries = entries
		case chunkOperations:
			ops, err := decodeOps(c.Payload)
			if err != nil {
				return nil, err
			}
			d.ops = ops
		case chunkContent:
			content := c.Payload
			if d.compressed {
				content, err = varint.DecompressPayload(content)
				if err != nil {
					return nil, err
				}
			}
			d.content = content
		default:
			return nil, fmt.Errorf("oplog: %w: %d", varint.ErrUnexpectedChunk, c.Type)
		}
	}
	return d, nil
}

// chunkHeaderLen recomputes how many bytes the (type, length) varint pair
// occupied for c, so the checksum can be taken over exactly the bytes that
// preceded the checksum chunk's own header+payload.
func chunkHeaderLen(c varint.Chunk) int {
	var hdr []byte
	hdr = varint.EncodeU64(hdr, uint64(c.Type))
	hdr = varint.EncodeU64(hdr, uint64(len(c.Payload)))
	return len(hdr)
}

func decodeAgentNames(b []byte) ([]string, error) {
	n, off, err := varint.DecodeU64(b)
	if err != nil {
		return nil, err
	}
	b = b[off:]
	names := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		l, off, err := varint.DecodeU64(b)
		if err != nil {
			return nil, err
		}
		b = b[off:]
		if uint64(len(b)) < l {
			return nil, varint.ErrTruncatedChunk
		}
		names = append(names, string(b[:l]))
		b = b[l:]
	}
	return names, nil
}

func decodeFrontier(b []byte) ([]wireVersion, error) {
	n, off, err := varint.DecodeU64(b)
	if err != nil {
		return nil, err
	}
	b = b[off:]
	out := make([]wireVersion, 0, n)
	for i := uint64(0); i < n; i++ {
		agentIdx, o1, err := varint.DecodeU64(b)
		if err != nil {
			return nil, err
		}
		b = b[o1:]
		seq, o2, err := varint.DecodeU64(b)
		if err != nil {
			return nil, err
		}
		b = b[o2:]
		out = append(out, wireVersion{agentIdx: int(agentIdx), seq: int(seq)})
	}
	return out, nil
}

func decodeCGEntries(b []byte) ([]wireEntry, error) {
	n, off, err := varint.DecodeU64(b)
	if err != nil {
		return nil, err
	}
	b = b[off:]
	out := make([]wireEntry, 0, n)
	for i := uint64(0); i < n; i++ {
		agentIdx, o1, err := varint.DecodeU64(b)
		if err != nil {
			return nil, err
		}
		b = b[o1:]
		seqStart, o2, err := varint.DecodeU64(b)
		if err != nil {
			return nil, err
		}
		b = b[o2:]
		length, o3, err := varint.DecodeU64(b)
		if err != nil {
			return nil, err
		}
		b = b[o3:]
		parentCount, o4, err := varint.DecodeU64(b)
		if err != nil {
			return nil, err
		}
		b = b[o4:]
		we := wireEntry{agentIdx: int(agentIdx), seqStart: int(seqStart), length: int(length)}
		for j := uint64(0); j < parentCount; j++ {
			pAgent, p1, err := varint.DecodeU64(b)
			if err != nil {
				return nil, err
			}
			b = b[p1:]
			pSeq, p2, err := varint.DecodeU64(b)
			if err != nil {
				return nil, err
			}
			b = b[p2:]
			we.parents = append(we.parents, wireVersion{agentIdx: int(pAgent), seq: int(pSeq)})
		}
		out = append(out, we)
	}
	return out, nil
}

func decodeOps(b []byte) ([]wireOp, error) {
	n, off, err := varint.DecodeU64(b)
	if err != nil {
		return nil, err
	}
	b = b[off:]
	out := make([]wireOp, 0, n)
	for i := uint64(0); i < n; i++ {
		mixed, o1, err := varint.DecodeU64(b)
		if err != nil {
			return nil, err
		}
		b = b[o1:]
		length, isDelete, fwd := varint.Unmix2Bit(mixed)
		delta, o2, err := varint.DecodeI64(b)
		if err != nil {
			return nil, err
		}
		b = b[o2:]
		wo := wireOp{length: int(length), fwd: fwd, posDelta: delta}
		if isDelete {
			wo.kind = Delete
		} else {
			wo.kind = Insert
			offset, o3, err := varint.DecodeU64(b)
			if err != nil {
				return nil, err
			}
			b = b[o3:]
			wo.contentOffset = int(offset)
		}
		out = append(out, wo)
	}
	return out, nil
}

// DecodeAndMerge parses b and splices its contents into l, translating
// every wire (agent, seq) reference into l's local LV numbering. On any
// error l is left completely unchanged (spec §7: decode into a scratch
// structure, then splice in atomically).
func (l *OpLog) DecodeAndMerge(b []byte) (causalgraph.Frontier, error) {
	d, err := Decode(b)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// agentLocalId maps a wire agent index to this replica's AgentId for
	// agents this replica already knows. Agents new to this replica get
	// their rows only at commit time (by name, through the graph), so a
	// rejected patch leaves the agent table untouched too.
	agentLocalId := make([]causalgraph.AgentId, len(d.agentNames))
	agentKnown := make([]bool, len(d.agentNames))
	for i, name := range d.agentNames {
		agentLocalId[i], agentKnown[i] = l.CG.Agents.LookupId(name)
	}

	// Simulate the LV each incoming entry would receive, in order, without
	// touching the graph yet, so that a parent reference to an LV
	// introduced earlier in this very patch can be resolved during
	// validation — and so a validation failure partway through leaves the
	// graph and operation table completely untouched (spec §7).
	type simEntry struct {
		agentIdx int
		seqStart int
		lvStart  causalgraph.LV
		length   int
	}
	sim := make([]simEntry, 0, len(d.entries))
	simLV := l.CG.NextLV()
	for _, we := range d.entries {
		if we.agentIdx < 0 || we.agentIdx >= len(agentLocalId) {
			return nil, ErrUnknownAgent
		}
		sim = append(sim, simEntry{agentIdx: we.agentIdx, seqStart: we.seqStart, lvStart: simLV, length: we.length})
		simLV += causalgraph.LV(we.length)
	}

	resolve := func(v wireVersion) (causalgraph.LV, bool) {
		if v.agentIdx < 0 || v.agentIdx >= len(agentLocalId) {
			return 0, false
		}
		if agentKnown[v.agentIdx] {
			if lv, ok := l.CG.Agents.LVOfSeq(agentLocalId[v.agentIdx], v.seq); ok {
				return lv, true
			}
		}
		for _, se := range sim {
			if se.agentIdx == v.agentIdx && v.seq >= se.seqStart && v.seq < se.seqStart+se.length {
				return se.lvStart + causalgraph.LV(v.seq-se.seqStart), true
			}
		}
		return 0, false
	}

	entryParents := make([]causalgraph.Frontier, len(d.entries))
	for i, we := range d.entries {
		for _, p := range we.parents {
			lv, ok := resolve(p)
			if !ok {
				return nil, ErrMissingParent
			}
			entryParents[i] = append(entryParents[i], lv)
		}
	}
	opUnits := 0
	for _, wo := range d.ops {
		if wo.kind == Insert && wo.contentOffset+wo.length > len(d.content) {
			return nil, ErrMissingParent
		}
		opUnits += wo.length
	}
	if l.ops.Len()+opUnits != int(simLV) {
		return nil, integrityErrorf("operation table would cover %d LVs, CG %d", l.ops.Len()+opUnits, simLV)
	}

	// Validation complete; commit. Pass 1 splices in the CG entries, in
	// wire order.
	for i, we := range d.entries {
		agentName := d.agentNames[we.agentIdx]
		l.CG.InsertKnownEntry(agentName, we.seqStart, we.length, entryParents[i])
	}

	// Pass 2: the operation table is an independent RLE stream over the
	// same total LV span; its run boundaries need not align with the CG
	// entries' (spec §6 "Operation encoding" describes it purely in terms
	// of accumulated position and content offset, not entry boundaries).
	prevPos := 0
	for _, wo := range d.ops {
		op := &Operation{Kind: wo.kind, Fwd: wo.fwd, Length: wo.length}
		op.Pos = prevPos + int(wo.posDelta)
		prevPos = op.Pos
		if wo.kind == Insert {
			end := wo.contentOffset + wo.length
			op.Content = string(d.content[wo.contentOffset:end])
		}
		l.ops.Push(op)
	}

	if int(l.CG.NextLV()) != l.ops.Len() {
		return nil, integrityErrorf("operation table covers %d LVs, CG covers %d", l.ops.Len(), l.CG.NextLV())
	}

	return l.CG.Frontier(), nil
}

package oplog

import (
	"hash/crc32"

	"github.com/cshekharsharma/causalcrdt/causalgraph"
	"github.com/cshekharsharma/causalcrdt/varint"
)

// EncodeOptions configures Encode/EncodeFrom, following the teacher's
// constructor-parameter minimalism (spec's AMBIENT STACK: no config file or
// env-var layer).
type EncodeOptions struct {
	// Compress runs the content chunk's payload through
	// github.com/klauspost/compress/flate before length-prefixing it.
	Compress bool
}

// Encode produces a full snapshot: a byte stream whose operation and CG
// chunks cover [0, CG.NextLV()) (spec §6 "Snapshot vs patch mode").
func (l *OpLog) Encode(opts EncodeOptions) []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.encodeRange(opts, causalgraph.Frontier{})
}

// EncodeFrom produces a patch: a byte stream covering only the LVs not
// already reachable from fromFrontier; each CG entry in it names its
// parents as (agent, seq) pairs so the peer can splice it in by
// translation.
func (l *OpLog) EncodeFrom(opts EncodeOptions, fromFrontier causalgraph.Frontier) []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.encodeRange(opts, fromFrontier)
}

func (l *OpLog) encodeRange(opts EncodeOptions, fromFrontier causalgraph.Frontier) []byte {
	current := l.CG.Frontier()
	var ranges []causalgraph.LVRange
	if len(fromFrontier) == 0 {
		ranges = []causalgraph.LVRange{{Start: 0, End: l.CG.NextLV()}}
	} else {
		onlyA, _ := l.CG.Diff(current, fromFrontier)
		ranges = normalizeRanges(onlyA)
	}

	w := varint.NewChunkWriter()
	w.WriteChunk(chunkFileInfo, encodeFileInfo(opts))
	w.WriteChunk(chunkAgentNames, l.encodeAgentNames())
	w.WriteChunk(chunkVersionVector, l.encodeFrontier(current))

	entries := l.sliceEntries(ranges)
	w.WriteChunk(chunkCGEntries, encodeCGEntries(entries))

	ops := l.sliceOps(ranges)
	w.WriteChunk(chunkOperations, encodeOps(ops))

	var content []byte
	for _, op := range ops {
		if op.Kind == Insert {
			content = append(content, op.Content...)
		}
	}

	if opts.Compress {
		compressed, err := varint.CompressPayload(content)
		if err == nil {
			content = compressed
		}
	}
	w.WriteChunk(chunkContent, content)

	body := w.Bytes()
	checksum := crc32.ChecksumIEEE(body)
	var sumBuf []byte
	sumBuf = varint.EncodeU64(sumBuf, uint64(checksum))
	w.WriteChunk(chunkChecksum, sumBuf)

	return w.Bytes()
}

func encodeFileInfo(opts EncodeOptions) []byte {
	var b []byte
	return varint.EncodeU64(b, varint.MixBit(fileInfoVersion, opts.Compress))
}

func (l *OpLog) encodeAgentNames() []byte {
	var b []byte
	names := l.CG.Agents.AllNames()
	b = varint.EncodeU64(b, uint64(len(names)))
	for _, name := range names {
		nb := []byte(name)
		b = varint.EncodeU64(b, uint64(len(nb)))
		b = append(b, nb...)
	}
	return b
}

func (l *OpLog) encodeFrontier(f causalgraph.Frontier) []byte {
	var b []byte
	b = varint.EncodeU64(b, uint64(len(f)))
	for _, lv := range f {
		id, seq, _ := l.CG.Agents.IdentityOf(lv)
		b = varint.EncodeU64(b, uint64(id))
		b = varint.EncodeU64(b, uint64(seq))
	}
	return b
}

// sliceEntries walks every CG entry overlapping ranges and emits the
// trimmed, self-describing wireEntry for each overlap. sliceOps does the
// same for the operation table; encodeRange then concatenates the inserted
// content of those ops in the same order, so the content chunk and the
// operations chunk's contentOffset fields stay consistent.
func (l *OpLog) sliceEntries(ranges []causalgraph.LVRange) []wireEntry {
	var out []wireEntry
	for _, r := range ranges {
		lv := r.Start
		for lv < r.End {
			e := l.CG.EntryContaining(lv)
			if e == nil {
				lv++
				continue
			}
			segEnd := e.End
			if r.End < segEnd {
				segEnd = r.End
			}
			agentId, seq, _ := l.CG.Agents.IdentityOf(lv)
			we := wireEntry{
				agentIdx: int(agentId),
				seqStart: seq,
				length:   int(segEnd - lv),
			}
			if lv == e.Start {
				for _, p := range e.Parents {
					pid, pseq, _ := l.CG.Agents.IdentityOf(p)
					we.parents = append(we.parents, wireVersion{agentIdx: int(pid), seq: pseq})
				}
			} else {
				we.parents = []wireVersion{{agentIdx: int(agentId), seq: seq - 1}}
			}
			out = append(out, we)
			lv = segEnd
		}
	}
	return out
}

func (l *OpLog) sliceOps(ranges []causalgraph.LVRange) []*Operation {
	var out []*Operation
	for _, r := range ranges {
		lv := r.Start
		for lv < r.End {
			span, off, ok := l.ops.Find(int(lv))
			if !ok {
				lv++
				continue
			}
			op := span.(*Operation)
			segLen := op.Len() - off
			if remain := int(r.End - lv); remain < segLen {
				segLen = remain
			}
			out = append(out, op.Slice(off, segLen))
			lv += causalgraph.LV(segLen)
		}
	}
	return out
}

func encodeCGEntries(entries []wireEntry) []byte {
	var b []byte
	b = varint.EncodeU64(b, uint64(len(entries)))
	for _, e := range entries {
		b = varint.EncodeU64(b, uint64(e.agentIdx))
		b = varint.EncodeU64(b, uint64(e.seqStart))
		b = varint.EncodeU64(b, uint64(e.length))
		b = varint.EncodeU64(b, uint64(len(e.parents)))
		for _, p := range e.parents {
			b = varint.EncodeU64(b, uint64(p.agentIdx))
			b = varint.EncodeU64(b, uint64(p.seq))
		}
	}
	return b
}

// encodeOps writes one run per operation: length mixed with the
// insert/delete and fwd flags in a single varint (spec §6 "Operation
// encoding"), a zig-zag position delta from the previous run, and, for
// inserts, a content-chunk offset reference.
func encodeOps(ops []*Operation) []byte {
	var b []byte
	b = varint.EncodeU64(b, uint64(len(ops)))
	prevPos := 0
	contentOffset := 0
	for _, op := range ops {
		b = varint.EncodeU64(b, varint.Mix2Bit(uint64(op.Len()), op.Kind == Delete, op.Fwd))
		b = varint.EncodeI64(b, int64(op.Pos-prevPos))
		prevPos = op.Pos
		if op.Kind == Insert {
			b = varint.EncodeU64(b, uint64(contentOffset))
			contentOffset += len(op.Content)
		}
	}
	return b
}

// normalizeRanges sorts and merges overlapping/adjacent LVRanges so the
// slicing walk below never revisits or double-counts an LV.
func normalizeRanges(ranges []causalgraph.LVRange) []causalgraph.LVRange {
	if len(ranges) == 0 {
		return nil
	}
	cp := append([]causalgraph.LVRange(nil), ranges...)
	for i := 1; i < len(cp); i++ {
		for j := i; j > 0 && cp[j-1].Start > cp[j].Start; j-- {
			cp[j-1], cp[j] = cp[j], cp[j-1]
		}
	}
	out := cp[:1]
	for _, r := range cp[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

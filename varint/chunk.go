package varint

import (
	"bytes"
	"errors"
	"fmt"
)

// Magic is the fixed 8-byte header every wire-format file begins with
// (spec §6: `"DMNDm0"`-style header).
var Magic = [8]byte{'D', 'M', 'N', 'D', 'm', '0', 0, 0}

// Sentinel codec-level errors (spec §7).
var (
	ErrBadMagic        = errors.New("varint: bad magic header")
	ErrUnexpectedChunk = errors.New("varint: unexpected chunk type")
	ErrTruncatedChunk  = errors.New("varint: truncated chunk")
)

// ChunkType identifies the payload a chunk carries. The set is closed: an
// unrecognized type at the top level is an error, but a parent that is
// documented as extensible may skip unknown child chunks instead.
type ChunkType uint64

// ChunkWriter accumulates chunks into a byte buffer, writing the magic
// header on first use.
type ChunkWriter struct {
	buf         bytes.Buffer
	wroteHeader bool
}

// NewChunkWriter returns a writer ready to accept chunks.
func NewChunkWriter() *ChunkWriter {
	return &ChunkWriter{}
}

// WriteChunk appends a (type, length, payload) chunk, writing the magic
// header first if this is the first chunk written.
func (w *ChunkWriter) WriteChunk(typ ChunkType, payload []byte) {
	if !w.wroteHeader {
		w.buf.Write(Magic[:])
		w.wroteHeader = true
	}
	var hdr []byte
	hdr = EncodeU64(hdr, uint64(typ))
	hdr = EncodeU64(hdr, uint64(len(payload)))
	w.buf.Write(hdr)
	w.buf.Write(payload)
}

// Bytes returns the accumulated byte stream, including the magic header
// even if zero chunks were written.
func (w *ChunkWriter) Bytes() []byte {
	if !w.wroteHeader {
		return append([]byte(nil), Magic[:]...)
	}
	return w.buf.Bytes()
}

// Chunk is one decoded (type, payload) pair.
type Chunk struct {
	Type    ChunkType
	Payload []byte
}

// ChunkReader walks a chunked byte stream, validating the magic header on
// construction.
type ChunkReader struct {
	b []byte
}

// NewChunkReader validates the magic header and returns a reader
// positioned at the first chunk.
func NewChunkReader(b []byte) (*ChunkReader, error) {
	if len(b) < len(Magic) || !bytes.Equal(b[:len(Magic)], Magic[:]) {
		return nil, ErrBadMagic
	}
	return &ChunkReader{b: b[len(Magic):]}, nil
}

// Next returns the next chunk, or ok=false once the stream is exhausted.
func (r *ChunkReader) Next() (Chunk, bool, error) {
	if len(r.b) == 0 {
		return Chunk{}, false, nil
	}
	typ, n1, err := DecodeU64(r.b)
	if err != nil {
		return Chunk{}, false, fmt.Errorf("chunk type: %w", err)
	}
	r.b = r.b[n1:]
	length, n2, err := DecodeU64(r.b)
	if err != nil {
		return Chunk{}, false, fmt.Errorf("chunk length: %w", err)
	}
	r.b = r.b[n2:]
	if uint64(len(r.b)) < length {
		return Chunk{}, false, ErrTruncatedChunk
	}
	payload := r.b[:length]
	r.b = r.b[length:]
	return Chunk{Type: ChunkType(typ), Payload: payload}, true, nil
}

// All decodes every remaining chunk into a slice.
func (r *ChunkReader) All() ([]Chunk, error) {
	var out []Chunk
	for {
		c, ok, err := r.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, c)
	}
}

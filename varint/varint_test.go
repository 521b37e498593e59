package varint_test

import (
	"math"
	"testing"

	"github.com/cshekharsharma/causalcrdt/varint"
)

func TestVarint300EncodesToTwoBytes(t *testing.T) {
	b := varint.EncodeU32(nil, 300)
	if len(b) != 2 || b[0] != 0xAC || b[1] != 0x02 {
		t.Fatalf("EncodeU32(300) = % X, want AC 02", b)
	}
	v, n, err := varint.DecodeU32(b)
	if err != nil || v != 300 || n != 2 {
		t.Fatalf("DecodeU32(% X) = (%d, %d, %v), want (300, 2, nil)", b, v, n, err)
	}
}

func TestVarintZeroEncodesToOneZeroByte(t *testing.T) {
	b := varint.EncodeU64(nil, 0)
	if len(b) != 1 || b[0] != 0x00 {
		t.Fatalf("EncodeU64(0) = % X, want 00", b)
	}
}

func TestVarintMaxU64EncodesToTenBytes(t *testing.T) {
	b := varint.EncodeU64(nil, math.MaxUint64)
	if len(b) != varint.MaxU64Bytes {
		t.Fatalf("EncodeU64(MaxUint64) length = %d, want %d", len(b), varint.MaxU64Bytes)
	}
	v, n, err := varint.DecodeU64(b)
	if err != nil || v != math.MaxUint64 || n != varint.MaxU64Bytes {
		t.Fatalf("DecodeU64(max) = (%d, %d, %v)", v, n, err)
	}
}

func TestVarintTenthByteMustOnlySetLowBit(t *testing.T) {
	b := varint.EncodeU64(nil, math.MaxUint64)
	b[9] = 0x03 // two bits set in the 10th byte: would overflow 64 bits
	if _, _, err := varint.DecodeU64(b); err == nil {
		t.Fatalf("expected ErrInvalidVarint for an overflowing 10th byte")
	}
}

func TestVarintRoundTripBoundaryValues(t *testing.T) {
	for _, n := range []uint64{0, 1, 126, 127, 128, 129, 16383, 16384, 16385, math.MaxUint32, math.MaxUint64} {
		b := varint.EncodeU64(nil, n)
		v, consumed, err := varint.DecodeU64(b)
		if err != nil {
			t.Fatalf("DecodeU64(EncodeU64(%d)): %v", n, err)
		}
		if v != n || consumed != len(b) {
			t.Fatalf("round trip for %d: got (%d, %d), want (%d, %d)", n, v, consumed, n, len(b))
		}
	}
}

func TestZigZagRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 63, -64, 1000000, -1000000, math.MaxInt64, math.MinInt64} {
		u := varint.ZigZagEncode(n)
		if got := varint.ZigZagDecode(u); got != n {
			t.Fatalf("ZigZagDecode(ZigZagEncode(%d)) = %d", n, got)
		}
	}
}

func TestSignedVarintRoundTrip(t *testing.T) {
	for _, n := range []int64{0, -5, 5, -300, 300} {
		b := varint.EncodeI64(nil, n)
		v, _, err := varint.DecodeI64(b)
		if err != nil || v != n {
			t.Fatalf("signed round trip for %d: got (%d, %v)", n, v, err)
		}
	}
}

func TestMixBitRoundTrip(t *testing.T) {
	for _, flag := range []bool{true, false} {
		u := varint.MixBit(42, flag)
		v, f := varint.UnmixBit(u)
		if v != 42 || f != flag {
			t.Fatalf("MixBit/UnmixBit round trip: got (%d, %v), want (42, %v)", v, f, flag)
		}
	}
}

func TestMix2BitRoundTrip(t *testing.T) {
	for _, a := range []bool{true, false} {
		for _, b := range []bool{true, false} {
			u := varint.Mix2Bit(7, a, b)
			v, ga, gb := varint.Unmix2Bit(u)
			if v != 7 || ga != a || gb != b {
				t.Fatalf("Mix2Bit(7, %v, %v) round trip got (%d, %v, %v)", a, b, v, ga, gb)
			}
		}
	}
}

func TestChunkWriterReaderRoundTrip(t *testing.T) {
	w := varint.NewChunkWriter()
	w.WriteChunk(1, []byte("hello"))
	w.WriteChunk(2, []byte{})
	w.WriteChunk(3, []byte("world"))

	r, err := varint.NewChunkReader(w.Bytes())
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	chunks, err := r.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if string(chunks[0].Payload) != "hello" || string(chunks[2].Payload) != "world" {
		t.Fatalf("unexpected chunk payloads: %+v", chunks)
	}
}

func TestChunkReaderRejectsBadMagic(t *testing.T) {
	if _, err := varint.NewChunkReader([]byte("not a valid header!")); err != varint.ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestCompressPayloadRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	compressed, err := varint.CompressPayload(original)
	if err != nil {
		t.Fatalf("CompressPayload: %v", err)
	}
	restored, err := varint.DecompressPayload(compressed)
	if err != nil {
		t.Fatalf("DecompressPayload: %v", err)
	}
	if string(restored) != string(original) {
		t.Fatalf("round trip mismatch: got %q", restored)
	}
}

func TestChunkReaderRejectsTruncatedChunk(t *testing.T) {
	w := varint.NewChunkWriter()
	w.WriteChunk(1, []byte("hello"))
	b := w.Bytes()
	truncated := b[:len(b)-2]

	r, err := varint.NewChunkReader(truncated)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	if _, _, err := r.Next(); err != varint.ErrTruncatedChunk {
		t.Fatalf("expected ErrTruncatedChunk, got %v", err)
	}
}

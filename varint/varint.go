// Package varint implements the LEB128-style variable-length integer codec
// and the chunked container framing used by the snapshot and patch wire
// formats (spec §4.2, §6).
package varint

import "errors"

// ErrInvalidVarint is returned when a byte sequence cannot be a valid
// varint: the run exceeds the maximum byte count for the target width, or
// the continuation byte carries more than one bit above the 64-bit value
// range.
var ErrInvalidVarint = errors.New("varint: invalid encoding")

// MaxU64Bytes is the longest a u64 varint can legally be.
const MaxU64Bytes = 10

// MaxU32Bytes is the longest a u32 varint can legally be.
const MaxU32Bytes = 5

// EncodeU64 appends the LEB128 encoding of v to dst and returns the result.
func EncodeU64(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// EncodeU32 appends the LEB128 encoding of v to dst and returns the result.
func EncodeU32(dst []byte, v uint32) []byte {
	return EncodeU64(dst, uint64(v))
}

// DecodeU64 decodes a u64 varint from the front of b, returning the value
// and the number of bytes consumed.
//
// A fast path handles the common case of a 1- or 2-byte encoding directly;
// everything else falls through to the generic shift-and-accumulate loop.
// The 10th continuation byte (if present) may only set its lowest bit —
// anything else means the encoded value would overflow 64 bits.
func DecodeU64(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrInvalidVarint
	}
	if len(b) >= 2 && b[0] < 0x80 {
		return uint64(b[0]), 1, nil
	}
	if len(b) >= 2 && b[1] < 0x80 {
		return uint64(b[0]&0x7f) | uint64(b[1])<<7, 2, nil
	}

	var out uint64
	var shift uint
	for i := 0; i < len(b); i++ {
		if i == MaxU64Bytes-1 {
			if b[i] > 1 {
				return 0, 0, ErrInvalidVarint
			}
			out |= uint64(b[i]) << shift
			return out, i + 1, nil
		}
		out |= uint64(b[i]&0x7f) << shift
		if b[i] < 0x80 {
			return out, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrInvalidVarint
}

// DecodeU32 decodes a u32 varint, rejecting values that don't fit in 32
// bits even if the byte stream itself would decode as a valid u64.
func DecodeU32(b []byte) (uint32, int, error) {
	v, n, err := DecodeU64(b)
	if err != nil {
		return 0, 0, err
	}
	if v > 0xffffffff {
		return 0, 0, ErrInvalidVarint
	}
	return uint32(v), n, nil
}

// ZigZagEncode maps a signed int64 to an unsigned value so small-magnitude
// negatives stay small after varint encoding: (n << 1) ^ (n >> 63).
func ZigZagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// EncodeI64 appends the zig-zag varint encoding of n to dst.
func EncodeI64(dst []byte, n int64) []byte {
	return EncodeU64(dst, ZigZagEncode(n))
}

// DecodeI64 decodes a zig-zag varint from the front of b.
func DecodeI64(b []byte) (int64, int, error) {
	u, n, err := DecodeU64(b)
	if err != nil {
		return 0, 0, err
	}
	return ZigZagDecode(u), n, nil
}

// MixBit packs a single boolean into the low bit of v so that one varint
// carries (value, flag) — used for the insert/delete and fwd flags in the
// operation encoding (spec §6).
func MixBit(v uint64, flag bool) uint64 {
	u := v << 1
	if flag {
		u |= 1
	}
	return u
}

// UnmixBit is the inverse of MixBit.
func UnmixBit(u uint64) (v uint64, flag bool) {
	return u >> 1, u&1 != 0
}

// Mix2Bit packs two booleans into the low two bits of v.
func Mix2Bit(v uint64, a, b bool) uint64 {
	u := v << 2
	if a {
		u |= 1
	}
	if b {
		u |= 2
	}
	return u
}

// Unmix2Bit is the inverse of Mix2Bit.
func Unmix2Bit(u uint64) (v uint64, a, b bool) {
	return u >> 2, u&1 != 0, u&2 != 0
}

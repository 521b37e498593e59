package varint

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// CompressPayload runs b through DEFLATE, used by the oplog encoder to
// shrink the content chunk (the inserted-text payload, which is usually
// the most compressible part of a snapshot) when EncodeOptions.Compress is
// set. klauspost/compress/flate is API-compatible with the standard
// library's compress/flate but faster, which is why the rest of the
// retrieval pack reaches for it instead (javanhut/Ivaldi-vcs,
// iotaledger/trie.go) wherever a snapshot format needs shrinking.
func CompressPayload(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressPayload is the inverse of CompressPayload.
func DecompressPayload(b []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	return io.ReadAll(r)
}

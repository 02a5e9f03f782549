package compress

import "github.com/klauspost/compress/s2"

// S2Compressor compresses values payloads with S2, the middle ground
// between LZ4's speed and Zstd's ratio. A good default when blobs are
// written and read on the same machine.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses a values payload using S2 block compression.
//
// S2 blocks carry their decoded length, so Decompress needs no size hint
// from the blob header.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress restores an S2-compressed values payload.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

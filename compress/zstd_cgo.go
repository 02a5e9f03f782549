//go:build gozstd

package compress

import (
	"github.com/valyala/gozstd"
)

// Compress compresses a values payload with libzstd at level 3, the sweet
// spot for the zero-heavy buffers dense packing produces.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress restores a Zstd-compressed values payload through libzstd.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}

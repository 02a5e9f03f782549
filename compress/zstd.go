package compress

// ZstdCompressor provides Zstandard compression for tensor value payloads.
//
// This compressor is designed for scenarios where compression ratio is more
// important than compression speed, making it ideal for:
//   - Cold storage and archival of packed tensors
//   - Network transmission where bandwidth is limited
//   - Mostly-dense payloads with long zero runs
//
// The implementation is selected at build time: the default build uses the
// pure-Go klauspost/compress encoder; building with the "gozstd" tag uses
// the cgo libzstd bindings instead.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

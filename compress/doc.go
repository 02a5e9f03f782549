// Package compress provides compression and decompression codecs for
// serialized tensor value payloads.
//
// Compression is applied at the payload level after packing: the packer
// materializes the values array, and the storage blob writer optionally runs
// it through one of the codecs here before writing the values section.
//
// Supported algorithms:
//   - None: No compression (fastest, largest)
//   - Zstd: Excellent compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fastest compression, moderate ratio
//
// Dense value payloads contain explicit zeros for absent coordinates and
// Fixed payloads repeat the last real value of each padded segment (zeros
// for empty segments), so both typically compress well; purely Sparse
// payloads store only present values and compress according to the value
// distribution.
//
// The Zstd codec has two implementations selected at build time: the default
// pure-Go implementation (klauspost/compress) and a cgo implementation
// (valyala/gozstd) enabled with the "gozstd" build tag.
package compress

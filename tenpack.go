// Package tenpack packs sparse coordinate tensors into compact,
// hierarchical, per-mode-encoded in-memory representations usable by
// generated kernels.
//
// A tensor enters as a stream of sorted coordinate-value records (COO form)
// together with a format: an ordered list of per-mode encodings drawn from
// Dense, Sparse and Fixed. The packer materializes one index group per mode
// — prefix-sum pos arrays and child idx arrays at the integer widths the
// format requests — and a contiguous value array laid out in depth-first
// traversal order. The result is held in a storage container that can be
// inspected, enumerated, and serialized to a compact binary blob.
//
// # Basic Usage
//
// Reading, packing and inspecting a tensor:
//
//	import "github.com/arloliu/tenpack"
//
//	// Read a .tns file and pack it as CSR
//	tensor, _ := tenpack.ReadTNSFile("matrix.tns", format.CSR(), coo.WithPacking())
//	store := tensor.Storage()
//
//	// Inspect the packed arrays
//	fmt.Println(store)
//
// Assembling a tensor in memory:
//
//	tensor := coo.New(3, 3)
//	tensor.Insert([]int{0, 0}, 1.0)
//	tensor.Insert([]int{0, 2}, 2.0)
//	tensor.Insert([]int{2, 1}, 3.0)
//	store, _ := tensor.Pack(format.DCSR())
//
// Serializing packed storage:
//
//	blob, _ := store.Encode(storage.WithCompression(format.CompressionZstd))
//	restored, _ := tenpack.DecodeStorage(blob)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the coo, pack
// and storage packages, simplifying the most common use cases. For advanced
// usage and fine-grained control, use those packages directly.
package tenpack

import (
	"io"

	"github.com/arloliu/tenpack/coo"
	"github.com/arloliu/tenpack/format"
	"github.com/arloliu/tenpack/internal/hash"
	"github.com/arloliu/tenpack/storage"
)

// ReadTNS reads a coordinate tensor from a .tns stream.
//
// The order is inferred from the first record and the dimensions from the
// per-mode maximum coordinate seen. Pass coo.WithPacking() to pack the
// tensor under the given format once all records are loaded.
//
// Parameters:
//   - r: The tensor stream (borrowed, not closed)
//   - f: The format to pack under when packing is requested
//   - opts: Optional configuration functions (see coo.ReadOption)
//
// Returns:
//   - *coo.Tensor: The loaded tensor.
//   - error: A parse, coordinate overflow, or packing error.
func ReadTNS(r io.Reader, f format.Format, opts ...coo.ReadOption) (*coo.Tensor, error) {
	return coo.ReadTNS(r, f, opts...)
}

// ReadTNSFile reads a coordinate tensor from a .tns file.
//
// The file is opened and closed exactly once, released on all exit paths.
func ReadTNSFile(path string, f format.Format, opts ...coo.ReadOption) (*coo.Tensor, error) {
	return coo.ReadTNSFile(path, f, opts...)
}

// WriteTNS writes the tensor's records to a .tns stream in stored order.
func WriteTNS(w io.Writer, t *coo.Tensor) error {
	return coo.WriteTNS(w, t)
}

// WriteTNSFile writes the tensor to a .tns file, creating or truncating it.
func WriteTNSFile(path string, t *coo.Tensor) error {
	return coo.WriteTNSFile(path, t)
}

// Pack materializes the tensor under the given format.
//
// This is shorthand for tensor.Pack(f); the records are sorted first if
// needed and the resulting storage is retained on the tensor.
func Pack(t *coo.Tensor, f format.Format) (*storage.Storage, error) {
	return t.Pack(f)
}

// DecodeStorage reconstructs packed storage from a blob produced by
// storage.Encode.
func DecodeStorage(data []byte) (*storage.Storage, error) {
	return storage.Decode(data)
}

// TensorID converts a tensor name string to its 64-bit hash identifier.
//
// Tenpack uses xxHash64 to convert tensor names to fixed-size IDs carried in
// the storage blob header, so a blob can be matched back to its tensor
// without storing the name itself.
//
// The hash function guarantees:
//   - Deterministic: same input always produces same output
//   - Collision-resistant: extremely low probability of collisions
//   - Fast: ~1-2 ns per hash on modern CPUs
func TensorID(name string) uint64 {
	return hash.ID(name)
}

// Package coo provides the coordinate-list tensor builder and the text I/O
// that round-trips coordinate tensors to and from .tns files.
//
// A Tensor accumulates (coordinate, value) records in structure-of-arrays
// form: one int32 buffer per mode plus a float64 value buffer. Records are
// inserted in any order and sorted lexicographically before packing. The
// packer requires de-duplicated input; inserting the same coordinate tuple
// twice is the caller's responsibility to avoid.
package coo

import (
	"fmt"
	"iter"
	"math"
	"sort"

	"github.com/arloliu/tenpack/endian"
	"github.com/arloliu/tenpack/errs"
	"github.com/arloliu/tenpack/format"
	"github.com/arloliu/tenpack/index"
	"github.com/arloliu/tenpack/pack"
	"github.com/arloliu/tenpack/storage"
)

// Tensor is a coordinate-list tensor under assembly.
//
// Note: A Tensor is NOT thread-safe. Each tensor should be used by a single
// goroutine at a time.
type Tensor struct {
	name   string
	dims   []int
	coords [][]int32
	vals   []float64
	packed *storage.Storage
	sorted bool
}

// New creates an empty coordinate tensor with the given dimensions.
//
// A call with no dimensions creates the empty order-0 tensor, which is what
// reading an empty stream produces.
func New(dims ...int) *Tensor {
	t := &Tensor{
		dims:   make([]int, len(dims)),
		coords: make([][]int32, len(dims)),
		sorted: true,
	}
	copy(t.dims, dims)

	return t
}

// SetName sets the tensor's name, carried into the storage blob header as an
// xxHash64 ID.
func (t *Tensor) SetName(name string) {
	t.name = name
}

// Name returns the tensor's name.
func (t *Tensor) Name() string {
	return t.name
}

// Order returns the number of modes.
func (t *Tensor) Order() int {
	return len(t.dims)
}

// Dimensions returns a copy of the per-mode dimensions.
func (t *Tensor) Dimensions() []int {
	dims := make([]int, len(t.dims))
	copy(dims, t.dims)

	return dims
}

// Len returns the number of inserted records.
func (t *Tensor) Len() int {
	return len(t.vals)
}

// Reserve grows the coordinate and value buffers to hold n more records
// without reallocating.
func (t *Tensor) Reserve(n int) {
	for i := range t.coords {
		if cap(t.coords[i])-len(t.coords[i]) < n {
			grown := make([]int32, len(t.coords[i]), len(t.coords[i])+n)
			copy(grown, t.coords[i])
			t.coords[i] = grown
		}
	}
	if cap(t.vals)-len(t.vals) < n {
		grown := make([]float64, len(t.vals), len(t.vals)+n)
		copy(grown, t.vals)
		t.vals = grown
	}
}

// Insert appends a record with the given zero-based coordinate tuple.
//
// Returns errs.ErrFormatMismatch if the tuple arity differs from the tensor
// order, and errs.ErrCoordinateOutOfRange if any coordinate falls outside
// [0, dimension).
func (t *Tensor) Insert(coord []int, val float64) error {
	if len(coord) != len(t.dims) {
		return fmt.Errorf("%w: coordinate has %d modes, tensor has %d",
			errs.ErrFormatMismatch, len(coord), len(t.dims))
	}
	for i, c := range coord {
		if c < 0 || c >= t.dims[i] {
			return fmt.Errorf("%w: mode %d coordinate %d outside [0,%d)",
				errs.ErrCoordinateOutOfRange, i, c, t.dims[i])
		}
	}
	for i, c := range coord {
		t.coords[i] = append(t.coords[i], int32(c))
	}
	t.vals = append(t.vals, val)
	t.sorted = len(t.vals) == 1
	t.packed = nil

	return nil
}

// Sort orders the records lexicographically by coordinate tuple.
func (t *Tensor) Sort() {
	if t.sorted {
		return
	}
	sort.Sort((*tensorSorter)(t))
	t.sorted = true
}

// All returns the records in stored order.
//
// The yielded coordinate slice is reused between iterations; callers must
// copy it to retain it.
func (t *Tensor) All() iter.Seq2[[]int, float64] {
	return func(yield func([]int, float64) bool) {
		coord := make([]int, len(t.dims))
		for k, val := range t.vals {
			for i := range t.coords {
				coord[i] = int(t.coords[i][k])
			}
			if !yield(coord, val) {
				return
			}
		}
	}
}

// Pack materializes the tensor under the given format and retains the
// resulting storage, which Storage returns until the next Insert.
//
// The records are sorted first if needed. Packing does not consume the
// coordinate buffers; the tensor remains usable afterwards.
func (t *Tensor) Pack(f format.Format) (*storage.Storage, error) {
	t.Sort()

	n := len(t.vals)
	coords := make([]*index.Vector, len(t.dims))
	for i := range t.dims {
		// Sparse and Fixed coordinate vectors take the idx type of their
		// mode so the packer can move unique entries into the idx arrays
		// without conversion. A Dense mode never materializes its
		// coordinates, so its idx type does not constrain them. An order
		// mismatch is left for the packer to report.
		typ := format.DefaultIndexType
		if i < f.Order() && f.Mode(i).Kind != format.Dense {
			typ = f.Mode(i).IdxType
		}
		vec := index.NewVectorWithCapacity(typ, n)
		for _, c := range t.coords[i] {
			if err := vec.Push(int64(c)); err != nil {
				return nil, fmt.Errorf("mode %d coordinates: %w", i, err)
			}
		}
		coords[i] = vec
	}

	engine := endian.GetLittleEndianEngine()
	vals := make([]byte, 0, n*8)
	for _, v := range t.vals {
		vals = engine.AppendUint64(vals, math.Float64bits(v))
	}

	packed, err := pack.Pack(t.dims, f, coords, vals, n, format.TypeFloat64)
	if err != nil {
		return nil, err
	}
	if t.name != "" {
		packed.SetTensorName(t.name)
	}
	t.packed = packed

	return packed, nil
}

// Storage returns the storage produced by the last Pack, or nil if the
// tensor has not been packed since its last mutation.
func (t *Tensor) Storage() *storage.Storage {
	return t.packed
}

// tensorSorter co-sorts the coordinate buffers and values lexicographically
// by coordinate tuple.
type tensorSorter Tensor

func (s *tensorSorter) Len() int {
	return len(s.vals)
}

func (s *tensorSorter) Less(a, b int) bool {
	for _, mode := range s.coords {
		if mode[a] != mode[b] {
			return mode[a] < mode[b]
		}
	}

	return false
}

func (s *tensorSorter) Swap(a, b int) {
	for _, mode := range s.coords {
		mode[a], mode[b] = mode[b], mode[a]
	}
	s.vals[a], s.vals[b] = s.vals[b], s.vals[a]
}

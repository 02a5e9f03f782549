// Package storage holds the packed form of a tensor: the format it was
// packed under, one materialized index group per mode, and the contiguous
// value array laid out in depth-first traversal order.
//
// A Storage is populated by the packer in one shot and read-only from the
// packer's perspective afterwards; downstream code may replace buffers
// atomically. Serialization to a self-describing binary blob with optional
// compression lives alongside in this package.
package storage

import (
	"fmt"
	"io"
	"iter"
	"math"
	"strings"

	"github.com/arloliu/tenpack/endian"
	"github.com/arloliu/tenpack/errs"
	"github.com/arloliu/tenpack/format"
	"github.com/arloliu/tenpack/index"
	"github.com/arloliu/tenpack/internal/hash"
)

// ModeIndex is the materialized index group of a single mode.
//
// Dense modes carry no arrays (both vectors nil); Sparse modes carry the
// segment-boundary prefix sums in Pos and the child indices in Idx; Fixed
// modes carry the fan-out as Pos's sole entry and the padded child indices
// in Idx.
type ModeIndex struct {
	Pos *index.Vector
	Idx *index.Vector
}

// ModeSize is the derived array lengths of a single mode.
type ModeSize struct {
	Pos int
	Idx int
}

// Size is the derived size of a storage: per-mode index array lengths and
// the value count.
type Size struct {
	Modes  []ModeSize
	Values int
}

// Storage is the packed form of a tensor.
//
// The zero value is undefined; use New. A Storage owns its index group and
// values buffer.
type Storage struct {
	fmt     format.Format
	dims    []int
	modes   []ModeIndex
	values  []byte
	engine  endian.EndianEngine
	id      uint64
	vtype   format.ValueType
	defined bool
}

// New creates an empty storage for the given format, dimensions and value
// type, ready to be populated by the packer.
func New(f format.Format, dims []int, vtype format.ValueType) *Storage {
	s := &Storage{
		fmt:     f,
		dims:    make([]int, len(dims)),
		modes:   make([]ModeIndex, f.Order()),
		engine:  endian.GetLittleEndianEngine(),
		vtype:   vtype,
		defined: true,
	}
	copy(s.dims, dims)

	return s
}

// Defined reports whether the storage has been constructed from a format.
func (s *Storage) Defined() bool {
	return s != nil && s.defined
}

// Format returns the format the tensor was packed under.
func (s *Storage) Format() format.Format {
	return s.fmt
}

// Dimensions returns a copy of the per-mode dimensions.
func (s *Storage) Dimensions() []int {
	dims := make([]int, len(s.dims))
	copy(dims, s.dims)

	return dims
}

// ValueType returns the value datatype.
func (s *Storage) ValueType() format.ValueType {
	return s.vtype
}

// ID returns the tensor's xxHash64 identifier, 0 when unnamed.
func (s *Storage) ID() uint64 {
	return s.id
}

// SetTensorName sets the tensor identifier to the xxHash64 of name.
func (s *Storage) SetTensorName(name string) {
	s.id = hash.ID(name)
}

// SetIndex replaces the whole per-mode index group.
func (s *Storage) SetIndex(modes []ModeIndex) {
	s.modes = modes
}

// SetModeIndex replaces the index group of a single mode.
func (s *Storage) SetModeIndex(i int, mi ModeIndex) {
	s.modes[i] = mi
}

// Index returns the index group of mode i.
func (s *Storage) Index(i int) ModeIndex {
	return s.modes[i]
}

// SetValues replaces the values buffer.
func (s *Storage) SetValues(values []byte) {
	s.values = values
}

// Values returns the raw values buffer.
func (s *Storage) Values() []byte {
	return s.values
}

// NumValues returns the number of values in the buffer.
func (s *Storage) NumValues() int {
	return len(s.values) / s.vtype.NumBytes()
}

// Value returns the k-th value as a float64.
func (s *Storage) Value(k int) float64 {
	switch s.vtype {
	case format.TypeFloat64:
		return math.Float64frombits(s.engine.Uint64(s.values[k*8 : k*8+8]))
	case format.TypeFloat32:
		return float64(math.Float32frombits(s.engine.Uint32(s.values[k*4 : k*4+4])))
	default:
		panic(fmt.Sprintf("storage: invalid value type %d", s.vtype))
	}
}

// Size derives the per-mode index array lengths and value count from the
// materialized index group.
//
// Returns errs.ErrUnsupported when the format contains a Fixed mode; the
// padded arrays of a Fixed level have no parent-count-derived size.
func (s *Storage) Size() (Size, error) {
	if !s.Defined() {
		return Size{}, errs.ErrStorageUndefined
	}

	size := Size{Modes: make([]ModeSize, s.fmt.Order())}
	prev := 1
	for i := range s.fmt.Order() {
		switch s.fmt.Mode(i).Kind {
		case format.Dense:
			size.Modes[i] = ModeSize{Pos: 1, Idx: 0}
			prev *= s.dims[i]
		case format.Sparse:
			segEnd := int(s.modes[i].Pos.Get(prev))
			size.Modes[i] = ModeSize{Pos: prev + 1, Idx: segEnd}
			prev = segEnd
		case format.Fixed:
			return Size{}, fmt.Errorf("%w: size of a Fixed mode", errs.ErrUnsupported)
		}
	}
	size.Values = prev

	return size, nil
}

// All enumerates the materialized tree depth-first, yielding every stored
// leaf as its zero-based coordinate tuple and value. Dense levels enumerate
// every position, so explicit zeros are yielded for coordinates the
// original stream did not contain.
//
// The yielded coordinate slice is reused between iterations; callers must
// copy it to retain it.
func (s *Storage) All() iter.Seq2[[]int, float64] {
	return func(yield func([]int, float64) bool) {
		if !s.Defined() {
			return
		}

		order := s.fmt.Order()
		coord := make([]int, order)
		visits := make([]int, order)
		vi := 0

		var walk func(level int) bool
		walk = func(level int) bool {
			if level == order {
				ok := yield(coord, s.Value(vi))
				vi++

				return ok
			}

			switch s.fmt.Mode(level).Kind {
			case format.Dense:
				for j := range s.dims[level] {
					coord[level] = j
					if !walk(level + 1) {
						return false
					}
				}
			case format.Sparse:
				mi := s.modes[level]
				parent := visits[level]
				visits[level]++
				if parent+1 >= mi.Pos.Len() {
					return true // unvisited parent of an empty tensor
				}
				for p := mi.Pos.Get(parent); p < mi.Pos.Get(parent + 1); p++ {
					coord[level] = int(mi.Idx.Get(int(p)))
					if !walk(level + 1) {
						return false
					}
				}
			case format.Fixed:
				mi := s.modes[level]
				fanOut := int(mi.Pos.Get(0))
				parent := visits[level]
				visits[level]++
				for p := parent * fanOut; p < (parent+1)*fanOut; p++ {
					if p >= mi.Idx.Len() {
						return true
					}
					coord[level] = int(mi.Idx.Get(p))
					if !walk(level + 1) {
						return false
					}
				}
			}

			return true
		}
		walk(0)
	}
}

// WriteTo writes a human-readable dump of the index arrays and values for
// diagnostics.
func (s *Storage) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

// String renders the storage's index arrays and values for diagnostics.
func (s *Storage) String() string {
	var sb strings.Builder
	for i := range s.fmt.Order() {
		mode := s.fmt.Mode(i)
		fmt.Fprintf(&sb, "L%d (%s):\n", i, mode.Kind)
		switch mode.Kind {
		case format.Dense:
			fmt.Fprintf(&sb, "  size: %d\n", s.dims[i])
		case format.Sparse, format.Fixed:
			fmt.Fprintf(&sb, "  pos: %s\n", s.modes[i].Pos)
			fmt.Fprintf(&sb, "  idx: %s\n", s.modes[i].Idx)
		}
	}
	sb.WriteString("vals: {")
	for k := range s.NumValues() {
		if k > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g", s.Value(k))
	}
	sb.WriteString("}")

	return sb.String()
}

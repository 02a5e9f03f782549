// Package index provides the typed index vector backing the per-mode pos
// and idx arrays of a packed tensor.
//
// A Vector is a growable contiguous buffer of integers whose width is pinned
// at construction to one of the eight supported index types. Downstream
// kernel generators need per-mode bit widths to match the indexing
// arithmetic they emit, so the width is part of the vector's identity rather
// than a property of individual elements: a push that does not fit the
// chosen width is an error, never a silent truncation.
package index

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/tenpack/endian"
	"github.com/arloliu/tenpack/errs"
	"github.com/arloliu/tenpack/format"
)

// Vector is a growable buffer of fixed-width integers.
//
// Elements are stored little-endian in a contiguous byte buffer so Bytes can
// hand the backing array to the storage blob writer without a copy.
// Comparisons and accessors operate on the stored integer value, not the
// byte pattern.
//
// Note: A Vector is NOT thread-safe. Each vector should be used by a single
// goroutine at a time.
type Vector struct {
	buf    []byte
	engine endian.EndianEngine
	typ    format.IndexType
	width  int
}

// NewVector creates an empty vector of the given index type.
func NewVector(typ format.IndexType) *Vector {
	return &Vector{
		typ:    typ,
		width:  typ.NumBytes(),
		engine: endian.GetLittleEndianEngine(),
	}
}

// NewVectorWithCapacity creates an empty vector with room for n elements.
func NewVectorWithCapacity(typ format.IndexType, n int) *Vector {
	v := NewVector(typ)
	v.buf = make([]byte, 0, n*v.width)

	return v
}

// NewVectorFromBytes creates a vector of the given type over a copy of the
// given element bytes. The byte length must be a multiple of the type width.
func NewVectorFromBytes(typ format.IndexType, data []byte) (*Vector, error) {
	v := NewVector(typ)
	if len(data)%v.width != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %s width",
			errs.ErrInvalidBlobSize, len(data), typ)
	}
	v.buf = append(v.buf, data...)

	return v, nil
}

// Type returns the vector's index type.
func (v *Vector) Type() format.IndexType {
	return v.typ
}

// ByteWidth returns the byte width of a single element.
func (v *Vector) ByteWidth() int {
	return v.width
}

// Len returns the number of elements in the vector.
func (v *Vector) Len() int {
	return len(v.buf) / v.width
}

// Clear removes all elements but retains the allocated memory for reuse.
func (v *Vector) Clear() {
	v.buf = v.buf[:0]
}

// Bytes returns the vector's backing element bytes.
//
// The returned slice is valid until the next Push and must not be modified
// by the caller.
func (v *Vector) Bytes() []byte {
	return v.buf
}

// Push appends a value.
//
// Returns errs.ErrIndexOverflow when val does not fit the vector's type.
func (v *Vector) Push(val int64) error {
	switch v.typ {
	case format.TypeInt8:
		if val < math.MinInt8 || val > math.MaxInt8 {
			return v.overflow(val)
		}
		v.buf = append(v.buf, byte(int8(val)))
	case format.TypeInt16:
		if val < math.MinInt16 || val > math.MaxInt16 {
			return v.overflow(val)
		}
		v.buf = v.engine.AppendUint16(v.buf, uint16(int16(val)))
	case format.TypeInt32:
		if val < math.MinInt32 || val > math.MaxInt32 {
			return v.overflow(val)
		}
		v.buf = v.engine.AppendUint32(v.buf, uint32(int32(val)))
	case format.TypeInt64:
		v.buf = v.engine.AppendUint64(v.buf, uint64(val))
	case format.TypeUint8:
		if val < 0 || val > math.MaxUint8 {
			return v.overflow(val)
		}
		v.buf = append(v.buf, byte(val))
	case format.TypeUint16:
		if val < 0 || val > math.MaxUint16 {
			return v.overflow(val)
		}
		v.buf = v.engine.AppendUint16(v.buf, uint16(val))
	case format.TypeUint32:
		if val < 0 || val > math.MaxUint32 {
			return v.overflow(val)
		}
		v.buf = v.engine.AppendUint32(v.buf, uint32(val))
	case format.TypeUint64:
		if val < 0 {
			return v.overflow(val)
		}
		v.buf = v.engine.AppendUint64(v.buf, uint64(val))
	default:
		return fmt.Errorf("%w: %d", errs.ErrInvalidIndexType, v.typ)
	}

	return nil
}

// PushRange appends every element of other, converting between widths.
//
// The vectors' types need not match; a source value that does not fit this
// vector's type fails with errs.ErrIndexOverflow, leaving the elements
// appended so far in place.
func (v *Vector) PushRange(other *Vector) error {
	n := other.Len()
	v.grow(n)
	for i := range n {
		if err := v.Push(other.Get(i)); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the element at position i.
//
// Panics if i is out of bounds, like a slice access.
func (v *Vector) Get(i int) int64 {
	off := i * v.width
	switch v.typ {
	case format.TypeInt8:
		return int64(int8(v.buf[off]))
	case format.TypeInt16:
		return int64(int16(v.engine.Uint16(v.buf[off : off+2])))
	case format.TypeInt32:
		return int64(int32(v.engine.Uint32(v.buf[off : off+4])))
	case format.TypeInt64:
		return int64(v.engine.Uint64(v.buf[off : off+8]))
	case format.TypeUint8:
		return int64(v.buf[off])
	case format.TypeUint16:
		return int64(v.engine.Uint16(v.buf[off : off+2]))
	case format.TypeUint32:
		return int64(v.engine.Uint32(v.buf[off : off+4]))
	case format.TypeUint64:
		return int64(v.engine.Uint64(v.buf[off : off+8]))
	default:
		panic(fmt.Sprintf("index: invalid vector type %d", v.typ))
	}
}

// Last returns the final element.
//
// Panics if the vector is empty.
func (v *Vector) Last() int64 {
	return v.Get(v.Len() - 1)
}

// Equal reports whether two vectors hold the same integer values, regardless
// of their element types.
func (v *Vector) Equal(other *Vector) bool {
	n := v.Len()
	if n != other.Len() {
		return false
	}
	for i := range n {
		if v.Get(i) != other.Get(i) {
			return false
		}
	}

	return true
}

// Values returns the elements as an int64 slice.
func (v *Vector) Values() []int64 {
	vals := make([]int64, v.Len())
	for i := range vals {
		vals[i] = v.Get(i)
	}

	return vals
}

// String renders the elements as {v0, v1, ...} for diagnostics.
func (v *Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := range v.Len() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", v.Get(i))
	}
	sb.WriteByte('}')

	return sb.String()
}

// grow reserves space for n more elements.
func (v *Vector) grow(n int) {
	need := n * v.width
	if cap(v.buf)-len(v.buf) >= need {
		return
	}
	newBuf := make([]byte, len(v.buf), len(v.buf)+need)
	copy(newBuf, v.buf)
	v.buf = newBuf
}

func (v *Vector) overflow(val int64) error {
	return fmt.Errorf("%w: %d does not fit %s", errs.ErrIndexOverflow, val, v.typ)
}

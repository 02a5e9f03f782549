// Package pack transforms a sorted coordinate stream into the per-mode
// index arrays and contiguous value array described by a format.
//
// Packing is recursive across modes: each level of the recursion consumes
// one mode of the format, discovers its segment boundaries by scanning the
// sorted coordinates, emits the index arrays the mode's encoding requires,
// and recurses into each child segment. The value array is written in the
// depth-first order induced by that traversal, so a value's byte position
// equals its index path interpreted under the format.
//
// Fixed modes need a whole-tensor analysis pass before packing starts: the
// maximum fan-out at the fixed level is computed up front, stored as the
// sole pos entry, and every segment is padded to that width during the
// traversal.
package pack

import (
	"fmt"

	"github.com/arloliu/tenpack/errs"
	"github.com/arloliu/tenpack/format"
	"github.com/arloliu/tenpack/index"
	"github.com/arloliu/tenpack/internal/pool"
	"github.com/arloliu/tenpack/storage"
)

// maxScratchPrealloc caps the upfront scratch buffer reservation. Tensors
// whose dense volume exceeds this still pack; the buffer grows on demand.
const maxScratchPrealloc = 1 << 30

// Pack materializes a sorted coordinate stream into a fresh storage under
// the given format.
//
// The coordinates must be a structure of arrays, one vector per mode, all
// of length n, sorted lexicographically by coordinate tuple and free of
// duplicate tuples. vals holds the n values as raw bytes at vtype's width.
// The coordinate stream is borrowed for the duration of the call.
//
// Pack either returns a fully populated storage or an error; no partial
// storage is ever returned.
//
// Returns:
//   - *storage.Storage: The packed storage.
//   - error: errs.ErrFormatMismatch if the format order differs from the
//     coordinate order or a coordinate exceeds a Dense dimension, or
//     errs.ErrIndexOverflow if an index array push does not fit its type.
func Pack(dims []int, f format.Format, coords []*index.Vector, vals []byte,
	n int, vtype format.ValueType,
) (*storage.Storage, error) {
	order := len(dims)
	if order != f.Order() {
		return nil, fmt.Errorf("%w: %d dimensions, format order %d",
			errs.ErrFormatMismatch, order, f.Order())
	}
	if len(coords) != order {
		return nil, fmt.Errorf("%w: %d coordinate vectors, format order %d",
			errs.ErrFormatMismatch, len(coords), f.Order())
	}
	if !vtype.Valid() {
		return nil, fmt.Errorf("%w: value type %d", errs.ErrInvalidValueType, vtype)
	}

	// Initialize the per-mode index arrays. Sparse modes start their pos
	// array with the leading 0 segment boundary; Fixed modes store the
	// analyzed fan-out as their sole pos entry.
	indices := make([]storage.ModeIndex, order)
	for i := range order {
		mode := f.Mode(i)
		switch mode.Kind {
		case format.Dense:
		case format.Sparse:
			pos := index.NewVector(mode.PosType)
			if err := pos.Push(0); err != nil {
				return nil, err
			}
			indices[i] = storage.ModeIndex{Pos: pos, Idx: index.NewVector(mode.IdxType)}
		case format.Fixed:
			pos := index.NewVector(mode.PosType)
			maxSize := findMaxFixedValue(coords, order, i, 0, n)
			if err := pos.Push(int64(maxSize)); err != nil {
				return nil, err
			}
			indices[i] = storage.ModeIndex{Pos: pos, Idx: index.NewVector(mode.IdxType)}
		default:
			return nil, fmt.Errorf("%w: mode %d kind %d", errs.ErrInvalidModeKind, i, mode.Kind)
		}
	}

	p := &packer{
		dims:       dims,
		modes:      f.Modes(),
		coords:     coords,
		vals:       vals,
		indices:    indices,
		valueWidth: vtype.NumBytes(),
		values:     pool.GetValuesBuffer(),
	}
	defer pool.PutValuesBuffer(p.values)

	// Reserve the purely-Dense expansion upper bound when it is sane; the
	// buffer grows on demand otherwise.
	if volume, ok := denseVolume(dims, p.valueWidth); ok {
		p.values.Grow(volume)
	}

	// An empty stream produces no segments at all: Sparse pos arrays keep
	// their single leading 0 and the values buffer stays empty.
	if n > 0 {
		if err := p.packTensor(0, n, 0); err != nil {
			return nil, err
		}
	}

	// Trim the scratch buffer to the traversal's high-water mark.
	values := make([]byte, p.values.Len())
	copy(values, p.values.Bytes())

	s := storage.New(f, dims, vtype)
	s.SetIndex(indices)
	s.SetValues(values)

	return s, nil
}

// packer carries the traversal state of a single Pack call.
type packer struct {
	dims       []int
	modes      []format.Mode
	coords     []*index.Vector
	vals       []byte
	indices    []storage.ModeIndex
	values     *pool.ByteBuffer
	valueWidth int
}

// packTensor materializes the subtree holding coordinates [begin, end) at
// the given level. The values buffer length is the running byte offset.
func (p *packer) packTensor(begin, end, level int) error {
	levelCoords := p.coords[level]

	switch p.modes[level].Kind {
	case format.Dense:
		// Iterate over each index value and recursively pack its segment.
		cbegin := begin
		for j := range p.dims[level] {
			cend := cbegin
			for cend < end && levelCoords.Get(cend) == int64(j) {
				cend++
			}
			if err := p.packNextLevel(cbegin, cend, level); err != nil {
				return err
			}
			cbegin = cend
		}
		if cbegin != end {
			return fmt.Errorf("%w: mode %d coordinate %d exceeds dimension %d",
				errs.ErrFormatMismatch, level, levelCoords.Get(cbegin), p.dims[level])
		}
	case format.Sparse:
		mi := p.indices[level]
		indexValues := uniqueEntries(levelCoords, begin, end)

		// The stored segment end is the running idx length plus the number
		// of unique values in this segment.
		if err := mi.Pos.Push(int64(mi.Idx.Len() + indexValues.Len())); err != nil {
			return err
		}
		if err := mi.Idx.PushRange(indexValues); err != nil {
			return err
		}

		cbegin := begin
		for j := range indexValues.Len() {
			cend := cbegin
			for cend < end && levelCoords.Get(cend) == indexValues.Get(j) {
				cend++
			}
			if err := p.packNextLevel(cbegin, cend, level); err != nil {
				return err
			}
			cbegin = cend
		}
	case format.Fixed:
		mi := p.indices[level]
		fanOut := mi.Pos.Get(0)
		indexValues := uniqueEntries(levelCoords, begin, end)
		segmentSize := indexValues.Len()

		cbegin := begin
		if segmentSize > 0 {
			if err := mi.Idx.PushRange(indexValues); err != nil {
				return err
			}
			for j := range segmentSize {
				cend := cbegin
				for cend < end && levelCoords.Get(cend) == indexValues.Get(j) {
					cend++
				}
				if err := p.packNextLevel(cbegin, cend, level); err != nil {
					return err
				}
				cbegin = cend
			}
		}

		// Pad the segment to the fan-out with the last real index value, or
		// 0 when the segment is empty. At the innermost level a pad slot
		// repeats the last real value; above it, the empty recursion emits
		// zeros and empty segments down to the leaves.
		for cur := int64(segmentSize); cur < fanOut; cur++ {
			if segmentSize > 0 {
				if err := mi.Idx.Push(indexValues.Get(segmentSize - 1)); err != nil {
					return err
				}
			} else if err := mi.Idx.Push(0); err != nil {
				return err
			}
			if level+1 == len(p.modes) && segmentSize > 0 {
				p.values.MustWrite(p.vals[(cbegin-1)*p.valueWidth : cbegin*p.valueWidth])
				continue
			}
			if err := p.packNextLevel(cbegin, cbegin, level); err != nil {
				return err
			}
		}
	}

	return nil
}

// packNextLevel writes the leaf value for the child range [cbegin, cend) or
// recurses into the next level.
func (p *packer) packNextLevel(cbegin, cend, level int) error {
	if level+1 < len(p.modes) {
		return p.packTensor(cbegin, cend, level+1)
	}

	if cbegin < cend {
		p.values.MustWrite(p.vals[cbegin*p.valueWidth : (cbegin+1)*p.valueWidth])
		return nil
	}

	// Absent coordinate: an explicit zero value.
	start := p.values.Len()
	p.values.ExtendOrGrow(p.valueWidth)
	clear(p.values.Slice(start, start+p.valueWidth))

	return nil
}

// denseVolume returns the byte size of the fully dense expansion, or false
// when the product overflows the preallocation cap.
func denseVolume(dims []int, valueWidth int) (int, bool) {
	volume := valueWidth
	for _, d := range dims {
		if d <= 0 {
			return 0, false
		}
		if volume > maxScratchPrealloc/d {
			return 0, false
		}
		volume *= d
	}

	return volume, true
}

package pack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tenpack/endian"
	"github.com/arloliu/tenpack/errs"
	"github.com/arloliu/tenpack/format"
	"github.com/arloliu/tenpack/index"
	"github.com/arloliu/tenpack/storage"
)

// makeCoords builds the sorted structure-of-arrays coordinate stream and the
// raw float64 value buffer from (coordinate, value) records.
func makeCoords(t *testing.T, f format.Format, records [][]int, vals []float64) ([]*index.Vector, []byte) {
	t.Helper()

	order := f.Order()
	coords := make([]*index.Vector, order)
	for i := range order {
		coords[i] = index.NewVector(f.Mode(i).IdxType)
	}
	for _, rec := range records {
		require.Len(t, rec, order)
		for i, c := range rec {
			require.NoError(t, coords[i].Push(int64(c)))
		}
	}

	engine := endian.GetLittleEndianEngine()
	buf := make([]byte, 0, len(vals)*8)
	for _, v := range vals {
		buf = engine.AppendUint64(buf, math.Float64bits(v))
	}

	return coords, buf
}

func storageValues(t *testing.T, s *storage.Storage) []float64 {
	t.Helper()

	vals := make([]float64, s.NumValues())
	for k := range vals {
		vals[k] = s.Value(k)
	}

	return vals
}

func TestPack_SparseSparse(t *testing.T) {
	f := format.DCSR()
	records := [][]int{{0, 0}, {0, 2}, {2, 1}}
	coords, vals := makeCoords(t, f, records, []float64{1.0, 2.0, 3.0})

	s, err := Pack([]int{3, 3}, f, coords, vals, 3, format.TypeFloat64)
	require.NoError(t, err)
	require.True(t, s.Defined())
	require.True(t, s.Format().Equal(f))

	require.Equal(t, []int64{0, 2}, s.Index(0).Pos.Values())
	require.Equal(t, []int64{0, 2}, s.Index(0).Idx.Values())
	require.Equal(t, []int64{0, 2, 3}, s.Index(1).Pos.Values())
	require.Equal(t, []int64{0, 2, 1}, s.Index(1).Idx.Values())
	require.Equal(t, []float64{1.0, 2.0, 3.0}, storageValues(t, s))
}

func TestPack_DenseSparse(t *testing.T) {
	f := format.CSR()
	records := [][]int{{0, 0}, {0, 2}, {2, 1}}
	coords, vals := makeCoords(t, f, records, []float64{1.0, 2.0, 3.0})

	s, err := Pack([]int{3, 3}, f, coords, vals, 3, format.TypeFloat64)
	require.NoError(t, err)

	require.Nil(t, s.Index(0).Pos)
	require.Nil(t, s.Index(0).Idx)
	require.Equal(t, []int64{0, 2, 2, 3}, s.Index(1).Pos.Values())
	require.Equal(t, []int64{0, 2, 1}, s.Index(1).Idx.Values())
	require.Equal(t, []float64{1.0, 2.0, 3.0}, storageValues(t, s))
}

func TestPack_DenseDense(t *testing.T) {
	f := format.DenseFormat(2)
	records := [][]int{{0, 0}, {0, 2}, {2, 1}}
	coords, vals := makeCoords(t, f, records, []float64{1.0, 2.0, 3.0})

	s, err := Pack([]int{3, 3}, f, coords, vals, 3, format.TypeFloat64)
	require.NoError(t, err)

	// Row-major dense volume with explicit zeros at absent coordinates.
	require.Equal(t, 9*8, len(s.Values()))
	require.Equal(t, []float64{
		1.0, 0, 2.0,
		0, 0, 0,
		0, 3.0, 0,
	}, storageValues(t, s))
}

func TestPack_DenseFixed(t *testing.T) {
	f := format.New(format.Dense, format.Fixed)
	records := [][]int{{0, 0}, {0, 2}, {1, 1}}
	coords, vals := makeCoords(t, f, records, []float64{1.0, 2.0, 3.0})

	s, err := Pack([]int{2, 3}, f, coords, vals, 3, format.TypeFloat64)
	require.NoError(t, err)

	// Fan-out is the max distinct inner indices under any row. Row 1 has a
	// single entry and is padded by repeating its last index and value.
	require.Equal(t, []int64{2}, s.Index(1).Pos.Values())
	require.Equal(t, []int64{0, 2, 1, 1}, s.Index(1).Idx.Values())
	require.Equal(t, []float64{1.0, 2.0, 3.0, 3.0}, storageValues(t, s))
}

func TestPack_FixedEmptySegment(t *testing.T) {
	// Row 1 has no entries at all: its fixed segment pads with index 0 and
	// zero values.
	f := format.New(format.Dense, format.Fixed)
	records := [][]int{{0, 0}, {0, 2}, {2, 1}}
	coords, vals := makeCoords(t, f, records, []float64{1.0, 2.0, 3.0})

	s, err := Pack([]int{3, 3}, f, coords, vals, 3, format.TypeFloat64)
	require.NoError(t, err)

	require.Equal(t, []int64{2}, s.Index(1).Pos.Values())
	require.Equal(t, []int64{0, 2, 0, 0, 1, 1}, s.Index(1).Idx.Values())
	require.Equal(t, []float64{1.0, 2.0, 0, 0, 3.0, 3.0}, storageValues(t, s))
}

func TestPack_SparseFixed(t *testing.T) {
	// A Fixed mode under a Sparse outer mode: only present rows are
	// materialized, each padded to the fan-out.
	f := format.New(format.Sparse, format.Fixed)
	records := [][]int{{0, 0}, {0, 2}, {2, 1}}
	coords, vals := makeCoords(t, f, records, []float64{1.0, 2.0, 3.0})

	s, err := Pack([]int{3, 3}, f, coords, vals, 3, format.TypeFloat64)
	require.NoError(t, err)

	require.Equal(t, []int64{0, 2}, s.Index(0).Pos.Values())
	require.Equal(t, []int64{0, 2}, s.Index(0).Idx.Values())
	require.Equal(t, []int64{2}, s.Index(1).Pos.Values())
	require.Equal(t, []int64{0, 2, 1, 1}, s.Index(1).Idx.Values())
	require.Equal(t, []float64{1.0, 2.0, 3.0, 3.0}, storageValues(t, s))
}

func TestPack_EmptyStream(t *testing.T) {
	f := format.DCSR()
	coords, vals := makeCoords(t, f, nil, nil)

	s, err := Pack([]int{3, 3}, f, coords, vals, 0, format.TypeFloat64)
	require.NoError(t, err)

	require.Empty(t, s.Values())
	require.Equal(t, []int64{0}, s.Index(0).Pos.Values())
	require.Empty(t, s.Index(0).Idx.Values())
	require.Equal(t, []int64{0}, s.Index(1).Pos.Values())
	require.Empty(t, s.Index(1).Idx.Values())
}

func TestPack_OrderMismatch(t *testing.T) {
	f := format.DCSR()
	coords, vals := makeCoords(t, f, [][]int{{0, 0}}, []float64{1.0})

	_, err := Pack([]int{3, 3, 3}, f, coords, vals, 1, format.TypeFloat64)
	require.ErrorIs(t, err, errs.ErrFormatMismatch)
}

func TestPack_CoordinateExceedsDenseDimension(t *testing.T) {
	f := format.CSR()
	records := [][]int{{0, 0}, {5, 1}}
	coords, vals := makeCoords(t, f, records, []float64{1.0, 2.0})

	// Dimension 3 in mode 0 cannot hold coordinate 5.
	_, err := Pack([]int{3, 3}, f, coords, vals, 2, format.TypeFloat64)
	require.ErrorIs(t, err, errs.ErrFormatMismatch)
}

func TestPack_IndexOverflow(t *testing.T) {
	f := format.NewTyped(
		format.Mode{Kind: format.Sparse, PosType: format.TypeInt32, IdxType: format.TypeInt8},
		format.Mode{Kind: format.Sparse, PosType: format.TypeInt32, IdxType: format.TypeInt32},
	)
	coords := []*index.Vector{index.NewVector(format.TypeInt32), index.NewVector(format.TypeInt32)}
	require.NoError(t, coords[0].Push(200))
	require.NoError(t, coords[1].Push(0))

	engine := endian.GetLittleEndianEngine()
	vals := engine.AppendUint64(nil, math.Float64bits(1.0))

	_, err := Pack([]int{300, 3}, f, coords, vals, 1, format.TypeFloat64)
	require.ErrorIs(t, err, errs.ErrIndexOverflow)
}

func TestPack_ThreeModeCSF(t *testing.T) {
	f := format.CSF(3)
	records := [][]int{
		{0, 0, 0},
		{0, 0, 2},
		{0, 1, 1},
		{2, 0, 1},
	}
	coords, vals := makeCoords(t, f, records, []float64{1.0, 2.0, 3.0, 4.0})

	s, err := Pack([]int{3, 2, 3}, f, coords, vals, 4, format.TypeFloat64)
	require.NoError(t, err)

	require.Equal(t, []int64{0, 2}, s.Index(0).Pos.Values())
	require.Equal(t, []int64{0, 2}, s.Index(0).Idx.Values())
	require.Equal(t, []int64{0, 2, 3}, s.Index(1).Pos.Values())
	require.Equal(t, []int64{0, 1, 0}, s.Index(1).Idx.Values())
	require.Equal(t, []int64{0, 2, 3, 4}, s.Index(2).Pos.Values())
	require.Equal(t, []int64{0, 2, 1, 1}, s.Index(2).Idx.Values())
	require.Equal(t, []float64{1.0, 2.0, 3.0, 4.0}, storageValues(t, s))
}

func TestPack_AllSparseLeafCountEqualsNonZeros(t *testing.T) {
	f := format.CSF(3)
	records := [][]int{
		{0, 0, 1},
		{0, 3, 0},
		{1, 2, 2},
		{1, 2, 3},
		{4, 0, 0},
	}
	coords, vals := makeCoords(t, f, records, []float64{1, 2, 3, 4, 5})

	s, err := Pack([]int{5, 4, 4}, f, coords, vals, 5, format.TypeFloat64)
	require.NoError(t, err)

	// The innermost pos array's segment sizes sum to the non-zero count.
	pos := s.Index(2).Pos
	total := int64(0)
	for k := range pos.Len() - 1 {
		total += pos.Get(k+1) - pos.Get(k)
	}
	require.Equal(t, int64(5), total)
	require.Equal(t, 5, s.NumValues())
}

func TestPack_AllSparseTraversalReproducesCoordinates(t *testing.T) {
	f := format.CSF(3)
	records := [][]int{
		{0, 0, 1},
		{0, 3, 0},
		{1, 2, 2},
		{1, 2, 3},
		{4, 0, 0},
	}
	values := []float64{1, 2, 3, 4, 5}
	coords, vals := makeCoords(t, f, records, values)

	s, err := Pack([]int{5, 4, 4}, f, coords, vals, 5, format.TypeFloat64)
	require.NoError(t, err)

	k := 0
	for coord, val := range s.All() {
		require.Equal(t, records[k], coord)
		require.Equal(t, values[k], val)
		k++
	}
	require.Equal(t, len(records), k)
}

package coo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tenpack/errs"
	"github.com/arloliu/tenpack/format"
)

func TestTensor_New(t *testing.T) {
	tensor := New(3, 4)

	require.Equal(t, 2, tensor.Order())
	require.Equal(t, []int{3, 4}, tensor.Dimensions())
	require.Equal(t, 0, tensor.Len())
}

func TestTensor_Insert(t *testing.T) {
	tensor := New(3, 3)

	require.NoError(t, tensor.Insert([]int{0, 0}, 1.0))
	require.NoError(t, tensor.Insert([]int{2, 1}, 3.0))
	require.Equal(t, 2, tensor.Len())

	require.ErrorIs(t, tensor.Insert([]int{0}, 1.0), errs.ErrFormatMismatch)
	require.ErrorIs(t, tensor.Insert([]int{0, 3}, 1.0), errs.ErrCoordinateOutOfRange)
	require.ErrorIs(t, tensor.Insert([]int{-1, 0}, 1.0), errs.ErrCoordinateOutOfRange)
}

func TestTensor_SortOrdersLexicographically(t *testing.T) {
	tensor := New(3, 3)
	require.NoError(t, tensor.Insert([]int{2, 1}, 3.0))
	require.NoError(t, tensor.Insert([]int{0, 2}, 2.0))
	require.NoError(t, tensor.Insert([]int{0, 0}, 1.0))

	tensor.Sort()

	var coords [][]int
	var vals []float64
	for coord, val := range tensor.All() {
		coords = append(coords, append([]int(nil), coord...))
		vals = append(vals, val)
	}
	require.Equal(t, [][]int{{0, 0}, {0, 2}, {2, 1}}, coords)
	require.Equal(t, []float64{1.0, 2.0, 3.0}, vals)
}

func TestTensor_PackSortsFirst(t *testing.T) {
	tensor := New(3, 3)
	require.NoError(t, tensor.Insert([]int{2, 1}, 3.0))
	require.NoError(t, tensor.Insert([]int{0, 0}, 1.0))
	require.NoError(t, tensor.Insert([]int{0, 2}, 2.0))

	s, err := tensor.Pack(format.DCSR())
	require.NoError(t, err)
	require.Same(t, s, tensor.Storage())

	require.Equal(t, []int64{0, 2}, s.Index(0).Pos.Values())
	require.Equal(t, []int64{0, 2}, s.Index(0).Idx.Values())
	require.Equal(t, []int64{0, 2, 3}, s.Index(1).Pos.Values())
	require.Equal(t, []int64{0, 2, 1}, s.Index(1).Idx.Values())
}

func TestTensor_PackOrderMismatch(t *testing.T) {
	tensor := New(3, 3)
	require.NoError(t, tensor.Insert([]int{0, 0}, 1.0))

	_, err := tensor.Pack(format.CSF(3))
	require.ErrorIs(t, err, errs.ErrFormatMismatch)
}

func TestTensor_PackDenseIgnoresIdxType(t *testing.T) {
	// A Dense mode's idx type is unused at runtime; a narrow type must not
	// constrain the coordinates of that mode.
	f := format.NewTyped(
		format.Mode{Kind: format.Dense, PosType: format.TypeInt8, IdxType: format.TypeInt8},
		format.Mode{Kind: format.Sparse, PosType: format.TypeInt32, IdxType: format.TypeInt32},
	)
	tensor := New(1000, 3)
	require.NoError(t, tensor.Insert([]int{500, 1}, 2.0))

	s, err := tensor.Pack(f)
	require.NoError(t, err)
	require.Equal(t, 1, s.NumValues())
	require.Equal(t, []int64{1}, s.Index(1).Idx.Values())
}

func TestTensor_PackCarriesName(t *testing.T) {
	tensor := New(2, 2)
	tensor.SetName("coo.test")
	require.NoError(t, tensor.Insert([]int{1, 1}, 4.0))

	s, err := tensor.Pack(format.CSR())
	require.NoError(t, err)
	require.NotZero(t, s.ID())
}

func TestTensor_StorageInvalidatedByInsert(t *testing.T) {
	tensor := New(2, 2)
	require.NoError(t, tensor.Insert([]int{0, 0}, 1.0))

	_, err := tensor.Pack(format.CSR())
	require.NoError(t, err)
	require.NotNil(t, tensor.Storage())

	require.NoError(t, tensor.Insert([]int{1, 1}, 2.0))
	require.Nil(t, tensor.Storage())
}

func TestTensor_EmptyPack(t *testing.T) {
	tensor := New(3, 3)

	s, err := tensor.Pack(format.DCSR())
	require.NoError(t, err)
	require.Equal(t, 0, s.NumValues())
	require.Equal(t, []int64{0}, s.Index(0).Pos.Values())
	require.Equal(t, []int64{0}, s.Index(1).Pos.Values())
}

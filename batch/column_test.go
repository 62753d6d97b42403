package batch

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestNewColumn(t *testing.T) {
	t.Run("TypedSlice", func(t *testing.T) {
		col, err := NewColumn([]int32{1, 2, 3})
		require.NoError(t, err)
		require.Equal(t, Int, col.Type())
		require.Equal(t, 3, col.Len())
		require.False(t, col.TypeInfo().IsNullable())
	})

	t.Run("IntBecomesBigInt", func(t *testing.T) {
		col, err := NewColumn([]int{1, 2})
		require.NoError(t, err)
		require.Equal(t, BigInt, col.Type())
	})

	t.Run("PointerNil", func(t *testing.T) {
		a, b := int16(1), int16(3)
		col, err := NewColumn([]*int16{&a, nil, &b})
		require.NoError(t, err)
		require.Equal(t, SmallInt, col.Type())
		require.Equal(t, []bool{true, false, true}, col.valid)
		require.True(t, col.TypeInfo().IsNullable())
	})

	t.Run("NotASlice", func(t *testing.T) {
		_, err := NewColumn(42)
		require.Error(t, err)
	})

	t.Run("UnsupportedElement", func(t *testing.T) {
		_, err := NewColumn([]string{"a"})
		require.True(t, errors.Is(err, ErrUnsupportedType))
	})
}

func TestNewStructColumnLengthMismatch(t *testing.T) {
	a, err := NewColumn([]int64{1, 2})
	require.NoError(t, err)
	b, err := NewColumn([]int64{1})
	require.NoError(t, err)

	_, err = NewStructColumn(a, b)
	require.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestBuildArrayNulls(t *testing.T) {
	alloc := NewAllocator(WithMemory(memory.NewCheckedAllocator(memory.NewGoAllocator())))
	mem := alloc.Memory().(*memory.CheckedAllocator)
	defer mem.AssertSize(t, 0)

	x, z := 1.0, 3.0
	vals, err := NewColumn([]*float64{&x, nil, &z})
	require.NoError(t, err)

	s, err := alloc.BuildSchema(vals.TypeInfo())
	require.NoError(t, err)
	defer s.Release()

	arr, err := alloc.BuildArray(s, vals)
	require.NoError(t, err)
	defer arr.Release()

	require.Equal(t, int64(3), arr.Length)
	require.Equal(t, int64(1), arr.NullCount)
	require.NotNil(t, arr.Buffers[0])
	require.Len(t, arr.Buffers[1], 3*8)
}

func TestBuildArrayTypeMismatch(t *testing.T) {
	alloc := NewAllocator(WithMemory(memory.NewCheckedAllocator(memory.NewGoAllocator())))
	mem := alloc.Memory().(*memory.CheckedAllocator)
	defer mem.AssertSize(t, 0)

	s, err := alloc.BuildSchema(NewTypeInfo(Int, true))
	require.NoError(t, err)
	defer s.Release()

	col, err := NewColumn([]float64{1})
	require.NoError(t, err)
	_, err = alloc.BuildArray(s, col)
	require.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestToArrow(t *testing.T) {
	ids, err := NewColumn([]int64{1, 2, 3})
	require.NoError(t, err)
	flags, err := NewColumn([]bool{true, false, true})
	require.NoError(t, err)
	col, err := NewStructColumn(ids, flags)
	require.NoError(t, err)

	s, a := buildPair(t, col)
	defer s.Release()
	defer a.Release()
	s.Children()[0].Name = "id"
	s.Children()[1].Name = "flag"

	b, err := CreateBatch(s, a)
	require.NoError(t, err)

	arr, err := ToArrow(b)
	require.NoError(t, err)
	defer arr.Release()

	st, ok := arr.(*array.Struct)
	require.True(t, ok, "got %T", arr)
	require.Equal(t, 3, st.Len())
	require.Equal(t, "id", st.DataType().(*arrow.StructType).Field(0).Name)
	require.Equal(t, []int64{1, 2, 3}, st.Field(0).(*array.Int64).Int64Values())
	require.False(t, st.Field(1).(*array.Boolean).Value(1))
	require.True(t, st.Field(1).(*array.Boolean).Value(2))
}

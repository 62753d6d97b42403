package batch

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBuildSchemaShape(t *testing.T) {
	info := NewTypeInfo(Struct, true,
		NewTypeInfo(Int, true),
		NewTypeInfo(Double, false),
	)

	s, err := BuildSchema(info)
	require.NoError(t, err)
	defer s.Release()

	require.True(t, s.IsLive())
	require.Equal(t, "+s", s.Format)
	require.False(t, s.Nullable())
	require.Equal(t, 2, s.NChildren())
	require.Nil(t, s.Dictionary())

	c0, err := s.Child(0)
	require.NoError(t, err)
	require.Equal(t, "i", c0.Format)
	require.False(t, c0.Nullable())
	require.True(t, c0.IsLive())
	require.Equal(t, 0, c0.NChildren())

	c1, err := s.Child(1)
	require.NoError(t, err)
	require.Equal(t, "g", c1.Format)
	require.True(t, c1.Nullable())
	require.True(t, c1.IsLive())

	_, err = s.Child(2)
	require.Error(t, err)
}

func countNodes(s *Schema) int {
	n := 1
	for _, c := range s.Children() {
		n += countNodes(c)
	}
	return n
}

func TestBuildSchemaNested(t *testing.T) {
	alloc, m, _ := newTestAllocator(t)

	s, err := alloc.BuildSchema(threeLevelInfo())
	require.NoError(t, err)
	require.Equal(t, 5, countNodes(s))
	require.Equal(t, float64(5), testutil.ToFloat64(m.Live.WithLabelValues(kindSchema)))

	dt, err := s.DataType()
	require.NoError(t, err)
	require.Equal(t, arrow.STRUCT, dt.ID())
	st := dt.(*arrow.StructType)
	require.Equal(t, 2, st.NumFields())
	require.Equal(t, arrow.STRUCT, st.Field(1).Type.ID())
	require.True(t, st.Field(1).Nullable)

	s.Release()
	require.Equal(t, float64(0), testutil.ToFloat64(m.Live.WithLabelValues(kindSchema)))
}

func TestBuildSchemaUnsupportedChild(t *testing.T) {
	alloc, m, _ := newTestAllocator(t)

	info := NewTypeInfo(Struct, true,
		NewTypeInfo(Int, true),
		NewTypeInfo(Struct, true,
			NewTypeInfo(BigInt, true),
			NewTypeInfo(Varchar, false),
		),
	)

	s, err := alloc.BuildSchema(info)
	require.Nil(t, s)
	require.True(t, errors.Is(err, ErrUnsupportedType))
	require.Contains(t, err.Error(), "VARCHAR")

	// the partial tree was released, nothing is left holding storage
	require.Equal(t, float64(0), testutil.ToFloat64(m.Live.WithLabelValues(kindSchema)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.UnsupportedTypes.WithLabelValues("build_schema")))
}

func TestBuildSchemaUnsupportedRoot(t *testing.T) {
	_, err := BuildSchema(NewTypeInfo(Decimal, true))
	require.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestBuildArrayShape(t *testing.T) {
	s, err := BuildSchema(threeLevelInfo())
	require.NoError(t, err)
	defer s.Release()

	a, err := BuildArrayShape(s)
	require.NoError(t, err)
	defer a.Release()

	require.True(t, a.IsLive())
	require.Equal(t, 1, a.NBuffers())
	require.Equal(t, 2, a.NChildren())
	inner, err := a.Child(1)
	require.NoError(t, err)
	require.Equal(t, 2, inner.NChildren())
	require.Equal(t, 2, inner.Children()[1].NBuffers())
	require.Nil(t, a.Dictionary())
}

func TestBuildArrayShapeReleasedSchema(t *testing.T) {
	s, err := BuildSchema(NewTypeInfo(Int, true))
	require.NoError(t, err)
	s.Release()

	_, err = BuildArrayShape(s)
	require.True(t, errors.Is(err, ErrReleased))
}

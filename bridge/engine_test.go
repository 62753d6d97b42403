package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isesword/cider-bridge/batch"
)

func buildInputPair(t *testing.T) (*batch.Schema, *batch.Array) {
	t.Helper()
	col, err := batch.NewColumn([]int64{1, 2})
	require.NoError(t, err)
	s, err := batch.BuildSchema(col.TypeInfo())
	require.NoError(t, err)
	a, err := batch.BuildArray(s, col)
	require.NoError(t, err)
	return s, a
}

func TestExecuteBatchReleasesInputsOnExportFailure(t *testing.T) {
	// export fails before the engine is called, so no library is needed
	brg := &Bridge{opts: defaultOptions()}

	t.Run("SchemaReleased", func(t *testing.T) {
		s, a := buildInputPair(t)
		s.Release()

		_, err := brg.ExecuteBatch(0, s, a)
		require.Error(t, err)
		require.False(t, a.IsLive())
	})

	t.Run("ArrayReleased", func(t *testing.T) {
		s, a := buildInputPair(t)
		a.Release()

		_, err := brg.ExecuteBatch(0, s, a)
		require.Error(t, err)
		require.False(t, s.IsLive())
	})
}

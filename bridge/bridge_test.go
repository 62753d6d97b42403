package bridge

import (
	"os"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/isesword/cider-bridge/batch"
	"github.com/isesword/cider-bridge/operators"
)

func loadTestBridge(t *testing.T) *Bridge {
	t.Helper()
	// 跳过如果没有设置库路径
	libPath := os.Getenv("CIDER_BRIDGE_LIB_PATH")
	if libPath == "" {
		t.Skip("CIDER_BRIDGE_LIB_PATH not set, skipping test")
	}
	brg, err := LoadBridge(libPath)
	require.NoError(t, err)
	return brg
}

func TestLoadBridge(t *testing.T) {
	brg := loadTestBridge(t)
	require.Equal(t, uint32(ABIVersion), brg.AbiVersion())
}

func TestLoadBridgeABIMismatch(t *testing.T) {
	libPath := os.Getenv("CIDER_BRIDGE_LIB_PATH")
	if libPath == "" {
		t.Skip("CIDER_BRIDGE_LIB_PATH not set, skipping test")
	}
	_, err := LoadBridge(libPath, WithABIVersion(ABIVersion+1))
	var engineErr *EngineError
	require.True(t, errors.As(err, &engineErr))
	require.Equal(t, ErrAbiMismatch, engineErr.Code)
}

func TestEngineInfo(t *testing.T) {
	brg := loadTestBridge(t)

	version, err := brg.EngineVersion()
	require.NoError(t, err)
	require.NotEmpty(t, version)

	caps, err := brg.Capabilities()
	require.NoError(t, err)
	require.NotEmpty(t, caps)
}

func TestConcurrentLastError(t *testing.T) {
	brg := loadTestBridge(t)

	// 测试并发调用不会互相干扰
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = brg.EngineVersion()
			_, _ = brg.CompilePlan([]byte("invalid protobuf data"))
		}()
	}
	wg.Wait()
}

func TestInvalidPlanCompile(t *testing.T) {
	brg := loadTestBridge(t)

	_, err := brg.CompilePlan([]byte("invalid protobuf data"))
	require.Error(t, err)
	var engineErr *EngineError
	require.True(t, errors.As(err, &engineErr))
	require.NotEqual(t, ErrOK, engineErr.Code)

	_, err = brg.CompilePlan(nil)
	require.Error(t, err)
}

func TestExecuteBatch(t *testing.T) {
	brg := loadTestBridge(t)
	if !cgoEnabled {
		t.Skip("requires cgo")
	}

	node := operators.NewSourceNode(
		operators.Col("id", batch.NewTypeInfo(batch.BigInt, true)),
	)
	planBytes, err := operators.EncodePlan(node)
	require.NoError(t, err)
	handle, err := brg.CompilePlan(planBytes)
	require.NoError(t, err)
	defer brg.FreePlan(handle)

	s, err := node.Schema(batch.DefaultAllocator())
	require.NoError(t, err)
	ids, err := batch.NewColumn([]int64{1, 2, 3})
	require.NoError(t, err)
	col, err := batch.NewStructColumn(ids)
	require.NoError(t, err)
	a, err := batch.BuildArray(s, col)
	require.NoError(t, err)

	res, err := brg.ExecuteBatch(handle, s, a)
	require.NoError(t, err)
	defer res.Release()

	require.Equal(t, 3, res.Batch.Len())
}

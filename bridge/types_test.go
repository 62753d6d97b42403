package bridge

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/isesword/cider-bridge/batch"
)

func TestErrorCodeString(t *testing.T) {
	require.Equal(t, "OK", ErrOK.String())
	require.Equal(t, "PLAN_DECODE", ErrPlanDecode.String())
	require.Equal(t, "ErrorCode(42)", ErrorCode(42).String())
}

func TestErrorCodeErr(t *testing.T) {
	require.NoError(t, ErrOK.Err("ignored"))

	err := ErrExecution.Err("division by zero")
	require.EqualError(t, err, "engine error EXECUTION: division by zero")
	var engineErr *EngineError
	require.True(t, errors.As(err, &engineErr))
	require.Equal(t, ErrExecution, engineErr.Code)
	require.False(t, errors.Is(err, batch.ErrUnsupportedType))

	err = ErrUnsupported.Err("")
	require.True(t, errors.Is(err, batch.ErrUnsupportedType))
	require.Contains(t, err.Error(), "unknown error")
	require.True(t, errors.As(err, &engineErr))
	require.Equal(t, ErrUnsupported, engineErr.Code)
}

func TestCheckABI(t *testing.T) {
	require.NoError(t, checkABI(ABIVersion, ABIVersion))

	err := checkABI(2, ABIVersion)
	var engineErr *EngineError
	require.True(t, errors.As(err, &engineErr))
	require.Equal(t, ErrAbiMismatch, engineErr.Code)
}

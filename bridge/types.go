package bridge

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/isesword/cider-bridge/batch"
)

// ErrorCode 错误码
type ErrorCode int32

const (
	ErrOK                     ErrorCode = 0
	ErrUnknown                ErrorCode = 1
	ErrInvalidArgument        ErrorCode = 2
	ErrAbiMismatch            ErrorCode = 3
	ErrPlanVersionUnsupported ErrorCode = 4
	ErrPlanDecode             ErrorCode = 5
	ErrPlanSemantic           ErrorCode = 6
	ErrArrowImport            ErrorCode = 7
	ErrArrowExport            ErrorCode = 8
	ErrExecution              ErrorCode = 9
	ErrUnsupported            ErrorCode = 10
	ErrOom                    ErrorCode = 11
)

var errorCodeNames = map[ErrorCode]string{
	ErrOK:                     "OK",
	ErrUnknown:                "UNKNOWN",
	ErrInvalidArgument:        "INVALID_ARGUMENT",
	ErrAbiMismatch:            "ABI_MISMATCH",
	ErrPlanVersionUnsupported: "PLAN_VERSION_UNSUPPORTED",
	ErrPlanDecode:             "PLAN_DECODE",
	ErrPlanSemantic:           "PLAN_SEMANTIC",
	ErrArrowImport:            "ARROW_IMPORT",
	ErrArrowExport:            "ARROW_EXPORT",
	ErrExecution:              "EXECUTION",
	ErrUnsupported:            "UNSUPPORTED",
	ErrOom:                    "OOM",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int32(c))
}

// EngineError is a failure reported by the native engine.
type EngineError struct {
	Code ErrorCode
	Msg  string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %s: %s", e.Code, e.Msg)
}

// Err converts a status returned by the engine into an error. ErrOK yields nil.
// ErrUnsupported matches batch.ErrUnsupportedType.
func (c ErrorCode) Err(msg string) error {
	if c == ErrOK {
		return nil
	}
	if msg == "" {
		msg = "unknown error"
	}
	var err error = &EngineError{Code: c, Msg: msg}
	if c == ErrUnsupported {
		err = errors.Mark(err, batch.ErrUnsupportedType)
	}
	return err
}

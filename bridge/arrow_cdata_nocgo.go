//go:build !cgo
// +build !cgo

package bridge

import (
	"github.com/isesword/cider-bridge/batch"
)

const cgoEnabled = false

// ArrowSchema represents Arrow schema in C (cgo disabled placeholder).
type ArrowSchema struct{}

// ArrowArray represents Arrow array data in C (cgo disabled placeholder).
type ArrowArray struct{}

// IsReleased always reports true when cgo is disabled.
func (s *ArrowSchema) IsReleased() bool { return true }

// IsReleased always reports true when cgo is disabled.
func (a *ArrowArray) IsReleased() bool { return true }

// ReleaseArrowSchema is a no-op when cgo is disabled.
func ReleaseArrowSchema(_ *ArrowSchema) {}

// ReleaseArrowArray is a no-op when cgo is disabled.
func ReleaseArrowArray(_ *ArrowArray) {}

func ExportSchema(_ *batch.Schema, _ *ArrowSchema) error { return errNoCgo }

func ExportArray(_ *batch.Array, _ *ArrowArray) error { return errNoCgo }

func ImportSchema(_ *batch.Allocator, _ *ArrowSchema) (*batch.Schema, error) {
	return nil, errNoCgo
}

func ImportArray(_ *batch.Allocator, _ *ArrowArray, _ *batch.Schema) (*batch.Array, error) {
	return nil, errNoCgo
}

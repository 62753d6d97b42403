//go:build cgo
// +build cgo

package bridge

// #include "helpers.h"
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/isesword/cider-bridge/batch"
)

//export bridgeReleaseSchema
func bridgeReleaseSchema(schema *C.struct_ArrowSchema) {
	if C.ArrowSchemaIsReleased(schema) == 1 {
		return
	}
	C.free(unsafe.Pointer(schema.format))
	C.free(unsafe.Pointer(schema.name))
	C.free(unsafe.Pointer(schema.metadata))

	if schema.n_children > 0 {
		for _, child := range unsafe.Slice(schema.children, int(schema.n_children)) {
			C.ArrowSchemaRelease(child)
			C.free(unsafe.Pointer(child))
		}
		C.free(unsafe.Pointer(schema.children))
	}

	if schema.private_data != nil {
		h := cgo.Handle(C.bridge_get_handle(schema.private_data))
		h.Value().(*batch.Schema).Release()
		h.Delete()
		C.free(schema.private_data)
	}
	C.ArrowSchemaMarkReleased(schema)
}

//export bridgeReleaseArray
func bridgeReleaseArray(array *C.struct_ArrowArray) {
	if C.ArrowArrayIsReleased(array) == 1 {
		return
	}
	C.free(unsafe.Pointer(array.buffers))

	if array.n_children > 0 {
		for _, child := range unsafe.Slice(array.children, int(array.n_children)) {
			C.ArrowArrayRelease(child)
			C.free(unsafe.Pointer(child))
		}
		C.free(unsafe.Pointer(array.children))
	}

	if array.private_data != nil {
		h := cgo.Handle(C.bridge_get_handle(array.private_data))
		h.Value().(*exportedArray).release()
		h.Delete()
		C.free(array.private_data)
	}
	C.ArrowArrayMarkReleased(array)
}

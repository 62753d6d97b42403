//go:build cgo
// +build cgo

package bridge

/*
#cgo CFLAGS: -Wno-unused-function
#include "helpers.h"
*/
import "C"

import (
	"runtime"
	"runtime/cgo"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/cockroachdb/errors"

	"github.com/isesword/cider-bridge/batch"
)

const cgoEnabled = true

// ArrowSchema represents Arrow schema in C
type ArrowSchema C.struct_ArrowSchema

// ArrowArray represents Arrow array data in C
type ArrowArray C.struct_ArrowArray

// IsReleased reports whether the release callback has run or was never set.
func (s *ArrowSchema) IsReleased() bool {
	return s.release == nil
}

// IsReleased reports whether the release callback has run or was never set.
func (a *ArrowArray) IsReleased() bool {
	return a.release == nil
}

// ReleaseArrowSchema calls the release callback if set
func ReleaseArrowSchema(schema *ArrowSchema) {
	C.ArrowSchemaRelease((*C.struct_ArrowSchema)(unsafe.Pointer(schema)))
}

// ReleaseArrowArray calls the release callback if set
func ReleaseArrowArray(array *ArrowArray) {
	C.ArrowArrayRelease((*C.struct_ArrowArray)(unsafe.Pointer(array)))
}

// ExportSchema mirrors the tree rooted at s into out. Ownership of s moves to
// whoever releases out: the C release callback frees the C storage and then
// releases s. Children are released together with the root.
func ExportSchema(s *batch.Schema, out *ArrowSchema) error {
	if !s.IsLive() {
		return errors.Wrap(batch.ErrReleased, "failed to export schema")
	}
	cs := (*C.struct_ArrowSchema)(unsafe.Pointer(out))
	exportSchema(s, cs)
	cs.private_data = C.bridge_new_handle(C.uintptr_t(cgo.NewHandle(s)))
	return nil
}

func exportSchema(s *batch.Schema, out *C.struct_ArrowSchema) {
	out.format = C.CString(s.Format)
	out.name = C.CString(s.Name)
	out.metadata = nil
	if md := encodeMetadata(s.Metadata); md != nil {
		out.metadata = (*C.char)(C.CBytes(md))
	}
	out.flags = C.int64_t(s.Flags)
	out.dictionary = nil
	out.private_data = nil

	children := s.Children()
	out.n_children = C.int64_t(len(children))
	out.children = nil
	if len(children) > 0 {
		out.children = C.bridge_alloc_schema_children(C.int64_t(len(children)))
		cchildren := unsafe.Slice(out.children, len(children))
		for i, child := range children {
			exportSchema(child, cchildren[i])
		}
	}
	out.release = (*[0]byte)(C.bridgeReleaseSchema)
}

// exportedArray is what the private_data handle of an exported root refers
// to. pinner keeps Go heap buffers in place while C holds their addresses.
type exportedArray struct {
	array  *batch.Array
	pinner runtime.Pinner
}

func (e *exportedArray) release() {
	e.array.Release()
	e.pinner.Unpin()
}

// ExportArray mirrors the tree rooted at a into out. Buffers are shared, not
// copied, so a stays alive until out is released; its C release callback
// releases a. Buffers on the Go heap are pinned until then.
func ExportArray(a *batch.Array, out *ArrowArray) error {
	if !a.IsLive() {
		return errors.Wrap(batch.ErrReleased, "failed to export array")
	}
	ca := (*C.struct_ArrowArray)(unsafe.Pointer(out))
	e := &exportedArray{array: a}
	exportArray(a, ca, &e.pinner)
	ca.private_data = C.bridge_new_handle(C.uintptr_t(cgo.NewHandle(e)))
	return nil
}

func exportArray(a *batch.Array, out *C.struct_ArrowArray, pinner *runtime.Pinner) {
	out.length = C.int64_t(a.Length)
	out.null_count = C.int64_t(a.NullCount)
	out.offset = C.int64_t(a.Offset)
	out.dictionary = nil
	out.private_data = nil

	out.n_buffers = C.int64_t(a.NBuffers())
	out.buffers = nil
	if a.NBuffers() > 0 {
		out.buffers = C.bridge_alloc_buffers(C.int64_t(a.NBuffers()))
		bufs := unsafe.Slice(out.buffers, a.NBuffers())
		for i, buf := range a.Buffers {
			if len(buf) > 0 {
				// no-op for C memory
				pinner.Pin(&buf[0])
				bufs[i] = unsafe.Pointer(&buf[0])
			}
		}
	}

	children := a.Children()
	out.n_children = C.int64_t(len(children))
	out.children = nil
	if len(children) > 0 {
		out.children = C.bridge_alloc_array_children(C.int64_t(len(children)))
		cchildren := unsafe.Slice(out.children, len(children))
		for i, child := range children {
			exportArray(child, cchildren[i], pinner)
		}
	}
	out.release = (*[0]byte)(C.bridgeReleaseArray)
}

// ImportSchema builds a schema tree owned by alloc from in. The C schema is
// always consumed: it is released before ImportSchema returns. A nil alloc
// uses the default allocator.
func ImportSchema(alloc *batch.Allocator, in *ArrowSchema) (*batch.Schema, error) {
	if alloc == nil {
		alloc = batch.DefaultAllocator()
	}
	cs := (*C.struct_ArrowSchema)(unsafe.Pointer(in))
	if C.ArrowSchemaIsReleased(cs) == 1 {
		return nil, errors.Wrap(batch.ErrReleased, "failed to import schema")
	}
	defer C.ArrowSchemaRelease(cs)

	info, err := importTypeInfo(cs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to import schema")
	}
	s, err := alloc.BuildSchema(info)
	if err != nil {
		return nil, errors.Wrap(err, "failed to import schema")
	}
	if err := copyFields(s, cs); err != nil {
		s.Release()
		return nil, errors.Wrap(err, "failed to import schema")
	}
	return s, nil
}

func importTypeInfo(cs *C.struct_ArrowSchema) (batch.SQLTypeInfo, error) {
	format := C.GoString(cs.format)
	if cs.dictionary != nil {
		return batch.SQLTypeInfo{}, errors.Wrapf(batch.ErrUnsupportedType,
			"dictionary encoded field %q", C.GoString(cs.name))
	}
	typ, err := batch.TagToType(format)
	if err != nil {
		return batch.SQLTypeInfo{}, err
	}
	info := batch.NewTypeInfo(typ, int64(cs.flags)&batch.FlagNullable == 0)
	if cs.n_children > 0 {
		for _, child := range unsafe.Slice(cs.children, int(cs.n_children)) {
			ci, err := importTypeInfo(child)
			if err != nil {
				return batch.SQLTypeInfo{}, err
			}
			info.Children = append(info.Children, ci)
		}
	}
	return info, nil
}

func copyFields(s *batch.Schema, cs *C.struct_ArrowSchema) error {
	if cs.name != nil {
		s.Name = C.GoString(cs.name)
	}
	md, err := decodeMetadata(unsafe.Pointer(cs.metadata))
	if err != nil {
		return err
	}
	s.Metadata = md
	s.Flags = int64(cs.flags)
	if s.NChildren() == 0 {
		return nil
	}
	cchildren := unsafe.Slice(cs.children, s.NChildren())
	for i, child := range s.Children() {
		if err := copyFields(child, cchildren[i]); err != nil {
			return err
		}
	}
	return nil
}

// ImportArray moves in into a Go array tree shaped after schema. Buffers are
// not copied: the Go tree views the producer's memory and the producer's
// release callback runs when the Go tree is released. The C array is consumed
// even when ImportArray fails.
func ImportArray(alloc *batch.Allocator, in *ArrowArray, schema *batch.Schema) (*batch.Array, error) {
	if alloc == nil {
		alloc = batch.DefaultAllocator()
	}
	ca := (*C.struct_ArrowArray)(unsafe.Pointer(in))
	if C.ArrowArrayIsReleased(ca) == 1 {
		return nil, errors.Wrap(batch.ErrReleased, "failed to import array")
	}
	moved := C.ArrowArrayMove(ca)
	releaseMoved := func() {
		C.ArrowArrayRelease(moved)
		C.free(unsafe.Pointer(moved))
	}

	a, err := alloc.BuildArrayShape(schema)
	if err != nil {
		releaseMoved()
		return nil, errors.Wrap(err, "failed to import array")
	}
	if err := a.AddCleanup(releaseMoved); err != nil {
		a.Release()
		releaseMoved()
		return nil, errors.Wrap(err, "failed to import array")
	}
	if err := importArray(a, moved, schema); err != nil {
		a.Release()
		return nil, errors.Wrap(err, "failed to import array")
	}
	return a, nil
}

func importArray(a *batch.Array, ca *C.struct_ArrowArray, schema *batch.Schema) error {
	if int(ca.n_buffers) != a.NBuffers() || int(ca.n_children) != a.NChildren() {
		return errors.Wrapf(batch.ErrShapeMismatch,
			"array of %q has %d buffers and %d children, expected %d and %d",
			schema.Format, ca.n_buffers, ca.n_children, a.NBuffers(), a.NChildren())
	}
	if ca.dictionary != nil {
		return errors.Wrap(batch.ErrUnsupportedType, "dictionary encoded array")
	}
	a.Length = int64(ca.length)
	a.NullCount = int64(ca.null_count)
	a.Offset = int64(ca.offset)

	typ, err := batch.TagToType(schema.Format)
	if err != nil {
		return err
	}
	bits := a.Length + a.Offset
	if a.NBuffers() > 0 {
		bufs := unsafe.Slice(ca.buffers, a.NBuffers())
		for i, p := range bufs {
			if p == nil {
				continue
			}
			width := 1
			if i > 0 && typ != batch.Struct {
				if width, err = batch.BitWidthForTag(schema.Format); err != nil {
					return err
				}
			}
			size := bitutil.BytesForBits(bits * int64(width))
			a.Buffers[i] = unsafe.Slice((*byte)(p), size)
		}
	}

	if a.NChildren() > 0 {
		cchildren := unsafe.Slice(ca.children, a.NChildren())
		for i, child := range a.Children() {
			if err := importArray(child, cchildren[i], schema.Children()[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

package bridge

import (
	"encoding/binary"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/cockroachdb/errors"
)

// encodeMetadata serializes md into the C data interface layout: an int32 pair
// count followed by length-prefixed keys and values, native endian. Empty
// metadata encodes to nil.
func encodeMetadata(md arrow.Metadata) []byte {
	if md.Len() == 0 {
		return nil
	}
	size := 4
	for i := 0; i < md.Len(); i++ {
		size += 8 + len(md.Keys()[i]) + len(md.Values()[i])
	}
	buf := make([]byte, 0, size)
	buf = binary.NativeEndian.AppendUint32(buf, uint32(md.Len()))
	for i := 0; i < md.Len(); i++ {
		buf = appendString(buf, md.Keys()[i])
		buf = appendString(buf, md.Values()[i])
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.NativeEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// decodeMetadata reads metadata written by a producer. p may be nil.
func decodeMetadata(p unsafe.Pointer) (arrow.Metadata, error) {
	if p == nil {
		return arrow.Metadata{}, nil
	}
	r := metadataReader{p: p}
	n := r.int32()
	if n < 0 {
		return arrow.Metadata{}, errors.Newf("invalid metadata pair count %d", n)
	}
	keys := make([]string, n)
	values := make([]string, n)
	for i := range keys {
		var err error
		if keys[i], err = r.string(); err != nil {
			return arrow.Metadata{}, err
		}
		if values[i], err = r.string(); err != nil {
			return arrow.Metadata{}, err
		}
	}
	return arrow.NewMetadata(keys, values), nil
}

type metadataReader struct {
	p   unsafe.Pointer
	off uintptr
}

func (r *metadataReader) int32() int32 {
	b := unsafe.Slice((*byte)(unsafe.Add(r.p, r.off)), 4)
	r.off += 4
	return int32(binary.NativeEndian.Uint32(b))
}

func (r *metadataReader) string() (string, error) {
	n := r.int32()
	if n < 0 {
		return "", errors.Newf("invalid metadata string length %d", n)
	}
	if n == 0 {
		return "", nil
	}
	s := string(unsafe.Slice((*byte)(unsafe.Add(r.p, r.off)), n))
	r.off += uintptr(n)
	return s, nil
}

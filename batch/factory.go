package batch

import (
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/cockroachdb/errors"
)

// Batch is a materialized column bound to a schema/array pair. A batch borrows
// both descriptors; releasing them stays with whoever owns them. Once they are
// released every accessor returning an error fails with ErrReleased, while Len
// and NullCount report 0.
type Batch interface {
	Schema() *Schema
	Array() *Array
	Type() SQLType
	DataType() (arrow.DataType, error)
	Len() int
	NullCount() int64
	IsNull(i int) (bool, error)
}

// Scalar is the set of fixed width element types a ScalarBatch can hold.
type Scalar interface {
	bool | int8 | int16 | int32 | int64 | float32 | float64
}

type baseBatch struct {
	typ    SQLType
	schema *Schema
	array  *Array
}

func (b *baseBatch) Schema() *Schema { return b.schema }
func (b *baseBatch) Array() *Array   { return b.array }
func (b *baseBatch) Type() SQLType   { return b.typ }

func (b *baseBatch) DataType() (arrow.DataType, error) {
	return b.schema.DataType()
}

func (b *baseBatch) Len() int {
	if !b.live() {
		return 0
	}
	return int(b.array.Length)
}

func (b *baseBatch) NullCount() int64 {
	if !b.live() {
		return 0
	}
	return b.array.NullCount
}

func (b *baseBatch) live() bool {
	return b.schema.IsLive() && b.array.IsLive()
}

func (b *baseBatch) check(i int) error {
	if !b.live() {
		return errors.Wrapf(ErrReleased, "batch %s", b.typ)
	}
	if i < 0 || int64(i) >= b.array.Length {
		return errors.Newf("index %d out of range [0, %d)", i, b.array.Length)
	}
	return nil
}

func (b *baseBatch) IsNull(i int) (bool, error) {
	if err := b.check(i); err != nil {
		return false, err
	}
	if b.array.NullCount == 0 {
		return false, nil
	}
	validity := b.array.Buffers[0]
	if validity == nil {
		return false, nil
	}
	pos := int(b.array.Offset) + i
	if pos/8 >= len(validity) {
		return false, errors.Wrapf(ErrShapeMismatch, "validity bitmap holds %d bits, need %d", len(validity)*8, pos+1)
	}
	return !bitutil.BitIsSet(validity, pos), nil
}

// ScalarBatch holds a column of fixed width values.
type ScalarBatch[T Scalar] struct {
	baseBatch
}

func newScalarBatch[T Scalar](typ SQLType, schema *Schema, array *Array) (Batch, error) {
	if array.NBuffers() != 2 {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s batch needs 2 buffers, got %d", typ, array.NBuffers())
	}
	return &ScalarBatch[T]{baseBatch{typ: typ, schema: schema, array: array}}, nil
}

// Value returns the i-th value. The value of a null slot is unspecified.
func (b *ScalarBatch[T]) Value(i int) (T, error) {
	var zero T
	if err := b.check(i); err != nil {
		return zero, err
	}
	pos := int(b.array.Offset) + i
	data := b.array.Buffers[1]
	if _, ok := any(zero).(bool); ok {
		if pos/8 >= len(data) {
			return zero, errors.Wrapf(ErrShapeMismatch, "values bitmap holds %d bits, need %d", len(data)*8, pos+1)
		}
		return any(bitutil.BitIsSet(data, pos)).(T), nil
	}
	vals := b.values()
	if pos >= len(vals) {
		return zero, errors.Wrapf(ErrShapeMismatch, "values buffer holds %d values, need %d", len(vals), pos+1)
	}
	return vals[pos], nil
}

// Values returns every value, offset applied. For non-bool types the slice
// aliases the values buffer and must not outlive the array.
func (b *ScalarBatch[T]) Values() ([]T, error) {
	if !b.live() {
		return nil, errors.Wrapf(ErrReleased, "batch %s", b.typ)
	}
	var zero T
	n := int(b.array.Length)
	off := int(b.array.Offset)
	if _, ok := any(zero).(bool); ok {
		if int(bitutil.BytesForBits(int64(off+n))) > len(b.array.Buffers[1]) {
			return nil, errors.Wrapf(ErrShapeMismatch, "values bitmap holds %d bits, need %d", len(b.array.Buffers[1])*8, off+n)
		}
		out := make([]T, n)
		for i := range out {
			out[i] = any(bitutil.BitIsSet(b.array.Buffers[1], off+i)).(T)
		}
		return out, nil
	}
	vals := b.values()
	if off+n > len(vals) {
		return nil, errors.Wrapf(ErrShapeMismatch, "values buffer holds %d values, need %d", len(vals), off+n)
	}
	return vals[off : off+n], nil
}

func (b *ScalarBatch[T]) values() []T {
	data := b.array.Buffers[1]
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/size)
}

var (
	_ Batch = (*ScalarBatch[int64])(nil)
	_ Batch = (*StructBatch)(nil)
)

// StructBatch holds a struct column; its fields are batches of their own.
type StructBatch struct {
	baseBatch
}

func newStructBatch(schema *Schema, array *Array) (Batch, error) {
	if array.NBuffers() != 1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "struct batch needs 1 buffer, got %d", array.NBuffers())
	}
	if array.NChildren() != schema.NChildren() {
		return nil, errors.Wrapf(ErrShapeMismatch, "struct batch has %d schema children and %d array children",
			schema.NChildren(), array.NChildren())
	}
	return &StructBatch{baseBatch{typ: Struct, schema: schema, array: array}}, nil
}

// NumChildren returns the number of fields.
func (b *StructBatch) NumChildren() int {
	if !b.live() {
		return 0
	}
	return b.schema.NChildren()
}

// Child builds the batch of field i.
func (b *StructBatch) Child(i int) (Batch, error) {
	if !b.live() {
		return nil, errors.Wrap(ErrReleased, "struct batch")
	}
	s, err := b.schema.Child(i)
	if err != nil {
		return nil, err
	}
	a, err := b.array.Child(i)
	if err != nil {
		return nil, err
	}
	return CreateBatch(s, a)
}

// CreateBatch picks the batch implementation for the schema's format. The
// schema must be live; array is trusted to have the same shape.
func CreateBatch(schema *Schema, array *Array) (Batch, error) {
	assertf(schema != nil, "nil schema passed to CreateBatch")
	assertf(schema.IsLive(), "released schema %q passed to CreateBatch", schema.Format)
	if !array.IsLive() {
		return nil, errors.Wrap(ErrReleased, "failed to create batch")
	}

	b, err := createBatch(schema, array)
	if err != nil {
		if errors.Is(err, ErrUnsupportedType) {
			schema.allocator().metrics.unsupported("create_batch")
		}
		return nil, err
	}
	schema.allocator().debug("msg", "created batch", "format", schema.Format, "length", array.Length)
	return b, nil
}

func createBatch(schema *Schema, array *Array) (Batch, error) {
	info, err := lookupTag("create batch", schema.Format)
	if err != nil {
		return nil, err
	}
	switch info.typ {
	case Boolean:
		return newScalarBatch[bool](info.typ, schema, array)
	case TinyInt:
		return newScalarBatch[int8](info.typ, schema, array)
	case SmallInt:
		return newScalarBatch[int16](info.typ, schema, array)
	case Int:
		return newScalarBatch[int32](info.typ, schema, array)
	case BigInt:
		return newScalarBatch[int64](info.typ, schema, array)
	case Float:
		return newScalarBatch[float32](info.typ, schema, array)
	case Double:
		return newScalarBatch[float64](info.typ, schema, array)
	case Struct:
		return newStructBatch(schema, array)
	default:
		return nil, unsupportedTag("create batch", schema.Format)
	}
}

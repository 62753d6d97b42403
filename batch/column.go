package batch

import (
	"reflect"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
)

// Column is Go-side column data waiting to be laid out into an Array.
type Column struct {
	typ      SQLType
	length   int
	valid    []bool
	values   reflect.Value
	children []*Column
}

var kindToType = map[reflect.Kind]SQLType{
	reflect.Bool:    Boolean,
	reflect.Int8:    TinyInt,
	reflect.Int16:   SmallInt,
	reflect.Int32:   Int,
	reflect.Int64:   BigInt,
	reflect.Int:     BigInt,
	reflect.Float32: Float,
	reflect.Float64: Double,
}

var typeToElem = map[SQLType]reflect.Type{
	Boolean:  reflect.TypeOf(false),
	TinyInt:  reflect.TypeOf(int8(0)),
	SmallInt: reflect.TypeOf(int16(0)),
	Int:      reflect.TypeOf(int32(0)),
	BigInt:   reflect.TypeOf(int64(0)),
	Float:    reflect.TypeOf(float32(0)),
	Double:   reflect.TypeOf(float64(0)),
}

// NewColumn 从 Go 切片创建列
//
//	NewColumn([]int64{1, 2, 3})
//	NewColumn([]*float64{&x, nil}) // nil 表示空值
func NewColumn(values interface{}) (*Column, error) {
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice {
		return nil, errors.Newf("column data must be a slice, got %T", values)
	}

	elem := v.Type().Elem()
	pointers := elem.Kind() == reflect.Ptr
	if pointers {
		elem = elem.Elem()
	}
	typ, ok := kindToType[elem.Kind()]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedType, "column element type %s", elem)
	}

	length := v.Len()
	out := reflect.MakeSlice(reflect.SliceOf(typeToElem[typ]), length, length)
	var valid []bool
	for i := 0; i < length; i++ {
		val := v.Index(i)
		if pointers {
			if val.IsNil() {
				if valid == nil {
					valid = make([]bool, length)
					for j := 0; j < i; j++ {
						valid[j] = true
					}
				}
				continue
			}
			val = val.Elem()
		}
		if valid != nil {
			valid[i] = true
		}
		out.Index(i).Set(val.Convert(typeToElem[typ]))
	}

	return &Column{typ: typ, length: length, valid: valid, values: out}, nil
}

// NewStructColumn groups equally long columns into a struct column.
func NewStructColumn(children ...*Column) (*Column, error) {
	length := 0
	for i, c := range children {
		if i == 0 {
			length = c.length
		} else if c.length != length {
			return nil, errors.Wrapf(ErrShapeMismatch, "field %d has %d rows, expected %d", i, c.length, length)
		}
	}
	return &Column{typ: Struct, length: length, children: children}, nil
}

// WithValidity marks rows whose valid entry is false as null.
func (c *Column) WithValidity(valid []bool) (*Column, error) {
	if len(valid) != c.length {
		return nil, errors.Wrapf(ErrShapeMismatch, "validity has %d entries for %d rows", len(valid), c.length)
	}
	c.valid = valid
	return c, nil
}

// Type returns the engine type of the column.
func (c *Column) Type() SQLType { return c.typ }

// Len returns the number of rows.
func (c *Column) Len() int { return c.length }

// TypeInfo returns the type tree of the column; a column is nullable iff it
// has a validity vector.
func (c *Column) TypeInfo() SQLTypeInfo {
	info := NewTypeInfo(c.typ, c.valid == nil)
	for _, child := range c.children {
		info.Children = append(info.Children, child.TypeInfo())
	}
	return info
}

// BuildArray lays col out into a new array tree shaped like schema. Buffers
// come from the allocator's memory and are owned by the returned tree.
func (a *Allocator) BuildArray(schema *Schema, col *Column) (*Array, error) {
	arr, err := a.BuildArrayShape(schema)
	if err != nil {
		return nil, err
	}
	if err := a.fillArray(arr, schema, col); err != nil {
		arr.Release()
		return nil, errors.Wrap(err, "failed to build array")
	}
	return arr, nil
}

// BuildArray builds with the default allocator.
func BuildArray(schema *Schema, col *Column) (*Array, error) {
	return defaultAllocator.BuildArray(schema, col)
}

func (a *Allocator) fillArray(arr *Array, schema *Schema, col *Column) error {
	typ, err := TagToType(schema.Format)
	if err != nil {
		return err
	}
	if typ != col.typ {
		return errors.Wrapf(ErrShapeMismatch, "schema %q is %s, column is %s", schema.Format, typ, col.typ)
	}
	if len(col.children) != schema.NChildren() {
		return errors.Wrapf(ErrShapeMismatch, "schema has %d children, column has %d", schema.NChildren(), len(col.children))
	}

	arr.Length = int64(col.length)
	arr.NullCount = 0
	if col.valid != nil {
		validity := a.newBitmap(col.length)
		bits := validity.Bytes()
		for i, ok := range col.valid {
			bitutil.SetBitTo(bits, i, ok)
			if !ok {
				arr.NullCount++
			}
		}
		if err := arr.SetBuffer(0, validity); err != nil {
			return err
		}
	}

	if typ == Struct {
		for i, child := range arr.Children() {
			if err := a.fillArray(child, schema.Children()[i], col.children[i]); err != nil {
				return err
			}
		}
		return nil
	}

	return arr.SetBuffer(1, a.valuesBuffer(col))
}

func (a *Allocator) newBitmap(n int) *memory.Buffer {
	buf := memory.NewResizableBuffer(a.mem)
	buf.Resize(int(bitutil.BytesForBits(int64(n))))
	clear(buf.Bytes())
	return buf
}

func (a *Allocator) valuesBuffer(col *Column) *memory.Buffer {
	if col.typ == Boolean {
		buf := a.newBitmap(col.length)
		bits := buf.Bytes()
		for i, v := range col.values.Interface().([]bool) {
			bitutil.SetBitTo(bits, i, v)
		}
		return buf
	}

	size := int(col.values.Type().Elem().Size())
	buf := memory.NewResizableBuffer(a.mem)
	buf.Resize(col.length * size)
	if col.length > 0 {
		src := unsafe.Slice((*byte)(col.values.UnsafePointer()), col.length*size)
		copy(buf.Bytes(), src)
	}
	return buf
}

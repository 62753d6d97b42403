package batch

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// Arrow format tags understood by the engine.
const (
	TagBoolean  = "b"
	TagTinyInt  = "c"
	TagSmallInt = "s"
	TagInt      = "i"
	TagBigInt   = "l"
	TagFloat    = "f"
	TagDouble   = "g"
	TagStruct   = "+s"
)

type tagInfo struct {
	typ      SQLType
	buffers  int
	bitWidth int
	arrow    arrow.DataType
}

// tagTable is the closed set of supported tags. Each tag maps to exactly one
// SQLType and each supported SQLType appears exactly once.
var tagTable = map[string]tagInfo{
	TagBoolean:  {typ: Boolean, buffers: 2, bitWidth: 1, arrow: arrow.FixedWidthTypes.Boolean},
	TagTinyInt:  {typ: TinyInt, buffers: 2, bitWidth: 8, arrow: arrow.PrimitiveTypes.Int8},
	TagSmallInt: {typ: SmallInt, buffers: 2, bitWidth: 16, arrow: arrow.PrimitiveTypes.Int16},
	TagInt:      {typ: Int, buffers: 2, bitWidth: 32, arrow: arrow.PrimitiveTypes.Int32},
	TagBigInt:   {typ: BigInt, buffers: 2, bitWidth: 64, arrow: arrow.PrimitiveTypes.Int64},
	TagFloat:    {typ: Float, buffers: 2, bitWidth: 32, arrow: arrow.PrimitiveTypes.Float32},
	TagDouble:   {typ: Double, buffers: 2, bitWidth: 64, arrow: arrow.PrimitiveTypes.Float64},
	// children carry their own buffers; only the validity bitmap lives here
	TagStruct: {typ: Struct, buffers: 1},
}

var typeTable = func() map[SQLType]string {
	m := make(map[SQLType]string, len(tagTable))
	for tag, info := range tagTable {
		m[info.typ] = tag
	}
	return m
}()

// leadingCode returns the part of a format string that selects the type: one
// character, or two when the first one is '+'.
func leadingCode(format string) string {
	if len(format) >= 2 && format[0] == '+' {
		return format[:2]
	}
	if len(format) >= 1 && format[0] != '+' {
		return format[:1]
	}
	return format
}

func lookupTag(op, format string) (tagInfo, error) {
	info, ok := tagTable[leadingCode(format)]
	if !ok {
		return tagInfo{}, unsupportedTag(op, format)
	}
	return info, nil
}

// TagToType maps an arrow format string to the engine type.
func TagToType(format string) (SQLType, error) {
	info, err := lookupTag("batch", format)
	if err != nil {
		return Null, err
	}
	return info.typ, nil
}

// TypeToTag maps an engine type to its arrow format string.
func TypeToTag(t SQLType) (string, error) {
	tag, ok := typeTable[t]
	if !ok {
		return "", unsupportedType("arrow", t)
	}
	return tag, nil
}

// BufferCountForTag returns how many buffers an array of the given format owns.
func BufferCountForTag(format string) (int, error) {
	info, err := lookupTag("batch", format)
	if err != nil {
		return 0, err
	}
	return info.buffers, nil
}

// BitWidthForTag returns the width of one value in the values buffer, 0 for
// nested types.
func BitWidthForTag(format string) (int, error) {
	info, err := lookupTag("batch", format)
	if err != nil {
		return 0, err
	}
	return info.bitWidth, nil
}

// ArrowTypeForTag returns the arrow-go type of a scalar format. Struct types
// depend on their children, use (*Schema).DataType for those.
func ArrowTypeForTag(format string) (arrow.DataType, error) {
	info, err := lookupTag("arrow", format)
	if err != nil {
		return nil, err
	}
	if info.arrow == nil {
		return nil, unsupportedTag("arrow", format)
	}
	return info.arrow, nil
}

package batch

import "fmt"

// SQLType identifies an engine-side SQL type.
type SQLType int32

const (
	Null SQLType = iota
	Boolean
	TinyInt
	SmallInt
	Int
	BigInt
	Float
	Double
	Decimal
	Varchar
	Text
	Date
	Timestamp
	Struct
)

var sqlTypeNames = [...]string{
	Null:      "NULL",
	Boolean:   "BOOLEAN",
	TinyInt:   "TINYINT",
	SmallInt:  "SMALLINT",
	Int:       "INT",
	BigInt:    "BIGINT",
	Float:     "FLOAT",
	Double:    "DOUBLE",
	Decimal:   "DECIMAL",
	Varchar:   "VARCHAR",
	Text:      "TEXT",
	Date:      "DATE",
	Timestamp: "TIMESTAMP",
	Struct:    "STRUCT",
}

func (t SQLType) String() string {
	if t >= 0 && int(t) < len(sqlTypeNames) {
		return sqlTypeNames[t]
	}
	return fmt.Sprintf("SQLType(%d)", int32(t))
}

// TypeInfo is the part of the engine's type descriptor tree this package reads.
type TypeInfo interface {
	ElementType() SQLType
	IsNullable() bool
	ChildCount() int
	ChildAt(i int) TypeInfo
}

// SQLTypeInfo is a plain TypeInfo tree.
type SQLTypeInfo struct {
	Type     SQLType
	NotNull  bool
	Children []SQLTypeInfo
}

var _ TypeInfo = SQLTypeInfo{}

// NewTypeInfo 创建类型描述
// 示例: NewTypeInfo(Struct, true, NewTypeInfo(Int, true), NewTypeInfo(Double, false))
func NewTypeInfo(t SQLType, notNull bool, children ...SQLTypeInfo) SQLTypeInfo {
	return SQLTypeInfo{Type: t, NotNull: notNull, Children: children}
}

func (ti SQLTypeInfo) ElementType() SQLType { return ti.Type }
func (ti SQLTypeInfo) IsNullable() bool     { return !ti.NotNull }
func (ti SQLTypeInfo) ChildCount() int      { return len(ti.Children) }

func (ti SQLTypeInfo) ChildAt(i int) TypeInfo {
	return ti.Children[i]
}

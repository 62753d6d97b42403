package operators

import (
	"github.com/isesword/cider-bridge/batch"
)

// Expr 列表达式，引用一个带类型的输入列
type Expr struct {
	name string
	info batch.SQLTypeInfo
}

// Col 创建列引用表达式
func Col(name string, info batch.SQLTypeInfo) Expr {
	return Expr{name: name, info: info}
}

// Cols 创建多列引用表达式，所有列共享同一类型
func Cols(info batch.SQLTypeInfo, names ...string) []Expr {
	exprs := make([]Expr, len(names))
	for i, name := range names {
		exprs[i] = Col(name, info)
	}
	return exprs
}

// Name returns the referenced column name.
func (e Expr) Name() string { return e.name }

// TypeInfo returns the type of the referenced column.
func (e Expr) TypeInfo() batch.SQLTypeInfo { return e.info }

// Alias 设置别名
func (e Expr) Alias(name string) Expr {
	return Expr{name: name, info: e.info}
}

// NotNull marks the column as non-nullable.
func (e Expr) NotNull() Expr {
	info := e.info
	info.NotNull = true
	return Expr{name: e.name, info: info}
}

package operators

import (
	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/isesword/cider-bridge/batch"
)

// OpNode is one operator of a query plan. It hands its input expressions to the
// translator it creates; everything after that is the translator's business.
type OpNode interface {
	Name() string
	InputCols() []Expr
	ToTranslator(succ Translator) Translator
}

// SourceNode feeds externally produced batches into a pipeline.
type SourceNode struct {
	inputCols []Expr
	logger    log.Logger
}

// NewSourceNode creates a source over the given input columns.
func NewSourceNode(inputCols ...Expr) *SourceNode {
	return &SourceNode{inputCols: inputCols, logger: log.NewNopLogger()}
}

// WithLogger sets the logger used by translators of this node.
func (n *SourceNode) WithLogger(logger log.Logger) *SourceNode {
	n.logger = logger
	return n
}

func (n *SourceNode) Name() string      { return "SourceNode" }
func (n *SourceNode) InputCols() []Expr { return n.inputCols }

// TypeInfo returns the struct type formed by the input columns.
func (n *SourceNode) TypeInfo() batch.SQLTypeInfo {
	info := batch.NewTypeInfo(batch.Struct, true)
	for _, e := range n.inputCols {
		info.Children = append(info.Children, e.TypeInfo())
	}
	return info
}

// Schema builds the schema tree of the node's input. The caller owns the
// result and must release it.
func (n *SourceNode) Schema(alloc *batch.Allocator) (*batch.Schema, error) {
	s, err := alloc.BuildSchema(n.TypeInfo())
	if err != nil {
		return nil, errors.Wrap(err, "failed to build source schema")
	}
	for i, child := range s.Children() {
		child.Name = n.inputCols[i].Name()
	}
	return s, nil
}

func (n *SourceNode) ToTranslator(succ Translator) Translator {
	return &SourceTranslator{node: n, succ: succ}
}

var _ OpNode = (*SourceNode)(nil)

func (n *SourceNode) debug(keyvals ...interface{}) {
	_ = level.Debug(n.logger).Log(keyvals...)
}

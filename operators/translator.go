package operators

import (
	"github.com/cockroachdb/errors"

	"github.com/isesword/cider-bridge/batch"
)

// Translator consumes batches produced upstream.
type Translator interface {
	Consume(b batch.Batch) error
}

// SourceTranslator turns descriptor pairs into batches and forwards them.
type SourceTranslator struct {
	node *SourceNode
	succ Translator
}

// Successor returns the translator batches are forwarded to.
func (t *SourceTranslator) Successor() Translator { return t.succ }

// ConsumeDescriptors wraps schema and array into a batch and forwards it. The
// descriptors stay owned by the caller.
func (t *SourceTranslator) ConsumeDescriptors(schema *batch.Schema, array *batch.Array) error {
	b, err := batch.CreateBatch(schema, array)
	if err != nil {
		return errors.Wrap(err, "failed to create source batch")
	}
	return t.Consume(b)
}

// Consume checks that b carries the node's input columns and forwards it.
func (t *SourceTranslator) Consume(b batch.Batch) error {
	st, ok := b.(*batch.StructBatch)
	if !ok {
		return errors.Wrapf(batch.ErrShapeMismatch, "source expects a struct batch, got %s", b.Type())
	}
	cols := t.node.InputCols()
	if st.NumChildren() != len(cols) {
		return errors.Wrapf(batch.ErrShapeMismatch, "source has %d input columns, batch has %d fields",
			len(cols), st.NumChildren())
	}
	for i, e := range cols {
		field, err := b.Schema().Child(i)
		if err != nil {
			return err
		}
		typ, err := batch.TagToType(field.Format)
		if err != nil {
			return err
		}
		if typ != e.TypeInfo().ElementType() {
			return errors.Wrapf(batch.ErrShapeMismatch, "column %q is %s, batch field %d is %s",
				e.Name(), e.TypeInfo().ElementType(), i, typ)
		}
	}
	t.node.debug("msg", "source batch", "rows", b.Len(), "columns", len(cols))
	if t.succ == nil {
		return nil
	}
	return t.succ.Consume(b)
}

// CollectTranslator keeps every batch it receives.
type CollectTranslator struct {
	batches []batch.Batch
}

func (c *CollectTranslator) Consume(b batch.Batch) error {
	c.batches = append(c.batches, b)
	return nil
}

// Batches returns the collected batches in arrival order.
func (c *CollectTranslator) Batches() []batch.Batch { return c.batches }

var (
	_ Translator = (*SourceTranslator)(nil)
	_ Translator = (*CollectTranslator)(nil)
)

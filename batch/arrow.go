package batch

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
)

// ToArrow wraps the buffers of b into an arrow-go array without copying. The
// result aliases the batch's memory and must be released before the batch's
// descriptors are.
func ToArrow(b Batch) (arrow.Array, error) {
	if !b.Schema().IsLive() || !b.Array().IsLive() {
		return nil, errors.Wrap(ErrReleased, "failed to convert batch to arrow")
	}
	data, err := arrowData(b.Schema(), b.Array())
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert batch to arrow")
	}
	defer data.Release()
	return array.MakeFromData(data), nil
}

func arrowData(s *Schema, a *Array) (arrow.ArrayData, error) {
	dt, err := s.DataType()
	if err != nil {
		return nil, err
	}
	if a.NChildren() != s.NChildren() {
		return nil, errors.Wrapf(ErrShapeMismatch, "schema has %d children, array has %d", s.NChildren(), a.NChildren())
	}

	buffers := make([]*memory.Buffer, len(a.Buffers))
	for i, b := range a.Buffers {
		if b != nil {
			buffers[i] = memory.NewBufferBytes(b)
		}
	}
	defer func() {
		for _, b := range buffers {
			if b != nil {
				b.Release()
			}
		}
	}()

	children := make([]arrow.ArrayData, 0, a.NChildren())
	defer func() {
		for _, c := range children {
			c.Release()
		}
	}()
	for i, child := range a.Children() {
		cd, err := arrowData(s.Children()[i], child)
		if err != nil {
			return nil, err
		}
		children = append(children, cd)
	}

	return array.NewData(dt, int(a.Length), buffers, children, int(a.NullCount), int(a.Offset)), nil
}

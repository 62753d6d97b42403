package batch

import (
	"github.com/cockroachdb/errors"
)

// BuildSchema mirrors the type tree rooted at info into a schema tree. Every
// node of the result is live. If any node has an unsupported type the part
// built so far is released and the error returned.
func (a *Allocator) BuildSchema(info TypeInfo) (*Schema, error) {
	root := a.AllocateSchema()
	if err := a.buildSchema(root, info); err != nil {
		root.Release()
		a.metrics.unsupported("build_schema")
		return nil, err
	}
	a.debug("msg", "built schema", "format", root.Format, "children", root.NChildren())
	return root, nil
}

// BuildSchema builds with the default allocator.
func BuildSchema(info TypeInfo) (*Schema, error) {
	return defaultAllocator.BuildSchema(info)
}

func (a *Allocator) buildSchema(s *Schema, info TypeInfo) error {
	format, err := TypeToTag(info.ElementType())
	if err != nil {
		return err
	}
	s.Format = format

	n := info.ChildCount()
	// dictionary encoding is not supported yet, the slot stays empty
	h := newHolder(n, info.IsNullable(), false, a.AllocateSchema)
	s.attach(h)

	for i, child := range s.Children() {
		if err := a.buildSchema(child, info.ChildAt(i)); err != nil {
			return err
		}
	}
	return nil
}

// BuildArrayShape allocates a live array tree with the same shape as schema,
// with one empty buffer slot per buffer the format needs. Lengths and buffers
// are left for the caller to fill.
func (a *Allocator) BuildArrayShape(schema *Schema) (*Array, error) {
	if !schema.IsLive() {
		return nil, errors.Wrap(ErrReleased, "failed to build array shape")
	}
	root := a.AllocateArray()
	if err := a.buildArrayShape(root, schema); err != nil {
		root.Release()
		return nil, err
	}
	return root, nil
}

// BuildArrayShape builds with the default allocator.
func BuildArrayShape(schema *Schema) (*Array, error) {
	return defaultAllocator.BuildArrayShape(schema)
}

func (a *Allocator) buildArrayShape(arr *Array, schema *Schema) error {
	nBuffers, err := BufferCountForTag(schema.Format)
	if err != nil {
		return err
	}
	h := &arrayHolder{
		holder: newHolder(schema.NChildren(), false, schema.Dictionary() != nil, a.AllocateArray),
	}
	arr.attach(h, nBuffers)

	for i, child := range arr.Children() {
		if err := a.buildArrayShape(child, schema.Children()[i]); err != nil {
			return err
		}
	}
	if dict := arr.Dictionary(); dict != nil {
		return a.buildArrayShape(dict, schema.Dictionary())
	}
	return nil
}

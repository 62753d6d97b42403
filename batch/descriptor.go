package batch

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/errors"
)

// Schema flags, bit-identical to the Arrow C data interface.
const (
	FlagDictionaryOrdered int64 = 1
	FlagNullable          int64 = 2
	FlagMapKeysSorted     int64 = 4
)

// Schema describes the type of one column. It mirrors struct ArrowSchema;
// children and dictionary are owned by the holder of the node.
//
// A schema is live while it has a release callback. After Release it keeps its
// format and name for diagnostics but exposes no children.
type Schema struct {
	Format   string
	Name     string
	Metadata arrow.Metadata
	Flags    int64

	release func(*Schema)
	holder  *holder[*Schema]
	alloc   *Allocator
}

// IsLive reports whether s still owns its children.
func (s *Schema) IsLive() bool {
	return s != nil && s.release != nil
}

// Release runs the release callback. Releasing a nil, fresh or already released
// schema does nothing.
func (s *Schema) Release() {
	if !s.IsLive() {
		return
	}
	s.release(s)
}

// Nullable reports whether FlagNullable is set.
func (s *Schema) Nullable() bool {
	return s.Flags&FlagNullable != 0
}

// NChildren returns the number of child schemas, 0 once released.
func (s *Schema) NChildren() int {
	if !s.IsLive() || s.holder == nil {
		return 0
	}
	return len(s.holder.children)
}

// Children returns the child schemas. The slice belongs to s and is valid until
// s is released.
func (s *Schema) Children() []*Schema {
	if !s.IsLive() || s.holder == nil {
		return nil
	}
	return s.holder.children
}

// Child returns child i.
func (s *Schema) Child(i int) (*Schema, error) {
	if !s.IsLive() {
		return nil, errors.Wrapf(ErrReleased, "schema %q", s.Format)
	}
	if i < 0 || i >= s.NChildren() {
		return nil, errors.Newf("child index %d out of range [0, %d)", i, s.NChildren())
	}
	return s.holder.children[i], nil
}

// Dictionary returns the dictionary schema, nil when there is none.
func (s *Schema) Dictionary() *Schema {
	if !s.IsLive() || s.holder == nil {
		return nil
	}
	return s.holder.dictionary
}

// attach hands h to s and makes s live.
func (s *Schema) attach(h *holder[*Schema]) {
	assertf(!s.IsLive(), "schema %q already owns a holder", s.Format)
	s.holder = h
	if h.nullable {
		s.Flags |= FlagNullable
	} else {
		s.Flags &^= FlagNullable
	}
	s.release = releaseSchema
	s.allocator().metrics.attached(kindSchema)
}

func (s *Schema) allocator() *Allocator {
	if s.alloc == nil {
		return defaultAllocator
	}
	return s.alloc
}

// DataType returns the arrow-go type described by the tree rooted at s.
func (s *Schema) DataType() (arrow.DataType, error) {
	if !s.IsLive() {
		return nil, errors.Wrapf(ErrReleased, "schema %q", s.Format)
	}
	typ, err := TagToType(s.Format)
	if err != nil {
		return nil, err
	}
	if typ != Struct {
		return ArrowTypeForTag(s.Format)
	}
	fields := make([]arrow.Field, s.NChildren())
	for i, c := range s.Children() {
		dt, err := c.DataType()
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: c.Nullable(), Metadata: c.Metadata}
	}
	return arrow.StructOf(fields...), nil
}

// Array describes the buffers of one column. It mirrors struct ArrowArray.
// Buffers are borrowed unless handed over with SetBuffer.
type Array struct {
	Length    int64
	NullCount int64
	Offset    int64
	Buffers   [][]byte

	release func(*Array)
	holder  *arrayHolder
	alloc   *Allocator
}

// IsLive reports whether a still owns its children.
func (a *Array) IsLive() bool {
	return a != nil && a.release != nil
}

// Release runs the release callback. Releasing a nil, fresh or already released
// array does nothing.
func (a *Array) Release() {
	if !a.IsLive() {
		return
	}
	a.release(a)
}

// NBuffers returns the number of buffer slots.
func (a *Array) NBuffers() int { return len(a.Buffers) }

// NChildren returns the number of child arrays, 0 once released.
func (a *Array) NChildren() int {
	if !a.IsLive() || a.holder == nil {
		return 0
	}
	return len(a.holder.children)
}

// Children returns the child arrays. The slice belongs to a and is valid until
// a is released.
func (a *Array) Children() []*Array {
	if !a.IsLive() || a.holder == nil {
		return nil
	}
	return a.holder.children
}

// Child returns child i.
func (a *Array) Child(i int) (*Array, error) {
	if !a.IsLive() {
		return nil, errors.Wrap(ErrReleased, "array")
	}
	if i < 0 || i >= a.NChildren() {
		return nil, errors.Newf("child index %d out of range [0, %d)", i, a.NChildren())
	}
	return a.holder.children[i], nil
}

// Dictionary returns the dictionary array, nil when there is none.
func (a *Array) Dictionary() *Array {
	if !a.IsLive() || a.holder == nil {
		return nil
	}
	return a.holder.dictionary
}

// SetBuffer stores buf in slot i. The holder takes over the caller's reference
// and releases it together with a.
func (a *Array) SetBuffer(i int, buf *memory.Buffer) error {
	if !a.IsLive() {
		return errors.Wrap(ErrReleased, "array")
	}
	if i < 0 || i >= len(a.Buffers) {
		return errors.Newf("buffer index %d out of range [0, %d)", i, len(a.Buffers))
	}
	a.Buffers[i] = buf.Bytes()
	a.holder.buffers = append(a.holder.buffers, buf)
	return nil
}

// AddCleanup registers fn to run after a and its children are released. It is
// how foreign memory referenced by Buffers is handed back to its owner.
func (a *Array) AddCleanup(fn func()) error {
	if !a.IsLive() {
		return errors.Wrap(ErrReleased, "array")
	}
	a.holder.cleanups = append(a.holder.cleanups, fn)
	return nil
}

func (a *Array) attach(h *arrayHolder, nBuffers int) {
	assertf(!a.IsLive(), "array already owns a holder")
	a.holder = h
	a.Buffers = make([][]byte, nBuffers)
	a.release = releaseArray
	a.allocator().metrics.attached(kindArray)
}

func (a *Array) allocator() *Allocator {
	if a.alloc == nil {
		return defaultAllocator
	}
	return a.alloc
}

package batch

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Allocator hands out descriptors. It carries the logger, metrics and buffer
// memory shared by every node of the trees it builds.
type Allocator struct {
	logger  log.Logger
	metrics *Metrics
	mem     memory.Allocator
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger used for build and release tracing.
func WithLogger(logger log.Logger) Option {
	return func(a *Allocator) { a.logger = logger }
}

// WithMetrics records descriptor lifetimes into m.
func WithMetrics(m *Metrics) Option {
	return func(a *Allocator) { a.metrics = m }
}

// WithMemory sets where array buffers are allocated. Arrays that will be
// exported across the C boundary need C memory, e.g. mallocator.NewMallocator().
func WithMemory(mem memory.Allocator) Option {
	return func(a *Allocator) { a.mem = mem }
}

// NewAllocator creates an Allocator.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		logger: log.NewNopLogger(),
		mem:    memory.DefaultAllocator,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAllocator = NewAllocator()

// DefaultAllocator returns the allocator used by the package level functions.
func DefaultAllocator() *Allocator { return defaultAllocator }

// Memory returns the buffer allocator.
func (a *Allocator) Memory() memory.Allocator { return a.mem }

// AllocateSchema returns a zeroed schema descriptor with no ownership attached.
// Releasing it is a no-op.
func (a *Allocator) AllocateSchema() *Schema {
	a.metrics.allocated(kindSchema)
	return &Schema{alloc: a}
}

// AllocateArray returns a zeroed array descriptor with no ownership attached.
// Releasing it is a no-op.
func (a *Allocator) AllocateArray() *Array {
	a.metrics.allocated(kindArray)
	return &Array{alloc: a}
}

// AllocateSchema allocates from the default allocator.
func AllocateSchema() *Schema { return defaultAllocator.AllocateSchema() }

// AllocateArray allocates from the default allocator.
func AllocateArray() *Array { return defaultAllocator.AllocateArray() }

func (a *Allocator) debug(keyvals ...interface{}) {
	_ = level.Debug(a.logger).Log(keyvals...)
}

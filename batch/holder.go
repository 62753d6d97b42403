package batch

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
)

type node interface {
	comparable
	IsLive() bool
}

// holder owns the child descriptors of one schema or array node and its
// dictionary slot. It never releases them; the release protocol does that
// before calling destroy.
type holder[T node] struct {
	children   []T
	dictionary T
	nullable   bool
}

func newHolder[T node](n int, nullable, dictionary bool, alloc func() T) *holder[T] {
	h := &holder[T]{
		children: make([]T, n),
		nullable: nullable,
	}
	for i := range h.children {
		h.children[i] = alloc()
	}
	if dictionary {
		h.dictionary = alloc()
	}
	return h
}

func (h *holder[T]) destroy() {
	for i, c := range h.children {
		assertf(!c.IsLive(), "child %d is still live while its holder is destroyed", i)
	}
	assertf(!h.dictionary.IsLive(), "dictionary is still live while its holder is destroyed")

	var zero T
	clear(h.children)
	h.children = nil
	h.dictionary = zero
}

// arrayHolder additionally owns the buffers set through (*Array).SetBuffer and
// any cleanup registered for foreign memory.
type arrayHolder struct {
	*holder[*Array]
	buffers  []*memory.Buffer
	cleanups []func()
}

func (h *arrayHolder) destroy() {
	h.holder.destroy()
	for _, b := range h.buffers {
		b.Release()
	}
	h.buffers = nil
	// foreign owners go last, after everything borrowing from them is gone
	for i := len(h.cleanups) - 1; i >= 0; i-- {
		h.cleanups[i]()
	}
	h.cleanups = nil
}

package batch

// releaseSchema is the release callback of every schema built here. Children
// and the dictionary go first, then the holder, then s is marked released.
func releaseSchema(s *Schema) {
	if !s.IsLive() {
		return
	}
	h := s.holder
	assertf(h != nil, "live schema %q has no holder", s.Format)

	for i, child := range h.children {
		if child.IsLive() {
			child.release(child)
			assertf(!child.IsLive(), "child %d of schema %q still live after release", i, s.Format)
		}
	}

	if dict := h.dictionary; dict.IsLive() {
		dict.release(dict)
		assertf(!dict.IsLive(), "dictionary of schema %q still live after release", s.Format)
	}

	h.destroy()

	s.release = nil
	s.holder = nil

	alloc := s.allocator()
	alloc.metrics.released(kindSchema)
	alloc.debug("msg", "released descriptor", "kind", kindSchema, "format", s.Format, "name", s.Name)
}

// releaseArray is the array counterpart of releaseSchema.
func releaseArray(a *Array) {
	if !a.IsLive() {
		return
	}
	h := a.holder
	assertf(h != nil, "live array has no holder")

	for i, child := range h.children {
		if child.IsLive() {
			child.release(child)
			assertf(!child.IsLive(), "child %d of array still live after release", i)
		}
	}

	if dict := h.dictionary; dict.IsLive() {
		dict.release(dict)
		assertf(!dict.IsLive(), "dictionary of array still live after release")
	}

	h.destroy()

	a.release = nil
	a.holder = nil
	a.Buffers = nil

	alloc := a.allocator()
	alloc.metrics.released(kindArray)
	alloc.debug("msg", "released descriptor", "kind", kindArray, "length", a.Length)
}

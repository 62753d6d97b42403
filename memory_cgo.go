//go:build cgo
// +build cgo

package main

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/memory/mallocator"
)

// bufferMemory allocates array buffers in C memory so they can be handed to
// the engine as they are.
func bufferMemory() memory.Allocator {
	return mallocator.NewMallocator()
}

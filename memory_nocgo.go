//go:build !cgo
// +build !cgo

package main

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// bufferMemory falls back to the Go heap; without cgo nothing reaches the engine.
func bufferMemory() memory.Allocator {
	return memory.DefaultAllocator
}

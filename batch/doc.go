// Package batch builds, owns and tears down Arrow C data interface style
// descriptor trees for the engine.
//
// A Schema or Array is live while it holds a release callback. Children and the
// optional dictionary of a node belong to its holder and are released, deepest
// first, when the node itself is released. Releasing twice is a no-op.
//
// Type tags follow the Arrow format strings; only the fixed width scalar types
// and struct are supported. Everything else fails with ErrUnsupportedType.
package batch

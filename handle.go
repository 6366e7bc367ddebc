// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpures

import "fmt"

// Handle is an opaque, copyable identifier for a slot in a [Storage] arena.
// The type parameter ties a handle to the resource kind it refers to, so
// handles of different kinds cannot be mixed up at compile time.
//
// A Handle carries no payload; it only supports equality and lookup. The
// zero value is the nil handle and resolves to nothing in any arena.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// IsNil reports whether h is the zero handle, i.e. was never obtained from
// an arena. It does not check liveness: a handle whose slot has since been
// removed is non-nil but no longer resolves.
func (h Handle[T]) IsNil() bool {
	return h.generation == 0
}

// String returns a debug representation of the handle identity.
func (h Handle[T]) String() string {
	if h.IsNil() {
		return "Handle(nil)"
	}
	return fmt.Sprintf("Handle(%d v%d)", h.index, h.generation)
}

// Pair is the element type stored by [BufferedStorage]: two physical copies
// of one logical resource, one per frame in flight.
type Pair[T any] [NumBuffers]T

// AsBuffered reinterprets an unbuffered handle as a handle into the
// Storage[Pair[T]] underlying a [BufferedStorage]. The slot identity is
// preserved bit for bit; only the typing changes. Keeping the conversion
// explicit makes every "same slot, different view" crossing auditable.
func AsBuffered[T any](h Handle[T]) Handle[Pair[T]] {
	return Handle[Pair[T]]{index: h.index, generation: h.generation}
}

// AsUnbuffered is the inverse of [AsBuffered].
func AsUnbuffered[T any](h Handle[Pair[T]]) Handle[T] {
	return Handle[T]{index: h.index, generation: h.generation}
}

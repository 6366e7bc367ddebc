// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"fmt"

	"github.com/gogpu/gpures"
)

// Async marks a resource type as in flight. A gpures.Handle[Async[T]] is a
// ticket into the loader's pending table, distinct at the type level from
// the gpures.Handle[T] that refers to the resident resource.
type Async[T any] struct {
	_ [0]T
}

// Ticket types returned by the asynchronous loader entry points.
type (
	UniformTicket = BufferHandle[Async[UniformBuffer]]
	VertexTicket  = BufferHandle[Async[VertexBuffer]]
	IndexTicket   = BufferHandle[Async[IndexBuffer]]
	TextureTicket = gpures.Handle[Async[Texture]]
)

// BufferHandle refers to a contiguous range of elements inside a buffer.
// Several BufferHandles may view disjoint ranges of the same underlying
// buffer, which is how batched uploads hand out one slice per consumer.
type BufferHandle[T any] struct {
	handle gpures.Handle[T]
	first  uint32
	count  uint32
}

// WholeBuffer returns a view of count elements starting at element zero.
func WholeBuffer[T any](h gpures.Handle[T], count uint32) BufferHandle[T] {
	return BufferHandle[T]{handle: h, first: 0, count: count}
}

// SubBuffer returns a view of count elements starting at first, relative
// to the start of the underlying buffer.
func SubBuffer[T any](h BufferHandle[T], first, count uint32) BufferHandle[T] {
	if first < h.first || uint64(first)+uint64(count) > uint64(h.first)+uint64(h.count) {
		panic(fmt.Sprintf("upload: sub buffer [%d, %d) escapes parent [%d, %d)",
			first, uint64(first)+uint64(count), h.first, h.first+h.count))
	}
	return BufferHandle[T]{handle: h.handle, first: first, count: count}
}

// Handle returns the arena handle of the underlying buffer. Views of the
// same buffer compare equal here regardless of their ranges.
func (h BufferHandle[T]) Handle() gpures.Handle[T] { return h.handle }

// First returns the index of the first element in the view.
func (h BufferHandle[T]) First() uint32 { return h.first }

// Count returns the number of elements in the view.
func (h BufferHandle[T]) Count() uint32 { return h.count }

// IsNil reports whether the view refers to no buffer at all.
func (h BufferHandle[T]) IsNil() bool { return h.handle.IsNil() }

// Split returns one single-element view per element of h, in order.
func (h BufferHandle[T]) Split() []BufferHandle[T] {
	out := make([]BufferHandle[T], h.count)
	for i := uint32(0); i < h.count; i++ {
		out[i] = BufferHandle[T]{handle: h.handle, first: h.first + i, count: 1}
	}
	return out
}

// String implements fmt.Stringer.
func (h BufferHandle[T]) String() string {
	return fmt.Sprintf("%v[%d:%d]", h.handle, h.first, h.first+h.count)
}

// rebase transfers a view's range onto another buffer handle. Used when a
// pending upload resolves and the range must survive the move from the
// async table to the resident store.
func rebase[From, To any](view BufferHandle[From], target gpures.Handle[To]) BufferHandle[To] {
	return BufferHandle[To]{handle: target, first: view.first, count: view.count}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpures

import (
	"fmt"
	"iter"
)

// NumBuffers is the number of physical copies a [BufferedStorage] keeps per
// logical resource: one per frame in flight.
const NumBuffers = 2

// BufferedStorage is a [Storage] of [Pair] values: one slot per logical
// resource, two physical copies for frame-in-flight double buffering.
// Callers that only need "the resource" hold a plain Handle[T]; render
// submission picks the copy for the current frame index with Get.
//
// Both copies always live in the same slot, so a handle addresses the same
// two physical elements for its entire lifetime.
type BufferedStorage[T any] struct {
	storage Storage[Pair[T]]
}

// Add inserts both copies of a resource and returns the unbuffered handle
// view of the new slot.
func (s *BufferedStorage[T]) Add(values Pair[T]) Handle[T] {
	return AsUnbuffered(s.storage.Add(values))
}

// Remove frees the slot and returns both copies, or false for stale
// handles.
func (s *BufferedStorage[T]) Remove(h Handle[T]) (Pair[T], bool) {
	return s.storage.Remove(AsBuffered(h))
}

// Get returns the copy for the given frame index. idx must be 0 or 1;
// anything else is a programming error and panics. Stale handles return
// false.
func (s *BufferedStorage[T]) Get(h Handle[T], idx int) (*T, bool) {
	if idx < 0 || idx >= NumBuffers {
		panic(fmt.Sprintf("gpures: buffer index %d out of range [0,%d)", idx, NumBuffers))
	}
	pair, ok := s.storage.Get(AsBuffered(h))
	if !ok {
		return nil, false
	}
	return &pair[idx], true
}

// GetAll returns both copies, or false for stale handles.
func (s *BufferedStorage[T]) GetAll(h Handle[T]) (*Pair[T], bool) {
	return s.storage.Get(AsBuffered(h))
}

// Has reports whether h refers to a live resource.
func (s *BufferedStorage[T]) Has(h Handle[T]) bool {
	return s.storage.Has(AsBuffered(h))
}

// Len returns the number of live logical resources.
func (s *BufferedStorage[T]) Len() int {
	return s.storage.Len()
}

// IsEmpty reports whether the storage holds no live resources.
func (s *BufferedStorage[T]) IsEmpty() bool {
	return s.storage.IsEmpty()
}

// All iterates over all live pairs. Order is unspecified.
func (s *BufferedStorage[T]) All() iter.Seq2[Handle[T], *Pair[T]] {
	return func(yield func(Handle[T], *Pair[T]) bool) {
		for h, pair := range s.storage.All() {
			if !yield(AsUnbuffered(h), pair) {
				return
			}
		}
	}
}

// DrainFilter lazily removes and yields every pair for which pred returns
// true. See [Storage.DrainFilter] for the removal semantics.
func (s *BufferedStorage[T]) DrainFilter(pred func(*Pair[T]) bool) iter.Seq[Pair[T]] {
	return s.storage.DrainFilter(pred)
}

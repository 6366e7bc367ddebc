// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpures

import "iter"

// slot is a single arena cell. The generation counter starts at 1 and is
// incremented on every removal, so a stale handle can never alias a value
// inserted later into the same physical slot.
type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Storage is a slot arena: O(1) insert, remove and lookup with stable,
// generation-checked handles. Freed slots are reused by later inserts.
//
// Storage is single-writer: one goroutine owns all mutation, and iteration
// must not overlap with Add or Remove on the same arena. The zero value is
// an empty arena ready for use.
type Storage[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// Add inserts a value into a free slot, reusing a previously removed slot
// when one is available, and returns its handle. The handle stays valid
// until Remove is called with it.
func (s *Storage[T]) Add(value T) Handle[T] {
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, slot[T]{generation: 1})
	}
	sl := &s.slots[index]
	sl.value = value
	sl.occupied = true
	s.count++
	return Handle[T]{index: index, generation: sl.generation}
}

// Remove frees the slot referenced by h and returns its value. Stale,
// unknown and nil handles return the zero value and false; the arena is
// unchanged. After a successful Remove the handle never resolves again.
func (s *Storage[T]) Remove(h Handle[T]) (T, bool) {
	sl, ok := s.lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	value := sl.value
	var zero T
	sl.value = zero
	sl.occupied = false
	sl.generation++
	s.count--
	s.free = append(s.free, h.index)
	return value, true
}

// Get returns a pointer to the value referenced by h, or false for stale,
// unknown and nil handles. The pointer is valid until the next Add or
// Remove on this arena.
func (s *Storage[T]) Get(h Handle[T]) (*T, bool) {
	sl, ok := s.lookup(h)
	if !ok {
		return nil, false
	}
	return &sl.value, true
}

// Has reports whether h refers to a live value in this arena.
func (s *Storage[T]) Has(h Handle[T]) bool {
	_, ok := s.lookup(h)
	return ok
}

// Len returns the number of live values.
func (s *Storage[T]) Len() int {
	return s.count
}

// IsEmpty reports whether the arena holds no live values.
func (s *Storage[T]) IsEmpty() bool {
	return s.count == 0
}

// All iterates over all live values. The order is unspecified and not
// stable across Add and Remove. The arena must not be mutated during
// iteration.
func (s *Storage[T]) All() iter.Seq2[Handle[T], *T] {
	return func(yield func(Handle[T], *T) bool) {
		for i := range s.slots {
			sl := &s.slots[i]
			if !sl.occupied {
				continue
			}
			h := Handle[T]{index: uint32(i), generation: sl.generation}
			if !yield(h, &sl.value) {
				return
			}
		}
	}
}

// Handles iterates over the handles of all live values. Order is
// unspecified.
func (s *Storage[T]) Handles() iter.Seq[Handle[T]] {
	return func(yield func(Handle[T]) bool) {
		for i := range s.slots {
			if !s.slots[i].occupied {
				continue
			}
			if !yield(Handle[T]{index: uint32(i), generation: s.slots[i].generation}) {
				return
			}
		}
	}
}

// DrainFilter lazily removes and yields every live value for which pred
// returns true, leaving the others untouched. Elements are removed as the
// sequence is consumed; breaking out of the loop early leaves the remaining
// candidates in place. The usual single-writer discipline applies.
func (s *Storage[T]) DrainFilter(pred func(*T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range s.slots {
			sl := &s.slots[i]
			if !sl.occupied || !pred(&sl.value) {
				continue
			}
			h := Handle[T]{index: uint32(i), generation: sl.generation}
			value, _ := s.Remove(h)
			if !yield(value) {
				return
			}
		}
	}
}

// lookup resolves h to its slot, rejecting nil, out-of-range, freed and
// stale-generation handles.
func (s *Storage[T]) lookup(h Handle[T]) (*slot[T], bool) {
	if h.IsNil() || int(h.index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[h.index]
	if !sl.occupied || sl.generation != h.generation {
		return nil, false
	}
	return sl, true
}

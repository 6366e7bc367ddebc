// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "iter"

// Entity identifies an object in the host application's world. The render
// package never creates entities; it only attaches components to the ones
// it is given.
type Entity uint64

// Components maps entities to one component type each. The zero value is
// ready to use.
type Components[T any] struct {
	items map[Entity]*T
}

// Set attaches a component to an entity, replacing any previous one.
func (c *Components[T]) Set(e Entity, value T) {
	if c.items == nil {
		c.items = make(map[Entity]*T)
	}
	c.items[e] = &value
}

// Get returns a pointer to an entity's component for in-place mutation.
func (c *Components[T]) Get(e Entity) (*T, bool) {
	v, ok := c.items[e]
	return v, ok
}

// Has reports whether the entity carries this component.
func (c *Components[T]) Has(e Entity) bool {
	_, ok := c.items[e]
	return ok
}

// Remove detaches and returns an entity's component.
func (c *Components[T]) Remove(e Entity) (T, bool) {
	v, ok := c.items[e]
	if !ok {
		var zero T
		return zero, false
	}
	delete(c.items, e)
	return *v, true
}

// Len returns the number of entities carrying this component.
func (c *Components[T]) Len() int {
	return len(c.items)
}

// All iterates over every entity and its component. Iteration order is
// unspecified; callers that need a stable order must collect and sort.
func (c *Components[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for e, v := range c.items {
			if !yield(e, v) {
				return
			}
		}
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpures

import "sync/atomic"

// LifetimeToken is a runtime liveness check. A parent GPU object that wants
// to track dependent children creates a token and hands a Clone to every
// child. Before the parent frees its device memory it calls IsUnique: true
// means every child has already called Release on its clone.
//
// The token is a check, not an owner — the parent frees resources itself
// and only uses the count to assert it is safe to do so.
//
// The type parameter names the tracked resource kind so tokens for
// different parents cannot be swapped by accident. Clones share one
// counter; the counter is atomic so children may release from any
// goroutine.
type LifetimeToken[T any] struct {
	refs *atomic.Int64
}

// NewLifetimeToken creates a token with a count of one, held by the parent.
func NewLifetimeToken[T any]() LifetimeToken[T] {
	refs := new(atomic.Int64)
	refs.Store(1)
	return LifetimeToken[T]{refs: refs}
}

// Clone returns a token sharing the same counter, incrementing it. The
// clone must be paired with exactly one Release.
func (t LifetimeToken[T]) Clone() LifetimeToken[T] {
	t.refs.Add(1)
	return t
}

// Release decrements the shared count. Releasing more tokens than were
// created is a programming error and panics.
func (t LifetimeToken[T]) Release() {
	if t.refs.Add(-1) < 0 {
		panic("gpures: lifetime token released more times than cloned")
	}
}

// IsUnique reports whether the caller holds the only remaining reference,
// i.e. all clones have been released.
func (t LifetimeToken[T]) IsUnique() bool {
	return t.refs.Load() == 1
}

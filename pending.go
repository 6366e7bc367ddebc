// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpures

// Pending tracks a single GPU-bound field through its upload lifecycle: it
// starts Awaiting with an in-flight upload ticket of type T1 and becomes
// Available with the resident handle of type T2 once the upload lands.
//
// A pending resource (mesh, material) aggregates one or more Pending fields
// and is done when every field is available. The two states are mutually
// exclusive; Resolve transitions Awaiting to Available exactly once.
type Pending[T1, T2 any] struct {
	ticket   T1
	value    T2
	resolved bool
}

// Awaiting returns a Pending in the awaiting state, holding the upload
// ticket.
func Awaiting[T1, T2 any](ticket T1) Pending[T1, T2] {
	return Pending[T1, T2]{ticket: ticket}
}

// Available returns a Pending already in the available state. Used for
// fields whose resident handle is known without an upload round trip.
func Available[T1, T2 any](value T2) Pending[T1, T2] {
	return Pending[T1, T2]{value: value, resolved: true}
}

// Ticket returns the in-flight ticket, or false if the field has already
// resolved.
func (p *Pending[T1, T2]) Ticket() (T1, bool) {
	if p.resolved {
		var zero T1
		return zero, false
	}
	return p.ticket, true
}

// Value returns the resident value, or false while the field is still
// awaiting its upload.
func (p *Pending[T1, T2]) Value() (T2, bool) {
	if !p.resolved {
		var zero T2
		return zero, false
	}
	return p.value, true
}

// IsAvailable reports whether the field has resolved.
func (p *Pending[T1, T2]) IsAvailable() bool {
	return p.resolved
}

// Resolve transitions the field from awaiting to available. Resolving an
// already-available field is a programming error and panics: it would mean
// a completion event was applied twice to the same ticket.
func (p *Pending[T1, T2]) Resolve(value T2) {
	if p.resolved {
		panic("gpures: pending field resolved twice")
	}
	var zero T1
	p.ticket = zero
	p.value = value
	p.resolved = true
}

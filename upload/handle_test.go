// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"testing"

	"github.com/gogpu/gpures"
)

func TestSubBuffer(t *testing.T) {
	var arena gpures.Storage[UniformBuffer]
	h := arena.Add(UniformBuffer{ElemCount: 8})
	whole := WholeBuffer(h, 8)

	sub := SubBuffer(whole, 2, 3)
	if sub.Handle() != h {
		t.Error("sub view does not share the parent's handle")
	}
	if sub.First() != 2 || sub.Count() != 3 {
		t.Errorf("sub view = [%d, %d), want [2, 5)", sub.First(), sub.First()+sub.Count())
	}

	// Narrowing a sub view keeps coordinates relative to the buffer.
	inner := SubBuffer(sub, 3, 2)
	if inner.First() != 3 || inner.Count() != 2 {
		t.Errorf("inner view = [%d, %d), want [3, 5)", inner.First(), inner.First()+inner.Count())
	}
}

func TestSubBuffer_EscapesParent(t *testing.T) {
	var arena gpures.Storage[UniformBuffer]
	parent := SubBuffer(WholeBuffer(arena.Add(UniformBuffer{}), 8), 2, 4)

	tests := []struct {
		name         string
		first, count uint32
	}{
		{"past the end", 4, 3},
		{"before the start", 0, 2},
		{"offset wraps around", ^uint32(0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("SubBuffer(parent, %d, %d) did not panic", tt.first, tt.count)
				}
			}()
			SubBuffer(parent, tt.first, tt.count)
		})
	}
}

func TestBufferHandle_Split(t *testing.T) {
	var arena gpures.Storage[UniformBuffer]
	whole := WholeBuffer(arena.Add(UniformBuffer{}), 3)

	parts := whole.Split()
	if len(parts) != 3 {
		t.Fatalf("Split() returned %d views, want 3", len(parts))
	}
	for i, p := range parts {
		if p.Handle() != whole.Handle() || p.First() != uint32(i) || p.Count() != 1 {
			t.Errorf("parts[%d] = %v, want element %d of %v", i, p, i, whole.Handle())
		}
	}
}

func TestMapping_MatchesAndResolve(t *testing.T) {
	var pending gpures.Storage[Async[UniformBuffer]]
	var resident gpures.Storage[UniformBuffer]

	ticket := WholeBuffer(pending.Add(Async[UniformBuffer]{}), 4)
	other := WholeBuffer(pending.Add(Async[UniformBuffer]{}), 4)
	m := UniformBufferMapping{
		Old: ticket,
		New: WholeBuffer(resident.Add(UniformBuffer{ElemCount: 4}), 4),
	}

	if !m.Matches(ticket) {
		t.Error("mapping does not match its own ticket")
	}
	if m.Matches(other) {
		t.Error("mapping matches an unrelated ticket")
	}

	// Sub views of the batched upload match too and keep their range.
	sub := SubBuffer(ticket, 1, 2)
	if !m.Matches(sub) {
		t.Error("mapping does not match a sub view of its ticket")
	}
	resolved := m.Resolve(sub)
	if resolved.Handle() != m.New.Handle() {
		t.Error("resolved view does not refer to the resident buffer")
	}
	if resolved.First() != 1 || resolved.Count() != 2 {
		t.Errorf("resolved view = [%d, %d), want [1, 3)", resolved.First(), resolved.First()+resolved.Count())
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpures

import "testing"

func TestBufferedStorageAdd(t *testing.T) {
	var s BufferedStorage[int]

	h := s.Add(Pair[int]{3, 10})

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if !s.Has(h) {
		t.Fatal("Has(h) = false, want true")
	}
	if v, ok := s.Get(h, 0); !ok || *v != 3 {
		t.Errorf("Get(h, 0) = %v, %v, want 3, true", v, ok)
	}
	if v, ok := s.Get(h, 1); !ok || *v != 10 {
		t.Errorf("Get(h, 1) = %v, %v, want 10, true", v, ok)
	}
	if pair, ok := s.GetAll(h); !ok || *pair != (Pair[int]{3, 10}) {
		t.Errorf("GetAll(h) = %v, %v, want [3 10], true", pair, ok)
	}
}

func TestBufferedStorageRemove(t *testing.T) {
	var s BufferedStorage[int]

	h0 := s.Add(Pair[int]{3, 10})
	h1 := s.Add(Pair[int]{30, 100})
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	pair, ok := s.Remove(h0)
	if !ok || pair != (Pair[int]{3, 10}) {
		t.Fatalf("Remove(h0) = %v, %v, want [3 10], true", pair, ok)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, ok := s.Get(h0, 0); ok {
		t.Error("Get(h0, 0) should fail after Remove")
	}
	if _, ok := s.Get(h0, 1); ok {
		t.Error("Get(h0, 1) should fail after Remove")
	}
	if v, ok := s.Get(h1, 0); !ok || *v != 30 {
		t.Errorf("Get(h1, 0) = %v, %v, want 30, true", v, ok)
	}
	if v, ok := s.Get(h1, 1); !ok || *v != 100 {
		t.Errorf("Get(h1, 1) = %v, %v, want 100, true", v, ok)
	}
}

func TestBufferedStorageIndexOutOfRange(t *testing.T) {
	var s BufferedStorage[int]
	h := s.Add(Pair[int]{1, 2})

	defer func() {
		if recover() == nil {
			t.Error("Get with out-of-range index should panic")
		}
	}()
	s.Get(h, NumBuffers)
}

func TestBufferedStoragePerCopyMutation(t *testing.T) {
	var s BufferedStorage[int]
	h := s.Add(Pair[int]{0, 0})

	v0, _ := s.Get(h, 0)
	*v0 = 7

	// Writing through one copy must not touch the other.
	if v1, _ := s.Get(h, 1); *v1 != 0 {
		t.Errorf("copy 1 = %d after writing copy 0, want 0", *v1)
	}
	if got, _ := s.Get(h, 0); *got != 7 {
		t.Errorf("copy 0 = %d, want 7", *got)
	}
}

func TestBufferedStorageHandleViewRoundTrip(t *testing.T) {
	var s BufferedStorage[int]
	h := s.Add(Pair[int]{1, 2})

	// The buffered view addresses the same slot as the unbuffered handle.
	buffered := AsBuffered(h)
	if got := AsUnbuffered(buffered); got != h {
		t.Errorf("AsUnbuffered(AsBuffered(h)) = %v, want %v", got, h)
	}
	if pair, ok := s.storage.Get(buffered); !ok || *pair != (Pair[int]{1, 2}) {
		t.Errorf("storage.Get(buffered view) = %v, %v, want [1 2], true", pair, ok)
	}
}

func TestBufferedStorageDrainFilter(t *testing.T) {
	var s BufferedStorage[int]
	s.Add(Pair[int]{1, 1})
	s.Add(Pair[int]{2, 2})
	s.Add(Pair[int]{3, 3})

	n := 0
	for pair := range s.DrainFilter(func(p *Pair[int]) bool { return p[0] != 2 }) {
		if pair[0] == 2 {
			t.Errorf("drained pair %v that predicate rejected", pair)
		}
		n++
	}
	if n != 2 || s.Len() != 1 {
		t.Errorf("drained %d pairs leaving %d, want 2 leaving 1", n, s.Len())
	}
}

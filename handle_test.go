// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpures

import (
	"strings"
	"testing"
)

func TestHandleZeroIsNil(t *testing.T) {
	var h Handle[int]
	if !h.IsNil() {
		t.Error("zero handle should be nil")
	}
	if !strings.Contains(h.String(), "nil") {
		t.Errorf("String() = %q, want nil marker", h.String())
	}
}

func TestHandleFromArenaIsNotNil(t *testing.T) {
	var s Storage[int]
	h := s.Add(1)
	if h.IsNil() {
		t.Error("handle from Add should not be nil")
	}
}

func TestHandleEquality(t *testing.T) {
	var s Storage[int]
	h1 := s.Add(1)
	h2 := s.Add(2)

	if h1 == h2 {
		t.Error("distinct live handles compare equal")
	}
	h1Copy := h1
	if h1 != h1Copy {
		t.Error("copied handle compares unequal")
	}
}

func TestHandleTypedViews(t *testing.T) {
	var s Storage[Pair[int]]
	buffered := s.Add(Pair[int]{1, 2})

	unbuffered := AsUnbuffered(buffered)
	if unbuffered.IsNil() {
		t.Fatal("converted handle is nil")
	}
	if AsBuffered(unbuffered) != buffered {
		t.Error("view conversion does not round-trip")
	}
}

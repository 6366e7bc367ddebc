// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpures

import "testing"

type renderTargetTag struct{}

func TestLifetimeTokenUniqueWhenNew(t *testing.T) {
	token := NewLifetimeToken[renderTargetTag]()
	if !token.IsUnique() {
		t.Error("fresh token should be unique")
	}
}

func TestLifetimeTokenCloneRelease(t *testing.T) {
	parent := NewLifetimeToken[renderTargetTag]()

	child := parent.Clone()
	if parent.IsUnique() {
		t.Error("parent should not be unique while a clone is held")
	}

	child.Release()
	if !parent.IsUnique() {
		t.Error("parent should be unique after the clone released")
	}
}

func TestLifetimeTokenManyClones(t *testing.T) {
	parent := NewLifetimeToken[renderTargetTag]()

	clones := make([]LifetimeToken[renderTargetTag], 8)
	for i := range clones {
		clones[i] = parent.Clone()
	}
	for i, c := range clones {
		if parent.IsUnique() {
			t.Fatalf("parent unique with %d clones outstanding", len(clones)-i)
		}
		c.Release()
	}
	if !parent.IsUnique() {
		t.Error("parent should be unique after all clones released")
	}
}

func TestLifetimeTokenOverRelease(t *testing.T) {
	token := NewLifetimeToken[renderTargetTag]()
	token.Release()

	defer func() {
		if recover() == nil {
			t.Error("releasing more tokens than held should panic")
		}
	}()
	token.Release()
}

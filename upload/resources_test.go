// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestResourceStore_RenderTargetLifetime(t *testing.T) {
	backend := NewSoftwareBackend()
	loader := NewLoader(backend)
	defer loader.Close()
	store := NewResourceStore()

	texHandle, err := loader.CreateTextureBlocking(context.Background(), TextureDescriptor{
		Width: 8, Height: 8,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment,
	}, store)
	if err != nil {
		t.Fatalf("CreateTextureBlocking() error = %v", err)
	}

	targetHandle := store.CreateRenderTarget(texHandle)
	target, ok := store.RenderTarget(targetHandle)
	if !ok {
		t.Fatal("render target not resident after create")
	}

	// A render pass acquires the target.
	token := target.AcquireToken()
	if err := store.DestroyRenderTarget(targetHandle, backend); !errors.Is(err, ErrTargetInUse) {
		t.Errorf("DestroyRenderTarget() while referenced = %v, want ErrTargetInUse", err)
	}
	if _, ok := store.RenderTarget(targetHandle); !ok {
		t.Fatal("failed destroy removed the render target anyway")
	}

	// The pass finishes and releases its token.
	token.Release()
	if err := store.DestroyRenderTarget(targetHandle, backend); err != nil {
		t.Fatalf("DestroyRenderTarget() error = %v", err)
	}
	if _, ok := store.RenderTarget(targetHandle); ok {
		t.Error("render target still resident after destroy")
	}
	if _, ok := store.Texture(texHandle); ok {
		t.Error("backing texture still resident after destroy")
	}
}

func TestResourceStore_DestroyReleasesDeviceResources(t *testing.T) {
	backend := NewSoftwareBackend()
	loader := NewLoader(backend)
	defer loader.Close()
	store := NewResourceStore()

	view, err := loader.CreateUniformBufferBlocking(context.Background(),
		UniformBufferDescriptor(bytes.Repeat([]byte{1}, 32), 16, 2, MutabilityMutable), store)
	if err != nil {
		t.Fatalf("CreateUniformBufferBlocking() error = %v", err)
	}

	frame0, _ := store.UniformBuffer(view, 0)
	frame1, _ := store.UniformBuffer(view, 1)
	id0, id1 := frame0.ID, frame1.ID

	if !store.DestroyUniformBuffer(view, backend) {
		t.Fatal("DestroyUniformBuffer() = false for a live buffer")
	}
	if _, ok := backend.BufferContents(id0); ok {
		t.Error("frame 0 device buffer survived destroy")
	}
	if _, ok := backend.BufferContents(id1); ok {
		t.Error("frame 1 device buffer survived destroy")
	}

	// Destroying through a stale view is a no-op.
	if store.DestroyUniformBuffer(view, backend) {
		t.Error("DestroyUniformBuffer() = true for a stale view")
	}
	if _, ok := store.UniformBuffer(view, 0); ok {
		t.Error("stale view still resolves")
	}
}

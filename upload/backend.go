// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import "sync/atomic"

// BufferID identifies a device buffer inside a Backend.
type BufferID uint64

// TextureID identifies a device texture inside a Backend.
type TextureID uint64

// InvalidID is never returned by a successful create call.
const InvalidID = 0

// Backend performs the actual device work for the loader. Implementations
// must be safe for concurrent use; the loader calls them from its worker
// goroutine while blocking entry points call them from the caller's
// goroutine.
type Backend interface {
	// CreateBuffer allocates a device buffer and writes the descriptor's
	// payload into it.
	CreateBuffer(desc *BufferDescriptor) (BufferID, error)

	// WriteBuffer overwrites a range of an existing buffer.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// CreateTexture allocates a device texture and, when the descriptor
	// carries pixel data, writes it into mip level zero.
	CreateTexture(desc *TextureDescriptor) (TextureID, error)

	// GenerateMipmaps fills the remaining mip levels of each texture from
	// its level zero. Implementations process the batch in one submission
	// where the device allows it.
	GenerateMipmaps(ids []TextureID) error

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)
}

// NullBackend discards all work. Every create call succeeds and returns a
// fresh ID. It is the default backend for loaders constructed without one,
// which keeps resource bookkeeping testable without a device.
type NullBackend struct {
	next atomic.Uint64
}

func (b *NullBackend) nextID() uint64 {
	return b.next.Add(1)
}

// CreateBuffer implements Backend.
func (b *NullBackend) CreateBuffer(desc *BufferDescriptor) (BufferID, error) {
	if err := desc.Validate(); err != nil {
		return InvalidID, err
	}
	return BufferID(b.nextID()), nil
}

// WriteBuffer implements Backend.
func (b *NullBackend) WriteBuffer(BufferID, uint64, []byte) error { return nil }

// CreateTexture implements Backend.
func (b *NullBackend) CreateTexture(desc *TextureDescriptor) (TextureID, error) {
	if err := desc.Validate(); err != nil {
		return InvalidID, err
	}
	return TextureID(b.nextID()), nil
}

// GenerateMipmaps implements Backend.
func (b *NullBackend) GenerateMipmaps([]TextureID) error { return nil }

// DestroyBuffer implements Backend.
func (b *NullBackend) DestroyBuffer(BufferID) {}

// DestroyTexture implements Backend.
func (b *NullBackend) DestroyTexture(TextureID) {}

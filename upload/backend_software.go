// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
)

// SoftwareBackend keeps every resource in host memory. It backs headless
// tools and tests, where the interesting part is the bookkeeping rather
// than the device. Mipmaps are generated on the CPU.
type SoftwareBackend struct {
	mu       sync.Mutex
	next     uint64
	buffers  map[BufferID][]byte
	textures map[TextureID]*softwareTexture
}

type softwareTexture struct {
	width  uint32
	height uint32
	format gputypes.TextureFormat

	// levels[0] holds the uploaded pixels, the rest are filled in by
	// GenerateMipmaps.
	levels [][]byte
}

// NewSoftwareBackend returns an empty software backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{
		buffers:  make(map[BufferID][]byte),
		textures: make(map[TextureID]*softwareTexture),
	}
}

// CreateBuffer implements Backend.
func (b *SoftwareBackend) CreateBuffer(desc *BufferDescriptor) (BufferID, error) {
	if err := desc.Validate(); err != nil {
		return InvalidID, err
	}
	contents := make([]byte, len(desc.Data))
	copy(contents, desc.Data)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := BufferID(b.next)
	b.buffers[id] = contents
	return id, nil
}

// WriteBuffer implements Backend.
func (b *SoftwareBackend) WriteBuffer(id BufferID, offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	contents, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("upload: write to unknown buffer %d", id)
	}
	if offset+uint64(len(data)) > uint64(len(contents)) {
		return fmt.Errorf("%w: write of %d bytes at offset %d into buffer of %d bytes",
			ErrSizeMismatch, len(data), offset, len(contents))
	}
	copy(contents[offset:], data)
	return nil
}

// CreateTexture implements Backend.
func (b *SoftwareBackend) CreateTexture(desc *TextureDescriptor) (TextureID, error) {
	if err := desc.Validate(); err != nil {
		return InvalidID, err
	}
	bpp, err := BytesPerPixel(desc.Format)
	if err != nil {
		return InvalidID, err
	}

	tex := &softwareTexture{
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		levels: make([][]byte, desc.MipLevels()),
	}
	tex.levels[0] = make([]byte, uint64(desc.Width)*uint64(desc.Height)*uint64(bpp))
	copy(tex.levels[0], desc.Data)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := TextureID(b.next)
	b.textures[id] = tex
	return id, nil
}

// GenerateMipmaps implements Backend. Each level is a half-size rescale of
// the previous one, down to 1x1.
func (b *SoftwareBackend) GenerateMipmaps(ids []TextureID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		tex, ok := b.textures[id]
		if !ok {
			return fmt.Errorf("upload: mipmap request for unknown texture %d", id)
		}
		if err := tex.generateMipmaps(); err != nil {
			return fmt.Errorf("upload: texture %d: %w", id, err)
		}
	}
	return nil
}

// DestroyBuffer implements Backend.
func (b *SoftwareBackend) DestroyBuffer(id BufferID) {
	b.mu.Lock()
	delete(b.buffers, id)
	b.mu.Unlock()
}

// DestroyTexture implements Backend.
func (b *SoftwareBackend) DestroyTexture(id TextureID) {
	b.mu.Lock()
	delete(b.textures, id)
	b.mu.Unlock()
}

// BufferContents returns a copy of a buffer's current bytes, for tests.
func (b *SoftwareBackend) BufferContents(id BufferID) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	contents, ok := b.buffers[id]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(contents))
	copy(out, contents)
	return out, true
}

// MipLevel returns a copy of one mip level of a texture, for tests. The
// second result is false for unknown textures or ungenerated levels.
func (b *SoftwareBackend) MipLevel(id TextureID, level int) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tex, ok := b.textures[id]
	if !ok || level >= len(tex.levels) || tex.levels[level] == nil {
		return nil, false
	}
	out := make([]byte, len(tex.levels[level]))
	copy(out, tex.levels[level])
	return out, true
}

func (t *softwareTexture) generateMipmaps() error {
	w, h := t.width, t.height
	for level := 1; level < len(t.levels); level++ {
		nw, nh := max(w/2, 1), max(h/2, 1)
		dst, err := downsamplePixels(t.levels[level-1], t.format, w, h, nw, nh)
		if err != nil {
			return err
		}
		t.levels[level] = dst
		w, h = nw, nh
	}
	return nil
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// HALBackend drives a real device through gogpu/wgpu's HAL layer.
//
// Thread safety: all operations are protected by a mutex, so the loader's
// worker goroutine and blocking callers may use one HALBackend
// concurrently.
type HALBackend struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue
	nextID uint64

	buffers  map[BufferID]hal.Buffer
	textures map[TextureID]*halTexture
}

type halTexture struct {
	texture   hal.Texture
	width     uint32
	height    uint32
	format    gputypes.TextureFormat
	mipLevels uint32

	// level0 keeps the uploaded pixels so that mip levels can be computed
	// on the host and written back. Nil for textures created without data.
	level0 []byte
}

// NewHALBackend wraps an existing HAL device and queue.
func NewHALBackend(device hal.Device, queue hal.Queue) *HALBackend {
	return &HALBackend{
		device:   device,
		queue:    queue,
		buffers:  make(map[BufferID]hal.Buffer),
		textures: make(map[TextureID]*halTexture),
	}
}

// NewHALBackendFromProvider builds a backend from a shared device
// provider, such as a gogpu window. The provider must expose the
// underlying HAL device and queue.
func NewHALBackendFromProvider(provider gpucontext.DeviceProvider) (*HALBackend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("upload: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("upload: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("upload: provider HalQueue is not hal.Queue")
	}
	return NewHALBackend(device, queue), nil
}

// CreateBuffer implements Backend.
func (b *HALBackend) CreateBuffer(desc *BufferDescriptor) (BufferID, error) {
	if err := desc.Validate(); err != nil {
		return InvalidID, err
	}

	buffer, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size(),
		Usage: desc.Usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return InvalidID, fmt.Errorf("upload: buffer creation failed: %w", err)
	}
	b.queue.WriteBuffer(buffer, 0, desc.Data)

	b.mu.Lock()
	b.nextID++
	id := BufferID(b.nextID)
	b.buffers[id] = buffer
	b.mu.Unlock()
	return id, nil
}

// WriteBuffer implements Backend.
func (b *HALBackend) WriteBuffer(id BufferID, offset uint64, data []byte) error {
	b.mu.RLock()
	buffer, ok := b.buffers[id]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("upload: write to unknown buffer %d", id)
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buffer, offset, data)
	}
	return nil
}

// CreateTexture implements Backend.
func (b *HALBackend) CreateTexture(desc *TextureDescriptor) (TextureID, error) {
	if err := desc.Validate(); err != nil {
		return InvalidID, err
	}

	mipLevels := desc.MipLevels()
	texture, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: mipLevels,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        convertTextureFormat(desc.Format),
		Usage:         convertTextureUsage(desc.Usage) | types.TextureUsageCopyDst,
	})
	if err != nil {
		return InvalidID, fmt.Errorf("upload: texture creation failed: %w", err)
	}

	entry := &halTexture{
		texture:   texture,
		width:     desc.Width,
		height:    desc.Height,
		format:    desc.Format,
		mipLevels: mipLevels,
	}
	if desc.Data != nil {
		entry.level0 = make([]byte, len(desc.Data))
		copy(entry.level0, desc.Data)
		b.writeLevel(entry, 0, desc.Width, desc.Height, desc.Data)
	}

	b.mu.Lock()
	b.nextID++
	id := TextureID(b.nextID)
	b.textures[id] = entry
	b.mu.Unlock()
	return id, nil
}

// GenerateMipmaps implements Backend. Levels are downsampled on the host
// from the retained level zero pixels and written back one level at a
// time.
func (b *HALBackend) GenerateMipmaps(ids []TextureID) error {
	for _, id := range ids {
		b.mu.RLock()
		tex, ok := b.textures[id]
		b.mu.RUnlock()
		if !ok {
			return fmt.Errorf("upload: mipmap request for unknown texture %d", id)
		}
		if tex.level0 == nil {
			return fmt.Errorf("upload: texture %d has no host pixels to downsample", id)
		}

		src := tex.level0
		w, h := tex.width, tex.height
		for level := uint32(1); level < tex.mipLevels; level++ {
			nw, nh := max(w/2, 1), max(h/2, 1)
			dst, err := downsamplePixels(src, tex.format, w, h, nw, nh)
			if err != nil {
				return fmt.Errorf("upload: texture %d: %w", id, err)
			}
			b.writeLevel(tex, level, nw, nh, dst)
			src, w, h = dst, nw, nh
		}
	}
	return nil
}

// DestroyBuffer implements Backend.
func (b *HALBackend) DestroyBuffer(id BufferID) {
	b.mu.Lock()
	buffer, ok := b.buffers[id]
	if ok {
		delete(b.buffers, id)
	}
	b.mu.Unlock()

	if ok {
		b.device.DestroyBuffer(buffer)
	}
}

// DestroyTexture implements Backend.
func (b *HALBackend) DestroyTexture(id TextureID) {
	b.mu.Lock()
	tex, ok := b.textures[id]
	if ok {
		delete(b.textures, id)
	}
	b.mu.Unlock()

	if ok {
		b.device.DestroyTexture(tex.texture)
	}
}

func (b *HALBackend) writeLevel(tex *halTexture, level, width, height uint32, data []byte) {
	bpp, err := BytesPerPixel(tex.format)
	if err != nil {
		return
	}
	dst := &hal.ImageCopyTexture{
		Texture:  tex.texture,
		MipLevel: level,
		Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
		Aspect:   types.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  width * bpp,
		RowsPerImage: height,
	}
	size := &hal.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}
	b.queue.WriteTexture(dst, data, layout, size)
}

// convertTextureFormat maps the host-visible format enum to the HAL one.
func convertTextureFormat(format gputypes.TextureFormat) types.TextureFormat {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm:
		return types.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatBGRA8Unorm:
		return types.TextureFormatBGRA8Unorm
	case gputypes.TextureFormatR8Unorm:
		return types.TextureFormatR8Unorm
	default:
		return types.TextureFormatRGBA8Unorm
	}
}

// convertTextureUsage maps host-visible usage flags to the HAL ones.
func convertTextureUsage(usage gputypes.TextureUsage) types.TextureUsage {
	var result types.TextureUsage
	if usage&gputypes.TextureUsageCopySrc != 0 {
		result |= types.TextureUsageCopySrc
	}
	if usage&gputypes.TextureUsageCopyDst != 0 {
		result |= types.TextureUsageCopyDst
	}
	if usage&gputypes.TextureUsageTextureBinding != 0 {
		result |= types.TextureUsageTextureBinding
	}
	if usage&gputypes.TextureUsageRenderAttachment != 0 {
		result |= types.TextureUsageRenderAttachment
	}
	return result
}

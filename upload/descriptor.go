// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

var (
	// ErrEmptyData indicates a descriptor that carries no payload where one
	// is required.
	ErrEmptyData = errors.New("upload: descriptor has no data")

	// ErrSizeMismatch indicates that the payload length does not agree with
	// the declared element layout.
	ErrSizeMismatch = errors.New("upload: data length does not match element layout")

	// ErrZeroExtent indicates a texture descriptor with a zero dimension.
	ErrZeroExtent = errors.New("upload: texture extent must be positive")

	// ErrUnsupportedFormat indicates a texture format this package cannot
	// upload pixel data for.
	ErrUnsupportedFormat = errors.New("upload: unsupported texture format")
)

// Mutability declares whether a buffer's contents change after the initial
// upload. Mutable uniform buffers are double buffered so that one copy can
// be written while the other is read by an in-flight frame.
type Mutability uint8

const (
	// MutabilityImmutable marks a buffer whose contents never change.
	MutabilityImmutable Mutability = iota

	// MutabilityMutable marks a buffer rewritten between frames.
	MutabilityMutable
)

// String returns the name of the mutability mode.
func (m Mutability) String() string {
	switch m {
	case MutabilityImmutable:
		return "immutable"
	case MutabilityMutable:
		return "mutable"
	default:
		return fmt.Sprintf("Mutability(%d)", uint8(m))
	}
}

// BufferDescriptor describes a GPU buffer and the data to seed it with.
// The payload is interpreted as ElemCount elements of ElemSize bytes each.
type BufferDescriptor struct {
	Label      string
	Data       []byte
	ElemSize   uint32
	ElemCount  uint32
	Usage      gputypes.BufferUsage
	Mutability Mutability
}

// Size returns the total payload size in bytes.
func (d *BufferDescriptor) Size() uint64 {
	return uint64(d.ElemSize) * uint64(d.ElemCount)
}

// Validate reports whether the descriptor is internally consistent.
func (d *BufferDescriptor) Validate() error {
	if d.ElemSize == 0 || d.ElemCount == 0 {
		return fmt.Errorf("%w: %d elements of %d bytes", ErrEmptyData, d.ElemCount, d.ElemSize)
	}
	if uint64(len(d.Data)) != d.Size() {
		return fmt.Errorf("%w: have %d bytes, layout wants %d", ErrSizeMismatch, len(d.Data), d.Size())
	}
	if d.Usage == 0 {
		return errors.New("upload: buffer descriptor has no usage flags")
	}
	return nil
}

// Filter selects how a sampler interpolates between texels.
type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

// AddressMode selects how a sampler treats coordinates outside [0, 1].
type AddressMode uint8

const (
	AddressModeRepeat AddressMode = iota
	AddressModeClampToEdge
	AddressModeMirrorRepeat
)

// SamplerDescriptor describes how a texture is sampled. The zero value is
// a linear, repeating sampler without anisotropic filtering.
type SamplerDescriptor struct {
	Filter      Filter
	AddressMode AddressMode

	// MaxAnisotropy enables anisotropic filtering when greater than one.
	MaxAnisotropy uint8
}

// TextureDescriptor describes a 2D texture and its initial pixel data.
// Data may be nil for textures that are only ever rendered to.
type TextureDescriptor struct {
	Label   string
	Width   uint32
	Height  uint32
	Format  gputypes.TextureFormat
	Usage   gputypes.TextureUsage
	Data    []byte
	Sampler SamplerDescriptor

	// MipLevelCount is the number of mip levels to allocate. Zero means a
	// full chain down to 1x1.
	MipLevelCount uint32
}

// MipLevels returns the effective mip level count for the descriptor's
// extent.
func (d *TextureDescriptor) MipLevels() uint32 {
	if d.MipLevelCount != 0 {
		return d.MipLevelCount
	}
	return FullMipChain(d.Width, d.Height)
}

// Validate reports whether the descriptor is internally consistent.
func (d *TextureDescriptor) Validate() error {
	if d.Width == 0 || d.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroExtent, d.Width, d.Height)
	}
	bpp, err := BytesPerPixel(d.Format)
	if err != nil {
		return err
	}
	if d.Data != nil {
		want := uint64(d.Width) * uint64(d.Height) * uint64(bpp)
		if uint64(len(d.Data)) != want {
			return fmt.Errorf("%w: have %d bytes, %dx%d %v wants %d",
				ErrSizeMismatch, len(d.Data), d.Width, d.Height, d.Format, want)
		}
	}
	return nil
}

// BytesPerPixel returns the texel size for the formats this package can
// upload host data into.
func BytesPerPixel(format gputypes.TextureFormat) (uint32, error) {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4, nil
	case gputypes.TextureFormatR8Unorm:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// FullMipChain returns the number of mip levels needed to reduce the given
// extent down to a single texel.
func FullMipChain(width, height uint32) uint32 {
	levels := uint32(1)
	for width > 1 || height > 1 {
		width = max(width/2, 1)
		height = max(height/2, 1)
		levels++
	}
	return levels
}

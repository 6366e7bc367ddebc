// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// IndexSize is the width of a single mesh index in bytes.
type IndexSize uint8

const (
	IndexSize16 IndexSize = 2
	IndexSize32 IndexSize = 4
)

// IndexSizeOf converts an index width in bytes to an IndexSize. Any width
// other than 2 or 4 is a programming error.
func IndexSizeOf(bytes int) IndexSize {
	switch bytes {
	case 2:
		return IndexSize16
	case 4:
		return IndexSize32
	default:
		panic(fmt.Sprintf("upload: invalid index size %d, want 2 or 4", bytes))
	}
}

// MeshDescriptor bundles the vertex and index descriptors of one mesh.
type MeshDescriptor struct {
	Vertices BufferDescriptor
	Indices  BufferDescriptor
}

// NewMeshDescriptor builds a MeshDescriptor from raw vertex and index
// data.
func NewMeshDescriptor(vertexData []byte, vertexStride uint32, indexData []byte, indexSize IndexSize) MeshDescriptor {
	return MeshDescriptor{
		Vertices: VertexBufferDescriptor(vertexData, vertexStride),
		Indices:  IndexBufferDescriptor(indexData, indexSize),
	}
}

// Validate reports whether both buffers are internally consistent.
func (d *MeshDescriptor) Validate() error {
	if err := d.Vertices.Validate(); err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	if err := d.Indices.Validate(); err != nil {
		return fmt.Errorf("index buffer: %w", err)
	}
	return nil
}

// UniformBufferDescriptor describes a uniform buffer holding elemCount
// blocks of elemSize bytes. data must be elemSize*elemCount bytes long.
func UniformBufferDescriptor(data []byte, elemSize, elemCount uint32, mut Mutability) BufferDescriptor {
	return BufferDescriptor{
		Data:       data,
		ElemSize:   elemSize,
		ElemCount:  elemCount,
		Usage:      gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		Mutability: mut,
	}
}

// VertexBufferDescriptor describes a vertex buffer with the given per
// vertex stride. len(data) must be a multiple of stride.
func VertexBufferDescriptor(data []byte, stride uint32) BufferDescriptor {
	if stride == 0 || uint32(len(data))%stride != 0 {
		panic(fmt.Sprintf("upload: vertex data of %d bytes is not a multiple of stride %d", len(data), stride))
	}
	return BufferDescriptor{
		Data:       data,
		ElemSize:   stride,
		ElemCount:  uint32(len(data)) / stride,
		Usage:      gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		Mutability: MutabilityImmutable,
	}
}

// IndexBufferDescriptor describes an index buffer of 16 or 32 bit indices.
func IndexBufferDescriptor(data []byte, size IndexSize) BufferDescriptor {
	if uint32(len(data))%uint32(size) != 0 {
		panic(fmt.Sprintf("upload: index data of %d bytes is not a multiple of index size %d", len(data), size))
	}
	return BufferDescriptor{
		Data:       data,
		ElemSize:   uint32(size),
		ElemCount:  uint32(len(data)) / uint32(size),
		Usage:      gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
		Mutability: MutabilityImmutable,
	}
}

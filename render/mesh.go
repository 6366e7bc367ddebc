// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpures"
	"github.com/gogpu/gpures/upload"
)

// CPUMesh describes mesh geometry still in host memory. Attach it to an
// entity to have the uploader move it onto the GPU.
type CPUMesh = upload.MeshDescriptor

// NewCPUMesh builds a CPUMesh from raw vertex and index data.
func NewCPUMesh(vertexData []byte, vertexStride uint32, indexData []byte, indexSize upload.IndexSize) CPUMesh {
	return upload.NewMeshDescriptor(vertexData, vertexStride, indexData, indexSize)
}

// Mesh is GPU-resident geometry, ready to draw.
type Mesh struct {
	VertexBuffer upload.BufferHandle[upload.VertexBuffer]
	IndexBuffer  upload.BufferHandle[upload.IndexBuffer]
}

// PendingMesh tracks a mesh whose buffers are still uploading.
type PendingMesh struct {
	VertexBuffer gpures.Pending[upload.VertexTicket, upload.BufferHandle[upload.VertexBuffer]]
	IndexBuffer  gpures.Pending[upload.IndexTicket, upload.BufferHandle[upload.IndexBuffer]]
}

// IsDone reports whether both buffers are resident.
func (m *PendingMesh) IsDone() bool {
	return m.VertexBuffer.IsAvailable() && m.IndexBuffer.IsAvailable()
}

// Finish converts a done PendingMesh into a Mesh. It must only be called
// once IsDone reports true.
func (m *PendingMesh) Finish() Mesh {
	vertex, ok := m.VertexBuffer.Value()
	if !ok {
		panic("render: finishing mesh with vertex buffer still in flight")
	}
	index, ok := m.IndexBuffer.Value()
	if !ok {
		panic("render: finishing mesh with index buffer still in flight")
	}
	return Mesh{VertexBuffer: vertex, IndexBuffer: index}
}

// TryFinish returns the finished Mesh when both buffers are resident.
func (m *PendingMesh) TryFinish() (Mesh, bool) {
	if !m.IsDone() {
		return Mesh{}, false
	}
	return m.Finish(), true
}

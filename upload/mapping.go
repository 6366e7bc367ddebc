// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import "github.com/gogpu/gpures"

// HandleMapping reports that one finished upload moved from the loader's
// pending table into a ResourceStore. Old is the ticket handed out at
// submission time, New refers to the resident resource.
//
// Mappings from a single Transfer call arrive in no particular order and
// each upload produces exactly one mapping. The concrete type identifies
// the resource kind.
type HandleMapping interface {
	isMapping()
}

// UniformBufferMapping resolves a uniform buffer ticket.
type UniformBufferMapping struct {
	Old UniformTicket
	New BufferHandle[UniformBuffer]
}

// VertexBufferMapping resolves a vertex buffer ticket.
type VertexBufferMapping struct {
	Old VertexTicket
	New BufferHandle[VertexBuffer]
}

// IndexBufferMapping resolves an index buffer ticket.
type IndexBufferMapping struct {
	Old IndexTicket
	New BufferHandle[IndexBuffer]
}

// TextureMapping resolves a texture ticket.
type TextureMapping struct {
	Old TextureTicket
	New gpures.Handle[Texture]
}

func (UniformBufferMapping) isMapping() {}
func (VertexBufferMapping) isMapping()  {}
func (IndexBufferMapping) isMapping()   {}
func (TextureMapping) isMapping()       {}

// Matches reports whether a ticket view refers to the upload this mapping
// resolves. Sub-buffer views of one upload all match the same mapping.
func (m UniformBufferMapping) Matches(t UniformTicket) bool {
	return t.Handle() == m.Old.Handle()
}

// Resolve rebases a matching ticket view onto the resident buffer,
// preserving the view's element range.
func (m UniformBufferMapping) Resolve(t UniformTicket) BufferHandle[UniformBuffer] {
	return rebase(t, m.New.Handle())
}

// Matches reports whether a ticket view refers to the upload this mapping
// resolves.
func (m VertexBufferMapping) Matches(t VertexTicket) bool {
	return t.Handle() == m.Old.Handle()
}

// Resolve rebases a matching ticket view onto the resident buffer.
func (m VertexBufferMapping) Resolve(t VertexTicket) BufferHandle[VertexBuffer] {
	return rebase(t, m.New.Handle())
}

// Matches reports whether a ticket view refers to the upload this mapping
// resolves.
func (m IndexBufferMapping) Matches(t IndexTicket) bool {
	return t.Handle() == m.Old.Handle()
}

// Resolve rebases a matching ticket view onto the resident buffer.
func (m IndexBufferMapping) Resolve(t IndexTicket) BufferHandle[IndexBuffer] {
	return rebase(t, m.New.Handle())
}

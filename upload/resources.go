// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"errors"
	"iter"

	"github.com/gogpu/gpures"
	"github.com/gogpu/gputypes"
)

// ErrTargetInUse indicates an attempt to destroy a render target while
// lifetime tokens for it are still outstanding.
var ErrTargetInUse = errors.New("upload: render target still referenced")

// UniformBuffer is a resident GPU uniform buffer. Mutable uniform buffers
// are stored double buffered, one UniformBuffer per frame copy.
type UniformBuffer struct {
	ID         BufferID
	ElemSize   uint32
	ElemCount  uint32
	Mutability Mutability
}

// VertexBuffer is a resident GPU vertex buffer.
type VertexBuffer struct {
	ID        BufferID
	Stride    uint32
	ElemCount uint32
}

// IndexBuffer is a resident GPU index buffer.
type IndexBuffer struct {
	ID        BufferID
	IndexSize IndexSize
	ElemCount uint32
}

// Texture is a resident GPU texture.
type Texture struct {
	ID        TextureID
	Width     uint32
	Height    uint32
	Format    gputypes.TextureFormat
	MipLevels uint32
}

// RenderTarget is a texture that render passes draw into. Passes that
// reference the target hold clones of its lifetime token; the target can
// only be destroyed once every clone has been released.
type RenderTarget struct {
	Color gpures.Handle[Texture]

	token gpures.LifetimeToken[RenderTarget]
}

// AcquireToken returns a new lifetime token clone for a render pass that
// is about to reference the target. The caller must Release it when the
// pass no longer uses the target.
func (t *RenderTarget) AcquireToken() gpures.LifetimeToken[RenderTarget] {
	return t.token.Clone()
}

// ResourceStore owns every resident GPU resource. It is single threaded;
// the loader only touches it inside Transfer, which runs on the owner's
// thread.
type ResourceStore struct {
	uniformBuffers gpures.BufferedStorage[UniformBuffer]
	vertexBuffers  gpures.Storage[VertexBuffer]
	indexBuffers   gpures.Storage[IndexBuffer]
	textures       gpures.Storage[Texture]
	renderTargets  gpures.Storage[RenderTarget]
}

// NewResourceStore returns an empty store.
func NewResourceStore() *ResourceStore {
	return &ResourceStore{}
}

// UniformBuffer resolves a uniform buffer view for the given frame index.
// It returns false for nil, stale, or removed handles.
func (s *ResourceStore) UniformBuffer(view BufferHandle[UniformBuffer], frame int) (*UniformBuffer, bool) {
	return s.uniformBuffers.Get(view.Handle(), frame%gpures.NumBuffers)
}

// VertexBuffer resolves a vertex buffer view.
func (s *ResourceStore) VertexBuffer(view BufferHandle[VertexBuffer]) (*VertexBuffer, bool) {
	return s.vertexBuffers.Get(view.Handle())
}

// IndexBuffer resolves an index buffer view.
func (s *ResourceStore) IndexBuffer(view BufferHandle[IndexBuffer]) (*IndexBuffer, bool) {
	return s.indexBuffers.Get(view.Handle())
}

// Texture resolves a texture handle.
func (s *ResourceStore) Texture(h gpures.Handle[Texture]) (*Texture, bool) {
	return s.textures.Get(h)
}

// RenderTarget resolves a render target handle.
func (s *ResourceStore) RenderTarget(h gpures.Handle[RenderTarget]) (*RenderTarget, bool) {
	return s.renderTargets.Get(h)
}

// UniformBuffers iterates over all resident uniform buffer pairs, for
// draw submission.
func (s *ResourceStore) UniformBuffers() iter.Seq2[gpures.Handle[UniformBuffer], *gpures.Pair[UniformBuffer]] {
	return s.uniformBuffers.All()
}

// VertexBuffers iterates over all resident vertex buffers.
func (s *ResourceStore) VertexBuffers() iter.Seq2[gpures.Handle[VertexBuffer], *VertexBuffer] {
	return s.vertexBuffers.All()
}

// IndexBuffers iterates over all resident index buffers.
func (s *ResourceStore) IndexBuffers() iter.Seq2[gpures.Handle[IndexBuffer], *IndexBuffer] {
	return s.indexBuffers.All()
}

// Textures iterates over all resident textures.
func (s *ResourceStore) Textures() iter.Seq2[gpures.Handle[Texture], *Texture] {
	return s.textures.All()
}

// CreateRenderTarget registers a resident texture as a render target and
// returns its handle.
func (s *ResourceStore) CreateRenderTarget(color gpures.Handle[Texture]) gpures.Handle[RenderTarget] {
	return s.renderTargets.Add(RenderTarget{
		Color: color,
		token: gpures.NewLifetimeToken[RenderTarget](),
	})
}

// DestroyRenderTarget releases a render target and its backing texture.
// It fails with ErrTargetInUse while token clones are outstanding, leaving
// the target in place.
func (s *ResourceStore) DestroyRenderTarget(h gpures.Handle[RenderTarget], backend Backend) error {
	target, ok := s.renderTargets.Get(h)
	if !ok {
		return nil
	}
	if !target.token.IsUnique() {
		return ErrTargetInUse
	}
	target.token.Release()
	s.renderTargets.Remove(h)
	s.DestroyTexture(target.Color, backend)
	return nil
}

// DestroyUniformBuffer releases a uniform buffer and both of its frame
// copies. Immutable buffers share one device buffer between copies, which
// is destroyed once.
func (s *ResourceStore) DestroyUniformBuffer(view BufferHandle[UniformBuffer], backend Backend) bool {
	pair, ok := s.uniformBuffers.Remove(view.Handle())
	if !ok {
		return false
	}
	backend.DestroyBuffer(pair[0].ID)
	if pair[1].ID != pair[0].ID {
		backend.DestroyBuffer(pair[1].ID)
	}
	return true
}

// DestroyVertexBuffer releases a vertex buffer.
func (s *ResourceStore) DestroyVertexBuffer(view BufferHandle[VertexBuffer], backend Backend) bool {
	buf, ok := s.vertexBuffers.Remove(view.Handle())
	if !ok {
		return false
	}
	backend.DestroyBuffer(buf.ID)
	return true
}

// DestroyIndexBuffer releases an index buffer.
func (s *ResourceStore) DestroyIndexBuffer(view BufferHandle[IndexBuffer], backend Backend) bool {
	buf, ok := s.indexBuffers.Remove(view.Handle())
	if !ok {
		return false
	}
	backend.DestroyBuffer(buf.ID)
	return true
}

// DestroyTexture releases a texture.
func (s *ResourceStore) DestroyTexture(h gpures.Handle[Texture], backend Backend) bool {
	tex, ok := s.textures.Remove(h)
	if !ok {
		return false
	}
	backend.DestroyTexture(tex.ID)
	return true
}

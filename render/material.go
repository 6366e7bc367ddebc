// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gpures"
	"github.com/gogpu/gpures/upload"
)

// MaterialKind tags the material variants.
type MaterialKind uint8

const (
	MaterialUnlit MaterialKind = iota
	MaterialPBR
)

// String returns the name of the material kind.
func (k MaterialKind) String() string {
	switch k {
	case MaterialUnlit:
		return "unlit"
	case MaterialPBR:
		return "pbr"
	default:
		return fmt.Sprintf("MaterialKind(%d)", uint8(k))
	}
}

// TextureSource describes one texture input of a material, still in host
// memory.
type TextureSource struct {
	Desc     upload.TextureDescriptor
	CoordSet uint32
}

// Unlit describes a flat-colored material. Attach it to an entity to have
// the uploader build its GPU material.
type Unlit struct {
	Color [4]float32
}

// PhysicallyBased describes a metallic-roughness PBR material. The
// texture fields are optional.
type PhysicallyBased struct {
	BaseColorFactor [4]float32
	MetallicFactor  float32
	RoughnessFactor float32
	NormalScale     float32

	BaseColorTexture         *TextureSource
	NormalMap                *TextureSource
	MetallicRoughnessTexture *TextureSource

	HasVertexColors bool
}

// UnlitUniformData is the shader-visible uniform block of an unlit
// material, 16 bytes.
type UnlitUniformData struct {
	Color [4]float32
}

// ToBytes serializes the block in little-endian layout matching the WGSL
// struct.
func (d UnlitUniformData) ToBytes() []byte {
	buf := make([]byte, UnlitUniformSize)
	le := binary.LittleEndian
	for i, f := range d.Color {
		le.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// PBRMaterialData is the shader-visible uniform block of a PBR material,
// 32 bytes. The trailing pad keeps 16 byte alignment.
type PBRMaterialData struct {
	BaseColorFactor [4]float32
	MetallicFactor  float32
	RoughnessFactor float32
	NormalScale     float32
}

// ToBytes serializes the block in little-endian layout matching the WGSL
// struct.
func (d PBRMaterialData) ToBytes() []byte {
	buf := make([]byte, PBRUniformSize)
	le := binary.LittleEndian
	for i, f := range d.BaseColorFactor {
		le.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	le.PutUint32(buf[16:], math.Float32bits(d.MetallicFactor))
	le.PutUint32(buf[20:], math.Float32bits(d.RoughnessFactor))
	le.PutUint32(buf[24:], math.Float32bits(d.NormalScale))
	// buf[28:32] is padding.
	return buf
}

// Uniform block sizes in bytes.
const (
	UnlitUniformSize = 16
	PBRUniformSize   = 32
)

// TextureUse pairs a texture reference with the vertex UV set it samples.
// T is either a ticket or a resident handle.
type TextureUse[T any] struct {
	Texture  T
	CoordSet uint32
}

// Material is a GPU-resident material, ready to bind. Kind selects which
// fields are meaningful: an unlit material carries only Uniforms.
type Material struct {
	Kind     MaterialKind
	Uniforms upload.BufferHandle[upload.UniformBuffer]

	BaseColorTexture         *TextureUse[gpures.Handle[upload.Texture]]
	NormalMap                *TextureUse[gpures.Handle[upload.Texture]]
	MetallicRoughnessTexture *TextureUse[gpures.Handle[upload.Texture]]

	HasVertexColors bool
}

// PendingTextureUse is a texture input whose upload may still be in
// flight.
type PendingTextureUse = gpures.Pending[TextureUse[upload.TextureTicket], TextureUse[gpures.Handle[upload.Texture]]]

// PendingUniform is a uniform buffer view whose upload may still be in
// flight.
type PendingUniform = gpures.Pending[upload.UniformTicket, upload.BufferHandle[upload.UniformBuffer]]

// PendingMaterial tracks a material whose resources are still uploading.
// Nil texture fields were never part of the material.
type PendingMaterial struct {
	Kind     MaterialKind
	Uniforms PendingUniform

	BaseColorTexture         *PendingTextureUse
	NormalMap                *PendingTextureUse
	MetallicRoughnessTexture *PendingTextureUse

	HasVertexColors bool
}

// IsDone reports whether every field of the material is resident.
func (m *PendingMaterial) IsDone() bool {
	if !m.Uniforms.IsAvailable() {
		return false
	}
	for _, tex := range m.textureFields() {
		if tex != nil && !tex.IsAvailable() {
			return false
		}
	}
	return true
}

// Finish converts a done PendingMaterial into a Material. It must only be
// called once IsDone reports true.
func (m *PendingMaterial) Finish() Material {
	uniforms, ok := m.Uniforms.Value()
	if !ok {
		panic("render: finishing material with uniforms still in flight")
	}
	out := Material{
		Kind:            m.Kind,
		Uniforms:        uniforms,
		HasVertexColors: m.HasVertexColors,
	}
	out.BaseColorTexture = finishTexture(m.BaseColorTexture)
	out.NormalMap = finishTexture(m.NormalMap)
	out.MetallicRoughnessTexture = finishTexture(m.MetallicRoughnessTexture)
	return out
}

func finishTexture(p *PendingTextureUse) *TextureUse[gpures.Handle[upload.Texture]] {
	if p == nil {
		return nil
	}
	use, ok := p.Value()
	if !ok {
		panic("render: finishing material with texture still in flight")
	}
	return &use
}

func (m *PendingMaterial) textureFields() [3]*PendingTextureUse {
	return [3]*PendingTextureUse{m.BaseColorTexture, m.NormalMap, m.MetallicRoughnessTexture}
}

// resolveUniform applies a uniform buffer mapping to the material's
// uniform field if the field's ticket matches.
func (m *PendingMaterial) resolveUniform(mapping upload.UniformBufferMapping) {
	ticket, ok := m.Uniforms.Ticket()
	if !ok || !mapping.Matches(ticket) {
		return
	}
	m.Uniforms.Resolve(mapping.Resolve(ticket))
}

// resolveTexture applies a texture mapping to whichever texture field the
// ticket matches. It returns the resident handle when a field resolved,
// so the caller can queue mipmap generation.
//
// Unlit materials have no texture fields. Reaching one here means the
// loader produced a texture mapping for a material that never asked for a
// texture, which is unrecoverable state corruption.
func (m *PendingMaterial) resolveTexture(mapping upload.TextureMapping) (gpures.Handle[upload.Texture], bool) {
	for _, tex := range m.textureFields() {
		if tex == nil {
			continue
		}
		use, ok := tex.Ticket()
		if !ok || use.Texture != mapping.Old {
			continue
		}
		if m.Kind == MaterialUnlit {
			panic("render: texture mapping reached unlit material")
		}
		tex.Resolve(TextureUse[gpures.Handle[upload.Texture]]{
			Texture:  mapping.New,
			CoordSet: use.CoordSet,
		})
		return mapping.New, true
	}
	return gpures.Handle[upload.Texture]{}, false
}

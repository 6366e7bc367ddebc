// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gpures"
	"github.com/gogpu/gpures/upload"
)

// materialFixture is a PBR pending material with one uniform field and
// three texture fields, plus the four mappings that resolve it.
type materialFixture struct {
	pending  PendingMaterial
	mappings []upload.HandleMapping
}

func newMaterialFixture() *materialFixture {
	var pendingUniforms gpures.Storage[upload.Async[upload.UniformBuffer]]
	var pendingTextures gpures.Storage[upload.Async[upload.Texture]]
	var residentUniforms gpures.Storage[upload.UniformBuffer]
	var residentTextures gpures.Storage[upload.Texture]

	uniformTicket := upload.WholeBuffer(pendingUniforms.Add(upload.Async[upload.UniformBuffer]{}), 1)
	uniformMapping := upload.UniformBufferMapping{
		Old: uniformTicket,
		New: upload.WholeBuffer(residentUniforms.Add(upload.UniformBuffer{ElemCount: 1}), 1),
	}

	fx := &materialFixture{
		pending: PendingMaterial{
			Kind:     MaterialPBR,
			Uniforms: gpures.Awaiting[upload.UniformTicket, upload.BufferHandle[upload.UniformBuffer]](uniformTicket),
		},
		mappings: []upload.HandleMapping{uniformMapping},
	}

	fields := []**PendingTextureUse{
		&fx.pending.BaseColorTexture,
		&fx.pending.NormalMap,
		&fx.pending.MetallicRoughnessTexture,
	}
	for i, field := range fields {
		ticket := pendingTextures.Add(upload.Async[upload.Texture]{})
		pending := gpures.Awaiting[TextureUse[upload.TextureTicket], TextureUse[gpures.Handle[upload.Texture]]](
			TextureUse[upload.TextureTicket]{Texture: ticket, CoordSet: uint32(i)})
		*field = &pending
		fx.mappings = append(fx.mappings, upload.TextureMapping{
			Old: ticket,
			New: residentTextures.Add(upload.Texture{Width: 4, Height: 4}),
		})
	}
	return fx
}

func (fx *materialFixture) apply(t *testing.T, m upload.HandleMapping) {
	t.Helper()
	switch m := m.(type) {
	case upload.UniformBufferMapping:
		fx.pending.resolveUniform(m)
	case upload.TextureMapping:
		if _, ok := fx.pending.resolveTexture(m); !ok {
			t.Fatal("texture mapping matched no field")
		}
	default:
		t.Fatalf("unexpected mapping type %T", m)
	}
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, sub := range permutations(n - 1) {
		for i := 0; i <= len(sub); i++ {
			perm := make([]int, 0, n)
			perm = append(perm, sub[:i]...)
			perm = append(perm, n-1)
			perm = append(perm, sub[i:]...)
			out = append(out, perm)
		}
	}
	return out
}

func TestPendingMaterial_ResolutionOrderIndependent(t *testing.T) {
	for _, perm := range permutations(4) {
		fx := newMaterialFixture()
		for i, idx := range perm {
			if fx.pending.IsDone() {
				t.Fatalf("perm %v: done after %d of %d events", perm, i, len(perm))
			}
			fx.apply(t, fx.mappings[idx])
		}
		if !fx.pending.IsDone() {
			t.Fatalf("perm %v: not done after all events", perm)
		}

		material := fx.pending.Finish()
		if material.Kind != MaterialPBR {
			t.Fatalf("perm %v: Kind = %v, want MaterialPBR", perm, material.Kind)
		}
		for i, use := range []*TextureUse[gpures.Handle[upload.Texture]]{
			material.BaseColorTexture,
			material.NormalMap,
			material.MetallicRoughnessTexture,
		} {
			if use == nil {
				t.Fatalf("perm %v: texture field %d missing", perm, i)
			}
			if use.CoordSet != uint32(i) {
				t.Errorf("perm %v: texture field %d CoordSet = %d, want %d", perm, i, use.CoordSet, i)
			}
			want := fx.mappings[i+1].(upload.TextureMapping).New
			if use.Texture != want {
				t.Errorf("perm %v: texture field %d resolved to %v, want %v", perm, i, use.Texture, want)
			}
		}
	}
}

func TestPendingMaterial_DuplicateEventIgnored(t *testing.T) {
	fx := newMaterialFixture()
	fx.apply(t, fx.mappings[0])

	// A second delivery of the same mapping finds no awaiting ticket and
	// must be ignored rather than re-resolve the field.
	fx.pending.resolveUniform(fx.mappings[0].(upload.UniformBufferMapping))

	if fx.pending.IsDone() {
		t.Error("material done with textures still in flight")
	}
	if !fx.pending.Uniforms.IsAvailable() {
		t.Error("uniform field lost its resolution")
	}
}

func TestPendingMaterial_UnlitTexturePanics(t *testing.T) {
	fx := newMaterialFixture()
	fx.pending.Kind = MaterialUnlit

	defer func() {
		if recover() == nil {
			t.Error("texture mapping into an unlit material did not panic")
		}
	}()
	fx.pending.resolveTexture(fx.mappings[1].(upload.TextureMapping))
}

func TestPendingMaterial_UnmatchedEventIgnored(t *testing.T) {
	fx := newMaterialFixture()

	var otherPending gpures.Storage[upload.Async[upload.Texture]]
	var otherResident gpures.Storage[upload.Texture]
	stray := upload.TextureMapping{
		Old: otherPending.Add(upload.Async[upload.Texture]{}),
		New: otherResident.Add(upload.Texture{}),
	}
	if _, ok := fx.pending.resolveTexture(stray); ok {
		t.Error("stray texture mapping resolved a field")
	}
	if fx.pending.IsDone() {
		t.Error("material done without any of its own events")
	}
}

func TestUniformData_ToBytes(t *testing.T) {
	unlit := UnlitUniformData{Color: [4]float32{1, 0.5, 0.25, 1}}.ToBytes()
	if len(unlit) != UnlitUniformSize {
		t.Fatalf("unlit block = %d bytes, want %d", len(unlit), UnlitUniformSize)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(unlit[4:])); got != 0.5 {
		t.Errorf("unlit color[1] = %v, want 0.5", got)
	}

	pbr := PBRMaterialData{
		BaseColorFactor: [4]float32{1, 1, 1, 1},
		MetallicFactor:  0.75,
		RoughnessFactor: 0.5,
		NormalScale:     1,
	}.ToBytes()
	if len(pbr) != PBRUniformSize {
		t.Fatalf("pbr block = %d bytes, want %d", len(pbr), PBRUniformSize)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(pbr[16:])); got != 0.75 {
		t.Errorf("pbr metallic = %v, want 0.75", got)
	}
	if !bytes.Equal(pbr[28:], []byte{0, 0, 0, 0}) {
		t.Error("pbr padding is not zeroed")
	}
}

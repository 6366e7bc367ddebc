// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpures"
	"github.com/gogpu/gpures/upload"
)

// State holds the component stores the uploader works on. The host
// application owns the entities; the uploader attaches and promotes the
// GPU-side components.
type State struct {
	CPUMeshes     Components[CPUMesh]
	PendingMeshes Components[PendingMesh]
	Meshes        Components[Mesh]

	UnlitMaterials   Components[Unlit]
	PBRMaterials     Components[PhysicallyBased]
	PendingMaterials Components[PendingMaterial]
	Materials        Components[Material]
}

// Uploader drives the mesh and material upload pipeline. Call
// IssueRequests during update to submit new uploads and ResolvePending at
// the top of each frame to collect finished ones.
type Uploader struct {
	loader *upload.Loader
	store  *upload.ResourceStore
	log    *slog.Logger
}

// NewUploader creates an uploader over a loader and the store its
// resources land in.
func NewUploader(loader *upload.Loader, store *upload.ResourceStore) *Uploader {
	return &Uploader{
		loader: loader,
		store:  store,
		log:    gpures.Logger(),
	}
}

// IssueRequests submits uploads for every entity that describes a mesh or
// material but has neither a resident nor a pending one. Issuing is
// idempotent: an entity with a pending component is skipped, so calling
// this every frame does not duplicate uploads.
//
// All unlit materials issued in one call share a single batched uniform
// buffer upload; each entity receives a one-element sub view of it.
func (u *Uploader) IssueRequests(st *State) error {
	if err := u.issueMeshes(st); err != nil {
		return err
	}
	if err := u.issueUnlitMaterials(st); err != nil {
		return err
	}
	return u.issuePBRMaterials(st)
}

func (u *Uploader) issueMeshes(st *State) error {
	for e, cpu := range st.CPUMeshes.All() {
		if st.Meshes.Has(e) || st.PendingMeshes.Has(e) {
			continue
		}
		vertexTicket, err := u.loader.LoadVertexBuffer(cpu.Vertices)
		if err != nil {
			return fmt.Errorf("render: entity %d vertex buffer: %w", e, err)
		}
		indexTicket, err := u.loader.LoadIndexBuffer(cpu.Indices)
		if err != nil {
			return fmt.Errorf("render: entity %d index buffer: %w", e, err)
		}
		st.PendingMeshes.Set(e, PendingMesh{
			VertexBuffer: gpures.Awaiting[upload.VertexTicket, upload.BufferHandle[upload.VertexBuffer]](vertexTicket),
			IndexBuffer:  gpures.Awaiting[upload.IndexTicket, upload.BufferHandle[upload.IndexBuffer]](indexTicket),
		})
	}
	return nil
}

func (u *Uploader) issueUnlitMaterials(st *State) error {
	// One pass collects the batch so that entity order and uniform data
	// order agree.
	var entities []Entity
	var data []byte
	for e, unlit := range st.UnlitMaterials.All() {
		if st.Materials.Has(e) || st.PendingMaterials.Has(e) {
			continue
		}
		entities = append(entities, e)
		data = append(data, UnlitUniformData{Color: unlit.Color}.ToBytes()...)
	}
	if len(entities) == 0 {
		return nil
	}

	desc := upload.UniformBufferDescriptor(data, UnlitUniformSize, uint32(len(entities)), upload.MutabilityImmutable)
	desc.Label = "unlit-material-batch"
	batch, err := u.loader.LoadUniformBuffer(desc)
	if err != nil {
		return fmt.Errorf("render: unlit material batch: %w", err)
	}
	u.log.Debug("batched unlit material upload", "materials", len(entities))

	for i, e := range entities {
		st.PendingMaterials.Set(e, PendingMaterial{
			Kind:     MaterialUnlit,
			Uniforms: gpures.Awaiting[upload.UniformTicket, upload.BufferHandle[upload.UniformBuffer]](upload.SubBuffer(batch, uint32(i), 1)),
		})
	}
	return nil
}

func (u *Uploader) issuePBRMaterials(st *State) error {
	for e, pbr := range st.PBRMaterials.All() {
		if st.Materials.Has(e) || st.PendingMaterials.Has(e) {
			continue
		}

		block := PBRMaterialData{
			BaseColorFactor: pbr.BaseColorFactor,
			MetallicFactor:  pbr.MetallicFactor,
			RoughnessFactor: pbr.RoughnessFactor,
			NormalScale:     pbr.NormalScale,
		}
		desc := upload.UniformBufferDescriptor(block.ToBytes(), PBRUniformSize, 1, upload.MutabilityImmutable)
		desc.Label = "pbr-material"
		uniformTicket, err := u.loader.LoadUniformBuffer(desc)
		if err != nil {
			return fmt.Errorf("render: entity %d material uniforms: %w", e, err)
		}

		pending := PendingMaterial{
			Kind:            MaterialPBR,
			Uniforms:        gpures.Awaiting[upload.UniformTicket, upload.BufferHandle[upload.UniformBuffer]](uniformTicket),
			HasVertexColors: pbr.HasVertexColors,
		}
		if pending.BaseColorTexture, err = u.issueTexture(pbr.BaseColorTexture); err != nil {
			return fmt.Errorf("render: entity %d base color texture: %w", e, err)
		}
		if pending.NormalMap, err = u.issueTexture(pbr.NormalMap); err != nil {
			return fmt.Errorf("render: entity %d normal map: %w", e, err)
		}
		if pending.MetallicRoughnessTexture, err = u.issueTexture(pbr.MetallicRoughnessTexture); err != nil {
			return fmt.Errorf("render: entity %d metallic roughness texture: %w", e, err)
		}
		st.PendingMaterials.Set(e, pending)
	}
	return nil
}

func (u *Uploader) issueTexture(src *TextureSource) (*PendingTextureUse, error) {
	if src == nil {
		return nil, nil
	}
	ticket, err := u.loader.LoadTexture(src.Desc)
	if err != nil {
		return nil, err
	}
	pending := gpures.Awaiting[TextureUse[upload.TextureTicket], TextureUse[gpures.Handle[upload.Texture]]](
		TextureUse[upload.TextureTicket]{Texture: ticket, CoordSet: src.CoordSet})
	return &pending, nil
}

// ResolvePending collects finished uploads and swaps tickets for resident
// handles. Aggregates whose fields are all resident are promoted to Mesh
// or Material components, exactly once; their pending components are
// removed. Mappings arrive in no particular order and mappings that match
// no ticket, such as those for already promoted aggregates, are ignored.
//
// Mipmap generation for every texture that became resident in this call
// is requested as one batch.
//
// A failed upload does not abort the batch: every mapping Transfer
// returned is still applied and complete aggregates still promote, then
// the failure is returned. The failed resource's aggregate stays pending.
func (u *Uploader) ResolvePending(st *State) error {
	mappings, transferErr := u.loader.Transfer(u.store)
	if transferErr != nil {
		transferErr = fmt.Errorf("render: collecting finished uploads: %w", transferErr)
	}

	var mipmapWork []gpures.Handle[upload.Texture]
	for _, mapping := range mappings {
		switch mapping := mapping.(type) {
		case upload.VertexBufferMapping:
			for _, pm := range st.PendingMeshes.All() {
				if ticket, ok := pm.VertexBuffer.Ticket(); ok && mapping.Matches(ticket) {
					pm.VertexBuffer.Resolve(mapping.Resolve(ticket))
				}
			}
		case upload.IndexBufferMapping:
			for _, pm := range st.PendingMeshes.All() {
				if ticket, ok := pm.IndexBuffer.Ticket(); ok && mapping.Matches(ticket) {
					pm.IndexBuffer.Resolve(mapping.Resolve(ticket))
				}
			}
		case upload.UniformBufferMapping:
			for _, pm := range st.PendingMaterials.All() {
				pm.resolveUniform(mapping)
			}
		case upload.TextureMapping:
			for _, pm := range st.PendingMaterials.All() {
				if handle, ok := pm.resolveTexture(mapping); ok {
					mipmapWork = append(mipmapWork, handle)
				}
			}
		default:
			panic(fmt.Sprintf("render: unhandled mapping type %T", mapping))
		}
	}

	for e, pm := range st.PendingMeshes.All() {
		if mesh, ok := pm.TryFinish(); ok {
			st.Meshes.Set(e, mesh)
			st.PendingMeshes.Remove(e)
		}
	}
	for e, pm := range st.PendingMaterials.All() {
		if pm.IsDone() {
			st.Materials.Set(e, pm.Finish())
			st.PendingMaterials.Remove(e)
			u.log.Debug("material resident", "entity", e, "kind", pm.Kind)
		}
	}

	if err := u.loader.GenerateMipmaps(u.store, mipmapWork); err != nil && transferErr == nil {
		transferErr = fmt.Errorf("render: mipmap generation: %w", err)
	}
	return transferErr
}

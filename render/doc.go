// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render turns CPU-side mesh and material descriptions into
// GPU-resident resources ready for drawing.
//
// Entities carry description components such as [CPUMesh], [Unlit], or
// [PhysicallyBased]. Each frame, an [Uploader] walks the component stores:
// IssueRequests submits uploads for entities that describe resources but
// do not yet have them, parking the tickets in [PendingMesh] and
// [PendingMaterial] components. ResolvePending drains the loader's
// finished uploads and swaps tickets for resident handles; an aggregate
// whose fields are all resident is promoted to a [Mesh] or [Material]
// component, exactly once.
//
// The whole package is single threaded. All component stores belong to
// the goroutine that drives the Uploader.
package render

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpures provides the resource lifecycle core for real-time
// renderers: typed handles, slot arenas, double-buffered storage for
// frame-in-flight state, and the generic building blocks used by the
// asynchronous upload pipeline in the upload and render subpackages.
//
// # Handles and arenas
//
// [Storage] is a slot arena: values are inserted with Add, which returns a
// stable [Handle], and looked up in O(1). Freed slots are reused, but every
// slot carries a generation counter, so a handle that has been removed never
// resolves again — not even if a later value occupies the same physical
// slot.
//
// [BufferedStorage] stores two physical copies of each value, one per frame
// in flight, behind a single logical handle. Call sites that only need "the
// resource" use the handle as-is; render submission selects the copy for the
// current frame index explicitly.
//
// # Upload lifecycle
//
// [Pending] is a two-state value used by the render package to track a
// GPU-bound field from its in-flight upload ticket to its resident handle.
// [LifetimeToken] is a shared liveness counter a parent GPU object uses to
// assert that no dependent object outlives it before freeing device memory.
//
// # Concurrency
//
// Arenas and pending state are single-writer: one goroutine (the render
// loop) owns them. Only the upload.Loader runs a background goroutine, and
// it communicates exclusively through the completion queue drained once per
// frame. See the upload package for details.
package gpures

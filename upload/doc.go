// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package upload moves CPU-side resource descriptions onto the GPU and
// tracks them while they are in flight.
//
// A caller describes a resource with a [BufferDescriptor] or
// [TextureDescriptor] and hands it to a [Loader]. The loader returns a
// ticket immediately and performs the device work on a background
// goroutine. Once per frame the owner of a [ResourceStore] calls
// [Loader.Transfer], which moves every finished upload into the store and
// reports a [HandleMapping] for each one so that callers can swap their
// tickets for resident handles.
//
// Device work goes through the [Backend] interface. [HALBackend] drives a
// real device via gogpu/wgpu, [SoftwareBackend] keeps resources in host
// memory for tests and headless tools, and [NullBackend] discards
// everything.
//
// Apart from the loader's background goroutine, nothing in this package
// is safe for concurrent use. Arenas and stores belong to the thread that
// created them.
package upload

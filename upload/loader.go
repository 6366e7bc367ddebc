// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpures"
)

var (
	// ErrImmutableWrite indicates a write to a buffer declared immutable.
	ErrImmutableWrite = errors.New("upload: write to immutable buffer")

	// ErrStaleHandle indicates an operation on a handle whose resource no
	// longer exists.
	ErrStaleHandle = errors.New("upload: stale resource handle")
)

// LoaderOption configures a Loader during creation.
//
// Example:
//
//	loader := upload.NewLoader(backend,
//		upload.WithWorkers(2),
//		upload.WithLogger(slog.Default()))
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	workers    int
	queueDepth int
	log        *slog.Logger
}

func defaultLoaderOptions() loaderOptions {
	return loaderOptions{
		workers:    1,
		queueDepth: 64,
		log:        gpures.Logger(),
	}
}

// WithWorkers sets the number of upload goroutines. More workers allow
// several device transfers in flight at once; completion order is
// unordered either way.
func WithWorkers(n int) LoaderOption {
	return func(o *loaderOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithQueueDepth sets how many submitted uploads may wait for a worker
// before Load calls block.
func WithQueueDepth(n int) LoaderOption {
	return func(o *loaderOptions) {
		if n > 0 {
			o.queueDepth = n
		}
	}
}

// WithLogger sets the loader's logger. The default is the package level
// logger, which is silent unless configured.
func WithLogger(log *slog.Logger) LoaderOption {
	return func(o *loaderOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// Loader uploads resources to the GPU asynchronously.
//
// Load calls return a ticket immediately and queue the device work for a
// background worker. The goroutine that owns the loader and its
// ResourceStore must call Transfer once per frame to collect finished
// uploads; each finished upload becomes resident in the store and is
// reported as a HandleMapping.
//
// Submission, Transfer, and Close must all happen on the owning
// goroutine. The workers never touch the pending tables or the store.
type Loader struct {
	backend Backend
	log     *slog.Logger

	// Pending tables. Tickets are handles into these arenas; a slot lives
	// from submission until the matching Transfer.
	uniforms gpures.Storage[Async[UniformBuffer]]
	vertices gpures.Storage[Async[VertexBuffer]]
	indices  gpures.Storage[Async[IndexBuffer]]
	textures gpures.Storage[Async[Texture]]

	jobs   chan func()
	wg     sync.WaitGroup
	closed bool

	mu   sync.Mutex
	done []completion
}

// completion is one finished upload, recorded by a worker and applied to
// the store during Transfer. apply and discard run on the owning
// goroutine; discard releases the pending ticket of a failed upload.
type completion struct {
	apply   func(store *ResourceStore) HandleMapping
	discard func()
	err     error
}

// NewLoader creates a loader on top of a backend and starts its workers.
// A nil backend gets replaced by a NullBackend.
func NewLoader(backend Backend, opts ...LoaderOption) *Loader {
	o := defaultLoaderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if backend == nil {
		backend = &NullBackend{}
	}

	l := &Loader{
		backend: backend,
		log:     o.log,
		jobs:    make(chan func(), o.queueDepth),
	}
	l.wg.Add(o.workers)
	for i := 0; i < o.workers; i++ {
		go l.worker()
	}
	return l
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for job := range l.jobs {
		job()
	}
}

func (l *Loader) complete(c completion) {
	l.mu.Lock()
	l.done = append(l.done, c)
	l.mu.Unlock()
}

// Pending returns the number of uploads that have not yet been collected
// by Transfer.
func (l *Loader) Pending() int {
	return l.uniforms.Len() + l.vertices.Len() + l.indices.Len() + l.textures.Len()
}

// Close stops the workers after the queued uploads finish. Uploads that
// complete during shutdown can still be collected with a final Transfer.
func (l *Loader) Close() {
	if l.closed {
		return
	}
	l.closed = true
	close(l.jobs)
	l.wg.Wait()
}

// LoadUniformBuffer queues a uniform buffer upload. Mutable buffers get
// one device buffer per frame copy; immutable buffers share a single
// device buffer between both copies.
//
// The ticket views the buffer's whole element range. Use SubBuffer to
// carve per-consumer ranges out of a batched upload.
func (l *Loader) LoadUniformBuffer(desc BufferDescriptor) (UniformTicket, error) {
	if err := desc.Validate(); err != nil {
		return UniformTicket{}, err
	}
	ticket := l.uniforms.Add(Async[UniformBuffer]{})
	count := desc.ElemCount
	l.log.Debug("queued uniform buffer upload",
		"label", desc.Label, "bytes", desc.Size(), "mutability", desc.Mutability)

	l.jobs <- func() {
		pair, err := l.createUniformPair(&desc)
		if err != nil {
			l.complete(completion{
				discard: func() { l.uniforms.Remove(ticket) },
				err:     fmt.Errorf("upload: uniform buffer %q: %w", desc.Label, err),
			})
			return
		}
		l.complete(completion{apply: func(store *ResourceStore) HandleMapping {
			l.uniforms.Remove(ticket)
			resident := store.uniformBuffers.Add(pair)
			return UniformBufferMapping{
				Old: WholeBuffer(ticket, count),
				New: WholeBuffer(resident, count),
			}
		}})
	}
	return WholeBuffer(ticket, count), nil
}

// LoadVertexBuffer queues a vertex buffer upload.
func (l *Loader) LoadVertexBuffer(desc BufferDescriptor) (VertexTicket, error) {
	if err := desc.Validate(); err != nil {
		return VertexTicket{}, err
	}
	ticket := l.vertices.Add(Async[VertexBuffer]{})
	count := desc.ElemCount
	l.log.Debug("queued vertex buffer upload", "label", desc.Label, "bytes", desc.Size())

	l.jobs <- func() {
		id, err := l.backend.CreateBuffer(&desc)
		if err != nil {
			l.complete(completion{
				discard: func() { l.vertices.Remove(ticket) },
				err:     fmt.Errorf("upload: vertex buffer %q: %w", desc.Label, err),
			})
			return
		}
		buf := VertexBuffer{ID: id, Stride: desc.ElemSize, ElemCount: desc.ElemCount}
		l.complete(completion{apply: func(store *ResourceStore) HandleMapping {
			l.vertices.Remove(ticket)
			resident := store.vertexBuffers.Add(buf)
			return VertexBufferMapping{
				Old: WholeBuffer(ticket, count),
				New: WholeBuffer(resident, count),
			}
		}})
	}
	return WholeBuffer(ticket, count), nil
}

// LoadIndexBuffer queues an index buffer upload.
func (l *Loader) LoadIndexBuffer(desc BufferDescriptor) (IndexTicket, error) {
	if err := desc.Validate(); err != nil {
		return IndexTicket{}, err
	}
	ticket := l.indices.Add(Async[IndexBuffer]{})
	count := desc.ElemCount
	l.log.Debug("queued index buffer upload", "label", desc.Label, "bytes", desc.Size())

	l.jobs <- func() {
		id, err := l.backend.CreateBuffer(&desc)
		if err != nil {
			l.complete(completion{
				discard: func() { l.indices.Remove(ticket) },
				err:     fmt.Errorf("upload: index buffer %q: %w", desc.Label, err),
			})
			return
		}
		buf := IndexBuffer{ID: id, IndexSize: IndexSizeOf(int(desc.ElemSize)), ElemCount: desc.ElemCount}
		l.complete(completion{apply: func(store *ResourceStore) HandleMapping {
			l.indices.Remove(ticket)
			resident := store.indexBuffers.Add(buf)
			return IndexBufferMapping{
				Old: WholeBuffer(ticket, count),
				New: WholeBuffer(resident, count),
			}
		}})
	}
	return WholeBuffer(ticket, count), nil
}

// LoadTexture queues a texture upload.
func (l *Loader) LoadTexture(desc TextureDescriptor) (TextureTicket, error) {
	if err := desc.Validate(); err != nil {
		return TextureTicket{}, err
	}
	ticket := l.textures.Add(Async[Texture]{})
	l.log.Debug("queued texture upload",
		"label", desc.Label, "width", desc.Width, "height", desc.Height)

	l.jobs <- func() {
		id, err := l.backend.CreateTexture(&desc)
		if err != nil {
			l.complete(completion{
				discard: func() { l.textures.Remove(ticket) },
				err:     fmt.Errorf("upload: texture %q: %w", desc.Label, err),
			})
			return
		}
		tex := Texture{
			ID:        id,
			Width:     desc.Width,
			Height:    desc.Height,
			Format:    desc.Format,
			MipLevels: desc.MipLevels(),
		}
		l.complete(completion{apply: func(store *ResourceStore) HandleMapping {
			l.textures.Remove(ticket)
			resident := store.textures.Add(tex)
			return TextureMapping{Old: ticket, New: resident}
		}})
	}
	return ticket, nil
}

// Transfer moves every finished upload into the store and returns one
// HandleMapping per upload. Mappings are unordered. The first failed
// upload aborts nothing that already succeeded; its error is returned
// after the successful mappings have been applied.
func (l *Loader) Transfer(store *ResourceStore) ([]HandleMapping, error) {
	l.mu.Lock()
	batch := l.done
	l.done = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return nil, nil
	}

	mappings := make([]HandleMapping, 0, len(batch))
	var firstErr error
	for _, c := range batch {
		if c.err != nil {
			l.log.Error("resource upload failed", "error", c.err)
			if c.discard != nil {
				c.discard()
			}
			if firstErr == nil {
				firstErr = c.err
			}
			continue
		}
		mappings = append(mappings, c.apply(store))
	}
	l.log.Debug("transferred finished uploads", "count", len(mappings))
	return mappings, firstErr
}

// CreateUniformBufferBlocking uploads a uniform buffer on the calling
// goroutine and registers it with the store immediately, bypassing the
// ticket machinery. Intended for setup paths that happen before the frame
// loop starts.
func (l *Loader) CreateUniformBufferBlocking(ctx context.Context, desc BufferDescriptor, store *ResourceStore) (BufferHandle[UniformBuffer], error) {
	if err := ctx.Err(); err != nil {
		return BufferHandle[UniformBuffer]{}, err
	}
	if err := desc.Validate(); err != nil {
		return BufferHandle[UniformBuffer]{}, err
	}
	pair, err := l.createUniformPair(&desc)
	if err != nil {
		return BufferHandle[UniformBuffer]{}, fmt.Errorf("upload: uniform buffer %q: %w", desc.Label, err)
	}
	resident := store.uniformBuffers.Add(pair)
	return WholeBuffer(resident, desc.ElemCount), nil
}

// CreateTextureBlocking uploads a texture on the calling goroutine and
// registers it with the store immediately.
func (l *Loader) CreateTextureBlocking(ctx context.Context, desc TextureDescriptor, store *ResourceStore) (gpures.Handle[Texture], error) {
	if err := ctx.Err(); err != nil {
		return gpures.Handle[Texture]{}, err
	}
	if err := desc.Validate(); err != nil {
		return gpures.Handle[Texture]{}, err
	}
	id, err := l.backend.CreateTexture(&desc)
	if err != nil {
		return gpures.Handle[Texture]{}, fmt.Errorf("upload: texture %q: %w", desc.Label, err)
	}
	return store.textures.Add(Texture{
		ID:        id,
		Width:     desc.Width,
		Height:    desc.Height,
		Format:    desc.Format,
		MipLevels: desc.MipLevels(),
	}), nil
}

// WriteUniformBuffer overwrites the elements viewed by view in the given
// frame copy. The view's buffer must be mutable; immutable buffers share
// one device buffer between frame copies and must not change after
// upload. data must cover exactly the view's element range.
func (l *Loader) WriteUniformBuffer(store *ResourceStore, view BufferHandle[UniformBuffer], frame int, data []byte) error {
	buf, ok := store.UniformBuffer(view, frame)
	if !ok {
		return fmt.Errorf("%w: %v", ErrStaleHandle, view)
	}
	if buf.Mutability != MutabilityMutable {
		return fmt.Errorf("%w: %v", ErrImmutableWrite, view)
	}
	want := uint64(view.Count()) * uint64(buf.ElemSize)
	if uint64(len(data)) != want {
		return fmt.Errorf("%w: have %d bytes, view of %d elements wants %d",
			ErrSizeMismatch, len(data), view.Count(), want)
	}
	offset := uint64(view.First()) * uint64(buf.ElemSize)
	return l.backend.WriteBuffer(buf.ID, offset, data)
}

// GenerateMipmaps fills the mip chains of the given resident textures in
// one backend batch. Stale handles are skipped.
func (l *Loader) GenerateMipmaps(store *ResourceStore, handles []gpures.Handle[Texture]) error {
	if len(handles) == 0 {
		return nil
	}
	ids := make([]TextureID, 0, len(handles))
	for _, h := range handles {
		tex, ok := store.Texture(h)
		if !ok {
			l.log.Warn("skipping mipmap generation for stale texture handle", "handle", h)
			continue
		}
		if tex.MipLevels > 1 {
			ids = append(ids, tex.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	l.log.Debug("generating mipmaps", "textures", len(ids))
	return l.backend.GenerateMipmaps(ids)
}

// createUniformPair creates the device buffers behind one uniform buffer
// arena entry. Mutable buffers get two so that one copy can be written
// while the other is in flight.
func (l *Loader) createUniformPair(desc *BufferDescriptor) (gpures.Pair[UniformBuffer], error) {
	var pair gpures.Pair[UniformBuffer]
	id, err := l.backend.CreateBuffer(desc)
	if err != nil {
		return pair, err
	}
	buf := UniformBuffer{
		ID:         id,
		ElemSize:   desc.ElemSize,
		ElemCount:  desc.ElemCount,
		Mutability: desc.Mutability,
	}
	pair[0] = buf
	pair[1] = buf
	if desc.Mutability == MutabilityMutable {
		second, err := l.backend.CreateBuffer(desc)
		if err != nil {
			l.backend.DestroyBuffer(id)
			return pair, err
		}
		pair[1].ID = second
	}
	return pair, nil
}

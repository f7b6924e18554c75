// Package arena implements the fixed-block item/search-result allocator
// spec.md §4.1 describes: a handler owning a current blob with a bump
// cursor plus a capped free list of fully-released blobs.
//
// Grounded on internal/pool/slice_pool.go's sync.Pool-backed fixed-size
// slice reuse in the teacher (arloliu/mebo), generalized from bare scalar
// slices to blobs of T with per-slot acquire/release bookkeeping. The
// "page-aligned anonymous mapping" wording in spec.md §4.1 is implemented
// as a fixed-capacity slice of T — see DESIGN.md for why raw mmap was not
// wired.
package arena

import (
	"github.com/wanderber/wanderber/errs"
	"github.com/wanderber/wanderber/internal/wbopts"
)

// defaultMaxIdleBlobs caps the handler's free list, spec.md §4.1 "capped at
// 20 idle blobs"; overridable via WithMaxIdleBlobs.
const defaultMaxIdleBlobs = 20

// Config holds the arena tunables a caller can override via functional
// options at construction time, grounded on the teacher's
// internal/options usage in blob/numeric_encoder_config.go (NewX(required,
// opts ...Option) applying a config struct).
type Config struct {
	maxIdleBlobs int
}

// Option configures an arena Handler at construction time.
type Option = wbopts.Option[*Config]

// WithMaxIdleBlobs overrides the default free-list cap (spec.md §4.1's "20
// idle blobs" figure). Values <= 0 are ignored.
func WithMaxIdleBlobs(n int) Option {
	return wbopts.NoError(func(c *Config) {
		if n > 0 {
			c.maxIdleBlobs = n
		}
	})
}

// blob is one fixed-capacity slab of T slots.
type blob[T any] struct {
	slots    []T
	cursor   int // next unused slot index (bump allocation)
	released int // count of slots released back to this blob
	next     *blob[T]
}

func newBlob[T any](itemsPerBlob int) *blob[T] {
	return &blob[T]{slots: make([]T, itemsPerBlob)}
}

// Slot identifies one acquired item: the owning blob and its index within
// that blob's slot slice.
type Slot[T any] struct {
	Value   *T
	owner   *blob[T]
	index   int
}

// Handler is a single arena instance, spec.md §4.1 "create(handler, ...)".
// Not safe for concurrent use: a decoder owns exactly one Handler and must
// serialize its own operations, per spec.md §5.
type Handler[T any] struct {
	itemsPerBlob int
	maxIdleBlobs int
	current      *blob[T]
	freeList     *blob[T]
	freeListLen  int
	destroyed    bool
}

// New creates a Handler allocating itemsPerBlob slots of T per blob. opts
// can override ambient tunables such as the free-list cap.
func New[T any](itemsPerBlob int, opts ...Option) *Handler[T] {
	if itemsPerBlob <= 0 {
		itemsPerBlob = 1
	}

	cfg := &Config{maxIdleBlobs: defaultMaxIdleBlobs}
	_ = wbopts.Apply(cfg, opts...) // WithMaxIdleBlobs never errors

	return &Handler[T]{
		itemsPerBlob: itemsPerBlob,
		maxIdleBlobs: cfg.maxIdleBlobs,
		current:      newBlob[T](itemsPerBlob),
	}
}

// Acquire bump-allocates one slot. When the current blob is exhausted: if
// every slot it ever handed out has also been released, the blob is reused
// in place (cursor reset); else if the free list is empty a new blob is
// allocated; else the free-list head is detached and used, per spec.md
// §4.1.
func (h *Handler[T]) Acquire() (Slot[T], error) {
	if h.destroyed {
		return Slot[T]{}, errs.ErrArenaDestroyed
	}

	if h.current.cursor >= h.itemsPerBlob {
		switch {
		case h.current.released == h.itemsPerBlob:
			h.current.cursor = 0
			h.current.released = 0
		case h.freeList == nil:
			h.current = newBlob[T](h.itemsPerBlob)
		default:
			next := h.freeList
			h.freeList = h.freeList.next
			h.freeListLen--
			next.next = nil
			h.current = next
		}
	}

	idx := h.current.cursor
	h.current.cursor++

	return Slot[T]{Value: &h.current.slots[idx], owner: h.current, index: idx}, nil
}

// Release returns a slot to its owning blob. When every slot of that blob
// has been released, the blob is pushed onto the handler's free list; once
// the free list reaches maxIdleBlobs, the excess blob is dropped (left for
// the garbage collector) rather than kept, matching spec.md §4.1's "unmap
// immediately" for a Go-idiomatic arena.
func (h *Handler[T]) Release(s Slot[T]) {
	if s.owner == nil {
		return
	}

	s.owner.released++
	var zero T
	s.owner.slots[s.index] = zero

	if s.owner.released == h.itemsPerBlob && s.owner != h.current {
		if h.freeListLen < h.maxIdleBlobs {
			s.owner.next = h.freeList
			h.freeList = s.owner
			h.freeListLen++
		}
		// else: excess blob, dropped for GC.
	}
}

// Destroy releases the handler's resources. Per spec.md §4.1, items still
// held by the caller outlive the handler (a program bug, not a panic).
func (h *Handler[T]) Destroy() {
	h.destroyed = true
	h.current = nil
	h.freeList = nil
	h.freeListLen = 0
}

// BlobCount reports how many blobs currently exist for this handler
// (current + free list), used by the "arena churn" testable property in
// spec.md §8.
func (h *Handler[T]) BlobCount() int {
	n := 0
	if h.current != nil {
		n++
	}
	for b := h.freeList; b != nil; b = b.next {
		n++
	}

	return n
}

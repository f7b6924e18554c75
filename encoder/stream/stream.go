// Package stream implements the streaming (append-based) BER encoder,
// spec.md §4.7: each call appends directly into a growable byte buffer
// rather than staging a tree, trading the deferred encoder's one-pass
// length precomputation for simplicity when the caller already knows each
// item's length up front (as the domain record builder, package etsili,
// does for its fixed skeletons).
//
// Grounded on original_source/src/encoder.c's wandder_encoder_ber_t family
// (wandder_encode_next_ber/_endseq_ber/_append_preencoded_ber, all built on
// rem_grow_check's realloc-with-pointer-fixup), adapted to Go by using
// package internal/pool's offset-based ByteBuffer instead of raw pointer
// arithmetic: callers hold offsets into the buffer, which stay valid across
// a Grow-triggered reallocation, rather than slices or pointers, which do
// not (spec.md §4.7 "on move ... externally held offsets are invalidated
// ... callers must use offsets, not pointers").
package stream

import (
	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/internal/pool"
	"github.com/wanderber/wanderber/internal/wbopts"
	"github.com/wanderber/wanderber/schema"
)

// DefaultInitialCapacity and DefaultGrowth mirror the teacher's
// BlobBufferDefaultSize-style fixed starting point when a caller does not
// tune NewEncoder's parameters.
const (
	DefaultInitialCapacity = 4096
	DefaultGrowth          = 4096
)

// Config holds the streaming encoder's configurable growth increment,
// grounded on the teacher's NewNumericEncoder(required, opts ...Option)
// split between a positional primary parameter and options-only secondary
// tuning.
type Config struct {
	growth int
}

// Option configures an Encoder at construction time.
type Option = wbopts.Option[*Config]

// WithGrowth overrides the buffer's growth increment (0 or unset selects
// DefaultGrowth).
func WithGrowth(n int) Option {
	return wbopts.NoError(func(c *Config) {
		if n > 0 {
			c.growth = n
		}
	})
}

// Encoder appends BER-encoded items directly into a growable buffer.
type Encoder struct {
	buf *pool.ByteBuffer
}

// NewEncoder creates a streaming encoder with the given starting capacity
// (0 selects DefaultInitialCapacity); opts can override the growth
// increment (WithGrowth), otherwise DefaultGrowth is used.
func NewEncoder(initialCapacity int, opts ...Option) *Encoder {
	if initialCapacity <= 0 {
		initialCapacity = DefaultInitialCapacity
	}

	cfg := &Config{growth: DefaultGrowth}
	_ = wbopts.Apply(cfg, opts...) // WithGrowth never errors

	return &Encoder{buf: pool.NewByteBuffer(initialCapacity, cfg.growth)}
}

// Len reports the encoder's current used length.
func (e *Encoder) Len() int { return e.buf.Len() }

// EncodeNextBER implements encode_next_ber, spec.md §4.7: computes the
// exact preamble+value size for the item, grows the buffer if needed, and
// appends the bytes. value holds the already-appropriately-encoded content
// octets for encodeAs (mirroring package deferred's EncodeNext contract).
// A constructed class always opens an indefinite-form length, matching
// original_source/src/encoder.c's `if (class & 1) encode_length_indefinite`
// — the streaming encoder has no tree to compute a definite content length
// from, so constructed items are always closed later with EndSeqBER.
// Returns the offset the item's identifier byte was written at.
func (e *Encoder) EncodeNextBER(class ber.IdentifierClass, id uint32, encodeAs schema.SemanticType, value []byte) int {
	staged := stageValue(encodeAs, value)

	idLen := identifierLen(id)

	var total int
	if class.Constructed() {
		total = idLen + 1 // tag + indefinite-form 0x80, no value bytes follow
	} else {
		total = idLen + len(ber.EncodeLength(nil, len(staged))) + len(staged)
	}

	e.buf.Grow(total)

	off := len(e.buf.B)
	e.buf.B = ber.EncodeIdentifier(e.buf.B, class, id)

	if class.Constructed() {
		e.buf.B = ber.EncodeIndefiniteLength(e.buf.B)
	} else {
		e.buf.B = ber.EncodeLength(e.buf.B, len(staged))
		e.buf.B = append(e.buf.B, staged...)
	}

	return off
}

// EndSeqBER implements endseq_ber(N): writes 2*N zero bytes (N
// end-of-contents markers), closing N nested indefinite-form items.
func (e *Encoder) EndSeqBER(depth int) {
	n := depth * 2
	e.buf.Grow(n)

	for i := 0; i < n; i++ {
		e.buf.B = append(e.buf.B, 0x00)
	}
}

// AppendPreencodedBER implements append_preencoded_ber: copies chunk
// verbatim, returning the offset it was written at.
func (e *Encoder) AppendPreencodedBER(chunk []byte) int {
	e.buf.Grow(len(chunk))

	return e.buf.Append(chunk)
}

// FinishBER implements finish_ber: returns the encoded bytes and resets the
// encoder for reuse (mirroring wandder_encode_finish_ber's
// detach-then-reallocate behavior, adapted to Go's GC rather than an
// explicit free/malloc pair).
func (e *Encoder) FinishBER() []byte {
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())

	e.buf.Reset()

	return out
}

// Bytes exposes the buffer's current contents without finishing/resetting,
// for patching mutable offsets in place (package etsili's record header
// slots).
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// PatchAt overwrites len(data) bytes at off with data. It does not check
// data's length against the width of the slot being patched; it panics only
// when off+len(data) runs past the buffer's used length.
func (e *Encoder) PatchAt(off int, data []byte) {
	copy(e.buf.B[off:off+len(data)], data)
}

func identifierLen(id uint32) int {
	if id <= 30 {
		return 1
	}

	n := 1
	v := id
	for v > 0 {
		n++
		v >>= 7
	}

	return n
}

func stageValue(encodeAs schema.SemanticType, value []byte) []byte {
	switch encodeAs {
	case schema.Null, schema.Sequence, schema.Set:
		return nil
	default:
		return value
	}
}

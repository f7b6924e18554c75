// Package pool provides small reusable buffer types, adapted from the
// teacher's internal/pool/byte_buffer_pool.go sync.Pool-backed ByteBuffer.
package pool

import "sync"

// ByteBuffer is a growable byte buffer with an explicit, caller-tunable
// growth increment, grounded on the teacher's ByteBuffer but generalized
// from its fixed 16KiB/25%-of-capacity policy to the streaming BER
// encoder's "growth increment" data-model field, spec.md §3 "Streaming
// encoder".
type ByteBuffer struct {
	B        []byte
	Growth   int // bytes added per reallocation when growth is needed
}

// NewByteBuffer creates a buffer with the given starting capacity and
// growth increment.
func NewByteBuffer(initialCap, growth int) *ByteBuffer {
	if growth <= 0 {
		growth = initialCap
	}
	if growth <= 0 {
		growth = 256
	}

	return &ByteBuffer{
		B:      make([]byte, 0, initialCap),
		Growth: growth,
	}
}

// Reset empties the buffer while retaining its allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len reports the buffer's used length.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Cap reports the buffer's allocated capacity.
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// Grow ensures at least n more bytes of spare capacity exist, reallocating
// in Growth-sized (or larger, if n exceeds it) steps when the current
// backing array is insufficient. Reallocation invalidates any byte slice
// previously obtained from Bytes(); callers holding offsets rather than
// slices are unaffected, which is the reason the streaming encoder (package
// encoder/stream) stores offsets for its mutable header slots instead of
// direct pointers.
func (bb *ByteBuffer) Grow(n int) {
	available := cap(bb.B) - len(bb.B)
	if available >= n {
		return
	}

	growBy := bb.Growth
	if growBy < n {
		growBy = n
	}

	newBuf := make([]byte, len(bb.B), cap(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Append grows as needed and appends data, returning the offset data was
// written at.
func (bb *ByteBuffer) Append(data []byte) int {
	bb.Grow(len(data))
	off := len(bb.B)
	bb.B = append(bb.B, data...)

	return off
}

// AppendByte grows as needed and appends a single byte, returning the
// offset it was written at.
func (bb *ByteBuffer) AppendByte(b byte) int {
	bb.Grow(1)
	off := len(bb.B)
	bb.B = append(bb.B, b)

	return off
}

// Bytes returns the buffer's used portion.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Truncate shrinks the buffer's used length to n, retaining capacity.
func (bb *ByteBuffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(bb.B) {
		return
	}

	bb.B = bb.B[:n]
}

// Pool recycles ByteBuffers of a fixed starting capacity/growth, grounded on
// the teacher's ByteBufferPool.
type Pool struct {
	pool       sync.Pool
	initialCap int
	growth     int
}

// NewPool creates a Pool producing buffers with the given starting capacity
// and growth increment.
func NewPool(initialCap, growth int) *Pool {
	p := &Pool{initialCap: initialCap, growth: growth}
	p.pool.New = func() any {
		return NewByteBuffer(initialCap, growth)
	}

	return p
}

// Get retrieves a ByteBuffer from the pool.
func (p *Pool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a buffer to the pool after resetting it.
func (p *Pool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

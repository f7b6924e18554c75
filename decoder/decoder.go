// Package decoder implements the BER decoder engine, spec.md §4.3: sequential
// advance, sibling-skip, "advance until identifier >= N", decode-result
// caching for repeated walks of the same buffer, and the schema-driven
// search built on top of it (spec.md §4.4, see search.go).
//
// Grounded on the teacher's (arloliu/mebo) blob/numeric_decoder.go
// decode-from-header-then-walk shape, generalized from a fixed binary
// header to an arbitrary BER tag/length/value walk. Item storage is arena
// allocated (package arena), indexed rather than pointer-linked per
// spec.md §9.
package decoder

import (
	"github.com/cespare/xxhash/v2"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/errs"
	"github.com/wanderber/wanderber/internal/arena"
)

// DefaultItemsPerBlob is the arena blob size used when callers don't
// override it via NewDecoder's itemsPerBlob parameter.
const DefaultItemsPerBlob = 256

// maxLengthWidth bounds the long-form length field, spec.md §4.3 "long form
// with byte count <= sizeof(content-length field)" — a Go int is at least
// 8 bytes wide everywhere this module targets.
const maxLengthWidth = 8

// Decoder walks one octet buffer field by field. Not safe for concurrent
// use: a caller must serialize operations on a given instance, spec.md §5.
type Decoder struct {
	buf     []byte
	bufHash uint64

	itemsPerBlob int
	arenaH       *arena.Handler[Item]
	slots        []arena.Slot[Item]

	current  itemRef
	topLevel itemRef
}

// NewDecoder creates a decoder with no attached buffer. itemsPerBlob tunes
// the item arena's blob size (spec.md §4.1); 0 selects DefaultItemsPerBlob.
func NewDecoder(itemsPerBlob int) *Decoder {
	if itemsPerBlob <= 0 {
		itemsPerBlob = DefaultItemsPerBlob
	}

	return &Decoder{
		itemsPerBlob: itemsPerBlob,
		arenaH:       arena.New[Item](itemsPerBlob),
		current:      noRef,
		topLevel:     noRef,
	}
}

// Attach binds buf as the decode source. When copyBuf is true the decoder
// takes an owned copy; otherwise it borrows buf, spec.md §3 "Octet buffer".
// Attach always discards any previously cached item tree — it behaves as
// spec.md §4.3's "init_decoder with a non-null existing decoder resets and
// frees the cache before rebinding the source".
func (d *Decoder) Attach(buf []byte, copyBuf bool) {
	if copyBuf {
		own := make([]byte, len(buf))
		copy(own, buf)
		buf = own
	}

	d.buf = buf
	d.bufHash = xxhash.Sum64(buf)
	d.arenaH.Destroy()
	d.arenaH = arena.New[Item](d.itemsPerBlob)
	d.slots = nil
	d.current = noRef
	d.topLevel = noRef
}

// Reset clears the current position but keeps the top-level item and the
// cached item tree below it, so the next Next() call restarts at the top
// level and subsequent walks of the same buffer reuse the cache, spec.md §4.3
// "Reset semantics". Resetting against a buffer whose bytes have changed
// underneath the decoder is refused, guarding the cache-transparency
// invariant spec.md §8 requires.
func (d *Decoder) Reset() error {
	if xxhash.Sum64(d.buf) != d.bufHash {
		return errs.ErrBufferIdentityChanged
	}

	d.current = noRef

	return nil
}

// Free releases the decoder's arena. Using the decoder afterward is a
// programmer error, spec.md §7.
func (d *Decoder) Free() {
	d.arenaH.Destroy()
	d.slots = nil
	d.buf = nil
	d.current = noRef
	d.topLevel = noRef
}

func (d *Decoder) item(ref itemRef) *Item {
	return d.slots[ref].Value
}

// CurrentItem exposes the item the decoder is positioned on, or nil.
func (d *Decoder) CurrentItem() *Item {
	if d.current == noRef {
		return nil
	}

	return d.item(d.current)
}

// Next implements decode_next, spec.md §4.3.
func (d *Decoder) Next() (*Item, error) {
	if d.buf == nil {
		return nil, errs.ErrNilDecoder
	}

	if d.current == noRef {
		if d.topLevel != noRef {
			d.current = d.topLevel
			return d.item(d.current), nil
		}

		ref, err := d.parseAndLink(0, noRef, 0, linkNone, noRef)
		if err != nil {
			return nil, err
		}

		d.topLevel = ref

		return d.item(ref), nil
	}

	cur := d.item(d.current)

	skip := cur.forceSkip
	cur.forceSkip = false

	if cur.class.Constructed() && cur.descend && !skip {
		if cur.cachedChildren != noRef {
			d.current = cur.cachedChildren
			return d.item(d.current), nil
		}

		ref, err := d.parseAndLink(cur.valPtr, d.current, cur.level+1, linkChild, d.current)
		if err != nil {
			return nil, err
		}

		return d.item(ref), nil
	}

	if cur.cachedNext != noRef {
		d.current = cur.cachedNext
		return d.item(d.current), nil
	}

	pos := cur.valPtr
	if !cur.indefinite {
		pos = cur.valPtr + cur.contentLen
	}

	ref, err := d.parseAndLink(pos, cur.parent, cur.level, linkNext, d.current)
	if err != nil {
		return nil, err
	}

	return d.item(ref), nil
}

const (
	linkNone = iota
	linkChild
	linkNext
)

// parseAndLink pops parents whose definite-form content the cursor has
// passed, consuming any indefinite-form end-of-contents markers
// transparently, then parses the next real item and links it into the
// cache at linkFrom per linkMode.
func (d *Decoder) parseAndLink(pos int, parent itemRef, level int, linkMode int, linkFrom itemRef) (itemRef, error) {
	for {
		for parent != noRef {
			p := d.item(parent)
			if p.indefinite || pos < p.valPtr+p.contentLen {
				break
			}

			if p.cachedNext != noRef {
				ref := p.cachedNext
				d.linkAndSet(linkMode, linkFrom, ref)

				return ref, nil
			}

			level = p.level
			parent = p.parent
		}

		if parent == noRef && pos >= len(d.buf) {
			d.current = noRef

			return noRef, errs.ErrEndOfStream
		}

		ref, consumed, isEOC, err := d.parseAt(pos, parent, level)
		if err != nil {
			return noRef, err
		}

		if isEOC {
			p := d.item(parent)
			pos += consumed
			level = p.level
			parent = p.parent

			continue
		}

		d.linkAndSet(linkMode, linkFrom, ref)

		return ref, nil
	}
}

func (d *Decoder) linkAndSet(linkMode int, linkFrom, ref itemRef) {
	switch linkMode {
	case linkChild:
		if d.item(linkFrom).cachedChildren != noRef && d.item(linkFrom).cachedChildren != ref {
			panic(errs.ErrCachedChildSet)
		}

		d.item(linkFrom).cachedChildren = ref
	case linkNext:
		d.item(linkFrom).cachedNext = ref
	}

	d.current = ref
}

// parseAt parses one tag-length-value triple at pos. isEOC reports an
// indefinite-form end-of-contents marker (spec.md §9): identifier=0,
// class=0, length=0, encountered while parent is itself indefinite form.
func (d *Decoder) parseAt(pos int, parent itemRef, level int) (ref itemRef, consumed int, isEOC bool, err error) {
	if pos < 0 || pos > len(d.buf) {
		return noRef, 0, false, errs.ErrTruncatedBuffer
	}

	class, number, idLen, err := ber.DecodeIdentifier(d.buf[pos:])
	if err != nil {
		return noRef, 0, false, err
	}

	lenStart := pos + idLen
	if lenStart > len(d.buf) {
		return noRef, 0, false, errs.ErrTruncatedBuffer
	}

	length, indefinite, lenLen, err := ber.DecodeLength(d.buf[lenStart:], maxLengthWidth)
	if err != nil {
		return noRef, 0, false, err
	}

	preamble := idLen + lenLen

	if !indefinite && number == 0 && class == ber.UniversalPrimitive && length == 0 {
		if parent != noRef && d.item(parent).indefinite {
			return noRef, preamble, true, nil
		}
	}

	valPtr := pos + preamble
	if !indefinite && valPtr+length > len(d.buf) {
		return noRef, 0, false, errs.ErrTruncatedBuffer
	}

	slot, aerr := d.arenaH.Acquire()
	if aerr != nil {
		return noRef, 0, false, aerr
	}

	d.slots = append(d.slots, slot)
	ref = itemRef(len(d.slots) - 1)

	it := slot.Value
	*it = Item{
		parent:         parent,
		cachedChildren: noRef,
		cachedNext:     noRef,
		class:          class,
		identifier:     number,
		preambleLen:    preamble,
		contentLen:     length,
		indefinite:     indefinite,
		valPtr:         valPtr,
		level:          level,
		descend:        class.Constructed(),
	}

	return ref, 0, false, nil
}

// Value returns the raw content octets for item, valid only while the
// decoder's buffer is unchanged.
func (d *Decoder) Value(it *Item) []byte {
	if it.indefinite {
		return nil
	}

	return d.buf[it.valPtr : it.valPtr+it.contentLen]
}

// Skip implements decode_skip, spec.md §4.3.
//
// For a definite-form item, the cursor is set past its content without
// visiting children: a subsequent Next() call yields its sibling. For an
// indefinite-form item, decode_next is driven forward (recursively skipping
// nested indefinite regions, handled transparently by parseAndLink's EOC
// consumption) until an item at or above the starting level is produced, or
// end of stream; the decoder is then put back on the skipped item, so a
// subsequent Next() call yields that following item. Skip returns the number
// of bytes skipped past the item's value offset: its content length for a
// definite-form item, its content plus end-of-contents octets for an
// indefinite-form one.
func (d *Decoder) Skip() (int, error) {
	if d.current == noRef {
		return 0, errs.ErrSkipBeforeNext
	}

	cur := d.item(d.current)
	startPos := cur.valPtr

	if !cur.indefinite {
		cur.forceSkip = true

		return cur.contentLen, nil
	}

	entry := d.current
	startLevel := cur.level

	for {
		next, err := d.Next()
		if err == errs.ErrEndOfStream {
			return len(d.buf) - startPos, nil
		}
		if err != nil {
			return 0, err
		}

		if next.level <= startLevel {
			cur.cachedNext = d.current
			cur.forceSkip = true
			d.current = entry

			return next.valPtr - next.preambleLen - startPos, nil
		}
	}
}

// DecodeSequenceUntil implements decode_sequence_until(id), spec.md §4.3.
// It repeatedly advances at or below the level recorded when the function
// is entered, skipping constructed siblings whose identifier is smaller
// than id. It stops when the level drops below the base level (not found,
// returns errs.ErrNotFound with the cursor restored to the entry item),
// when the current identifier equals id (success), or when it exceeds id
// (failure, cursor restored).
func (d *Decoder) DecodeSequenceUntil(id uint32) (*Item, error) {
	if d.current == noRef {
		return nil, errs.ErrNilDecoder
	}

	entry := d.current
	baseLevel := d.item(entry).level + 1

	for {
		it, err := d.Next()
		if err == errs.ErrEndOfStream {
			d.current = entry

			return nil, errs.ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		if it.level < baseLevel {
			d.current = entry

			return nil, errs.ErrNotFound
		}

		if it.level > baseLevel {
			continue
		}

		switch {
		case it.identifier == id:
			return it, nil
		case it.identifier < id:
			if it.class.Constructed() {
				if _, err := d.Skip(); err != nil {
					return nil, err
				}
			}
		default: // it.identifier > id
			d.current = entry

			return nil, errs.ErrNotFound
		}
	}
}

package decoder

import "github.com/wanderber/wanderber/ber"

// itemRef is an index into the decoder's item store, not a pointer — the
// backing storage is arena-allocated and blobs can be reused, so spec.md §9
// requires parent/child/next links to be indices rather than raw pointers.
type itemRef int32

const noRef itemRef = -1

// Item is one decoded node, spec.md §3 "Item".
type Item struct {
	parent         itemRef
	cachedChildren itemRef
	cachedNext     itemRef
	forceSkip      bool // set by Decoder.Skip to bypass descent on next advance

	class       ber.IdentifierClass
	identifier  uint32
	preambleLen int
	contentLen  int // meaningless when indefinite is true
	indefinite  bool
	valPtr      int // offset into the decoder's buffer where the value begins
	level       int
	descend     bool
}

// Class returns the item's identifier class.
func (it *Item) Class() ber.IdentifierClass { return it.class }

// Identifier returns the item's tag number.
func (it *Item) Identifier() uint32 { return it.identifier }

// Level returns the item's nesting level (top level is 0).
func (it *Item) Level() int { return it.level }

// PreambleLen returns the number of bytes consumed by the tag+length.
func (it *Item) PreambleLen() int { return it.preambleLen }

// Indefinite reports whether the item uses the indefinite length form.
func (it *Item) Indefinite() bool { return it.indefinite }

// ContentLen returns the declared content length; only meaningful when
// Indefinite() is false.
func (it *Item) ContentLen() int { return it.contentLen }

// ValueOffset returns the offset into the decoder's buffer where the
// item's value octets begin.
func (it *Item) ValueOffset() int { return it.valPtr }

// TotalLen returns preamble+content length for a definite-form item.
func (it *Item) TotalLen() int { return it.preambleLen + it.contentLen }

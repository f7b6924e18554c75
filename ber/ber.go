// Package ber implements the Basic Encoding Rules primitives for a single
// ASN.1 tag-length-value triple: identifier (tag) encode/decode, length
// encode/decode (short, long and indefinite forms), and the signed-integer
// and OID value encodings spec.md §4.2 requires.
//
// This package never walks a buffer of more than one TLV; field-by-field
// traversal lives in package decoder.
package ber

import (
	"encoding/binary"

	"github.com/wanderber/wanderber/errs"
)

// IdentifierClass is the full (class, constructed) pair for a tag octet,
// spec.md §3 "identifier class".
type IdentifierClass uint8

const (
	UniversalPrimitive IdentifierClass = iota
	UniversalConstructed
	ApplicationPrimitive
	ApplicationConstructed
	ContextPrimitive
	ContextConstructed
	PrivatePrimitive
	PrivateConstructed
)

// tagClassBits returns the top-two-bit class selector (0=universal,
// 1=application, 2=context-specific, 3=private) X.690 assigns to the tag
// octet.
func (c IdentifierClass) tagClassBits() uint8 { return uint8(c) >> 1 }

// Constructed reports whether this class/constructed pair is constructed.
func (c IdentifierClass) Constructed() bool { return uint8(c)&1 == 1 }

// AsConstructed returns the constructed counterpart of the same tag class.
func (c IdentifierClass) AsConstructed() IdentifierClass { return c | 1 }

// AsPrimitive returns the primitive counterpart of the same tag class.
func (c IdentifierClass) AsPrimitive() IdentifierClass { return c &^ 1 }

// ClassOf builds an IdentifierClass from the raw two-bit tag-class selector
// and the constructed flag, as decoded off the wire.
func ClassOf(tagClassBits uint8, constructed bool) IdentifierClass {
	ic := IdentifierClass(tagClassBits << 1)
	if constructed {
		ic |= 1
	}

	return ic
}

const (
	highTagEscape     = 0x1f
	constructedBit    = 0x20
	maxIdentifierOctets = 4 // spec.md §4.3 "up to a maximum identifier byte length of 4"
	indefiniteLenOctet  = 0x80
)

// EncodeIdentifier appends the tag octet(s) for (class, number) to dst and
// returns the extended slice, per spec.md §4.2:
//
//	if id <= 30 emit one byte (class<<5 | id); else emit (class<<5 | 0x1f)
//	then base-128 digits with continuation bit 0x80 on all but the last,
//	most-significant first.
func EncodeIdentifier(dst []byte, class IdentifierClass, number uint32) []byte {
	lead := class.tagClassBits() << 6
	if class.Constructed() {
		lead |= constructedBit
	}

	if number <= 30 {
		return append(dst, lead|byte(number))
	}

	// spec.md §9 "encode_identifier multi-byte path": buffer the base-128
	// digits most-significant-first into a local slice, then emit in order,
	// rather than transliterating the source's off-by-one index walk.
	var digits [5]byte
	n := 0
	v := number
	for {
		digits[n] = byte(v & 0x7f)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}

	dst = append(dst, lead|highTagEscape)
	for i := n - 1; i >= 0; i-- {
		b := digits[i]
		if i != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}

	return dst
}

// DecodeIdentifier parses one tag octet run from buf starting at 0 and
// returns the class, the identifier number, and the number of bytes
// consumed.
func DecodeIdentifier(buf []byte) (class IdentifierClass, number uint32, consumed int, err error) {
	if len(buf) == 0 {
		return 0, 0, 0, errs.ErrTruncatedBuffer
	}

	lead := buf[0]
	class = ClassOf(lead>>6, lead&constructedBit != 0)
	low := lead & 0x1f

	if low != highTagEscape {
		return class, uint32(low), 1, nil
	}

	i := 1
	var n uint32
	for {
		if i >= len(buf) {
			return 0, 0, 0, errs.ErrTruncatedBuffer
		}
		if i > maxIdentifierOctets {
			return 0, 0, 0, errs.ErrTagTooLong
		}

		b := buf[i]
		n = n<<7 | uint32(b&0x7f)
		i++
		if b&0x80 == 0 {
			break
		}
	}

	return class, n, i, nil
}

// EncodeLength appends the length octets for a definite-form content length
// to dst. spec.md §4.2: short form for < 128; otherwise one header byte
// 0x80|N followed by N big-endian length bytes, N minimal, with a leading
// zero byte inserted when the minimal encoding's top bit would otherwise be
// set (spec.md §9 "long-form length overflow" — intentionally non-canonical,
// reproduced as specified).
func EncodeLength(dst []byte, length int) []byte {
	if length < 0 {
		length = 0
	}

	if length < 128 {
		return append(dst, byte(length))
	}

	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(length))

	n := 8
	for n > 1 && tmp[8-n] == 0 {
		n--
	}

	if tmp[8-n]&0x80 != 0 {
		n++
		tmp2 := make([]byte, n)
		copy(tmp2[1:], tmp[8-(n-1):])
		dst = append(dst, indefiniteLenOctet|byte(n))
		return append(dst, tmp2...)
	}

	dst = append(dst, indefiniteLenOctet|byte(n))
	return append(dst, tmp[8-n:]...)
}

// EncodeIndefiniteLength appends the single 0x80 indefinite-form length
// octet.
func EncodeIndefiniteLength(dst []byte) []byte {
	return append(dst, indefiniteLenOctet)
}

// EncodeEndOfContents appends the two zero octets that close an
// indefinite-form constructed item.
func EncodeEndOfContents(dst []byte) []byte {
	return append(dst, 0x00, 0x00)
}

// DecodeLength parses a length field from buf starting at 0. When the
// indefinite form (0x80) is found, indefinite is true and length is 0.
func DecodeLength(buf []byte, maxWidth int) (length int, indefinite bool, consumed int, err error) {
	if len(buf) == 0 {
		return 0, false, 0, errs.ErrTruncatedBuffer
	}

	lead := buf[0]
	if lead&indefiniteLenOctet == 0 {
		return int(lead), false, 1, nil
	}

	n := int(lead &^ indefiniteLenOctet)
	if n == 0 {
		return 0, true, 1, nil
	}

	if n > maxWidth {
		return 0, false, 0, errs.ErrLengthTooLong
	}
	if len(buf) < 1+n {
		return 0, false, 0, errs.ErrTruncatedBuffer
	}

	var v int
	for _, b := range buf[1 : 1+n] {
		v = v<<8 | int(b)
	}

	return v, false, 1 + n, nil
}

// EncodeInteger appends the value's two's-complement encoding to dst.
// spec.md §4.2: if negative use the caller-supplied byte width; else emit
// the minimal number of big-endian bytes needed, padding to one more byte if
// the most-significant byte's top bit is set.
func EncodeInteger(dst []byte, value int64, declaredWidth int) []byte {
	if value < 0 {
		if declaredWidth <= 0 {
			declaredWidth = 1
		}

		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(value))

		return append(dst, tmp[8-declaredWidth:]...)
	}

	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(value))

	n := 8
	for n > 1 && tmp[8-n] == 0 {
		n--
	}

	if tmp[8-n]&0x80 != 0 {
		dst = append(dst, 0x00)
	}

	return append(dst, tmp[8-n:]...)
}

// IntegerEncodedLen reports the number of value bytes EncodeInteger would
// emit for a non-negative v, matching the "Integer minimality" testable
// property in spec.md §8.
func IntegerEncodedLen(v int64) int {
	if v < 0 {
		v = -v
	}

	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))

	n := 8
	for n > 1 && tmp[8-n] == 0 {
		n--
	}

	if tmp[8-n]&0x80 != 0 {
		n++
	}

	return n
}

// DecodeInteger reads up to 8 bytes of two's-complement content and returns
// the sign-extended value.
func DecodeInteger(content []byte) (int64, error) {
	if len(content) == 0 {
		return 0, nil
	}
	if len(content) > 8 {
		return 0, errs.ErrIntegerTooLong
	}

	var v int64
	if content[0]&0x80 != 0 {
		v = -1 // sign-extend with all high bits set
	}

	for _, b := range content {
		v = v<<8 | int64(b)
	}

	return v, nil
}

// EncodeOID appends the BER encoding of an absolute OID's sub-identifiers.
// The first two sub-identifiers fuse into one octet run as 40*A+B; the
// remainder are passed through as base-128 continuations, spec.md §4.2.
func EncodeOID(dst []byte, subIdentifiers []uint64) ([]byte, error) {
	if len(subIdentifiers) < 2 {
		return dst, errs.ErrBufferTooSmall
	}

	fused := subIdentifiers[0]*40 + subIdentifiers[1]
	dst = appendBase128(dst, fused)

	for _, sub := range subIdentifiers[2:] {
		dst = appendBase128(dst, sub)
	}

	return dst, nil
}

func appendBase128(dst []byte, v uint64) []byte {
	var digits [10]byte
	n := 0
	for {
		digits[n] = byte(v & 0x7f)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}

	for i := n - 1; i >= 0; i-- {
		b := digits[i]
		if i != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}

	return dst
}

// DecodeOID parses an absolute OID's content octets into its sub-identifiers,
// un-fusing the first octet run into two leading components (A, B) with
// A*40+B equal to the fused value, per X.690.
func DecodeOID(content []byte) ([]uint64, error) {
	subs, err := decodeBase128Run(content)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, errs.ErrTruncatedBuffer
	}

	fused := subs[0]
	var a, b uint64
	switch {
	case fused < 40:
		a, b = 0, fused
	case fused < 80:
		a, b = 1, fused-40
	default:
		a, b = 2, fused-80
	}

	out := make([]uint64, 0, len(subs)+1)
	out = append(out, a, b)
	out = append(out, subs[1:]...)

	return out, nil
}

// DecodeRelativeOID parses a RELATIVE-OID's content octets: each
// sub-identifier is a plain base-128 continuation with no leading fusion.
func DecodeRelativeOID(content []byte) ([]uint64, error) {
	return decodeBase128Run(content)
}

func decodeBase128Run(content []byte) ([]uint64, error) {
	var out []uint64

	var cur uint64
	runLen := 0
	for _, b := range content {
		runLen++
		if runLen > 4 {
			return nil, errs.ErrOIDContinuationTooLong
		}

		cur = cur<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			out = append(out, cur)
			cur = 0
			runLen = 0
		}
	}

	if runLen != 0 {
		return nil, errs.ErrTruncatedBuffer
	}

	return out, nil
}

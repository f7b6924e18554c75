package etsili

import (
	"encoding/binary"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/encoder/stream"
	"github.com/wanderber/wanderber/schema"
)

// headerIntWidth is the fixed byte width every mutable header integer slot
// is reserved at, spec.md §4.8 "Integer slots are always emitted in their
// maximum-width long form so they may be overwritten without shifting
// bytes." int64 is the natural width for cin/seqno/seconds/microseconds,
// mirroring the original's struct timeval/int64_t fields.
const headerIntWidth = 8

// fixedWidthInteger returns v's two's-complement representation in exactly
// width bytes, with no minimal-form shortening — the domain record
// builder's header/meta slots need a constant width so repeated emits never
// shift any byte that follows, unlike package ber's EncodeInteger (which
// always produces the shortest encoding for non-negative values). Grounded
// on ber_rebuild_integer's fixed-size memcpy-in-place behavior.
func fixedWidthInteger(v int64, width int) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))

	if width >= 8 {
		out := make([]byte, width)
		copy(out[width-8:], tmp[:])
		if v < 0 {
			for i := 0; i < width-8; i++ {
				out[i] = 0xff
			}
		}

		return out
	}

	return tmp[8-width:]
}

// Header is the shared PSHeader byte-run produced by init_top, plus the
// byte offsets of its five mutable slots, spec.md §4.8 "init_top". It is
// built once per Top and copied verbatim as the prefix of every child
// record; the outer pS-PDU sequence it opens is deliberately left
// unclosed, since the per-kind body skeleton appends its own content before
// closing it.
type Header struct {
	bytes []byte

	cinOff   int
	seqnoOff int
	secOff   int
	usecOff  int
	endOff   int
}

// Bytes returns the header's encoded prefix.
func (h *Header) Bytes() []byte { return h.bytes }

// BuildHeader implements init_etsili_pshdr_pc/init_etsili_pshdr, grounded
// line-by-line on that function's append order.
func BuildHeader(t *Table) *Header {
	e := stream.NewEncoder(256, stream.WithGrowth(256))

	e.AppendPreencodedBER(t.get(chunkUSequence))
	e.AppendPreencodedBER(t.get(chunkCSeq1))
	e.AppendPreencodedBER(t.get(chunkPSDomainID))
	e.AppendPreencodedBER(t.get(chunkLIID))
	e.AppendPreencodedBER(t.get(chunkAuthCC))
	e.AppendPreencodedBER(t.get(chunkCSeq3))
	e.AppendPreencodedBER(t.get(chunkCSeq0))
	e.AppendPreencodedBER(t.get(chunkOperatorID))
	e.AppendPreencodedBER(t.get(chunkNetworkElemID))
	e.EndSeqBER(1) // closes CSEQUENCE_0

	cinOff := e.EncodeNextBER(ber.ContextPrimitive, 1, schema.Integer, fixedWidthInteger(0, headerIntWidth))

	e.AppendPreencodedBER(t.get(chunkDelivCC))
	e.EndSeqBER(1) // closes CSEQUENCE_3 (communicationIdentifier)

	seqnoOff := e.EncodeNextBER(ber.ContextPrimitive, 4, schema.Integer, fixedWidthInteger(0, headerIntWidth))

	if t.hasIPID {
		e.AppendPreencodedBER(t.get(chunkIntPointID))
	}
	e.AppendPreencodedBER(t.get(chunkCSeq7))

	secOff := e.EncodeNextBER(ber.ContextPrimitive, 0, schema.Integer, fixedWidthInteger(0, headerIntWidth))
	usecOff := e.EncodeNextBER(ber.ContextPrimitive, 1, schema.Integer, fixedWidthInteger(0, headerIntWidth))
	e.EndSeqBER(1) // closes CSEQUENCE_7

	e.AppendPreencodedBER(t.get(chunkTVClass))
	e.EndSeqBER(1) // closes CSEQUENCE_1 (PSHeader)

	endOff := e.Len()

	return &Header{
		bytes:    e.FinishBER(),
		cinOff:   cinOff,
		seqnoOff: seqnoOff,
		secOff:   secOff,
		usecOff:  usecOff,
		endOff:   endOff,
	}
}

// patch overwrites dst's four integer slots (cin, seqno, seconds,
// microseconds) in place, grounded on
// update_etsili_pshdr_pc. dst must be a buffer whose first len(h.bytes)
// bytes came from copying h.bytes verbatim, so the offsets still apply.
func (h *Header) patch(dst []byte, cin, seqno int64, sec, usec int64) {
	patchInteger(dst, h.cinOff, 1, cin)
	patchInteger(dst, h.seqnoOff, 4, seqno)
	patchInteger(dst, h.secOff, 0, sec)
	patchInteger(dst, h.usecOff, 1, usec)
}

// patchInteger overwrites the integer TLV at off (identifier id, fixed
// headerIntWidth content) with v, leaving the tag and length bytes alone —
// they never change, only the value.
func patchInteger(dst []byte, off int, id uint32, v int64) {
	idLen := identifierLenForPatch(id)
	lenLen := 1 // headerIntWidth (8) < 128, always short-form
	copy(dst[off+idLen+lenLen:off+idLen+lenLen+headerIntWidth], fixedWidthInteger(v, headerIntWidth))
}

func identifierLenForPatch(id uint32) int {
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

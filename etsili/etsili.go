// Package etsili instantiates the generic BER codec against a concrete
// schema: the ETSI TS 102 232 lawful-intercept record format, spec.md §4.8
// and §6. It owns the schema tree the core decoder/render packages consume
// (spec.md §1 "the core consumes a schema, it does not define one here")
// and the preencoded-chunk table, record-header, and per-kind body
// skeletons the domain record builder uses to emit records.
//
// Grounded on original_source/src/libwandder_etsili_ber.c: the preencoded
// table comes from wandder_etsili_preencode_static_fields_ber, the header
// offsets from init_etsili_pshdr_pc/update_etsili_pshdr_pc, and the per-kind
// body skeletons from update_etsili_ipcc/_ipmmcc/_ipmmiri/_ipiri/_umtscc/
// _umtsiri. The growable-buffer substrate is package encoder/stream rather
// than raw pointer arithmetic, since each record body is built by appending
// definite/indefinite-form items exactly as that package already does.
package etsili

import (
	"github.com/wanderber/wanderber/ber"
)

// PayloadKind discriminates the "Payload" variant of a pS-PDU, spec.md §6
// "Domain format" plus SPEC_FULL.md supplement 5 (HI1 operation).
type PayloadKind int

const (
	PayloadIPCC PayloadKind = iota
	PayloadIPMMCC
	PayloadIPMMIRI
	PayloadIPIRI
	PayloadUMTSCC
	PayloadUMTSIRI
	PayloadHI1Operation
	PayloadKeepAlive
)

// Direction is the context-tagged enum {0: from-target, 1: to-target, 2:
// unknown}, spec.md §6.
type Direction uint8

const (
	DirectionFromTarget Direction = 0
	DirectionToTarget   Direction = 1
	DirectionUnknown    Direction = 2
)

// chunk is an index into Table.chunks, grounded on the
// WANDDER_PREENCODE_* enum in libwandder_etsili_ber.c.
type chunk int

const (
	chunkUSequence chunk = iota
	chunkCSeq0
	chunkCSeq1
	chunkCSeq2
	chunkCSeq3
	chunkCSeq4
	chunkCSeq5
	chunkCSeq7
	chunkCSeq8
	chunkCSeq9
	chunkCSeq11
	chunkCSeq12
	chunkCSeq13
	chunkCSeq26
	chunkPSDomainID
	chunkLIID
	chunkAuthCC
	chunkOperatorID
	chunkNetworkElemID
	chunkDelivCC
	chunkIntPointID
	chunkTVClass
	chunkIPMMIRIOID
	chunkIPCCOID
	chunkIPIRIOID
	chunkUMTSIRIOID
	chunkIPMMCCOID
	chunkDirFrom
	chunkDirTo
	chunkDirUnknown
	chunkCount
)

// contextSeqIDs maps the reusable context-constructed sequence openers to
// their context identifiers, mirroring the CSEQUENCE_N entries in
// wandder_etsili_preencode_static_fields_ber.
var contextSeqIDs = map[chunk]uint32{
	chunkCSeq0:  0,
	chunkCSeq1:  1,
	chunkCSeq2:  2,
	chunkCSeq3:  3,
	chunkCSeq4:  4,
	chunkCSeq5:  5,
	chunkCSeq7:  7,
	chunkCSeq8:  8,
	chunkCSeq9:  9,
	chunkCSeq11: 11,
	chunkCSeq12: 12,
	chunkCSeq13: 13,
	chunkCSeq26: 26,
}

// relativeOID subtype identifiers for ipcc/ipmmcc/ipmmiri/ipiri, grounded on
// original_source/src/libwandder_etsili.c's wandder_etsi_*oid byte arrays.
var (
	oidIPCC    = []byte{0x05, 0x03, 0x0a, 0x02}
	oidIPIRI   = []byte{0x05, 0x03, 0x0a, 0x01}
	oidIPMMCC  = []byte{0x05, 0x05, 0x06, 0x02}
	oidIPMMIRI = []byte{0x05, 0x05, 0x06, 0x01}
)

// buildOpener constructs a context-constructed-sequence "opener" chunk: an
// identifier octet run followed by the indefinite-length marker, with no
// value bytes. These are reused verbatim across every record of this
// builder, since their bytes never depend on record contents — grounded on
// encode_here_ber's WANDDER_TAG_SEQUENCE case writing an indefinite length
// for a constructed class with a zero-length placeholder value.
func buildOpener(class ber.IdentifierClass, id uint32) []byte {
	out := ber.EncodeIdentifier(nil, class, id)
	return ber.EncodeIndefiniteLength(out)
}

// buildValueChunk constructs a definite-length primitive TLV chunk whose
// bytes never change once the builder's InterceptDetails are fixed (LIID,
// authcc, operator id, and so on).
func buildValueChunk(class ber.IdentifierClass, id uint32, value []byte) []byte {
	out := ber.EncodeIdentifier(nil, class, id)
	out = ber.EncodeLength(out, len(value))
	return append(out, value...)
}

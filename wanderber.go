// Package wanderber provides a BER codec library together with a domain
// layer for ETSI TS 102 232 lawful-intercept records.
//
// It offers a generic BER decoder that walks an opaque octet buffer field
// by field (package decoder), two BER encoders, one deferred/tree-based
// and one streaming/append-based (packages encoder/deferred and
// encoder/stream), a schema-driven value renderer (package render), and a
// domain record builder that encodes and decodes the ETSI record format
// (package etsili).
//
// # Basic usage
//
// Decoding a buffer and reading its first item:
//
//	d := decoder.NewDecoder(decoder.DefaultItemsPerBlob)
//	d.Attach(buf, false)
//	item, err := d.Next()
//
// Building an ETSI record:
//
//	top := etsili.InitTop(etsili.InterceptDetails{LIID: "ABC123", AuthCC: "NZ"})
//	child := top.NewChild(etsili.KindIPCC)
//	out, err := child.Emit(etsili.EmitParams{
//	    CIN: 7, SeqNo: 42, Seconds: 1234567890, Microsecs: 500000,
//	    Direction: etsili.DirectionToTarget, Payload: ipPacketBytes,
//	})
//
// This package provides a few convenience wrappers around the lower-level
// packages; for anything beyond the common cases, use decoder, encoder/*,
// render, crypt and etsili directly.
package wanderber

import (
	"github.com/wanderber/wanderber/decoder"
	"github.com/wanderber/wanderber/etsili"
	"github.com/wanderber/wanderber/render"
)

// NewRecordDecoder attaches buf to a decoder using the default arena blob
// size (decoder.DefaultItemsPerBlob).
func NewRecordDecoder(buf []byte, copyBuf bool) *decoder.Decoder {
	d := decoder.NewDecoder(decoder.DefaultItemsPerBlob)
	d.Attach(buf, copyBuf)

	return d
}

// DecodeRecordMeta extracts the LIID/CIN/sequence-number/timestamp/length
// bundle from a fully-formed ETSI record buffer.
func DecodeRecordMeta(buf []byte) (*etsili.RecordMeta, error) {
	return etsili.ExtractRecordMeta(buf)
}

// NewRenderer creates a value renderer with the default enum tables wired
// in, ready to have TimeConvert/Encrypted set by the caller.
func NewRenderer() *render.Renderer {
	return render.New()
}

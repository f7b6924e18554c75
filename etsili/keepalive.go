// SPEC_FULL.md supplement 1: keepalive / keepalive-response PDU
// recognition. Grounded on original_source/src/libwandder_etsili.c's
// _wandder_etsili_is_ka: a keepalive PDU's Payload (context id 2) wraps an
// inner context id 2 holder whose next child is identifier 3 (keepalive)
// or 4 (keepalive response); PSHeader, when present, is skipped rather
// than descended into.
package etsili

import "github.com/wanderber/wanderber/decoder"

// IsKeepAlive reports whether buf holds a keepalive PDU, and whether it is
// specifically the response variant.
func IsKeepAlive(buf []byte) (isKeepAlive, isResponse bool) {
	d := decoder.NewDecoder(4)
	d.Attach(buf, false)

	isResponse = matchesKeepAliveShape(d, true)
	if isResponse {
		return true, true
	}

	return matchesKeepAliveShape(d, false), false
}

func matchesKeepAliveShape(d *decoder.Decoder, wantResponse bool) bool {
	if err := d.Reset(); err != nil {
		return false
	}

	if _, err := d.Next(); err != nil { // top-level pS-PDU sequence
		return false
	}

	it, err := d.Next() // first child: PSHeader (id 1) or Payload (id 2)
	if err != nil {
		return false
	}

	if it.Identifier() == 1 {
		if _, err := d.Skip(); err != nil {
			return false
		}
		it, err = d.Next()
		if err != nil {
			return false
		}
	}

	if it.Identifier() != 2 {
		return false
	}

	inner, err := d.Next()
	if err != nil || inner.Identifier() != 2 {
		return false
	}

	tag, err := d.Next()
	if err != nil {
		return false
	}

	if wantResponse {
		return tag.Identifier() == 4
	}

	return tag.Identifier() == 3
}

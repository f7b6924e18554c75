package etsili

import "github.com/wanderber/wanderber/ber"

// InterceptDetails is the caller-supplied, per-intercept information that
// never changes across the lifetime of one Top, spec.md §4.8 "init_top".
type InterceptDetails struct {
	LIID          string
	AuthCC        string
	OperatorID    string
	NetworkElemID string
	DelivCC       string
	IntPointID    string // optional; empty means omitted
}

// psDomainID is the fixed li-psDomainId OID, grounded on
// original_source/src/libwandder_etsili.c's etsi_lipsdomainid byte array.
var psDomainID = []byte{0x00, 0x04, 0x00, 0x02, 0x02, 0x05, 0x01, 0x11}

// Table is one builder's owned collection of preencoded BER chunks, spec.md
// §9 "Singleton preencoded table: treat as an owned collection on the
// builder; never as process-wide state. One table per top value." It is
// never shared across Top instances.
type Table struct {
	chunks  [chunkCount][]byte
	hasIPID bool
}

// BuildTable precomputes every fixed-content chunk this builder will reuse
// across every record it emits, grounded on
// wandder_etsili_preencode_static_fields_ber.
func BuildTable(details InterceptDetails) *Table {
	t := &Table{}

	t.chunks[chunkUSequence] = buildOpener(ber.UniversalConstructed, 16)

	for c, id := range contextSeqIDs {
		t.chunks[c] = buildOpener(ber.ContextConstructed, id)
	}

	t.chunks[chunkPSDomainID] = buildValueChunk(ber.ContextPrimitive, 0, psDomainID)
	t.chunks[chunkLIID] = buildValueChunk(ber.ContextPrimitive, 1, []byte(details.LIID))
	t.chunks[chunkAuthCC] = buildValueChunk(ber.ContextPrimitive, 2, []byte(details.AuthCC))
	t.chunks[chunkOperatorID] = buildValueChunk(ber.ContextPrimitive, 0, []byte(details.OperatorID))
	t.chunks[chunkNetworkElemID] = buildValueChunk(ber.ContextPrimitive, 1, []byte(details.NetworkElemID))
	t.chunks[chunkDelivCC] = buildValueChunk(ber.ContextPrimitive, 2, []byte(details.DelivCC))

	if details.IntPointID != "" {
		t.chunks[chunkIntPointID] = buildValueChunk(ber.ContextPrimitive, 6, []byte(details.IntPointID))
		t.hasIPID = true
	}

	t.chunks[chunkTVClass] = buildValueChunk(ber.ContextPrimitive, 8, []byte{0x01})

	t.chunks[chunkIPMMIRIOID] = buildValueChunk(ber.ContextPrimitive, 0, oidIPMMIRI)
	t.chunks[chunkIPCCOID] = buildValueChunk(ber.ContextPrimitive, 0, oidIPCC)
	t.chunks[chunkIPIRIOID] = buildValueChunk(ber.ContextPrimitive, 0, oidIPIRI)
	t.chunks[chunkIPMMCCOID] = buildValueChunk(ber.ContextPrimitive, 0, oidIPMMCC)

	// UMTS IRI's OID is a full OID (relative-to-root), not relative, per
	// wandder_etsi_umtsirioid's longer byte run.
	t.chunks[chunkUMTSIRIOID] = buildValueChunk(ber.ContextPrimitive, 0,
		[]byte{0x00, 0x04, 0x00, 0x02, 0x02, 0x04, 0x01, 0x0f, 0x05})

	t.chunks[chunkDirFrom] = buildValueChunk(ber.ContextPrimitive, 0, []byte{0x00})
	t.chunks[chunkDirTo] = buildValueChunk(ber.ContextPrimitive, 0, []byte{0x01})
	t.chunks[chunkDirUnknown] = buildValueChunk(ber.ContextPrimitive, 0, []byte{0x02})

	return t
}

func (t *Table) get(c chunk) []byte { return t.chunks[c] }

// directionChunk returns the preencoded 3-byte direction/iritype placeholder
// for dir (0=from, 1=to, 2=unknown); any other value returns a copy of the
// "unknown" chunk with its value byte overwritten by dir, mirroring
// ber_rebuild_integer's "patch the value byte of an already-built TLV"
// behavior for directions outside the three named enum values.
func (t *Table) directionChunk(dir Direction) []byte {
	var src []byte
	switch dir {
	case DirectionFromTarget:
		src = t.chunks[chunkDirFrom]
	case DirectionToTarget:
		src = t.chunks[chunkDirTo]
	default:
		src = t.chunks[chunkDirUnknown]
	}

	out := make([]byte, len(src))
	copy(out, src)
	if dir != DirectionFromTarget && dir != DirectionToTarget && dir != DirectionUnknown {
		out[len(out)-1] = byte(dir)
	}

	return out
}

package etsili

import (
	"fmt"
	"log"
	"sort"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/schema"
)

func init() {
	log.SetPrefix("[etsili] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
}

// requiredUMTSIRIFields names the wire-level field ids update_etsili_umtsiri
// (original_source/src/libwandder_etsili_ber.c:1088-1313) logs a
// "no X available" warning for when absent: initiator, IMEI, IMSI, MSISDN,
// GPRS correlation number, GPRS event type, and operator identifier. Every
// other UMTS IRI field in that function is optional and silently skipped
// when missing.
var requiredUMTSIRIFields = map[int]string{
	4:  "initiator",
	1:  "IMEI",
	3:  "IMSI",
	6:  "MSISDN",
	18: "GPRS correlation number",
	20: "GPRS event type",
	0:  "operator identifier",
}

// ParamField is one entry of the field-id-keyed parameter map ipiri and
// umtsiri emit from, spec.md §4.8 "UMTS IRI is a denser variant: the body
// is rewritten on each emit ... from a parameter map keyed by field id."
// Value must already hold the semantic type's encoded content octets
// (mirroring package deferred/stream's EncodeNext contract); EncodeAs
// selects whether it's wrapped as a primitive value or opens its own
// constructed sequence with Value as a pre-built child run.
type ParamField struct {
	ID       int
	EncodeAs schema.SemanticType
	Value    []byte
}

// EmitParamDriven implements ipiri/umtsiri's emit path, spec.md §4.8: walk
// the parameter map in field-id order (HASH_SRT(hh, params,
// sort_etsili_generic) in the original), emit each field as a
// context-primitive or context-constructed TLV per its declared encode-as,
// then close every opened level (the kind's fixed wrapper chain plus the
// outer pS-PDU) with end-of-contents pairs.
//
// For KindUMTSIRI, a field in requiredUMTSIRIFields that params omits logs a
// warning via the standard log package rather than aborting the emit,
// matching the original's "missing required fields log a warning but do not
// abort" (spec.md §4.8). IPIRI has no equivalent required-field set in the
// original (update_etsili_ipiri never warns on an absent field), so it is
// not checked.
func (c *Child) EmitParamDriven(iriType int, cin, seqno, sec, usec int64, params []ParamField) ([]byte, error) {
	cfg := kindConfigs[c.kind]
	if !cfg.paramDriven {
		return nil, fmt.Errorf("etsili: record kind %d requires Emit, not EmitParamDriven", c.kind)
	}

	if c.kind == KindUMTSIRI {
		warnMissingUMTSIRIFields(params)
	}

	c.buf = c.buf[:len(c.skeleton.bytes)]
	c.header.patch(c.buf, cin, seqno, sec, usec)

	typeTLV := buildValueChunk(ber.ContextPrimitive, 0, []byte{byte(iriType)})
	copy(c.buf[c.skeleton.metaOff:c.skeleton.metaOff+len(typeTLV)], typeTLV)

	c.buf = c.buf[:c.skeleton.dataOff]

	sorted := make([]ParamField, len(params))
	copy(sorted, params)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, p := range sorted {
		c.buf = appendParamField(c.buf, p)
	}

	for i := 0; i < c.skeleton.closeDepth; i++ {
		c.buf = ber.EncodeEndOfContents(c.buf)
	}

	return c.buf, nil
}

// warnMissingUMTSIRIFields logs one warning per requiredUMTSIRIFields entry
// absent from params, e.g. "wandder: warning, no IMSI available for
// constructing UMTS IRI" in the original.
func warnMissingUMTSIRIFields(params []ParamField) {
	present := make(map[int]bool, len(params))
	for _, p := range params {
		present[p.ID] = true
	}

	for id, name := range requiredUMTSIRIFields {
		if !present[id] {
			log.Printf("no %s available for constructing UMTS IRI; record may be invalid", name)
		}
	}
}

// appendParamField writes one parameter's TLV using its declared encode-as,
// mirroring the original's per-itemnum switch in update_etsili_ipiri/
// update_etsili_umtsiri: most fields are a single context-primitive TLV,
// while Sequence/Set fields open a constructed TLV whose content is the
// caller's pre-built child run (e.g. a pop-identifier or ip-address
// sub-sequence).
func appendParamField(dst []byte, p ParamField) []byte {
	class := ber.ContextPrimitive
	if p.EncodeAs == schema.Sequence || p.EncodeAs == schema.Set {
		class = ber.ContextConstructed
	}

	dst = ber.EncodeIdentifier(dst, class, uint32(p.ID))
	dst = ber.EncodeLength(dst, len(p.Value))

	return append(dst, p.Value...)
}

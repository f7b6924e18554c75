// SPEC_FULL.md supplement 5: the HI1 operation payload kind — an
// administrative operation (activate/deactivate/query target) carried
// inside the same pS-PDU envelope as the IRI/CC record kinds, with a
// minimal body: an operation code and a target reference. spec.md §6
// mentions "HI1 operation" among payload kinds without detailing its wire
// shape beyond what the decoder must recognize; this minimal body is
// an addition, not a transcription of a specific original function.
package etsili

import "github.com/wanderber/wanderber/ber"

// HI1Operation is the operation code carried in an HI1 operation payload.
type HI1Operation int

const (
	HI1Activate HI1Operation = iota
	HI1Deactivate
	HI1Query
)

// BuildHI1Payload encodes an HI1 operation body: a context-primitive
// INTEGER operation code (id 0) followed by a context-primitive OCTET
// STRING target reference (id 1), wrapped in the Payload opener and closed
// with the outer pS-PDU's end-of-contents pair.
func BuildHI1Payload(header *Header, table *Table, op HI1Operation, targetRef string) []byte {
	buf := make([]byte, len(header.Bytes()))
	copy(buf, header.Bytes())

	buf = append(buf, table.get(chunkCSeq2)...) // Payload opener
	buf = append(buf, buildValueChunk(ber.ContextPrimitive, 0, []byte{byte(op)})...)
	buf = append(buf, buildValueChunk(ber.ContextPrimitive, 1, []byte(targetRef))...)

	buf = ber.EncodeEndOfContents(buf) // closes Payload (CSEQUENCE_2)
	buf = ber.EncodeEndOfContents(buf) // closes the outer pS-PDU

	return buf
}

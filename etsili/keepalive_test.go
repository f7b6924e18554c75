package etsili_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/encoder/stream"
	"github.com/wanderber/wanderber/etsili"
	"github.com/wanderber/wanderber/schema"
)

// buildKeepAlivePDU constructs the minimal shape _wandder_etsili_is_ka
// matches: an outer pS-PDU sequence, a Payload (id 2) holding an inner id-2
// holder whose sole child carries identifier tag.
func buildKeepAlivePDU(tag uint32) []byte {
	e := stream.NewEncoder(0)
	e.EncodeNextBER(ber.ContextConstructed, 0, schema.Sequence, nil) // outer pS-PDU
	e.EncodeNextBER(ber.ContextConstructed, 2, schema.Sequence, nil) // Payload
	e.EncodeNextBER(ber.ContextConstructed, 2, schema.Sequence, nil) // inner holder
	e.EncodeNextBER(ber.ContextPrimitive, tag, schema.Null, nil)
	e.EndSeqBER(3)
	return e.FinishBER()
}

func TestIsKeepAliveRecognizesKeepAlive(t *testing.T) {
	buf := buildKeepAlivePDU(3)

	isKA, isResponse := etsili.IsKeepAlive(buf)
	require.True(t, isKA)
	require.False(t, isResponse)
}

func TestIsKeepAliveRecognizesResponse(t *testing.T) {
	buf := buildKeepAlivePDU(4)

	isKA, isResponse := etsili.IsKeepAlive(buf)
	require.True(t, isKA)
	require.True(t, isResponse)
}

func TestIsKeepAliveRejectsOrdinaryRecord(t *testing.T) {
	top := newTestTop()
	defer top.Free()

	child := top.NewChild(etsili.KindIPCC)
	out, err := child.Emit(etsili.EmitParams{
		CIN: 1, SeqNo: 1, Payload: []byte{0x01},
	})
	require.NoError(t, err)
	etsili.FreeChild(child)

	isKA, isResponse := etsili.IsKeepAlive(out)
	require.False(t, isKA)
	require.False(t, isResponse)
}

func TestIsKeepAliveSkipsPresentPSHeader(t *testing.T) {
	e := stream.NewEncoder(0)
	e.EncodeNextBER(ber.ContextConstructed, 0, schema.Sequence, nil) // outer pS-PDU
	e.EncodeNextBER(ber.ContextConstructed, 1, schema.Sequence, nil) // PSHeader
	e.EncodeNextBER(ber.ContextPrimitive, 1, schema.OctetString, []byte("AB"))
	e.EndSeqBER(1) // closes PSHeader
	e.EncodeNextBER(ber.ContextConstructed, 2, schema.Sequence, nil) // Payload
	e.EncodeNextBER(ber.ContextConstructed, 2, schema.Sequence, nil) // inner holder
	e.EncodeNextBER(ber.ContextPrimitive, 3, schema.Null, nil)
	e.EndSeqBER(3)
	buf := e.FinishBER()

	isKA, isResponse := etsili.IsKeepAlive(buf)
	require.True(t, isKA)
	require.False(t, isResponse)
}

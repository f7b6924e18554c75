package etsili_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/etsili"
	"github.com/wanderber/wanderber/schema"
)

func newTestTop() *etsili.Top {
	return etsili.InitTop(etsili.InterceptDetails{
		LIID:          "AB",
		AuthCC:        "NZ",
		OperatorID:    "op",
		NetworkElemID: "ne",
		DelivCC:       "NZ",
	})
}

// TestEmitIPCCRoundTrip is spec.md §8 scenario 7.
func TestEmitIPCCRoundTrip(t *testing.T) {
	top := newTestTop()
	defer top.Free()

	child := top.NewChild(etsili.KindIPCC)
	out, err := child.Emit(etsili.EmitParams{
		CIN:       7,
		SeqNo:     42,
		Seconds:   1234567890,
		Microsecs: 500000,
		Direction: etsili.DirectionToTarget,
		Payload:   []byte{0xDE, 0xAD, 0xBE, 0xEF},
	})
	require.NoError(t, err)
	etsili.FreeChild(child)

	meta, err := etsili.ExtractRecordMeta(out)
	require.NoError(t, err)
	require.Equal(t, "AB", meta.LIID)
	require.EqualValues(t, 7, meta.CIN)
	require.EqualValues(t, 42, meta.SeqNo)
	require.EqualValues(t, 1234567890, meta.Seconds)
	require.EqualValues(t, 500000, meta.Microsecs)
	require.Equal(t, len(out), meta.PDULength)
}

// TestEmitDiffersOnlyInMutableRanges is spec.md §8's "Preencoded stability"
// invariant: two emissions differing only in the mutable slots
// (cin/seqno/timeval/direction) with same-length payloads have the same
// length and decode to the same LIID but different CINs. Both children stay
// alive until the end, because a freed child's buffer is reused by the next
// child.
func TestEmitDiffersOnlyInMutableRanges(t *testing.T) {
	top := newTestTop()
	defer top.Free()

	child1 := top.NewChild(etsili.KindIPCC)
	defer etsili.FreeChild(child1)
	out1, err := child1.Emit(etsili.EmitParams{
		CIN: 1, SeqNo: 1, Seconds: 100, Microsecs: 1,
		Direction: etsili.DirectionFromTarget, Payload: []byte{0x01},
	})
	require.NoError(t, err)

	child2 := top.NewChild(etsili.KindIPCC)
	defer etsili.FreeChild(child2)
	out2, err := child2.Emit(etsili.EmitParams{
		CIN: 2, SeqNo: 2, Seconds: 200, Microsecs: 2,
		Direction: etsili.DirectionToTarget, Payload: []byte{0x01},
	})
	require.NoError(t, err)

	require.Equal(t, len(out1), len(out2))

	meta1, err := etsili.ExtractRecordMeta(out1)
	require.NoError(t, err)
	meta2, err := etsili.ExtractRecordMeta(out2)
	require.NoError(t, err)

	require.NotEqual(t, meta1.CIN, meta2.CIN)
	require.Equal(t, meta1.LIID, meta2.LIID)
}

func TestEmitIPMMCCUsesSeparatePayloadContextID(t *testing.T) {
	top := newTestTop()
	defer top.Free()

	child := top.NewChild(etsili.KindIPMMCC)
	out, err := child.Emit(etsili.EmitParams{
		CIN: 3, SeqNo: 9, Seconds: 10, Microsecs: 20,
		Direction: etsili.DirectionUnknown, Payload: []byte("hi"),
	})
	require.NoError(t, err)
	etsili.FreeChild(child)

	meta, err := etsili.ExtractRecordMeta(out)
	require.NoError(t, err)
	require.EqualValues(t, 3, meta.CIN)
	require.EqualValues(t, 9, meta.SeqNo)
}

func TestEmitParamDrivenIPIRI(t *testing.T) {
	top := newTestTop()
	defer top.Free()

	child := top.NewChild(etsili.KindIPIRI)
	out, err := child.EmitParamDriven(3, 11, 22, 33, 44, []etsili.ParamField{
		{ID: 2, EncodeAs: schema.Enumerated, Value: []byte{0x01}},
	})
	require.NoError(t, err)
	etsili.FreeChild(child)

	meta, err := etsili.ExtractRecordMeta(out)
	require.NoError(t, err)
	require.EqualValues(t, 11, meta.CIN)
	require.EqualValues(t, 22, meta.SeqNo)
}

func TestFreelistReusesReleasedBuffers(t *testing.T) {
	top := newTestTop()
	defer top.Free()

	child := top.NewChild(etsili.KindIPCC)
	_, err := child.Emit(etsili.EmitParams{CIN: 1, SeqNo: 1, Payload: []byte{0x01}})
	require.NoError(t, err)
	etsili.FreeChild(child)

	// A second child created after the first is freed should not panic or
	// corrupt state, whether or not it reuses the freed buffer.
	child2 := top.NewChild(etsili.KindIPCC)
	_, err = child2.Emit(etsili.EmitParams{CIN: 2, SeqNo: 2, Payload: []byte{0x02}})
	require.NoError(t, err)
	etsili.FreeChild(child2)
}

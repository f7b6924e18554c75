package stream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/decoder"
	"github.com/wanderber/wanderber/encoder/stream"
	"github.com/wanderber/wanderber/schema"
)

func TestStreamEncodeDefiniteThenDecode(t *testing.T) {
	e := stream.NewEncoder(16, stream.WithGrowth(16)) // tiny buffer to force at least one grow

	e.EncodeNextBER(ber.UniversalPrimitive, 2, schema.Integer, ber.EncodeInteger(nil, 100, 0))
	e.EncodeNextBER(ber.UniversalPrimitive, 4, schema.OctetString, []byte("hello world, this is a long value"))

	out := e.FinishBER()

	d := decoder.NewDecoder(4)
	d.Attach(out, false)

	first, err := d.Next()
	require.NoError(t, err)
	v, err := ber.DecodeInteger(d.Value(first))
	require.NoError(t, err)
	require.EqualValues(t, 100, v)

	second, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "hello world, this is a long value", string(d.Value(second)))
}

func TestStreamEncodeIndefiniteSequenceClosedByEndSeq(t *testing.T) {
	e := stream.NewEncoder(0)

	e.EncodeNextBER(ber.UniversalConstructed, 16, schema.Sequence, nil)
	e.EncodeNextBER(ber.UniversalPrimitive, 2, schema.Integer, ber.EncodeInteger(nil, 5, 0))
	e.EndSeqBER(1)

	out := e.FinishBER()
	require.Equal(t, []byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00}, out)

	d := decoder.NewDecoder(4)
	d.Attach(out, false)

	seq, err := d.Next()
	require.NoError(t, err)
	require.True(t, seq.Indefinite())

	inner, err := d.Next()
	require.NoError(t, err)
	v, err := ber.DecodeInteger(d.Value(inner))
	require.NoError(t, err)
	require.EqualValues(t, 5, v)
}

func TestAppendPreencodedBERCopiesVerbatim(t *testing.T) {
	e := stream.NewEncoder(0)
	off := e.AppendPreencodedBER([]byte{0xAA, 0xBB})
	require.Zero(t, off)
	require.Equal(t, []byte{0xAA, 0xBB}, e.FinishBER())
}

func TestPatchAtOverwritesFixedWidthSlot(t *testing.T) {
	e := stream.NewEncoder(0)
	// declaredWidth only takes effect for negative values (ber.EncodeInteger
	// always emits the minimal form for non-negative ones), so reserve the
	// fixed 8-byte slot with a negative placeholder.
	off := e.EncodeNextBER(ber.UniversalPrimitive, 2, schema.Integer, ber.EncodeInteger(nil, -1, 8))

	e.PatchAt(off, []byte{0x02, 0x08, 0, 0, 0, 0, 0, 0, 0, 99})

	d := decoder.NewDecoder(4)
	d.Attach(e.Bytes(), false)
	it, err := d.Next()
	require.NoError(t, err)
	v, err := ber.DecodeInteger(d.Value(it))
	require.NoError(t, err)
	require.EqualValues(t, 99, v)
}

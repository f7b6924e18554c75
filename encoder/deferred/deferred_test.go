package deferred_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/decoder"
	"github.com/wanderber/wanderber/encoder/deferred"
	"github.com/wanderber/wanderber/schema"
)

func TestEncodeSimpleSequenceOfTwoIntegers(t *testing.T) {
	e := deferred.New()

	require.NoError(t, e.EncodeNext(ber.UniversalConstructed, 16, schema.Sequence, nil))
	require.NoError(t, e.EncodeNext(ber.UniversalPrimitive, 2, schema.Integer, ber.EncodeInteger(nil, 5, 0)))
	require.NoError(t, e.EncodeNext(ber.UniversalPrimitive, 2, schema.Integer, ber.EncodeInteger(nil, 7, 0)))
	require.NoError(t, e.EndSeq())

	out, err := e.Finish()
	require.NoError(t, err)

	require.Equal(t, []byte{
		0x30, 0x06,
		0x02, 0x01, 0x05,
		0x02, 0x01, 0x07,
	}, out)
}

func TestEncodeNestedSequenceMatchesDecoder(t *testing.T) {
	e := deferred.New()

	require.NoError(t, e.EncodeNext(ber.ContextConstructed, 1, schema.Sequence, nil))
	require.NoError(t, e.EncodeNext(ber.UniversalPrimitive, 2, schema.Integer, ber.EncodeInteger(nil, 42, 0)))
	require.NoError(t, e.EncodeNext(ber.ContextConstructed, 3, schema.Sequence, nil))
	require.NoError(t, e.EncodeNext(ber.UniversalPrimitive, 4, schema.OctetString, []byte("hi")))
	require.NoError(t, e.EndSeq()) // close id=3
	require.NoError(t, e.EndSeq()) // close id=1

	out, err := e.Finish()
	require.NoError(t, err)

	d := decoder.NewDecoder(4)
	d.Attach(out, false)

	outer, err := d.Next()
	require.NoError(t, err)
	require.EqualValues(t, 1, outer.Identifier())
	require.True(t, outer.Class().Constructed())

	integer, err := d.Next()
	require.NoError(t, err)
	v, err := ber.DecodeInteger(d.Value(integer))
	require.NoError(t, err)
	require.EqualValues(t, 42, v)

	inner, err := d.Next()
	require.NoError(t, err)
	require.EqualValues(t, 3, inner.Identifier())

	octets, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "hi", string(d.Value(octets)))
}

func TestEncodeNextPreencodedCopiedVerbatim(t *testing.T) {
	e := deferred.New()

	require.NoError(t, e.EncodeNext(ber.UniversalConstructed, 16, schema.Sequence, nil))
	e.EncodeNextPreencoded([]byte{0x02, 0x01, 0x09})
	require.NoError(t, e.EndSeq())

	out, err := e.Finish()
	require.NoError(t, err)
	require.Equal(t, []byte{0x30, 0x03, 0x02, 0x01, 0x09}, out)
}

func TestReleaseResultRemovesFromFreeList(t *testing.T) {
	e := deferred.New()
	require.NoError(t, e.EncodeNext(ber.UniversalPrimitive, 2, schema.Integer, ber.EncodeInteger(nil, 1, 0)))

	out, err := e.Finish()
	require.NoError(t, err)

	e.ReleaseResult(out)
	e.ReleaseResults() // idempotent, should not panic on an already-empty list
}

package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/decoder"
	"github.com/wanderber/wanderber/errs"
)

func TestIndefiniteSequenceScenario(t *testing.T) {
	// spec.md §8 scenario 3: 30 80 02 01 05 00 00
	buf := []byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00}

	d := decoder.NewDecoder(4)
	d.Attach(buf, false)

	seq, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, ber.UniversalConstructed, seq.Class())
	require.Zero(t, seq.Level())
	require.True(t, seq.Indefinite())

	integer, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, ber.UniversalPrimitive, integer.Class())
	require.EqualValues(t, 2, integer.Identifier())
	require.Equal(t, 1, integer.Level())

	val, err := ber.DecodeInteger(d.Value(integer))
	require.NoError(t, err)
	require.EqualValues(t, 5, val)

	_, err = d.Next()
	require.ErrorIs(t, err, errs.ErrEndOfStream)
}

func TestDecodeSkipIndefiniteConsumesEndOfContents(t *testing.T) {
	buf := []byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00, 0x02, 0x01, 0x07}

	d := decoder.NewDecoder(4)
	d.Attach(buf, false)

	seq, err := d.Next()
	require.NoError(t, err)
	require.True(t, seq.Indefinite())

	skipped, err := d.Skip()
	require.NoError(t, err)
	require.Equal(t, 5, skipped) // content (02 01 05) through the trailing 00 00

	next, err := d.Next()
	require.NoError(t, err)
	require.Zero(t, next.Level())
	require.EqualValues(t, 2, next.Identifier())
}

func TestDecodeSkipDefiniteFormJumpsToSibling(t *testing.T) {
	// 30 06 (02 01 05) (02 01 07) -- outer definite sequence with two integers.
	buf := []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07}

	d := decoder.NewDecoder(4)
	d.Attach(buf, false)

	_, err := d.Next() // outer sequence
	require.NoError(t, err)

	first, err := d.Next() // first integer
	require.NoError(t, err)
	require.EqualValues(t, 5, mustInt(t, d, first))

	skipped, err := d.Skip()
	require.NoError(t, err)
	require.Equal(t, first.ContentLen(), skipped)

	second, err := d.Next()
	require.NoError(t, err)
	require.EqualValues(t, 7, mustInt(t, d, second))
}

func mustInt(t *testing.T, d *decoder.Decoder, it *decoder.Item) int64 {
	t.Helper()
	v, err := ber.DecodeInteger(d.Value(it))
	require.NoError(t, err)

	return v
}

func TestCacheTransparencyAcrossRepeatedWalks(t *testing.T) {
	buf := []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07}

	d := decoder.NewDecoder(4)
	d.Attach(buf, false)

	type snapshot struct {
		class   ber.IdentifierClass
		id      uint32
		level   int
		length  int
		valOff  int
	}

	walk := func() []snapshot {
		require.NoError(t, d.Reset())

		var got []snapshot
		for {
			it, err := d.Next()
			if err == errs.ErrEndOfStream {
				break
			}
			require.NoError(t, err)
			got = append(got, snapshot{it.Class(), it.Identifier(), it.Level(), it.ContentLen(), it.ValueOffset()})
		}

		return got
	}

	first := walk()
	second := walk()
	require.Equal(t, first, second)
	require.Len(t, first, 3)
}

func TestDecodeSequenceUntilFindsTarget(t *testing.T) {
	// sequence containing ids 1, 4 (our target), 9 under one constructed wrapper.
	buf := []byte{
		0x30, 0x0a,
		0xA1, 0x02, 0x02, 0x00, // context-constructed id=1 wrapping an empty integer
		0x84, 0x01, 0x2a, // context-primitive id=4, value 0x2a
		0x89, 0x01, 0x01, // context-primitive id=9
	}

	d := decoder.NewDecoder(4)
	d.Attach(buf, false)

	_, err := d.Next() // enter outer sequence
	require.NoError(t, err)

	found, err := d.DecodeSequenceUntil(4)
	require.NoError(t, err)
	require.EqualValues(t, 4, found.Identifier())
	require.Equal(t, 1, found.Level())
}

func TestDecodeSequenceUntilNotFound(t *testing.T) {
	buf := []byte{0x30, 0x03, 0x81, 0x01, 0x00}

	d := decoder.NewDecoder(4)
	d.Attach(buf, false)

	_, err := d.Next()
	require.NoError(t, err)

	_, err = d.DecodeSequenceUntil(9)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/decoder"
	"github.com/wanderber/wanderber/encoder/stream"
	"github.com/wanderber/wanderber/schema"
)

func TestTagNameUniversalClassUsesFixedTable(t *testing.T) {
	e := stream.NewEncoder(0)
	e.EncodeNextBER(ber.UniversalPrimitive, 2, schema.Integer, ber.EncodeInteger(nil, 5, 0))
	out := e.FinishBER()

	d := decoder.NewDecoder(4)
	d.Attach(out, false)

	item, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "INTEGER", item.TagName(nil))
}

func TestTagNameUniversalUnknownTagFallsBackToNumeric(t *testing.T) {
	e := stream.NewEncoder(0)
	e.EncodeNextBER(ber.UniversalPrimitive, 99, schema.OctetString, []byte("x"))
	out := e.FinishBER()

	d := decoder.NewDecoder(4)
	d.Attach(out, false)

	item, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "universal(99)", item.TagName(nil))
}

func TestTagNameContextClassUsesSchemaMemberName(t *testing.T) {
	e := stream.NewEncoder(0)
	e.EncodeNextBER(ber.ContextPrimitive, 1, schema.OctetString, []byte("AB"))
	out := e.FinishBER()

	d := decoder.NewDecoder(4)
	d.Attach(out, false)

	item, err := d.Next()
	require.NoError(t, err)

	node := schema.NewNode("PSHeader")
	node.Set(1, &schema.MemberAction{Name: "lIID", InterpretAs: schema.OctetString})

	require.Equal(t, "lIID", item.TagName(node))
}

func TestTagNameContextClassWithoutSchemaFallsBackToNumeric(t *testing.T) {
	e := stream.NewEncoder(0)
	e.EncodeNextBER(ber.ContextPrimitive, 3, schema.OctetString, []byte("x"))
	out := e.FinishBER()

	d := decoder.NewDecoder(4)
	d.Attach(out, false)

	item, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "context(3)", item.TagName(nil))
}

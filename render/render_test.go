package render_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/render"
	"github.com/wanderber/wanderber/schema"
)

func TestRenderInteger(t *testing.T) {
	r := render.New()
	s, err := r.Render(nil, []byte{0xD4}, schema.Integer, "")
	require.NoError(t, err)
	require.Equal(t, "-44", s)
}

func TestRenderBinaryIPv4(t *testing.T) {
	r := render.New()
	s, err := r.Render(nil, []byte{192, 168, 0, 1}, schema.BinaryIP, "")
	require.NoError(t, err)
	require.Equal(t, "192.168.0.1", s)
}

func TestRenderPLMN(t *testing.T) {
	// mcc=234 (swap: 32 f4 ...), mnc=15 -- build a TAI value: plmn(3) + tac(2)
	r := render.New()
	value := []byte{0x32, 0xf4, 0x51, 0x00, 0x2a}
	s, err := r.Render(nil, value, schema.TAI, "")
	require.NoError(t, err)
	require.Equal(t, "234-15-002a", s)
}

func TestRenderAPNAMBR(t *testing.T) {
	r := render.New()
	value := []byte{0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x08, 0x00}
	s, err := r.Render(nil, value, schema.EPSAPNAMBR, "")
	require.NoError(t, err)
	require.Equal(t, "Uplink=1024  Downlink=2048", s)
}

func TestRenderULIIncludesMacroENodeBFields(t *testing.T) {
	r := render.New()
	// flags: 0x40 (Macro eNodeB ID) | 0x80 (Ext Macro eNodeB ID), each
	// followed by a 6-byte PLMN+id field.
	macro := []byte{0x32, 0xf4, 0x51, 0x01, 0x02, 0x03}
	value := append([]byte{0xc0}, append(macro, macro...)...)

	s, err := r.Render(nil, value, schema.ULI, "")
	require.NoError(t, err)
	require.Equal(t, " Macro eNodeB ID: 234-15-0010203 Ext Macro eNodeB ID: 234-15-0010203", s)
}

func TestRenderIMEI(t *testing.T) {
	r := render.New()
	// digits 1..8, two per byte, low nibble first (no filler nibble)
	s, err := r.Render(nil, []byte{0x21, 0x43, 0x65, 0x87}, schema.IMEI3G, "")
	require.NoError(t, err)
	require.Equal(t, "12345678", s)
}

func TestRenderEnumeratedUsesTable(t *testing.T) {
	r := render.New()
	s, err := r.Render(nil, []byte{0x06}, schema.Enumerated, "eps-rat-type")
	require.NoError(t, err)
	require.Equal(t, "EUTRAN", s)
}

func TestRenderHexFallback(t *testing.T) {
	r := render.New()
	s, err := r.Render(nil, []byte{0xde, 0xad, 0xbe, 0xef}, schema.HexBytes, "")
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", s)
}

func TestRenderGeneralizedTimeCachesOnPrefix(t *testing.T) {
	calls := 0
	r := render.New()
	r.TimeConvert = func(b []byte) (int64, error) {
		calls++
		return 1700000000, nil
	}

	v1 := []byte("20231114221320Z")
	v2 := []byte("20231114221320.500Z")

	s1, err := r.Render(nil, v1, schema.GeneralizedTime, "")
	require.NoError(t, err)
	s2, err := r.Render(nil, v2, schema.GeneralizedTime, "")
	require.NoError(t, err)

	require.Equal(t, "1700000000", s1)
	require.Equal(t, "1700000000", s2)
	require.Equal(t, 1, calls)
}

func TestRenderEncryptedFallsBackToHexOnError(t *testing.T) {
	r := render.New()
	r.Encrypted = func(v []byte) (string, error) {
		return "", errors.New("no key")
	}

	s, err := r.Render(nil, []byte{0x01, 0x02}, schema.Encrypted, "")
	require.NoError(t, err)
	require.Equal(t, "0x0102", s)
}

func TestRenderDomainName(t *testing.T) {
	value := []byte{3, 'a', 'p', 'n', 3, 'n', 'e', 't', 0}
	got := render.New()
	s, err := got.Render(nil, value, schema.DomainName, "")
	require.NoError(t, err)
	require.Equal(t, "apn.net", s)
}

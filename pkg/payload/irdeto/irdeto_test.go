package irdeto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T, a, b uint32, c byte, xml string) []byte {
	t.Helper()
	out := make([]byte, prefixLen+len(xml))
	out[0] = byte(a)
	out[1] = byte(a >> 8)
	out[2] = byte(a >> 16)
	out[3] = byte(a >> 24)
	out[4] = byte(b)
	out[5] = byte(b >> 8)
	out[6] = byte(b >> 16)
	out[7] = byte(b >> 24)
	out[8] = c
	copy(out[prefixLen:], xml)
	return out
}

func TestParse(t *testing.T) {
	t.Run("prefix is preserved, not discarded", func(t *testing.T) {
		raw := buildFixture(t, 7, 42, 0x01, "<root>hi</root>")
		d, err := Parse(raw)
		require.NoError(t, err)
		require.Equal(t, "<root>hi</root>", d.XML)

		a, b, c := d.PrefixFields()
		require.Equal(t, uint32(7), a)
		require.Equal(t, uint32(42), b)
		require.Equal(t, byte(0x01), c)
	})

	t.Run("too short to hold the prefix fails", func(t *testing.T) {
		_, err := Parse(make([]byte, prefixLen-1))
		require.Error(t, err)
	})

	t.Run("non-UTF-8 body fails", func(t *testing.T) {
		raw := buildFixture(t, 0, 0, 0, "")
		raw = append(raw, 0xff, 0xfe)
		_, err := Parse(raw)
		require.Error(t, err)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	raw := buildFixture(t, 7, 42, 0x01, "<root>hi</root>")
	d, err := Parse(raw)
	require.NoError(t, err)

	out, err := d.Marshal()
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestString(t *testing.T) {
	d := &Data{XML: "<root>hi</root>"}
	require.Equal(t, "IrdetoPSSH<<root>hi</root>>", d.String())
}

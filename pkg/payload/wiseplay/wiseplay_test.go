package wiseplay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("arbitrary JSON object round-trips as a generic value", func(t *testing.T) {
		raw := []byte(`{"deviceId":"abc123","merchant":"acme"}`)
		d, err := Parse(raw)
		require.NoError(t, err)

		m, ok := d.Value.(map[string]any)
		require.True(t, ok)
		require.Equal(t, "abc123", m["deviceId"])
	})

	t.Run("invalid JSON is rejected", func(t *testing.T) {
		_, err := Parse([]byte("{not json"))
		require.Error(t, err)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	raw := []byte(`{"deviceId":"abc123","merchant":"acme"}`)
	d, err := Parse(raw)
	require.NoError(t, err)

	out, err := d.Marshal()
	require.NoError(t, err)

	roundTripped, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, d.Value, roundTripped.Value)
}

func TestString(t *testing.T) {
	d := &Data{Value: map[string]any{"deviceId": "abc123"}}
	require.Contains(t, d.String(), "WisePlayPSSH<")
	require.Contains(t, d.String(), "abc123")
}

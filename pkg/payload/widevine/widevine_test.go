package widevine

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// s1Payload is the Widevine protobuf payload from PSSH box fixture S1:
// algorithm=1, one key_id, content_id="4767".
const s1Payload = "08011210b75bd2ed7a824043a48fd99ff16a0411220434373637"

// s2Payload is the inner Widevine payload from PSSH box fixture S2: five
// key_ids, provider, content_id, and a CENC protection_scheme.
const s2Payload = "12101447b7ed2f66572bbd1306ce7cf3610d12105ac6a11eaa2f5ed5bf668c401c8134ca12106ee13516c8e7587bae9f7ecd3e99a26e1210f9ec12a61a265d478f83334e3a78d2c712100dc3ec4f7683548b81e73c64e582e1361a0d7769646576696e655f746573742211756e69666965642d73747265616d696e6748e3dc959b06"

func TestParse(t *testing.T) {
	t.Run("algorithm, single key_id and content_id, no provider or protection scheme", func(t *testing.T) {
		d, err := Parse(mustHex(t, s1Payload))
		require.NoError(t, err)
		require.NotNil(t, d.Algorithm)
		require.Equal(t, uint32(1), *d.Algorithm)
		require.Len(t, d.KeyID, 1)
		require.Equal(t, "b75bd2ed7a824043a48fd99ff16a0411", hex.EncodeToString(d.KeyID[0]))
		require.Equal(t, "4767", string(d.ContentID))
		require.Nil(t, d.Provider)
		require.Nil(t, d.ProtectionScheme)
	})

	t.Run("multiple key_ids, provider, content_id, and protection scheme", func(t *testing.T) {
		d, err := Parse(mustHex(t, s2Payload))
		require.NoError(t, err)
		require.Len(t, d.KeyID, 5)
		require.Equal(t, "0dc3ec4f7683548b81e73c64e582e136", hex.EncodeToString(d.KeyID[4]))
		require.NotNil(t, d.Provider)
		require.Equal(t, "widevine_test", *d.Provider)
		require.Equal(t, "unified-streaming", string(d.ContentID))
		require.NotNil(t, d.ProtectionScheme)
		require.Equal(t, SchemeCENC, *d.ProtectionScheme)
	})

	t.Run("unknown field is preserved verbatim for round-trip", func(t *testing.T) {
		// Field 20, varint wire type, value 7.
		raw := mustHex(t, "0801a00107")
		d, err := Parse(raw)
		require.NoError(t, err)
		require.Equal(t, uint32(1), *d.Algorithm)

		out, err := d.Marshal()
		require.NoError(t, err)
		require.Equal(t, raw, out)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, payload := range []string{s1Payload, s2Payload} {
		raw := mustHex(t, payload)
		d, err := Parse(raw)
		require.NoError(t, err)

		out, err := d.Marshal()
		require.NoError(t, err)
		require.Equal(t, raw, out)
	}
}

func TestString(t *testing.T) {
	algorithm := uint32(1)
	provider := "widevine_test"
	d := &Data{
		Algorithm: &algorithm,
		KeyID:     [][]byte{mustHex(t, "0dc3ec4f7683548b81e73c64e582e136")},
		Provider:  &provider,
		ContentID: []byte("unified-streaming"),
	}
	s := d.String()
	require.Contains(t, s, "Aesctr")
	require.Contains(t, s, "provider: widevine_test")
	require.Contains(t, s, "content_id:")
	require.Contains(t, s, "keyid: 0dc3ec4f7683548b81e73c64e582e136")
}

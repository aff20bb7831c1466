package payload

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgrewell/pssh-box/pkg/identifier"
)

type fakePayload struct{}

func (fakePayload) Kind() string             { return "fake" }
func (fakePayload) Marshal() ([]byte, error) { return []byte("fake"), nil }
func (fakePayload) String() string           { return "fake" }

func TestRegisterAndDecode(t *testing.T) {
	id, err := identifier.SystemIDFromHex("1111111111111111111111111111f001")
	require.NoError(t, err)

	require.False(t, Supported(id))
	Register(id, func(data []byte) (Payload, error) { return fakePayload{}, nil })
	require.True(t, Supported(id))

	p, err := Decode(id, nil)
	require.NoError(t, err)
	require.Equal(t, "fake", p.Kind())
}

func TestDecodeUnregisteredFails(t *testing.T) {
	id, err := identifier.SystemIDFromHex("2222222222222222222222222222f002")
	require.NoError(t, err)
	_, err = Decode(id, nil)
	require.Error(t, err)
}

func TestKindOf(t *testing.T) {
	name, ok := KindOf(identifier.Widevine)
	require.True(t, ok)
	require.Equal(t, "widevine", name)

	_, ok = KindOf(identifier.SystemID{})
	require.False(t, ok)
}

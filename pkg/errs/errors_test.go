package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadDecodeError(t *testing.T) {
	t.Run("wraps and unwraps the underlying error", func(t *testing.T) {
		inner := fmt.Errorf("%w: not valid UTF-8", ErrTextDecode)
		wrapped := NewPayloadDecodeError("irdeto", inner)

		require.Error(t, wrapped)
		require.True(t, errors.Is(wrapped, ErrTextDecode))
		require.Contains(t, wrapped.Error(), "irdeto")

		var pde *PayloadDecodeError
		require.True(t, errors.As(wrapped, &pde))
		require.Equal(t, "irdeto", pde.Kind)
	})

	t.Run("nil error produces nil", func(t *testing.T) {
		require.NoError(t, NewPayloadDecodeError("widevine", nil))
	})
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	require.False(t, errors.Is(ErrMalformedFraming, ErrUnsupportedVersion))
	require.False(t, errors.Is(ErrUnsupportedSystem, ErrTextDecode))
}

// Package errs defines the sentinel and typed errors shared across the
// outer box codec, the payload codecs, and the discovery engine.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFraming is returned when a box's declared size, tag, or
	// length fields are inconsistent with the bytes actually present.
	ErrMalformedFraming = errors.New("pssh: malformed box framing")

	// ErrUnsupportedVersion is returned for a box version other than 0 or 1.
	ErrUnsupportedVersion = errors.New("pssh: unsupported box version")

	// ErrUnsupportedSystem is returned when a strict parse encounters a
	// system_id that has no payload codec and no entry in the identifier
	// registry (registry-known ids parse with an opaque payload).
	ErrUnsupportedSystem = errors.New("pssh: unsupported system id")

	// ErrTextDecode is returned when text cannot be decoded: the outer
	// base64 or hex initialization data, or a payload's UTF-16LE, UTF-8 or
	// ASCII text.
	ErrTextDecode = errors.New("pssh: text decode failure")
)

// PayloadDecodeError wraps a failure inside one concrete payload codec,
// identifying which codec produced it.
type PayloadDecodeError struct {
	Kind string
	Err  error
}

func (e *PayloadDecodeError) Error() string {
	return fmt.Sprintf("decoding %s pssh data: %v", e.Kind, e.Err)
}

func (e *PayloadDecodeError) Unwrap() error {
	return e.Err
}

// NewPayloadDecodeError wraps err as a PayloadDecodeError for the named
// codec. Returns nil if err is nil.
func NewPayloadDecodeError(kind string, err error) error {
	if err == nil {
		return nil
	}
	return &PayloadDecodeError{Kind: kind, Err: err}
}

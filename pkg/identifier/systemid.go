// Package identifier implements the two opaque 16-octet identifiers carried
// by a PSSH box: the DRM system identifier and the individual content key
// identifiers it announces.
package identifier

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Size is the fixed octet length of both SystemID and KeyID.
const Size = 16

// SystemID names the DRM system a PSSH box's payload belongs to. Equality is
// plain byte identity; dispatch to a payload codec is keyed on this value.
type SystemID [Size]byte

// KeyID names one content encryption key referenced by a PSSH box.
type KeyID [Size]byte

// SystemIDFromBytes copies b into a SystemID. b must be exactly Size bytes long.
func SystemIDFromBytes(b []byte) (SystemID, error) {
	var id SystemID
	if len(b) != Size {
		return id, fmt.Errorf("system_id must be %d bytes, got %d", Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// SystemIDFromHex parses a hex string (with or without dashes) into a SystemID.
func SystemIDFromHex(s string) (SystemID, error) {
	b, err := decodeHex(s)
	if err != nil {
		return SystemID{}, fmt.Errorf("parsing system_id hex: %w", err)
	}
	return SystemIDFromBytes(b)
}

// Bytes returns the identifier's raw octets.
func (id SystemID) Bytes() []byte {
	return id[:]
}

// Hex renders the identifier as lowercase, undelimited hex.
func (id SystemID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String renders a human-readable form: the registered family name if
// known, followed by the raw hex identifier; otherwise just the hex.
func (id SystemID) String() string {
	if name, ok := Lookup(id); ok {
		return fmt.Sprintf("%s (%s)", name, id.Hex())
	}
	return id.Hex()
}

// Equal reports whether id and other name the same system.
func (id SystemID) Equal(other SystemID) bool {
	return bytes.Equal(id[:], other[:])
}

// KeyIDFromBytes copies b into a KeyID. b must be exactly Size bytes long.
func KeyIDFromBytes(b []byte) (KeyID, error) {
	var id KeyID
	if len(b) != Size {
		return id, fmt.Errorf("key_id must be %d bytes, got %d", Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// KeyIDFromHex parses a hex string (with or without dashes) into a KeyID.
func KeyIDFromHex(s string) (KeyID, error) {
	b, err := decodeHex(s)
	if err != nil {
		return KeyID{}, fmt.Errorf("parsing key_id hex: %w", err)
	}
	return KeyIDFromBytes(b)
}

// Bytes returns the key identifier's raw octets.
func (id KeyID) Bytes() []byte {
	return id[:]
}

// Hex renders the key identifier as lowercase, undelimited hex.
func (id KeyID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id KeyID) String() string {
	return id.Hex()
}

// decodeHex strips optional dash delimiters (UUID style) before decoding.
func decodeHex(s string) ([]byte, error) {
	clean := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			continue
		}
		clean = append(clean, s[i])
	}
	return hex.DecodeString(string(clean))
}

// Package payload defines the tagged union of PSSH data codecs and the
// dispatch table that the outer box codec uses to pick one by system id.
package payload

import (
	"fmt"

	"github.com/bgrewell/pssh-box/pkg/identifier"
)

// Payload is implemented by every concrete PSSH data codec. Kind identifies
// the codec so serialization can verify tag/system-id consistency, matching
// the sum-type dispatch the rest of this module relies on.
type Payload interface {
	// Kind names the concrete codec ("widevine", "playready", "nagra",
	// "wiseplay", "irdeto", "marlin", "commonenc").
	Kind() string

	// Marshal renders the payload's byte-exact wire encoding.
	Marshal() ([]byte, error)

	// String renders a short, human-readable summary, in the style of the
	// per-codec Debug output this library's tests assert against.
	String() string
}

// Codec decodes the raw bytes of a PSSH box's pssh_data field into a
// concrete Payload.
type Codec func(data []byte) (Payload, error)

// dispatch maps a recognised system id to the codec responsible for its
// payload. Populated by each payload subpackage's init function via
// Register, avoiding an import cycle between payload and its subpackages.
var dispatch = map[identifier.SystemID]Codec{}

// names maps a system id to the short codec kind reported by KindOf,
// independent of whether a codec has registered yet.
var names = map[identifier.SystemID]string{
	identifier.Widevine: "widevine",
	identifier.PlayReady: "playready",
	identifier.Irdeto:    "irdeto",
	identifier.Marlin:    "marlin",
	identifier.Nagra:     "nagra",
	identifier.WisePlay:  "wiseplay",
	identifier.Common:    "commonenc",
}

// Register associates a codec with a system id. Called from each payload
// subpackage's init function.
func Register(id identifier.SystemID, codec Codec) {
	dispatch[id] = codec
}

// KindOf returns the short codec name dispatched for id, if any.
func KindOf(id identifier.SystemID) (string, bool) {
	name, ok := names[id]
	return name, ok
}

// Decode dispatches data to the codec registered for id.
func Decode(id identifier.SystemID, data []byte) (Payload, error) {
	codec, ok := dispatch[id]
	if !ok {
		return nil, fmt.Errorf("no payload codec registered for system id %s", id)
	}
	return codec(data)
}

// Supported reports whether id has a registered payload codec.
func Supported(id identifier.SystemID) bool {
	_, ok := dispatch[id]
	return ok
}

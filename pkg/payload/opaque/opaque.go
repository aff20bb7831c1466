// Package opaque implements the Marlin and Common Encryption PSSH payload
// codecs, both of which carry an opaque byte blob with no internal
// structure this library interprets.
package opaque

import (
	"fmt"

	"github.com/bgrewell/pssh-box/pkg/identifier"
	"github.com/bgrewell/pssh-box/pkg/payload"
)

func init() {
	payload.Register(identifier.Marlin, func(data []byte) (payload.Payload, error) {
		return New("marlin", data), nil
	})
	payload.Register(identifier.Common, func(data []byte) (payload.Payload, error) {
		return New("commonenc", data), nil
	})
}

// Data is a verbatim byte blob, used for both Marlin and Common Encryption
// PSSH payloads.
type Data struct {
	kind  string
	Bytes []byte
}

// New wraps raw as an opaque payload of the given kind ("marlin",
// "commonenc", or "opaque" for a registry-known system with no codec).
func New(kind string, raw []byte) *Data {
	b := make([]byte, len(raw))
	copy(b, raw)
	return &Data{kind: kind, Bytes: b}
}

func (d *Data) Kind() string { return d.kind }

func (d *Data) Marshal() ([]byte, error) {
	out := make([]byte, len(d.Bytes))
	copy(out, d.Bytes)
	return out, nil
}

func (d *Data) String() string {
	switch d.kind {
	case "marlin":
		return fmt.Sprintf("MarlinPSSH<pssh data len %d octets>", len(d.Bytes))
	case "commonenc":
		return fmt.Sprintf("CommonPSSH<pssh data len %d octets>", len(d.Bytes))
	default:
		return fmt.Sprintf("OpaquePSSH<pssh data len %d octets>", len(d.Bytes))
	}
}

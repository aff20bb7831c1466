// Package widevine implements the Widevine PSSH payload codec. Widevine's
// payload is a compact protocol buffer message; rather than depending on
// protoc-generated bindings (an external collaborator this module treats as
// out of scope, per the schema owner's own codegen pipeline), this package
// encodes and decodes the small field set it understands directly with
// google.golang.org/protobuf/encoding/protowire.
package widevine

import (
	"encoding/hex"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bgrewell/pssh-box/pkg/errs"
	"github.com/bgrewell/pssh-box/pkg/identifier"
	"github.com/bgrewell/pssh-box/pkg/payload"
)

func init() {
	payload.Register(identifier.Widevine, func(data []byte) (payload.Payload, error) {
		d, err := Parse(data)
		if err != nil {
			return nil, errs.NewPayloadDecodeError("widevine", err)
		}
		return d, nil
	})
}

// Protection scheme values, stored as their ASCII four-character-code
// integer form, matching the widevine_pssh_data.ProtectionScheme enum.
const (
	SchemeCENC uint32 = 0x63656e63 // "cenc"
	SchemeCBC1 uint32 = 0x63626331 // "cbc1"
	SchemeCENS uint32 = 0x63656e73 // "cens"
	SchemeCBCS uint32 = 0x63626373 // "cbcs"
)

var schemeNames = map[uint32]string{
	SchemeCENC: "CENC",
	SchemeCBC1: "CBC1",
	SchemeCENS: "CENS",
	SchemeCBCS: "CBCS",
}

// field numbers used by the WidevinePsshData protobuf message.
const (
	fieldAlgorithm         = 1
	fieldKeyID             = 2
	fieldProvider          = 3
	fieldContentID         = 4
	fieldPolicy            = 6
	fieldCryptoPeriodIndex = 7
	fieldGroupedLicense    = 8
	fieldProtectionScheme  = 9
)

// Data holds a decoded Widevine PSSH payload. Pointer fields distinguish
// "absent" from "present with the zero value", matching the protobuf
// message's optional semantics.
type Data struct {
	Algorithm         *uint32
	KeyID             [][]byte
	Provider          *string
	ContentID         []byte
	Policy            *string
	CryptoPeriodIndex *uint32
	GroupedLicense    []byte
	ProtectionScheme  *uint32

	// unknown preserves any field this package does not model, in the wire
	// bytes it was received as, so a round-trip of a message using a future
	// field does not silently drop data.
	unknown []byte
}

func (d *Data) Kind() string { return "widevine" }

// Parse decodes raw Widevine PSSH data from its protobuf wire encoding.
func Parse(raw []byte) (*Data, error) {
	d := &Data{}
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("consuming field tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldAlgorithm:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("field algorithm: %w", err)
			}
			b = b[n:]
			u := uint32(v)
			d.Algorithm = &u
		case fieldKeyID:
			v, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("field key_id: %w", err)
			}
			b = b[n:]
			d.KeyID = append(d.KeyID, v)
		case fieldProvider:
			v, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("field provider: %w", err)
			}
			b = b[n:]
			s := string(v)
			d.Provider = &s
		case fieldContentID:
			v, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("field content_id: %w", err)
			}
			b = b[n:]
			d.ContentID = v
		case fieldPolicy:
			v, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("field policy: %w", err)
			}
			b = b[n:]
			s := string(v)
			d.Policy = &s
		case fieldCryptoPeriodIndex:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("field crypto_period_index: %w", err)
			}
			b = b[n:]
			u := uint32(v)
			d.CryptoPeriodIndex = &u
		case fieldGroupedLicense:
			v, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("field grouped_license: %w", err)
			}
			b = b[n:]
			d.GroupedLicense = v
		case fieldProtectionScheme:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("field protection_scheme: %w", err)
			}
			b = b[n:]
			u := uint32(v)
			d.ProtectionScheme = &u
		default:
			n2 := protowire.ConsumeFieldValue(num, typ, b)
			if n2 < 0 {
				return nil, fmt.Errorf("skipping unknown field %d: %w", num, protowire.ParseError(n2))
			}
			tagBytes := protowire.AppendTag(nil, num, typ)
			d.unknown = append(d.unknown, tagBytes...)
			d.unknown = append(d.unknown, b[:n2]...)
			b = b[n2:]
		}
	}
	return d, nil
}

func consumeVarint(b []byte, typ protowire.Type) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("expected varint wire type, got %d", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeBytes(b []byte, typ protowire.Type) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("expected length-delimited wire type, got %d", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, n, nil
}

// Marshal renders the payload back to its protobuf wire encoding, appending
// any preserved-but-unrecognised fields at the end.
func (d *Data) Marshal() ([]byte, error) {
	var out []byte
	if d.Algorithm != nil {
		out = protowire.AppendTag(out, fieldAlgorithm, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*d.Algorithm))
	}
	for _, kid := range d.KeyID {
		out = protowire.AppendTag(out, fieldKeyID, protowire.BytesType)
		out = protowire.AppendBytes(out, kid)
	}
	if d.Provider != nil {
		out = protowire.AppendTag(out, fieldProvider, protowire.BytesType)
		out = protowire.AppendBytes(out, []byte(*d.Provider))
	}
	if d.ContentID != nil {
		out = protowire.AppendTag(out, fieldContentID, protowire.BytesType)
		out = protowire.AppendBytes(out, d.ContentID)
	}
	if d.Policy != nil {
		out = protowire.AppendTag(out, fieldPolicy, protowire.BytesType)
		out = protowire.AppendBytes(out, []byte(*d.Policy))
	}
	if d.CryptoPeriodIndex != nil {
		out = protowire.AppendTag(out, fieldCryptoPeriodIndex, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*d.CryptoPeriodIndex))
	}
	if d.GroupedLicense != nil {
		out = protowire.AppendTag(out, fieldGroupedLicense, protowire.BytesType)
		out = protowire.AppendBytes(out, d.GroupedLicense)
	}
	if d.ProtectionScheme != nil {
		out = protowire.AppendTag(out, fieldProtectionScheme, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*d.ProtectionScheme))
	}
	out = append(out, d.unknown...)
	return out, nil
}

func (d *Data) String() string {
	var items []string
	if d.Algorithm != nil {
		if *d.Algorithm == 0 {
			items = append(items, "unencrypted")
		} else {
			items = append(items, "Aesctr")
		}
	}
	if d.Provider != nil {
		items = append(items, fmt.Sprintf("provider: %s", *d.Provider))
	}
	if d.Policy != nil && *d.Policy != "" {
		items = append(items, fmt.Sprintf("policy: %s", *d.Policy))
	}
	if d.CryptoPeriodIndex != nil {
		items = append(items, fmt.Sprintf("crypto_period_index: %d", *d.CryptoPeriodIndex))
	}
	if d.GroupedLicense != nil {
		items = append(items, fmt.Sprintf("grouped_licence: %s", hex.EncodeToString(d.GroupedLicense)))
	}
	if d.ProtectionScheme != nil {
		name, ok := schemeNames[*d.ProtectionScheme]
		if !ok {
			name = fmt.Sprintf("unknown (%d)", *d.ProtectionScheme)
		}
		items = append(items, fmt.Sprintf("protection_scheme: %s", name))
	}
	for _, kid := range d.KeyID {
		items = append(items, fmt.Sprintf("keyid: %s", hex.EncodeToString(kid)))
	}
	if d.ContentID != nil {
		items = append(items, fmt.Sprintf("content_id: %s", hex.EncodeToString(d.ContentID)))
	}
	return fmt.Sprintf("WidevinePsshData<%s>", strings.Join(items, ", "))
}

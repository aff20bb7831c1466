// Package irdeto implements the Irdeto PSSH payload codec: a 9-octet
// opaque prefix (two little-endian uint32 fields plus one byte, whose
// semantics are not publicly documented) followed by a UTF-8 XML string.
package irdeto

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/bgrewell/pssh-box/pkg/errs"
	"github.com/bgrewell/pssh-box/pkg/identifier"
	"github.com/bgrewell/pssh-box/pkg/payload"
)

// prefixLen is the size, in octets, of the opaque header preceding the XML.
const prefixLen = 9

func init() {
	payload.Register(identifier.Irdeto, func(data []byte) (payload.Payload, error) {
		d, err := Parse(data)
		if err != nil {
			return nil, errs.NewPayloadDecodeError("irdeto", err)
		}
		return d, nil
	})
}

// Data holds a decoded Irdeto PSSH payload. Prefix is preserved verbatim so
// serialization round-trips exactly; the original reference implementation
// discards it, which this library treats as a defect rather than a
// contract to reproduce.
type Data struct {
	Prefix [prefixLen]byte
	XML    string
}

// Parse decodes raw Irdeto PSSH data.
func Parse(raw []byte) (*Data, error) {
	if len(raw) < prefixLen {
		return nil, fmt.Errorf("irdeto payload too short: need at least %d bytes, got %d", prefixLen, len(raw))
	}
	var d Data
	copy(d.Prefix[:], raw[:prefixLen])
	xml := raw[prefixLen:]
	if !utf8.Valid(xml) {
		return nil, fmt.Errorf("%w: irdeto xml body is not valid UTF-8", errs.ErrTextDecode)
	}
	d.XML = string(xml)
	return &d, nil
}

func (d *Data) Kind() string { return "irdeto" }

func (d *Data) Marshal() ([]byte, error) {
	out := make([]byte, prefixLen+len(d.XML))
	copy(out, d.Prefix[:])
	copy(out[prefixLen:], d.XML)
	return out, nil
}

func (d *Data) String() string {
	return fmt.Sprintf("IrdetoPSSH<%s>", d.XML)
}

// PrefixFields decodes the opaque prefix into its two little-endian uint32
// fields and its trailing byte, for callers that want to inspect them.
func (d *Data) PrefixFields() (a, b uint32, c byte) {
	a = binary.LittleEndian.Uint32(d.Prefix[0:4])
	b = binary.LittleEndian.Uint32(d.Prefix[4:8])
	c = d.Prefix[8]
	return
}

// Package psshbox parses and serializes Protection System Specific Header
// (PSSH) boxes: the binary containers that carry DRM initialization data
// inside ISOBMFF/CMAF streams and inside the <cenc:pssh> element of DASH
// MPD manifests.
//
// Initialization data is always one or more concatenated "pssh" boxes; a
// content decryption module examines each box in turn to find one it
// supports. FromBytes, FromBase64, and FromHex all parse a complete run of
// boxes strictly, failing on the first error. FromBuffer instead parses
// tolerantly, stopping at (but keeping) everything up to the first box it
// cannot make sense of.
package psshbox

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bgrewell/pssh-box/pkg/box"
	"github.com/bgrewell/pssh-box/pkg/discovery"
	"github.com/bgrewell/pssh-box/pkg/errs"
	"github.com/bgrewell/pssh-box/pkg/logging"
	"github.com/bgrewell/pssh-box/pkg/payload/nagra"
	"github.com/bgrewell/pssh-box/pkg/payload/playready"

	// Blank-imported so each payload codec's init() registers itself with
	// pkg/payload's dispatch table; nothing in this file references them
	// directly beyond box.NewWidevine, which already pulls in widevine.
	_ "github.com/bgrewell/pssh-box/pkg/payload/irdeto"
	_ "github.com/bgrewell/pssh-box/pkg/payload/opaque"
	_ "github.com/bgrewell/pssh-box/pkg/payload/wiseplay"
)

// SetLogger replaces the logger used by every package in this module that
// logs (box, discovery, payload/playready, payload/nagra), nesting each
// under its own name. By default everything is discarded; inject a real
// sink, e.g. logging.NewSimpleLogger, to see step-by-step parse and scan
// tracing.
func SetLogger(l *logging.Logger) {
	box.SetLogger(l)
	discovery.SetLogger(l)
	playready.SetLogger(l)
	nagra.SetLogger(l)
}

// PsshBox is one parsed or in-construction PSSH box.
type PsshBox = box.PsshBox

// NewWidevine returns a v1 PSSH box for the Widevine system with an empty
// key list and an empty Widevine payload whose policy is the empty string.
func NewWidevine() *PsshBox { return box.NewWidevine() }

// NewPlayReady returns a v1 PSSH box for the PlayReady system with an empty
// key list and a payload containing one Rights Management record.
func NewPlayReady() *PsshBox { return box.NewPlayReady() }

// PsshBoxVec is an ordered collection of PSSH boxes, as found in a single
// initialization data blob.
type PsshBoxVec []*PsshBox

// Len returns the number of boxes in v.
func (v PsshBoxVec) Len() int { return len(v) }

// IsEmpty reports whether v has no boxes.
func (v PsshBoxVec) IsEmpty() bool { return len(v) == 0 }

// Add appends b to v.
func (v *PsshBoxVec) Add(b *PsshBox) { *v = append(*v, b) }

// ToBytes concatenates the byte-exact wire encoding of every box in v, in
// order.
func (v PsshBoxVec) ToBytes() ([]byte, error) {
	var out []byte
	for i, b := range v {
		bb, err := b.Marshal()
		if err != nil {
			return nil, fmt.Errorf("marshaling box %d: %w", i, err)
		}
		out = append(out, bb...)
	}
	return out, nil
}

// ToBase64 renders v as standard base64.
func (v PsshBoxVec) ToBase64() (string, error) {
	b, err := v.ToBytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ToHex renders v as lowercase, undelimited hex.
func (v PsshBoxVec) ToHex() (string, error) {
	b, err := v.ToBytes()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// String renders one box per line, in order, with no trailing newline.
func (v PsshBoxVec) String() string {
	items := make([]string, len(v))
	for i, b := range v {
		items[i] = b.String()
	}
	return strings.Join(items, "\n")
}

// FromBytes parses one or more concatenated PSSH boxes, strictly: the first
// box that fails to parse aborts the whole call.
func FromBytes(buf []byte) (PsshBoxVec, error) {
	var boxes PsshBoxVec
	offset := 0
	for offset < len(buf) {
		b, n, err := box.Unmarshal(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("parsing the PSSH initialization data at offset %d: %w", offset, err)
		}
		boxes = append(boxes, b)
		offset += n
	}
	return boxes, nil
}

// FromBuffer parses a run of concatenated PSSH boxes tolerantly: it returns
// every box successfully parsed up to, but not including, the first one
// that fails.
func FromBuffer(buf []byte) PsshBoxVec {
	var boxes PsshBoxVec
	offset := 0
	for offset < len(buf) {
		b, n, err := box.Unmarshal(buf[offset:])
		if err != nil {
			break
		}
		boxes = append(boxes, b)
		offset += n
	}
	return boxes
}

// FromBase64 decodes standard base64 and parses the result strictly via
// FromBytes.
func FromBase64(initData string) (PsshBoxVec, error) {
	buf, err := base64.StdEncoding.DecodeString(initData)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w: %w", errs.ErrTextDecode, err)
	}
	return FromBytes(buf)
}

// FromHex decodes hex (case-insensitive) and parses the result strictly
// via FromBytes.
func FromHex(initData string) (PsshBoxVec, error) {
	buf, err := hex.DecodeString(strings.ToLower(initData))
	if err != nil {
		return nil, fmt.Errorf("decoding hex: %w: %w", errs.ErrTextDecode, err)
	}
	return FromBytes(buf)
}

// Package box implements the outer PSSH box codec: the big-endian ISOBMFF
// framing (size, "pssh" type, version/flags, system_id, optional v1 key-id
// list, length-prefixed payload) that wraps one DRM-specific PSSH payload.
package box

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/bgrewell/pssh-box/pkg/errs"
	"github.com/bgrewell/pssh-box/pkg/identifier"
	"github.com/bgrewell/pssh-box/pkg/logging"
	"github.com/bgrewell/pssh-box/pkg/payload"
	"github.com/bgrewell/pssh-box/pkg/payload/opaque"
	"github.com/bgrewell/pssh-box/pkg/payload/playready"
	"github.com/bgrewell/pssh-box/pkg/payload/widevine"
)

var log = logging.DefaultLogger().Named("box")

// SetLogger replaces this package's logger, nesting it under "box". By
// default logging is discarded; inject a real sink (e.g.
// logging.NewSimpleLogger) to see per-box parse tracing.
func SetLogger(l *logging.Logger) {
	log = l.Named("box")
}

// boxTag is the fixed ISOBMFF box type for a PSSH box.
var boxTag = [4]byte{'p', 's', 's', 'h'}

// PsshBox is one parsed or in-construction Protection System Specific
// Header box.
type PsshBox struct {
	Version  uint8
	Flags    uint32 // low 24 bits significant
	SystemID identifier.SystemID
	KeyIDs   []identifier.KeyID // only meaningful, and only emitted, for Version == 1
	Data     payload.Payload
}

// NewWidevine returns a v1 PSSH box for the Widevine system with an empty
// key list and an empty Widevine payload whose policy is the empty string,
// matching this module's Widevine factory constructor contract.
func NewWidevine() *PsshBox {
	policy := ""
	return &PsshBox{
		Version:  1,
		SystemID: identifier.Widevine,
		Data:     &widevine.Data{Policy: &policy},
	}
}

// NewPlayReady returns a v1 PSSH box for the PlayReady system with an empty
// key list and a payload containing one Rights Management record whose
// WRMHEADER carries version 4.0.0.0, the Microsoft default namespace, and
// an empty DATA element.
func NewPlayReady() *PsshBox {
	return &PsshBox{
		Version:  1,
		SystemID: identifier.PlayReady,
		Data:     playready.New(),
	}
}

// AddKeyID appends kid to the box's v1 key id list.
func (b *PsshBox) AddKeyID(kid identifier.KeyID) {
	b.KeyIDs = append(b.KeyIDs, kid)
}

// Marshal renders b to its byte-exact wire encoding.
func (b *PsshBox) Marshal() ([]byte, error) {
	if b.Version > 1 {
		return nil, fmt.Errorf("%w: version %d", errs.ErrUnsupportedVersion, b.Version)
	}
	payloadBytes, err := b.Data.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshaling %s pssh data: %w", b.Data.Kind(), err)
	}

	totalLength := uint32(4 + 4 + 4 + identifier.Size + 4 + len(payloadBytes))
	if b.Version == 1 {
		totalLength += 4 + uint32(len(b.KeyIDs))*identifier.Size
	}

	out := make([]byte, 0, totalLength)
	out = appendUint32(out, totalLength)
	out = append(out, boxTag[:]...)
	versionAndFlags := (uint32(b.Version) << 24) | (b.Flags & 0x00FFFFFF)
	out = appendUint32(out, versionAndFlags)
	out = append(out, b.SystemID.Bytes()...)
	if b.Version == 1 {
		out = appendUint32(out, uint32(len(b.KeyIDs)))
		for _, kid := range b.KeyIDs {
			out = append(out, kid.Bytes()...)
		}
	}
	out = appendUint32(out, uint32(len(payloadBytes)))
	out = append(out, payloadBytes...)
	return out, nil
}

// Unmarshal reads exactly one PSSH box from the front of buf, dispatching
// its payload by system_id. It returns the parsed box and the number of
// bytes consumed from buf.
func Unmarshal(buf []byte) (*PsshBox, int, error) {
	// 1. size: 4 bytes, big-endian.
	if len(buf) < 4 {
		return nil, 0, fmt.Errorf("%w: reading pssh box size: truncated", errs.ErrMalformedFraming)
	}
	size := binary.BigEndian.Uint32(buf[0:4])
	if size < 4 || uint64(size) > uint64(len(buf)) {
		return nil, 0, fmt.Errorf("%w: declared size %d inconsistent with available %d bytes", errs.ErrMalformedFraming, size, len(buf))
	}
	box := buf[:size]
	offset := 4

	// 2. box type: 4 bytes, must be "pssh".
	if offset+4 > len(box) {
		return nil, 0, fmt.Errorf("%w: reading box header: truncated", errs.ErrMalformedFraming)
	}
	if !equalTag(box[offset:offset+4], boxTag) {
		return nil, 0, fmt.Errorf("%w: expecting BMFF header, got %q", errs.ErrMalformedFraming, box[offset:offset+4])
	}
	offset += 4

	// 3. version_and_flags: 4 bytes, big-endian.
	if offset+4 > len(box) {
		return nil, 0, fmt.Errorf("%w: reading pssh version/flags: truncated", errs.ErrMalformedFraming)
	}
	versionAndFlags := binary.BigEndian.Uint32(box[offset : offset+4])
	offset += 4
	version := uint8(versionAndFlags >> 24)
	if version > 1 {
		return nil, 0, fmt.Errorf("%w: version %d", errs.ErrUnsupportedVersion, version)
	}
	flags := versionAndFlags & 0x00FFFFFF

	// 4. system_id: 16 bytes.
	if offset+identifier.Size > len(box) {
		return nil, 0, fmt.Errorf("%w: reading system_id: truncated", errs.ErrMalformedFraming)
	}
	systemID, err := identifier.SystemIDFromBytes(box[offset : offset+identifier.Size])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: reading system_id: %v", errs.ErrMalformedFraming, err)
	}
	offset += identifier.Size

	// 5. v1 key id list.
	var keyIDs []identifier.KeyID
	if version == 1 {
		if offset+4 > len(box) {
			return nil, 0, fmt.Errorf("%w: reading KID count: truncated", errs.ErrMalformedFraming)
		}
		kidCount := binary.BigEndian.Uint32(box[offset : offset+4])
		offset += 4
		needed := uint64(kidCount) * identifier.Size
		if needed > uint64(len(box)-offset) {
			return nil, 0, fmt.Errorf("%w: KID count %d exceeds remaining box bytes", errs.ErrMalformedFraming, kidCount)
		}
		keyIDs = make([]identifier.KeyID, 0, kidCount)
		for i := uint32(0); i < kidCount; i++ {
			kid, err := identifier.KeyIDFromBytes(box[offset : offset+identifier.Size])
			if err != nil {
				return nil, 0, fmt.Errorf("%w: reading key_id: %v", errs.ErrMalformedFraming, err)
			}
			keyIDs = append(keyIDs, kid)
			offset += identifier.Size
		}
	}

	// 6. pssh_data_len + pssh_data.
	if offset+4 > len(box) {
		return nil, 0, fmt.Errorf("%w: reading pssh data length: truncated", errs.ErrMalformedFraming)
	}
	dataLen := binary.BigEndian.Uint32(box[offset : offset+4])
	offset += 4
	if uint64(dataLen) > uint64(len(box)-offset) {
		return nil, 0, fmt.Errorf("%w: pssh data length %d exceeds remaining box bytes", errs.ErrMalformedFraming, dataLen)
	}
	data := box[offset : offset+int(dataLen)]
	offset += int(dataLen)

	if offset != len(box) {
		return nil, 0, fmt.Errorf("%w: %d trailing bytes inside declared box size", errs.ErrMalformedFraming, len(box)-offset)
	}

	// 7. dispatch by system_id. A system_id with no registered codec but a
	// known registry entry (e.g. FairPlay-Netflix) still parses, as an
	// opaque payload, rather than failing the whole box: this library
	// simply cannot decode further, which is not the same as malformed.
	if !payload.Supported(systemID) {
		name, known := identifier.Lookup(systemID)
		if !known {
			return nil, 0, fmt.Errorf("%w: %s", errs.ErrUnsupportedSystem, systemID.Hex())
		}
		log.Debug("no payload codec for recognised system, treating as opaque", "system_id", systemID.Hex(), "name", name)
		return &PsshBox{
			Version:  version,
			Flags:    flags,
			SystemID: systemID,
			KeyIDs:   keyIDs,
			Data:     opaque.New("opaque", data),
		}, int(size), nil
	}
	log.Trace("dispatching pssh data", "system_id", systemID.Hex())
	decoded, err := payload.Decode(systemID, data)
	if err != nil {
		return nil, 0, err
	}

	return &PsshBox{
		Version:  version,
		Flags:    flags,
		SystemID: systemID,
		KeyIDs:   keyIDs,
		Data:     decoded,
	}, int(size), nil
}

// String renders a short, human-readable summary in the style of this
// module's per-codec debug output, merging the outer v1 key ids with any
// reported by the payload itself.
func (b *PsshBox) String() string {
	var keyPrefix string
	if len(b.KeyIDs) > 0 {
		hexes := make([]string, len(b.KeyIDs))
		for i, k := range b.KeyIDs {
			hexes[i] = k.Hex()
		}
		if len(hexes) == 1 {
			keyPrefix = fmt.Sprintf("key_id: %s, ", hexes[0])
		} else {
			keyPrefix = fmt.Sprintf("key_ids: %s, ", strings.Join(hexes, ", "))
		}
	}
	return keyPrefix + b.Data.String()
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func equalTag(got []byte, want [4]byte) bool {
	return len(got) == 4 && got[0] == want[0] && got[1] == want[1] && got[2] == want[2] && got[3] == want[3]
}

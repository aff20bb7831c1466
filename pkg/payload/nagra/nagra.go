// Package nagra implements the Nagra PSSH payload codec: a base64-encoded
// JSON object carrying the content id and key id, transported as ASCII.
package nagra

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bgrewell/pssh-box/pkg/errs"
	"github.com/bgrewell/pssh-box/pkg/identifier"
	"github.com/bgrewell/pssh-box/pkg/logging"
	"github.com/bgrewell/pssh-box/pkg/payload"
)

var log = logging.DefaultLogger().Named("payload.nagra")

// SetLogger replaces this package's logger, nesting it under
// "payload.nagra". By default logging is discarded.
func SetLogger(l *logging.Logger) {
	log = l.Named("payload.nagra")
}

func init() {
	payload.Register(identifier.Nagra, func(data []byte) (payload.Payload, error) {
		d, err := Parse(data)
		if err != nil {
			return nil, errs.NewPayloadDecodeError("nagra", err)
		}
		return d, nil
	})
}

// Data holds a decoded Nagra PSSH payload.
type Data struct {
	ContentID string
	KeyID     string
}

func (d *Data) Kind() string { return "nagra" }

// Parse decodes raw Nagra PSSH data: ASCII text, base64-decoded (URL-safe
// alphabet, tolerant of missing or mismatched padding) into a two-key JSON
// object.
func Parse(raw []byte) (*Data, error) {
	if !isASCII(raw) {
		return nil, fmt.Errorf("%w: nagra payload is not ASCII", errs.ErrTextDecode)
	}
	decoded, err := decodeForgivingBase64(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(decoded, &fields); err != nil {
		return nil, fmt.Errorf("parsing as JSON: %w", err)
	}
	if len(fields) > 2 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		log.Debug("unknown key in Nagra PSSH data", "keys", keys)
	}

	cid, ok := fields["contentId"].(string)
	if !ok {
		return nil, fmt.Errorf("extracting contentId")
	}
	kid, ok := fields["keyId"].(string)
	if !ok {
		return nil, fmt.Errorf("extracting keyId")
	}
	return &Data{ContentID: cid, KeyID: kid}, nil
}

func (d *Data) Marshal() ([]byte, error) {
	// Manual compact encoding: no whitespace, fixed key order, matching the
	// wire format actual Nagra clients expect.
	json := fmt.Sprintf(`{"contentId":"%s","keyId":"%s"}`, d.ContentID, d.KeyID)
	return []byte(encodeForgivingBase64(json)), nil
}

func (d *Data) String() string {
	return fmt.Sprintf("NagraPSSH<content_id: %s, key_id: %s>", d.ContentID, d.KeyID)
}

// decodeForgivingBase64 decodes s using the URL-safe alphabet, tolerating
// either padded or unpadded input.
func decodeForgivingBase64(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(withPadding(s))
}

func encodeForgivingBase64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func withPadding(s string) string {
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	return s
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 127 {
			return false
		}
	}
	return true
}

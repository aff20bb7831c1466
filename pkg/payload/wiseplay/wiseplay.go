// Package wiseplay implements the WisePlay (also used for ChinaDRM) PSSH
// payload codec: a plain, generic JSON document with no fixed schema.
package wiseplay

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bgrewell/pssh-box/pkg/errs"
	"github.com/bgrewell/pssh-box/pkg/identifier"
	"github.com/bgrewell/pssh-box/pkg/payload"
)

func init() {
	payload.Register(identifier.WisePlay, func(data []byte) (payload.Payload, error) {
		d, err := Parse(data)
		if err != nil {
			return nil, errs.NewPayloadDecodeError("wiseplay", err)
		}
		return d, nil
	})
}

// Data wraps an arbitrary JSON document preserved verbatim as a generic
// value tree.
type Data struct {
	Value any
}

// Parse decodes raw WisePlay PSSH data as generic JSON.
func Parse(raw []byte) (*Data, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parsing as JSON: %w", err)
	}
	return &Data{Value: v}, nil
}

func (d *Data) Kind() string { return "wiseplay" }

func (d *Data) Marshal() ([]byte, error) {
	return json.Marshal(d.Value)
}

func (d *Data) String() string {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(d.Value)
	return fmt.Sprintf("WisePlayPSSH<%s>", bytes.TrimSpace(buf.Bytes()))
}

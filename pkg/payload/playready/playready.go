// Package playready implements the PlayReady PSSH payload codec: a
// little-endian record framing wrapping a UTF-16-LE-encoded XML "PlayReady
// Header Object" document.
//
// See https://learn.microsoft.com/en-us/playready/specifications/playready-header-specification
package playready

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/bgrewell/pssh-box/pkg/errs"
	"github.com/bgrewell/pssh-box/pkg/identifier"
	"github.com/bgrewell/pssh-box/pkg/logging"
	"github.com/bgrewell/pssh-box/pkg/payload"
)

var log = logging.DefaultLogger().Named("payload.playready")

// SetLogger replaces this package's logger, nesting it under
// "payload.playready". By default logging is discarded.
func SetLogger(l *logging.Logger) {
	log = l.Named("payload.playready")
}

func init() {
	payload.Register(identifier.PlayReady, func(data []byte) (payload.Payload, error) {
		d, err := Parse(data)
		if err != nil {
			return nil, errs.NewPayloadDecodeError("playready", err)
		}
		return d, nil
	})
}

// DefaultXMLNS is the Microsoft namespace URI applied to a WRMHEADER whose
// xmlns attribute is absent.
const DefaultXMLNS = "http://schemas.microsoft.com/DRM/2007/03/PlayReadyHeader"

// RecordType identifies the kind of a PlayReady record. Only
// RecordTypeRightsManagement is understood by this codec; any other value
// is a parse error.
type RecordType uint16

const (
	RecordTypeRightsManagement RecordType = 1
	RecordTypeReserved         RecordType = 2
	RecordTypeEmbeddedLicense  RecordType = 3
)

// KID is a legacy single key identifier element, or one entry of a
// PROTECTINFO/KIDS list.
type KID struct {
	Value    string `xml:"VALUE,attr,omitempty"`
	AlgID    string `xml:"ALGID,attr,omitempty"`
	Checksum []byte `xml:"CHECKSUM,attr,omitempty"`
	Content  []byte `xml:",chardata"`
}

// ProtectInfo holds the v4.2.0.0-style PROTECTINFO element.
type ProtectInfo struct {
	KeyLen *uint32 `xml:"KEYLEN,omitempty"`
	AlgID  string  `xml:"ALGID,omitempty"`
	KIDs   []KID   `xml:"KIDS>KID,omitempty"`
}

// WRMData is the structural content of a WRMHEADER's DATA element.
type WRMData struct {
	KIDs           []KID        `xml:"KID,omitempty"`
	ProtectInfo    *ProtectInfo `xml:"PROTECTINFO,omitempty"`
	Checksum       []byte       `xml:"CHECKSUM,omitempty"`
	LAURL          string       `xml:"LA_URL,omitempty"`
	LUIURL         string       `xml:"LUI_URL,omitempty"`
	DSID           string       `xml:"DS_ID,omitempty"`
	DecryptorSetup string       `xml:"DECRYPTORSETUP,omitempty"`
	CustomAttrs    *string      `xml:"-"`
}

// WRMHeader is the root element of a PlayReady Header Object XML document.
type WRMHeader struct {
	XMLName xml.Name `xml:"WRMHEADER"`
	XMLNS   string   `xml:"xmlns,attr"`
	Version string   `xml:"version,attr"`
	Data    WRMData  `xml:"DATA"`
}

// Record is one length-prefixed XML document inside a PlayReady PSSH
// payload.
type Record struct {
	Type  RecordType
	Value WRMHeader
}

// Data holds a decoded PlayReady PSSH payload: one or more records.
type Data struct {
	Records []Record
}

func (d *Data) Kind() string { return "playready" }

// New builds the header produced by the library's PlayReady factory
// constructor: one Rights Management record, WRMHEADER version 4.0.0.0,
// the Microsoft default namespace, and an empty DATA element.
func New() *Data {
	return &Data{
		Records: []Record{{
			Type: RecordTypeRightsManagement,
			Value: WRMHeader{
				XMLNS:   DefaultXMLNS,
				Version: "4.0.0.0",
			},
		}},
	}
}

// Parse decodes raw PlayReady PSSH data.
func Parse(raw []byte) (*Data, error) {
	if len(raw) < 6 {
		return nil, fmt.Errorf("playready payload too short for header")
	}
	length := binary.LittleEndian.Uint32(raw[0:4])
	if int(length) != len(raw) {
		return nil, fmt.Errorf("header length %d different from buffer length %d", length, len(raw))
	}
	recordCount := binary.LittleEndian.Uint16(raw[4:6])

	d := &Data{}
	b := raw[6:]
	for i := 0; i < int(recordCount); i++ {
		rec, rest, err := parseRecord(b)
		if err != nil {
			return nil, fmt.Errorf("parsing playready record %d: %w", i, err)
		}
		d.Records = append(d.Records, rec)
		b = rest
	}
	return d, nil
}

func parseRecord(b []byte) (Record, []byte, error) {
	if len(b) < 4 {
		return Record{}, nil, fmt.Errorf("reading record_type/record_length fields: truncated")
	}
	recordType := RecordType(binary.LittleEndian.Uint16(b[0:2]))
	if recordType != RecordTypeRightsManagement {
		return Record{}, nil, fmt.Errorf("can't parse PlayReady record of type %d", recordType)
	}
	recordLength := binary.LittleEndian.Uint16(b[2:4])
	b = b[4:]
	if len(b) < int(recordLength) {
		return Record{}, nil, fmt.Errorf("record_length %d exceeds remaining buffer", recordLength)
	}
	body, rest := b[:recordLength], b[recordLength:]

	if len(body)%2 != 0 {
		return Record{}, nil, fmt.Errorf("%w: playready record body has odd length", errs.ErrTextDecode)
	}
	units := make([]uint16, len(body)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(body[2*i : 2*i+2])
	}
	xmlStr := string(utf16.Decode(units))

	xmlStr, customAttrs, err := extractCustomAttributes(xmlStr)
	if err != nil {
		return Record{}, nil, err
	}

	var header WRMHeader
	if err := xml.Unmarshal([]byte(xmlStr), &header); err != nil {
		return Record{}, nil, fmt.Errorf("parsing PlayReady XML: %w", err)
	}
	header.Data.CustomAttrs = customAttrs

	return Record{Type: recordType, Value: header}, rest, nil
}

// extractCustomAttributes strips a <CUSTOMATTRIBUTES>...</CUSTOMATTRIBUTES>
// span from xmlStr (often non-well-formed w.r.t. the outer document) and
// returns the remaining document plus the raw inner text, if present.
func extractCustomAttributes(xmlStr string) (string, *string, error) {
	start := strings.Index(xmlStr, "<CUSTOMATTRIBUTES")
	if start < 0 {
		return xmlStr, nil, nil
	}
	end := strings.Index(xmlStr, "</CUSTOMATTRIBUTES>")
	if end < 0 || end < start {
		return "", nil, fmt.Errorf("invalid CUSTOMATTRIBUTES element")
	}
	span := xmlStr[start:end]
	tagEnd := strings.IndexByte(span, '>')
	if tagEnd < 0 {
		return "", nil, fmt.Errorf("finding end of CUSTOMATTRIBUTES element")
	}
	inner := span[tagEnd+1:]
	cleaned := xmlStr[:start] + xmlStr[end+len("</CUSTOMATTRIBUTES>"):]
	return cleaned, &inner, nil
}

// Marshal renders the payload back to its wire encoding: little-endian
// length-prefixed records of UTF-16-LE XML.
func (d *Data) Marshal() ([]byte, error) {
	var recordsBuf bytes.Buffer
	for _, r := range d.Records {
		rb, err := r.marshal()
		if err != nil {
			return nil, err
		}
		log.Trace("serializing playready record", "length", len(rb))
		recordsBuf.Write(rb)
	}

	totalLength := uint32(4 + 2 + recordsBuf.Len())
	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, totalLength)
	_ = binary.Write(&out, binary.LittleEndian, uint16(len(d.Records)))
	out.Write(recordsBuf.Bytes())
	return out.Bytes(), nil
}

func (r *Record) marshal() ([]byte, error) {
	xmlStr, err := r.Value.marshalXML()
	if err != nil {
		return nil, fmt.Errorf("serializing WRMHEADER XML: %w", err)
	}
	utf16Bytes := encodeUTF16LE(xmlStr)

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, uint16(r.Type))
	_ = binary.Write(&out, binary.LittleEndian, uint16(len(utf16Bytes)))
	out.Write(utf16Bytes)
	return out.Bytes(), nil
}

func (h *WRMHeader) marshalXML() (string, error) {
	xmlns := h.XMLNS
	if xmlns == "" {
		xmlns = DefaultXMLNS
	}
	hdr := *h
	hdr.XMLNS = xmlns

	out, err := xml.Marshal(&hdr)
	if err != nil {
		return "", err
	}
	s := string(out)
	if hdr.Data.CustomAttrs != nil {
		tag := "<CUSTOMATTRIBUTES>" + *hdr.Data.CustomAttrs + "</CUSTOMATTRIBUTES>"
		idx := strings.Index(s, "<DECRYPTORSETUP>")
		if idx < 0 {
			idx = strings.Index(s, "</DATA>")
		}
		if idx >= 0 {
			s = s[:idx] + tag + s[idx:]
		} else {
			s += tag
		}
	}
	return s, nil
}

func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:2*i+2], u)
	}
	return out
}

func (d *Data) String() string {
	var items []string
	for _, r := range d.Records {
		if r.Type == RecordTypeRightsManagement {
			xmlStr, err := r.Value.marshalXML()
			if err != nil {
				xmlStr = fmt.Sprintf("<error: %v>", err)
			}
			items = append(items, fmt.Sprintf("RightsManagementRecord: %s", xmlStr))
		} else {
			items = append(items, fmt.Sprintf("Record{type:%d}", r.Type))
		}
	}
	return fmt.Sprintf("PlayReadyPsshData<%s>", strings.Join(items, ", "))
}

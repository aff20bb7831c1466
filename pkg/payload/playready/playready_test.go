package playready

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

// s3Payload is the inner PlayReady PSSH payload from box fixture S3: one
// Rights Management record whose DATA element has a CUSTOMATTRIBUTES block
// and an LA_URL pointing at anycast.nagra.com.
const s3Payload = "oAMAAAEAAQCWAzwAVwBSAE0ASABFAEEARABFAFIAIAB4AG0AbABuAHMAPQAiAGgAdAB0AHAAOgAvAC8AcwBjAGgAZQBtAGEAcwAuAG0AaQBjAHIAbwBzAG8AZgB0AC4AYwBvAG0ALwBEAFIATQAvADIAMAAwADcALwAwADMALwBQAGwAYQB5AFIAZQBhAGQAeQBIAGUAYQBkAGUAcgAiACAAdgBlAHIAcwBpAG8AbgA9ACIANAAuADAALgAwAC4AMAAiAD4APABEAEEAVABBAD4APABQAFIATwBUAEUAQwBUAEkATgBGAE8APgA8AEsARQBZAEwARQBOAD4AMQA2ADwALwBLAEUAWQBMAEUATgA+ADwAQQBMAEcASQBEAD4AQQBFAFMAQwBUAFIAPAAvAEEATABHAEkARAA+ADwALwBQAFIATwBUAEUAQwBUAEkATgBGAE8APgA8AEsASQBEAD4AMABrAEIARwBXADUAawB1AE0AVQBxADgATgBPAE4AYwAvAFgARABjAFcAQQA9AD0APAAvAEsASQBEAD4APABDAEgARQBDAEsAUwBVAE0APgA3AE0AdgBuAG4AbgBVAHQAYQBpADgAPQA8AC8AQwBIAEUAQwBLAFMAVQBNAD4APABMAEEAXwBVAFIATAA+AGgAdAB0AHAAcwA6AC8ALwB2AGQAaAA5ADkAcwA2AHMALgBhAG4AeQBjAGEAcwB0AC4AbgBhAGcAcgBhAC4AYwBvAG0ALwBWAEQASAA5ADkAUwA2AFMALwBwAHIAbABzAC8AYwBvAG4AdABlAG4AdABsAGkAYwBlAG4AcwBlAHMAZQByAHYAaQBjAGUALwB2ADEALwBsAGkAYwBlAG4AcwBlAHMAPAAvAEwAQQBfAFUAUgBMAD4APABDAFUAUwBUAE8ATQBBAFQAVABSAEkAQgBVAFQARQBTAD4APABuAHYAOgBDAG8AbgB0AGUAbgB0AEkAZAAgAHgAbQBsAG4AcwA6AG4AdgA9ACIAdQByAG4AOgBzAGMAaABlAG0AYQAtAHMAcwBwAC0AbgBhAGcAcgBhAC0AYwBvAG0AIgA+ADUANwAxADIAPAAvAG4AdgA6AEMAbwBuAHQAZQBuAHQASQBkAD4APAAvAEMAVQBTAFQATwBNAEEAVABUAFIASQBCAFUAVABFAFMAPgA8AC8ARABBAFQAQQA+ADwALwBXAFIATQBIAEUAQQBEAEUAUgA+AA=="

func mustPayload(t *testing.T) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(s3Payload)
	require.NoError(t, err)
	return raw
}

func TestParse(t *testing.T) {
	t.Run("CUSTOMATTRIBUTES and LA_URL parse out of the fixture", func(t *testing.T) {
		d, err := Parse(mustPayload(t))
		require.NoError(t, err)
		require.Len(t, d.Records, 1)

		header := d.Records[0].Value
		require.Equal(t, DefaultXMLNS, header.XMLNS)
		require.Equal(t, "4.0.0.0", header.Version)
		require.Contains(t, header.Data.LAURL, "anycast.nagra.com")
		require.NotNil(t, header.Data.ProtectInfo)
		require.Equal(t, "AESCTR", header.Data.ProtectInfo.AlgID)
		require.NotNil(t, header.Data.CustomAttrs)
		require.Contains(t, *header.Data.CustomAttrs, "nv:ContentId")
		require.Contains(t, *header.Data.CustomAttrs, "5712")
	})

	t.Run("record of a type other than Rights Management is rejected", func(t *testing.T) {
		_, err := parseRecord([]byte{0x02, 0x00, 0x00, 0x00})
		require.Error(t, err)
	})

	t.Run("truncated header length fails", func(t *testing.T) {
		_, err := Parse([]byte{0x00, 0x00})
		require.Error(t, err)
	})
}

// TestMarshalRoundTrip checks semantic, not byte-exact, round-tripping:
// encoding/xml serializes elements in Go struct field order, which need not
// match the element order an arbitrary third-party producer used.
func TestMarshalRoundTrip(t *testing.T) {
	raw := mustPayload(t)
	d, err := Parse(raw)
	require.NoError(t, err)

	out, err := d.Marshal()
	require.NoError(t, err)

	roundTripped, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, d.Records[0].Value.Data.LAURL, roundTripped.Records[0].Value.Data.LAURL)
	require.Equal(t, d.Records[0].Value.Data.ProtectInfo, roundTripped.Records[0].Value.Data.ProtectInfo)
	require.Equal(t, d.Records[0].Value.Data.Checksum, roundTripped.Records[0].Value.Data.Checksum)
	require.Equal(t, *d.Records[0].Value.Data.CustomAttrs, *roundTripped.Records[0].Value.Data.CustomAttrs)
}

func TestNewFactory(t *testing.T) {
	d := New()
	require.Len(t, d.Records, 1)
	require.Equal(t, RecordTypeRightsManagement, d.Records[0].Type)
	require.Equal(t, "4.0.0.0", d.Records[0].Value.Version)
	require.Equal(t, DefaultXMLNS, d.Records[0].Value.XMLNS)

	out, err := d.Marshal()
	require.NoError(t, err)

	roundTripped, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, d.Records[0].Value.Version, roundTripped.Records[0].Value.Version)
}

func TestString(t *testing.T) {
	d, err := Parse(mustPayload(t))
	require.NoError(t, err)
	s := d.String()
	require.Contains(t, s, "PlayReadyPsshData<")
	require.Contains(t, s, "RightsManagementRecord:")
	require.Contains(t, s, "anycast.nagra.com")
}

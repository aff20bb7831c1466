package identifier

// Well-known DRM system identifiers. Only the seven referenced from
// pkg/payload's dispatch table have a payload codec; the remainder are
// recognised here for display purposes only, per the DASH Industry Forum's
// published system ID registry.
var (
	Common         = mustSystemID("1077efecc0b24d02ace33c1e52e2fb4b")
	CENC           = mustSystemID("69f908af481646ea910ccd5dcccb0a3a")
	Widevine       = mustSystemID("edef8ba979d64acea3c827dcd51d21ed")
	PlayReady      = mustSystemID("9a04f07998404286ab92e65be0885f95")
	ABV            = mustSystemID("6dd8b3c345f44a68bf3a64168d01a4a6")
	AdobePrimetime = mustSystemID("f239e769efa348509eb564906c6479d4")
	AppleFairPlay  = mustSystemID("94ce86fb07ff4f43adb893d2fa968ca2")
	Irdeto         = mustSystemID("80a6be7e14484c379e70d5aebe04c8d2")
	Marlin         = mustSystemID("5e629af538da4063897797ffbd9902d4")
	Nagra          = mustSystemID("adb41c242dbf4a6d958b4457c0d27b95")
	WisePlay       = mustSystemID("3d5e6d359b9a41e8b843dd3c6e72c42c")

	// FairPlayNetflix is referenced by scenario tests but has no dispatch
	// table entry; its outer box parses to an opaque payload.
	FairPlayNetflix = mustSystemID("2971fe4cdcc749d2907e72341ca0c5ed")
)

// Registry maps a recognised system id to its display name. It is built
// from the identifiers above plus a handful of additional entries that are
// recognised for display only and never appear in pkg/payload's dispatch
// table.
var Registry = map[SystemID]string{
	Common:          "Common",
	CENC:            "CENC",
	Widevine:        "Widevine",
	PlayReady:       "PlayReady",
	ABV:             "ABV",
	AdobePrimetime:  "Adobe Primetime",
	AppleFairPlay:   "Apple FairPlay",
	Irdeto:          "Irdeto",
	Marlin:          "Marlin",
	Nagra:           "Nagra",
	WisePlay:        "WisePlay / ChinaDRM",
	FairPlayNetflix: "FairPlay (Netflix)",
}

func init() {
	// Entries with no dedicated constant: display-name-only, best-effort
	// values taken from public DRM system id lists; none of them appear in
	// any dispatch table or round-trip test.
	Registry[mustSystemID("6a99532d869f59229a91113ab70e3e1b")] = "Alticast"
	Registry[mustSystemID("e2719d58a985b3c9781ab030af78d30e")] = "ClearKey AES-128"
	Registry[mustSystemID("94cb4af4c9ab4eea93a349d83e8ea97c")] = "CoreTrust"
	Registry[mustSystemID("9a27dd82fde247dd9362c6481c08e9f5")] = "SecureMedia"
	Registry[mustSystemID("b4413586c58cffb094f5fc0b37d66aa9")] = "VisionCrypt"
}

// Lookup returns the display name registered for id, if any.
func Lookup(id SystemID) (string, bool) {
	name, ok := Registry[id]
	return name, ok
}

func mustSystemID(hexStr string) SystemID {
	id, err := SystemIDFromHex(hexStr)
	if err != nil {
		panic("identifier: invalid built-in system id " + hexStr + ": " + err.Error())
	}
	return id
}

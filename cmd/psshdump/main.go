package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/usage"

	"github.com/bgrewell/pssh-box"
)

// DisplayBoxes prints one summary block per parsed PSSH box.
func DisplayBoxes(boxes psshbox.PsshBoxVec, verbose bool) {
	fmt.Println("=== PSSH Initialization Data ===")
	fmt.Printf("Total Boxes: %d\n", boxes.Len())

	for i, b := range boxes {
		fmt.Printf("\n--- Box %d ---\n", i)
		fmt.Printf("Version: %d\n", b.Version)
		fmt.Printf("System ID: %s\n", b.SystemID)
		fmt.Printf("Key IDs: %d\n", len(b.KeyIDs))
		if verbose {
			for _, kid := range b.KeyIDs {
				fmt.Printf("  %s\n", kid)
			}
		}
		fmt.Printf("Payload: %s\n", b.Data)
	}

	fmt.Println("=========================")
}

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("psshdump"),
		usage.WithApplicationDescription("psshdump reads Protection System Specific Header (PSSH) initialization data and pretty-prints every box it contains, including the decoded Widevine, PlayReady, Irdeto, Marlin, Nagra, WisePlay, and Common Encryption payloads."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print key ids in full", "", nil)
	hexInput := u.AddBooleanOption("x", "hex", false, "Treat <input> as hex-encoded init data instead of a file path", "", nil)
	b64Input := u.AddBooleanOption("b", "b64", false, "Treat <input> as base64-encoded init data instead of a file path", "", nil)
	tolerant := u.AddBooleanOption("t", "scan", false, "Tolerate trailing bytes that do not parse as a PSSH box, instead of failing", "", nil)
	input := u.AddArgument(1, "input", "Path to a file holding raw PSSH init data, or the literal init data itself when -hex/-b64 is given", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if input == nil || *input == "" {
		u.PrintError(fmt.Errorf("an <input> file path or encoded string must be provided"))
		os.Exit(1)
	}

	if *hexInput && *b64Input {
		u.PrintError(fmt.Errorf("-hex and -b64 are mutually exclusive"))
		os.Exit(1)
	}

	var (
		boxes psshbox.PsshBoxVec
		err   error
	)

	switch {
	case *hexInput:
		boxes, err = psshbox.FromHex(*input)
	case *b64Input:
		boxes, err = psshbox.FromBase64(*input)
	default:
		var raw []byte
		raw, err = os.ReadFile(*input)
		if err == nil {
			if *tolerant {
				boxes = psshbox.FromBuffer(raw)
			} else {
				boxes, err = psshbox.FromBytes(raw)
			}
		}
	}

	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}

	if boxes.IsEmpty() {
		u.PrintError(fmt.Errorf("no PSSH boxes found in input"))
		os.Exit(1)
	}

	DisplayBoxes(boxes, *verbose)
}

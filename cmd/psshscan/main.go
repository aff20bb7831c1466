// psshscan scans an arbitrary binary file (e.g. a fragmented MP4 init
// segment) for embedded PSSH boxes, without first parsing the surrounding
// container format: it looks for the "pssh" fingerprint in the raw byte
// stream and validates whatever follows it as a full box.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	psshbox "github.com/bgrewell/pssh-box"
	"github.com/bgrewell/pssh-box/pkg/box"
	"github.com/bgrewell/pssh-box/pkg/discovery"
	"github.com/bgrewell/pssh-box/pkg/logging"
)

var (
	cfgFile  string
	noStream bool
	verbose  bool
	maxPrint int
	runID    = uuid.New().String()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "psshscan [flags] FILE",
		Short: "Find PSSH boxes embedded in a binary file",
		Long: "psshscan scans FILE for embedded Protection System Specific Header " +
			"(PSSH) boxes by searching for the \"pssh\" fingerprint directly in the " +
			"byte stream, validating each candidate as a full box as it is found.",
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "optional config file (supplies max when --max is not given)")
	flags.BoolVar(&noStream, "buffer", false, "read FILE fully into memory instead of scanning it as a stream")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print key ids and payload detail for every box found")
	flags.IntVar(&maxPrint, "max", 0, "stop after printing this many boxes (0 = unlimited)")

	return cmd
}

func initConfig(log *logging.Logger) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Debug("no config file loaded", "path", cfgFile, "error", err)
		}
	}
	viper.SetEnvPrefix("PSSHSCAN")
	viper.AutomaticEnv()
	if viper.IsSet("max") && maxPrint == 0 {
		maxPrint = viper.GetInt("max")
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	base := logging.DefaultLogger()
	if verbose {
		base = logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_TRACE, true))
	}
	psshbox.SetLogger(base)
	log := base.Named("psshscan").Named(runID)
	initConfig(log)

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var boxes []*box.PsshBox
	if noStream {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		boxes = discovery.FindBoxesBuffer(raw)
	} else {
		boxes, err = discovery.FindBoxesStreamSlice(context.Background(), f)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
	}

	fmt.Printf("run %s: scanned %s, found %d PSSH box(es)\n", runID, path, len(boxes))
	for i, b := range boxes {
		if maxPrint > 0 && i >= maxPrint {
			fmt.Printf("... %d more box(es) not shown (--max=%d)\n", len(boxes)-i, maxPrint)
			break
		}
		fmt.Printf("[%d] version=%d system=%s keys=%d payload=%s\n",
			i, b.Version, b.SystemID, len(b.KeyIDs), b.Data)
		if verbose {
			for _, kid := range b.KeyIDs {
				fmt.Printf("      key_id=%s\n", kid)
			}
		}
	}

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "psshscan:", err)
		os.Exit(1)
	}
}

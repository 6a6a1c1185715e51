package commands

import (
	"github.com/spf13/cobra"

	"github.com/finchforge/shipyard/internal/platform"
	"github.com/finchforge/shipyard/internal/printer"
	"github.com/finchforge/shipyard/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan BUILD_ROOT",
	Short: "Classify the platform builds under a build root without publishing",
	Long: `Classify the immediate subdirectories of BUILD_ROOT by target platform.

Each subdirectory is matched against file-signature heuristics (index.html
means web, *.exe means windows, and so on), falling back to directory-name
keywords. Unclassifiable directories are reported, never silently dropped.

Examples:
  shipyard scan ./build`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	buildRoot := args[0]

	result, err := scanner.Scan(buildRoot, reportScanLine)
	if err != nil {
		return printer.Error(
			"scan failed",
			err.Error(),
			[]string{"Check that the build root exists and is readable"},
		)
	}

	printer.Info("\n%d platform(s) detected, %d director(ies) unclassified\n",
		len(result.Matched), len(result.Unmatched))
	return nil
}

// reportScanLine is the per-directory observability line shared by scan and
// push.
func reportScanLine(entry scanner.BuildEntry) {
	if entry.PlatformTag == "" {
		printer.Warning("%s: unknown platform\n", entry.Path)
		return
	}
	spec, _ := platform.ByTag(entry.PlatformTag)
	printer.Success("%s: %s (channel %s)\n", entry.Path, spec.DisplayName, spec.ChannelName)
}

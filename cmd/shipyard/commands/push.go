package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finchforge/shipyard/internal/config"
	"github.com/finchforge/shipyard/internal/filter"
	"github.com/finchforge/shipyard/internal/printer"
	"github.com/finchforge/shipyard/internal/publish"
	"github.com/finchforge/shipyard/internal/scanner"
)

var (
	pushVersion     string
	pushDryRun      bool
	pushIgnore      []string
	pushChannels    string
	pushConfigPath  string
	pushJSONSummary bool
)

var pushCmd = &cobra.Command{
	Use:   "push BUILD_ROOT [TARGET]",
	Short: "Publish every detected platform build to its channel",
	Long: `Scan BUILD_ROOT, then publish one channel per detected platform to TARGET
(user/game). TARGET may be omitted when shipyard.yml sets a default target.

Channels are published sequentially in a fixed platform order. One channel's
failure never prevents the remaining channels from being attempted; the run
ends with a per-channel summary and a best-effort status query.

Examples:
  # Preview the commands without uploading anything
  shipyard push ./build alice/mygame --dry-run

  # Tag the uploads with a user-facing version
  shipyard push ./build alice/mygame --userversion 1.2.0

  # Publish only the desktop channels
  shipyard push ./build alice/mygame --channels "{windows,linux,osx}"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPush,
}

func init() {
	pushCmd.Flags().StringVar(&pushVersion, "userversion", "", "Version tag attached to the uploaded builds")
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Display the transfer commands without executing them")
	pushCmd.Flags().StringArrayVar(&pushIgnore, "ignore", nil, "Exclusion pattern passed to the transfer tool (repeatable)")
	pushCmd.Flags().StringVar(&pushChannels, "channels", "", "Glob restricting which detected channels are published")
	pushCmd.Flags().StringVarP(&pushConfigPath, "config", "c", config.DefaultPath, "Path to shipyard.yml")
	pushCmd.Flags().BoolVar(&pushJSONSummary, "json", false, "Print the run summary as JSON")
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	buildRoot := args[0]

	cfg, err := config.LoadIfPresent(pushConfigPath)
	if err != nil {
		return printer.Error("configuration invalid", err.Error(), []string{
			"Fix the reported field in shipyard.yml",
			"Regenerate it: shipyard init --force",
		})
	}

	destination := cfg.Target
	if len(args) == 2 {
		destination = args[1]
	}
	if destination == "" {
		return printer.Error(
			"no publish target",
			"Pass TARGET as user/game, or set target in shipyard.yml.",
			[]string{fmt.Sprintf("shipyard push %s alice/mygame", buildRoot)},
		)
	}

	ignorePatterns := append(append([]string{}, cfg.Ignore...), pushIgnore...)
	if err := config.ValidateIgnorePatterns(ignorePatterns); err != nil {
		return printer.Error("configuration invalid", err.Error(), nil)
	}

	// Scan phase.
	printer.Step("Scanning %s\n", buildRoot)
	result, err := scanner.Scan(buildRoot, reportScanLine)
	if err != nil {
		return printer.Error(
			"build root not usable",
			err.Error(),
			[]string{"Check that the build root exists and is a directory"},
		)
	}

	targets := publish.TargetsFromScan(result)
	criteria := &filter.Criteria{ChannelGlob: pushChannels}
	targets = criteria.Apply(targets)

	if len(targets) == 0 {
		if criteria.HasFilters() && len(result.Matched) > 0 {
			return printer.Error(
				"no channels match the filter",
				fmt.Sprintf("%d platform(s) were detected but none match --channels %q.", len(result.Matched), pushChannels),
				nil,
			)
		}
		return printer.Error(
			"no platforms detected",
			"None of the subdirectories carried a recognisable platform signature.",
			[]string{
				"Inspect the classification: shipyard scan " + buildRoot,
				"Expected layout: one subdirectory per platform (windows/, web/, linux/, ...)",
			},
		)
	}

	// Publish phase.
	runID := uuid.New().String()
	printer.Step("Publishing %d channel(s) to %s (run %s)\n", len(targets), destination, runID)

	pub := publish.NewPublisher(publish.ExecRunner{}, cfg.Tool, os.Stdout)
	outcomes := pub.Publish(ctx, targets, destination, publish.Options{
		Version:        pushVersion,
		DryRun:         pushDryRun,
		IgnorePatterns: ignorePatterns,
	})

	// Report phase.
	summary := publish.Summarize(runID, outcomes)
	printer.Info("\nPublish summary (%d succeeded, %d failed):\n", summary.Succeeded, summary.Failed)
	for _, line := range summary.Lines {
		printer.Println("  " + line)
	}
	if pushJSONSummary {
		if err := summary.WriteJSON(os.Stdout); err != nil {
			return err
		}
	}

	// Post-run status query is best-effort: log and move on. In dry-run
	// the command is displayed like the pushes, not executed.
	if pushDryRun {
		fmt.Fprintf(os.Stdout, "[dry-run] %s\n", publish.CommandLine(cfg.Tool, []string{"status", destination}))
	} else if output, err := pub.Status(ctx, destination); err != nil {
		printer.Warning("status check failed: %v\n", err)
	} else if output != "" {
		printer.Info("%s", output)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d channel(s) failed", summary.Failed, len(outcomes))
	}

	printer.Success("All %d channel(s) published\n", summary.Succeeded)
	return nil
}

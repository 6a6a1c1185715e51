package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/finchforge/shipyard/internal/config"
	"github.com/finchforge/shipyard/internal/printer"
	"github.com/finchforge/shipyard/internal/publish"
)

var statusConfigPath string

var statusCmd = &cobra.Command{
	Use:   "status [TARGET]",
	Short: "Query the remote channel status for a target",
	Long: `Run the transfer tool's status query for TARGET (user/game). TARGET may be
omitted when shipyard.yml sets a default target.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusConfigPath, "config", "c", config.DefaultPath, "Path to shipyard.yml")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadIfPresent(statusConfigPath)
	if err != nil {
		return printer.Error("configuration invalid", err.Error(), nil)
	}

	destination := cfg.Target
	if len(args) == 1 {
		destination = args[0]
	}
	if destination == "" {
		return printer.Error(
			"no target",
			"Pass TARGET as user/game, or set target in shipyard.yml.",
			[]string{"shipyard status alice/mygame"},
		)
	}

	pub := publish.NewPublisher(publish.ExecRunner{}, cfg.Tool, os.Stdout)
	output, err := pub.Status(context.Background(), destination)
	if err != nil {
		return printer.Error("status check failed", err.Error(), []string{
			"Check that " + cfg.Tool + " is installed and logged in",
		})
	}

	printer.Info("%s", output)
	return nil
}

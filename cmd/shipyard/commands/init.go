package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchforge/shipyard/internal/scaffold"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter shipyard.yml in the current directory",
	Long: `Create a starter shipyard.yml in the current directory.

The generated file carries the publish target, default ignore patterns, and
an optional telemetry section, all commented for editing.

Use --force to overwrite an existing shipyard.yml.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing shipyard.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if err := scaffold.CheckExisting(); err != nil {
			return err
		}
	}

	if err := scaffold.Initialize(forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()
	return nil
}

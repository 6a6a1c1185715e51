package scaffold

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finchforge/shipyard/internal/config"
	"github.com/finchforge/shipyard/internal/printer"
)

//go:embed templates/*
var templatesFS embed.FS

// CheckExisting returns an error if a shipyard.yml already exists in the
// current directory. Used unless --force was given.
func CheckExisting() error {
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.DefaultPath)
	}
	return nil
}

// Initialize writes a starter shipyard.yml. With force, an existing file is
// replaced.
func Initialize(force bool) error {
	if force {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			printer.Warning("Replacing existing %s...\n", config.DefaultPath)
			if err := os.Remove(config.DefaultPath); err != nil {
				return fmt.Errorf("failed to remove %s: %w", config.DefaultPath, err)
			}
		}
	}

	content, err := templatesFS.ReadFile("templates/shipyard.yml.tmpl")
	if err != nil {
		return fmt.Errorf("failed to read shipyard.yml template: %w", err)
	}

	if err := os.WriteFile(config.DefaultPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.DefaultPath, err)
	}

	return validateCreated()
}

// validateCreated parses the file just written to catch template drift.
func validateCreated() error {
	data, err := os.ReadFile(config.DefaultPath)
	if err != nil {
		return fmt.Errorf("failed to re-read %s: %w", config.DefaultPath, err)
	}

	var cfg config.ShipyardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("generated %s is not valid YAML: %w", config.DefaultPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("generated %s failed validation: %w", config.DefaultPath, err)
	}
	return nil
}

// PrintSuccess prints the post-init guidance.
func PrintSuccess() {
	printer.Success("Created %s\n", config.DefaultPath)
	printer.Info("\nNext steps:\n")
	printer.Info("  • Edit %s and set your target (user/game)\n", config.DefaultPath)
	printer.Info("  • Preview a publish: shipyard push ./build alice/mygame --dry-run\n")
	printer.Info("  • Classify without publishing: shipyard scan ./build\n")
}

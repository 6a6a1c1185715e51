package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for project configuration when no
// --config flag is given.
const DefaultPath = "shipyard.yml"

// ShipyardConfig represents the top-level shipyard.yml configuration.
// Everything in it is a default: command-line flags override file values.
type ShipyardConfig struct {
	Version   string           `yaml:"version"`
	Target    string           `yaml:"target,omitempty"`    // default destination, e.g. "alice/mygame"
	Tool      string           `yaml:"tool,omitempty"`      // transfer tool binary, default "butler"
	Ignore    []string         `yaml:"ignore,omitempty"`    // default exclusion patterns
	Telemetry *TelemetryConfig `yaml:"telemetry,omitempty"`
}

// TelemetryConfig configures the remote ratings/comments API. The API key
// lives here (or in the SHIPYARD_API_KEY environment variable as an explicit
// fallback) so the telemetry client never reads ambient process state.
type TelemetryConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key,omitempty"`
	GameID  string `yaml:"game_id,omitempty"`
}

// Load reads and validates a shipyard.yml file.
func Load(path string) (*ShipyardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg ShipyardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadIfPresent loads the config at path, or returns an empty default
// config when the file does not exist. A file that exists but fails to
// parse or validate is still an error.
func LoadIfPresent(path string) (*ShipyardConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &ShipyardConfig{Version: "1.0", Tool: "butler"}, nil
	}
	return Load(path)
}

// Validate performs strict validation and applies defaults.
func (c *ShipyardConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Tool == "" {
		c.Tool = "butler"
	}

	if c.Target != "" && !strings.Contains(c.Target, "/") {
		return fmt.Errorf("invalid target %q: expected user/game", c.Target)
	}

	if err := ValidateIgnorePatterns(c.Ignore); err != nil {
		return err
	}

	if c.Telemetry != nil {
		if c.Telemetry.BaseURL == "" {
			return fmt.Errorf("telemetry.base_url is required when telemetry is configured")
		}
	}

	return nil
}

// APIKey resolves the telemetry credential: the config value wins, then the
// documented environment fallback.
func (c *ShipyardConfig) APIKey() string {
	if c.Telemetry != nil && c.Telemetry.APIKey != "" {
		return c.Telemetry.APIKey
	}
	return os.Getenv("SHIPYARD_API_KEY")
}

// ValidateIgnorePatterns rejects malformed glob patterns up front, before
// they are handed verbatim to the transfer tool.
func ValidateIgnorePatterns(patterns []string) error {
	for _, p := range patterns {
		if p == "" {
			return fmt.Errorf("empty ignore pattern")
		}
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid ignore pattern: %q", p)
		}
	}
	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchforge/shipyard/internal/config"
	"github.com/finchforge/shipyard/internal/printer"
	"github.com/finchforge/shipyard/internal/telemetry"
	"github.com/finchforge/shipyard/internal/timespec"
)

var (
	telemetryConfigPath string
	telemetryBaseURL    string
	telemetryAPIKey     string
	telemetrySince      string
	telemetryUntil      string
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Aggregate remote ratings and comments for a game",
	Long: `Aggregate simple remote telemetry through the ratings/comments JSON API.

The API base URL and credential come from the telemetry section of
shipyard.yml (or the SHIPYARD_API_KEY environment variable); flags override
both.`,
}

var telemetryRatingsCmd = &cobra.Command{
	Use:   "ratings [GAME_ID]",
	Short: "Show the aggregate rating",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTelemetryRatings,
}

var telemetryCommentsCmd = &cobra.Command{
	Use:   "comments [GAME_ID]",
	Short: "List player comments",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTelemetryComments,
}

var telemetrySentimentCmd = &cobra.Command{
	Use:   "sentiment [GAME_ID]",
	Short: "Derive a coarse sentiment signal from comments",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTelemetrySentiment,
}

func init() {
	telemetryCmd.PersistentFlags().StringVarP(&telemetryConfigPath, "config", "c", config.DefaultPath, "Path to shipyard.yml")
	telemetryCmd.PersistentFlags().StringVar(&telemetryBaseURL, "base-url", "", "Telemetry API base URL (overrides shipyard.yml)")
	telemetryCmd.PersistentFlags().StringVar(&telemetryAPIKey, "api-key", "", "Telemetry API key (overrides shipyard.yml and SHIPYARD_API_KEY)")

	telemetryCommentsCmd.Flags().StringVar(&telemetrySince, "since", "", "Only comments after this time ('24h' or RFC3339)")
	telemetryCommentsCmd.Flags().StringVar(&telemetryUntil, "until", "", "Only comments before this time ('24h' or RFC3339)")
	telemetrySentimentCmd.Flags().StringVar(&telemetrySince, "since", "", "Only comments after this time ('24h' or RFC3339)")
	telemetrySentimentCmd.Flags().StringVar(&telemetryUntil, "until", "", "Only comments before this time ('24h' or RFC3339)")

	telemetryCmd.AddCommand(telemetryRatingsCmd)
	telemetryCmd.AddCommand(telemetryCommentsCmd)
	telemetryCmd.AddCommand(telemetrySentimentCmd)
	rootCmd.AddCommand(telemetryCmd)
}

// telemetryClient resolves config, flags, and the game ID into a ready
// client. Flags beat file values; the credential is threaded explicitly.
func telemetryClient(args []string) (*telemetry.Client, string, error) {
	cfg, err := config.LoadIfPresent(telemetryConfigPath)
	if err != nil {
		return nil, "", printer.Error("configuration invalid", err.Error(), nil)
	}

	baseURL := telemetryBaseURL
	gameID := ""
	if cfg.Telemetry != nil {
		if baseURL == "" {
			baseURL = cfg.Telemetry.BaseURL
		}
		gameID = cfg.Telemetry.GameID
	}
	if len(args) == 1 {
		gameID = args[0]
	}

	if baseURL == "" {
		return nil, "", printer.Error(
			"telemetry not configured",
			"No API base URL given.",
			[]string{
				"Add a telemetry section to shipyard.yml",
				"Or pass --base-url",
			},
		)
	}
	if gameID == "" {
		return nil, "", printer.Error(
			"no game ID",
			"Pass GAME_ID, or set telemetry.game_id in shipyard.yml.",
			nil,
		)
	}

	apiKey := telemetryAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}

	return telemetry.NewClient(baseURL, apiKey), gameID, nil
}

func runTelemetryRatings(cmd *cobra.Command, args []string) error {
	client, gameID, err := telemetryClient(args)
	if err != nil {
		return err
	}

	summary, err := client.Ratings(context.Background(), gameID)
	if err != nil {
		return fmt.Errorf("failed to fetch ratings: %w", err)
	}

	printer.Info("Game %s: %.2f average over %d rating(s)\n", gameID, summary.Average, summary.Count)
	return nil
}

func runTelemetryComments(cmd *cobra.Command, args []string) error {
	client, gameID, err := telemetryClient(args)
	if err != nil {
		return err
	}

	comments, err := fetchCommentsInWindow(client, gameID)
	if err != nil {
		return err
	}

	if len(comments) == 0 {
		printer.Info("No comments found\n")
		return nil
	}

	for _, c := range comments {
		printer.Info("[%s] %s: %s\n", c.PostedAt.Format("2006-01-02"), c.Author, c.Body)
	}
	printer.Info("\n%d comment(s)\n", len(comments))
	return nil
}

func runTelemetrySentiment(cmd *cobra.Command, args []string) error {
	client, gameID, err := telemetryClient(args)
	if err != nil {
		return err
	}

	comments, err := fetchCommentsInWindow(client, gameID)
	if err != nil {
		return err
	}

	texts := make([]string, 0, len(comments))
	for _, c := range comments {
		texts = append(texts, c.Body)
	}

	s := telemetry.Analyze(texts)
	printer.Info("Sentiment over %d comment(s): %s (score %+d, %d positive / %d negative keyword hits)\n",
		len(comments), s.Label, s.Score, s.Positive, s.Negative)
	return nil
}

func fetchCommentsInWindow(client *telemetry.Client, gameID string) ([]telemetry.Comment, error) {
	since, until, err := timespec.ParseRange(telemetrySince, telemetryUntil)
	if err != nil {
		return nil, err
	}

	comments, err := client.Comments(context.Background(), gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}

	if since.IsZero() && until.IsZero() {
		return comments, nil
	}

	var windowed []telemetry.Comment
	for _, c := range comments {
		if timespec.InRange(c.PostedAt, since, until) {
			windowed = append(windowed, c)
		}
	}
	return windowed, nil
}

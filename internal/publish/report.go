package publish

import (
	"encoding/json"
	"fmt"
	"io"
)

// Summary is a pure projection of a run's outcomes. It enumerates every
// attempted channel exactly once; rendering is left to the caller.
type Summary struct {
	RunID     string    `json:"run_id"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Lines     []string  `json:"-"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Summarize folds per-channel outcomes into a summary. Outcomes arrive in
// the fixed platform order and are reported in that order.
func Summarize(runID string, outcomes []Outcome) Summary {
	summary := Summary{RunID: runID, Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Succeeded {
			summary.Succeeded++
			summary.Lines = append(summary.Lines, fmt.Sprintf("✓ %s: ok", o.ChannelName))
			continue
		}
		summary.Failed++
		summary.Lines = append(summary.Lines, fmt.Sprintf("✗ %s: %s (%s)", o.ChannelName, o.Err, o.Kind))
	}
	return summary
}

// WriteJSON renders the summary as pretty-printed JSON, for scripting
// against publish results.
func (s Summary) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

package filter

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/finchforge/shipyard/internal/publish"
)

// Criteria restricts which detected channels are published. An empty
// criteria matches everything.
type Criteria struct {
	ChannelGlob string // glob pattern matched against channel names
}

// Matches returns true if the target passes the channel filter.
func (c *Criteria) Matches(target publish.Target) bool {
	if c.ChannelGlob == "" {
		return true
	}
	ok, err := doublestar.Match(c.ChannelGlob, target.ChannelName)
	return err == nil && ok
}

// Apply filters targets down to the ones matching the criteria, preserving
// order. Filtering happens after classification, so the scan report is
// unaffected.
func (c *Criteria) Apply(targets []publish.Target) []publish.Target {
	if c.ChannelGlob == "" {
		return targets
	}
	var kept []publish.Target
	for _, t := range targets {
		if c.Matches(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// HasFilters returns true if any filter is active.
func (c *Criteria) HasFilters() bool {
	return c.ChannelGlob != ""
}
